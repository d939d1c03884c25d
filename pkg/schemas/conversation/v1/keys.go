package conversation

// Extra keys. These are the wire contract for a conversation intent and
// must not be renamed without a migration path.
const (
	KeyRecipient        = "recipient_id"
	KeyThreadID         = "thread_id"
	KeyDraftText        = "draft_text"
	KeyMedia            = "media_list"
	KeySticker          = "sticker_extra"
	KeyBorderless       = "borderless_extra"
	KeyDistributionType = "distribution_type"
	KeyStartingPosition = "starting_position"
)

// Screen targets. Routing hint only, the parameter set is the same.
const (
	ScreenConversation      = "conversation"
	ScreenConversationPopup = "conversation.popup"
)

const ActionDefault = "default"

const (
	NoThreadID         int64 = -1
	NoStartingPosition int   = -1
)

type DistributionType int

// Values owned by thread classification; only the integer travels here.
const (
	DistributionDefault      DistributionType = 0
	DistributionBroadcast    DistributionType = 1
	DistributionConversation DistributionType = 2
	DistributionArchive      DistributionType = 3
	DistributionInboxZero    DistributionType = 4
)
