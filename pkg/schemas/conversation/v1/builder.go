package conversation

import (
	"encoding/json"
	"net/url"
)

// Builder accumulates conversation parameters. A builder belongs to one
// caller and is normally dropped after Build.
type Builder struct {
	target      string
	recipientID RecipientID
	threadID    int64

	draftText        *string
	media            []MediaItem
	sticker          *StickerLocator
	borderless       bool
	distributionType DistributionType
	startingPosition int
	dataURI          *url.URL
	dataType         string
}

// NewBuilder starts an intent for the regular conversation screen.
func NewBuilder(recipientID RecipientID, threadID int64) *Builder {
	return newBuilder(ScreenConversation, recipientID, threadID)
}

// NewPopupBuilder starts an intent for the popup conversation screen.
func NewPopupBuilder(recipientID RecipientID, threadID int64) *Builder {
	return newBuilder(ScreenConversationPopup, recipientID, threadID)
}

func newBuilder(target string, recipientID RecipientID, threadID int64) *Builder {
	return &Builder{
		target:           target,
		recipientID:      recipientID,
		threadID:         threadID,
		distributionType: DistributionDefault,
		startingPosition: NoStartingPosition,
	}
}

func (b *Builder) WithDraftText(text *string) *Builder {
	b.draftText = text
	return b
}

// WithMedia copies items; later changes to the caller's slice are not seen.
// A nil slice clears the media.
func (b *Builder) WithMedia(items []MediaItem) *Builder {
	if items == nil {
		b.media = nil
		return b
	}
	b.media = make([]MediaItem, len(items))
	copy(b.media, items)
	return b
}

func (b *Builder) WithStickerLocator(s *StickerLocator) *Builder {
	if s == nil {
		b.sticker = nil
		return b
	}
	cp := *s
	b.sticker = &cp
	return b
}

// WithAttachment replaces both media and sticker with the given variant.
func (b *Builder) WithAttachment(a Attachment) *Builder {
	switch a.Kind {
	case AttachmentMedia:
		b.WithStickerLocator(nil)
		return b.WithMedia(a.Media)
	case AttachmentSticker:
		b.WithMedia(nil)
		return b.WithStickerLocator(a.Sticker)
	default:
		b.WithMedia(nil)
		return b.WithStickerLocator(nil)
	}
}

func (b *Builder) AsBorderless(borderless bool) *Builder {
	b.borderless = borderless
	return b
}

func (b *Builder) WithDistributionType(t DistributionType) *Builder {
	b.distributionType = t
	return b
}

func (b *Builder) WithStartingPosition(pos int) *Builder {
	b.startingPosition = pos
	return b
}

func (b *Builder) WithDataURI(u *url.URL) *Builder {
	b.dataURI = u
	return b
}

func (b *Builder) WithDataType(mime string) *Builder {
	b.dataType = mime
	return b
}

// Build validates the accumulated parameters and produces the intent.
// Media and sticker are checked here only, so setters may run in any order.
func (b *Builder) Build() (Intent, error) {
	if len(b.media) > 0 && b.sticker != nil {
		return Intent{}, &ConflictingAttachmentError{MediaCount: len(b.media), Sticker: *b.sticker}
	}

	in := Intent{
		Target: b.target,
		Action: ActionDefault,
		Extras: make(map[string]json.RawMessage, 8),
	}

	// defaulted extras are always written
	always := []struct {
		key string
		v   any
	}{
		{KeyRecipient, string(b.recipientID)},
		{KeyThreadID, b.threadID},
		{KeyDistributionType, int(b.distributionType)},
		{KeyStartingPosition, b.startingPosition},
		{KeyBorderless, b.borderless},
	}
	for _, e := range always {
		if err := in.putExtra(e.key, e.v); err != nil {
			return Intent{}, err
		}
	}

	if b.draftText != nil {
		if err := in.putExtra(KeyDraftText, *b.draftText); err != nil {
			return Intent{}, err
		}
	}
	// an empty list next to a sticker carries nothing and is dropped
	if b.media != nil && !(len(b.media) == 0 && b.sticker != nil) {
		if err := in.putExtra(KeyMedia, b.media); err != nil {
			return Intent{}, err
		}
	}
	if b.sticker != nil {
		if err := in.putExtra(KeySticker, b.sticker); err != nil {
			return Intent{}, err
		}
	}

	if b.dataURI != nil {
		u := *b.dataURI
		in.Data = &u
	}
	in.Type = b.dataType

	return in, nil
}
