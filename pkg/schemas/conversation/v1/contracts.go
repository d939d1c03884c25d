package conversation

import "net/url"

// RecipientID is an opaque serialized recipient identifier.
type RecipientID string

// MediaItem is passed through untouched; the conversation screen owns its meaning.
type MediaItem struct {
	URI        string `json:"uri"`
	MimeType   string `json:"mime_type"`
	Date       int64  `json:"date"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Size       int64  `json:"size"`
	Duration   int64  `json:"duration"`
	Borderless bool   `json:"borderless"`
	VideoGIF   bool   `json:"video_gif"`
	BucketID   string `json:"bucket_id,omitempty"`
	Caption    string `json:"caption,omitempty"`
}

type StickerLocator struct {
	PackID    string `json:"pack_id"`
	PackKey   string `json:"pack_key"`
	StickerID int    `json:"sticker_id"`
	Emoji     string `json:"emoji,omitempty"`
}

// Params is the decoded, typed view of a conversation intent.
// Nil pointers and a nil Media slice mean the extra was absent.
type Params struct {
	RecipientID      RecipientID
	ThreadID         int64
	DraftText        *string
	Media            []MediaItem
	Sticker          *StickerLocator
	Borderless       bool
	DistributionType DistributionType
	StartingPosition int
	DataURI          *url.URL
	DataType         string
}

type AttachmentKind int

const (
	AttachmentNone AttachmentKind = iota
	AttachmentMedia
	AttachmentSticker
)

func (k AttachmentKind) String() string {
	switch k {
	case AttachmentMedia:
		return "media"
	case AttachmentSticker:
		return "sticker"
	default:
		return "none"
	}
}

// Attachment holds at most one of media or sticker, selected by Kind.
type Attachment struct {
	Kind    AttachmentKind
	Media   []MediaItem
	Sticker *StickerLocator
}

func NoAttachment() Attachment { return Attachment{Kind: AttachmentNone} }

func MediaAttachment(items []MediaItem) Attachment {
	if len(items) == 0 {
		return NoAttachment()
	}
	return Attachment{Kind: AttachmentMedia, Media: append([]MediaItem(nil), items...)}
}

func StickerAttachment(s StickerLocator) Attachment {
	return Attachment{Kind: AttachmentSticker, Sticker: &s}
}

// Attachment reports the attachment carried by p. Media wins when a
// non-conforming producer sent both.
func (p Params) Attachment() Attachment {
	switch {
	case len(p.Media) > 0:
		return MediaAttachment(p.Media)
	case p.Sticker != nil:
		return StickerAttachment(*p.Sticker)
	default:
		return NoAttachment()
	}
}

// HasThread is false for threads that have not been created yet.
func (p Params) HasThread() bool { return p.ThreadID != NoThreadID }
