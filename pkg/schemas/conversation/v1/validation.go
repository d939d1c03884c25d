package conversation

import (
	"errors"
	"fmt"
)

var (
	ErrConflictingAttachment = errors.New("conversation: both media and sticker set")
	ErrMissingRequiredField  = errors.New("conversation: missing required field")
)

// ConflictingAttachmentError is returned by Build when media and a sticker
// locator are both set. Clear one of them and build again.
type ConflictingAttachmentError struct {
	MediaCount int
	Sticker    StickerLocator
}

func (e *ConflictingAttachmentError) Error() string {
	return fmt.Sprintf("%s (media=%d, sticker=%s/%d)",
		ErrConflictingAttachment.Error(), e.MediaCount, e.Sticker.PackID, e.Sticker.StickerID)
}
func (e *ConflictingAttachmentError) Is(target error) bool { return target == ErrConflictingAttachment }

type MissingRequiredFieldError struct{ Key string }

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingRequiredField.Error(), e.Key)
}
func (e *MissingRequiredFieldError) Is(target error) bool { return target == ErrMissingRequiredField }
