package conversation

import "log/slog"

// IsInvalid reports whether in lacks a recipient. It checks nothing else.
func IsInvalid(in Intent) bool {
	return !in.HasExtra(KeyRecipient)
}

// Decode is DecodeWith using slog.Default().
func Decode(in Intent) (Params, error) {
	return DecodeWith(in, slog.Default())
}

// DecodeWith reads every extra of in, substituting defaults for absent ones.
// Media and sticker are not cross-checked here; a foreign producer may send both.
// An extra holding the wrong type decodes to its default and is logged to logger.
func DecodeWith(in Intent, logger *slog.Logger) (Params, error) {
	if logger == nil {
		logger = slog.Default()
	}
	warnBadExtra := func(key string, err error) {
		logger.Warn("conversation: extra has unexpected type, using default",
			slog.String("key", key), slog.Any("error", err))
	}

	var recipient *string
	if _, err := in.getExtra(KeyRecipient, &recipient); err != nil {
		warnBadExtra(KeyRecipient, err)
		recipient = nil
	}
	if recipient == nil {
		return Params{}, &MissingRequiredFieldError{Key: KeyRecipient}
	}

	p := Params{
		RecipientID:      RecipientID(*recipient),
		ThreadID:         NoThreadID,
		DistributionType: DistributionDefault,
		StartingPosition: NoStartingPosition,
		DataType:         in.Type,
	}

	threadID := NoThreadID
	if _, err := in.getExtra(KeyThreadID, &threadID); err == nil {
		p.ThreadID = threadID
	} else {
		warnBadExtra(KeyThreadID, err)
	}

	var draft *string
	if _, err := in.getExtra(KeyDraftText, &draft); err == nil {
		p.DraftText = draft
	} else {
		warnBadExtra(KeyDraftText, err)
	}

	var media []MediaItem
	if _, err := in.getExtra(KeyMedia, &media); err == nil {
		p.Media = media
	} else {
		warnBadExtra(KeyMedia, err)
	}

	var sticker *StickerLocator
	if _, err := in.getExtra(KeySticker, &sticker); err == nil {
		p.Sticker = sticker
	} else {
		warnBadExtra(KeySticker, err)
	}

	var borderless bool
	if _, err := in.getExtra(KeyBorderless, &borderless); err == nil {
		p.Borderless = borderless
	} else {
		warnBadExtra(KeyBorderless, err)
	}

	dist := int(DistributionDefault)
	if _, err := in.getExtra(KeyDistributionType, &dist); err == nil {
		p.DistributionType = DistributionType(dist)
	} else {
		warnBadExtra(KeyDistributionType, err)
	}

	pos := NoStartingPosition
	if _, err := in.getExtra(KeyStartingPosition, &pos); err == nil {
		p.StartingPosition = pos
	} else {
		warnBadExtra(KeyStartingPosition, err)
	}

	if in.Data != nil {
		u := *in.Data
		p.DataURI = &u
	}
	return p, nil
}

// Intent rebuilds the envelope for p. It fails like Builder.Build when p
// carries both media and a sticker.
func (p Params) Intent(popup bool) (Intent, error) {
	b := NewBuilder(p.RecipientID, p.ThreadID)
	if popup {
		b = NewPopupBuilder(p.RecipientID, p.ThreadID)
	}
	return b.WithDraftText(p.DraftText).
		WithMedia(p.Media).
		WithStickerLocator(p.Sticker).
		AsBorderless(p.Borderless).
		WithDistributionType(p.DistributionType).
		WithStartingPosition(p.StartingPosition).
		WithDataURI(p.DataURI).
		WithDataType(p.DataType).
		Build()
}
