package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	conversation "github.com/roboricindustries/raycon-conversation/pkg/schemas/conversation/v1"
)

type buildOptions struct {
	Recipient        string
	ThreadID         int64
	Popup            bool
	Draft            string
	Media            []string
	StickerPack      string
	StickerKey       string
	StickerID        int
	Borderless       bool
	DistributionType int
	StartingPosition int
	DataURI          string
	DataType         string
}

func (o *buildOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.Recipient, "recipient", "", "Recipient id (required)")
	f.Int64Var(&o.ThreadID, "thread", conversation.NoThreadID, "Thread id, -1 when not created yet")
	f.BoolVar(&o.Popup, "popup", false, "Target the popup conversation screen")
	f.StringVar(&o.Draft, "draft", "", "Draft text")
	f.StringArrayVar(&o.Media, "media", nil, "Media item as uri|mime (repeatable)")
	f.StringVar(&o.StickerPack, "sticker-pack", "", "Sticker pack id")
	f.StringVar(&o.StickerKey, "sticker-key", "", "Sticker pack key")
	f.IntVar(&o.StickerID, "sticker-id", 0, "Sticker id within the pack")
	f.BoolVar(&o.Borderless, "borderless", false, "Open borderless")
	f.IntVar(&o.DistributionType, "distribution", int(conversation.DistributionDefault), "Distribution type")
	f.IntVar(&o.StartingPosition, "position", conversation.NoStartingPosition, "Starting position, -1 for unset")
	f.StringVar(&o.DataURI, "data", "", "Data uri for the primary data slot")
	f.StringVar(&o.DataType, "type", "", "MIME type for the primary data slot")
	_ = cmd.MarkFlagRequired("recipient")
}

// intent runs the builder. flagSet reports whether a flag was given, so an
// explicit empty --draft still sets the draft.
func (o *buildOptions) intent(flagSet func(string) bool) (conversation.Intent, error) {
	b := conversation.NewBuilder(conversation.RecipientID(o.Recipient), o.ThreadID)
	if o.Popup {
		b = conversation.NewPopupBuilder(conversation.RecipientID(o.Recipient), o.ThreadID)
	}

	if flagSet("draft") {
		draft := o.Draft
		b.WithDraftText(&draft)
	}
	if len(o.Media) > 0 {
		items, err := parseMedia(o.Media)
		if err != nil {
			return conversation.Intent{}, err
		}
		b.WithMedia(items)
	}
	if o.StickerPack != "" {
		b.WithStickerLocator(&conversation.StickerLocator{
			PackID:    o.StickerPack,
			PackKey:   o.StickerKey,
			StickerID: o.StickerID,
		})
	}
	if o.DataURI != "" {
		u, err := url.Parse(o.DataURI)
		if err != nil {
			return conversation.Intent{}, fmt.Errorf("--data: %w", err)
		}
		b.WithDataURI(u)
	}

	return b.AsBorderless(o.Borderless).
		WithDistributionType(conversation.DistributionType(o.DistributionType)).
		WithStartingPosition(o.StartingPosition).
		WithDataType(o.DataType).
		Build()
}

func parseMedia(specs []string) ([]conversation.MediaItem, error) {
	items := make([]conversation.MediaItem, 0, len(specs))
	for _, s := range specs {
		uri, mime, ok := strings.Cut(s, "|")
		if !ok || uri == "" || mime == "" {
			return nil, fmt.Errorf("--media %q: want uri|mime", s)
		}
		items = append(items, conversation.MediaItem{URI: uri, MimeType: mime})
	}
	return items, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newBuildCommand() *cobra.Command {
	var opts buildOptions
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build an intent and print it as JSON",
		Args:  cobra.NoArgs,
		Example: `  convintent build --recipient R1 --thread 42 --draft hi
  convintent build --recipient R1 --media 'content://m/1|image/jpeg' --popup`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := opts.intent(cmd.Flags().Changed)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), in)
		},
	}
	opts.register(cmd)
	return cmd
}
