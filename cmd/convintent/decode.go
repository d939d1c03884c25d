package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	conversation "github.com/roboricindustries/raycon-conversation/pkg/schemas/conversation/v1"
)

// paramsView is the printable form of conversation.Params.
type paramsView struct {
	RecipientID      string                       `json:"recipient_id"`
	ThreadID         int64                        `json:"thread_id"`
	DraftText        *string                      `json:"draft_text"`
	Media            []conversation.MediaItem     `json:"media"`
	Sticker          *conversation.StickerLocator `json:"sticker"`
	Borderless       bool                         `json:"borderless"`
	DistributionType int                          `json:"distribution_type"`
	StartingPosition int                          `json:"starting_position"`
	DataURI          string                       `json:"data_uri,omitempty"`
	DataType         string                       `json:"data_type,omitempty"`
	Attachment       string                       `json:"attachment"`
}

func viewOf(p conversation.Params) paramsView {
	v := paramsView{
		RecipientID:      string(p.RecipientID),
		ThreadID:         p.ThreadID,
		DraftText:        p.DraftText,
		Media:            p.Media,
		Sticker:          p.Sticker,
		Borderless:       p.Borderless,
		DistributionType: int(p.DistributionType),
		StartingPosition: p.StartingPosition,
		DataType:         p.DataType,
		Attachment:       p.Attachment().Kind.String(),
	}
	if p.DataURI != nil {
		v.DataURI = p.DataURI.String()
	}
	return v
}

func newDecodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode an intent JSON (file or stdin) into its parameters",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			data, err := io.ReadAll(r)
			if err != nil {
				return err
			}
			in, err := conversation.ParseIntent(data)
			if err != nil {
				return fmt.Errorf("parse intent: %w", err)
			}
			if conversation.IsInvalid(in) {
				return fmt.Errorf("invalid intent: no %s", conversation.KeyRecipient)
			}
			p, err := conversation.Decode(in)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), viewOf(p))
		},
	}
	return cmd
}
