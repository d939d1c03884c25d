package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roboricindustries/raycon-conversation/pkg/config"
	"github.com/roboricindustries/raycon-conversation/pkg/pubsub"
	"github.com/roboricindustries/raycon-conversation/pkg/schemas/common"
	conversation "github.com/roboricindustries/raycon-conversation/pkg/schemas/conversation/v1"
)

func newListenCommand(load func() (*config.Config, *slog.Logger, error)) *cobra.Command {
	var (
		retryTTL    time.Duration
		maxAttempts int
	)
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Consume conversation intents and print their parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			rc := cfg.RabbitMQ()
			if rc.URL == "" {
				return errors.New("CONVINTENT_AMQP_URL is not set")
			}
			rc.Dialer = pubsub.RetryingDialer(pubsub.ConnectionOptions{
				RetryAttempts: cfg.DialAttempts,
				Delay:         time.Second,
				Logger:        logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client, err := pubsub.NewClient(ctx, rc, logger)
			if err != nil {
				return err
			}
			defer client.Close()

			out := cmd.OutOrStdout()
			opts := pubsub.LauncherOptions{RetryTTL: retryTTL, MaxAttempts: maxAttempts}
			err = client.RunLauncher(ctx, opts, func(_ context.Context, m common.Meta, p conversation.Params) error {
				logger.Info("intent received", slog.String("id", m.ID), slog.String("recipient", string(p.RecipientID)))
				return writeJSON(out, viewOf(p))
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().DurationVar(&retryTTL, "retry-ttl", 5*time.Second, "Delay before a failed intent is retried")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 3, "Attempts before an intent is parked, 0 disables the retry queue")
	return cmd
}
