package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roboricindustries/raycon-conversation/pkg/config"
	"github.com/roboricindustries/raycon-conversation/pkg/pubsub"
)

func newPublishCommand(load func() (*config.Config, *slog.Logger, error)) *cobra.Command {
	var (
		opts        buildOptions
		correlation string
		confirm     bool
		timeout     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Build an intent and publish it to the conversation exchange",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := opts.intent(cmd.Flags().Changed)
			if err != nil {
				return err
			}
			cfg, logger, err := load()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			rc := cfg.RabbitMQ()
			if rc.URL == "" {
				pub := pubsub.NewFallback(logger)
				defer pub.Close()
				return pub.PublishIntent(ctx, in, pubsub.WithCorrelationID(correlation))
			}
			rc.Dialer = pubsub.RetryingDialer(pubsub.ConnectionOptions{
				RetryAttempts: cfg.DialAttempts,
				Delay:         time.Second,
				Logger:        logger,
			})
			client, err := pubsub.NewClient(ctx, rc, logger)
			if err != nil {
				return err
			}
			defer client.Close()

			if confirm {
				return client.PublishIntentConfirmed(ctx, in, pubsub.WithCorrelationID(correlation))
			}
			return client.PublishIntent(ctx, in, pubsub.WithCorrelationID(correlation))
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVar(&correlation, "correlation-id", "", "Correlation id, defaults to the event id")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "Wait for the broker to confirm the publish")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Overall publish timeout")
	return cmd
}
