package pubsub

import (
	"context"
	"log/slog"

	conversation "github.com/roboricindustries/raycon-conversation/pkg/schemas/conversation/v1"
)

// FallbackPublisher stands in when no broker is configured. It logs and drops.
type FallbackPublisher struct {
	log *slog.Logger
}

func (p *FallbackPublisher) PublishIntent(ctx context.Context, in conversation.Intent, opts ...PublishOption) error {
	o := resolvePublishOptions(in, "", opts)
	p.log.Warn("FallbackPublisher: skipped publish",
		slog.String("key", o.routingKey),
		slog.String("target", in.Target),
	)
	return nil
}

func (p *FallbackPublisher) Close() error {
	return nil
}

func NewFallback(logger *slog.Logger) Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackPublisher{
		log: logger,
	}
}
