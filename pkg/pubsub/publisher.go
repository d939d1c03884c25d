package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/roboricindustries/raycon-conversation/pkg/schemas/common"
	conversation "github.com/roboricindustries/raycon-conversation/pkg/schemas/conversation/v1"
)

// Publisher ships conversation intents to whoever launches the screen.
type Publisher interface {
	PublishIntent(ctx context.Context, in conversation.Intent, opts ...PublishOption) error
	Close() error
}

var ErrInvalidIntent = errors.New("intent has no recipient")

type publishOptions struct {
	exchange      string
	routingKey    string
	correlationID string
}

type PublishOption func(*publishOptions)

func WithExchange(exchange string) PublishOption {
	return func(o *publishOptions) { o.exchange = exchange }
}

func WithRoutingKey(key string) PublishOption {
	return func(o *publishOptions) { o.routingKey = key }
}

func WithCorrelationID(id string) PublishOption {
	return func(o *publishOptions) { o.correlationID = id }
}

func resolvePublishOptions(in conversation.Intent, defaultExchange string, opts []PublishOption) publishOptions {
	meta := in.EventMeta()
	o := publishOptions{
		exchange:   FirstNonEmpty(defaultExchange, meta.Exchange),
		routingKey: meta.RoutingKey,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// IntentEnvelope wraps in with fresh metadata.
func IntentEnvelope(in conversation.Intent, producer, correlationID string) common.Envelope {
	return common.Envelope{
		Meta: common.NewMeta(conversation.EventType, producer, correlationID),
		Data: in,
	}
}

// PublishIntent publishes the intent as a JSON envelope. Intents without a
// recipient are refused so consumers never see them.
func (c *Client) PublishIntent(ctx context.Context, in conversation.Intent, opts ...PublishOption) error {
	if conversation.IsInvalid(in) {
		return ErrInvalidIntent
	}
	o := resolvePublishOptions(in, c.config.DefaultIntentExchange, opts)
	msg, id, err := c.publishing(in, o)
	if err != nil {
		return err
	}

	c.mu.Lock()
	ch, err := c.publishChannelLocked()
	if err == nil {
		err = ch.PublishWithContext(ctx, o.exchange, o.routingKey, false, false, msg)
	}
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("publish intent %s: %w", id, err)
	}

	c.logger.Info("intent published",
		slog.String("key", o.routingKey),
		slog.String("exchange", o.exchange),
		slog.String("id", id),
	)
	return nil
}

// PublishIntentConfirmed publishes like PublishIntent on a short-lived
// confirm-mode channel and waits for the broker ack.
func (c *Client) PublishIntentConfirmed(ctx context.Context, in conversation.Intent, opts ...PublishOption) error {
	if conversation.IsInvalid(in) {
		return ErrInvalidIntent
	}
	o := resolvePublishOptions(in, c.config.DefaultIntentExchange, opts)
	msg, id, err := c.publishing(in, o)
	if err != nil {
		return err
	}

	conn, err := c.connection()
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = SafeClose(ch) }()

	if err := ch.Confirm(false); err != nil {
		return fmt.Errorf("confirm mode: %w", err)
	}
	dc, err := ch.PublishWithDeferredConfirmWithContext(ctx, o.exchange, o.routingKey, false, false, msg)
	if err != nil {
		return fmt.Errorf("publish intent %s: %w", id, err)
	}
	acked, err := dc.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !acked {
		return fmt.Errorf("intent %s nacked by broker", id)
	}
	c.logger.Info("intent confirmed", slog.String("key", o.routingKey), slog.String("id", id))
	return nil
}

func (c *Client) publishing(in conversation.Intent, o publishOptions) (amqp.Publishing, string, error) {
	env := IntentEnvelope(in, c.config.Producer, o.correlationID)
	body, err := json.Marshal(env)
	if err != nil {
		return amqp.Publishing{}, "", fmt.Errorf("marshal envelope: %w", err)
	}
	return amqp.Publishing{
		ContentType:   "application/json",
		Body:          body,
		DeliveryMode:  amqp.Persistent,
		MessageId:     env.Meta.ID,
		CorrelationId: env.Meta.CorrelationID,
		Type:          env.Meta.Type,
		Timestamp:     env.Meta.Time,
		AppId:         c.config.Producer,
	}, env.Meta.ID, nil
}
