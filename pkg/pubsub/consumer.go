package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/roboricindustries/raycon-conversation/pkg/schemas/common"
	conversation "github.com/roboricindustries/raycon-conversation/pkg/schemas/conversation/v1"
)

// ErrPoison marks an intent that can never be launched: undecodable body or
// no recipient. Poison intents are parked, never retried.
var ErrPoison = errors.New("poison intent")

// IntentFunc receives the decoded params of one intent. Returning an error
// retries the intent until MaxAttempts, then parks it.
type IntentFunc func(ctx context.Context, meta common.Meta, p conversation.Params) error

// LauncherOptions shape the launcher queue and its retry stage. Zero fields
// take the client config or built-in defaults.
//
// Topology, all on the default exchange except the main binding:
//
//	conversation.intents --open/popup--> Queue --reject--> Queue.retry
//	Queue.retry --ttl--> Queue
//	Queue.parked <-- poison and exhausted intents
type LauncherOptions struct {
	Queue          string
	Prefetch       int
	RetryTTL       time.Duration
	MaxAttempts    int
	HandlerTimeout time.Duration
}

func (o LauncherOptions) withDefaults(cfg RabbitMQConfig) LauncherOptions {
	o.Queue = FirstNonEmpty(o.Queue, FirstNonEmpty(cfg.DefaultLauncherQueue, "conversation.launcher"))
	if o.Prefetch <= 0 {
		o.Prefetch = max(cfg.ConsumerPrefetch, 1)
	}
	if o.HandlerTimeout <= 0 {
		o.HandlerTimeout = 10 * time.Second
	}
	return o
}

func (o LauncherOptions) retryQueue() string  { return o.Queue + ".retry" }
func (o LauncherOptions) parkedQueue() string { return o.Queue + ".parked" }
func (o LauncherOptions) retries() bool       { return o.RetryTTL > 0 && o.MaxAttempts > 0 }

// launcherQueueArgs returns the arguments of the main and retry queues.
// Rejected intents dead-letter into the retry queue and come back to the
// main queue when their TTL expires.
func launcherQueueArgs(o LauncherOptions) (main, retry amqp.Table) {
	if !o.retries() {
		return nil, nil
	}
	main = amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": o.retryQueue(),
	}
	retry = amqp.Table{
		"x-message-ttl":             o.RetryTTL.Milliseconds(),
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": o.Queue,
	}
	return main, retry
}

func declareLauncherTopology(ch *amqp.Channel, exchange string, o LauncherOptions) error {
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %q: %w", exchange, err)
	}
	mainArgs, retryArgs := launcherQueueArgs(o)
	if _, err := ch.QueueDeclare(o.Queue, true, false, false, false, mainArgs); err != nil {
		return fmt.Errorf("declare queue %q: %w", o.Queue, err)
	}
	for _, key := range []string{conversation.RoutingKeyOpen, conversation.RoutingKeyPopup} {
		if err := ch.QueueBind(o.Queue, key, exchange, false, nil); err != nil {
			return fmt.Errorf("bind %q: %w", key, err)
		}
	}
	if o.retries() {
		if _, err := ch.QueueDeclare(o.retryQueue(), true, false, false, false, retryArgs); err != nil {
			return fmt.Errorf("declare queue %q: %w", o.retryQueue(), err)
		}
	}
	if _, err := ch.QueueDeclare(o.parkedQueue(), true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %q: %w", o.parkedQueue(), err)
	}
	return nil
}

// decodeDelivery turns a delivery body into envelope meta and params.
func decodeDelivery(d amqp.Delivery, logger *slog.Logger) (common.Meta, conversation.Params, error) {
	var env common.GenericEnvelope[conversation.Intent]
	if err := json.Unmarshal(d.Body, &env); err != nil {
		return common.Meta{}, conversation.Params{}, fmt.Errorf("%w: %v", ErrPoison, err)
	}
	if conversation.IsInvalid(env.Data) {
		return env.Meta, conversation.Params{}, fmt.Errorf("%w: no %s", ErrPoison, conversation.KeyRecipient)
	}
	p, err := conversation.DecodeWith(env.Data, logger)
	if err != nil {
		return env.Meta, conversation.Params{}, fmt.Errorf("%w: %v", ErrPoison, err)
	}
	return env.Meta, p, nil
}

type outcome int

const (
	outcomeAck outcome = iota
	outcomeRetry
	outcomeRequeue
	outcomePark
)

// settle decides what happens to d after its handler returned err.
func (o LauncherOptions) settle(d amqp.Delivery, err error) (outcome, string) {
	switch {
	case err == nil:
		return outcomeAck, ""
	case errors.Is(err, ErrPoison):
		return outcomePark, ParkReasonPoison
	case !o.retries():
		return outcomeRequeue, ""
	case DeathCount(d, o.Queue)+1 >= o.MaxAttempts:
		return outcomePark, ParkReasonExhausted
	default:
		return outcomeRetry, ""
	}
}

// RunLauncher consumes intents until ctx is done, reconnecting with jittered
// backoff whenever the channel or connection drops.
func (c *Client) RunLauncher(ctx context.Context, opts LauncherOptions, h IntentFunc) error {
	o := opts.withDefaults(c.config)
	base := Dsec(c.config.ReconnectBackoffBaseSeconds, 1)
	capd := Dsec(c.config.ReconnectBackoffCapSeconds, 30)
	backoff := base

	for {
		started, err := c.consumeLauncher(ctx, o, h)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if started {
			backoff = base
		}
		wait := JitteredDelay(backoff, capd, c.config.ReconnectJitterPercent)
		c.logger.Error("launcher stopped, restarting",
			slog.String("queue", o.Queue),
			slog.Any("error", err),
			slog.Duration("retry_in", wait),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff = min(backoff*2, capd)

		if _, err := c.connection(); err != nil {
			if err := c.connect(ctx); err != nil {
				c.logger.Error("reconnect failed", slog.Any("error", err))
				continue
			}
			c.logger.Info("reconnected")
		}
	}
}

// consumeLauncher runs one consume session. started reports whether the
// session got as far as receiving deliveries.
func (c *Client) consumeLauncher(ctx context.Context, o LauncherOptions, h IntentFunc) (started bool, err error) {
	conn, err := c.connection()
	if err != nil {
		return false, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return false, fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = SafeClose(ch) }()

	if err := ch.Qos(o.Prefetch, 0, false); err != nil {
		return false, fmt.Errorf("qos: %w", err)
	}
	if err := declareLauncherTopology(ch, FirstNonEmpty(c.config.DefaultIntentExchange, conversation.Exchange), o); err != nil {
		return false, err
	}
	msgs, err := ch.Consume(o.Queue, "", false, false, false, false, nil)
	if err != nil {
		return false, fmt.Errorf("consume %q: %w", o.Queue, err)
	}
	closed := ch.NotifyClose(make(chan *amqp.Error, 1))

	c.logger.Info("launcher started",
		slog.String("queue", o.Queue),
		slog.Int("prefetch", o.Prefetch),
		slog.Bool("retries", o.retries()),
	)

	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case aerr, ok := <-closed:
			drainRequeue(msgs)
			if !ok || aerr == nil {
				return true, errConnClosed
			}
			return true, aerr
		case d, ok := <-msgs:
			if !ok {
				return true, errConnClosed
			}
			c.handleIntent(ctx, ch, o, h, d)
		}
	}
}

func (c *Client) handleIntent(ctx context.Context, ch *amqp.Channel, o LauncherOptions, h IntentFunc, d amqp.Delivery) {
	meta, p, err := decodeDelivery(d, c.logger)
	if err == nil {
		hctx, cancel := context.WithTimeout(ctx, o.HandlerTimeout)
		err = h(hctx, meta, p)
		cancel()
	}

	log := c.logger.With(slog.String("queue", o.Queue), slog.String("id", d.MessageId))
	switch out, reason := o.settle(d, err); out {
	case outcomeAck:
		_ = d.Ack(false)
	case outcomeRetry:
		log.Warn("intent failed, retrying", slog.Any("error", err), slog.Int("attempt", DeathCount(d, o.Queue)+1))
		_ = d.Nack(false, false)
	case outcomeRequeue:
		log.Warn("intent failed, requeueing", slog.Any("error", err))
		_ = d.Nack(false, true)
	case outcomePark:
		log.Error("parking intent", slog.String("reason", reason), slog.Any("error", err))
		if perr := park(ctx, ch, o.parkedQueue(), reason, d); perr != nil {
			log.Error("park failed, requeueing", slog.Any("error", perr))
			_ = d.Nack(false, true)
			return
		}
		_ = d.Ack(false)
	}
}
