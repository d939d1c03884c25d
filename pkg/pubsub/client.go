package pubsub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var errConnClosed = errors.New("amqp connection closed")

// Client owns one connection and a single publish channel. Launchers open
// their own consume channels on the same connection.
type Client struct {
	config RabbitMQConfig
	logger *slog.Logger

	mu    sync.Mutex
	conn  *amqp.Connection
	pubCh *amqp.Channel
}

var _ Publisher = (*Client)(nil)

func (c *Client) Config() RabbitMQConfig { return c.config }

func NewClient(ctx context.Context, config RabbitMQConfig, logger *slog.Logger) (*Client, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("rabbitmq URL is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	host := ""
	if u, err := url.Parse(config.URL); err == nil {
		host = u.Host
	}
	logger = logger.With(slog.String("amqp_host", host))

	c := &Client{config: config, logger: logger}
	if err := c.connect(ctx); err != nil {
		logger.Error("dial failed", slog.Any("error", err))
		return nil, err
	}
	logger.Info("client ready", slog.String("exchange", config.DefaultIntentExchange))
	return c, nil
}

func dialer(config RabbitMQConfig) func(ctx context.Context, url string) (*amqp.Connection, error) {
	if config.Dialer != nil {
		return config.Dialer
	}
	return func(_ context.Context, u string) (*amqp.Connection, error) { return amqp.Dial(u) }
}

// connect dials, declares the intent exchanges and swaps the new
// connection in. The previous connection, if any, is closed.
func (c *Client) connect(ctx context.Context) error {
	timeoutSec := c.config.ConnTimeoutSeconds
	if timeoutSec <= 0 {
		timeoutSec = 30
	}
	dialCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSec)*time.Second)
	defer cancel()
	if err := dialCtx.Err(); err != nil {
		return fmt.Errorf("context done before connection attempt: %w", err)
	}

	conn, err := dialer(c.config)(dialCtx, c.config.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	if err := declareExchanges(conn, c.config); err != nil {
		_ = conn.Close()
		return err
	}

	c.mu.Lock()
	old, oldCh := c.conn, c.pubCh
	c.conn, c.pubCh = conn, nil
	c.mu.Unlock()

	_ = SafeClose(oldCh)
	if old != nil && !old.IsClosed() {
		_ = old.Close()
	}
	return nil
}

func declareExchanges(conn *amqp.Connection, config RabbitMQConfig) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = SafeClose(ch) }()

	for _, ex := range append([]string{config.DefaultIntentExchange}, config.Exchanges...) {
		if ex == "" {
			continue
		}
		if err := ch.ExchangeDeclare(ex, "topic", true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare exchange %q: %w", ex, err)
		}
	}
	return nil
}

// connection returns the live connection or errConnClosed.
func (c *Client) connection() (*amqp.Connection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.conn.IsClosed() {
		return nil, errConnClosed
	}
	return c.conn, nil
}

// publishChannelLocked returns the shared publish channel, reopening it after
// a channel-level error. c.mu must be held.
func (c *Client) publishChannelLocked() (*amqp.Channel, error) {
	if c.conn == nil || c.conn.IsClosed() {
		return nil, errConnClosed
	}
	if c.pubCh != nil && !c.pubCh.IsClosed() {
		return c.pubCh, nil
	}
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open publish channel: %w", err)
	}
	c.pubCh = ch
	return ch, nil
}

// Close closes the publish channel and the connection. Running launchers
// see their channel close and return.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = SafeClose(c.pubCh)
	c.pubCh = nil
	if c.conn != nil && !c.conn.IsClosed() {
		return c.conn.Close()
	}
	return nil
}
