package pubsub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type ConnectionOptions struct {
	RetryAttempts int
	Delay         time.Duration
	Logger        *slog.Logger

	// Dial defaults to amqp.Dial.
	Dial func(url string) (*amqp.Connection, error)
}

const MaxDelay = 60 * time.Second

// RetryingDialer returns a RabbitMQConfig.Dialer that retries with
// exponential backoff. It respects context cancellation for graceful shutdown.
func RetryingDialer(opts ConnectionOptions) func(ctx context.Context, url string) (*amqp.Connection, error) {
	return func(ctx context.Context, url string) (*amqp.Connection, error) {
		return dialWithRetry(ctx, url, opts)
	}
}

func dialWithRetry(ctx context.Context, url string, cfg ConnectionOptions) (*amqp.Connection, error) {
	dial := cfg.Dial
	if dial == nil {
		dial = amqp.Dial
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for i := 1; i <= attempts; i++ {
		conn, err := dial(url)
		if err == nil {
			if i > 1 {
				logger.Info("rabbit connected", slog.Int("attempt", i))
			}
			return conn, nil
		}
		lastErr = err
		if i == attempts {
			break
		}

		// exponential backoff with cap
		sleep := cfg.Delay * time.Duration(math.Pow(2, float64(i-1)))
		if sleep > MaxDelay {
			sleep = MaxDelay
		}

		logger.Warn("rabbit dial failed",
			slog.Int("attempt", i),
			slog.Duration("sleep", sleep),
			slog.Any("error", err),
		)

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, errors.New("dial cancelled: " + ctx.Err().Error())
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w",
		attempts, lastErr)
}
