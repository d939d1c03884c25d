package pubsub

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	conversation "github.com/roboricindustries/raycon-conversation/pkg/schemas/conversation/v1"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func intentDelivery(t *testing.T, in conversation.Intent) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(IntentEnvelope(in, "test", "corr-1"))
	require.NoError(t, err)
	return amqp.Delivery{Body: body, ContentType: "application/json"}
}

func TestDecodeDelivery(t *testing.T) {
	draft := "see you"
	in, err := conversation.NewPopupBuilder("R1", 42).
		WithDraftText(&draft).
		WithStartingPosition(3).
		Build()
	require.NoError(t, err)

	meta, p, err := decodeDelivery(intentDelivery(t, in), quietLogger())
	require.NoError(t, err)
	assert.Equal(t, conversation.EventType, meta.Type)
	assert.Equal(t, "corr-1", meta.CorrelationID)
	assert.Equal(t, conversation.RecipientID("R1"), p.RecipientID)
	assert.Equal(t, int64(42), p.ThreadID)
	require.NotNil(t, p.DraftText)
	assert.Equal(t, draft, *p.DraftText)
	assert.Equal(t, 3, p.StartingPosition)
}

func TestDecodeDelivery_Poison(t *testing.T) {
	_, _, err := decodeDelivery(amqp.Delivery{Body: []byte("{not json")}, quietLogger())
	assert.ErrorIs(t, err, ErrPoison)

	_, _, err = decodeDelivery(intentDelivery(t, conversation.Intent{Target: conversation.ScreenConversation}), quietLogger())
	assert.ErrorIs(t, err, ErrPoison)
	assert.Contains(t, err.Error(), conversation.KeyRecipient)
}

func TestLauncherOptions_Defaults(t *testing.T) {
	cfg := DefaultConfig()
	o := LauncherOptions{}.withDefaults(cfg)

	assert.Equal(t, "conversation.launcher", o.Queue)
	assert.Equal(t, "conversation.launcher.retry", o.retryQueue())
	assert.Equal(t, "conversation.launcher.parked", o.parkedQueue())
	assert.Equal(t, cfg.ConsumerPrefetch, o.Prefetch)
	assert.Equal(t, 10*time.Second, o.HandlerTimeout)
	assert.False(t, o.retries())

	o = LauncherOptions{Queue: "q", Prefetch: 2, RetryTTL: time.Second, MaxAttempts: 3}.withDefaults(RabbitMQConfig{})
	assert.Equal(t, "q", o.Queue)
	assert.Equal(t, 2, o.Prefetch)
	assert.True(t, o.retries())

	assert.Equal(t, 1, LauncherOptions{}.withDefaults(RabbitMQConfig{}).Prefetch)
}

func TestLauncherQueueArgs(t *testing.T) {
	mainArgs, retryArgs := launcherQueueArgs(LauncherOptions{Queue: "q"})
	assert.Nil(t, mainArgs)
	assert.Nil(t, retryArgs)

	mainArgs, retryArgs = launcherQueueArgs(LauncherOptions{Queue: "q", RetryTTL: 5 * time.Second, MaxAttempts: 3})
	assert.Equal(t, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": "q.retry",
	}, mainArgs)
	assert.Equal(t, amqp.Table{
		"x-message-ttl":             int64(5000),
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": "q",
	}, retryArgs)
}

func TestSettle(t *testing.T) {
	withRetry := LauncherOptions{Queue: "q", RetryTTL: time.Second, MaxAttempts: 3}
	died := func(n int64) amqp.Delivery {
		return amqp.Delivery{Headers: amqp.Table{
			"x-death": []any{amqp.Table{"queue": "q", "count": n}},
		}}
	}
	boom := errors.New("screen busy")

	tests := []struct {
		name   string
		opts   LauncherOptions
		d      amqp.Delivery
		err    error
		want   outcome
		reason string
	}{
		{"ok", withRetry, amqp.Delivery{}, nil, outcomeAck, ""},
		{"poison parks without retry", withRetry, amqp.Delivery{}, ErrPoison, outcomePark, ParkReasonPoison},
		{"wrapped poison", LauncherOptions{Queue: "q"}, amqp.Delivery{}, errors.Join(ErrPoison, boom), outcomePark, ParkReasonPoison},
		{"no retry stage requeues", LauncherOptions{Queue: "q"}, died(7), boom, outcomeRequeue, ""},
		{"first failure retries", withRetry, amqp.Delivery{}, boom, outcomeRetry, ""},
		{"second failure retries", withRetry, died(1), boom, outcomeRetry, ""},
		{"last attempt parks", withRetry, died(2), boom, outcomePark, ParkReasonExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := tt.opts.settle(tt.d, tt.err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.reason, reason)
		})
	}
}
