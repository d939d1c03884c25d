package pubsub

import (
	"context"
	"math/rand"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

func Dsec(v, def int) time.Duration {
	if v <= 0 {
		return time.Duration(def) * time.Second
	}
	return time.Duration(v) * time.Second
}

// JitteredDelay spreads base by ±jitterPct percent and caps the result.
func JitteredDelay(base, cap time.Duration, jitterPct int) time.Duration {
	if jitterPct <= 0 {
		jitterPct = 25
	}
	delta := (rand.Float64()*2 - 1) * float64(jitterPct) / 100.0
	wait := time.Duration(float64(base) * (1 + delta))
	if wait < 0 {
		wait = base
	}
	return min(wait, cap)
}

func FirstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// DeathCount reads how often d was dead-lettered out of queue.
func DeathCount(d amqp.Delivery, queue string) int {
	list, _ := d.Headers["x-death"].([]any)
	for _, it := range list {
		entry, ok := it.(amqp.Table)
		if !ok {
			continue
		}
		if q, _ := entry["queue"].(string); q != queue {
			continue
		}
		if n, ok := entry["count"].(int64); ok {
			return int(n)
		}
	}
	return 0
}

const (
	ParkReasonExhausted = "retries_exhausted"
	ParkReasonPoison    = "poison"
)

// parkHeaders copies h and records why the intent was parked.
func parkHeaders(h amqp.Table, reason string) amqp.Table {
	out := make(amqp.Table, len(h)+1)
	for k, v := range h {
		out[k] = v
	}
	out["x-park-reason"] = reason
	return out
}

// park copies d onto the parked queue through the default exchange.
func park(ctx context.Context, ch *amqp.Channel, queue, reason string, d amqp.Delivery) error {
	return ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:   FirstNonEmpty(d.ContentType, "application/json"),
		Body:          d.Body,
		Headers:       parkHeaders(d.Headers, reason),
		MessageId:     d.MessageId,
		CorrelationId: d.CorrelationId,
		DeliveryMode:  amqp.Persistent,
		Timestamp:     time.Now(),
		Type:          d.Type,
		AppId:         d.AppId,
	})
}

// drainRequeue nacks whatever is already buffered so it is redelivered sooner.
func drainRequeue(msgs <-chan amqp.Delivery) {
	for {
		select {
		case d, ok := <-msgs:
			if !ok {
				return
			}
			_ = d.Nack(false, true)
		default:
			return
		}
	}
}

func SafeClose(ch *amqp.Channel) error {
	if ch == nil {
		return nil
	}
	defer func() { _ = recover() }()
	return ch.Close()
}
