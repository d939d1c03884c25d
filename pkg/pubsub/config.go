package pubsub

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"

	conversation "github.com/roboricindustries/raycon-conversation/pkg/schemas/conversation/v1"
)

// RabbitMQConfig defines client config and launcher topology defaults
type RabbitMQConfig struct {
	URL                         string
	Producer                    string // stamped into envelope meta and AppId
	Exchanges                   []string
	ConsumerPrefetch            int
	ConnTimeoutSeconds          int
	ReconnectBackoffBaseSeconds int
	ReconnectBackoffCapSeconds  int
	ReconnectJitterPercent      int
	Dialer                      func(ctx context.Context, url string) (*amqp.Connection, error)

	DefaultIntentExchange string
	DefaultLauncherQueue  string
}

// DefaultConfig returns the conversation launcher topology with no URL set.
func DefaultConfig() RabbitMQConfig {
	return RabbitMQConfig{
		Producer:                    "convintent",
		ConsumerPrefetch:            10,
		ConnTimeoutSeconds:          30,
		ReconnectBackoffBaseSeconds: 1,
		ReconnectBackoffCapSeconds:  30,
		ReconnectJitterPercent:      25,
		DefaultIntentExchange:       conversation.Exchange,
		DefaultLauncherQueue:        "conversation.launcher",
	}
}
