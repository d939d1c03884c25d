package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/roboricindustries/raycon-conversation/pkg/pubsub"
)

// Config is read from the process environment, optionally seeded by a .env file.
// Variables already set in the environment win over the file.
type Config struct {
	AMQPURL          string   `env:"CONVINTENT_AMQP_URL"`
	Producer         string   `env:"CONVINTENT_PRODUCER"          envDefault:"convintent"`
	Exchange         string   `env:"CONVINTENT_EXCHANGE"`
	ExtraExchanges   []string `env:"CONVINTENT_EXTRA_EXCHANGES"   envSeparator:","`
	Queue            string   `env:"CONVINTENT_QUEUE"`
	ConsumerPrefetch int      `env:"CONVINTENT_PREFETCH"          envDefault:"10"`
	ConnTimeoutSec   int      `env:"CONVINTENT_CONN_TIMEOUT"      envDefault:"30"`
	DialAttempts     int      `env:"CONVINTENT_DIAL_ATTEMPTS"     envDefault:"3"`
	BackoffBaseSec   int      `env:"CONVINTENT_BACKOFF_BASE"      envDefault:"1"`
	BackoffCapSec    int      `env:"CONVINTENT_BACKOFF_CAP"       envDefault:"30"`
	JitterPercent    int      `env:"CONVINTENT_JITTER_PERCENT"    envDefault:"25"`
	LogLevel         string   `env:"CONVINTENT_LOG_LEVEL"         envDefault:"info"`
}

// Load reads dotenvPath (ignored when missing) and then the environment.
func Load(dotenvPath string) (*Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RabbitMQ converts the loaded values onto the pubsub defaults.
func (c *Config) RabbitMQ() pubsub.RabbitMQConfig {
	rc := pubsub.DefaultConfig()
	rc.URL = c.AMQPURL
	rc.Producer = pubsub.FirstNonEmpty(c.Producer, rc.Producer)
	rc.DefaultIntentExchange = pubsub.FirstNonEmpty(c.Exchange, rc.DefaultIntentExchange)
	rc.DefaultLauncherQueue = pubsub.FirstNonEmpty(c.Queue, rc.DefaultLauncherQueue)
	rc.Exchanges = c.ExtraExchanges
	rc.ConsumerPrefetch = c.ConsumerPrefetch
	rc.ConnTimeoutSeconds = c.ConnTimeoutSec
	rc.ReconnectBackoffBaseSeconds = c.BackoffBaseSec
	rc.ReconnectBackoffCapSeconds = c.BackoffCapSec
	rc.ReconnectJitterPercent = c.JitterPercent
	return rc
}

// Level maps LogLevel onto slog; unknown values mean info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
