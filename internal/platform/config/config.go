package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string   `env:"SERVICE_NAME" envDefault:"class-consensus" validate:"required"`
	HTTPPort     string   `env:"HTTP_PORT" envDefault:"8080" validate:"required,numeric"`
	PostgresDSN  string   `env:"POSTGRES_DSN"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`

	ProfessorAddress string `env:"PROFESSOR_ADDRESS" validate:"required"`
	// Exactly one of TASecretHash (0x keccak-256 digest) or TASecret is set.
	TASecretHash string   `env:"TA_SECRET_HASH" validate:"required_without=TASecret"`
	TASecret     string   `env:"TA_SECRET" validate:"excluded_with=TASecretHash"`
	Categories   []string `env:"CATEGORIES" envSeparator:"," envDefault:"DEMO,PRESENTATION,PAPER PRESENTATION,SMART CONTRACT PROTOCOL" validate:"min=1,dive,required"`

	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"2s" validate:"gt=0"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100" validate:"gt=0,lte=1000"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json text"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// UsesPostgres reports whether a durable store is configured.
func (c Config) UsesPostgres() bool {
	return c.PostgresDSN != ""
}

func (c *Config) normalize() {
	c.ServiceName = strings.TrimSpace(c.ServiceName)
	c.HTTPPort = strings.TrimSpace(c.HTTPPort)
	c.PostgresDSN = strings.TrimSpace(c.PostgresDSN)
	c.ProfessorAddress = strings.TrimSpace(c.ProfessorAddress)
	c.TASecretHash = strings.TrimSpace(c.TASecretHash)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.KafkaBrokers = compact(c.KafkaBrokers)
	c.Categories = compact(c.Categories)
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value != "" {
			out = append(out, value)
		}
	}
	return out
}
