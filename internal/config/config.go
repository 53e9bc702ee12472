package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	BotToken    string `env:"BOT_TOKEN,required"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Label rendering service (PDF thermal labels)
	LabelServiceURL string `env:"LABEL_SERVICE_URL"`

	// Operator channel for security alerts
	OperatorChatID int64 `env:"OPERATOR_CHAT_ID"`

	// Owner gets the full admin capability set on startup
	OwnerChatID int64 `env:"OWNER_CHAT_ID"`

	// Bot behavior
	DropPendingUpdates bool `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
