// Package config loads server settings from the environment. A .env file,
// when present, is loaded by main before parsing.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all environment-driven server settings. Host and port may be
// overridden by command-line flags.
type Config struct {
	Host string `env:"HOST" envDefault:"localhost"`
	Port int    `env:"PORT" envDefault:"8081"`

	// Twilio credentials for video room tokens. When unset the server
	// falls back to an insecure development token provider.
	TwilioAccountSID   string        `env:"TWILIO_ACCOUNT_SID"`
	TwilioAPIKeySID    string        `env:"TWILIO_API_KEY_SID"`
	TwilioAPIKeySecret string        `env:"TWILIO_API_KEY_SECRET"`
	VideoTokenTTL      time.Duration `env:"VIDEO_TOKEN_TTL" envDefault:"4h"`

	// Optional ngrok tunnel for exposing a development server publicly.
	NgrokEnabled   bool   `env:"NGROK_ENABLED"`
	NgrokAuthToken string `env:"NGROK_AUTHTOKEN"`
	NgrokDomain    string `env:"NGROK_DOMAIN"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// HasTwilioCredentials reports whether all Twilio settings are present.
func (c *Config) HasTwilioCredentials() bool {
	return c.TwilioAccountSID != "" && c.TwilioAPIKeySID != "" && c.TwilioAPIKeySecret != ""
}
