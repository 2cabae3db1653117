// Package config loads server settings from a .env file and environment
// variables.
package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	ListenAddr string `mapstructure:"LISTEN_ADDR"`

	// TurnTimeLimit bounds a player's turn; zero disables the timer.
	TurnTimeLimit time.Duration `mapstructure:"TURN_TIME_LIMIT"`

	// ReconnectGrace is how long a dropped identity survives.
	ReconnectGrace time.Duration `mapstructure:"RECONNECT_GRACE"`

	// NATSURL enables lifecycle event publishing when set.
	NATSURL string `mapstructure:"NATS_URL"`

	// ConsulAddr enables service registration when set.
	ConsulAddr  string `mapstructure:"CONSUL_ADDR"`
	ServiceName string `mapstructure:"SERVICE_NAME"`
}

// Load reads configuration, falling back to defaults when neither the .env
// file nor the environment provides a value.
func Load() (*Config, error) {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	viper.SetDefault("LISTEN_ADDR", ":3001")
	viper.SetDefault("TURN_TIME_LIMIT", 10*time.Second)
	viper.SetDefault("RECONNECT_GRACE", 30*time.Second)
	viper.SetDefault("NATS_URL", "")
	viper.SetDefault("CONSUL_ADDR", "")
	viper.SetDefault("SERVICE_NAME", "ashtapada")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("[Config] No .env file found, using environment variables")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
