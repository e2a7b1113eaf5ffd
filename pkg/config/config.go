// Package config loads banker configuration from the environment.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	HTTP    HTTPConfig
	Mercury MercuryConfig
	Wise    WiseConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// HTTPConfig controls the outbound client used for provider calls.
type HTTPConfig struct {
	Timeout time.Duration
}

type MercuryConfig struct {
	APIKey  string
	BaseURL string
}

type WiseConfig struct {
	APIToken string
	BaseURL  string
}

// Load reads configuration from the environment, honoring a local .env file
// when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		HTTP: HTTPConfig{
			Timeout: getDuration("HTTP_CLIENT_TIMEOUT", 30*time.Second),
		},
		Mercury: MercuryConfig{
			APIKey:  getEnv("MERCURY_API_KEY", ""),
			BaseURL: getEnv("MERCURY_BASE_URL", "https://api.mercury.com/api/v1"),
		},
		Wise: WiseConfig{
			APIToken: getEnv("WISE_API_TOKEN", ""),
			BaseURL:  getEnv("WISE_BASE_URL", "https://api.transferwise.com"),
		},
	}
}

// Validate checks that at least one provider credential is configured.
func (c *Config) Validate() error {
	if c.Mercury.APIKey == "" && c.Wise.APIToken == "" {
		return errors.New("config: no provider credentials configured (set MERCURY_API_KEY and/or WISE_API_TOKEN)")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
