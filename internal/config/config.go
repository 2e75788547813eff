package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	LedgerBaseURL string
	AccessToken   string
	LocationID    string
	ListenAddr    string

	MaxRetries    uint64
	RetryInterval time.Duration
}

// Load reads the process configuration from the environment. The location id
// is optional here: when absent, main resolves it once through the location
// directory and injects the result into the cart core.
func Load() (Config, error) {
	cfg := Config{
		LedgerBaseURL: getenv("LEDGER_BASE_URL", "https://connect.squareupsandbox.com"),
		AccessToken:   os.Getenv("LEDGER_ACCESS_TOKEN"),
		LocationID:    os.Getenv("LEDGER_LOCATION_ID"),
		ListenAddr:    getenv("LISTEN_ADDR", ":8080"),
		MaxRetries:    3,
		RetryInterval: 250 * time.Millisecond,
	}

	if cfg.AccessToken == "" {
		return Config{}, errors.New("LEDGER_ACCESS_TOKEN is not set")
	}

	if v := os.Getenv("LEDGER_MAX_RETRIES"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return Config{}, fmt.Errorf("LEDGER_MAX_RETRIES: %w", err)
		}
		cfg.MaxRetries = n
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
