package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the postbox CLI.
//
// Fields:
//   - ServerURL: base URL of the HTTP API, e.g. "http://127.0.0.1:8080/api/v1".
//   - RequestTimeout: upper bound for a single API call.
//   - StatusCheckInterval: how often the CLI pings the server to track
//     online/offline state.
type Config struct {
	ServerURL           string
	RequestTimeout      time.Duration
	StatusCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080/api/v1"
	c.RequestTimeout = 10 * time.Second
	c.StatusCheckInterval = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	args := os.Args[1:]

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
