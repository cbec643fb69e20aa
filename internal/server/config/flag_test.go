package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{
			"-a", "127.0.0.1:9090", "-d", "db", "-s", "secret",
			"-t", "1", "-r", "3", "-o", "https://a.example/, https://b.example", "-l", "debug",
		}, expected: &Config{
			EndpointAddrHTTP:             "127.0.0.1:9090",
			DatabaseDSN:                  "db",
			SecretKey:                    "secret",
			AccessTokenValidityDuration:  1 * time.Minute,
			RefreshTokenValidityDuration: 3 * time.Minute,
			CORSOrigins:                  []string{"https://a.example", "https://b.example"},
			LogLevel:                     "debug",
		}},
		{name: "unrelated flags ignored", args: []string{"-c", "cfg.json", "-env-file", "x.env", "-a", ":1"},
			expected: &Config{
				EndpointAddrHTTP:             ":1",
				AccessTokenValidityDuration:  90 * time.Second,
				RefreshTokenValidityDuration: time.Hour,
			}},
		{name: "bad int panics", args: []string{"-t", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{
				AccessTokenValidityDuration:  90 * time.Second,
				RefreshTokenValidityDuration: time.Hour,
			}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config, tt.args) })
				return
			}

			require.NotPanics(t, func() { parseFlags(config, tt.args) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
