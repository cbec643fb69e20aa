package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {

	// Test cases
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK", args: []string{"-a", "http://10.0.0.1:9090/api/v1", "-t", "30"}, expectPanic: false,
			expected: &Config{ServerURL: "http://10.0.0.1:9090/api/v1", RequestTimeout: 30 * time.Second}},
		{name: "Test2 timeout untouched", args: []string{"-a", "http://h/api/v1"}, expectPanic: false,
			expected: &Config{ServerURL: "http://h/api/v1", RequestTimeout: 1500 * time.Millisecond}},
		{name: "Test3 status interval", args: []string{"-i", "5"}, expectPanic: false,
			expected: &Config{RequestTimeout: 1500 * time.Millisecond, StatusCheckInterval: 5 * time.Second}},
		{name: "Test4 incorrect timeout", args: []string{"-a", "http://h/api/v1", "-t", "abc"}, expectPanic: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{RequestTimeout: 1500 * time.Millisecond}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config, tt.args) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config, tt.args) })
			}
		})
	}
}
