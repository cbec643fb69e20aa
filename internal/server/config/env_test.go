package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseEnv_FromProcessEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("POSTBOX_ENDPOINT_ADDR_HTTP", ":7000")
	t.Setenv("POSTBOX_ACCESS_TOKEN_VALIDITY_DURATION", "90s")
	t.Setenv("POSTBOX_CORS_ORIGINS", "https://x.example,https://y.example")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg, nil)

	assert.Equal(t, ":7000", cfg.EndpointAddrHTTP)
	assert.Equal(t, 90*time.Second, cfg.AccessTokenValidityDuration)
	assert.Equal(t, []string{"https://x.example", "https://y.example"}, cfg.CORSOrigins)
	assert.Equal(t, "secretKey", cfg.SecretKey, "unset variables keep earlier values")
}

func Test_parseEnv_DotenvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("POSTBOX_SECRET_KEY=from-dotenv\nPOSTBOX_LOG_LEVEL=warn\n"), 0o600))

	// register for cleanup, then drop so the dotenv file can supply them
	t.Setenv("POSTBOX_SECRET_KEY", "")
	t.Setenv("POSTBOX_LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("POSTBOX_SECRET_KEY"))
	require.NoError(t, os.Unsetenv("POSTBOX_LOG_LEVEL"))

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg, []string{"-env-file", envFile})

	assert.Equal(t, "from-dotenv", cfg.SecretKey)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func Test_parseEnv_MissingDotenvFilePanics(t *testing.T) {
	cfg := &Config{}
	require.Panics(t, func() { parseEnv(cfg, []string{"-env-file", filepath.Join(t.TempDir(), "absent.env")}) })
}

func Test_parseEnv_BadDurationPanics(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("POSTBOX_REFRESH_TOKEN_VALIDITY_DURATION", "forever")

	cfg := &Config{}
	require.Panics(t, func() { parseEnv(cfg, nil) })
}
