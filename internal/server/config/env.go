package config

import (
	"time"

	"github.com/dmitrijs2005/postbox/internal/flagx"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// envPrefix namespaces every variable, e.g. POSTBOX_DATABASE_DSN.
const envPrefix = "POSTBOX"

// EnvConfig mirrors Config for envconfig. Unset variables stay zero and do
// not override earlier layers.
type EnvConfig struct {
	EndpointAddrHTTP             string        `envconfig:"ENDPOINT_ADDR_HTTP"`
	DatabaseDSN                  string        `envconfig:"DATABASE_DSN"`
	SecretKey                    string        `envconfig:"SECRET_KEY"`
	AccessTokenValidityDuration  time.Duration `envconfig:"ACCESS_TOKEN_VALIDITY_DURATION"`
	RefreshTokenValidityDuration time.Duration `envconfig:"REFRESH_TOKEN_VALIDITY_DURATION"`
	CORSOrigins                  []string      `envconfig:"CORS_ORIGINS"`
	LogLevel                     string        `envconfig:"LOG_LEVEL"`
}

// parseEnv loads a dotenv file (the one named by -env-file, or ./.env when
// present) and then overlays config with POSTBOX_* variables. Variables
// already present in the process environment win over the dotenv file.
func parseEnv(config *Config, args []string) {
	if envFile := flagx.EnvFileFlag(args); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			panic(err)
		}
	} else {
		// .env is optional
		_ = godotenv.Load()
	}

	var c EnvConfig
	if err := envconfig.Process(envPrefix, &c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)
	if c.AccessTokenValidityDuration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration
	}
	if c.RefreshTokenValidityDuration > 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration
	}
	if len(c.CORSOrigins) > 0 {
		config.CORSOrigins = c.CORSOrigins
	}
}
