// Package config handles configuration for the server component,
// including defaults, JSON overlay, environment variables, and
// command-line flags.
package config

import "time"

// Config holds runtime settings for the databoard server.
//
// Fields:
//   - EndpointAddr: bind address for the HTTP endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). An empty DSN selects the
//     in-memory repository, for development and tests.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test
//     defaults in prod.
//   - TokenValidityDuration: lifetime of a regular session token.
//   - RememberMeValidityDuration: lifetime when the caller logs in with
//     rememberMe.
//   - BcryptCost: work factor for password hashing.
type Config struct {
	EndpointAddr               string
	DatabaseDSN                string
	SecretKey                  string
	TokenValidityDuration      time.Duration
	RememberMeValidityDuration time.Duration
	BcryptCost                 int
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":4000"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.TokenValidityDuration = 4 * time.Hour
	c.RememberMeValidityDuration = 7 * 24 * time.Hour
	c.BcryptCost = 10
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment (including a .env file if
// present), and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
