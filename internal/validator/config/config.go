// Package config handles configuration for the validator component,
// including defaults, JSON overlay, command-line flags and environment
// variables holding credentials.
package config

import "time"

// Config holds runtime settings for the FlightGuard validator.
//
// Fields:
//   - DatabaseDSN: sqlite file path, or a postgres:// DSN (pgx).
//   - NfzServerCommand: command line launching the NFZ tool server.
//   - OpenAipAPIKey: passed to the NFZ server process environment.
//   - GeminiAPIKey / ReportModel: text-synthesis backend settings.
//   - NfzTimeout / ReportTimeout / UploadTimeout: per-call deadlines for the
//     external boundaries.
//   - S3RootUser / S3RootPassword: credentials for the S3-compatible backend.
//   - S3Bucket / S3Region / S3BaseEndpoint / S3KeyPrefix: object storage settings.
type Config struct {
	DatabaseDSN      string
	NfzServerCommand string
	OpenAipAPIKey    string
	GeminiAPIKey     string
	ReportModel      string
	NfzTimeout       time.Duration
	ReportTimeout    time.Duration
	UploadTimeout    time.Duration
	S3RootUser       string
	S3RootPassword   string
	S3Bucket         string
	S3Region         string
	S3BaseEndpoint   string
	S3KeyPrefix      string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "flight_data.db"
	c.NfzServerCommand = "node mcp-server/build/index.js"
	c.ReportModel = "gemini-2.0-flash"
	c.NfzTimeout = 30 * time.Second
	c.ReportTimeout = 60 * time.Second
	c.UploadTimeout = 30 * time.Second
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "flights"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.S3KeyPrefix = "flights"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, command-line flags and finally credential
// environment variables.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	parseEnv(cfg)
	return cfg
}

// UsesPostgres reports whether the DSN selects the PostgreSQL backend.
// Anything else is treated as a sqlite file path.
func (c *Config) UsesPostgres() bool {
	return hasScheme(c.DatabaseDSN, "postgres://") || hasScheme(c.DatabaseDSN, "postgresql://")
}

func hasScheme(dsn, scheme string) bool {
	return len(dsn) >= len(scheme) && dsn[:len(scheme)] == scheme
}
