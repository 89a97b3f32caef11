package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, c.DatabaseDSN, "flight_data.db")
	assert.Equal(t, c.NfzServerCommand, "node mcp-server/build/index.js")
	assert.Equal(t, c.ReportModel, "gemini-2.0-flash")
	assert.Equal(t, c.NfzTimeout, 30*time.Second)
	assert.Equal(t, c.ReportTimeout, 60*time.Second)
	assert.Equal(t, c.UploadTimeout, 30*time.Second)
	assert.Equal(t, c.S3RootUser, "admin")
	assert.Equal(t, c.S3RootPassword, "secretpassword")
	assert.Equal(t, c.S3Bucket, "flights")
	assert.Equal(t, c.S3Region, "us-east-1")
	assert.Equal(t, c.S3BaseEndpoint, "http://127.0.0.1:9000/")
	assert.Equal(t, c.S3KeyPrefix, "flights")
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	c := LoadConfig()

	require.NotNil(t, c, "LoadConfig must not return nil")

	assert.Equal(t, c.NfzServerCommand, "node mcp-server/build/index.js")
	assert.Equal(t, c.ReportModel, "gemini-2.0-flash")
}

func TestParseJson_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"database_dsn":"postgres://u:p@db:5432/flights","nfz_timeout":"5s"}`), 0o600))

	oldArgs := os.Args
	os.Args = []string{"validator", "-c", path}
	defer func() { os.Args = oldArgs }()

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, c.DatabaseDSN, "postgres://u:p@db:5432/flights")
	assert.Equal(t, c.NfzTimeout, 5*time.Second)
	// untouched by the file
	assert.Equal(t, c.ReportModel, "gemini-2.0-flash")
	assert.Equal(t, c.UploadTimeout, 30*time.Second)
}

func TestParseEnv(t *testing.T) {
	t.Setenv("DB_PATH", "/tmp/other.db")
	t.Setenv("OPENAIP_API_KEY", "openaip-key")
	t.Setenv("GEMINI_API_KEY", "gemini-key")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, c.DatabaseDSN, "/tmp/other.db")
	assert.Equal(t, c.OpenAipAPIKey, "openaip-key")
	assert.Equal(t, c.GeminiAPIKey, "gemini-key")
}

func TestUsesPostgres(t *testing.T) {
	tests := []struct {
		dsn  string
		want bool
	}{
		{"flight_data.db", false},
		{"/var/lib/flightguard/flight_data.db", false},
		{"postgres://u:p@db:5432/flights", true},
		{"postgresql://u:p@db:5432/flights", true},
	}
	for _, tt := range tests {
		c := &Config{DatabaseDSN: tt.dsn}
		assert.Equal(t, tt.want, c.UsesPostgres(), tt.dsn)
	}
}
