package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmpetrovs/flightguard/internal/flagx"
	"github.com/dmpetrovs/flightguard/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for timeout fields, which allows
// parsing both string values such as "30s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its non-empty fields are copied
// into the runtime Config struct which uses time.Duration.
type JsonConfig struct {
	DatabaseDSN      string         `json:"database_dsn"`
	NfzServerCommand string         `json:"nfz_server_command"`
	ReportModel      string         `json:"report_model"`
	NfzTimeout       timex.Duration `json:"nfz_timeout"`
	ReportTimeout    timex.Duration `json:"report_timeout"`
	UploadTimeout    timex.Duration `json:"upload_timeout"`
	S3RootUser       string         `json:"s3_root_user"`
	S3RootPassword   string         `json:"s3_root_password"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
	S3KeyPrefix      string         `json:"s3_key_prefix"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; when neither is set, no JSON file is loaded. Fields absent from
// the file keep their current values. If the file cannot be read or
// contains invalid JSON, the function panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.NfzServerCommand, c.NfzServerCommand)
	setString(&config.ReportModel, c.ReportModel)
	setDuration(&config.NfzTimeout, c.NfzTimeout)
	setDuration(&config.ReportTimeout, c.ReportTimeout)
	setDuration(&config.UploadTimeout, c.UploadTimeout)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3KeyPrefix, c.S3KeyPrefix)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = time.Duration(v.Duration)
	}
}
