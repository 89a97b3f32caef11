package config

import "os"

// parseEnv overlays credential values from the environment. Secrets never
// travel through flags or config files.
//
//	DB_PATH          overrides the database DSN
//	OPENAIP_API_KEY  forwarded to the NFZ tool server process
//	GEMINI_API_KEY   text-synthesis backend key
func parseEnv(config *Config) {
	if v := os.Getenv("DB_PATH"); v != "" {
		config.DatabaseDSN = v
	}
	config.OpenAipAPIKey = os.Getenv("OPENAIP_API_KEY")
	config.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
}
