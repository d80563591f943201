// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() for defaults and Load(ctx) for layered loading.
// - External errors are wrapped via this package's sentinel kinds.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database file path.
	DBPath string `koanf:"db_path"`

	// SeedCSVPath points at an optional CSV used to seed an empty database.
	SeedCSVPath string `koanf:"seed_csv_path"`

	// LLMBaseURL is the base URL of the generation API.
	LLMBaseURL string `koanf:"llm_base_url"`

	// LLMAPIKey is sent as a bearer token when non-empty.
	LLMAPIKey string `koanf:"llm_api_key"`

	// LLMTimeoutMS bounds a single generation call.
	LLMTimeoutMS int `koanf:"llm_timeout_ms"`

	// WorkerCount sets the number of generation workers.
	WorkerCount int `koanf:"worker_count"`

	// JobQueueSize bounds the in-memory generation job queue.
	JobQueueSize int `koanf:"job_queue_size"`

	// MaxPageLimit caps GET /evaluations?limit.
	MaxPageLimit int `koanf:"max_page_limit"`

	// CORSOrigin is the Access-Control-Allow-Origin value for API responses.
	CORSOrigin string `koanf:"cors_origin"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		Addr:         ":8080",
		DBPath:       "caliper.db",
		SeedCSVPath:  "mock_data.csv",
		LLMBaseURL:   "http://localhost:11434",
		LLMAPIKey:    "",
		LLMTimeoutMS: 120_000,
		WorkerCount:  runtime.NumCPU() * 2,
		JobQueueSize: 1024,
		MaxPageLimit: 500,
		CORSOrigin:   "*",
	}
}
