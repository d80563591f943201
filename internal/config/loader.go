package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces all environment variables, e.g. CALIPER_ADDR.
const envPrefix = "CALIPER_"

// Load builds a Config by layering defaults, an optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if CALIPER_CONFIG is set
//  3. env (prefix CALIPER_)
//
// A .env file in the working directory is loaded into the environment first
// when present; a missing one is not an error.
func Load(_ context.Context) (*Config, error) {
	_ = godotenv.Load()

	cfg := *New()

	k := koanf.New(".")

	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Map env keys like CALIPER_JOB_QUEUE_SIZE -> job_queue_size, preserving
	// underscores to match the koanf tags on the struct.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch {
	case cfg.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.DBPath == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case cfg.LLMBaseURL == "":
		return fmt.Errorf("%w: llm_base_url must not be empty", ErrInvalidConfig)
	case cfg.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case cfg.JobQueueSize < 1:
		return fmt.Errorf("%w: job_queue_size must be positive", ErrInvalidConfig)
	case cfg.MaxPageLimit < 1:
		return fmt.Errorf("%w: max_page_limit must be positive", ErrInvalidConfig)
	}
	return nil
}
