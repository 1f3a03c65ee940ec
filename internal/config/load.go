package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Options for loading config.
type Options struct {
	ConfigPath   string
	SkipValidate bool
	// Overrides apply last (flags > env > file > defaults). Nil fields are
	// left untouched.
	Overrides *Overrides
}

// Overrides holds CLI flag values that take precedence over env/file/defaults.
type Overrides struct {
	Transport   *string
	Listen      *string
	MCPPath     *string
	DatabaseURL *string
}

// Load builds config with precedence: defaults → config file → env vars →
// Overrides. The returned error is suitable for exit code 2 when invalid.
func Load(opts Options) (*Config, error) {
	cfg := Default()

	// Optional local dotenv files for developer ergonomics. godotenv never
	// overrides variables already present in the environment, so precedence
	// stays: explicit env > .env.local > .env.
	for _, path := range []string{".env.local", ".env"} {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				return nil, fmt.Errorf("CONFIG_INVALID: failed loading %s: %w", path, err)
			}
		}
	}

	if opts.ConfigPath != "" {
		data, err := os.ReadFile(opts.ConfigPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("CONFIG_INVALID: cannot read config file %s: %w", opts.ConfigPath, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("CONFIG_INVALID: malformed YAML in %s: %w", opts.ConfigPath, err)
		}
	}

	// Env overlay.
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("LEXMCP_TRANSPORT"); v != "" {
		cfg.Server.Transport = v
	}
	if v := os.Getenv("LEXMCP_LISTEN"); v != "" {
		cfg.Server.Listen = v
	}

	// CLI overrides (highest precedence).
	if opts.Overrides != nil {
		applyOverrides(&cfg, opts.Overrides)
	}

	if !opts.SkipValidate {
		if err := Validate(&cfg); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

func applyOverrides(cfg *Config, o *Overrides) {
	if o.Transport != nil {
		cfg.Server.Transport = *o.Transport
	}
	if o.Listen != nil {
		cfg.Server.Listen = *o.Listen
	}
	if o.MCPPath != nil {
		cfg.Server.MCPPath = *o.MCPPath
	}
	if o.DatabaseURL != nil {
		cfg.Database.URL = *o.DatabaseURL
	}
}
