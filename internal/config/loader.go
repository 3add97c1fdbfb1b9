package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists the provider names shipped with Teal. Used by
// [Validate] to warn about unrecognised provider names.
var ValidProviderNames = []string{"gemini", "openai"}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Provider
	if cfg.Provider.Name == "" {
		errs = append(errs, errors.New("provider.name is required"))
	} else if !slices.Contains(ValidProviderNames, cfg.Provider.Name) {
		slog.Warn("unknown provider name — may be a typo or third-party provider",
			"name", cfg.Provider.Name,
			"known", ValidProviderNames,
		)
	}
	if cfg.Provider.Temperature != nil {
		if t := *cfg.Provider.Temperature; t < 0 || t > 2 {
			errs = append(errs, fmt.Errorf("provider.temperature %.2f is out of range [0, 2]", t))
		}
	}
	if cfg.Provider.MaxOutputTokens < 0 {
		errs = append(errs, fmt.Errorf("provider.max_output_tokens %d must not be negative", cfg.Provider.MaxOutputTokens))
	}
	if cfg.Provider.APIKey == "" && apiKeyFromEnv(cfg.Provider.Name) == "" {
		slog.Warn("provider API key is not configured; set it in the config file or the provider's environment variable",
			"provider", cfg.Provider.Name,
		)
	}

	// Storage
	if cfg.Storage.PostgresDSN == "" {
		errs = append(errs, errors.New("storage.postgres_dsn is required"))
	}

	// Context
	if cfg.Context.HistoryLimit < 0 {
		errs = append(errs, fmt.Errorf("context.history_limit %d must not be negative", cfg.Context.HistoryLimit))
	}

	return errors.Join(errs...)
}

// envVarByProvider maps provider names to the environment variable consulted
// when provider.api_key is not set in the config file.
var envVarByProvider = map[string]string{
	"gemini": "GEMINI_API_KEY",
	"openai": "OPENAI_API_KEY",
}

// apiKeyFromEnv returns the API key for the named provider from its
// environment variable, or "" when unset or the provider is unknown.
func apiKeyFromEnv(name string) string {
	return os.Getenv(envVarByProvider[name])
}

// ResolveAPIKey returns the effective API key for entry: the configured
// value when set, the provider's environment variable otherwise.
func ResolveAPIKey(entry ProviderEntry) string {
	if entry.APIKey != "" {
		return entry.APIKey
	}
	return apiKeyFromEnv(entry.Name)
}
