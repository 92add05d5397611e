// Package config loads and validates runtime configuration from YAML with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// DefaultConfig returns a Config with sensible defaults, matching the
// upstream constraints the ingestion pipeline is tuned for.
func DefaultConfig() *Config {
	return &Config{
		DataDir:           "data",
		Provider:          ProviderOpenAI,
		Model:             "gpt-3.5-turbo",
		EmbeddingProvider: ProviderOpenAI,
		EmbeddingModel:    "text-embedding-3-small",
		ExpandQueries:     true,
		TopK:              10,
		ChunkSize:         500,
		ChunkOverlap:      50,
		RequestsPerMinute: 60,
		MaxRetries:        3,
		RetryDelaySeconds: 2,
		HadithBooks:       []string{"sahih-bukhari", "sahih-muslim"},
		Server: ServerConfig{
			Port: 8000,
		},
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (BASEERA_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// BASEERA_TOP_K -> top_k, BASEERA_SERVER.PORT is not expected;
	// nested keys use BASEERA_SERVER_PORT via the replacer below.
	if err := k.Load(env.Provider("BASEERA_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "BASEERA_"))
		if rest, ok := strings.CutPrefix(key, "server_"); ok {
			return "server." + rest
		}
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validProviders = map[ProviderType]bool{
	ProviderOpenAI: true,
	ProviderOllama: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if !validProviders[c.Provider] {
		return fmt.Errorf("invalid provider %q: must be one of openai, ollama", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.EmbeddingProvider != "" && !validProviders[c.EmbeddingProvider] {
		return fmt.Errorf("invalid embedding_provider %q", c.EmbeddingProvider)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap must be non-negative and smaller than chunk_size")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1")
	}
	if c.RetryDelaySeconds < 0 {
		return fmt.Errorf("retry_delay_seconds must be non-negative")
	}
	if len(c.HadithBooks) == 0 {
		return fmt.Errorf("at least one hadith book is required")
	}
	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for the
// API key of the given provider, or "" when none is needed.
func APIKeyEnvVar(provider ProviderType) string {
	if provider == ProviderOpenAI {
		return "OPENAI_API_KEY"
	}
	return ""
}

// HadithAPIKeyEnvVar is the environment variable carrying the hadith
// listing API key.
const HadithAPIKeyEnvVar = "HADITH_API_KEY"
