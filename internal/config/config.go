package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Project-Sylos/Canopy/internal/types"
)

// Log formats
const (
	LogFormatPretty = "pretty"
	LogFormatJSON   = "json"
)

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() types.Config {
	return types.Config{
		API: types.APIConfig{
			Host: "localhost",
			Port: 8086,
		},
		Store: types.StoreConfig{
			Driver: types.DriverDuckDB,
			DBPath: "./canopy.db",
		},
		Categories: types.CategoriesConfig{
			Enabled:         true,
			IndexURL:        "/",
			DefaultLanguage: "en",
		},
		Log: types.LogConfig{
			Level:  "INFO",
			Format: LogFormatPretty,
		},
	}
}

// LoadFromFile loads configuration from a JSON file on top of the defaults
func LoadFromFile(configPath string) (*types.Config, error) {
	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := finalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load builds the effective configuration: defaults, then the optional JSON
// file, then the optional .env file, then environment variables.
func Load(configPath, envFile string) (*types.Config, error) {
	cfg := DefaultConfig()
	if configPath != "" {
		fileCfg, err := LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg = *fileCfg
	}

	if err := LoadDotEnv(envFile); err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	env, err := LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	env.Apply(&cfg)

	if err := finalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// finalize validates cfg and resolves relative paths
func finalize(cfg *types.Config) error {
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// Ensure DB path is absolute; an empty path keeps DuckDB in memory
	if cfg.Store.DBPath != "" && !filepath.IsAbs(cfg.Store.DBPath) {
		absPath, err := filepath.Abs(cfg.Store.DBPath)
		if err != nil {
			return fmt.Errorf("failed to resolve DB path: %w", err)
		}
		cfg.Store.DBPath = absPath
	}

	if cfg.Categories.SeedFile != "" && !filepath.IsAbs(cfg.Categories.SeedFile) {
		absPath, err := filepath.Abs(cfg.Categories.SeedFile)
		if err != nil {
			return fmt.Errorf("failed to resolve seed file path: %w", err)
		}
		cfg.Categories.SeedFile = absPath
	}

	return nil
}

// Validate checks that the configuration parameters are valid
func Validate(cfg *types.Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	// Validate API config
	if cfg.API.Port < 1 || cfg.API.Port > 65535 {
		return fmt.Errorf("API port must be between 1 and 65535, got %d", cfg.API.Port)
	}

	// Validate store config
	switch cfg.Store.Driver {
	case types.DriverDuckDB, types.DriverMemory:
	default:
		return fmt.Errorf("store driver must be %q or %q, got %q", types.DriverDuckDB, types.DriverMemory, cfg.Store.Driver)
	}

	if cfg.Categories.IndexURL == "" {
		return fmt.Errorf("index_url cannot be empty")
	}

	switch cfg.Log.Format {
	case LogFormatPretty, LogFormatJSON:
	default:
		return fmt.Errorf("log format must be %q or %q, got %q", LogFormatPretty, LogFormatJSON, cfg.Log.Format)
	}

	return nil
}

// SaveToFile saves configuration to a JSON file. API keys are never written.
func SaveToFile(cfg *types.Config, configPath string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config to JSON: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
