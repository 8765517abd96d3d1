package config

import (
	"os"

	"github.com/Project-Sylos/Canopy/internal/types"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds the environment overrides. Unset variables leave the
// file/default value untouched, hence the pointer fields.
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST
	Host string `envconfig:"HOST"`

	// Port is the server port to listen on.
	// Env: PORT
	Port int `envconfig:"PORT"`

	// CORSOrigins is a comma-separated list of allowed origins.
	// Env: CORS_ORIGINS
	CORSOrigins []string `envconfig:"CORS_ORIGINS"`

	// Store is the category store driver (duckdb or memory).
	// Env: STORE
	Store string `envconfig:"STORE"`

	// DBPath is the DuckDB database file.
	// Env: DB_PATH
	DBPath *string `envconfig:"DB_PATH"`

	// EnableCategories switches the category pages and endpoints on or off.
	// Env: ENABLE_CATEGORIES
	EnableCategories *bool `envconfig:"ENABLE_CATEGORIES"`

	// IndexURL is where non-AJAX requests to the admin endpoints are redirected.
	// Env: INDEX_URL
	IndexURL string `envconfig:"INDEX_URL"`

	// SeedFile is a YAML category tree loaded at start-up.
	// Env: SEED_FILE
	SeedFile string `envconfig:"SEED_FILE"`

	// DefaultLanguage is used when Accept-Language names no supported language.
	// Env: DEFAULT_LANGUAGE
	DefaultLanguage string `envconfig:"DEFAULT_LANGUAGE"`

	// AdminAPIKeys is a comma-separated list of administrator API keys.
	// Env: ADMIN_API_KEYS
	AdminAPIKeys []string `envconfig:"ADMIN_API_KEYS"`

	// UserAPIKeys is a comma-separated list of regular user API keys.
	// Env: USER_API_KEYS
	UserAPIKeys []string `envconfig:"USER_API_KEYS"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL
	LogLevel string `envconfig:"LOG_LEVEL"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT
	LogFormat string `envconfig:"LOG_FORMAT"`
}

// LoadFromEnv reads EnvConfig from the process environment
func LoadFromEnv() (EnvConfig, error) {
	var env EnvConfig
	if err := envconfig.Process("", &env); err != nil {
		return EnvConfig{}, err
	}
	return env, nil
}

// Apply overrides cfg with every variable that was set
func (e EnvConfig) Apply(cfg *types.Config) {
	if e.Host != "" {
		cfg.API.Host = e.Host
	}
	if e.Port != 0 {
		cfg.API.Port = e.Port
	}
	if len(e.CORSOrigins) > 0 {
		cfg.API.CORSOrigins = e.CORSOrigins
	}
	if e.Store != "" {
		cfg.Store.Driver = e.Store
	}
	if e.DBPath != nil {
		cfg.Store.DBPath = *e.DBPath
	}
	if e.EnableCategories != nil {
		cfg.Categories.Enabled = *e.EnableCategories
	}
	if e.IndexURL != "" {
		cfg.Categories.IndexURL = e.IndexURL
	}
	if e.SeedFile != "" {
		cfg.Categories.SeedFile = e.SeedFile
	}
	if e.DefaultLanguage != "" {
		cfg.Categories.DefaultLanguage = e.DefaultLanguage
	}
	if len(e.AdminAPIKeys) > 0 {
		cfg.Auth.AdminKeys = e.AdminAPIKeys
	}
	if len(e.UserAPIKeys) > 0 {
		cfg.Auth.UserKeys = e.UserAPIKeys
	}
	if e.LogLevel != "" {
		cfg.Log.Level = e.LogLevel
	}
	if e.LogFormat != "" {
		cfg.Log.Format = e.LogFormat
	}
}

// LoadDotEnv loads environment variables from a .env file.
// If path is empty, it loads from ".env" in the current directory.
// If the file does not exist, it silently returns nil (not an error).
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	return godotenv.Load(path)
}
