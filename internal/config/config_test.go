package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Project-Sylos/Canopy/internal/types"
)

// TestLoadFromFile tests the LoadFromFile function
func TestLoadFromFile(t *testing.T) {
	tests := []struct {
		name        string
		contents    string
		missing     bool
		expectError bool
		validate    func(*testing.T, *types.Config)
	}{
		{
			name: "full config",
			contents: `{
				"api": {"host": "0.0.0.0", "port": 9000},
				"store": {"driver": "memory", "db_path": ""},
				"categories": {"enabled": false, "index_url": "/questions/", "default_language": "es"},
				"log": {"level": "DEBUG", "format": "json"}
			}`,
			validate: func(t *testing.T, cfg *types.Config) {
				if cfg.API.Host != "0.0.0.0" || cfg.API.Port != 9000 {
					t.Errorf("Expected 0.0.0.0:9000, got %s:%d", cfg.API.Host, cfg.API.Port)
				}
				if cfg.Store.Driver != types.DriverMemory {
					t.Errorf("Expected memory driver, got %s", cfg.Store.Driver)
				}
				if cfg.Categories.Enabled {
					t.Errorf("Expected categories to be disabled")
				}
				if cfg.Categories.IndexURL != "/questions/" {
					t.Errorf("Expected index URL /questions/, got %s", cfg.Categories.IndexURL)
				}
				if cfg.Log.Format != LogFormatJSON {
					t.Errorf("Expected json log format, got %s", cfg.Log.Format)
				}
			},
		},
		{
			name:     "partial config keeps defaults",
			contents: `{"api": {"port": 9100}}`,
			validate: func(t *testing.T, cfg *types.Config) {
				if cfg.API.Port != 9100 {
					t.Errorf("Expected port 9100, got %d", cfg.API.Port)
				}
				if !cfg.Categories.Enabled {
					t.Errorf("Expected categories enabled by default")
				}
				if !filepath.IsAbs(cfg.Store.DBPath) {
					t.Errorf("Expected absolute DB path, got %s", cfg.Store.DBPath)
				}
			},
		},
		{
			name:        "nonexistent config file",
			missing:     true,
			expectError: true,
		},
		{
			name:        "invalid JSON config",
			contents:    `{"api": {"port": }`,
			expectError: true,
		},
		{
			name:        "invalid port",
			contents:    `{"api": {"port": 70000}}`,
			expectError: true,
		},
		{
			name:        "invalid driver",
			contents:    `{"store": {"driver": "bolt"}}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if !tt.missing {
				if err := os.WriteFile(path, []byte(tt.contents), 0644); err != nil {
					t.Fatal(err)
				}
			}

			cfg, err := LoadFromFile(path)
			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

// TestLoadEnvOverrides tests that environment variables win over the file
func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"api": {"port": 9000}, "categories": {"enabled": true}}`), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PORT", "9200")
	t.Setenv("ENABLE_CATEGORIES", "false")
	t.Setenv("STORE", "memory")
	t.Setenv("DB_PATH", "")
	t.Setenv("ADMIN_API_KEYS", "a1,a2")
	t.Setenv("USER_API_KEYS", "u1")

	cfg, err := Load(path, filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.API.Port != 9200 {
		t.Errorf("Expected port 9200, got %d", cfg.API.Port)
	}
	if cfg.Categories.Enabled {
		t.Errorf("Expected ENABLE_CATEGORIES=false to disable categories")
	}
	if cfg.Store.Driver != types.DriverMemory {
		t.Errorf("Expected memory driver, got %s", cfg.Store.Driver)
	}
	if cfg.Store.DBPath != "" {
		t.Errorf("Expected empty DB path, got %s", cfg.Store.DBPath)
	}
	if len(cfg.Auth.AdminKeys) != 2 || cfg.Auth.AdminKeys[1] != "a2" {
		t.Errorf("Expected two admin keys, got %v", cfg.Auth.AdminKeys)
	}
	if len(cfg.Auth.UserKeys) != 1 {
		t.Errorf("Expected one user key, got %v", cfg.Auth.UserKeys)
	}
}

// TestLoadDotEnv tests loading variables from a .env file
func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "test.env")
	if err := os.WriteFile(envPath, []byte("INDEX_URL=/from-dotenv/\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// godotenv.Load never overrides variables that are already set
	t.Setenv("INDEX_URL", "")
	os.Unsetenv("INDEX_URL")

	cfg, err := Load("", envPath)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Categories.IndexURL != "/from-dotenv/" {
		t.Errorf("Expected index URL from .env, got %s", cfg.Categories.IndexURL)
	}
}

// TestSaveToFile tests that a saved config loads back and omits API keys
func TestSaveToFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.Port = 9300
	cfg.Auth.AdminKeys = []string{"secret"}

	path := filepath.Join(t.TempDir(), "saved.json")
	if err := SaveToFile(&cfg, path); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "secret") {
		t.Errorf("Saved config must not contain API keys")
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if loaded.API.Port != 9300 {
		t.Errorf("Expected port 9300, got %d", loaded.API.Port)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(nil); err == nil {
		t.Errorf("Expected error for nil config")
	}

	cfg := DefaultConfig()
	if err := Validate(&cfg); err != nil {
		t.Errorf("Default config must be valid: %v", err)
	}

	cfg.Categories.IndexURL = ""
	if err := Validate(&cfg); err == nil {
		t.Errorf("Expected error for empty index URL")
	}

	cfg = DefaultConfig()
	cfg.Log.Format = "xml"
	if err := Validate(&cfg); err == nil {
		t.Errorf("Expected error for unknown log format")
	}
}
