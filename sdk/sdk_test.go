package sdk

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Project-Sylos/Canopy/internal/config"
	"github.com/Project-Sylos/Canopy/internal/log"
	"github.com/Project-Sylos/Canopy/internal/types"
)

const seedYAML = `
categories:
  - name: Everything
    children:
      - name: Books
      - name: Movies
`

// TestNew tests the New function with various configurations
func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(t *testing.T) *types.Config
		expectError bool
		wantNodes   int
	}{
		{
			name: "memory store",
			setup: func(t *testing.T) *types.Config {
				cfg := config.DefaultConfig()
				cfg.Store = types.StoreConfig{Driver: types.DriverMemory}
				return &cfg
			},
		},
		{
			name: "duckdb store",
			setup: func(t *testing.T) *types.Config {
				cfg := config.DefaultConfig()
				cfg.Store.DBPath = filepath.Join(t.TempDir(), "canopy.db")
				return &cfg
			},
		},
		{
			name: "seeded on start",
			setup: func(t *testing.T) *types.Config {
				path := filepath.Join(t.TempDir(), "seed.yaml")
				if err := os.WriteFile(path, []byte(seedYAML), 0644); err != nil {
					t.Fatal(err)
				}
				cfg := config.DefaultConfig()
				cfg.Store = types.StoreConfig{Driver: types.DriverMemory}
				cfg.Categories.SeedFile = path
				return &cfg
			},
			wantNodes: 3,
		},
		{
			name: "missing seed file",
			setup: func(t *testing.T) *types.Config {
				cfg := config.DefaultConfig()
				cfg.Store = types.StoreConfig{Driver: types.DriverMemory}
				cfg.Categories.SeedFile = filepath.Join(t.TempDir(), "nope.yaml")
				return &cfg
			},
			expectError: true,
		},
		{
			name: "invalid config",
			setup: func(t *testing.T) *types.Config {
				cfg := config.DefaultConfig()
				cfg.Store.Driver = "bolt"
				return &cfg
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.setup(t), log.Discard())
			if tt.expectError {
				if err == nil {
					c.Close()
					t.Errorf("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			defer c.Close()

			stats, err := c.Stats(context.Background())
			if err != nil {
				t.Fatalf("Failed to get stats: %v", err)
			}
			if stats.Nodes != tt.wantNodes {
				t.Errorf("Expected %d nodes, got %d", tt.wantNodes, stats.Nodes)
			}
		})
	}
}

// TestCanopyMethods exercises the facade end to end on the memory store
func TestCanopyMethods(t *testing.T) {
	ctx := context.Background()
	c, err := NewInMemory(log.Discard())
	if err != nil {
		t.Fatalf("Failed to create Canopy: %v", err)
	}
	defer c.Close()

	t.Run("empty tree", func(t *testing.T) {
		tree, err := c.Tree(ctx)
		if err != nil {
			t.Fatalf("Tree failed: %v", err)
		}
		data, _ := json.Marshal(tree)
		if string(data) != "{}" {
			t.Errorf("Expected {}, got %s", data)
		}
	})

	root, err := c.Add(ctx, "Root", nil)
	if err != nil {
		t.Fatalf("Add root failed: %v", err)
	}
	rootID := root.Identity()

	t.Run("add child", func(t *testing.T) {
		child, err := c.Add(ctx, "Books", &rootID)
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if child.Identity() != (types.NodeID{1, 2}) {
			t.Errorf("Expected [1,2], got %s", child.Identity())
		}
	})

	t.Run("duplicate is reported in the caller's language", func(t *testing.T) {
		_, err := c.Add(ctx, "Books", &rootID)
		if err == nil {
			t.Fatal("Expected duplicate error")
		}
		if got := c.Message("es", err); got != "Ya existe una categoría con ese nombre" {
			t.Errorf("Unexpected message: %s", got)
		}
		if got := c.Message("", err); got != "There is already a category with that name" {
			t.Errorf("Unexpected message: %s", got)
		}
	})

	t.Run("rename", func(t *testing.T) {
		renamed, err := c.Rename(ctx, types.NodeID{1, 2}, "Literature")
		if err != nil {
			t.Fatalf("Rename failed: %v", err)
		}
		if renamed.Name != "Literature" {
			t.Errorf("Expected Literature, got %s", renamed.Name)
		}
	})

	t.Run("stats and reset", func(t *testing.T) {
		stats, err := c.Stats(ctx)
		if err != nil {
			t.Fatalf("Stats failed: %v", err)
		}
		if stats.Nodes != 2 || stats.Trees != 1 {
			t.Errorf("Unexpected stats: %+v", stats)
		}
		if err := c.Reset(ctx); err != nil {
			t.Fatalf("Reset failed: %v", err)
		}
		stats, _ = c.Stats(ctx)
		if stats.Nodes != 0 {
			t.Errorf("Expected empty store after reset, got %d nodes", stats.Nodes)
		}
	})

	if c.GetConfig().Store.Driver != types.DriverMemory {
		t.Errorf("Expected memory driver in config")
	}
	if c.Service() == nil || c.Localizer() == nil || c.Logger() == nil {
		t.Errorf("Accessors must not return nil")
	}
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	contents := `{"store": {"driver": "memory"}, "categories": {"index_url": "/home/"}}`
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := NewFromFile(path, log.Discard())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer c.Close()

	if c.GetConfig().Categories.IndexURL != "/home/" {
		t.Errorf("Expected index URL /home/, got %s", c.GetConfig().Categories.IndexURL)
	}

	if _, err := NewFromFile(filepath.Join(dir, "missing.json"), nil); err == nil {
		t.Errorf("Expected error for missing config file")
	}
}
