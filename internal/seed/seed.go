// Package seed loads an initial category tree from a YAML file.
//
// The file lists root categories, each with optional nested children:
//
//	categories:
//	  - name: Everything
//	    children:
//	      - name: Books
//	        children:
//	          - name: Fiction
//	      - name: Movies
//
// Seeding is idempotent. Names are unique across all trees, so an entry whose
// name already exists is reused in place and its children are attached to it.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Project-Sylos/Canopy/internal/types"
)

// Entry is one category in a seed file
type Entry struct {
	Name     string  `yaml:"name"`
	Children []Entry `yaml:"children,omitempty"`
}

// File is the document root of a seed file
type File struct {
	Categories []Entry `yaml:"categories"`
}

// Store is what the seeder needs from the category store
type Store interface {
	GetOrCreate(ctx context.Context, name string, parent *types.Category) (*types.Category, bool, error)
}

// Result summarizes a seeding run
type Result struct {
	Created  int
	Existing int
}

// Parse decodes and validates a seed document
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed YAML: %w", err)
	}
	seen := make(map[string]bool)
	if err := validate(f.Categories, seen, ""); err != nil {
		return nil, err
	}
	return &f, nil
}

func validate(entries []Entry, seen map[string]bool, path string) error {
	for i, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return fmt.Errorf("seed entry %s[%d] has no name", path, i)
		}
		if seen[name] {
			return fmt.Errorf("seed category %q is listed more than once", name)
		}
		seen[name] = true
		if err := validate(e.Children, seen, path+"/"+name); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile reads and parses the seed file at path
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Apply creates every category of f that does not exist yet, parents first
func Apply(ctx context.Context, store Store, f *File, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var res Result
	if err := apply(ctx, store, f.Categories, nil, &res); err != nil {
		return res, err
	}
	logger.Info("category tree seeded", "created", res.Created, "existing", res.Existing)
	return res, nil
}

func apply(ctx context.Context, store Store, entries []Entry, parent *types.Category, res *Result) error {
	for _, e := range entries {
		node, created, err := store.GetOrCreate(ctx, strings.TrimSpace(e.Name), parent)
		if err != nil {
			return fmt.Errorf("failed to seed category %q: %w", e.Name, err)
		}
		if created {
			res.Created++
		} else {
			res.Existing++
		}
		if err := apply(ctx, store, e.Children, node, res); err != nil {
			return err
		}
	}
	return nil
}
