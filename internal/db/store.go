package db

import (
	"context"
	"fmt"

	"github.com/Project-Sylos/Canopy/internal/types"
)

// Store is the category tree store contract implemented by DB and Memory
type Store interface {
	All(ctx context.Context) ([]*types.Category, error)
	GetByIdentity(ctx context.Context, id types.NodeID) (*types.Category, error)
	GetByName(ctx context.Context, name string) (*types.Category, error)
	GetOrCreate(ctx context.Context, name string, parent *types.Category) (*types.Category, bool, error)
	Save(ctx context.Context, c *types.Category) error
	Stats(ctx context.Context) (types.Stats, error)
	Reset(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*DB)(nil)
	_ Store = (*Memory)(nil)
)

// Open returns the store selected by cfg.Driver
func Open(cfg types.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case types.DriverDuckDB, "":
		return New(cfg.DBPath)
	case types.DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}
