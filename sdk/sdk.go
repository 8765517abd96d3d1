// Package sdk is the public entry point to a Canopy category store: it wires
// configuration, storage, the category service and localization together.
package sdk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Project-Sylos/Canopy/internal/categories"
	"github.com/Project-Sylos/Canopy/internal/config"
	"github.com/Project-Sylos/Canopy/internal/db"
	"github.com/Project-Sylos/Canopy/internal/i18n"
	"github.com/Project-Sylos/Canopy/internal/seed"
	"github.com/Project-Sylos/Canopy/internal/tree"
	"github.com/Project-Sylos/Canopy/internal/types"
)

// Canopy is the public SDK handle
type Canopy struct {
	config    *types.Config
	store     db.Store
	service   *categories.Service
	localizer *i18n.Localizer
	logger    *slog.Logger
}

// New opens the store described by cfg and seeds it when a seed file is configured
func New(cfg *types.Config, logger *slog.Logger) (*Canopy, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	store, err := db.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open category store: %w", err)
	}

	c := &Canopy{
		config:    cfg,
		store:     store,
		service:   categories.NewService(store, logger),
		localizer: i18n.New(cfg.Categories.DefaultLanguage),
		logger:    logger,
	}

	if cfg.Categories.SeedFile != "" {
		if _, err := c.Seed(context.Background(), cfg.Categories.SeedFile); err != nil {
			_ = store.Close()
			return nil, err
		}
	}

	return c, nil
}

// NewFromFile creates a Canopy instance from a JSON config file plus the environment
func NewFromFile(configPath string, logger *slog.Logger) (*Canopy, error) {
	cfg, err := config.Load(configPath, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return New(cfg, logger)
}

// NewInMemory creates a Canopy instance backed by the memory store
func NewInMemory(logger *slog.Logger) (*Canopy, error) {
	cfg := config.DefaultConfig()
	cfg.Store = types.StoreConfig{Driver: types.DriverMemory}
	return New(&cfg, logger)
}

// Tree returns the serialized category tree
func (c *Canopy) Tree(ctx context.Context) (tree.Tree, error) {
	return c.service.Tree(ctx)
}

// Add creates a category under parent, or a new root when parent is nil
func (c *Canopy) Add(ctx context.Context, name string, parent *types.NodeID) (*types.Category, error) {
	return c.service.Add(ctx, name, parent)
}

// Rename changes the name of the category at id
func (c *Canopy) Rename(ctx context.Context, id types.NodeID, name string) (*types.Category, error) {
	return c.service.Rename(ctx, id, name)
}

// Stats returns the node and tree counts of the store
func (c *Canopy) Stats(ctx context.Context) (types.Stats, error) {
	return c.store.Stats(ctx)
}

// Seed loads the YAML seed file at path into the store
func (c *Canopy) Seed(ctx context.Context, path string) (seed.Result, error) {
	f, err := seed.LoadFile(path)
	if err != nil {
		return seed.Result{}, err
	}
	return seed.Apply(ctx, c.store, f, c.logger)
}

// Reset deletes every category
func (c *Canopy) Reset(ctx context.Context) error {
	return c.store.Reset(ctx)
}

// Close releases the store. Always call it during shutdown so DuckDB flushes its WAL.
func (c *Canopy) Close() error {
	return c.store.Close()
}

// GetConfig returns the current configuration
func (c *Canopy) GetConfig() *types.Config {
	return c.config
}

// Service returns the category service used by the HTTP handlers
func (c *Canopy) Service() *categories.Service {
	return c.service
}

// Localizer returns the message localizer
func (c *Canopy) Localizer() *i18n.Localizer {
	return c.localizer
}

// Logger returns the logger the instance was created with
func (c *Canopy) Logger() *slog.Logger {
	return c.logger
}

// Message translates a user-facing error from Add or Rename for the given
// Accept-Language value. Uncategorized errors read as the generic apology.
func (c *Canopy) Message(acceptLanguage string, err error) string {
	var ce *categories.Error
	if errors.As(err, &ce) && ce.Message != "" && ce.Kind != categories.KindOther {
		return c.localizer.Translate(acceptLanguage, ce.Message)
	}
	return c.localizer.Translate(acceptLanguage, i18n.MsgGenericError)
}
