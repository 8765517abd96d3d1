// Package categories implements the domain steps behind the category admin
// endpoints: reading the tree and adding or renaming a node.
package categories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Project-Sylos/Canopy/internal/db"
	"github.com/Project-Sylos/Canopy/internal/i18n"
	"github.com/Project-Sylos/Canopy/internal/tree"
	"github.com/Project-Sylos/Canopy/internal/types"
)

// Store is the part of the category tree store the service needs
type Store interface {
	All(ctx context.Context) ([]*types.Category, error)
	GetByIdentity(ctx context.Context, id types.NodeID) (*types.Category, error)
	GetByName(ctx context.Context, name string) (*types.Category, error)
	GetOrCreate(ctx context.Context, name string, parent *types.Category) (*types.Category, bool, error)
	Save(ctx context.Context, c *types.Category) error
}

// Service validates and applies category mutations
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a Service over store
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// Tree serializes the current category tree
func (s *Service) Tree(ctx context.Context) (tree.Tree, error) {
	return tree.Generate(ctx, s.store)
}

// Add creates a category called name under parent (a new root when parent is nil).
// Names are unique across all trees, not per parent.
func (s *Service) Add(ctx context.Context, name string, parent *types.NodeID) (*types.Category, error) {
	var parentNode *types.Category
	if parent != nil {
		node, err := s.store.GetByIdentity(ctx, *parent)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, Validation(i18n.MsgParentMissing)
			}
			return nil, fmt.Errorf("failed to get parent %s: %w", parent, err)
		}
		parentNode = node
	}

	node, created, err := s.store.GetOrCreate(ctx, name, parentNode)
	if err != nil {
		return nil, fmt.Errorf("failed to create category %q: %w", name, err)
	}
	if !created {
		return nil, Validation(i18n.MsgDuplicateName)
	}

	s.logger.Info("category added", "name", node.Name, "id", node.Identity().String())
	return node, nil
}

// Rename sets the name of the category identified by id. The duplicate check
// does not exclude the node itself, so renaming to the current name fails.
func (s *Service) Rename(ctx context.Context, id types.NodeID, name string) (*types.Category, error) {
	node, err := s.store.GetByIdentity(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, Validation(i18n.MsgNodeMissing)
		}
		return nil, fmt.Errorf("failed to get category %s: %w", id, err)
	}

	_, err = s.store.GetByName(ctx, name)
	switch {
	case err == nil:
		return nil, Validation(i18n.MsgDuplicateName)
	case !errors.Is(err, db.ErrNotFound):
		return nil, fmt.Errorf("failed to look up name %q: %w", name, err)
	}

	previous := node.Name
	node.Name = name
	if err := s.store.Save(ctx, node); err != nil {
		return nil, fmt.Errorf("failed to save category %s: %w", id, err)
	}

	s.logger.Info("category renamed", "id", id.String(), "from", previous, "to", name)
	return node, nil
}
