package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Project-Sylos/Canopy/internal/types"
	"github.com/google/uuid"
)

// Memory is an in-process category store with the same nested-set
// numbering as DB. It is selected with the "memory" driver and backs tests
// that do not need DuckDB.
type Memory struct {
	mu   sync.Mutex
	rows []*types.Category
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{}
}

// Close is a no-op
func (m *Memory) Close() error {
	return nil
}

func clone(c *types.Category) *types.Category {
	cp := *c
	return &cp
}

// All returns copies of every category ordered by (tree_id, lft)
func (m *Memory) All(_ context.Context) ([]*types.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*types.Category, 0, len(m.rows))
	for _, c := range m.rows {
		out = append(out, clone(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TreeID != out[j].TreeID {
			return out[i].TreeID < out[j].TreeID
		}
		return out[i].Left < out[j].Left
	})
	return out, nil
}

// GetByIdentity retrieves a category by its [tree_id, lft] pair
func (m *Memory) GetByIdentity(_ context.Context, id types.NodeID) (*types.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.rows {
		if c.TreeID == id.TreeID() && c.Left == id.Left() {
			return clone(c), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// GetByName retrieves a category by name
func (m *Memory) GetByName(_ context.Context, name string) (*types.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c := m.findByName(name); c != nil {
		return clone(c), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

func (m *Memory) findByName(name string) *types.Category {
	for _, c := range m.rows {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (m *Memory) findByRowID(id string) *types.Category {
	for _, c := range m.rows {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// GetOrCreate mirrors DB.GetOrCreate: the new node becomes the last child of parent
func (m *Memory) GetOrCreate(_ context.Context, name string, parent *types.Category) (*types.Category, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing := m.findByName(name); existing != nil {
		return clone(existing), false, nil
	}

	node := &types.Category{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	if parent == nil {
		maxTree := 0
		for _, c := range m.rows {
			if c.TreeID > maxTree {
				maxTree = c.TreeID
			}
		}
		node.TreeID = maxTree + 1
		node.Left = 1
		node.Right = 2
	} else {
		current := m.findByRowID(parent.ID)
		if current == nil {
			return nil, false, fmt.Errorf("%w: %s", ErrNotFound, parent.Identity())
		}

		target := current.Right
		for _, c := range m.rows {
			if c.TreeID != current.TreeID {
				continue
			}
			if c.Left > target {
				c.Left += 2
			}
			if c.Right >= target {
				c.Right += 2
			}
		}

		node.ParentID = current.ID
		node.TreeID = current.TreeID
		node.Left = target
		node.Right = target + 1
		node.Level = current.Level + 1

		parent.Right = current.Right
	}

	m.rows = append(m.rows, node)
	return clone(node), true, nil
}

// Save persists the category name
func (m *Memory) Save(_ context.Context, c *types.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.findByRowID(c.ID)
	if current == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, c.Identity())
	}
	current.Name = c.Name
	return nil
}

// Stats returns the number of stored categories and trees
func (m *Memory) Stats(_ context.Context) (types.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	trees := make(map[int]struct{})
	for _, c := range m.rows {
		trees[c.TreeID] = struct{}{}
	}
	return types.Stats{Nodes: len(m.rows), Trees: len(trees)}, nil
}

// Reset removes every category
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows = nil
	return nil
}
