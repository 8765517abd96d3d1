package tree

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/Project-Sylos/Canopy/internal/types"
)

// TreeNode is the JSON form of a category and its subtree
type TreeNode struct {
	Name     string       `json:"name"`
	ID       types.NodeID `json:"id"`
	Children []*TreeNode  `json:"children"`
}

// Tree is the serialized category tree. An empty tree encodes as {}.
type Tree struct {
	Root *TreeNode
}

// IsEmpty reports whether the store held no root
func (t Tree) IsEmpty() bool {
	return t.Root == nil
}

// Count returns the number of nodes in the tree
func (t Tree) Count() int {
	if t.Root == nil {
		return 0
	}
	return t.Root.count()
}

func (n *TreeNode) count() int {
	total := 1
	for _, c := range n.Children {
		total += c.count()
	}
	return total
}

// MarshalJSON implements json.Marshaler
func (t Tree) MarshalJSON() ([]byte, error) {
	if t.Root == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(t.Root)
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Tree) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("{}")) {
		t.Root = nil
		return nil
	}
	var root TreeNode
	if err := json.Unmarshal(data, &root); err != nil {
		return err
	}
	t.Root = &root
	return nil
}

// Source provides the full category set of a store
type Source interface {
	All(ctx context.Context) ([]*types.Category, error)
}

// Generate reads every category from src and serializes the first root.
func Generate(ctx context.Context, src Source) (Tree, error) {
	categories, err := src.All(ctx)
	if err != nil {
		return Tree{}, fmt.Errorf("failed to load categories: %w", err)
	}
	return Serialize(Build(categories)), nil
}

// Serialize converts the first root of the forest. Only one tree is expected;
// further roots are ignored.
func Serialize(f *Forest) Tree {
	roots := f.Roots()
	if len(roots) == 0 {
		return Tree{}
	}
	return Tree{Root: convert(roots[0])}
}

func convert(n *Node) *TreeNode {
	out := &TreeNode{
		Name:     n.Category.Name,
		ID:       n.Category.Identity(),
		Children: make([]*TreeNode, 0, len(n.children)),
	}
	if !n.IsLeaf() {
		for _, child := range n.Children() {
			out.Children = append(out.Children, convert(child))
		}
	}
	return out
}
