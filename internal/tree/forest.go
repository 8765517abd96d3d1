// Package tree materializes stored categories into an in-memory forest and
// serializes it into the nested {name, id, children} structure sent to clients.
package tree

import (
	"sort"

	"github.com/Project-Sylos/Canopy/internal/types"
)

// Node is a materialized category with its children resolved.
type Node struct {
	Category *types.Category

	forest   *Forest
	children []int
}

// Forest holds every category of a store in one arena. Parent/child links are
// resolved once by Build; nodes refer to each other by arena index.
type Forest struct {
	nodes      []Node
	roots      []int
	byIdentity map[types.NodeID]int
}

// Build materializes categories into a forest. Children keep document order
// (left index ascending), roots are ordered by (tree_id, lft).
func Build(categories []*types.Category) *Forest {
	ordered := make([]*types.Category, len(categories))
	copy(ordered, categories)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].TreeID != ordered[j].TreeID {
			return ordered[i].TreeID < ordered[j].TreeID
		}
		return ordered[i].Left < ordered[j].Left
	})

	f := &Forest{
		nodes:      make([]Node, len(ordered)),
		byIdentity: make(map[types.NodeID]int, len(ordered)),
	}

	byRowID := make(map[string]int, len(ordered))
	for i, c := range ordered {
		f.nodes[i] = Node{Category: c, forest: f}
		f.byIdentity[c.Identity()] = i
		byRowID[c.ID] = i
	}

	for i, c := range ordered {
		parent, ok := byRowID[c.ParentID]
		if c.IsRoot() || !ok {
			f.roots = append(f.roots, i)
			continue
		}
		f.nodes[parent].children = append(f.nodes[parent].children, i)
	}

	return f
}

// Len returns the number of nodes in the forest
func (f *Forest) Len() int {
	return len(f.nodes)
}

// Roots returns the root nodes in (tree_id, lft) order
func (f *Forest) Roots() []*Node {
	return f.resolve(f.roots)
}

// Lookup finds a node by its [tree_id, lft] identity
func (f *Forest) Lookup(id types.NodeID) (*Node, bool) {
	i, ok := f.byIdentity[id]
	if !ok {
		return nil, false
	}
	return &f.nodes[i], true
}

func (f *Forest) resolve(indexes []int) []*Node {
	out := make([]*Node, len(indexes))
	for i, idx := range indexes {
		out[i] = &f.nodes[idx]
	}
	return out
}

// Children returns the node's children in document order
func (n *Node) Children() []*Node {
	return n.forest.resolve(n.children)
}

// IsLeaf reports whether the node has no children
func (n *Node) IsLeaf() bool {
	return len(n.children) == 0
}
