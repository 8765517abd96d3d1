package types

import (
	"fmt"
	"time"
)

// Config represents the complete configuration for Canopy
type Config struct {
	API        APIConfig        `json:"api"`
	Store      StoreConfig      `json:"store"`
	Categories CategoriesConfig `json:"categories"`
	Auth       AuthConfig       `json:"auth"`
	Log        LogConfig        `json:"log"`
}

// APIConfig represents the HTTP API configuration
type APIConfig struct {
	Host        string   `json:"host"`
	Port        int      `json:"port"`
	CORSOrigins []string `json:"cors_origins"`
}

// StoreConfig selects and configures the category tree store
type StoreConfig struct {
	Driver string `json:"driver"`  // "duckdb" or "memory"
	DBPath string `json:"db_path"` // DuckDB file, ignored by the memory store
}

// CategoriesConfig holds the feature settings of the categories pages
type CategoriesConfig struct {
	Enabled         bool   `json:"enabled"`
	IndexURL        string `json:"index_url"`
	SeedFile        string `json:"seed_file"`
	DefaultLanguage string `json:"default_language"`
}

// AuthConfig lists the API keys that map to user roles
type AuthConfig struct {
	AdminKeys []string `json:"-"`
	UserKeys  []string `json:"-"`
}

// LogConfig represents the logging configuration
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Store driver names
const (
	DriverDuckDB = "duckdb"
	DriverMemory = "memory"
)

// NodeID is the positional identity of a category: [tree_id, left_index].
// It is what clients see; the row UUID never leaves the store.
type NodeID [2]int

// TreeID returns the tree identifier half of the pair
func (id NodeID) TreeID() int { return id[0] }

// Left returns the left index half of the pair
func (id NodeID) Left() int { return id[1] }

func (id NodeID) String() string {
	return fmt.Sprintf("[%d,%d]", id[0], id[1])
}

// Category represents a category row in the nested-set table
type Category struct {
	ID        string    `json:"-" db:"id"`                  // Row UUID
	ParentID  string    `json:"-" db:"parent_id"`           // Parent row UUID, empty for roots
	Name      string    `json:"name" db:"name"`             // Globally unique display name
	TreeID    int       `json:"tree_id" db:"tree_id"`       // Nested-set tree identifier
	Left      int       `json:"lft" db:"lft"`               // Nested-set left index
	Right     int       `json:"rght" db:"rght"`             // Nested-set right index
	Level     int       `json:"level" db:"level"`           // Depth, 0 for roots
	CreatedAt time.Time `json:"created_at" db:"created_at"` // Insertion time
}

// Identity returns the wire identity of the category
func (c *Category) Identity() NodeID {
	return NodeID{c.TreeID, c.Left}
}

// IsRoot reports whether the category has no parent
func (c *Category) IsRoot() bool {
	return c.ParentID == ""
}

// IsLeaf reports whether the nested-set range encloses no other node
func (c *Category) IsLeaf() bool {
	return c.Right-c.Left == 1
}

// APIResponse represents a generic API response.
// The category admin endpoints only ever fill Success and Message.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Stats represents counters about the stored category forest
type Stats struct {
	Nodes int `json:"nodes"`
	Trees int `json:"trees"`
}
