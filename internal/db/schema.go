package db

import (
	"fmt"
	"strings"
)

// Table and column names for the nested-set category table
const (
	tableCategories = "categories"
)

// categoryColumns is the column order shared by every SELECT and INSERT
var categoryColumns = []string{"id", "parent_id", "name", "tree_id", "lft", "rght", "level", "created_at"}

// BuildCategoriesTableSQL builds the CREATE TABLE statement for the category table.
// Only the row id is keyed: lft/rght are renumbered on every insert and DuckDB
// rewrites indexed columns as delete+insert, so name uniqueness is enforced by
// the store under its lock instead of by a UNIQUE index.
func BuildCategoriesTableSQL() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id VARCHAR PRIMARY KEY,
	parent_id VARCHAR,
	name VARCHAR NOT NULL,
	tree_id INTEGER NOT NULL,
	lft INTEGER NOT NULL,
	rght INTEGER NOT NULL,
	level INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL
)`, tableCategories)
}

// selectColumnsSQL returns the comma separated column list
func selectColumnsSQL() string {
	return strings.Join(categoryColumns, ", ")
}

// insertSQL returns the INSERT statement with one placeholder per column
func insertSQL() string {
	placeholders := make([]string, len(categoryColumns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		tableCategories,
		selectColumnsSQL(),
		strings.Join(placeholders, ", "))
}
