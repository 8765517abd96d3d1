package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Project-Sylos/Canopy/internal/types"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
)

// ErrNotFound indicates the requested category does not exist.
var ErrNotFound = errors.New("category not found")

// DB wraps a DuckDB connection and stores categories as nested sets
type DB struct {
	conn *sql.DB
	mu   sync.Mutex // Protects all database operations from concurrent access
}

// New opens (or creates) the DuckDB database at dbPath and initializes the schema.
// An empty path opens an in-memory database.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB connection: %w", err)
	}

	// A single connection keeps in-memory databases shared across calls
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}

	if err := db.InitializeSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// InitializeSchema creates the categories table if it does not exist yet
func (db *DB) InitializeSchema() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := db.conn.Exec(BuildCategoriesTableSQL()); err != nil {
		return fmt.Errorf("failed to create categories table: %w", err)
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (*types.Category, error) {
	c := &types.Category{}
	var parentID sql.NullString

	if err := row.Scan(
		&c.ID,
		&parentID,
		&c.Name,
		&c.TreeID,
		&c.Left,
		&c.Right,
		&c.Level,
		&c.CreatedAt,
	); err != nil {
		return nil, err
	}

	c.ParentID = parentID.String
	return c, nil
}

// All returns every category ordered by (tree_id, lft), i.e. document order
func (db *DB) All(ctx context.Context) ([]*types.Category, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY tree_id, lft", selectColumnsSQL(), tableCategories)
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []*types.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// GetByIdentity retrieves a category by its [tree_id, lft] pair
func (db *DB) GetByIdentity(ctx context.Context, id types.NodeID) (*types.Category, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	query := fmt.Sprintf("SELECT %s FROM %s WHERE tree_id = ? AND lft = ?", selectColumnsSQL(), tableCategories)
	return db.getOne(db.conn.QueryRowContext(ctx, query, id.TreeID(), id.Left()), id.String())
}

// GetByName retrieves a category by its (globally unique) name
func (db *DB) GetByName(ctx context.Context, name string) (*types.Category, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.getByName(ctx, db.conn, name)
}

// queryer is satisfied by *sql.DB and *sql.Tx
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (db *DB) getByName(ctx context.Context, q queryer, name string) (*types.Category, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE name = ?", selectColumnsSQL(), tableCategories)
	return db.getOne(q.QueryRowContext(ctx, query, name), name)
}

func (db *DB) getOne(row *sql.Row, label string) (*types.Category, error) {
	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, label)
		}
		return nil, fmt.Errorf("failed to get category %s: %w", label, err)
	}
	return c, nil
}

// GetOrCreate returns the category called name, creating it as the last child
// of parent (or as the root of a new tree when parent is nil) if no category
// has that name yet. The boolean reports whether a row was inserted.
// Lookup and insertion happen under one lock and one transaction.
func (db *DB) GetOrCreate(ctx context.Context, name string, parent *types.Category) (*types.Category, bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := db.getByName(ctx, tx, name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	node := &types.Category{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	if parent == nil {
		var maxTree sql.NullInt64
		query := fmt.Sprintf("SELECT MAX(tree_id) FROM %s", tableCategories)
		if err := tx.QueryRowContext(ctx, query).Scan(&maxTree); err != nil {
			return nil, false, fmt.Errorf("failed to read max tree id: %w", err)
		}
		node.TreeID = int(maxTree.Int64) + 1
		node.Left = 1
		node.Right = 2
		node.Level = 0
	} else {
		// Reload the parent inside the transaction, the caller's copy may be stale
		query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", selectColumnsSQL(), tableCategories)
		current, err := db.getOne(tx.QueryRowContext(ctx, query, parent.ID), parent.Identity().String())
		if err != nil {
			return nil, false, err
		}

		target := current.Right
		shiftLeft := fmt.Sprintf("UPDATE %s SET lft = lft + 2 WHERE tree_id = ? AND lft > ?", tableCategories)
		if _, err := tx.ExecContext(ctx, shiftLeft, current.TreeID, target); err != nil {
			return nil, false, fmt.Errorf("failed to shift left indexes: %w", err)
		}
		shiftRight := fmt.Sprintf("UPDATE %s SET rght = rght + 2 WHERE tree_id = ? AND rght >= ?", tableCategories)
		if _, err := tx.ExecContext(ctx, shiftRight, current.TreeID, target); err != nil {
			return nil, false, fmt.Errorf("failed to shift right indexes: %w", err)
		}

		node.ParentID = current.ID
		node.TreeID = current.TreeID
		node.Left = target
		node.Right = target + 1
		node.Level = current.Level + 1

		parent.Right = current.Right + 2
	}

	if err := insertCategory(ctx, tx, node); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit category %s: %w", name, err)
	}

	return node, true, nil
}

func insertCategory(ctx context.Context, q queryer, node *types.Category) error {
	var parentID any
	if node.ParentID != "" {
		parentID = node.ParentID
	}

	_, err := q.ExecContext(ctx, insertSQL(),
		node.ID,
		parentID,
		node.Name,
		node.TreeID,
		node.Left,
		node.Right,
		node.Level,
		node.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert category %s: %w", node.Name, err)
	}
	return nil
}

// Save persists the mutable fields of a category (its name)
func (db *DB) Save(ctx context.Context, c *types.Category) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	query := fmt.Sprintf("UPDATE %s SET name = ? WHERE id = ?", tableCategories)
	result, err := db.conn.ExecContext(ctx, query, c.Name, c.ID)
	if err != nil {
		return fmt.Errorf("failed to save category %s: %w", c.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, c.Identity())
	}

	return nil
}

// Stats returns the number of stored categories and trees
func (db *DB) Stats(ctx context.Context) (types.Stats, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var stats types.Stats
	query := fmt.Sprintf("SELECT COUNT(*), COUNT(DISTINCT tree_id) FROM %s", tableCategories)
	if err := db.conn.QueryRowContext(ctx, query).Scan(&stats.Nodes, &stats.Trees); err != nil {
		return types.Stats{}, fmt.Errorf("failed to count categories: %w", err)
	}
	return stats, nil
}

// Reset removes every category
func (db *DB) Reset(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := db.conn.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", tableCategories)); err != nil {
		return fmt.Errorf("failed to delete all categories: %w", err)
	}
	return nil
}
