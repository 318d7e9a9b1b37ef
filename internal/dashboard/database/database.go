package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Database wraps the CMDB store connection. All dashboard reads against
// agents, CIs, sub-resources and metric metadata go through it.
type Database struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens a CMDB store connection and verifies it.
func New(dsn string) (*Database, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cmdb connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping cmdb: %w", err)
	}

	return &Database{db: db}, nil
}

// GetDB exposes the underlying handle for repos.
func (d *Database) GetDB() *sql.DB {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.db
}

func (d *Database) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.db.QueryContext(ctx, query, args...)
}

func (d *Database) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.db.QueryRowContext(ctx, query, args...)
}

// Ping tests the connection.
func (d *Database) Ping() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.db.Ping()
}

// Close closes the connection.
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
