package store

import (
	"context"
	"time"
)

// Column contains column metadata
type Column struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
}

// Table contains table metadata
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Result contains query execution result. Truncated is set when the row cap
// stopped the scan early, so Rows is a prefix of a larger result.
type Result struct {
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
	Truncated bool     `json:"truncated,omitempty"`
}

// Options contains query execution options
type Options struct {
	MaxRows int
	Timeout time.Duration
}

// Store defines the interface for the backing call database
type Store interface {
	// DatabaseType returns the backend identifier (sqlite, postgres, mysql)
	DatabaseType() string

	// Close closes the connection
	Close() error

	// Ping verifies the connection is alive
	Ping(ctx context.Context) error

	// Tables returns all tables with their columns, for schema introspection
	Tables(ctx context.Context) ([]Table, error)

	// Execute runs a read query and returns columns plus rows.
	// Callers are expected to gate the SQL through the safety validator first.
	Execute(ctx context.Context, sql string, opts Options) (*Result, error)
}
