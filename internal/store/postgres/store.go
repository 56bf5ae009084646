package postgres

import (
	"context"
	"fmt"

	"github.com/calldeck/callquery/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config contains PostgreSQL connection parameters
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// Store implements store.Store for PostgreSQL
type Store struct {
	pool *pgxpool.Pool
}

// Open establishes a connection pool to PostgreSQL
func Open(ctx context.Context, cfg Config) (*Store, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping: %w", err)
	}

	return &Store{pool: pool}, nil
}

// DatabaseType returns the backend identifier
func (s *Store) DatabaseType() string {
	return "postgres"
}

// Close closes the connection pool
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
	return nil
}

// Ping verifies the connection is alive
func (s *Store) Ping(ctx context.Context) error {
	if s.pool == nil {
		return fmt.Errorf("not connected")
	}
	return s.pool.Ping(ctx)
}

// Tables returns all public tables with their columns
func (s *Store) Tables(ctx context.Context) ([]store.Table, error) {
	query := `
		SELECT table_name, column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = 'public'
		ORDER BY table_name, ordinal_position
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to introspect schema: %w", err)
	}
	defer rows.Close()

	var tables []store.Table
	byName := make(map[string]int)
	for rows.Next() {
		var tableName, columnName, dataType string
		if err := rows.Scan(&tableName, &columnName, &dataType); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}

		idx, ok := byName[tableName]
		if !ok {
			tables = append(tables, store.Table{Name: tableName})
			idx = len(tables) - 1
			byName[tableName] = idx
		}
		tables[idx].Columns = append(tables[idx].Columns, store.Column{
			Name:     columnName,
			DataType: dataType,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tables, nil
}

// Execute runs a read query
func (s *Store) Execute(ctx context.Context, sql string, opts store.Options) (*store.Result, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = string(f.Name)
	}

	var resultRows [][]any
	truncated := false
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		row := make([]any, len(values))
		copy(row, values)
		resultRows = append(resultRows, row)

		if opts.MaxRows > 0 && len(resultRows) >= opts.MaxRows {
			// peek so a capped result is never mistaken for a complete one
			truncated = rows.Next()
			break
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return &store.Result{Columns: columns, Rows: resultRows, Truncated: truncated}, nil
}
