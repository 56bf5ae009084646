package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/calldeck/callquery/internal/store"
	_ "github.com/go-sql-driver/mysql"
)

// Config contains MySQL connection parameters
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// Store implements store.Store for MySQL
type Store struct {
	db       *sql.DB
	database string
}

// Open establishes a connection to MySQL
func Open(ctx context.Context, cfg Config) (*Store, error) {
	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?parseTime=true",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
	)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db, database: cfg.Database}, nil
}

// DatabaseType returns the backend identifier
func (s *Store) DatabaseType() string {
	return "mysql"
}

// Close closes the connection
func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// Ping verifies the connection is alive
func (s *Store) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("not connected")
	}
	return s.db.PingContext(ctx)
}

// Tables returns all tables in the schema with their columns
func (s *Store) Tables(ctx context.Context) ([]store.Table, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT table_name, column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = ?
		ORDER BY table_name, ordinal_position
	`, s.database)
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
func (s *Store) Execute(ctx context.Context, sqlStr string, opts store.Options) (*store.Result, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	rows, err := s.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var resultRows [][]any
	truncated := false
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}

		resultRows = append(resultRows, values)

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
