package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/calldeck/callquery/internal/store"
)

func seedDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calls.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open seed database: %v", err)
	}
	defer db.Close()

	ddl := `
		CREATE TABLE employees (
			employee_id INTEGER PRIMARY KEY,
			name TEXT NOT NULL
		);
		CREATE TABLE calls (
			call_id INTEGER PRIMARY KEY,
			employee_id INTEGER NOT NULL,
			duration_seconds INTEGER NOT NULL,
			notes TEXT
		);
		INSERT INTO employees VALUES (50001, 'Maya'), (50005, 'Elena');
		INSERT INTO calls VALUES
			(1, 50001, 300, NULL),
			(2, 50005, 900, 'escalated'),
			(3, 50005, 1200, NULL);
	`
	if _, err := db.Exec(ddl); err != nil {
		t.Fatalf("failed to seed database: %v", err)
	}
	return path
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), ""); err == nil {
		t.Error("expected an error for an empty path")
	}
}

func TestTables(t *testing.T) {
	st, err := Open(context.Background(), seedDatabase(t))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer st.Close()

	tables, err := st.Tables(context.Background())
	if err != nil {
		t.Fatalf("Tables() error: %v", err)
	}

	if len(tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(tables))
	}
	// alphabetical
	if tables[0].Name != "calls" || tables[1].Name != "employees" {
		t.Errorf("unexpected table order: %v", tables)
	}
	if len(tables[0].Columns) != 4 {
		t.Errorf("expected 4 columns on calls, got %v", tables[0].Columns)
	}
	if tables[0].Columns[0].Name != "call_id" || tables[0].Columns[0].DataType != "INTEGER" {
		t.Errorf("unexpected first column: %+v", tables[0].Columns[0])
	}
}

func TestExecute(t *testing.T) {
	st, err := Open(context.Background(), seedDatabase(t))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer st.Close()

	res, err := st.Execute(context.Background(),
		"SELECT e.name, COUNT(*) AS n FROM calls c JOIN employees e ON c.employee_id = e.employee_id GROUP BY e.name ORDER BY n DESC",
		store.Options{},
	)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if len(res.Columns) != 2 || res.Columns[0] != "name" {
		t.Errorf("unexpected columns: %v", res.Columns)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(res.Rows))
	}
	if res.Rows[0][0] != "Elena" {
		t.Errorf("expected Elena first, got %v", res.Rows[0])
	}
}

func TestExecuteMaxRows(t *testing.T) {
	st, err := Open(context.Background(), seedDatabase(t))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer st.Close()

	res, err := st.Execute(context.Background(), "SELECT call_id FROM calls", store.Options{MaxRows: 2})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(res.Rows) != 2 {
		t.Errorf("row cap not applied: got %d rows", len(res.Rows))
	}
	if !res.Truncated {
		t.Error("expected Truncated when the cap cut off remaining rows")
	}
}

func TestExecuteMaxRowsExact(t *testing.T) {
	st, err := Open(context.Background(), seedDatabase(t))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer st.Close()

	// cap equal to the result size must not report truncation
	res, err := st.Execute(context.Background(), "SELECT call_id FROM calls", store.Options{MaxRows: 3})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(res.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(res.Rows))
	}
	if res.Truncated {
		t.Error("Truncated set although the cap matched the result size")
	}
}

func TestExecuteNullValues(t *testing.T) {
	st, err := Open(context.Background(), seedDatabase(t))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer st.Close()

	res, err := st.Execute(context.Background(), "SELECT notes FROM calls WHERE call_id = 1", store.Options{})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.Rows[0][0] != nil {
		t.Errorf("expected nil for NULL, got %v", res.Rows[0][0])
	}
}

func TestExecuteBadQuery(t *testing.T) {
	st, err := Open(context.Background(), seedDatabase(t))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer st.Close()

	if _, err := st.Execute(context.Background(), "SELECT callz FROM calls", store.Options{}); err == nil {
		t.Error("expected an error for an unknown column")
	}
}
