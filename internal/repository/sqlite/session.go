package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/calldeck/callquery/internal/domain"
	_ "modernc.org/sqlite"
)

const schemaDDL = `
	CREATE TABLE IF NOT EXISTS session_turns (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		role       TEXT NOT NULL,
		content    TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_session_turns_session
		ON session_turns (session_id, id);
`

// SessionRepository implements domain.SessionStore on a SQLite file. Turn
// order is the autoincrement rowid, so Context returns turns in the exact
// order they were appended regardless of clock skew.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository opens (or creates) the session database at path and
// ensures the turn log table exists.
func NewSessionRepository(ctx context.Context, path string) (*SessionRepository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}
	// modernc.org/sqlite serializes writers; a single connection avoids
	// SQLITE_BUSY under concurrent appends.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize session schema: %w", err)
	}
	return &SessionRepository{db: db}, nil
}

// Close releases the underlying database handle
func (r *SessionRepository) Close() error {
	return r.db.Close()
}

func (r *SessionRepository) Append(ctx context.Context, sessionID string, turn domain.Turn) error {
	query := `
		INSERT INTO session_turns (session_id, role, content, created_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, sessionID, string(turn.Role), turn.Content, turn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append turn: %w", err)
	}
	return nil
}

func (r *SessionRepository) Context(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	query := `
		SELECT role, content, created_at
		FROM session_turns
		WHERE session_id = ?
		ORDER BY id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session turns: %w", err)
	}
	defer rows.Close()

	turns := []domain.Turn{}
	for rows.Next() {
		var t domain.Turn
		var role string
		if err := rows.Scan(&role, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		t.Role = domain.TurnRole(role)
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate turns: %w", err)
	}
	return turns, nil
}

func (r *SessionRepository) Clear(ctx context.Context, sessionID string) error {
	query := `DELETE FROM session_turns WHERE session_id = ?`
	if _, err := r.db.ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
