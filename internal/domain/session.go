package domain

import (
	"context"
	"time"
)

// TurnRole represents the author of a conversation turn
type TurnRole string

const (
	RoleUser      TurnRole = "user"
	RoleAssistant TurnRole = "assistant"
)

// Turn is a single immutable entry in a session's conversation log
type Turn struct {
	Role      TurnRole  `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionStore defines the interface for the durable, keyed conversation log.
// Sessions are created implicitly by the first Append to an identifier.
//
// Concurrent calls against different identifiers are independent. Two
// concurrent orchestrations against the same identifier are a caller error;
// the store does not serialize them.
type SessionStore interface {
	// Append adds a turn to the session log. Durable and ordered with
	// respect to subsequent Context calls in the same process.
	Append(ctx context.Context, sessionID string, turn Turn) error

	// Context returns all turns in append order. An unknown identifier
	// yields an empty slice, not an error.
	Context(ctx context.Context, sessionID string) ([]Turn, error)

	// Clear removes all turns for the identifier. Idempotent; clearing a
	// missing or empty session succeeds silently.
	Clear(ctx context.Context, sessionID string) error
}
