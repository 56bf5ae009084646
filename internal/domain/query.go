package domain

// QueryRequest represents a natural-language query request
type QueryRequest struct {
	Question  string `json:"question" validate:"required,max=2000"`
	SessionID string `json:"session_id,omitempty" validate:"omitempty,max=128"`
}

// QueryResponse represents the outcome of one orchestration.
// SessionID is always populated, even when the caller supplied none.
// Success is true iff Answer was produced without an unrecovered error.
type QueryResponse struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	SessionID string `json:"session_id"`
	Success   bool   `json:"success"`
}
