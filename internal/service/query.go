package service

import (
	"context"
	"strings"
	"time"

	"github.com/calldeck/callquery/internal/agent"
	"github.com/calldeck/callquery/internal/domain"
	"github.com/calldeck/callquery/internal/llm"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// errorMarker flags a recoverable generation-stage failure. The match is a
// deliberately coarse substring check: an answer that merely discusses errors
// in the data trips it too, and narrowing it risks missing genuine failures.
const errorMarker = "ERROR:"

// Stage is a runnable pipeline stage. Satisfied by *agent.Agent; substituted
// with fakes in tests.
type Stage interface {
	Name() string
	Run(ctx context.Context, input string, history []llm.Message) (string, error)
}

// Options tunes the orchestrator's retry policy
type Options struct {
	MaxRetries int           // retries beyond the first attempt
	BaseDelay  time.Duration // backoff unit: wait = (attempt+1) * BaseDelay
}

// QueryService orchestrates the two-stage pipeline: generation (SQL agent),
// recoverable-failure check, backoff retry, evaluation, and session
// persistence.
//
// Two concurrent Ask calls with the same session identifier interleave their
// appended turns unpredictably; serializing per-session calls is the
// caller's responsibility.
type QueryService struct {
	sqlStage   Stage
	evalStage  Stage
	sessions   domain.SessionStore
	maxRetries int
	baseDelay  time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewQueryService creates the orchestrator
func NewQueryService(sqlStage, evalStage Stage, sessions domain.SessionStore, opts Options) *QueryService {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 2
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 2 * time.Second
	}
	return &QueryService{
		sqlStage:   sqlStage,
		evalStage:  evalStage,
		sessions:   sessions,
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.BaseDelay,
		sleep:      sleepContext,
	}
}

// Ask runs one orchestration. The resolved session identifier is echoed in
// the response; when the caller supplies none a fresh one is minted. Session
// turns are persisted only after a complete answer, so an abandoned or
// failed call leaves the session unmodified.
func (s *QueryService) Ask(ctx context.Context, question, sessionID string) (*domain.QueryResponse, error) {
	resolved := sessionID
	if resolved == "" {
		resolved = uuid.NewString()
	}

	history, err := s.history(ctx, resolved)
	if err != nil {
		log.Error().Err(err).Str("session_id", resolved).Msg("failed to load session context")
		history = nil
	}

	var output string
	var lastErr string

	for attempt := 0; ; attempt++ {
		out, err := s.sqlStage.Run(ctx, question, history)
		if err != nil {
			return nil, &PipelineError{
				Kind:      KindUpstreamUnavailable,
				Question:  question,
				SessionID: resolved,
				Detail:    "generation stage failed",
				Err:       err,
			}
		}

		if !strings.Contains(out, errorMarker) {
			output = out
			break
		}

		lastErr = out
		if attempt >= s.maxRetries {
			return nil, &PipelineError{
				Kind:      KindPipelineExhausted,
				Question:  question,
				SessionID: resolved,
				Detail:    lastErr,
			}
		}

		wait := time.Duration(attempt+1) * s.baseDelay
		log.Warn().
			Int("attempt", attempt).
			Dur("wait", wait).
			Str("session_id", resolved).
			Msg("generation attempt failed, backing off")
		if err := s.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	answer, err := s.evalStage.Run(ctx, agent.BuildEvalPrompt(question, output), history)
	if err != nil {
		return nil, &PipelineError{
			Kind:      KindUpstreamUnavailable,
			Question:  question,
			SessionID: resolved,
			Detail:    "evaluation stage failed",
			Err:       err,
		}
	}

	s.persist(ctx, resolved, question, answer)

	return &domain.QueryResponse{
		Question:  question,
		Answer:    answer,
		SessionID: resolved,
		Success:   true,
	}, nil
}

// ClearSession removes all turns for the identifier. Idempotent.
func (s *QueryService) ClearSession(ctx context.Context, sessionID string) error {
	if s.sessions == nil {
		return nil
	}
	return s.sessions.Clear(ctx, sessionID)
}

// SessionHistory returns the session's turns in append order
func (s *QueryService) SessionHistory(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	if s.sessions == nil {
		return nil, nil
	}
	return s.sessions.Context(ctx, sessionID)
}

func (s *QueryService) history(ctx context.Context, sessionID string) ([]llm.Message, error) {
	if s.sessions == nil {
		return nil, nil
	}
	turns, err := s.sessions.Context(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	msgs := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		role := llm.RoleUser
		if t.Role == domain.RoleAssistant {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: t.Content})
	}
	return msgs, nil
}

func (s *QueryService) persist(ctx context.Context, sessionID, question, answer string) {
	if s.sessions == nil {
		return
	}
	now := time.Now()
	turns := []domain.Turn{
		{Role: domain.RoleUser, Content: question, CreatedAt: now},
		{Role: domain.RoleAssistant, Content: answer, CreatedAt: now},
	}
	for _, t := range turns {
		if err := s.sessions.Append(ctx, sessionID, t); err != nil {
			log.Error().Err(err).Str("session_id", sessionID).Msg("failed to persist turn")
			return
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
