package agent

import (
	"time"

	"github.com/calldeck/callquery/internal/llm"
	"github.com/calldeck/callquery/internal/safety"
	"github.com/calldeck/callquery/internal/schema"
	"github.com/calldeck/callquery/internal/store"
)

// StageConfig carries the shared construction parameters for both stages
type StageConfig struct {
	Provider llm.Provider
	Model    string
	MaxTurns int
}

// NewSQLStage builds the generation stage: schema-aware instructions plus the
// gated run_sql_query capability.
func NewSQLStage(cfg StageConfig, desc *schema.Descriptor, notes []string, validator *safety.Validator, st store.Store, queryOpts QueryToolOptions) *Agent {
	instructions := SQLAgentInstructions(desc.PromptContext(), notes, time.Now())
	tool := RunQueryTool(validator, st, queryOpts)
	return New("sql", instructions, cfg.Provider, cfg.Model, []Tool{tool}, cfg.MaxTurns)
}

// NewEvaluatorStage builds the evaluation stage with a handoff back to the
// generation stage for results it judges insufficient.
func NewEvaluatorStage(cfg StageConfig, sqlStage *Agent) *Agent {
	return New("evaluator", EvaluatorInstructions(), cfg.Provider, cfg.Model, []Tool{Handoff(sqlStage)}, cfg.MaxTurns)
}
