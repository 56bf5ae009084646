package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/calldeck/callquery/internal/llm"
	"github.com/calldeck/callquery/internal/safety"
	"github.com/calldeck/callquery/internal/store"
	"github.com/rs/zerolog/log"
)

// QueryToolOptions bounds query execution through the tool
type QueryToolOptions struct {
	MaxRows     int
	PreviewRows int
	Timeout     time.Duration
}

// RunQueryTool composes the safety validator and the store into the
// run_sql_query capability bound to the SQL agent. Every query the model
// issues passes through the validator before it reaches the store; both
// validation and execution failures come back as "ERROR: ..." text so the
// model can retry with a corrected query inside its own loop.
func RunQueryTool(validator *safety.Validator, st store.Store, opts QueryToolOptions) Tool {
	return Tool{
		Def: llm.Tool{
			Name:        "run_sql_query",
			Description: "Execute a SELECT SQL query against the call center database and return the results as formatted text, or an error message.",
			Params: []llm.Param{{
				Name:        "sql_query",
				Type:        "string",
				Description: "A valid SELECT SQL query",
				Required:    true,
			}},
		},
		Run: func(ctx context.Context, args json.RawMessage) string {
			var in struct {
				SQLQuery string `json:"sql_query"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return fmt.Sprintf("ERROR: invalid tool arguments: %v", err)
			}

			log.Info().Str("sql", in.SQLQuery).Msg("SQL query generated")

			if err := validator.Validate(in.SQLQuery); err != nil {
				log.Warn().Err(err).Str("sql", in.SQLQuery).Msg("SQL validation failed")
				return fmt.Sprintf("ERROR: %s", err.Error())
			}

			res, err := st.Execute(ctx, in.SQLQuery, store.Options{
				MaxRows: opts.MaxRows,
				Timeout: opts.Timeout,
			})
			if err != nil {
				log.Error().Err(err).Str("sql", in.SQLQuery).Msg("SQL execution failed")
				return fmt.Sprintf("ERROR: %v", err)
			}

			log.Info().Int("row_count", len(res.Rows)).Str("sql", in.SQLQuery).Msg("query executed")
			return store.FormatResult(res, opts.PreviewRows)
		},
	}
}
