package agent_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/calldeck/callquery/internal/agent"
	"github.com/calldeck/callquery/internal/safety"
	"github.com/calldeck/callquery/internal/schema"
	"github.com/calldeck/callquery/internal/store"
)

type fakeStore struct {
	result  *store.Result
	execErr error
	lastSQL string
	lastOpt store.Options
}

func (f *fakeStore) DatabaseType() string         { return "fake" }
func (f *fakeStore) Close() error                 { return nil }
func (f *fakeStore) Ping(_ context.Context) error { return nil }
func (f *fakeStore) Tables(_ context.Context) ([]store.Table, error) {
	return nil, nil
}
func (f *fakeStore) Execute(_ context.Context, sql string, opts store.Options) (*store.Result, error) {
	f.lastSQL = sql
	f.lastOpt = opts
	return f.result, f.execErr
}

func newQueryTool(st *fakeStore) agent.Tool {
	desc := schema.New([]store.Table{
		{Name: "calls", Columns: []store.Column{{Name: "call_id", DataType: "INTEGER"}}},
	}, nil)
	return agent.RunQueryTool(safety.NewValidator(desc), st, agent.QueryToolOptions{
		MaxRows:     1000,
		PreviewRows: 50,
	})
}

func callTool(t *testing.T, tool agent.Tool, sql string) string {
	t.Helper()
	args, _ := json.Marshal(map[string]string{"sql_query": sql})
	return tool.Run(context.Background(), args)
}

func TestQueryToolSuccess(t *testing.T) {
	st := &fakeStore{result: &store.Result{
		Columns: []string{"count"},
		Rows:    [][]any{{int64(37)}},
	}}
	tool := newQueryTool(st)

	out := callTool(t, tool, "SELECT COUNT(*) AS count FROM calls")
	if !strings.Contains(out, "37") {
		t.Errorf("result rows missing from output: %q", out)
	}
	if st.lastOpt.MaxRows != 1000 {
		t.Errorf("row cap not forwarded: %+v", st.lastOpt)
	}
}

func TestQueryToolRejectsUnsafeSQL(t *testing.T) {
	st := &fakeStore{}
	tool := newQueryTool(st)

	out := callTool(t, tool, "DROP TABLE calls")
	if !strings.HasPrefix(out, "ERROR: only SELECT queries allowed") {
		t.Errorf("expected validation error text, got %q", out)
	}
	if st.lastSQL != "" {
		t.Errorf("rejected query must never reach the store: %q", st.lastSQL)
	}
}

func TestQueryToolExecutionFailure(t *testing.T) {
	st := &fakeStore{execErr: errors.New("no such column: callz")}
	tool := newQueryTool(st)

	out := callTool(t, tool, "SELECT callz FROM calls")
	if !strings.HasPrefix(out, "ERROR:") || !strings.Contains(out, "no such column") {
		t.Errorf("execution failure not surfaced as ERROR text: %q", out)
	}
}

func TestQueryToolEmptyResult(t *testing.T) {
	st := &fakeStore{result: &store.Result{Columns: []string{"call_id"}}}
	tool := newQueryTool(st)

	out := callTool(t, tool, "SELECT call_id FROM calls WHERE call_id < 0")
	if out != store.NoResultsMarker {
		t.Errorf("empty result = %q, want %q", out, store.NoResultsMarker)
	}
}

func TestQueryToolBadArguments(t *testing.T) {
	tool := newQueryTool(&fakeStore{})

	out := tool.Run(context.Background(), json.RawMessage(`{broken`))
	if !strings.HasPrefix(out, "ERROR: invalid tool arguments") {
		t.Errorf("expected argument error, got %q", out)
	}
}
