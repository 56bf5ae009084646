package agent_test

import (
	"strings"
	"testing"
	"time"

	"github.com/calldeck/callquery/internal/agent"
)

func TestSQLAgentInstructions(t *testing.T) {
	now := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)
	got := agent.SQLAgentInstructions("DATABASE SCHEMA:\n\nTable: calls", []string{"durations are in seconds"}, now)

	if !strings.Contains(got, "Today's date: 2025-10-15") {
		t.Errorf("missing current date: %q", got)
	}
	if !strings.Contains(got, "Last 10 business days: since 2025-10-01") {
		t.Errorf("business-day window not anchored 14 calendar days back: %q", got)
	}
	if !strings.Contains(got, "Table: calls") {
		t.Errorf("schema context not embedded: %q", got)
	}
	if !strings.Contains(got, "IMPORTANT NOTES:\n- durations are in seconds") {
		t.Errorf("notes not embedded: %q", got)
	}
}

func TestSQLAgentInstructionsNoNotes(t *testing.T) {
	got := agent.SQLAgentInstructions("schema", nil, time.Now())
	if strings.Contains(got, "IMPORTANT NOTES") {
		t.Error("notes section should be omitted when none are configured")
	}
}

func TestBuildEvalPrompt(t *testing.T) {
	got := agent.BuildEvalPrompt("How many calls?", "count\n-----\n37")

	if !strings.Contains(got, "Original question: How many calls?") {
		t.Errorf("question missing: %q", got)
	}
	if !strings.Contains(got, "37") {
		t.Errorf("results missing: %q", got)
	}
}
