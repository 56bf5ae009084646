package agent_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/calldeck/callquery/internal/agent"
	"github.com/calldeck/callquery/internal/llm"
)

// scriptedProvider returns canned responses in order and records requests
type scriptedProvider struct {
	responses []llm.Message
	err       error
	requests  []llm.Request
}

func (p *scriptedProvider) Name() string              { return "scripted" }
func (p *scriptedProvider) AvailableModels() []string { return []string{"test"} }
func (p *scriptedProvider) DefaultModel() string      { return "test" }
func (p *scriptedProvider) IsConfigured() bool        { return true }

func (p *scriptedProvider) Chat(_ context.Context, req llm.Request, _ string) (*llm.Response, error) {
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	msg := p.responses[len(p.requests)-1]
	return &llm.Response{Message: msg}, nil
}

func echoTool(name string) agent.Tool {
	return agent.Tool{
		Def: llm.Tool{Name: name, Params: []llm.Param{{Name: "text", Type: "string"}}},
		Run: func(_ context.Context, args json.RawMessage) string {
			var in struct {
				Text string `json:"text"`
			}
			_ = json.Unmarshal(args, &in)
			return "echo: " + in.Text
		},
	}
}

func TestRunPlainAnswer(t *testing.T) {
	p := &scriptedProvider{responses: []llm.Message{
		{Role: llm.RoleAssistant, Content: "final answer"},
	}}
	a := agent.New("test", "instructions", p, "", nil, 0)

	out, err := a.Run(context.Background(), "question", nil)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if out != "final answer" {
		t.Errorf("Run() = %q, want %q", out, "final answer")
	}

	req := p.requests[0]
	if req.System != "instructions" {
		t.Errorf("system prompt not forwarded: %q", req.System)
	}
	if len(req.Messages) != 1 || req.Messages[0].Content != "question" {
		t.Errorf("unexpected messages: %+v", req.Messages)
	}
}

func TestRunToolLoop(t *testing.T) {
	p := &scriptedProvider{responses: []llm.Message{
		{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{
			{ID: "call_1", Name: "echo", Arguments: `{"text":"hello"}`},
		}},
		{Role: llm.RoleAssistant, Content: "done"},
	}}
	a := agent.New("test", "", p, "", []agent.Tool{echoTool("echo")}, 0)

	out, err := a.Run(context.Background(), "go", nil)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if out != "done" {
		t.Errorf("Run() = %q, want %q", out, "done")
	}

	// second request must carry the assistant turn plus the tool result
	second := p.requests[1]
	last := second.Messages[len(second.Messages)-1]
	if last.Role != llm.RoleTool || last.Content != "echo: hello" || last.ToolRef != "call_1" {
		t.Errorf("tool result not threaded back: %+v", last)
	}
}

func TestRunUnknownTool(t *testing.T) {
	p := &scriptedProvider{responses: []llm.Message{
		{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{
			{ID: "call_1", Name: "missing", Arguments: `{}`},
		}},
		{Role: llm.RoleAssistant, Content: "recovered"},
	}}
	a := agent.New("test", "", p, "", []agent.Tool{echoTool("echo")}, 0)

	out, err := a.Run(context.Background(), "go", nil)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if out != "recovered" {
		t.Errorf("Run() = %q, want %q", out, "recovered")
	}

	second := p.requests[1]
	last := second.Messages[len(second.Messages)-1]
	if !strings.Contains(last.Content, "ERROR: unknown tool: missing") {
		t.Errorf("unknown tool not reported to the model: %q", last.Content)
	}
}

func TestRunTurnBudgetExhausted(t *testing.T) {
	// the model asks for a tool on every turn, never answering
	loop := llm.Message{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{
		{ID: "call_1", Name: "echo", Arguments: `{"text":"again"}`},
	}}
	p := &scriptedProvider{responses: []llm.Message{loop, loop, loop}}
	a := agent.New("test", "", p, "", []agent.Tool{echoTool("echo")}, 3)

	out, err := a.Run(context.Background(), "go", nil)
	if err != nil {
		t.Fatalf("budget exhaustion must not be an error: %v", err)
	}
	if !strings.HasPrefix(out, "ERROR:") {
		t.Errorf("expected ERROR text, got %q", out)
	}
	if len(p.requests) != 3 {
		t.Errorf("expected 3 model calls, got %d", len(p.requests))
	}
}

func TestRunProviderFailure(t *testing.T) {
	p := &scriptedProvider{err: errors.New("connection refused")}
	a := agent.New("test", "", p, "", nil, 0)

	_, err := a.Run(context.Background(), "go", nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("cause not preserved: %v", err)
	}
}

func TestRunHistoryNotMutated(t *testing.T) {
	p := &scriptedProvider{responses: []llm.Message{
		{Role: llm.RoleAssistant, Content: "ok"},
	}}
	a := agent.New("test", "", p, "", nil, 0)

	history := make([]llm.Message, 1, 4)
	history[0] = llm.Message{Role: llm.RoleUser, Content: "earlier"}

	if _, err := a.Run(context.Background(), "now", history); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(history) != 1 || history[0].Content != "earlier" {
		t.Errorf("history mutated: %+v", history)
	}
}

func TestHandoff(t *testing.T) {
	targetProvider := &scriptedProvider{responses: []llm.Message{
		{Role: llm.RoleAssistant, Content: "target says hi"},
	}}
	target := agent.New("sql", "", targetProvider, "", nil, 0)

	tool := agent.Handoff(target)
	if tool.Def.Name != "transfer_to_sql" {
		t.Errorf("unexpected handoff tool name: %q", tool.Def.Name)
	}

	out := tool.Run(context.Background(), json.RawMessage(`{"input":"hello"}`))
	if out != "target says hi" {
		t.Errorf("handoff output = %q, want %q", out, "target says hi")
	}

	// the delegated request must reach the target
	if targetProvider.requests[0].Messages[0].Content != "hello" {
		t.Errorf("input not forwarded: %+v", targetProvider.requests[0].Messages)
	}
}

func TestHandoffBadArguments(t *testing.T) {
	target := agent.New("sql", "", &scriptedProvider{}, "", nil, 0)
	tool := agent.Handoff(target)

	out := tool.Run(context.Background(), json.RawMessage(`{not json`))
	if !strings.HasPrefix(out, "ERROR:") {
		t.Errorf("expected ERROR text, got %q", out)
	}
}
