package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/calldeck/callquery/internal/llm"
	"github.com/rs/zerolog/log"
)

// ToolFunc executes a tool call. Failures are reported as "ERROR: ..." text
// rather than errors so the model can see and correct its own mistake.
type ToolFunc func(ctx context.Context, args json.RawMessage) string

// Tool pairs a declaration with its implementation
type Tool struct {
	Def llm.Tool
	Run ToolFunc
}

// Agent is one instructed LLM stage with a bounded tool loop. Tools and
// handoffs are explicit values wired in at construction, so stages can be
// substituted with fakes in tests.
type Agent struct {
	name         string
	instructions string
	provider     llm.Provider
	model        string
	tools        []Tool
	maxTurns     int
}

// New creates an agent. maxTurns bounds how many model calls one Run may
// make while the model keeps requesting tools.
func New(name, instructions string, provider llm.Provider, model string, tools []Tool, maxTurns int) *Agent {
	if maxTurns <= 0 {
		maxTurns = 8
	}
	return &Agent{
		name:         name,
		instructions: instructions,
		provider:     provider,
		model:        model,
		tools:        tools,
		maxTurns:     maxTurns,
	}
}

// Name returns the agent identifier
func (a *Agent) Name() string {
	return a.name
}

// Run drives the conversation until the model produces a final text answer.
// history supplies prior session turns for continuity; it is not mutated.
// A provider failure is returned as an error. Running out of tool turns is
// reported as "ERROR: ..." text instead, so the orchestrator treats it as
// recoverable rather than as an outage.
func (a *Agent) Run(ctx context.Context, input string, history []llm.Message) (string, error) {
	msgs := make([]llm.Message, 0, len(history)+1)
	msgs = append(msgs, history...)
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: input})

	defs := make([]llm.Tool, len(a.tools))
	for i, t := range a.tools {
		defs[i] = t.Def
	}

	for turn := 0; turn < a.maxTurns; turn++ {
		resp, err := a.provider.Chat(ctx, llm.Request{
			System:   a.instructions,
			Messages: msgs,
			Tools:    defs,
		}, a.model)
		if err != nil {
			return "", fmt.Errorf("%s: generation failed: %w", a.name, err)
		}

		msgs = append(msgs, resp.Message)

		if len(resp.Message.ToolCalls) == 0 {
			return resp.Message.Content, nil
		}

		for _, tc := range resp.Message.ToolCalls {
			out := a.dispatch(ctx, tc)
			msgs = append(msgs, llm.Message{
				Role:     llm.RoleTool,
				Content:  out,
				ToolRef:  tc.ID,
				ToolName: tc.Name,
			})
		}
	}

	log.Warn().Str("agent", a.name).Int("max_turns", a.maxTurns).Msg("tool turn budget exhausted")
	return fmt.Sprintf("ERROR: %s exceeded %d tool invocations without a final answer", a.name, a.maxTurns), nil
}

func (a *Agent) dispatch(ctx context.Context, tc llm.ToolCall) string {
	for _, t := range a.tools {
		if t.Def.Name == tc.Name {
			return t.Run(ctx, json.RawMessage(tc.Arguments))
		}
	}
	return fmt.Sprintf("ERROR: unknown tool: %s", tc.Name)
}

// Handoff exposes a target agent as a tool, letting one stage delegate work
// to another and receive its final output as the tool result.
func Handoff(target *Agent) Tool {
	return Tool{
		Def: llm.Tool{
			Name:        "transfer_to_" + target.name,
			Description: fmt.Sprintf("Hand the request to the %s agent and return its answer.", target.name),
			Params: []llm.Param{{
				Name:        "input",
				Type:        "string",
				Description: "The request to pass along",
				Required:    true,
			}},
		},
		Run: func(ctx context.Context, args json.RawMessage) string {
			var in struct {
				Input string `json:"input"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return fmt.Sprintf("ERROR: invalid handoff arguments: %v", err)
			}
			out, err := target.Run(ctx, in.Input, nil)
			if err != nil {
				return fmt.Sprintf("ERROR: handoff to %s failed: %v", target.name, err)
			}
			return out
		},
	}
}
