package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/calldeck/callquery/internal/llm"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Provider implements llm.Provider for Gemini
type Provider struct {
	apiKey string
	model  string
}

// NewProvider creates a new Gemini provider
func NewProvider(apiKey, model string) *Provider {
	return &Provider{
		apiKey: apiKey,
		model:  model,
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "gemini"
}

// AvailableModels returns list of supported models
func (p *Provider) AvailableModels() []string {
	return []string{
		"gemini-2.5-flash",
		"gemini-1.5-flash",
		"gemini-1.5-pro",
	}
}

// DefaultModel returns the default model
func (p *Provider) DefaultModel() string {
	if p.model != "" {
		return p.model
	}
	return "gemini-2.5-flash"
}

// IsConfigured checks if provider has valid credentials
func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

// Chat runs one generation over the conversation
func (p *Provider) Chat(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	if !p.IsConfigured() {
		return nil, fmt.Errorf("gemini provider is not configured (missing API key)")
	}

	if model == "" {
		model = p.DefaultModel()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	generativeModel := client.GenerativeModel(model)
	var temperature float32 = 0.0
	generativeModel.Temperature = &temperature

	if req.System != "" {
		generativeModel.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}

	if len(req.Tools) > 0 {
		tool := &genai.Tool{}
		for _, t := range req.Tools {
			tool.FunctionDeclarations = append(tool.FunctionDeclarations, &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  paramSchema(t.Params),
			})
		}
		generativeModel.Tools = []*genai.Tool{tool}
	}

	contents, err := buildContents(req.Messages)
	if err != nil {
		return nil, err
	}
	if len(contents) == 0 {
		return nil, fmt.Errorf("empty conversation")
	}

	cs := generativeModel.StartChat()
	cs.History = contents[:len(contents)-1]
	last := contents[len(contents)-1]

	start := time.Now()
	resp, err := cs.SendMessage(ctx, last.Parts...)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from gemini")
	}

	msg := llm.Message{Role: llm.RoleAssistant}
	for _, part := range resp.Candidates[0].Content.Parts {
		switch v := part.(type) {
		case genai.Text:
			msg.Content += string(v)
		case genai.FunctionCall:
			args, err := json.Marshal(v.Args)
			if err != nil {
				return nil, fmt.Errorf("failed to encode function call args: %w", err)
			}
			// Gemini has no call ids; the function name stands in
			msg.ToolCalls = append(msg.ToolCalls, llm.ToolCall{
				ID:        v.Name,
				Name:      v.Name,
				Arguments: string(args),
			})
		}
	}

	tokensUsed := 0
	if resp.UsageMetadata != nil {
		tokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &llm.Response{
		Message:    msg,
		Model:      model,
		TokensUsed: tokensUsed,
		LatencyMs:  latency,
	}, nil
}

func buildContents(msgs []llm.Message) ([]*genai.Content, error) {
	var out []*genai.Content
	for _, m := range msgs {
		switch m.Role {
		case llm.RoleUser:
			out = append(out, &genai.Content{
				Role:  "user",
				Parts: []genai.Part{genai.Text(m.Content)},
			})
		case llm.RoleAssistant:
			var parts []genai.Part
			if m.Content != "" {
				parts = append(parts, genai.Text(m.Content))
			}
			for _, tc := range m.ToolCalls {
				var args map[string]any
				if tc.Arguments != "" {
					if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
						return nil, fmt.Errorf("failed to decode function call args: %w", err)
					}
				}
				parts = append(parts, genai.FunctionCall{Name: tc.Name, Args: args})
			}
			out = append(out, &genai.Content{Role: "model", Parts: parts})
		case llm.RoleTool:
			out = append(out, &genai.Content{
				Role: "user",
				Parts: []genai.Part{genai.FunctionResponse{
					Name:     m.ToolName,
					Response: map[string]any{"result": m.Content},
				}},
			})
		default:
			return nil, fmt.Errorf("unsupported message role: %s", m.Role)
		}
	}
	return out, nil
}

func paramSchema(params []llm.Param) *genai.Schema {
	schema := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(params)),
	}
	for _, p := range params {
		t := genai.TypeString
		switch p.Type {
		case "integer":
			t = genai.TypeInteger
		case "number":
			t = genai.TypeNumber
		case "boolean":
			t = genai.TypeBoolean
		}
		schema.Properties[p.Name] = &genai.Schema{Type: t, Description: p.Description}
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}
	return schema
}
