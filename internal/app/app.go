// Package app wires configuration into a runnable answer pipeline. Both the
// API server and the REPL build on it.
package app

import (
	"context"
	"fmt"

	"github.com/calldeck/callquery/internal/agent"
	"github.com/calldeck/callquery/internal/config"
	"github.com/calldeck/callquery/internal/llm"
	"github.com/calldeck/callquery/internal/llm/anthropic"
	"github.com/calldeck/callquery/internal/llm/deepseek"
	"github.com/calldeck/callquery/internal/llm/gemini"
	"github.com/calldeck/callquery/internal/llm/ollama"
	"github.com/calldeck/callquery/internal/llm/openai"
	sessionsqlite "github.com/calldeck/callquery/internal/repository/sqlite"
	"github.com/calldeck/callquery/internal/safety"
	"github.com/calldeck/callquery/internal/schema"
	"github.com/calldeck/callquery/internal/service"
	"github.com/calldeck/callquery/internal/store"
	"github.com/calldeck/callquery/internal/store/mysql"
	"github.com/calldeck/callquery/internal/store/postgres"
	"github.com/calldeck/callquery/internal/store/sqlite"
)

// App holds the assembled pipeline and its backing resources
type App struct {
	Config   *config.Config
	Store    store.Store
	Sessions *sessionsqlite.SessionRepository
	Schema   *schema.Descriptor
	LLM      *llm.Router
	Query    *service.QueryService
}

// New assembles the pipeline from configuration: dataset store, session
// store, schema descriptor, LLM provider, both agent stages, and the
// orchestrator.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	st, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to dataset store: %w", err)
	}

	sessions, err := sessionsqlite.NewSessionRepository(ctx, cfg.Sessions.Path)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	desc, err := schema.Load(ctx, st, cfg.Schema.Relationships)
	if err != nil {
		sessions.Close()
		st.Close()
		return nil, fmt.Errorf("failed to load dataset schema: %w", err)
	}

	llmRouter := RegisterProviders(cfg)
	provider, err := llmRouter.GetProvider(cfg.LLM.DefaultProvider)
	if err != nil {
		sessions.Close()
		st.Close()
		return nil, fmt.Errorf("no usable LLM provider: %w", err)
	}

	validator := safety.NewValidator(desc)

	stageCfg := agent.StageConfig{
		Provider: provider,
		MaxTurns: cfg.Pipeline.MaxToolTurns,
	}
	queryOpts := agent.QueryToolOptions{
		MaxRows:     cfg.Security.MaxRows,
		PreviewRows: cfg.Pipeline.PreviewRows,
		Timeout:     cfg.Security.QueryTimeout,
	}

	sqlStage := agent.NewSQLStage(stageCfg, desc, cfg.Schema.Notes, validator, st, queryOpts)
	evalStage := agent.NewEvaluatorStage(stageCfg, sqlStage)

	svc := service.NewQueryService(sqlStage, evalStage, sessions, service.Options{
		MaxRetries: cfg.Pipeline.MaxRetries,
		BaseDelay:  cfg.Pipeline.BaseDelay,
	})

	return &App{
		Config:   cfg,
		Store:    st,
		Sessions: sessions,
		Schema:   desc,
		LLM:      llmRouter,
		Query:    svc,
	}, nil
}

// Close releases the app's backing resources
func (a *App) Close() {
	if a.Sessions != nil {
		a.Sessions.Close()
	}
	if a.Store != nil {
		a.Store.Close()
	}
}

// OpenStore opens the dataset backend selected by cfg.Driver
func OpenStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return sqlite.Open(ctx, cfg.Path)
	case "postgres":
		return postgres.Open(ctx, postgres.Config{
			Host:     cfg.Host,
			Port:     cfg.Port,
			User:     cfg.User,
			Password: cfg.Password,
			Database: cfg.Database,
			SSLMode:  cfg.SSLMode,
		})
	case "mysql":
		return mysql.Open(ctx, mysql.Config{
			Host:     cfg.Host,
			Port:     cfg.Port,
			User:     cfg.User,
			Password: cfg.Password,
			Database: cfg.Database,
		})
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}

// RegisterProviders builds the LLM router from configured credentials
func RegisterProviders(cfg *config.Config) *llm.Router {
	llmRouter := llm.NewRouter(cfg.LLM.DefaultProvider)

	if cfg.LLM.OpenAI.APIKey != "" {
		llmRouter.RegisterProvider(openai.NewProvider(cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.Model))
	}
	if cfg.LLM.Anthropic.APIKey != "" {
		llmRouter.RegisterProvider(anthropic.NewProvider(cfg.LLM.Anthropic.APIKey, cfg.LLM.Anthropic.Model))
	}
	if cfg.LLM.Gemini.APIKey != "" {
		llmRouter.RegisterProvider(gemini.NewProvider(cfg.LLM.Gemini.APIKey, cfg.LLM.Gemini.Model))
	}
	if cfg.LLM.DeepSeek.APIKey != "" {
		llmRouter.RegisterProvider(deepseek.NewProvider(cfg.LLM.DeepSeek.APIKey, cfg.LLM.DeepSeek.Model))
	}
	if cfg.LLM.Ollama.Host != "" {
		llmRouter.RegisterProvider(ollama.NewProvider(cfg.LLM.Ollama.Host, cfg.LLM.Ollama.DefaultModel))
	}

	return llmRouter
}
