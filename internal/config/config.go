package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Sessions SessionsConfig `mapstructure:"sessions"`
	Redis    RedisConfig    `mapstructure:"redis"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Security SecurityConfig `mapstructure:"security"`
	Schema   SchemaConfig   `mapstructure:"schema"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// StoreConfig selects and configures the dataset backend. Driver is one of
// sqlite, postgres, mysql. Path applies to sqlite; the network fields apply
// to the server-based drivers.
type StoreConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type SessionsConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type LLMConfig struct {
	DefaultProvider string          `mapstructure:"default_provider"`
	OpenAI          OpenAIConfig    `mapstructure:"openai"`
	Anthropic       AnthropicConfig `mapstructure:"anthropic"`
	Gemini          GeminiConfig    `mapstructure:"gemini"`
	Ollama          OllamaConfig    `mapstructure:"ollama"`
	DeepSeek        DeepSeekConfig  `mapstructure:"deepseek"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OllamaConfig struct {
	Host         string `mapstructure:"host"`
	DefaultModel string `mapstructure:"default_model"`
}

type DeepSeekConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// PipelineConfig tunes the two-stage answer pipeline
type PipelineConfig struct {
	MaxRetries   int           `mapstructure:"max_retries"`
	BaseDelay    time.Duration `mapstructure:"base_delay"`
	MaxToolTurns int           `mapstructure:"max_tool_turns"`
	PreviewRows  int           `mapstructure:"preview_rows"`
}

type SecurityConfig struct {
	MaxRows      int             `mapstructure:"max_rows"`
	QueryTimeout time.Duration   `mapstructure:"query_timeout"`
	RateLimit    RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

// SchemaConfig carries operator-supplied prompt context: relationship
// descriptions and domain notes the dataset itself cannot express.
type SchemaConfig struct {
	Relationships []string `mapstructure:"relationships"`
	Notes         []string `mapstructure:"notes"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if _, statErr := os.Stat(configPath); !os.IsNotExist(statErr) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
		// no config file, use defaults and env vars
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")

	// Store
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "./data/callcenter.db")
	v.SetDefault("store.host", "localhost")
	v.SetDefault("store.ssl_mode", "disable")

	// Sessions
	v.SetDefault("sessions.path", "./data/sessions.db")

	// Redis
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	// LLM
	v.SetDefault("llm.default_provider", "openai")
	v.SetDefault("llm.ollama.host", "http://localhost:11434")
	v.SetDefault("llm.ollama.default_model", "llama3")

	// Pipeline
	v.SetDefault("pipeline.max_retries", 2)
	v.SetDefault("pipeline.base_delay", "2s")
	v.SetDefault("pipeline.max_tool_turns", 8)
	v.SetDefault("pipeline.preview_rows", 50)

	// Schema prompt context for the stock call-center dataset. Operators
	// pointing the server at a different dataset override these in config.
	v.SetDefault("schema.relationships", []string{
		"calls.employee_id -> employees.employee_id (employee who handled the call)",
		"calls.customer_id -> customers.customer_id (customer on the call)",
		"calls.call_type_id -> call_types.type_id (category of the call)",
		"calls.transferred_to -> employees.employee_id (employee the call was transferred to, NULL if not transferred)",
	})
	v.SetDefault("schema.notes", []string{
		"When searching names, use LIKE with wildcards (e.g. name LIKE '%Elena%')",
		"started_at is a timestamp; use date functions such as strftime for date filtering",
		"transferred_to IS NOT NULL means the call was transferred",
		"resolved = 0 means the call is still unresolved",
		"Always JOIN tables properly using the relationships above",
		"When asked for 'all' results, do not add a LIMIT and report the total count",
	})

	// Security
	v.SetDefault("security.max_rows", 1000)
	v.SetDefault("security.query_timeout", "30s")
	v.SetDefault("security.rate_limit.requests_per_minute", 60)
	v.SetDefault("security.rate_limit.burst", 10)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func bindEnvVars(v *viper.Viper) {
	// Store
	v.BindEnv("store.password", "STORE_PASSWORD")

	// Redis
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// LLM API keys
	v.BindEnv("llm.openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("llm.anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("llm.gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("llm.deepseek.api_key", "DEEPSEEK_API_KEY")
	v.BindEnv("llm.ollama.host", "OLLAMA_HOST")
}
