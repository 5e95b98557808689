package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath = "config.yaml"

	defaultCacheTTL = 10 * time.Minute
)

type Config struct {
	Log           Log           `yaml:"log"`
	Server        Server        `yaml:"server"`
	KnowledgeBase KnowledgeBase `yaml:"knowledge_base"`
	Schema        Schema        `yaml:"schema"`
	Oracle        Oracle        `yaml:"oracle"`
	Journal       Journal       `yaml:"journal"`
	DB            DB            `yaml:"db"`
}

type Server struct {
	// Address to listen on
	Listen string `yaml:"listen" example:":5000" validate:"required"`
	// Comma separated list of allowed CORS origins
	CORSOrigins string `yaml:"cors_origins" example:"*"`
	// Expose the ask_profile MCP tool under /mcp
	MCP bool `yaml:"mcp" example:"true"`
}

type KnowledgeBase struct {
	// Path to the JSON profile document
	Path string `yaml:"path" example:"dataset.json" validate:"required"`
	// Key of the object holding the profile context
	ContextKey string `yaml:"context_key" example:"contexto"`
	// Key of the object holding canned yes/no answers
	BinaryFactsKey string `yaml:"binary_facts_key" example:"binary_facts"`
	// Reload the document when the file changes
	Watch bool `yaml:"watch" example:"true"`
}

// Schema declares the canonical key names of the profile document.
// Every entry lists the accepted spellings, tried in order.
type Schema struct {
	Summary           []string `yaml:"summary" validate:"min=1"`
	Skills            []string `yaml:"skills" validate:"min=1"`
	Languages         []string `yaml:"languages" validate:"min=1"`
	Hobbies           []string `yaml:"hobbies" validate:"min=1"`
	SoftSkills        []string `yaml:"soft_skills" validate:"min=1"`
	LabelFields       []string `yaml:"label_fields" validate:"min=1"`
	DescriptionFields []string `yaml:"description_fields"`
	LevelFields       []string `yaml:"level_fields"`
	// Render skills as "name: description" instead of just the name
	DescribeSkills bool `yaml:"describe_skills" example:"false"`
}

func DefaultSchema() Schema {
	return Schema{
		Summary:           []string{"resumo", "summary", "sobre"},
		Skills:            []string{"habilidades", "habilidades_tecnicas", "skills"},
		Languages:         []string{"idiomas", "languages"},
		Hobbies:           []string{"hobbies"},
		SoftSkills:        []string{"soft_skills"},
		LabelFields:       []string{"nome", "habilidade", "idioma", "name"},
		DescriptionFields: []string{"descricao", "description"},
		LevelFields:       []string{"nivel", "proficiencia", "level"},
	}
}

type Oracle struct {
	// Oracle backend: http or llm
	Provider string `yaml:"provider" example:"http" validate:"oneof=http llm"`
	// Timeout of a single oracle call
	Timeout time.Duration `yaml:"timeout" example:"15s" validate:"gt=0"`
	// Oracle calls per second, 0 disables limiting
	RateLimit float64 `yaml:"rate_limit" example:"5" validate:"gte=0"`
	// Burst of the rate limiter
	Burst int `yaml:"burst" example:"5" validate:"gte=0"`
	// How long oracle answers are cached, 0 disables the cache
	CacheTTL time.Duration `yaml:"cache_ttl" example:"10m" validate:"gte=0"`
	// Answer returned while the oracle circuit is open
	FallbackAnswer string `yaml:"fallback_answer" validate:"required"`
	Breaker        Breaker    `yaml:"breaker"`
	HTTP           HTTPOracle `yaml:"http"`
	LLM            LLMOracle  `yaml:"llm"`
}

type Breaker struct {
	// Consecutive failures that open the circuit
	MaxFailures uint32 `yaml:"max_failures" example:"5" validate:"gt=0"`
	// How long the circuit stays open
	OpenTimeout time.Duration `yaml:"open_timeout" example:"30s" validate:"gt=0"`
}

type HTTPOracle struct {
	// Question answering inference endpoint
	URL string `yaml:"url" example:"https://api-inference.huggingface.co/models/pierreguillou/bert-base-cased-squad-v1.1-portuguese"`
	// Bearer token
	Token string `yaml:"token"`
}

type LLMOracle struct {
	// OpenAI compatible base url
	BaseURL string `yaml:"base_url" example:"https://openrouter.ai/api/v1"`
	// OpenAI token
	Token string `yaml:"token"`
	// Model name
	Model string `yaml:"model" example:"openai/gpt-4o-mini"`
}

type Journal struct {
	Enabled bool `yaml:"enabled" example:"true"`
	// Sink: file or postgres
	Sink string `yaml:"sink" example:"file" validate:"oneof=file postgres"`
	// JSON lines file used by the file sink
	Path string `yaml:"path" example:"data/journal.jsonl"`
	// Pending records kept in memory
	BufferSize int `yaml:"buffer_size" example:"64" validate:"gt=0"`
}

type Log struct {
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

type DB struct {
	// Postgres username
	User string `yaml:"user" example:"postgres" validate:"required"`
	// Postgres password
	Pass string `yaml:"pass" validate:"required"`
	// Postgres host
	Host string `yaml:"host"  example:"localhost:5432" validate:"required"`
	// Postgres database name
	Database string `yaml:"database" example:"profileqa" validate:"required"`
}

func Load(path string) (*Config, error) {
	// cache_ttl: 0 disables the cache, the default applies only when the key is absent
	result := Config{
		Oracle: Oracle{CacheTTL: defaultCacheTTL},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	if err = godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, oops.Errorf("failed to load .env: %w", err)
	}
	applyEnv(&result)
	applyDefaults(&result)

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	switch result.Oracle.Provider {
	case "http":
		if result.Oracle.HTTP.URL == "" {
			return nil, oops.Errorf("oracle.http.url is required for the http provider")
		}
	case "llm":
		if result.Oracle.LLM.Token == "" || result.Oracle.LLM.Model == "" {
			return nil, oops.Errorf("oracle.llm.token and oracle.llm.model are required for the llm provider")
		}
	}

	return &result, nil
}

func applyEnv(cfg *Config) {
	overrides := map[string]*string{
		"PROFILEQA_ORACLE_TOKEN":   &cfg.Oracle.HTTP.Token,
		"PROFILEQA_LLM_TOKEN":      &cfg.Oracle.LLM.Token,
		"PROFILEQA_DB_PASS":        &cfg.DB.Pass,
		"PROFILEQA_TELEGRAM_TOKEN": &cfg.Log.Telegram.Token,
	}

	for name, target := range overrides {
		if value := os.Getenv(name); value != "" {
			*target = value
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":5000"
	}
	if cfg.Server.CORSOrigins == "" {
		cfg.Server.CORSOrigins = "*"
	}

	if cfg.KnowledgeBase.ContextKey == "" {
		cfg.KnowledgeBase.ContextKey = "contexto"
	}
	if cfg.KnowledgeBase.BinaryFactsKey == "" {
		cfg.KnowledgeBase.BinaryFactsKey = "binary_facts"
	}

	schema := DefaultSchema()
	defaultList(&cfg.Schema.Summary, schema.Summary...)
	defaultList(&cfg.Schema.Skills, schema.Skills...)
	defaultList(&cfg.Schema.Languages, schema.Languages...)
	defaultList(&cfg.Schema.Hobbies, schema.Hobbies...)
	defaultList(&cfg.Schema.SoftSkills, schema.SoftSkills...)
	defaultList(&cfg.Schema.LabelFields, schema.LabelFields...)
	defaultList(&cfg.Schema.DescriptionFields, schema.DescriptionFields...)
	defaultList(&cfg.Schema.LevelFields, schema.LevelFields...)

	if cfg.Oracle.Provider == "" {
		cfg.Oracle.Provider = "http"
	}
	if cfg.Oracle.Timeout == 0 {
		cfg.Oracle.Timeout = 15 * time.Second
	}
	if cfg.Oracle.FallbackAnswer == "" {
		cfg.Oracle.FallbackAnswer = "Desculpe, não consigo responder agora. Tente novamente em instantes."
	}
	if cfg.Oracle.Breaker.MaxFailures == 0 {
		cfg.Oracle.Breaker.MaxFailures = 5
	}
	if cfg.Oracle.Breaker.OpenTimeout == 0 {
		cfg.Oracle.Breaker.OpenTimeout = 30 * time.Second
	}
	if cfg.Oracle.LLM.BaseURL == "" {
		cfg.Oracle.LLM.BaseURL = "https://openrouter.ai/api/v1"
	}

	if cfg.Journal.Sink == "" {
		cfg.Journal.Sink = "file"
	}
	if cfg.Journal.Path == "" {
		cfg.Journal.Path = "data/journal.jsonl"
	}
	if cfg.Journal.BufferSize == 0 {
		cfg.Journal.BufferSize = 64
	}

	if cfg.DB.User == "" {
		cfg.DB.User = "postgres"
	}
	if cfg.DB.Pass == "" {
		cfg.DB.Pass = "postgres"
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost:5432"
	}
	if cfg.DB.Database == "" {
		cfg.DB.Database = "profileqa"
	}
}

func defaultList(target *[]string, values ...string) {
	if len(*target) == 0 {
		*target = values
	}
}
