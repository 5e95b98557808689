package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
knowledge_base:
  path: dataset.json
oracle:
  http:
    url: http://localhost:8080/qa
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Server.Listen)
	assert.Equal(t, "*", cfg.Server.CORSOrigins)
	assert.Equal(t, "contexto", cfg.KnowledgeBase.ContextKey)
	assert.Equal(t, "binary_facts", cfg.KnowledgeBase.BinaryFactsKey)
	assert.Equal(t, DefaultSchema(), cfg.Schema)
	assert.Equal(t, "http", cfg.Oracle.Provider)
	assert.Equal(t, 15*time.Second, cfg.Oracle.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.Oracle.CacheTTL)
	assert.Equal(t, uint32(5), cfg.Oracle.Breaker.MaxFailures)
	assert.NotEmpty(t, cfg.Oracle.FallbackAnswer)
	assert.Equal(t, "file", cfg.Journal.Sink)
	assert.Equal(t, 64, cfg.Journal.BufferSize)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PROFILEQA_LLM_TOKEN", "secret-token")

	path := writeConfig(t, `
server:
  listen: ":8080"
  mcp: true
knowledge_base:
  path: data/profile.json
  context_key: profile
  watch: true
schema:
  skills: [habilidades_tecnicas]
  describe_skills: true
oracle:
  provider: llm
  timeout: 3s
  llm:
    model: openai/gpt-4o-mini
journal:
  enabled: true
  sink: postgres
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.True(t, cfg.Server.MCP)
	assert.Equal(t, "profile", cfg.KnowledgeBase.ContextKey)
	assert.True(t, cfg.KnowledgeBase.Watch)
	assert.Equal(t, []string{"habilidades_tecnicas"}, cfg.Schema.Skills)
	assert.Equal(t, DefaultSchema().Languages, cfg.Schema.Languages)
	assert.True(t, cfg.Schema.DescribeSkills)
	assert.Equal(t, 3*time.Second, cfg.Oracle.Timeout)
	assert.Equal(t, "secret-token", cfg.Oracle.LLM.Token)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.Oracle.LLM.BaseURL)
	assert.Equal(t, "postgres", cfg.Journal.Sink)
}

func TestLoad_CacheDisabled(t *testing.T) {
	for _, value := range []string{"0s", "0"} {
		t.Run(value, func(t *testing.T) {
			path := writeConfig(t, `
knowledge_base:
  path: dataset.json
oracle:
  cache_ttl: `+value+`
  http:
    url: http://localhost:8080/qa
`)

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Zero(t, cfg.Oracle.CacheTTL)
		})
	}
}

func TestLoad_Example(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config.example.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "dataset.json", cfg.KnowledgeBase.Path)
	assert.Equal(t, 10*time.Minute, cfg.Oracle.CacheTTL)
	assert.True(t, cfg.Server.MCP)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing knowledge base", `
oracle:
  http:
    url: http://localhost:8080/qa
`},
		{"unknown provider", `
knowledge_base:
  path: dataset.json
oracle:
  provider: grpc
`},
		{"http provider without url", `
knowledge_base:
  path: dataset.json
`},
		{"llm provider without model", `
knowledge_base:
  path: dataset.json
oracle:
  provider: llm
  llm:
    token: abc
`},
		{"unknown journal sink", `
knowledge_base:
  path: dataset.json
oracle:
  http:
    url: http://localhost:8080/qa
journal:
  sink: kafka
`},
		{"negative cache ttl", `
knowledge_base:
  path: dataset.json
oracle:
  cache_ttl: -1m
  http:
    url: http://localhost:8080/qa
`},
		{"malformed yaml", `knowledge_base: [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
