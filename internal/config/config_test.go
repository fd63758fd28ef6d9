package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, names := range envAliases {
		for _, n := range names {
			t.Setenv(n, "")
		}
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "groq", cfg.LLM.Provider)
	assert.Equal(t, "llama-3.1-8b-instant", cfg.LLM.Model)
	assert.Equal(t, 15, cfg.Retrieval.TopK)
	assert.Equal(t, 10*time.Minute, cfg.Retrieval.CacheTTL)
	assert.Equal(t, 768, cfg.Embedding.Dim)
	assert.Equal(t, 3, cfg.Graph.MaxCycles)
	assert.Equal(t, ":8080", cfg.Server.Addr)

	assert.ErrorIs(t, cfg.Validate(), ErrMissingAPIKey)
}

func TestLoadFileAndEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
llm:
  provider: openai
  model: gpt-4o-mini
  temperature: 0.2
retrieval:
  top_k: 5
  cache_ttl: 30s
graph:
  max_cycles: 2
`)
	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")
	t.Setenv("RAG_AGENT_SERVER_ADDR", ":9999")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.InDelta(t, 0.2, cfg.LLM.Temperature, 1e-6)
	assert.Equal(t, "gsk-test", cfg.LLM.APIKey)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, 30*time.Second, cfg.Retrieval.CacheTTL)
	assert.Equal(t, 2, cfg.Graph.MaxCycles)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.Database.URL)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			LLM:       LLM{Provider: "groq", APIKey: "k"},
			Retrieval: Retrieval{TopK: 15},
			Embedding: Embedding{Dim: 768},
			Graph:     Graph{MaxCycles: 3},
		}
	}

	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"ollama needs no key", func(c *Config) { c.LLM.Provider = "ollama"; c.LLM.APIKey = "" }, true},
		{"missing key", func(c *Config) { c.LLM.APIKey = "" }, false},
		{"zero cycles", func(c *Config) { c.Graph.MaxCycles = 0 }, false},
		{"zero top k", func(c *Config) { c.Retrieval.TopK = 0 }, false},
		{"zero dim", func(c *Config) { c.Embedding.Dim = 0 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(c)
			if tc.ok {
				assert.NoError(t, c.Validate())
			} else {
				assert.Error(t, c.Validate())
			}
		})
	}
}
