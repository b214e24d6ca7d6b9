package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-chat/internal/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.Corpus.Dir)
	assert.Equal(t, 200, cfg.RAG.ChunkSize)
	assert.Equal(t, 0, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 4, cfg.RAG.TopK)
	assert.Equal(t, BackendChromem, cfg.Index.Backend)
	assert.Equal(t, "hkunlp/instructor-base", cfg.EmbedLLM.Model)
	assert.Equal(t, "HuggingFaceH4/zephyr-7b-beta", cfg.AnswerLLM.Model)
	assert.InDelta(t, 0.7, cfg.AnswerLLM.Temperature, 1e-9)
	assert.Equal(t, 512, cfg.AnswerLLM.MaxNewTokens)
	assert.InDelta(t, 0.95, cfg.AnswerLLM.TopP, 1e-9)
	assert.Equal(t, 50, cfg.AnswerLLM.TopK)
	assert.Zero(t, cfg.AnswerLLM.RequestTimeout)
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
corpus:
  dir: uploads
rag:
  chunk_size: 500
  chunk_overlap: 50
answer_llm:
  provider: ollama
  model: llama3
  base_url: http://localhost:11434
  request_timeout: 90s
log:
  level: debug
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "uploads", cfg.Corpus.Dir)
	assert.Equal(t, 500, cfg.RAG.ChunkSize)
	assert.Equal(t, 50, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 4, cfg.RAG.TopK)
	assert.Equal(t, ProviderOllama, cfg.AnswerLLM.Provider)
	assert.Equal(t, "llama3", cfg.AnswerLLM.Model)
	assert.Equal(t, "http://localhost:11434", cfg.AnswerLLM.BaseURL)
	assert.Equal(t, 90*time.Second, cfg.AnswerLLM.RequestTimeout)
	assert.Equal(t, 512, cfg.AnswerLLM.MaxNewTokens)
	assert.Equal(t, ProviderHuggingFace, cfg.EmbedLLM.Provider)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_InvalidChunkConfig(t *testing.T) {
	path := writeConfig(t, "rag:\n  chunk_size: 100\n  chunk_overlap: 100\n")
	_, err := LoadConfig(path)
	assert.ErrorIs(t, err, models.ErrInvalidChunkConfig)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "rag: [unclosed")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_MalformedDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HUGGINGFACEHUB_API_TOKEN=\"hf_unterminated\n"), 0o644))
	t.Chdir(dir)

	_, err := LoadConfig(filepath.Join(dir, "config.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load .env")
}

func TestLoadConfig_NoDotEnv(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadConfig("config.yaml")
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"unknown backend", func(c *Config) { c.Index.Backend = "faiss" }, true},
		{"pgvector without dsn", func(c *Config) { c.Index.Backend = BackendPGVector }, true},
		{"pgvector with dsn", func(c *Config) {
			c.Index.Backend = BackendPGVector
			c.Index.Database.DSN = "postgres://localhost/chat"
		}, false},
		{"unknown provider", func(c *Config) { c.EmbedLLM.Provider = "cohere" }, true},
		{"zero chunk size", func(c *Config) { c.RAG.ChunkSize = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLLMConfig_Token(t *testing.T) {
	t.Setenv("PDFCHAT_TEST_TOKEN", "from-env")

	c := LLMConfig{KeyEnv: "PDFCHAT_TEST_TOKEN"}
	assert.Equal(t, "from-env", c.Token())

	c.Key = "explicit"
	assert.Equal(t, "explicit", c.Token())

	assert.Empty(t, (&LLMConfig{}).Token())
}
