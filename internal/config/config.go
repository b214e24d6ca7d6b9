package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"pdf-chat/internal/models"
)

const (
	ProviderHuggingFace = "huggingface"
	ProviderOllama      = "ollama"
	ProviderOpenAI      = "openai"

	BackendChromem  = "chromem"
	BackendPGVector = "pgvector"

	DriverPG = "pgdriver"
	DriverPQ = "pq"
)

type Config struct {
	Corpus    CorpusConfig    `yaml:"corpus"`
	RAG       RAGConfig       `yaml:"rag"`
	Index     IndexConfig     `yaml:"index"`
	EmbedLLM  LLMConfig       `yaml:"embed_llm"`
	AnswerLLM AnswerLLMConfig `yaml:"answer_llm"`
	Log       LogConfig       `yaml:"log"`
}

type CorpusConfig struct {
	Dir string `yaml:"dir"`
}

type RAGConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	TopK         int `yaml:"top_k"`
}

type IndexConfig struct {
	Backend  string         `yaml:"backend"`
	Chromem  ChromemConfig  `yaml:"chromem"`
	Database DatabaseConfig `yaml:"database"`
}

type ChromemConfig struct {
	Collection    string `yaml:"collection"`
	ExportPath    string `yaml:"export_path"`
	Compress      bool   `yaml:"compress"`
	EncryptionKey string `yaml:"encryption_key"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

// LLMConfig configures a model endpoint. Key, when empty, is read from KeyEnv.
type LLMConfig struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	Key      string `yaml:"key"`
	KeyEnv   string `yaml:"key_env"`
}

type AnswerLLMConfig struct {
	LLMConfig      `yaml:",inline"`
	Temperature    float64       `yaml:"temperature"`
	MaxNewTokens   int           `yaml:"max_new_tokens"`
	TopP           float64       `yaml:"top_p"`
	TopK           int           `yaml:"top_k"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Token returns the configured key, falling back to the KeyEnv environment variable.
func (c *LLMConfig) Token() string {
	if c.Key != "" {
		return c.Key
	}
	if c.KeyEnv != "" {
		return os.Getenv(c.KeyEnv)
	}
	return ""
}

func Default() *Config {
	return &Config{
		Corpus: CorpusConfig{Dir: "data"},
		RAG: RAGConfig{
			ChunkSize:    models.DefaultChunkSize,
			ChunkOverlap: models.DefaultChunkOverlap,
			TopK:         models.DefaultTopK,
		},
		Index: IndexConfig{
			Backend: BackendChromem,
			Chromem: ChromemConfig{Collection: "pdf_chat"},
			Database: DatabaseConfig{
				Driver: DriverPG,
			},
		},
		EmbedLLM: LLMConfig{
			Provider: ProviderHuggingFace,
			Model:    "hkunlp/instructor-base",
			KeyEnv:   "HUGGINGFACEHUB_API_TOKEN",
		},
		AnswerLLM: AnswerLLMConfig{
			LLMConfig: LLMConfig{
				Provider: ProviderHuggingFace,
				Model:    "HuggingFaceH4/zephyr-7b-beta",
				KeyEnv:   "HUGGINGFACEHUB_API_TOKEN",
			},
			Temperature:  0.7,
			MaxNewTokens: 512,
			TopP:         0.95,
			TopK:         50,
		},
		Log: LogConfig{Level: "info", File: "pdfchat.log"},
	}
}

// LoadConfig reads the YAML file at path over the defaults. A missing file
// yields the defaults. A .env file in the working directory is loaded first.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, cfg.Validate()
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Corpus.Dir == "" {
		cfg.Corpus.Dir = def.Corpus.Dir
	}
	if cfg.RAG.TopK <= 0 {
		cfg.RAG.TopK = def.RAG.TopK
	}
	if cfg.Index.Backend == "" {
		cfg.Index.Backend = def.Index.Backend
	}
	if cfg.Index.Chromem.Collection == "" {
		cfg.Index.Chromem.Collection = def.Index.Chromem.Collection
	}
	if cfg.Index.Database.Driver == "" {
		cfg.Index.Database.Driver = def.Index.Database.Driver
	}
	if cfg.EmbedLLM.Provider == "" {
		cfg.EmbedLLM.Provider = def.EmbedLLM.Provider
	}
	if cfg.AnswerLLM.Provider == "" {
		cfg.AnswerLLM.Provider = def.AnswerLLM.Provider
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
}

// Validate checks the values that would otherwise fail deep inside the pipeline.
func (c *Config) Validate() error {
	if c.RAG.ChunkSize <= 0 || c.RAG.ChunkOverlap < 0 || c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		return fmt.Errorf("%w: size=%d overlap=%d", models.ErrInvalidChunkConfig, c.RAG.ChunkSize, c.RAG.ChunkOverlap)
	}
	switch c.Index.Backend {
	case BackendChromem, BackendPGVector:
	default:
		return fmt.Errorf("unknown index backend: %s", c.Index.Backend)
	}
	if c.Index.Backend == BackendPGVector && c.Index.Database.DSN == "" {
		return errors.New("index.database.dsn is required for the pgvector backend")
	}
	for _, p := range []string{c.EmbedLLM.Provider, c.AnswerLLM.Provider} {
		switch p {
		case ProviderHuggingFace, ProviderOllama, ProviderOpenAI:
		default:
			return fmt.Errorf("unknown llm provider: %s", p)
		}
	}
	return nil
}
