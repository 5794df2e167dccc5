// Package config provides YAML-based configuration for paperqa.
// Configuration is loaded with a layered precedence: defaults → YAML file →
// env vars. Environment variables always win, so shell-driven workflows keep
// working with or without a config file.
//
// File search order:
//  1. --config CLI flag (explicit path)
//  2. PAPERQA_CONFIG environment variable
//  3. ~/.paperqa/config.yaml
//  4. ./paperqa.yaml
//
// If no file is found the system runs from defaults plus env vars. An
// explicit --config path that does not exist is an error rather than a
// silent fallback.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration structure. Field names use yaml tags
// that mirror the env var naming (lowercase, underscored).
type Config struct {
	// Papers configures the PDF corpus to ingest.
	Papers PapersConfig `yaml:"papers"`

	// Model configures the LLM chat model provider.
	Model ModelConfig `yaml:"model"`

	// Embedding configures the embedding provider.
	Embedding EmbeddingConfig `yaml:"embedding"`

	// Retrieval configures chunking and similarity search.
	Retrieval RetrievalConfig `yaml:"retrieval"`

	// Agent configures the answer loop.
	Agent AgentConfig `yaml:"agent"`

	// History configures Q&A transcript persistence.
	History HistoryConfig `yaml:"history"`

	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`
}

// PapersConfig holds corpus settings.
type PapersConfig struct {
	// Dir is the directory scanned for PDF files.
	Dir string `yaml:"dir"`
}

// ModelConfig holds LLM chat model settings.
type ModelConfig struct {
	// Provider selects the backend: groq, openai, azure, ollama, gemini, ark.
	Provider string `yaml:"provider"`

	// MaxTokens caps drafting and revision responses.
	MaxTokens int `yaml:"max_tokens"`

	// MakerTemperature is the sampling temperature for drafting and revision.
	MakerTemperature float32 `yaml:"maker_temperature"`

	// CheckerTemperature is the sampling temperature for critique.
	CheckerTemperature float32 `yaml:"checker_temperature"`

	// RequestsPerMinute rate-limits chat calls. Zero disables limiting.
	RequestsPerMinute int `yaml:"requests_per_minute"`

	// Groq holds Groq-specific settings.
	Groq GroqConfig `yaml:"groq"`

	// OpenAI holds OpenAI-specific settings.
	OpenAI OpenAIConfig `yaml:"openai"`

	// Azure holds Azure OpenAI-specific settings.
	Azure AzureConfig `yaml:"azure"`

	// Ollama holds Ollama-specific settings.
	Ollama OllamaConfig `yaml:"ollama"`

	// Gemini holds Google Gemini-specific settings.
	Gemini GeminiConfig `yaml:"gemini"`

	// Ark holds Volcengine Ark-specific settings.
	Ark ArkConfig `yaml:"ark"`
}

// GroqConfig holds Groq provider settings.
type GroqConfig struct {
	// APIKey is the Groq API key. Prefer env var GROQ_API_KEY.
	APIKey string `yaml:"api_key"`
	// Model is the Groq model name.
	Model string `yaml:"model"`
}

// OpenAIConfig holds OpenAI provider settings.
type OpenAIConfig struct {
	// APIKey is the OpenAI API key. Prefer env var OPENAI_API_KEY.
	APIKey string `yaml:"api_key"`
	// Model is the OpenAI model name.
	Model string `yaml:"model"`
}

// AzureConfig holds Azure OpenAI provider settings.
type AzureConfig struct {
	// APIKey is the Azure OpenAI API key. Prefer env var AZURE_OPENAI_API_KEY.
	APIKey string `yaml:"api_key"`
	// Endpoint is the Azure OpenAI resource endpoint.
	Endpoint string `yaml:"endpoint"`
	// Deployment is the Azure OpenAI deployment name.
	Deployment string `yaml:"deployment"`
	// APIVersion is the Azure OpenAI API version.
	APIVersion string `yaml:"api_version"`
}

// OllamaConfig holds Ollama provider settings.
type OllamaConfig struct {
	// Host is the Ollama API endpoint.
	Host string `yaml:"host"`
	// Model is the Ollama model name.
	Model string `yaml:"model"`
}

// GeminiConfig holds Google Gemini provider settings.
type GeminiConfig struct {
	// APIKey is the Google API key. Prefer env var GOOGLE_API_KEY.
	APIKey string `yaml:"api_key"`
	// Model is the Gemini model name.
	Model string `yaml:"model"`
}

// ArkConfig holds Volcengine Ark provider settings.
type ArkConfig struct {
	// APIKey is the Ark API key. Prefer env var ARK_API_KEY.
	APIKey string `yaml:"api_key"`
	// Model is the Ark endpoint/model identifier.
	Model string `yaml:"model"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	// Provider selects the embedding backend (ollama, openai, azure).
	Provider string `yaml:"provider"`
	// Model is the embedding model name.
	Model string `yaml:"model"`
	// Dimensions overrides the embedding vector size.
	Dimensions int `yaml:"dimensions"`
	// APIKey is the embedding API key. Prefer env var EMBEDDING_API_KEY.
	APIKey string `yaml:"api_key"`
	// Endpoint is the embedding API endpoint.
	Endpoint string `yaml:"endpoint"`
	// APIVersion is the API version for Azure embedding deployments.
	APIVersion string `yaml:"api_version"`
}

// RetrievalConfig holds chunking and similarity search settings.
type RetrievalConfig struct {
	// TopK is the number of chunks retrieved per query.
	TopK int `yaml:"top_k"`
	// ChunkSize is the chunk window size in characters.
	ChunkSize int `yaml:"chunk_size"`
	// ChunkOverlap is the overlap between consecutive chunks in characters.
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// AgentConfig holds answer loop settings.
type AgentConfig struct {
	// MaxIterations bounds critique rounds per question.
	MaxIterations int `yaml:"max_iterations"`
	// MaxQuestionChars bounds accepted question length.
	MaxQuestionChars int `yaml:"max_question_chars"`
	// MaxContextTokens is the estimated prompt token budget.
	MaxContextTokens int `yaml:"max_context_tokens"`
}

// HistoryConfig holds Q&A transcript settings.
type HistoryConfig struct {
	// DBPath is the SQLite database path. Set to "disabled" to disable.
	DBPath string `yaml:"db_path"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is the log output format: json, text.
	Format string `yaml:"format"`
}

// Default model names. Groq is the default provider because it is fast and
// has a generous free tier for the models paperqa targets.
const (
	defaultProvider       = "groq"
	defaultGroqModel      = "meta-llama/llama-4-scout-17b-16e-instruct"
	defaultEmbeddingModel = "nomic-embed-text"
)

// Defaults returns a Config populated with the built-in defaults.
func Defaults() *Config {
	return &Config{
		Papers: PapersConfig{Dir: "papers"},
		Model: ModelConfig{
			Provider:           defaultProvider,
			MaxTokens:          900,
			MakerTemperature:   0.2,
			CheckerTemperature: 0.0,
			Groq:               GroqConfig{Model: defaultGroqModel},
		},
		Embedding: EmbeddingConfig{
			Provider: "ollama",
			Model:    defaultEmbeddingModel,
		},
		Retrieval: RetrievalConfig{
			TopK:         5,
			ChunkSize:    1100,
			ChunkOverlap: 200,
		},
		Agent: AgentConfig{
			MaxIterations:    2,
			MaxQuestionChars: 2000,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// Load resolves the effective configuration: defaults, overlaid by the first
// YAML file found, overlaid by environment variables. Returns the config and
// the YAML path that was loaded ("" if none).
func Load(explicitPath string, log *slog.Logger) (*Config, string, error) {
	cfg := Defaults()

	path, err := resolveConfigPath(explicitPath)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("config: failed to read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, "", fmt.Errorf("config: failed to parse %s: %w", path, err)
		}
		log.Info("config: loaded YAML config", slog.String("path", path))
	} else {
		log.Debug("config: no YAML config file found, using defaults and env vars")
	}

	applyEnv(cfg)
	return cfg, path, nil
}

// applyEnv overlays environment variables onto cfg. Env vars always win.
func applyEnv(cfg *Config) {
	setStr := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setFloat := func(dst *float32, key string) {
		if v := os.Getenv(key); v != "" {
			if f, err := strconv.ParseFloat(v, 32); err == nil {
				*dst = float32(f)
			}
		}
	}

	setStr(&cfg.Papers.Dir, "PAPERS_DIR")

	setStr(&cfg.Model.Provider, "MODEL_PROVIDER")
	setInt(&cfg.Model.MaxTokens, "MODEL_MAX_TOKENS")
	setFloat(&cfg.Model.MakerTemperature, "MAKER_TEMPERATURE")
	setFloat(&cfg.Model.CheckerTemperature, "CHECKER_TEMPERATURE")
	setInt(&cfg.Model.RequestsPerMinute, "REQUESTS_PER_MINUTE")
	setStr(&cfg.Model.Groq.APIKey, "GROQ_API_KEY")
	setStr(&cfg.Model.Groq.Model, "GROQ_MODEL")
	setStr(&cfg.Model.OpenAI.APIKey, "OPENAI_API_KEY")
	setStr(&cfg.Model.OpenAI.Model, "OPENAI_MODEL")
	setStr(&cfg.Model.Azure.APIKey, "AZURE_OPENAI_API_KEY")
	setStr(&cfg.Model.Azure.Endpoint, "AZURE_OPENAI_ENDPOINT")
	setStr(&cfg.Model.Azure.Deployment, "AZURE_OPENAI_DEPLOYMENT")
	setStr(&cfg.Model.Azure.APIVersion, "AZURE_OPENAI_API_VERSION")
	setStr(&cfg.Model.Ollama.Host, "OLLAMA_HOST")
	setStr(&cfg.Model.Ollama.Model, "OLLAMA_MODEL")
	setStr(&cfg.Model.Gemini.APIKey, "GOOGLE_API_KEY")
	setStr(&cfg.Model.Gemini.Model, "GEMINI_MODEL")
	setStr(&cfg.Model.Ark.APIKey, "ARK_API_KEY")
	setStr(&cfg.Model.Ark.Model, "ARK_MODEL")

	setStr(&cfg.Embedding.Provider, "EMBEDDING_PROVIDER")
	setStr(&cfg.Embedding.Model, "EMBEDDING_MODEL")
	setInt(&cfg.Embedding.Dimensions, "EMBEDDING_DIMENSIONS")
	setStr(&cfg.Embedding.APIKey, "EMBEDDING_API_KEY")
	setStr(&cfg.Embedding.Endpoint, "EMBEDDING_ENDPOINT")
	setStr(&cfg.Embedding.APIVersion, "EMBEDDING_API_VERSION")

	setInt(&cfg.Retrieval.TopK, "TOP_K")
	setInt(&cfg.Retrieval.ChunkSize, "CHUNK_SIZE")
	setInt(&cfg.Retrieval.ChunkOverlap, "CHUNK_OVERLAP")

	setInt(&cfg.Agent.MaxIterations, "MAX_ITERATIONS")
	setInt(&cfg.Agent.MaxQuestionChars, "MAX_QUESTION_CHARS")
	setInt(&cfg.Agent.MaxContextTokens, "MAX_CONTEXT_TOKENS")

	setStr(&cfg.History.DBPath, "PAPERQA_HISTORY_DB")

	setStr(&cfg.Logging.Level, "LOG_LEVEL")
	setStr(&cfg.Logging.Format, "LOG_FORMAT")
}

// resolveConfigPath returns the first config file path that exists. A path
// given explicitly via --config must exist — a typo'd flag silently falling
// back to defaults would be invisible to the operator. The searched
// locations stay optional.
func resolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config: file not found: %s", explicit)
		}
		return explicit, nil
	}

	if envPath := os.Getenv("PAPERQA_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		p := filepath.Join(home, ".paperqa", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	if _, err := os.Stat("paperqa.yaml"); err == nil {
		return "paperqa.yaml", nil
	}

	return "", nil
}
