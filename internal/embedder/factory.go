package embedder

import (
	"fmt"

	"github.com/ebzlo/paperqa-go/internal/rag"
)

// Default embedding models per backend.
const (
	defaultOllamaModel = "nomic-embed-text"
	defaultOpenAIModel = "text-embedding-3-small"

	// defaultOllamaDimensions is the output dimension of nomic-embed-text.
	// Other Ollama models may differ — override via Settings.Dimensions.
	defaultOllamaDimensions = 768
	// defaultOpenAIDimensions is the output dimension of text-embedding-3-small.
	defaultOpenAIDimensions = 1536

	defaultOllamaHost      = "http://localhost:11434"
	defaultOpenAIBaseURL   = "https://api.openai.com/v1"
	defaultAzureAPIVersion = "2025-04-01-preview"
)

// Settings holds the resolved embedding configuration for the factory.
type Settings struct {
	// Provider selects the embedding backend: ollama, openai, azure.
	Provider string
	// Model overrides the default embedding model for the backend.
	Model string
	// Dimensions overrides the default embedding vector size.
	Dimensions int
	// APIKey is the backend credential (openai, azure).
	APIKey string
	// Endpoint overrides the backend base URL (required for azure).
	Endpoint string
	// APIVersion is the Azure OpenAI API version (azure only).
	APIVersion string
}

// DefaultDimensions returns the default embedding vector size for the given
// backend. Callers that pre-size the index should use this rather than
// hardcoding a value; Settings.Dimensions always takes precedence when set.
func DefaultDimensions(provider string) int {
	if provider == "ollama" {
		return defaultOllamaDimensions
	}
	return defaultOpenAIDimensions
}

// New constructs a rag.Embedder from the given settings. Missing optional
// fields fall back to per-backend defaults; missing required credentials
// produce a clear error at startup rather than a cryptic failure during the
// first embed call.
func New(s *Settings) (rag.Embedder, error) {
	switch s.Provider {
	case "", "ollama":
		host := s.Endpoint
		if host == "" {
			host = defaultOllamaHost
		}
		model := s.Model
		if model == "" {
			model = defaultOllamaModel
		}
		return NewOllamaEmbedder(host, model), nil

	case "openai":
		if s.APIKey == "" {
			return nil, fmt.Errorf("embedder: openai requires an API key — set OPENAI_API_KEY or EMBEDDING_API_KEY")
		}
		baseURL := s.Endpoint
		if baseURL == "" {
			baseURL = defaultOpenAIBaseURL
		}
		model := s.Model
		if model == "" {
			model = defaultOpenAIModel
		}
		dims := s.Dimensions
		if dims <= 0 {
			dims = defaultOpenAIDimensions
		}
		return NewOpenAIEmbedder(&OpenAIConfig{
			BaseURL:    baseURL,
			APIKey:     s.APIKey,
			Model:      model,
			Dimensions: dims,
		}), nil

	case "azure":
		if s.APIKey == "" {
			return nil, fmt.Errorf("embedder: azure requires an API key — set AZURE_OPENAI_API_KEY or EMBEDDING_API_KEY")
		}
		if s.Endpoint == "" {
			return nil, fmt.Errorf("embedder: azure requires an endpoint — set AZURE_OPENAI_ENDPOINT or EMBEDDING_ENDPOINT")
		}
		apiVersion := s.APIVersion
		if apiVersion == "" {
			apiVersion = defaultAzureAPIVersion
		}
		model := s.Model
		if model == "" {
			model = defaultOpenAIModel
		}
		dims := s.Dimensions
		if dims <= 0 {
			dims = defaultOpenAIDimensions
		}
		return NewOpenAIEmbedder(&OpenAIConfig{
			BaseURL:    s.Endpoint + "/openai",
			APIKey:     s.APIKey,
			Model:      model,
			Dimensions: dims,
			Azure:      true,
			APIVersion: apiVersion,
		}), nil

	default:
		return nil, fmt.Errorf("embedder: unknown backend %q — valid values: ollama, openai, azure", s.Provider)
	}
}
