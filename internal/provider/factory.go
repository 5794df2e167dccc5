package provider

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
)

// defaultGroqBaseURL is Groq's OpenAI-compatible endpoint.
const defaultGroqBaseURL = "https://api.groq.com/openai/v1"

// defaultOllamaHost is the local Ollama endpoint.
const defaultOllamaHost = "http://localhost:11434"

// New constructs a ChatModel from an explicit Config, delegating to the
// appropriate backend constructor. It validates required credentials first
// so callers get a clear error at startup rather than on the first request.
func New(ctx context.Context, cfg *Config) (model.BaseChatModel, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("provider: model name must not be empty")
	}
	switch cfg.Backend {
	case BackendGroq:
		return newGroq(ctx, cfg)
	case BackendOpenAI:
		return newOpenAI(ctx, cfg)
	case BackendAzure:
		return newAzure(ctx, cfg)
	case BackendOllama:
		return newOllama(ctx, cfg)
	case BackendGemini:
		return newGemini(ctx, cfg)
	case BackendArk:
		return newArk(ctx, cfg)
	default:
		return nil, fmt.Errorf("provider: unknown backend %q — valid values: groq, openai, azure, ollama, gemini, ark", cfg.Backend)
	}
}
