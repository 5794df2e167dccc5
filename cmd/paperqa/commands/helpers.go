package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudwego/eino/callbacks"

	"github.com/ebzlo/paperqa-go/internal/agent"
	"github.com/ebzlo/paperqa-go/internal/config"
	"github.com/ebzlo/paperqa-go/internal/embedder"
	"github.com/ebzlo/paperqa-go/internal/index"
	"github.com/ebzlo/paperqa-go/internal/ingest"
	"github.com/ebzlo/paperqa-go/internal/provider"
	"github.com/ebzlo/paperqa-go/internal/store"
	"github.com/ebzlo/paperqa-go/internal/tracing"
)

// buildAgent assembles the full answer pipeline from the resolved config:
// embedder → index (built over the ingested corpus) → chat model → agent.
// The returned cleanup function flushes tracing and must be called before
// process exit.
func buildAgent(ctx context.Context, cfg *config.Config, log *slog.Logger) (*agent.Agent, func(), error) {
	cleanup := func() {}

	// Langfuse tracing is opt-in, a no-op when keys are absent.
	if handler, flush, ok := tracing.Setup(); ok {
		callbacks.AppendGlobalHandlers(handler)
		cleanup = flush
		log.Info("langfuse tracing enabled")
	}

	dims := cfg.Embedding.Dimensions
	if dims == 0 {
		dims = embedder.DefaultDimensions(cfg.Embedding.Provider)
	}
	embedder.WarnIfChatModel(log, cfg.Embedding.Model)
	emb, err := embedder.New(&embedder.Settings{
		Provider:   cfg.Embedding.Provider,
		Model:      cfg.Embedding.Model,
		Dimensions: dims,
		APIKey:     cfg.Embedding.APIKey,
		Endpoint:   cfg.Embedding.Endpoint,
		APIVersion: cfg.Embedding.APIVersion,
	})
	if err != nil {
		return nil, cleanup, fmt.Errorf("failed to initialise embedder: %w", err)
	}

	pipeline, err := ingest.NewPipeline(ingest.NewPDFExtractor(), &ingest.Config{
		ChunkSize:    cfg.Retrieval.ChunkSize,
		ChunkOverlap: cfg.Retrieval.ChunkOverlap,
	}, log)
	if err != nil {
		return nil, cleanup, err
	}

	start := time.Now()
	chunks, err := pipeline.Ingest(cfg.Papers.Dir)
	if err != nil {
		return nil, cleanup, err
	}

	idx, err := index.New(emb)
	if err != nil {
		return nil, cleanup, err
	}
	if err := idx.Build(ctx, chunks); err != nil {
		return nil, cleanup, fmt.Errorf("failed to build index: %w", err)
	}
	log.Info("corpus indexed",
		slog.String("dir", cfg.Papers.Dir),
		slog.Int("chunks", idx.Size()),
		slog.Duration("took", time.Since(start)),
	)

	chatModel, err := provider.New(ctx, providerConfig(cfg))
	if err != nil {
		return nil, cleanup, fmt.Errorf("failed to initialise model provider: %w", err)
	}

	qa, err := agent.New(&agent.Config{
		ChatModel:           chatModel,
		Retriever:           idx,
		TopK:                cfg.Retrieval.TopK,
		MaxIterations:       cfg.Agent.MaxIterations,
		MaxQuestionChars:    cfg.Agent.MaxQuestionChars,
		MakerTemperature:    cfg.Model.MakerTemperature,
		CheckerTemperature:  cfg.Model.CheckerTemperature,
		MaxCompletionTokens: cfg.Model.MaxTokens,
		MaxContextTokens:    cfg.Agent.MaxContextTokens,
		RequestsPerMinute:   cfg.Model.RequestsPerMinute,
	})
	if err != nil {
		return nil, cleanup, err
	}

	return qa, cleanup, nil
}

// providerConfig maps the per-backend sections of the resolved config onto
// the flat provider.Config the factory consumes.
func providerConfig(cfg *config.Config) *provider.Config {
	pc := &provider.Config{
		Backend:     provider.Backend(cfg.Model.Provider),
		MaxTokens:   cfg.Model.MaxTokens,
		Temperature: cfg.Model.MakerTemperature,
	}

	switch pc.Backend {
	case provider.BackendGroq:
		pc.Model = cfg.Model.Groq.Model
		pc.APIKey = cfg.Model.Groq.APIKey
	case provider.BackendOpenAI:
		pc.Model = cfg.Model.OpenAI.Model
		pc.APIKey = cfg.Model.OpenAI.APIKey
	case provider.BackendAzure:
		pc.Model = cfg.Model.Azure.Deployment
		pc.APIKey = cfg.Model.Azure.APIKey
		pc.BaseURL = cfg.Model.Azure.Endpoint
		pc.AzureDeployment = cfg.Model.Azure.Deployment
		pc.AzureAPIVersion = cfg.Model.Azure.APIVersion
	case provider.BackendOllama:
		pc.Model = cfg.Model.Ollama.Model
		pc.BaseURL = cfg.Model.Ollama.Host
	case provider.BackendGemini:
		pc.Model = cfg.Model.Gemini.Model
		pc.APIKey = cfg.Model.Gemini.APIKey
	case provider.BackendArk:
		pc.Model = cfg.Model.Ark.Model
		pc.APIKey = cfg.Model.Ark.APIKey
	}

	return pc
}

// openHistory opens the Q&A transcript store per the history config.
// Returns (nil, nil) when history is disabled.
func openHistory(cfg *config.Config, log *slog.Logger) (store.HistoryStore, error) {
	dbPath := cfg.History.DBPath
	if dbPath == "disabled" {
		log.Debug("history persistence disabled")
		return nil, nil
	}
	if dbPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
		dbPath = p
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	log.Debug("history store opened", slog.String("path", dbPath))
	return s, nil
}
