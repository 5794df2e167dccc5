package embedder

import (
	"log/slog"
	"strings"
)

// knownChatModelFragments contains name fragments that identify chat models
// which are NOT suitable for embedding. If the configured embedding model
// matches any of these, a warning is emitted so the operator knows the
// pipeline is likely misconfigured.
var knownChatModelFragments = []string{
	"gpt-4",
	"gpt-3.5",
	"o1",
	"o3",
	"llama",
	"mistral",
	"mixtral",
	"gemma",
	"phi-",
	"claude",
	"deepseek",
	"qwen",
	"scout",
}

// WarnIfChatModel logs a warning when the configured embedding model name
// resembles a chat/completion model rather than a dedicated embedding model.
// This is a pre-flight check: a chat model will produce poor or broken
// embeddings, and the failure mode downstream is silent bad retrieval.
func WarnIfChatModel(log *slog.Logger, model string) {
	if model == "" {
		return
	}
	lower := strings.ToLower(model)
	for _, fragment := range knownChatModelFragments {
		if strings.Contains(lower, fragment) {
			log.Warn("embedder: configured embedding model looks like a chat model — "+
				"this will likely produce poor or broken embeddings",
				slog.String("model", model),
				slog.String("hint", "use a dedicated embedding model e.g. nomic-embed-text, text-embedding-3-small"),
			)
			return
		}
	}
}
