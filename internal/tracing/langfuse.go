// Package tracing wires the optional Langfuse observability callback into
// the eino callback chain. Tracing is opt-in: without credentials the
// answer loop runs exactly as before, with zero overhead.
package tracing

import (
	"os"

	"github.com/cloudwego/eino-ext/callbacks/langfuse"
	"github.com/cloudwego/eino/callbacks"
)

// defaultHost is used when LANGFUSE_HOST is unset (local Langfuse docker).
const defaultHost = "http://localhost:3000"

// Setup initialises the Langfuse callback handler when both
// LANGFUSE_PUBLIC_KEY and LANGFUSE_SECRET_KEY are present. The returned
// flush function must run before process exit so buffered trace events for
// the final answer are not lost. When tracing is not configured the third
// return value is false and the other two are nil.
func Setup() (callbacks.Handler, func(), bool) {
	publicKey := os.Getenv("LANGFUSE_PUBLIC_KEY")
	secretKey := os.Getenv("LANGFUSE_SECRET_KEY")
	if publicKey == "" || secretKey == "" {
		return nil, nil, false
	}

	host := os.Getenv("LANGFUSE_HOST")
	if host == "" {
		host = defaultHost
	}

	handler, flusher := langfuse.NewLangfuseHandler(&langfuse.Config{
		Host:      host,
		PublicKey: publicKey,
		SecretKey: secretKey,
	})

	return handler, flusher, true
}
