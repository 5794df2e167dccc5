package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_MissingExplicitPathIsError(t *testing.T) {
	log := slog.Default()
	_, _, err := Load("/nonexistent/path/config.yaml", log)
	if err == nil {
		t.Fatal("a typo'd --config path must fail, not fall back to defaults")
	}
	if !strings.Contains(err.Error(), "/nonexistent/path/config.yaml") {
		t.Errorf("error should name the bad path, got %v", err)
	}
}

func TestLoad_NoFile(t *testing.T) {
	// Hermetic search: no PAPERQA_CONFIG, no ~/.paperqa/config.yaml, no
	// ./paperqa.yaml in the temp working tree.
	t.Setenv("PAPERQA_CONFIG", "")
	os.Unsetenv("PAPERQA_CONFIG")
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	log := slog.Default()
	cfg, path, err := Load("", log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "" {
		t.Errorf("expected empty path, got %q", path)
	}
	if cfg.Model.Provider != "groq" {
		t.Errorf("default provider: got %q, want groq", cfg.Model.Provider)
	}
	if cfg.Retrieval.ChunkSize != 1100 || cfg.Retrieval.ChunkOverlap != 200 {
		t.Errorf("default chunking: got %d/%d", cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("default top_k: got %d", cfg.Retrieval.TopK)
	}
	if cfg.Agent.MaxIterations != 2 {
		t.Errorf("default max_iterations: got %d", cfg.Agent.MaxIterations)
	}
}

func TestLoad_ValidFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := []byte(`
papers:
  dir: /data/papers
model:
  provider: azure
  max_tokens: 1200
  maker_temperature: 0.3
  azure:
    endpoint: https://my-resource.openai.azure.com
    deployment: gpt-4o
    api_version: "2025-04-01-preview"
embedding:
  provider: ollama
  model: nomic-embed-text
retrieval:
  top_k: 7
  chunk_size: 900
logging:
  level: debug
  format: text
`)

	if err := os.WriteFile(cfgPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	// Clear env vars the YAML values would otherwise lose to.
	envKeys := []string{
		"PAPERS_DIR", "MODEL_PROVIDER", "MODEL_MAX_TOKENS", "MAKER_TEMPERATURE",
		"AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_DEPLOYMENT", "AZURE_OPENAI_API_VERSION",
		"EMBEDDING_PROVIDER", "EMBEDDING_MODEL",
		"TOP_K", "CHUNK_SIZE",
		"LOG_LEVEL", "LOG_FORMAT",
	}
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	log := slog.Default()
	cfg, loaded, err := Load(cfgPath, log)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != cfgPath {
		t.Errorf("loaded path: got %q, want %q", loaded, cfgPath)
	}

	if cfg.Papers.Dir != "/data/papers" {
		t.Errorf("papers.dir: got %q", cfg.Papers.Dir)
	}
	if cfg.Model.Provider != "azure" {
		t.Errorf("model.provider: got %q", cfg.Model.Provider)
	}
	if cfg.Model.MaxTokens != 1200 {
		t.Errorf("model.max_tokens: got %d", cfg.Model.MaxTokens)
	}
	if cfg.Model.Azure.Deployment != "gpt-4o" {
		t.Errorf("azure.deployment: got %q", cfg.Model.Azure.Deployment)
	}
	if cfg.Retrieval.TopK != 7 {
		t.Errorf("retrieval.top_k: got %d", cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.ChunkSize != 900 {
		t.Errorf("retrieval.chunk_size: got %d", cfg.Retrieval.ChunkSize)
	}
	// Unset YAML keys keep their defaults.
	if cfg.Retrieval.ChunkOverlap != 200 {
		t.Errorf("retrieval.chunk_overlap default: got %d", cfg.Retrieval.ChunkOverlap)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("logging: got %s/%s", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := []byte(`
model:
  provider: ollama
retrieval:
  top_k: 3
`)
	if err := os.WriteFile(cfgPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("MODEL_PROVIDER", "azure")
	t.Setenv("TOP_K", "8")

	log := slog.Default()
	cfg, _, err := Load(cfgPath, log)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Model.Provider != "azure" {
		t.Errorf("MODEL_PROVIDER env should win: got %q", cfg.Model.Provider)
	}
	if cfg.Retrieval.TopK != 8 {
		t.Errorf("TOP_K env should win: got %d", cfg.Retrieval.TopK)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(cfgPath, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	log := slog.Default()
	_, _, err := Load(cfgPath, log)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestApplyEnv_BadIntIgnored(t *testing.T) {
	t.Setenv("TOP_K", "not-a-number")

	cfg := Defaults()
	applyEnv(cfg)

	if cfg.Retrieval.TopK != 5 {
		t.Errorf("malformed TOP_K should keep default: got %d", cfg.Retrieval.TopK)
	}
}
