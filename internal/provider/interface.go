// Package provider defines the configuration and factory for selecting and
// constructing the LLM chat backend at runtime. Supported backends: Groq
// (OpenAI-compatible), OpenAI, Azure OpenAI, Ollama, Google Gemini, and
// Volcano Ark.
package provider

// Backend enumerates the supported LLM inference providers.
type Backend string

const (
	// BackendGroq selects the Groq API via its OpenAI-compatible endpoint.
	BackendGroq Backend = "groq"
	// BackendOpenAI selects the OpenAI API.
	BackendOpenAI Backend = "openai"
	// BackendAzure selects Azure OpenAI Service.
	BackendAzure Backend = "azure"
	// BackendOllama selects a locally running Ollama instance.
	BackendOllama Backend = "ollama"
	// BackendGemini selects Google Gemini via AI Studio.
	BackendGemini Backend = "gemini"
	// BackendArk selects the Volcano Engine Ark model runtime.
	BackendArk Backend = "ark"
)

// Config holds all provider-level configuration resolved from the config
// file or environment, passed explicitly by the caller.
type Config struct {
	// Backend identifies which inference provider to use.
	Backend Backend

	// Model is the model name or deployment ID to use.
	Model string

	// BaseURL overrides the default API endpoint (required for Ollama;
	// optional for Groq/Ark).
	BaseURL string

	// APIKey is the authentication credential for the selected provider.
	APIKey string

	// AzureDeployment is the Azure OpenAI deployment name (Azure only).
	AzureDeployment string

	// AzureAPIVersion is the Azure OpenAI REST API version (Azure only).
	AzureAPIVersion string

	// MaxTokens caps the number of tokens the model may generate per
	// response. Per-call options may lower this further.
	MaxTokens int

	// Temperature is the default sampling temperature. The answer loop
	// overrides it per call (maker vs checker).
	Temperature float32
}
