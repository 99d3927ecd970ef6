// Package providers implements the Generator interface for each supported
// text-generation backend.
//
// Supported providers: Hugging Face Inference Providers (default, through the
// OpenAI-compatible router), Anthropic, OpenAI, Google Gemini, Ollama / LM
// Studio for local models, and Cohere (through its Go SDK).
//
// All providers share a transport-level retry helper with exponential
// back-off for rate limiting and 5xx responses. Authentication failures and
// missing credentials are reported as auth errors (see [IsAuthError]) and are
// never retried. HTTP clients are plain struct fields so tests can point them
// at httptest servers.
//
// Use [New] to obtain a Generator by provider name and model string.
package providers
