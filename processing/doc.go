// Package processing defines the provider interface and common types
// for post-processing transcripts with a language model: cleanup,
// summary, and a suggested reply.
//
// # Backends
//
//   - processing/openai: OpenAI chat completions
//   - processing/claude: Anthropic messages API
//   - processing/ollama: local Ollama server
package processing
