package config

// Provider type identifiers for the transcription and processing stages.
const (
	TranscriberOpenAI       = "openai"
	TranscriberLocalWhisper = "whisper-local"

	ProcessorOpenAI = "openai"
	ProcessorClaude = "claude"
	ProcessorOllama = "ollama"
)

// Default endpoint and model values.
const (
	DefaultLanguage           = "auto"
	DefaultTranscriptionModel = "whisper-1"
	DefaultProcessingModel    = "gpt-4o"
	DefaultClaudeModel        = "claude-3-opus-20240229"
	DefaultOllamaModel        = "llama3.2:latest"
	DefaultLocalWhisperURL    = "http://localhost:9000"
	DefaultOllamaURL          = "http://localhost:11434"
)

// SupportedLanguages are the transcription language hints offered to users.
// "auto" lets the provider detect the language.
var SupportedLanguages = []string{"auto", "en", "es", "fr", "de", "it", "ar"}

// Settings holds the user-facing transcription configuration. It mirrors
// what users set through the options surface and is persisted through the
// store package.
type Settings struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled" json:"enabled"`

	Language string `yaml:"language" mapstructure:"language" json:"language" validate:"required"`

	TranscriptionProviderType string `yaml:"transcription_provider_type" mapstructure:"transcription_provider_type" json:"transcriptionProviderType" validate:"required,oneof=openai whisper-local"`
	TranscriptionModel        string `yaml:"transcription_model" mapstructure:"transcription_model" json:"transcriptionModel"`
	TranscriptionAPIKey       string `yaml:"transcription_api_key" mapstructure:"transcription_api_key" json:"transcriptionApiKey"`

	ProcessingProviderType string `yaml:"processing_provider_type" mapstructure:"processing_provider_type" json:"processingProviderType" validate:"omitempty,oneof=openai claude ollama"`
	ProcessingModel        string `yaml:"processing_model" mapstructure:"processing_model" json:"processingModel"`
	ProcessingAPIKey       string `yaml:"processing_api_key" mapstructure:"processing_api_key" json:"processingApiKey"`

	// PromptTemplate overrides the per-provider default processing prompt.
	// Empty means use the provider default.
	PromptTemplate string `yaml:"prompt_template" mapstructure:"prompt_template" json:"promptTemplate"`

	LocalWhisperURL string `yaml:"local_whisper_url" mapstructure:"local_whisper_url" json:"localWhisperUrl" validate:"omitempty,url"`
	OllamaURL       string `yaml:"ollama_url" mapstructure:"ollama_url" json:"ollamaUrl" validate:"omitempty,url"`
}

// DefaultSettings returns settings with the stock defaults applied.
func DefaultSettings() Settings {
	s := Settings{Enabled: true}
	s.ApplyDefaults()
	return s
}

// ApplyDefaults fills empty fields with default values.
func (s *Settings) ApplyDefaults() {
	if s.Language == "" {
		s.Language = DefaultLanguage
	}
	if s.TranscriptionProviderType == "" {
		s.TranscriptionProviderType = TranscriberOpenAI
	}
	if s.TranscriptionModel == "" {
		s.TranscriptionModel = DefaultTranscriptionModel
	}
	if s.ProcessingProviderType == "" {
		s.ProcessingProviderType = ProcessorOpenAI
	}
	if s.ProcessingModel == "" {
		s.ProcessingModel = DefaultProcessingModel
	}
	if s.LocalWhisperURL == "" {
		s.LocalWhisperURL = DefaultLocalWhisperURL
	}
	if s.OllamaURL == "" {
		s.OllamaURL = DefaultOllamaURL
	}
}

// HasTranscriptionCredential reports whether the configured transcription
// provider can run: cloud transcribers need an API key, the local whisper
// server only needs its URL.
func (s *Settings) HasTranscriptionCredential() bool {
	switch s.TranscriptionProviderType {
	case TranscriberLocalWhisper:
		return s.LocalWhisperURL != ""
	default:
		return s.TranscriptionAPIKey != ""
	}
}

// HasProcessingCredential reports whether the configured processing
// provider can run. Ollama is local and needs no key.
func (s *Settings) HasProcessingCredential() bool {
	switch s.ProcessingProviderType {
	case "":
		return false
	case ProcessorOllama:
		return s.OllamaURL != ""
	default:
		return s.ProcessingAPIKey != ""
	}
}
