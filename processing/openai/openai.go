// Package openai implements transcript processing with the OpenAI chat
// completions API via the go-openai SDK.
package openai

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/notewire/notewire/errors"
	"github.com/notewire/notewire/processing"
	"github.com/notewire/notewire/provider"
	"github.com/notewire/notewire/template"
)

const (
	// ProviderName is the registered name for this backend.
	ProviderName = "openai"

	defaultModel   = "gpt-4o"
	defaultTimeout = 120 * time.Second
)

// Config holds configuration for the OpenAI processing provider.
type Config struct {
	APIKey  string        `json:"api_key" yaml:"api_key"`
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Model   string        `json:"model" yaml:"model"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Provider implements processing.Provider using the OpenAI API.
type Provider struct {
	cfg    Config
	client *goopenai.Client
}

// NewProvider creates a new OpenAI processing provider.
func NewProvider(cfg Config) *Provider {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Provider{cfg: cfg, client: newClient(cfg, cfg.APIKey)}
}

func newClient(cfg Config, key string) *goopenai.Client {
	clientCfg := goopenai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/") + "/v1"
	}
	return goopenai.NewClientWithConfig(clientCfg)
}

// Factory returns a provider.Factory that creates OpenAI processing
// providers from a generic config map.
func Factory() provider.Factory[processing.Provider] {
	return func(cfg map[string]any) (processing.Provider, error) {
		oc := Config{}
		if v, ok := cfg["api_key"].(string); ok {
			oc.APIKey = v
		}
		if v, ok := cfg["base_url"].(string); ok {
			oc.BaseURL = v
		}
		if v, ok := cfg["model"].(string); ok {
			oc.Model = v
		}
		return NewProvider(oc), nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks whether a credential is configured and accepted.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	if p.cfg.APIKey == "" {
		return false
	}
	res, err := p.VerifyKey(ctx, p.cfg.APIKey)
	return err == nil && res.Valid
}

// VerifyKey validates an API key by listing models, after the "sk-"
// format precheck.
func (p *Provider) VerifyKey(ctx context.Context, key string) (*provider.VerifyResult, error) {
	if key == "" {
		return provider.Invalid("API key is empty"), nil
	}
	if !strings.HasPrefix(key, "sk-") {
		return provider.Invalid("Invalid API key format"), nil
	}

	if _, err := newClient(p.cfg, key).ListModels(ctx); err != nil {
		var apiErr *goopenai.APIError
		if stderrors.As(err, &apiErr) {
			return provider.Invalid(apiErr.Message), nil
		}
		return nil, errors.Network(ProviderName, err)
	}
	return provider.Valid(), nil
}

// Process renders the prompt and runs a chat completion.
func (p *Provider) Process(ctx context.Context, req processing.Request) (*processing.Result, error) {
	if p.cfg.APIKey == "" {
		return nil, errors.Configuration("OpenAI API key")
	}

	tmpl := req.PromptTemplate
	if tmpl == "" {
		tmpl = template.DefaultProcessingPrompt(ProviderName)
	}
	language := req.Language
	if language == "" {
		language = "auto"
	}
	prompt := template.Render(tmpl, map[string]string{
		template.VarTranscription: req.Transcript,
		template.VarLanguage:      language,
	})

	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}

	resp, err := p.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, translateError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.MalformedResponse(ProviderName)
	}

	return processing.ParseResponse(resp.Choices[0].Message.Content, req.Transcript), nil
}

func translateError(err error) error {
	var apiErr *goopenai.APIError
	if !stderrors.As(err, &apiErr) {
		return errors.Network(ProviderName, err)
	}
	switch apiErr.Type {
	case "authentication_error":
		return errors.Authentication(ProviderName)
	case "insufficient_quota":
		return errors.QuotaExceeded(ProviderName)
	case "invalid_request_error":
		return errors.InvalidRequest(apiErr.Message)
	default:
		return errors.Provider(ProviderName, apiErr.Message)
	}
}
