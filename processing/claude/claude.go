// Package claude implements transcript processing with the Anthropic
// messages API (POST /v1/messages).
package claude

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/notewire/notewire/apierr"
	"github.com/notewire/notewire/errors"
	"github.com/notewire/notewire/httpclient"
	"github.com/notewire/notewire/processing"
	"github.com/notewire/notewire/provider"
	"github.com/notewire/notewire/template"
)

const (
	// ProviderName is the registered name for this backend.
	ProviderName = "claude"

	defaultAPIURL  = "https://api.anthropic.com"
	defaultModel   = "claude-3-opus-20240229"
	defaultTimeout = 120 * time.Second

	apiVersion    = "2023-06-01"
	maxTokens     = 1000
	verifyMessage = "Hello"
)

// Config holds configuration for the Claude processing provider.
type Config struct {
	APIKey  string        `json:"api_key" yaml:"api_key"`
	APIURL  string        `json:"api_url" yaml:"api_url"`
	Model   string        `json:"model" yaml:"model"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Provider implements processing.Provider using the Anthropic API.
type Provider struct {
	cfg    Config
	client *httpclient.Client
}

// NewProvider creates a new Claude processing provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	client, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.APIURL,
		Timeout: cfg.Timeout,
		Headers: map[string]string{"anthropic-version": apiVersion},
	})
	if err != nil {
		return nil, err
	}
	return &Provider{cfg: cfg, client: client}, nil
}

// Factory returns a provider.Factory that creates Claude providers from
// a generic config map.
func Factory() provider.Factory[processing.Provider] {
	return func(cfg map[string]any) (processing.Provider, error) {
		cc := Config{}
		if v, ok := cfg["api_key"].(string); ok {
			cc.APIKey = v
		}
		if v, ok := cfg["api_url"].(string); ok {
			cc.APIURL = v
		}
		if v, ok := cfg["model"].(string); ok {
			cc.Model = v
		}
		return NewProvider(cc)
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

type messagesRequest struct {
	Model     string    `json:"model"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// VerifyKey validates an API key with a minimal messages call, after
// the "sk-ant-" format precheck.
func (p *Provider) VerifyKey(ctx context.Context, key string) (*provider.VerifyResult, error) {
	if key == "" {
		return provider.Invalid("API key is empty"), nil
	}
	if !strings.HasPrefix(key, "sk-ant-") {
		return provider.Invalid("Invalid API key format"), nil
	}

	_, err := p.send(ctx, key, messagesRequest{
		Model:     p.cfg.Model,
		Messages:  []message{{Role: "user", Content: verifyMessage}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		if httpErr, ok := asHTTPError(err); ok {
			appErr := apierr.ParseClaude(httpErr.Body, "Invalid API key")
			return provider.Invalid(appErr.Message), nil
		}
		return nil, errors.Network(ProviderName, err)
	}
	return provider.Valid(), nil
}

// Process renders the prompt and runs a messages call.
func (p *Provider) Process(ctx context.Context, req processing.Request) (*processing.Result, error) {
	if p.cfg.APIKey == "" {
		return nil, errors.Configuration("Claude API key")
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

	resp, err := p.send(ctx, p.cfg.APIKey, messagesRequest{
		Model:     model,
		Messages:  []message{{Role: "user", Content: prompt}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		if httpErr, ok := asHTTPError(err); ok {
			return nil, apierr.ParseClaude(httpErr.Body, "Processing failed")
		}
		return nil, errors.Network(ProviderName, err)
	}
	if len(resp.Content) == 0 {
		return nil, errors.MalformedResponse(ProviderName)
	}

	return processing.ParseResponse(resp.Content[0].Text, req.Transcript), nil
}

func (p *Provider) send(ctx context.Context, key string, body messagesRequest) (*messagesResponse, error) {
	resp, err := p.client.Do(ctx, &httpclient.Request{
		Method: http.MethodPost,
		Path:   "/v1/messages",
		Auth:   httpclient.APIKeyAuthHeader(key, "x-api-key"),
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	var result messagesResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, errors.MalformedResponse(ProviderName).WithCause(err)
	}
	return &result, nil
}

func asHTTPError(err error) (*httpclient.Error, bool) {
	var httpErr *httpclient.Error
	if stderrors.As(err, &httpErr) && httpErr.StatusCode > 0 {
		return httpErr, true
	}
	return nil, false
}
