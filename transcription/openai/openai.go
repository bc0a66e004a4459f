// Package openai implements transcription against the OpenAI hosted
// Whisper API (POST /v1/audio/transcriptions).
package openai

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
	"github.com/notewire/notewire/provider"
	"github.com/notewire/notewire/transcription"
)

const (
	// ProviderName is the registered name for this backend.
	ProviderName = "openai"

	defaultAPIURL  = "https://api.openai.com"
	defaultModel   = "whisper-1"
	defaultTimeout = 120 * time.Second
)

// Config holds configuration for the OpenAI transcription provider.
type Config struct {
	APIKey  string        `json:"api_key" yaml:"api_key"`
	APIURL  string        `json:"api_url" yaml:"api_url"`
	Model   string        `json:"model" yaml:"model"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Provider implements transcription.Provider using the OpenAI API.
type Provider struct {
	cfg    Config
	client *httpclient.Client
}

// NewProvider creates a new OpenAI transcription provider.
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
		Auth:    httpclient.BearerAuth(cfg.APIKey),
	})
	if err != nil {
		return nil, err
	}
	return &Provider{cfg: cfg, client: client}, nil
}

// Factory returns a provider.Factory that creates OpenAI providers from
// a generic config map.
func Factory() provider.Factory[transcription.Provider] {
	return func(cfg map[string]any) (transcription.Provider, error) {
		oc := Config{}
		if v, ok := cfg["api_key"].(string); ok {
			oc.APIKey = v
		}
		if v, ok := cfg["api_url"].(string); ok {
			oc.APIURL = v
		}
		if v, ok := cfg["model"].(string); ok {
			oc.Model = v
		}
		if v, ok := cfg["timeout"].(time.Duration); ok {
			oc.Timeout = v
		}
		return NewProvider(oc)
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

// VerifyKey validates an API key against GET /v1/models. A format
// precheck rejects keys without the "sk-" prefix before any request.
func (p *Provider) VerifyKey(ctx context.Context, key string) (*provider.VerifyResult, error) {
	if key == "" {
		return provider.Invalid("API key is empty"), nil
	}
	if !strings.HasPrefix(key, "sk-") {
		return provider.Invalid("Invalid API key format"), nil
	}

	_, err := p.client.Do(ctx, &httpclient.Request{
		Method: http.MethodGet,
		Path:   "/v1/models",
		Auth:   httpclient.BearerAuth(key),
	})
	if err != nil {
		if httpErr, ok := asHTTPError(err); ok {
			appErr := apierr.ParseOpenAI(httpErr.Body, "Invalid API key")
			return provider.Invalid(appErr.Message), nil
		}
		return nil, errors.Network(ProviderName, err)
	}
	return provider.Valid(), nil
}

// Transcribe uploads the audio as multipart form data. The language
// field is omitted for auto-detection.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	if p.cfg.APIKey == "" {
		return nil, errors.Configuration("OpenAI API key")
	}

	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}
	fields := map[string]string{"model": model}
	if req.Language != "" && req.Language != "auto" {
		fields["language"] = req.Language
	}

	resp, err := p.client.Do(ctx, &httpclient.Request{
		Method: http.MethodPost,
		Path:   "/v1/audio/transcriptions",
		Body: &httpclient.MultipartBody{
			Fields: fields,
			Files: []httpclient.FileField{{
				FieldName:   "file",
				FileName:    "audio.ogg",
				ContentType: req.MIME,
				Data:        req.Audio,
			}},
		},
	})
	if err != nil {
		if httpErr, ok := asHTTPError(err); ok {
			return nil, apierr.ParseOpenAI(httpErr.Body, "Transcription failed")
		}
		return nil, errors.Network(ProviderName, err)
	}

	var result struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, errors.MalformedResponse(ProviderName).WithCause(err)
	}

	return &transcription.Response{Text: result.Text, Language: result.Language}, nil
}

func asHTTPError(err error) (*httpclient.Error, bool) {
	var httpErr *httpclient.Error
	if stderrors.As(err, &httpErr) && httpErr.StatusCode > 0 {
		return httpErr, true
	}
	return nil, false
}
