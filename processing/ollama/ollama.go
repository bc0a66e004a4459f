// Package ollama implements transcript processing against a local
// Ollama server (POST /api/generate, non-streaming).
package ollama

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/notewire/notewire/errors"
	"github.com/notewire/notewire/httpclient"
	"github.com/notewire/notewire/processing"
	"github.com/notewire/notewire/provider"
	"github.com/notewire/notewire/template"
)

const (
	// ProviderName is the registered name for this backend.
	ProviderName = "ollama"

	defaultAPIURL  = "http://localhost:11434"
	defaultModel   = "llama3.2:latest"
	defaultTimeout = 300 * time.Second
)

// Config holds configuration for the Ollama processing provider.
type Config struct {
	APIURL  string        `json:"api_url" yaml:"api_url"`
	Model   string        `json:"model" yaml:"model"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Provider implements processing.Provider using a local Ollama server.
type Provider struct {
	cfg    Config
	client *httpclient.Client
}

// NewProvider creates a new Ollama processing provider.
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
	})
	if err != nil {
		return nil, err
	}
	return &Provider{cfg: cfg, client: client}, nil
}

// Factory returns a provider.Factory that creates Ollama providers from
// a generic config map.
func Factory() provider.Factory[processing.Provider] {
	return func(cfg map[string]any) (processing.Provider, error) {
		oc := Config{}
		if v, ok := cfg["api_url"].(string); ok {
			oc.APIURL = v
		}
		if v, ok := cfg["model"].(string); ok {
			oc.Model = v
		}
		return NewProvider(oc)
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the Ollama server is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	res, err := p.VerifyKey(ctx, "")
	return err == nil && res.Valid
}

// VerifyKey probes GET /api/tags. The key argument is ignored; a local
// server has no credential. The response must list models to count as
// a working installation.
func (p *Provider) VerifyKey(ctx context.Context, key string) (*provider.VerifyResult, error) {
	resp, err := p.client.Get(ctx, "/api/tags")
	if err != nil {
		return provider.Invalid(fmt.Sprintf(
			"Ollama server error: %v. Make sure Ollama is running at %s", err, p.cfg.APIURL)), nil
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.Unmarshal(resp.Body, &tags); err != nil || tags.Models == nil {
		return provider.Invalid("Unexpected response from Ollama server"), nil
	}
	return provider.Valid(), nil
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Process renders the prompt and runs a non-streaming generate call.
// Local models sometimes drop the closing brace of the requested JSON
// object; a single trailing brace is restored before parsing.
func (p *Provider) Process(ctx context.Context, req processing.Request) (*processing.Result, error) {
	tmpl := req.PromptTemplate
	if tmpl == "" {
		tmpl = template.DefaultProcessingPrompt(ProviderName)
	}
	language := req.Language
	if language == "" {
		language = "same as transcription"
	}
	prompt := template.Render(tmpl, map[string]string{
		template.VarTranscription: req.Transcript,
		template.VarLanguage:      language,
	})

	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}

	resp, err := p.client.PostJSON(ctx, "/api/generate", generateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		if httpErr, ok := asHTTPError(err); ok {
			return nil, errors.Provider(ProviderName,
				fmt.Sprintf("Ollama processing failed: %s", string(httpErr.Body)))
		}
		return nil, errors.Network(ProviderName, err)
	}

	var result generateResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, errors.MalformedResponse(ProviderName).WithCause(err)
	}

	return processing.ParseResponse(repairJSON(result.Response), req.Transcript), nil
}

// repairJSON restores a missing closing brace on a truncated JSON
// object response.
func repairJSON(response string) string {
	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return response
	}
	if strings.HasPrefix(trimmed, "{") && !strings.HasSuffix(trimmed, "}") {
		return trimmed + "}"
	}
	return response
}

func asHTTPError(err error) (*httpclient.Error, bool) {
	var httpErr *httpclient.Error
	if stderrors.As(err, &httpErr) && httpErr.StatusCode > 0 {
		return httpErr, true
	}
	return nil, false
}
