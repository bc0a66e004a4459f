// Package whisper implements transcription against a local whisper.cpp
// style HTTP server (POST /inference). No credential is required; key
// verification degenerates to a reachability probe on /health.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/notewire/notewire/errors"
	"github.com/notewire/notewire/provider"
	"github.com/notewire/notewire/transcription"
)

const (
	// ProviderName is the registered name for this backend.
	ProviderName = "whisper-local"

	defaultWhisperURL     = "http://localhost:9000"
	defaultWhisperTimeout = 120 * time.Second
)

// Config holds configuration for the local whisper provider.
type Config struct {
	URL     string        `json:"url" yaml:"url"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Provider implements transcription.Provider using a local whisper server.
type Provider struct {
	cfg    Config
	client *http.Client
}

// NewProvider creates a new local whisper transcription provider.
func NewProvider(cfg Config) *Provider {
	if cfg.URL == "" {
		cfg.URL = defaultWhisperURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultWhisperTimeout
	}
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Factory returns a provider.Factory that creates local whisper
// providers from a generic config map.
func Factory() provider.Factory[transcription.Provider] {
	return func(cfg map[string]any) (transcription.Provider, error) {
		wc := Config{}
		if v, ok := cfg["url"].(string); ok {
			wc.URL = v
		}
		if v, ok := cfg["timeout"].(time.Duration); ok {
			wc.Timeout = v
		}
		return NewProvider(wc), nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the whisper server is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.URL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// VerifyKey probes the server health endpoint. The key argument is
// ignored; a local server has no credential.
func (p *Provider) VerifyKey(ctx context.Context, key string) (*provider.VerifyResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.URL+"/health", nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return provider.Invalid(fmt.Sprintf("Cannot connect to local whisper server: %v", err)), nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return provider.Invalid("Local whisper server is not responding properly"), nil
	}
	return provider.Valid(), nil
}

// Transcribe posts the audio to /inference as multipart form data.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := createAudioPart(writer, req.MIME)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(req.Audio); err != nil {
		return nil, fmt.Errorf("write audio data: %w", err)
	}
	if req.Language != "" && req.Language != "auto" {
		_ = writer.WriteField("language", req.Language)
	}
	writer.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL+"/inference", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, errors.Network(ProviderName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.Provider(ProviderName,
			fmt.Sprintf("Local whisper transcription failed (status %d): %s", resp.StatusCode, string(body)))
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.MalformedResponse(ProviderName).WithCause(err)
	}

	return &transcription.Response{Text: result.Text, Language: req.Language}, nil
}

// createAudioPart writes the file part carrying the original MIME type
// so the server sees the container format of the recording.
func createAudioPart(writer *multipart.Writer, mimeType string) (io.Writer, error) {
	if mimeType == "" {
		return writer.CreateFormFile("file", "audio.ogg")
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="audio.ogg"`)
	header.Set("Content-Type", mimeType)
	return writer.CreatePart(header)
}
