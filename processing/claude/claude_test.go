package claude

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/notewire/notewire/errors"
	"github.com/notewire/notewire/processing"
)

func newTestProvider(t *testing.T, url, key string) *Provider {
	t.Helper()
	p, err := NewProvider(Config{APIKey: key, APIURL: url})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	return p
}

func messagesBody(text string) string {
	body, _ := json.Marshal(map[string]any{
		"content": []map[string]string{{"type": "text", "text": text}},
	})
	return string(body)
}

func TestProvider_Process(t *testing.T) {
	var gotKey, gotVersion, gotModel string
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		var req messagesRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotModel = req.Model
		if len(req.Messages) == 1 {
			gotPrompt = req.Messages[0].Content
		}
		w.Write([]byte(messagesBody(`{"cleaned_transcript":"c","summary":"s","reply":"r"}`)))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL, "sk-ant-test")
	result, err := p.Process(context.Background(), processing.Request{Transcript: "voice note"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if gotKey != "sk-ant-test" {
		t.Errorf("x-api-key = %q", gotKey)
	}
	if gotVersion != "2023-06-01" {
		t.Errorf("anthropic-version = %q", gotVersion)
	}
	if gotModel != "claude-3-opus-20240229" {
		t.Errorf("model = %q", gotModel)
	}
	if !strings.Contains(gotPrompt, "voice note") {
		t.Error("prompt should embed the transcript")
	}
	if result.Cleaned != "c" || result.Summary != "s" || result.Reply != "r" {
		t.Errorf("result = %+v", result)
	}
}

func TestProvider_Process_NoKey(t *testing.T) {
	p := newTestProvider(t, "http://unused.invalid", "")
	_, err := p.Process(context.Background(), processing.Request{Transcript: "x"})
	if errors.CodeOf(err) != errors.ErrCodeConfiguration {
		t.Errorf("code = %s", errors.CodeOf(err))
	}
}

func TestProvider_Process_ErrorCategories(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   errors.ErrorCode
	}{
		{"authentication", 401, `{"error":{"type":"authentication_error","message":"invalid key"}}`, errors.ErrCodeAuthentication},
		{"rate limit", 429, `{"error":{"type":"rate_limit_error","message":"slow down"}}`, errors.ErrCodeQuotaExceeded},
		{"overloaded", 529, `{"error":{"type":"overloaded_error","message":"busy"}}`, errors.ErrCodeProvider},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(tt.body))
		}))
		p := newTestProvider(t, srv.URL, "sk-ant-test")
		_, err := p.Process(context.Background(), processing.Request{Transcript: "x"})
		if errors.CodeOf(err) != tt.want {
			t.Errorf("%s: code = %s, want %s", tt.name, errors.CodeOf(err), tt.want)
		}
		srv.Close()
	}
}

func TestProvider_VerifyKey_FormatPrecheck(t *testing.T) {
	p := newTestProvider(t, "http://unused.invalid", "")

	res, err := p.VerifyKey(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Valid || res.Reason != "API key is empty" {
		t.Errorf("result = %+v", res)
	}

	res, err = p.VerifyKey(context.Background(), "sk-openai-style")
	if err != nil {
		t.Fatal(err)
	}
	if res.Valid || res.Reason != "Invalid API key format" {
		t.Errorf("result = %+v", res)
	}
}

func TestProvider_VerifyKey_Valid(t *testing.T) {
	var gotBody messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(messagesBody("Hi there")))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL, "")
	res, err := p.VerifyKey(context.Background(), "sk-ant-good")
	if err != nil {
		t.Fatalf("VerifyKey: %v", err)
	}
	if !res.Valid {
		t.Errorf("result = %+v", res)
	}
	if gotBody.MaxTokens != 1000 {
		t.Errorf("max_tokens = %d", gotBody.MaxTokens)
	}
}

func TestProvider_VerifyKey_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL, "")
	res, err := p.VerifyKey(context.Background(), "sk-ant-bad")
	if err != nil {
		t.Fatalf("VerifyKey: %v", err)
	}
	if res.Valid {
		t.Error("key should be rejected")
	}
	if res.Reason == "" {
		t.Error("rejection should carry a reason")
	}
}
