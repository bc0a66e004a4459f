package ollama

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

func newTestProvider(t *testing.T, url string) *Provider {
	t.Helper()
	p, err := NewProvider(Config{APIURL: url})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	return p
}

func TestProvider_Process(t *testing.T) {
	var gotReq generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		resp, _ := json.Marshal(generateResponse{
			Response: `{"cleaned_transcript":"c","summary":"s","reply":"r"}`,
		})
		w.Write(resp)
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)
	result, err := p.Process(context.Background(), processing.Request{Transcript: "hey"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if gotReq.Model != "llama3.2:latest" {
		t.Errorf("model = %q", gotReq.Model)
	}
	if gotReq.Stream {
		t.Error("stream must be false")
	}
	if !strings.Contains(gotReq.Prompt, "hey") {
		t.Error("prompt should embed the transcript")
	}
	if result.Cleaned != "c" {
		t.Errorf("result = %+v", result)
	}
}

func TestProvider_Process_RepairsTruncatedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// closing brace missing from the model output
		resp, _ := json.Marshal(generateResponse{
			Response: `{"cleaned_transcript":"c","summary":"s","reply":"r"`,
		})
		w.Write(resp)
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)
	result, err := p.Process(context.Background(), processing.Request{Transcript: "x"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Cleaned != "c" || result.Summary != "s" || result.Reply != "r" {
		t.Errorf("result = %+v", result)
	}
}

func TestProvider_Process_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("model runner crashed"))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)
	_, err := p.Process(context.Background(), processing.Request{Transcript: "x"})
	if errors.CodeOf(err) != errors.ErrCodeProvider {
		t.Errorf("code = %s", errors.CodeOf(err))
	}
}

func TestProvider_Process_Unreachable(t *testing.T) {
	p := newTestProvider(t, "http://127.0.0.1:1")
	_, err := p.Process(context.Background(), processing.Request{Transcript: "x"})
	if errors.CodeOf(err) != errors.ErrCodeNetwork {
		t.Errorf("code = %s", errors.CodeOf(err))
	}
}

func TestProvider_VerifyKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"models":[{"name":"llama3.2:latest"}]}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)
	res, err := p.VerifyKey(context.Background(), "")
	if err != nil {
		t.Fatalf("VerifyKey: %v", err)
	}
	if !res.Valid {
		t.Errorf("result = %+v", res)
	}
}

func TestProvider_VerifyKey_BadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"something":"else"}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)
	res, err := p.VerifyKey(context.Background(), "")
	if err != nil {
		t.Fatalf("VerifyKey: %v", err)
	}
	if res.Valid {
		t.Error("payload without models should fail verification")
	}
	if res.Reason != "Unexpected response from Ollama server" {
		t.Errorf("Reason = %q", res.Reason)
	}
}

func TestProvider_VerifyKey_Unreachable(t *testing.T) {
	p := newTestProvider(t, "http://127.0.0.1:1")
	res, err := p.VerifyKey(context.Background(), "")
	if err != nil {
		t.Fatalf("VerifyKey: %v", err)
	}
	if res.Valid {
		t.Error("unreachable server should fail verification")
	}
	if !strings.Contains(res.Reason, "Make sure Ollama is running") {
		t.Errorf("Reason = %q", res.Reason)
	}
}

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{`{"a":1`, `{"a":1}`},
		{"plain text", "plain text"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := repairJSON(tt.in); got != tt.want {
			t.Errorf("repairJSON(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
