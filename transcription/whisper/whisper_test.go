package whisper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/notewire/notewire/errors"
	"github.com/notewire/notewire/transcription"
)

func TestProvider_IsAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewProvider(Config{URL: srv.URL})
	if !p.IsAvailable(context.Background()) {
		t.Error("IsAvailable() = false with healthy server")
	}
}

func TestProvider_IsAvailable_Down(t *testing.T) {
	p := NewProvider(Config{URL: "http://127.0.0.1:1"})
	if p.IsAvailable(context.Background()) {
		t.Error("IsAvailable() = true with unreachable server")
	}
}

func TestProvider_VerifyKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewProvider(Config{URL: srv.URL})
	res, err := p.VerifyKey(context.Background(), "")
	if err != nil {
		t.Fatalf("VerifyKey: %v", err)
	}
	if !res.Valid {
		t.Errorf("result = %+v", res)
	}
}

func TestProvider_VerifyKey_Unhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewProvider(Config{URL: srv.URL})
	res, err := p.VerifyKey(context.Background(), "")
	if err != nil {
		t.Fatalf("VerifyKey: %v", err)
	}
	if res.Valid {
		t.Error("unhealthy server should fail verification")
	}
	if res.Reason == "" {
		t.Error("rejection should carry a reason")
	}
}

func TestProvider_VerifyKey_Unreachable(t *testing.T) {
	p := NewProvider(Config{URL: "http://127.0.0.1:1"})
	res, err := p.VerifyKey(context.Background(), "")
	if err != nil {
		t.Fatalf("VerifyKey: %v", err)
	}
	if res.Valid {
		t.Error("unreachable server should fail verification")
	}
}

func TestProvider_Transcribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/inference" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		file.Close()
		if header.Filename != "audio.ogg" {
			t.Errorf("filename = %q", header.Filename)
		}
		if got := header.Header.Get("Content-Type"); got != "audio/ogg; codecs=opus" {
			t.Errorf("part Content-Type = %q", got)
		}
		if got := r.FormValue("language"); got != "en" {
			t.Errorf("language = %q", got)
		}
		w.Write([]byte(`{"text":"hello from whisper"}`))
	}))
	defer srv.Close()

	p := NewProvider(Config{URL: srv.URL})
	resp, err := p.Transcribe(context.Background(), transcription.Request{
		Audio:    []byte("oggdata"),
		MIME:     "audio/ogg; codecs=opus",
		Language: "en",
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if resp.Text != "hello from whisper" {
		t.Errorf("Text = %q", resp.Text)
	}
}

func TestProvider_Transcribe_AutoLanguageOmitted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		if _, ok := r.MultipartForm.Value["language"]; ok {
			t.Error("language field must be omitted for auto")
		}
		w.Write([]byte(`{"text":"x"}`))
	}))
	defer srv.Close()

	p := NewProvider(Config{URL: srv.URL})
	if _, err := p.Transcribe(context.Background(), transcription.Request{
		Audio:    []byte("x"),
		Language: "auto",
	}); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
}

func TestProvider_Transcribe_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("model not loaded"))
	}))
	defer srv.Close()

	p := NewProvider(Config{URL: srv.URL})
	_, err := p.Transcribe(context.Background(), transcription.Request{Audio: []byte("x")})
	if errors.CodeOf(err) != errors.ErrCodeProvider {
		t.Errorf("code = %s, want %s", errors.CodeOf(err), errors.ErrCodeProvider)
	}
}

func TestProvider_Transcribe_Unreachable(t *testing.T) {
	p := NewProvider(Config{URL: "http://127.0.0.1:1"})
	_, err := p.Transcribe(context.Background(), transcription.Request{Audio: []byte("x")})
	if errors.CodeOf(err) != errors.ErrCodeNetwork {
		t.Errorf("code = %s, want %s", errors.CodeOf(err), errors.ErrCodeNetwork)
	}
}

func TestNewProvider_Defaults(t *testing.T) {
	p := NewProvider(Config{})
	if p.cfg.URL != "http://localhost:9000" {
		t.Errorf("URL = %q", p.cfg.URL)
	}
}
