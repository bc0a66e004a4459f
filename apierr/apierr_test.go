package apierr

import (
	"testing"

	"github.com/notewire/notewire/errors"
)

func TestParseOpenAI(t *testing.T) {
	tests := []struct {
		name string
		body string
		want errors.ErrorCode
	}{
		{
			name: "authentication error",
			body: `{"error":{"type":"authentication_error","message":"Incorrect API key"}}`,
			want: errors.ErrCodeAuthentication,
		},
		{
			name: "quota exhausted",
			body: `{"error":{"type":"insufficient_quota","message":"You exceeded your current quota"}}`,
			want: errors.ErrCodeQuotaExceeded,
		},
		{
			name: "invalid request",
			body: `{"error":{"type":"invalid_request_error","message":"Unsupported file format"}}`,
			want: errors.ErrCodeInvalidRequest,
		},
		{
			name: "unknown type",
			body: `{"error":{"type":"server_error","message":"upstream busy"}}`,
			want: errors.ErrCodeProvider,
		},
		{
			name: "non-JSON body",
			body: "Bad Gateway",
			want: errors.ErrCodeProvider,
		},
		{
			name: "empty body",
			body: "",
			want: errors.ErrCodeProvider,
		},
	}
	for _, tt := range tests {
		got := ParseOpenAI([]byte(tt.body), "request failed")
		if got.Code != tt.want {
			t.Errorf("%s: code = %s, want %s", tt.name, got.Code, tt.want)
		}
	}
}

func TestParseOpenAI_FallbackMessage(t *testing.T) {
	e := ParseOpenAI([]byte("not json"), "transcription failed")
	if e.Message != "transcription failed" {
		t.Errorf("Message = %q, want fallback", e.Message)
	}
}

func TestParseClaude(t *testing.T) {
	tests := []struct {
		name string
		body string
		want errors.ErrorCode
	}{
		{
			name: "authentication",
			body: `{"error":{"type":"authentication_error","message":"invalid x-api-key"}}`,
			want: errors.ErrCodeAuthentication,
		},
		{
			name: "unauthorized variant",
			body: `{"error":{"type":"unauthorized","message":"nope"}}`,
			want: errors.ErrCodeAuthentication,
		},
		{
			name: "rate limit",
			body: `{"error":{"type":"rate_limit_error","message":"Too many requests"}}`,
			want: errors.ErrCodeQuotaExceeded,
		},
		{
			name: "quota variant",
			body: `{"error":{"type":"quota_exceeded","message":"no credits"}}`,
			want: errors.ErrCodeQuotaExceeded,
		},
		{
			name: "other",
			body: `{"error":{"type":"overloaded_error","message":"busy"}}`,
			want: errors.ErrCodeProvider,
		},
	}
	for _, tt := range tests {
		got := ParseClaude([]byte(tt.body), "request failed")
		if got.Code != tt.want {
			t.Errorf("%s: code = %s, want %s", tt.name, got.Code, tt.want)
		}
	}
}

func TestParse_UserMessagePresent(t *testing.T) {
	e := ParseOpenAI([]byte(`{"error":{"type":"insufficient_quota"}}`), "x")
	if e.UserMessage == "" {
		t.Error("quota errors must carry a user-facing message")
	}
}
