package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeInvalidRequest, "bad payload", http.StatusBadRequest)
	if err.Code != ErrCodeInvalidRequest {
		t.Errorf("expected code %s, got %s", ErrCodeInvalidRequest, err.Code)
	}
	if err.Message != "bad payload" {
		t.Errorf("expected message 'bad payload', got %q", err.Message)
	}
	if err.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("INVALID_REQUEST should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeNetwork, "connection refused", http.StatusServiceUnavailable)
	if !err.Retryable {
		t.Error("NETWORK_ERROR should be retryable")
	}
}

func TestAppError_Configuration(t *testing.T) {
	err := Configuration("OpenAI API key")
	if err.Code != ErrCodeConfiguration {
		t.Errorf("expected CONFIGURATION_ERROR, got %s", err.Code)
	}
	if !strings.Contains(err.UserMessage, "extension settings") {
		t.Errorf("expected user message to direct to settings, got %q", err.UserMessage)
	}
	if err.Retryable {
		t.Error("Configuration should not be retryable")
	}
	if err.Details["missing"] != "OpenAI API key" {
		t.Errorf("expected missing=OpenAI API key, got %v", err.Details["missing"])
	}
}

func TestAppError_Authentication(t *testing.T) {
	err := Authentication("openai")
	if err.Code != ErrCodeAuthentication {
		t.Errorf("expected AUTHENTICATION_ERROR, got %s", err.Code)
	}
	if err.HTTPStatus != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("Authentication should not be retryable")
	}
}

func TestAppError_QuotaExceeded(t *testing.T) {
	err := QuotaExceeded("OpenAI")
	if err.Code != ErrCodeQuotaExceeded {
		t.Errorf("expected QUOTA_EXCEEDED, got %s", err.Code)
	}
	if !strings.Contains(err.UserMessage, "billing") {
		t.Errorf("expected billing guidance, got %q", err.UserMessage)
	}
}

func TestAppError_Network_WrapsCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := Network("anthropic", cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if !err.Retryable {
		t.Error("Network should be retryable")
	}
}

func TestAppError_MalformedResponse(t *testing.T) {
	err := MalformedResponse("ollama")
	if err.Code != ErrCodeMalformedResponse {
		t.Errorf("expected MALFORMED_RESPONSE, got %s", err.Code)
	}
	if err.Retryable {
		t.Error("MalformedResponse should not be retryable")
	}
}

func TestAppError_Error_IncludesCause(t *testing.T) {
	err := Internal(fmt.Errorf("boom"))
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestAppError_WithDetail(t *testing.T) {
	err := InvalidRequest("").WithDetail("status", 400)
	if err.Details["status"] != 400 {
		t.Errorf("expected status detail, got %v", err.Details["status"])
	}
	if err.Message != "Invalid request to the API" {
		t.Errorf("expected default message, got %q", err.Message)
	}
}

func TestAsAppError(t *testing.T) {
	var err error = fmt.Errorf("wrap: %w", Authentication("openai"))
	appErr, ok := AsAppError(err)
	if !ok {
		t.Fatal("expected AsAppError to succeed through wrapping")
	}
	if appErr.Code != ErrCodeAuthentication {
		t.Errorf("expected AUTHENTICATION_ERROR, got %s", appErr.Code)
	}
	if IsAppError(stderrors.New("plain")) {
		t.Error("plain error should not be an AppError")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(QuotaExceeded("OpenAI")); got != ErrCodeQuotaExceeded {
		t.Errorf("expected QUOTA_EXCEEDED, got %s", got)
	}
	if got := CodeOf(stderrors.New("plain")); got != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR for plain error, got %s", got)
	}
}

func TestToResponse(t *testing.T) {
	resp := Authentication("openai").ToResponse()
	if resp.Error.Code != ErrCodeAuthentication {
		t.Errorf("expected AUTHENTICATION_ERROR, got %s", resp.Error.Code)
	}
	if resp.Error.UserMessage == "" {
		t.Error("expected user message to survive conversion")
	}
}
