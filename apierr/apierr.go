// Package apierr translates upstream provider error bodies into the
// application error taxonomy. OpenAI and Anthropic both wrap errors in
// an {"error": {...}} envelope with a type field; the mapping from type
// to category differs per provider.
package apierr

import (
	"encoding/json"
	"strings"

	"github.com/notewire/notewire/errors"
)

type errorEnvelope struct {
	Error *errorBody `json:"error"`
}

type errorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ParseOpenAI maps an OpenAI error body to an AppError.
// authentication_error, insufficient_quota, and invalid_request_error map
// to their categories; anything else becomes a generic provider error
// carrying fallback as the message when the body has none.
func ParseOpenAI(body []byte, fallback string) *errors.AppError {
	env := decode(body)
	if env == nil || env.Error == nil {
		return errors.Provider("openai", fallback)
	}
	switch env.Error.Type {
	case "authentication_error":
		return errors.Authentication("openai")
	case "insufficient_quota":
		return errors.QuotaExceeded("openai")
	case "invalid_request_error":
		msg := env.Error.Message
		if msg == "" {
			msg = fallback
		}
		return errors.InvalidRequest(msg)
	default:
		msg := env.Error.Message
		if msg == "" {
			msg = fallback
		}
		return errors.Provider("openai", msg)
	}
}

// ParseClaude maps an Anthropic error body to an AppError. Anthropic
// types are matched by substring: authentication/unauthorized and
// quota/rate_limit families.
func ParseClaude(body []byte, fallback string) *errors.AppError {
	env := decode(body)
	if env == nil || env.Error == nil {
		return errors.Provider("claude", fallback)
	}
	errType := env.Error.Type
	switch {
	case strings.Contains(errType, "authentication"), strings.Contains(errType, "unauthorized"):
		return errors.Authentication("claude")
	case strings.Contains(errType, "quota"), strings.Contains(errType, "rate_limit"):
		return errors.QuotaExceeded("claude")
	default:
		msg := env.Error.Message
		if msg == "" {
			msg = fallback
		}
		return errors.Provider("claude", msg)
	}
}

func decode(body []byte) *errorEnvelope {
	if len(body) == 0 {
		return nil
	}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil
	}
	return &env
}
