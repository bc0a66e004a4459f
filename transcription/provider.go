package transcription

import (
	"context"

	"github.com/notewire/notewire/provider"
)

// Provider is the interface that transcription backends must implement.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()
	provider.Verifier // credential verification before storing a key

	// Transcribe sends audio for transcription and returns the result.
	Transcribe(ctx context.Context, req Request) (*Response, error)
}
