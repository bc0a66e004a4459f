package processing

import (
	"context"

	"github.com/notewire/notewire/provider"
)

// Provider is the interface that processing backends must implement.
type Provider interface {
	provider.Provider
	provider.Verifier

	// Process runs the transcript through the model and returns the
	// four-part result.
	Process(ctx context.Context, req Request) (*Result, error)
}

// NewRegistry creates a new provider registry for processing providers.
func NewRegistry() *provider.Registry[Provider] {
	return provider.NewRegistry[Provider]()
}
