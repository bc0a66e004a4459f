package provider

import "context"

// VerifyResult reports the outcome of a credential check against a
// provider's live endpoint.
type VerifyResult struct {
	// Valid is true when the credential was accepted.
	Valid bool `json:"valid"`
	// Reason explains a rejection in user-facing terms. Empty when valid.
	Reason string `json:"reason,omitempty"`
}

// Verifier is implemented by providers that can validate a credential
// before it is stored. Providers without credentials (local endpoints)
// report reachability instead.
type Verifier interface {
	VerifyKey(ctx context.Context, key string) (*VerifyResult, error)
}

// Valid returns a passing verification result.
func Valid() *VerifyResult {
	return &VerifyResult{Valid: true}
}

// Invalid returns a failing verification result with a reason.
func Invalid(reason string) *VerifyResult {
	return &VerifyResult{Valid: false, Reason: reason}
}
