// Package llm abstracts the generation backend behind a single Provider
// interface with a uniform authentication-failure signal.
package llm

import (
	"context"
	"errors"
)

// ErrAuth indicates the backend rejected our credentials. It is fatal for
// the call: callers must surface it rather than retry.
var ErrAuth = errors.New("llm: authentication failed")

// Provider defines the interface for generation backends.
type Provider interface {
	// Complete sends a completion request and returns the response.
	// Credential failures are reported as errors wrapping ErrAuth.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}
