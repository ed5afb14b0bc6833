package domain

import "context"

// CompletionClient defines how the core talks to the remote language model.
type CompletionClient interface {
	// Complete sends the ordered transcript and returns the assistant's
	// reply text. Upstream failures propagate as errors; no retry.
	Complete(ctx context.Context, transcript []Message) (string, error)
}

// RateProvider supplies the live exchange rates the preamble is built from.
type RateProvider interface {
	// LatestRates returns instrument identifier → current rate. Failures are
	// reported as errors; the caller decides whether they abort anything.
	LatestRates(ctx context.Context) (map[string]float64, error)
}

// RegistryStore is the process-wide conversation cache: user identity →
// that user's session registry.
type RegistryStore interface {
	// GetOrCreate returns the registry for userID, creating a default one
	// (with its initial session active) on first contact. Never fails.
	GetOrCreate(userID UserID) *Registry

	// Len reports how many users currently have a registry.
	Len() int
}
