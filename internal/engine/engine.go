// Package engine wraps the external document conversion engine. The
// engine is stateful and converts one document at a time, so each worker
// owns exactly one Instance and instances are never shared across
// goroutines.
package engine

import "context"

// Engine starts isolated conversion engine instances.
type Engine interface {
	// Start launches a new engine instance. Failures are reported as
	// ErrEngineUnavailable: fatal for the caller's worker, not the batch.
	Start(ctx context.Context) (Instance, error)
}

// Instance is one running engine, exclusively owned by one worker for
// its lifetime. Convert blocks for the engine's full processing duration.
type Instance interface {
	// Convert opens source, exports it as PDF at target, and closes it.
	// The context bounds the engine call; a deadline hit maps to
	// ErrTimeout, after which the instance must be discarded.
	Convert(ctx context.Context, source, target string) error

	// Stop releases the instance and its working state. Idempotent.
	Stop()
}
