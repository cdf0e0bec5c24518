package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEngineUnavailable means the engine could not be started at all.
	// The worker that hit it exits; other workers absorb its share of the
	// queue.
	ErrEngineUnavailable = errors.New("conversion engine unavailable")

	// ErrSourceLocked means the input document is open or locked by
	// another application. Item-level and recoverable.
	ErrSourceLocked = errors.New("source document locked by another process")

	// ErrTimeout means the engine accepted the call but did not return
	// within the bounded interval. The instance may be hung and must be
	// discarded.
	ErrTimeout = errors.New("conversion engine timed out")
)

// ConversionError is a generic engine-reported failure for one document.
type ConversionError struct {
	Source string
	Output string
}

func (e *ConversionError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("engine failed to convert %s", e.Source)
	}
	return fmt.Sprintf("engine failed to convert %s: %s", e.Source, e.Output)
}

// trimOutput reduces engine output to its last line for error reporting.
func trimOutput(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
