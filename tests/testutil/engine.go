// Package testutil provides a controllable fake conversion engine for
// batch and integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/pdforge/word-pdf-converter/internal/engine"
)

// FakeEngine implements engine.Engine with scriptable behavior.
// Configure the exported fields before the batch starts; the zero value
// is an engine whose conversions always succeed instantly.
type FakeEngine struct {
	// StartErr, when set, makes every Start call fail with it.
	StartErr error

	// MaxStarts, when positive, caps how many instances may start
	// successfully; later Start calls fail with ErrEngineUnavailable.
	MaxStarts int

	// FailSources maps a source path to the error its conversion returns.
	FailSources map[string]error

	// WriteOutput makes successful conversions create the target file.
	WriteOutput bool

	// Entered, when non-nil, receives each source path as its conversion
	// begins.
	Entered chan string

	// Release, when non-nil, blocks each conversion until a value is sent.
	Release chan struct{}

	mu        sync.Mutex
	starts    int
	stops     int
	converted []string
}

func (f *FakeEngine) Start(ctx context.Context) (engine.Instance, error) {
	if f.StartErr != nil {
		return nil, f.StartErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.MaxStarts > 0 && f.starts >= f.MaxStarts {
		return nil, fmt.Errorf("%w: fake start limit reached", engine.ErrEngineUnavailable)
	}
	f.starts++
	return &fakeInstance{eng: f}, nil
}

// Starts returns how many instances started successfully.
func (f *FakeEngine) Starts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}

// Stops returns how many instances were stopped.
func (f *FakeEngine) Stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

// Converted returns the source paths converted successfully, in
// completion order.
func (f *FakeEngine) Converted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.converted...)
}

type fakeInstance struct {
	eng *FakeEngine
}

func (in *fakeInstance) Convert(ctx context.Context, source, target string) error {
	f := in.eng

	if f.Entered != nil {
		f.Entered <- source
	}
	if f.Release != nil {
		select {
		case <-f.Release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err, ok := f.FailSources[source]; ok {
		return err
	}

	if f.WriteOutput {
		if err := os.WriteFile(target, []byte("%PDF-1.4\nfake\n"), 0644); err != nil {
			return err
		}
	}

	f.mu.Lock()
	f.converted = append(f.converted, source)
	f.mu.Unlock()
	return nil
}

func (in *fakeInstance) Stop() {
	f := in.eng
	f.mu.Lock()
	f.stops++
	f.mu.Unlock()
}
