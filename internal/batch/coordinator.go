package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pdforge/word-pdf-converter/config"
	"github.com/pdforge/word-pdf-converter/internal/engine"
	"github.com/pdforge/word-pdf-converter/internal/metrics"
	"github.com/pdforge/word-pdf-converter/internal/naming"
	"go.uber.org/zap"
)

// ErrOutputDirUnavailable means the output directory could not be
// created or listed. Fatal for the whole batch, surfaced from Start
// before any worker launches.
var ErrOutputDirUnavailable = errors.New("output directory unavailable")

// ProgressFunc receives one human-readable line per finished item. It is
// called from worker goroutines while holding no batch lock.
type ProgressFunc func(line string)

// Coordinator owns the shared work queue, the filename registry, the
// worker pool, the stop flag, and the results for one batch at a time.
type Coordinator struct {
	cfg      *config.Config
	eng      engine.Engine
	logger   *zap.Logger
	progress ProgressFunc
}

// NewCoordinator creates a coordinator. progress may be nil.
func NewCoordinator(cfg *config.Config, eng engine.Engine, logger *zap.Logger, progress ProgressFunc) *Coordinator {
	return &Coordinator{
		cfg:      cfg,
		eng:      eng,
		logger:   logger,
		progress: progress,
	}
}

// Start validates the output directory, seeds the claimed-name registry
// from its contents, and launches the worker pool. The returned Batch
// handle is live until Wait returns.
func (c *Coordinator) Start(ctx context.Context, items []Item) (*Batch, error) {
	if err := os.MkdirAll(c.cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutputDirUnavailable, err)
	}

	registry := naming.NewRegistry(c.cfg.OutputDir, ".pdf", c.cfg.MaxPathLength)
	if err := registry.Seed(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutputDirUnavailable, err)
	}

	b := &Batch{
		total:   len(items),
		queue:   append([]Item(nil), items...),
		started: time.Now(),
	}
	b.cond = sync.NewCond(&b.mu)
	metrics.SetQueueDepth(len(items))

	for i := 1; i <= c.cfg.WorkerCount; i++ {
		workerID := fmt.Sprintf("convert_worker_%d", i)
		w := &worker{
			id:       workerID,
			cfg:      c.cfg,
			eng:      c.eng,
			registry: registry,
			batch:    b,
			logger:   c.logger.With(zap.String("worker", workerID)),
			progress: c.progress,
		}

		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			w.run(ctx)
		}()
	}

	c.logger.Info("Batch started",
		zap.Int("items", len(items)),
		zap.Int("workers", c.cfg.WorkerCount),
		zap.String("output_dir", c.cfg.OutputDir))

	return b, nil
}

// Batch is the live state of one running batch. All mutation goes
// through its synchronized methods; workers never touch the fields
// directly.
type Batch struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []Item
	results []Outcome
	active  int
	total   int
	started time.Time
	stopped atomic.Bool
	wg      sync.WaitGroup
}

// RequestStop asks the batch to refuse new work. Items already being
// converted run to completion. Level-triggered and idempotent: calling
// it repeatedly, or after the batch finished, has no further effect.
func (b *Batch) RequestStop() {
	b.mu.Lock()
	b.stopped.Store(true)
	b.cond.Broadcast()
	b.mu.Unlock()
}

// Wait blocks until every worker has exited and returns the final
// summary. Every submitted item lands in exactly one bucket.
func (b *Batch) Wait() Summary {
	b.wg.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()

	// The batch is terminal: items refused by a stop are accounted as
	// not processed, nothing is queued anymore.
	b.queue = nil
	metrics.SetQueueDepth(0)

	s := Summary{
		Total:    b.total,
		Duration: time.Since(b.started),
		Items:    append([]Outcome(nil), b.results...),
	}
	for _, o := range b.results {
		switch o.Status {
		case StatusConverted:
			s.Converted++
		case StatusRenamed:
			s.Renamed++
		case StatusFailed:
			s.Failed++
		}
	}
	s.NotProcessed = s.Total - len(b.results)
	return s
}

// Snapshot returns current progress for monitoring.
func (b *Batch) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := Snapshot{
		Total:    b.total,
		Queued:   len(b.queue),
		Active:   b.active,
		Stopping: b.stopped.Load(),
	}
	for _, o := range b.results {
		switch o.Status {
		case StatusConverted:
			snap.Converted++
		case StatusRenamed:
			snap.Renamed++
		case StatusFailed:
			snap.Failed++
		}
	}
	return snap
}

// next atomically dequeues the next item. It returns false when a stop
// has been requested, or when the queue is drained and no in-flight item
// can be requeued anymore; either way the calling worker exits. While
// another worker holds a dequeued item, an empty queue is not final: a
// failed engine start would put that item back.
func (b *Batch) next() (Item, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for {
		if b.stopped.Load() {
			return Item{}, false
		}
		if len(b.queue) > 0 {
			item := b.queue[0]
			b.queue = b.queue[1:]
			b.active++
			metrics.SetQueueDepth(len(b.queue))
			return item, true
		}
		if b.active == 0 {
			return Item{}, false
		}
		b.cond.Wait()
	}
}

// requeue returns a dequeued item to the queue so another worker can
// absorb it. Used when a worker's engine fails to start after the item
// was already claimed.
func (b *Batch) requeue(item Item) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.queue = append(b.queue, item)
	b.active--
	metrics.SetQueueDepth(len(b.queue))
	b.cond.Broadcast()
}

// record appends an outcome and returns the number of outcomes so far.
// Called before the worker claims its next item, so result order
// reflects completion order.
func (b *Batch) record(o Outcome) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.results = append(b.results, o)
	b.active--
	b.cond.Broadcast()
	return len(b.results)
}
