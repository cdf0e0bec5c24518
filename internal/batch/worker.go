package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/pdforge/word-pdf-converter/config"
	"github.com/pdforge/word-pdf-converter/internal/engine"
	"github.com/pdforge/word-pdf-converter/internal/metrics"
	"github.com/pdforge/word-pdf-converter/internal/naming"
	"go.uber.org/zap"
)

type worker struct {
	id       string
	cfg      *config.Config
	eng      engine.Engine
	registry *naming.Registry
	batch    *Batch
	logger   *zap.Logger
	progress ProgressFunc
}

// run is the worker loop: claim an item, resolve its output name under
// the registry lock, convert it outside any lock, record the outcome,
// repeat. The engine instance is started lazily on the first claimed
// item and released exactly once on exit.
func (w *worker) run(ctx context.Context) {
	w.logger.Info("Convert worker started")
	metrics.WorkerStarted()
	defer metrics.WorkerStopped()

	var inst engine.Instance
	defer func() {
		if inst != nil {
			inst.Stop()
			w.logger.Info("Engine instance released")
		}
	}()

	for {
		item, ok := w.batch.next()
		if !ok {
			w.logger.Info("Convert worker exiting")
			return
		}

		if inst == nil {
			var err error
			inst, err = w.eng.Start(ctx)
			if err != nil {
				// Another worker absorbs the claimed item; this one is done.
				w.logger.Error("Engine failed to start, requeueing item",
					zap.String("source", item.Source),
					zap.Error(err))
				w.batch.requeue(item)
				return
			}
		}

		inst = w.convertOne(ctx, inst, item)
	}
}

// convertOne processes a single item and returns the instance to use for
// the next one: nil after a timeout, so a possibly hung engine is not
// reused and a fresh one is started lazily.
func (w *worker) convertOne(ctx context.Context, inst engine.Instance, item Item) engine.Instance {
	target, renamed, err := w.registry.Resolve(item.Base)
	if err != nil {
		w.report(Outcome{
			Source: item.Source,
			Status: StatusFailed,
			Reason: err.Error(),
		})
		return inst
	}

	convertCtx, cancel := context.WithTimeout(ctx, time.Duration(w.cfg.ConvertTimeoutSec)*time.Second)
	start := time.Now()
	err = inst.Convert(convertCtx, item.Source, target)
	cancel()
	metrics.ObserveConversion(time.Since(start))

	switch {
	case err == nil:
		outcome := Outcome{Source: item.Source, Target: target, Status: StatusConverted}
		if renamed {
			outcome.Status = StatusRenamed
			outcome.Requested = filepath.Join(w.cfg.OutputDir, item.Base+".pdf")
		}
		w.report(outcome)
	case errors.Is(err, engine.ErrTimeout):
		w.report(Outcome{
			Source: item.Source,
			Target: target,
			Status: StatusFailed,
			Reason: err.Error(),
		})
		// A hung engine would silently fail every later item too.
		inst.Stop()
		inst = nil
		metrics.EngineRestarted()
		w.logger.Warn("Engine instance discarded after timeout, a fresh one starts with the next item")
	default:
		w.report(Outcome{
			Source: item.Source,
			Target: target,
			Status: StatusFailed,
			Reason: err.Error(),
		})
	}

	return inst
}

// report records the outcome, updates metrics, and emits the progress
// line. Recording happens before the worker claims its next item.
func (w *worker) report(o Outcome) {
	done := w.batch.record(o)
	metrics.ItemFinished(string(o.Status))

	switch o.Status {
	case StatusFailed:
		w.logger.Error("Conversion failed",
			zap.String("source", o.Source),
			zap.String("reason", o.Reason))
	case StatusRenamed:
		w.logger.Info("Converted with rename",
			zap.String("source", o.Source),
			zap.String("target", o.Target),
			zap.String("requested", o.Requested))
	default:
		w.logger.Info("Converted",
			zap.String("source", o.Source),
			zap.String("target", o.Target))
	}

	if w.progress != nil {
		w.progress(progressLine(done, w.batch.total, o))
	}
}

func progressLine(done, total int, o Outcome) string {
	prefix := fmt.Sprintf("[%d/%d]", done, total)
	switch o.Status {
	case StatusFailed:
		return fmt.Sprintf("%s FAILED %s: %s", prefix, filepath.Base(o.Source), o.Reason)
	case StatusRenamed:
		return fmt.Sprintf("%s OK %s -> %s (renamed)", prefix, filepath.Base(o.Source), filepath.Base(o.Target))
	default:
		return fmt.Sprintf("%s OK %s -> %s", prefix, filepath.Base(o.Source), filepath.Base(o.Target))
	}
}
