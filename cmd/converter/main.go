package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/pdforge/word-pdf-converter/config"
	"github.com/pdforge/word-pdf-converter/internal/batch"
	"github.com/pdforge/word-pdf-converter/internal/engine"
	"github.com/pdforge/word-pdf-converter/internal/health"
	"github.com/pdforge/word-pdf-converter/internal/logger"
	"github.com/pdforge/word-pdf-converter/internal/metrics"
	"github.com/pdforge/word-pdf-converter/internal/naming"
	"github.com/pdforge/word-pdf-converter/internal/notify"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize logger
	log, err := logger.InitLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting Word to PDF batch converter",
		zap.Int("workers", cfg.WorkerCount),
		zap.String("naming_rule", cfg.NamingRule),
		zap.String("output_dir", cfg.OutputDir))

	// 3. Start monitoring servers
	var current atomic.Pointer[batch.Batch]
	snapshot := func() *batch.Snapshot {
		b := current.Load()
		if b == nil {
			return nil
		}
		s := b.Snapshot()
		return &s
	}
	health.StartHealthServer(cfg, snapshot, log)
	metrics.StartMetricsServer(cfg, log)

	// 4. Sweep stale engine state from crashed runs
	engine.Sweep(os.TempDir(), log)

	// 5. Collect inputs and build work items
	sources, err := collectInputs(cfg, os.Args[1:])
	if err != nil {
		log.Fatal("Error collecting input files", zap.Error(err))
	}
	if len(sources) == 0 {
		log.Fatal("No Word documents to convert; pass file paths as arguments or set INPUT_DIR")
	}

	rule := naming.Rule(cfg.NamingRule)
	items := make([]batch.Item, 0, len(sources))
	for _, source := range sources {
		stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
		items = append(items, batch.Item{
			Source: source,
			Base:   rule.Apply(stem),
		})
	}

	// 6. Initialize notifier (optional)
	notifier, err := notify.NewNotifier(cfg, log)
	if err != nil {
		log.Fatal("Error creating notifier", zap.Error(err))
	}

	// 7. Start the batch
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := engine.NewLibreOffice(cfg.EnginePath, os.TempDir(),
		time.Duration(cfg.EngineStartTimeoutSec)*time.Second, log)
	coordinator := batch.NewCoordinator(cfg, eng, log, nil)

	b, err := coordinator.Start(ctx, items)
	if err != nil {
		log.Fatal("Error starting batch", zap.Error(err))
	}
	current.Store(b)

	done := make(chan batch.Summary, 1)
	go func() {
		done <- b.Wait()
	}()

	// Wait for completion or interrupt
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var summary batch.Summary
	select {
	case summary = <-done:
	case sig := <-sigChan:
		log.Info("Received shutdown signal - waiting for in-flight conversions, refusing new ones",
			zap.String("signal", sig.String()))
		b.RequestStop()

		select {
		case summary = <-done:
			log.Info("All workers stopped gracefully")
		case <-sigChan:
			log.Warn("Forced shutdown - in-flight conversions abandoned")
			cancel()
			summary = <-done
		}
	}

	logSummary(log, summary)
	notifier.SendSummary(summary)

	if summary.Failed > 0 {
		os.Exit(1)
	}
}

// collectInputs returns the source documents: explicit file arguments
// when given, otherwise a scan of INPUT_DIR. Owner files left behind by
// Word ("~$...") are skipped.
func collectInputs(cfg *config.Config, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if cfg.InputDir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}

	var sources []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "~$") {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".doc", ".docx":
			sources = append(sources, filepath.Join(cfg.InputDir, entry.Name()))
		}
	}
	return sources, nil
}

func logSummary(log *zap.Logger, s batch.Summary) {
	log.Info("Batch finished",
		zap.Duration("duration", s.Duration),
		zap.Int("total", s.Total),
		zap.Int("converted", s.Converted),
		zap.Int("renamed", s.Renamed),
		zap.Int("failed", s.Failed),
		zap.Int("not_processed", s.NotProcessed))

	for _, o := range s.Items {
		if o.Status == batch.StatusFailed {
			log.Warn("Item failed",
				zap.String("source", o.Source),
				zap.String("reason", o.Reason))
		}
	}
}
