package metrics

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pdforge/word-pdf-converter/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	itemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "converter_items_total",
			Help: "Conversion outcomes by status",
		},
		[]string{"status"},
	)

	conversionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "converter_conversion_duration_seconds",
			Help:    "Time the engine spent converting one document",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	workersActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "converter_workers_active",
			Help: "Number of conversion workers currently running",
		},
	)

	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "converter_queue_depth",
			Help: "Number of items waiting in the batch queue",
		},
	)

	engineRestarts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "converter_engine_restarts_total",
			Help: "Engine instances discarded after a timeout",
		},
	)
)

func init() {
	prometheus.MustRegister(itemsTotal)
	prometheus.MustRegister(conversionDuration)
	prometheus.MustRegister(workersActive)
	prometheus.MustRegister(queueDepth)
	prometheus.MustRegister(engineRestarts)
}

func ItemFinished(status string) {
	itemsTotal.WithLabelValues(strings.ToLower(status)).Inc()
}

func ObserveConversion(d time.Duration) {
	conversionDuration.Observe(d.Seconds())
}

func WorkerStarted() { workersActive.Inc() }
func WorkerStopped() { workersActive.Dec() }

func SetQueueDepth(n int) {
	queueDepth.Set(float64(n))
}

func EngineRestarted() { engineRestarts.Inc() }

// StartMetricsServer starts the Prometheus metrics HTTP server. Disabled
// when no port is configured.
func StartMetricsServer(cfg *config.Config, logger *zap.Logger) {
	if cfg.MetricsPort == 0 {
		return
	}

	// Create a new HTTP mux for metrics to avoid conflicts
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.MetricsPort)
	logger.Info("Starting metrics server", zap.String("addr", addr))

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("Metrics server error", zap.Error(err))
		}
	}()
}
