package health

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pdforge/word-pdf-converter/config"
	"github.com/pdforge/word-pdf-converter/internal/batch"
	"go.uber.org/zap"
)

type HealthResponse struct {
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp"`
	Batch     *batch.Snapshot `json:"batch,omitempty"`
}

// StartHealthServer starts the health check HTTP server. snapshot
// returns the current batch progress, or nil while no batch is running.
// Disabled when no port is configured.
func StartHealthServer(cfg *config.Config, snapshot func() *batch.Snapshot, logger *zap.Logger) {
	if cfg.HealthPort == 0 {
		return
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		health := HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().Format(time.RFC3339),
			Batch:     snapshot(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(health)
	})

	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		// Readiness check - is a batch accepting progress queries?
		if snapshot() == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("no batch running"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})

	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		// Liveness check - is the process alive?
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("alive"))
	})

	addr := fmt.Sprintf(":%d", cfg.HealthPort)
	logger.Info("Starting health check server", zap.String("addr", addr))

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("Health server error", zap.Error(err))
		}
	}()
}
