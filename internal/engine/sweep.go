package engine

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Sweep removes stale engine work directories left behind by crashed
// runs. Called once at startup, before any instance starts.
func Sweep(workRoot string, logger *zap.Logger) {
	entries, err := os.ReadDir(workRoot)
	if err != nil {
		logger.Warn("Error reading engine work root", zap.String("work_root", workRoot), zap.Error(err))
		return
	}

	sweptCount := 0
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), workDirPrefix) {
			continue
		}

		path := filepath.Join(workRoot, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			logger.Error("Error removing stale work directory",
				zap.String("path", path),
				zap.Error(err))
		} else {
			sweptCount++
		}
	}

	if sweptCount > 0 {
		logger.Info("Swept stale engine work directories", zap.Int("swept_count", sweptCount))
	}
}
