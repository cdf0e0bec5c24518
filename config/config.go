package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Conversion
	OutputDir     string
	InputDir      string
	NamingRule    string
	WorkerCount   int
	MaxPathLength int

	// Engine
	EnginePath            string
	EngineStartTimeoutSec int
	ConvertTimeoutSec     int

	// Logging
	LogLevel  string
	LogFormat string
	LogFile   string

	// Monitoring
	MetricsPort int
	HealthPort  int

	// Notifications (optional)
	TelegramBotToken string
	NotifyChatIDs    []int64
}

// Naming rule values accepted in NAMING_RULE.
const (
	NamingRuleOriginal      = "original"
	NamingRuleStripBrackets = "strip-brackets"
)

func LoadConfig() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{}

	// Parse conversion config
	cfg.OutputDir = getEnv("OUTPUT_DIR", "")
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("OUTPUT_DIR is required")
	}
	cfg.InputDir = getEnv("INPUT_DIR", "")
	cfg.NamingRule = getEnv("NAMING_RULE", NamingRuleStripBrackets)
	cfg.WorkerCount = getEnvInt("WORKER_COUNT", 4)
	cfg.MaxPathLength = getEnvInt("MAX_PATH_LENGTH", 255)

	if cfg.NamingRule != NamingRuleOriginal && cfg.NamingRule != NamingRuleStripBrackets {
		return nil, fmt.Errorf("NAMING_RULE must be %q or %q, got %q",
			NamingRuleOriginal, NamingRuleStripBrackets, cfg.NamingRule)
	}
	if cfg.WorkerCount < 1 {
		return nil, fmt.Errorf("WORKER_COUNT must be at least 1")
	}
	if cfg.MaxPathLength < 1 {
		return nil, fmt.Errorf("MAX_PATH_LENGTH must be positive")
	}

	// Parse engine config
	cfg.EnginePath = getEnv("ENGINE_PATH", "soffice")
	cfg.EngineStartTimeoutSec = getEnvInt("ENGINE_START_TIMEOUT_SEC", 30)
	cfg.ConvertTimeoutSec = getEnvInt("CONVERT_TIMEOUT_SEC", 120)

	// Parse logging config
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "console")
	cfg.LogFile = getEnv("LOG_FILE", "")

	// Parse monitoring config (0 disables the server)
	cfg.MetricsPort = getEnvInt("METRICS_PORT", 0)
	cfg.HealthPort = getEnvInt("HEALTH_PORT", 0)

	// Parse notification config
	cfg.TelegramBotToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	cfg.NotifyChatIDs = parseChatIDs(getEnv("NOTIFY_CHAT_IDS", ""))
	if cfg.TelegramBotToken != "" && len(cfg.NotifyChatIDs) == 0 {
		return nil, fmt.Errorf("NOTIFY_CHAT_IDS is required when TELEGRAM_BOT_TOKEN is set")
	}

	return cfg, nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func parseChatIDs(input string) []int64 {
	if strings.TrimSpace(input) == "" {
		return nil
	}

	parts := strings.Split(input, ",")
	ids := make([]int64, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}

	return ids
}
