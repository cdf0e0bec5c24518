package config

import (
	"os"
	"strings"
	"testing"
)

func TestParseChatIDs(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []int64
	}{
		{"Single ID", "123456789", []int64{123456789}},
		{"Multiple IDs", "123456789,987654321", []int64{123456789, 987654321}},
		{"IDs with spaces", "123456789, 987654321, 555555555", []int64{123456789, 987654321, 555555555}},
		{"Empty string", "", nil},
		{"Invalid ID", "abc,123", []int64{123}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChatIDs(tt.input)
			if len(result) != len(tt.expected) {
				t.Errorf("parseChatIDs(%q) returned %d IDs, expected %d", tt.input, len(result), len(tt.expected))
				return
			}
			for i, id := range result {
				if id != tt.expected[i] {
					t.Errorf("parseChatIDs(%q)[%d] = %d, expected %d", tt.input, i, id, tt.expected[i])
				}
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name         string
		envKey       string
		envValue     string
		defaultValue int
		expected     int
	}{
		{"Valid int", "TEST_INT", "42", 10, 42},
		{"Empty env", "TEST_INT_EMPTY", "", 10, 10},
		{"Invalid int", "TEST_INT_INVALID", "abc", 10, 10},
		{"Negative int", "TEST_INT_NEG", "-5", 10, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.envKey, tt.envValue)
				defer os.Unsetenv(tt.envKey)
			}

			result := getEnvInt(tt.envKey, tt.defaultValue)
			if result != tt.expected {
				t.Errorf("getEnvInt(%q, %d) = %d, expected %d", tt.envKey, tt.defaultValue, result, tt.expected)
			}
		})
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name          string
		env           map[string]string
		expectError   bool
		errorContains string
	}{
		{
			"Valid config",
			map[string]string{"OUTPUT_DIR": "/tmp/out"},
			false, "",
		},
		{
			"Missing output dir",
			map[string]string{},
			true, "OUTPUT_DIR is required",
		},
		{
			"Zero workers",
			map[string]string{"OUTPUT_DIR": "/tmp/out", "WORKER_COUNT": "0"},
			true, "WORKER_COUNT must be at least 1",
		},
		{
			"Unknown naming rule",
			map[string]string{"OUTPUT_DIR": "/tmp/out", "NAMING_RULE": "camel-case"},
			true, "NAMING_RULE must be",
		},
		{
			"Token without chat IDs",
			map[string]string{"OUTPUT_DIR": "/tmp/out", "TELEGRAM_BOT_TOKEN": "test_token"},
			true, "NOTIFY_CHAT_IDS is required",
		},
		{
			"Token with chat IDs",
			map[string]string{"OUTPUT_DIR": "/tmp/out", "TELEGRAM_BOT_TOKEN": "test_token", "NOTIFY_CHAT_IDS": "123"},
			false, "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				os.Setenv(key, value)
			}
			defer func() {
				for key := range tt.env {
					os.Unsetenv(key)
				}
			}()

			cfg, err := LoadConfig()

			if tt.expectError {
				if err == nil {
					t.Errorf("LoadConfig() expected error containing %q, got nil", tt.errorContains)
				} else if !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("LoadConfig() error = %q, expected to contain %q", err.Error(), tt.errorContains)
				}
			} else {
				if err != nil {
					t.Errorf("LoadConfig() unexpected error: %v", err)
				}
				if cfg == nil {
					t.Error("LoadConfig() returned nil config")
				}
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	os.Setenv("OUTPUT_DIR", "/tmp/out")
	defer os.Unsetenv("OUTPUT_DIR")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() unexpected error: %v", err)
	}

	if cfg.WorkerCount != 4 {
		t.Errorf("WorkerCount = %d, expected default 4", cfg.WorkerCount)
	}
	if cfg.NamingRule != NamingRuleStripBrackets {
		t.Errorf("NamingRule = %q, expected default %q", cfg.NamingRule, NamingRuleStripBrackets)
	}
	if cfg.MaxPathLength != 255 {
		t.Errorf("MaxPathLength = %d, expected default 255", cfg.MaxPathLength)
	}
	if cfg.EnginePath != "soffice" {
		t.Errorf("EnginePath = %q, expected default %q", cfg.EnginePath, "soffice")
	}
	if cfg.ConvertTimeoutSec != 120 {
		t.Errorf("ConvertTimeoutSec = %d, expected default 120", cfg.ConvertTimeoutSec)
	}
}
