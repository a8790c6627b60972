package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				t.Setenv(tc.key, tc.envValue)
			}

			assert.Equal(t, tc.expected, getEnvOrDefault(tc.key, tc.defaultVal))
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "TEST_INT_3", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				t.Setenv(tc.key, tc.envValue)
			}

			assert.Equal(t, tc.expected, getEnvAsIntOrDefault(tc.key, tc.defaultVal))
		})
	}
}

func TestGetEnvAsFloatBoolDuration(t *testing.T) {
	t.Setenv("TEST_FLOAT", "0.7")
	t.Setenv("TEST_BAD_FLOAT", "warm")
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_DURATION", "90s")
	t.Setenv("TEST_BAD_DURATION", "soon")

	assert.InDelta(t, 0.7, getEnvAsFloatOrDefault("TEST_FLOAT", 0.1), 1e-9)
	assert.InDelta(t, 0.1, getEnvAsFloatOrDefault("TEST_BAD_FLOAT", 0.1), 1e-9)
	assert.True(t, getEnvAsBoolOrDefault("TEST_BOOL", false))
	assert.False(t, getEnvAsBoolOrDefault("TEST_BOOL_UNSET", false))
	assert.Equal(t, 90*time.Second, getEnvAsDurationOrDefault("TEST_DURATION", time.Second))
	assert.Equal(t, time.Second, getEnvAsDurationOrDefault("TEST_BAD_DURATION", time.Second))
}

func TestMustGetEnv_Panics(t *testing.T) {
	t.Setenv("NONEXISTENT_REQUIRED_VAR", "")
	assert.Panics(t, func() { mustGetEnv("NONEXISTENT_REQUIRED_VAR") })
}

func TestMustGetEnv_ReturnsValue(t *testing.T) {
	t.Setenv("TEST_REQUIRED", "value123")
	assert.Equal(t, "value123", mustGetEnv("TEST_REQUIRED"))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("GEN_TOP_K", "")

	cfg := Load()
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, int32(64), cfg.TopK)
	assert.Equal(t, int32(8192), cfg.MaxOutputTokens)
	assert.InDelta(t, 0.1, float64(cfg.Temperature), 1e-6)
	assert.Equal(t, "fr-CA-Neural2-B", cfg.TTSVoice)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			LLMProvider:          "gemini",
			GeminiAPIKey:         "key",
			DatabaseDriver:       "sqlite",
			GeminiConcurrentReqs: 1,
		}
	}

	require.NoError(t, base().Validate())

	noKey := base()
	noKey.GeminiAPIKey = ""
	assert.Error(t, noKey.Validate())

	mock := base()
	mock.LLMProvider = "mock"
	mock.GeminiAPIKey = ""
	assert.NoError(t, mock.Validate())

	openai := base()
	openai.LLMProvider = "openai"
	assert.Error(t, openai.Validate())

	badDriver := base()
	badDriver.DatabaseDriver = "mysql"
	assert.Error(t, badDriver.Validate())

	badProvider := base()
	badProvider.LLMProvider = "palm"
	assert.Error(t, badProvider.Validate())
}
