package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Database
	DatabaseDriver string
	DatabaseURL    string

	// Sessions
	RedisURL   string
	SessionTTL time.Duration

	// Generation
	LLMProvider       string
	GenerationTimeout time.Duration
	Temperature       float32
	TopP              float32
	TopK              int32
	MaxOutputTokens   int32
	SafetyThreshold   string
	EscapeInput       bool
	HistoryTokenWarn  int

	// Gemini AI
	GeminiAPIKey         string
	GeminiModel          string
	GeminiBaseURL        string
	GeminiConcurrentReqs int

	// OpenAI-compatible
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Persona
	PersonaFile   string
	PersonaSuffix string

	// Text-to-speech
	TTSAPIKey   string
	TTSLanguage string
	TTSVoice    string
	TTSGender   string

	// Frontend
	FrontendURL        string
	RateLimitPerMinute int
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, using process environment")
	}

	cfg := &Config{
		Port:     getEnvOrDefault("PORT", "3001"),
		Env:      getEnvOrDefault("ENV", "development"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),

		DatabaseDriver: getEnvOrDefault("DATABASE_DRIVER", "sqlite"),
		DatabaseURL:    getEnvOrDefault("DATABASE_URL", "./database.sqlite"),

		RedisURL:   getEnvOrDefault("REDIS_URL", ""),
		SessionTTL: getEnvAsDurationOrDefault("SESSION_TTL", 2*time.Hour),

		LLMProvider:       getEnvOrDefault("LLM_PROVIDER", "gemini"),
		GenerationTimeout: getEnvAsDurationOrDefault("GENERATION_TIMEOUT", 60*time.Second),
		Temperature:       float32(getEnvAsFloatOrDefault("GEN_TEMPERATURE", 0.1)),
		TopP:              float32(getEnvAsFloatOrDefault("GEN_TOP_P", 0.95)),
		TopK:              int32(getEnvAsIntOrDefault("GEN_TOP_K", 64)),
		MaxOutputTokens:   int32(getEnvAsIntOrDefault("GEN_MAX_OUTPUT_TOKENS", 8192)),
		SafetyThreshold:   getEnvOrDefault("GEN_SAFETY_THRESHOLD", "BLOCK_NONE"),
		EscapeInput:       getEnvAsBoolOrDefault("ESCAPE_INPUT", false),
		HistoryTokenWarn:  getEnvAsIntOrDefault("HISTORY_TOKEN_WARN", 30000),

		GeminiAPIKey:         getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash-latest"),
		GeminiBaseURL:        getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),

		OpenAIAPIKey:  getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnvOrDefault("OPENAI_BASE_URL", ""),
		OpenAIModel:   getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),

		PersonaFile:   getEnvOrDefault("PERSONA_FILE", ""),
		PersonaSuffix: getEnvOrDefault("PERSONA_SUFFIX", ""),

		TTSAPIKey:   getEnvOrDefault("TTS_API_KEY", ""),
		TTSLanguage: getEnvOrDefault("TTS_LANGUAGE", "fr-CA"),
		TTSVoice:    getEnvOrDefault("TTS_VOICE", "fr-CA-Neural2-B"),
		TTSGender:   getEnvOrDefault("TTS_GENDER", "MALE"),

		FrontendURL:        getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
		RateLimitPerMinute: getEnvAsIntOrDefault("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.DatabaseDriver == "postgres" {
		cfg.DatabaseURL = mustGetEnv("DATABASE_URL")
	}

	return cfg
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case "gemini", "gemini-sdk":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for provider %q", c.LLMProvider)
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for provider %q", c.LLMProvider)
		}
	case "mock":
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLMProvider)
	}

	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	if c.GeminiConcurrentReqs < 1 {
		return fmt.Errorf("GEMINI_CONCURRENT_REQUESTS must be positive, got %d", c.GeminiConcurrentReqs)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
