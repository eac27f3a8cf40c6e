package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	StorageBackend string // "redis", "memory", "sqlite" or "firestore"
	RedisURL       string
	SQLitePath     string
	GCPProjectID   string

	GeminiAPIKey string
	ModelName    string
	UseMockLLM   bool // true = mock model client, useful for dev

	SessionTTL        time.Duration
	MaxHistoryTurns   int // turns replayed to the model; 0 = unbounded
	DefaultLanguage   string
	StatelessFallback bool // degrade to a historyless turn when the store fails
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d", key, v, def)
		return def
	}
	return n
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

// Load reads all env vars and builds the config
func Load() *Config {
	cfg := &Config{
		Port: getEnv("VERBO_PORT", "8080"),

		StorageBackend: getEnv("VERBO_STORAGE_BACKEND", "redis"),
		RedisURL:       getEnv("VERBO_REDIS_URL", "redis://localhost:6379/0"),
		SQLitePath:     getEnv("VERBO_SQLITE_PATH", "data/verbo.db"),
		GCPProjectID:   getEnv("VERBO_GCP_PROJECT", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		ModelName:    getEnv("VERBO_MODEL_NAME", "gemini-1.5-flash-latest"),
		UseMockLLM:   getBoolEnv("VERBO_USE_MOCK_LLM", false),

		SessionTTL:        time.Duration(getIntEnv("VERBO_SESSION_TTL_SECONDS", 1800)) * time.Second,
		MaxHistoryTurns:   getIntEnv("VERBO_MAX_HISTORY_TURNS", 40),
		DefaultLanguage:   getEnv("VERBO_DEFAULT_LANGUAGE", "Português (Brasil)"),
		StatelessFallback: getBoolEnv("VERBO_STATELESS_FALLBACK", false),
	}

	if !cfg.UseMockLLM && cfg.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY must be set (or VERBO_USE_MOCK_LLM=1)")
	}
	if cfg.StorageBackend == "firestore" && cfg.GCPProjectID == "" {
		log.Fatal("VERBO_GCP_PROJECT must be set for the firestore backend")
	}

	return cfg
}
