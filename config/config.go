package config

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config holds the project config values
type Config struct {
	URL          string
	DatabaseName string
	BaseURL      string
	Port         string
	Env          string

	// StoreBackend selects the key/value store: "memory", "mongo" or "redis"
	StoreBackend string
	RedisURL     string

	// VerdictAPIURL is the base url of the external judging backend
	VerdictAPIURL string

	// chat-completions settings for the in-process verdict route
	AIAPIURL string
	AIAPIKey string
	AIModel  string

	DebateTimeout      time.Duration
	DebatePollInterval time.Duration
	DebateSweepSpec    string
	SubmissionClaimTTL time.Duration
}

// New sets up all config related services
func New() *Config {
	// a missing .env is fine, the environment wins anyway
	_ = godotenv.Load()

	env := getEnv("ENV", "local")

	//setup zap logger and replace default logger
	logger, err := setLogger(env)
	if err != nil {
		logger = zap.NewExample()
	}
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	return &Config{
		URL:                os.Getenv("DB_URI"),
		DatabaseName:       os.Getenv("DB_NAME"),
		BaseURL:            os.Getenv("BASE_URL"),
		Port:               getEnv("PORT", "8080"),
		Env:                env,
		StoreBackend:       getEnv("STORE_BACKEND", "memory"),
		RedisURL:           os.Getenv("REDIS_URL"),
		VerdictAPIURL:      getEnv("VERDICT_API_URL", "http://localhost:5000"),
		AIAPIURL:           getEnv("AI_API_URL", "https://openrouter.ai/api/v1/chat/completions"),
		AIAPIKey:           os.Getenv("AI_API_KEY"),
		AIModel:            getEnv("AI_MODEL", "openai/gpt-4o-mini"),
		DebateTimeout:      getDuration("DEBATE_TIMEOUT", time.Minute),
		DebatePollInterval: getDuration("DEBATE_POLL_INTERVAL", 2*time.Second),
		DebateSweepSpec:    getEnv("DEBATE_SWEEP_SPEC", "@every 1s"),
		SubmissionClaimTTL: getDuration("SUBMISSION_CLAIM_TTL", 2*time.Minute),
	}
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	json.NewEncoder(w).Encode(map[string]string{"response": fmt.Sprintf("%s, %v", message, err)})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		zap.S().Warnw("ignoring invalid duration", "key", key, "value", value)
		return defaultValue
	}
	return d
}
