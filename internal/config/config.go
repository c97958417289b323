package config

import (
	"os"
	"strconv"
	"time"

	"taskflow/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	JWTSecret   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// OpenAIAPIKey may be empty: the suggestion path is then disabled.
	OpenAIAPIKey      string
	SuggestionTimeout time.Duration

	// Rate limits (requests per window, window in seconds)
	APIRateLimit      int
	APIRateWindow     int
	AuthRateLimit     int
	AuthRateWindow    int
	SuggestRateLimit  int
	SuggestRateWindow int
}

// Load reads config from env (.env supported for local runs).
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	openAIKey := os.Getenv("OPENAI_API_KEY")
	if openAIKey == "" {
		logger.Warn("OPENAI_API_KEY is not set, AI suggestions disabled")
	}

	suggestionTimeout := 15 * time.Second
	if v := os.Getenv("SUGGESTION_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			suggestionTimeout = time.Duration(n) * time.Second
		}
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			redisDB = n
		}
	}

	return &Config{
		AppPort:     port,
		DatabaseURL: dbURL,
		JWTSecret:   jwtSecret,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		OpenAIAPIKey:      openAIKey,
		SuggestionTimeout: suggestionTimeout,

		APIRateLimit:      envInt("API_RATE_LIMIT", 60),
		APIRateWindow:     envInt("API_RATE_WINDOW_SECONDS", 60),
		AuthRateLimit:     envInt("AUTH_RATE_LIMIT", 5),
		AuthRateWindow:    envInt("AUTH_RATE_WINDOW_SECONDS", 60),
		SuggestRateLimit:  envInt("SUGGEST_RATE_LIMIT", 10),
		SuggestRateWindow: envInt("SUGGEST_RATE_WINDOW_SECONDS", 60),
	}
}

func envInt(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
