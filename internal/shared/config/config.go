package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"resume-scorer/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port               string
	CORSAllowOrigin    []string
	Env                string
	DatabaseURL        string
	JWTSecret          string
	LLMProvider        string
	LLMModel           string
	GeminiAPIKey       string
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	ScoringTemperature float32
	AWSRegion          string
	UploadsBucket      string
	UploadsPrefix      string
	LocalStoreDir      string
	BlobHosts          []string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string
	ScoreRateLimit     float64
	ScoreRateBurst     int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Local env files are optional; variables already set win.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")
	if env == "production" && dbURL == "" {
		telemetry.Warn("config.missing", map[string]any{"key": "DATABASE_URL", "env": env})
	}

	return Config{
		Port:               getEnv("PORT", "8080"),
		CORSAllowOrigin:    splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		Env:                env,
		DatabaseURL:        dbURL,
		JWTSecret:          getEnv("JWT_SECRET", ""),
		LLMProvider:        normalizeProvider(getEnv("LLM_PROVIDER", "gemini")),
		LLMModel:           getEnv("LLM_MODEL", ""),
		GeminiAPIKey:       firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY"),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", ""),
		ScoringTemperature: float32(getFloat("SCORING_TEMPERATURE", 0.1)),
		AWSRegion:          getEnv("AWS_REGION", ""),
		UploadsBucket:      getEnv("UPLOADS_BUCKET", ""),
		UploadsPrefix:      getEnv("UPLOADS_PREFIX", "uploads"),
		LocalStoreDir:      getEnv("LOCAL_STORE_DIR", "./data"),
		BlobHosts:          splitAndTrim(getEnv("BLOB_ALLOWED_HOSTS", "")),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		UIRedirectURL:      getEnv("UI_REDIRECT_URL", ""),
		ScoreRateLimit:     getFloat("SCORE_RATE_LIMIT", 0.2),
		ScoreRateBurst:     getInt("SCORE_RATE_BURST", 5),
	}
}

func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			telemetry.Warn("config.env_file", map[string]any{"path": path, "error": err})
		}
	}
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if val := getEnv(key, ""); val != "" {
			return val
		}
	}
	return ""
}

func getFloat(key string, def float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

func getInt(key string, def int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	case "none", "off", "disabled":
		return "none"
	default:
		return "gemini"
	}
}
