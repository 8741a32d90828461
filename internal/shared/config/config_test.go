package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"ENV", "PORT", "LLM_PROVIDER", "SCORING_TEMPERATURE", "CORS_ALLOW_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Env != "dev" {
		t.Fatalf("expected dev env, got %q", cfg.Env)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.LLMProvider != "gemini" {
		t.Fatalf("expected gemini provider, got %q", cfg.LLMProvider)
	}
	if cfg.ScoringTemperature != 0.1 {
		t.Fatalf("expected temperature 0.1, got %v", cfg.ScoringTemperature)
	}
	if len(cfg.CORSAllowOrigin) != 1 || cfg.CORSAllowOrigin[0] != "http://localhost:5173" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSAllowOrigin)
	}
}

func TestLoadReadsEnvFileWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	content := "LLM_MODEL=from-file\nPORT=9999\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("PORT", "7000")
	t.Setenv("LLM_MODEL", "")
	os.Unsetenv("LLM_MODEL")

	cfg := Load()
	if cfg.LLMModel != "from-file" {
		t.Fatalf("expected model from .env, got %q", cfg.LLMModel)
	}
	if cfg.Port != "7000" {
		t.Fatalf("expected existing env to win, got %q", cfg.Port)
	}
}

func TestNormalizers(t *testing.T) {
	if got := normalizeEnv("PROD"); got != "production" {
		t.Fatalf("normalizeEnv(PROD) = %q", got)
	}
	if got := normalizeProvider("OpenAI"); got != "openai" {
		t.Fatalf("normalizeProvider(OpenAI) = %q", got)
	}
	if got := normalizeProvider("disabled"); got != "none" {
		t.Fatalf("normalizeProvider(disabled) = %q", got)
	}
	if got := splitAndTrim(" a, ,b "); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("splitAndTrim = %v", got)
	}
}
