package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("SERVER_PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("unexpected default gemini model %q", cfg.Gemini.Model)
	}
	if cfg.OpenAI.Model != "gpt-4.1-mini" {
		t.Errorf("unexpected default openai model %q", cfg.OpenAI.Model)
	}
	if !cfg.OpenAI.EnableFallback {
		t.Error("fallback should default to enabled")
	}
}

func TestLoadAllowsMissingGeminiKey(t *testing.T) {
	// Per-request keys can substitute for a configured one, so an empty key
	// must not fail validation at load time.
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Gemini.APIKey != "" {
		t.Errorf("expected empty key, got %q", cfg.Gemini.APIKey)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")
	t.Setenv("OPENAI_ENABLE_FALLBACK", "false")
	t.Setenv("POSTGRES_DB", "emotions")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Gemini.Model != "gemini-2.5-pro" {
		t.Errorf("expected model override, got %q", cfg.Gemini.Model)
	}
	if cfg.OpenAI.EnableFallback {
		t.Error("expected fallback disabled")
	}
	if cfg.Postgres.Database != "emotions" {
		t.Errorf("expected database override, got %q", cfg.Postgres.Database)
	}
}

func TestValidateRejectsBadPort(t *testing.T) {
	t.Setenv("SERVER_PORT", "70000")

	if _, err := Load(); err == nil {
		t.Fatal("expected validation error for out-of-range port")
	}
}

func TestValidateRejectsEmptyGeminiModel(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: 8080},
		Redis:    RedisConfig{Host: "localhost"},
		Postgres: PostgresConfig{Host: "localhost", Database: "emomap"},
		Gemini:   GeminiConfig{Model: ""},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for empty gemini model")
	}
}
