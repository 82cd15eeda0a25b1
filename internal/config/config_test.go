package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error with no DATABASE_URL")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/prepcall")
	t.Setenv("PORT", "")
	t.Setenv("VOICE_PROVIDER_MODE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Port)
	}
	if cfg.VoiceProviderMode != "managed" {
		t.Errorf("voice mode = %q, want managed", cfg.VoiceProviderMode)
	}
	if cfg.OpenAIBaseURL == "" || cfg.OpenRouterBaseURL == "" {
		t.Error("provider base URLs must default")
	}
	if len(cfg.AllowedOrigins) == 0 {
		t.Error("no CORS origins configured")
	}
}

func TestLoadRejectsBadVoiceMode(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/prepcall")
	t.Setenv("VOICE_PROVIDER_MODE", "hybrid")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown voice provider mode")
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "# comment line\nTEST_ENVFILE_KEY = from-file\n\nMALFORMED LINE\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	os.Unsetenv("TEST_ENVFILE_KEY")
	t.Cleanup(func() { os.Unsetenv("TEST_ENVFILE_KEY") })

	loadEnvFile(envPath)

	if got := os.Getenv("TEST_ENVFILE_KEY"); got != "from-file" {
		t.Errorf("TEST_ENVFILE_KEY = %q", got)
	}
}

func TestLoadEnvFileDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("TEST_ENVFILE_WINS=file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TEST_ENVFILE_WINS", "process")
	loadEnvFile(envPath)

	if got := os.Getenv("TEST_ENVFILE_WINS"); got != "process" {
		t.Errorf("existing env var overridden, got %q", got)
	}
}
