package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetDefaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")

	env, err := Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if env.PUBLIC_DIR == "" {
		t.Error("PUBLIC_DIR should have a default")
	}
	if env.JWT_EXPIRY <= 0 {
		t.Errorf("JWT_EXPIRY should default to a positive duration, got %v", env.JWT_EXPIRY)
	}
}

func TestGetEnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("CRON_ENABLED", "false")

	env, err := Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if env.PORT != 9090 {
		t.Errorf("PORT = %d, want 9090", env.PORT)
	}
	if env.JWT_SECRET != "from-env" {
		t.Errorf("JWT_SECRET = %q", env.JWT_SECRET)
	}
	if env.JWT_EXPIRY != 2*time.Hour {
		t.Errorf("JWT_EXPIRY = %v, want 2h", env.JWT_EXPIRY)
	}
	if env.CRON_ENABLED {
		t.Error("CRON_ENABLED should be false")
	}
}

func TestGetYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("public_dir: /srv/public\nupload_base_url: https://events.example.edu\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	env, err := Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if env.PUBLIC_DIR != "/srv/public" {
		t.Errorf("PUBLIC_DIR = %q", env.PUBLIC_DIR)
	}
	if env.UPLOAD_BASE_URL != "https://events.example.edu" {
		t.Errorf("UPLOAD_BASE_URL = %q", env.UPLOAD_BASE_URL)
	}
}

func TestValidate(t *testing.T) {
	env := defaults()
	if err := env.Validate(); err == nil {
		t.Error("expected error without JWT_SECRET")
	}

	env.JWT_SECRET = "secret"
	if err := env.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSpacesConfigured(t *testing.T) {
	env := defaults()
	if env.SpacesConfigured() {
		t.Error("spaces should be off by default")
	}

	env.SPACES_BUCKET = "events"
	env.SPACES_REGION = "blr1"
	env.SPACES_ACCESS_KEY = "key"
	env.SPACES_SECRET_KEY = "secret"
	if !env.SpacesConfigured() {
		t.Error("spaces should be configured")
	}
}
