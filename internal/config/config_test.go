package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", t.TempDir()+"/missing.env")
	t.Setenv("STORE_TYPE", "")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("LOCK_TIMEOUT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.StoreType != StoreFile {
		t.Errorf("Expected store type %q, got %q", StoreFile, cfg.StoreType)
	}
	if cfg.LockTimeout != 5*time.Second {
		t.Errorf("Expected 5s lock timeout, got %v", cfg.LockTimeout)
	}
	if cfg.SessionSecret == "" || !cfg.SessionGenerated {
		t.Error("Expected a generated session secret")
	}
}

func TestLoadSQLRequiresDatabase(t *testing.T) {
	t.Setenv("ENV_FILE", t.TempDir()+"/missing.env")
	t.Setenv("STORE_TYPE", StorePostgres)
	t.Setenv("DB_DATABASE", "")

	if _, err := Load(); err == nil {
		t.Fatal("Expected an error without DB_DATABASE")
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "1500")
	if got := getEnvAsDuration("TEST_DURATION", time.Second); got != 1500*time.Millisecond {
		t.Errorf("Expected 1.5s, got %v", got)
	}
	t.Setenv("TEST_DURATION", "2m")
	if got := getEnvAsDuration("TEST_DURATION", time.Second); got != 2*time.Minute {
		t.Errorf("Expected 2m, got %v", got)
	}
	t.Setenv("TEST_DURATION", "soon")
	if got := getEnvAsDuration("TEST_DURATION", time.Second); got != time.Second {
		t.Errorf("Expected default, got %v", got)
	}
}
