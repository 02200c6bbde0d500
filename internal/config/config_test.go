package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Env != "development" {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Auth.TokenTTL != 7*24*time.Hour {
		t.Errorf("TokenTTL = %v, want 168h", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.CookieTTL != 90*24*time.Hour {
		t.Errorf("CookieTTL = %v, want 2160h", cfg.Auth.CookieTTL)
	}
	if cfg.Auth.SecretKey == "" {
		t.Error("expected a development fallback secret")
	}
	if cfg.Upload.MaxSize != 10*1024*1024 {
		t.Errorf("MaxSize = %d, want 10MB", cfg.Upload.MaxSize)
	}
}

func TestLoadProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENV", "production")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error with no SECRET_KEY in production")
	}

	t.Setenv("SECRET_KEY", "too-short")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a short SECRET_KEY in production")
	}

	t.Setenv("SECRET_KEY", strings.Repeat("s", 32))
	if _, err := Load(); err != nil {
		t.Fatalf("Load returned error with a valid secret: %v", err)
	}
}

func TestDSNBuiltFromParts(t *testing.T) {
	db := DatabaseConfig{
		Host:     "db.internal",
		User:     "app",
		Password: "p@ss:word/!",
		Name:     "userboard",
	}

	dsn := db.DSN()
	if !strings.Contains(dsn, "tcp(db.internal:3306)") {
		t.Errorf("default port not appended: %q", dsn)
	}
	if !strings.Contains(dsn, "/userboard") {
		t.Errorf("database name missing: %q", dsn)
	}
	if !strings.Contains(dsn, "parseTime=true") {
		t.Errorf("parseTime not enabled: %q", dsn)
	}
}

func TestDSNOverride(t *testing.T) {
	t.Setenv("DATABASE_URL", "app:secret@tcp(10.0.0.5:3307)/prod?parseTime=true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Database.DSN() != "app:secret@tcp(10.0.0.5:3307)/prod?parseTime=true" {
		t.Errorf("DATABASE_URL not honored: %q", cfg.Database.DSN())
	}
}

func TestEnsurePort(t *testing.T) {
	if got := ensurePort("mydb", "3306"); got != "mydb:3306" {
		t.Errorf("ensurePort(mydb) = %q", got)
	}
	if got := ensurePort("mydb:3307", "3306"); got != "mydb:3307" {
		t.Errorf("ensurePort(mydb:3307) = %q", got)
	}
}
