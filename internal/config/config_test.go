package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var configKeys = []string{
	"WHEEL_ENV_FILE", "WHEEL_CONFIG", "HTTP_ADDR", "PORT", "BASE_URL", "LOG_LEVEL",
	"STORAGE_DRIVER", "SQLITE_PATH", "DATABASE_URL", "SPIN_DURATION",
	"MIN_FULL_TURNS", "POINTER_ANGLE", "LANDING_SPREAD", "CORS_ORIGINS",
}

// clearEnv unsets every config key for the test and restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Setenv("WHEEL_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr %q", c.HTTPAddr)
	}
	if c.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel %v", c.LogLevel)
	}
	if c.StorageDriver != "memory" {
		t.Errorf("StorageDriver %q", c.StorageDriver)
	}
	if c.SpinDuration != 8*time.Second || c.FullTurns != 6 || c.LandingSpread != 0.7 {
		t.Errorf("wheel defaults %v %d %v", c.SpinDuration, c.FullTurns, c.LandingSpread)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("SPIN_DURATION", "5s")
	t.Setenv("MIN_FULL_TURNS", "4")
	t.Setenv("POINTER_ANGLE", "-90")
	t.Setenv("LANDING_SPREAD", "0.2")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.HTTPAddr != ":9000" {
		t.Errorf("HTTPAddr %q, want :9000 from PORT", c.HTTPAddr)
	}
	if c.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel %v", c.LogLevel)
	}
	if c.StorageOptions().Driver != "sqlite" || c.StorageOptions().SQLitePath != "/tmp/x.db" {
		t.Errorf("storage %+v", c.StorageOptions())
	}
	s := c.WheelSettings()
	if s.Duration != 5*time.Second || s.FullTurns != 4 || s.PointerAngle != 270 || s.LandingSpread != 0.2 {
		t.Errorf("settings %+v", s)
	}
	if len(c.CORSOrigins) != 2 || c.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins %v", c.CORSOrigins)
	}
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "wheel.yaml")
	yamlDoc := `http_addr: ":7000"
log_level: warn
storage:
  driver: sqlite
  sqlite_path: names.db
wheel:
  spin_duration: 3s
  full_turns: 5
  pointer_angle: 90
  landing_spread: 0
cors_origins:
  - https://wheel.example
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WHEEL_CONFIG", path)
	t.Setenv("MIN_FULL_TURNS", "7")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.HTTPAddr != ":7000" || c.LogLevel != slog.LevelWarn || c.SQLitePath != "names.db" {
		t.Errorf("file values not applied: %+v", c)
	}
	if c.SpinDuration != 3*time.Second || c.PointerAngle != 90 || c.LandingSpread != 0 {
		t.Errorf("wheel file values not applied: %+v", c)
	}
	if c.FullTurns != 7 {
		t.Errorf("FullTurns %d, want env override 7", c.FullTurns)
	}
	if len(c.CORSOrigins) != 1 {
		t.Errorf("CORSOrigins %v", c.CORSOrigins)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("SPIN_DURATION=2s\nBASE_URL=https://spin.example\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WHEEL_ENV_FILE", path)
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.SpinDuration != 2*time.Second || c.BaseURL != "https://spin.example" {
		t.Errorf("dotenv not applied: %v %q", c.SpinDuration, c.BaseURL)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"LOG_LEVEL":      "verbose",
		"SPIN_DURATION":  "soon",
		"MIN_FULL_TURNS": "2",
		"LANDING_SPREAD": "0.99",
		"STORAGE_DRIVER": "redis",
		"POINTER_ANGLE":  "up",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Errorf("%s=%s accepted", key, value)
			}
		})
	}
}

func TestLoad_PostgresNeedsURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "postgres")
	if _, err := Load(); err == nil {
		t.Fatal("postgres without DATABASE_URL accepted")
	}
	t.Setenv("DATABASE_URL", "postgres://localhost/wheel")
	if _, err := Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
}
