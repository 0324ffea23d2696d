package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"spinwheel/internal/kvstore"
	"spinwheel/internal/wheel"
)

type Config struct {
	HTTPAddr      string
	BaseURL       string
	LogLevel      slog.Level
	StorageDriver string
	SQLitePath    string
	DatabaseURL   string
	SpinDuration  time.Duration
	FullTurns     int
	PointerAngle  float64
	LandingSpread float64
	CORSOrigins   []string
}

// fileConfig is the optional YAML file named by WHEEL_CONFIG.
type fileConfig struct {
	HTTPAddr string `yaml:"http_addr"`
	BaseURL  string `yaml:"base_url"`
	LogLevel string `yaml:"log_level"`
	Storage  struct {
		Driver      string `yaml:"driver"`
		SQLitePath  string `yaml:"sqlite_path"`
		DatabaseURL string `yaml:"database_url"`
	} `yaml:"storage"`
	Wheel struct {
		SpinDuration  string   `yaml:"spin_duration"`
		FullTurns     int      `yaml:"full_turns"`
		PointerAngle  *float64 `yaml:"pointer_angle"`
		LandingSpread *float64 `yaml:"landing_spread"`
	} `yaml:"wheel"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// Load reads .env (if present), then the YAML file named by WHEEL_CONFIG (if
// set), then environment variables. Later sources win.
func Load() (Config, error) {
	envFile := envOr("WHEEL_ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	defaults := wheel.DefaultSettings()
	c := Config{
		HTTPAddr:      ":8080",
		StorageDriver: kvstore.DriverMemory,
		SQLitePath:    "spinwheel.db",
		SpinDuration:  defaults.Duration,
		FullTurns:     defaults.FullTurns,
		PointerAngle:  defaults.PointerAngle,
		LandingSpread: defaults.LandingSpread,
	}
	logLevel := "info"

	if path := os.Getenv("WHEEL_CONFIG"); path != "" {
		fc, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := c.applyFile(fc); err != nil {
			return Config{}, err
		}
		if fc.LogLevel != "" {
			logLevel = fc.LogLevel
		}
	}

	if err := c.applyEnv(); err != nil {
		return Config{}, err
	}
	level, err := parseLogLevel(envOr("LOG_LEVEL", logLevel))
	if err != nil {
		return Config{}, err
	}
	c.LogLevel = level

	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func readFile(path string) (fileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fc, nil
}

func (c *Config) applyFile(fc fileConfig) error {
	setString(&c.HTTPAddr, fc.HTTPAddr)
	setString(&c.BaseURL, fc.BaseURL)
	setString(&c.StorageDriver, fc.Storage.Driver)
	setString(&c.SQLitePath, fc.Storage.SQLitePath)
	setString(&c.DatabaseURL, fc.Storage.DatabaseURL)
	if fc.Wheel.SpinDuration != "" {
		d, err := time.ParseDuration(fc.Wheel.SpinDuration)
		if err != nil {
			return fmt.Errorf("invalid wheel.spin_duration %q: %w", fc.Wheel.SpinDuration, err)
		}
		c.SpinDuration = d
	}
	if fc.Wheel.FullTurns != 0 {
		c.FullTurns = fc.Wheel.FullTurns
	}
	if fc.Wheel.PointerAngle != nil {
		c.PointerAngle = *fc.Wheel.PointerAngle
	}
	if fc.Wheel.LandingSpread != nil {
		c.LandingSpread = *fc.Wheel.LandingSpread
	}
	if len(fc.CORSOrigins) > 0 {
		c.CORSOrigins = fc.CORSOrigins
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.HTTPAddr = v
	} else if port := os.Getenv("PORT"); port != "" {
		c.HTTPAddr = ":" + port
	}
	c.BaseURL = envOr("BASE_URL", c.BaseURL)
	c.StorageDriver = strings.ToLower(envOr("STORAGE_DRIVER", c.StorageDriver))
	c.SQLitePath = envOr("SQLITE_PATH", c.SQLitePath)
	c.DatabaseURL = envOr("DATABASE_URL", c.DatabaseURL)

	if v := os.Getenv("SPIN_DURATION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SPIN_DURATION %q: %w", v, err)
		}
		c.SpinDuration = d
	}
	if v := os.Getenv("MIN_FULL_TURNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MIN_FULL_TURNS %q: %w", v, err)
		}
		c.FullTurns = n
	}
	if v := os.Getenv("POINTER_ANGLE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid POINTER_ANGLE %q: %w", v, err)
		}
		c.PointerAngle = f
	}
	if v := os.Getenv("LANDING_SPREAD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid LANDING_SPREAD %q: %w", v, err)
		}
		c.LandingSpread = f
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = parseList(v)
	}
	return nil
}

func (c Config) validate() error {
	if err := c.WheelSettings().Validate(); err != nil {
		return err
	}
	switch c.StorageDriver {
	case kvstore.DriverMemory, kvstore.DriverSQLite:
	case kvstore.DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER %q", c.StorageDriver)
	}
	return nil
}

// WheelSettings returns the spin settings for new wheels.
func (c Config) WheelSettings() wheel.Settings {
	s := wheel.DefaultSettings()
	s.Duration = c.SpinDuration
	s.FullTurns = c.FullTurns
	s.PointerAngle = wheel.Normalize(c.PointerAngle)
	s.LandingSpread = c.LandingSpread
	return s
}

// StorageOptions returns the kvstore backend selection.
func (c Config) StorageOptions() kvstore.Options {
	return kvstore.Options{
		Driver:      c.StorageDriver,
		SQLitePath:  c.SQLitePath,
		DatabaseURL: c.DatabaseURL,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func parseList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
}
