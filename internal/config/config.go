// Package config loads runtime configuration for the touch sampler.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultListenAddr      = "127.0.0.1:8788"
	defaultDataDir         = "./data"
	defaultSource          = SourceADB
	defaultADBPath         = "adb"
	defaultFPS             = 20
	defaultCaptureWidth    = 1280
	defaultCaptureHeight   = 720
	defaultScreenWidth     = 2400
	defaultScreenHeight    = 1080
	defaultMaxContacts     = 10
	defaultLogLevel        = "info"
	defaultLogFormat       = "text"
	defaultOverlayEnabled  = true
	defaultOverlayInterval = 100
	defaultOverlayQuality  = 70
)

const (
	// SourceADB reads `adb shell getevent -l`.
	SourceADB = "adb"
	// SourceLocal reads a local evdev node directly.
	SourceLocal = "local"
)

// Config holds runtime configuration values.
type Config struct {
	ListenAddr  string `yaml:"listen_addr"`
	DataDir     string `yaml:"data_dir"`
	ActionsPath string `yaml:"actions_path"`
	Source      string `yaml:"source"`
	ADBPath     string `yaml:"adb_path"`
	Serial      string `yaml:"serial"`
	// Device is the input node to follow, e.g. /dev/input/event4. Empty
	// lets the probe pick the first multi-touch device.
	Device       string `yaml:"device"`
	MaxContacts  int    `yaml:"max_contacts"`
	FPS          int    `yaml:"fps"`
	CaptureWidth int    `yaml:"capture_width"`
	// CaptureHeight is the sampled frame height; with ScreenActionHeight it
	// fixes the calibration ratio.
	CaptureHeight      int           `yaml:"capture_height"`
	ScreenActionWidth  int           `yaml:"screen_action_width"`
	ScreenActionHeight int           `yaml:"screen_action_height"`
	LogTimestamp       bool          `yaml:"log_timestamp"`
	Logging            LoggingConfig `yaml:"logging"`
	Overlay            OverlayConfig `yaml:"overlay"`
}

// LoggingConfig selects logger level and format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// OverlayConfig controls the debug overlay MJPEG stream.
type OverlayConfig struct {
	Enabled    bool `yaml:"enabled"`
	IntervalMs int  `yaml:"interval_ms"`
	Quality    int  `yaml:"quality"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddr:         defaultListenAddr,
		DataDir:            defaultDataDir,
		ActionsPath:        filepath.Join(defaultDataDir, "actions.json"),
		Source:             defaultSource,
		ADBPath:            defaultADBPath,
		MaxContacts:        defaultMaxContacts,
		FPS:                defaultFPS,
		CaptureWidth:       defaultCaptureWidth,
		CaptureHeight:      defaultCaptureHeight,
		ScreenActionWidth:  defaultScreenWidth,
		ScreenActionHeight: defaultScreenHeight,
		Logging:            LoggingConfig{Level: defaultLogLevel, Format: defaultLogFormat},
		Overlay: OverlayConfig{
			Enabled:    defaultOverlayEnabled,
			IntervalMs: defaultOverlayInterval,
			Quality:    defaultOverlayQuality,
		},
	}
}

// Load reads path (optional), then <data_dir>/.env, then environment variables.
// An empty path skips the YAML file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	actionsFromFile := cfg.ActionsPath != Default().ActionsPath

	if err := loadEnvFile(filepath.Join(envString("DATA_DIR", cfg.DataDir), ".env")); err != nil {
		return Config{}, err
	}
	if err := applyEnv(&cfg, actionsFromFile); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto cfg.
func applyEnv(cfg *Config, actionsFromFile bool) error {
	cfg.ListenAddr = envString("LISTEN_ADDR", cfg.ListenAddr)
	dataDir := envString("DATA_DIR", cfg.DataDir)
	if dataDir != cfg.DataDir && !actionsFromFile {
		cfg.ActionsPath = filepath.Join(dataDir, "actions.json")
	}
	cfg.DataDir = dataDir
	cfg.ActionsPath = envString("ACTIONS_PATH", cfg.ActionsPath)
	cfg.Source = strings.ToLower(envString("SOURCE", cfg.Source))
	cfg.ADBPath = envString("ADB_PATH", cfg.ADBPath)
	cfg.Serial = envString("ADB_SERIAL", cfg.Serial)
	cfg.Device = envString("TOUCH_DEVICE", cfg.Device)
	cfg.LogTimestamp = envBool("LOG_TIMESTAMP", cfg.LogTimestamp)
	cfg.Logging.Level = envString("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = envString("LOG_FORMAT", cfg.Logging.Format)
	cfg.Overlay.Enabled = envBool("OVERLAY_ENABLED", cfg.Overlay.Enabled)

	ints := []struct {
		key string
		dst *int
	}{
		{"MAX_CONTACTS", &cfg.MaxContacts},
		{"FPS", &cfg.FPS},
		{"CAPTURE_WIDTH", &cfg.CaptureWidth},
		{"CAPTURE_HEIGHT", &cfg.CaptureHeight},
		{"SCREEN_ACTION_WIDTH", &cfg.ScreenActionWidth},
		{"SCREEN_ACTION_HEIGHT", &cfg.ScreenActionHeight},
		{"OVERLAY_INTERVAL_MS", &cfg.Overlay.IntervalMs},
		{"OVERLAY_QUALITY", &cfg.Overlay.Quality},
	}
	for _, it := range ints {
		v, err := envInt(it.key, *it.dst)
		if err != nil {
			return err
		}
		*it.dst = v
	}
	return nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch c.Source {
	case SourceADB, SourceLocal:
	default:
		return fmt.Errorf("source must be %q or %q, got %q", SourceADB, SourceLocal, c.Source)
	}
	if c.Source == SourceLocal && c.Device == "" {
		return errors.New("device is required for the local source")
	}
	if c.ActionsPath == "" {
		return errors.New("actions_path is required")
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be > 0")
	}
	if c.MaxContacts <= 0 {
		return fmt.Errorf("max_contacts must be > 0")
	}
	if c.CaptureWidth <= 0 || c.CaptureHeight <= 0 {
		return fmt.Errorf("capture size must be positive")
	}
	if c.ScreenActionWidth <= 0 || c.ScreenActionHeight <= 0 {
		return fmt.Errorf("screen action size must be positive")
	}
	if c.Overlay.IntervalMs < 0 {
		return fmt.Errorf("overlay interval_ms must be >= 0")
	}
	if c.Overlay.Quality <= 0 || c.Overlay.Quality > 100 {
		return fmt.Errorf("overlay quality must be 1-100")
	}
	return nil
}

// envString returns an env override when present, otherwise a default.
func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envInt returns an int env override when present, otherwise a default.
func envInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return value, nil
}

// envBool returns a bool env override when present, otherwise a default.
func envBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

// loadEnvFile loads KEY=VALUE pairs from a .env file without overriding
// variables already set.
func loadEnvFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	for _, line := range strings.Split(string(data), "\n") {
		key, value, ok := parseEnvLine(line)
		if !ok {
			continue
		}
		if _, exists := os.LookupEnv(key); !exists {
			if err := os.Setenv(key, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// parseEnvLine parses a single .env line into key/value.
func parseEnvLine(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}
	return key, strings.Trim(strings.TrimSpace(value), `"'`), true
}
