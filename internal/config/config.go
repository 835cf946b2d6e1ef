// Package config loads runtime settings for the triz binary.
//
// Sources are applied in order, later ones winning: built-in defaults, an
// optional YAML file, a .env file in the working directory, then the
// process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/HendryAvila/triz-master/internal/catalog"
)

// Config is the complete runtime configuration.
type Config struct {
	DataDir  string         `yaml:"data_dir"`
	Locale   catalog.Locale `yaml:"locale"`
	HTTPAddr string         `yaml:"http_addr"`

	// HistoryLimit is the number of sessions kept in history.
	HistoryLimit int `yaml:"history_limit"`
	// PrincipleCeiling caps fallback principle ids. 0 means the highest
	// principle id present in the catalog.
	PrincipleCeiling int `yaml:"principle_ceiling"`

	Log LogConfig `yaml:"log"`
	AI  AIConfig  `yaml:"ai"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AIConfig configures the OpenAI-compatible model endpoint.
type AIConfig struct {
	BaseURL       string        `yaml:"base_url"`
	APIKey        string        `yaml:"-"`
	DiagnoseModel string        `yaml:"diagnose_model"`
	DraftModel    string        `yaml:"draft_model"`
	Timeout       time.Duration `yaml:"timeout"`
}

// Enabled reports whether an API key is configured.
func (c AIConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		DataDir:          filepath.Join(home, ".triz"),
		Locale:           catalog.DefaultLocale,
		HTTPAddr:         "127.0.0.1:8089",
		HistoryLimit:     15,
		PrincipleCeiling: 0,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		AI: AIConfig{
			BaseURL:       "https://generativelanguage.googleapis.com/v1beta/openai",
			DiagnoseModel: "gemini-2.5-flash",
			DraftModel:    "gemini-2.5-pro",
			Timeout:       2 * time.Minute,
		},
	}
}

// DefaultPath returns ~/.triz/config.yaml.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".triz", "config.yaml")
}

// Load builds the configuration. An empty path reads DefaultPath when it
// exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if err := loadFile(cfg, path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}
	// Accept any tag that matches a supported locale ("en-GB") from the file.
	if loc, err := catalog.ParseLocale(string(cfg.Locale)); err == nil {
		cfg.Locale = loc
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// loadFromEnv overrides cfg with TRIZ_* variables. Malformed numbers are
// an error rather than silently ignored.
func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("TRIZ_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("TRIZ_LOCALE"); v != "" {
		loc, err := catalog.ParseLocale(v)
		if err != nil {
			return fmt.Errorf("TRIZ_LOCALE: %w", err)
		}
		cfg.Locale = loc
	}
	if v := os.Getenv("TRIZ_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if err := envInt("TRIZ_HISTORY_LIMIT", &cfg.HistoryLimit); err != nil {
		return err
	}
	if err := envInt("TRIZ_PRINCIPLE_CEILING", &cfg.PrincipleCeiling); err != nil {
		return err
	}

	if v := os.Getenv("TRIZ_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TRIZ_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	if v := os.Getenv("TRIZ_AI_BASE_URL"); v != "" {
		cfg.AI.BaseURL = v
	}
	for _, key := range []string{"TRIZ_AI_API_KEY", "OPENAI_API_KEY"} {
		if v := os.Getenv(key); v != "" {
			cfg.AI.APIKey = v
			break
		}
	}
	if v := os.Getenv("TRIZ_AI_DIAGNOSE_MODEL"); v != "" {
		cfg.AI.DiagnoseModel = v
	}
	if v := os.Getenv("TRIZ_AI_DRAFT_MODEL"); v != "" {
		cfg.AI.DraftModel = v
	}
	if v := os.Getenv("TRIZ_AI_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TRIZ_AI_TIMEOUT: %w", err)
		}
		cfg.AI.Timeout = d
	}
	return nil
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

// Validate checks the configuration for values no component can use.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data dir cannot be empty")
	}
	if !slices.Contains(catalog.Locales, c.Locale) {
		return fmt.Errorf("unsupported locale %q", c.Locale)
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("history limit must be positive, got %d", c.HistoryLimit)
	}
	if c.PrincipleCeiling < 0 || c.PrincipleCeiling > catalog.PrincipleCount {
		return fmt.Errorf("principle ceiling must be between 0 and %d, got %d", catalog.PrincipleCount, c.PrincipleCeiling)
	}
	if c.HTTPAddr == "" {
		return errors.New("http address cannot be empty")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.AI.Enabled() {
		if c.AI.DiagnoseModel == "" || c.AI.DraftModel == "" {
			return errors.New("AI models cannot be empty when an API key is set")
		}
		if c.AI.Timeout <= 0 {
			return errors.New("AI timeout must be positive")
		}
	}
	return nil
}
