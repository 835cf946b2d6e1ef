package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/HendryAvila/triz-master/internal/catalog"
)

// isolate points HOME at a temp dir and clears every variable Load reads.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{
		"TRIZ_DATA_DIR", "TRIZ_LOCALE", "TRIZ_HTTP_ADDR", "TRIZ_HISTORY_LIMIT",
		"TRIZ_PRINCIPLE_CEILING", "TRIZ_LOG_LEVEL", "TRIZ_LOG_FORMAT",
		"TRIZ_AI_BASE_URL", "TRIZ_AI_API_KEY", "OPENAI_API_KEY",
		"TRIZ_AI_DIAGNOSE_MODEL", "TRIZ_AI_DRAFT_MODEL", "TRIZ_AI_TIMEOUT",
	} {
		t.Setenv(k, "")
	}
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// --- Load ---

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := DefaultConfig()
	want.DataDir = filepath.Join(home, ".triz")
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	if cfg.AI.Enabled() {
		t.Error("AI should be disabled without an API key")
	}
}

func TestLoad_DefaultFile(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".triz", "config.yaml"), `
locale: en-GB
history_limit: 5
principle_ceiling: 40
log:
  level: debug
ai:
  draft_model: big-model
  timeout: 45s
`)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Locale != catalog.English {
		t.Errorf("Locale = %q, want en", cfg.Locale)
	}
	if cfg.HistoryLimit != 5 || cfg.PrincipleCeiling != 40 {
		t.Errorf("limits = %d/%d", cfg.HistoryLimit, cfg.PrincipleCeiling)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.AI.DraftModel != "big-model" || cfg.AI.Timeout != 45*time.Second {
		t.Errorf("ai = %+v", cfg.AI)
	}
	if cfg.AI.DiagnoseModel != DefaultConfig().AI.DiagnoseModel {
		t.Errorf("unset keys should keep defaults, got %q", cfg.AI.DiagnoseModel)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "triz.yaml")
	writeFile(t, path, "history_limit: 5\nlocale: en\n")

	t.Setenv("TRIZ_HISTORY_LIMIT", "7")
	t.Setenv("TRIZ_LOCALE", "ar")
	t.Setenv("TRIZ_DATA_DIR", "/tmp/triz-data")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TRIZ_AI_TIMEOUT", "10s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HistoryLimit != 7 {
		t.Errorf("HistoryLimit = %d, want 7", cfg.HistoryLimit)
	}
	if cfg.Locale != catalog.Arabic {
		t.Errorf("Locale = %q, want ar", cfg.Locale)
	}
	if cfg.DataDir != "/tmp/triz-data" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if !cfg.AI.Enabled() || cfg.AI.Timeout != 10*time.Second {
		t.Errorf("AI = %+v", cfg.AI)
	}
}

func TestLoad_TrizKeyWinsOverOpenAIKey(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", "generic")
	t.Setenv("TRIZ_AI_API_KEY", "specific")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AI.APIKey != "specific" {
		t.Errorf("APIKey = %q, want specific", cfg.AI.APIKey)
	}
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	isolate(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name, key, value, want string
	}{
		{"bad int", "TRIZ_HISTORY_LIMIT", "many", "TRIZ_HISTORY_LIMIT"},
		{"bad locale", "TRIZ_LOCALE", "fr", "TRIZ_LOCALE"},
		{"bad duration", "TRIZ_AI_TIMEOUT", "soon", "TRIZ_AI_TIMEOUT"},
		{"ceiling too high", "TRIZ_PRINCIPLE_CEILING", "41", "principle ceiling"},
		{"zero limit", "TRIZ_HISTORY_LIMIT", "0", "history limit"},
		{"bad level", "TRIZ_LOG_LEVEL", "loud", "log level"},
		{"bad format", "TRIZ_LOG_FORMAT", "xml", "log format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load("")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, path, "history_limit: [oops")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parsing config") {
		t.Errorf("err = %v, want parse error", err)
	}
}

// --- Validate ---

func TestValidate_AIRequiresModelsWhenEnabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AI.APIKey = "k"
	cfg.AI.DraftModel = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty draft model")
	}

	cfg.AI.APIKey = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("models are irrelevant when AI is disabled: %v", err)
	}
}
