package server

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/HendryAvila/triz-master/internal/ai"
	"github.com/HendryAvila/triz-master/internal/config"
	"github.com/HendryAvila/triz-master/internal/metrics"
)

type nopAnalyst struct{}

func (nopAnalyst) Diagnose(context.Context, ai.DiagnoseRequest) (*ai.Diagnosis, error) {
	return &ai.Diagnosis{ImprovingID: 1, WorseningID: 10, Explanation: "x"}, nil
}

func (nopAnalyst) Draft(context.Context, ai.DraftRequest) (*ai.Report, error) {
	return &ai.Report{}, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	return cfg
}

func stubAnalyst(t *testing.T, err error) {
	t.Helper()
	orig := analystFactory
	analystFactory = func(config.AIConfig, *slog.Logger, *metrics.Metrics) (ai.Analyst, error) {
		if err != nil {
			return nil, err
		}
		return nopAnalyst{}, nil
	}
	t.Cleanup(func() { analystFactory = orig })
}

func toolNames(t *testing.T, app *App) []string {
	t.Helper()
	var names []string
	for name := range New(app).ListTools() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func TestNewApp_AllFeatures(t *testing.T) {
	stubAnalyst(t, nil)
	cfg := testConfig(t)
	cfg.AI.APIKey = "key"

	app, cleanup, err := NewApp(cfg, nil)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	defer cleanup()

	if app.History == nil {
		t.Fatal("history store should be open")
	}
	if !app.Advisor.AIEnabled() {
		t.Error("AI should be enabled when a key is configured")
	}
	if got := app.Advisor.Resolver().Ceiling(); got != app.Catalog.MaxPrincipleID() {
		t.Errorf("ceiling = %d, want catalog max %d", got, app.Catalog.MaxPrincipleID())
	}
	if _, err := os.Stat(filepath.Join(cfg.DataDir, "history.db")); err != nil {
		t.Errorf("history.db not created: %v", err)
	}

	want := []string{
		"triz_analyze",
		"triz_draft",
		"triz_examples",
		"triz_get_principle",
		"triz_history_clear",
		"triz_history_delete",
		"triz_history_get",
		"triz_history_list",
		"triz_history_search",
		"triz_list_parameters",
		"triz_resolve",
		"triz_search_parameters",
	}
	if diff := cmp.Diff(want, toolNames(t, app)); diff != "" {
		t.Errorf("registered tools mismatch (-want +got):\n%s", diff)
	}
}

func TestNewApp_WithoutHistory(t *testing.T) {
	cfg := testConfig(t)
	// A regular file where the data directory should be.
	blocker := filepath.Join(cfg.DataDir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg.DataDir = filepath.Join(blocker, "nested")

	app, cleanup, err := NewApp(cfg, nil)
	if err != nil {
		t.Fatalf("NewApp should degrade, not fail: %v", err)
	}
	defer cleanup()

	if app.History != nil {
		t.Fatal("history should be disabled")
	}
	if slices.Contains(toolNames(t, app), "triz_history_list") {
		t.Error("history tools registered without a store")
	}
}

func TestNewApp_AIClientFailure(t *testing.T) {
	stubAnalyst(t, errors.New("boom"))
	cfg := testConfig(t)
	cfg.AI.APIKey = "key"

	app, cleanup, err := NewApp(cfg, nil)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	defer cleanup()

	if app.Advisor.AIEnabled() {
		t.Error("AI should be disabled after client init failure")
	}
	// AI tools stay registered and report the error themselves.
	if !slices.Contains(toolNames(t, app), "triz_analyze") {
		t.Error("triz_analyze should still be registered")
	}
}

func TestNewApp_NoKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.AI.APIKey = ""

	app, cleanup, err := NewApp(cfg, nil)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	defer cleanup()
	if app.Advisor.AIEnabled() {
		t.Error("AI should be disabled without a key")
	}
}

func TestNewApp_CustomCeiling(t *testing.T) {
	cfg := testConfig(t)
	cfg.PrincipleCeiling = 40

	app, cleanup, err := NewApp(cfg, nil)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	defer cleanup()
	if got := app.Advisor.Resolver().Ceiling(); got != 40 {
		t.Errorf("ceiling = %d, want 40", got)
	}
}

func TestNewApp_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.HistoryLimit = 0

	if _, cleanup, err := NewApp(cfg, nil); err == nil {
		cleanup()
		t.Fatal("expected validation error")
	}
}

func TestServerInstructions(t *testing.T) {
	got := serverInstructions()
	for _, want := range []string{"triz_resolve", "triz_draft", "triz-start"} {
		if !strings.Contains(got, want) {
			t.Errorf("instructions should mention %q", want)
		}
	}
}
