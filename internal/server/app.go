package server

import (
	"fmt"
	"log/slog"

	"github.com/HendryAvila/triz-master/internal/advisor"
	"github.com/HendryAvila/triz-master/internal/ai"
	"github.com/HendryAvila/triz-master/internal/catalog"
	"github.com/HendryAvila/triz-master/internal/config"
	"github.com/HendryAvila/triz-master/internal/history"
	"github.com/HendryAvila/triz-master/internal/logging"
	"github.com/HendryAvila/triz-master/internal/matrix"
	"github.com/HendryAvila/triz-master/internal/metrics"
)

// App holds the resolved dependencies shared by every surface.
type App struct {
	Config  *config.Config
	Catalog *catalog.Catalog
	Advisor *advisor.Service
	Metrics *metrics.Metrics
	Logger  *slog.Logger

	// History is nil when the store could not be opened.
	History *history.Store
}

// Locale is the configured default locale.
func (a *App) Locale() catalog.Locale { return a.Config.Locale }

// analystFactory builds the model client. Tests swap it for a fake.
var analystFactory = func(cfg config.AIConfig, logger *slog.Logger, m *metrics.Metrics) (ai.Analyst, error) {
	return ai.NewClient(ai.Config{
		BaseURL:       cfg.BaseURL,
		APIKey:        cfg.APIKey,
		DiagnoseModel: cfg.DiagnoseModel,
		DraftModel:    cfg.DraftModel,
		Timeout:       cfg.Timeout,
	}, ai.WithLogger(logger), ai.WithObserver(m.ObserveAI))
}

// NewApp resolves all dependencies from cfg.
//
// History and AI are optional: when either fails to initialize the app
// still works for manual lookups, and the failure is logged. The returned
// cleanup is always non-nil and closes the history store.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, func(), error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, noop, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = logging.Discard()
	}

	cat := catalog.Default()
	m := metrics.New()

	opts := []advisor.Option{
		advisor.WithMetrics(m),
		advisor.WithLogger(logging.Component(logger, "advisor")),
	}

	if cfg.AI.Enabled() {
		analyst, err := analystFactory(cfg.AI, logging.Component(logger, "ai"), m)
		if err != nil {
			logger.Warn("AI disabled: client init failed", "error", err)
		} else {
			opts = append(opts, advisor.WithAnalyst(analyst))
		}
	} else {
		logger.Info("AI disabled: no API key configured")
	}

	cleanup := noop
	store, err := history.New(history.Config{
		DataDir: cfg.DataDir,
		Limit:   cfg.HistoryLimit,
	})
	if err != nil {
		logger.Warn("history disabled", "error", err)
		store = nil
	} else {
		opts = append(opts, advisor.WithHistory(store))
		cleanup = func() {
			if err := store.Close(); err != nil {
				logger.Warn("closing history store", "error", err)
			}
		}
	}

	app := &App{
		Config:  cfg,
		Catalog: cat,
		Advisor: advisor.New(cat, matrix.FromCatalog(cat, cfg.PrincipleCeiling), opts...),
		Metrics: m,
		Logger:  logger,
		History: store,
	}
	return app, cleanup, nil
}

// noop is the default cleanup when history is disabled.
func noop() {}
