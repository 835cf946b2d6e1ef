// Package httpapi exposes the resolver, the AI workbench and the history
// over a local JSON API for a browser front-end.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/HendryAvila/triz-master/internal/advisor"
	"github.com/HendryAvila/triz-master/internal/catalog"
	"github.com/HendryAvila/triz-master/internal/history"
	"github.com/HendryAvila/triz-master/internal/metrics"
)

// maxBodyBytes bounds request bodies; problem statements are short.
const maxBodyBytes = 1 << 20

// Deps are the components the API serves. History and Metrics may be nil.
type Deps struct {
	Advisor *advisor.Service
	History *history.Store
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	Locale  catalog.Locale
	Version string
}

// Router is the HTTP API.
type Router struct {
	svc      *advisor.Service
	catalog  *catalog.Catalog
	store    *history.Store
	metrics  *metrics.Metrics
	logger   *slog.Logger
	locale   catalog.Locale
	version  string
	validate *validator.Validate
	mux      *chi.Mux
}

// NewRouter creates the router with middleware and routes.
func NewRouter(d Deps) *Router {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Locale == "" {
		d.Locale = catalog.DefaultLocale
	}
	rt := &Router{
		svc:      d.Advisor,
		catalog:  d.Advisor.Catalog(),
		store:    d.History,
		metrics:  d.Metrics,
		logger:   d.Logger,
		locale:   d.Locale,
		version:  d.Version,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		mux:      chi.NewRouter(),
	}
	rt.setupMiddleware()
	rt.setupRoutes()
	return rt
}

// Handler returns the HTTP handler.
func (rt *Router) Handler() http.Handler {
	return rt.mux
}

func (rt *Router) setupMiddleware() {
	rt.mux.Use(chimiddleware.RequestID)
	rt.mux.Use(chimiddleware.Recoverer)
	rt.mux.Use(chimiddleware.RequestSize(maxBodyBytes))
	rt.mux.Use(rt.observe)
}

func (rt *Router) setupRoutes() {
	rt.mux.Get("/healthz", rt.handleHealth)
	rt.mux.Method(http.MethodGet, "/metrics", rt.metrics.Handler())

	rt.mux.Route("/api", func(r chi.Router) {
		r.Get("/parameters", rt.handleParameters)
		r.Get("/principles", rt.handlePrinciples)
		r.Get("/principles/{id}", rt.handlePrinciple)
		r.Get("/examples", rt.handleExamples)
		r.Get("/resolve", rt.handleResolve)
		r.Post("/analyze", rt.handleAnalyze)
		r.Post("/draft", rt.handleDraft)

		r.Route("/history", func(r chi.Router) {
			r.Use(rt.requireHistory)
			r.Get("/", rt.handleHistoryList)
			r.Delete("/", rt.handleHistoryClear)
			r.Get("/{id}", rt.handleHistoryGet)
			r.Delete("/{id}", rt.handleHistoryDelete)
			r.Get("/{id}/report", rt.handleHistoryReport)
		})
	})

	rt.mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, CodeNotFound, "no such route")
	})
	rt.mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})
}

// observe logs each request and records it in the metrics, labelled by
// route pattern rather than raw path to keep cardinality bounded.
func (rt *Router) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		elapsed := time.Since(start)
		rt.metrics.ObserveHTTP(route, r.Method, status, elapsed)
		rt.logger.Debug("http request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", elapsed,
			"request_id", chimiddleware.GetReqID(r.Context()))
	})
}

func (rt *Router) requireHistory(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rt.store == nil {
			writeError(w, r, http.StatusServiceUnavailable, CodeHistoryDisabled, "history is not available")
			return
		}
		next.ServeHTTP(w, r)
	})
}
