// Package advisor runs one contradiction analysis end to end: manual or
// AI-assisted diagnosis, principle resolution, report drafting and the
// history record.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/HendryAvila/triz-master/internal/ai"
	"github.com/HendryAvila/triz-master/internal/catalog"
	"github.com/HendryAvila/triz-master/internal/history"
	"github.com/HendryAvila/triz-master/internal/matrix"
	"github.com/HendryAvila/triz-master/internal/metrics"
)

var (
	// ErrUnknownParameter means a parameter id is not in the catalog.
	ErrUnknownParameter = errors.New("unknown parameter")
	// ErrEmptyProblem means the problem statement is blank.
	ErrEmptyProblem = errors.New("problem statement is empty")
	// ErrAIDisabled means no model endpoint is configured.
	ErrAIDisabled = errors.New("AI features are disabled: no API key configured")
	// ErrNoPrinciples means there is nothing to draft a report from.
	ErrNoPrinciples = errors.New("no principles to draft a report from")
)

var matrixExplanation = catalog.Text{
	catalog.Arabic:  "تم تحديد المبادئ بناءً على مصفوفة التناقضات المدمجة.",
	catalog.English: "Principles identified based on the built-in contradiction matrix.",
}

// Recorder persists finished sessions.
type Recorder interface {
	Save(history.Session) (*history.Session, error)
}

// Analysis is the outcome of diagnosing and resolving one contradiction.
type Analysis struct {
	Problem     string              `json:"problem,omitempty"`
	Locale      catalog.Locale      `json:"locale"`
	Improving   catalog.Parameter   `json:"improving"`
	Worsening   catalog.Parameter   `json:"worsening"`
	Explanation string              `json:"explanation"`
	Resolution  matrix.Resolution   `json:"resolution"`
	Principles  []catalog.Principle `json:"principles"`
	// Missing lists resolved ids the catalog has no principle for.
	Missing []int `json:"missing,omitempty"`
}

// PrincipleIDs returns the resolved ids in resolver order.
func (a *Analysis) PrincipleIDs() []int {
	return a.Resolution.Principles
}

// Service orchestrates the catalog, the resolver, the optional analyst and
// the optional history.
type Service struct {
	catalog  *catalog.Catalog
	resolver *matrix.Resolver
	analyst  ai.Analyst
	history  Recorder
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithAnalyst enables the AI-assisted paths.
func WithAnalyst(a ai.Analyst) Option {
	return func(s *Service) { s.analyst = a }
}

// WithHistory records drafted sessions.
func WithHistory(r Recorder) Option {
	return func(s *Service) { s.history = r }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a Service.
func New(c *catalog.Catalog, r *matrix.Resolver, opts ...Option) *Service {
	s := &Service{catalog: c, resolver: r, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the reference data the service resolves against.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// Resolver returns the underlying resolver.
func (s *Service) Resolver() *matrix.Resolver { return s.resolver }

// AIEnabled reports whether an analyst is configured.
func (s *Service) AIEnabled() bool { return s.analyst != nil }

// Lookup resolves a contradiction the user picked by hand.
func (s *Service) Lookup(improving, worsening int, loc catalog.Locale) (*Analysis, error) {
	a, err := s.resolve(improving, worsening, loc)
	if err != nil {
		return nil, err
	}
	a.Explanation = matrixExplanation.Get(loc)
	return a, nil
}

// Analyze asks the analyst to identify the contradiction in a free-text
// problem, then resolves it.
func (s *Service) Analyze(ctx context.Context, problem string, loc catalog.Locale) (*Analysis, error) {
	problem = strings.TrimSpace(problem)
	if problem == "" {
		return nil, ErrEmptyProblem
	}
	if s.analyst == nil {
		return nil, ErrAIDisabled
	}

	d, err := s.analyst.Diagnose(ctx, ai.DiagnoseRequest{
		Problem:    problem,
		Locale:     loc,
		Parameters: s.catalog.Parameters(),
	})
	if err != nil {
		return nil, fmt.Errorf("diagnose: %w", err)
	}

	a, err := s.resolve(d.ImprovingID, d.WorseningID, loc)
	if err != nil {
		return nil, fmt.Errorf("diagnosis rejected: %w", err)
	}
	a.Problem = problem
	a.Explanation = d.Explanation
	return a, nil
}

// Draft asks the analyst for an innovation report on a resolved analysis
// and records the session in history when the analysis has a problem
// statement. A history failure is logged, not returned: the report is
// still valid.
func (s *Service) Draft(ctx context.Context, a *Analysis) (*ai.Report, error) {
	if a == nil || len(a.Resolution.Principles) == 0 {
		return nil, ErrNoPrinciples
	}
	if s.analyst == nil {
		return nil, ErrAIDisabled
	}

	names, missing := s.catalog.PrincipleNames(a.Resolution.Principles, a.Locale)
	if len(missing) > 0 {
		s.logger.Debug("principles missing from catalog", "ids", missing)
	}
	if len(names) == 0 {
		return nil, ErrNoPrinciples
	}

	rep, err := s.analyst.Draft(ctx, ai.DraftRequest{
		Problem:        a.Problem,
		Locale:         a.Locale,
		PrincipleNames: names,
		Guide:          s.catalog.Principles(),
	})
	if err != nil {
		return nil, fmt.Errorf("draft: %w", err)
	}

	if _, err := s.Record(a, rep); err != nil {
		s.logger.Warn("failed to record session", "error", err)
	}
	return rep, nil
}

// Record saves the analysis and optional report to history. It is a no-op
// without a history store or a problem statement.
func (s *Service) Record(a *Analysis, rep *ai.Report) (*history.Session, error) {
	if s.history == nil || strings.TrimSpace(a.Problem) == "" {
		return nil, nil
	}
	sess, err := s.history.Save(history.Session{
		Locale:      a.Locale,
		Problem:     a.Problem,
		ImprovingID: history.IntPtr(a.Improving.ID),
		WorseningID: history.IntPtr(a.Worsening.ID),
		Explanation: a.Explanation,
		Principles:  a.Resolution.Principles,
		Draft:       rep,
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveHistorySave()
	return sess, nil
}

func (s *Service) resolve(improving, worsening int, loc catalog.Locale) (*Analysis, error) {
	imp, ok := s.catalog.Parameter(improving)
	if !ok {
		return nil, fmt.Errorf("%w: improving parameter %d", ErrUnknownParameter, improving)
	}
	wor, ok := s.catalog.Parameter(worsening)
	if !ok {
		return nil, fmt.Errorf("%w: worsening parameter %d", ErrUnknownParameter, worsening)
	}

	res := s.resolver.ResolveDetailed(improving, worsening)
	s.metrics.ObserveResolution(res)

	a := &Analysis{
		Locale:     loc,
		Improving:  imp,
		Worsening:  wor,
		Resolution: res,
		Principles: []catalog.Principle{},
	}
	for _, id := range res.Principles {
		p, ok := s.catalog.Principle(id)
		if !ok {
			a.Missing = append(a.Missing, id)
			continue
		}
		a.Principles = append(a.Principles, p)
	}

	s.logger.Debug("contradiction resolved",
		"pair", catalog.Pair{Improving: improving, Worsening: worsening}.String(),
		"source", res.Source,
		"principles", res.Principles)
	return a, nil
}
