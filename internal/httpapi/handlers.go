package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/HendryAvila/triz-master/internal/advisor"
	"github.com/HendryAvila/triz-master/internal/ai"
	"github.com/HendryAvila/triz-master/internal/catalog"
	"github.com/HendryAvila/triz-master/internal/history"
	"github.com/HendryAvila/triz-master/internal/matrix"
	"github.com/HendryAvila/triz-master/internal/report"
)

// ─── Views ──────────────────────────────────────────────────────────────────

type parameterView struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type principleView struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Examples    []string `json:"examples,omitempty"`
}

type exampleView struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type analysisView struct {
	Problem      string          `json:"problem,omitempty"`
	Locale       catalog.Locale  `json:"locale"`
	Improving    parameterView   `json:"improving"`
	Worsening    parameterView   `json:"worsening"`
	Explanation  string          `json:"explanation"`
	Source       matrix.Source   `json:"source"`
	PrincipleIDs []int           `json:"principle_ids"`
	Principles   []principleView `json:"principles"`
	Missing      []int           `json:"missing,omitempty"`
}

type solutionView struct {
	ai.Solution
	Level report.Feasibility `json:"feasibilityLevel"`
}

type reportView struct {
	Introduction string         `json:"introduction"`
	Solutions    []solutionView `json:"solutions"`
	NextSteps    []string       `json:"nextSteps"`
}

type draftResponse struct {
	Analysis analysisView `json:"analysis"`
	Report   reportView   `json:"report"`
}

func newParameterView(p catalog.Parameter, loc catalog.Locale) parameterView {
	return parameterView{ID: p.ID, Name: p.Name.Get(loc)}
}

func newPrincipleView(p catalog.Principle, loc catalog.Locale) principleView {
	v := principleView{ID: p.ID, Name: p.Name.Get(loc), Description: p.Description.Get(loc)}
	for _, ex := range p.Examples {
		v.Examples = append(v.Examples, ex.Get(loc))
	}
	return v
}

func newAnalysisView(a *advisor.Analysis) analysisView {
	v := analysisView{
		Problem:      a.Problem,
		Locale:       a.Locale,
		Improving:    newParameterView(a.Improving, a.Locale),
		Worsening:    newParameterView(a.Worsening, a.Locale),
		Explanation:  a.Explanation,
		Source:       a.Resolution.Source,
		PrincipleIDs: a.PrincipleIDs(),
		Principles:   make([]principleView, 0, len(a.Principles)),
		Missing:      a.Missing,
	}
	if v.PrincipleIDs == nil {
		v.PrincipleIDs = []int{}
	}
	for _, p := range a.Principles {
		v.Principles = append(v.Principles, newPrincipleView(p, a.Locale))
	}
	return v
}

func newReportView(r *ai.Report) reportView {
	v := reportView{Introduction: r.Introduction, NextSteps: r.NextSteps}
	for _, s := range r.Solutions {
		v.Solutions = append(v.Solutions, solutionView{Solution: s, Level: report.ClassifyFeasibility(s.Feasibility)})
	}
	return v
}

// ─── Request helpers ────────────────────────────────────────────────────────

// requestLocale reads ?lang= first, then Accept-Language.
func (rt *Router) requestLocale(r *http.Request) (catalog.Locale, error) {
	if v := r.URL.Query().Get("lang"); v != "" {
		return catalog.ParseLocale(v)
	}
	if h := r.Header.Get("Accept-Language"); h != "" {
		return catalog.MatchAcceptLanguage(h, rt.locale), nil
	}
	return rt.locale, nil
}

// bodyLocale prefers a non-empty lang field in the request body.
func (rt *Router) bodyLocale(r *http.Request, lang string) (catalog.Locale, error) {
	if lang != "" {
		return catalog.ParseLocale(lang)
	}
	return rt.requestLocale(r)
}

func (rt *Router) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, CodeBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	if err := rt.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", strings.ToLower(fe.Field()), fe.Tag()))
			}
			writeError(w, r, http.StatusBadRequest, CodeValidationFailed, strings.Join(msgs, "; "))
			return false
		}
		writeError(w, r, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return false
	}
	return true
}

func queryInt(r *http.Request, key string) (int, bool, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, true, fmt.Errorf("%s must be an integer", key)
	}
	return n, true, nil
}

// ─── Catalog ────────────────────────────────────────────────────────────────

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"version":    rt.version,
		"ai_enabled": rt.svc.AIEnabled(),
		"history":    rt.store != nil,
	})
}

func (rt *Router) handleParameters(w http.ResponseWriter, r *http.Request) {
	loc, err := rt.requestLocale(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	params := rt.catalog.Parameters()
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		params = rt.catalog.SearchParameters(q, loc)
	}
	out := make([]parameterView, 0, len(params))
	for _, p := range params {
		out = append(out, newParameterView(p, loc))
	}
	writeJSON(w, http.StatusOK, out)
}

func (rt *Router) handlePrinciples(w http.ResponseWriter, r *http.Request) {
	loc, err := rt.requestLocale(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	principles := rt.catalog.Principles()
	out := make([]principleView, 0, len(principles))
	for _, p := range principles {
		out = append(out, newPrincipleView(p, loc))
	}
	writeJSON(w, http.StatusOK, out)
}

func (rt *Router) handlePrinciple(w http.ResponseWriter, r *http.Request) {
	loc, err := rt.requestLocale(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, CodeBadRequest, "principle id must be an integer")
		return
	}
	p, ok := rt.catalog.Principle(id)
	if !ok {
		writeError(w, r, http.StatusNotFound, CodeNotFound, fmt.Sprintf("principle %d is not in the catalog", id))
		return
	}
	writeJSON(w, http.StatusOK, newPrincipleView(p, loc))
}

func (rt *Router) handleExamples(w http.ResponseWriter, r *http.Request) {
	loc, err := rt.requestLocale(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	examples := rt.catalog.Examples()
	out := make([]exampleView, 0, len(examples))
	for _, ex := range examples {
		out = append(out, exampleView{Title: ex.Title.Get(loc), Description: ex.Description.Get(loc)})
	}
	writeJSON(w, http.StatusOK, out)
}

// ─── Resolve / analyze / draft ──────────────────────────────────────────────

func (rt *Router) handleResolve(w http.ResponseWriter, r *http.Request) {
	loc, err := rt.requestLocale(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	improving, ok1, err1 := queryInt(r, "improving")
	worsening, ok2, err2 := queryInt(r, "worsening")
	if err := errors.Join(err1, err2); err != nil {
		writeError(w, r, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	if !ok1 || !ok2 {
		writeError(w, r, http.StatusBadRequest, CodeValidationFailed, "improving and worsening are required")
		return
	}

	a, err := rt.svc.Lookup(improving, worsening, loc)
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAnalysisView(a))
}

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	Problem string `json:"problem" validate:"required"`
	Lang    string `json:"lang,omitempty" validate:"omitempty,oneof=ar en"`
}

func (rt *Router) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var body AnalyzeRequest
	if !rt.decode(w, r, &body) {
		return
	}
	loc, err := rt.bodyLocale(r, body.Lang)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	a, err := rt.svc.Analyze(r.Context(), body.Problem, loc)
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAnalysisView(a))
}

// DraftRequest is the body of POST /api/draft. Without parameter ids the
// contradiction is diagnosed from the problem first.
type DraftRequest struct {
	Problem   string `json:"problem" validate:"required"`
	Improving int    `json:"improving,omitempty" validate:"omitempty,min=1,max=39"`
	Worsening int    `json:"worsening,omitempty" validate:"omitempty,min=1,max=39"`
	Lang      string `json:"lang,omitempty" validate:"omitempty,oneof=ar en"`
}

func (rt *Router) handleDraft(w http.ResponseWriter, r *http.Request) {
	var body DraftRequest
	if !rt.decode(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Problem) == "" {
		rt.writeServiceError(w, r, advisor.ErrEmptyProblem)
		return
	}
	if (body.Improving == 0) != (body.Worsening == 0) {
		writeError(w, r, http.StatusBadRequest, CodeValidationFailed, "provide both improving and worsening, or neither")
		return
	}
	loc, err := rt.bodyLocale(r, body.Lang)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	var a *advisor.Analysis
	if body.Improving != 0 {
		a, err = rt.svc.Lookup(body.Improving, body.Worsening, loc)
		if err == nil {
			a.Problem = strings.TrimSpace(body.Problem)
		}
	} else {
		a, err = rt.svc.Analyze(r.Context(), body.Problem, loc)
	}
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}

	rep, err := rt.svc.Draft(r.Context(), a)
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draftResponse{Analysis: newAnalysisView(a), Report: newReportView(rep)})
}

// ─── History ────────────────────────────────────────────────────────────────

func (rt *Router) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	limit, _, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	var sessions []history.Session
	if q := r.URL.Query().Get("q"); q != "" {
		sessions, err = rt.store.Search(q, limit)
	} else {
		sessions, err = rt.store.List(limit)
	}
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	if sessions == nil {
		sessions = []history.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (rt *Router) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	n, err := rt.store.Clear()
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (rt *Router) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	sess, err := rt.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (rt *Router) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	if err := rt.store.Delete(chi.URLParam(r, "id")); err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) handleHistoryReport(w http.ResponseWriter, r *http.Request) {
	sess, err := rt.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	page, err := report.HTML(report.NewDocument(rt.catalog, *sess))
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(page))
}
