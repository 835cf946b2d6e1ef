package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/triz-master/internal/advisor"
	"github.com/HendryAvila/triz-master/internal/catalog"
	"github.com/HendryAvila/triz-master/internal/report"
)

// aiError turns an advisor failure into a tool error with a hint for the
// common cases.
func aiError(op string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, advisor.ErrAIDisabled):
		return mcp.NewToolResultError(
			"AI features are disabled. Set TRIZ_AI_API_KEY (or OPENAI_API_KEY) and restart the server. " +
				"triz_resolve still works without AI.")
	case errors.Is(err, advisor.ErrEmptyProblem):
		return mcp.NewToolResultError("'problem' is required")
	default:
		return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", op, err))
	}
}

// ─── AnalyzeTool ────────────────────────────────────────────────────────────

// AnalyzeTool handles the triz_analyze MCP tool.
type AnalyzeTool struct {
	svc    *advisor.Service
	locale catalog.Locale
}

// NewAnalyzeTool creates an AnalyzeTool.
func NewAnalyzeTool(svc *advisor.Service, def catalog.Locale) *AnalyzeTool {
	return &AnalyzeTool{svc: svc, locale: def}
}

// Definition returns the MCP tool definition for triz_analyze.
func (t *AnalyzeTool) Definition() mcp.Tool {
	return mcp.NewTool("triz_analyze",
		mcp.WithDescription(
			"Identify the technical contradiction in a free-text problem with the configured language model, "+
				"then resolve it into inventive principles. Requires an AI API key.",
		),
		mcp.WithString("problem",
			mcp.Required(),
			mcp.Description("Problem statement: what you want to improve and what gets worse"),
		),
		withLang(),
	)
}

// Handle processes the triz_analyze tool call.
func (t *AnalyzeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	loc, err := localeArg(req, t.locale)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a, err := t.svc.Analyze(ctx, req.GetString("problem", ""), loc)
	if err != nil {
		return aiError("analysis", err), nil
	}

	var b strings.Builder
	formatAnalysis(&b, a)
	b.WriteString("\nCall triz_draft with the same problem to generate an innovation report.\n")
	return mcp.NewToolResultText(b.String()), nil
}

// ─── DraftTool ──────────────────────────────────────────────────────────────

// DraftTool handles the triz_draft MCP tool.
type DraftTool struct {
	svc    *advisor.Service
	locale catalog.Locale
}

// NewDraftTool creates a DraftTool.
func NewDraftTool(svc *advisor.Service, def catalog.Locale) *DraftTool {
	return &DraftTool{svc: svc, locale: def}
}

// Definition returns the MCP tool definition for triz_draft.
func (t *DraftTool) Definition() mcp.Tool {
	return mcp.NewTool("triz_draft",
		mcp.WithDescription(
			"Draft an innovation report (introduction, solutions with feasibility, action plan) for a problem. "+
				"With 'improving' and 'worsening' the contradiction is taken as given; otherwise it is diagnosed from the problem first. "+
				"The session is saved to history. Requires an AI API key.",
		),
		mcp.WithString("problem",
			mcp.Required(),
			mcp.Description("Problem statement"),
		),
		mcp.WithNumber("improving",
			mcp.Description("Optional id (1-39) of the improving parameter"),
		),
		mcp.WithNumber("worsening",
			mcp.Description("Optional id (1-39) of the worsening parameter"),
		),
		withLang(),
	)
}

// Handle processes the triz_draft tool call.
func (t *DraftTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	loc, err := localeArg(req, t.locale)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	problem := strings.TrimSpace(req.GetString("problem", ""))
	if problem == "" {
		return mcp.NewToolResultError("'problem' is required"), nil
	}

	var a *advisor.Analysis
	improving, hasImp, err := idArg(req, "improving")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	worsening, hasWor, err := idArg(req, "worsening")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	switch {
	case hasImp && hasWor:
		a, err = t.svc.Lookup(improving, worsening, loc)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		a.Problem = problem
	case hasImp || hasWor:
		return mcp.NewToolResultError("provide both 'improving' and 'worsening', or neither"), nil
	default:
		a, err = t.svc.Analyze(ctx, problem, loc)
		if err != nil {
			return aiError("analysis", err), nil
		}
	}

	rep, err := t.svc.Draft(ctx, a)
	if err != nil {
		if errors.Is(err, advisor.ErrNoPrinciples) {
			return mcp.NewToolResultError("no principles resolved for this contradiction; nothing to draft"), nil
		}
		return aiError("draft", err), nil
	}

	var b strings.Builder
	formatAnalysis(&b, a)
	b.WriteString("\n")
	b.WriteString(report.Text(rep, loc))
	return mcp.NewToolResultText(b.String()), nil
}
