package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/triz-master/internal/advisor"
	"github.com/HendryAvila/triz-master/internal/catalog"
	"github.com/HendryAvila/triz-master/internal/matrix"
)

// ResolveTool handles the triz_resolve MCP tool.
type ResolveTool struct {
	svc    *advisor.Service
	locale catalog.Locale
}

// NewResolveTool creates a ResolveTool.
func NewResolveTool(svc *advisor.Service, def catalog.Locale) *ResolveTool {
	return &ResolveTool{svc: svc, locale: def}
}

// Definition returns the MCP tool definition for triz_resolve.
func (t *ResolveTool) Definition() mcp.Tool {
	return mcp.NewTool("triz_resolve",
		mcp.WithDescription(
			"Resolve a technical contradiction into inventive principles using the contradiction matrix. "+
				"The pair is directional: (improving=A, worsening=B) and (improving=B, worsening=A) are different contradictions. "+
				"Pairs without a curated entry get a deterministic fallback suggestion.",
		),
		mcp.WithNumber("improving",
			mcp.Required(),
			mcp.Description("Id (1-39) of the parameter being improved"),
		),
		mcp.WithNumber("worsening",
			mcp.Required(),
			mcp.Description("Id (1-39) of the parameter that worsens as a result"),
		),
		mcp.WithBoolean("explain",
			mcp.Description("Also show the raw fallback candidates before filtering"),
		),
		withLang(),
	)
}

// Handle processes the triz_resolve tool call.
func (t *ResolveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	improving, hasImp, err := idArg(req, "improving")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	worsening, hasWor, err := idArg(req, "worsening")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !hasImp || !hasWor {
		return mcp.NewToolResultError("'improving' and 'worsening' are required"), nil
	}
	loc, err := localeArg(req, t.locale)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	a, err := t.svc.Lookup(improving, worsening, loc)
	if err != nil {
		if errors.Is(err, advisor.ErrUnknownParameter) {
			return mcp.NewToolResultError(fmt.Sprintf("%v (valid ids: 1-%d)", err, catalog.ParameterCount)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("resolve failed: %v", err)), nil
	}

	var b strings.Builder
	formatAnalysis(&b, a)
	if boolArg(req, "explain", false) {
		fmt.Fprintf(&b, "\nFallback candidates %v, ceiling %d\n",
			matrix.Candidates(improving, worsening), t.svc.Resolver().Ceiling())
	}
	return mcp.NewToolResultText(b.String()), nil
}
