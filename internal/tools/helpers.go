// Package tools implements the MCP tool handlers of the TRIZ server.
//
// Each tool follows the same shape:
//   - a struct holding its dependencies, injected via constructor
//   - Definition() returns the mcp.Tool schema
//   - Handle() processes the request and returns a result
//
// Domain failures are returned as tool errors (mcp.NewToolResultError), never
// as Go errors, so the client sees the message instead of a protocol fault.
package tools

import (
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/triz-master/internal/advisor"
	"github.com/HendryAvila/triz-master/internal/catalog"
	"github.com/HendryAvila/triz-master/internal/history"
)

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// idArg reads a catalog id. ok is false when the key is absent; a value
// that is not a whole number is an error rather than being truncated.
func idArg(req mcp.CallToolRequest, key string) (id int, ok bool, err error) {
	raw, present := req.GetArguments()[key]
	if !present || raw == nil {
		return 0, false, nil
	}
	v, isNum := raw.(float64)
	if !isNum || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, true, fmt.Errorf("'%s' must be a whole number, got %v", key, raw)
	}
	return int(v), true, nil
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// localeArg reads the optional "lang" argument.
func localeArg(req mcp.CallToolRequest, def catalog.Locale) (catalog.Locale, error) {
	s := req.GetString("lang", "")
	if s == "" {
		return def, nil
	}
	return catalog.ParseLocale(s)
}

// withLang is the shared "lang" parameter option.
func withLang() mcp.ToolOption {
	return mcp.WithString("lang",
		mcp.Description("Response language: ar (default) or en"),
		mcp.Enum("ar", "en"),
	)
}

func paramLabel(p catalog.Parameter, loc catalog.Locale) string {
	return fmt.Sprintf("%d. %s", p.ID, p.Name.Get(loc))
}

// formatAnalysis renders an analysis for an MCP client.
func formatAnalysis(b *strings.Builder, a *advisor.Analysis) {
	loc := a.Locale
	fmt.Fprintf(b, "Contradiction: improving %s / worsening %s\n",
		paramLabel(a.Improving, loc), paramLabel(a.Worsening, loc))
	fmt.Fprintf(b, "Source: %s\n", a.Resolution.Source)
	if a.Explanation != "" {
		fmt.Fprintf(b, "Explanation: %s\n", a.Explanation)
	}

	if a.Resolution.Empty() {
		b.WriteString("\nNo known or inferable principle for this contradiction.\n")
		return
	}
	fmt.Fprintf(b, "\nPrinciples %v:\n", a.Resolution.Principles)
	for _, p := range a.Principles {
		fmt.Fprintf(b, "  %d. %s: %s\n", p.ID, p.Name.Get(loc), p.Description.Get(loc))
	}
	if len(a.Missing) > 0 {
		fmt.Fprintf(b, "Not described in this catalog: %v\n", a.Missing)
	}
}

// formatSessionLine renders one history row.
func formatSessionLine(b *strings.Builder, i int, s history.Session) {
	pair := "-"
	if s.ImprovingID != nil && s.WorseningID != nil {
		pair = fmt.Sprintf("%d→%d", *s.ImprovingID, *s.WorseningID)
	}
	draft := ""
	if s.Draft != nil {
		draft = " | report"
	}
	fmt.Fprintf(b, "[%d] %s (%s, %s)\n    %s\n    pair %s | principles %v%s\n\n",
		i+1, s.ID, s.CreatedAt.Format("2006-01-02 15:04"), s.Locale,
		truncate(s.Problem, 200), pair, s.Principles, draft)
}

// truncate shortens s to max runes, appending "..." when cut.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
