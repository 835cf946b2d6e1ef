package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/triz-master/internal/catalog"
)

// ─── ListParametersTool ─────────────────────────────────────────────────────

// ListParametersTool handles the triz_list_parameters MCP tool.
type ListParametersTool struct {
	catalog *catalog.Catalog
	locale  catalog.Locale
}

// NewListParametersTool creates a ListParametersTool.
func NewListParametersTool(c *catalog.Catalog, def catalog.Locale) *ListParametersTool {
	return &ListParametersTool{catalog: c, locale: def}
}

// Definition returns the MCP tool definition for triz_list_parameters.
func (t *ListParametersTool) Definition() mcp.Tool {
	return mcp.NewTool("triz_list_parameters",
		mcp.WithDescription(
			"List the 39 TRIZ engineering parameters with their ids. "+
				"Use the ids with triz_resolve to look up inventive principles for a contradiction.",
		),
		withLang(),
	)
}

// Handle processes the triz_list_parameters tool call.
func (t *ListParametersTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	loc, err := localeArg(req, t.locale)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var b strings.Builder
	for _, p := range t.catalog.Parameters() {
		fmt.Fprintf(&b, "%s\n", paramLabel(p, loc))
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ─── SearchParametersTool ───────────────────────────────────────────────────

// SearchParametersTool handles the triz_search_parameters MCP tool.
type SearchParametersTool struct {
	catalog *catalog.Catalog
	locale  catalog.Locale
}

// NewSearchParametersTool creates a SearchParametersTool.
func NewSearchParametersTool(c *catalog.Catalog, def catalog.Locale) *SearchParametersTool {
	return &SearchParametersTool{catalog: c, locale: def}
}

// Definition returns the MCP tool definition for triz_search_parameters.
func (t *SearchParametersTool) Definition() mcp.Tool {
	return mcp.NewTool("triz_search_parameters",
		mcp.WithDescription(
			"Find engineering parameters whose name (in the chosen language) contains the term, "+
				"or whose id contains it as digits.",
		),
		mcp.WithString("term",
			mcp.Required(),
			mcp.Description("Name fragment or id, e.g. 'weight', 'سرعة' or '3'"),
		),
		withLang(),
	)
}

// Handle processes the triz_search_parameters tool call.
func (t *SearchParametersTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	term := strings.TrimSpace(req.GetString("term", ""))
	if term == "" {
		return mcp.NewToolResultError("'term' is required"), nil
	}
	loc, err := localeArg(req, t.locale)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	found := t.catalog.SearchParameters(term, loc)
	if len(found) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No parameter matches %q.", term)), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d parameters:\n", len(found))
	for _, p := range found {
		fmt.Fprintf(&b, "%s\n", paramLabel(p, loc))
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ─── GetPrincipleTool ───────────────────────────────────────────────────────

// GetPrincipleTool handles the triz_get_principle MCP tool.
type GetPrincipleTool struct {
	catalog *catalog.Catalog
	locale  catalog.Locale
}

// NewGetPrincipleTool creates a GetPrincipleTool.
func NewGetPrincipleTool(c *catalog.Catalog, def catalog.Locale) *GetPrincipleTool {
	return &GetPrincipleTool{catalog: c, locale: def}
}

// Definition returns the MCP tool definition for triz_get_principle.
func (t *GetPrincipleTool) Definition() mcp.Tool {
	return mcp.NewTool("triz_get_principle",
		mcp.WithDescription(
			"Describe one inventive principle with examples. "+
				"Without an id, list every principle described in this catalog.",
		),
		mcp.WithNumber("id",
			mcp.Description("Principle id (1-40). Omit to list all."),
		),
		withLang(),
	)
}

// Handle processes the triz_get_principle tool call.
func (t *GetPrincipleTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	loc, err := localeArg(req, t.locale)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	id, hasID, err := idArg(req, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !hasID {
		var b strings.Builder
		for _, p := range t.catalog.Principles() {
			fmt.Fprintf(&b, "%d. %s: %s\n", p.ID, p.Name.Get(loc), p.Description.Get(loc))
		}
		return mcp.NewToolResultText(b.String()), nil
	}

	p, ok := t.catalog.Principle(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf(
			"principle %d is not described in this catalog (described: 1-%d)", id, t.catalog.MaxPrincipleID())), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s\n\n%s\n", p.ID, p.Name.Get(loc), p.Description.Get(loc))
	if len(p.Examples) > 0 {
		b.WriteString("\nExamples:\n")
		for _, ex := range p.Examples {
			fmt.Fprintf(&b, "- %s\n", ex.Get(loc))
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ─── ExamplesTool ───────────────────────────────────────────────────────────

// ExamplesTool handles the triz_examples MCP tool.
type ExamplesTool struct {
	catalog *catalog.Catalog
	locale  catalog.Locale
}

// NewExamplesTool creates an ExamplesTool.
func NewExamplesTool(c *catalog.Catalog, def catalog.Locale) *ExamplesTool {
	return &ExamplesTool{catalog: c, locale: def}
}

// Definition returns the MCP tool definition for triz_examples.
func (t *ExamplesTool) Definition() mcp.Tool {
	return mcp.NewTool("triz_examples",
		mcp.WithDescription("Sample problem statements to try with triz_analyze."),
		withLang(),
	)
}

// Handle processes the triz_examples tool call.
func (t *ExamplesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	loc, err := localeArg(req, t.locale)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var b strings.Builder
	for i, ex := range t.catalog.Examples() {
		fmt.Fprintf(&b, "%d. %s\n   %s\n\n", i+1, ex.Title.Get(loc), ex.Description.Get(loc))
	}
	return mcp.NewToolResultText(b.String()), nil
}
