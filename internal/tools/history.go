package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/triz-master/internal/catalog"
	"github.com/HendryAvila/triz-master/internal/history"
	"github.com/HendryAvila/triz-master/internal/report"
)

// ─── HistoryListTool ────────────────────────────────────────────────────────

// HistoryListTool handles the triz_history_list MCP tool.
type HistoryListTool struct {
	store *history.Store
}

// NewHistoryListTool creates a HistoryListTool.
func NewHistoryListTool(store *history.Store) *HistoryListTool {
	return &HistoryListTool{store: store}
}

// Definition returns the MCP tool definition for triz_history_list.
func (t *HistoryListTool) Definition() mcp.Tool {
	return mcp.NewTool("triz_history_list",
		mcp.WithDescription("List saved analysis sessions, newest first."),
		mcp.WithNumber("limit",
			mcp.Description("Max sessions (default: all kept)"),
		),
	)
}

// Handle processes the triz_history_list tool call.
func (t *HistoryListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, err := t.store.List(intArg(req, "limit", 0))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing history failed: %v", err)), nil
	}
	return mcp.NewToolResultText(formatSessions(sessions, "History is empty.")), nil
}

// ─── HistorySearchTool ──────────────────────────────────────────────────────

// HistorySearchTool handles the triz_history_search MCP tool.
type HistorySearchTool struct {
	store *history.Store
}

// NewHistorySearchTool creates a HistorySearchTool.
func NewHistorySearchTool(store *history.Store) *HistorySearchTool {
	return &HistorySearchTool{store: store}
}

// Definition returns the MCP tool definition for triz_history_search.
func (t *HistorySearchTool) Definition() mcp.Tool {
	return mcp.NewTool("triz_history_search",
		mcp.WithDescription("Full-text search over saved problem statements and explanations."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Keywords; every word must match"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default: 10, max: 20)"),
		),
	)
}

// Handle processes the triz_history_search tool call.
func (t *HistorySearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}
	sessions, err := t.store.Search(query, intArg(req, "limit", 10))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	return mcp.NewToolResultText(formatSessions(sessions, "No sessions found matching your query.")), nil
}

// ─── HistoryGetTool ─────────────────────────────────────────────────────────

// HistoryGetTool handles the triz_history_get MCP tool.
type HistoryGetTool struct {
	store   *history.Store
	catalog *catalog.Catalog
}

// NewHistoryGetTool creates a HistoryGetTool.
func NewHistoryGetTool(store *history.Store, c *catalog.Catalog) *HistoryGetTool {
	return &HistoryGetTool{store: store, catalog: c}
}

// Definition returns the MCP tool definition for triz_history_get.
func (t *HistoryGetTool) Definition() mcp.Tool {
	return mcp.NewTool("triz_history_get",
		mcp.WithDescription("Show one saved session as a Markdown report."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Session id from triz_history_list"),
		),
	)
}

// Handle processes the triz_history_get tool call.
func (t *HistoryGetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	sess, err := t.store.Get(id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("session %s not found", id)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("loading session failed: %v", err)), nil
	}
	return mcp.NewToolResultText(report.Markdown(report.NewDocument(t.catalog, *sess))), nil
}

// ─── HistoryDeleteTool ──────────────────────────────────────────────────────

// HistoryDeleteTool handles the triz_history_delete MCP tool.
type HistoryDeleteTool struct {
	store *history.Store
}

// NewHistoryDeleteTool creates a HistoryDeleteTool.
func NewHistoryDeleteTool(store *history.Store) *HistoryDeleteTool {
	return &HistoryDeleteTool{store: store}
}

// Definition returns the MCP tool definition for triz_history_delete.
func (t *HistoryDeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("triz_history_delete",
		mcp.WithDescription("Delete one saved session."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Session id to delete"),
		),
	)
}

// Handle processes the triz_history_delete tool call.
func (t *HistoryDeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	if err := t.store.Delete(id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete session: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Session %s deleted", id)), nil
}

// ─── HistoryClearTool ───────────────────────────────────────────────────────

// HistoryClearTool handles the triz_history_clear MCP tool.
type HistoryClearTool struct {
	store *history.Store
}

// NewHistoryClearTool creates a HistoryClearTool.
func NewHistoryClearTool(store *history.Store) *HistoryClearTool {
	return &HistoryClearTool{store: store}
}

// Definition returns the MCP tool definition for triz_history_clear.
func (t *HistoryClearTool) Definition() mcp.Tool {
	return mcp.NewTool("triz_history_clear",
		mcp.WithDescription("Delete every saved session. Requires confirm=true."),
		mcp.WithBoolean("confirm",
			mcp.Required(),
			mcp.Description("Must be true; guards against accidental wipes"),
		),
	)
}

// Handle processes the triz_history_clear tool call.
func (t *HistoryClearTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !boolArg(req, "confirm", false) {
		return mcp.NewToolResultError("set confirm=true to clear the whole history"), nil
	}
	n, err := t.store.Clear()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to clear history: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Cleared %d sessions", n)), nil
}

func formatSessions(sessions []history.Session, empty string) string {
	if len(sessions) == 0 {
		return empty
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d sessions:\n\n", len(sessions))
	for i, s := range sessions {
		formatSessionLine(&b, i, s)
	}
	return b.String()
}
