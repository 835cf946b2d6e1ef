// Package server wires the TRIZ components and creates the MCP server.
//
// This is the composition root: it builds the concrete catalog, resolver,
// analyst and history store once and injects them into the tools, prompts
// and resources. No business logic lives here, only wiring.
package server

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/HendryAvila/triz-master/internal/history"
	"github.com/HendryAvila/triz-master/internal/prompts"
	"github.com/HendryAvila/triz-master/internal/resources"
	"github.com/HendryAvila/triz-master/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates the MCP server with all tools, prompts and resources
// registered against app.
func New(app *App) *server.MCPServer {
	s := server.NewMCPServer(
		"triz-master",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	svc := app.Advisor
	cat := app.Catalog
	loc := app.Locale()

	// --- Catalog and matrix ---

	listParams := tools.NewListParametersTool(cat, loc)
	s.AddTool(listParams.Definition(), listParams.Handle)

	searchParams := tools.NewSearchParametersTool(cat, loc)
	s.AddTool(searchParams.Definition(), searchParams.Handle)

	getPrinciple := tools.NewGetPrincipleTool(cat, loc)
	s.AddTool(getPrinciple.Definition(), getPrinciple.Handle)

	resolveTool := tools.NewResolveTool(svc, loc)
	s.AddTool(resolveTool.Definition(), resolveTool.Handle)

	examplesTool := tools.NewExamplesTool(cat, loc)
	s.AddTool(examplesTool.Definition(), examplesTool.Handle)

	// --- AI-assisted ---
	// Registered even when AI is disabled so the client gets a clear
	// error instead of a missing tool.

	analyzeTool := tools.NewAnalyzeTool(svc, loc)
	s.AddTool(analyzeTool.Definition(), analyzeTool.Handle)

	draftTool := tools.NewDraftTool(svc, loc)
	s.AddTool(draftTool.Definition(), draftTool.Handle)

	// --- History (optional) ---

	if app.History != nil {
		registerHistoryTools(s, app)
	}

	// --- Prompts ---

	startPrompt := prompts.NewStartPrompt(svc.AIEnabled())
	s.AddPrompt(startPrompt.Definition(), startPrompt.Handle)

	reviewPrompt := prompts.NewReviewPrompt()
	s.AddPrompt(reviewPrompt.Definition(), reviewPrompt.Handle)

	// --- Resources ---

	rh := resources.NewHandler(cat)
	s.AddResource(rh.ParametersResource(), rh.HandleParameters)
	s.AddResource(rh.PrinciplesResource(), rh.HandlePrinciples)
	s.AddResource(rh.MatrixResource(), rh.HandleMatrix)

	return s
}

// registerHistoryTools registers the five history tools.
func registerHistoryTools(s *server.MCPServer, app *App) {
	var store *history.Store = app.History

	list := tools.NewHistoryListTool(store)
	s.AddTool(list.Definition(), list.Handle)

	search := tools.NewHistorySearchTool(store)
	s.AddTool(search.Definition(), search.Handle)

	get := tools.NewHistoryGetTool(store, app.Catalog)
	s.AddTool(get.Definition(), get.Handle)

	del := tools.NewHistoryDeleteTool(store)
	s.AddTool(del.Definition(), del.Handle)

	clear := tools.NewHistoryClearTool(store)
	s.AddTool(clear.Definition(), clear.Handle)
}

// serverInstructions tells the client how to use the tools together.
func serverInstructions() string {
	return `You have access to triz-master, a TRIZ contradiction resolver.

## WHEN TO USE IT

Use triz-master when the user describes an engineering or product problem
where improving one property makes another one worse ("lighter but weaker",
"faster but less accurate", "cheaper but less durable").

## WORKFLOW

1. Frame the contradiction as two of the 39 engineering parameters:
   the one being IMPROVED and the one that WORSENS as a result.
   - Use triz_search_parameters or triz_list_parameters to find the ids.
   - Or call triz_analyze with the problem text to let the model pick them.
2. Call triz_resolve with improving and worsening ids. The direction
   matters: (A, B) and (B, A) are different contradictions.
3. Use triz_get_principle to explain each suggested inventive principle.
4. Call triz_draft to produce concrete solution ideas and an action plan.
   Drafted sessions are saved to the local history.

## RULES

- Never invent principle ids; only use what triz_resolve returns.
- An empty result means no known or inferable principle exists for that
  pair. Say so, and suggest reframing the contradiction.
- Answer in the user's language. Pass lang "ar" for Arabic, "en" for English.
- The triz-start prompt walks through the whole workflow.`
}
