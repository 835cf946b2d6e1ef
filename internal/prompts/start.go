// Package prompts implements MCP prompt handlers for the TRIZ server.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// StartPrompt handles the triz-start MCP prompt.
// It walks the AI through one contradiction analysis.
type StartPrompt struct {
	aiEnabled bool
}

// NewStartPrompt creates a StartPrompt. aiEnabled selects between the
// model-assisted and the manual workflow.
func NewStartPrompt(aiEnabled bool) *StartPrompt {
	return &StartPrompt{aiEnabled: aiEnabled}
}

// Definition returns the MCP prompt definition for registration.
func (p *StartPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("triz-start",
		mcp.WithPromptDescription(
			"Solve an engineering problem with TRIZ: identify the technical contradiction, "+
				"look up inventive principles and draft solutions.",
		),
		mcp.WithArgument("problem",
			mcp.ArgumentDescription("The problem: what you want to improve and what gets worse when you do"),
		),
		mcp.WithArgument("lang",
			mcp.ArgumentDescription("Language for answers: 'ar' (default) or 'en'"),
		),
	)
}

// Handle processes the triz-start prompt request.
func (p *StartPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	problem := ""
	lang := "ar"
	if args := req.Params.Arguments; args != nil {
		problem = strings.TrimSpace(args["problem"])
		if l, ok := args["lang"]; ok && l != "" {
			lang = l
		}
	}

	var b strings.Builder
	if problem == "" {
		b.WriteString("I have an engineering problem I want to solve with TRIZ. Ask me to describe it first " +
			"(or offer the samples from `triz_examples`).\n\n")
	} else {
		fmt.Fprintf(&b, "I want to solve this engineering problem with TRIZ:\n\n> %s\n\n", problem)
	}

	b.WriteString("Please:\n")
	if p.aiEnabled {
		fmt.Fprintf(&b,
			"1. Run `triz_analyze` with my problem and lang='%s' to identify the improving and worsening parameters\n"+
				"2. Explain the contradiction and the suggested principles in plain words\n"+
				"3. If I disagree with the diagnosis, use `triz_search_parameters` to find better parameters and `triz_resolve` to re-run the lookup\n"+
				"4. When I'm happy, run `triz_draft` to produce the innovation report; it is saved to history\n",
			lang)
	} else {
		fmt.Fprintf(&b,
			"1. Help me pick the improving and worsening parameters with `triz_search_parameters` or `triz_list_parameters` (lang='%s')\n"+
				"2. Run `triz_resolve` with the two ids; remember the pair is directional\n"+
				"3. Use `triz_get_principle` to explain each suggested principle with examples\n"+
				"4. Brainstorm concrete solutions with me based on those principles\n",
			lang)
	}
	fmt.Fprintf(&b, "\nAnswer in %s.", languageName(lang))

	return &mcp.GetPromptResult{
		Description: "Start a TRIZ analysis",
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(b.String()),
			},
		},
	}, nil
}

func languageName(lang string) string {
	if strings.HasPrefix(strings.ToLower(lang), "en") {
		return "English"
	}
	return "Arabic"
}
