package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// ReviewPrompt handles the triz-review MCP prompt.
// It instructs the AI to summarize past analyses from history.
type ReviewPrompt struct{}

// NewReviewPrompt creates a ReviewPrompt.
func NewReviewPrompt() *ReviewPrompt {
	return &ReviewPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *ReviewPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("triz-review",
		mcp.WithPromptDescription(
			"Review past TRIZ sessions: recurring contradictions, principles used "+
				"and which reports are worth revisiting.",
		),
	)
}

// Handle processes the triz-review prompt request.
func (p *ReviewPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "TRIZ history review",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please run `triz_history_list` to load my saved TRIZ sessions.\n\n" +
						"Then:\n" +
						"1. Group the sessions by contradiction (improving/worsening pair)\n" +
						"2. Point out principles that keep coming up\n" +
						"3. For sessions with a report, open them with `triz_history_get` and list the high-feasibility solutions\n" +
						"4. Suggest which problem I should revisit next and why",
				),
			},
		},
	}, nil
}
