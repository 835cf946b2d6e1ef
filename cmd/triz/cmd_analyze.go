package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/triz-master/internal/advisor"
	"github.com/HendryAvila/triz-master/internal/report"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var draft bool

	cmd := &cobra.Command{
		Use:   "analyze PROBLEM",
		Short: "Diagnose a problem statement with the language model",
		Long: `Asks the configured model to identify the improving and worsening parameters
of a free-text problem, then resolves them against the matrix. With --draft
it also writes an innovation report and saves the session to history.

Requires TRIZ_AI_API_KEY (or OPENAI_API_KEY).`,
		Example: `  triz analyze "The engine must be more powerful without getting heavier" --draft`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := opts.app(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			problem := strings.Join(args, " ")
			loc := app.Locale()
			ctx := cmd.Context()

			a, err := app.Advisor.Analyze(ctx, problem, loc)
			if err != nil {
				return explainAIError(err)
			}
			out := cmd.OutOrStdout()
			printAnalysis(out, a)

			if !draft {
				return nil
			}
			rep, err := app.Advisor.Draft(ctx, a)
			if err != nil {
				return explainAIError(err)
			}
			fmt.Fprintln(out)
			fmt.Fprint(out, report.Text(rep, loc))
			if app.History == nil {
				warnf(cmd.ErrOrStderr(), "History is not available; this session was not saved.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&draft, "draft", false, "also draft an innovation report")
	return cmd
}

func explainAIError(err error) error {
	switch {
	case errors.Is(err, advisor.ErrAIDisabled):
		return fmt.Errorf("%w\nSet TRIZ_AI_API_KEY (or OPENAI_API_KEY); 'triz resolve' works without it", err)
	case errors.Is(err, advisor.ErrNoPrinciples):
		return fmt.Errorf("%w: the matrix has no described principle for this contradiction", err)
	default:
		return err
	}
}
