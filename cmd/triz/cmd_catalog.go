package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/triz-master/internal/matrix"
)

func parseID(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, s)
	}
	return n, nil
}

func newResolveCmd(opts *rootOptions) *cobra.Command {
	var explain bool

	cmd := &cobra.Command{
		Use:   "resolve IMPROVING WORSENING",
		Short: "Look up the inventive principles for a contradiction",
		Long: `Resolves the contradiction "improving IMPROVING makes WORSENING worse" against
the contradiction matrix. Direction matters: "resolve 1 10" and "resolve 10 1"
are different questions.`,
		Example: "  triz resolve 1 10\n  triz resolve 20 20 --explain",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			improving, err := parseID("IMPROVING", args[0])
			if err != nil {
				return err
			}
			worsening, err := parseID("WORSENING", args[1])
			if err != nil {
				return err
			}

			app, cleanup, err := opts.app(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			a, err := app.Advisor.Lookup(improving, worsening, app.Locale())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printAnalysis(out, a)

			if explain && a.Resolution.Source == matrix.SourceFallback {
				fmt.Fprintf(out, "\nNo curated entry for (%d, %d). Fallback candidates %v, ceiling %d.\n",
					improving, worsening, matrix.Candidates(improving, worsening), app.Advisor.Resolver().Ceiling())
			}
			if len(a.Missing) > 0 {
				warnf(cmd.ErrOrStderr(), "Principles %v are not described in this catalog.", a.Missing)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&explain, "explain", false, "show the raw fallback candidates when no curated entry exists")
	return cmd
}

func newParamsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "params [TERM]",
		Short: "List the 39 engineering parameters, or search them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := opts.app(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			loc := app.Locale()
			params := app.Catalog.Parameters()
			if len(args) == 1 {
				params = app.Catalog.SearchParameters(args[0], loc)
				if len(params) == 0 {
					warnf(cmd.ErrOrStderr(), "No parameter matches %q.", args[0])
					return nil
				}
			}
			render(cmd.OutOrStdout(), parametersTable(params, loc))
			return nil
		},
	}
}

func newPrincipleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "principle ID",
		Short: "Show an inventive principle with examples",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("ID", args[0])
			if err != nil {
				return err
			}
			app, cleanup, err := opts.app(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			p, ok := app.Catalog.Principle(id)
			if !ok {
				return fmt.Errorf("principle %d is not described in this catalog (described: 1-%d)", id, app.Catalog.MaxPrincipleID())
			}
			loc := app.Locale()
			out := cmd.OutOrStdout()
			heading(out, fmt.Sprintf("%d. %s", p.ID, p.Name.Get(loc)))
			fmt.Fprintf(out, "\n%s\n", p.Description.Get(loc))
			if len(p.Examples) > 0 {
				fmt.Fprintln(out)
				for _, ex := range p.Examples {
					fmt.Fprintf(out, "  - %s\n", ex.Get(loc))
				}
			}
			return nil
		},
	}
}

func newExamplesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "Show sample problem statements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := opts.app(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			loc := app.Locale()
			out := cmd.OutOrStdout()
			for i, ex := range app.Catalog.Examples() {
				heading(out, fmt.Sprintf("%d. %s", i+1, ex.Title.Get(loc)))
				fmt.Fprintf(out, "   %s\n\n", ex.Description.Get(loc))
			}
			return nil
		},
	}
}
