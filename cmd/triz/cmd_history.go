package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/triz-master/internal/history"
	"github.com/HendryAvila/triz-master/internal/report"
	"github.com/HendryAvila/triz-master/internal/server"
)

var errHistoryDisabled = errors.New("history is not available (check data_dir and the log output)")

// historyRun wraps a history subcommand so it only runs with an open store.
func historyRun(opts *rootOptions, fn func(cmd *cobra.Command, args []string, app *server.App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, cleanup, err := opts.app(cmd)
		if err != nil {
			return err
		}
		defer cleanup()
		if app.History == nil {
			return errHistoryDisabled
		}
		return fn(cmd, args, app)
	}
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage saved analysis sessions",
	}
	cmd.AddCommand(
		newHistoryListCmd(opts),
		newHistoryShowCmd(opts),
		newHistorySearchCmd(opts),
		newHistoryDeleteCmd(opts),
		newHistoryClearCmd(opts),
		newHistoryExportCmd(opts),
		newHistoryImportCmd(opts),
	)
	return cmd
}

func printSessions(cmd *cobra.Command, sessions []history.Session, empty string) {
	if len(sessions) == 0 {
		warnf(cmd.ErrOrStderr(), "%s", empty)
		return
	}
	render(cmd.OutOrStdout(), sessionsTable(sessions))
}

func newHistoryListCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: historyRun(opts, func(cmd *cobra.Command, _ []string, app *server.App) error {
			sessions, err := app.History.List(limit)
			if err != nil {
				return err
			}
			printSessions(cmd, sessions, "No saved sessions yet.")
			return nil
		}),
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum sessions to show (default: history limit)")
	return cmd
}

func newHistorySearchCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Full-text search over problems and explanations",
		Args:  cobra.ExactArgs(1),
		RunE: historyRun(opts, func(cmd *cobra.Command, args []string, app *server.App) error {
			sessions, err := app.History.Search(args[0], limit)
			if err != nil {
				return err
			}
			printSessions(cmd, sessions, fmt.Sprintf("No session matches %q.", args[0]))
			return nil
		}),
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum results")
	return cmd
}

func newHistoryShowCmd(opts *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a saved session as a full report",
		Args:  cobra.ExactArgs(1),
		RunE: historyRun(opts, func(cmd *cobra.Command, args []string, app *server.App) error {
			sess, err := app.History.Get(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			doc := report.NewDocument(app.Catalog, *sess)
			switch format {
			case "md", "markdown":
				fmt.Fprint(out, report.Markdown(doc))
			case "html":
				page, err := report.HTML(doc)
				if err != nil {
					return err
				}
				fmt.Fprint(out, page)
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(sess)
			default:
				return fmt.Errorf("unknown format %q (want md, html or json)", format)
			}
			return nil
		}),
	}
	cmd.Flags().StringVarP(&format, "format", "f", "md", "output format: md, html or json")
	return cmd
}

func newHistoryDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete one session",
		Args:  cobra.ExactArgs(1),
		RunE: historyRun(opts, func(cmd *cobra.Command, args []string, app *server.App) error {
			if err := app.History.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", args[0])
			return nil
		}),
	}
}

func newHistoryClearCmd(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every saved session",
		Args:  cobra.NoArgs,
		RunE: historyRun(opts, func(cmd *cobra.Command, _ []string, app *server.App) error {
			if !yes {
				return errors.New("refusing to clear history without --yes")
			}
			n, err := app.History.Clear()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d session(s)\n", n)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

func newHistoryExportCmd(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all sessions as JSON",
		Args:  cobra.NoArgs,
		RunE: historyRun(opts, func(cmd *cobra.Command, _ []string, app *server.App) error {
			data, err := app.History.Export()
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				return writeExport(cmd.OutOrStdout(), data)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := writeExport(f, data); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d session(s) to %s\n", len(data.Sessions), output)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func writeExport(w io.Writer, data *history.ExportData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

func newHistoryImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Load sessions from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: historyRun(opts, func(cmd *cobra.Command, args []string, app *server.App) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var data history.ExportData
			if err := json.Unmarshal(raw, &data); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			res, err := app.History.Import(&data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d session(s), skipped %d\n", res.SessionsImported, res.SessionsSkipped)
			return nil
		}),
	}
}
