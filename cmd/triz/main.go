// triz resolves technical contradictions into TRIZ inventive principles.
//
// Usage:
//
//	triz serve                      # MCP server over stdio
//	triz http [--addr host:port]    # local JSON API
//	triz resolve 1 10 [--explain]   # manual matrix lookup
//	triz analyze "problem" [--draft]
//	triz history list|show|search|delete|clear|export|import
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/triz-master/internal/catalog"
	"github.com/HendryAvila/triz-master/internal/config"
	"github.com/HendryAvila/triz-master/internal/logging"
	"github.com/HendryAvila/triz-master/internal/server"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	lang       string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "triz",
		Short: "TRIZ contradiction resolver",
		Long: "triz maps a technical contradiction (one parameter improves, another worsens)\n" +
			"to inventive principles, and optionally drafts solution ideas with a language model.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Version: server.Version,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default ~/.triz/config.yaml)")
	pf.StringVar(&opts.lang, "lang", "", "output language: ar or en (default from config)")

	root.AddCommand(
		newServeCmd(opts),
		newHTTPCmd(opts),
		newResolveCmd(opts),
		newParamsCmd(opts),
		newPrincipleCmd(opts),
		newExamplesCmd(opts),
		newAnalyzeCmd(opts),
		newHistoryCmd(opts),
		newVersionCmd(),
	)
	return root
}

// load reads the configuration and applies flag overrides.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.lang != "" {
		loc, err := catalog.ParseLocale(o.lang)
		if err != nil {
			return nil, fmt.Errorf("--lang: %w", err)
		}
		cfg.Locale = loc
	}
	return cfg, nil
}

// app builds the shared dependencies. Logs go to the command's stderr so
// stdout stays clean for results and the MCP transport.
func (o *rootOptions) app(cmd *cobra.Command) (*server.App, func(), error) {
	cfg, err := o.load()
	if err != nil {
		return nil, func() {}, err
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, func() {}, err
	}
	logger := logging.Init(level, cfg.Log.Format, cmd.ErrOrStderr())
	return server.NewApp(cfg, logger)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "triz v%s\n", server.Version)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
