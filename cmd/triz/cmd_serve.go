package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/HendryAvila/triz-master/internal/httpapi"
	"github.com/HendryAvila/triz-master/internal/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Long: `Starts an MCP server over stdin/stdout. Add it to your AI tool's MCP config:

  {
    "mcpServers": {
      "triz": { "command": "triz", "args": ["serve"] }
    }
  }`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := opts.app(cmd)
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}
			defer cleanup()

			app.Logger.Info("starting triz MCP server over stdio", "version", server.Version)
			return mcpserver.ServeStdio(server.New(app))
		},
	}
}

// shutdownTimeout bounds how long in-flight requests may run after a
// termination signal.
const shutdownTimeout = 10 * time.Second

func newHTTPCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "http",
		Short: "Serve the JSON API and /metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := opts.app(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if addr == "" {
				addr = app.Config.HTTPAddr
			}
			router := httpapi.NewRouter(httpapi.Deps{
				Advisor: app.Advisor,
				History: app.History,
				Metrics: app.Metrics,
				Logger:  app.Logger.With("component", "http"),
				Locale:  app.Locale(),
				Version: server.Version,
			})
			srv := &http.Server{
				Addr:              addr,
				Handler:           router.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serveHTTP(ctx, srv, app.Logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8089)")
	return cmd
}

// serveHTTP runs srv until ctx is cancelled, then shuts it down gracefully.
func serveHTTP(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}
