package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-trades/internal/logging"
	"github.com/pgEdge/pgedge-trades/internal/server"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the views over a JSON HTTP API",
	Long: `Load the trade history once and serve it over HTTP until interrupted.

Routes:
  GET  /healthz
  GET  /modes
  GET  /clients?add=CODE
  GET  /dates
  GET  /views/client/:code?mode=by-instrument|by-date
  GET  /views/date/:date?add=CODE&all=true
  POST /reload`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "",
		"listen address (default: :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveListen != "" {
		cfg.Serve.Listen = serveListen
	}

	// Validate configuration
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	// Set up signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	session, err := newSession(ctx)
	if err != nil {
		return err
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.New(session, cfg.Clients.DefaultCodes, loadTable)

	logging.Info().
		Str("listen", cfg.Serve.Listen).
		Int("records", session.Table().Len()).
		Msg("Starting API")

	return srv.Run(ctx, cfg.Serve.Listen, time.Duration(cfg.Serve.ShutdownTimeout)*time.Second)
}
