package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/build-flow-labs/apiscore/internal/server"
)

var (
	serveAddr    string
	serveMaxBody int64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP scoring service",
	Long: `Starts an HTTP server exposing:

  POST /engine/score   score the "content" field (JSON, form or multipart body)
  GET  /rulesets       list the loaded rule sets
  GET  /health         liveness probe
  GET  /status         request counters

Listens on :3000 by default, or on 0.0.0.0:$PORT when PORT is set.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", defaultAddr(), "Listen address")
	serveCmd.Flags().Int64Var(&serveMaxBody, "max-body", server.DefaultMaxBodyBytes, "Maximum request body size in bytes")
}

func defaultAddr() string {
	if port := os.Getenv("PORT"); port != "" {
		return "0.0.0.0:" + port
	}
	return ":3000"
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	engine, err := newEngine(logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(server.Config{
		Addr:         serveAddr,
		MaxBodyBytes: serveMaxBody,
	}, engine, ruleSets(), logger)
	return srv.Start(ctx)
}
