// Package cli implements the apiscore command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/build-flow-labs/apiscore/ruleset"
	"github.com/build-flow-labs/apiscore/scoring"
)

// RootCmd is the apiscore command.
var RootCmd = &cobra.Command{
	Use:   "apiscore",
	Short: "Score OpenAPI descriptions for conformance, design and security",
	Long: `apiscore lints an OpenAPI 2.0/3.x description with six rule sets and
turns the findings into fifteen category scores from 0 to 100:

  Conformance, Developer Experience, Mocking Readiness,
  Design Pattern - Restful, the ten OWASP API Security risks
  and URL Versioning.

Score a file, a URL or a file in a GitHub repository with "score",
or run the HTTP scoring service with "serve".`,
	SilenceUsage: true,
}

var (
	logLevel string
	logJSON  bool
	rulesDir string
)

func init() {
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", envOr("APISCORE_LOG_LEVEL", "info"), "Log level: debug, info, warn, error (or APISCORE_LOG_LEVEL)")
	RootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Log as JSON instead of text")
	RootCmd.PersistentFlags().StringVar(&rulesDir, "rules", "", "Directory of <name>.yaml rule sets overriding the built-in ones")

	RootCmd.AddCommand(scoreCmd)
	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(rulesetsCmd)
}

// ExitError carries a process exit code out of a command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	if logJSON {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// ruleSets layers the --rules directory over the embedded rule sets.
func ruleSets() *ruleset.Layered {
	if rulesDir == "" {
		return ruleset.NewLayered(ruleset.Builtin())
	}
	return ruleset.NewLayered(ruleset.Dir(rulesDir), ruleset.Builtin())
}

func newEngine(logger *slog.Logger) (*scoring.Engine, error) {
	return scoring.NewEngine(scoring.Options{
		Loader:         ruleSets(),
		Logger:         logger,
		TracerProvider: otel.GetTracerProvider(),
		MeterProvider:  otel.GetMeterProvider(),
	})
}
