package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/build-flow-labs/apiscore/internal/source"
	"github.com/build-flow-labs/apiscore/report"
)

var (
	scoreURL       string
	scoreGitHub    string
	scorePath      string
	scoreRef       string
	scoreGitHubAPI string
	scoreFormat    string
	scoreOut       string
	scoreFailUnder int
	scoreTimeout   time.Duration
)

var scoreCmd = &cobra.Command{
	Use:   "score [file]",
	Short: "Score an OpenAPI description",
	Long: `Scores one OpenAPI description and prints the report.

The description is read from exactly one of:
  a file argument ("-" reads stdin)
  --url        an HTTP(S) URL
  --github     owner/repo together with --path (and optionally --ref);
               GITHUB_TOKEN is used when set

Use --format json or --format sarif for machine-readable output and
--fail-under to exit with status 2 when the overall score is too low.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringVar(&scoreURL, "url", "", "Fetch the description from an HTTP(S) URL")
	scoreCmd.Flags().StringVar(&scoreGitHub, "github", "", "Read the description from a GitHub repository (owner/repo)")
	scoreCmd.Flags().StringVar(&scorePath, "path", "", "Path of the description inside the GitHub repository")
	scoreCmd.Flags().StringVar(&scoreRef, "ref", "", "Branch, tag or commit to read from (default: the default branch)")
	scoreCmd.Flags().StringVar(&scoreGitHubAPI, "github-api", "", "GitHub API base URL (for GitHub Enterprise)")
	scoreCmd.Flags().StringVarP(&scoreFormat, "format", "f", report.FormatText, "Output format: text, json, sarif")
	scoreCmd.Flags().StringVarP(&scoreOut, "out", "o", "", "Write the report to a file instead of stdout")
	scoreCmd.Flags().IntVar(&scoreFailUnder, "fail-under", 0, "Exit with status 2 when the overall score is below this value")
	scoreCmd.Flags().DurationVar(&scoreTimeout, "timeout", 0, "Abort fetching and scoring after this long (0 means no limit)")
}

func runScore(cmd *cobra.Command, args []string) error {
	switch scoreFormat {
	case report.FormatText, report.FormatJSON, report.FormatSARIF:
	default:
		return fmt.Errorf("unknown format %q (want text, json or sarif)", scoreFormat)
	}

	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	engine, err := newEngine(logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if scoreTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, scoreTimeout)
		defer cancel()
	}

	text, uri, err := readDescription(ctx, args)
	if err != nil {
		return err
	}

	result, err := engine.Compute(ctx, text)
	if err != nil {
		return fmt.Errorf("scoring %s: %w", uri, err)
	}

	var out io.Writer = cmd.OutOrStdout()
	if scoreOut != "" {
		f, err := os.Create(scoreOut)
		if err != nil {
			return fmt.Errorf("creating %s: %w", scoreOut, err)
		}
		defer f.Close()
		out = f
	}
	if err := report.Write(out, scoreFormat, result, uri); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if scoreFailUnder > 0 && result.Score < scoreFailUnder {
		return &ExitError{Code: 2, Err: fmt.Errorf("score %d is below %d", result.Score, scoreFailUnder)}
	}
	return nil
}

// readDescription returns the description text and a URI naming where it
// came from.
func readDescription(ctx context.Context, args []string) (string, string, error) {
	sources := 0
	if len(args) == 1 {
		sources++
	}
	if scoreURL != "" {
		sources++
	}
	if scoreGitHub != "" {
		sources++
	}
	if sources != 1 {
		return "", "", fmt.Errorf("exactly one of a file argument, --url or --github is required")
	}

	switch {
	case scoreURL != "":
		timeout := scoreTimeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		text, err := source.NewHTTP(timeout).Fetch(ctx, scoreURL)
		return text, scoreURL, err

	case scoreGitHub != "":
		owner, repo, err := source.ParseRepo(scoreGitHub)
		if err != nil {
			return "", "", err
		}
		if scorePath == "" {
			return "", "", fmt.Errorf("--path is required with --github")
		}
		token := os.Getenv("GITHUB_TOKEN")
		gh := source.NewGitHub(token)
		if scoreGitHubAPI != "" {
			if gh, err = source.NewGitHubWithBase(token, scoreGitHubAPI); err != nil {
				return "", "", err
			}
		}
		text, err := gh.Fetch(ctx, owner, repo, scorePath, scoreRef)
		return text, fmt.Sprintf("https://github.com/%s/%s/blob/%s/%s", owner, repo, refOrHead(scoreRef), scorePath), err
	}

	text, err := source.ReadFile(args[0])
	return text, args[0], err
}

func refOrHead(ref string) string {
	if ref == "" {
		return "HEAD"
	}
	return ref
}
