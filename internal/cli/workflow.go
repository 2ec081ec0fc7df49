package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/build-flow-labs/apiscore/internal/workflow"
)

var (
	workflowSpecPath  string
	workflowFailUnder int
	workflowBranch    string
	workflowVersion   string
	workflowOut       string
)

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Generate GitHub Actions workflows that score an API description",
}

var workflowListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available workflow templates",
	Args:  cobra.NoArgs,
	RunE:  runWorkflowList,
}

var workflowGenerateCmd = &cobra.Command{
	Use:   "generate <template>",
	Short: "Render a workflow template",
	Long: `Renders a workflow template to stdout, or to --out.

Example:
  apiscore workflow generate apiscore-sarif --spec api/openapi.yaml \
    --out .github/workflows/apiscore.yml`,
	Args: cobra.ExactArgs(1),
	RunE: runWorkflowGenerate,
}

func init() {
	workflowGenerateCmd.Flags().StringVar(&workflowSpecPath, "spec", "", "Path of the OpenAPI description in the repository (required)")
	workflowGenerateCmd.Flags().IntVar(&workflowFailUnder, "fail-under", 0, "Minimum overall score (default: the template's)")
	workflowGenerateCmd.Flags().StringVar(&workflowBranch, "branch", "", "Branch to score on push (default: the template's)")
	workflowGenerateCmd.Flags().StringVar(&workflowVersion, "version", "", "apiscore version to install (default: latest)")
	workflowGenerateCmd.Flags().StringVarP(&workflowOut, "out", "o", "", "Write the workflow to a file instead of stdout")
	workflowGenerateCmd.MarkFlagRequired("spec")

	workflowCmd.AddCommand(workflowListCmd)
	workflowCmd.AddCommand(workflowGenerateCmd)
	RootCmd.AddCommand(workflowCmd)
}

func runWorkflowList(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tNAME\tDESCRIPTION\n")
	fmt.Fprintf(w, "--\t----\t-----------\n")
	for _, t := range workflow.NewRegistry().List() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.ID, t.Name, t.Description)
	}
	return w.Flush()
}

func runWorkflowGenerate(cmd *cobra.Command, args []string) error {
	vars := map[string]string{
		"spec_path": workflowSpecPath,
		"branch":    workflowBranch,
		"version":   workflowVersion,
	}
	if workflowFailUnder > 0 {
		vars["fail_under"] = strconv.Itoa(workflowFailUnder)
	}

	content, err := workflow.NewRegistry().Generate(args[0], vars)
	if err != nil {
		return err
	}

	if workflowOut == "" {
		fmt.Fprint(cmd.OutOrStdout(), content)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(workflowOut), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(workflowOut), err)
	}
	if err := os.WriteFile(workflowOut, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", workflowOut, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", workflowOut)
	return nil
}
