package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var rulesetsJSON bool

var rulesetsCmd = &cobra.Command{
	Use:   "rulesets",
	Short: "Inspect the rule sets used for scoring",
}

var rulesetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available rule sets",
	Args:  cobra.NoArgs,
	RunE:  runRulesetsList,
}

var rulesetsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show the rules of a rule set",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesetsShow,
}

func init() {
	rulesetsListCmd.Flags().BoolVar(&rulesetsJSON, "json", false, "Output JSON instead of a table")

	rulesetsCmd.AddCommand(rulesetsListCmd)
	rulesetsCmd.AddCommand(rulesetsShowCmd)
}

func runRulesetsList(cmd *cobra.Command, args []string) error {
	infos, err := ruleSets().List()
	if err != nil {
		return err
	}

	if rulesetsJSON {
		out, _ := json.MarshalIndent(infos, "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "NAME\tRULES\tDESCRIPTION\n")
	fmt.Fprintf(w, "----\t-----\t-----------\n")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%d\t%s\n", info.Name, info.Rules, info.Description)
	}
	return w.Flush()
}

func runRulesetsShow(cmd *cobra.Command, args []string) error {
	rs, err := ruleSets().Load(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %s\n\n", rs.Name, rs.Description)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tSEVERITY\tGIVEN\tDESCRIPTION\n")
	for _, r := range rs.Rules {
		severity := r.Severity
		if override, ok := rs.Overrides[r.ID]; ok {
			severity = override
		}
		if severity == "" {
			severity = "warn"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, severity, r.Given, r.Description)
	}
	return w.Flush()
}
