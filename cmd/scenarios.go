package cmd

import (
	"fmt"

	"dojo/internal/scenario"

	"github.com/spf13/cobra"
)

var (
	scenariosOutputFormat string
	scenariosQuiet        bool
)

// scenariosCmd lists the scenario catalog, or resolves a single scenario.
var scenariosCmd = &cobra.Command{
	Use:   "scenarios [scenario-id]",
	Short: "List scenarios and the images they run",
	Long: `Lists the scenario catalog from the built-in table merged with the
scenarios section of config.yaml. Scenarios not listed run the default image.

With a scenario id, prints the image that scenario resolves to.

Examples:
  dojo scenarios
  dojo scenarios -o yaml
  dojo scenarios tf-drift`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScenarios,
}

func init() {
	rootCmd.AddCommand(scenariosCmd)

	scenariosCmd.Flags().StringVarP(&scenariosOutputFormat, "output", "o", "table", "Output format (table, json, yaml)")
	scenariosCmd.Flags().BoolVarP(&scenariosQuiet, "quiet", "q", false, "Suppress non-essential output")
}

func runScenarios(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	catalog := scenario.FromConfig(cfg.Scenarios)

	if len(args) == 1 {
		id := args[0]
		privileged := ""
		if catalog.IsPrivileged(id) {
			privileged = " (privileged)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", catalog.Resolve(id), privileged)
		return nil
	}

	formatter, err := newFormatter(cmd.OutOrStdout(), scenariosOutputFormat, scenariosQuiet)
	if err != nil {
		return err
	}
	return formatter.FormatScenarios(catalog)
}
