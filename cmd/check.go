package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dojo/internal/containerizer"
	"dojo/internal/orchestrator"
	"dojo/internal/scenario"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

var (
	checkOutputFormat string
	checkQuiet        bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the container engine can run every scenario",
	Long: `Checks the container engine the way 'dojo serve' would use it:

  engine   - the daemon answers the version command
  network  - the shared session network exists
  images   - every image in the scenario catalog is present locally

Nothing is created or pulled. The command exits with code 3 when the engine
is unreachable and 1 when an image is missing.

Examples:
  dojo check
  dojo check -o json
  dojo check --config-path ./deploy`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkOutputFormat, "output", "o", "table", "Output format (table, json, yaml)")
	checkCmd.Flags().BoolVarP(&checkQuiet, "quiet", "q", false, "Suppress non-essential output")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	formatter, err := newFormatter(cmd.OutOrStdout(), checkOutputFormat, checkQuiet)
	if err != nil {
		return err
	}

	engine, err := containerizer.NewEngine(cfg.Engine.Binary)
	if err != nil {
		return err
	}
	probe := containerizer.NewProbe(engine, cfg.Engine.CommandTimeout)
	catalog := scenario.FromConfig(cfg.Scenarios)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var s *spinner.Spinner
	if !checkQuiet && checkOutputFormat == "table" && isTerminal(cmd.ErrOrStderr()) {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
		s.Suffix = fmt.Sprintf(" Checking %s and %d images...", engine.Binary(), len(catalog.Images()))
		s.Start()
	}

	report := probe.Check(ctx, engine.Binary(), cfg.Engine.Network, catalog.Images())

	if s != nil {
		s.Stop()
	}

	if err := formatter.FormatCheck(report, catalog); err != nil {
		return err
	}

	if !report.Available {
		return &orchestrator.EngineUnavailableError{Err: errors.New(report.Error)}
	}
	if missing := report.MissingImages(); len(missing) > 0 {
		return fmt.Errorf("%d scenario image(s) missing: %s", len(missing), strings.Join(missing, ", "))
	}
	return nil
}
