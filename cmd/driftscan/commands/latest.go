package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLatestCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "latest",
		Short:        "Show the most recent drift report",
		SilenceUsage: true,
		Long: `Latest shows the newest stored report, optionally scoped to one
environment with --environment.`,
		Example: `  # Newest report across all environments
  driftscan latest

  # Newest staging report as JSON
  driftscan latest --environment staging --format json`,
		RunE: runLatest,
	}
}

func runLatest(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	report, err := store.GetLatestReport(cmd.Context(), environmentFilter(cmd))
	if err != nil {
		return err
	}
	if report == nil {
		fmt.Println("No reports stored yet.")
		return nil
	}

	renderer, err := newRenderer()
	if err != nil {
		return err
	}
	rendered, err := renderer.FormatStoredReport(report)
	if err != nil {
		return err
	}
	printRendered(rendered)

	return nil
}
