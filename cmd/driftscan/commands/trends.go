package commands

import (
	"github.com/spf13/cobra"
)

func newTrendsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "trends",
		Short:        "Show infrastructure resource counts over time",
		SilenceUsage: true,
		Long: `Trends shows how the expected and actual resource counts recorded with
each report moved over the trailing window, one series per state kind.`,
		Example: `  # Resource counts from the last month
  driftscan trends

  # A shorter staging window
  driftscan trends --environment staging --days 7`,
		RunE: runTrends,
	}

	cmd.Flags().Int("days", 30, "size of the trailing window in days")

	return cmd
}

func runTrends(cmd *cobra.Command, args []string) error {
	days, _ := cmd.Flags().GetInt("days")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	trends, err := store.GetInfrastructureTrends(cmd.Context(), environmentFilter(cmd), days)
	if err != nil {
		return err
	}

	renderer, err := newRenderer()
	if err != nil {
		return err
	}
	rendered, err := renderer.FormatTrends(trends)
	if err != nil {
		return err
	}
	printRendered(rendered)

	return nil
}
