package commands

import (
	"github.com/spf13/cobra"
)

func newStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "stats",
		Short:        "Show drift statistics for a trailing window",
		SilenceUsage: true,
		Long: `Stats aggregates stored reports over the trailing window: how many
checks ran, how often they found drift, severity totals and a
day-by-day trend.`,
		Example: `  # The last week, all environments
  driftscan stats

  # The last month of production
  driftscan stats --environment production --days 30`,
		RunE: runStats,
	}

	cmd.Flags().Int("days", 7, "size of the trailing window in days")

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	days, _ := cmd.Flags().GetInt("days")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.GetStatistics(cmd.Context(), environmentFilter(cmd), days)
	if err != nil {
		return err
	}

	renderer, err := newRenderer()
	if err != nil {
		return err
	}
	rendered, err := renderer.FormatStatistics(stats)
	if err != nil {
		return err
	}
	printRendered(rendered)

	return nil
}
