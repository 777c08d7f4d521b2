package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yairfalse/driftscan/internal/storage"
)

func newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "history",
		Short:        "List stored drift reports, newest first",
		SilenceUsage: true,
		Long: `History lists stored reports with their summaries. The listing can be
scoped by environment and by an inclusive time range.`,
		Example: `  # The ten most recent reports
  driftscan history

  # Production reports from the first week of March
  driftscan history --environment production --since 2024-03-01 --until 2024-03-07

  # More rows
  driftscan history --limit 50`,
		RunE: runHistory,
	}

	cmd.Flags().String("since", "", "only reports at or after this time (YYYY-MM-DD or RFC3339)")
	cmd.Flags().String("until", "", "only reports up to and including this time (YYYY-MM-DD or RFC3339)")
	cmd.Flags().Int("limit", 10, "maximum number of reports to list")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	sinceFlag, _ := cmd.Flags().GetString("since")
	untilFlag, _ := cmd.Flags().GetString("until")
	limit, _ := cmd.Flags().GetInt("limit")

	since, err := parseTimeFlag(sinceFlag, false)
	if err != nil {
		return err
	}
	until, err := parseTimeFlag(untilFlag, true)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	reports, err := store.ListReports(cmd.Context(), storage.ListFilter{
		Environment: environmentFilter(cmd),
		Start:       since,
		End:         until,
		Limit:       limit,
	})
	if err != nil {
		return err
	}

	renderer, err := newRenderer()
	if err != nil {
		return err
	}
	rendered, err := renderer.FormatHistory(reports)
	if err != nil {
		return err
	}
	printRendered(rendered)

	return nil
}

// parseTimeFlag accepts a bare date or a full RFC3339 timestamp. A bare
// date used as a range end means the whole day.
func parseTimeFlag(value string, endOfDay bool) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: use YYYY-MM-DD or RFC3339", value)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
