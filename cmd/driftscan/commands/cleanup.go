package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCleanupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "cleanup",
		Short:        "Delete reports older than the retention window",
		SilenceUsage: true,
		Long: `Cleanup deletes reports whose timestamp fell out of the retention
window, along with their findings and infrastructure rows. The window
comes from the configuration unless --retention-days is given.`,
		Example: `  # Apply the configured retention
  driftscan cleanup

  # Keep only the last quarter
  driftscan cleanup --retention-days 90`,
		RunE: runCleanup,
	}

	cmd.Flags().Int("retention-days", 0, "override the configured retention window")

	return cmd
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	days, _ := cmd.Flags().GetInt("retention-days")
	if days <= 0 {
		days = cfg.Retention.Days
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	removed, err := store.CleanupOlderThan(cmd.Context(), days)
	if err != nil {
		return err
	}

	fmt.Printf("Removed %d %s older than %d days\n", removed, plural(int(removed), "report"), days)
	return nil
}

func plural(count int, singular string) string {
	if count == 1 {
		return singular
	}
	return singular + "s"
}
