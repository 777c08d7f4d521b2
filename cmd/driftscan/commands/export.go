package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yairfalse/driftscan/internal/output"
)

func newExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "export",
		Short:        "Export a range of reports as a JSON bundle",
		SilenceUsage: true,
		Long: `Export collects the reports from an inclusive time range into a single
JSON bundle, written to a file or to stdout.`,
		Example: `  # Everything from March to stdout
  driftscan export --start 2024-03-01 --end 2024-03-31

  # A production audit bundle
  driftscan export --start 2024-01-01 --end 2024-03-31 --environment production --output q1.json`,
		RunE: runExport,
	}

	cmd.Flags().String("start", "", "start of the range (YYYY-MM-DD or RFC3339)")
	cmd.Flags().String("end", "", "end of the range, inclusive (YYYY-MM-DD or RFC3339)")
	cmd.Flags().StringP("output", "o", "", "write the bundle to a file instead of stdout")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	startFlag, _ := cmd.Flags().GetString("start")
	endFlag, _ := cmd.Flags().GetString("end")
	outputPath, _ := cmd.Flags().GetString("output")

	start, err := parseTimeFlag(startFlag, false)
	if err != nil {
		return err
	}
	end, err := parseTimeFlag(endFlag, true)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	bundle, err := store.ExportRange(cmd.Context(), environmentFilter(cmd), start, end)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode export bundle: %w", err)
	}

	if outputPath == "" {
		fmt.Println(string(data))
		return nil
	}

	if err := output.WriteToFile(data, outputPath); err != nil {
		return err
	}
	fmt.Printf("Exported %d %s to %s\n", bundle.TotalReports, plural(bundle.TotalReports, "report"), outputPath)
	return nil
}
