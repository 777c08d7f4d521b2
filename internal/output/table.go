package output

import (
	"bytes"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/yairfalse/driftscan/pkg/types"
)

const timeFormat = "2006-01-02 15:04:05"

// TableFormatter handles table output formatting
type TableFormatter struct {
	noColor bool
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(noColor bool) *TableFormatter {
	return &TableFormatter{noColor: noColor}
}

// FormatReport formats a drift report as a table
func (t *TableFormatter) FormatReport(report *types.Report) ([]byte, error) {
	return t.renderReport(report, 0)
}

// FormatStoredReport formats a stored report, including its ID
func (t *TableFormatter) FormatStoredReport(report *types.StoredReport) ([]byte, error) {
	return t.renderReport(&report.Report, report.ID)
}

func (t *TableFormatter) renderReport(report *types.Report, id int64) ([]byte, error) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Drift Report\n")
	fmt.Fprintf(w, "============\n")
	if id > 0 {
		fmt.Fprintf(w, "ID:\t%d\n", id)
	}
	fmt.Fprintf(w, "Environment:\t%s\n", report.Environment)
	fmt.Fprintf(w, "Timestamp:\t%s\n", report.Timestamp.Format(timeFormat))
	fmt.Fprintf(w, "Total Issues:\t%d\n", report.Summary.TotalIssues)
	fmt.Fprintf(w, "High Severity:\t%d\n", report.Summary.HighSeverity)
	fmt.Fprintf(w, "Medium Severity:\t%d\n", report.Summary.MediumSeverity)
	fmt.Fprintf(w, "Low Severity:\t%d\n", report.Summary.LowSeverity)
	fmt.Fprintf(w, "\n")

	if report.DriftDetected {
		fmt.Fprintf(w, "%s\n", t.colorize("Drift detected", color.FgRed, color.Bold))
	} else {
		fmt.Fprintf(w, "%s\n", t.colorize("No drift detected - infrastructure matches the expected state", color.FgGreen))
	}

	if len(report.DriftDetails) > 0 {
		fmt.Fprintf(w, "\nFindings:\n")
		fmt.Fprintf(w, "Severity\tType\tResource\tMessage\n")
		fmt.Fprintf(w, "--------\t----\t--------\t-------\n")

		for _, finding := range report.DriftDetails {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				finding.Severity,
				finding.Type,
				finding.Resource,
				finding.Message,
			)
		}
	}

	expected := report.InfrastructureState.Expected
	actual := report.InfrastructureState.Actual
	fmt.Fprintf(w, "\nInfrastructure:\n")
	fmt.Fprintf(w, "Resource\tExpected\tActual\n")
	fmt.Fprintf(w, "--------\t--------\t------\n")
	fmt.Fprintf(w, "Containers\t%d\t%d (%d running)\n", expected.Containers, actual.Containers, actual.ContainersRunning)
	fmt.Fprintf(w, "Networks\t%d\t%d\n", expected.Networks, actual.Networks)
	fmt.Fprintf(w, "Volumes\t%d\t%d\n", expected.Volumes, actual.Volumes)
	fmt.Fprintf(w, "Images\t%d\t-\n", expected.Images)

	fmt.Fprintf(w, "\nSources:\n")
	fmt.Fprintf(w, "Terraform State:\t%s\n", availability(report.RawData.TerraformStateAvailable))
	fmt.Fprintf(w, "Docker State:\t%s\n", availability(report.RawData.DockerStateAvailable))

	w.Flush()
	return buf.Bytes(), nil
}

// FormatHistory formats a report listing as a table
func (t *TableFormatter) FormatHistory(reports []types.StoredReport) ([]byte, error) {
	if len(reports) == 0 {
		return []byte("No reports found.\n"), nil
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "ID\tTimestamp\tEnvironment\tDrift\tIssues\tHigh\tMedium\tLow\n")
	fmt.Fprintf(w, "--\t---------\t-----------\t-----\t------\t----\t------\t---\n")

	for _, report := range reports {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			report.ID,
			report.Timestamp.Format(timeFormat),
			report.Environment,
			yesNo(report.DriftDetected),
			report.Summary.TotalIssues,
			report.Summary.HighSeverity,
			report.Summary.MediumSeverity,
			report.Summary.LowSeverity,
		)
	}

	w.Flush()
	return buf.Bytes(), nil
}

// FormatStatistics formats statistics and the daily trend as a table
func (t *TableFormatter) FormatStatistics(stats *types.StatisticsReport) ([]byte, error) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Drift Statistics\n")
	fmt.Fprintf(w, "================\n")
	fmt.Fprintf(w, "Period:\t%s\n", stats.Period)
	fmt.Fprintf(w, "From:\t%s\n", stats.StartDate.Format(timeFormat))
	fmt.Fprintf(w, "To:\t%s\n", stats.EndDate.Format(timeFormat))
	fmt.Fprintf(w, "Total Reports:\t%d\n", stats.Summary.TotalReports)
	fmt.Fprintf(w, "Drift Reports:\t%d\n", stats.Summary.DriftReports)
	fmt.Fprintf(w, "Drift Rate:\t%.1f%%\n", stats.Summary.DriftPercentage)
	fmt.Fprintf(w, "Average Issues:\t%.2f\n", stats.Summary.AvgIssues)
	fmt.Fprintf(w, "Max Issues:\t%d\n", stats.Summary.MaxIssues)
	fmt.Fprintf(w, "High Severity:\t%d\n", stats.Summary.TotalHighSeverity)
	fmt.Fprintf(w, "Medium Severity:\t%d\n", stats.Summary.TotalMediumSeverity)
	fmt.Fprintf(w, "Low Severity:\t%d\n", stats.Summary.TotalLowSeverity)

	if len(stats.Trend) > 0 {
		fmt.Fprintf(w, "\nDaily Trend:\n")
		fmt.Fprintf(w, "Date\tReports\tDrift\tAvg Issues\n")
		fmt.Fprintf(w, "----\t-------\t-----\t----------\n")

		for _, day := range stats.Trend {
			fmt.Fprintf(w, "%s\t%d\t%d\t%.2f\n",
				day.ReportDate,
				day.ReportsCount,
				day.DriftCount,
				day.AvgIssues,
			)
		}
	}

	w.Flush()
	return buf.Bytes(), nil
}

// FormatTrends formats infrastructure count series as tables per state kind
func (t *TableFormatter) FormatTrends(trends map[string][]types.TrendPoint) ([]byte, error) {
	if len(trends) == 0 {
		return []byte("No trend data found.\n"), nil
	}

	kinds := make([]string, 0, len(trends))
	for kind := range trends {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Infrastructure Trends\n")
	fmt.Fprintf(w, "=====================\n")

	for _, kind := range kinds {
		fmt.Fprintf(w, "\n%s:\n", kind)
		fmt.Fprintf(w, "Timestamp\tResource\tExpected\tActual\n")
		fmt.Fprintf(w, "---------\t--------\t--------\t------\n")

		for _, point := range trends[kind] {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				point.Timestamp.Format(timeFormat),
				point.ResourceName,
				orDash(point.Expected),
				orDash(point.Actual),
			)
		}
	}

	w.Flush()
	return buf.Bytes(), nil
}

func (t *TableFormatter) colorize(text string, attrs ...color.Attribute) string {
	if t.noColor {
		return text
	}
	return color.New(attrs...).Sprint(text)
}

func availability(available bool) string {
	if available {
		return "available"
	}
	return "unavailable"
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
