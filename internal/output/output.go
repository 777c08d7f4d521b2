package output

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/yairfalse/driftscan/pkg/types"
)

// Format represents the available output formats
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a format name from a flag or config value
func ParseFormat(name string) (Format, error) {
	switch name {
	case "table", "":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", name)
	}
}

// Renderer formats reports and query results for the terminal
type Renderer struct {
	format Format
	table  *TableFormatter
	json   *JSONFormatter
	yaml   *YAMLFormatter
}

// NewRenderer creates a renderer for the given format. Colors are
// dropped when requested or when stdout is not a terminal.
func NewRenderer(format Format, noColor bool) *Renderer {
	if !noColor && !term.IsTerminal(int(os.Stdout.Fd())) {
		noColor = true
	}

	return &Renderer{
		format: format,
		table:  NewTableFormatter(noColor),
		json:   NewJSONFormatter(),
		yaml:   NewYAMLFormatter(),
	}
}

// FormatReport formats a single drift report
func (r *Renderer) FormatReport(report *types.Report) ([]byte, error) {
	switch r.format {
	case FormatJSON:
		return r.json.FormatReport(report)
	case FormatYAML:
		return r.yaml.FormatReport(report)
	default:
		return r.table.FormatReport(report)
	}
}

// FormatStoredReport formats a report retrieved from the store
func (r *Renderer) FormatStoredReport(report *types.StoredReport) ([]byte, error) {
	switch r.format {
	case FormatJSON:
		return r.json.FormatStoredReport(report)
	case FormatYAML:
		return r.yaml.FormatStoredReport(report)
	default:
		return r.table.FormatStoredReport(report)
	}
}

// FormatHistory formats a report listing
func (r *Renderer) FormatHistory(reports []types.StoredReport) ([]byte, error) {
	switch r.format {
	case FormatJSON:
		return r.json.FormatHistory(reports)
	case FormatYAML:
		return r.yaml.FormatHistory(reports)
	default:
		return r.table.FormatHistory(reports)
	}
}

// FormatStatistics formats a statistics query result
func (r *Renderer) FormatStatistics(stats *types.StatisticsReport) ([]byte, error) {
	switch r.format {
	case FormatJSON:
		return r.json.FormatStatistics(stats)
	case FormatYAML:
		return r.yaml.FormatStatistics(stats)
	default:
		return r.table.FormatStatistics(stats)
	}
}

// FormatTrends formats infrastructure count series keyed by state kind
func (r *Renderer) FormatTrends(trends map[string][]types.TrendPoint) ([]byte, error) {
	switch r.format {
	case FormatJSON:
		return r.json.FormatTrends(trends)
	case FormatYAML:
		return r.yaml.FormatTrends(trends)
	default:
		return r.table.FormatTrends(trends)
	}
}

// WriteToFile writes formatted output to a file
func WriteToFile(data []byte, filename string) error {
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filename, err)
	}
	return nil
}
