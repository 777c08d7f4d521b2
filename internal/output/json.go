package output

import (
	"encoding/json"

	"github.com/yairfalse/driftscan/pkg/types"
)

// JSONFormatter handles JSON output formatting
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// FormatReport formats a drift report as JSON
func (j *JSONFormatter) FormatReport(report *types.Report) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}

// FormatStoredReport formats a stored report as JSON
func (j *JSONFormatter) FormatStoredReport(report *types.StoredReport) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}

// FormatHistory formats a report listing as JSON
func (j *JSONFormatter) FormatHistory(reports []types.StoredReport) ([]byte, error) {
	return json.MarshalIndent(reports, "", "  ")
}

// FormatStatistics formats a statistics query result as JSON
func (j *JSONFormatter) FormatStatistics(stats *types.StatisticsReport) ([]byte, error) {
	return json.MarshalIndent(stats, "", "  ")
}

// FormatTrends formats infrastructure count series as JSON
func (j *JSONFormatter) FormatTrends(trends map[string][]types.TrendPoint) ([]byte, error) {
	return json.MarshalIndent(trends, "", "  ")
}
