package output

import (
	"gopkg.in/yaml.v3"

	"github.com/yairfalse/driftscan/pkg/types"
)

// YAMLFormatter handles YAML output formatting
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// FormatReport formats a drift report as YAML
func (y *YAMLFormatter) FormatReport(report *types.Report) ([]byte, error) {
	return yaml.Marshal(report)
}

// FormatStoredReport formats a stored report as YAML
func (y *YAMLFormatter) FormatStoredReport(report *types.StoredReport) ([]byte, error) {
	return yaml.Marshal(report)
}

// FormatHistory formats a report listing as YAML
func (y *YAMLFormatter) FormatHistory(reports []types.StoredReport) ([]byte, error) {
	return yaml.Marshal(reports)
}

// FormatStatistics formats a statistics query result as YAML
func (y *YAMLFormatter) FormatStatistics(stats *types.StatisticsReport) ([]byte, error) {
	return yaml.Marshal(stats)
}

// FormatTrends formats infrastructure count series as YAML
func (y *YAMLFormatter) FormatTrends(trends map[string][]types.TrendPoint) ([]byte, error) {
	return yaml.Marshal(trends)
}
