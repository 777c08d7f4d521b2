package types

import (
	"fmt"
	"time"
)

// Severity classifies how urgent a drift finding is
type Severity string

const (
	// SeverityHigh indicates drift that breaks the declared deployment
	SeverityHigh Severity = "high"
	// SeverityMedium indicates drift that changes behavior but keeps the resource up
	SeverityMedium Severity = "medium"
	// SeverityLow indicates cosmetic or easily reverted drift
	SeverityLow Severity = "low"
)

// IsValid checks if the Severity is valid
func (s Severity) IsValid() bool {
	switch s {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return true
	default:
		return false
	}
}

// String returns the string representation of Severity
func (s Severity) String() string {
	return string(s)
}

// DriftType tags a finding with its position in the fixed check taxonomy
type DriftType string

const (
	// DriftMissingContainer indicates a declared container absent from the runtime
	DriftMissingContainer DriftType = "missing_container"
	// DriftContainerStatus indicates a container that should run but does not
	DriftContainerStatus DriftType = "container_status_drift"
	// DriftImage indicates a container running an unexpected image
	DriftImage DriftType = "image_drift"
	// DriftPortCount indicates a published-port count mismatch
	DriftPortCount DriftType = "port_count_drift"
	// DriftRestartPolicy indicates a restart policy mismatch
	DriftRestartPolicy DriftType = "restart_policy_drift"
	// DriftHealth indicates a running container with a failing health check
	DriftHealth DriftType = "health_drift"
	// DriftUnexpectedContainer indicates a container nobody declared
	DriftUnexpectedContainer DriftType = "unexpected_container"
	// DriftMissingNetwork indicates a declared network absent from the runtime
	DriftMissingNetwork DriftType = "missing_network"
	// DriftNetworkDriver indicates a network driver mismatch
	DriftNetworkDriver DriftType = "network_driver_drift"
	// DriftNetworkSubnet indicates a network subnet mismatch
	DriftNetworkSubnet DriftType = "network_subnet_drift"
	// DriftUnexpectedNetwork indicates a network nobody declared
	DriftUnexpectedNetwork DriftType = "unexpected_network"
	// DriftMissingVolume indicates a declared volume absent from the runtime
	DriftMissingVolume DriftType = "missing_volume"
	// DriftVolumeDriver indicates a volume driver mismatch
	DriftVolumeDriver DriftType = "volume_driver_drift"
	// DriftUnexpectedVolume indicates a volume nobody declared
	DriftUnexpectedVolume DriftType = "unexpected_volume"
	// DriftMalformedResource indicates a snapshot entry that could not be analyzed
	DriftMalformedResource DriftType = "malformed_resource"
)

// IsValid checks if the DriftType belongs to the taxonomy
func (dt DriftType) IsValid() bool {
	switch dt {
	case DriftMissingContainer, DriftContainerStatus, DriftImage, DriftPortCount,
		DriftRestartPolicy, DriftHealth, DriftUnexpectedContainer,
		DriftMissingNetwork, DriftNetworkDriver, DriftNetworkSubnet, DriftUnexpectedNetwork,
		DriftMissingVolume, DriftVolumeDriver, DriftUnexpectedVolume,
		DriftMalformedResource:
		return true
	default:
		return false
	}
}

// String returns the string representation of DriftType
func (dt DriftType) String() string {
	return string(dt)
}

// Finding represents a single detected divergence between the expected and
// actual state. Expected and Actual carry whatever makes the divergence
// concrete for that drift type: a descriptor, a string value, or a count.
type Finding struct {
	Type     DriftType `json:"type"`
	Severity Severity  `json:"severity"`
	Resource string    `json:"resource"`
	Message  string    `json:"message"`
	Expected any       `json:"expected"`
	Actual   any       `json:"actual"`
}

// Validate checks if the Finding has all required fields
func (f *Finding) Validate() error {
	if !f.Type.IsValid() {
		return fmt.Errorf("invalid drift type: %s", f.Type)
	}
	if !f.Severity.IsValid() {
		return fmt.Errorf("invalid severity: %s", f.Severity)
	}
	if f.Message == "" {
		return fmt.Errorf("finding message cannot be empty")
	}
	return nil
}

// ReportSummary tallies findings by severity. TotalIssues always equals the
// number of findings the report carries.
type ReportSummary struct {
	TotalIssues    int `json:"total_issues"`
	HighSeverity   int `json:"high_severity"`
	MediumSeverity int `json:"medium_severity"`
	LowSeverity    int `json:"low_severity"`
}

// ExpectedState summarizes the expected snapshot by partition counts
type ExpectedState struct {
	Containers int `json:"containers"`
	Networks   int `json:"networks"`
	Volumes    int `json:"volumes"`
	Images     int `json:"images"`
}

// ActualState summarizes the actual snapshot by partition counts
type ActualState struct {
	Containers        int `json:"containers"`
	ContainersRunning int `json:"containers_running"`
	Networks          int `json:"networks"`
	Volumes           int `json:"volumes"`
}

// InfrastructureState pairs the expected and actual summaries
type InfrastructureState struct {
	Expected ExpectedState `json:"expected"`
	Actual   ActualState   `json:"actual"`
}

// RawData records which inputs were available when the report was built
type RawData struct {
	TerraformStateAvailable bool      `json:"terraform_state_available"`
	DockerStateAvailable    bool      `json:"docker_state_available"`
	LastCheck               time.Time `json:"last_check"`
}

// Report represents one complete drift analysis run in its persisted shape.
// Reports are immutable once built.
type Report struct {
	Timestamp           time.Time           `json:"timestamp"`
	Environment         string              `json:"environment"`
	DriftDetected       bool                `json:"drift_detected"`
	Summary             ReportSummary       `json:"summary"`
	DriftDetails        []Finding           `json:"drift_details"`
	InfrastructureState InfrastructureState `json:"infrastructure_state"`
	RawData             RawData             `json:"raw_data"`
}

// HasDrift returns true if any findings were recorded
func (r *Report) HasDrift() bool {
	return len(r.DriftDetails) > 0
}

// FindingsBySeverity returns all findings with the given severity
func (r *Report) FindingsBySeverity(severity Severity) []Finding {
	var filtered []Finding
	for _, f := range r.DriftDetails {
		if f.Severity == severity {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

// StoredReport is a Report with the identifier the store assigned to it
type StoredReport struct {
	ID int64 `json:"id"`
	Report
}

// StatisticsSummary aggregates stored reports over a window
type StatisticsSummary struct {
	TotalReports        int64   `json:"total_reports"`
	DriftReports        int64   `json:"drift_reports"`
	DriftPercentage     float64 `json:"drift_percentage"`
	AvgIssues           float64 `json:"avg_issues"`
	MaxIssues           int64   `json:"max_issues"`
	TotalHighSeverity   int64   `json:"total_high_severity"`
	TotalMediumSeverity int64   `json:"total_medium_severity"`
	TotalLowSeverity    int64   `json:"total_low_severity"`
}

// DailyTrend is one day of the statistics trend series
type DailyTrend struct {
	ReportDate   string  `json:"report_date"`
	ReportsCount int64   `json:"reports_count"`
	DriftCount   int64   `json:"drift_count"`
	AvgIssues    float64 `json:"avg_issues"`
}

// StatisticsReport is the result of a statistics query
type StatisticsReport struct {
	Period    string            `json:"period"`
	StartDate time.Time         `json:"start_date"`
	EndDate   time.Time         `json:"end_date"`
	Summary   StatisticsSummary `json:"summary"`
	Trend     []DailyTrend      `json:"trend"`
}

// TrendPoint is one observation in an infrastructure count series
type TrendPoint struct {
	Timestamp    time.Time `json:"timestamp"`
	ResourceName string    `json:"resource_name"`
	Expected     string    `json:"expected"`
	Actual       string    `json:"actual"`
}

// ExportBundle wraps a range of reports for export
type ExportBundle struct {
	ExportTimestamp time.Time      `json:"export_timestamp"`
	Environment     string         `json:"environment"`
	StartDate       time.Time      `json:"start_date"`
	EndDate         time.Time      `json:"end_date"`
	TotalReports    int            `json:"total_reports"`
	Reports         []StoredReport `json:"reports"`
}
