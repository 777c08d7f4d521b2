package analyzer

import (
	"time"

	"github.com/yairfalse/driftscan/pkg/types"
)

// BuildReport assembles findings and snapshot summaries into the persisted
// report shape. Like Analyze it is pure: the caller supplies the wall clock
// time, either snapshot may be nil, and the findings keep their input order.
// Availability flags record which snapshots the run actually had.
func BuildReport(findings []types.Finding, expected, actual *types.ResourceSnapshot, environment string, now time.Time) types.Report {
	now = now.UTC()

	if findings == nil {
		findings = []types.Finding{}
	}

	summary := types.ReportSummary{TotalIssues: len(findings)}
	for _, f := range findings {
		switch f.Severity {
		case types.SeverityHigh:
			summary.HighSeverity++
		case types.SeverityMedium:
			summary.MediumSeverity++
		case types.SeverityLow:
			summary.LowSeverity++
		}
	}

	var expectedState types.ExpectedState
	if expected != nil {
		expectedState = types.ExpectedState{
			Containers: expected.ContainerCount(),
			Networks:   expected.NetworkCount(),
			Volumes:    expected.VolumeCount(),
			Images:     expected.ImageCount(),
		}
	}

	var actualState types.ActualState
	if actual != nil {
		actualState = types.ActualState{
			Containers:        actual.ContainerCount(),
			ContainersRunning: actual.RunningContainerCount(),
			Networks:          actual.NetworkCount(),
			Volumes:           actual.VolumeCount(),
		}
	}

	return types.Report{
		Timestamp:     now,
		Environment:   environment,
		DriftDetected: len(findings) > 0,
		Summary:       summary,
		DriftDetails:  findings,
		InfrastructureState: types.InfrastructureState{
			Expected: expectedState,
			Actual:   actualState,
		},
		RawData: types.RawData{
			TerraformStateAvailable: expected != nil,
			DockerStateAvailable:    actual != nil,
			LastCheck:               now,
		},
	}
}
