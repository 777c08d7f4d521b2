package output

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/yairfalse/driftscan/pkg/types"
)

func sampleReport() *types.Report {
	timestamp := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	return &types.Report{
		Timestamp:     timestamp,
		Environment:   "production",
		DriftDetected: true,
		Summary: types.ReportSummary{
			TotalIssues:    2,
			HighSeverity:   1,
			MediumSeverity: 1,
		},
		DriftDetails: []types.Finding{
			{
				Type:     types.DriftMissingContainer,
				Severity: types.SeverityHigh,
				Resource: "web",
				Message:  "Container 'web' is defined in Terraform but not running in Docker",
				Expected: map[string]any{"image": "nginx:1.25"},
			},
			{
				Type:     types.DriftPortCount,
				Severity: types.SeverityMedium,
				Resource: "api",
				Message:  "Container 'api' port mapping count differs",
				Expected: 2,
				Actual:   1,
			},
		},
		InfrastructureState: types.InfrastructureState{
			Expected: types.ExpectedState{Containers: 3, Networks: 2, Volumes: 1, Images: 3},
			Actual:   types.ActualState{Containers: 2, ContainersRunning: 1, Networks: 2, Volumes: 2},
		},
		RawData: types.RawData{
			TerraformStateAvailable: true,
			DockerStateAvailable:    true,
			LastCheck:               timestamp,
		},
	}
}

func cleanReport() *types.Report {
	report := sampleReport()
	report.DriftDetected = false
	report.Summary = types.ReportSummary{}
	report.DriftDetails = []types.Finding{}
	return report
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"table", FormatTable, false},
		{"", FormatTable, false},
		{"json", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.name)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q) expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFormat(%q) unexpected error: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestTableFormatter_FormatReport(t *testing.T) {
	formatter := NewTableFormatter(true)

	data, err := formatter.FormatReport(sampleReport())
	if err != nil {
		t.Fatalf("FormatReport failed: %v", err)
	}

	output := string(data)
	for _, want := range []string{
		"Drift Report",
		"Environment:",
		"production",
		"2024-03-10 09:00:00",
		"Drift detected",
		"Findings:",
		"missing_container",
		"Container 'web' is defined in Terraform but not running in Docker",
		"port_count_drift",
		"Infrastructure:",
		"2 (1 running)",
		"Terraform State:",
		"available",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, output)
		}
	}
}

func TestTableFormatter_FormatReport_Clean(t *testing.T) {
	formatter := NewTableFormatter(true)

	data, err := formatter.FormatReport(cleanReport())
	if err != nil {
		t.Fatalf("FormatReport failed: %v", err)
	}

	output := string(data)
	if !strings.Contains(output, "No drift detected - infrastructure matches the expected state") {
		t.Errorf("Expected clean status line, got:\n%s", output)
	}
	if strings.Contains(output, "Findings:") {
		t.Errorf("Expected no findings section for a clean report, got:\n%s", output)
	}
}

func TestTableFormatter_FormatStoredReport(t *testing.T) {
	formatter := NewTableFormatter(true)
	stored := &types.StoredReport{ID: 42, Report: *sampleReport()}

	data, err := formatter.FormatStoredReport(stored)
	if err != nil {
		t.Fatalf("FormatStoredReport failed: %v", err)
	}

	if !strings.Contains(string(data), "ID:") || !strings.Contains(string(data), "42") {
		t.Errorf("Expected stored report output to carry the ID, got:\n%s", string(data))
	}
}

func TestTableFormatter_FormatHistory(t *testing.T) {
	formatter := NewTableFormatter(true)

	t.Run("empty", func(t *testing.T) {
		data, err := formatter.FormatHistory(nil)
		if err != nil {
			t.Fatalf("FormatHistory failed: %v", err)
		}
		if string(data) != "No reports found.\n" {
			t.Errorf("Expected empty message, got: %q", string(data))
		}
	})

	t.Run("rows", func(t *testing.T) {
		reports := []types.StoredReport{
			{ID: 2, Report: *sampleReport()},
			{ID: 1, Report: *cleanReport()},
		}

		data, err := formatter.FormatHistory(reports)
		if err != nil {
			t.Fatalf("FormatHistory failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{"ID", "Environment", "production", "yes", "no"} {
			if !strings.Contains(output, want) {
				t.Errorf("Expected history to contain %q, got:\n%s", want, output)
			}
		}
	})
}

func TestTableFormatter_FormatStatistics(t *testing.T) {
	formatter := NewTableFormatter(true)
	stats := &types.StatisticsReport{
		Period:    "7 days",
		StartDate: time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
		Summary: types.StatisticsSummary{
			TotalReports:        3,
			DriftReports:        2,
			DriftPercentage:     66.666,
			AvgIssues:           1.3333,
			MaxIssues:           3,
			TotalHighSeverity:   2,
			TotalMediumSeverity: 1,
			TotalLowSeverity:    1,
		},
		Trend: []types.DailyTrend{
			{ReportDate: "2024-03-10", ReportsCount: 2, DriftCount: 1, AvgIssues: 1.5},
		},
	}

	data, err := formatter.FormatStatistics(stats)
	if err != nil {
		t.Fatalf("FormatStatistics failed: %v", err)
	}

	output := string(data)
	for _, want := range []string{
		"Drift Statistics",
		"Period:",
		"7 days",
		"Drift Rate:",
		"66.7%",
		"Average Issues:",
		"1.33",
		"Daily Trend:",
		"2024-03-10",
		"1.50",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected statistics to contain %q, got:\n%s", want, output)
		}
	}
}

func TestTableFormatter_FormatTrends(t *testing.T) {
	formatter := NewTableFormatter(true)

	t.Run("empty", func(t *testing.T) {
		data, err := formatter.FormatTrends(map[string][]types.TrendPoint{})
		if err != nil {
			t.Fatalf("FormatTrends failed: %v", err)
		}
		if string(data) != "No trend data found.\n" {
			t.Errorf("Expected empty message, got: %q", string(data))
		}
	})

	t.Run("sorted sections", func(t *testing.T) {
		timestamp := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
		trends := map[string][]types.TrendPoint{
			"expected_containers": {
				{Timestamp: timestamp, ResourceName: "containers", Expected: "3"},
			},
			"actual_containers": {
				{Timestamp: timestamp, ResourceName: "containers", Actual: "2"},
			},
		}

		data, err := formatter.FormatTrends(trends)
		if err != nil {
			t.Fatalf("FormatTrends failed: %v", err)
		}

		output := string(data)
		actualIdx := strings.Index(output, "actual_containers:")
		expectedIdx := strings.Index(output, "expected_containers:")
		if actualIdx < 0 || expectedIdx < 0 {
			t.Fatalf("Expected both sections, got:\n%s", output)
		}
		if actualIdx > expectedIdx {
			t.Errorf("Expected sections in sorted order, got:\n%s", output)
		}
		if !strings.Contains(output, "-") {
			t.Errorf("Expected empty sides rendered as dashes, got:\n%s", output)
		}
	})
}

func TestJSONFormatter_FormatReport(t *testing.T) {
	formatter := NewJSONFormatter()

	data, err := formatter.FormatReport(sampleReport())
	if err != nil {
		t.Fatalf("FormatReport failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Expected valid JSON, got error: %v", err)
	}
	if decoded["drift_detected"] != true {
		t.Errorf("Expected drift_detected true, got: %v", decoded["drift_detected"])
	}
	if decoded["environment"] != "production" {
		t.Errorf("Expected environment, got: %v", decoded["environment"])
	}
}

func TestYAMLFormatter_FormatReport(t *testing.T) {
	formatter := NewYAMLFormatter()

	data, err := formatter.FormatReport(sampleReport())
	if err != nil {
		t.Fatalf("FormatReport failed: %v", err)
	}

	output := string(data)
	if !strings.Contains(output, "environment: production") {
		t.Errorf("Expected YAML environment field, got:\n%s", output)
	}
	if !strings.Contains(output, "missing_container") {
		t.Errorf("Expected YAML finding type, got:\n%s", output)
	}
}

func TestRenderer_Dispatch(t *testing.T) {
	report := sampleReport()

	jsonOut, err := NewRenderer(FormatJSON, true).FormatReport(report)
	if err != nil {
		t.Fatalf("JSON render failed: %v", err)
	}
	if !strings.HasPrefix(string(jsonOut), "{") {
		t.Errorf("Expected JSON output, got: %s", string(jsonOut)[:20])
	}

	tableOut, err := NewRenderer(FormatTable, true).FormatReport(report)
	if err != nil {
		t.Fatalf("Table render failed: %v", err)
	}
	if !strings.HasPrefix(string(tableOut), "Drift Report") {
		t.Errorf("Expected table output, got: %s", string(tableOut)[:20])
	}

	yamlOut, err := NewRenderer(FormatYAML, true).FormatReport(report)
	if err != nil {
		t.Fatalf("YAML render failed: %v", err)
	}
	if !strings.Contains(string(yamlOut), "environment: production") {
		t.Errorf("Expected YAML output, got: %s", string(yamlOut))
	}
}

func TestWriteToFile(t *testing.T) {
	path := t.TempDir() + "/report.json"

	if err := WriteToFile([]byte(`{"ok":true}`), path); err != nil {
		t.Fatalf("WriteToFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading back failed: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("Expected file contents to round-trip, got: %q", string(data))
	}

	if err := WriteToFile([]byte("x"), t.TempDir()+"/missing/report.json"); err == nil {
		t.Errorf("Expected error for missing directory")
	}
}
