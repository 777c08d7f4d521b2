package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/driftscan/pkg/types"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func newTestStore(t *testing.T, opts ...Option) *SQLiteStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "driftscan.db")
	store, err := NewSQLiteStore(path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func missingContainerFinding(resource string) types.Finding {
	return types.Finding{
		Type:     types.DriftMissingContainer,
		Severity: types.SeverityHigh,
		Resource: resource,
		Message:  fmt.Sprintf("Expected container %s not found", resource),
		Expected: map[string]any{"image": "nginx:1.25", "status": "running"},
		Actual:   nil,
	}
}

func portCountFinding(resource string) types.Finding {
	return types.Finding{
		Type:     types.DriftPortCount,
		Severity: types.SeverityMedium,
		Resource: resource,
		Message:  fmt.Sprintf("Container %s has port count mismatch", resource),
		Expected: 2,
		Actual:   1,
	}
}

func restartPolicyFinding(resource string) types.Finding {
	return types.Finding{
		Type:     types.DriftRestartPolicy,
		Severity: types.SeverityLow,
		Resource: resource,
		Message:  fmt.Sprintf("Container %s has restart policy drift", resource),
		Expected: "always",
		Actual:   "no",
	}
}

// sampleReport builds a report dated ts with the given findings, summary
// tallies derived from them.
func sampleReport(ts time.Time, environment string, findings ...types.Finding) types.Report {
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

	return types.Report{
		Timestamp:     ts,
		Environment:   environment,
		DriftDetected: len(findings) > 0,
		Summary:       summary,
		DriftDetails:  findings,
		InfrastructureState: types.InfrastructureState{
			Expected: types.ExpectedState{Containers: 3, Networks: 2, Volumes: 1, Images: 3},
			Actual:   types.ActualState{Containers: 2, ContainersRunning: 2, Networks: 2, Volumes: 1},
		},
		RawData: types.RawData{
			TerraformStateAvailable: true,
			DockerStateAvailable:    true,
			LastCheck:               ts,
		},
	}
}

// requireSameReport compares reports through their JSON form because finding
// payloads are untyped and lose their Go types on the way through the store.
func requireSameReport(t *testing.T, want types.Report, got types.Report) {
	t.Helper()

	wantJSON, err := json.Marshal(want)
	require.NoError(t, err)
	gotJSON, err := json.Marshal(got)
	require.NoError(t, err)
	require.JSONEq(t, string(wantJSON), string(gotJSON))
}

func TestNewSQLiteStore_CreatesSchema(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.CheckSchema())
	assert.NotEmpty(t, store.Path())
}

func TestNewSQLiteStore_InMemory(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ts := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	id, err := store.StoreReport(context.Background(), sampleReport(ts, "production"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	latest, err := store.GetLatestReport(context.Background(), "")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, id, latest.ID)
}

func TestSQLiteStore_StoreReport_AssignsIncreasingIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	first, err := store.StoreReport(ctx, sampleReport(base, "production"))
	require.NoError(t, err)
	second, err := store.StoreReport(ctx, sampleReport(base.Add(time.Hour), "production"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
}

func TestSQLiteStore_StoreAndGetLatest_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ts := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

	want := sampleReport(ts, "production",
		missingContainerFinding("api"),
		portCountFinding("web"),
		restartPolicyFinding("worker"),
	)
	id, err := store.StoreReport(ctx, want)
	require.NoError(t, err)

	got, err := store.GetLatestReport(ctx, "production")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, id, got.ID)
	requireSameReport(t, want, got.Report)
}

func TestSQLiteStore_StoreReport_EmptyFindingsStayEmpty(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ts := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	_, err := store.StoreReport(ctx, sampleReport(ts, "production"))
	require.NoError(t, err)

	got, err := store.GetLatestReport(ctx, "production")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.NotNil(t, got.DriftDetails)
	assert.Empty(t, got.DriftDetails)

	data, err := json.Marshal(got.Report)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"drift_details":[]`)
}

func TestSQLiteStore_GetLatestReport_Empty(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetLatestReport(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_GetLatestReport_FiltersEnvironment(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	prodID, err := store.StoreReport(ctx, sampleReport(base, "production"))
	require.NoError(t, err)
	stagingID, err := store.StoreReport(ctx, sampleReport(base.Add(time.Hour), "staging"))
	require.NoError(t, err)

	prod, err := store.GetLatestReport(ctx, "production")
	require.NoError(t, err)
	require.NotNil(t, prod)
	assert.Equal(t, prodID, prod.ID)
	assert.Equal(t, "production", prod.Environment)

	// No filter picks the newest across environments.
	newest, err := store.GetLatestReport(ctx, "")
	require.NoError(t, err)
	require.NotNil(t, newest)
	assert.Equal(t, stagingID, newest.ID)

	missing, err := store.GetLatestReport(ctx, "qa")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLiteStore_GetLatestReport_TieBreaksOnID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ts := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	_, err := store.StoreReport(ctx, sampleReport(ts, "production"))
	require.NoError(t, err)
	second, err := store.StoreReport(ctx, sampleReport(ts, "production"))
	require.NoError(t, err)

	got, err := store.GetLatestReport(ctx, "production")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second, got.ID)
}

func TestSQLiteStore_ListReports(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	environments := []string{"production", "staging", "production", "staging", "production"}
	ids := make([]int64, 0, len(environments))
	for i, env := range environments {
		id, err := store.StoreReport(ctx, sampleReport(base.AddDate(0, 0, i), env))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	t.Run("newest first", func(t *testing.T) {
		got, err := store.ListReports(ctx, ListFilter{})
		require.NoError(t, err)
		require.Len(t, got, 5)
		for i, stored := range got {
			assert.Equal(t, ids[len(ids)-1-i], stored.ID)
		}
	})

	t.Run("environment filter", func(t *testing.T) {
		got, err := store.ListReports(ctx, ListFilter{Environment: "production"})
		require.NoError(t, err)
		require.Len(t, got, 3)
		for _, stored := range got {
			assert.Equal(t, "production", stored.Environment)
		}
	})

	t.Run("limit", func(t *testing.T) {
		got, err := store.ListReports(ctx, ListFilter{Limit: 2})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, ids[4], got[0].ID)
		assert.Equal(t, ids[3], got[1].ID)
	})

	t.Run("inclusive time range", func(t *testing.T) {
		got, err := store.ListReports(ctx, ListFilter{
			Start: base.AddDate(0, 0, 1),
			End:   base.AddDate(0, 0, 3),
		})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, ids[3], got[0].ID)
		assert.Equal(t, ids[2], got[1].ID)
		assert.Equal(t, ids[1], got[2].ID)
	})

	t.Run("no matches", func(t *testing.T) {
		got, err := store.ListReports(ctx, ListFilter{Environment: "qa"})
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestSQLiteStore_ListReports_DefaultLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < DefaultListLimit+3; i++ {
		_, err := store.StoreReport(ctx, sampleReport(base.Add(time.Duration(i)*time.Hour), "production"))
		require.NoError(t, err)
	}

	got, err := store.ListReports(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, got, DefaultListLimit)
}

func TestSQLiteStore_GetStatistics(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	store := newTestStore(t, WithClock(fixedClock{now: now}))
	ctx := context.Background()

	seed := []struct {
		ts       time.Time
		env      string
		findings []types.Finding
	}{
		// Outside the 7 day window.
		{time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), "production", []types.Finding{missingContainerFinding("old")}},
		// Inside the window.
		{time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC), "production", []types.Finding{
			missingContainerFinding("api"),
			missingContainerFinding("worker"),
			portCountFinding("web"),
		}},
		{time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC), "production", nil},
		{time.Date(2024, 3, 14, 8, 0, 0, 0, time.UTC), "production", []types.Finding{restartPolicyFinding("web")}},
		{time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC), "staging", []types.Finding{
			portCountFinding("db"),
			portCountFinding("cache"),
		}},
	}
	for _, s := range seed {
		_, err := store.StoreReport(ctx, sampleReport(s.ts, s.env, s.findings...))
		require.NoError(t, err)
	}

	t.Run("single environment", func(t *testing.T) {
		stats, err := store.GetStatistics(ctx, "production", 7)
		require.NoError(t, err)
		require.NotNil(t, stats)

		assert.Equal(t, "7 days", stats.Period)
		assert.True(t, stats.StartDate.Equal(now.AddDate(0, 0, -7)))
		assert.True(t, stats.EndDate.Equal(now))

		assert.Equal(t, int64(3), stats.Summary.TotalReports)
		assert.Equal(t, int64(2), stats.Summary.DriftReports)
		assert.InDelta(t, 66.666, stats.Summary.DriftPercentage, 0.01)
		assert.InDelta(t, 4.0/3.0, stats.Summary.AvgIssues, 0.001)
		assert.Equal(t, int64(3), stats.Summary.MaxIssues)
		assert.Equal(t, int64(2), stats.Summary.TotalHighSeverity)
		assert.Equal(t, int64(1), stats.Summary.TotalMediumSeverity)
		assert.Equal(t, int64(1), stats.Summary.TotalLowSeverity)

		require.Len(t, stats.Trend, 2)
		assert.Equal(t, "2024-03-10", stats.Trend[0].ReportDate)
		assert.Equal(t, int64(2), stats.Trend[0].ReportsCount)
		assert.Equal(t, int64(1), stats.Trend[0].DriftCount)
		assert.InDelta(t, 1.5, stats.Trend[0].AvgIssues, 0.001)
		assert.Equal(t, "2024-03-14", stats.Trend[1].ReportDate)
		assert.Equal(t, int64(1), stats.Trend[1].ReportsCount)
		assert.Equal(t, int64(1), stats.Trend[1].DriftCount)
	})

	t.Run("all environments", func(t *testing.T) {
		stats, err := store.GetStatistics(ctx, "", 7)
		require.NoError(t, err)

		assert.Equal(t, int64(4), stats.Summary.TotalReports)
		assert.Equal(t, int64(3), stats.Summary.DriftReports)
		assert.InDelta(t, 75.0, stats.Summary.DriftPercentage, 0.001)
		assert.InDelta(t, 1.5, stats.Summary.AvgIssues, 0.001)
		assert.Equal(t, int64(3), stats.Summary.TotalMediumSeverity)
		require.Len(t, stats.Trend, 3)
		assert.Equal(t, "2024-03-12", stats.Trend[1].ReportDate)
	})

	t.Run("empty window", func(t *testing.T) {
		stats, err := store.GetStatistics(ctx, "production", 0)
		require.NoError(t, err)
		require.NotNil(t, stats)

		assert.Equal(t, "0 days", stats.Period)
		assert.Equal(t, int64(0), stats.Summary.TotalReports)
		assert.Equal(t, int64(0), stats.Summary.DriftReports)
		assert.Zero(t, stats.Summary.DriftPercentage)
		assert.Zero(t, stats.Summary.AvgIssues)
		assert.Equal(t, int64(0), stats.Summary.MaxIssues)
		assert.NotNil(t, stats.Trend)
		assert.Empty(t, stats.Trend)
	})
}

func TestSQLiteStore_GetInfrastructureTrends(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	store := newTestStore(t, WithClock(fixedClock{now: now}))
	ctx := context.Background()

	first := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	second := time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC)

	_, err := store.StoreReport(ctx, sampleReport(first, "production"))
	require.NoError(t, err)
	_, err = store.StoreReport(ctx, sampleReport(second, "production"))
	require.NoError(t, err)

	// Different counts so a leak across environments would be visible.
	staging := sampleReport(time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC), "staging")
	staging.InfrastructureState.Expected.Containers = 9
	_, err = store.StoreReport(ctx, staging)
	require.NoError(t, err)

	// Outside the window.
	_, err = store.StoreReport(ctx, sampleReport(time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC), "production"))
	require.NoError(t, err)

	trends, err := store.GetInfrastructureTrends(ctx, "production", 7)
	require.NoError(t, err)

	kinds := []string{
		"expected_containers", "expected_networks", "expected_volumes", "expected_images",
		"actual_containers", "actual_containers_running", "actual_networks", "actual_volumes",
	}
	for _, kind := range kinds {
		require.Contains(t, trends, kind)
		require.Len(t, trends[kind], 2, "series %s", kind)
	}

	containers := trends["expected_containers"]
	assert.True(t, containers[0].Timestamp.Equal(first))
	assert.True(t, containers[1].Timestamp.Equal(second))
	assert.Equal(t, "containers", containers[0].ResourceName)
	assert.Equal(t, "3", containers[0].Expected)
	assert.Equal(t, "", containers[0].Actual)

	running := trends["actual_containers_running"]
	assert.Equal(t, "containers_running", running[0].ResourceName)
	assert.Equal(t, "", running[0].Expected)
	assert.Equal(t, "2", running[0].Actual)

	// The staging report's counts must not show up in the production series.
	for _, point := range containers {
		assert.NotEqual(t, "9", point.Expected)
	}
}

func TestSQLiteStore_CleanupOlderThan(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	store := newTestStore(t, WithClock(fixedClock{now: now}))
	ctx := context.Background()

	old := []time.Time{
		now.AddDate(0, 0, -40),
		now.AddDate(0, 0, -35),
	}
	for _, ts := range old {
		_, err := store.StoreReport(ctx, sampleReport(ts, "production",
			missingContainerFinding("api"),
			portCountFinding("web"),
		))
		require.NoError(t, err)
	}
	recentID, err := store.StoreReport(ctx, sampleReport(now.AddDate(0, 0, -5), "production",
		restartPolicyFinding("web"),
	))
	require.NoError(t, err)

	removed, err := store.CleanupOlderThan(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	remaining, err := store.ListReports(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, recentID, remaining[0].ID)

	var details, states int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM drift_details`).Scan(&details))
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM infrastructure_state`).Scan(&states))
	assert.Equal(t, 1, details)
	assert.Equal(t, 8, states)

	// A second pass over the same window removes nothing.
	removed, err = store.CleanupOlderThan(ctx, 30)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestSQLiteStore_ExportRange(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	store := newTestStore(t, WithClock(fixedClock{now: now}))
	ctx := context.Background()

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)

	inRange := []time.Time{
		time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC),
	}
	for _, ts := range inRange {
		_, err := store.StoreReport(ctx, sampleReport(ts, "production"))
		require.NoError(t, err)
	}
	_, err := store.StoreReport(ctx, sampleReport(time.Date(2024, 2, 20, 9, 0, 0, 0, time.UTC), "production"))
	require.NoError(t, err)
	_, err = store.StoreReport(ctx, sampleReport(time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC), "staging"))
	require.NoError(t, err)

	bundle, err := store.ExportRange(ctx, "production", start, end)
	require.NoError(t, err)
	require.NotNil(t, bundle)

	assert.True(t, bundle.ExportTimestamp.Equal(now))
	assert.Equal(t, "production", bundle.Environment)
	assert.True(t, bundle.StartDate.Equal(start))
	assert.True(t, bundle.EndDate.Equal(end))
	assert.Equal(t, 3, bundle.TotalReports)
	require.Len(t, bundle.Reports, 3)

	// Newest first.
	assert.True(t, bundle.Reports[0].Timestamp.Equal(inRange[2]))
	assert.True(t, bundle.Reports[2].Timestamp.Equal(inRange[0]))

	empty, err := store.ExportRange(ctx, "qa", start, end)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalReports)
	assert.NotNil(t, empty.Reports)
	assert.Empty(t, empty.Reports)
}

func TestEncodeValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, ""},
		{"string", "running", "running"},
		{"int", 2, "2"},
		{"slice", []string{"80:8080"}, `["80:8080"]`},
		{"descriptor", map[string]any{"image": "nginx:1.25"}, `{"image":"nginx:1.25"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, encodeValue(tt.value))
		})
	}
}

func TestStorageError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("disk full")
	err := &Error{Op: "insert report", Err: inner}

	assert.Equal(t, "storage: insert report: disk full", err.Error())
	assert.ErrorIs(t, err, inner)
}
