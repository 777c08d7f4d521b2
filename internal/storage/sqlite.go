package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/yairfalse/driftscan/internal/storage/migrations"
	"github.com/yairfalse/driftscan/pkg/types"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements Store on a single SQLite database. WAL journaling
// keeps readers from blocking the writer; identifiers come from the reports
// table and are assigned in commit order.
type SQLiteStore struct {
	db    *sql.DB
	path  string
	clock Clock
}

// Option customizes a SQLiteStore
type Option func(*SQLiteStore)

// WithClock replaces the store's clock. Tests use it to pin the windowed
// queries to a known time.
func WithClock(clock Clock) Option {
	return func(s *SQLiteStore) {
		s.clock = clock
	}
}

// NewSQLiteStore opens the database at path, creating it if needed, and
// brings the schema up to date. path may be ":memory:" for an in-memory
// store.
func NewSQLiteStore(path string, opts ...Option) (*SQLiteStore, error) {
	db, err := openConnection(path)
	if err != nil {
		return nil, &Error{Op: "open database", Err: err}
	}

	if err := migrations.Up(db); err != nil {
		db.Close()
		return nil, &Error{Op: "migrate schema", Err: err}
	}

	store := &SQLiteStore{
		db:    db,
		path:  path,
		clock: SystemClock{},
	}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// openConnection configures the connection through DSN parameters so every
// pooled connection gets the same pragmas.
func openConnection(path string) (*sql.DB, error) {
	dsn := path + "?_foreign_keys=1&_busy_timeout=5000"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dsn += "&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == ":memory:" {
		// Every pool connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}

	return db, nil
}

// StoreReport persists the report, its findings and its infrastructure-state
// rows in one transaction and returns the assigned identifier.
func (s *SQLiteStore) StoreReport(ctx context.Context, report types.Report) (int64, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return 0, &Error{Op: "encode report", Err: err}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &Error{Op: "begin transaction", Err: err}
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO drift_reports (
			timestamp, environment, drift_detected, total_issues,
			high_severity, medium_severity, low_severity, report_data, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.Timestamp.UTC(), report.Environment, report.DriftDetected,
		report.Summary.TotalIssues, report.Summary.HighSeverity,
		report.Summary.MediumSeverity, report.Summary.LowSeverity,
		string(data), s.clock.Now().UTC(),
	)
	if err != nil {
		return 0, &Error{Op: "insert report", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, &Error{Op: "read report id", Err: err}
	}

	for _, finding := range report.DriftDetails {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO drift_details (
				report_id, drift_type, severity, resource, message,
				expected_value, actual_value
			) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, string(finding.Type), string(finding.Severity),
			finding.Resource, finding.Message,
			encodeValue(finding.Expected), encodeValue(finding.Actual),
		)
		if err != nil {
			return 0, &Error{Op: "insert finding", Err: err}
		}
	}

	stateTime := report.Timestamp.UTC()
	for _, row := range stateRows(report.InfrastructureState) {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO infrastructure_state (
				report_id, resource_type, resource_name, expected_state,
				actual_state, state_timestamp
			) VALUES (?, ?, ?, ?, ?, ?)`,
			id, row.resourceType, row.resourceName, row.expected, row.actual, stateTime,
		)
		if err != nil {
			return 0, &Error{Op: "insert infrastructure state", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, &Error{Op: "commit report", Err: err}
	}

	return id, nil
}

// GetLatestReport returns the newest report, ties broken by highest id, or
// nil when nothing matches.
func (s *SQLiteStore) GetLatestReport(ctx context.Context, environment string) (*types.StoredReport, error) {
	query := `SELECT id, report_data FROM drift_reports`
	var args []any
	if environment != "" {
		query += ` WHERE environment = ?`
		args = append(args, environment)
	}
	query += ` ORDER BY timestamp DESC, id DESC LIMIT 1`

	var (
		id   int64
		blob string
	)
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&id, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &Error{Op: "query latest report", Err: err}
	}

	return decodeStoredReport(id, blob)
}

// ListReports returns reports matching the filter, newest first.
func (s *SQLiteStore) ListReports(ctx context.Context, filter ListFilter) ([]types.StoredReport, error) {
	query := `SELECT id, report_data FROM drift_reports WHERE 1=1`
	var args []any
	if filter.Environment != "" {
		query += ` AND environment = ?`
		args = append(args, filter.Environment)
	}
	if !filter.Start.IsZero() {
		query += ` AND timestamp >= ?`
		args = append(args, filter.Start.UTC())
	}
	if !filter.End.IsZero() {
		query += ` AND timestamp <= ?`
		args = append(args, filter.End.UTC())
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	query += ` ORDER BY timestamp DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &Error{Op: "query reports", Err: err}
	}
	defer rows.Close()

	reports := make([]types.StoredReport, 0)
	for rows.Next() {
		var (
			id   int64
			blob string
		)
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, &Error{Op: "scan report", Err: err}
		}
		stored, err := decodeStoredReport(id, blob)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *stored)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Op: "iterate reports", Err: err}
	}

	return reports, nil
}

// GetStatistics aggregates the trailing windowDays of reports into summary
// numbers and a daily trend series.
func (s *SQLiteStore) GetStatistics(ctx context.Context, environment string, windowDays int) (*types.StatisticsReport, error) {
	end := s.clock.Now().UTC()
	start := end.AddDate(0, 0, -windowDays)

	query := `
		SELECT
			COUNT(*) AS total_reports,
			SUM(CASE WHEN drift_detected = 1 THEN 1 ELSE 0 END) AS drift_reports,
			AVG(total_issues) AS avg_issues,
			MAX(total_issues) AS max_issues,
			SUM(high_severity) AS total_high,
			SUM(medium_severity) AS total_medium,
			SUM(low_severity) AS total_low
		FROM drift_reports
		WHERE timestamp >= ?`
	args := []any{start}
	if environment != "" {
		query += ` AND environment = ?`
		args = append(args, environment)
	}

	var (
		total       int64
		driftCount  sql.NullInt64
		avgIssues   sql.NullFloat64
		maxIssues   sql.NullInt64
		totalHigh   sql.NullInt64
		totalMedium sql.NullInt64
		totalLow    sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, query, args...).
		Scan(&total, &driftCount, &avgIssues, &maxIssues, &totalHigh, &totalMedium, &totalLow)
	if err != nil {
		return nil, &Error{Op: "query statistics", Err: err}
	}

	divisor := total
	if divisor < 1 {
		divisor = 1
	}

	stats := &types.StatisticsReport{
		Period:    fmt.Sprintf("%d days", windowDays),
		StartDate: start,
		EndDate:   end,
		Summary: types.StatisticsSummary{
			TotalReports:        total,
			DriftReports:        driftCount.Int64,
			DriftPercentage:     float64(driftCount.Int64) / float64(divisor) * 100,
			AvgIssues:           avgIssues.Float64,
			MaxIssues:           maxIssues.Int64,
			TotalHighSeverity:   totalHigh.Int64,
			TotalMediumSeverity: totalMedium.Int64,
			TotalLowSeverity:    totalLow.Int64,
		},
		Trend: []types.DailyTrend{},
	}

	trendQuery := `
		SELECT
			DATE(timestamp) AS report_date,
			COUNT(*) AS reports_count,
			SUM(CASE WHEN drift_detected = 1 THEN 1 ELSE 0 END) AS drift_count,
			AVG(total_issues) AS avg_issues
		FROM drift_reports
		WHERE timestamp >= ?`
	trendArgs := []any{start}
	if environment != "" {
		trendQuery += ` AND environment = ?`
		trendArgs = append(trendArgs, environment)
	}
	trendQuery += ` GROUP BY DATE(timestamp) ORDER BY report_date`

	rows, err := s.db.QueryContext(ctx, trendQuery, trendArgs...)
	if err != nil {
		return nil, &Error{Op: "query trend", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var (
			day   types.DailyTrend
			drift sql.NullInt64
			avg   sql.NullFloat64
		)
		if err := rows.Scan(&day.ReportDate, &day.ReportsCount, &drift, &avg); err != nil {
			return nil, &Error{Op: "scan trend", Err: err}
		}
		day.DriftCount = drift.Int64
		day.AvgIssues = avg.Float64
		stats.Trend = append(stats.Trend, day)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Op: "iterate trend", Err: err}
	}

	return stats, nil
}

// GetInfrastructureTrends returns the infrastructure count series from the
// trailing window, keyed by state row kind (expected_containers,
// actual_volumes, ...), each series in timestamp order.
func (s *SQLiteStore) GetInfrastructureTrends(ctx context.Context, environment string, windowDays int) (map[string][]types.TrendPoint, error) {
	start := s.clock.Now().UTC().AddDate(0, 0, -windowDays)

	query := `
		SELECT state_timestamp, resource_type, resource_name, expected_state, actual_state
		FROM infrastructure_state
		WHERE state_timestamp >= ?`
	args := []any{start}
	if environment != "" {
		query += ` AND report_id IN (SELECT id FROM drift_reports WHERE environment = ?)`
		args = append(args, environment)
	}
	query += ` ORDER BY state_timestamp, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &Error{Op: "query infrastructure trends", Err: err}
	}
	defer rows.Close()

	trends := make(map[string][]types.TrendPoint)
	for rows.Next() {
		var (
			ts                         time.Time
			rowKind, name, expectedVal string
			actualVal                  string
		)
		if err := rows.Scan(&ts, &rowKind, &name, &expectedVal, &actualVal); err != nil {
			return nil, &Error{Op: "scan infrastructure trend", Err: err}
		}
		trends[rowKind] = append(trends[rowKind], types.TrendPoint{
			Timestamp:    ts,
			ResourceName: name,
			Expected:     expectedVal,
			Actual:       actualVal,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Op: "iterate infrastructure trends", Err: err}
	}

	return trends, nil
}

// CleanupOlderThan removes reports older than the retention window in one
// transaction, children first, and returns the number of reports removed.
// Running it again with the same window is a no-op.
func (s *SQLiteStore) CleanupOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := s.clock.Now().UTC().AddDate(0, 0, -retentionDays)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &Error{Op: "begin cleanup", Err: err}
	}
	defer tx.Rollback()

	// The schema cascades, but the deletes stay explicit so the cleanup does
	// not depend on the foreign_keys pragma being active.
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM drift_details
		WHERE report_id IN (SELECT id FROM drift_reports WHERE timestamp < ?)`, cutoff); err != nil {
		return 0, &Error{Op: "delete findings", Err: err}
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM infrastructure_state
		WHERE report_id IN (SELECT id FROM drift_reports WHERE timestamp < ?)`, cutoff); err != nil {
		return 0, &Error{Op: "delete infrastructure state", Err: err}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM drift_reports WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, &Error{Op: "delete reports", Err: err}
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, &Error{Op: "count removed reports", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return 0, &Error{Op: "commit cleanup", Err: err}
	}

	return removed, nil
}

// ExportRange materializes up to ExportLimit reports from the range into an
// export bundle, newest first.
func (s *SQLiteStore) ExportRange(ctx context.Context, environment string, start, end time.Time) (*types.ExportBundle, error) {
	reports, err := s.ListReports(ctx, ListFilter{
		Environment: environment,
		Start:       start,
		End:         end,
		Limit:       ExportLimit,
	})
	if err != nil {
		return nil, err
	}

	bundle := &types.ExportBundle{
		ExportTimestamp: s.clock.Now().UTC(),
		Environment:     environment,
		TotalReports:    len(reports),
		Reports:         reports,
	}
	if !start.IsZero() {
		bundle.StartDate = start.UTC()
	}
	if !end.IsZero() {
		bundle.EndDate = end.UTC()
	}

	return bundle, nil
}

// Path returns the database location the store was opened with
func (s *SQLiteStore) Path() string {
	return s.path
}

// CheckSchema verifies the database schema matches this binary's migrations
func (s *SQLiteStore) CheckSchema() error {
	return migrations.Status(s.db)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func decodeStoredReport(id int64, blob string) (*types.StoredReport, error) {
	var report types.Report
	if err := json.Unmarshal([]byte(blob), &report); err != nil {
		return nil, &Error{Op: "decode report " + strconv.FormatInt(id, 10), Err: err}
	}
	return &types.StoredReport{ID: id, Report: report}, nil
}

type stateRow struct {
	resourceType string
	resourceName string
	expected     string
	actual       string
}

// stateRows flattens the report's count summaries into one row per count in
// a fixed order, expected partitions first.
func stateRows(state types.InfrastructureState) []stateRow {
	return []stateRow{
		{"expected_containers", "containers", strconv.Itoa(state.Expected.Containers), ""},
		{"expected_networks", "networks", strconv.Itoa(state.Expected.Networks), ""},
		{"expected_volumes", "volumes", strconv.Itoa(state.Expected.Volumes), ""},
		{"expected_images", "images", strconv.Itoa(state.Expected.Images), ""},
		{"actual_containers", "containers", "", strconv.Itoa(state.Actual.Containers)},
		{"actual_containers_running", "containers_running", "", strconv.Itoa(state.Actual.ContainersRunning)},
		{"actual_networks", "networks", "", strconv.Itoa(state.Actual.Networks)},
		{"actual_volumes", "volumes", "", strconv.Itoa(state.Actual.Volumes)},
	}
}

// encodeValue serializes a finding value for the details table. Strings are
// stored bare, nil as empty, anything else as JSON.
func encodeValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}

// Compile-time check that SQLiteStore implements the Store interface
var _ Store = (*SQLiteStore)(nil)
