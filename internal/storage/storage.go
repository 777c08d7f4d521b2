package storage

import (
	"context"
	"time"

	"github.com/yairfalse/driftscan/pkg/types"
)

// DefaultListLimit caps report listings when the caller does not pick a limit.
const DefaultListLimit = 10

// ExportLimit caps the number of reports a single export materializes.
const ExportLimit = 1000

// Clock abstracts wall-clock time so windowed queries are deterministic in
// tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the Clock used outside of tests.
type SystemClock struct{}

// Now returns the current time
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ListFilter narrows a report listing. Zero values mean no constraint; Start
// and End are inclusive.
type ListFilter struct {
	Environment string
	Start       time.Time
	End         time.Time
	Limit       int
}

// Store is the durable, append-only home of drift reports. Reports are never
// updated in place; history only grows, except through explicit cleanup.
// Implementations must be safe for concurrent use and assign strictly
// increasing report identifiers. Absent results are returned as nil (or an
// empty slice), never as an error.
type Store interface {
	// StoreReport persists a report with its findings and infrastructure
	// rows atomically and returns the assigned identifier.
	StoreReport(ctx context.Context, report types.Report) (int64, error)

	// GetLatestReport returns the newest report, scoped to an environment
	// when one is given. Timestamp ties go to the highest identifier.
	// Returns nil when nothing is stored.
	GetLatestReport(ctx context.Context, environment string) (*types.StoredReport, error)

	// ListReports returns reports matching the filter, newest first.
	ListReports(ctx context.Context, filter ListFilter) ([]types.StoredReport, error)

	// GetStatistics aggregates reports from the trailing window of whole
	// days, including a daily trend series ordered by date.
	GetStatistics(ctx context.Context, environment string, windowDays int) (*types.StatisticsReport, error)

	// GetInfrastructureTrends returns resource count series from the
	// trailing window, grouped by state row kind.
	GetInfrastructureTrends(ctx context.Context, environment string, windowDays int) (map[string][]types.TrendPoint, error)

	// CleanupOlderThan deletes reports older than the retention window,
	// children included, and returns how many reports were removed.
	CleanupOlderThan(ctx context.Context, retentionDays int) (int64, error)

	// ExportRange materializes up to ExportLimit reports from the given
	// time range into an export bundle.
	ExportRange(ctx context.Context, environment string, start, end time.Time) (*types.ExportBundle, error)

	// Close releases the underlying resources.
	Close() error
}

// Error wraps a storage failure with the operation that produced it. Storage
// failures are fatal to the operation that hit them and always propagate.
type Error struct {
	Op  string
	Err error
}

// Error returns the error message
func (e *Error) Error() string {
	return "storage: " + e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}
