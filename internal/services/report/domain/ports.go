package domain

import (
	"context"
	"time"
)

// RunnerPort is the public port exposed by the report module: other modules
// (and cmd entrypoints) trigger and inspect reports through this seam.
type RunnerPort interface {
	// Trigger allocates a report_id, records it Running, and schedules the
	// orchestrator in the background. It returns immediately.
	Trigger(ctx context.Context) (reportID string, err error)

	// Get returns the current state of a report job.
	Get(ctx context.Context, reportID string) (ReportJob, error)
}

// StorageRepo is the read surface the aggregator and orchestrator use to
// pull polls, schedules, and timezones. Implementations own their own
// session; the core never assumes connection sharing across stores.
type StorageRepo interface {
	// StoreIDs returns the ascending, deduplicated union of store ids
	// appearing in polls, business hours, or timezones.
	StoreIDs(ctx context.Context) ([]string, error)

	// MaxPollTimestamp returns the latest timestamp_utc across all polls,
	// and false if the poll table is empty.
	MaxPollTimestamp(ctx context.Context) (time.Time, bool, error)

	// PollsInRange returns a store's polls within [from, to], sorted
	// ascending by timestamp.
	PollsInRange(ctx context.Context, storeID string, from, to time.Time) ([]Poll, error)

	// BusinessHours returns a store's schedule rows, in no particular order.
	BusinessHours(ctx context.Context, storeID string) ([]BusinessHour, error)

	// Timezone returns a store's declared zone, or ("", false) if absent.
	Timezone(ctx context.Context, storeID string) (string, bool, error)
}

// JobRepo is the durable job-state collaborator. Every mutation is a small,
// independent transaction; the core never assumes in-memory visibility of
// job state between API calls.
type JobRepo interface {
	// Create records a fresh report_id in the Running state.
	Create(ctx context.Context, reportID string, createdAt time.Time) error

	// UpdateProgress advances percent_complete for a running job.
	UpdateProgress(ctx context.Context, reportID string, percentComplete int) error

	// Complete marks a job finished successfully with its CSV path.
	Complete(ctx context.Context, reportID string, csvPath string, finishedAt time.Time) error

	// Fail marks a job finished unsuccessfully; no CSV is produced.
	Fail(ctx context.Context, reportID string, finishedAt time.Time) error

	// Get fetches a job by id. ok is false when the id is unknown.
	Get(ctx context.Context, reportID string) (ReportJob, bool, error)
}
