package domain

import "context"

// LoaderPort is the public port the ingest module exposes: load each of the
// three CSV collaborator schemas, truncate-then-replace.
type LoaderPort interface {
	LoadPolls(ctx context.Context, csvPath string) (LoadResult, error)
	LoadBusinessHours(ctx context.Context, csvPath string) (LoadResult, error)
	LoadTimezones(ctx context.Context, csvPath string) (LoadResult, error)
}

// StorageRepo is the write surface ingest uses to replace stored rows.
type StorageRepo interface {
	// ReplacePolls truncates polls and bulk-inserts rows, in chunks.
	ReplacePolls(ctx context.Context, rows []Poll, chunkSize int) (int, error)

	// ReplaceBusinessHours truncates business_hours and inserts rows.
	ReplaceBusinessHours(ctx context.Context, rows []BusinessHour, chunkSize int) (int, error)

	// ReplaceTimezones truncates store_timezones and bulk-inserts rows.
	ReplaceTimezones(ctx context.Context, rows []StoreTimezone, chunkSize int) (int, error)
}
