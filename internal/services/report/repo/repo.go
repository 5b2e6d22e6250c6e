// Package repo provides postgres access for per-store uptime reporting.
package repo

import (
	"context"
	"database/sql"
	"time"

	"storewatch/internal/modkit/repokit"
	perr "storewatch/internal/platform/errors"
	"storewatch/internal/platform/store"
	"storewatch/internal/services/report/domain"
)

type (
	// PG is a Postgres binder for domain.StorageRepo.
	PG struct{}

	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.StorageRepo.
func NewPG() repokit.Binder[domain.StorageRepo] { return PG{} }

// Bind implements repokit.Binder.
func (PG) Bind(q repokit.Queryer) domain.StorageRepo { return &queries{q: q} }

// StoreIDs returns the ascending union of store ids from polls, business
// hours, and timezones.
func (r *queries) StoreIDs(ctx context.Context) ([]string, error) {
	const q = `
		SELECT store_id FROM polls
		UNION
		SELECT store_id FROM business_hours
		UNION
		SELECT store_id FROM store_timezones
		ORDER BY store_id
	`
	return store.Many(ctx, r.q, func(row store.Row) (string, error) {
		var id string
		err := row.Scan(&id)
		return id, err
	}, q)
}

// MaxPollTimestamp returns the latest timestamp_utc across all polls.
func (r *queries) MaxPollTimestamp(ctx context.Context) (time.Time, bool, error) {
	const q = `SELECT max(timestamp_utc) FROM polls`
	var ts sql.NullTime
	row := r.q.QueryRow(ctx, q)
	if err := row.Scan(&ts); err != nil {
		return time.Time{}, false, err
	}
	if !ts.Valid {
		return time.Time{}, false, nil
	}
	return ts.Time.UTC(), true, nil
}

// PollsInRange returns a store's polls in [from, to], sorted ascending.
func (r *queries) PollsInRange(ctx context.Context, storeID string, from, to time.Time) ([]domain.Poll, error) {
	const q = `
		SELECT store_id, timestamp_utc, status
		FROM polls
		WHERE store_id = $1 AND timestamp_utc >= $2 AND timestamp_utc <= $3
		ORDER BY timestamp_utc ASC
	`
	return store.Many(ctx, r.q, func(row store.Row) (domain.Poll, error) {
		var p domain.Poll
		var status string
		if err := row.Scan(&p.StoreID, &p.TimestampUTC, &status); err != nil {
			return domain.Poll{}, err
		}
		p.TimestampUTC = p.TimestampUTC.UTC()
		p.Status = domain.Status(status)
		return p, nil
	}, q, storeID, from.UTC(), to.UTC())
}

// BusinessHours returns a store's schedule rows.
func (r *queries) BusinessHours(ctx context.Context, storeID string) ([]domain.BusinessHour, error) {
	const q = `
		SELECT store_id, day_of_week, start_local, end_local
		FROM business_hours
		WHERE store_id = $1
	`
	return store.Many(ctx, r.q, func(row store.Row) (domain.BusinessHour, error) {
		var h domain.BusinessHour
		var start, end time.Time
		if err := row.Scan(&h.StoreID, &h.DayOfWeek, &start, &end); err != nil {
			return domain.BusinessHour{}, err
		}
		h.StartLocal = localTimeOf(start)
		h.EndLocal = localTimeOf(end)
		return h, nil
	}, q, storeID)
}

// localTimeOf extracts HH:MM:SS from a pgx-scanned TIME value, which arrives
// as a time.Time anchored at the Go zero date.
func localTimeOf(t time.Time) domain.LocalTime {
	return domain.LocalTime{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

// Timezone returns a store's declared zone, or ("", false) if absent.
func (r *queries) Timezone(ctx context.Context, storeID string) (string, bool, error) {
	const q = `SELECT tz FROM store_timezones WHERE store_id = $1`
	tz, err := store.Scalar[string](ctx, r.q, q, storeID)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return tz, true, nil
}

// JobsPG is a Postgres binder for domain.JobRepo.
type JobsPG struct{}

// NewJobsPG returns a Postgres binder for domain.JobRepo.
func NewJobsPG() repokit.Binder[domain.JobRepo] { return JobsPG{} }

// Bind implements repokit.Binder.
func (JobsPG) Bind(q repokit.Queryer) domain.JobRepo { return &jobQueries{q: q} }

type jobQueries struct{ q repokit.Queryer }

// Create records a fresh report_id in the Running state.
func (r *jobQueries) Create(ctx context.Context, reportID string, createdAt time.Time) error {
	const q = `
		INSERT INTO report_jobs (report_id, status, percent_complete, created_at)
		VALUES ($1, 'Running', 0, $2)
	`
	_, err := r.q.Exec(ctx, q, reportID, createdAt.UTC())
	return err
}

// UpdateProgress advances percent_complete for a running job.
func (r *jobQueries) UpdateProgress(ctx context.Context, reportID string, percentComplete int) error {
	const q = `
		UPDATE report_jobs SET percent_complete = $2
		WHERE report_id = $1 AND status = 'Running'
	`
	_, err := r.q.Exec(ctx, q, reportID, percentComplete)
	return err
}

// Complete marks a job finished successfully with its CSV path.
func (r *jobQueries) Complete(ctx context.Context, reportID string, csvPath string, finishedAt time.Time) error {
	const q = `
		UPDATE report_jobs SET status = 'Complete', percent_complete = 100,
			csv_path = $2, finished_at = $3
		WHERE report_id = $1
	`
	_, err := r.q.Exec(ctx, q, reportID, csvPath, finishedAt.UTC())
	return err
}

// Fail marks a job finished unsuccessfully; no CSV is produced.
func (r *jobQueries) Fail(ctx context.Context, reportID string, finishedAt time.Time) error {
	const q = `
		UPDATE report_jobs SET status = 'Failed', finished_at = $2
		WHERE report_id = $1
	`
	_, err := r.q.Exec(ctx, q, reportID, finishedAt.UTC())
	return err
}

// Get fetches a job by id.
func (r *jobQueries) Get(ctx context.Context, reportID string) (domain.ReportJob, bool, error) {
	const q = `
		SELECT report_id, status, percent_complete, coalesce(csv_path, ''), created_at, finished_at
		FROM report_jobs
		WHERE report_id = $1
	`
	job, err := store.One(ctx, r.q, func(row store.Row) (domain.ReportJob, error) {
		var j domain.ReportJob
		var status string
		var finished sql.NullTime
		if err := row.Scan(&j.ReportID, &status, &j.PercentComplete, &j.CSVPath, &j.CreatedAt, &finished); err != nil {
			return domain.ReportJob{}, err
		}
		j.Status = domain.JobStatus(status)
		j.CreatedAt = j.CreatedAt.UTC()
		if finished.Valid {
			t := finished.Time.UTC()
			j.FinishedAt = &t
		}
		return j, nil
	}, q, reportID)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.ReportJob{}, false, nil
		}
		return domain.ReportJob{}, false, err
	}
	return job, true, nil
}
