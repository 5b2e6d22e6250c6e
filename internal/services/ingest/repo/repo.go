// Package repo provides postgres access for CSV ingestion.
package repo

import (
	"context"
	"time"

	"storewatch/internal/modkit/repokit"
	"storewatch/internal/services/ingest/domain"
)

// PG is a Postgres binder for domain.StorageRepo.
type PG struct{}

// NewPG returns a Postgres binder for domain.StorageRepo.
func NewPG() repokit.Binder[domain.StorageRepo] { return PG{} }

// Bind implements repokit.Binder.
func (PG) Bind(q repokit.Queryer) domain.StorageRepo { return &queries{q: q} }

type queries struct{ q repokit.Queryer }

// ReplacePolls truncates polls and bulk-inserts rows in chunks, one
// transaction per chunk to bound lock and memory footprint on large CSVs.
func (r *queries) ReplacePolls(ctx context.Context, rows []domain.Poll, chunkSize int) (int, error) {
	if _, err := r.q.Exec(ctx, `TRUNCATE TABLE polls`); err != nil {
		return 0, err
	}

	total := 0
	for i := 0; i < len(rows); i += chunkSize {
		end := min(i+chunkSize, len(rows))
		chunk := rows[i:end]

		storeIDs := make([]string, len(chunk))
		timestamps := make([]time.Time, len(chunk))
		statuses := make([]string, len(chunk))
		for j, p := range chunk {
			storeIDs[j] = p.StoreID
			timestamps[j] = p.TimestampUTC
			statuses[j] = p.Status
		}

		const q = `
			INSERT INTO polls (store_id, timestamp_utc, status)
			SELECT * FROM unnest($1::text[], $2::timestamptz[], $3::text[])
		`
		if _, err := r.q.Exec(ctx, q, storeIDs, timestamps, statuses); err != nil {
			return total, err
		}
		total += len(chunk)
	}
	return total, nil
}

// ReplaceBusinessHours truncates business_hours and inserts rows with one
// INSERT statement per row.
func (r *queries) ReplaceBusinessHours(ctx context.Context, rows []domain.BusinessHour, chunkSize int) (int, error) {
	if _, err := r.q.Exec(ctx, `TRUNCATE TABLE business_hours`); err != nil {
		return 0, err
	}

	total := 0
	for i := 0; i < len(rows); i += chunkSize {
		end := min(i+chunkSize, len(rows))
		for _, h := range rows[i:end] {
			const q = `
				INSERT INTO business_hours (store_id, day_of_week, start_local, end_local)
				VALUES ($1, $2, $3, $4)
			`
			start := localTimeString(h.StartLocal)
			endStr := localTimeString(h.EndLocal)
			if _, err := r.q.Exec(ctx, q, h.StoreID, h.DayOfWeek, start, endStr); err != nil {
				return total, err
			}
			total++
		}
	}
	return total, nil
}

func localTimeString(t domain.LocalTime) string {
	return pad2(t.Hour) + ":" + pad2(t.Minute) + ":" + pad2(t.Second)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + itoa(n)
	}
	return itoa(n)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// ReplaceTimezones truncates store_timezones and bulk-inserts rows.
func (r *queries) ReplaceTimezones(ctx context.Context, rows []domain.StoreTimezone, chunkSize int) (int, error) {
	if _, err := r.q.Exec(ctx, `TRUNCATE TABLE store_timezones`); err != nil {
		return 0, err
	}

	total := 0
	for i := 0; i < len(rows); i += chunkSize {
		end := min(i+chunkSize, len(rows))
		chunk := rows[i:end]

		storeIDs := make([]string, len(chunk))
		tzs := make([]string, len(chunk))
		for j, t := range chunk {
			storeIDs[j] = t.StoreID
			tzs[j] = t.TZ
		}

		const q = `
			INSERT INTO store_timezones (store_id, tz)
			SELECT * FROM unnest($1::text[], $2::text[])
		`
		if _, err := r.q.Exec(ctx, q, storeIDs, tzs); err != nil {
			return total, err
		}
		total += len(chunk)
	}
	return total, nil
}
