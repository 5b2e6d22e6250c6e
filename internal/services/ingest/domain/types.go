// Package domain holds the core types for CSV ingestion of store status
// polls, business-hour schedules, and timezones.
package domain

import "time"

// Poll mirrors report/domain.Poll; duplicated here so ingest has no
// compile-time dependency on the report module.
type Poll struct {
	StoreID      string
	TimestampUTC time.Time
	Status       string
}

// BusinessHour mirrors report/domain.BusinessHour's wall-clock shape.
type BusinessHour struct {
	StoreID    string
	DayOfWeek  int
	StartLocal LocalTime
	EndLocal   LocalTime
}

// LocalTime is a wall-clock time of day, HH:MM:SS, with no date or zone.
type LocalTime struct {
	Hour, Minute, Second int
}

// StoreTimezone is a store's declared IANA zone.
type StoreTimezone struct {
	StoreID string
	TZ      string
}

// LoadResult summarizes one CSV's ingest outcome.
type LoadResult struct {
	Loaded  int
	Skipped int
}

// DefaultTimezone fills in a timezone row when a CSV omits one, matching the
// ingest-time default from the original loader.
const DefaultTimezone = "America/Chicago"
