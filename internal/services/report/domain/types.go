// Package domain holds the core business types for per-store uptime reporting.
package domain

import "time"

// Status is a poll's reported state. Only Active and Inactive participate in
// uptime; any other value is preserved but contributes nothing to uptime.
type Status string

const (
	// StatusActive marks a store as open/serving.
	StatusActive Status = "active"
	// StatusInactive marks a store as closed/not serving.
	StatusInactive Status = "inactive"
)

// Poll is a single observation of a store's status at an instant.
type Poll struct {
	StoreID      string
	TimestampUTC time.Time
	Status       Status
}

// BusinessHour is one scheduled open interval for a store on a weekday.
// DayOfWeek follows time.Weekday's Monday=1 convention shifted so 0=Monday,
// matching the data model's declared range [0,6].
type BusinessHour struct {
	StoreID    string
	DayOfWeek  int // 0=Monday .. 6=Sunday
	StartLocal LocalTime
	EndLocal   LocalTime // EndLocal <= StartLocal means the interval crosses midnight
}

// LocalTime is a wall-clock time of day, HH:MM:SS, with no date or zone.
type LocalTime struct {
	Hour, Minute, Second int
}

// Seconds returns the time of day as an offset from local midnight.
func (t LocalTime) Seconds() int { return t.Hour*3600 + t.Minute*60 + t.Second }

// StoreTimezone resolves a store's IANA zone. Absent rows default elsewhere.
type StoreTimezone struct {
	StoreID string
	TZ      string
}

// JobStatus is the user-visible state of a report job.
type JobStatus string

const (
	// JobNotFound is returned for an unknown report_id; never persisted.
	JobNotFound JobStatus = "NotFound"
	// JobRunning means the report is still being computed.
	JobRunning JobStatus = "Running"
	// JobComplete means the CSV is written and ready to download.
	JobComplete JobStatus = "Complete"
	// JobFailed means report-level computation failed; no partial CSV.
	JobFailed JobStatus = "Failed"
)

// ReportJob is the durable record tracked by the job-state collaborator.
type ReportJob struct {
	ReportID        string
	Status          JobStatus
	PercentComplete int
	CSVPath         string
	CreatedAt       time.Time
	FinishedAt      *time.Time
}

// StoreReport is one row of computed aggregates for a single store.
type StoreReport struct {
	StoreID string

	UptimeLastHourMinutes   float64
	UptimeLastDayHours      float64
	UptimeLastWeekHours     float64
	DowntimeLastHourMinutes float64
	DowntimeLastDayHours    float64
	DowntimeLastWeekHours   float64
}

// DefaultTimezone is used for any store with no StoreTimezone row.
const DefaultTimezone = "America/Chicago"

// ReconstructionMargin pads the reconstruction/fetch window on both ends so
// edge polls are never fenceposted out of their natural interval.
const ReconstructionMargin = 12 * time.Hour
