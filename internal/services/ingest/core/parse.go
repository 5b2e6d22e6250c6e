// Package core holds the pure, I/O-free CSV row parsing used by ingest.
// Parse errors are the caller's responsibility to skip-and-log; this
// package only reports them.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"storewatch/internal/services/ingest/domain"
)

// ParsePollRow parses one store_status.csv row. Naive timestamps (no zone
// offset) are interpreted as UTC.
func ParsePollRow(storeID, status, timestampRaw string) (domain.Poll, error) {
	storeID = strings.TrimSpace(storeID)
	status = strings.TrimSpace(status)
	timestampRaw = strings.TrimSpace(timestampRaw)
	if storeID == "" || status == "" || timestampRaw == "" {
		return domain.Poll{}, fmt.Errorf("missing required field")
	}
	ts, err := parseUTCTimestamp(timestampRaw)
	if err != nil {
		return domain.Poll{}, fmt.Errorf("parse timestamp_utc %q: %w", timestampRaw, err)
	}
	return domain.Poll{
		StoreID:      storeID,
		TimestampUTC: ts,
		Status:       strings.ToLower(status),
	}, nil
}

// ParseBusinessHourRow parses one menu_hours.csv row.
func ParseBusinessHourRow(storeID, dayOfWeekRaw, startRaw, endRaw string) (domain.BusinessHour, error) {
	storeID = strings.TrimSpace(storeID)
	dayOfWeekRaw = strings.TrimSpace(dayOfWeekRaw)
	startRaw = strings.TrimSpace(startRaw)
	endRaw = strings.TrimSpace(endRaw)
	if storeID == "" || dayOfWeekRaw == "" || startRaw == "" || endRaw == "" {
		return domain.BusinessHour{}, fmt.Errorf("missing required field")
	}
	dow, err := strconv.Atoi(dayOfWeekRaw)
	if err != nil || dow < 0 || dow > 6 {
		return domain.BusinessHour{}, fmt.Errorf("invalid day_of_week %q", dayOfWeekRaw)
	}
	start, err := parseLocalTime(startRaw)
	if err != nil {
		return domain.BusinessHour{}, fmt.Errorf("parse start_time_local %q: %w", startRaw, err)
	}
	end, err := parseLocalTime(endRaw)
	if err != nil {
		return domain.BusinessHour{}, fmt.Errorf("parse end_time_local %q: %w", endRaw, err)
	}
	return domain.BusinessHour{
		StoreID:    storeID,
		DayOfWeek:  dow,
		StartLocal: start,
		EndLocal:   end,
	}, nil
}

// ParseTimezoneRow parses one timezones.csv row. An empty zone falls back to
// DefaultTimezone, matching the original loader's ingest-time default.
func ParseTimezoneRow(storeID, tzRaw string) (domain.StoreTimezone, error) {
	storeID = strings.TrimSpace(storeID)
	if storeID == "" {
		return domain.StoreTimezone{}, fmt.Errorf("missing store_id")
	}
	tz := strings.TrimSpace(tzRaw)
	if tz == "" {
		tz = domain.DefaultTimezone
	}
	return domain.StoreTimezone{StoreID: storeID, TZ: tz}, nil
}

// parseUTCTimestamp accepts ISO-8601 with or without a zone offset; naive
// values are interpreted as UTC.
func parseUTCTimestamp(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Location() == time.UTC || layout == time.RFC3339 || layout == time.RFC3339Nano {
				return t.UTC(), nil
			}
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format")
}

// parseLocalTime accepts HH:MM:SS (0<=HH<=23).
func parseLocalTime(s string) (domain.LocalTime, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return domain.LocalTime{}, fmt.Errorf("expected HH:MM:SS")
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil || hh < 0 || hh > 23 {
		return domain.LocalTime{}, fmt.Errorf("invalid hour")
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil || mm < 0 || mm > 59 {
		return domain.LocalTime{}, fmt.Errorf("invalid minute")
	}
	ss := 0
	if len(parts) == 3 {
		ss, err = strconv.Atoi(parts[2])
		if err != nil || ss < 0 || ss > 59 {
			return domain.LocalTime{}, fmt.Errorf("invalid second")
		}
	}
	return domain.LocalTime{Hour: hh, Minute: mm, Second: ss}, nil
}
