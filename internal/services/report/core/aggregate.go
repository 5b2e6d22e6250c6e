package core

import (
	"math"
	"time"

	"storewatch/internal/services/report/domain"
)

// Windows bundles the three trailing windows measured against a single
// reference instant, so all three share the same now.
type Windows struct {
	LastHour Interval
	LastDay  Interval
	LastWeek Interval
}

// BuildWindows constructs the three trailing windows ending at now.
func BuildWindows(now time.Time) Windows {
	now = now.UTC()
	return Windows{
		LastHour: Interval{Start: now.Add(-time.Hour), End: now},
		LastDay:  Interval{Start: now.Add(-24 * time.Hour), End: now},
		LastWeek: Interval{Start: now.Add(-7 * 24 * time.Hour), End: now},
	}
}

// ReconstructionWindow returns the window status is reconstructed over:
// [now-7d-1d, now+1h].
func ReconstructionWindow(now time.Time) Interval {
	now = now.UTC()
	return Interval{
		Start: now.Add(-7*24*time.Hour - 24*time.Hour),
		End:   now.Add(time.Hour),
	}
}

// windowAggregate is the raw (uptime, downtime) pair for one window, as
// durations, before unit conversion and rounding.
type windowAggregate struct {
	uptime   time.Duration
	downtime time.Duration
}

// aggregateWindow combines status intervals and business intervals over one
// window: uptime is their overlap, downtime is whatever business time remains.
func aggregateWindow(statuses []StatusInterval, business []Interval) windowAggregate {
	var businessSeconds, uptimeSeconds time.Duration
	for _, b := range business {
		businessSeconds += b.Duration()
	}
	if businessSeconds <= 0 {
		return windowAggregate{}
	}
	for _, s := range statuses {
		if s.Status != domain.StatusActive {
			continue
		}
		for _, b := range business {
			uptimeSeconds += Overlap(s.Interval, b)
		}
	}
	if uptimeSeconds > businessSeconds {
		uptimeSeconds = businessSeconds
	}
	if uptimeSeconds < 0 {
		uptimeSeconds = 0
	}
	downtime := businessSeconds - uptimeSeconds
	if downtime < 0 {
		downtime = 0
	}
	return windowAggregate{uptime: uptimeSeconds, downtime: downtime}
}

// Aggregate reconstructs status from polls already fetched within the
// reconstruction window's margin, expands business hours per trailing
// window, and emits the six rounded aggregates for one store.
func Aggregate(storeID string, now time.Time, polls []domain.Poll, hours []domain.BusinessHour, tz string) domain.StoreReport {
	recon := ReconstructionWindow(now)
	statuses := Reconstruct(polls, recon, domain.ReconstructionMargin)
	windows := BuildWindows(now)

	hourAgg := aggregateWindow(statuses, ExpandBusinessHours(hours, windows.LastHour, tz))
	dayAgg := aggregateWindow(statuses, ExpandBusinessHours(hours, windows.LastDay, tz))
	weekAgg := aggregateWindow(statuses, ExpandBusinessHours(hours, windows.LastWeek, tz))

	return domain.StoreReport{
		StoreID:                 storeID,
		UptimeLastHourMinutes:   roundHalfEven2(hourAgg.uptime.Minutes()),
		DowntimeLastHourMinutes: roundHalfEven2(hourAgg.downtime.Minutes()),
		UptimeLastDayHours:      roundHalfEven2(dayAgg.uptime.Hours()),
		DowntimeLastDayHours:    roundHalfEven2(dayAgg.downtime.Hours()),
		UptimeLastWeekHours:     roundHalfEven2(weekAgg.uptime.Hours()),
		DowntimeLastWeekHours:   roundHalfEven2(weekAgg.downtime.Hours()),
	}
}

// roundHalfEven2 rounds to two decimals using banker's rounding, which keeps
// repeated aggregation runs over the same dataset reproducible.
func roundHalfEven2(v float64) float64 {
	const scale = 100.0
	scaled := v * scale
	floor := math.Floor(scaled)
	diff := scaled - floor
	switch {
	case diff < 0.5:
		scaled = floor
	case diff > 0.5:
		scaled = floor + 1
	default:
		if math.Mod(floor, 2) == 0 {
			scaled = floor
		} else {
			scaled = floor + 1
		}
	}
	return scaled / scale
}
