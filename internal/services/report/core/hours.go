package core

import (
	"sync"
	"time"

	"storewatch/internal/services/report/domain"
)

// zoneCache memoizes time.LoadLocation lookups across aggregator workers.
// IANA zone data rarely changes within a process lifetime, and parsing the
// same zone repeatedly per store, per window is wasted work under
// concurrent aggregation.
var zoneCache sync.Map // string -> *time.Location

// loadZone resolves an IANA zone name, caching the result. An unknown or
// empty name falls back to UTC rather than failing the whole aggregation.
func loadZone(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	if v, ok := zoneCache.Load(name); ok {
		return v.(*time.Location)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		loc = time.UTC
	}
	zoneCache.Store(name, loc)
	return loc
}

// dayOfWeek maps a date's Go weekday (Sunday=0) to the data model's
// Monday=0 convention.
func dayOfWeek(t time.Time) int {
	wd := int(t.Weekday()) // Sunday=0 .. Saturday=6
	return (wd + 6) % 7    // Monday=0 .. Sunday=6
}

// ExpandBusinessHours expands a store's weekly schedule into sorted, disjoint
// UTC intervals covering window, honoring zone. A store with no schedule
// rows is treated as open 24/7.
func ExpandBusinessHours(hours []domain.BusinessHour, window Interval, zone string) []Interval {
	if len(hours) == 0 {
		if window.Empty() {
			return nil
		}
		return []Interval{window}
	}

	loc := loadZone(zone)

	byDay := make(map[int][]domain.BusinessHour, 7)
	for _, h := range hours {
		byDay[h.DayOfWeek] = append(byDay[h.DayOfWeek], h)
	}

	d0 := window.Start.In(loc)
	d0 = time.Date(d0.Year(), d0.Month(), d0.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -1)
	d1 := window.End.In(loc)
	d1 = time.Date(d1.Year(), d1.Month(), d1.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)

	var out []Interval
	for d := d0; !d.After(d1); d = d.AddDate(0, 0, 1) {
		rows := byDay[dayOfWeek(d)]
		for _, row := range rows {
			s := localDateTime(d, row.StartLocal, loc)
			e := localDateTime(d, row.EndLocal, loc)
			if !e.After(s) {
				e = e.AddDate(0, 0, 1)
			}
			iv, ok := Interval{Start: s.UTC(), End: e.UTC()}.Clip(window)
			if !ok {
				continue
			}
			out = append(out, iv)
		}
	}

	SortByStart(out)
	return MergeSorted(out)
}

func localDateTime(day time.Time, t domain.LocalTime, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour, t.Minute, t.Second, 0, loc)
}
