package core

import (
	"testing"
	"time"

	"storewatch/internal/services/report/domain"
)

func TestExpandBusinessHoursNoScheduleIsOpenAlways(t *testing.T) {
	window := Interval{Start: mustTime(t, "2024-01-01T00:00:00Z"), End: mustTime(t, "2024-01-02T00:00:00Z")}
	out := ExpandBusinessHours(nil, window, "UTC")
	if len(out) != 1 || out[0] != window {
		t.Fatalf("ExpandBusinessHours(nil) = %+v, want [window]", out)
	}
}

func TestExpandBusinessHoursDaily(t *testing.T) {
	// 2024-01-01 is a Monday.
	hours := []domain.BusinessHour{
		{StoreID: "s1", DayOfWeek: 0, StartLocal: domain.LocalTime{Hour: 9}, EndLocal: domain.LocalTime{Hour: 17}},
	}
	window := Interval{Start: mustTime(t, "2024-01-01T00:00:00Z"), End: mustTime(t, "2024-01-01T23:59:59Z")}

	out := ExpandBusinessHours(hours, window, "UTC")
	if len(out) != 1 {
		t.Fatalf("got %d intervals, want 1: %+v", len(out), out)
	}
	want := Interval{Start: mustTime(t, "2024-01-01T09:00:00Z"), End: mustTime(t, "2024-01-01T17:00:00Z")}
	if out[0] != want {
		t.Fatalf("got %+v, want %+v", out[0], want)
	}
}

func TestExpandBusinessHoursOvernight(t *testing.T) {
	// Monday 22:00 -> Tuesday 02:00, crossing midnight.
	hours := []domain.BusinessHour{
		{StoreID: "s1", DayOfWeek: 0, StartLocal: domain.LocalTime{Hour: 22}, EndLocal: domain.LocalTime{Hour: 2}},
	}
	window := Interval{Start: mustTime(t, "2024-01-01T00:00:00Z"), End: mustTime(t, "2024-01-03T00:00:00Z")}

	out := ExpandBusinessHours(hours, window, "UTC")
	if len(out) != 1 {
		t.Fatalf("got %d intervals, want 1: %+v", len(out), out)
	}
	want := Interval{Start: mustTime(t, "2024-01-01T22:00:00Z"), End: mustTime(t, "2024-01-02T02:00:00Z")}
	if out[0] != want {
		t.Fatalf("got %+v, want %+v", out[0], want)
	}
}

func TestLoadZoneFallsBackToUTC(t *testing.T) {
	if loc := loadZone("Not/AZone"); loc != time.UTC {
		t.Fatalf("loadZone(bad) = %v, want UTC", loc)
	}
	if loc := loadZone(""); loc != time.UTC {
		t.Fatalf("loadZone(\"\") = %v, want UTC", loc)
	}
}
