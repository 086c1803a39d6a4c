package model

import (
	"testing"
	"time"

	"marketref/internal/model/enum"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestHolidayForYearDayOfMonth(t *testing.T) {
	h := Holiday{
		Type:        enum.HolidayDayOfMonth,
		Month:       time.January,
		DayOfMonth:  15,
		MoveWeekend: enum.MoveWeekendDontAdjust,
	}
	if got := h.ForYear(2023); !got.Equal(date(2023, time.January, 15)) {
		t.Fatalf("unadjusted: got %v", got)
	}

	// 2023-01-15 is a Sunday
	h.MoveWeekend = enum.MoveWeekendPreviousBusinessDay
	if got := h.ForYear(2023); !got.Equal(date(2023, time.January, 13)) {
		t.Fatalf("previous business day: got %v", got)
	}

	h.MoveWeekend = enum.MoveWeekendNextBusinessDay
	if got := h.ForYear(2023); !got.Equal(date(2023, time.January, 16)) {
		t.Fatalf("next business day: got %v", got)
	}
}

func TestHolidayForYearDayOfWeek(t *testing.T) {
	h := Holiday{
		Type:        enum.HolidayDayOfWeek,
		Month:       time.January,
		DayOfWeek:   time.Monday,
		WeekOfMonth: enum.WeekFirst,
		MoveWeekend: enum.MoveWeekendDontAdjust,
	}
	if got := h.ForYear(2023); !got.Equal(date(2023, time.January, 2)) {
		t.Fatalf("first monday: got %v", got)
	}

	h.WeekOfMonth = enum.WeekLast
	if got := h.ForYear(2023); !got.Equal(date(2023, time.January, 30)) {
		t.Fatalf("last monday: got %v", got)
	}
}

func TestHolidayForYearMonthRollover(t *testing.T) {
	// first Saturday of April 2023 is 2023-04-01; the previous business
	// day is in March
	h := Holiday{
		Type:        enum.HolidayDayOfWeek,
		Month:       time.April,
		DayOfWeek:   time.Saturday,
		WeekOfMonth: enum.WeekFirst,
		MoveWeekend: enum.MoveWeekendPreviousBusinessDay,
	}
	if got := h.ForYear(2023); !got.Equal(date(2023, time.March, 31)) {
		t.Fatalf("rollover to previous month: got %v", got)
	}

	// last Sunday of April 2023 is 2023-04-30; the next business day is
	// in May
	h = Holiday{
		Type:        enum.HolidayDayOfWeek,
		Month:       time.April,
		DayOfWeek:   time.Sunday,
		WeekOfMonth: enum.WeekLast,
		MoveWeekend: enum.MoveWeekendNextBusinessDay,
	}
	if got := h.ForYear(2023); !got.Equal(date(2023, time.May, 1)) {
		t.Fatalf("rollover to next month: got %v", got)
	}
}

func TestExchangeSessionBuckets(t *testing.T) {
	ex := NewExchange(mustID("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), nil, mustID("6ba7b811-9dad-11d1-80b4-00c04fd430c8"), "America/New_York")
	s := &Session{
		ID:    mustID("6ba7b812-9dad-11d1-80b4-00c04fd430c8"),
		Day:   time.Monday,
		Start: NewTimeOfDay(9, 30, 0),
		End:   NewTimeOfDay(16, 0, 0),
	}
	ex.AddSession(s)

	if got := ex.SessionsOn(time.Monday); len(got) != 1 {
		t.Fatalf("monday bucket: got %d sessions", len(got))
	}

	if !ex.MoveSession(s, time.Wednesday) {
		t.Fatal("move session failed")
	}
	if got := ex.SessionsOn(time.Monday); len(got) != 0 {
		t.Fatalf("monday bucket after move: got %d sessions", len(got))
	}
	if got := ex.SessionsOn(time.Wednesday); len(got) != 1 || got[0].Day != time.Wednesday {
		t.Fatalf("wednesday bucket after move: %+v", got)
	}
}
