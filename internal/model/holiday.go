package model

import (
	"time"

	"github.com/google/uuid"

	"marketref/internal/model/enum"
)

// Holiday is a recurring market holiday owned by either a country or an
// exchange. The owner kind discriminates the variant; the date
// computation is shared.
type Holiday struct {
	ID        uuid.UUID
	OwnerKind enum.HolidayOwner
	OwnerID   uuid.UUID
	NameID    uuid.UUID

	Type        enum.HolidayType
	Month       time.Month
	DayOfMonth  int
	DayOfWeek   time.Weekday
	WeekOfMonth enum.WeekOfMonth
	MoveWeekend enum.MoveWeekendHoliday
}

func (h *Holiday) EntityID() uuid.UUID   { return h.ID }
func (h *Holiday) NameTextID() uuid.UUID { return h.NameID }

func (h *Holiday) Equal(o *Holiday) bool {
	return h != nil && o != nil && h.ID == o.ID
}

// ForYear computes the concrete calendar date of the holiday in the
// given year, applying the weekend-move policy. The adjusted date may
// roll into the previous or next month.
func (h *Holiday) ForYear(year int) time.Time {
	var day time.Time
	switch h.Type {
	case enum.HolidayDayOfWeek:
		day = weekdayOccurrence(year, h.Month, h.DayOfWeek, h.WeekOfMonth)
	default:
		day = time.Date(year, h.Month, h.DayOfMonth, 0, 0, 0, 0, time.UTC)
	}

	switch day.Weekday() {
	case time.Saturday:
		switch h.MoveWeekend {
		case enum.MoveWeekendPreviousBusinessDay:
			day = day.AddDate(0, 0, -1)
		case enum.MoveWeekendNextBusinessDay:
			day = day.AddDate(0, 0, 2)
		}
	case time.Sunday:
		switch h.MoveWeekend {
		case enum.MoveWeekendPreviousBusinessDay:
			day = day.AddDate(0, 0, -2)
		case enum.MoveWeekendNextBusinessDay:
			day = day.AddDate(0, 0, 1)
		}
	}

	return day
}

func weekdayOccurrence(year int, month time.Month, weekday time.Weekday, week enum.WeekOfMonth) time.Time {
	if week == enum.WeekLast {
		// walk back from the final day of the month
		day := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
		for day.Weekday() != weekday {
			day = day.AddDate(0, 0, -1)
		}
		return day
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	day := first.AddDate(0, 0, offset+7*(int(week)-int(enum.WeekFirst)))
	if day.Month() != month {
		// a fifth occurrence that does not exist collapses to the last one
		day = day.AddDate(0, 0, -7)
	}
	return day
}
