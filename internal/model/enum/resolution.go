package enum

import "time"

// Resolution is the granularity of a stored price series.
type Resolution uint8

const (
	_resolution_beg Resolution = iota
	ResolutionLevel1
	ResolutionMinute
	ResolutionHour
	ResolutionDay
	ResolutionWeek
	ResolutionMonth
	_resolution_end
)

func (r Resolution) IsAvailable() bool {
	return r > _resolution_beg && r < _resolution_end
}

// BarResolutions lists every resolution backed by a bar table.
func BarResolutions() []Resolution {
	return []Resolution{ResolutionMinute, ResolutionHour, ResolutionDay, ResolutionWeek, ResolutionMonth}
}

// String returns the table-name fragment for the resolution.
func (r Resolution) String() string {
	switch r {
	case ResolutionLevel1:
		return "Level1"
	case ResolutionMinute:
		return "Minute"
	case ResolutionHour:
		return "Hour"
	case ResolutionDay:
		return "Day"
	case ResolutionWeek:
		return "Week"
	case ResolutionMonth:
		return "Month"
	default:
		return "Unknown"
	}
}

// Duration returns the nominal span of one bar. Week and Month are
// calendar-based and only approximated here; interval alignment is
// meaningful for Minute and Hour only.
func (r Resolution) Duration() time.Duration {
	switch r {
	case ResolutionMinute:
		return time.Minute
	case ResolutionHour:
		return time.Hour
	case ResolutionDay:
		return 24 * time.Hour
	case ResolutionWeek:
		return 7 * 24 * time.Hour
	case ResolutionMonth:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}
