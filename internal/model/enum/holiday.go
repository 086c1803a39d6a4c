package enum

// HolidayType discriminates how a holiday's calendar date is defined.
type HolidayType uint8

const (
	_holiday_type_beg HolidayType = iota
	HolidayDayOfMonth
	HolidayDayOfWeek
	_holiday_type_end
)

func (h HolidayType) IsAvailable() bool {
	return h > _holiday_type_beg && h < _holiday_type_end
}

// HolidayOwner tags which aggregate a holiday belongs to.
type HolidayOwner uint8

const (
	_holiday_owner_beg HolidayOwner = iota
	HolidayOwnerCountry
	HolidayOwnerExchange
	_holiday_owner_end
)

func (o HolidayOwner) IsAvailable() bool {
	return o > _holiday_owner_beg && o < _holiday_owner_end
}

// WeekOfMonth addresses a weekday occurrence within a month.
type WeekOfMonth uint8

const (
	_week_of_month_beg WeekOfMonth = iota
	WeekFirst
	WeekSecond
	WeekThird
	WeekFourth
	WeekFifth
	WeekLast
	_week_of_month_end
)

func (w WeekOfMonth) IsAvailable() bool {
	return w > _week_of_month_beg && w < _week_of_month_end
}

// MoveWeekendHoliday is the policy for shifting a holiday that lands on
// a weekend.
type MoveWeekendHoliday uint8

const (
	_move_weekend_beg MoveWeekendHoliday = iota
	MoveWeekendDontAdjust
	MoveWeekendPreviousBusinessDay
	MoveWeekendNextBusinessDay
	_move_weekend_end
)

func (m MoveWeekendHoliday) IsAvailable() bool {
	return m > _move_weekend_beg && m < _move_weekend_end
}
