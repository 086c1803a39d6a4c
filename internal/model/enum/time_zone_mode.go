package enum

// TimeZoneMode is how incoming timestamps are interpreted at the
// manager boundary. Storage is always UTC.
type TimeZoneMode uint8

const (
	_time_zone_mode_beg TimeZoneMode = iota
	TimeZoneUTC
	TimeZoneLocal
	_time_zone_mode_end
)

func (m TimeZoneMode) IsAvailable() bool {
	return m > _time_zone_mode_beg && m < _time_zone_mode_end
}
