package enum

// ToDateMode controls how a feed's upper date bound behaves.
type ToDateMode uint8

const (
	_to_date_mode_beg ToDateMode = iota

	// ToDatePinned keeps the end of the window fixed.
	ToDatePinned

	// ToDateRolling recomputes the end of the window as "now" on each reload.
	ToDateRolling

	_to_date_mode_end
)

func (m ToDateMode) IsAvailable() bool {
	return m > _to_date_mode_beg && m < _to_date_mode_end
}
