package enum

// FundamentalCategory scopes a fundamental definition to an owner kind.
type FundamentalCategory uint8

const (
	_fundamental_category_beg FundamentalCategory = iota
	FundamentalCountry
	FundamentalInstrument
	_fundamental_category_end
)

func (c FundamentalCategory) IsAvailable() bool {
	return c > _fundamental_category_beg && c < _fundamental_category_end
}

// ReleaseInterval is the cadence a fundamental value is published at.
type ReleaseInterval uint8

const (
	_release_interval_beg ReleaseInterval = iota
	ReleaseDaily
	ReleaseWeekly
	ReleaseMonthly
	ReleaseQuarterly
	ReleaseSemiAnnual
	ReleaseAnnual
	_release_interval_end
)

func (r ReleaseInterval) IsAvailable() bool {
	return r > _release_interval_beg && r < _release_interval_end
}
