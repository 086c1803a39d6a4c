package store

import (
	"github.com/yanun0323/errors"
	"golang.org/x/sync/errgroup"

	"marketref/internal/model/enum"
)

// ProviderAssociations is the fundamental association state of one
// provider partition, both owner kinds.
type ProviderAssociations struct {
	Country          []AssociationRow
	Instrument       []AssociationRow
	CountryValues    []ValueRow
	InstrumentValues []ValueRow
}

// Snapshot is a full read of the reference graph, used to rebuild the
// in-memory projection.
type Snapshot struct {
	Countries      []CountryRow
	Exchanges      []ExchangeRow
	Sessions       []SessionRow
	Holidays       []HolidayRow
	Instruments    []InstrumentRow
	SecondaryLinks []SecondaryExchangeRow
	Groups         []GroupRow
	GroupMembers   []GroupInstrumentRow
	Fundamentals   []FundamentalRow
	Associations   map[string]*ProviderAssociations
}

// LoadSnapshot reads every reference table, loading independent tables
// in parallel.
func (s *Store) LoadSnapshot() (*Snapshot, error) {
	snap := &Snapshot{Associations: make(map[string]*ProviderAssociations, len(s.providers))}
	for _, provider := range s.providers {
		snap.Associations[provider] = &ProviderAssociations{}
	}

	var g errgroup.Group
	g.Go(func() error { return s.db.Order("id").Find(&snap.Countries).Error })
	g.Go(func() error { return s.db.Order("id").Find(&snap.Exchanges).Error })
	g.Go(func() error { return s.db.Order("id").Find(&snap.Sessions).Error })
	g.Go(func() error { return s.db.Order("id").Find(&snap.Holidays).Error })
	g.Go(func() error { return s.db.Order("id").Find(&snap.Instruments).Error })
	g.Go(func() error { return s.db.Find(&snap.SecondaryLinks).Error })
	g.Go(func() error { return s.db.Order("id").Find(&snap.Groups).Error })
	g.Go(func() error { return s.db.Find(&snap.GroupMembers).Error })
	g.Go(func() error { return s.db.Order("id").Find(&snap.Fundamentals).Error })

	for _, provider := range s.providers {
		pa := snap.Associations[provider]
		provider := provider
		g.Go(func() error {
			return s.db.Table(associationTable(provider, enum.FundamentalCountry)).Find(&pa.Country).Error
		})
		g.Go(func() error {
			return s.db.Table(associationTable(provider, enum.FundamentalInstrument)).Find(&pa.Instrument).Error
		})
		g.Go(func() error {
			return s.db.Table(valueTable(provider, enum.FundamentalCountry)).Find(&pa.CountryValues).Error
		})
		g.Go(func() error {
			return s.db.Table(valueTable(provider, enum.FundamentalInstrument)).Find(&pa.InstrumentValues).Error
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "load snapshot")
	}
	return snap, nil
}
