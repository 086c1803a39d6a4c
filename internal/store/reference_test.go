package store

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketref/internal/model"
	"marketref/internal/model/enum"
	"marketref/pkg/exception"
)

type refFixture struct {
	country     uuid.UUID
	exchange    uuid.UUID
	session     uuid.UUID
	instrument  uuid.UUID
	group       uuid.UUID
	fundamental uuid.UUID
	assoc       uuid.UUID
	ticker      string
}

// seedReferenceGraph builds a country owning one holiday and one
// exchange; the exchange owns one holiday, one session, and one
// primary instrument; the country carries one fundamental association
// with one value.
func seedReferenceGraph(t *testing.T, s *Store) refFixture {
	t.Helper()

	f := refFixture{
		country:     newID(),
		exchange:    newID(),
		session:     newID(),
		instrument:  newID(),
		group:       newID(),
		fundamental: newID(),
		assoc:       newID(),
		ticker:      "TST",
	}

	require.NoError(t, s.CreateCountry(CountryRow{ID: f.country.String(), IsoCode: "en-US"}))
	require.NoError(t, s.CreateHoliday(HolidayRow{
		ID: newID().String(), OwnerKind: uint8(enum.HolidayOwnerCountry), OwnerID: f.country.String(),
		NameID: newID().String(), Type: uint8(enum.HolidayDayOfMonth), Month: 1, DayOfMonth: 1,
		MoveWeekend: uint8(enum.MoveWeekendDontAdjust),
	}))
	require.NoError(t, s.CreateExchange(ExchangeRow{
		ID: f.exchange.String(), CountryID: f.country.String(),
		NameID: newID().String(), TimeZone: "America/New_York",
	}))
	require.NoError(t, s.CreateHoliday(HolidayRow{
		ID: newID().String(), OwnerKind: uint8(enum.HolidayOwnerExchange), OwnerID: f.exchange.String(),
		NameID: newID().String(), Type: uint8(enum.HolidayDayOfMonth), Month: 7, DayOfMonth: 4,
		MoveWeekend: uint8(enum.MoveWeekendNextBusinessDay),
	}))
	require.NoError(t, s.CreateSession(SessionRow{
		ID: f.session.String(), ExchangeID: f.exchange.String(), NameID: newID().String(),
		Day: int(time.Monday), StartSec: 9 * 3600, EndSec: 16 * 3600,
	}))
	require.NoError(t, s.CreateInstrument(InstrumentRow{
		ID: f.instrument.String(), Ticker: f.ticker, Type: string(model.InstrumentStock),
		NameID: newID().String(), DescriptionID: newID().String(),
		InceptionDate:     time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		PrimaryExchangeID: f.exchange.String(),
	}))
	require.NoError(t, s.CreateFundamental(FundamentalRow{
		ID: f.fundamental.String(), NameID: newID().String(), DescriptionID: newID().String(),
		Category: uint8(enum.FundamentalCountry), ReleaseInterval: uint8(enum.ReleaseQuarterly),
	}))
	require.NoError(t, s.CreateAssociation(testProvider, enum.FundamentalCountry, AssociationRow{
		AssociationID: f.assoc.String(), OwnerID: f.country.String(), FundamentalID: f.fundamental.String(),
	}))
	require.NoError(t, s.UpsertFundamentalValue(testProvider, enum.FundamentalCountry, f.assoc,
		time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC), decimal.NewFromFloat(2.5)))

	return f
}

func TestDeleteCountryCascade(t *testing.T) {
	s := openTestStore(t, Config{})
	f := seedReferenceGraph(t, s)

	// country + country holiday + exchange + exchange holiday +
	// session + instrument + association + value
	n, err := s.DeleteCountry(f.country)
	require.NoError(t, err)
	assert.EqualValues(t, 8, n)

	_, err = s.GetCountry(f.country)
	assert.True(t, errors.Is(err, exception.ErrNotFound))
	_, err = s.GetInstrument(f.instrument)
	assert.True(t, errors.Is(err, exception.ErrNotFound))
}

func TestDeleteExchangeCascade(t *testing.T) {
	s := openTestStore(t, Config{})
	f := seedReferenceGraph(t, s)

	// exchange + exchange holiday + session + instrument
	n, err := s.DeleteExchange(f.exchange)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)

	// the country and its own holiday survive
	_, err = s.GetCountry(f.country)
	assert.NoError(t, err)
}

func TestDeleteInstrumentCascade(t *testing.T) {
	s := openTestStore(t, Config{})
	f := seedReferenceGraph(t, s)

	day := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	actual := make([]model.Bar, 0, 5)
	synthetic := make([]model.Bar, 0, 5)
	for i := 0; i < 5; i++ {
		bar := model.Bar{
			Ticker: f.ticker, Time: day.AddDate(0, 0, i),
			Open: decimal.NewFromInt(10), High: decimal.NewFromInt(12),
			Low: decimal.NewFromInt(9), Close: decimal.NewFromInt(11),
			Volume: decimal.NewFromInt(1000),
		}
		actual = append(actual, bar)
		synthetic = append(synthetic, bar)
	}
	require.NoError(t, s.UpsertBars(testProvider, enum.ResolutionDay, false, actual))
	require.NoError(t, s.UpsertBars(testProvider, enum.ResolutionDay, true, synthetic))

	require.NoError(t, s.CreateGroup(GroupRow{
		ID: f.group.String(), NameID: newID().String(), DescriptionID: newID().String(),
		ParentID: model.GroupRootID.String(),
	}))
	require.NoError(t, s.CreateGroupInstrument(GroupInstrumentRow{
		GroupID: f.group.String(), InstrumentID: f.instrument.String(),
	}))

	instAssoc := newID()
	require.NoError(t, s.CreateAssociation(testProvider, enum.FundamentalInstrument, AssociationRow{
		AssociationID: instAssoc.String(), OwnerID: f.instrument.String(), FundamentalID: f.fundamental.String(),
	}))
	require.NoError(t, s.UpsertFundamentalValue(testProvider, enum.FundamentalInstrument, instAssoc,
		time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC), decimal.NewFromFloat(1.25)))

	// instrument + 10 bars + membership + association + value
	n, err := s.DeleteInstrument(f.instrument)
	require.NoError(t, err)
	assert.EqualValues(t, 14, n)

	// the group itself survives
	_, err = s.GetGroup(f.group)
	assert.NoError(t, err)
}

func TestDeleteGroupRecursive(t *testing.T) {
	s := openTestStore(t, Config{})
	f := seedReferenceGraph(t, s)

	parent, child := newID(), newID()
	require.NoError(t, s.CreateGroup(GroupRow{
		ID: parent.String(), NameID: newID().String(), DescriptionID: newID().String(),
		ParentID: model.GroupRootID.String(),
	}))
	require.NoError(t, s.CreateGroup(GroupRow{
		ID: child.String(), NameID: newID().String(), DescriptionID: newID().String(),
		ParentID: parent.String(),
	}))
	require.NoError(t, s.CreateGroupInstrument(GroupInstrumentRow{
		GroupID: child.String(), InstrumentID: f.instrument.String(),
	}))

	// parent + child + membership
	n, err := s.DeleteGroup(parent)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestDeleteMissingEntityFailsFast(t *testing.T) {
	s := openTestStore(t, Config{})

	_, err := s.DeleteCountry(newID())
	assert.True(t, errors.Is(err, exception.ErrNotFound))
	_, err = s.DeleteExchange(newID())
	assert.True(t, errors.Is(err, exception.ErrNotFound))
	_, err = s.DeleteInstrument(newID())
	assert.True(t, errors.Is(err, exception.ErrNotFound))
	_, err = s.DeleteSession(newID())
	assert.True(t, errors.Is(err, exception.ErrNotFound))
}

func TestDeleteFundamentalAcrossProviders(t *testing.T) {
	s := openTestStore(t, Config{Providers: []string{"FeedA", "FeedB"}})

	fundamental := newID()
	require.NoError(t, s.CreateFundamental(FundamentalRow{
		ID: fundamental.String(), NameID: newID().String(), DescriptionID: newID().String(),
		Category: uint8(enum.FundamentalInstrument), ReleaseInterval: uint8(enum.ReleaseAnnual),
	}))

	owner := newID()
	when := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	for _, provider := range []string{"FeedA", "FeedB"} {
		assoc := newID()
		require.NoError(t, s.CreateAssociation(provider, enum.FundamentalInstrument, AssociationRow{
			AssociationID: assoc.String(), OwnerID: owner.String(), FundamentalID: fundamental.String(),
		}))
		require.NoError(t, s.UpsertFundamentalValue(provider, enum.FundamentalInstrument, assoc, when, decimal.NewFromInt(7)))
	}

	// definition + 2 associations + 2 values
	n, err := s.DeleteFundamental(fundamental)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
}
