package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"marketref/internal/model/enum"
	"marketref/pkg/exception"
)

const altProvider = "AltFeed"

func seedAssociation(t *testing.T, s *Store, provider string, fundamentalID uuid.UUID) uuid.UUID {
	t.Helper()
	row := AssociationRow{
		AssociationID: newID().String(),
		OwnerID:       newID().String(),
		FundamentalID: fundamentalID.String(),
	}
	require.NoError(t, s.CreateAssociation(provider, enum.FundamentalCountry, row))
	return uuid.MustParse(row.AssociationID)
}

func TestDeleteFundamentalValueCounts(t *testing.T) {
	s := openTestStore(t, Config{})
	assocID := seedAssociation(t, s, testProvider, newID())

	base := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := s.UpsertFundamentalValue(testProvider, enum.FundamentalCountry, assocID, base.AddDate(0, 3*i, 0), decimal.NewFromInt(int64(i)))
		require.NoError(t, err)
	}

	// one dated observation
	n, err := s.DeleteFundamentalValue(testProvider, enum.FundamentalCountry, assocID, base)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	// remainder of the association's series
	n, err = s.DeleteAssociationValues(testProvider, enum.FundamentalCountry, assocID)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	values, err := s.GetFundamentalValues(testProvider, enum.FundamentalCountry, assocID)
	require.NoError(t, err)
	require.Empty(t, values)

	// value deletion never touches the association row
	_, err = s.GetAssociation(testProvider, enum.FundamentalCountry, assocID)
	require.NoError(t, err)

	// missing observation deletes zero rows
	n, err = s.DeleteFundamentalValue(testProvider, enum.FundamentalCountry, assocID, base)
	require.NoError(t, err)
	require.EqualValues(t, 0, n)
}

func TestDeleteFundamentalValuesAllProviders(t *testing.T) {
	s := openTestStore(t, Config{Providers: []string{testProvider, altProvider}})

	fundamentalID := newID()
	assocA := seedAssociation(t, s, testProvider, fundamentalID)
	assocB := seedAssociation(t, s, altProvider, fundamentalID)
	other := seedAssociation(t, s, testProvider, newID())

	base := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpsertFundamentalValue(testProvider, enum.FundamentalCountry, assocA, base, decimal.NewFromInt(1)))
	require.NoError(t, s.UpsertFundamentalValue(testProvider, enum.FundamentalCountry, assocA, base.AddDate(0, 3, 0), decimal.NewFromInt(2)))
	require.NoError(t, s.UpsertFundamentalValue(altProvider, enum.FundamentalCountry, assocB, base, decimal.NewFromInt(3)))
	require.NoError(t, s.UpsertFundamentalValue(testProvider, enum.FundamentalCountry, other, base, decimal.NewFromInt(4)))

	n, err := s.DeleteFundamentalValuesAllProviders(enum.FundamentalCountry, fundamentalID)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	// both associations survive, series of other fundamentals untouched
	_, err = s.GetAssociation(testProvider, enum.FundamentalCountry, assocA)
	require.NoError(t, err)
	_, err = s.GetAssociation(altProvider, enum.FundamentalCountry, assocB)
	require.NoError(t, err)

	values, err := s.GetFundamentalValues(testProvider, enum.FundamentalCountry, other)
	require.NoError(t, err)
	require.Len(t, values, 1)
}

func TestDeleteAssociationRemovesValueSeries(t *testing.T) {
	s := openTestStore(t, Config{})
	assocID := seedAssociation(t, s, testProvider, newID())

	base := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpsertFundamentalValue(testProvider, enum.FundamentalCountry, assocID, base, decimal.NewFromInt(1)))
	require.NoError(t, s.UpsertFundamentalValue(testProvider, enum.FundamentalCountry, assocID, base.AddDate(0, 3, 0), decimal.NewFromInt(2)))

	// association row plus two values
	n, err := s.DeleteAssociation(testProvider, enum.FundamentalCountry, assocID)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	_, err = s.GetAssociation(testProvider, enum.FundamentalCountry, assocID)
	require.ErrorIs(t, err, exception.ErrNotFound)

	_, err = s.DeleteAssociation(testProvider, enum.FundamentalCountry, assocID)
	require.ErrorIs(t, err, exception.ErrNotFound)
}
