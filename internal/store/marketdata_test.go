package store

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketref/internal/model"
	"marketref/internal/model/enum"
)

func minuteBar(ticker string, at time.Time, close int64) model.Bar {
	return model.Bar{
		Ticker: ticker,
		Time:   at,
		Open:   decimal.NewFromInt(close - 1),
		High:   decimal.NewFromInt(close + 1),
		Low:    decimal.NewFromInt(close - 2),
		Close:  decimal.NewFromInt(close),
		Volume: decimal.NewFromInt(100),
	}
}

func TestUpsertBarsOverwritesInPlace(t *testing.T) {
	s := openTestStore(t, Config{})
	at := time.Date(2023, 6, 1, 14, 30, 0, 0, time.UTC)

	require.NoError(t, s.UpsertBars(testProvider, enum.ResolutionMinute, false,
		[]model.Bar{minuteBar("TST", at, 10)}))
	require.NoError(t, s.UpsertBars(testProvider, enum.ResolutionMinute, false,
		[]model.Bar{minuteBar("TST", at, 20)}))

	bars, err := s.GetBars(testProvider, enum.ResolutionMinute, "TST",
		at.Add(-time.Hour), at.Add(time.Hour), enum.PriceDataActual)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.True(t, bars[0].Close.Equal(decimal.NewFromInt(20)))
}

func TestGetBarsRangeAndOrder(t *testing.T) {
	s := openTestStore(t, Config{})
	base := time.Date(2023, 6, 1, 14, 0, 0, 0, time.UTC)

	// shuffled submission order must not matter
	bars := []model.Bar{
		minuteBar("TST", base.Add(3*time.Minute), 13),
		minuteBar("TST", base.Add(1*time.Minute), 11),
		minuteBar("TST", base.Add(4*time.Minute), 14),
		minuteBar("TST", base, 10),
		minuteBar("TST", base.Add(2*time.Minute), 12),
	}
	require.NoError(t, s.UpsertBars(testProvider, enum.ResolutionMinute, false, bars))

	got, err := s.GetBars(testProvider, enum.ResolutionMinute, "TST",
		base.Add(time.Minute), base.Add(3*time.Minute), enum.PriceDataActual)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, want := range []int64{11, 12, 13} {
		assert.True(t, got[i].Close.Equal(decimal.NewFromInt(want)), "bar %d", i)
	}
}

func TestGetBarsBothInterleaves(t *testing.T) {
	s := openTestStore(t, Config{})
	base := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.UpsertBars(testProvider, enum.ResolutionDay, false, []model.Bar{
		minuteBar("TST", base, 10),
		minuteBar("TST", base.AddDate(0, 0, 2), 12),
	}))
	require.NoError(t, s.UpsertBars(testProvider, enum.ResolutionDay, true, []model.Bar{
		minuteBar("TST", base.AddDate(0, 0, 1), 11),
		minuteBar("TST", base.AddDate(0, 0, 3), 13),
	}))

	got, err := s.GetBars(testProvider, enum.ResolutionDay, "TST",
		base, base.AddDate(0, 0, 7), enum.PriceDataBoth)
	require.NoError(t, err)
	require.Len(t, got, 4)

	for i, want := range []int64{10, 11, 12, 13} {
		assert.True(t, got[i].Close.Equal(decimal.NewFromInt(want)), "bar %d", i)
	}
	assert.False(t, got[0].Synthetic)
	assert.True(t, got[1].Synthetic)

	actualOnly, err := s.GetBars(testProvider, enum.ResolutionDay, "TST",
		base, base.AddDate(0, 0, 7), enum.PriceDataActual)
	require.NoError(t, err)
	assert.Len(t, actualOnly, 2)
}

func TestLevel1RoundTrip(t *testing.T) {
	s := openTestStore(t, Config{})
	at := time.Date(2023, 6, 1, 14, 30, 0, 0, time.UTC)

	tick := model.Level1{
		Ticker: "TST", Time: at,
		Bid: decimal.NewFromFloat(9.99), BidSize: decimal.NewFromInt(100),
		Ask: decimal.NewFromFloat(10.01), AskSize: decimal.NewFromInt(200),
		Last: decimal.NewFromInt(10), LastSize: decimal.NewFromInt(50),
	}
	require.NoError(t, s.UpsertLevel1(testProvider, false, []model.Level1{tick}))

	// overwrite in place
	tick.Last = decimal.NewFromFloat(10.02)
	require.NoError(t, s.UpsertLevel1(testProvider, false, []model.Level1{tick}))

	got, err := s.GetLevel1(testProvider, "TST", at.Add(-time.Minute), at.Add(time.Minute), enum.PriceDataActual)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Last.Equal(decimal.NewFromFloat(10.02)))
	assert.True(t, got[0].Bid.Equal(decimal.NewFromFloat(9.99)))
}

func TestUpsertBarsRejectsLevel1Resolution(t *testing.T) {
	s := openTestStore(t, Config{})
	err := s.UpsertBars(testProvider, enum.ResolutionLevel1, false,
		[]model.Bar{minuteBar("TST", time.Now().UTC(), 10)})
	assert.Error(t, err)
}
