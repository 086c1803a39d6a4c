package store

import (
	"sort"
	"time"

	"github.com/yanun0323/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"marketref/internal/model"
	"marketref/internal/model/enum"
	"marketref/pkg/exception"
)

var barConflict = clause.OnConflict{
	Columns:   []clause.Column{{Name: "ticker"}, {Name: "time"}},
	DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume"}),
}

var level1Conflict = clause.OnConflict{
	Columns:   []clause.Column{{Name: "ticker"}, {Name: "time"}},
	DoUpdates: clause.AssignmentColumns([]string{"bid", "bid_size", "ask", "ask_size", "last", "last_size"}),
}

// UpsertBars writes bars into one provider/resolution partition,
// inserting new (ticker, time) rows and overwriting existing ones in
// place. The whole batch is one transaction.
func (s *Store) UpsertBars(provider string, res enum.Resolution, synthetic bool, bars []model.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	if !res.IsAvailable() || res == enum.ResolutionLevel1 {
		return errors.Wrapf(exception.ErrInvalidArgument, "bar resolution %s", res)
	}

	rows := make([]BarRow, 0, len(bars))
	for _, bar := range bars {
		rows = append(rows, BarRow{
			Ticker: bar.Ticker,
			Time:   bar.Time.UTC(),
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.Volume,
		})
	}

	table := barTable(provider, res, synthetic)
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Table(table).Clauses(barConflict).Create(&rows).Error
	})
	if err != nil {
		return errors.Wrapf(err, "upsert %d bars into %s", len(rows), table)
	}
	return nil
}

// UpsertLevel1 writes tick snapshots into one provider level1
// partition with the same upsert semantics as UpsertBars.
func (s *Store) UpsertLevel1(provider string, synthetic bool, ticks []model.Level1) error {
	if len(ticks) == 0 {
		return nil
	}

	rows := make([]Level1Row, 0, len(ticks))
	for _, tick := range ticks {
		rows = append(rows, Level1Row{
			Ticker:   tick.Ticker,
			Time:     tick.Time.UTC(),
			Bid:      tick.Bid,
			BidSize:  tick.BidSize,
			Ask:      tick.Ask,
			AskSize:  tick.AskSize,
			Last:     tick.Last,
			LastSize: tick.LastSize,
		})
	}

	table := level1Table(provider, synthetic)
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Table(table).Clauses(level1Conflict).Create(&rows).Error
	})
	if err != nil {
		return errors.Wrapf(err, "upsert %d ticks into %s", len(rows), table)
	}
	return nil
}

// GetBars reads a time-ordered, duplicate-free window of one series.
// The Both selector interleaves the actual and synthetic partitions by
// timestamp, actual rows first on ties.
func (s *Store) GetBars(provider string, res enum.Resolution, ticker string, from, to time.Time, sel enum.PriceDataType) ([]model.Bar, error) {
	if !res.IsAvailable() || res == enum.ResolutionLevel1 {
		return nil, errors.Wrapf(exception.ErrInvalidArgument, "bar resolution %s", res)
	}

	var out []model.Bar
	if sel.IncludesActual() {
		rows, err := s.queryBars(barTable(provider, res, false), ticker, from, to)
		if err != nil {
			return nil, err
		}
		out = append(out, barsFromRows(rows, false)...)
	}
	if sel.IncludesSynthetic() {
		rows, err := s.queryBars(barTable(provider, res, true), ticker, from, to)
		if err != nil {
			return nil, err
		}
		out = append(out, barsFromRows(rows, true)...)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

// GetLevel1 reads a window of tick snapshots with the same selector
// semantics as GetBars.
func (s *Store) GetLevel1(provider, ticker string, from, to time.Time, sel enum.PriceDataType) ([]model.Level1, error) {
	var out []model.Level1
	if sel.IncludesActual() {
		rows, err := s.queryLevel1(level1Table(provider, false), ticker, from, to)
		if err != nil {
			return nil, err
		}
		out = append(out, ticksFromRows(rows, false)...)
	}
	if sel.IncludesSynthetic() {
		rows, err := s.queryLevel1(level1Table(provider, true), ticker, from, to)
		if err != nil {
			return nil, err
		}
		out = append(out, ticksFromRows(rows, true)...)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

func (s *Store) queryBars(table, ticker string, from, to time.Time) ([]BarRow, error) {
	var rows []BarRow
	err := s.db.Table(table).
		Where("ticker = ? AND time >= ? AND time <= ?", ticker, from.UTC(), to.UTC()).
		Order("time").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", table)
	}
	return rows, nil
}

func (s *Store) queryLevel1(table, ticker string, from, to time.Time) ([]Level1Row, error) {
	var rows []Level1Row
	err := s.db.Table(table).
		Where("ticker = ? AND time >= ? AND time <= ?", ticker, from.UTC(), to.UTC()).
		Order("time").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", table)
	}
	return rows, nil
}

func barsFromRows(rows []BarRow, synthetic bool) []model.Bar {
	bars := make([]model.Bar, 0, len(rows))
	for _, row := range rows {
		bars = append(bars, model.Bar{
			Ticker:    row.Ticker,
			Time:      row.Time.UTC(),
			Open:      row.Open,
			High:      row.High,
			Low:       row.Low,
			Close:     row.Close,
			Volume:    row.Volume,
			Synthetic: synthetic,
		})
	}
	return bars
}

func ticksFromRows(rows []Level1Row, synthetic bool) []model.Level1 {
	ticks := make([]model.Level1, 0, len(rows))
	for _, row := range rows {
		ticks = append(ticks, model.Level1{
			Ticker:    row.Ticker,
			Time:      row.Time.UTC(),
			Bid:       row.Bid,
			BidSize:   row.BidSize,
			Ask:       row.Ask,
			AskSize:   row.AskSize,
			Last:      row.Last,
			LastSize:  row.LastSize,
			Synthetic: synthetic,
		})
	}
	return ticks
}
