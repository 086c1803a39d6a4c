// Package feed serves windowed, possibly-resampled, possibly-merged
// read views over the stored price series. Feeds are rebuildable
// projections: every reload goes back to the durable store, so the
// result is independent of write ordering.
package feed

import (
	"time"

	"github.com/shopspring/decimal"

	"marketref/internal/model"
)

// DataCache is a column-oriented block of bars in chronological order.
// Columns always have equal length.
type DataCache struct {
	Times     []time.Time
	Opens     []decimal.Decimal
	Highs     []decimal.Decimal
	Lows      []decimal.Decimal
	Closes    []decimal.Decimal
	Volumes   []decimal.Decimal
	Synthetic []bool

	ticker string
}

// NewDataCache builds a column block from row-oriented bars. The input
// is assumed chronological; the store returns it that way.
func NewDataCache(ticker string, bars []model.Bar) *DataCache {
	c := &DataCache{
		Times:     make([]time.Time, 0, len(bars)),
		Opens:     make([]decimal.Decimal, 0, len(bars)),
		Highs:     make([]decimal.Decimal, 0, len(bars)),
		Lows:      make([]decimal.Decimal, 0, len(bars)),
		Closes:    make([]decimal.Decimal, 0, len(bars)),
		Volumes:   make([]decimal.Decimal, 0, len(bars)),
		Synthetic: make([]bool, 0, len(bars)),
		ticker:    ticker,
	}
	for _, bar := range bars {
		c.Append(bar)
	}
	return c
}

func (c *DataCache) Len() int { return len(c.Times) }

// Append adds one bar at the end of the block.
func (c *DataCache) Append(bar model.Bar) {
	c.Times = append(c.Times, bar.Time)
	c.Opens = append(c.Opens, bar.Open)
	c.Highs = append(c.Highs, bar.High)
	c.Lows = append(c.Lows, bar.Low)
	c.Closes = append(c.Closes, bar.Close)
	c.Volumes = append(c.Volumes, bar.Volume)
	c.Synthetic = append(c.Synthetic, bar.Synthetic)
}

// Bar reassembles the i-th bar. The caller guarantees i is in range.
func (c *DataCache) Bar(i int) model.Bar {
	return model.Bar{
		Ticker:    c.ticker,
		Time:      c.Times[i],
		Open:      c.Opens[i],
		High:      c.Highs[i],
		Low:       c.Lows[i],
		Close:     c.Closes[i],
		Volume:    c.Volumes[i],
		Synthetic: c.Synthetic[i],
	}
}

// Level1Cache is the tick counterpart of DataCache.
type Level1Cache struct {
	Times     []time.Time
	Bids      []decimal.Decimal
	BidSizes  []decimal.Decimal
	Asks      []decimal.Decimal
	AskSizes  []decimal.Decimal
	Lasts     []decimal.Decimal
	LastSizes []decimal.Decimal
	Synthetic []bool

	ticker string
}

func NewLevel1Cache(ticker string, ticks []model.Level1) *Level1Cache {
	c := &Level1Cache{ticker: ticker}
	for _, tick := range ticks {
		c.Times = append(c.Times, tick.Time)
		c.Bids = append(c.Bids, tick.Bid)
		c.BidSizes = append(c.BidSizes, tick.BidSize)
		c.Asks = append(c.Asks, tick.Ask)
		c.AskSizes = append(c.AskSizes, tick.AskSize)
		c.Lasts = append(c.Lasts, tick.Last)
		c.LastSizes = append(c.LastSizes, tick.LastSize)
		c.Synthetic = append(c.Synthetic, tick.Synthetic)
	}
	return c
}

func (c *Level1Cache) Len() int { return len(c.Times) }

func (c *Level1Cache) Tick(i int) model.Level1 {
	return model.Level1{
		Ticker:    c.ticker,
		Time:      c.Times[i],
		Bid:       c.Bids[i],
		BidSize:   c.BidSizes[i],
		Ask:       c.Asks[i],
		AskSize:   c.AskSizes[i],
		Last:      c.Lasts[i],
		LastSize:  c.LastSizes[i],
		Synthetic: c.Synthetic[i],
	}
}
