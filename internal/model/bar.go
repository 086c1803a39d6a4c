package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar is one OHLCV record at a given resolution. Timestamps are UTC.
type Bar struct {
	Ticker    string
	Time      time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
	Synthetic bool
}

// Level1 is one bid/ask/last snapshot. Timestamps are UTC.
type Level1 struct {
	Ticker    string
	Time      time.Time
	Bid       decimal.Decimal
	BidSize   decimal.Decimal
	Ask       decimal.Decimal
	AskSize   decimal.Decimal
	Last      decimal.Decimal
	LastSize  decimal.Decimal
	Synthetic bool
}
