package model

import (
	"time"

	"github.com/google/uuid"
)

// InstrumentType is the broad classification of a tradeable instrument.
type InstrumentType string

const (
	InstrumentStock  InstrumentType = "Stock"
	InstrumentETF    InstrumentType = "ETF"
	InstrumentForex  InstrumentType = "Forex"
	InstrumentFuture InstrumentType = "Future"
	InstrumentIndex  InstrumentType = "Index"
)

// Instrument is one tradeable listing with a primary exchange and any
// number of secondary listing venues.
type Instrument struct {
	ID            uuid.UUID
	Ticker        string
	Type          InstrumentType
	NameID        uuid.UUID
	DescriptionID uuid.UUID

	// InceptionDate is always UTC.
	InceptionDate time.Time

	PrimaryExchange    *Exchange
	SecondaryExchanges map[uuid.UUID]*Exchange
	Groups             map[uuid.UUID]*InstrumentGroup
	Fundamentals       map[uuid.UUID]*FundamentalAssociation
}

func NewInstrument(id uuid.UUID, ticker string, typ InstrumentType, nameID, descriptionID uuid.UUID, inception time.Time, primary *Exchange) *Instrument {
	return &Instrument{
		ID:                 id,
		Ticker:             ticker,
		Type:               typ,
		NameID:             nameID,
		DescriptionID:      descriptionID,
		InceptionDate:      inception.UTC(),
		PrimaryExchange:    primary,
		SecondaryExchanges: make(map[uuid.UUID]*Exchange),
		Groups:             make(map[uuid.UUID]*InstrumentGroup),
		Fundamentals:       make(map[uuid.UUID]*FundamentalAssociation),
	}
}

func (i *Instrument) EntityID() uuid.UUID          { return i.ID }
func (i *Instrument) NameTextID() uuid.UUID        { return i.NameID }
func (i *Instrument) DescriptionTextID() uuid.UUID { return i.DescriptionID }

func (i *Instrument) Equal(o *Instrument) bool {
	return i != nil && o != nil && i.ID == o.ID
}
