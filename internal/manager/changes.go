package manager

import (
	"time"

	"github.com/google/uuid"

	"marketref/internal/model/enum"
)

// ChangeKind tags what happened to an entity.
type ChangeKind uint8

const (
	_change_kind_beg ChangeKind = iota
	ChangeCreated
	ChangeUpdated
	ChangeDeleted
	_change_kind_end
)

func (k ChangeKind) IsAvailable() bool {
	return k > _change_kind_beg && k < _change_kind_end
}

// EntityKind tags which reference entity a model change concerns.
type EntityKind uint8

const (
	_entity_kind_beg EntityKind = iota
	EntityCountry
	EntityExchange
	EntityHoliday
	EntitySession
	EntityInstrument
	EntityInstrumentGroup
	EntityFundamental
	EntityAssociation
	_entity_kind_end
)

func (k EntityKind) IsAvailable() bool {
	return k > _entity_kind_beg && k < _entity_kind_end
}

// ModelChange describes one structural change of the reference graph.
type ModelChange struct {
	Kind   ChangeKind
	Entity EntityKind
	ID     uuid.UUID
}

// FundamentalChange describes one fundamental value write.
type FundamentalChange struct {
	Provider      string
	AssociationID uuid.UUID
	Time          time.Time
}

// PriceChange describes one price-series mutation. Bulk range writes
// emit exactly one record covering the whole range.
type PriceChange struct {
	Provider     string
	InstrumentID uuid.UUID
	Ticker       string
	Resolution   enum.Resolution
	DataType     enum.PriceDataType
	From         time.Time
	To           time.Time
}

// ModelObserver receives structural reference-graph changes.
type ModelObserver interface {
	OnModelChange(changes []ModelChange)
}

// FundamentalObserver receives fundamental value changes.
type FundamentalObserver interface {
	OnFundamentalChange(changes []FundamentalChange)
}

// PriceObserver receives price-series changes.
type PriceObserver interface {
	OnPriceChange(changes []PriceChange)
}

// SubscriptionID is the registration handle returned by Subscribe and
// required by Unsubscribe. Bookkeeping never relies on the observer's
// own identity.
type SubscriptionID uuid.UUID

func newSubscriptionID() SubscriptionID {
	return SubscriptionID(uuid.New())
}
