package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"marketref/internal/model/enum"
)

// Fundamental is a global fundamental definition (e.g. GDP, EPS).
// Concrete values hang off per-provider associations.
type Fundamental struct {
	ID            uuid.UUID
	NameID        uuid.UUID
	DescriptionID uuid.UUID

	Category        enum.FundamentalCategory
	ReleaseInterval enum.ReleaseInterval
}

func (f *Fundamental) EntityID() uuid.UUID          { return f.ID }
func (f *Fundamental) NameTextID() uuid.UUID        { return f.NameID }
func (f *Fundamental) DescriptionTextID() uuid.UUID { return f.DescriptionID }

func (f *Fundamental) Equal(o *Fundamental) bool {
	return f != nil && o != nil && f.ID == o.ID
}

// FundamentalValue is one dated observation of an association's series.
type FundamentalValue struct {
	Time  time.Time
	Value decimal.Decimal
}

// FundamentalAssociation links a fundamental definition to one country
// or instrument for a single data provider, together with its
// time-ordered value series.
type FundamentalAssociation struct {
	AssociationID uuid.UUID
	Provider      string
	Fundamental   *Fundamental
	OwnerKind     enum.FundamentalCategory
	OwnerID       uuid.UUID

	Values map[time.Time]decimal.Decimal
}

func NewFundamentalAssociation(id uuid.UUID, provider string, fundamental *Fundamental, ownerKind enum.FundamentalCategory, ownerID uuid.UUID) *FundamentalAssociation {
	return &FundamentalAssociation{
		AssociationID: id,
		Provider:      provider,
		Fundamental:   fundamental,
		OwnerKind:     ownerKind,
		OwnerID:       ownerID,
		Values:        make(map[time.Time]decimal.Decimal),
	}
}

func (a *FundamentalAssociation) EntityID() uuid.UUID { return a.AssociationID }

func (a *FundamentalAssociation) Equal(o *FundamentalAssociation) bool {
	return a != nil && o != nil && a.AssociationID == o.AssociationID
}

// SetValue records one observation, overwriting any value at the same
// timestamp.
func (a *FundamentalAssociation) SetValue(t time.Time, v decimal.Decimal) {
	a.Values[t.UTC()] = v
}

// Latest returns the max-key entry of the value series.
func (a *FundamentalAssociation) Latest() (FundamentalValue, bool) {
	var latest FundamentalValue
	found := false
	for t, v := range a.Values {
		if !found || t.After(latest.Time) {
			latest = FundamentalValue{Time: t, Value: v}
			found = true
		}
	}
	return latest, found
}
