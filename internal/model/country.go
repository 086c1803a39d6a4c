package model

import "github.com/google/uuid"

// Country is the root of the reference graph for one region. Display
// name and currency derive from the ISO code via region data and are
// not stored.
type Country struct {
	ID      uuid.UUID
	IsoCode string

	Holidays     map[uuid.UUID]*Holiday
	Exchanges    map[uuid.UUID]*Exchange
	Fundamentals map[uuid.UUID]*FundamentalAssociation
}

func NewCountry(id uuid.UUID, isoCode string) *Country {
	return &Country{
		ID:           id,
		IsoCode:      isoCode,
		Holidays:     make(map[uuid.UUID]*Holiday),
		Exchanges:    make(map[uuid.UUID]*Exchange),
		Fundamentals: make(map[uuid.UUID]*FundamentalAssociation),
	}
}

func (c *Country) EntityID() uuid.UUID { return c.ID }

// Equal reports identity equality. Two instances with the same Id are
// the same country even across independent reloads.
func (c *Country) Equal(o *Country) bool {
	return c != nil && o != nil && c.ID == o.ID
}
