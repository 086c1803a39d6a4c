package model

import "github.com/google/uuid"

// GroupRootID is the reserved parent id meaning "top level". It is a
// sentinel identifier, not a live group instance.
var GroupRootID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// InstrumentGroup is one node of the group hierarchy. Every group has
// exactly one parent; top-level groups carry GroupRootID.
type InstrumentGroup struct {
	ID            uuid.UUID
	NameID        uuid.UUID
	DescriptionID uuid.UUID

	ParentID uuid.UUID
	Parent   *InstrumentGroup // nil when ParentID == GroupRootID

	Children    map[uuid.UUID]*InstrumentGroup
	Instruments map[uuid.UUID]*Instrument
}

func NewInstrumentGroup(id, nameID, descriptionID, parentID uuid.UUID) *InstrumentGroup {
	return &InstrumentGroup{
		ID:            id,
		NameID:        nameID,
		DescriptionID: descriptionID,
		ParentID:      parentID,
		Children:      make(map[uuid.UUID]*InstrumentGroup),
		Instruments:   make(map[uuid.UUID]*Instrument),
	}
}

func (g *InstrumentGroup) EntityID() uuid.UUID          { return g.ID }
func (g *InstrumentGroup) NameTextID() uuid.UUID        { return g.NameID }
func (g *InstrumentGroup) DescriptionTextID() uuid.UUID { return g.DescriptionID }

func (g *InstrumentGroup) Equal(o *InstrumentGroup) bool {
	return g != nil && o != nil && g.ID == o.ID
}

// IsTopLevel reports whether the group hangs off the reserved root.
func (g *InstrumentGroup) IsTopLevel() bool {
	return g.ParentID == GroupRootID
}

// Reparent moves the group under a new parent, detaching it from the
// old parent's children first. Passing nil makes it top-level.
func (g *InstrumentGroup) Reparent(parent *InstrumentGroup) {
	if g.Parent != nil {
		delete(g.Parent.Children, g.ID)
	}
	if parent == nil {
		g.Parent = nil
		g.ParentID = GroupRootID
		return
	}
	g.Parent = parent
	g.ParentID = parent.ID
	parent.Children[g.ID] = g
}
