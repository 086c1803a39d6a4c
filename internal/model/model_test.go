package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"marketref/internal/model/enum"
)

func mustID(s string) uuid.UUID {
	return uuid.MustParse(s)
}

func TestIdentityEquality(t *testing.T) {
	id := mustID("11111111-2222-3333-4444-555555555555")

	a := NewCountry(id, "en-US")
	b := NewCountry(id, "en-US")
	if !a.Equal(b) {
		t.Fatal("countries with the same id must be equal")
	}
	if a.Equal(NewCountry(mustID("11111111-2222-3333-4444-666666666666"), "en-US")) {
		t.Fatal("countries with different ids must not be equal")
	}
}

func TestGroupReparent(t *testing.T) {
	parentA := NewInstrumentGroup(mustID("aaaaaaaa-0000-0000-0000-00000000000a"), uuid.Nil, uuid.Nil, GroupRootID)
	parentB := NewInstrumentGroup(mustID("aaaaaaaa-0000-0000-0000-00000000000b"), uuid.Nil, uuid.Nil, GroupRootID)
	child := NewInstrumentGroup(mustID("aaaaaaaa-0000-0000-0000-00000000000c"), uuid.Nil, uuid.Nil, GroupRootID)

	child.Reparent(parentA)
	if child.ParentID != parentA.ID || len(parentA.Children) != 1 {
		t.Fatalf("reparent to A: parent %v children %d", child.ParentID, len(parentA.Children))
	}

	child.Reparent(parentB)
	if len(parentA.Children) != 0 {
		t.Fatal("old parent kept the child")
	}
	if child.ParentID != parentB.ID || len(parentB.Children) != 1 {
		t.Fatalf("reparent to B: parent %v children %d", child.ParentID, len(parentB.Children))
	}

	child.Reparent(nil)
	if !child.IsTopLevel() || len(parentB.Children) != 0 {
		t.Fatal("reparent to root failed")
	}
}

func TestAssociationLatest(t *testing.T) {
	f := &Fundamental{ID: mustID("bbbbbbbb-0000-0000-0000-000000000001")}
	assoc := NewFundamentalAssociation(mustID("bbbbbbbb-0000-0000-0000-000000000002"), "TestFeed", f, enum.FundamentalCountry, mustID("bbbbbbbb-0000-0000-0000-000000000003"))

	if _, ok := assoc.Latest(); ok {
		t.Fatal("empty series must report no latest value")
	}

	// insertion order does not matter, only the max timestamp does
	assoc.SetValue(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(2))
	assoc.SetValue(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(1))
	assoc.SetValue(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(3))

	latest, ok := assoc.Latest()
	if !ok {
		t.Fatal("populated series must report a latest value")
	}
	if !latest.Time.Equal(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("latest time %s", latest.Time)
	}
	if !latest.Value.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("latest value %s", latest.Value)
	}

	// overwriting the max key replaces the reported value
	assoc.SetValue(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(5))
	latest, _ = assoc.Latest()
	if !latest.Value.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("latest value after overwrite %s", latest.Value)
	}
}
