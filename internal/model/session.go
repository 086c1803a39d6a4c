package model

import (
	"time"

	"github.com/google/uuid"
)

// Session is one trading window of an exchange on a given weekday. It
// lives in exactly the day bucket of its Exchange matching Day; moving
// it between buckets goes through Exchange.MoveSession.
type Session struct {
	ID       uuid.UUID
	Exchange *Exchange
	NameID   uuid.UUID

	Day   time.Weekday
	Start TimeOfDay
	End   TimeOfDay
}

func (s *Session) EntityID() uuid.UUID   { return s.ID }
func (s *Session) NameTextID() uuid.UUID { return s.NameID }

func (s *Session) Equal(o *Session) bool {
	return s != nil && o != nil && s.ID == o.ID
}
