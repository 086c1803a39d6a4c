package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Exchange is a trading venue in one country. It exclusively owns its
// per-weekday session buckets; a session is always stored under the
// bucket matching its Day.
type Exchange struct {
	ID       uuid.UUID
	Country  *Country
	NameID   uuid.UUID
	TimeZone string

	Holidays map[uuid.UUID]*Holiday

	// primary listings and venues where this exchange is secondary
	Instruments          map[uuid.UUID]*Instrument
	SecondaryInstruments map[uuid.UUID]*Instrument

	sessions [7][]*Session
}

func NewExchange(id uuid.UUID, country *Country, nameID uuid.UUID, timeZone string) *Exchange {
	return &Exchange{
		ID:                   id,
		Country:              country,
		NameID:               nameID,
		TimeZone:             timeZone,
		Holidays:             make(map[uuid.UUID]*Holiday),
		Instruments:          make(map[uuid.UUID]*Instrument),
		SecondaryInstruments: make(map[uuid.UUID]*Instrument),
	}
}

func (e *Exchange) EntityID() uuid.UUID   { return e.ID }
func (e *Exchange) NameTextID() uuid.UUID { return e.NameID }

func (e *Exchange) Equal(o *Exchange) bool {
	return e != nil && o != nil && e.ID == o.ID
}

// AddSession inserts the session into the bucket matching its Day,
// keeping the bucket ordered by start time.
func (e *Exchange) AddSession(s *Session) {
	s.Exchange = e
	bucket := append(e.sessions[s.Day], s)
	sort.Slice(bucket, func(i, j int) bool { return bucket[i].Start < bucket[j].Start })
	e.sessions[s.Day] = bucket
}

// RemoveSession takes the session out of its day bucket. Returns false
// when the session is not present.
func (e *Exchange) RemoveSession(s *Session) bool {
	bucket := e.sessions[s.Day]
	for i, held := range bucket {
		if held.ID == s.ID {
			e.sessions[s.Day] = append(bucket[:i:i], bucket[i+1:]...)
			return true
		}
	}
	return false
}

// MoveSession relocates the session to a new weekday bucket atomically.
func (e *Exchange) MoveSession(s *Session, day time.Weekday) bool {
	if !e.RemoveSession(s) {
		return false
	}
	s.Day = day
	e.AddSession(s)
	return true
}

// SessionsOn returns the ordered sessions for one weekday. The slice is
// a copy; mutation goes through Add/Remove/MoveSession only.
func (e *Exchange) SessionsOn(day time.Weekday) []*Session {
	bucket := e.sessions[day]
	out := make([]*Session, len(bucket))
	copy(out, bucket)
	return out
}

// Sessions returns every session across all day buckets.
func (e *Exchange) Sessions() []*Session {
	var out []*Session
	for day := range e.sessions {
		out = append(out, e.sessions[day]...)
	}
	return out
}

// SessionByID scans the day buckets for the given session id.
func (e *Exchange) SessionByID(id uuid.UUID) *Session {
	for day := range e.sessions {
		for _, s := range e.sessions[day] {
			if s.ID == id {
				return s
			}
		}
	}
	return nil
}
