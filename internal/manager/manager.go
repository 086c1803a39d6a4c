// Package manager maintains the authoritative in-memory reference
// graph. Every mutation writes through to the durable store first,
// then updates the graph, then notifies subscribed observers on the
// calling thread.
package manager

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"marketref/internal/model"
	"marketref/internal/model/enum"
	"marketref/internal/store"
	"marketref/pkg/exception"
)

// Manager is the single entry point for reference-graph mutation.
type Manager struct {
	mu     sync.RWMutex
	store  *store.Store
	tzMode enum.TimeZoneMode

	countries    map[uuid.UUID]*model.Country
	exchanges    map[uuid.UUID]*model.Exchange
	holidays     map[uuid.UUID]*model.Holiday
	instruments  map[uuid.UUID]*model.Instrument
	groups       map[uuid.UUID]*model.InstrumentGroup
	fundamentals map[uuid.UUID]*model.Fundamental
	associations map[uuid.UUID]*model.FundamentalAssociation

	obsMu          sync.Mutex
	modelObs       map[SubscriptionID]ModelObserver
	fundamentalObs map[SubscriptionID]FundamentalObserver
	priceObs       map[SubscriptionID]PriceObserver
}

// New builds a manager over the given store and performs the initial
// graph load.
func New(st *store.Store, tzMode enum.TimeZoneMode) (*Manager, error) {
	if !tzMode.IsAvailable() {
		return nil, errors.Wrapf(exception.ErrConfiguration, "time zone mode %d", tzMode)
	}

	m := &Manager{
		store:          st,
		tzMode:         tzMode,
		modelObs:       make(map[SubscriptionID]ModelObserver),
		fundamentalObs: make(map[SubscriptionID]FundamentalObserver),
		priceObs:       make(map[SubscriptionID]PriceObserver),
	}
	if err := m.Refresh(); err != nil {
		return nil, err
	}
	return m, nil
}

// Store exposes the underlying durable store for read-side consumers
// (the feed cache reads series data directly, not through the graph).
func (m *Manager) Store() *store.Store {
	return m.store
}

// Refresh discards the in-memory graph and rebuilds it entirely from
// the durable store. Recovered entities are Id-equal, not
// reference-equal, to their pre-refresh counterparts.
func (m *Manager) Refresh() error {
	snap, err := m.store.LoadSnapshot()
	if err != nil {
		return errors.Wrap(err, "refresh")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.rebuild(snap); err != nil {
		return err
	}

	logs.Infof("reference graph rebuilt: %d countries, %d exchanges, %d instruments",
		len(m.countries), len(m.exchanges), len(m.instruments))
	return nil
}

func (m *Manager) rebuild(snap *store.Snapshot) error {
	m.countries = make(map[uuid.UUID]*model.Country, len(snap.Countries))
	m.exchanges = make(map[uuid.UUID]*model.Exchange, len(snap.Exchanges))
	m.holidays = make(map[uuid.UUID]*model.Holiday, len(snap.Holidays))
	m.instruments = make(map[uuid.UUID]*model.Instrument, len(snap.Instruments))
	m.groups = make(map[uuid.UUID]*model.InstrumentGroup, len(snap.Groups))
	m.fundamentals = make(map[uuid.UUID]*model.Fundamental, len(snap.Fundamentals))
	m.associations = make(map[uuid.UUID]*model.FundamentalAssociation)

	for _, row := range snap.Countries {
		id, err := parseID(row.ID)
		if err != nil {
			return err
		}
		m.countries[id] = model.NewCountry(id, row.IsoCode)
	}

	for _, row := range snap.Exchanges {
		id, err := parseID(row.ID)
		if err != nil {
			return err
		}
		countryID, err := parseID(row.CountryID)
		if err != nil {
			return err
		}
		nameID, err := parseID(row.NameID)
		if err != nil {
			return err
		}
		country, ok := m.countries[countryID]
		if !ok {
			return errors.Wrapf(exception.ErrIntegrityViolation, "exchange %s references unknown country %s", id, countryID)
		}
		ex := model.NewExchange(id, country, nameID, row.TimeZone)
		m.exchanges[id] = ex
		country.Exchanges[id] = ex
	}

	for _, row := range snap.Sessions {
		s, exchangeID, err := sessionFromRow(row)
		if err != nil {
			return err
		}
		ex, ok := m.exchanges[exchangeID]
		if !ok {
			return errors.Wrapf(exception.ErrIntegrityViolation, "session %s references unknown exchange %s", s.ID, exchangeID)
		}
		ex.AddSession(s)
	}

	for _, row := range snap.Holidays {
		h, err := holidayFromRow(row)
		if err != nil {
			return err
		}
		switch h.OwnerKind {
		case enum.HolidayOwnerCountry:
			country, ok := m.countries[h.OwnerID]
			if !ok {
				return errors.Wrapf(exception.ErrIntegrityViolation, "holiday %s references unknown country %s", h.ID, h.OwnerID)
			}
			country.Holidays[h.ID] = h
		case enum.HolidayOwnerExchange:
			ex, ok := m.exchanges[h.OwnerID]
			if !ok {
				return errors.Wrapf(exception.ErrIntegrityViolation, "holiday %s references unknown exchange %s", h.ID, h.OwnerID)
			}
			ex.Holidays[h.ID] = h
		}
		m.holidays[h.ID] = h
	}

	for _, row := range snap.Instruments {
		inst, exchangeID, err := instrumentFromRow(row)
		if err != nil {
			return err
		}
		ex, ok := m.exchanges[exchangeID]
		if !ok {
			return errors.Wrapf(exception.ErrIntegrityViolation, "instrument %s references unknown exchange %s", inst.ID, exchangeID)
		}
		inst.PrimaryExchange = ex
		ex.Instruments[inst.ID] = inst
		m.instruments[inst.ID] = inst
	}

	for _, row := range snap.SecondaryLinks {
		instID, err := parseID(row.InstrumentID)
		if err != nil {
			return err
		}
		exID, err := parseID(row.ExchangeID)
		if err != nil {
			return err
		}
		inst, ok := m.instruments[instID]
		if !ok {
			continue
		}
		ex, ok := m.exchanges[exID]
		if !ok {
			continue
		}
		inst.SecondaryExchanges[exID] = ex
		ex.SecondaryInstruments[instID] = inst
	}

	// groups load in two passes: rows first, hierarchy second
	for _, row := range snap.Groups {
		g, err := groupFromRow(row)
		if err != nil {
			return err
		}
		m.groups[g.ID] = g
	}
	for _, g := range m.groups {
		if g.ParentID == model.GroupRootID {
			continue
		}
		parent, ok := m.groups[g.ParentID]
		if !ok {
			return errors.Wrapf(exception.ErrIntegrityViolation, "group %s references unknown parent %s", g.ID, g.ParentID)
		}
		g.Parent = parent
		parent.Children[g.ID] = g
	}
	for _, row := range snap.GroupMembers {
		groupID, err := parseID(row.GroupID)
		if err != nil {
			return err
		}
		instID, err := parseID(row.InstrumentID)
		if err != nil {
			return err
		}
		g, ok := m.groups[groupID]
		if !ok {
			continue
		}
		inst, ok := m.instruments[instID]
		if !ok {
			continue
		}
		g.Instruments[instID] = inst
		inst.Groups[groupID] = g
	}

	for _, row := range snap.Fundamentals {
		f, err := fundamentalFromRow(row)
		if err != nil {
			return err
		}
		m.fundamentals[f.ID] = f
	}

	for provider, pa := range snap.Associations {
		if err := m.attachAssociations(provider, enum.FundamentalCountry, pa.Country, pa.CountryValues); err != nil {
			return err
		}
		if err := m.attachAssociations(provider, enum.FundamentalInstrument, pa.Instrument, pa.InstrumentValues); err != nil {
			return err
		}
	}

	return nil
}

func (m *Manager) attachAssociations(provider string, kind enum.FundamentalCategory, rows []store.AssociationRow, values []store.ValueRow) error {
	byAssoc := make(map[string][]store.ValueRow)
	for _, v := range values {
		byAssoc[v.AssociationID] = append(byAssoc[v.AssociationID], v)
	}

	for _, row := range rows {
		assocID, err := parseID(row.AssociationID)
		if err != nil {
			return err
		}
		ownerID, err := parseID(row.OwnerID)
		if err != nil {
			return err
		}
		fundamentalID, err := parseID(row.FundamentalID)
		if err != nil {
			return err
		}
		fundamental, ok := m.fundamentals[fundamentalID]
		if !ok {
			return errors.Wrapf(exception.ErrIntegrityViolation, "association %s references unknown fundamental %s", assocID, fundamentalID)
		}

		assoc := model.NewFundamentalAssociation(assocID, provider, fundamental, kind, ownerID)
		for _, v := range byAssoc[row.AssociationID] {
			assoc.SetValue(v.Time, v.Value)
		}

		switch kind {
		case enum.FundamentalCountry:
			country, ok := m.countries[ownerID]
			if !ok {
				return errors.Wrapf(exception.ErrIntegrityViolation, "association %s references unknown country %s", assocID, ownerID)
			}
			country.Fundamentals[assocID] = assoc
		case enum.FundamentalInstrument:
			inst, ok := m.instruments[ownerID]
			if !ok {
				return errors.Wrapf(exception.ErrIntegrityViolation, "association %s references unknown instrument %s", assocID, ownerID)
			}
			inst.Fundamentals[assocID] = assoc
		}
		m.associations[assocID] = assoc
	}
	return nil
}

// ---------------------------------------------------------------------
// graph accessors
// ---------------------------------------------------------------------

func (m *Manager) Country(id uuid.UUID) (*model.Country, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.countries[id]
	return c, ok
}

func (m *Manager) Exchange(id uuid.UUID) (*model.Exchange, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exchanges[id]
	return e, ok
}

func (m *Manager) Holiday(id uuid.UUID) (*model.Holiday, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.holidays[id]
	return h, ok
}

func (m *Manager) Instrument(id uuid.UUID) (*model.Instrument, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.instruments[id]
	return i, ok
}

// InstrumentTicker reads an instrument's current ticker under the
// graph lock. Renames mutate the ticker in place, so callers must not
// cache the value across mutations.
func (m *Manager) InstrumentTicker(id uuid.UUID) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inst, ok := m.instruments[id]
	if !ok {
		return "", false
	}
	return inst.Ticker, true
}

func (m *Manager) Group(id uuid.UUID) (*model.InstrumentGroup, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[id]
	return g, ok
}

func (m *Manager) Fundamental(id uuid.UUID) (*model.Fundamental, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.fundamentals[id]
	return f, ok
}

func (m *Manager) Association(id uuid.UUID) (*model.FundamentalAssociation, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.associations[id]
	return a, ok
}

func (m *Manager) Countries() []*model.Country {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Country, 0, len(m.countries))
	for _, c := range m.countries {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

// Text resolves a localized text group in the current culture.
func (m *Manager) Text(id uuid.UUID) string {
	return m.store.GetText(id)
}

// TextIn resolves a localized text group for an explicit culture.
func (m *Manager) TextIn(id uuid.UUID, culture string) string {
	return m.store.GetTextIn(id, culture)
}

// ---------------------------------------------------------------------
// subscriptions
// ---------------------------------------------------------------------

func (m *Manager) SubscribeModel(o ModelObserver) SubscriptionID {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()
	id := newSubscriptionID()
	m.modelObs[id] = o
	return id
}

func (m *Manager) UnsubscribeModel(id SubscriptionID) bool {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()
	_, ok := m.modelObs[id]
	delete(m.modelObs, id)
	return ok
}

func (m *Manager) SubscribeFundamental(o FundamentalObserver) SubscriptionID {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()
	id := newSubscriptionID()
	m.fundamentalObs[id] = o
	return id
}

func (m *Manager) UnsubscribeFundamental(id SubscriptionID) bool {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()
	_, ok := m.fundamentalObs[id]
	delete(m.fundamentalObs, id)
	return ok
}

func (m *Manager) SubscribePrice(o PriceObserver) SubscriptionID {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()
	id := newSubscriptionID()
	m.priceObs[id] = o
	return id
}

func (m *Manager) UnsubscribePrice(id SubscriptionID) bool {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()
	_, ok := m.priceObs[id]
	delete(m.priceObs, id)
	return ok
}

// PriceObserverCount reports the number of live price subscriptions.
func (m *Manager) PriceObserverCount() int {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()
	return len(m.priceObs)
}

// Dispatch runs synchronously on the mutating caller's thread, outside
// the graph lock so observers may read back into the manager.
func (m *Manager) notifyModel(changes ...ModelChange) {
	m.obsMu.Lock()
	obs := make([]ModelObserver, 0, len(m.modelObs))
	for _, o := range m.modelObs {
		obs = append(obs, o)
	}
	m.obsMu.Unlock()
	for _, o := range obs {
		o.OnModelChange(changes)
	}
}

func (m *Manager) notifyFundamental(changes ...FundamentalChange) {
	m.obsMu.Lock()
	obs := make([]FundamentalObserver, 0, len(m.fundamentalObs))
	for _, o := range m.fundamentalObs {
		obs = append(obs, o)
	}
	m.obsMu.Unlock()
	for _, o := range obs {
		o.OnFundamentalChange(changes)
	}
}

func (m *Manager) notifyPrice(changes ...PriceChange) {
	m.obsMu.Lock()
	obs := make([]PriceObserver, 0, len(m.priceObs))
	for _, o := range m.priceObs {
		obs = append(obs, o)
	}
	m.obsMu.Unlock()
	for _, o := range obs {
		o.OnPriceChange(changes)
	}
}

// ---------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------

// normalizeTime applies the configured time-zone interpretation at the
// manager boundary. Storage is always UTC.
func (m *Manager) normalizeTime(t time.Time) time.Time {
	if m.tzMode == enum.TimeZoneLocal {
		return t.UTC()
	}
	// UTC mode: the wall-clock reading is taken as UTC regardless of
	// the location attached to the value.
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errors.Wrapf(exception.ErrInternal, "malformed id %q", s)
	}
	return id, nil
}

func sessionFromRow(row store.SessionRow) (*model.Session, uuid.UUID, error) {
	id, err := parseID(row.ID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	exchangeID, err := parseID(row.ExchangeID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	nameID, err := parseID(row.NameID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	return &model.Session{
		ID:     id,
		NameID: nameID,
		Day:    time.Weekday(row.Day),
		Start:  model.TimeOfDay(row.StartSec),
		End:    model.TimeOfDay(row.EndSec),
	}, exchangeID, nil
}

func holidayFromRow(row store.HolidayRow) (*model.Holiday, error) {
	id, err := parseID(row.ID)
	if err != nil {
		return nil, err
	}
	ownerID, err := parseID(row.OwnerID)
	if err != nil {
		return nil, err
	}
	nameID, err := parseID(row.NameID)
	if err != nil {
		return nil, err
	}
	return &model.Holiday{
		ID:          id,
		OwnerKind:   enum.HolidayOwner(row.OwnerKind),
		OwnerID:     ownerID,
		NameID:      nameID,
		Type:        enum.HolidayType(row.Type),
		Month:       time.Month(row.Month),
		DayOfMonth:  row.DayOfMonth,
		DayOfWeek:   time.Weekday(row.DayOfWeek),
		WeekOfMonth: enum.WeekOfMonth(row.WeekOfMonth),
		MoveWeekend: enum.MoveWeekendHoliday(row.MoveWeekend),
	}, nil
}

func instrumentFromRow(row store.InstrumentRow) (*model.Instrument, uuid.UUID, error) {
	id, err := parseID(row.ID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	exchangeID, err := parseID(row.PrimaryExchangeID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	nameID, err := parseID(row.NameID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	descriptionID, err := parseID(row.DescriptionID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	inst := model.NewInstrument(id, row.Ticker, model.InstrumentType(row.Type), nameID, descriptionID, row.InceptionDate, nil)
	return inst, exchangeID, nil
}

func groupFromRow(row store.GroupRow) (*model.InstrumentGroup, error) {
	id, err := parseID(row.ID)
	if err != nil {
		return nil, err
	}
	nameID, err := parseID(row.NameID)
	if err != nil {
		return nil, err
	}
	descriptionID, err := parseID(row.DescriptionID)
	if err != nil {
		return nil, err
	}
	parentID, err := parseID(row.ParentID)
	if err != nil {
		return nil, err
	}
	return model.NewInstrumentGroup(id, nameID, descriptionID, parentID), nil
}

func fundamentalFromRow(row store.FundamentalRow) (*model.Fundamental, error) {
	id, err := parseID(row.ID)
	if err != nil {
		return nil, err
	}
	nameID, err := parseID(row.NameID)
	if err != nil {
		return nil, err
	}
	descriptionID, err := parseID(row.DescriptionID)
	if err != nil {
		return nil, err
	}
	return &model.Fundamental{
		ID:              id,
		NameID:          nameID,
		DescriptionID:   descriptionID,
		Category:        enum.FundamentalCategory(row.Category),
		ReleaseInterval: enum.ReleaseInterval(row.ReleaseInterval),
	}, nil
}
