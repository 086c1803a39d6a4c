package manager

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"

	"marketref/internal/model"
	"marketref/internal/model/enum"
	"marketref/internal/store"
	"marketref/pkg/exception"
)

// UpdateName writes the localized name of any named entity. Without a
// culture override the current culture's row is updated; an explicit
// other-language write leaves the current-culture text untouched.
func (m *Manager) UpdateName(entity model.Named, value string, culture ...string) error {
	kind, err := m.entityKind(entity)
	if err != nil {
		return err
	}

	if err := m.updateLocalizedText(entity.NameTextID(), value, culture); err != nil {
		return err
	}

	m.notifyModel(ModelChange{Kind: ChangeUpdated, Entity: kind, ID: entity.EntityID()})
	return nil
}

// UpdateDescription writes the localized description of any described
// entity, with the same culture semantics as UpdateName.
func (m *Manager) UpdateDescription(entity model.Described, value string, culture ...string) error {
	kind, err := m.entityKind(entity)
	if err != nil {
		return err
	}

	if err := m.updateLocalizedText(entity.DescriptionTextID(), value, culture); err != nil {
		return err
	}

	m.notifyModel(ModelChange{Kind: ChangeUpdated, Entity: kind, ID: entity.EntityID()})
	return nil
}

// updateLocalizedText is the single primitive beneath every rename and
// redescribe overload.
func (m *Manager) updateLocalizedText(textID uuid.UUID, value string, culture []string) error {
	if textID == uuid.Nil {
		return errors.Wrap(exception.ErrInvalidArgument, "entity carries no text id")
	}
	lang := ""
	if len(culture) > 0 {
		lang = culture[0]
	}
	return m.store.UpdateText(textID, lang, value)
}

// entityKind resolves the change category for a named entity and
// verifies it is part of the live graph.
func (m *Manager) entityKind(entity model.Named) (EntityKind, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id := entity.EntityID()
	switch entity.(type) {
	case *model.Exchange:
		if _, ok := m.exchanges[id]; ok {
			return EntityExchange, nil
		}
	case *model.Holiday:
		if _, ok := m.holidays[id]; ok {
			return EntityHoliday, nil
		}
	case *model.Session:
		for _, ex := range m.exchanges {
			if ex.SessionByID(id) != nil {
				return EntitySession, nil
			}
		}
	case *model.Instrument:
		if _, ok := m.instruments[id]; ok {
			return EntityInstrument, nil
		}
	case *model.InstrumentGroup:
		if _, ok := m.groups[id]; ok {
			return EntityInstrumentGroup, nil
		}
	case *model.Fundamental:
		if _, ok := m.fundamentals[id]; ok {
			return EntityFundamental, nil
		}
	default:
		return 0, errors.Wrapf(exception.ErrInvalidArgument, "unsupported entity %T", entity)
	}
	return 0, errors.Wrapf(exception.ErrNotFound, "entity %s", id)
}

// ---------------------------------------------------------------------
// instrument updates
// ---------------------------------------------------------------------

// SetInstrumentTicker changes the instrument's ticker symbol.
func (m *Manager) SetInstrumentTicker(instrumentID uuid.UUID, ticker string) error {
	return m.mutateInstrument(instrumentID, func(inst *model.Instrument, row *store.InstrumentRow) error {
		inst.Ticker = ticker
		row.Ticker = ticker
		return nil
	})
}

// SetInstrumentInceptionDate changes the instrument's UTC inception
// date.
func (m *Manager) SetInstrumentInceptionDate(instrumentID uuid.UUID, inception time.Time) error {
	normalized := m.normalizeTime(inception)
	return m.mutateInstrument(instrumentID, func(inst *model.Instrument, row *store.InstrumentRow) error {
		inst.InceptionDate = normalized
		row.InceptionDate = normalized
		return nil
	})
}

// SetInstrumentExchange reassigns the instrument's primary exchange.
func (m *Manager) SetInstrumentExchange(instrumentID, exchangeID uuid.UUID) error {
	m.mu.RLock()
	ex, ok := m.exchanges[exchangeID]
	m.mu.RUnlock()
	if !ok {
		return errors.Wrapf(exception.ErrNotFound, "exchange %s", exchangeID)
	}

	return m.mutateInstrument(instrumentID, func(inst *model.Instrument, row *store.InstrumentRow) error {
		if inst.PrimaryExchange != nil {
			delete(inst.PrimaryExchange.Instruments, inst.ID)
		}
		inst.PrimaryExchange = ex
		ex.Instruments[inst.ID] = inst
		row.PrimaryExchangeID = exchangeID.String()
		return nil
	})
}

func (m *Manager) mutateInstrument(instrumentID uuid.UUID, mutate func(*model.Instrument, *store.InstrumentRow) error) error {
	m.mu.Lock()
	inst, ok := m.instruments[instrumentID]
	if !ok {
		m.mu.Unlock()
		return errors.Wrapf(exception.ErrNotFound, "instrument %s", instrumentID)
	}

	row := store.InstrumentRow{
		ID:                inst.ID.String(),
		Ticker:            inst.Ticker,
		Type:              string(inst.Type),
		NameID:            inst.NameID.String(),
		DescriptionID:     inst.DescriptionID.String(),
		InceptionDate:     inst.InceptionDate,
		PrimaryExchangeID: inst.PrimaryExchange.ID.String(),
	}
	if err := mutate(inst, &row); err != nil {
		m.mu.Unlock()
		return err
	}
	m.mu.Unlock()

	if err := m.store.UpdateInstrument(row); err != nil {
		return err
	}

	m.notifyModel(ModelChange{Kind: ChangeUpdated, Entity: EntityInstrument, ID: instrumentID})
	return nil
}

// AddSecondaryExchange records the instrument as a secondary listing
// on the exchange.
func (m *Manager) AddSecondaryExchange(instrumentID, exchangeID uuid.UUID) error {
	m.mu.RLock()
	inst, iok := m.instruments[instrumentID]
	ex, eok := m.exchanges[exchangeID]
	m.mu.RUnlock()
	if !iok {
		return errors.Wrapf(exception.ErrNotFound, "instrument %s", instrumentID)
	}
	if !eok {
		return errors.Wrapf(exception.ErrNotFound, "exchange %s", exchangeID)
	}

	err := m.store.CreateSecondaryExchange(store.SecondaryExchangeRow{
		InstrumentID: instrumentID.String(),
		ExchangeID:   exchangeID.String(),
	})
	if err != nil {
		return err
	}

	m.mu.Lock()
	inst.SecondaryExchanges[exchangeID] = ex
	ex.SecondaryInstruments[instrumentID] = inst
	m.mu.Unlock()

	m.notifyModel(ModelChange{Kind: ChangeUpdated, Entity: EntityInstrument, ID: instrumentID})
	return nil
}

// RemoveSecondaryExchange drops one secondary listing link.
func (m *Manager) RemoveSecondaryExchange(instrumentID, exchangeID uuid.UUID) error {
	if _, err := m.store.DeleteSecondaryExchange(instrumentID, exchangeID); err != nil {
		return err
	}

	m.mu.Lock()
	if inst, ok := m.instruments[instrumentID]; ok {
		delete(inst.SecondaryExchanges, exchangeID)
	}
	if ex, ok := m.exchanges[exchangeID]; ok {
		delete(ex.SecondaryInstruments, instrumentID)
	}
	m.mu.Unlock()

	m.notifyModel(ModelChange{Kind: ChangeUpdated, Entity: EntityInstrument, ID: instrumentID})
	return nil
}

// ---------------------------------------------------------------------
// group updates
// ---------------------------------------------------------------------

// MoveGroup reparents a group. The group leaves its old parent's
// children and joins the new one's atomically; model.GroupRootID moves
// it to top level.
func (m *Manager) MoveGroup(groupID, newParentID uuid.UUID) error {
	m.mu.Lock()
	g, ok := m.groups[groupID]
	if !ok {
		m.mu.Unlock()
		return errors.Wrapf(exception.ErrNotFound, "instrument group %s", groupID)
	}

	var parent *model.InstrumentGroup
	if newParentID != model.GroupRootID {
		parent, ok = m.groups[newParentID]
		if !ok {
			m.mu.Unlock()
			return errors.Wrapf(exception.ErrNotFound, "instrument group %s", newParentID)
		}
		for p := parent; p != nil; p = p.Parent {
			if p.ID == groupID {
				m.mu.Unlock()
				return errors.Wrapf(exception.ErrIntegrityViolation, "group %s cannot become its own descendant", groupID)
			}
		}
	}

	oldParent := g.Parent
	g.Reparent(parent)
	m.mu.Unlock()

	err := m.store.UpdateGroup(store.GroupRow{
		ID:            g.ID.String(),
		NameID:        g.NameID.String(),
		DescriptionID: g.DescriptionID.String(),
		ParentID:      newParentID.String(),
	})
	if err != nil {
		m.mu.Lock()
		g.Reparent(oldParent)
		m.mu.Unlock()
		return err
	}

	m.notifyModel(ModelChange{Kind: ChangeUpdated, Entity: EntityInstrumentGroup, ID: groupID})
	return nil
}

// AddGroupInstrument adds an instrument to a group's member set.
func (m *Manager) AddGroupInstrument(groupID, instrumentID uuid.UUID) error {
	m.mu.RLock()
	g, gok := m.groups[groupID]
	inst, iok := m.instruments[instrumentID]
	m.mu.RUnlock()
	if !gok {
		return errors.Wrapf(exception.ErrNotFound, "instrument group %s", groupID)
	}
	if !iok {
		return errors.Wrapf(exception.ErrNotFound, "instrument %s", instrumentID)
	}

	err := m.store.CreateGroupInstrument(store.GroupInstrumentRow{
		GroupID:      groupID.String(),
		InstrumentID: instrumentID.String(),
	})
	if err != nil {
		return err
	}

	m.mu.Lock()
	g.Instruments[instrumentID] = inst
	inst.Groups[groupID] = g
	m.mu.Unlock()

	m.notifyModel(ModelChange{Kind: ChangeUpdated, Entity: EntityInstrumentGroup, ID: groupID})
	return nil
}

// RemoveGroupInstrument drops an instrument from a group's member set.
func (m *Manager) RemoveGroupInstrument(groupID, instrumentID uuid.UUID) error {
	if _, err := m.store.DeleteGroupInstrument(groupID, instrumentID); err != nil {
		return err
	}

	m.mu.Lock()
	if g, ok := m.groups[groupID]; ok {
		delete(g.Instruments, instrumentID)
	}
	if inst, ok := m.instruments[instrumentID]; ok {
		delete(inst.Groups, groupID)
	}
	m.mu.Unlock()

	m.notifyModel(ModelChange{Kind: ChangeUpdated, Entity: EntityInstrumentGroup, ID: groupID})
	return nil
}

// ---------------------------------------------------------------------
// session updates
// ---------------------------------------------------------------------

// SetSessionDay moves a session to another weekday; the session
// relocates between its exchange's day buckets atomically.
func (m *Manager) SetSessionDay(sessionID uuid.UUID, day time.Weekday) error {
	m.mu.Lock()
	ex, s := m.findSession(sessionID)
	if s == nil {
		m.mu.Unlock()
		return errors.Wrapf(exception.ErrNotFound, "session %s", sessionID)
	}
	oldDay := s.Day
	ex.MoveSession(s, day)
	m.mu.Unlock()

	err := m.store.UpdateSession(sessionRowFrom(ex, s))
	if err != nil {
		m.mu.Lock()
		ex.MoveSession(s, oldDay)
		m.mu.Unlock()
		return err
	}

	m.notifyModel(ModelChange{Kind: ChangeUpdated, Entity: EntitySession, ID: sessionID})
	return nil
}

// SetSessionTimes changes a session's start and end times of day.
func (m *Manager) SetSessionTimes(sessionID uuid.UUID, start, end model.TimeOfDay) error {
	if end <= start {
		return errors.Wrapf(exception.ErrInvalidArgument, "session window %s-%s", start, end)
	}

	m.mu.Lock()
	ex, s := m.findSession(sessionID)
	if s == nil {
		m.mu.Unlock()
		return errors.Wrapf(exception.ErrNotFound, "session %s", sessionID)
	}
	oldStart, oldEnd := s.Start, s.End
	s.Start, s.End = start, end
	m.mu.Unlock()

	err := m.store.UpdateSession(sessionRowFrom(ex, s))
	if err != nil {
		m.mu.Lock()
		s.Start, s.End = oldStart, oldEnd
		m.mu.Unlock()
		return err
	}

	m.notifyModel(ModelChange{Kind: ChangeUpdated, Entity: EntitySession, ID: sessionID})
	return nil
}

// findSession scans exchanges for the session. Callers hold m.mu.
func (m *Manager) findSession(sessionID uuid.UUID) (*model.Exchange, *model.Session) {
	for _, ex := range m.exchanges {
		if s := ex.SessionByID(sessionID); s != nil {
			return ex, s
		}
	}
	return nil, nil
}

func sessionRowFrom(ex *model.Exchange, s *model.Session) store.SessionRow {
	return store.SessionRow{
		ID:         s.ID.String(),
		ExchangeID: ex.ID.String(),
		NameID:     s.NameID.String(),
		Day:        int(s.Day),
		StartSec:   int32(s.Start),
		EndSec:     int32(s.End),
	}
}

// ---------------------------------------------------------------------
// fundamental values
// ---------------------------------------------------------------------

// AddFundamentalValue appends or overwrites one dated observation and
// emits a FundamentalChange (not a ModelChange).
func (m *Manager) AddFundamentalValue(associationID uuid.UUID, at time.Time, value decimal.Decimal) error {
	m.mu.RLock()
	assoc, ok := m.associations[associationID]
	m.mu.RUnlock()
	if !ok {
		return errors.Wrapf(exception.ErrNotFound, "association %s", associationID)
	}

	when := m.normalizeTime(at)
	err := m.store.UpsertFundamentalValue(assoc.Provider, assoc.OwnerKind, associationID, when, value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	assoc.SetValue(when, value)
	m.mu.Unlock()

	m.notifyFundamental(FundamentalChange{Provider: assoc.Provider, AssociationID: associationID, Time: when})
	return nil
}

// ---------------------------------------------------------------------
// price data
// ---------------------------------------------------------------------

// UpdateBar upserts a single bar and emits one PriceChange.
func (m *Manager) UpdateBar(provider string, instrumentID uuid.UUID, res enum.Resolution, synthetic bool, bar model.Bar) error {
	return m.UpdateBars(provider, instrumentID, res, synthetic, []model.Bar{bar})
}

// UpdateBars upserts a whole range in one transaction and emits
// exactly one PriceChange covering the range.
func (m *Manager) UpdateBars(provider string, instrumentID uuid.UUID, res enum.Resolution, synthetic bool, bars []model.Bar) error {
	ticker, ok := m.InstrumentTicker(instrumentID)
	if !ok {
		return errors.Wrapf(exception.ErrNotFound, "instrument %s", instrumentID)
	}
	if len(bars) == 0 {
		return nil
	}

	normalized := make([]model.Bar, len(bars))
	from, to := time.Time{}, time.Time{}
	for i, bar := range bars {
		bar.Ticker = ticker
		bar.Time = m.normalizeTime(bar.Time)
		bar.Synthetic = synthetic
		normalized[i] = bar
		if from.IsZero() || bar.Time.Before(from) {
			from = bar.Time
		}
		if to.IsZero() || bar.Time.After(to) {
			to = bar.Time
		}
	}

	if err := m.store.UpsertBars(provider, res, synthetic, normalized); err != nil {
		return err
	}

	m.notifyPrice(PriceChange{
		Provider:     provider,
		InstrumentID: instrumentID,
		Ticker:       ticker,
		Resolution:   res,
		DataType:     priceDataType(synthetic),
		From:         from,
		To:           to,
	})
	return nil
}

// UpdateLevel1 upserts a single tick snapshot and emits one
// PriceChange.
func (m *Manager) UpdateLevel1(provider string, instrumentID uuid.UUID, synthetic bool, tick model.Level1) error {
	return m.UpdateLevel1Range(provider, instrumentID, synthetic, []model.Level1{tick})
}

// UpdateLevel1Range upserts a tick range in one transaction and emits
// exactly one PriceChange covering the range.
func (m *Manager) UpdateLevel1Range(provider string, instrumentID uuid.UUID, synthetic bool, ticks []model.Level1) error {
	ticker, ok := m.InstrumentTicker(instrumentID)
	if !ok {
		return errors.Wrapf(exception.ErrNotFound, "instrument %s", instrumentID)
	}
	if len(ticks) == 0 {
		return nil
	}

	normalized := make([]model.Level1, len(ticks))
	from, to := time.Time{}, time.Time{}
	for i, tick := range ticks {
		tick.Ticker = ticker
		tick.Time = m.normalizeTime(tick.Time)
		tick.Synthetic = synthetic
		normalized[i] = tick
		if from.IsZero() || tick.Time.Before(from) {
			from = tick.Time
		}
		if to.IsZero() || tick.Time.After(to) {
			to = tick.Time
		}
	}

	if err := m.store.UpsertLevel1(provider, synthetic, normalized); err != nil {
		return err
	}

	m.notifyPrice(PriceChange{
		Provider:     provider,
		InstrumentID: instrumentID,
		Ticker:       ticker,
		Resolution:   enum.ResolutionLevel1,
		DataType:     priceDataType(synthetic),
		From:         from,
		To:           to,
	})
	return nil
}

func priceDataType(synthetic bool) enum.PriceDataType {
	if synthetic {
		return enum.PriceDataSynthetic
	}
	return enum.PriceDataActual
}
