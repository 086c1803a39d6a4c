package manager

import (
	"github.com/google/uuid"
	"github.com/yanun0323/errors"

	"marketref/internal/model"
	"marketref/pkg/exception"
)

// DeleteCountry removes a country and everything it owns, returning
// the number of store rows removed.
func (m *Manager) DeleteCountry(id uuid.UUID) (int64, error) {
	m.mu.RLock()
	country, ok := m.countries[id]
	m.mu.RUnlock()
	if !ok {
		return 0, errors.Wrapf(exception.ErrNotFound, "country %s", id)
	}

	n, err := m.store.DeleteCountry(id)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	for _, ex := range country.Exchanges {
		m.detachExchange(ex)
	}
	for hid := range country.Holidays {
		delete(m.holidays, hid)
	}
	for aid := range country.Fundamentals {
		delete(m.associations, aid)
	}
	delete(m.countries, id)
	m.mu.Unlock()

	m.notifyModel(ModelChange{Kind: ChangeDeleted, Entity: EntityCountry, ID: id})
	return n, nil
}

// DeleteExchange removes an exchange with its holidays, sessions and
// primary instruments.
func (m *Manager) DeleteExchange(id uuid.UUID) (int64, error) {
	m.mu.RLock()
	ex, ok := m.exchanges[id]
	m.mu.RUnlock()
	if !ok {
		return 0, errors.Wrapf(exception.ErrNotFound, "exchange %s", id)
	}

	n, err := m.store.DeleteExchange(id)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	m.detachExchange(ex)
	m.mu.Unlock()

	m.notifyModel(ModelChange{Kind: ChangeDeleted, Entity: EntityExchange, ID: id})
	return n, nil
}

// detachExchange removes an exchange and its dependents from the
// graph. Callers hold m.mu.
func (m *Manager) detachExchange(ex *model.Exchange) {
	for _, inst := range ex.Instruments {
		m.detachInstrument(inst)
	}
	for hid := range ex.Holidays {
		delete(m.holidays, hid)
	}
	for instID, inst := range ex.SecondaryInstruments {
		delete(inst.SecondaryExchanges, ex.ID)
		delete(ex.SecondaryInstruments, instID)
	}
	if ex.Country != nil {
		delete(ex.Country.Exchanges, ex.ID)
	}
	delete(m.exchanges, ex.ID)
}

// DeleteInstrument removes an instrument with its price series, group
// memberships and fundamental associations.
func (m *Manager) DeleteInstrument(id uuid.UUID) (int64, error) {
	m.mu.RLock()
	inst, ok := m.instruments[id]
	m.mu.RUnlock()
	if !ok {
		return 0, errors.Wrapf(exception.ErrNotFound, "instrument %s", id)
	}

	n, err := m.store.DeleteInstrument(id)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	m.detachInstrument(inst)
	m.mu.Unlock()

	m.notifyModel(ModelChange{Kind: ChangeDeleted, Entity: EntityInstrument, ID: id})
	return n, nil
}

// detachInstrument removes an instrument from the graph. Callers hold
// m.mu.
func (m *Manager) detachInstrument(inst *model.Instrument) {
	if inst.PrimaryExchange != nil {
		delete(inst.PrimaryExchange.Instruments, inst.ID)
	}
	for exID, ex := range inst.SecondaryExchanges {
		delete(ex.SecondaryInstruments, inst.ID)
		delete(inst.SecondaryExchanges, exID)
	}
	for _, g := range inst.Groups {
		delete(g.Instruments, inst.ID)
	}
	for aid := range inst.Fundamentals {
		delete(m.associations, aid)
	}
	delete(m.instruments, inst.ID)
}

// DeleteSession removes one session.
func (m *Manager) DeleteSession(id uuid.UUID) (int64, error) {
	m.mu.Lock()
	ex, s := m.findSession(id)
	if s == nil {
		m.mu.Unlock()
		return 0, errors.Wrapf(exception.ErrNotFound, "session %s", id)
	}
	m.mu.Unlock()

	n, err := m.store.DeleteSession(id)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	ex.RemoveSession(s)
	m.mu.Unlock()

	m.notifyModel(ModelChange{Kind: ChangeDeleted, Entity: EntitySession, ID: id})
	return n, nil
}

// DeleteHoliday removes one holiday from its owner.
func (m *Manager) DeleteHoliday(id uuid.UUID) (int64, error) {
	m.mu.RLock()
	h, ok := m.holidays[id]
	m.mu.RUnlock()
	if !ok {
		return 0, errors.Wrapf(exception.ErrNotFound, "holiday %s", id)
	}

	n, err := m.store.DeleteHoliday(id)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	if country, ok := m.countries[h.OwnerID]; ok {
		delete(country.Holidays, id)
	}
	if ex, ok := m.exchanges[h.OwnerID]; ok {
		delete(ex.Holidays, id)
	}
	delete(m.holidays, id)
	m.mu.Unlock()

	m.notifyModel(ModelChange{Kind: ChangeDeleted, Entity: EntityHoliday, ID: id})
	return n, nil
}

// DeleteGroup removes a group and, recursively, its child groups.
func (m *Manager) DeleteGroup(id uuid.UUID) (int64, error) {
	m.mu.RLock()
	g, ok := m.groups[id]
	m.mu.RUnlock()
	if !ok {
		return 0, errors.Wrapf(exception.ErrNotFound, "instrument group %s", id)
	}

	n, err := m.store.DeleteGroup(id)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	m.detachGroup(g)
	m.mu.Unlock()

	m.notifyModel(ModelChange{Kind: ChangeDeleted, Entity: EntityInstrumentGroup, ID: id})
	return n, nil
}

func (m *Manager) detachGroup(g *model.InstrumentGroup) {
	for _, child := range g.Children {
		m.detachGroup(child)
	}
	for _, inst := range g.Instruments {
		delete(inst.Groups, g.ID)
	}
	if g.Parent != nil {
		delete(g.Parent.Children, g.ID)
	}
	delete(m.groups, g.ID)
}

// DeleteFundamental removes a definition with its associations and
// values across every provider.
func (m *Manager) DeleteFundamental(id uuid.UUID) (int64, error) {
	m.mu.RLock()
	_, ok := m.fundamentals[id]
	m.mu.RUnlock()
	if !ok {
		return 0, errors.Wrapf(exception.ErrNotFound, "fundamental %s", id)
	}

	n, err := m.store.DeleteFundamental(id)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	for aid, assoc := range m.associations {
		if assoc.Fundamental != nil && assoc.Fundamental.ID == id {
			if country, ok := m.countries[assoc.OwnerID]; ok {
				delete(country.Fundamentals, aid)
			}
			if inst, ok := m.instruments[assoc.OwnerID]; ok {
				delete(inst.Fundamentals, aid)
			}
			delete(m.associations, aid)
		}
	}
	delete(m.fundamentals, id)
	m.mu.Unlock()

	m.notifyModel(ModelChange{Kind: ChangeDeleted, Entity: EntityFundamental, ID: id})
	return n, nil
}

// DeleteAssociation removes one provider-scoped association and its
// values.
func (m *Manager) DeleteAssociation(id uuid.UUID) (int64, error) {
	m.mu.RLock()
	assoc, ok := m.associations[id]
	m.mu.RUnlock()
	if !ok {
		return 0, errors.Wrapf(exception.ErrNotFound, "association %s", id)
	}

	n, err := m.store.DeleteAssociation(assoc.Provider, assoc.OwnerKind, id)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	if country, ok := m.countries[assoc.OwnerID]; ok {
		delete(country.Fundamentals, id)
	}
	if inst, ok := m.instruments[assoc.OwnerID]; ok {
		delete(inst.Fundamentals, id)
	}
	delete(m.associations, id)
	m.mu.Unlock()

	m.notifyModel(ModelChange{Kind: ChangeDeleted, Entity: EntityAssociation, ID: id})
	return n, nil
}
