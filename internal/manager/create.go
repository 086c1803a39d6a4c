package manager

import (
	"time"

	"github.com/google/uuid"
	"github.com/yanun0323/errors"

	"marketref/internal/model"
	"marketref/internal/model/enum"
	"marketref/internal/store"
	"marketref/pkg/exception"
)

// HolidayDefinition carries the recurrence rule of a holiday.
type HolidayDefinition struct {
	Type        enum.HolidayType
	Month       time.Month
	DayOfMonth  int
	DayOfWeek   time.Weekday
	WeekOfMonth enum.WeekOfMonth
	MoveWeekend enum.MoveWeekendHoliday
}

// CreateCountry adds a country keyed by its ISO code.
func (m *Manager) CreateCountry(isoCode string) (*model.Country, error) {
	id := uuid.New()
	if err := m.store.CreateCountry(store.CountryRow{ID: id.String(), IsoCode: isoCode}); err != nil {
		return nil, err
	}

	country := model.NewCountry(id, isoCode)
	m.mu.Lock()
	m.countries[id] = country
	m.mu.Unlock()

	m.notifyModel(ModelChange{Kind: ChangeCreated, Entity: EntityCountry, ID: id})
	return country, nil
}

// CreateExchange adds an exchange under an existing country. The name
// is persisted under the current culture unless an explicit culture
// override is given.
func (m *Manager) CreateExchange(countryID uuid.UUID, name, timeZone string, culture ...string) (*model.Exchange, error) {
	m.mu.RLock()
	country, ok := m.countries[countryID]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(exception.ErrNotFound, "country %s", countryID)
	}

	nameID, err := m.newText(name, culture)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	err = m.store.CreateExchange(store.ExchangeRow{
		ID:        id.String(),
		CountryID: countryID.String(),
		NameID:    nameID.String(),
		TimeZone:  timeZone,
	})
	if err != nil {
		m.dropText(nameID)
		return nil, err
	}

	ex := model.NewExchange(id, country, nameID, timeZone)
	m.mu.Lock()
	m.exchanges[id] = ex
	country.Exchanges[id] = ex
	m.mu.Unlock()

	m.notifyModel(ModelChange{Kind: ChangeCreated, Entity: EntityExchange, ID: id})
	return ex, nil
}

// CreateCountryHoliday adds a holiday owned by a country.
func (m *Manager) CreateCountryHoliday(countryID uuid.UUID, name string, def HolidayDefinition, culture ...string) (*model.Holiday, error) {
	m.mu.RLock()
	country, ok := m.countries[countryID]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(exception.ErrNotFound, "country %s", countryID)
	}

	h, err := m.createHoliday(enum.HolidayOwnerCountry, countryID, name, def, culture)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.holidays[h.ID] = h
	country.Holidays[h.ID] = h
	m.mu.Unlock()

	m.notifyModel(ModelChange{Kind: ChangeCreated, Entity: EntityHoliday, ID: h.ID})
	return h, nil
}

// CreateExchangeHoliday adds a holiday owned by an exchange.
func (m *Manager) CreateExchangeHoliday(exchangeID uuid.UUID, name string, def HolidayDefinition, culture ...string) (*model.Holiday, error) {
	m.mu.RLock()
	ex, ok := m.exchanges[exchangeID]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(exception.ErrNotFound, "exchange %s", exchangeID)
	}

	h, err := m.createHoliday(enum.HolidayOwnerExchange, exchangeID, name, def, culture)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.holidays[h.ID] = h
	ex.Holidays[h.ID] = h
	m.mu.Unlock()

	m.notifyModel(ModelChange{Kind: ChangeCreated, Entity: EntityHoliday, ID: h.ID})
	return h, nil
}

func (m *Manager) createHoliday(ownerKind enum.HolidayOwner, ownerID uuid.UUID, name string, def HolidayDefinition, culture []string) (*model.Holiday, error) {
	if !def.Type.IsAvailable() || !def.MoveWeekend.IsAvailable() {
		return nil, errors.Wrap(exception.ErrInvalidArgument, "holiday definition")
	}

	nameID, err := m.newText(name, culture)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	err = m.store.CreateHoliday(store.HolidayRow{
		ID:          id.String(),
		OwnerKind:   uint8(ownerKind),
		OwnerID:     ownerID.String(),
		NameID:      nameID.String(),
		Type:        uint8(def.Type),
		Month:       int(def.Month),
		DayOfMonth:  def.DayOfMonth,
		DayOfWeek:   int(def.DayOfWeek),
		WeekOfMonth: uint8(def.WeekOfMonth),
		MoveWeekend: uint8(def.MoveWeekend),
	})
	if err != nil {
		m.dropText(nameID)
		return nil, err
	}

	return &model.Holiday{
		ID:          id,
		OwnerKind:   ownerKind,
		OwnerID:     ownerID,
		NameID:      nameID,
		Type:        def.Type,
		Month:       def.Month,
		DayOfMonth:  def.DayOfMonth,
		DayOfWeek:   def.DayOfWeek,
		WeekOfMonth: def.WeekOfMonth,
		MoveWeekend: def.MoveWeekend,
	}, nil
}

// CreateSession adds a trading session under an existing exchange.
func (m *Manager) CreateSession(exchangeID uuid.UUID, name string, day time.Weekday, start, end model.TimeOfDay, culture ...string) (*model.Session, error) {
	m.mu.RLock()
	ex, ok := m.exchanges[exchangeID]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(exception.ErrNotFound, "exchange %s", exchangeID)
	}
	if end <= start {
		return nil, errors.Wrapf(exception.ErrInvalidArgument, "session window %s-%s", start, end)
	}

	nameID, err := m.newText(name, culture)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	err = m.store.CreateSession(store.SessionRow{
		ID:         id.String(),
		ExchangeID: exchangeID.String(),
		NameID:     nameID.String(),
		Day:        int(day),
		StartSec:   int32(start),
		EndSec:     int32(end),
	})
	if err != nil {
		m.dropText(nameID)
		return nil, err
	}

	s := &model.Session{ID: id, NameID: nameID, Day: day, Start: start, End: end}
	m.mu.Lock()
	ex.AddSession(s)
	m.mu.Unlock()

	m.notifyModel(ModelChange{Kind: ChangeCreated, Entity: EntitySession, ID: id})
	return s, nil
}

// CreateInstrument adds an instrument under its primary exchange.
func (m *Manager) CreateInstrument(exchangeID uuid.UUID, ticker string, typ model.InstrumentType, name, description string, inception time.Time, culture ...string) (*model.Instrument, error) {
	m.mu.RLock()
	ex, ok := m.exchanges[exchangeID]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(exception.ErrNotFound, "exchange %s", exchangeID)
	}

	nameID, err := m.newText(name, culture)
	if err != nil {
		return nil, err
	}
	descriptionID, err := m.newText(description, culture)
	if err != nil {
		m.dropText(nameID)
		return nil, err
	}

	id := uuid.New()
	inceptionUTC := m.normalizeTime(inception)
	err = m.store.CreateInstrument(store.InstrumentRow{
		ID:                id.String(),
		Ticker:            ticker,
		Type:              string(typ),
		NameID:            nameID.String(),
		DescriptionID:     descriptionID.String(),
		InceptionDate:     inceptionUTC,
		PrimaryExchangeID: exchangeID.String(),
	})
	if err != nil {
		m.dropText(nameID)
		m.dropText(descriptionID)
		return nil, err
	}

	inst := model.NewInstrument(id, ticker, typ, nameID, descriptionID, inceptionUTC, ex)
	m.mu.Lock()
	m.instruments[id] = inst
	ex.Instruments[id] = inst
	m.mu.Unlock()

	m.notifyModel(ModelChange{Kind: ChangeCreated, Entity: EntityInstrument, ID: id})
	return inst, nil
}

// CreateInstrumentGroup adds a group under an existing parent, or at
// top level when parentID is model.GroupRootID.
func (m *Manager) CreateInstrumentGroup(parentID uuid.UUID, name, description string, culture ...string) (*model.InstrumentGroup, error) {
	var parent *model.InstrumentGroup
	if parentID != model.GroupRootID {
		m.mu.RLock()
		p, ok := m.groups[parentID]
		m.mu.RUnlock()
		if !ok {
			return nil, errors.Wrapf(exception.ErrNotFound, "instrument group %s", parentID)
		}
		parent = p
	}

	nameID, err := m.newText(name, culture)
	if err != nil {
		return nil, err
	}
	descriptionID, err := m.newText(description, culture)
	if err != nil {
		m.dropText(nameID)
		return nil, err
	}

	id := uuid.New()
	err = m.store.CreateGroup(store.GroupRow{
		ID:            id.String(),
		NameID:        nameID.String(),
		DescriptionID: descriptionID.String(),
		ParentID:      parentID.String(),
	})
	if err != nil {
		m.dropText(nameID)
		m.dropText(descriptionID)
		return nil, err
	}

	g := model.NewInstrumentGroup(id, nameID, descriptionID, parentID)
	m.mu.Lock()
	m.groups[id] = g
	if parent != nil {
		g.Parent = parent
		parent.Children[id] = g
	}
	m.mu.Unlock()

	m.notifyModel(ModelChange{Kind: ChangeCreated, Entity: EntityInstrumentGroup, ID: id})
	return g, nil
}

// CreateFundamental adds a global fundamental definition.
func (m *Manager) CreateFundamental(name, description string, category enum.FundamentalCategory, interval enum.ReleaseInterval, culture ...string) (*model.Fundamental, error) {
	if !category.IsAvailable() || !interval.IsAvailable() {
		return nil, errors.Wrap(exception.ErrInvalidArgument, "fundamental definition")
	}

	nameID, err := m.newText(name, culture)
	if err != nil {
		return nil, err
	}
	descriptionID, err := m.newText(description, culture)
	if err != nil {
		m.dropText(nameID)
		return nil, err
	}

	id := uuid.New()
	err = m.store.CreateFundamental(store.FundamentalRow{
		ID:              id.String(),
		NameID:          nameID.String(),
		DescriptionID:   descriptionID.String(),
		Category:        uint8(category),
		ReleaseInterval: uint8(interval),
	})
	if err != nil {
		m.dropText(nameID)
		m.dropText(descriptionID)
		return nil, err
	}

	f := &model.Fundamental{
		ID:              id,
		NameID:          nameID,
		DescriptionID:   descriptionID,
		Category:        category,
		ReleaseInterval: interval,
	}
	m.mu.Lock()
	m.fundamentals[id] = f
	m.mu.Unlock()

	m.notifyModel(ModelChange{Kind: ChangeCreated, Entity: EntityFundamental, ID: id})
	return f, nil
}

// CreateCountryFundamental associates a fundamental with a country for
// one data provider.
func (m *Manager) CreateCountryFundamental(provider string, countryID, fundamentalID uuid.UUID) (*model.FundamentalAssociation, error) {
	m.mu.RLock()
	country, ok := m.countries[countryID]
	fundamental, fok := m.fundamentals[fundamentalID]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(exception.ErrNotFound, "country %s", countryID)
	}
	if !fok {
		return nil, errors.Wrapf(exception.ErrNotFound, "fundamental %s", fundamentalID)
	}

	id := uuid.New()
	err := m.store.CreateAssociation(provider, enum.FundamentalCountry, store.AssociationRow{
		AssociationID: id.String(),
		OwnerID:       countryID.String(),
		FundamentalID: fundamentalID.String(),
	})
	if err != nil {
		return nil, err
	}

	assoc := model.NewFundamentalAssociation(id, provider, fundamental, enum.FundamentalCountry, countryID)
	m.mu.Lock()
	m.associations[id] = assoc
	country.Fundamentals[id] = assoc
	m.mu.Unlock()

	m.notifyModel(ModelChange{Kind: ChangeCreated, Entity: EntityAssociation, ID: id})
	return assoc, nil
}

// CreateInstrumentFundamental associates a fundamental with an
// instrument for one data provider.
func (m *Manager) CreateInstrumentFundamental(provider string, instrumentID, fundamentalID uuid.UUID) (*model.FundamentalAssociation, error) {
	m.mu.RLock()
	inst, ok := m.instruments[instrumentID]
	fundamental, fok := m.fundamentals[fundamentalID]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(exception.ErrNotFound, "instrument %s", instrumentID)
	}
	if !fok {
		return nil, errors.Wrapf(exception.ErrNotFound, "fundamental %s", fundamentalID)
	}

	id := uuid.New()
	err := m.store.CreateAssociation(provider, enum.FundamentalInstrument, store.AssociationRow{
		AssociationID: id.String(),
		OwnerID:       instrumentID.String(),
		FundamentalID: fundamentalID.String(),
	})
	if err != nil {
		return nil, err
	}

	assoc := model.NewFundamentalAssociation(id, provider, fundamental, enum.FundamentalInstrument, instrumentID)
	m.mu.Lock()
	m.associations[id] = assoc
	inst.Fundamentals[id] = assoc
	m.mu.Unlock()

	m.notifyModel(ModelChange{Kind: ChangeCreated, Entity: EntityAssociation, ID: id})
	return assoc, nil
}

func (m *Manager) newText(value string, culture []string) (uuid.UUID, error) {
	lang := ""
	if len(culture) > 0 {
		lang = culture[0]
	}
	return m.store.CreateText(lang, value)
}

// dropText compensates an allocated text group after a failed entity
// insert.
func (m *Manager) dropText(id uuid.UUID) {
	_, _ = m.store.DeleteText(id)
}
