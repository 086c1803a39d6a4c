package store

import (
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/yanun0323/errors"
	"gorm.io/gorm"

	"marketref/internal/model/enum"
	"marketref/pkg/exception"
)

// ---------------------------------------------------------------------
// creates / updates
// ---------------------------------------------------------------------

func (s *Store) CreateCountry(row CountryRow) error {
	return s.createRow(&row, "country")
}

func (s *Store) CreateExchange(row ExchangeRow) error {
	return s.createRow(&row, "exchange")
}

func (s *Store) CreateSession(row SessionRow) error {
	return s.createRow(&row, "session")
}

func (s *Store) CreateHoliday(row HolidayRow) error {
	return s.createRow(&row, "holiday")
}

func (s *Store) CreateInstrument(row InstrumentRow) error {
	return s.createRow(&row, "instrument")
}

func (s *Store) CreateSecondaryExchange(row SecondaryExchangeRow) error {
	return s.createRow(&row, "secondary exchange link")
}

func (s *Store) CreateGroup(row GroupRow) error {
	return s.createRow(&row, "instrument group")
}

func (s *Store) CreateGroupInstrument(row GroupInstrumentRow) error {
	return s.createRow(&row, "group membership")
}

func (s *Store) CreateFundamental(row FundamentalRow) error {
	return s.createRow(&row, "fundamental")
}

func (s *Store) createRow(row any, what string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.Create(row).Error; err != nil {
		return errors.Wrapf(err, "create %s", what)
	}
	return nil
}

func (s *Store) UpdateExchange(row ExchangeRow) error {
	return s.saveRow(&row, "exchange")
}

func (s *Store) UpdateSession(row SessionRow) error {
	return s.saveRow(&row, "session")
}

func (s *Store) UpdateHoliday(row HolidayRow) error {
	return s.saveRow(&row, "holiday")
}

func (s *Store) UpdateInstrument(row InstrumentRow) error {
	return s.saveRow(&row, "instrument")
}

func (s *Store) UpdateGroup(row GroupRow) error {
	return s.saveRow(&row, "instrument group")
}

func (s *Store) UpdateFundamental(row FundamentalRow) error {
	return s.saveRow(&row, "fundamental")
}

func (s *Store) saveRow(row any, what string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.Save(row).Error; err != nil {
		return errors.Wrapf(err, "update %s", what)
	}
	return nil
}

// ---------------------------------------------------------------------
// gets
// ---------------------------------------------------------------------

func (s *Store) GetCountry(id uuid.UUID) (CountryRow, error) {
	var row CountryRow
	return row, s.firstByID(&row, id, "country")
}

func (s *Store) GetExchange(id uuid.UUID) (ExchangeRow, error) {
	var row ExchangeRow
	return row, s.firstByID(&row, id, "exchange")
}

func (s *Store) GetSession(id uuid.UUID) (SessionRow, error) {
	var row SessionRow
	return row, s.firstByID(&row, id, "session")
}

func (s *Store) GetHoliday(id uuid.UUID) (HolidayRow, error) {
	var row HolidayRow
	return row, s.firstByID(&row, id, "holiday")
}

func (s *Store) GetInstrument(id uuid.UUID) (InstrumentRow, error) {
	var row InstrumentRow
	return row, s.firstByID(&row, id, "instrument")
}

func (s *Store) GetGroup(id uuid.UUID) (GroupRow, error) {
	var row GroupRow
	return row, s.firstByID(&row, id, "instrument group")
}

func (s *Store) GetFundamental(id uuid.UUID) (FundamentalRow, error) {
	var row FundamentalRow
	return row, s.firstByID(&row, id, "fundamental")
}

func (s *Store) firstByID(row any, id uuid.UUID, what string) error {
	err := s.db.Where("id = ?", id.String()).First(row).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrapf(exception.ErrNotFound, "%s %s", what, id)
	}
	if err != nil {
		return errors.Wrapf(err, "get %s %s", what, id)
	}
	return nil
}

// ---------------------------------------------------------------------
// cascading deletes
// ---------------------------------------------------------------------

// DeleteCountry removes the country, its holidays, its exchanges (each
// with their own cascade), and its country-fundamental associations
// and values for every provider. Returns the total rows removed.
func (s *Store) DeleteCountry(id uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var row CountryRow
		if err := tx.Where("id = ?", id.String()).First(&row).Error; err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.Wrapf(exception.ErrNotFound, "country %s", id)
			}
			return err
		}

		var exchanges []ExchangeRow
		if err := tx.Where("country_id = ?", id.String()).Find(&exchanges).Error; err != nil {
			return err
		}
		for _, ex := range exchanges {
			n, err := s.deleteExchangeTx(tx, ex)
			if err != nil {
				return err
			}
			total += n
		}

		n, err := deleteWhere(tx, &HolidayRow{}, "owner_id = ?", id.String())
		if err != nil {
			return err
		}
		total += n

		n, err = s.deleteOwnerAssociationsTx(tx, enum.FundamentalCountry, id)
		if err != nil {
			return err
		}
		total += n

		n, err = deleteWhere(tx, &CountryRow{}, "id = ?", id.String())
		if err != nil {
			return err
		}
		total += n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// DeleteExchange removes the exchange, its holidays, its sessions, its
// primary instruments (full instrument cascade each) and any secondary
// links pointing at it.
func (s *Store) DeleteExchange(id uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var row ExchangeRow
		if err := tx.Where("id = ?", id.String()).First(&row).Error; err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.Wrapf(exception.ErrNotFound, "exchange %s", id)
			}
			return err
		}

		n, err := s.deleteExchangeTx(tx, row)
		if err != nil {
			return err
		}
		total = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) deleteExchangeTx(tx *gorm.DB, row ExchangeRow) (int64, error) {
	var total int64

	var instruments []InstrumentRow
	if err := tx.Where("primary_exchange_id = ?", row.ID).Find(&instruments).Error; err != nil {
		return 0, err
	}
	for _, inst := range instruments {
		n, err := s.deleteInstrumentTx(tx, inst)
		if err != nil {
			return 0, err
		}
		total += n
	}

	n, err := deleteWhere(tx, &HolidayRow{}, "owner_id = ?", row.ID)
	if err != nil {
		return 0, err
	}
	total += n

	n, err = deleteWhere(tx, &SessionRow{}, "exchange_id = ?", row.ID)
	if err != nil {
		return 0, err
	}
	total += n

	n, err = deleteWhere(tx, &SecondaryExchangeRow{}, "exchange_id = ?", row.ID)
	if err != nil {
		return 0, err
	}
	total += n

	n, err = deleteWhere(tx, &ExchangeRow{}, "id = ?", row.ID)
	if err != nil {
		return 0, err
	}
	total += n
	return total, nil
}

// DeleteInstrument removes the instrument, its price rows in every
// provider/resolution/actual/synthetic partition, its group
// memberships, its fundamental associations and values, and its
// secondary-exchange links.
func (s *Store) DeleteInstrument(id uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var row InstrumentRow
		if err := tx.Where("id = ?", id.String()).First(&row).Error; err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.Wrapf(exception.ErrNotFound, "instrument %s", id)
			}
			return err
		}

		n, err := s.deleteInstrumentTx(tx, row)
		if err != nil {
			return err
		}
		total = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) deleteInstrumentTx(tx *gorm.DB, row InstrumentRow) (int64, error) {
	var total int64

	for _, provider := range s.providers {
		for _, res := range enum.BarResolutions() {
			for _, table := range barTables(provider, res) {
				out := tx.Table(table).Where("ticker = ?", row.Ticker).Delete(&BarRow{})
				if out.Error != nil {
					return 0, out.Error
				}
				total += out.RowsAffected
			}
		}
		for _, table := range level1Tables(provider) {
			out := tx.Table(table).Where("ticker = ?", row.Ticker).Delete(&Level1Row{})
			if out.Error != nil {
				return 0, out.Error
			}
			total += out.RowsAffected
		}
	}

	n, err := deleteWhere(tx, &GroupInstrumentRow{}, "instrument_id = ?", row.ID)
	if err != nil {
		return 0, err
	}
	total += n

	n, err = deleteWhere(tx, &SecondaryExchangeRow{}, "instrument_id = ?", row.ID)
	if err != nil {
		return 0, err
	}
	total += n

	id, err := uuid.Parse(row.ID)
	if err != nil {
		return 0, errors.Wrapf(exception.ErrInternal, "instrument id %q", row.ID)
	}
	n, err = s.deleteOwnerAssociationsTx(tx, enum.FundamentalInstrument, id)
	if err != nil {
		return 0, err
	}
	total += n

	n, err = deleteWhere(tx, &InstrumentRow{}, "id = ?", row.ID)
	if err != nil {
		return 0, err
	}
	total += n
	return total, nil
}

// DeleteSession removes one session row.
func (s *Store) DeleteSession(id uuid.UUID) (int64, error) {
	return s.deleteByID(&SessionRow{}, id, "session")
}

// DeleteHoliday removes one holiday row.
func (s *Store) DeleteHoliday(id uuid.UUID) (int64, error) {
	return s.deleteByID(&HolidayRow{}, id, "holiday")
}

func (s *Store) deleteByID(mdl any, id uuid.UUID, what string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.db.Where("id = ?", id.String()).Delete(mdl)
	if res.Error != nil {
		return 0, errors.Wrapf(res.Error, "delete %s %s", what, id)
	}
	if res.RowsAffected == 0 {
		return 0, errors.Wrapf(exception.ErrNotFound, "%s %s", what, id)
	}
	return res.RowsAffected, nil
}

// DeleteSecondaryExchange removes one secondary listing link.
func (s *Store) DeleteSecondaryExchange(instrumentID, exchangeID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.db.Where("instrument_id = ? AND exchange_id = ?", instrumentID.String(), exchangeID.String()).
		Delete(&SecondaryExchangeRow{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "delete secondary exchange link")
	}
	if res.RowsAffected == 0 {
		return 0, errors.Wrapf(exception.ErrNotFound, "secondary link %s->%s", instrumentID, exchangeID)
	}
	return res.RowsAffected, nil
}

// DeleteGroupInstrument removes one group membership link.
func (s *Store) DeleteGroupInstrument(groupID, instrumentID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.db.Where("group_id = ? AND instrument_id = ?", groupID.String(), instrumentID.String()).
		Delete(&GroupInstrumentRow{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "delete group membership")
	}
	if res.RowsAffected == 0 {
		return 0, errors.Wrapf(exception.ErrNotFound, "membership %s->%s", groupID, instrumentID)
	}
	return res.RowsAffected, nil
}

// DeleteGroup removes the group, its memberships, and recursively its
// child groups.
func (s *Store) DeleteGroup(id uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var row GroupRow
		if err := tx.Where("id = ?", id.String()).First(&row).Error; err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.Wrapf(exception.ErrNotFound, "instrument group %s", id)
			}
			return err
		}
		n, err := deleteGroupTx(tx, row.ID)
		if err != nil {
			return err
		}
		total = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func deleteGroupTx(tx *gorm.DB, id string) (int64, error) {
	var total int64

	var children []GroupRow
	if err := tx.Where("parent_id = ?", id).Find(&children).Error; err != nil {
		return 0, err
	}
	for _, child := range children {
		n, err := deleteGroupTx(tx, child.ID)
		if err != nil {
			return 0, err
		}
		total += n
	}

	n, err := deleteWhere(tx, &GroupInstrumentRow{}, "group_id = ?", id)
	if err != nil {
		return 0, err
	}
	total += n

	n, err = deleteWhere(tx, &GroupRow{}, "id = ?", id)
	if err != nil {
		return 0, err
	}
	total += n
	return total, nil
}

// DeleteFundamental removes the definition together with its
// associations and values across every provider and owner kind.
func (s *Store) DeleteFundamental(id uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var row FundamentalRow
		if err := tx.Where("id = ?", id.String()).First(&row).Error; err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.Wrapf(exception.ErrNotFound, "fundamental %s", id)
			}
			return err
		}

		for _, provider := range s.providers {
			for _, kind := range []enum.FundamentalCategory{enum.FundamentalCountry, enum.FundamentalInstrument} {
				n, err := deleteAssociationsTx(tx, provider, kind, "fundamental_id = ?", id.String())
				if err != nil {
					return err
				}
				total += n
			}
		}

		n, err := deleteWhere(tx, &FundamentalRow{}, "id = ?", id.String())
		if err != nil {
			return err
		}
		total += n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) deleteOwnerAssociationsTx(tx *gorm.DB, kind enum.FundamentalCategory, ownerID uuid.UUID) (int64, error) {
	var total int64
	for _, provider := range s.providers {
		n, err := deleteAssociationsTx(tx, provider, kind, "owner_id = ?", ownerID.String())
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// deleteAssociationsTx removes matching association rows plus their
// value series in one provider partition.
func deleteAssociationsTx(tx *gorm.DB, provider string, kind enum.FundamentalCategory, cond string, arg any) (int64, error) {
	var total int64

	var assocs []AssociationRow
	if err := tx.Table(associationTable(provider, kind)).Where(cond, arg).Find(&assocs).Error; err != nil {
		return 0, err
	}
	for _, assoc := range assocs {
		out := tx.Table(valueTable(provider, kind)).Where("association_id = ?", assoc.AssociationID).Delete(&ValueRow{})
		if out.Error != nil {
			return 0, out.Error
		}
		total += out.RowsAffected
	}

	out := tx.Table(associationTable(provider, kind)).Where(cond, arg).Delete(&AssociationRow{})
	if out.Error != nil {
		return 0, out.Error
	}
	total += out.RowsAffected
	return total, nil
}

func deleteWhere(tx *gorm.DB, mdl any, cond string, arg any) (int64, error) {
	res := tx.Where(cond, arg).Delete(mdl)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
