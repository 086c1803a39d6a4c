package store

import (
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"marketref/internal/model/enum"
	"marketref/pkg/exception"
)

var valueConflict = clause.OnConflict{
	Columns:   []clause.Column{{Name: "association_id"}, {Name: "time"}},
	DoUpdates: clause.AssignmentColumns([]string{"value"}),
}

// CreateAssociation links a fundamental definition to one owner inside
// a provider partition.
func (s *Store) CreateAssociation(provider string, kind enum.FundamentalCategory, row AssociationRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.Table(associationTable(provider, kind)).Create(&row).Error; err != nil {
		return errors.Wrapf(err, "create %s association", provider)
	}
	return nil
}

// GetAssociation reads one association row from a provider partition.
func (s *Store) GetAssociation(provider string, kind enum.FundamentalCategory, id uuid.UUID) (AssociationRow, error) {
	var row AssociationRow
	err := s.db.Table(associationTable(provider, kind)).
		Where("association_id = ?", id.String()).
		First(&row).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return row, errors.Wrapf(exception.ErrNotFound, "association %s", id)
	}
	if err != nil {
		return row, errors.Wrapf(err, "get association %s", id)
	}
	return row, nil
}

// UpsertFundamentalValue records one dated observation, overwriting in
// place when the (association, time) key already exists.
func (s *Store) UpsertFundamentalValue(provider string, kind enum.FundamentalCategory, associationID uuid.UUID, t time.Time, value decimal.Decimal) error {
	row := ValueRow{AssociationID: associationID.String(), Time: t.UTC(), Value: value}

	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.db.Table(valueTable(provider, kind)).Clauses(valueConflict).Create(&row).Error
	if err != nil {
		return errors.Wrapf(err, "upsert fundamental value %s@%s", associationID, t)
	}
	return nil
}

// GetFundamentalValues reads the full value series of one association,
// time-ordered.
func (s *Store) GetFundamentalValues(provider string, kind enum.FundamentalCategory, associationID uuid.UUID) ([]ValueRow, error) {
	var rows []ValueRow
	err := s.db.Table(valueTable(provider, kind)).
		Where("association_id = ?", associationID.String()).
		Order("time").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrapf(err, "values for association %s", associationID)
	}
	return rows, nil
}

// DeleteFundamentalValue removes a single dated observation.
func (s *Store) DeleteFundamentalValue(provider string, kind enum.FundamentalCategory, associationID uuid.UUID, t time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.db.Table(valueTable(provider, kind)).
		Where("association_id = ? AND time = ?", associationID.String(), t.UTC()).
		Delete(&ValueRow{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "delete fundamental value")
	}
	return res.RowsAffected, nil
}

// DeleteAssociationValues removes every value of one association in
// one provider partition.
func (s *Store) DeleteAssociationValues(provider string, kind enum.FundamentalCategory, associationID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.db.Table(valueTable(provider, kind)).
		Where("association_id = ?", associationID.String()).
		Delete(&ValueRow{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "delete association values")
	}
	return res.RowsAffected, nil
}

// DeleteAssociation removes one association and its value series.
func (s *Store) DeleteAssociation(provider string, kind enum.FundamentalCategory, associationID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		n, err := deleteAssociationsTx(tx, provider, kind, "association_id = ?", associationID.String())
		if err != nil {
			return err
		}
		if n == 0 {
			return errors.Wrapf(exception.ErrNotFound, "association %s", associationID)
		}
		total = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// DeleteFundamentalValuesAllProviders removes every value attached to
// one fundamental definition across all providers, keeping the
// associations themselves.
func (s *Store) DeleteFundamentalValuesAllProviders(kind enum.FundamentalCategory, fundamentalID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, provider := range s.providers {
			var assocs []AssociationRow
			if err := tx.Table(associationTable(provider, kind)).
				Where("fundamental_id = ?", fundamentalID.String()).
				Find(&assocs).Error; err != nil {
				return err
			}
			for _, assoc := range assocs {
				out := tx.Table(valueTable(provider, kind)).
					Where("association_id = ?", assoc.AssociationID).
					Delete(&ValueRow{})
				if out.Error != nil {
					return out.Error
				}
				total += out.RowsAffected
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
