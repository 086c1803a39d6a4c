package store

import (
	"github.com/google/uuid"
	"github.com/yanun0323/errors"
	"gorm.io/gorm/clause"

	"marketref/internal/model"
)

// CreateText allocates a fresh text id and stores the value under the
// given culture. An empty culture means the current one.
func (s *Store) CreateText(culture, value string) (uuid.UUID, error) {
	lang, err := s.resolveLang(culture)
	if err != nil {
		return uuid.Nil, err
	}

	id := uuid.New()
	s.mu.Lock()
	defer s.mu.Unlock()
	row := LanguageTextRow{ID: id.String(), IsoLang: lang, Value: value}
	if err := s.db.Create(&row).Error; err != nil {
		return uuid.Nil, errors.Wrap(err, "create text")
	}
	return id, nil
}

// UpdateText upserts the value of one language row of a text group.
func (s *Store) UpdateText(id uuid.UUID, culture, value string) error {
	lang, err := s.resolveLang(culture)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	row := LanguageTextRow{ID: id.String(), IsoLang: lang, Value: value}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}, {Name: "iso_lang"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&row).Error
	if err != nil {
		return errors.Wrapf(err, "upsert text %s/%s", id, lang)
	}
	return nil
}

// DeleteText removes every language row of a text group and returns
// the number of rows removed.
func (s *Store) DeleteText(id uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.db.Where("id = ?", id.String()).Delete(&LanguageTextRow{})
	if res.Error != nil {
		return 0, errors.Wrapf(res.Error, "delete text %s", id)
	}
	return res.RowsAffected, nil
}

// DeleteTextLanguage removes a single language row of a text group.
func (s *Store) DeleteTextLanguage(id uuid.UUID, culture string) (int64, error) {
	lang, err := s.resolveLang(culture)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.db.Where("id = ? AND iso_lang = ?", id.String(), lang).Delete(&LanguageTextRow{})
	if res.Error != nil {
		return 0, errors.Wrapf(res.Error, "delete text %s/%s", id, lang)
	}
	return res.RowsAffected, nil
}

// GetText resolves a text group in the current culture, falling back
// through the configured culture list, then any remaining language,
// then the fixed sentinel. It never fails; missing localized text is
// an expected condition.
func (s *Store) GetText(id uuid.UUID) string {
	return s.lookupText(id, s.current)
}

// GetTextIn resolves a text group for an explicitly requested culture,
// with the same fallback chain behind it.
func (s *Store) GetTextIn(id uuid.UUID, culture string) string {
	lang, err := s.resolveLang(culture)
	if err != nil {
		lang = s.current
	}
	return s.lookupText(id, lang)
}

func (s *Store) lookupText(id uuid.UUID, lang string) string {
	var rows []LanguageTextRow
	if err := s.db.Where("id = ?", id.String()).Find(&rows).Error; err != nil || len(rows) == 0 {
		return model.NoTextAvailable
	}

	byLang := make(map[string]string, len(rows))
	for _, row := range rows {
		byLang[row.IsoLang] = row.Value
	}

	if v, ok := byLang[lang]; ok {
		return v
	}
	if lang != s.current {
		if v, ok := byLang[s.current]; ok {
			return v
		}
	}
	for _, fb := range s.fallback {
		if v, ok := byLang[fb]; ok {
			return v
		}
	}
	// any remaining language, deterministically the first stored row
	return rows[0].Value
}

// TextLanguages lists the languages a text group has rows for.
func (s *Store) TextLanguages(id uuid.UUID) ([]string, error) {
	var langs []string
	err := s.db.Model(&LanguageTextRow{}).
		Where("id = ?", id.String()).
		Order("iso_lang").
		Pluck("iso_lang", &langs).Error
	if err != nil {
		return nil, errors.Wrapf(err, "text languages %s", id)
	}
	return langs, nil
}

func (s *Store) resolveLang(culture string) (string, error) {
	if culture == "" {
		return s.current, nil
	}
	lang, err := normalizeLang(culture)
	if err != nil {
		return "", errors.Wrapf(err, "culture %q", culture)
	}
	return lang, nil
}
