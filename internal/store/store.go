// Package store is the durable reference and time-series store. It is
// the single source of truth; the in-memory graph and the feed cache
// are rebuildable projections over it.
package store

import (
	"sync"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"golang.org/x/text/language"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"marketref/internal/model/enum"
	"marketref/pkg/conn"
	"marketref/pkg/exception"
)

// Config carries the slice of application configuration the store
// reads at construction: culture resolution order and the provider
// registry. It is not re-read afterwards.
type Config struct {
	// Culture is the current culture, e.g. "en-US".
	Culture string

	// CultureFallback is the ordered fallback list for text resolution.
	CultureFallback []string

	// Providers is the registry of data-provider names. Every
	// provider-scoped partition is migrated for each entry.
	Providers []string
}

// Store wraps the embedded database. Writers serialize on mu (sqlite
// keeps a single write transaction anyway); reads run concurrently.
type Store struct {
	mu     sync.Mutex
	client *conn.Client
	db     *gorm.DB

	current   string
	fallback  []string
	providers []string
}

// Open connects to the embedded database, migrates the static schema
// and every provider-scoped partition.
func Open(opt conn.Option, cfg Config) (*Store, error) {
	if opt.Config == nil {
		opt.Config = &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	}

	current, err := normalizeLang(cfg.Culture)
	if err != nil {
		return nil, errors.Wrapf(exception.ErrConfiguration, "culture %q", cfg.Culture)
	}
	fallback := make([]string, 0, len(cfg.CultureFallback))
	for _, c := range cfg.CultureFallback {
		lang, err := normalizeLang(c)
		if err != nil {
			return nil, errors.Wrapf(exception.ErrConfiguration, "fallback culture %q", c)
		}
		fallback = append(fallback, lang)
	}

	client, err := conn.New(opt)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}

	s := &Store{
		client:    client,
		db:        client.DB(),
		current:   current,
		fallback:  fallback,
		providers: append([]string(nil), cfg.Providers...),
	}

	if err := s.migrate(); err != nil {
		_ = client.Close()
		return nil, err
	}

	logs.Infof("store ready, providers: %d", len(s.providers))
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// Providers returns the configured data-provider names.
func (s *Store) Providers() []string {
	return append([]string(nil), s.providers...)
}

// CurrentCulture returns the normalized current culture language.
func (s *Store) CurrentCulture() string {
	return s.current
}

func (s *Store) migrate() error {
	if err := s.db.AutoMigrate(
		&CountryRow{},
		&ExchangeRow{},
		&SessionRow{},
		&HolidayRow{},
		&InstrumentRow{},
		&SecondaryExchangeRow{},
		&GroupRow{},
		&GroupInstrumentRow{},
		&FundamentalRow{},
		&LanguageTextRow{},
	); err != nil {
		return errors.Wrap(err, "migrate static schema")
	}

	for _, provider := range s.providers {
		if err := s.EnsureProvider(provider); err != nil {
			return err
		}
	}
	return nil
}

// EnsureProvider migrates every provider-scoped partition for one
// data-provider name.
func (s *Store) EnsureProvider(provider string) error {
	for _, res := range enum.BarResolutions() {
		for _, table := range barTables(provider, res) {
			if err := s.db.Table(table).AutoMigrate(&BarRow{}); err != nil {
				return errors.Wrapf(err, "migrate %s", table)
			}
		}
	}
	for _, table := range level1Tables(provider) {
		if err := s.db.Table(table).AutoMigrate(&Level1Row{}); err != nil {
			return errors.Wrapf(err, "migrate %s", table)
		}
	}

	for _, table := range []string{
		associationTable(provider, enum.FundamentalCountry),
		associationTable(provider, enum.FundamentalInstrument),
	} {
		if err := s.db.Table(table).AutoMigrate(&AssociationRow{}); err != nil {
			return errors.Wrapf(err, "migrate %s", table)
		}
	}
	for _, table := range []string{
		valueTable(provider, enum.FundamentalCountry),
		valueTable(provider, enum.FundamentalInstrument),
	} {
		if err := s.db.Table(table).AutoMigrate(&ValueRow{}); err != nil {
			return errors.Wrapf(err, "migrate %s", table)
		}
	}
	return nil
}

func barTable(provider string, res enum.Resolution, synthetic bool) string {
	if synthetic {
		return ProviderTableName(provider, baseInstrumentData, res.String(), suffixSynthetic)
	}
	return ProviderTableName(provider, baseInstrumentData, res.String())
}

func barTables(provider string, res enum.Resolution) []string {
	return []string{barTable(provider, res, false), barTable(provider, res, true)}
}

func level1Table(provider string, synthetic bool) string {
	if synthetic {
		return ProviderTableName(provider, baseInstrumentData, enum.ResolutionLevel1.String(), suffixSynthetic)
	}
	return ProviderTableName(provider, baseInstrumentData, enum.ResolutionLevel1.String())
}

func level1Tables(provider string) []string {
	return []string{level1Table(provider, false), level1Table(provider, true)}
}

func associationTable(provider string, kind enum.FundamentalCategory) string {
	if kind == enum.FundamentalCountry {
		return ProviderTableName(provider, "CountryFundamentalAssociations")
	}
	return ProviderTableName(provider, "InstrumentFundamentalAssociations")
}

func valueTable(provider string, kind enum.FundamentalCategory) string {
	if kind == enum.FundamentalCountry {
		return ProviderTableName(provider, "CountryFundamentalValues")
	}
	return ProviderTableName(provider, "InstrumentFundamentalValues")
}

// normalizeLang reduces a culture name to its base language code, so
// "en-US" and "en-GB" resolve the same LanguageText rows.
func normalizeLang(culture string) (string, error) {
	tag, err := language.Parse(culture)
	if err != nil {
		return "", err
	}
	base, _ := tag.Base()
	return base.String(), nil
}
