package store

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Static table names follow the conceptual schema; provider-scoped
// tables are derived with ProviderTableName.
const (
	tableCountry           = "Country"
	tableExchange          = "Exchange"
	tableExchangeSession   = "ExchangeSession"
	tableHoliday           = "Holiday"
	tableInstrument        = "Instrument"
	tableSecondaryExchange = "InstrumentSecondaryExchange"
	tableInstrumentGroup   = "InstrumentGroup"
	tableGroupInstrument   = "InstrumentGroupInstrument"
	tableFundamentals      = "Fundamentals"
	tableLanguageText      = "LanguageText"

	baseInstrumentData = "InstrumentData"

	suffixSynthetic = "Synthetic"
)

// ProviderTableName builds the physical table name for one
// provider-scoped partition, e.g.
// ProviderTableName("IQFeed", "InstrumentData", "Day", "Synthetic").
func ProviderTableName(provider, base string, parts ...string) string {
	var b strings.Builder
	b.WriteString(provider)
	b.WriteByte('_')
	b.WriteString(base)
	for _, part := range parts {
		b.WriteByte('_')
		b.WriteString(part)
	}
	return b.String()
}

// CountryRow mirrors the Country table.
type CountryRow struct {
	ID      string `gorm:"column:id;primaryKey;size:36"`
	IsoCode string `gorm:"column:iso_code;size:16;not null"`
}

func (CountryRow) TableName() string { return tableCountry }

// ExchangeRow mirrors the Exchange table.
type ExchangeRow struct {
	ID        string `gorm:"column:id;primaryKey;size:36"`
	CountryID string `gorm:"column:country_id;size:36;not null;index"`
	NameID    string `gorm:"column:name_id;size:36;not null"`
	TimeZone  string `gorm:"column:time_zone;size:64;not null"`
}

func (ExchangeRow) TableName() string { return tableExchange }

// SessionRow mirrors the ExchangeSession table.
type SessionRow struct {
	ID         string `gorm:"column:id;primaryKey;size:36"`
	ExchangeID string `gorm:"column:exchange_id;size:36;not null;index"`
	NameID     string `gorm:"column:name_id;size:36;not null"`
	Day        int    `gorm:"column:day;not null"`
	StartSec   int32  `gorm:"column:start_sec;not null"`
	EndSec     int32  `gorm:"column:end_sec;not null"`
}

func (SessionRow) TableName() string { return tableExchangeSession }

// HolidayRow mirrors the shared Holiday table. Country- and
// exchange-owned holidays are disambiguated by OwnerKind.
type HolidayRow struct {
	ID          string `gorm:"column:id;primaryKey;size:36"`
	OwnerKind   uint8  `gorm:"column:owner_kind;not null"`
	OwnerID     string `gorm:"column:owner_id;size:36;not null;index"`
	NameID      string `gorm:"column:name_id;size:36;not null"`
	Type        uint8  `gorm:"column:type;not null"`
	Month       int    `gorm:"column:month;not null"`
	DayOfMonth  int    `gorm:"column:day_of_month"`
	DayOfWeek   int    `gorm:"column:day_of_week"`
	WeekOfMonth uint8  `gorm:"column:week_of_month"`
	MoveWeekend uint8  `gorm:"column:move_weekend;not null"`
}

func (HolidayRow) TableName() string { return tableHoliday }

// InstrumentRow mirrors the Instrument table.
type InstrumentRow struct {
	ID                string    `gorm:"column:id;primaryKey;size:36"`
	Ticker            string    `gorm:"column:ticker;size:32;not null;index"`
	Type              string    `gorm:"column:type;size:16;not null"`
	NameID            string    `gorm:"column:name_id;size:36;not null"`
	DescriptionID     string    `gorm:"column:description_id;size:36;not null"`
	InceptionDate     time.Time `gorm:"column:inception_date;not null"`
	PrimaryExchangeID string    `gorm:"column:primary_exchange_id;size:36;not null;index"`
}

func (InstrumentRow) TableName() string { return tableInstrument }

// SecondaryExchangeRow links an instrument to a secondary listing venue.
type SecondaryExchangeRow struct {
	InstrumentID string `gorm:"column:instrument_id;primaryKey;size:36"`
	ExchangeID   string `gorm:"column:exchange_id;primaryKey;size:36"`
}

func (SecondaryExchangeRow) TableName() string { return tableSecondaryExchange }

// GroupRow mirrors the InstrumentGroup table.
type GroupRow struct {
	ID            string `gorm:"column:id;primaryKey;size:36"`
	NameID        string `gorm:"column:name_id;size:36;not null"`
	DescriptionID string `gorm:"column:description_id;size:36;not null"`
	ParentID      string `gorm:"column:parent_id;size:36;not null;index"`
}

func (GroupRow) TableName() string { return tableInstrumentGroup }

// GroupInstrumentRow links a group to one member instrument.
type GroupInstrumentRow struct {
	GroupID      string `gorm:"column:group_id;primaryKey;size:36"`
	InstrumentID string `gorm:"column:instrument_id;primaryKey;size:36"`
}

func (GroupInstrumentRow) TableName() string { return tableGroupInstrument }

// FundamentalRow mirrors the global Fundamentals table.
type FundamentalRow struct {
	ID              string `gorm:"column:id;primaryKey;size:36"`
	NameID          string `gorm:"column:name_id;size:36;not null"`
	DescriptionID   string `gorm:"column:description_id;size:36;not null"`
	Category        uint8  `gorm:"column:category;not null"`
	ReleaseInterval uint8  `gorm:"column:release_interval;not null"`
}

func (FundamentalRow) TableName() string { return tableFundamentals }

// LanguageTextRow holds one language's value of a text group.
type LanguageTextRow struct {
	ID      string `gorm:"column:id;primaryKey;size:36"`
	IsoLang string `gorm:"column:iso_lang;primaryKey;size:16"`
	Value   string `gorm:"column:value;not null"`
}

func (LanguageTextRow) TableName() string { return tableLanguageText }

// AssociationRow mirrors a provider-scoped fundamental association
// table (country or instrument variant; the table name decides).
type AssociationRow struct {
	AssociationID string `gorm:"column:association_id;primaryKey;size:36"`
	OwnerID       string `gorm:"column:owner_id;size:36;not null;index"`
	FundamentalID string `gorm:"column:fundamental_id;size:36;not null;index"`
}

// ValueRow mirrors a provider-scoped fundamental value table.
type ValueRow struct {
	AssociationID string          `gorm:"column:association_id;primaryKey;size:36"`
	Time          time.Time       `gorm:"column:time;primaryKey"`
	Value         decimal.Decimal `gorm:"column:value;type:decimal(38,12);not null"`
}

// BarRow mirrors one provider/resolution bar partition.
type BarRow struct {
	Ticker string          `gorm:"column:ticker;primaryKey;size:32"`
	Time   time.Time       `gorm:"column:time;primaryKey"`
	Open   decimal.Decimal `gorm:"column:open;type:decimal(38,12);not null"`
	High   decimal.Decimal `gorm:"column:high;type:decimal(38,12);not null"`
	Low    decimal.Decimal `gorm:"column:low;type:decimal(38,12);not null"`
	Close  decimal.Decimal `gorm:"column:close;type:decimal(38,12);not null"`
	Volume decimal.Decimal `gorm:"column:volume;type:decimal(38,12);not null"`
}

// Level1Row mirrors one provider level1 partition.
type Level1Row struct {
	Ticker   string          `gorm:"column:ticker;primaryKey;size:32"`
	Time     time.Time       `gorm:"column:time;primaryKey"`
	Bid      decimal.Decimal `gorm:"column:bid;type:decimal(38,12);not null"`
	BidSize  decimal.Decimal `gorm:"column:bid_size;type:decimal(38,12);not null"`
	Ask      decimal.Decimal `gorm:"column:ask;type:decimal(38,12);not null"`
	AskSize  decimal.Decimal `gorm:"column:ask_size;type:decimal(38,12);not null"`
	Last     decimal.Decimal `gorm:"column:last;type:decimal(38,12);not null"`
	LastSize decimal.Decimal `gorm:"column:last_size;type:decimal(38,12);not null"`
}
