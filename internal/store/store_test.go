package store

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"marketref/pkg/conn"
)

const testProvider = "TestFeed"

func openTestStore(t *testing.T, cfg Config) *Store {
	t.Helper()
	if cfg.Culture == "" {
		cfg.Culture = "en-US"
	}
	if cfg.CultureFallback == nil {
		cfg.CultureFallback = []string{"en"}
	}
	if cfg.Providers == nil {
		cfg.Providers = []string{testProvider}
	}

	s, err := Open(conn.Option{
		Path: fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
	}, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newID() uuid.UUID { return uuid.New() }

func TestProviderTableName(t *testing.T) {
	got := ProviderTableName("IQFeed", "InstrumentData", "Day", "Synthetic")
	require.Equal(t, "IQFeed_InstrumentData_Day_Synthetic", got)

	got = ProviderTableName("IQFeed", "CountryFundamentalValues")
	require.Equal(t, "IQFeed_CountryFundamentalValues", got)
}
