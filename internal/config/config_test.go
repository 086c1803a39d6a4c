package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"marketref/internal/model/enum"
	"marketref/pkg/exception"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAndValidate(t *testing.T) {
	path := writeConfig(t, `
culture: en-US
culture_fallback: [en, de]
time_zone_mode: local
store:
  path: /var/lib/marketref/refdata.db
providers: [IQFeed, Sim]
`)

	cfg, err := LoadAndValidate(path)
	require.NoError(t, err)
	require.Equal(t, "en-US", cfg.Culture)
	require.Equal(t, []string{"en", "de"}, cfg.CultureFallback)
	require.Equal(t, []string{"IQFeed", "Sim"}, cfg.Providers)

	mode, err := cfg.Mode()
	require.NoError(t, err)
	require.Equal(t, enum.TimeZoneLocal, mode)
	require.Equal(t, "en-US", cfg.CurrentTag().String())
	require.Len(t, cfg.FallbackTags(), 2)
}

func TestDefaults(t *testing.T) {
	path := writeConfig(t, `
store:
  path: refdata.db
`)

	cfg, err := LoadAndValidate(path)
	require.NoError(t, err)
	require.Equal(t, "en", cfg.Culture)
	require.Equal(t, []string{"en"}, cfg.CultureFallback)

	mode, err := cfg.Mode()
	require.NoError(t, err)
	require.Equal(t, enum.TimeZoneUTC, mode)
}

func TestEnvExpansion(t *testing.T) {
	t.Setenv("MARKETREF_DB", "/tmp/expanded.db")
	path := writeConfig(t, `
store:
  path: ${MARKETREF_DB}
`)

	cfg, err := LoadAndValidate(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/expanded.db", cfg.Store.Path)
}

func TestValidationFailures(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad culture", "culture: not a culture\nstore: {path: x.db}\n"},
		{"bad fallback", "culture_fallback: ['???']\nstore: {path: x.db}\n"},
		{"bad mode", "time_zone_mode: sideways\nstore: {path: x.db}\n"},
		{"missing store path", "culture: en\n"},
		{"blank provider", "store: {path: x.db}\nproviders: ['  ']\n"},
		{"duplicate provider", "store: {path: x.db}\nproviders: [IQFeed, IQFeed]\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadAndValidate(writeConfig(t, tc.body))
			require.ErrorIs(t, err, exception.ErrConfiguration)
		})
	}
}

func TestMissingFileFails(t *testing.T) {
	_, err := LoadAndValidate(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
