package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketref/internal/model"
)

func TestGetTextSingleForeignLanguage(t *testing.T) {
	s := openTestStore(t, Config{Culture: "en-US", CultureFallback: []string{"en"}})

	id, err := s.CreateText("fr-FR", "TexteD'essai")
	require.NoError(t, err)

	// no english row exists; the only remaining row wins
	assert.Equal(t, "TexteD'essai", s.GetText(id))
}

func TestGetTextCurrentCultureWins(t *testing.T) {
	s := openTestStore(t, Config{Culture: "en-US", CultureFallback: []string{"de"}})

	id, err := s.CreateText("", "TestText")
	require.NoError(t, err)
	require.NoError(t, s.UpdateText(id, "de", "TestText-DE"))

	assert.Equal(t, "TestText", s.GetText(id))
	assert.Equal(t, "TestText-DE", s.GetTextIn(id, "de-DE"))
}

func TestGetTextFallbackAfterDelete(t *testing.T) {
	s := openTestStore(t, Config{Culture: "en-US", CultureFallback: []string{"de"}})

	id, err := s.CreateText("en", "TestText")
	require.NoError(t, err)
	require.NoError(t, s.UpdateText(id, "de", "TestText-DE"))

	n, err := s.DeleteTextLanguage(id, "en")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	assert.Equal(t, "TestText-DE", s.GetText(id))
}

func TestGetTextFallbackListOrder(t *testing.T) {
	s := openTestStore(t, Config{Culture: "en-US", CultureFallback: []string{"it", "de"}})

	id, err := s.CreateText("es", "TextoDePrueba")
	require.NoError(t, err)
	require.NoError(t, s.UpdateText(id, "de", "TestText-DE"))

	// no en row, no it row; de is the first fallback hit
	assert.Equal(t, "TestText-DE", s.GetText(id))
}

func TestGetTextSentinel(t *testing.T) {
	s := openTestStore(t, Config{})

	id, err := s.CreateText("", "TestText")
	require.NoError(t, err)

	n, err := s.DeleteText(id)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	assert.Equal(t, model.NoTextAvailable, s.GetText(id))
	assert.Equal(t, model.NoTextAvailable, s.GetText(newID()))
}

func TestUpdateTextUpsert(t *testing.T) {
	s := openTestStore(t, Config{})

	id, err := s.CreateText("", "first")
	require.NoError(t, err)
	require.NoError(t, s.UpdateText(id, "", "second"))

	assert.Equal(t, "second", s.GetText(id))

	langs, err := s.TextLanguages(id)
	require.NoError(t, err)
	assert.Equal(t, []string{"en"}, langs)
}
