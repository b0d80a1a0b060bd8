package localization_test

import (
	"crimereport/backend/internal/localization"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_LoadsEmbeddedLanguages(t *testing.T) {
	l, err := localization.Default()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"en", "fr", "wo"}, l.Languages())
	assert.Equal(t, "Nouveau message", l.GetString("fr", "notification.message.title"))
	assert.Equal(t, "New message", l.GetString("en", "notification.message.title"))
}

func TestGetString_Fallbacks(t *testing.T) {
	fsys := fstest.MapFS{
		"fr.json":   {Data: []byte(`{"greeting": "Bonjour", "only.fr": "Seulement"}`)},
		"en.json":   {Data: []byte(`{"greeting": "Hello"}`)},
		"notes.txt": {Data: []byte("ignored")},
	}
	l, err := localization.NewLocalizer(fsys)
	require.NoError(t, err)

	assert.Equal(t, "Hello", l.GetString("en", "greeting"))
	assert.Equal(t, "Seulement", l.GetString("en", "only.fr"), "missing key falls back to French")
	assert.Equal(t, "Bonjour", l.GetString("de", "greeting"), "unknown language falls back to French")
	assert.Equal(t, "missing.key", l.GetString("fr", "missing.key"))
}

func TestFormat(t *testing.T) {
	l, err := localization.Default()
	require.NoError(t, err)
	got := l.Format("en", "notification.status.body", "Stolen phone", "Resolved")
	assert.Equal(t, `The status of your report "Stolen phone" changed to: Resolved`, got)
}

func TestNewLocalizer_InvalidJSON(t *testing.T) {
	_, err := localization.NewLocalizer(fstest.MapFS{"fr.json": {Data: []byte("{")}})
	assert.Error(t, err)
}
