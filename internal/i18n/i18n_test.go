package i18n_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/ledger-login/internal/config"
	"github/chapool/ledger-login/internal/i18n"
	"golang.org/x/text/language"
)

func newService(t *testing.T) *i18n.Service {
	t.Helper()

	s, err := i18n.New(config.I18n{DefaultLanguage: "en"})
	require.NoError(t, err)

	return s
}

func TestTranslate(t *testing.T) {
	s := newService(t)

	assert.Equal(t, "Logged in with Ledger", s.Translate("ledger.login.success", language.English))
	assert.Equal(t, "Mit Ledger angemeldet", s.Translate("ledger.login.success", language.German))
	assert.Equal(t, "Ledger-Fehler", s.Translate("ledger.error", language.German))

	// unsupported language falls back to the default
	assert.Equal(t, "Ledger error", s.Translate("ledger.error", language.Japanese))
}

func TestTranslateTemplateData(t *testing.T) {
	s := newService(t)

	assert.Equal(t, "Loaded 5 addresses of page 2",
		s.Translate("ledger.page.loaded", language.English, i18n.Data{"Count": 5, "Page": 2}))
}

func TestTranslateUnknownIDPassesThrough(t *testing.T) {
	s := newService(t)

	assert.Equal(t, "Something custom", s.Translate("Something custom", language.English))
}

func TestParseAcceptLanguage(t *testing.T) {
	s := newService(t)

	assert.Equal(t, language.German, s.ParseAcceptLanguage("de-AT,de;q=0.9,en;q=0.5"))
	assert.Equal(t, language.English, s.ParseAcceptLanguage("fr-FR"))
	assert.Equal(t, language.English, s.ParseAcceptLanguage(""))
	assert.Equal(t, language.English, s.ParseAcceptLanguage(";;;"))
	assert.Equal(t, language.English, s.DefaultLanguage())
}

func TestNewRejectsInvalidDefaultLanguage(t *testing.T) {
	_, err := i18n.New(config.I18n{DefaultLanguage: "not a language!"})
	require.Error(t, err)
}
