package i18n

import (
	"embed"
	"io/fs"
	"path"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/ledger-login/internal/config"
	"golang.org/x/text/language"
)

//go:embed messages/*.toml
var messages embed.FS

// Data is passed to message templates.
type Data map[string]any

// Service translates message ids into the best supported language.
type Service struct {
	bundle      *i18n.Bundle
	matcher     language.Matcher
	defaultLang language.Tag
}

// New loads the embedded message files.
func New(cfg config.I18n) (*Service, error) {
	defaultLang, err := language.Parse(cfg.DefaultLanguage)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid default language %q", cfg.DefaultLanguage)
	}

	bundle := i18n.NewBundle(defaultLang)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.Glob(messages, "messages/*.toml")
	if err != nil {
		return nil, errors.Wrap(err, "failed to list message files")
	}

	for _, file := range files {
		if _, err := bundle.LoadMessageFileFS(messages, file); err != nil {
			return nil, errors.Wrapf(err, "failed to load message file %s", path.Base(file))
		}
	}

	return &Service{
		bundle:      bundle,
		matcher:     language.NewMatcher(bundle.LanguageTags()),
		defaultLang: defaultLang,
	}, nil
}

// Translate localizes messageID. Unknown ids are returned unchanged, so
// literal titles pass through.
func (s *Service) Translate(messageID string, lang language.Tag, data ...Data) string {
	localizer := i18n.NewLocalizer(s.bundle, lang.String(), s.defaultLang.String())

	var templateData Data
	if len(data) > 0 {
		templateData = data[0]
	}

	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: templateData,
	})
	if err != nil {
		log.Debug().Err(err).Str("message_id", messageID).Str("lang", lang.String()).Msg("Message not translated")
		return messageID
	}

	return msg
}

// ParseAcceptLanguage picks the best supported language for an Accept-Language header.
func (s *Service) ParseAcceptLanguage(header string) language.Tag {
	if header == "" {
		return s.defaultLang
	}

	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return s.defaultLang
	}

	_, index, confidence := s.matcher.Match(tags...)
	if confidence == language.No {
		return s.defaultLang
	}

	return s.bundle.LanguageTags()[index]
}

func (s *Service) DefaultLanguage() language.Tag {
	return s.defaultLang
}
