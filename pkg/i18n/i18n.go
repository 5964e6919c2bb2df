package i18n

import (
	"embed"
	"log/slog"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

var (
	//go:embed *.toml
	f embed.FS
)

// Localizer resolves message ids against the embedded toml bundles.
// Unknown languages fall back to the first language it was built with.
type Localizer struct {
	fallback string
	registry map[string]*i18n.Localizer
}

func NewLocalizer(languages ...string) Localizer {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	l := Localizer{
		registry: make(map[string]*i18n.Localizer, len(languages)),
	}
	for _, lang := range languages {
		path := lang + ".toml"
		if _, err := bundle.LoadMessageFileFS(f, path); err != nil {
			slog.Error("Failed to load i18n message config", slog.String("error", err.Error()), slog.String("lang", lang), slog.String("file", path))
			continue
		}
		if l.fallback == "" {
			l.fallback = lang
		}
		l.registry[lang] = i18n.NewLocalizer(bundle, lang)
	}
	return l
}

func (l Localizer) Get(lang string, id string) string {
	return l.localize(lang, id, nil)
}

func (l Localizer) GetWithData(lang, id string, data map[string]interface{}) string {
	return l.localize(lang, id, data)
}

func (l Localizer) localize(lang, id string, data map[string]interface{}) string {
	localizer, ok := l.registry[lang]
	if !ok {
		if localizer, ok = l.registry[l.fallback]; !ok {
			return id
		}
	}

	str, err := localizer.Localize(&i18n.LocalizeConfig{
		DefaultMessage: &i18n.Message{
			ID:    id,
			Other: id,
		},
		TemplateData: data,
	})
	if err != nil {
		slog.Debug("failed to get localizer message", slog.String("lang", lang), slog.String("id", id), slog.String("error", err.Error()))
		return id
	}
	return str
}
