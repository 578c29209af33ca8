package utils

import (
	"encoding/json"
	"path/filepath"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

var (
	bundle     *i18n.Bundle
	bundleOnce sync.Once
)

func loadBundle() {
	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	dir := viper.GetString("i18n.dir")
	if dir == "" {
		dir = "i18n"
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		log.WithError(err).Error("fail to list translation files")
		return
	}
	for _, f := range files {
		if _, err := bundle.LoadMessageFile(f); err != nil {
			log.WithError(err).WithField("file", f).Error("fail to load translation file")
		}
	}
}

// InitI18NBundle loads the translation files. NewLocalizer does this
// lazily, so the explicit call only matters when a process wants the
// load errors surfaced at startup.
func InitI18NBundle() {
	bundleOnce.Do(loadBundle)
}

// NewLocalizer returns a localizer for the given language, falling back
// to English for untranslated messages.
func NewLocalizer(lang string) *i18n.Localizer {
	bundleOnce.Do(loadBundle)
	if lang == "" {
		lang = "en"
	}
	return i18n.NewLocalizer(bundle, lang, "en")
}
