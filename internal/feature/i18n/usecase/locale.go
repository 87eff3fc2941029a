// Package usecase implements language selection and message lookup.
package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"quant_dashboard/internal/feature/i18n/domain"
	"quant_dashboard/internal/feature/i18n/domain/entity"
	"quant_dashboard/internal/platform/events"
)

// PreferenceKey is the single stored key holding the active language.
const PreferenceKey = "language"

// PreferenceStore persists the language preference (browser local storage in the original UI).
type PreferenceStore interface {
	Load(key string) (string, bool, error)
	Save(key, value string) error
}

// Publisher broadcasts language.changed.
type Publisher interface {
	Publish(topic events.Topic, payload any)
}

// LanguageChanged is the payload of events.TopicLanguageChanged.
type LanguageChanged struct {
	From entity.Language `json:"from"`
	To   entity.Language `json:"to"`
}

// Dictionary is a stateless view of one language's table.
type Dictionary struct {
	catalog entity.Catalog
	lang    entity.Language
}

// NewDictionary returns the table for lang. Unsupported tags use entity.Default.
func NewDictionary(catalog entity.Catalog, lang string) Dictionary {
	l, _ := entity.ParseLanguage(lang)
	return Dictionary{catalog: catalog, lang: l}
}

// Language returns the resolved language.
func (d Dictionary) Language() entity.Language {
	return d.lang
}

// T returns the text for key, or key itself when missing.
func (d Dictionary) T(key string) string {
	if s, ok := d.catalog.Lookup(d.lang, key); ok {
		return s
	}
	return key
}

// TimeframeLabel returns the localized label, or the raw timeframe when none exists.
func (d Dictionary) TimeframeLabel(tf string) string {
	if s, ok := d.catalog.Lookup(d.lang, "timeframe."+tf); ok {
		return s
	}
	return tf
}

// TimeframeOption is one entry of the timeframe picker.
type TimeframeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// TimeframeOptions labels tfs in order.
func (d Dictionary) TimeframeOptions(tfs []string) []TimeframeOption {
	out := make([]TimeframeOption, 0, len(tfs))
	for _, tf := range tfs {
		out = append(out, TimeframeOption{Value: tf, Label: d.TimeframeLabel(tf)})
	}
	return out
}

// Locale holds the current language of one dashboard context.
type Locale struct {
	mu      sync.RWMutex
	catalog entity.Catalog
	current entity.Language
	store   PreferenceStore
	pub     Publisher
}

// NewLocale reads the stored preference once. A missing or unsupported
// preference selects entity.Default. store and pub may be nil.
func NewLocale(catalog entity.Catalog, store PreferenceStore, pub Publisher) (*Locale, error) {
	l := &Locale{catalog: catalog, current: entity.Default, store: store, pub: pub}
	if store == nil {
		return l, nil
	}

	v, ok, err := store.Load(PreferenceKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read language preference: %w", err)
	}
	if ok {
		lang, err := entity.ParseLanguage(v)
		if err != nil {
			slog.Warn("ignoring stored language", "value", v, "error", err)
		}
		l.current = lang
	}
	return l, nil
}

// Language returns the active language.
func (l *Locale) Language() entity.Language {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// Dictionary returns a snapshot of the active table.
func (l *Locale) Dictionary() Dictionary {
	return Dictionary{catalog: l.catalog, lang: l.Language()}
}

// T looks up key in the active language.
func (l *Locale) T(key string) string {
	return l.Dictionary().T(key)
}

// TimeframeLabel labels tf in the active language.
func (l *Locale) TimeframeLabel(tf string) string {
	return l.Dictionary().TimeframeLabel(tf)
}

// Switch activates tag, persists it and publishes language.changed.
// An unsupported tag switches to entity.Default; the returned error then
// wraps domain.ErrUnsupportedLanguage while the switch itself still happens.
func (l *Locale) Switch(tag string) (entity.Language, error) {
	lang, parseErr := entity.ParseLanguage(tag)
	if parseErr != nil {
		slog.Warn("unsupported language, falling back", "tag", tag, "fallback", lang)
	}
	if err := l.apply(lang); err != nil {
		return lang, errors.Join(parseErr, err)
	}
	return lang, parseErr
}

// Toggle flips between the two supported languages.
func (l *Locale) Toggle() (entity.Language, error) {
	lang := l.Language().Other()
	return lang, l.apply(lang)
}

func (l *Locale) apply(lang entity.Language) error {
	l.mu.Lock()
	prev := l.current
	l.current = lang
	l.mu.Unlock()

	var err error
	if l.store != nil {
		if err = l.store.Save(PreferenceKey, string(lang)); err != nil {
			err = fmt.Errorf("failed to persist language preference: %w", err)
			slog.Error("language preference not saved", "error", err)
		}
	}
	if l.pub != nil {
		l.pub.Publish(events.TopicLanguageChanged, LanguageChanged{From: prev, To: lang})
	}
	return err
}

// IsUnsupported reports whether err came from an unsupported tag.
func IsUnsupported(err error) bool {
	return errors.Is(err, domain.ErrUnsupportedLanguage)
}
