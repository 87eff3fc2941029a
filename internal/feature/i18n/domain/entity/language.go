// Package entity defines language tags and the message catalog.
package entity

import (
	"fmt"
	"strings"

	"quant_dashboard/internal/feature/i18n/domain"
)

// Language is a BCP 47 style tag such as "zh-CN".
type Language string

const (
	// ZhCN is the default language.
	ZhCN Language = "zh-CN"
	// EnUS is the alternate language.
	EnUS Language = "en-US"

	// Default is used when no preference is stored or a tag is unsupported.
	Default = ZhCN
)

// Supported lists the languages with a message table, default first.
var Supported = []Language{ZhCN, EnUS}

// ParseLanguage matches tag case-insensitively against Supported.
// Unknown tags return Default together with ErrUnsupportedLanguage.
func ParseLanguage(tag string) (Language, error) {
	t := strings.TrimSpace(tag)
	for _, l := range Supported {
		if strings.EqualFold(t, string(l)) {
			return l, nil
		}
	}
	return Default, fmt.Errorf("%w: %q", domain.ErrUnsupportedLanguage, tag)
}

// Other returns the language a toggle switches to.
func (l Language) Other() Language {
	if l == EnUS {
		return ZhCN
	}
	return EnUS
}

// Catalog maps each language to its key/text table.
type Catalog map[Language]map[string]string

// Lookup returns the text for key in lang.
func (c Catalog) Lookup(lang Language, key string) (string, bool) {
	s, ok := c[lang][key]
	return s, ok
}
