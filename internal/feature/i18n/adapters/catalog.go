// Package adapters provides the embedded message tables and the language
// preference stores.
package adapters

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"quant_dashboard/internal/feature/i18n/domain/entity"
)

//go:embed messages/*.yaml
var messageFS embed.FS

// LoadCatalog parses the embedded message table of every supported language.
func LoadCatalog() (entity.Catalog, error) {
	cat := make(entity.Catalog, len(entity.Supported))
	for _, lang := range entity.Supported {
		data, err := messageFS.ReadFile("messages/" + string(lang) + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("failed to read messages for %s: %w", lang, err)
		}
		var table map[string]string
		if err := yaml.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("failed to parse messages for %s: %w", lang, err)
		}
		cat[lang] = table
	}
	return cat, nil
}

// MustLoadCatalog is LoadCatalog for process start-up.
func MustLoadCatalog() entity.Catalog {
	cat, err := LoadCatalog()
	if err != nil {
		panic(err)
	}
	return cat
}
