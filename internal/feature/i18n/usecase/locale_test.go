package usecase_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quant_dashboard/internal/feature/i18n/adapters"
	"quant_dashboard/internal/feature/i18n/domain"
	"quant_dashboard/internal/feature/i18n/domain/entity"
	"quant_dashboard/internal/feature/i18n/usecase"
	"quant_dashboard/internal/platform/events"
)

type failingStore struct {
	loadErr, saveErr error
}

func (s failingStore) Load(string) (string, bool, error) { return "", false, s.loadErr }
func (s failingStore) Save(string, string) error         { return s.saveErr }

func catalog(t *testing.T) entity.Catalog {
	t.Helper()
	cat, err := adapters.LoadCatalog()
	require.NoError(t, err)
	return cat
}

func TestNewLocale_ReadsPreferenceOnce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		stored string
		want   entity.Language
	}{
		{"no preference", "", entity.ZhCN},
		{"english", "en-US", entity.EnUS},
		{"case insensitive", "EN-us", entity.EnUS},
		{"unsupported falls back", "fr-FR", entity.ZhCN},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := adapters.NewMemoryStore()
			if tt.stored != "" {
				require.NoError(t, store.Save(usecase.PreferenceKey, tt.stored))
			}
			l, err := usecase.NewLocale(catalog(t), store, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, l.Language())
		})
	}
}

func TestNewLocale_StoreFailure(t *testing.T) {
	t.Parallel()

	_, err := usecase.NewLocale(catalog(t), failingStore{loadErr: errors.New("disk")}, nil)
	assert.Error(t, err)
}

func TestLocale_SwitchPersistsAndPublishes(t *testing.T) {
	t.Parallel()

	bus := events.NewBus()
	var got []usecase.LanguageChanged
	bus.Subscribe(events.TopicLanguageChanged, func(p any) {
		got = append(got, p.(usecase.LanguageChanged))
	})
	store := adapters.NewMemoryStore()
	l, err := usecase.NewLocale(catalog(t), store, bus)
	require.NoError(t, err)

	assert.Equal(t, "4小时", l.TimeframeLabel("4h"))

	lang, err := l.Switch("en-US")
	require.NoError(t, err)
	assert.Equal(t, entity.EnUS, lang)
	assert.Equal(t, "4 Hours", l.TimeframeLabel("4h"))
	assert.Equal(t, "Pair", l.T("header.pair"))

	v, _, _ := store.Load(usecase.PreferenceKey)
	assert.Equal(t, "en-US", v)

	lang, err = l.Toggle()
	require.NoError(t, err)
	assert.Equal(t, entity.ZhCN, lang)

	assert.Equal(t, []usecase.LanguageChanged{
		{From: entity.ZhCN, To: entity.EnUS},
		{From: entity.EnUS, To: entity.ZhCN},
	}, got)
}

func TestLocale_SwitchUnsupportedFallsBack(t *testing.T) {
	t.Parallel()

	bus := events.NewBus()
	published := 0
	bus.Subscribe(events.TopicLanguageChanged, func(any) { published++ })

	l, err := usecase.NewLocale(catalog(t), adapters.NewMemoryStore(), bus)
	require.NoError(t, err)
	_, err = l.Switch("en-US")
	require.NoError(t, err)

	lang, err := l.Switch("ja-JP")
	require.ErrorIs(t, err, domain.ErrUnsupportedLanguage)
	assert.True(t, usecase.IsUnsupported(err))
	assert.Equal(t, entity.ZhCN, lang)
	assert.Equal(t, entity.ZhCN, l.Language())
	assert.Equal(t, 2, published)
}

func TestLocale_SaveFailureStillSwitches(t *testing.T) {
	t.Parallel()

	l, err := usecase.NewLocale(catalog(t), failingStore{saveErr: errors.New("read-only")}, nil)
	require.NoError(t, err)

	_, err = l.Switch("en-US")
	assert.Error(t, err)
	assert.Equal(t, entity.EnUS, l.Language())
}

func TestDictionary(t *testing.T) {
	t.Parallel()

	d := usecase.NewDictionary(catalog(t), "en-US")
	assert.Equal(t, entity.EnUS, d.Language())
	assert.Equal(t, "missing.key", d.T("missing.key"))
	assert.Equal(t, "3h", d.TimeframeLabel("3h"), "unknown timeframes render raw")
	assert.Equal(t, []usecase.TimeframeOption{
		{Value: "5m", Label: "5 Minutes"},
		{Value: "1d", Label: "1 Day"},
	}, d.TimeframeOptions([]string{"5m", "1d"}))

	assert.Equal(t, entity.ZhCN, usecase.NewDictionary(catalog(t), "").Language())
}
