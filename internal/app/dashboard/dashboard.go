// Package dashboard is the explicit application context of one dashboard:
// it owns the event bus, locale, selection, pipeline, chart and layout, and
// wires them together in Init and apart in Dispose.
package dashboard

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	chartusecase "quant_dashboard/internal/feature/chart/usecase"
	i18nentity "quant_dashboard/internal/feature/i18n/domain/entity"
	i18nusecase "quant_dashboard/internal/feature/i18n/usecase"
	layoutentity "quant_dashboard/internal/feature/layout/domain/entity"
	layoutusecase "quant_dashboard/internal/feature/layout/usecase"
	mdusecase "quant_dashboard/internal/feature/marketdata/usecase"
	selentity "quant_dashboard/internal/feature/selection/domain/entity"
	selusecase "quant_dashboard/internal/feature/selection/usecase"
	"quant_dashboard/internal/platform/config"
	"quant_dashboard/internal/platform/events"
)

// Deps are the collaborators a Dashboard is built from.
type Deps struct {
	Catalogue *config.Catalogue
	Messages  i18nentity.Catalog
	Source    mdusecase.CandleSource

	Container chartusecase.Container
	Widgets   chartusecase.WidgetFactory
	View      layoutusecase.View

	// Optional.
	Pairs        selusecase.PairLister
	Prefs        i18nusecase.PreferenceStore
	Header       chartusecase.HeaderView
	Notifier     mdusecase.Notifier
	Clock        clock.Clock
	FetchTimeout time.Duration
}

// Dashboard holds every component of one page. Several may coexist.
type Dashboard struct {
	Bus            *events.Bus
	Locale         *i18nusecase.Locale
	Selection      *selusecase.SelectionState
	Pipeline       *mdusecase.Pipeline
	Chart          *chartusecase.Surface
	Layout         *layoutusecase.Manager
	PairModal      *selusecase.PairModal
	TimeframeModal *selusecase.TimeframeModal
	FunctionTabs   *layoutusecase.TabGroup
	InfoTabs       *layoutusecase.TabGroup

	mu       sync.Mutex
	unsubs   []func()
	started  bool
	disposed bool
}

// New builds a dashboard. Nothing is subscribed or loaded until Init.
func New(d Deps) (*Dashboard, error) {
	if d.Catalogue == nil || d.Source == nil || d.Container == nil || d.Widgets == nil || d.View == nil {
		return nil, errors.New("dashboard: catalogue, source, container, widgets and view are required")
	}
	if d.Clock == nil {
		d.Clock = clock.New()
	}
	cat := d.Catalogue

	bus := events.NewBus()
	locale, err := i18nusecase.NewLocale(d.Messages, d.Prefs, bus)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	chart := chartusecase.NewSurface(d.Container, d.Widgets, d.Header, bus, chartusecase.Options{
		Clock:        d.Clock,
		ResizeWindow: cat.Chart.ResizeWindow(),
		SettleDelay:  cat.Chart.SettleDelay(),
		RightOffset:  cat.Chart.RightOffset,
		BarSpacing:   cat.Chart.BarSpacing,
	})

	pipeline := mdusecase.NewPipeline(d.Source, chart, chart, d.Notifier, locale, mdusecase.PipelineOptions{
		Limit:   cat.Chart.Limit,
		Timeout: d.FetchTimeout,
		Now:     d.Clock.Now,
	})

	initial := selentity.Key{
		Pair:      cat.Default.Pair,
		Exchange:  cat.Default.Exchange,
		Timeframe: selentity.Timeframe(cat.Default.Timeframe),
	}
	selection := selusecase.NewSelectionState(initial, pipeline, locale, bus)

	layout := layoutusecase.NewManager(d.View, bus, layoutentity.Constraints{
		MinFunctionHeight: cat.Layout.MinFunctionHeight,
		MinRightWidth:     cat.Layout.MinRightWidth,
		Divider:           cat.Layout.Divider,
		ActivationStrip:   cat.Layout.ActivationStrip,
	})

	return &Dashboard{
		Bus:            bus,
		Locale:         locale,
		Selection:      selection,
		Pipeline:       pipeline,
		Chart:          chart,
		Layout:         layout,
		PairModal:      selusecase.NewPairModal(selection, d.Pairs, cat.Exchanges, cat.Pairs),
		TimeframeModal: selusecase.NewTimeframeModal(selection, locale, cat.Timeframes),
		FunctionTabs:   layoutusecase.StrategyTabs(),
		InfoTabs:       layoutusecase.MarketTabs(),
	}, nil
}

// Init creates the chart, reads the initial layout, installs the
// subscriptions and starts the load of the initial selection.
func (d *Dashboard) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.disposed {
		return errors.New("dashboard: already disposed")
	}
	if d.started {
		return nil
	}
	if err := d.Chart.Init(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	d.Layout.Init()

	d.unsubs = append(d.unsubs,
		d.Bus.Subscribe(events.TopicWindowResize, func(any) { d.Layout.WindowResized() }),
		d.Bus.Subscribe(events.TopicLanguageChanged, func(any) { d.Selection.RefreshLabels() }),
	)
	d.started = true

	// Init前のSwitchはどの購読者にも届いていない。
	d.Selection.RefreshLabels()
	d.Selection.Reload()
	return nil
}

// WindowResized signals a viewport change to the layout and the chart.
func (d *Dashboard) WindowResized() {
	d.Bus.Publish(events.TopicWindowResize, nil)
}

// ContainerMutated signals that the chart container's attributes or children changed.
func (d *Dashboard) ContainerMutated() {
	d.Bus.Publish(events.TopicContainerMutated, nil)
}

// Labels returns the selection control text in the current language.
func (d *Dashboard) Labels() selusecase.Labels {
	return d.Selection.Labels()
}

// Dispose cancels in-flight loads and tears down subscriptions and the chart.
func (d *Dashboard) Dispose() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.disposed {
		return
	}
	d.disposed = true
	for _, unsub := range d.unsubs {
		unsub()
	}
	d.unsubs = nil
	d.Pipeline.Close()
	d.Chart.Dispose()
}
