// Package usecase implements the chart surface: widget lifecycle, rendering,
// header updates and the coalesced resize path.
package usecase

import (
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"quant_dashboard/internal/feature/chart/domain"
	"quant_dashboard/internal/feature/chart/domain/entity"
	mdentity "quant_dashboard/internal/feature/marketdata/domain/entity"
	mdusecase "quant_dashboard/internal/feature/marketdata/usecase"
	"quant_dashboard/internal/platform/events"
	"quant_dashboard/internal/platform/scheduler"
)

// Widget is the candlestick chart instance bound to a container.
type Widget interface {
	Resize(size entity.Size)
	SetData(candles []mdentity.Candle)
	FitContent()
	SetTimeScale(rightOffset int, barSpacing float64)
	Remove()
}

// WidgetFactory creates a widget at size with a candlestick series in style.
type WidgetFactory func(size entity.Size, style entity.SeriesStyle) Widget

// Container is the element hosting the chart.
type Container interface {
	Size() entity.Size
	SetLoading(loading bool)
}

// HeaderView shows the last price and percent change.
type HeaderView interface {
	SetHeader(h entity.Header)
}

// Subscriber is the part of the event bus the surface listens on.
type Subscriber interface {
	Subscribe(topic events.Topic, fn events.Handler) func()
}

// Options tunes a Surface. Zero values take the defaults below.
type Options struct {
	Clock        clock.Clock
	ResizeWindow time.Duration
	SettleDelay  time.Duration
	RightOffset  int
	BarSpacing   float64
	Style        entity.SeriesStyle
}

const (
	DefaultSettleDelay = 100 * time.Millisecond
	DefaultRightOffset = 12
	DefaultBarSpacing  = 6.0
)

// resizeTopics all feed the same scheduler.
var resizeTopics = []events.Topic{
	events.TopicWindowResize,
	events.TopicDragResize,
	events.TopicContainerMutated,
}

// Surface owns one widget and its candle series.
type Surface struct {
	mu        sync.Mutex
	container Container
	factory   WidgetFactory
	header    HeaderView
	bus       Subscriber
	opts      Options

	widget  Widget
	size    entity.Size
	sched   *scheduler.ResizeScheduler
	unsubs  []func()
	settle  *clock.Timer
	renders int
}

var (
	_ mdusecase.Renderer         = (*Surface)(nil)
	_ mdusecase.LoadingIndicator = (*Surface)(nil)
)

// NewSurface creates an uninitialized surface. header and bus may be nil.
func NewSurface(container Container, factory WidgetFactory, header HeaderView, bus Subscriber, opts Options) *Surface {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.RightOffset <= 0 {
		opts.RightOffset = DefaultRightOffset
	}
	if opts.BarSpacing <= 0 {
		opts.BarSpacing = DefaultBarSpacing
	}
	if opts.Style == (entity.SeriesStyle{}) {
		opts.Style = entity.DefaultSeriesStyle
	}
	return &Surface{container: container, factory: factory, header: header, bus: bus, opts: opts}
}

// Init (re)creates the widget at the container's current size and installs
// the window, drag-resize and container-mutation triggers.
func (s *Surface) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	size := s.container.Size()
	if size.Empty() {
		return domain.ErrEmptyContainer
	}
	s.teardownLocked()

	s.widget = s.factory(size, s.opts.Style)
	s.size = size
	sched := scheduler.NewResizeScheduler(s.opts.Clock, s.opts.ResizeWindow, func() { _ = s.Resize() })
	s.sched = sched
	if s.bus != nil {
		for _, topic := range resizeTopics {
			s.unsubs = append(s.unsubs, s.bus.Subscribe(topic, func(any) { sched.Schedule() }))
		}
	}
	slog.Debug("chart initialized", "width", size.Width, "height", size.Height)
	return nil
}

// Scheduler returns the pending-resize scheduler, nil before Init.
func (s *Surface) Scheduler() *scheduler.ResizeScheduler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched
}

// Resize re-measures the container and applies the size to the widget.
// Calling it repeatedly without a size change does nothing.
func (s *Surface) Resize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.widget == nil {
		return domain.ErrNotInitialized
	}
	size := s.container.Size()
	if size.Empty() || size == s.size {
		return nil
	}
	s.widget.Resize(size)
	s.size = size
	return nil
}

// Size returns the size last applied to the widget.
func (s *Surface) Size() entity.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Render replaces the series data, fits the time axis and, after the settle
// delay, applies the right offset and bar spacing.
func (s *Surface) Render(candles []mdentity.Candle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.widget == nil {
		slog.Warn("render before chart init ignored", "candles", len(candles))
		return
	}
	s.widget.SetData(candles)
	s.widget.FitContent()
	s.renders++

	if s.settle != nil {
		s.settle.Stop()
	}
	w := s.widget
	s.settle = s.opts.Clock.AfterFunc(s.opts.SettleDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.widget == w {
			w.SetTimeScale(s.opts.RightOffset, s.opts.BarSpacing)
		}
	})

	if h, ok := HeaderFor(candles); ok && s.header != nil {
		s.header.SetHeader(h)
	}
}

// Renders returns how many times Render reached the widget.
func (s *Surface) Renders() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renders
}

// SetLoading toggles the container's loading overlay.
func (s *Surface) SetLoading(loading bool) {
	s.container.SetLoading(loading)
}

// Dispose removes the triggers and the widget. The surface may be Init'ed again.
func (s *Surface) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
}

func (s *Surface) teardownLocked() {
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil
	if s.sched != nil {
		s.sched.Stop()
		s.sched = nil
	}
	if s.settle != nil {
		s.settle.Stop()
		s.settle = nil
	}
	if s.widget != nil {
		s.widget.Remove()
		s.widget = nil
	}
	s.size = entity.Size{}
}
