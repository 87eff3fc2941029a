// Package adapters provides in-memory chart widgets and containers for the
// headless dashboard and tests.
package adapters

import (
	"sync"

	"quant_dashboard/internal/feature/chart/domain/entity"
	"quant_dashboard/internal/feature/chart/usecase"
	mdentity "quant_dashboard/internal/feature/marketdata/domain/entity"
)

// MemoryWidget records the state a real chart widget would display.
type MemoryWidget struct {
	mu          sync.Mutex
	size        entity.Size
	style       entity.SeriesStyle
	candles     []mdentity.Candle
	resizes     int
	fits        int
	rightOffset int
	barSpacing  float64
	removed     bool
}

var _ usecase.Widget = (*MemoryWidget)(nil)

// WidgetState is a snapshot of a MemoryWidget.
type WidgetState struct {
	Size        entity.Size
	Style       entity.SeriesStyle
	Candles     int
	Resizes     int
	Fits        int
	RightOffset int
	BarSpacing  float64
	Removed     bool
}

func (w *MemoryWidget) Resize(size entity.Size) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.size = size
	w.resizes++
}

func (w *MemoryWidget) SetData(candles []mdentity.Candle) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.candles = candles
}

func (w *MemoryWidget) FitContent() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fits++
}

func (w *MemoryWidget) SetTimeScale(rightOffset int, barSpacing float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rightOffset = rightOffset
	w.barSpacing = barSpacing
}

func (w *MemoryWidget) Remove() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.removed = true
}

// Candles returns the current series data.
func (w *MemoryWidget) Candles() []mdentity.Candle {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.candles
}

// State returns a snapshot.
func (w *MemoryWidget) State() WidgetState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return WidgetState{
		Size:        w.size,
		Style:       w.style,
		Candles:     len(w.candles),
		Resizes:     w.resizes,
		Fits:        w.fits,
		RightOffset: w.rightOffset,
		BarSpacing:  w.barSpacing,
		Removed:     w.removed,
	}
}

// MemoryWidgetFactory creates MemoryWidgets and remembers them.
type MemoryWidgetFactory struct {
	mu      sync.Mutex
	widgets []*MemoryWidget
}

// New satisfies usecase.WidgetFactory.
func (f *MemoryWidgetFactory) New(size entity.Size, style entity.SeriesStyle) usecase.Widget {
	w := &MemoryWidget{size: size, style: style}
	f.mu.Lock()
	f.widgets = append(f.widgets, w)
	f.mu.Unlock()
	return w
}

// Last returns the most recently created widget, or nil.
func (f *MemoryWidgetFactory) Last() *MemoryWidget {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.widgets) == 0 {
		return nil
	}
	return f.widgets[len(f.widgets)-1]
}

// Created returns how many widgets were created.
func (f *MemoryWidgetFactory) Created() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.widgets)
}
