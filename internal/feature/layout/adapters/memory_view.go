// Package adapters provides an in-memory page model for the layout manager.
package adapters

import (
	"sync"

	"quant_dashboard/internal/feature/layout/domain/entity"
	"quant_dashboard/internal/feature/layout/usecase"
)

// MemoryView models the dashboard page: a fixed header on top, the main panel
// below it split into chart and function regions on the left and the info
// panel on the right.
type MemoryView struct {
	mu          sync.Mutex
	vp          entity.Viewport
	header      int
	fn          int
	right       int
	chartBasis  int
	leftBasis   int
	transitions bool
}

var _ usecase.View = (*MemoryView)(nil)

// NewMemoryView creates a page with the given CSS heights and widths already rendered.
func NewMemoryView(vp entity.Viewport, headerHeight, functionHeight, rightWidth int) *MemoryView {
	return &MemoryView{
		vp:          vp,
		header:      headerHeight,
		fn:          functionHeight,
		right:       rightWidth,
		leftBasis:   vp.Width - rightWidth,
		transitions: true,
	}
}

func (v *MemoryView) Viewport() entity.Viewport {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.vp
}

// SetViewport simulates a window resize.
func (v *MemoryView) SetViewport(vp entity.Viewport) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.vp = vp
}

func (v *MemoryView) PanelHeight() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.vp.Height - v.header
}

func (v *MemoryView) FunctionHeight() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fn
}

func (v *MemoryView) RightWidth() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.right
}

func (v *MemoryView) FunctionRect() entity.Rect {
	v.mu.Lock()
	defer v.mu.Unlock()
	panel := v.vp.Height - v.header
	return entity.Rect{X: 0, Y: v.header + panel - v.fn, Width: v.vp.Width - v.right, Height: v.fn}
}

func (v *MemoryView) RightRect() entity.Rect {
	v.mu.Lock()
	defer v.mu.Unlock()
	return entity.Rect{X: v.vp.Width - v.right, Y: v.header, Width: v.right, Height: v.vp.Height - v.header}
}

func (v *MemoryView) SetFunctionHeight(px int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fn = px
}

func (v *MemoryView) SetChartFlexBasis(px int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.chartBasis = px
}

func (v *MemoryView) SetRightWidth(px int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.right = px
}

func (v *MemoryView) SetLeftFlexBasis(px int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.leftBasis = px
}

func (v *MemoryView) SetTransitions(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.transitions = enabled
}

// Transitions reports whether CSS transitions are enabled.
func (v *MemoryView) Transitions() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.transitions
}

// ChartFlexBasis returns the last basis applied to the chart region.
func (v *MemoryView) ChartFlexBasis() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.chartBasis
}

// LeftFlexBasis returns the last basis applied to the main content.
func (v *MemoryView) LeftFlexBasis() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.leftBasis
}
