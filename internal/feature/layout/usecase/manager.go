// Package usecase implements the drag-resize layout manager and tab groups.
package usecase

import (
	"log/slog"
	"sync"

	"quant_dashboard/internal/feature/layout/domain/entity"
	"quant_dashboard/internal/platform/events"
)

// View is the rendered page the manager measures and mutates.
type View interface {
	Viewport() entity.Viewport
	PanelHeight() int
	FunctionHeight() int
	RightWidth() int
	FunctionRect() entity.Rect
	RightRect() entity.Rect

	SetFunctionHeight(px int)
	SetChartFlexBasis(px int)
	SetRightWidth(px int)
	SetLeftFlexBasis(px int)
	SetTransitions(enabled bool)
}

// Publisher emits the drag-resize signal.
type Publisher interface {
	Publish(topic events.Topic, payload any)
}

// DragResize is the payload of events.TopicDragResize.
type DragResize struct {
	Split    entity.Split
	Geometry entity.Geometry
	Final    bool
}

type drag struct {
	split       entity.Split
	startX      int
	startY      int
	startHeight int
	startWidth  int
	startPanel  int
}

// Manager owns the vertical (chart/function) and horizontal (main/right) splits.
// At most one drag is active at a time.
type Manager struct {
	mu   sync.Mutex
	view View
	pub  Publisher
	c    entity.Constraints
	geo  entity.Geometry
	drag *drag
}

// NewManager creates a manager. A zero Constraints uses entity.DefaultConstraints.
func NewManager(view View, pub Publisher, c entity.Constraints) *Manager {
	if c == (entity.Constraints{}) {
		c = entity.DefaultConstraints
	}
	return &Manager{view: view, pub: pub, c: c}
}

// Init reads the rendered heights and widths as the initial geometry, without
// recomputing them, so the first paint does not jump.
func (m *Manager) Init() entity.Geometry {
	m.mu.Lock()
	defer m.mu.Unlock()

	vp := m.view.Viewport()
	panel := m.view.PanelHeight()
	fn := m.view.FunctionHeight()
	right := m.view.RightWidth()
	m.geo = entity.Geometry{
		PanelHeight:           panel,
		FunctionSectionHeight: fn,
		ChartFlexBasis:        ChartFlexBasis(panel, fn, m.c),
		RightPanelWidth:       right,
		LeftFlexBasis:         vp.Width - right,
	}
	return m.geo
}

// Geometry returns the current geometry.
func (m *Manager) Geometry() entity.Geometry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.geo
}

// Dragging returns the active split, or SplitNone.
func (m *Manager) Dragging() entity.Split {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.drag == nil {
		return entity.SplitNone
	}
	return m.drag.split
}

// PointerDown starts a drag when (x, y) falls in an activation strip: the top
// edge of the function region or the left edge of the right panel. It returns
// the split that started, or SplitNone.
func (m *Manager) PointerDown(x, y int) entity.Split {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.drag != nil {
		return entity.SplitNone
	}

	var split entity.Split
	fr := m.view.FunctionRect()
	rr := m.view.RightRect()
	switch {
	case inStrip(y, fr.Y, m.c.ActivationStrip) && x >= fr.X && x < fr.X+fr.Width:
		split = entity.SplitVertical
	case inStrip(x, rr.X, m.c.ActivationStrip) && y >= rr.Y && y < rr.Y+rr.Height:
		split = entity.SplitHorizontal
	default:
		return entity.SplitNone
	}

	m.drag = &drag{
		split:       split,
		startX:      x,
		startY:      y,
		startHeight: m.view.FunctionHeight(),
		startWidth:  m.view.RightWidth(),
		startPanel:  m.view.PanelHeight(),
	}
	m.view.SetTransitions(false)
	slog.Debug("drag started", "split", split, "x", x, "y", y)
	return split
}

func inStrip(p, edge, width int) bool {
	return p >= edge && p < edge+width
}

// PointerMove resizes the active split and emits the drag-resize signal.
// It returns false when no drag is active.
func (m *Manager) PointerMove(x, y int) bool {
	m.mu.Lock()
	d := m.drag
	if d == nil {
		m.mu.Unlock()
		return false
	}

	vp := m.view.Viewport()
	switch d.split {
	case entity.SplitVertical:
		m.applyFunctionHeight(d.startHeight-(y-d.startY), d.startPanel, vp)
	case entity.SplitHorizontal:
		m.applyRightWidth(d.startWidth+(d.startX-x), vp)
	}
	ev := DragResize{Split: d.split, Geometry: m.geo}
	m.mu.Unlock()

	m.publish(ev)
	return true
}

// PointerUp ends the active drag, restores transitions and emits the signal once more.
func (m *Manager) PointerUp() bool {
	m.mu.Lock()
	d := m.drag
	if d == nil {
		m.mu.Unlock()
		return false
	}
	m.drag = nil
	m.view.SetTransitions(true)
	ev := DragResize{Split: d.split, Geometry: m.geo, Final: true}
	m.mu.Unlock()

	slog.Debug("drag finished", "split", d.split,
		"function_height", ev.Geometry.FunctionSectionHeight, "right_width", ev.Geometry.RightPanelWidth)
	m.publish(ev)
	return true
}

// WindowResized re-clamps both splits against the new viewport.
func (m *Manager) WindowResized() entity.Geometry {
	m.mu.Lock()
	defer m.mu.Unlock()

	vp := m.view.Viewport()
	m.applyFunctionHeight(m.view.FunctionHeight(), m.view.PanelHeight(), vp)
	m.applyRightWidth(m.view.RightWidth(), vp)
	return m.geo
}

func (m *Manager) applyFunctionHeight(requested, panel int, vp entity.Viewport) {
	h := ClampFunctionHeight(requested, panel, vp.Height, m.c)
	basis := ChartFlexBasis(panel, h, m.c)
	m.view.SetFunctionHeight(h)
	m.view.SetChartFlexBasis(basis)
	m.geo.PanelHeight = panel
	m.geo.FunctionSectionHeight = h
	m.geo.ChartFlexBasis = basis
}

func (m *Manager) applyRightWidth(requested int, vp entity.Viewport) {
	w := ClampRightWidth(requested, vp.Width, m.c)
	m.view.SetRightWidth(w)
	m.view.SetLeftFlexBasis(vp.Width - w)
	m.geo.RightPanelWidth = w
	m.geo.LeftFlexBasis = vp.Width - w
}

func (m *Manager) publish(ev DragResize) {
	if m.pub != nil {
		m.pub.Publish(events.TopicDragResize, ev)
	}
}
