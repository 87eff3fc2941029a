package adapters

import (
	"fmt"
	"io"
	"sync"

	"quant_dashboard/internal/feature/chart/domain/entity"
	"quant_dashboard/internal/feature/chart/usecase"
)

// MemoryContainer is a resizable chart container with a loading flag.
type MemoryContainer struct {
	mu      sync.Mutex
	size    entity.Size
	loading bool
	toggles []bool
}

var _ usecase.Container = (*MemoryContainer)(nil)

// NewMemoryContainer creates a container of the given size.
func NewMemoryContainer(width, height int) *MemoryContainer {
	return &MemoryContainer{size: entity.Size{Width: width, Height: height}}
}

func (c *MemoryContainer) Size() entity.Size {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// SetSize changes the measured size, as a layout change would.
func (c *MemoryContainer) SetSize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.size = entity.Size{Width: width, Height: height}
}

func (c *MemoryContainer) SetLoading(loading bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = loading
	c.toggles = append(c.toggles, loading)
}

// Loading reports whether the overlay is shown.
func (c *MemoryContainer) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Toggles returns every SetLoading value in order.
func (c *MemoryContainer) Toggles() []bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]bool(nil), c.toggles...)
}

// TextHeader prints header updates as one line each.
type TextHeader struct {
	mu   sync.Mutex
	w    io.Writer
	last entity.Header
}

var _ usecase.HeaderView = (*TextHeader)(nil)

// NewTextHeader writes to w; a nil w only records the last header.
func NewTextHeader(w io.Writer) *TextHeader {
	return &TextHeader{w: w}
}

func (h *TextHeader) SetHeader(hd entity.Header) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = hd
	if h.w != nil {
		_, _ = fmt.Fprintf(h.w, "%s  %s (%s)\n", hd.Price, hd.Change, hd.Class)
	}
}

// Last returns the most recent header.
func (h *TextHeader) Last() entity.Header {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}
