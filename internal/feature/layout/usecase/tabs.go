package usecase

import (
	"fmt"
	"sync"

	"quant_dashboard/internal/feature/layout/domain"
)

// TabGroup toggles visibility of panels keyed by tab id. Exactly one panel is
// visible; switching tabs never touches the geometry.
type TabGroup struct {
	mu     sync.RWMutex
	name   string
	tabs   []string
	active string
}

// NewTabGroup creates a group with the first id active.
func NewTabGroup(name string, ids ...string) *TabGroup {
	g := &TabGroup{name: name, tabs: ids}
	if len(ids) > 0 {
		g.active = ids[0]
	}
	return g
}

// Name returns the group name.
func (g *TabGroup) Name() string { return g.name }

// Tabs returns the tab ids in order.
func (g *TabGroup) Tabs() []string { return g.tabs }

// Active returns the visible tab id.
func (g *TabGroup) Active() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.active
}

// Activate shows the panel matching id and hides the rest.
func (g *TabGroup) Activate(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, t := range g.tabs {
		if t == id {
			g.active = id
			return nil
		}
	}
	return fmt.Errorf("%w: %q in group %q", domain.ErrUnknownTab, id, g.name)
}

// Visible reports whether the panel for id is shown.
func (g *TabGroup) Visible(id string) bool {
	return g.Active() == id
}

// StrategyTabs is the function region's group.
func StrategyTabs() *TabGroup { return NewTabGroup("function", "strategy", "backtest", "trade") }

// MarketTabs is the right panel's group.
func MarketTabs() *TabGroup { return NewTabGroup("info", "market", "depth", "news") }
