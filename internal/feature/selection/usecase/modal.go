package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"quant_dashboard/internal/feature/selection/domain"
)

// PairLister returns tradable pairs per lowercase exchange id.
type PairLister interface {
	AvailablePairs(ctx context.Context) (map[string][]string, error)
}

// PairModal offers exchange tabs and their pairs.
type PairModal struct {
	mu        sync.Mutex
	state     *SelectionState
	lister    PairLister
	exchanges []string
	fallback  []string

	open    bool
	active  string
	options map[string][]string
}

// NewPairModal creates a closed modal. fallback pairs are offered for every
// exchange when lister is nil or fails.
func NewPairModal(state *SelectionState, lister PairLister, exchanges, fallback []string) *PairModal {
	ex := make([]string, 0, len(exchanges))
	for _, e := range exchanges {
		ex = append(ex, strings.ToLower(strings.TrimSpace(e)))
	}
	return &PairModal{state: state, lister: lister, exchanges: ex, fallback: fallback}
}

// Open loads the pair options and activates the tab of the current exchange.
func (m *PairModal) Open(ctx context.Context) {
	options := m.loadOptions(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.options = options
	m.open = true
	m.active = m.state.Current().ExchangeID()
	if _, ok := options[m.active]; !ok && len(m.exchanges) > 0 {
		m.active = m.exchanges[0]
	}
}

func (m *PairModal) loadOptions(ctx context.Context) map[string][]string {
	options := make(map[string][]string, len(m.exchanges))
	var listed map[string][]string
	if m.lister != nil {
		var err error
		if listed, err = m.lister.AvailablePairs(ctx); err != nil {
			slog.Warn("failed to list pairs, using catalogue", "error", err)
			listed = nil
		}
	}
	for _, ex := range m.exchanges {
		if pairs, ok := listed[ex]; ok {
			options[ex] = pairs
			continue
		}
		options[ex] = m.fallback
	}
	return options
}

// IsOpen reports whether the modal is shown.
func (m *PairModal) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// ActiveExchange returns the selected exchange tab.
func (m *PairModal) ActiveExchange() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Options returns the pairs of the active tab.
func (m *PairModal) Options() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.options[m.active]
}

// SelectExchange switches the active tab.
func (m *PairModal) SelectExchange(exchange string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return domain.ErrModalClosed
	}
	ex := strings.ToLower(strings.TrimSpace(exchange))
	if _, ok := m.options[ex]; !ok {
		return fmt.Errorf("exchange %q is not offered", exchange)
	}
	m.active = ex
	return nil
}

// Choose selects pair on the active exchange and closes the modal.
func (m *PairModal) Choose(pair string) error {
	m.mu.Lock()
	if !m.open {
		m.mu.Unlock()
		return domain.ErrModalClosed
	}
	exchange := m.active
	m.mu.Unlock()

	if err := m.state.SelectPair(pair, exchange); err != nil {
		return err
	}
	m.Close()
	return nil
}

// Close hides the modal.
func (m *PairModal) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
}

// TimeframeOption is one row of the timeframe modal.
type TimeframeOption struct {
	Value string
	Label string
}

// TimeframeModal lists the configured timeframes with localized labels.
type TimeframeModal struct {
	mu         sync.Mutex
	state      *SelectionState
	labeler    Labeler
	timeframes []string
	open       bool
}

// NewTimeframeModal creates a closed modal over timeframes.
func NewTimeframeModal(state *SelectionState, labeler Labeler, timeframes []string) *TimeframeModal {
	return &TimeframeModal{state: state, labeler: labeler, timeframes: timeframes}
}

func (m *TimeframeModal) Open() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = true
}

func (m *TimeframeModal) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Options labels the configured timeframes in the current language.
func (m *TimeframeModal) Options() []TimeframeOption {
	out := make([]TimeframeOption, 0, len(m.timeframes))
	for _, tf := range m.timeframes {
		label := tf
		if m.labeler != nil {
			label = m.labeler.TimeframeLabel(tf)
		}
		out = append(out, TimeframeOption{Value: tf, Label: label})
	}
	return out
}

// Choose selects tf and closes the modal.
func (m *TimeframeModal) Choose(tf string) error {
	if !m.IsOpen() {
		return domain.ErrModalClosed
	}
	if err := m.state.SelectTimeframe(tf); err != nil {
		return err
	}
	m.Close()
	return nil
}

func (m *TimeframeModal) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
}
