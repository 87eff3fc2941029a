// Package usecase implements the active selection and the modals that change it.
package usecase

import (
	"log/slog"
	"strings"
	"sync"

	"quant_dashboard/internal/feature/selection/domain"
	"quant_dashboard/internal/feature/selection/domain/entity"
	"quant_dashboard/internal/platform/events"
)

// Loader starts a market data load for a key. It must not block on the network.
type Loader interface {
	Load(key entity.Key)
}

// Labeler provides localized timeframe labels.
type Labeler interface {
	TimeframeLabel(tf string) string
}

// Publisher raises selection.changed.
type Publisher interface {
	Publish(topic events.Topic, payload any)
}

// Labels is the display text bound to the pair and timeframe controls.
type Labels struct {
	Pair      string
	Exchange  string
	Timeframe string
}

// SelectionChanged is the payload of events.TopicSelectionChanged.
type SelectionChanged struct {
	Previous entity.Key
	Current  entity.Key
}

// SelectionState is the single source of truth for the active key.
type SelectionState struct {
	mu      sync.RWMutex
	key     entity.Key
	labels  Labels
	loader  Loader
	labeler Labeler
	pub     Publisher
}

// NewSelectionState creates a state holding initial. Nothing is loaded until
// the first selection; labeler and pub may be nil.
func NewSelectionState(initial entity.Key, loader Loader, labeler Labeler, pub Publisher) *SelectionState {
	s := &SelectionState{key: initial, loader: loader, labeler: labeler, pub: pub}
	s.labels = s.labelsFor(initial)
	return s
}

// Current returns the active key.
func (s *SelectionState) Current() entity.Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key
}

// Labels returns the current control text.
func (s *SelectionState) Labels() Labels {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.labels
}

// SelectPair activates pair on exchange. An empty exchange keeps the current one.
// Any non-empty pair is accepted.
func (s *SelectionState) SelectPair(pair, exchange string) error {
	pair = strings.TrimSpace(pair)
	if pair == "" {
		return domain.ErrEmptyPair
	}
	ex := strings.TrimSpace(exchange)
	s.apply(func(k *entity.Key) {
		k.Pair = pair
		if ex != "" {
			k.Exchange = ex
		}
	})
	return nil
}

// SelectTimeframe activates tf. Timeframes outside the configured set are
// accepted and labeled with the raw string.
func (s *SelectionState) SelectTimeframe(tf string) error {
	tf = strings.TrimSpace(tf)
	if tf == "" {
		return domain.ErrEmptyTimeframe
	}
	if !entity.Timeframe(tf).Known() {
		slog.Warn("selecting unconfigured timeframe", "timeframe", tf)
	}
	s.apply(func(k *entity.Key) { k.Timeframe = entity.Timeframe(tf) })
	return nil
}

// Reload triggers a load for the current key without changing it.
func (s *SelectionState) Reload() {
	if s.loader != nil {
		s.loader.Load(s.Current())
	}
}

// RefreshLabels recomputes control text, e.g. after a language change.
func (s *SelectionState) RefreshLabels() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labels = s.labelsFor(s.key)
}

// apply edits the key in place under one write lock so concurrent selections
// of different fields do not overwrite each other.
func (s *SelectionState) apply(edit func(*entity.Key)) {
	s.mu.Lock()
	prev := s.key
	edit(&s.key)
	next := s.key
	s.labels = s.labelsFor(next)
	s.mu.Unlock()

	slog.Debug("selection changed", "from", prev.String(), "to", next.String())
	if s.pub != nil {
		s.pub.Publish(events.TopicSelectionChanged, SelectionChanged{Previous: prev, Current: next})
	}
	// 選択ごとに1回だけロードする（キューイングなし）
	if s.loader != nil {
		s.loader.Load(next)
	}
}

func (s *SelectionState) labelsFor(k entity.Key) Labels {
	tf := string(k.Timeframe)
	if s.labeler != nil {
		tf = s.labeler.TimeframeLabel(tf)
	}
	return Labels{
		Pair:      k.Pair,
		Exchange:  strings.ToUpper(k.ExchangeID()),
		Timeframe: tf,
	}
}
