// Package domain holds the selection error kinds.
package domain

import "errors"

var (
	// ErrEmptyPair is returned when a pair selection carries no pair.
	ErrEmptyPair = errors.New("pair must not be empty")
	// ErrEmptyTimeframe is returned when a timeframe selection is blank.
	ErrEmptyTimeframe = errors.New("timeframe must not be empty")
	// ErrModalClosed is returned when choosing from a modal that is not open.
	ErrModalClosed = errors.New("modal is not open")
)
