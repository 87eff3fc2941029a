// Package domain holds the chart error kinds.
package domain

import "errors"

var (
	// ErrNotInitialized is returned when the surface is used before Init or after Dispose.
	ErrNotInitialized = errors.New("chart surface is not initialized")
	// ErrEmptyContainer is returned when the container has no measurable size.
	ErrEmptyContainer = errors.New("chart container has zero size")
)
