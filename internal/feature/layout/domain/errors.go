// Package domain holds the layout error kinds.
package domain

import "errors"

// ErrUnknownTab is returned when activating a tab that is not in the group.
var ErrUnknownTab = errors.New("unknown tab")
