// Package domain holds the localization error kinds.
package domain

import "errors"

// ErrUnsupportedLanguage is returned for language tags without a message table.
var ErrUnsupportedLanguage = errors.New("unsupported language")
