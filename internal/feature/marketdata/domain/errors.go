// Package domain holds the error kinds shared by the marketdata layers.
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork means the request could not complete or returned a non-2xx status.
	ErrNetwork = errors.New("network error")
	// ErrDataSource means the data source answered with an explicit error field.
	ErrDataSource = errors.New("data source error")
	// ErrEmptyData means the response held zero usable points.
	ErrEmptyData = errors.New("empty data")
	// ErrMalformedPoint marks a single point that failed numeric or time coercion.
	ErrMalformedPoint = errors.New("malformed candle point")
	// ErrStaleResponse marks a response superseded by a newer load.
	ErrStaleResponse = errors.New("stale response")

	// ErrUnsupportedExchange is returned for exchanges without a provider.
	ErrUnsupportedExchange = errors.New("unsupported exchange")
	// ErrUnsupportedTimeframe is returned when an upstream has no matching bar size.
	ErrUnsupportedTimeframe = errors.New("unsupported timeframe")
	// ErrNoExchangeData is returned when every requested exchange failed.
	ErrNoExchangeData = errors.New("failed to fetch data from any exchange")
)

// DataSourceError carries the upstream text of an explicit error envelope.
type DataSourceError struct {
	Message string
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDataSource, e.Message)
}

// Unwrap lets errors.Is match ErrDataSource.
func (e *DataSourceError) Unwrap() error {
	return ErrDataSource
}
