// Package dto defines data transfer objects for the Twelve Data API responses.
package dto

// TimeSeriesResponse represents the JSON response from the /time_series endpoint.
// Values are newest first; volume is absent for most crypto pairs.
type TimeSeriesResponse struct {
	Status  string `json:"status"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Meta    struct {
		Symbol   string `json:"symbol"`
		Interval string `json:"interval"`
	} `json:"meta"`
	Values []struct {
		Datetime string `json:"datetime"`
		Open     string `json:"open"`
		High     string `json:"high"`
		Low      string `json:"low"`
		Close    string `json:"close"`
		Volume   string `json:"volume,omitempty"`
	} `json:"values"`
}

// CryptocurrenciesResponse represents the /cryptocurrencies catalogue.
type CryptocurrenciesResponse struct {
	Status string `json:"status"`
	Data   []struct {
		Symbol             string   `json:"symbol"`
		AvailableExchanges []string `json:"available_exchanges"`
	} `json:"data"`
}
