// Package config loads process configuration from the environment and the
// dashboard catalogue from YAML.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed catalogue.yaml
var defaultCatalogue []byte

// Selection is the initial pair/exchange/timeframe shown on load.
type Selection struct {
	Exchange  string `yaml:"exchange"`
	Pair      string `yaml:"pair"`
	Timeframe string `yaml:"timeframe"`
}

// LayoutConfig holds the pixel constants of the split panels.
type LayoutConfig struct {
	MinFunctionHeight int `yaml:"min_function_height"`
	MinRightWidth     int `yaml:"min_right_width"`
	Divider           int `yaml:"divider"`
	ActivationStrip   int `yaml:"activation_strip"`
}

// ChartConfig holds chart surface tuning.
type ChartConfig struct {
	Limit          int     `yaml:"limit"`
	ResizeWindowMS int     `yaml:"resize_window_ms"`
	SettleDelayMS  int     `yaml:"settle_delay_ms"`
	RightOffset    int     `yaml:"right_offset"`
	BarSpacing     float64 `yaml:"bar_spacing"`
}

// ResizeWindow returns the debounce window as a duration.
func (c ChartConfig) ResizeWindow() time.Duration {
	return time.Duration(c.ResizeWindowMS) * time.Millisecond
}

// SettleDelay returns the delay between fit-to-content and time-scale adjustment.
func (c ChartConfig) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMS) * time.Millisecond
}

// Catalogue lists what the dashboard can show.
type Catalogue struct {
	Default    Selection    `yaml:"default"`
	Exchanges  []string     `yaml:"exchanges"`
	Pairs      []string     `yaml:"pairs"`
	Timeframes []string     `yaml:"timeframes"`
	Layout     LayoutConfig `yaml:"layout"`
	Chart      ChartConfig  `yaml:"chart"`
}

// DefaultCatalogue parses the embedded catalogue.
func DefaultCatalogue() (*Catalogue, error) {
	return ParseCatalogue(defaultCatalogue)
}

// LoadCatalogue reads a catalogue file, or the embedded default when path is empty.
func LoadCatalogue(path string) (*Catalogue, error) {
	if path == "" {
		return DefaultCatalogue()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue file '%s': %w", path, err)
	}
	return ParseCatalogue(data)
}

// ParseCatalogue unmarshals and validates catalogue YAML.
func ParseCatalogue(data []byte) (*Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalogue from YAML: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("catalogue validation failed: %w", err)
	}
	return &c, nil
}

func (c *Catalogue) applyDefaults() {
	if c.Layout.MinFunctionHeight <= 0 {
		c.Layout.MinFunctionHeight = 100
	}
	if c.Layout.MinRightWidth <= 0 {
		c.Layout.MinRightWidth = 220
	}
	if c.Layout.Divider <= 0 {
		c.Layout.Divider = 4
	}
	if c.Layout.ActivationStrip <= 0 {
		c.Layout.ActivationStrip = 8
	}
	if c.Chart.Limit <= 0 {
		c.Chart.Limit = 500
	}
}

// Validate performs basic catalogue validation.
func (c *Catalogue) Validate() error {
	if len(c.Exchanges) == 0 {
		return fmt.Errorf("at least one exchange must be configured")
	}
	if len(c.Pairs) == 0 {
		return fmt.Errorf("at least one pair must be configured")
	}
	if len(c.Timeframes) == 0 {
		return fmt.Errorf("at least one timeframe must be configured")
	}
	for i, tf := range c.Timeframes {
		if tf == "" {
			return fmt.Errorf("timeframe %d cannot be empty", i)
		}
	}
	if c.Default.Pair == "" {
		return fmt.Errorf("default pair cannot be empty")
	}
	if c.Default.Exchange == "" {
		return fmt.Errorf("default exchange cannot be empty")
	}
	if c.Default.Timeframe == "" {
		return fmt.Errorf("default timeframe cannot be empty")
	}
	return nil
}
