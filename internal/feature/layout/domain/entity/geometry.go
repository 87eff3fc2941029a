// Package entity defines the panel geometry and its constraints.
package entity

// Viewport is the window's inner size in pixels.
type Viewport struct {
	Width  int
	Height int
}

// Rect is a region's bounding box in viewport coordinates.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Constraints are the fixed pixel rules of the two splits.
type Constraints struct {
	MinFunctionHeight int // function region lower bound
	MinRightWidth     int // right panel lower bound
	Divider           int // visible divider between chart and function regions
	ActivationStrip   int // edge band where a pointer-down starts a drag
}

// DefaultConstraints matches the dashboard stylesheet.
var DefaultConstraints = Constraints{
	MinFunctionHeight: 100,
	MinRightWidth:     220,
	Divider:           4,
	ActivationStrip:   8,
}

// Geometry is the current sizing of the three regions.
type Geometry struct {
	PanelHeight           int
	ChartFlexBasis        int
	FunctionSectionHeight int
	RightPanelWidth       int
	LeftFlexBasis         int
}

// Split identifies a drag interaction.
type Split int

const (
	SplitNone Split = iota
	SplitVertical
	SplitHorizontal
)

func (s Split) String() string {
	switch s {
	case SplitVertical:
		return "vertical"
	case SplitHorizontal:
		return "horizontal"
	default:
		return "none"
	}
}
