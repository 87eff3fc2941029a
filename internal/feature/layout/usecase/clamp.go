package usecase

import "quant_dashboard/internal/feature/layout/domain/entity"

// MinChartHeight is ⌈vh/2⌉, the smallest chart region allowed.
func MinChartHeight(viewportHeight int) int {
	return (viewportHeight + 1) / 2
}

// ClampFunctionHeight bounds a requested function region height to
// [MinFunctionHeight, panelHeight − ⌈vh/2⌉]. When the panel is too short for
// both bounds the minimum wins.
func ClampFunctionHeight(requested, panelHeight, viewportHeight int, c entity.Constraints) int {
	upper := panelHeight - MinChartHeight(viewportHeight)
	h := min(requested, upper)
	return max(h, c.MinFunctionHeight)
}

// ChartFlexBasis is the chart region's basis for a function height.
func ChartFlexBasis(panelHeight, functionHeight int, c entity.Constraints) int {
	return panelHeight - functionHeight - c.Divider
}

// ClampRightWidth bounds a requested right panel width to [MinRightWidth, ⌊vw/2⌋].
func ClampRightWidth(requested, viewportWidth int, c entity.Constraints) int {
	w := min(requested, viewportWidth/2)
	return max(w, c.MinRightWidth)
}
