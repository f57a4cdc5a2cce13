package encode

// ============================================================================
// PALETTES - default visual values reused cyclically across group orders
// ============================================================================

// DefaultColors is the series color palette.
var DefaultColors = []string{
	"#3E72E7", "#18AB6D", "#7A4CE0", "#E149A0",
	"#E43D3D", "#E8853D", "#0394B4", "#729B1B",
}

// DefaultStrokeStyles are SVG stroke-dasharray patterns, solid first.
var DefaultStrokeStyles = []string{
	"none",
	"5 5",
	"10 5 5 5",
	"10 5 5 5 5 5",
	"10 5 5 5 5 5 5 5",
	"20 5 10 5",
	"20 5 10 5 10 5",
	"20 5 10 5 10 5 5 5",
	"20 5 10 5 5 5 5 5",
}

func clonePalette(p []string) []string {
	return append([]string(nil), p...)
}
