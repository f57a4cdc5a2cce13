package encode

import (
	"github.com/spektr-org/vizgroup/engine"
)

// ============================================================================
// SERIES BUILDERS - records → render-ready lines and text items
// ============================================================================

// LineSpec describes a line chart: x/y field paths plus the groupings that
// drive color and dash pattern.
type LineSpec struct {
	X           string
	Y           string
	Color       engine.GroupSpec
	StrokeStyle engine.GroupSpec
}

// Lines builds one line per record with its index key, x/y values and the
// resolved color and dasharray.
func (e *Encoder) Lines(scope string, records []engine.Record, spec LineSpec) []engine.Record {
	colors := e.engine.Group(string(Color), records, spec.Color, scope)
	strokes := e.engine.Group(string(StrokeStyle), records, spec.StrokeStyle, scope)

	lines := make([]engine.Record, 0, len(records))
	for i, item := range engine.CopyRecords(records) {
		item["key"] = int64(i)
		item["data"] = map[string]any{
			"xValues": engine.Find(item, spec.X),
			"yValues": engine.Find(item, spec.Y),
		}
		item["color"] = e.Value(colors, Color, i)
		item["dasharray"] = e.Value(strokes, StrokeStyle, i)
		lines = append(lines, item)
	}
	return lines
}

// Texts stamps each record with its index key and color.
func (e *Encoder) Texts(scope string, records []engine.Record, color engine.GroupSpec) []engine.Record {
	colors := e.engine.Group(string(Color), records, color, scope)

	texts := make([]engine.Record, 0, len(records))
	for i, item := range engine.CopyRecords(records) {
		item["key"] = int64(i)
		item["color"] = e.Value(colors, Color, i)
		texts = append(texts, item)
	}
	return texts
}
