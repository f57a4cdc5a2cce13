package encode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/vizgroup/engine"
)

var metrics = []engine.Record{
	{"name": "loss", "context": map[string]any{"subset": "train"}, "steps": []any{1, 2}, "values": []any{0.9, 0.5}},
	{"name": "loss", "context": map[string]any{"subset": "val"}, "steps": []any{1, 2}, "values": []any{1.0, 0.7}},
	{"name": "acc", "context": map[string]any{"subset": "train"}, "steps": []any{1, 2}, "values": []any{0.2, 0.6}},
}

func TestEncodeColor(t *testing.T) {
	enc := New(engine.New())

	out := enc.Encode("LineChart0", metrics, Color, engine.ByFieldPaths("name"))

	require.Len(t, out.Items, 3)
	assert.False(t, out.Faceted)
	// acc < loss
	assert.Equal(t, DefaultColors[1], out.Items[0]["color"])
	assert.Equal(t, DefaultColors[1], out.Items[1]["color"])
	assert.Equal(t, DefaultColors[0], out.Items[2]["color"])
	assert.Equal(t, []any{"loss"}, out.Items[0]["color_val"])
	assert.Equal(t, []any{"name"}, out.Items[0]["color_options"])
	_, annotated := metrics[0]["color"]
	assert.False(t, annotated)
}

func TestEncodeStrokeStyleUsesDasharray(t *testing.T) {
	enc := New(engine.New(), WithStrokeStyles("solid", "dashed"))

	out := enc.Encode("LineChart0", metrics, StrokeStyle, engine.ByFieldPaths("context.subset"))

	assert.Equal(t, "solid", out.Items[0]["dasharray"])
	assert.Equal(t, "dashed", out.Items[1]["dasharray"])
	assert.Equal(t, []any{"train"}, out.Items[2]["dasharray_val"])
	assert.NotContains(t, out.Items[0], "stroke_style")
}

func TestEncodeFacet(t *testing.T) {
	enc := New(engine.New())

	out := enc.Encode("LineChart0", metrics, Row, engine.ByFieldPaths("context.subset"))

	assert.True(t, out.Faceted)
	assert.Equal(t, 0, out.Items[0]["row"])
	assert.Equal(t, 1, out.Items[1]["row"])
	assert.Equal(t, 0, out.Items[2]["row"])
}

func TestEncodeCyclesPalette(t *testing.T) {
	enc := New(engine.New(), WithColors("a", "b"))
	records := []engine.Record{{"i": 0}, {"i": 1}, {"i": 2}, {"i": 3}, {"i": 4}}

	out := enc.Encode("x", records, Color, engine.ByFieldPaths("i"))

	got := []any{}
	for _, item := range out.Items {
		got = append(got, item["color"])
	}
	assert.Equal(t, []any{"a", "b", "a", "b", "a"}, got)
}

func TestLegend(t *testing.T) {
	enc := New(engine.New())
	out := enc.Encode("x", metrics, Color, engine.ByFieldPaths("name"))

	legend := enc.Legend(out)

	require.Len(t, legend, 2)
	assert.Equal(t, []any{"acc"}, legend[0].Values)
	assert.Equal(t, DefaultColors[0], legend[0].Value)
	assert.Equal(t, 1, legend[1].Rank)
}

func TestLines(t *testing.T) {
	enc := New(engine.New())

	lines := enc.Lines("LineChart0", metrics, LineSpec{
		X:           "steps",
		Y:           "values",
		Color:       engine.ByFieldPaths("name"),
		StrokeStyle: engine.ByFieldPaths("context.subset"),
	})

	require.Len(t, lines, 3)
	assert.Equal(t, int64(1), lines[1]["key"])
	assert.Equal(t, map[string]any{
		"xValues": []any{int64(1), int64(2)},
		"yValues": []any{1.0, 0.7},
	}, lines[1]["data"])
	assert.Equal(t, DefaultColors[1], lines[1]["color"])
	assert.Equal(t, DefaultStrokeStyles[1], lines[1]["dasharray"])
	assert.Equal(t, DefaultStrokeStyles[0], lines[2]["dasharray"])
}

func TestLinesWithoutGrouping(t *testing.T) {
	enc := New(engine.New())

	lines := enc.Lines("LineChart1", metrics, LineSpec{X: "steps", Y: "values"})

	for _, l := range lines {
		assert.Equal(t, DefaultColors[0], l["color"])
		assert.Equal(t, "none", l["dasharray"])
	}
}

func TestTextsWithColorFunc(t *testing.T) {
	enc := New(engine.New())
	records := []engine.Record{{"text": "ok"}, {"text": "error: boom"}}

	texts := enc.Texts("Text0", records, engine.ByFunc("is_error", func(r engine.Record) any {
		return r["text"] != "ok"
	}))

	assert.Equal(t, DefaultColors[0], texts[0]["color"])
	assert.Equal(t, DefaultColors[1], texts[1]["color"])
}
