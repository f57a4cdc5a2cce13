package encode

import (
	"github.com/spektr-org/vizgroup/engine"
)

// ============================================================================
// ENCODER - Grouping → visual channel values
// ============================================================================
// One Engine.Group call per channel, then the palette lookup. Color and
// stroke style resolve to concrete values; any other channel (facet row or
// column, custom properties) receives the raw group order.
// ============================================================================

// Channel names the visual attribute a grouping drives.
type Channel string

const (
	Color       Channel = "color"
	StrokeStyle Channel = "stroke_style"
	Row         Channel = "row"
	Column      Channel = "column"
)

// Faceted reports whether the channel splits the visualization into a grid.
func (c Channel) Faceted() bool {
	return c == Row || c == Column
}

// field is the record attribute that receives the channel value.
func (c Channel) field() string {
	if c == StrokeStyle {
		return "dasharray"
	}
	return string(c)
}

// Encoder resolves channel values for records.
type Encoder struct {
	engine       *engine.Engine
	colors       []string
	strokeStyles []string
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithColors replaces the color palette.
func WithColors(colors ...string) Option {
	return func(e *Encoder) {
		if len(colors) > 0 {
			e.colors = clonePalette(colors)
		}
	}
}

// WithStrokeStyles replaces the dash pattern palette.
func WithStrokeStyles(styles ...string) Option {
	return func(e *Encoder) {
		if len(styles) > 0 {
			e.strokeStyles = clonePalette(styles)
		}
	}
}

// New creates an Encoder over eng with the default palettes.
func New(eng *engine.Engine, opts ...Option) *Encoder {
	e := &Encoder{
		engine:       eng,
		colors:       clonePalette(DefaultColors),
		strokeStyles: clonePalette(DefaultStrokeStyles),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the grouping engine.
func (e *Encoder) Engine() *engine.Engine { return e.engine }

// Palette returns the palette of a channel, nil for ordinal channels.
func (e *Encoder) Palette(ch Channel) []string {
	switch ch {
	case Color:
		return e.colors
	case StrokeStyle:
		return e.strokeStyles
	}
	return nil
}

// Encoding is the outcome of one channel grouping.
type Encoding struct {
	Channel Channel
	Result  *engine.GroupResult
	// Items are copies of the input records carrying <field>, <field>_val
	// and <field>_options.
	Items   []engine.Record
	Faceted bool
}

// Encode groups records for a channel. scope partitions memoization, usually
// the component key.
func (e *Encoder) Encode(scope string, records []engine.Record, ch Channel, spec engine.GroupSpec) *Encoding {
	res := e.engine.Group(string(ch), records, spec, scope)
	field := ch.field()
	palette := e.Palette(ch)

	items := engine.CopyRecords(records)
	for i, item := range items {
		g := res.Lookup(i)
		if palette != nil {
			item[field] = engine.ApplyGroupValuePattern(g.Order, palette)
		} else {
			item[field] = g.Order
		}
		item[field+"_val"] = g.Values
		item[field+"_options"] = spec.Options()
	}

	return &Encoding{
		Channel: ch,
		Result:  res,
		Items:   items,
		Faceted: ch.Faceted(),
	}
}

// Value resolves the channel value of the i-th record.
func (e *Encoder) Value(res *engine.GroupResult, ch Channel, i int) any {
	g := res.Lookup(i)
	if g == nil {
		return nil
	}
	if palette := e.Palette(ch); palette != nil {
		return engine.ApplyGroupValuePattern(g.Order, palette)
	}
	return g.Order
}

// ============================================================================
// LEGEND
// ============================================================================

// LegendEntry is one group as shown in a legend.
type LegendEntry struct {
	Key    engine.GroupKey `json:"key"`
	Values []any           `json:"values"`
	Value  any             `json:"value"`
	Rank   int             `json:"rank"`
}

// Legend lists the groups of an encoding in legend order.
func (e *Encoder) Legend(enc *Encoding) []LegendEntry {
	palette := e.Palette(enc.Channel)
	entries := make([]LegendEntry, 0, enc.Result.Len())
	for _, g := range enc.Result.Ordered() {
		var v any = g.Order
		if palette != nil {
			v = engine.ApplyGroupValuePattern(g.Order, palette)
		}
		entries = append(entries, LegendEntry{Key: g.Key, Values: g.Values, Value: v, Rank: g.Rank})
	}
	return entries
}
