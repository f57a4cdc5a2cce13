package engine

// ApplyGroupValuePattern maps a group order onto a palette. Integer orders
// index the palette cyclically; anything else, such as a color string returned
// by a key function, passes through unchanged. An empty palette also passes
// the order through.
func ApplyGroupValuePattern[T any](order any, palette []T) any {
	i, ok := asInt(order)
	if !ok || len(palette) == 0 {
		return order
	}
	n := int64(len(palette))
	return palette[((i%n)+n)%n]
}

// ResolveString is ApplyGroupValuePattern for string palettes. Pass-through
// values are formatted: scalars as text, composites as canonical JSON, nil as
// "".
func ResolveString(order any, palette []string) string {
	switch v := ApplyGroupValuePattern(order, palette).(type) {
	case string:
		return v
	case nil:
		return ""
	case map[string]any, []any:
		return Canonical(v)
	default:
		return FormatScalar(v)
	}
}

func asInt(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int8:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case uint:
		return int64(t), true
	case uint8:
		return int64(t), true
	case uint16:
		return int64(t), true
	case uint32:
		return int64(t), true
	case uint64:
		return int64(t), true
	}
	return 0, false
}
