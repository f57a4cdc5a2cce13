package engine

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/alt"
	"github.com/ohler55/ojg/oj"
	"golang.org/x/crypto/blake2b"
)

// ============================================================================
// VALUES - normalization, canonical form, content keys
// ============================================================================
// Every value entering the engine is normalized to the JSON-compatible set:
// nil, bool, int64, float64, string, map[string]any, []any. Normalization
// allocates fresh containers, so it doubles as the deep copy.
// ============================================================================

// Normalize returns a deep copy of v restricted to JSON-compatible types.
func Normalize(v any) any {
	return normalize(v, true)
}

func normalize(v any, decompose bool) any {
	switch t := v.(type) {
	case nil, bool, string, int64, float64:
		return t
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case uint:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		if t > math.MaxInt64 {
			return float64(t)
		}
		return int64(t)
	case float32:
		return float64(t)
	case Record:
		return normalizeMap(t)
	case map[string]any:
		return normalizeMap(t)
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = normalize(e, true)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e, true)
		}
		return out
	case []Record:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeMap(e)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out
	}
	if decompose {
		// structs, typed maps and slices
		return normalize(alt.Decompose(v), false)
	}
	return fmt.Sprint(v)
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, e := range m {
		out[k] = normalize(e, true)
	}
	return out
}

// CopyRecord deep-copies a record.
func CopyRecord(r Record) Record {
	if r == nil {
		return Record{}
	}
	return Record(normalizeMap(r))
}

// CopyRecords deep-copies a record slice.
func CopyRecords(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = CopyRecord(r)
	}
	return out
}

var canonicalOptions = &oj.Options{Sort: true}

// Canonical returns the deterministic string form of v: JSON with sorted
// map keys over the normalized value.
func Canonical(v any) string {
	return oj.JSON(Normalize(v), canonicalOptions)
}

// GenerateKey returns the content hash of data. Structurally equal input
// always produces the same key.
func GenerateKey(data ...any) string {
	sum := blake2b.Sum256([]byte(Canonical(data)))
	return hex.EncodeToString(sum[:16])
}

// ============================================================================
// TAGGED VALUES - ordering tiers
// ============================================================================

// Tier is the precedence class of a value when groups are ordered.
type Tier int

const (
	TierNumber    Tier = iota // digit-only string form, compared as integers
	TierText                  // other scalars, compared as strings
	TierNull                  // nil, compared as "None"
	TierComposite             // maps and sequences, compared as canonical strings
)

// Value is the ordering view of an extracted value, computed once.
type Value struct {
	Tier Tier
	// Text is the comparison string. For TierNumber it holds the digits
	// without leading zeros.
	Text string
}

// Classify assigns a normalized value to its tier.
func Classify(v any) Value {
	switch t := v.(type) {
	case nil:
		return Value{Tier: TierNull, Text: "None"}
	case map[string]any, Record, []any:
		return Value{Tier: TierComposite, Text: Canonical(t)}
	case bool:
		// capitalized so booleans sort ahead of lowercase text
		if t {
			return Value{Tier: TierText, Text: "True"}
		}
		return Value{Tier: TierText, Text: "False"}
	}
	s := FormatScalar(v)
	if isDigits(s) {
		return Value{Tier: TierNumber, Text: trimZeros(s)}
	}
	return Value{Tier: TierText, Text: s}
}

// Compare orders two classified values: by tier, then within the tier.
func Compare(a, b Value) int {
	if a.Tier != b.Tier {
		if a.Tier < b.Tier {
			return -1
		}
		return 1
	}
	if a.Tier == TierNumber && len(a.Text) != len(b.Text) {
		if len(a.Text) < len(b.Text) {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Text, b.Text)
}

// FormatScalar returns the display form of a scalar. Integral floats keep a
// trailing ".0" so they never read as integers.
func FormatScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return "None"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e16 {
			return strconv.FormatFloat(t, 'f', 1, 64)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func trimZeros(s string) string {
	t := strings.TrimLeft(s, "0")
	if t == "" {
		return "0"
	}
	return t
}
