package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// GROUPING TESTS
// ============================================================================

func orderedValues(r *GroupResult, pos int) []any {
	out := []any{}
	for _, g := range r.Ordered() {
		out = append(out, g.Values[pos])
	}
	return out
}

func TestGroupNumericBeforeText(t *testing.T) {
	eng := New(WithCacheSize(0))
	records := []Record{{"a": 2}, {"a": 1}, {"a": 10}, {"a": "x"}}

	res := eng.Group("color", records, ByFieldPaths("a"), "")

	require.Equal(t, 4, res.Len())
	assert.Equal(t, []any{int64(1), int64(2), int64(10), "x"}, orderedValues(res, 0))
	for i, g := range res.Ordered() {
		assert.Equal(t, i, g.Order)
		assert.Equal(t, i, g.Rank)
	}
}

func TestGroupTierPrecedence(t *testing.T) {
	eng := New(WithCacheSize(0))
	records := []Record{
		{"a": nil},
		{"a": []any{1, 2}},
		{"a": "b"},
		{"a": 3},
		{"a": "007"},
		{"a": -4},
	}

	res := eng.Group("g", records, ByFieldPaths("a"), "")

	assert.Equal(t, []any{int64(3), "007", int64(-4), "b", nil, []any{int64(1), int64(2)}},
		orderedValues(res, 0))
}

func TestGroupMissingPathIsSingleGroup(t *testing.T) {
	var misses []TraversalMiss
	eng := New(WithCacheSize(0), WithMissHandler(func(m TraversalMiss) { misses = append(misses, m) }))
	records := []Record{{"a": 1}, {"b": map[string]any{"c": 2}}, {"missing": "scalar"}}

	res := eng.Group("row", records, ByFieldPaths("missing.field"), "")

	require.Equal(t, 1, res.Len())
	assert.Equal(t, []any{nil}, res.Ordered()[0].Values)
	assert.Equal(t, 0, res.Ordered()[0].Order)
	require.Len(t, misses, 3)
	assert.Equal(t, TraversalMiss{Attribute: "row", Path: "missing.field", Record: 2}, misses[2])
}

func TestGroupNestedPathsAndSequences(t *testing.T) {
	eng := New(WithCacheSize(0))
	records := []Record{
		{"run": map[string]any{"hparams": map[string]any{"lr": 0.1}}},
		{"run": map[string]any{"hparams": map[string]any{"lr": 0.01}}},
		{"run": []any{map[string]any{"hparams": 1}}},
	}

	res := eng.Group("color", records, ByFieldPaths("run.hparams.lr"), "")

	require.Equal(t, 3, res.Len())
	assert.Equal(t, []any{0.01, 0.1, nil}, orderedValues(res, 0))
}

func TestGroupLastPathDominates(t *testing.T) {
	eng := New(WithCacheSize(0))
	records := []Record{{"a": 1, "b": 2}, {"a": 1, "b": 1}}

	res := eng.Group("color", records, ByFieldPaths("a", "b"), "")

	require.Equal(t, 2, res.Len())
	assert.Equal(t, 1, res.Lookup(0).Order)
	assert.Equal(t, 0, res.Lookup(1).Order)

	// earlier paths only break ties of later ones
	records = []Record{{"a": 2, "b": 1}, {"a": 1, "b": 1}, {"a": 0, "b": 2}}
	res = eng.Group("color", records, ByFieldPaths("a", "b"), "")
	assert.Equal(t, []any{int64(1), int64(2), int64(0)}, orderedValues(res, 0))
}

func TestGroupIndependentOfRecordOrder(t *testing.T) {
	eng := New(WithCacheSize(0))
	records := []Record{}
	for i := 0; i < 40; i++ {
		records = append(records, Record{
			"a": i % 3,
			"b": []string{"x", "y", "1", "01"}[i%4],
			"c": map[bool]any{true: nil, false: i % 2}[i%5 == 0],
		})
	}
	spec := ByFieldPaths("a", "b", "c")
	want := eng.Group("g", records, spec, "")

	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 5; trial++ {
		shuffled := append([]Record(nil), records...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got := eng.Group("g", shuffled, spec, "")
		require.Equal(t, want.Keys, got.Keys)
		for k, g := range want.Groups {
			assert.Equal(t, g.Order, got.Groups[k].Order)
			assert.Equal(t, g.Values, got.Groups[k].Values)
		}
	}
}

func TestGroupStampsCopies(t *testing.T) {
	eng := New(WithCacheSize(0))
	nested := map[string]any{"name": "loss"}
	records := []Record{{"metric": nested, "step": 3}}

	res := eng.Group("color", records, ByFieldPaths("metric.name"), "")

	_, stamped := records[0]["color"]
	assert.False(t, stamped, "caller record must not be annotated")
	require.Contains(t, res.Records[0], "color")
	assert.Equal(t, string(res.Keys[0]), res.Records[0]["color"])

	res.Records[0]["metric"].(map[string]any)["name"] = "changed"
	assert.Equal(t, "loss", nested["name"])
}

func TestGroupByFunc(t *testing.T) {
	eng := New(WithCacheSize(0))
	records := []Record{{"v": 5}, {"v": 1}, {"v": 7}}

	res := eng.Group("color", records, ByFunc("gt3", func(r Record) any {
		return r["v"].(int64) > 3
	}), "")

	require.Equal(t, 2, res.Len())
	assert.Equal(t, int64(1), res.Lookup(0).Order)
	assert.Equal(t, int64(0), res.Lookup(1).Order)
	assert.Equal(t, int64(1), res.Lookup(2).Order)
	// legend order is descending by value
	assert.Equal(t, 0, res.Lookup(0).Rank)
	assert.Equal(t, 1, res.Lookup(1).Rank)
}

func TestGroupByFuncPassThroughColor(t *testing.T) {
	eng := New(WithCacheSize(0))
	records := []Record{{"ok": true}, {"ok": false}}

	res := eng.Group("color", records, ByFunc("status", func(r Record) any {
		if r["ok"].(bool) {
			return "#00ff00"
		}
		return "#ff0000"
	}), "")

	assert.Equal(t, "#00ff00", ApplyGroupValuePattern(res.Lookup(0).Order, []string{"a", "b"}))
	assert.Equal(t, "#ff0000", ApplyGroupValuePattern(res.Lookup(1).Order, []string{"a", "b"}))
	assert.Equal(t, []GroupKey{res.Lookup(1).Key, res.Lookup(0).Key}, res.Keys)
}

func TestGroupEmptySpec(t *testing.T) {
	eng := New(WithCacheSize(0))
	res := eng.Group("stroke_style", []Record{{"a": 1}, {"a": 2}}, GroupSpec{}, "")

	require.Equal(t, 1, res.Len())
	assert.Equal(t, 0, res.Lookup(1).Order)
}

func TestGroupStripPrefixes(t *testing.T) {
	eng := New(WithCacheSize(0), WithStripPrefixes("metric."))
	records := []Record{{"name": "loss"}, {"name": "acc"}}

	res := eng.Group("color", records, ByFieldPaths("metric.name"), "")

	assert.Equal(t, []any{"acc", "loss"}, orderedValues(res, 0))
}

// ============================================================================
// MEMOIZATION TESTS
// ============================================================================

func TestGroupMemoReturnsSameResult(t *testing.T) {
	eng := New()
	spec := ByFieldPaths("a")

	first := eng.Group("color", []Record{{"a": 1}, {"a": 2}}, spec, "LineChart0")
	second := eng.Group("color", []Record{{"a": 1}, {"a": 2}}, ByFieldPaths("a"), "LineChart0")
	assert.Same(t, first, second)

	other := eng.Group("color", []Record{{"a": 1}, {"a": 2}}, spec, "LineChart1")
	assert.NotSame(t, first, other)

	renamed := eng.Group("stroke_style", []Record{{"a": 1}, {"a": 2}}, spec, "LineChart0")
	assert.NotSame(t, first, renamed)
	assert.Equal(t, 3, eng.Memo().Len())
}

func TestGroupMemoDistinguishesFuncNames(t *testing.T) {
	eng := New()
	records := []Record{{"a": 1}}
	fn := func(r Record) any { return r["a"] }

	a := eng.Group("color", records, ByFunc("one", fn), "")
	b := eng.Group("color", records, ByFunc("two", fn), "")
	assert.NotSame(t, a, b)
	assert.Same(t, a, eng.Group("color", records, ByFunc("one", fn), ""))
}

func TestGroupMemoEvictsLeastRecentlyUsed(t *testing.T) {
	eng := New(WithCacheSize(1))
	spec := ByFieldPaths("a")

	first := eng.Group("color", []Record{{"a": 1}}, spec, "")
	eng.Group("color", []Record{{"a": 2}}, spec, "")
	again := eng.Group("color", []Record{{"a": 1}}, spec, "")

	assert.NotSame(t, first, again)
	assert.Equal(t, first.Keys, again.Keys)
	assert.Equal(t, 1, eng.Memo().Len())
}

func TestSharedMemo(t *testing.T) {
	memo := NewMemo[*GroupResult](8, New().log)
	a := New(WithMemo(memo))
	b := New(WithMemo(memo))

	r := a.Group("color", []Record{{"a": 1}}, ByFieldPaths("a"), "")
	assert.Same(t, r, b.Group("color", []Record{{"a": 1}}, ByFieldPaths("a"), ""))

	memo.Purge()
	assert.Equal(t, 0, memo.Len())
	assert.Nil(t, NewMemo[*GroupResult](0, New().log))
}
