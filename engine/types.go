package engine

import (
	"fmt"
	"reflect"
	"strings"
)

// ============================================================================
// VIZGROUP ENGINE TYPES - Grouping and visual encoding
// ============================================================================
// Records are schemaless maps. A GroupSpec turns each record into an ordered
// sequence of values; the content hash of that sequence is the GroupKey.
// ============================================================================

// Record is a single schemaless data row. Values are strings, numbers,
// booleans, nil, nested maps or sequences.
type Record map[string]any

// GroupKey identifies one group: the content hash of its extracted values.
type GroupKey string

// KeyFunc computes a grouping value for a record. Booleans are normalized to
// 0/1; integer results are used directly as palette ordinals.
type KeyFunc func(Record) any

// SpecKind tags the variant held by a GroupSpec.
type SpecKind int

const (
	// SpecFieldPaths groups by an ordered list of dot-notation field paths.
	SpecFieldPaths SpecKind = iota
	// SpecFunc groups by the value a KeyFunc returns.
	SpecFunc
)

// GroupSpec is the rule used to compute a record's group identity.
// The zero value groups by an empty path list, which puts every record in a
// single group.
type GroupSpec struct {
	kind  SpecKind
	paths []string
	name  string
	fn    KeyFunc
}

// ByFieldPaths groups by the values found at the given dot-notation paths,
// e.g. "run.hparams.lr".
func ByFieldPaths(paths ...string) GroupSpec {
	return GroupSpec{kind: SpecFieldPaths, paths: append([]string(nil), paths...)}
}

// ByFunc groups by the value fn returns. The name takes part in memoization:
// two closures sharing code but capturing different state need distinct names.
func ByFunc(name string, fn KeyFunc) GroupSpec {
	return GroupSpec{kind: SpecFunc, name: name, fn: fn}
}

// IsFunc reports whether the spec is function based.
func (s GroupSpec) IsFunc() bool { return s.kind == SpecFunc && s.fn != nil }

// String describes the spec for the *_options annotations.
func (s GroupSpec) String() string {
	if s.IsFunc() {
		return "func:" + s.name
	}
	return strings.Join(s.paths, ",")
}

// Options returns the spec in the shape recorded next to encoded values:
// the path list, or the function name.
func (s GroupSpec) Options() any {
	if s.IsFunc() {
		return s.name
	}
	out := make([]any, len(s.paths))
	for i, p := range s.paths {
		out[i] = p
	}
	return out
}

// identity is the spec's contribution to memoization keys.
func (s GroupSpec) identity() string {
	if s.IsFunc() {
		return fmt.Sprintf("func:%s:%x", s.name, reflect.ValueOf(s.fn).Pointer())
	}
	return "paths:" + Canonical(s.Options())
}

// ============================================================================
// GROUP RESULT
// ============================================================================

// GroupDescriptor describes one distinct group.
type GroupDescriptor struct {
	Key    GroupKey  `json:"key"`
	Spec   GroupSpec `json:"-"`
	Values []any     `json:"values"`
	// Order is the value used for visual lookup: the integer rank for field
	// path specs, the raw function value for function specs.
	Order any `json:"order"`
	// Rank is the position of the group in legend order.
	Rank int `json:"rank"`
}

// GroupResult is the outcome of Engine.Group. Results may be shared through
// the memo cache; callers must treat them as read-only.
type GroupResult struct {
	Name    string                        `json:"name"`
	Groups  map[GroupKey]*GroupDescriptor `json:"groups"`
	Keys    []GroupKey                    `json:"keys"` // legend order
	Records []Record                      `json:"records"`
}

// Len returns the number of distinct groups.
func (r *GroupResult) Len() int { return len(r.Keys) }

// Ordered returns the descriptors in legend order.
func (r *GroupResult) Ordered() []*GroupDescriptor {
	out := make([]*GroupDescriptor, 0, len(r.Keys))
	for _, k := range r.Keys {
		out = append(out, r.Groups[k])
	}
	return out
}

// Lookup returns the descriptor of the i-th annotated record.
func (r *GroupResult) Lookup(i int) *GroupDescriptor {
	if i < 0 || i >= len(r.Records) {
		return nil
	}
	key, _ := r.Records[i][r.Name].(string)
	return r.Groups[GroupKey(key)]
}

// TraversalMiss reports a field path that could not be resolved on a record.
type TraversalMiss struct {
	Attribute string
	Path      string
	Record    int
}

func (m TraversalMiss) String() string {
	return fmt.Sprintf("%s: path %q missing on record %d", m.Attribute, m.Path, m.Record)
}
