package schema

import "sort"

// ============================================================================
// SCHEMA - Describes the field paths present in a record set
// ============================================================================
// Produced by Discover. Callers use it to pick grouping paths: which fields
// exist, what they hold, and whether partitioning by them gives a readable
// number of groups.
// ============================================================================

// Kind is the value kind observed at a path.
type Kind string

const (
	KindNumber    Kind = "number"
	KindString    Kind = "string"
	KindBool      Kind = "bool"
	KindComposite Kind = "composite" // list or object leaf
	KindNull      Kind = "null"      // never holds a value
	KindMixed     Kind = "mixed"
)

// FieldMeta describes one dot path.
type FieldMeta struct {
	Path            string   `json:"path" yaml:"path"`
	DisplayName     string   `json:"displayName" yaml:"displayName"`
	Kind            Kind     `json:"kind" yaml:"kind"`
	Distinct        int      `json:"distinct" yaml:"distinct"`
	Nulls           int      `json:"nulls" yaml:"nulls"`
	Samples         []string `json:"samples" yaml:"samples"`
	Groupable       bool     `json:"groupable" yaml:"groupable"`
	SkipReason      string   `json:"skipReason,omitempty" yaml:"skipReason,omitempty"`
	Recoverable     bool     `json:"recoverable,omitempty" yaml:"recoverable,omitempty"` // can be forced back with DiscoverOptions.Include
	IsTemporal      bool     `json:"isTemporal,omitempty" yaml:"isTemporal,omitempty"`
	TemporalFormat  string   `json:"temporalFormat,omitempty" yaml:"temporalFormat,omitempty"`
	CardinalityHint string   `json:"cardinalityHint,omitempty" yaml:"cardinalityHint,omitempty"` // "low", "medium", "high"
	Parent          string   `json:"parent,omitempty" yaml:"parent,omitempty"`                   // coarser path that determines this one
}

// Report is the outcome of a discovery pass.
type Report struct {
	Records int         `json:"records" yaml:"records"`
	Fields  []FieldMeta `json:"fields" yaml:"fields"`
}

// Field returns the metadata of a path.
func (r *Report) Field(path string) (FieldMeta, bool) {
	i := sort.Search(len(r.Fields), func(i int) bool { return r.Fields[i].Path >= path })
	if i < len(r.Fields) && r.Fields[i].Path == path {
		return r.Fields[i], true
	}
	return FieldMeta{}, false
}

// GroupablePaths returns the paths suitable for grouping, low cardinality
// first.
func (r *Report) GroupablePaths() []string {
	var fields []FieldMeta
	for _, f := range r.Fields {
		if f.Groupable {
			fields = append(fields, f)
		}
	}
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].Distinct < fields[j].Distinct
	})
	paths := make([]string, len(fields))
	for i, f := range fields {
		paths[i] = f.Path
	}
	return paths
}

// Paths returns every discovered path.
func (r *Report) Paths() []string {
	paths := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		paths[i] = f.Path
	}
	return paths
}
