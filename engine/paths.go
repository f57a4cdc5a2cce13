package engine

import (
	"strings"

	"github.com/ohler55/ojg/jp"
)

// fieldPath is a dot-notation path compiled to a JSONPath child chain.
// Only maps are traversed: a segment applied to a sequence or scalar misses.
type fieldPath struct {
	raw  string
	expr jp.Expr
}

func compilePath(path string, stripPrefixes []string) fieldPath {
	p := path
	for _, prefix := range stripPrefixes {
		if prefix != "" && strings.HasPrefix(p, prefix) {
			p = strings.TrimPrefix(p, prefix)
			break
		}
	}
	x := jp.R()
	for _, seg := range strings.Split(p, ".") {
		x = x.C(seg)
	}
	return fieldPath{raw: path, expr: x}
}

// resolve returns the value at the path and whether it was found.
func (f fieldPath) resolve(r Record) (any, bool) {
	got := f.expr.Get(map[string]any(r))
	if len(got) == 0 {
		return nil, false
	}
	return got[0], true
}

// Find resolves a dot-notation path against a record, returning nil when any
// segment is missing.
func Find(r Record, path string) any {
	v, _ := compilePath(path, nil).resolve(r)
	return v
}
