package engine

import (
	"slices"
	"strings"

	"github.com/go-logr/logr"
)

// ============================================================================
// GROUPING ENGINE - Group(name, records, spec, cacheKey)
// ============================================================================
// Pipeline:
//   1. Deep-copy records (normalized, caller data untouched)
//   2. Extract one value sequence per record (field paths or key function)
//   3. GroupKey = content hash of the sequence, stamped onto record[name]
//   4. Order groups deterministically and assign Order/Rank
//   5. Memoize the result on the hash of the full argument tuple
// ============================================================================

// Engine groups records and assigns visual ordinals.
type Engine struct {
	cfg  *config
	log  logr.Logger
	memo *Memo[*GroupResult]
}

// New creates an Engine.
//
// Options:
//   - WithCacheSize(n) / WithMemo(m) - memoization (default LRU of 256 results)
//   - WithStripPrefixes(p...) - path prefixes removed before resolution
//   - WithMissHandler(fn) - receives unresolved field paths
//   - WithLogger(l) - logr logger
func New(opts ...Option) *Engine {
	cfg := applyOptions(opts)
	memo := cfg.Memo
	if memo == nil {
		memo = NewMemo[*GroupResult](cfg.CacheSize, cfg.Logger.WithName("memo"))
	}
	return &Engine{cfg: cfg, log: cfg.Logger, memo: memo}
}

// Memo returns the engine's memo cache, nil when memoization is disabled.
func (e *Engine) Memo() *Memo[*GroupResult] { return e.memo }

// Group partitions records by spec and stamps each copied record with its
// GroupKey under name. Structurally equal calls return the identical result.
// It never fails: unresolved paths group as nil.
func (e *Engine) Group(name string, records []Record, spec GroupSpec, cacheKey string) *GroupResult {
	items := CopyRecords(records)
	if e.memo == nil {
		return e.group(name, items, spec)
	}
	args := GenerateKey(name, items, spec.identity(), cacheKey)
	return e.memo.Do("group", args, func() *GroupResult {
		return e.group(name, items, spec)
	})
}

func (e *Engine) group(name string, items []Record, spec GroupSpec) *GroupResult {
	result := &GroupResult{
		Name:    name,
		Groups:  make(map[GroupKey]*GroupDescriptor),
		Records: items,
	}

	var paths []fieldPath
	if !spec.IsFunc() {
		paths = make([]fieldPath, len(spec.paths))
		for i, p := range spec.paths {
			paths[i] = compilePath(p, e.cfg.StripPrefixes)
		}
	}

	for i, item := range items {
		var values []any
		if spec.IsFunc() {
			values = []any{funcValue(spec.fn(item))}
		} else {
			values = make([]any, len(paths))
			for j, p := range paths {
				v, ok := p.resolve(item)
				if !ok {
					e.miss(TraversalMiss{Attribute: name, Path: p.raw, Record: i})
				}
				values[j] = v
			}
		}

		key := GroupKey(GenerateKey(values...))
		if _, ok := result.Groups[key]; !ok {
			result.Groups[key] = &GroupDescriptor{Key: key, Spec: spec, Values: values}
			result.Keys = append(result.Keys, key)
		}
		item[name] = string(key)
	}

	if spec.IsFunc() {
		orderByValue(result)
	} else {
		orderByFieldPaths(result, len(paths))
	}

	e.log.V(1).Info("grouped records", "name", name, "spec", spec.String(),
		"records", len(items), "groups", len(result.Keys))
	return result
}

func (e *Engine) miss(m TraversalMiss) {
	e.log.V(1).Info("field path not resolved", "attribute", m.Attribute, "path", m.Path, "record", m.Record)
	if e.cfg.OnMiss != nil {
		e.cfg.OnMiss(m)
	}
}

// funcValue normalizes a key function result; booleans become 0/1 so they
// can index a palette.
func funcValue(v any) any {
	if b, ok := v.(bool); ok {
		if b {
			return int64(1)
		}
		return int64(0)
	}
	return Normalize(v)
}

// ============================================================================
// ORDERING
// ============================================================================

// orderByValue sorts function-spec groups by the string form of their values,
// descending. Rank follows that order; Order keeps the raw value.
func orderByValue(result *GroupResult) {
	text := make(map[GroupKey]string, len(result.Keys))
	for _, k := range result.Keys {
		text[k] = Canonical(result.Groups[k].Values)
	}
	slices.SortFunc(result.Keys, func(a, b GroupKey) int {
		if c := strings.Compare(text[b], text[a]); c != 0 {
			return c
		}
		return strings.Compare(string(a), string(b))
	})
	for i, k := range result.Keys {
		g := result.Groups[k]
		g.Rank = i
		g.Order = g.Values[0]
	}
}

// orderByFieldPaths sorts groups as if by successive stable sorts on each
// path position, so the last path dominates and earlier paths break ties.
// Remaining ties fall back to the key, which keeps the order independent of
// record order.
func orderByFieldPaths(result *GroupResult, n int) {
	classified := make(map[GroupKey][]Value, len(result.Keys))
	for _, k := range result.Keys {
		vals := make([]Value, n)
		for i, v := range result.Groups[k].Values {
			vals[i] = Classify(v)
		}
		classified[k] = vals
	}
	slices.SortFunc(result.Keys, func(a, b GroupKey) int {
		va, vb := classified[a], classified[b]
		for i := n - 1; i >= 0; i-- {
			if c := Compare(va[i], vb[i]); c != 0 {
				return c
			}
		}
		return strings.Compare(string(a), string(b))
	})
	for i, k := range result.Keys {
		g := result.Groups[k]
		g.Rank = i
		g.Order = i
	}
}
