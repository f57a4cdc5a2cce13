package query

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/ohler55/ojg/jp"

	"github.com/spektr-org/vizgroup/engine"
)

// ============================================================================
// QUERY - object collections backed by a Searcher
// ============================================================================
// The host owns search. Collections only stamp what the layout needs: the
// object type and a positional key.
// ============================================================================

// Searcher returns the records of one object type matching a query.
type Searcher interface {
	Search(ctx context.Context, objectType, query string) ([]engine.Record, error)
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, objectType, query string) ([]engine.Record, error)

// Search calls f.
func (f SearcherFunc) Search(ctx context.Context, objectType, query string) ([]engine.Record, error) {
	return f(ctx, objectType, query)
}

// Built-in object types.
const (
	TypeMetric        = "metric"
	TypeImages        = "images"
	TypeFigures       = "figures"
	TypeAudios        = "audios"
	TypeTexts         = "texts"
	TypeDistributions = "distributions"
)

// Types lists the built-in object types.
var Types = []string{TypeMetric, TypeImages, TypeFigures, TypeAudios, TypeTexts, TypeDistributions}

// Collection is a queryable object type holding its last result.
type Collection struct {
	Type  string
	Items []engine.Record
}

// NewCollection creates a collection for an object type.
func NewCollection(objectType string) *Collection {
	return &Collection{Type: objectType}
}

// Query searches for items and stamps each with "type" and its index "key".
func (c *Collection) Query(ctx context.Context, s Searcher, q string) ([]engine.Record, error) {
	found, err := s.Search(ctx, c.Type, q)
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", c.Type)
	}
	items := make([]engine.Record, 0, len(found))
	for i, r := range found {
		item := engine.CopyRecord(r)
		item["type"] = c.Type
		item["key"] = int64(i)
		items = append(items, item)
	}
	c.Items = items
	return items, nil
}

// ============================================================================
// JSONPATH FILTER - query language of the local searchers
// ============================================================================

// ErrNotRecord is returned when a query selects values that are not objects.
var ErrNotRecord = errors.New("query selected a non-object value")

// Filter applies a JSONPath query to a record list. The list is the query
// root, so "$[?(@.name == 'loss')]" keeps the loss metrics. An empty query
// returns every record.
func Filter(records []engine.Record, q string) ([]engine.Record, error) {
	if q == "" {
		return records, nil
	}
	x, err := jp.ParseString(q)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid query %q", q)
	}

	root := make([]any, len(records))
	for i, r := range records {
		root[i] = map[string]any(r)
	}
	selected := x.Get(root)

	out := make([]engine.Record, 0, len(selected))
	for _, v := range selected {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, errors.Wrapf(ErrNotRecord, "%q selected %T", q, v)
		}
		out = append(out, m)
	}
	return out, nil
}
