package schema

import (
	"regexp"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/spektr-org/vizgroup/engine"
)

// ============================================================================
// AUTO-DISCOVERY - heuristic classification of field paths
// ============================================================================
// Walks nested records and reports every dot path with its kind and
// cardinality. No configuration needed.
//
// Classification pipeline per path:
//   1. Collect values (missing counts as null, as it does when grouping)
//   2. Detect kind (number, string, bool, composite, mixed)
//   3. Kind + cardinality → groupable or skipped with a reason
//   4. Pattern matching → temporal strings
//   5. Functional dependencies → parent paths
// ============================================================================

// DiscoverOptions controls discovery behavior.
type DiscoverOptions struct {
	SampleSize int      // Max records to inspect (0 = all). Default: 1000
	MaxSamples int      // Sample values kept per path. Default: 10
	Include    []string // Force paths that were auto-skipped back to groupable
}

// DefaultDiscoverOptions returns sensible defaults.
func DefaultDiscoverOptions() DiscoverOptions {
	return DiscoverOptions{
		SampleSize: 1000,
		MaxSamples: 10,
	}
}

// Discover inspects records and describes their field paths, sorted by path.
func Discover(records []engine.Record, opts ...DiscoverOptions) *Report {
	opt := DefaultDiscoverOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.MaxSamples <= 0 {
		opt.MaxSamples = 10
	}
	if opt.SampleSize > 0 && len(records) > opt.SampleSize {
		records = records[:opt.SampleSize]
	}

	// 1. Collect leaf paths
	seen := make(map[string]bool)
	var paths []string
	for _, r := range records {
		collectPaths("", r, seen, &paths)
	}
	sort.Strings(paths)

	// 2. Analyze each path
	fields := make([]*pathAnalysis, len(paths))
	for i, p := range paths {
		fields[i] = analyzePath(p, records, opt.MaxSamples)
	}

	// 3. Apply include overrides
	include := make(map[string]bool, len(opt.Include))
	for _, p := range opt.Include {
		include[p] = true
	}
	for _, f := range fields {
		if !f.meta.Groupable && f.meta.Recoverable && include[f.meta.Path] {
			f.meta.Groupable = true
			f.meta.SkipReason = ""
		}
	}

	// 4. Detect hierarchies
	detectHierarchies(fields)

	report := &Report{Records: len(records), Fields: make([]FieldMeta, len(fields))}
	for i, f := range fields {
		report.Fields[i] = f.meta
	}
	return report
}

// collectPaths records every leaf path of m. Objects are descended into;
// anything else, lists included, is a leaf. A path that holds an object in
// one record and a scalar in another appears both as leaf and as prefix.
func collectPaths(prefix string, m map[string]any, seen map[string]bool, paths *[]string) {
	for k, v := range m {
		p := k
		if prefix != "" {
			p = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok && len(sub) > 0 {
			collectPaths(p, sub, seen, paths)
			continue
		}
		if !seen[p] {
			seen[p] = true
			*paths = append(*paths, p)
		}
	}
}

// ============================================================================
// PATH ANALYSIS
// ============================================================================

type pathAnalysis struct {
	meta   FieldMeta
	values []string // per record comparison text, "" when null
}

// analyzePath inspects the values at one path and classifies it.
func analyzePath(path string, records []engine.Record, maxSamples int) *pathAnalysis {
	a := &pathAnalysis{
		meta:   FieldMeta{Path: path, DisplayName: toDisplayName(path)},
		values: make([]string, len(records)),
	}

	unique := make(map[string]string) // canonical form -> sample text
	kinds := make(map[Kind]int)
	hasDecimals := false
	var strs []string

	for i, r := range records {
		v := engine.Find(r, path)
		if v == nil {
			a.meta.Nulls++
			continue
		}
		k := kindOf(v)
		kinds[k]++
		if f, ok := v.(float64); ok && f != float64(int64(f)) {
			hasDecimals = true
		}
		// canonical form keeps "007" and 7 apart, as the engine's group keys do
		key := engine.Canonical(v)
		if s, ok := v.(string); ok {
			strs = append(strs, s)
		}
		a.values[i] = key
		unique[key] = sampleText(v)
	}
	a.meta.Distinct = len(unique)
	a.meta.Samples = collectSamples(unique, maxSamples)

	switch len(kinds) {
	case 0:
		a.meta.Kind = KindNull
	case 1:
		for k := range kinds {
			a.meta.Kind = k
		}
	default:
		a.meta.Kind = KindMixed
	}

	if a.meta.Kind == KindString {
		a.meta.IsTemporal, a.meta.TemporalFormat = detectTemporalPattern(a.meta.Samples)
		if !a.meta.IsTemporal && len(strs) > 0 && dateCount(strs) >= int(float64(len(strs))*0.8) {
			a.meta.IsTemporal = true
		}
	}

	a.classify(len(records), hasDecimals)

	switch {
	case a.meta.Distinct <= 10:
		a.meta.CardinalityHint = "low"
	case a.meta.Distinct <= 100:
		a.meta.CardinalityHint = "medium"
	default:
		a.meta.CardinalityHint = "high"
	}
	return a
}

func kindOf(v any) Kind {
	switch v.(type) {
	case bool:
		return KindBool
	case int64, float64:
		return KindNumber
	case string:
		return KindString
	}
	return KindComposite
}

// classify decides whether grouping by the path is useful.
func (a *pathAnalysis) classify(total int, hasDecimals bool) {
	m := &a.meta
	m.Groupable = true

	switch {
	case m.Kind == KindNull:
		m.Groupable = false
		m.SkipReason = "All values are empty/null"
		return
	case m.Distinct == total && total > 10:
		// Every value unique → likely an ID
		m.Groupable = false
		m.SkipReason = "Unique per record, likely an identifier"
		return
	}

	ratio := float64(m.Distinct) / float64(total)
	switch m.Kind {
	case KindNumber:
		// Continuous data produces a group per value
		if hasDecimals && m.Distinct > 20 && ratio >= 0.3 {
			m.Groupable = false
			m.SkipReason = "Continuous values, one group per record"
			m.Recoverable = true
		}
	case KindString, KindComposite, KindMixed:
		if m.Distinct > total/2 && m.Distinct > 50 {
			m.Groupable = false
			m.SkipReason = "High cardinality, not useful for grouping"
			m.Recoverable = true
		}
	}
}

// ============================================================================
// SPECIAL PATTERN DETECTION
// ============================================================================

var monthPatterns = []struct {
	re     *regexp.Regexp
	format string
}{
	{regexp.MustCompile(`^[A-Z][a-z]{2}-\d{4}$`), "MMM-yyyy"},  // Jan-2026
	{regexp.MustCompile(`^\d{4}-\d{2}$`), "yyyy-MM"},           // 2026-01
	{regexp.MustCompile(`^Q[1-4]-\d{4}$`), "QN-yyyy"},          // Q1-2026
	{regexp.MustCompile(`^Q[1-4]\s+\d{4}$`), "QN yyyy"},        // Q1 2026
	{regexp.MustCompile(`^[A-Z][a-z]+ \d{4}$`), "MMMM yyyy"},   // January 2026
}

// detectTemporalPattern checks if values match known month/quarter patterns.
func detectTemporalPattern(samples []string) (bool, string) {
	if len(samples) == 0 {
		return false, ""
	}
	for _, pattern := range monthPatterns {
		matches := 0
		for _, s := range samples {
			if pattern.re.MatchString(strings.TrimSpace(s)) {
				matches++
			}
		}
		if float64(matches)/float64(len(samples)) >= 0.8 {
			return true, pattern.format
		}
	}
	return false, ""
}

var dateFormats = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

func dateCount(values []string) int {
	n := 0
	for _, v := range values {
		if isDate(v) {
			n++
		}
	}
	return n
}

func isDate(s string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// ============================================================================
// HIERARCHY DETECTION
// ============================================================================

// detectHierarchies finds parent/child relationships between groupable paths.
// If every value of path B maps to exactly one value of path A, and A has
// fewer distinct values, then A is parent of B. When multiple valid parents
// exist, picks the closest (highest cardinality).
func detectHierarchies(fields []*pathAnalysis) {
	for _, child := range fields {
		if !child.meta.Groupable {
			continue
		}
		var best *pathAnalysis
		for _, parent := range fields {
			if parent == child || !parent.meta.Groupable {
				continue
			}
			if parent.meta.Distinct >= child.meta.Distinct || parent.meta.Distinct < 2 {
				continue
			}
			if !determines(parent.values, child.values) {
				continue
			}
			if best == nil || parent.meta.Distinct > best.meta.Distinct {
				best = parent
			}
		}
		if best != nil {
			child.meta.Parent = best.meta.Path
		}
	}
}

// determines reports whether each child value co-occurs with one parent value.
func determines(parent, child []string) bool {
	childToParent := make(map[string]string)
	for i := range child {
		c, p := child[i], parent[i]
		if c == "" || p == "" {
			continue
		}
		if existing, ok := childToParent[c]; ok {
			if existing != p {
				return false
			}
		} else {
			childToParent[c] = p
		}
	}
	return len(childToParent) > 1
}

// ============================================================================
// STRING UTILITIES
// ============================================================================

// toDisplayName cleans a path for human display.
// "run.hparams.learning_rate" → "Run Hparams Learning Rate"
func toDisplayName(s string) string {
	s = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(s)
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// sampleText is the display form of a value in Samples.
func sampleText(v any) string {
	switch v.(type) {
	case map[string]any, []any:
		return engine.Canonical(v)
	}
	return engine.FormatScalar(v)
}

// collectSamples picks up to maxSamples representative values.
func collectSamples(unique map[string]string, maxSamples int) []string {
	samples := make([]string, 0, len(unique))
	for _, v := range unique {
		samples = append(samples, v)
	}

	// Sort for deterministic output
	sort.Strings(samples)
	samples = slices.Compact(samples)

	if len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}
	return samples
}
