package engine

import (
	"github.com/go-logr/logr"
)

// ============================================================================
// ENGINE OPTIONS - Functional options for New()
// ============================================================================

// DefaultCacheSize is the memo capacity used when no cache option is given.
const DefaultCacheSize = 256

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	Logger        logr.Logger
	CacheSize     int
	Memo          *Memo[*GroupResult]
	StripPrefixes []string
	OnMiss        func(TraversalMiss)
}

// WithLogger sets the logger. Traversal misses are logged at V(1), memo
// traffic at V(2).
func WithLogger(log logr.Logger) Option {
	return func(c *config) {
		c.Logger = log
	}
}

// WithCacheSize bounds the memo cache. A size of zero or less disables
// memoization.
func WithCacheSize(size int) Option {
	return func(c *config) {
		c.CacheSize = size
	}
}

// WithMemo injects a memo cache, e.g. to share one between engines.
// It takes precedence over WithCacheSize.
func WithMemo(m *Memo[*GroupResult]) Option {
	return func(c *config) {
		c.Memo = m
	}
}

// WithStripPrefixes removes a leading prefix from field paths before they are
// resolved, e.g. "metric." when records are metric objects themselves.
func WithStripPrefixes(prefixes ...string) Option {
	return func(c *config) {
		c.StripPrefixes = append(c.StripPrefixes, prefixes...)
	}
}

// WithMissHandler registers a callback for field paths that did not resolve.
func WithMissHandler(fn func(TraversalMiss)) Option {
	return func(c *config) {
		c.OnMiss = fn
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Logger:    logr.Discard(),
		CacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
