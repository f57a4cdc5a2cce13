// Package vizgroup groups heterogeneous records into stable visual
// encodings.
//
// Usage:
//
//	import (
//	    "github.com/spektr-org/vizgroup/encode"
//	    "github.com/spektr-org/vizgroup/engine"
//	)
//
//	eng := engine.New(engine.WithCacheSize(512))
//	enc := encode.New(eng)
//	colored := enc.Encode("chart", records, encode.Color,
//	    engine.ByFieldPaths("run.hparams.lr"))
//
// The engine partitions records by field paths or key functions, orders the
// groups deterministically and hands out ordinals; the encode package maps
// ordinals onto color and dash palettes or facet positions. Layout, state and
// record sources live in the layout and query packages. Nothing here renders
// or talks to a network.
package vizgroup
