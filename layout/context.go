package layout

import (
	"maps"
	"sync"

	"github.com/go-logr/logr"

	"github.com/spektr-org/vizgroup/encode"
	"github.com/spektr-org/vizgroup/engine"
)

// ============================================================================
// RENDER CONTEXT - layout, state, key allocation and block ids in one place
// ============================================================================
// Blocks and components render into the Context they were created from.
// Separate contexts never share counters or cells.
// ============================================================================

// Context is the rendering session of one board.
type Context struct {
	Layout  *Layout
	State   *State
	Keys    *KeyAllocator
	Encoder *encode.Encoder

	log    logr.Logger
	mu     sync.Mutex
	blocks int64
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the context logger.
func WithLogger(log logr.Logger) Option {
	return func(c *Context) { c.log = log }
}

// NewContext creates a context rendering to sink and forwarding state to
// stateSink. Either sink may be nil.
func NewContext(enc *encode.Encoder, sink Sink, stateSink StateSink, opts ...Option) *Context {
	c := &Context{
		State:   NewState(stateSink),
		Keys:    NewKeyAllocator(),
		Encoder: enc,
		log:     logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Layout = New(sink, c.log.WithName("layout"))
	return c
}

// Element is anything that can be placed in a block.
type Element interface {
	SetParentBlock(ref BlockRef)
	Render() error
}

// ============================================================================
// BLOCKS
// ============================================================================

// Block types.
const (
	BlockRow    = "row"
	BlockColumn = "column"
)

// BlockRef identifies a block within its context.
type BlockRef struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

func (r BlockRef) value() map[string]any {
	return map[string]any{"id": r.ID, "type": r.Type}
}

func parentValue(r *BlockRef) any {
	if r == nil {
		return nil
	}
	return r.value()
}

// Block is a row or column container.
type Block struct {
	ctx    *Context
	Ref    BlockRef
	Key    string
	parent *BlockRef
}

// Row creates and renders a row block.
func (c *Context) Row() (*Block, error) { return c.NewBlock(BlockRow) }

// Column creates and renders a column block.
func (c *Context) Column() (*Block, error) { return c.NewBlock(BlockColumn) }

// NewBlock allocates the next block id, derives the block key from its
// reference and renders the block.
func (c *Context) NewBlock(typ string) (*Block, error) {
	c.mu.Lock()
	c.blocks++
	ref := BlockRef{ID: c.blocks, Type: typ}
	c.mu.Unlock()

	b := &Block{ctx: c, Ref: ref, Key: engine.GenerateKey(ref.value())}
	return b, b.Render()
}

// Add nests an element in the block and renders it.
func (b *Block) Add(el Element) error {
	el.SetParentBlock(b.Ref)
	return el.Render()
}

// SetParentBlock nests this block in another one.
func (b *Block) SetParentBlock(ref BlockRef) { b.parent = &ref }

// Parent returns the enclosing block, nil at top level.
func (b *Block) Parent() *BlockRef { return b.parent }

// Render writes the block cell.
func (b *Block) Render() error {
	return b.ctx.Layout.Upsert(Cell{
		"element":       "block",
		"block_context": b.Ref.value(),
		"key":           b.Key,
		"parent_block":  parentValue(b.parent),
	})
}

// ============================================================================
// COMPONENTS
// ============================================================================

// Component is a visualization cell holding encoded records.
type Component struct {
	ctx     *Context
	Key     string
	Type    string
	Data    []engine.Record
	Options map[string]any
	// NoFacet is cleared once a row or column grouping is applied.
	NoFacet bool
	parent  *BlockRef
}

// Component creates an unrendered component. An empty key is allocated from
// the type; previously stored state for the key is restored on render.
func (c *Context) Component(typ, key string, data []engine.Record) *Component {
	return &Component{
		ctx:     c,
		Key:     c.Keys.Next(typ, key),
		Type:    typ,
		Data:    data,
		Options: map[string]any{},
		NoFacet: true,
	}
}

// LineChart renders a line per record, colored and dashed by spec.
func (c *Context) LineChart(records []engine.Record, spec encode.LineSpec, key string) (*Component, error) {
	comp := c.Component("LineChart", key, nil)
	comp.Data = c.Encoder.Lines(comp.Key, records, spec)
	return comp, comp.Render()
}

// TextsList renders text records colored by spec.
func (c *Context) TextsList(records []engine.Record, color engine.GroupSpec, key string) (*Component, error) {
	comp := c.Component("TextsList", key, nil)
	comp.Data = c.Encoder.Texts(comp.Key, records, color)
	return comp, comp.Render()
}

// Union merges components into one cell. The merged components' own cells
// are removed.
func (c *Context) Union(key string, comps ...*Component) (*Component, error) {
	comp := c.Component("Union", key, nil)
	keys := make([]string, len(comps))
	for i, part := range comps {
		keys[i] = part.Key
		comp.Data = append(comp.Data, part.Data...)
		maps.Copy(comp.Options, part.Options)
	}
	if err := c.Layout.Remove(keys...); err != nil {
		return nil, err
	}
	return comp, comp.Render()
}

// SetParentBlock nests the component in a block.
func (comp *Component) SetParentBlock(ref BlockRef) { comp.parent = &ref }

// State returns the component's stored state.
func (comp *Component) State() map[string]any {
	return comp.ctx.State.Get(comp.Key)
}

// SetState merges partial into the component state.
func (comp *Component) SetState(partial map[string]any) error {
	return comp.ctx.State.Set(comp.Key, partial)
}

// Group encodes the component data on a channel and re-renders it.
func (comp *Component) Group(ch encode.Channel, spec engine.GroupSpec) error {
	enc := comp.ctx.Encoder.Encode(comp.Key, comp.Data, ch, spec)
	if enc.Faceted {
		comp.NoFacet = false
	}
	comp.Data = enc.Items
	comp.ctx.log.V(1).Info("group", "component", comp.Key, "channel", string(ch), "groups", enc.Result.Len())
	return comp.Render()
}

// Render writes the component cell. Stored state entries are merged on top.
func (comp *Component) Render() error {
	cell := Cell{
		"type":         comp.Type,
		"key":          comp.Key,
		"data":         comp.Data,
		"options":      comp.Options,
		"parent_block": parentValue(comp.parent),
		"no_facet":     comp.NoFacet,
	}
	maps.Copy(cell, comp.State())
	return comp.ctx.Layout.Upsert(cell)
}
