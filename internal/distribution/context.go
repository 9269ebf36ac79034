// Package distribution turns a live scene graph into the category buffers
// served to a tracer and keeps the index spaces tracer patches refer to.
package distribution

import (
	"fmt"

	"scenelink/internal/scene"
	"scenelink/internal/wire"
)

// Handle is a weak reference from a wire node to the live node it was
// built from. It only resolves against the context generation that
// created it.
type Handle struct {
	node *scene.Node
	gen  uint64
}

// Node is a wire node plus the handle used to route patches.
type Node struct {
	wire.Node
	Ref Handle
	// Expanded marks a geometry leaf emitted for one surface of a
	// multi-surface live node. Ref points at that owning node and owner
	// is the index of the group emitted for it.
	Expanded bool
	owner    int
}

// Sizes are the exact serialized lengths of each category.
type Sizes struct {
	Nodes      uint32 `json:"nodes"`
	Geometries uint32 `json:"geometries"`
	Textures   uint32 `json:"textures"`
	Materials  uint32 `json:"materials"`
}

// Context owns every wire record of one loaded scene. It is built whole by
// Rebuild and never partially reused.
type Context struct {
	generation uint64
	revision   uint64
	header     wire.Header

	nodes     []Node
	editables []int
	meshes    []wire.Mesh
	textures  []wire.Texture
	materials []wire.Material

	sizes Sizes
}

func (c *Context) Generation() uint64 { return c.generation }

// Revision changes whenever any served byte may have changed.
func (c *Context) Revision() uint64 { return c.revision }

// Touch records an in-place mutation of wire state.
func (c *Context) Touch() { c.revision++ }

func (c *Context) Header() wire.Header { return c.header }

func (c *Context) Sizes() Sizes { return c.sizes }

func (c *Context) Nodes() []Node { return c.nodes }

func (c *Context) Meshes() []wire.Mesh { return c.meshes }

func (c *Context) Textures() []wire.Texture { return c.textures }

func (c *Context) Materials() []wire.Material { return c.materials }

// TransformTarget returns the wire node carrying n's live transform: the
// owning group for an expanded leaf, n itself otherwise.
func (c *Context) TransformTarget(n *Node) *Node {
	if n.Expanded {
		return &c.nodes[n.owner]
	}
	return n
}

func (c *Context) EditableCount() int { return len(c.editables) }

// Editable returns the node at position id of the editable index space
// (0-based).
func (c *Context) Editable(id int) (*Node, error) {
	if id < 0 || id >= len(c.editables) {
		return nil, fmt.Errorf("%w: editable %d of %d (generation %d)", ErrOutOfRangeReference, id, len(c.editables), c.generation)
	}
	return &c.nodes[c.editables[id]], nil
}

// EditableIndex maps an editable id to its position in the full node list.
func (c *Context) EditableIndex(id int) (int, bool) {
	if id < 0 || id >= len(c.editables) {
		return 0, false
	}
	return c.editables[id], true
}

// Resolve returns the live node behind h if h belongs to this context.
func (c *Context) Resolve(h Handle) (*scene.Node, bool) {
	if c == nil || h.node == nil || h.gen != c.generation {
		return nil, false
	}
	return h.node, true
}

type Stats struct {
	Generation uint64 `json:"generation"`
	Revision   uint64 `json:"revision"`
	Nodes      int    `json:"nodes"`
	Editables  int    `json:"editables"`
	Meshes     int    `json:"meshes"`
	Textures   int    `json:"textures"`
	Materials  int    `json:"materials"`
	Sizes      Sizes  `json:"sizes"`
}

func (c *Context) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	return Stats{
		Generation: c.generation,
		Revision:   c.revision,
		Nodes:      len(c.nodes),
		Editables:  len(c.editables),
		Meshes:     len(c.meshes),
		Textures:   len(c.textures),
		Materials:  len(c.materials),
		Sizes:      c.sizes,
	}
}
