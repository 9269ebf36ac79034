package distribution

import (
	"fmt"

	"scenelink/internal/wire"
)

// Request categories.
const (
	CategoryHeader           = "header"
	CategoryNodes            = "nodes"
	CategoryObjects          = "objects"
	CategoryMaterials        = "materials"
	CategoryTextures         = "textures"
	CategoryCharacters       = "characters"
	CategoryCurve            = "curve"
	CategoryParameterObjects = "parameterobjects"
)

// Categories lists the categories with content, in the order a tracer
// usually requests them.
var Categories = []string{
	CategoryHeader,
	CategoryMaterials,
	CategoryTextures,
	CategoryObjects,
	CategoryNodes,
}

// Serialize renders one category. Known but unsupported categories yield
// an empty buffer; unknown ones are a protocol violation.
//
// The nodes, objects, materials and textures buffers are allocated to the
// precomputed size; if encoding does not fill them exactly Serialize
// panics with a *SizeMismatchError.
func (c *Context) Serialize(category string) ([]byte, error) {
	switch category {
	case CategoryHeader:
		return c.header.Encode(), nil
	case CategoryNodes:
		w := wire.NewWriter(c.sizes.Nodes)
		for i := range c.nodes {
			c.nodes[i].Encode(w)
		}
		return finish(category, w), nil
	case CategoryObjects:
		w := wire.NewWriter(c.sizes.Geometries)
		for i := range c.meshes {
			c.meshes[i].Encode(w)
		}
		return finish(category, w), nil
	case CategoryMaterials:
		w := wire.NewWriter(c.sizes.Materials)
		for i := range c.materials {
			c.materials[i].Encode(w)
		}
		return finish(category, w), nil
	case CategoryTextures:
		w := wire.NewWriter(c.sizes.Textures)
		for i := range c.textures {
			c.textures[i].Encode(w)
		}
		return finish(category, w), nil
	case CategoryCharacters, CategoryCurve, CategoryParameterObjects:
		return []byte{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown category %q", ErrProtocolViolation, category)
	}
}

func finish(category string, w *wire.Writer) []byte {
	if w.Offset() != w.Len() {
		panic(&SizeMismatchError{Category: category, Want: w.Len(), Got: w.Offset()})
	}
	return w.Bytes()
}
