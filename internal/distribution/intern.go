package distribution

import (
	"strconv"

	"github.com/go-gl/mathgl/mgl32"

	"scenelink/internal/coords"
	"scenelink/internal/scene"
	"scenelink/internal/wire"
)

// MeshIdentity is the dedup key of a surface. Two surfaces with the same
// name and vertex count are served as one mesh even if their contents
// differ.
func MeshIdentity(s *scene.Surface) string {
	n := 0
	if s.Data != nil {
		n = len(s.Data.Vertices)
	}
	return "Mesh_" + s.Name + "_" + strconv.Itoa(n)
}

// InternMesh returns the mesh index for s, adding it on first sight.
// Surfaces without data yield wire.NoIndex.
func (c *Context) InternMesh(s *scene.Surface) int32 {
	if s == nil || s.Data == nil {
		return wire.NoIndex
	}
	key := MeshIdentity(s)
	for i := range c.meshes {
		if c.meshes[i].Name == key {
			return int32(i)
		}
	}

	d := s.Data
	m := wire.Mesh{
		Name:     key,
		Vertices: coords.PositionsToWire(d.Vertices),
		Indices:  coords.ReverseWinding(d.Indices),
		Normals:  coords.NormalsToWire(d.Normals),
		UVs:      append([]mgl32.Vec2(nil), d.UVs...),
	}
	if bones := min(len(d.BoneWeights), len(d.BoneIndices)); bones > 0 {
		m.BoneWeights = append([]mgl32.Vec4(nil), d.BoneWeights[:bones]...)
		m.BoneIndices = append([]uint32(nil), d.BoneIndices[:bones]...)
	}
	c.meshes = append(c.meshes, m)
	c.sizes.Geometries += m.EncodedSize()
	return int32(len(c.meshes) - 1)
}

// InternTexture returns the texture index for t, adding it on first sight.
// The first texture seen under a name wins.
func (c *Context) InternTexture(t *scene.Texture) int32 {
	if t == nil {
		return wire.NoIndex
	}
	for i := range c.textures {
		if c.textures[i].Name == t.Name {
			return int32(i)
		}
	}
	wt := wire.Texture{
		Name:   t.Name,
		Width:  t.Width,
		Height: t.Height,
		Format: wire.TextureRGBA8,
		Data:   t.Data,
	}
	c.textures = append(c.textures, wt)
	c.sizes.Textures += wt.EncodedSize()
	return int32(len(c.textures) - 1)
}

// AddMaterial appends a material record for m. Materials are never shared
// so each geometry node keeps its own stable index.
func (c *Context) AddMaterial(m *scene.Material) int32 {
	if m == nil {
		return wire.NoIndex
	}
	wm := wire.Material{
		Type:  wire.MaterialStandard,
		Name:  m.Name,
		Src:   wire.ShaderStandard,
		Index: uint32(len(c.materials)),
	}
	for _, t := range m.Textures() {
		idx := c.InternTexture(t)
		wm.Bindings = append(wm.Bindings, wire.TextureBinding{
			Texture: uint32(idx),
			Scale:   mgl32.Vec2{1, 1},
		})
	}
	c.materials = append(c.materials, wm)
	c.sizes.Materials += wm.EncodedSize()
	return int32(wm.Index)
}
