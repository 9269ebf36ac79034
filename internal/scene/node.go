// Package scene holds the host-side live scene graph that gets distributed
// to tracers and patched by their parameter updates.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Node is one element of the live scene graph. A node is a geometry node
// when it has surfaces, a light when Light is set, a camera when Camera is
// set, and a plain group otherwise.
type Node struct {
	Name string

	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3

	Children []*Node
	Surfaces []*Surface
	Light    *Light
	Camera   *Camera

	// Internal marks editor helpers (grids, gizmos, skyboxes) that are
	// never distributed, together with their subtree.
	Internal bool
}

// NewNode returns a node with an identity transform.
func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// AddChild appends child and returns it for chaining.
func (n *Node) AddChild(child *Node) *Node {
	n.Children = append(n.Children, child)
	return child
}

func (n *Node) SetPosition(p mgl32.Vec3) { n.Position = p }

func (n *Node) SetRotation(q mgl32.Quat) { n.Rotation = q }

func (n *Node) SetScale(s mgl32.Vec3) { n.Scale = s }

// Walk visits n and its descendants depth-first, parents before children.
// Returning false from fn skips the subtree of that node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Find returns the first node named name, or nil.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(cur *Node) bool {
		if found != nil {
			return false
		}
		if cur.Name == name {
			found = cur
			return false
		}
		return true
	})
	return found
}

// Surface is one drawable part of a geometry node.
type Surface struct {
	Name     string
	Data     *SurfaceData
	Material *Material
}

// SurfaceData is raw geometry in the host's right-handed convention with
// counter-clockwise winding.
type SurfaceData struct {
	Vertices []mgl32.Vec3
	Indices  []uint32
	Normals  []mgl32.Vec3
	UVs      []mgl32.Vec2

	// BoneWeights and BoneIndices are either both empty or the same length.
	BoneWeights []mgl32.Vec4
	BoneIndices []uint32
}

// Material describes surface shading. Textures may be shared between
// materials.
type Material struct {
	Name  string
	Color mgl32.Vec4

	Diffuse           *Texture
	Normal            *Texture
	MetallicRoughness *Texture
	Emissive          *Texture
}

// Textures lists the bound textures in binding order, skipping empty slots.
func (m *Material) Textures() []*Texture {
	if m == nil {
		return nil
	}
	var out []*Texture
	for _, t := range []*Texture{m.Diffuse, m.Normal, m.MetallicRoughness, m.Emissive} {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

// Texture is an RGBA8 image.
type Texture struct {
	Name   string
	Width  uint32
	Height uint32
	Data   []byte
}
