package distribution

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"scenelink/internal/coords"
	"scenelink/internal/scene"
	"scenelink/internal/wire"
)

// defaultSpotAngle is sent for lights that have no cone.
const defaultSpotAngle = 60

// Rebuild walks root depth-first and returns a fresh context for it.
// Internal nodes are skipped along with their subtree.
func Rebuild(root *scene.Node, generation uint64, header wire.Header) *Context {
	c := &Context{generation: generation, header: header}
	c.visit(root)
	return c
}

// visit emits the wire node(s) for n and its subtree and reports whether
// anything was emitted for n itself.
func (c *Context) visit(n *scene.Node) bool {
	if n == nil || n.Internal {
		return false
	}

	surfaces := renderable(n.Surfaces)
	switch {
	case len(surfaces) == 1:
		idx := c.emit(n, n.Name, true, c.geometry(surfaces[0]), nodeTransform(n))
		c.setChildCount(idx, c.visitChildren(n))
	case len(surfaces) > 1:
		idx := c.emit(n, n.Name, false, wire.Group{}, nodeTransform(n))
		count := uint32(0)
		for i, s := range surfaces {
			name := s.Name
			if name == "" {
				name = fmt.Sprintf("%s_%d", n.Name, i)
			}
			leaf := c.emit(n, name, true, c.geometry(s), identityTransform())
			c.nodes[leaf].Expanded = true
			c.nodes[leaf].owner = idx
			count++
		}
		c.setChildCount(idx, count+c.visitChildren(n))
	case n.Light != nil:
		idx := c.emit(n, n.Name, true, lightPayload(n.Light), nodeTransform(n))
		c.setChildCount(idx, c.visitChildren(n))
	case n.Camera != nil:
		idx := c.emit(n, n.Name, true, cameraPayload(n.Camera), nodeTransform(n))
		c.setChildCount(idx, c.visitChildren(n))
	default:
		idx := c.emit(n, n.Name, false, wire.Group{}, nodeTransform(n))
		c.setChildCount(idx, c.visitChildren(n))
	}
	return true
}

func (c *Context) visitChildren(n *scene.Node) uint32 {
	var count uint32
	for _, child := range n.Children {
		if c.visit(child) {
			count++
		}
	}
	return count
}

type transform struct {
	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3
}

func nodeTransform(n *scene.Node) transform {
	return transform{
		position: coords.PositionToWire(n.Position),
		rotation: coords.RotationToWire(n.Rotation),
		scale:    n.Scale,
	}
}

func identityTransform() transform {
	return transform{rotation: mgl32.QuatIdent(), scale: mgl32.Vec3{1, 1, 1}}
}

func (c *Context) emit(src *scene.Node, name string, editable bool, payload wire.Payload, t transform) int {
	node := Node{
		Node: wire.Node{
			Editable: editable,
			Position: t.position,
			Rotation: t.rotation,
			Scale:    t.scale,
			Name:     name,
			Payload:  payload,
		},
		Ref: Handle{node: src, gen: c.generation},
	}
	c.nodes = append(c.nodes, node)
	idx := len(c.nodes) - 1
	if editable {
		c.editables = append(c.editables, idx)
	}
	c.sizes.Nodes += node.EncodedSize()
	return idx
}

func (c *Context) setChildCount(idx int, count uint32) {
	c.nodes[idx].ChildCount = count
}

func (c *Context) geometry(s *scene.Surface) *wire.Geometry {
	g := &wire.Geometry{
		MeshIndex:     c.InternMesh(s),
		MaterialIndex: c.AddMaterial(s.Material),
		Color:         mgl32.Vec4{1, 1, 1, 1},
	}
	if s.Material != nil && s.Material.Color != (mgl32.Vec4{}) {
		g.Color = s.Material.Color
	}
	return g
}

func lightPayload(l *scene.Light) *wire.Light {
	p := &wire.Light{
		Intensity: l.Intensity,
		Angle:     defaultSpotAngle,
		Range:     l.Range,
		Color:     l.Color,
	}
	switch l.Type {
	case scene.LightSpot:
		p.Kind = wire.LightSpot
		p.Angle = l.OuterConeAngle
	case scene.LightDirectional:
		p.Kind = wire.LightDirectional
	case scene.LightOmni:
		p.Kind = wire.LightPoint
	case scene.LightArea:
		p.Kind = wire.LightArea
	default:
		p.Kind = wire.LightNone
	}
	return p
}

func cameraPayload(cam *scene.Camera) *wire.Camera {
	return &wire.Camera{
		FOV:           cam.FOV,
		Aspect:        cam.Aspect,
		Near:          cam.Near,
		Far:           cam.Far,
		FocalDistance: cam.FocalDistance,
		Aperture:      cam.Aperture,
	}
}

func renderable(surfaces []*scene.Surface) []*scene.Surface {
	out := make([]*scene.Surface, 0, len(surfaces))
	for _, s := range surfaces {
		if s != nil && s.Data != nil {
			out = append(out, s)
		}
	}
	return out
}
