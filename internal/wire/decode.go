package wire

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

func DecodeHeader(b []byte) (Header, error) {
	if len(b) != HeaderSize {
		return Header{}, fmt.Errorf("%w: header is %d bytes, want %d", ErrMalformed, len(b), HeaderSize)
	}
	r := NewReader(b)
	h := Header{LightIntensityFactor: r.F32(), SenderID: r.U8(), FrameRate: r.U8()}
	return h, r.Err()
}

func DecodeNodes(b []byte) ([]Node, error) {
	r := NewReader(b)
	var out []Node
	for r.Remaining() > 0 {
		n := Node{}
		typ := NodeType(r.U32())
		n.Editable = r.U32() != 0
		n.ChildCount = r.U32()
		n.Position = r.Vec3()
		n.Scale = r.Vec3()
		n.Rotation = r.Quat()
		n.Name = r.Fixed(NameSize)

		switch typ {
		case NodeGroup:
			n.Payload = Group{}
		case NodeGeometry:
			n.Payload = &Geometry{
				MeshIndex:     int32(r.U32()),
				MaterialIndex: int32(r.U32()),
				Color:         r.Vec4(),
			}
		case NodeLight:
			n.Payload = &Light{
				Kind:      LightType(r.U32()),
				Intensity: r.F32(),
				Angle:     r.F32(),
				Range:     r.F32(),
				Color:     r.Vec3(),
			}
		case NodeCamera:
			n.Payload = &Camera{
				FOV:           r.F32(),
				Aspect:        r.F32(),
				Near:          r.F32(),
				Far:           r.F32(),
				FocalDistance: r.F32(),
				Aperture:      r.F32(),
			}
		default:
			if r.Err() == nil {
				return nil, fmt.Errorf("%w: node %d has unsupported type %d", ErrMalformed, len(out), typ)
			}
		}
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("node %d: %w", len(out), err)
		}
		out = append(out, n)
	}
	return out, nil
}

func DecodeMeshes(b []byte) ([]Mesh, error) {
	r := NewReader(b)
	var out []Mesh
	for r.Remaining() > 0 {
		m := Mesh{}
		m.Vertices = make([]mgl32.Vec3, r.count(12))
		for i := range m.Vertices {
			m.Vertices[i] = r.Vec3()
		}
		m.Indices = make([]uint32, r.count(4))
		for i := range m.Indices {
			m.Indices[i] = r.U32()
		}
		m.Normals = make([]mgl32.Vec3, r.count(12))
		for i := range m.Normals {
			m.Normals[i] = r.Vec3()
		}
		m.UVs = make([]mgl32.Vec2, r.count(8))
		for i := range m.UVs {
			m.UVs[i] = r.Vec2()
		}
		if bones := r.count(20); bones > 0 {
			m.BoneWeights = make([]mgl32.Vec4, bones)
			for i := range m.BoneWeights {
				m.BoneWeights[i] = r.Vec4()
			}
			m.BoneIndices = make([]uint32, bones)
			for i := range m.BoneIndices {
				m.BoneIndices[i] = r.U32()
			}
		}
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("mesh %d: %w", len(out), err)
		}
		out = append(out, m)
	}
	return out, nil
}

func DecodeTextures(b []byte) ([]Texture, error) {
	r := NewReader(b)
	var out []Texture
	for r.Remaining() > 0 {
		t := Texture{
			Width:  r.U32(),
			Height: r.U32(),
			Format: TextureFormat(r.U32()),
		}
		t.Data = r.Raw(r.count(1))
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("texture %d: %w", len(out), err)
		}
		out = append(out, t)
	}
	return out, nil
}

func DecodeMaterials(b []byte) ([]Material, error) {
	r := NewReader(b)
	var out []Material
	for r.Remaining() > 0 {
		m := Material{Type: r.U32()}
		m.Name = string(r.Raw(r.count(1)))
		m.Src = string(r.Raw(r.count(1)))
		m.Index = r.U32()
		if n := r.count(20); n > 0 {
			m.Bindings = make([]TextureBinding, n)
			for i := range m.Bindings {
				m.Bindings[i].Texture = r.U32()
			}
			for i := range m.Bindings {
				m.Bindings[i].Offset = r.Vec2()
			}
			for i := range m.Bindings {
				m.Bindings[i].Scale = r.Vec2()
			}
		}
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("material %d: %w", len(out), err)
		}
		out = append(out, m)
	}
	return out, nil
}
