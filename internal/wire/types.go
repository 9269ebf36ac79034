// Package wire defines the records exchanged with a tracer and their exact
// binary layout. All multi-byte values use the host's native byte order and
// are packed without padding.
package wire

import (
	"github.com/go-gl/mathgl/mgl32"
)

// NameSize is the fixed width of a node name on the wire.
const NameSize = 64

type NodeType uint32

const (
	NodeGroup NodeType = iota
	NodeGeometry
	NodeLight
	NodeCamera
	NodeSkinnedMesh
	NodeCharacter
)

func (t NodeType) String() string {
	switch t {
	case NodeGroup:
		return "group"
	case NodeGeometry:
		return "geometry"
	case NodeLight:
		return "light"
	case NodeCamera:
		return "camera"
	case NodeSkinnedMesh:
		return "skinned_mesh"
	case NodeCharacter:
		return "character"
	default:
		return "unknown"
	}
}

type LightType uint32

const (
	LightSpot LightType = iota
	LightDirectional
	LightPoint
	LightArea
	LightNone
)

func (t LightType) String() string {
	switch t {
	case LightSpot:
		return "spot"
	case LightDirectional:
		return "directional"
	case LightPoint:
		return "point"
	case LightArea:
		return "area"
	default:
		return "none"
	}
}

// Node is one entry of the nodes category. Payload is never nil; plain
// groups carry Group{}.
type Node struct {
	Editable   bool
	ChildCount uint32
	Position   mgl32.Vec3
	Scale      mgl32.Vec3
	Rotation   mgl32.Quat
	Name       string
	Payload    Payload
}

// Type reports the node kind from its payload.
func (n *Node) Type() NodeType {
	if n.Payload == nil {
		return NodeGroup
	}
	return n.Payload.NodeType()
}

// Payload is the closed set of per-kind node data: Group, *Geometry,
// *Light and *Camera.
type Payload interface {
	NodeType() NodeType
	payloadSize() uint32
}

type Group struct{}

func (Group) NodeType() NodeType  { return NodeGroup }
func (Group) payloadSize() uint32 { return 0 }

// NoIndex marks a geometry node without a material.
const NoIndex int32 = -1

type Geometry struct {
	MeshIndex     int32
	MaterialIndex int32
	Color         mgl32.Vec4
}

func (*Geometry) NodeType() NodeType  { return NodeGeometry }
func (*Geometry) payloadSize() uint32 { return 4 + 4 + 16 }

type Light struct {
	Kind      LightType
	Intensity float32
	Angle     float32
	Range     float32
	Color     mgl32.Vec3
}

func (*Light) NodeType() NodeType  { return NodeLight }
func (*Light) payloadSize() uint32 { return 4 + 4 + 4 + 4 + 12 }

type Camera struct {
	FOV           float32
	Aspect        float32
	Near          float32
	Far           float32
	FocalDistance float32
	Aperture      float32
}

func (*Camera) NodeType() NodeType  { return NodeCamera }
func (*Camera) payloadSize() uint32 { return 6 * 4 }

// Mesh is one entry of the objects category. Name is the identity key and
// is not transmitted.
type Mesh struct {
	Name        string
	Vertices    []mgl32.Vec3
	Indices     []uint32
	Normals     []mgl32.Vec3
	UVs         []mgl32.Vec2
	BoneWeights []mgl32.Vec4
	BoneIndices []uint32
}

type TextureFormat uint32

const (
	TextureRGBA8 TextureFormat = iota
)

// Texture is one entry of the textures category. Name is the identity key
// and is not transmitted.
type Texture struct {
	Name   string
	Width  uint32
	Height uint32
	Format TextureFormat
	Data   []byte
}

// MaterialStandard is the only material type the host emits.
const MaterialStandard uint32 = 1

// ShaderStandard is the shader source tag sent for every material.
const ShaderStandard = "Standard"

type TextureBinding struct {
	Texture uint32
	Offset  mgl32.Vec2
	Scale   mgl32.Vec2
}

type Material struct {
	Type     uint32
	Name     string
	Src      string
	Index    uint32
	Bindings []TextureBinding
}

type Header struct {
	LightIntensityFactor float32
	SenderID             uint8
	FrameRate            uint8
}

// DefaultHeader returns the header with the tracer's expected defaults.
func DefaultHeader(senderID uint8) Header {
	return Header{LightIntensityFactor: 1, SenderID: senderID, FrameRate: 60}
}
