package scene

import "github.com/go-gl/mathgl/mgl32"

type LightType int

const (
	LightSpot LightType = iota
	LightDirectional
	LightOmni
	LightArea
)

func (t LightType) String() string {
	switch t {
	case LightSpot:
		return "spot"
	case LightDirectional:
		return "directional"
	case LightOmni:
		return "omni"
	case LightArea:
		return "area"
	default:
		return "unknown"
	}
}

type Light struct {
	Type      LightType
	Intensity float32
	Color     mgl32.Vec3
	Range     float32

	// OuterConeAngle is only meaningful for spot lights, in degrees.
	OuterConeAngle float32
}

func (l *Light) SetColor(c mgl32.Vec3) { l.Color = c }

func (l *Light) SetIntensity(v float32) { l.Intensity = v }

func (l *Light) SetRange(v float32) { l.Range = v }

type Camera struct {
	FOV           float32
	Aspect        float32
	Near          float32
	Far           float32
	FocalDistance float32
	Aperture      float32
}

// NewCamera returns a perspective camera with the tracer's default lens.
func NewCamera(fov, aspect, near, far float32) *Camera {
	return &Camera{
		FOV:           fov,
		Aspect:        aspect,
		Near:          near,
		Far:           far,
		FocalDistance: 1,
		Aperture:      2.8,
	}
}
