package scene

import "github.com/go-gl/mathgl/mgl32"

// Plane returns a square on the XZ plane facing +Y.
func Plane(size float32) *SurfaceData {
	h := size / 2
	return &SurfaceData{
		Vertices: []mgl32.Vec3{{-h, 0, -h}, {h, 0, -h}, {h, 0, h}, {-h, 0, h}},
		Indices:  []uint32{0, 2, 1, 0, 3, 2},
		Normals:  []mgl32.Vec3{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}, {0, 1, 0}},
		UVs:      []mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
	}
}

// Box returns an axis-aligned box centred on the origin with one quad per
// face so every face gets flat normals.
func Box(width, height, depth float32) *SurfaceData {
	x, y, z := width/2, height/2, depth/2
	faces := []struct {
		normal  mgl32.Vec3
		corners [4]mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{-x, -y, z}, {x, -y, z}, {x, y, z}, {-x, y, z}}},
		{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{x, -y, -z}, {-x, -y, -z}, {-x, y, -z}, {x, y, -z}}},
		{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{x, -y, z}, {x, -y, -z}, {x, y, -z}, {x, y, z}}},
		{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{-x, -y, -z}, {-x, -y, z}, {-x, y, z}, {-x, y, -z}}},
		{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{-x, y, z}, {x, y, z}, {x, y, -z}, {-x, y, -z}}},
		{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{-x, -y, -z}, {x, -y, -z}, {x, -y, z}, {-x, -y, z}}},
	}
	d := &SurfaceData{}
	for _, f := range faces {
		base := uint32(len(d.Vertices))
		d.Vertices = append(d.Vertices, f.corners[:]...)
		d.Normals = append(d.Normals, f.normal, f.normal, f.normal, f.normal)
		d.UVs = append(d.UVs, mgl32.Vec2{0, 0}, mgl32.Vec2{1, 0}, mgl32.Vec2{1, 1}, mgl32.Vec2{0, 1})
		d.Indices = append(d.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return d
}

// SolidTexture returns a width x height texture filled with one RGBA colour.
func SolidTexture(name string, width, height uint32, rgba [4]uint8) *Texture {
	data := make([]byte, int(width)*int(height)*4)
	for i := 0; i < len(data); i += 4 {
		copy(data[i:i+4], rgba[:])
	}
	return &Texture{Name: name, Width: width, Height: height, Data: data}
}
