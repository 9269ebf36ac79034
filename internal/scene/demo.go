package scene

import "github.com/go-gl/mathgl/mgl32"

// Demo builds the scene served when no scene file is configured: a ground
// plane, a two-part prop sharing one checker texture, two lights and a
// camera. An internal grid helper sits under the root and is never
// distributed.
func Demo() *Node {
	root := NewNode("root")

	grid := root.AddChild(NewNode("editor_grid"))
	grid.Internal = true
	grid.Surfaces = []*Surface{{Name: "grid", Data: Plane(100)}}

	checker := checkerTexture("checker", 8, 8)

	ground := root.AddChild(NewNode("ground"))
	ground.Surfaces = []*Surface{{
		Name:     "ground",
		Data:     Plane(20),
		Material: &Material{Name: "ground_mat", Color: mgl32.Vec4{0.6, 0.6, 0.6, 1}},
	}}

	prop := root.AddChild(NewNode("prop"))
	prop.Position = mgl32.Vec3{0, 0.5, -2}
	prop.Surfaces = []*Surface{
		{
			Name:     "prop_body",
			Data:     Box(1, 1, 1),
			Material: &Material{Name: "prop_mat", Color: mgl32.Vec4{1, 1, 1, 1}, Diffuse: checker},
		},
		{
			Name:     "prop_lid",
			Data:     Box(1.1, 0.1, 1.1),
			Material: &Material{Name: "prop_mat", Color: mgl32.Vec4{1, 1, 1, 1}, Diffuse: checker},
		},
	}

	spot := root.AddChild(NewNode("key_light"))
	spot.Position = mgl32.Vec3{2, 4, 2}
	spot.Rotation = mgl32.QuatRotate(mgl32.DegToRad(-45), mgl32.Vec3{1, 0, 0})
	spot.Light = &Light{Type: LightSpot, Intensity: 2, Color: mgl32.Vec3{1, 0.95, 0.9}, Range: 25, OuterConeAngle: 45}

	sun := root.AddChild(NewNode("sun"))
	sun.Rotation = mgl32.QuatRotate(mgl32.DegToRad(-60), mgl32.Vec3{1, 0, 0})
	sun.Light = &Light{Type: LightDirectional, Intensity: 1, Color: mgl32.Vec3{1, 1, 1}, Range: 1000}

	cam := root.AddChild(NewNode("main_camera"))
	cam.Position = mgl32.Vec3{0, 1.6, 5}
	cam.Camera = NewCamera(60, 16.0/9.0, 0.1, 1000)

	return root
}

func checkerTexture(name string, width, height uint32) *Texture {
	t := &Texture{Name: name, Width: width, Height: height, Data: make([]byte, int(width)*int(height)*4)}
	for y := uint32(0); y < height; y++ {
		for x := uint32(0); x < width; x++ {
			v := uint8(40)
			if (x+y)%2 == 0 {
				v = 220
			}
			i := int(y*width+x) * 4
			t.Data[i], t.Data[i+1], t.Data[i+2], t.Data[i+3] = v, v, v, 255
		}
	}
	return t
}
