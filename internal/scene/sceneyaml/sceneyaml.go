// Package sceneyaml loads a live scene from a YAML description.
//
// A file declares shared textures and materials by name and a node tree
// that references them:
//
//	textures:
//	  - name: checker
//	    file: checker.png
//	materials:
//	  - name: crate
//	    diffuse: checker
//	root:
//	  name: root
//	  children:
//	    - name: crate
//	      position: [0, 0.5, -2]
//	      surfaces:
//	        - name: crate
//	          box: [1, 1, 1]
//	          material: crate
package sceneyaml

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"scenelink/internal/scene"
)

var ErrInvalidScene = errors.New("invalid scene file")

type File struct {
	Textures  []TextureSpec  `yaml:"textures"`
	Materials []MaterialSpec `yaml:"materials"`
	Root      NodeSpec       `yaml:"root"`
}

type TextureSpec struct {
	Name string `yaml:"name"`
	// File is resolved against the scene file's directory and may not
	// leave it.
	File   string `yaml:"file"`
	Color  []int  `yaml:"color"`
	Width  uint32 `yaml:"width"`
	Height uint32 `yaml:"height"`
}

type MaterialSpec struct {
	Name              string    `yaml:"name"`
	Color             []float32 `yaml:"color"`
	Diffuse           string    `yaml:"diffuse"`
	Normal            string    `yaml:"normal"`
	MetallicRoughness string    `yaml:"metallic_roughness"`
	Emissive          string    `yaml:"emissive"`
}

type NodeSpec struct {
	Name     string        `yaml:"name"`
	Position []float32     `yaml:"position"`
	Rotation []float32     `yaml:"rotation"`
	Euler    []float32     `yaml:"euler"`
	Scale    []float32     `yaml:"scale"`
	Internal bool          `yaml:"internal"`
	Surfaces []SurfaceSpec `yaml:"surfaces"`
	Light    *LightSpec    `yaml:"light"`
	Camera   *CameraSpec   `yaml:"camera"`
	Children []NodeSpec    `yaml:"children"`
}

type SurfaceSpec struct {
	Name     string    `yaml:"name"`
	Material string    `yaml:"material"`
	Box      []float32 `yaml:"box"`
	Plane    float32   `yaml:"plane"`
	Mesh     *MeshSpec `yaml:"mesh"`
}

type MeshSpec struct {
	Vertices    [][]float32 `yaml:"vertices"`
	Indices     []uint32    `yaml:"indices"`
	Normals     [][]float32 `yaml:"normals"`
	UVs         [][]float32 `yaml:"uvs"`
	BoneWeights [][]float32 `yaml:"bone_weights"`
	BoneIndices []uint32    `yaml:"bone_indices"`
}

type LightSpec struct {
	Type      string    `yaml:"type"`
	Intensity float32   `yaml:"intensity"`
	Color     []float32 `yaml:"color"`
	Range     float32   `yaml:"range"`
	Angle     float32   `yaml:"angle"`
}

type CameraSpec struct {
	FOV           float32 `yaml:"fov"`
	Aspect        float32 `yaml:"aspect"`
	Near          float32 `yaml:"near"`
	Far           float32 `yaml:"far"`
	FocalDistance float32 `yaml:"focal_distance"`
	Aperture      float32 `yaml:"aperture"`
}

// Load reads and builds the scene at path.
func Load(path string) (*scene.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene %s: %w", path, err)
	}
	root, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}

// Parse builds a scene from YAML. Texture files are resolved against dir.
func Parse(data []byte, dir string) (*scene.Node, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}
	b := &builder{
		dir:       dir,
		textures:  map[string]*scene.Texture{},
		materials: map[string]*scene.Material{},
	}
	if err := b.loadTextures(f.Textures); err != nil {
		return nil, err
	}
	if err := b.loadMaterials(f.Materials); err != nil {
		return nil, err
	}
	if strings.TrimSpace(f.Root.Name) == "" {
		f.Root.Name = "root"
	}
	return b.node(f.Root, f.Root.Name)
}

type builder struct {
	dir       string
	assets    *assetRoot
	textures  map[string]*scene.Texture
	materials map[string]*scene.Material
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidScene, fmt.Sprintf(format, args...))
}

func (b *builder) loadTextures(specs []TextureSpec) error {
	for _, spec := range specs {
		if spec.Name == "" {
			return invalid("texture without a name")
		}
		if _, dup := b.textures[spec.Name]; dup {
			return invalid("texture %q declared twice", spec.Name)
		}
		var (
			tex *scene.Texture
			err error
		)
		switch {
		case spec.File != "":
			tex, err = b.loadTextureFile(spec)
		case spec.Color != nil:
			tex, err = solidTexture(spec)
		default:
			err = invalid("texture %q needs a file or an rgba color", spec.Name)
		}
		if err != nil {
			return err
		}
		b.textures[spec.Name] = tex
	}
	return nil
}

func solidTexture(spec TextureSpec) (*scene.Texture, error) {
	if len(spec.Color) != 4 {
		return nil, invalid("texture %q: color wants 4 components, got %d", spec.Name, len(spec.Color))
	}
	var rgba [4]uint8
	for i, c := range spec.Color {
		if c < 0 || c > 255 {
			return nil, invalid("texture %q: color component %d outside [0, 255]", spec.Name, c)
		}
		rgba[i] = uint8(c)
	}
	w, h := spec.Width, spec.Height
	if w == 0 || h == 0 {
		w, h = 1, 1
	}
	return scene.SolidTexture(spec.Name, w, h, rgba), nil
}

func (b *builder) loadTextureFile(spec TextureSpec) (*scene.Texture, error) {
	if b.assets == nil {
		root, err := newAssetRoot(b.dir)
		if err != nil {
			return nil, fmt.Errorf("texture %q: %w", spec.Name, err)
		}
		b.assets = root
	}
	path, err := b.assets.resolve(spec.File)
	if err != nil {
		return nil, fmt.Errorf("texture %q: %w", spec.Name, err)
	}
	return LoadTexture(spec.Name, path, spec.Width, spec.Height)
}

func (b *builder) texture(material, slot, name string) (*scene.Texture, error) {
	if name == "" {
		return nil, nil
	}
	t, ok := b.textures[name]
	if !ok {
		return nil, invalid("material %q: unknown %s texture %q", material, slot, name)
	}
	return t, nil
}

func (b *builder) loadMaterials(specs []MaterialSpec) error {
	for _, spec := range specs {
		if spec.Name == "" {
			return invalid("material without a name")
		}
		if _, dup := b.materials[spec.Name]; dup {
			return invalid("material %q declared twice", spec.Name)
		}
		m := &scene.Material{Name: spec.Name}
		if spec.Color != nil {
			c, err := vec4("color", spec.Color)
			if err != nil {
				return invalid("material %q: %v", spec.Name, err)
			}
			m.Color = c
		}
		var err error
		if m.Diffuse, err = b.texture(spec.Name, "diffuse", spec.Diffuse); err != nil {
			return err
		}
		if m.Normal, err = b.texture(spec.Name, "normal", spec.Normal); err != nil {
			return err
		}
		if m.MetallicRoughness, err = b.texture(spec.Name, "metallic_roughness", spec.MetallicRoughness); err != nil {
			return err
		}
		if m.Emissive, err = b.texture(spec.Name, "emissive", spec.Emissive); err != nil {
			return err
		}
		b.materials[spec.Name] = m
	}
	return nil
}

func (b *builder) node(spec NodeSpec, path string) (*scene.Node, error) {
	if spec.Name == "" {
		return nil, invalid("%s: node without a name", path)
	}
	n := scene.NewNode(spec.Name)
	n.Internal = spec.Internal

	var err error
	if spec.Position != nil {
		if n.Position, err = vec3("position", spec.Position); err != nil {
			return nil, invalid("%s: %v", path, err)
		}
	}
	if spec.Scale != nil {
		if n.Scale, err = vec3("scale", spec.Scale); err != nil {
			return nil, invalid("%s: %v", path, err)
		}
	}
	switch {
	case spec.Rotation != nil && spec.Euler != nil:
		return nil, invalid("%s: rotation and euler are exclusive", path)
	case spec.Rotation != nil:
		v, err := vec4("rotation", spec.Rotation)
		if err != nil {
			return nil, invalid("%s: %v", path, err)
		}
		n.Rotation = mgl32.Quat{W: v[3], V: v.Vec3()}.Normalize()
	case spec.Euler != nil:
		v, err := vec3("euler", spec.Euler)
		if err != nil {
			return nil, invalid("%s: %v", path, err)
		}
		n.Rotation = mgl32.AnglesToQuat(mgl32.DegToRad(v[0]), mgl32.DegToRad(v[1]), mgl32.DegToRad(v[2]), mgl32.XYZ)
	}

	for i, s := range spec.Surfaces {
		surf, err := b.surface(s, fmt.Sprintf("%s.surfaces[%d]", path, i))
		if err != nil {
			return nil, err
		}
		n.Surfaces = append(n.Surfaces, surf)
	}
	if spec.Light != nil {
		if n.Light, err = light(*spec.Light); err != nil {
			return nil, invalid("%s: %v", path, err)
		}
	}
	if c := spec.Camera; c != nil {
		cam := scene.NewCamera(c.FOV, c.Aspect, c.Near, c.Far)
		if c.FocalDistance != 0 {
			cam.FocalDistance = c.FocalDistance
		}
		if c.Aperture != 0 {
			cam.Aperture = c.Aperture
		}
		n.Camera = cam
	}

	for _, cs := range spec.Children {
		child, err := b.node(cs, path+"/"+cs.Name)
		if err != nil {
			return nil, err
		}
		n.AddChild(child)
	}
	return n, nil
}

func (b *builder) surface(spec SurfaceSpec, path string) (*scene.Surface, error) {
	s := &scene.Surface{Name: spec.Name}
	shapes := 0
	if spec.Box != nil {
		shapes++
		v, err := vec3("box", spec.Box)
		if err != nil {
			return nil, invalid("%s: %v", path, err)
		}
		s.Data = scene.Box(v[0], v[1], v[2])
	}
	if spec.Plane != 0 {
		shapes++
		s.Data = scene.Plane(spec.Plane)
	}
	if spec.Mesh != nil {
		shapes++
		data, err := mesh(*spec.Mesh)
		if err != nil {
			return nil, invalid("%s: %v", path, err)
		}
		s.Data = data
	}
	if shapes != 1 {
		return nil, invalid("%s: exactly one of box, plane or mesh is required", path)
	}
	if spec.Material != "" {
		m, ok := b.materials[spec.Material]
		if !ok {
			return nil, invalid("%s: unknown material %q", path, spec.Material)
		}
		s.Material = m
	}
	return s, nil
}

func mesh(spec MeshSpec) (*scene.SurfaceData, error) {
	d := &scene.SurfaceData{Indices: spec.Indices, BoneIndices: spec.BoneIndices}
	for _, v := range spec.Vertices {
		p, err := vec3("vertex", v)
		if err != nil {
			return nil, err
		}
		d.Vertices = append(d.Vertices, p)
	}
	for _, v := range spec.Normals {
		p, err := vec3("normal", v)
		if err != nil {
			return nil, err
		}
		d.Normals = append(d.Normals, p)
	}
	for _, v := range spec.UVs {
		if len(v) != 2 {
			return nil, fmt.Errorf("uv: want 2 components, got %d", len(v))
		}
		d.UVs = append(d.UVs, mgl32.Vec2{v[0], v[1]})
	}
	for _, v := range spec.BoneWeights {
		p, err := vec4("bone weight", v)
		if err != nil {
			return nil, err
		}
		d.BoneWeights = append(d.BoneWeights, p)
	}
	if len(d.Indices)%3 != 0 {
		return nil, fmt.Errorf("index count %d is not a multiple of 3", len(d.Indices))
	}
	for _, i := range d.Indices {
		if int(i) >= len(d.Vertices) {
			return nil, fmt.Errorf("index %d out of range for %d vertices", i, len(d.Vertices))
		}
	}
	return d, nil
}

func light(spec LightSpec) (*scene.Light, error) {
	l := &scene.Light{Intensity: spec.Intensity, Range: spec.Range, OuterConeAngle: spec.Angle, Color: mgl32.Vec3{1, 1, 1}}
	switch strings.ToLower(spec.Type) {
	case "spot":
		l.Type = scene.LightSpot
	case "directional", "sun":
		l.Type = scene.LightDirectional
	case "omni", "point", "":
		l.Type = scene.LightOmni
	case "area":
		l.Type = scene.LightArea
	default:
		return nil, fmt.Errorf("unknown light type %q", spec.Type)
	}
	if spec.Color != nil {
		c, err := vec3("light color", spec.Color)
		if err != nil {
			return nil, err
		}
		l.Color = c
	}
	return l, nil
}

func vec3(field string, v []float32) (mgl32.Vec3, error) {
	if len(v) != 3 {
		return mgl32.Vec3{}, fmt.Errorf("%s: want 3 components, got %d", field, len(v))
	}
	return mgl32.Vec3{v[0], v[1], v[2]}, nil
}

func vec4(field string, v []float32) (mgl32.Vec4, error) {
	if len(v) != 4 {
		return mgl32.Vec4{}, fmt.Errorf("%s: want 4 components, got %d", field, len(v))
	}
	return mgl32.Vec4{v[0], v[1], v[2], v[3]}, nil
}
