package wire

func (h Header) Encode() []byte {
	w := NewWriter(HeaderSize)
	w.F32(h.LightIntensityFactor)
	w.U8(h.SenderID)
	w.U8(h.FrameRate)
	return w.Bytes()
}

func (n *Node) Encode(w *Writer) {
	w.U32(uint32(n.Type()))
	w.Bool32(n.Editable)
	w.U32(n.ChildCount)
	w.Vec3(n.Position)
	w.Vec3(n.Scale)
	w.Quat(n.Rotation)
	w.Fixed(n.Name, NameSize)

	switch p := n.Payload.(type) {
	case *Geometry:
		w.U32(uint32(p.MeshIndex))
		w.U32(uint32(p.MaterialIndex))
		w.Vec4(p.Color)
	case *Light:
		w.U32(uint32(p.Kind))
		w.F32(p.Intensity)
		w.F32(p.Angle)
		w.F32(p.Range)
		w.Vec3(p.Color)
	case *Camera:
		w.F32(p.FOV)
		w.F32(p.Aspect)
		w.F32(p.Near)
		w.F32(p.Far)
		w.F32(p.FocalDistance)
		w.F32(p.Aperture)
	}
}

func (m *Mesh) Encode(w *Writer) {
	w.U32(uint32(len(m.Vertices)))
	for _, v := range m.Vertices {
		w.Vec3(v)
	}
	w.U32(uint32(len(m.Indices)))
	for _, i := range m.Indices {
		w.U32(i)
	}
	w.U32(uint32(len(m.Normals)))
	for _, n := range m.Normals {
		w.Vec3(n)
	}
	w.U32(uint32(len(m.UVs)))
	for _, uv := range m.UVs {
		w.Vec2(uv)
	}
	w.U32(uint32(len(m.BoneWeights)))
	if len(m.BoneWeights) == 0 {
		return
	}
	for _, bw := range m.BoneWeights {
		w.Vec4(bw)
	}
	for _, bi := range m.BoneIndices {
		w.U32(bi)
	}
}

func (t *Texture) Encode(w *Writer) {
	w.U32(t.Width)
	w.U32(t.Height)
	w.U32(uint32(t.Format))
	w.U32(uint32(len(t.Data)))
	w.Raw(t.Data)
}

func (m *Material) Encode(w *Writer) {
	w.U32(m.Type)
	w.U32(uint32(len(m.Name)))
	w.Raw([]byte(m.Name))
	w.U32(uint32(len(m.Src)))
	w.Raw([]byte(m.Src))
	w.U32(m.Index)
	w.U32(uint32(len(m.Bindings)))
	if len(m.Bindings) == 0 {
		return
	}
	for _, b := range m.Bindings {
		w.U32(b.Texture)
	}
	for _, b := range m.Bindings {
		w.Vec2(b.Offset)
	}
	for _, b := range m.Bindings {
		w.Vec2(b.Scale)
	}
}
