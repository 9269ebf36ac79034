package wire

// NodeHeaderSize is the fixed part of every node record: type, editable
// and child count, position, scale, rotation and the name field.
const NodeHeaderSize = 3*4 + 12 + 12 + 16 + NameSize

// HeaderSize is the size of the header category reply.
const HeaderSize = 4 + 1 + 1

func (n *Node) EncodedSize() uint32 {
	if n.Payload == nil {
		return NodeHeaderSize
	}
	return NodeHeaderSize + n.Payload.payloadSize()
}

func (m *Mesh) EncodedSize() uint32 {
	size := uint32(4) + uint32(len(m.Vertices))*12
	size += 4 + uint32(len(m.Indices))*4
	size += 4 + uint32(len(m.Normals))*12
	size += 4 + uint32(len(m.UVs))*8
	size += 4
	if n := uint32(len(m.BoneWeights)); n > 0 {
		size += n*16 + n*4
	}
	return size
}

func (t *Texture) EncodedSize() uint32 {
	return 4*4 + uint32(len(t.Data))
}

func (m *Material) EncodedSize() uint32 {
	size := uint32(4) + 4 + uint32(len(m.Name)) + 4 + uint32(len(m.Src)) + 4 + 4
	if n := uint32(len(m.Bindings)); n > 0 {
		size += n*4 + n*8 + n*8
	}
	return size
}
