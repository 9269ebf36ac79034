package wire

import (
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func encodeNodes(nodes []Node) []byte {
	var size uint32
	for i := range nodes {
		size += nodes[i].EncodedSize()
	}
	w := NewWriter(size)
	for i := range nodes {
		nodes[i].Encode(w)
	}
	return w.Bytes()
}

func TestNodeSizes(t *testing.T) {
	cases := []struct {
		payload Payload
		want    uint32
	}{
		{Group{}, 116},
		{&Geometry{}, 116 + 24},
		{&Light{}, 116 + 28},
		{&Camera{}, 116 + 24},
	}
	for _, c := range cases {
		n := Node{Payload: c.payload}
		if got := n.EncodedSize(); got != c.want {
			t.Fatalf("%s size: got=%d want=%d", n.Type(), got, c.want)
		}
		w := NewWriter(n.EncodedSize())
		n.Encode(w)
		if w.Offset() != w.Len() {
			t.Fatalf("%s encode: offset=%d len=%d", n.Type(), w.Offset(), w.Len())
		}
	}
}

func TestNodesDecodeMatchesEncode(t *testing.T) {
	nodes := []Node{
		{ChildCount: 2, Scale: mgl32.Vec3{1, 1, 1}, Rotation: mgl32.QuatIdent(), Name: "root", Payload: Group{}},
		{Editable: true, Position: mgl32.Vec3{1, 2, -3}, Scale: mgl32.Vec3{1, 1, 1}, Rotation: mgl32.QuatIdent(), Name: "geo",
			Payload: &Geometry{MeshIndex: 0, MaterialIndex: NoIndex, Color: mgl32.Vec4{1, 0.5, 0.25, 1}}},
		{Editable: true, Scale: mgl32.Vec3{1, 1, 1}, Rotation: mgl32.Quat{W: 0.5, V: mgl32.Vec3{0.5, -0.5, 0.5}}, Name: "lamp",
			Payload: &Light{Kind: LightPoint, Intensity: 3, Angle: 60, Range: 10, Color: mgl32.Vec3{1, 0, 0}}},
	}
	got, err := DecodeNodes(encodeNodes(nodes))
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, nodes[0].Name, got[0].Name)
	require.Equal(t, nodes[1].Position, got[1].Position)
	require.Equal(t, NoIndex, got[1].Payload.(*Geometry).MaterialIndex)
	require.Equal(t, nodes[2].Rotation, got[2].Rotation)
	require.Equal(t, *nodes[2].Payload.(*Light), *got[2].Payload.(*Light))
}

func TestNodeNameIsTruncated(t *testing.T) {
	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a'
	}
	got, err := DecodeNodes(encodeNodes([]Node{{Name: string(long), Payload: Group{}}}))
	require.NoError(t, err)
	require.Len(t, got[0].Name, NameSize)

	// 63 ASCII bytes leave one byte for a two byte rune.
	split := string(long[:NameSize-1]) + "é"
	got, err = DecodeNodes(encodeNodes([]Node{{Name: split, Payload: Group{}}}))
	require.NoError(t, err)
	require.Equal(t, string(long[:NameSize-1]), got[0].Name)
	require.True(t, utf8.ValidString(got[0].Name))

	exact := string(long[:NameSize-2]) + "é"
	got, err = DecodeNodes(encodeNodes([]Node{{Name: exact, Payload: Group{}}}))
	require.NoError(t, err)
	require.Equal(t, exact, got[0].Name)
}

func TestMaterialWithoutBindingsOmitsArrays(t *testing.T) {
	m := Material{Type: MaterialStandard, Name: "plain", Src: ShaderStandard}
	if got, want := m.EncodedSize(), uint32(4+4+5+4+8+4+4); got != want {
		t.Fatalf("size: got=%d want=%d", got, want)
	}
	w := NewWriter(m.EncodedSize())
	m.Encode(w)
	require.Equal(t, w.Len(), w.Offset())

	decoded, err := DecodeMaterials(w.Bytes())
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	require.Empty(t, decoded[0].Bindings)
}

func TestMaterialBindingsRoundTrip(t *testing.T) {
	mats := []Material{
		{Type: MaterialStandard, Name: "a", Src: ShaderStandard, Index: 0, Bindings: []TextureBinding{
			{Texture: 3, Offset: mgl32.Vec2{0.1, 0.2}, Scale: mgl32.Vec2{1, 2}},
			{Texture: 4, Scale: mgl32.Vec2{1, 1}},
		}},
		{Type: MaterialStandard, Name: "b", Src: ShaderStandard, Index: 1},
	}
	var size uint32
	for i := range mats {
		size += mats[i].EncodedSize()
	}
	w := NewWriter(size)
	for i := range mats {
		mats[i].Encode(w)
	}
	require.Equal(t, w.Len(), w.Offset())

	got, err := DecodeMaterials(w.Bytes())
	require.NoError(t, err)
	require.Equal(t, mats[0].Bindings, got[0].Bindings)
	require.Equal(t, uint32(1), got[1].Index)
}

func TestMeshAndTextureRoundTrip(t *testing.T) {
	m := Mesh{
		Vertices:    []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Indices:     []uint32{2, 1, 0},
		Normals:     []mgl32.Vec3{{0, 0, -1}, {0, 0, -1}, {0, 0, -1}},
		UVs:         []mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}},
		BoneWeights: []mgl32.Vec4{{1, 0, 0, 0}, {0.5, 0.5, 0, 0}, {1, 0, 0, 0}},
		BoneIndices: []uint32{0, 1, 0},
	}
	w := NewWriter(m.EncodedSize())
	m.Encode(w)
	require.Equal(t, w.Len(), w.Offset())
	meshes, err := DecodeMeshes(w.Bytes())
	require.NoError(t, err)
	require.Equal(t, m.Vertices, meshes[0].Vertices)
	require.Equal(t, m.BoneIndices, meshes[0].BoneIndices)

	tex := Texture{Width: 1, Height: 2, Data: []byte{1, 2, 3, 4, 5, 6, 7, 8}}
	w = NewWriter(tex.EncodedSize())
	tex.Encode(w)
	textures, err := DecodeTextures(w.Bytes())
	require.NoError(t, err)
	require.Equal(t, tex.Data, textures[0].Data)
}

func TestDecodeRejectsTruncatedBuffers(t *testing.T) {
	b := encodeNodes([]Node{{Name: "x", Payload: &Camera{FOV: 60}}})
	if _, err := DecodeNodes(b[:len(b)-1]); !errors.Is(err, ErrMalformed) {
		t.Fatalf("truncated nodes: got=%v want ErrMalformed", err)
	}
	if _, err := DecodeMeshes([]byte{0xff, 0xff, 0xff, 0x0f}); !errors.Is(err, ErrMalformed) {
		t.Fatalf("oversized count: got=%v want ErrMalformed", err)
	}
}

func TestHeaderLayout(t *testing.T) {
	b := DefaultHeader(7).Encode()
	require.Len(t, b, HeaderSize)
	h, err := DecodeHeader(b)
	require.NoError(t, err)
	require.Equal(t, uint8(7), h.SenderID)
	require.Equal(t, uint8(60), h.FrameRate)
	require.Equal(t, float32(1), h.LightIntensityFactor)
}

func TestBuildTree(t *testing.T) {
	nodes := []Node{
		{Name: "root", ChildCount: 2, Payload: Group{}},
		{Name: "a", ChildCount: 1, Payload: Group{}},
		{Name: "a1", Payload: &Geometry{}},
		{Name: "b", Payload: &Camera{}},
		{Name: "second_root", Payload: Group{}},
	}
	roots, err := BuildTree(nodes)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	require.Len(t, roots[0].Children, 2)
	require.Equal(t, "a1", roots[0].Children[0].Children[0].Node.Name)
	require.Equal(t, "b", roots[0].Children[1].Node.Name)

	var depths []int
	roots[0].Walk(func(_ *TreeNode, depth int) { depths = append(depths, depth) })
	require.Equal(t, []int{0, 1, 2, 1}, depths)

	if _, err := BuildTree(nodes[:2]); !errors.Is(err, ErrMalformed) {
		t.Fatalf("incomplete tree: got=%v want ErrMalformed", err)
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	u := Update{ClientID: 9, Timestamp: 3, Type: MessageParameterUpdate, Records: []Record{
		Vec3Record(3, 0, mgl32.Vec3{1, 2, 3}),
		FloatRecord(1, 4, 2.5),
		QuatRecord(2, 1, mgl32.QuatIdent()),
	}}
	got, err := DecodeUpdate(EncodeUpdate(u))
	require.NoError(t, err)
	require.Len(t, got.Records, 3)
	require.Equal(t, mgl32.Vec3{1, 2, 3}, got.Records[0].Vec3())
	require.Equal(t, float32(2.5), got.Records[1].Float())
	require.Equal(t, mgl32.QuatIdent(), got.Records[2].Quat())
	require.Equal(t, uint16(3), got.Records[0].ObjectID)
}

func TestDecodeUpdateRejectsUnknownValueType(t *testing.T) {
	rec := FloatRecord(1, 4, 1)
	rec.ValueType = ParamString
	_, err := DecodeUpdate(EncodeUpdate(Update{Type: MessageParameterUpdate, Records: []Record{rec}}))
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("got=%v want ErrMalformed", err)
	}
}

func TestDecodeUpdateKeepsOtherMessagesOpaque(t *testing.T) {
	got, err := DecodeUpdate([]byte{1, 2, byte(MessageLock), 0xAA, 0xBB})
	require.NoError(t, err)
	require.Equal(t, MessageLock, got.Type)
	require.Empty(t, got.Records)
	require.Equal(t, []byte{0xAA, 0xBB}, got.Body)
}

func TestDecodeUpdateRejectsUnknownMessageType(t *testing.T) {
	for _, tag := range []byte{8, 42, 200, 254} {
		_, err := DecodeUpdate([]byte{1, 0, tag, 9, 9})
		if !errors.Is(err, ErrUnknownMessage) {
			t.Fatalf("tag %d: got=%v want ErrUnknownMessage", tag, err)
		}
	}
	for _, typ := range []MessageType{MessageLock, MessagePing, MessageRPC, MessageEmpty} {
		got, err := DecodeUpdate([]byte{1, 0, byte(typ)})
		require.NoError(t, err)
		require.Equal(t, typ, got.Type)
	}
}
