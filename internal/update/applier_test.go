package update

import (
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"scenelink/internal/distribution"
	"scenelink/internal/scene"
	"scenelink/internal/wire"
)

type queueSource struct{ msgs [][]byte }

func (q *queueSource) Receive(time.Duration) ([]byte, bool) {
	if len(q.msgs) == 0 {
		return nil, false
	}
	m := q.msgs[0]
	q.msgs = q.msgs[1:]
	return m, true
}

// editables: a(0) lamp(1) b(2) cam(3)
func patchScene() *scene.Node {
	root := scene.NewNode("root")
	a := root.AddChild(scene.NewNode("a"))
	a.Surfaces = []*scene.Surface{{Name: "a", Data: scene.Plane(1)}}
	lamp := root.AddChild(scene.NewNode("lamp"))
	lamp.Light = &scene.Light{Type: scene.LightOmni, Intensity: 1, Range: 10}
	b := root.AddChild(scene.NewNode("b"))
	b.Position = mgl32.Vec3{1, 1, 1}
	b.Surfaces = []*scene.Surface{{Name: "b", Data: scene.Box(1, 1, 1)}}
	cam := root.AddChild(scene.NewNode("cam"))
	cam.Camera = scene.NewCamera(60, 1, 0.1, 100)
	return root
}

func message(records ...wire.Record) []byte {
	return wire.EncodeUpdate(wire.Update{ClientID: 7, Type: wire.MessageParameterUpdate, Records: records})
}

func snapshot(root *scene.Node) map[string]scene.Node {
	out := map[string]scene.Node{}
	root.Walk(func(n *scene.Node) bool {
		cp := *n
		if n.Light != nil {
			l := *n.Light
			cp.Light = &l
		}
		out[n.Name] = cp
		return true
	})
	return out
}

func TestPositionPatchTargetsThirdEditable(t *testing.T) {
	root := patchScene()
	c := distribution.Rebuild(root, 1, wire.DefaultHeader(1))
	before := snapshot(root)
	rev := c.Revision()

	a := New(nil, Options{StrictLength: true}, nil)
	res, err := a.Apply(c, message(wire.Vec3Record(3, uint16(ParamPosition), mgl32.Vec3{4, 5, 6})))
	require.NoError(t, err)
	require.Equal(t, 1, res.Applied)

	b := root.Find("b")
	require.Equal(t, mgl32.Vec3{4, 5, -6}, b.Position)
	target, _ := c.Editable(2)
	require.Equal(t, mgl32.Vec3{4, 5, 6}, target.Position)
	require.Greater(t, c.Revision(), rev)

	after := snapshot(root)
	for name, n := range before {
		if name == "b" {
			continue
		}
		require.Equal(t, n.Position, after[name].Position, name)
		require.Equal(t, n.Rotation, after[name].Rotation, name)
		require.Equal(t, n.Scale, after[name].Scale, name)
	}
}

func TestRotationPatchIsConverted(t *testing.T) {
	root := patchScene()
	c := distribution.Rebuild(root, 1, wire.DefaultHeader(1))
	q := mgl32.Quat{W: 0.5, V: mgl32.Vec3{0.5, 0.5, 0.5}}

	_, err := New(nil, Options{}, nil).Apply(c, message(wire.QuatRecord(4, uint16(ParamRotation), q)))
	require.NoError(t, err)
	require.Equal(t, mgl32.Quat{W: 0.5, V: mgl32.Vec3{-0.5, -0.5, 0.5}}, root.Find("cam").Rotation)
}

func TestIntensityOnNonLightIsIgnored(t *testing.T) {
	root := patchScene()
	c := distribution.Rebuild(root, 1, wire.DefaultHeader(1))
	before := snapshot(root)
	rev := c.Revision()

	res, err := New(nil, Options{StrictLength: true}, nil).Apply(c, message(wire.FloatRecord(1, uint16(ParamLightIntensity), 9)))
	require.NoError(t, err)
	require.Equal(t, Result{Type: wire.MessageParameterUpdate, Ignored: 1}, res)
	require.Equal(t, before, snapshot(root))
	require.Equal(t, rev, c.Revision())
}

func TestLightPatches(t *testing.T) {
	root := patchScene()
	c := distribution.Rebuild(root, 1, wire.DefaultHeader(1))

	res, err := New(nil, Options{StrictLength: true}, nil).Apply(c, message(
		wire.FloatRecord(2, uint16(ParamLightIntensity), 3),
		wire.FloatRecord(2, uint16(ParamLightRange), 6),
		wire.ColorRecord(2, uint16(ParamLightColor), mgl32.Vec4{0.1, 0.2, 0.3, 1}),
	))
	require.NoError(t, err)
	require.Equal(t, 3, res.Applied)

	l := root.Find("lamp").Light
	require.Equal(t, float32(3), l.Intensity)
	require.Equal(t, float32(12), l.Range)
	require.Equal(t, mgl32.Vec3{0.1, 0.2, 0.3}, l.Color)

	n, _ := c.Editable(1)
	wl := n.Payload.(*wire.Light)
	require.Equal(t, float32(12), wl.Range)
	require.Equal(t, float32(3), wl.Intensity)
}

func TestOutOfRangeRejectsWholeMessage(t *testing.T) {
	root := patchScene()
	c := distribution.Rebuild(root, 1, wire.DefaultHeader(1))

	for _, id := range []uint16{0, 5} {
		msg := message(
			wire.Vec3Record(1, uint16(ParamPosition), mgl32.Vec3{9, 9, 9}),
			wire.Vec3Record(id, uint16(ParamPosition), mgl32.Vec3{1, 1, 1}),
		)
		_, err := New(nil, Options{}, nil).Apply(c, msg)
		if !errors.Is(err, ErrMalformedUpdate) || !errors.Is(err, distribution.ErrOutOfRangeReference) {
			t.Fatalf("object %d: got=%v want malformed out-of-range", id, err)
		}
	}
	require.Equal(t, mgl32.Vec3{}, root.Find("a").Position, "valid record before the bad one must not apply")
}

func TestDeclaredLengthPolicy(t *testing.T) {
	rec := wire.FloatRecord(2, uint16(ParamLightIntensity), 5)
	rec.DeclaredLength = 8
	msg := message(rec)

	root := patchScene()
	c := distribution.Rebuild(root, 1, wire.DefaultHeader(1))
	if _, err := New(nil, Options{StrictLength: true}, nil).Apply(c, msg); !errors.Is(err, ErrMalformedUpdate) {
		t.Fatalf("strict: got=%v want ErrMalformedUpdate", err)
	}

	res, err := New(nil, Options{StrictLength: false}, nil).Apply(c, msg)
	require.NoError(t, err)
	require.Equal(t, 1, res.Applied)
	require.Equal(t, float32(5), root.Find("lamp").Light.Intensity)
}

func TestUnknownValueTypeIsMalformed(t *testing.T) {
	msg := message(wire.FloatRecord(1, uint16(ParamScale), 1))
	msg[wire.UpdateHeaderSize+5] = byte(wire.ParamString)
	c := distribution.Rebuild(patchScene(), 1, wire.DefaultHeader(1))
	if _, err := New(nil, Options{}, nil).Apply(c, msg); !errors.Is(err, ErrMalformedUpdate) {
		t.Fatalf("got=%v want ErrMalformedUpdate", err)
	}
}

func TestStepNoopsAndNonUpdateMessages(t *testing.T) {
	root := patchScene()
	c := distribution.Rebuild(root, 1, wire.DefaultHeader(1))
	before := snapshot(root)

	src := &queueSource{msgs: [][]byte{
		{},
		wire.EncodeUpdate(wire.Update{Type: wire.MessagePing, Body: []byte{1, 2, 3}}),
	}}
	a := New(src, Options{Timeout: time.Millisecond}, nil)

	for i := 0; i < 3; i++ {
		res, err := a.Step(c)
		require.NoError(t, err)
		require.Zero(t, res.Applied)
	}
	require.Equal(t, before, snapshot(root))
}

func TestStepRejectsUnknownMessageTypes(t *testing.T) {
	root := patchScene()
	c := distribution.Rebuild(root, 1, wire.DefaultHeader(1))
	before := snapshot(root)
	rev := c.Revision()

	src := &queueSource{msgs: [][]byte{
		{1, 0, 42},
		{1, 0, 200, 9, 9},
		{1, 0, byte(wire.MessagePing)},
	}}
	a := New(src, Options{Timeout: time.Millisecond}, nil)

	for i := 0; i < 2; i++ {
		_, err := a.Step(c)
		if !errors.Is(err, distribution.ErrProtocolViolation) {
			t.Fatalf("message %d: got=%v want ErrProtocolViolation", i, err)
		}
		require.False(t, errors.Is(err, ErrMalformedUpdate))
	}
	res, err := a.Step(c)
	require.NoError(t, err)
	require.Equal(t, wire.MessagePing, res.Type)
	require.Equal(t, before, snapshot(root))
	require.Equal(t, rev, c.Revision())
}

func TestExpandedLeafMovesOwningNode(t *testing.T) {
	root := scene.Demo()
	c := distribution.Rebuild(root, 1, wire.DefaultHeader(1))
	var (
		id   uint16
		leaf *distribution.Node
	)
	for i := 0; i < c.EditableCount(); i++ {
		n, _ := c.Editable(i)
		if n.Expanded {
			id, leaf = uint16(i+1), n
			break
		}
	}
	require.NotZero(t, id)
	group := c.TransformTarget(leaf)
	require.NotSame(t, leaf, group)
	require.Equal(t, wire.NodeGroup, group.Type())

	res, err := New(nil, Options{}, nil).Apply(c, message(
		wire.Vec3Record(id, uint16(ParamPosition), mgl32.Vec3{3, 4, 5}),
		wire.Vec3Record(id, uint16(ParamScale), mgl32.Vec3{2, 2, 2}),
	))
	require.NoError(t, err)
	require.Equal(t, 2, res.Applied)

	prop := root.Find("prop")
	require.Equal(t, mgl32.Vec3{3, 4, -5}, prop.Position)
	require.Equal(t, mgl32.Vec3{2, 2, 2}, prop.Scale)
	require.Equal(t, mgl32.Vec3{3, 4, 5}, group.Position)
	require.Equal(t, mgl32.Vec3{2, 2, 2}, group.Scale)
	require.Equal(t, mgl32.Vec3{}, leaf.Position)
	require.Equal(t, mgl32.Vec3{1, 1, 1}, leaf.Scale)
}
