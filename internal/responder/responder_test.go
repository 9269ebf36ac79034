package responder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"scenelink/internal/distribution"
	"scenelink/internal/scene"
	"scenelink/internal/wire"
)

type fakeRequest struct {
	category string
	replies  [][]byte
	err      error
}

func (f *fakeRequest) Category() []byte { return []byte(f.category) }

func (f *fakeRequest) Reply(buf []byte) error {
	f.replies = append(f.replies, buf)
	return f.err
}

type fakeSource struct{ queue []*fakeRequest }

func (s *fakeSource) Poll() (Request, bool) {
	if len(s.queue) == 0 {
		return nil, false
	}
	r := s.queue[0]
	s.queue = s.queue[1:]
	return r, true
}

func TestStepAnswersEachRequestOnce(t *testing.T) {
	c := distribution.Rebuild(scene.Demo(), 1, wire.DefaultHeader(3))
	reqs := []*fakeRequest{{category: "header"}, {category: "nodes"}, {category: "curve"}}
	src := &fakeSource{queue: append([]*fakeRequest(nil), reqs...)}
	r, err := New(src, 4, nil)
	require.NoError(t, err)

	for range reqs {
		require.NoError(t, r.Step(c))
		require.Equal(t, Idle, r.State())
	}
	require.NoError(t, r.Step(c), "empty poll is a no-op")

	for _, req := range reqs {
		require.Len(t, req.replies, 1, req.category)
		want, err := c.Serialize(req.category)
		require.NoError(t, err)
		require.Equal(t, want, req.replies[0], req.category)
	}
}

func TestUnknownCategoryGetsEmptyReply(t *testing.T) {
	c := distribution.Rebuild(scene.Demo(), 1, wire.DefaultHeader(1))
	req := &fakeRequest{category: "lights"}
	r, err := New(&fakeSource{queue: []*fakeRequest{req}}, 0, nil)
	require.NoError(t, err)

	err = r.Step(c)
	if !errors.Is(err, distribution.ErrProtocolViolation) {
		t.Fatalf("got=%v want ErrProtocolViolation", err)
	}
	require.Equal(t, Idle, r.State())
	require.Len(t, req.replies, 1)
	require.Empty(t, req.replies[0])
}

func TestInvalidUTF8IsProtocolViolation(t *testing.T) {
	c := distribution.Rebuild(scene.Demo(), 1, wire.DefaultHeader(1))
	req := &fakeRequest{category: string([]byte{0xff, 0xfe})}
	r, _ := New(&fakeSource{queue: []*fakeRequest{req}}, 0, nil)
	if err := r.Step(c); !errors.Is(err, distribution.ErrProtocolViolation) {
		t.Fatalf("got=%v want ErrProtocolViolation", err)
	}
	require.Len(t, req.replies, 1)
}

func TestCacheFollowsRevision(t *testing.T) {
	c := distribution.Rebuild(scene.Demo(), 1, wire.DefaultHeader(1))
	src := &fakeSource{}
	r, err := New(src, 8, nil)
	require.NoError(t, err)

	ask := func() []byte {
		req := &fakeRequest{category: "nodes"}
		src.queue = append(src.queue, req)
		require.NoError(t, r.Step(c))
		return req.replies[0]
	}

	first := ask()
	ask()
	require.Equal(t, 1, r.cache.Len())

	n, err := c.Editable(0)
	require.NoError(t, err)
	n.Position[0] = 42
	c.Touch()

	third := ask()
	require.Equal(t, 2, r.cache.Len())
	require.NotEqual(t, first, third)

	r.Purge()
	require.Zero(t, r.cache.Len())
}

func TestFailedReplyIsLogged(t *testing.T) {
	c := distribution.Rebuild(scene.Demo(), 1, wire.DefaultHeader(1))
	closed := errors.New("connection closed")
	req := &fakeRequest{category: "header", err: closed}
	core, logs := observer.New(zapcore.WarnLevel)
	r, err := New(&fakeSource{queue: []*fakeRequest{req}}, 0, zap.New(core))
	require.NoError(t, err)

	err = r.Step(c)
	require.ErrorIs(t, err, closed)
	require.Equal(t, Idle, r.State())

	entries := logs.FilterMessage("reply failed").All()
	require.Len(t, entries, 1)
	require.Equal(t, "header", entries[0].ContextMap()["category"])
}
