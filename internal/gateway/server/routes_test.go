package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"scenelink/internal/gateway/handler"
	"scenelink/internal/scene"
	"scenelink/internal/session"
	"scenelink/internal/transport"
	"scenelink/internal/wire"
)

func newTestMux(t *testing.T) (http.Handler, *session.Session, *transport.RequestMailbox) {
	t.Helper()
	requests := transport.NewRequestMailbox(2)
	sess, err := session.New(session.Config{Header: wire.DefaultHeader(1)}, requests, nil,
		func() (*scene.Node, error) { return scene.Demo(), nil }, nil)
	require.NoError(t, err)
	require.NoError(t, sess.Reload())
	mux := NewMux(Routes{
		Scene: transport.ServeRequests(requests, nil),
		Debug: handler.NewDebugHandler(sess),
	})
	return mux, sess, requests
}

func TestOpsRoutes(t *testing.T) {
	mux, sess, _ := newTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var stats session.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Equal(t, uint64(1), stats.Generation)
	require.NotZero(t, stats.Sizes.Nodes)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/reload", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/debug/reload", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)
	sess.Tick()
	require.Equal(t, uint64(2), sess.Stats().Generation)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "scenelink_rebuilds_total")

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/updates", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSceneRouteServesThroughMiddleware(t *testing.T) {
	mux, sess, _ := newTestMux(t)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/scene", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("header")))
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-time.After(time.Millisecond):
				sess.Tick()
			}
		}
	}()
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	h, err := wire.DecodeHeader(msg)
	require.NoError(t, err)
	require.Equal(t, uint8(1), h.SenderID)
}
