package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"scenelink/internal/gateway/handler"
	"scenelink/internal/gateway/middleware"
)

// Routes are the handlers NewMux mounts. Updates is nil when the host
// dials the tracer for updates instead of accepting them.
type Routes struct {
	Scene   http.Handler
	Updates http.Handler
	Debug   *handler.DebugHandler
}

func NewMux(r Routes) http.Handler {
	mux := http.NewServeMux()

	// Protocol
	mux.Handle("/scene", r.Scene)
	if r.Updates != nil {
		mux.Handle("/updates", r.Updates)
	}

	// Ops
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", handler.HandleHealth)
	mux.HandleFunc("/debug/stats", r.Debug.HandleStats)
	mux.HandleFunc("/debug/reload", r.Debug.HandleReload)

	return middleware.CORS(mux)
}
