package handler

import (
	"encoding/json"
	"net/http"

	"scenelink/internal/session"
)

// DebugHandler exposes session state and a manual reload.
type DebugHandler struct {
	sess *session.Session
}

func NewDebugHandler(sess *session.Session) *DebugHandler {
	return &DebugHandler{sess: sess}
}

func (h *DebugHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.sess.Stats())
}

// HandleReload schedules a reload on the next tick and returns at once.
func (h *DebugHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.sess.RequestReload()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok": true,
	})
}

func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok": true,
	})
}
