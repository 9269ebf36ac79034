package app

import (
	"os"
	"path/filepath"
	"testing"

	"scenelink/internal/gateway/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:         "127.0.0.1:0",
		FrameRate:    60,
		SenderID:     1,
		CacheEntries: 4,
		Update:       config.UpdateConfig{Mode: config.UpdateListen, Backlog: 4},
	}
}

func TestNewUpdateModes(t *testing.T) {
	a, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	if a.subscriber != nil {
		t.Fatalf("listen mode should not dial")
	}

	cfg := testConfig()
	cfg.Update.Mode = config.UpdateDial
	cfg.Update.URL = "ws://127.0.0.1:1/updates"
	a, err = New(cfg, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if a.subscriber == nil || a.subscriber.URL != cfg.Update.URL {
		t.Fatalf("dial mode subscriber: %+v", a.subscriber)
	}
}

func TestNewFailsOnBrokenSceneFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte("root: [unclosed"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := testConfig()
	cfg.ScenePath = path
	if _, err := New(cfg, nil); err == nil {
		t.Fatalf("expected error for broken scene file")
	}
}

func TestNewLoadsSceneFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	doc := "root:\n  name: stage\n  children:\n    - name: lamp\n      light: {type: point, intensity: 1}\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := testConfig()
	cfg.ScenePath = path
	a, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	st := a.session.Stats()
	if st.Nodes != 2 || st.Editables != 1 {
		t.Fatalf("stats: got=%+v want 2 nodes 1 editable", st)
	}
}
