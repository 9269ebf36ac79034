// Package session owns the loaded scene and drives the responder and the
// update applier from a single tick.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"scenelink/internal/distribution"
	"scenelink/internal/metrics"
	"scenelink/internal/responder"
	"scenelink/internal/scene"
	"scenelink/internal/update"
	"scenelink/internal/wire"
)

// Loader produces the live scene on every (re)load.
type Loader func() (*scene.Node, error)

type Config struct {
	Header       wire.Header
	CacheEntries int
	Update       update.Options
}

type Session struct {
	mu sync.Mutex

	cfg       Config
	loader    Loader
	root      *scene.Node
	dist      *distribution.Context
	gen       uint64
	responder *responder.Responder
	applier   *update.Applier

	reload chan struct{}
	ticks  uint64
	loaded time.Time

	log *zap.Logger
}

func New(cfg Config, requests responder.Source, updates update.Source, loader Loader, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if loader == nil {
		return nil, errors.New("session: loader is required")
	}
	r, err := responder.New(requests, cfg.CacheEntries, log)
	if err != nil {
		return nil, err
	}
	return &Session{
		cfg:       cfg,
		loader:    loader,
		responder: r,
		applier:   update.New(updates, cfg.Update, log),
		reload:    make(chan struct{}, 1),
		log:       log.Named("session"),
	}, nil
}

// Load replaces the live scene and rebuilds the distribution context from
// it. Handles and editable ids from earlier loads stop resolving.
func (s *Session) Load(root *scene.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(root)
}

func (s *Session) loadLocked(root *scene.Node) {
	s.gen++
	s.root = root
	s.dist = distribution.Rebuild(root, s.gen, s.cfg.Header)
	s.loaded = time.Now()
	s.responder.Purge()

	sizes := s.dist.Sizes()
	metrics.Rebuilds.Inc()
	metrics.CategoryBytes.WithLabelValues(distribution.CategoryNodes).Set(float64(sizes.Nodes))
	metrics.CategoryBytes.WithLabelValues(distribution.CategoryObjects).Set(float64(sizes.Geometries))
	metrics.CategoryBytes.WithLabelValues(distribution.CategoryMaterials).Set(float64(sizes.Materials))
	metrics.CategoryBytes.WithLabelValues(distribution.CategoryTextures).Set(float64(sizes.Textures))

	st := s.dist.Stats()
	s.log.Info("scene loaded",
		zap.Uint64("generation", s.gen),
		zap.Int("nodes", st.Nodes),
		zap.Int("editables", st.Editables),
		zap.Int("meshes", st.Meshes),
		zap.Int("textures", st.Textures),
		zap.Int("materials", st.Materials),
	)
}

// Reload runs the loader and loads its result. On failure the current
// scene stays in place.
func (s *Session) Reload() error {
	root, err := s.loader()
	if err != nil {
		return fmt.Errorf("load scene: %w", err)
	}
	s.Load(root)
	return nil
}

// RequestReload schedules a reload on the next tick. Safe from any
// goroutine; repeated requests before the tick collapse into one.
func (s *Session) RequestReload() {
	select {
	case s.reload <- struct{}{}:
	default:
	}
}

// Tick runs one frame: a pending reload, one responder step, one applier
// step. Errors are logged by the components and do not stop the loop.
func (s *Session) Tick() {
	select {
	case <-s.reload:
		if err := s.Reload(); err != nil {
			s.log.Error("reload failed", zap.Error(err))
		}
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks++
	if s.dist == nil {
		return
	}
	_ = s.responder.Step(s.dist)
	_, _ = s.applier.Step(s.dist)
}

// Run ticks at frameRate until ctx ends. The scene is loaded first if
// nothing is loaded yet.
func (s *Session) Run(ctx context.Context, frameRate int) error {
	if frameRate <= 0 {
		frameRate = 60
	}
	s.mu.Lock()
	empty := s.dist == nil
	s.mu.Unlock()
	if empty {
		if err := s.Reload(); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(time.Second / time.Duration(frameRate))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Tick()
		}
	}
}

// View runs fn with the current context while holding the session lock.
func (s *Session) View(fn func(c *distribution.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.dist)
}

type Stats struct {
	distribution.Stats
	Ticks     uint64    `json:"ticks"`
	LoadedAt  time.Time `json:"loadedAt"`
	Responder string    `json:"responder"`
}

func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Stats:     s.dist.Stats(),
		Ticks:     s.ticks,
		LoadedAt:  s.loaded,
		Responder: s.responder.State().String(),
	}
}
