package app

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"scenelink/internal/gateway/config"
	"scenelink/internal/gateway/handler"
	"scenelink/internal/gateway/server"
	"scenelink/internal/scene"
	"scenelink/internal/scene/sceneyaml"
	"scenelink/internal/scene/watch"
	"scenelink/internal/session"
	"scenelink/internal/transport"
	"scenelink/internal/update"
	"scenelink/internal/wire"
)

type App struct {
	cfg        *config.Config
	log        *zap.Logger
	server     *server.Server
	session    *session.Session
	subscriber *transport.Subscriber

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New wires the session, transport and HTTP routes for cfg and loads the
// initial scene.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	// Dependencies
	requests := transport.NewRequestMailbox(4)
	updates := transport.NewUpdateMailbox(cfg.Update.Backlog)
	sess, err := session.New(session.Config{
		Header: wire.Header{
			LightIntensityFactor: cfg.LightIntensityFactor,
			SenderID:             cfg.SenderID,
			FrameRate:            uint8(cfg.FrameRate),
		},
		CacheEntries: cfg.CacheEntries,
		Update: update.Options{
			Timeout:      cfg.Update.Timeout,
			StrictLength: cfg.Update.StrictLength,
		},
	}, requests, updates, sceneLoader(cfg.ScenePath), log)
	if err != nil {
		return nil, err
	}
	if err := sess.Reload(); err != nil {
		return nil, err
	}

	// Routing & Server
	routes := server.Routes{
		Scene: transport.ServeRequests(requests, log),
		Debug: handler.NewDebugHandler(sess),
	}
	a := &App{cfg: cfg, log: log, session: sess}
	switch cfg.Update.Mode {
	case config.UpdateListen:
		routes.Updates = transport.ServeUpdates(updates, log)
	case config.UpdateDial:
		a.subscriber = &transport.Subscriber{URL: cfg.Update.URL, Mailbox: updates, Log: log}
	}
	a.server = server.New(cfg.Port, server.NewMux(routes), log)
	return a, nil
}

func sceneLoader(path string) session.Loader {
	if path == "" {
		return func() (*scene.Node, error) { return scene.Demo(), nil }
	}
	return func() (*scene.Node, error) { return sceneyaml.Load(path) }
}

// Start runs the tick loop, the optional subscriber and scene watcher, and
// blocks serving HTTP until Shutdown.
func (a *App) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.goRun(func() error { return a.session.Run(ctx, a.cfg.FrameRate) }, "tick loop")
	if a.subscriber != nil {
		a.goRun(func() error { return a.subscriber.Run(ctx) }, "update subscriber")
	}
	if a.cfg.WatchScene && a.cfg.ScenePath != "" {
		a.goRun(func() error {
			return watch.File(ctx, a.cfg.ScenePath, watch.DefaultDebounce, a.session.RequestReload, a.log)
		}, "scene watcher")
	}

	err := a.server.Start()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		cancel()
	}
	return err
}

func (a *App) goRun(fn func() error, name string) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := fn(); err != nil {
			a.log.Error(name+" stopped", zap.Error(err))
		}
	}()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
	_ = a.log.Sync()
	return err
}
