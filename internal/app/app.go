// Package app wires Fresh's text-manipulation core (internal/buffer,
// internal/marker, internal/decoration, internal/eventlog, internal/cursor,
// internal/editorstate, internal/view) into a running editor: a session of
// open buffers, a plugin host, a terminal renderer, and a frame loop
// driving them all, in the same role the teacher's Application/eventLoop
// played for its dispatcher/engine pair.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/fresh-editor/fresh/internal/buffer"
	"github.com/fresh-editor/fresh/internal/config"
	"github.com/fresh-editor/fresh/internal/event"
	"github.com/fresh-editor/fresh/internal/fswatch"
	"github.com/fresh-editor/fresh/internal/plugin"
	"github.com/fresh-editor/fresh/internal/renderer"
	"github.com/fresh-editor/fresh/internal/renderer/backend"
	"github.com/fresh-editor/fresh/internal/session"
	"github.com/fresh-editor/fresh/internal/vfs"
)

// Options configures a new Application.
type Options struct {
	ConfigPath    string
	WorkspacePath string
	Files         []string
	PluginPaths   []string
	Debug         bool
	LogLevel      string
	ReadOnly      bool
}

// Application is the running editor: one session of buffers, the plugin
// system, the renderer, and the event bus connecting them.
type Application struct {
	opts Options

	cfg      *config.Config
	bus      event.Bus
	session  *session.Session
	plugins  *plugin.System
	watcher  *fswatch.Watcher
	backend  backend.Backend
	renderer *renderer.Renderer
	events   chan backend.Event

	logger  *Logger
	metrics *Metrics

	cfgAdapter *ConfigProviderAdapter
	evAdapter  *EventBus

	active buffer.BufferID

	running bool
	cancel  context.CancelFunc
}

// InitError wraps a failure during New, naming the stage that failed.
type InitError struct {
	Stage string
	Err   error
}

func (e *InitError) Error() string { return fmt.Sprintf("app init: %s: %v", e.Stage, e.Err) }
func (e *InitError) Unwrap() error { return e.Err }

// New builds an Application from opts: loads configuration, starts the
// event bus, opens any files named in opts.Files (or a scratch buffer if
// none), and initializes the plugin system against the active buffer.
func New(opts Options) (*Application, error) {
	logLevel := ParseLogLevel(opts.LogLevel)
	logger := NewLogger(LoggerConfig{Level: logLevel})

	cfg := config.New(config.WithProjectConfigDir(opts.WorkspacePath))
	if err := cfg.Load(context.Background()); err != nil {
		return nil, &InitError{Stage: "config", Err: err}
	}

	bus := event.NewBus()
	if err := bus.Start(); err != nil {
		return nil, &InitError{Stage: "event bus", Err: err}
	}

	sess := session.New(vfs.NewOSFS())
	var firstErr error
	for _, f := range opts.Files {
		if _, err := sess.Open(f); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if len(opts.Files) == 0 {
		sess.OpenScratch()
	}
	if firstErr != nil {
		return nil, &InitError{Stage: "open", Err: firstErr}
	}

	active := sess.Active()

	watcher, err := fswatch.New(bus)
	if err != nil {
		return nil, &InitError{Stage: "fswatch", Err: err}
	}
	for _, path := range sess.Paths() {
		_ = watcher.Watch(path)
	}

	app := &Application{
		opts:       opts,
		cfg:        cfg,
		bus:        bus,
		session:    sess,
		watcher:    watcher,
		logger:     logger,
		metrics:    NewMetrics(),
		cfgAdapter: NewConfigProviderAdapter(cfg),
		evAdapter:  NewEventBus(bus, "plugin"),
		active:     active.ID,
	}

	pluginPaths := opts.PluginPaths
	if len(pluginPaths) == 0 {
		pluginPaths = plugin.DefaultPluginPaths()
	}
	sysCfg := plugin.DefaultSystemConfig()
	sysCfg.ManagerConfig.PluginPaths = pluginPaths
	sysCfg.BufferProvider = NewBufferProviderAdapter(active.View, active.Path)
	sysCfg.CursorProvider = NewCursorProviderAdapter(active.View)
	sysCfg.ConfigProvider = app.cfgAdapter
	sysCfg.EventProvider = app.evAdapter

	app.plugins = plugin.NewSystem(sysCfg)
	if err := app.plugins.Initialize(); err != nil {
		return nil, &InitError{Stage: "plugins", Err: err}
	}

	return app, nil
}

// Session returns the application's buffer session.
func (app *Application) Session() *session.Session { return app.session }

// Config returns the application's configuration.
func (app *Application) Config() *config.Config { return app.cfg }

// EventBus returns the application's underlying event bus.
func (app *Application) EventBus() event.Bus { return app.bus }

// Plugins returns the plugin system.
func (app *Application) Plugins() *plugin.System { return app.plugins }

// Renderer returns the terminal renderer, or nil before Run starts it.
func (app *Application) Renderer() *renderer.Renderer { return app.renderer }

// ActiveEntry returns the session entry for the active buffer, or nil if
// none is open.
func (app *Application) ActiveEntry() *session.Entry {
	e, _ := app.session.Get(app.active)
	return e
}

// SetBackend installs a pre-constructed backend (e.g. backend.NewNullBackend
// in tests) instead of the real terminal Run would otherwise create. Must be
// called before Run.
func (app *Application) SetBackend(b backend.Backend) {
	app.backend = b
}

// SetActiveBuffer switches the active buffer and re-points the plugin
// system's buffer/cursor providers and the renderer at it.
func (app *Application) SetActiveBuffer(id buffer.BufferID) error {
	entry, ok := app.session.Get(id)
	if !ok {
		return ErrBufferNotFound
	}
	if err := app.session.SetActive(id); err != nil {
		return err
	}
	app.active = id

	_ = app.plugins.SetProvider("buffer", NewBufferProviderAdapter(entry.View, entry.Path))
	_ = app.plugins.SetProvider("cursor", NewCursorProviderAdapter(entry.View))
	if app.renderer != nil {
		bridge := newRenderBridge(entry)
		app.renderer.SetBuffer(bridge)
		app.renderer.SetCursorProvider(bridge)
		app.renderer.SetHighlightProvider(bridge)
		app.renderer.MarkFullRedraw()
	}
	return nil
}

// Run initializes the terminal backend and renderer, loads and activates
// plugins, then drives the frame loop until ctx is cancelled or Quit is
// called.
func (app *Application) Run(ctx context.Context) error {
	if app.running {
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	app.cancel = cancel
	defer cancel()

	term := app.backend
	if term == nil {
		t, err := backend.NewTerminal()
		if err != nil {
			return &InitError{Stage: "backend", Err: err}
		}
		term = t
	}
	if err := term.Init(); err != nil {
		return &InitError{Stage: "backend init", Err: err}
	}
	defer term.Shutdown()
	app.backend = term

	app.renderer = renderer.New(term, renderer.DefaultOptions())
	if entry := app.ActiveEntry(); entry != nil {
		bridge := newRenderBridge(entry)
		app.renderer.SetBuffer(bridge)
		app.renderer.SetCursorProvider(bridge)
		app.renderer.SetHighlightProvider(bridge)
	}

	if err := app.plugins.LoadAll(ctx); err != nil {
		app.logger.Warn("plugin load: %v", err)
	}

	go app.watcher.Run(ctx)

	app.events = make(chan backend.Event, 64)
	go app.pollEvents(ctx, term)

	app.running = true
	defer func() { app.running = false }()

	return app.eventLoop(ctx)
}

// pollEvents runs on its own goroutine because backend.PollEvent blocks
// until the next terminal event; it forwards each event onto app.events
// for the frame loop to pick up without itself blocking the render tick.
func (app *Application) pollEvents(ctx context.Context, term backend.Backend) {
	for {
		if ctx.Err() != nil {
			return
		}
		ev := term.PollEvent()
		select {
		case app.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// eventLoop is the 60fps frame loop: drain pending input, update the
// renderer, render, repeat. Mirrors the teacher's Application.eventLoop,
// generalized to the session/renderBridge wiring above instead of a
// dispatcher and engine.Engine.
func (app *Application) eventLoop(ctx context.Context) error {
	const frameInterval = time.Second / 60
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now

			frameTimer := StartTimer()
			app.drainInput()
			app.renderer.Update(dt)
			app.renderer.Render()
			app.metrics.RecordFrame(frameTimer.Elapsed())
		}
	}
}

// drainInput processes every backend event queued since the last frame.
// Keybinding dispatch and mode handling belong to the Lua plugin layer
// (internal/plugin/ops), not this package; drainInput only routes raw
// key/resize notifications to the renderer and event bus.
func (app *Application) drainInput() {
	for {
		select {
		case ev := <-app.events:
			app.handleEvent(ev)
		default:
			return
		}
	}
}

func (app *Application) handleEvent(ev backend.Event) {
	switch ev.Type {
	case backend.EventResize:
		app.renderer.Resize(ev.Width, ev.Height)
	case backend.EventKey:
		if ev.Key == backend.KeyCtrlC {
			if app.cancel != nil {
				app.cancel()
			}
			return
		}
		_ = app.evAdapter.Emit("input.key", map[string]any{
			"rune": string(ev.Rune),
			"key":  int(ev.Key),
			"mod":  int(ev.Mod),
		})
	}
}

// Quit stops the frame loop. Returns ErrUnsavedChanges if force is false
// and any open buffer has unsaved edits.
func (app *Application) Quit(force bool) error {
	if !force && app.session.HasDirty() {
		return ErrUnsavedChanges
	}
	if app.cancel != nil {
		app.cancel()
	}
	return nil
}

// Shutdown releases plugins, the file watcher, and the event bus, in that
// order, mirroring the teacher's ordered-cleanup Shutdown.
func (app *Application) Shutdown(ctx context.Context) error {
	if app.plugins != nil {
		if err := app.plugins.Shutdown(ctx); err != nil {
			app.logger.Warn("plugin shutdown: %v", err)
		}
	}
	if app.watcher != nil {
		_ = app.watcher.Close()
	}
	if app.bus != nil {
		_ = app.bus.Stop(ctx)
	}
	return nil
}
