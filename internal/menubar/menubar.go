// Package menubar drives a single popup window attached to a tray icon.
//
// A Menubar decides when the popup is created, where it is placed relative
// to the tray icon and when it is shown or hidden. It owns no toolkit code:
// everything platform specific sits behind Host, Tray and Window.
//
// A Menubar is not safe for concurrent use. Every method, and every
// callback it registers with the host, must run on the host's UI loop.
package menubar

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/menubar/internal/assets"
	"github.com/jmylchreest/menubar/internal/config"
	"github.com/jmylchreest/menubar/internal/event"
	"github.com/jmylchreest/menubar/internal/geometry"
	"github.com/jmylchreest/menubar/internal/position"
)

var (
	// ErrNotReady is returned when a popup is requested before the host
	// signalled readiness.
	ErrNotReady = errors.New("menubar not ready")
	// ErrAlreadyStarted is returned by a second call to Start.
	ErrAlreadyStarted = errors.New("menubar already started")
)

// State is the popup's visibility state.
type State int

const (
	NoWindow State = iota
	Hidden
	Visible
)

func (s State) String() string {
	switch s {
	case NoWindow:
		return "no-window"
	case Hidden:
		return "hidden"
	case Visible:
		return "visible"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Status is a snapshot of the menubar for observers.
type Status struct {
	State     State
	Anchor    position.Anchor
	WindowID  string
	LastShown time.Time      // zero until the first show
	Bounds    *geometry.Rect // cached tray bounds, nil when none were seen
	Highlight bool           // tray highlight is supported
}

// Option configures a Menubar.
type Option func(*Menubar)

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Menubar) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithPlatform overrides the platform detected from runtime.GOOS.
func WithPlatform(p position.Platform) Option {
	return func(m *Menubar) {
		m.platform = p
	}
}

// WithEmitter shares an existing event emitter.
func WithEmitter(e *event.Emitter) Option {
	return func(m *Menubar) {
		if e != nil {
			m.events = e
		}
	}
}

// Menubar is the tray popup state machine.
type Menubar struct {
	host     Host
	cfg      *config.Config
	logger   *slog.Logger
	platform position.Platform
	events   *event.Emitter

	tray      Tray
	window    Window
	windowID  string
	state     State
	anchor    position.Anchor
	cache     BoundsCache
	highlight bool
	started   bool
	ready     bool
	lastShown time.Time

	now func() time.Time
}

// New creates a Menubar. Nothing touches the host until Start.
func New(host Host, cfg *config.Config, opts ...Option) *Menubar {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	m := &Menubar{
		host:     host,
		cfg:      cfg.Clone(),
		logger:   slog.Default(),
		platform: position.ParsePlatform(runtime.GOOS),
		events:   event.NewEmitter(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Events returns the emitter lifecycle events are published on.
func (m *Menubar) Events() *event.Emitter {
	return m.events
}

// Start waits for the host to become ready and then sets up the tray.
// When the host is already ready the setup runs before Start returns and
// its error is returned; otherwise setup errors are logged.
func (m *Menubar) Start() error {
	if m.started {
		return ErrAlreadyStarted
	}
	m.started = true

	var (
		ran bool
		err error
	)
	m.host.WhenReady(func() {
		ran = true
		err = m.setup()
		if err != nil {
			m.logger.Error("menubar setup failed", "error", err)
		}
	})
	if ran {
		return err
	}
	return nil
}

func (m *Menubar) setup() error {
	if dock := m.host.Dock(); dock != nil && !m.cfg.Dock.ShowIcon {
		dock.Hide()
	}

	tray, err := m.host.NewTray(m.icon())
	if err != nil {
		return fmt.Errorf("create tray: %w", err)
	}
	m.tray = tray

	trigger := TriggerClick
	if m.cfg.Tray.ShowOnRightClick {
		trigger = TriggerRightClick
	}
	tray.On(trigger, m.Clicked)
	tray.On(TriggerDoubleClick, m.Clicked)
	tray.SetToolTip(m.cfg.Tray.Tooltip)

	m.chooseAnchor()

	m.highlight = true
	m.setHighlight(HighlightNever)

	if m.cfg.Window.Preload {
		if err := m.createWindow(); err != nil {
			return fmt.Errorf("preload window: %w", err)
		}
	}

	m.ready = true
	m.logger.Info("menubar ready", "platform", m.platform, "anchor", m.anchor)
	m.emit(event.Ready, "")
	return nil
}

func (m *Menubar) icon() Icon {
	if path := m.cfg.IconPath(); path != "" {
		return Icon{Path: path}
	}
	if m.cfg.Tray.Icon != "" {
		m.logger.Warn("tray icon not found, using bundled icon", "path", m.cfg.Tray.Icon)
	}
	return Icon{Data: assets.DefaultIcon}
}

// chooseAnchor picks the anchor from configuration or the desktop shell.
func (m *Menubar) chooseAnchor() {
	if a := m.cfg.AnchorOverride(); a != "" {
		m.anchor = a
		return
	}
	bounds := m.cache.Get()
	if bounds == nil && m.tray != nil {
		if b, ok := m.tray.Bounds(); ok {
			bounds = &b
		}
	}
	m.anchor = position.Classify(m.platform, bounds)
}

// reclassify follows the taskbar when fresh bounds place it on another edge.
func (m *Menubar) reclassify() {
	if !m.platform.MultiEdge() || m.cfg.AnchorOverride() != "" {
		return
	}
	a := position.Classify(m.platform, m.cache.Get())
	if a == m.anchor {
		return
	}
	m.logger.Debug("anchor reclassified", "from", m.anchor, "to", a)
	m.anchor = a
}

func (m *Menubar) setHighlight(mode HighlightMode) {
	if !m.highlight || m.tray == nil {
		return
	}
	if err := m.tray.SetHighlightMode(mode); err != nil {
		m.highlight = false
		m.logger.Debug("tray highlight disabled", "error", err)
	}
}

func (m *Menubar) createWindow() error {
	id := ulid.MustNew(ulid.Timestamp(m.now()), rand.Reader).String()
	m.emit(event.CreateWindow, id)

	w, err := m.host.NewWindow(WindowOptions{
		Title:       "menubar",
		Width:       m.cfg.Window.Width,
		Height:      m.cfg.Window.Height,
		Show:        false,
		Frame:       false,
		AlwaysOnTop: m.cfg.Window.AlwaysOnTop,
		Resizable:   m.cfg.Window.Resizable,
	})
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}

	w.OnBlur(func() { m.windowBlurred(w) })
	w.OnClose(func() { m.windowClosed(w) })
	if m.cfg.Window.ShowOnAllWorkspaces {
		w.SetVisibleOnAllWorkspaces(true)
	}

	m.window = w
	m.windowID = id
	m.state = Hidden

	url := m.cfg.IndexURL()
	if err := w.LoadURL(url); err != nil {
		m.logger.Warn("failed to load popup content", "url", url, "error", err)
	}
	m.logger.Debug("window created", "window_id", id)
	m.emit(event.AfterCreateWindow, id)
	return nil
}

// ShowWindow shows the popup next to the tray icon, creating it first when
// needed. bounds are the tray icon's rectangle if the caller knows it.
func (m *Menubar) ShowWindow(bounds *geometry.Rect) error {
	if !m.ready {
		return ErrNotReady
	}
	if m.window == nil {
		if err := m.createWindow(); err != nil {
			return err
		}
	}

	m.setHighlight(HighlightAlways)
	if m.cache.Update(bounds) {
		m.reclassify()
	}
	trayBounds := m.trayBounds(bounds)

	m.emit(event.Show, m.windowID)

	size := m.window.Size()
	if size.Width <= 0 || size.Height <= 0 {
		size = geometry.Size{Width: m.cfg.Window.Width, Height: m.cfg.Window.Height}
	}
	var near geometry.Point
	if trayBounds != nil {
		near = trayBounds.Center()
	}
	res := position.Resolve(position.Request{
		Anchor:   m.anchor,
		Bounds:   trayBounds,
		Window:   size,
		Platform: m.platform,
		WorkArea: m.host.WorkArea(near),
		Override: m.cfg.Override(),
	})

	m.window.SetPosition(res.X, res.Y)
	m.window.Show()
	m.state = Visible
	m.lastShown = m.now()

	m.logger.Debug("window shown",
		"window_id", m.windowID,
		"x", res.X,
		"y", res.Y,
		"anchor", res.Anchor,
		"fallback", res.Fallback,
	)
	m.emit(event.AfterShow, m.windowID)
	return nil
}

// trayBounds picks the freshest usable tray rectangle.
func (m *Menubar) trayBounds(given *geometry.Rect) *geometry.Rect {
	if geometry.Real(given) {
		return given
	}
	if cached := m.cache.Get(); cached != nil {
		return cached
	}
	if m.tray != nil {
		if b, ok := m.tray.Bounds(); ok {
			return &b
		}
	}
	return given
}

// HideWindow hides the popup. It does nothing when no popup exists.
func (m *Menubar) HideWindow() {
	if m.window == nil {
		return
	}
	m.setHighlight(HighlightNever)
	m.emit(event.Hide, m.windowID)
	m.window.Hide()
	m.state = Hidden
	m.logger.Debug("window hidden", "window_id", m.windowID)
	m.emit(event.AfterHide, m.windowID)
}

// Clicked handles a tray interaction. A click with any modifier held
// always hides.
func (m *Menubar) Clicked(c Click) {
	if c.Modifiers != 0 || m.state == Visible {
		m.HideWindow()
		return
	}
	if err := m.ShowWindow(c.Bounds); err != nil {
		m.logger.Error("failed to show window", "trigger", c.Trigger, "error", err)
	}
}

// Toggle shows a hidden popup or hides a visible one.
func (m *Menubar) Toggle() error {
	if m.state == Visible {
		m.HideWindow()
		return nil
	}
	return m.ShowWindow(nil)
}

// CloseWindow destroys the popup. The next show creates a new one.
func (m *Menubar) CloseWindow() {
	w := m.window
	if w == nil {
		return
	}
	w.Close()
	// Hosts that do not report programmatic closes still end in NoWindow.
	m.windowClosed(w)
}

func (m *Menubar) windowBlurred(w Window) {
	if w != m.window {
		return
	}
	if m.cfg.Window.AlwaysOnTop {
		m.emit(event.FocusLost, m.windowID)
		return
	}
	m.HideWindow()
}

func (m *Menubar) windowClosed(w Window) {
	if w != m.window {
		return
	}
	id := m.windowID
	m.window = nil
	m.windowID = ""
	m.state = NoWindow
	m.logger.Debug("window closed", "window_id", id)
	m.emit(event.AfterClose, id)
}

func (m *Menubar) emit(t event.Type, windowID string) {
	m.events.Emit(event.Event{Type: t, WindowID: windowID, Time: m.now()})
}

// State returns the popup's visibility state.
func (m *Menubar) State() State {
	return m.state
}

// Anchor returns the anchor used for the next show.
func (m *Menubar) Anchor() position.Anchor {
	return m.anchor
}

// WindowID returns the live popup's ID, or "" when there is none.
func (m *Menubar) WindowID() string {
	return m.windowID
}

// Ready reports whether the tray has been set up.
func (m *Menubar) Ready() bool {
	return m.ready
}

// Status returns a snapshot of the menubar.
func (m *Menubar) Status() Status {
	return Status{
		State:     m.state,
		Anchor:    m.anchor,
		WindowID:  m.windowID,
		LastShown: m.lastShown,
		Bounds:    m.cache.Get(),
		Highlight: m.highlight,
	}
}

// Config returns a copy of the active configuration.
func (m *Menubar) Config() *config.Config {
	return m.cfg.Clone()
}

// UpdateConfig applies fn to a copy of the configuration and installs the
// result if it validates.
func (m *Menubar) UpdateConfig(fn func(*config.Config)) error {
	next := m.cfg.Clone()
	fn(next)
	if err := next.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	m.ApplyConfig(next)
	return nil
}

// SetOption sets a single keyed option.
func (m *Menubar) SetOption(key, value string) error {
	next := m.cfg.Clone()
	if err := next.Set(key, value); err != nil {
		return err
	}
	m.ApplyConfig(next)
	return nil
}

// GetOption returns a single keyed option.
func (m *Menubar) GetOption(key string) (string, error) {
	return m.cfg.Get(key)
}

// ApplyConfig installs cfg. Geometry options take effect on the next show;
// the tooltip and anchor are updated immediately.
func (m *Menubar) ApplyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	prev := m.cfg
	m.cfg = cfg.Clone()

	if m.tray != nil && prev.Tray.Tooltip != m.cfg.Tray.Tooltip {
		m.tray.SetToolTip(m.cfg.Tray.Tooltip)
	}
	if m.ready && prev.Window.Anchor != m.cfg.Window.Anchor {
		m.chooseAnchor()
		m.logger.Debug("anchor changed", "anchor", m.anchor)
	}
	if m.window != nil && prev.Window.ShowOnAllWorkspaces != m.cfg.Window.ShowOnAllWorkspaces {
		m.window.SetVisibleOnAllWorkspaces(m.cfg.Window.ShowOnAllWorkspaces)
	}
}
