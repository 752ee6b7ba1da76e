package dbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/menubar/internal/config"
	"github.com/jmylchreest/menubar/internal/event"
	"github.com/jmylchreest/menubar/internal/geometry"
	"github.com/jmylchreest/menubar/internal/menubar"
)

const (
	// Interface is the control interface name.
	Interface = "io.github.jmylchreest.Menubar"
	// Path is the control object path.
	Path dbus.ObjectPath = "/io/github/jmylchreest/Menubar"
	// BusName is the bus name to claim.
	BusName = "io.github.jmylchreest.Menubar"

	// SignalLifecycle is emitted for every menubar event.
	SignalLifecycle = "Lifecycle"

	// DefaultCallTimeout bounds how long a method waits for the UI loop.
	DefaultCallTimeout = 5 * time.Second
)

// Error names returned to callers.
const (
	ErrorFailed        = Interface + ".Error.Failed"
	ErrorNotReady      = Interface + ".Error.NotReady"
	ErrorUnknownOption = Interface + ".Error.UnknownOption"
	ErrorTimeout       = Interface + ".Error.Timeout"
)

// Controller is the part of the menubar the service drives.
type Controller interface {
	ShowWindow(bounds *geometry.Rect) error
	HideWindow()
	Toggle() error
	Status() menubar.Status
	GetOption(key string) (string, error)
	SetOption(key, value string) error
}

// Dispatcher runs fn on the UI loop.
type Dispatcher func(fn func())

type signalEmitter interface {
	Emit(path dbus.ObjectPath, name string, values ...any) error
}

// Service implements the io.github.jmylchreest.Menubar interface.
type Service struct {
	ctrl     Controller
	dispatch Dispatcher
	logger   *slog.Logger
	timeout  time.Duration

	mu      sync.Mutex
	conn    *dbus.Conn
	signals signalEmitter
	running bool
}

// NewService creates a service. Method calls arrive on godbus goroutines
// and are handed to dispatch before touching ctrl.
func NewService(ctrl Controller, dispatch Dispatcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &Service{
		ctrl:     ctrl,
		dispatch: dispatch,
		logger:   logger,
		timeout:  DefaultCallTimeout,
	}
}

// SetTimeout changes how long methods wait for the UI loop.
func (s *Service) SetTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// Start connects to the session bus, exports the service and claims the
// bus name.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("service already running")
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	if err := conn.Export(s, Path, Interface); err != nil {
		conn.Close()
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: string(Path),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    Interface,
				Methods: serviceMethods(),
				Signals: serviceSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), Path,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return fmt.Errorf("bus name %s already taken", BusName)
	}

	s.conn = conn
	s.signals = conn
	s.running = true
	s.logger.Info("D-Bus control service started", "interface", Interface, "path", Path)
	return nil
}

// Stop releases the bus name and closes the connection.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false
	s.signals = nil

	if _, err := s.conn.ReleaseName(BusName); err != nil {
		s.logger.Warn("failed to release bus name", "error", err)
	}
	err := s.conn.Close()
	s.conn = nil
	s.logger.Info("D-Bus control service stopped")
	return err
}

// Attach re-broadcasts every event on e as a Lifecycle signal.
func (s *Service) Attach(e *event.Emitter) (detach func()) {
	return e.OnAny(func(ev event.Event) {
		if err := s.EmitLifecycle(ev); err != nil {
			s.logger.Debug("lifecycle signal not sent", "event", ev.Type, "error", err)
		}
	})
}

// EmitLifecycle emits the Lifecycle signal for ev.
func (s *Service) EmitLifecycle(ev event.Event) error {
	s.mu.Lock()
	signals := s.signals
	s.mu.Unlock()
	if signals == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	err := signals.Emit(Path, Interface+"."+SignalLifecycle, string(ev.Type), ev.WindowID, toUnixMilli(ev.Time))
	if err != nil {
		return fmt.Errorf("failed to emit %s signal: %w", SignalLifecycle, err)
	}
	return nil
}

// call runs fn on the UI loop and waits for it.
func (s *Service) call(method string, fn func() error) *dbus.Error {
	s.logger.Debug("D-Bus method called", "method", method)

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	done := make(chan error, 1)
	s.dispatch(func() { done <- fn() })

	select {
	case err := <-done:
		if err != nil {
			s.logger.Debug("D-Bus method failed", "method", method, "error", err)
		}
		return toDBusError(err)
	case <-ctx.Done():
		s.logger.Warn("D-Bus method timed out", "method", method, "timeout", s.timeout)
		return dbus.NewError(ErrorTimeout, []any{method + ": UI loop did not respond"})
	}
}

func toDBusError(err error) *dbus.Error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, menubar.ErrNotReady):
		return dbus.NewError(ErrorNotReady, []any{err.Error()})
	case errors.Is(err, config.ErrUnknownOption):
		return dbus.NewError(ErrorUnknownOption, []any{err.Error()})
	default:
		return dbus.NewError(ErrorFailed, []any{err.Error()})
	}
}

// Show shows the popup.
// D-Bus method: Show() -> nothing
func (s *Service) Show() *dbus.Error {
	return s.call("Show", func() error {
		return s.ctrl.ShowWindow(nil)
	})
}

// Hide hides the popup.
// D-Bus method: Hide() -> nothing
func (s *Service) Hide() *dbus.Error {
	return s.call("Hide", func() error {
		s.ctrl.HideWindow()
		return nil
	})
}

// Toggle shows or hides the popup.
// D-Bus method: Toggle() -> nothing
func (s *Service) Toggle() *dbus.Error {
	return s.call("Toggle", s.ctrl.Toggle)
}

// Status reports the popup state.
// D-Bus method: Status() -> (sssx)
func (s *Service) Status() (string, string, string, int64, *dbus.Error) {
	var st menubar.Status
	if err := s.call("Status", func() error {
		st = s.ctrl.Status()
		return nil
	}); err != nil {
		return "", "", "", 0, err
	}
	return st.State.String(), string(st.Anchor), st.WindowID, toUnixMilli(st.LastShown), nil
}

// GetOption returns a keyed option.
// D-Bus method: GetOption(s) -> s
func (s *Service) GetOption(key string) (string, *dbus.Error) {
	var value string
	if err := s.call("GetOption", func() error {
		var err error
		value, err = s.ctrl.GetOption(key)
		return err
	}); err != nil {
		return "", err
	}
	return value, nil
}

// SetOption changes a keyed option for the running daemon.
// D-Bus method: SetOption(ss) -> nothing
func (s *Service) SetOption(key, value string) *dbus.Error {
	return s.call("SetOption", func() error {
		return s.ctrl.SetOption(key, value)
	})
}

func serviceMethods() []introspect.Method {
	return []introspect.Method{
		{Name: "Show"},
		{Name: "Hide"},
		{Name: "Toggle"},
		{
			Name: "Status",
			Args: []introspect.Arg{
				{Name: "state", Type: "s", Direction: "out"},
				{Name: "anchor", Type: "s", Direction: "out"},
				{Name: "window_id", Type: "s", Direction: "out"},
				{Name: "last_shown", Type: "x", Direction: "out"},
			},
		},
		{
			Name: "GetOption",
			Args: []introspect.Arg{
				{Name: "key", Type: "s", Direction: "in"},
				{Name: "value", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "SetOption",
			Args: []introspect.Arg{
				{Name: "key", Type: "s", Direction: "in"},
				{Name: "value", Type: "s", Direction: "in"},
			},
		},
	}
}

func serviceSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: SignalLifecycle,
			Args: []introspect.Arg{
				{Name: "event", Type: "s"},
				{Name: "window_id", Type: "s"},
				{Name: "time", Type: "x"},
			},
		},
	}
}
