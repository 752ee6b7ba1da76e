package gtkhost

import (
	"log/slog"
	"unsafe"

	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/menubar/internal/geometry"
	"github.com/jmylchreest/menubar/internal/menubar"
)

// TrayFactory creates the tray icon. GTK4 has no tray API of its own.
type TrayFactory func(icon menubar.Icon) (menubar.Tray, error)

// Host implements menubar.Host on a GTK application.
type Host struct {
	app    *gtk.Application
	trays  TrayFactory
	logger *slog.Logger

	ready   bool
	pending []func()
	styles  *gtk.CSSProvider
}

// New creates a host for app. It must be called before app.Run so that
// activation is observed.
func New(app *gtk.Application, trays TrayFactory, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Host{
		app:    app,
		trays:  trays,
		logger: logger,
	}
	app.ConnectActivate(h.activate)
	return h
}

func (h *Host) activate() {
	if h.ready {
		return
	}
	h.ready = true
	pending := h.pending
	h.pending = nil
	for _, fn := range pending {
		fn()
	}
}

// WhenReady runs fn once the application is activated.
func (h *Host) WhenReady(fn func()) {
	if h.ready {
		fn()
		return
	}
	h.pending = append(h.pending, fn)
}

// Dispatch schedules fn on the GTK main loop. It is safe to call from any
// goroutine.
func (h *Host) Dispatch(fn func()) {
	glib.IdleAdd(fn)
}

// NewTray creates the tray icon through the configured factory.
func (h *Host) NewTray(icon menubar.Icon) (menubar.Tray, error) {
	if h.trays == nil {
		return nil, menubar.ErrUnsupported
	}
	return h.trays(icon)
}

// NewWindow creates a popup window.
func (h *Host) NewWindow(opts menubar.WindowOptions) (menubar.Window, error) {
	return newWindow(h.app, opts, h.logger)
}

// Dock returns nil; Linux desktops have no dock icon to hide.
func (h *Host) Dock() menubar.Dock {
	return nil
}

// WorkArea returns the geometry of the monitor containing near, or of the
// first monitor. GTK4 does not expose panel struts, so this is the full
// monitor rectangle.
func (h *Host) WorkArea(near geometry.Point) geometry.Rect {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return geometry.Rect{}
	}
	m := monitorAt(display, near)
	if m == nil {
		return geometry.Rect{}
	}
	return monitorRect(m)
}

func monitorRect(m *gdk.Monitor) geometry.Rect {
	g := m.Geometry()
	return geometry.Rect{X: g.X(), Y: g.Y(), Width: g.Width(), Height: g.Height()}
}

// monitorAt returns the monitor containing p, falling back to the first.
func monitorAt(display *gdk.Display, p geometry.Point) *gdk.Monitor {
	monitors := display.Monitors()
	if monitors == nil || monitors.NItems() == 0 {
		return nil
	}

	var first *gdk.Monitor
	for i := uint(0); i < monitors.NItems(); i++ {
		m := wrapMonitor(monitors.Item(i))
		if m == nil {
			continue
		}
		if first == nil {
			first = m
		}
		r := monitorRect(m)
		if p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom() {
			return m
		}
	}
	return first
}

// wrapMonitor casts a list item to a gdk.Monitor. gotk4 does not export
// its own wrapper; gdk.Monitor embeds the object pointer directly.
func wrapMonitor(obj *glib.Object) *gdk.Monitor {
	if obj == nil {
		return nil
	}
	type monitor struct {
		_ [0]func()
		*glib.Object
	}
	m := &monitor{Object: obj}
	return (*gdk.Monitor)(unsafe.Pointer(m))
}
