package gtkhost

import (
	"log/slog"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/menubar/internal/geometry"
	"github.com/jmylchreest/menubar/internal/menubar"
	"github.com/jmylchreest/menubar/internal/style"
)

const layerNamespace = "menubar-popup"

// Window is a popup backed by a gtk.Window.
type Window struct {
	window     *gtk.Window
	content    *gtk.Label
	logger     *slog.Logger
	layerShell bool
	size       geometry.Size

	onBlur  []func()
	onClose []func()
	closed  bool
}

func newWindow(app *gtk.Application, opts menubar.WindowOptions, logger *slog.Logger) (*Window, error) {
	w := &Window{
		window: gtk.NewWindow(),
		logger: logger,
		size:   geometry.Size{Width: opts.Width, Height: opts.Height},
	}

	w.window.SetApplication(app)
	w.window.AddCSSClass(style.PopupClass)
	w.window.SetTitle(opts.Title)
	w.window.SetDecorated(opts.Frame)
	w.window.SetResizable(opts.Resizable)
	w.window.SetDefaultSize(opts.Width, opts.Height)
	w.window.SetSizeRequest(opts.Width, opts.Height)

	if layershell.IsSupported() {
		layershell.InitForWindow(w.window)
		layer := layershell.LayerShellLayerTop
		if opts.AlwaysOnTop {
			layer = layershell.LayerShellLayerOverlay
		}
		layershell.SetLayer(w.window, layer)
		layershell.SetExclusiveZone(w.window, 0)
		layershell.SetKeyboardMode(w.window, layershell.LayerShellKeyboardModeOnDemand)
		layershell.SetNamespace(w.window, layerNamespace)
		layershell.SetAnchor(w.window, layershell.LayerShellEdgeTop, true)
		layershell.SetAnchor(w.window, layershell.LayerShellEdgeLeft, true)
		w.layerShell = true
	} else {
		logger.Debug("layer-shell unavailable, popup position is up to the compositor")
	}

	w.content = gtk.NewLabel("")
	w.content.AddCSSClass(style.ContentClass)
	w.content.SetWrap(true)
	w.content.SetSelectable(true)
	w.window.SetChild(w.content)

	w.window.NotifyProperty("is-active", func() {
		if w.window.IsActive() || !w.window.IsVisible() {
			return
		}
		for _, fn := range w.onBlur {
			fn()
		}
	})
	w.window.ConnectCloseRequest(func() bool {
		w.markClosed()
		return false
	})

	w.window.SetVisible(opts.Show)
	return w, nil
}

func (w *Window) markClosed() {
	if w.closed {
		return
	}
	w.closed = true
	for _, fn := range w.onClose {
		fn()
	}
}

// Show presents the window.
func (w *Window) Show() {
	w.window.SetVisible(true)
	w.window.Present()
}

// Hide hides the window without destroying it.
func (w *Window) Hide() {
	w.window.SetVisible(false)
}

// IsVisible reports whether the window is mapped.
func (w *Window) IsVisible() bool {
	return w.window.IsVisible()
}

// SetPosition moves the window's top-left corner to screen coordinates.
func (w *Window) SetPosition(x, y int) {
	if !w.layerShell {
		return
	}

	origin := geometry.Point{}
	if display := gdk.DisplayGetDefault(); display != nil {
		if m := monitorAt(display, geometry.Point{X: x, Y: y}); m != nil {
			layershell.SetMonitor(w.window, m)
			origin = monitorRect(m).Origin()
		}
	}
	layershell.SetMargin(w.window, layershell.LayerShellEdgeLeft, x-origin.X)
	layershell.SetMargin(w.window, layershell.LayerShellEdgeTop, y-origin.Y)
}

// Size returns the window's size, the allocation once it has one.
func (w *Window) Size() geometry.Size {
	if width, height := w.window.Width(), w.window.Height(); width > 0 && height > 0 {
		return geometry.Size{Width: width, Height: height}
	}
	return w.size
}

// Close destroys the window.
func (w *Window) Close() {
	if w.closed {
		return
	}
	w.window.Close()
	w.markClosed()
}

// OnBlur registers fn for focus loss while visible.
func (w *Window) OnBlur(fn func()) {
	w.onBlur = append(w.onBlur, fn)
}

// OnClose registers fn for window destruction.
func (w *Window) OnClose(fn func()) {
	w.onClose = append(w.onClose, fn)
}

// LoadURL shows the content location. Rendering content is left to the
// application embedding the menubar.
func (w *Window) LoadURL(url string) error {
	w.content.SetText(url)
	w.window.SetTooltipText(url)
	return nil
}

// SetVisibleOnAllWorkspaces is a no-op: layer surfaces are not tied to a
// workspace.
func (w *Window) SetVisibleOnAllWorkspaces(bool) {}
