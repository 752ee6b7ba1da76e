package menubar

import (
	"errors"

	"github.com/jmylchreest/menubar/internal/geometry"
)

// ErrUnsupported is returned by hosts for capabilities the platform lacks.
var ErrUnsupported = errors.New("not supported by this host")

// HighlightMode controls the tray icon's pressed/active appearance.
type HighlightMode string

const (
	HighlightAlways    HighlightMode = "always"
	HighlightNever     HighlightMode = "never"
	HighlightSelection HighlightMode = "selection"
)

// Trigger is a kind of tray interaction.
type Trigger string

const (
	TriggerClick       Trigger = "click"
	TriggerRightClick  Trigger = "right-click"
	TriggerDoubleClick Trigger = "double-click"
)

// Modifier is a bit set of keyboard modifiers held during a click.
type Modifier uint8

const (
	ModAlt Modifier = 1 << iota
	ModShift
	ModCtrl
	ModMeta
)

// Click describes a tray interaction. Bounds is the tray icon's rectangle
// when the host reports one with the event.
type Click struct {
	Trigger   Trigger
	Modifiers Modifier
	Bounds    *geometry.Rect
}

// Icon is a tray image, either a file on disk or raw image bytes.
type Icon struct {
	Path string
	Data []byte
}

// Tray is a tray icon created by the host.
type Tray interface {
	// On subscribes fn to a trigger. Hosts call fn on the UI loop.
	On(trigger Trigger, fn func(Click))
	SetToolTip(text string)
	// SetHighlightMode returns ErrUnsupported when the platform has no
	// highlight state.
	SetHighlightMode(mode HighlightMode) error
	// Bounds returns the icon's screen rectangle, if the host can query it.
	Bounds() (geometry.Rect, bool)
}

// WindowOptions is the geometry and style a popup is created with.
type WindowOptions struct {
	Title       string
	Width       int
	Height      int
	Show        bool // visible immediately after creation
	Frame       bool // window decorations
	AlwaysOnTop bool
	Resizable   bool
}

// Window is a popup window created by the host.
type Window interface {
	Show()
	Hide()
	IsVisible() bool
	SetPosition(x, y int)
	Size() geometry.Size
	Close()
	// OnBlur and OnClose register handlers the host calls on the UI loop
	// when the window loses input focus or is destroyed.
	OnBlur(fn func())
	OnClose(fn func())
	// LoadURL starts loading content; it returns before loading finishes.
	LoadURL(url string) error
	SetVisibleOnAllWorkspaces(visible bool)
}

// Dock is the application's dock icon.
type Dock interface {
	Show()
	Hide()
}

// Host is the windowing system the menubar drives.
type Host interface {
	// WhenReady calls fn on the UI loop once the application can create
	// windows, immediately if it already can.
	WhenReady(fn func())
	NewTray(icon Icon) (Tray, error)
	NewWindow(opts WindowOptions) (Window, error)
	// WorkArea returns the usable area of the display nearest to near.
	// An empty rectangle means the host cannot tell.
	WorkArea(near geometry.Point) geometry.Rect
	// Dock returns nil on platforms without a dock.
	Dock() Dock
}
