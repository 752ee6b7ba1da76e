package position

import (
	"github.com/jmylchreest/menubar/internal/geometry"
)

// Platform identifies the kind of desktop shell hosting the tray.
type Platform string

const (
	// PlatformDarwin has a single menu bar at the top of the screen.
	PlatformDarwin Platform = "darwin"
	// PlatformLinux has a single top panel.
	PlatformLinux Platform = "linux"
	// PlatformWindows has a taskbar that can sit on any screen edge and
	// reports tray icon bounds.
	PlatformWindows Platform = "windows"
)

// ParsePlatform maps a runtime.GOOS value onto a Platform.
// Unix desktops other than macOS are treated like Linux: a top panel.
func ParsePlatform(goos string) Platform {
	switch goos {
	case "darwin":
		return PlatformDarwin
	case "windows":
		return PlatformWindows
	default:
		return PlatformLinux
	}
}

// MultiEdge reports whether the platform's taskbar can sit on any edge.
func (p Platform) MultiEdge() bool {
	return p == PlatformWindows
}

// Edge is the screen edge occupied by the shell's tray.
type Edge string

const (
	EdgeTop    Edge = "top"
	EdgeBottom Edge = "bottom"
	EdgeLeft   Edge = "left"
	EdgeRight  Edge = "right"
)

// TaskbarEdge infers which edge the tray sits on.
//
// Only the multi-edge platform looks at bounds. A horizontal taskbar gives
// a tray rectangle that is wider than tall, while vertical taskbars give
// square icons whose x/y relationship tells left from right. When the
// bounds are absent or ambiguous (including the square x == y tie) the
// bottom edge is assumed.
func TaskbarEdge(platform Platform, bounds *geometry.Rect) Edge {
	if !platform.MultiEdge() {
		return EdgeTop
	}
	if bounds == nil {
		return EdgeBottom
	}

	b := *bounds
	switch {
	case !b.Square() && b.Y == 0:
		return EdgeTop
	case !b.Square() && b.Y > 0:
		return EdgeBottom
	case b.Square() && b.X < b.Y:
		return EdgeLeft
	case b.Square() && b.X > b.Y:
		return EdgeRight
	default:
		return EdgeBottom
	}
}

// Classify returns the anchor a platform's shell calls for.
func Classify(platform Platform, bounds *geometry.Rect) Anchor {
	switch platform {
	case PlatformDarwin:
		return AnchorTrayCenter
	case PlatformWindows:
		switch TaskbarEdge(platform, bounds) {
		case EdgeTop:
			return AnchorTrayCenter
		case EdgeLeft:
			return AnchorBottomLeft
		case EdgeRight:
			return AnchorBottomRight
		default:
			return AnchorTrayBottomCenter
		}
	default:
		return AnchorTopRight
	}
}

// FallbackAnchor is the corner used when a tray-relative anchor has no
// tray geometry to work with.
func FallbackAnchor(platform Platform) Anchor {
	if platform.MultiEdge() {
		return AnchorBottomRight
	}
	return AnchorTopRight
}
