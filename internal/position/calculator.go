package position

import (
	"math"

	"github.com/jmylchreest/menubar/internal/geometry"
)

// Override pins individual axes regardless of the computed position.
// A nil axis is computed.
type Override struct {
	X *int
	Y *int
}

// Request holds everything needed to place the popup once.
type Request struct {
	Anchor   Anchor
	Bounds   *geometry.Rect // tray icon bounds; nil when unknown
	Window   geometry.Size
	Platform Platform
	WorkArea geometry.Rect // usable area of the display nearest the tray; may be empty
	Override Override
}

// Result is a computed placement along with the anchor actually used.
type Result struct {
	geometry.Point
	Anchor   Anchor // differs from Request.Anchor when a fallback was substituted
	Fallback bool
	Refined  bool // y was centered on the tray icon
}

// Compute returns the top-left screen coordinate for the popup.
func Compute(req Request) geometry.Point {
	return Resolve(req).Point
}

// Resolve computes the popup position and reports how it was derived.
func Resolve(req Request) Result {
	anchor := req.Anchor
	res := Result{Anchor: anchor}

	if anchor.IsTrayRelative() && !geometry.Real(req.Bounds) {
		res.Anchor = FallbackAnchor(req.Platform)
		res.Fallback = true
	}

	res.Point = place(res.Anchor, req.Bounds, req.Window, referenceArea(req), !req.WorkArea.Empty())

	if req.Platform.MultiEdge() && anchor.IsBottomDocked() && usable(req.Bounds) {
		b := *req.Bounds
		res.Y = int(float64(b.Y) + float64(b.Height)/2 - float64(req.Window.Height)/2)
		res.Refined = true
	}

	if req.Override.X != nil {
		res.X = *req.Override.X
	}
	if req.Override.Y != nil {
		res.Y = *req.Override.Y
	}

	return res
}

// referenceArea picks the rectangle screen anchors are measured against:
// the work area when the host reports one, else the tray icon itself so
// corners still land next to the tray, else the origin.
func referenceArea(req Request) geometry.Rect {
	if !req.WorkArea.Empty() {
		return req.WorkArea
	}
	if usable(req.Bounds) {
		return *req.Bounds
	}
	return geometry.Rect{}
}

func usable(b *geometry.Rect) bool {
	return b != nil && !b.Empty()
}

// place applies the anchor's geometric rule. Tray-relative anchors are only
// reached with real bounds; screen anchors ignore the tray. onScreen is set
// when area is a real work area rather than a stand-in.
func place(anchor Anchor, bounds *geometry.Rect, win geometry.Size, area geometry.Rect, onScreen bool) geometry.Point {
	w := float64(win.Width)
	h := float64(win.Height)
	ax, ay := float64(area.X), float64(area.Y)
	aw, ah := float64(area.Width), float64(area.Height)

	topY := area.Y
	bottomY := floor(ay + ah - h)
	rightX := floor(ax + aw - w)
	centerX := floor(ax + aw/2 - w/2)
	middleY := area.Y + floor(ah/2) - floor(h/2)

	var b geometry.Rect
	if bounds != nil {
		b = *bounds
	}
	bx, bw := float64(b.X), float64(b.Width)
	trayBelowY := max(area.Y, b.Bottom())

	var p geometry.Point
	switch anchor {
	case AnchorTrayLeft:
		p = geometry.Point{X: b.X, Y: trayBelowY}
	case AnchorTrayRight:
		p = geometry.Point{X: floor(bx - w + bw), Y: trayBelowY}
	case AnchorTrayCenter:
		p = geometry.Point{X: floor(bx - w/2 + bw/2), Y: trayBelowY}
	case AnchorTrayBottomLeft:
		p = geometry.Point{X: b.X, Y: bottomY}
	case AnchorTrayBottomRight:
		p = geometry.Point{X: floor(bx - w + bw), Y: bottomY}
	case AnchorTrayBottomCenter:
		p = geometry.Point{X: floor(bx - w/2 + bw/2), Y: bottomY}
	case AnchorTopLeft:
		p = geometry.Point{X: area.X, Y: topY}
	case AnchorTopCenter:
		p = geometry.Point{X: centerX, Y: topY}
	case AnchorBottomLeft:
		p = geometry.Point{X: area.X, Y: bottomY}
	case AnchorBottomRight:
		p = geometry.Point{X: rightX, Y: bottomY}
	case AnchorBottomCenter:
		p = geometry.Point{X: centerX, Y: bottomY}
	case AnchorLeftCenter:
		p = geometry.Point{X: area.X, Y: middleY}
	case AnchorRightCenter:
		p = geometry.Point{X: rightX, Y: middleY}
	case AnchorCenter:
		p = geometry.Point{X: centerX, Y: floor((ah+ay)/2 - h/2)}
	default: // AnchorTopRight and anything unknown
		p = geometry.Point{X: rightX, Y: topY}
	}

	// A tray-relative popup must not run off the right edge of the screen,
	// where some shells would drop it entirely.
	if anchor.IsTrayRelative() && onScreen && p.X+win.Width > area.Right() {
		p.X = rightX
	}

	return p
}

func floor(v float64) int {
	return int(math.Floor(v))
}
