package position

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/menubar/internal/geometry"
)

func intPtr(v int) *int { return &v }

var window400 = geometry.Size{Width: 400, Height: 400}

func TestComputeTrayCenterTopEdge(t *testing.T) {
	bounds := &geometry.Rect{X: 100, Y: 0, Width: 10, Height: 30}

	p := Compute(Request{
		Anchor:   AnchorTrayCenter,
		Bounds:   bounds,
		Window:   window400,
		Platform: PlatformDarwin,
	})

	assert.Equal(t, 105, p.X+window400.Width/2, "popup centered on the icon")
	assert.GreaterOrEqual(t, p.Y, 30, "popup below the icon")
}

func TestComputeWithWorkArea(t *testing.T) {
	macArea := geometry.Rect{X: 0, Y: 25, Width: 1440, Height: 875}
	winArea := geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1040}
	leftArea := geometry.Rect{X: 60, Y: 0, Width: 1860, Height: 1080}

	tests := []struct {
		name     string
		req      Request
		expected geometry.Point
	}{
		{
			name: "menu bar tray center",
			req: Request{Anchor: AnchorTrayCenter, Platform: PlatformDarwin, Window: window400, WorkArea: macArea,
				Bounds: &geometry.Rect{X: 1200, Y: 0, Width: 22, Height: 25}},
			expected: geometry.Point{X: 1011, Y: 25},
		},
		{
			name: "tray center overflowing the right edge snaps to top right",
			req: Request{Anchor: AnchorTrayCenter, Platform: PlatformDarwin, Window: window400, WorkArea: macArea,
				Bounds: &geometry.Rect{X: 1400, Y: 0, Width: 22, Height: 25}},
			expected: geometry.Point{X: 1040, Y: 25},
		},
		{
			name: "bottom taskbar tray bottom center",
			req: Request{Anchor: AnchorTrayBottomCenter, Platform: PlatformWindows, Window: window400, WorkArea: winArea,
				Bounds: &geometry.Rect{X: 1400, Y: 1040, Width: 100, Height: 40}},
			expected: geometry.Point{X: 1250, Y: 640},
		},
		{
			name: "tray left",
			req: Request{Anchor: AnchorTrayLeft, Platform: PlatformDarwin, Window: window400, WorkArea: macArea,
				Bounds: &geometry.Rect{X: 300, Y: 0, Width: 22, Height: 25}},
			expected: geometry.Point{X: 300, Y: 25},
		},
		{
			name: "tray right",
			req: Request{Anchor: AnchorTrayRight, Platform: PlatformDarwin, Window: window400, WorkArea: macArea,
				Bounds: &geometry.Rect{X: 1200, Y: 0, Width: 22, Height: 25}},
			expected: geometry.Point{X: 822, Y: 25},
		},
		{
			name:     "linux top right",
			req:      Request{Anchor: AnchorTopRight, Platform: PlatformLinux, Window: window400, WorkArea: geometry.Rect{X: 0, Y: 27, Width: 1920, Height: 1053}},
			expected: geometry.Point{X: 1520, Y: 27},
		},
		{
			name:     "center",
			req:      Request{Anchor: AnchorCenter, Platform: PlatformLinux, Window: window400, WorkArea: geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}},
			expected: geometry.Point{X: 760, Y: 340},
		},
		{
			name:     "right center",
			req:      Request{Anchor: AnchorRightCenter, Platform: PlatformLinux, Window: window400, WorkArea: geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}},
			expected: geometry.Point{X: 1520, Y: 340},
		},
		{
			name: "left taskbar centers on the icon",
			req: Request{Anchor: AnchorBottomLeft, Platform: PlatformWindows, Window: window400, WorkArea: leftArea,
				Bounds: &geometry.Rect{X: 12, Y: 900, Width: 40, Height: 40}},
			expected: geometry.Point{X: 60, Y: 720},
		},
		{
			name: "bottom left is not refined off the multi-edge platform",
			req: Request{Anchor: AnchorBottomLeft, Platform: PlatformLinux, Window: window400, WorkArea: leftArea,
				Bounds: &geometry.Rect{X: 12, Y: 900, Width: 40, Height: 40}},
			expected: geometry.Point{X: 60, Y: 680},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Compute(tt.req))
		})
	}
}

func TestComputeFallsBackWithoutBounds(t *testing.T) {
	winArea := geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1040}

	res := Resolve(Request{Anchor: AnchorTrayBottomCenter, Platform: PlatformWindows, Window: window400, WorkArea: winArea})
	assert.True(t, res.Fallback)
	assert.Equal(t, AnchorBottomRight, res.Anchor)
	assert.Equal(t, geometry.Point{X: 1520, Y: 640}, res.Point)
	assert.False(t, res.Refined)

	degenerate := &geometry.Rect{X: 0, Y: 0, Width: 0, Height: 0}
	res = Resolve(Request{Anchor: AnchorTrayBottomCenter, Platform: PlatformWindows, Window: window400, WorkArea: winArea, Bounds: degenerate})
	assert.True(t, res.Fallback)
	assert.Equal(t, geometry.Point{X: 1520, Y: 640}, res.Point)

	linuxArea := geometry.Rect{X: 0, Y: 27, Width: 1920, Height: 1053}
	res = Resolve(Request{Anchor: AnchorTrayCenter, Platform: PlatformLinux, Window: window400, WorkArea: linuxArea})
	assert.True(t, res.Fallback)
	assert.Equal(t, AnchorTopRight, res.Anchor)
	assert.Equal(t, geometry.Point{X: 1520, Y: 27}, res.Point)
}

func TestComputeScreenAnchorIgnoresMissingBounds(t *testing.T) {
	res := Resolve(Request{Anchor: AnchorTopLeft, Platform: PlatformWindows, Window: window400,
		WorkArea: geometry.Rect{X: 10, Y: 20, Width: 1000, Height: 800}})
	assert.False(t, res.Fallback)
	assert.Equal(t, geometry.Point{X: 10, Y: 20}, res.Point)
}

func TestComputeBottomDockedScenario(t *testing.T) {
	// No work area reported: the corner is measured against the tray icon.
	p := Compute(Request{
		Anchor:   AnchorBottomRight,
		Bounds:   &geometry.Rect{X: 500, Y: 1040, Width: 40, Height: 40},
		Window:   window400,
		Platform: PlatformWindows,
	})

	assert.Equal(t, geometry.Point{X: 140, Y: 860}, p)
}

func TestComputeRefinementTruncates(t *testing.T) {
	res := Resolve(Request{
		Anchor:   AnchorBottomRight,
		Bounds:   &geometry.Rect{X: 1880, Y: 10, Width: 41, Height: 41},
		Window:   window400,
		Platform: PlatformWindows,
	})

	assert.True(t, res.Refined)
	// 10 + 20.5 - 200 = -169.5, truncated toward zero
	assert.Equal(t, -169, res.Y)
}

func TestComputeOverrides(t *testing.T) {
	base := Request{
		Anchor:   AnchorBottomRight,
		Bounds:   &geometry.Rect{X: 500, Y: 1040, Width: 40, Height: 40},
		Window:   window400,
		Platform: PlatformWindows,
	}

	onlyX := base
	onlyX.Override = Override{X: intPtr(7)}
	assert.Equal(t, geometry.Point{X: 7, Y: 860}, Compute(onlyX))

	onlyY := base
	onlyY.Override = Override{Y: intPtr(9)}
	assert.Equal(t, geometry.Point{X: 140, Y: 9}, Compute(onlyY))

	both := base
	both.Override = Override{X: intPtr(1), Y: intPtr(2)}
	assert.Equal(t, geometry.Point{X: 1, Y: 2}, Compute(both))
}

func TestComputeDeterministic(t *testing.T) {
	req := Request{
		Anchor:   AnchorTrayCenter,
		Bounds:   &geometry.Rect{X: 1200, Y: 0, Width: 22, Height: 25},
		Window:   window400,
		Platform: PlatformDarwin,
		WorkArea: geometry.Rect{X: 0, Y: 25, Width: 1440, Height: 875},
	}
	first := Compute(req)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Compute(req))
	}
}
