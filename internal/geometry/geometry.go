// Package geometry provides the screen-space value types shared by the
// positioning and window-management packages.
package geometry

import "fmt"

// Point is a screen coordinate in pixels.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Rect is a screen rectangle in pixels.
type Rect struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Right returns the x coordinate just past the right edge.
func (r Rect) Right() int {
	return r.X + r.Width
}

// Bottom returns the y coordinate just past the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.Height
}

// Center returns the rectangle's center point, truncated to whole pixels.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Square reports whether width and height are equal.
func (r Rect) Square() bool {
	return r.Width == r.Height
}

// String formats the rectangle as "WxH+X+Y".
func (r Rect) String() string {
	return fmt.Sprintf("%dx%d%+d%+d", r.Width, r.Height, r.X, r.Y)
}

// Real reports whether b holds tray geometry worth trusting. Tray hosts
// without a geometry API report a rectangle at x == 0, which is treated
// the same as no rectangle at all.
func Real(b *Rect) bool {
	return b != nil && b.X != 0
}

// Ptr returns a pointer to a copy of r.
func Ptr(r Rect) *Rect {
	return &r
}
