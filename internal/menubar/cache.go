package menubar

import "github.com/jmylchreest/menubar/internal/geometry"

// BoundsCache remembers the last real tray rectangle, so that shows
// arriving without geometry (double-clicks, programmatic requests) still
// land next to the icon.
type BoundsCache struct {
	bounds *geometry.Rect
}

// Get returns the cached rectangle, or nil if none was ever stored.
func (c *BoundsCache) Get() *geometry.Rect {
	if c.bounds == nil {
		return nil
	}
	b := *c.bounds
	return &b
}

// Update stores bounds when they are real (present with a non-zero x) and
// reports whether the cache changed.
func (c *BoundsCache) Update(bounds *geometry.Rect) bool {
	if !geometry.Real(bounds) {
		return false
	}
	if c.bounds != nil && *c.bounds == *bounds {
		return false
	}
	b := *bounds
	c.bounds = &b
	return true
}
