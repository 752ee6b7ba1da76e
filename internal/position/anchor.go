// Package position decides where the menubar popup goes: which anchor a
// desktop shell calls for, and the screen coordinate an anchor resolves to.
package position

import (
	"fmt"
	"strings"
)

// Anchor is a named placement rule for the popup, either relative to the
// tray icon or to a corner/edge of the work area.
type Anchor string

const (
	AnchorTrayLeft         Anchor = "tray-left"
	AnchorTrayRight        Anchor = "tray-right"
	AnchorTrayCenter       Anchor = "tray-center"
	AnchorTrayBottomLeft   Anchor = "tray-bottom-left"
	AnchorTrayBottomRight  Anchor = "tray-bottom-right"
	AnchorTrayBottomCenter Anchor = "tray-bottom-center"
	AnchorTopLeft          Anchor = "top-left"
	AnchorTopRight         Anchor = "top-right"
	AnchorTopCenter        Anchor = "top-center"
	AnchorBottomLeft       Anchor = "bottom-left"
	AnchorBottomRight      Anchor = "bottom-right"
	AnchorBottomCenter     Anchor = "bottom-center"
	AnchorLeftCenter       Anchor = "left-center"
	AnchorRightCenter      Anchor = "right-center"
	AnchorCenter           Anchor = "center"
)

// ValidAnchors returns all valid anchor values.
func ValidAnchors() []Anchor {
	return []Anchor{
		AnchorTrayLeft,
		AnchorTrayRight,
		AnchorTrayCenter,
		AnchorTrayBottomLeft,
		AnchorTrayBottomRight,
		AnchorTrayBottomCenter,
		AnchorTopLeft,
		AnchorTopRight,
		AnchorTopCenter,
		AnchorBottomLeft,
		AnchorBottomRight,
		AnchorBottomCenter,
		AnchorLeftCenter,
		AnchorRightCenter,
		AnchorCenter,
	}
}

// ParseAnchor converts a string into an Anchor.
// Matching is case-insensitive and accepts underscores in place of hyphens.
func ParseAnchor(s string) (Anchor, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for _, a := range ValidAnchors() {
		if string(a) == normalized {
			return a, nil
		}
	}
	return "", fmt.Errorf("invalid anchor %q, must be one of: %v", s, ValidAnchors())
}

// Valid reports whether a is one of the known anchors.
func (a Anchor) Valid() bool {
	for _, v := range ValidAnchors() {
		if a == v {
			return true
		}
	}
	return false
}

// IsTrayRelative reports whether the anchor needs tray geometry to resolve.
func (a Anchor) IsTrayRelative() bool {
	return strings.HasPrefix(string(a), "tray-")
}

// IsBottomDocked reports whether the anchor belongs to the screen-relative
// bottom family, which the multi-edge classifier uses for side taskbars.
func (a Anchor) IsBottomDocked() bool {
	return strings.HasPrefix(string(a), "bottom-")
}

// String returns the anchor name.
func (a Anchor) String() string {
	return string(a)
}
