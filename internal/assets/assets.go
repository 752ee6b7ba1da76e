// Package assets holds files bundled into the binaries.
package assets

import _ "embed"

// DefaultIconName is the file name hosts look for next to the app's index.
const DefaultIconName = "IconTemplate.png"

// DefaultIcon is the monochrome template icon used when no configured
// icon can be found.
//
//go:embed IconTemplate.png
var DefaultIcon []byte
