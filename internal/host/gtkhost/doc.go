// Package gtkhost implements the menubar host on GTK4 and libadwaita.
//
// Popups are layer-shell surfaces, so on Wayland compositors that support
// wlr-layer-shell they are placed with absolute anchors and margins. On
// other backends GTK4 offers no way to position a toplevel and the window
// appears where the compositor puts it.
package gtkhost
