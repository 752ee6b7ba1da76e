package gtkhost

import (
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// ApplyStyle loads css into the host's provider, installing the provider
// on the default display the first time. Must run on the GTK main loop.
func (h *Host) ApplyStyle(css string) {
	if h.styles == nil {
		display := gdk.DisplayGetDefault()
		if display == nil {
			h.logger.Warn("no display available, cannot apply stylesheet")
			return
		}
		h.styles = gtk.NewCSSProvider()
		gtk.StyleContextAddProviderForDisplay(display, h.styles, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)
	}
	h.styles.LoadFromString(css)
	h.logger.Debug("applied stylesheet", "bytes", len(css))
}
