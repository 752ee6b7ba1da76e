// Package trayhost implements the menubar tray icon with fyne.io/systray.
//
// On Linux the icon is a StatusNotifierItem served over D-Bus. The
// protocol reports no icon geometry and has no highlight state, so Bounds
// and SetHighlightMode report that they are unavailable and the menubar
// falls back to its screen-corner anchor.
package trayhost

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"fyne.io/systray"

	"github.com/jmylchreest/menubar/internal/geometry"
	"github.com/jmylchreest/menubar/internal/menubar"
)

// Dispatcher runs fn on the UI loop.
type Dispatcher func(fn func())

// Tray is a systray-backed menubar.Tray.
type Tray struct {
	dispatch Dispatcher
	logger   *slog.Logger

	mu       sync.Mutex
	handlers map[menubar.Trigger][]func(menubar.Click)
	end      func()
}

func newTray(dispatch Dispatcher, logger *slog.Logger) *Tray {
	if logger == nil {
		logger = slog.Default()
	}
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &Tray{
		dispatch: dispatch,
		logger:   logger,
		handlers: make(map[menubar.Trigger][]func(menubar.Click)),
	}
}

// New registers the tray icon alongside an externally run UI loop.
// systray calls back on its own goroutines; clicks are handed to dispatch.
func New(icon menubar.Icon, dispatch Dispatcher, logger *slog.Logger) (*Tray, error) {
	data, err := iconBytes(icon)
	if err != nil {
		return nil, err
	}

	t := newTray(dispatch, logger)
	start, end := systray.RunWithExternalLoop(func() {
		systray.SetTemplateIcon(data, data)
		systray.SetOnTapped(func() { t.fire(menubar.TriggerClick) })
		systray.SetOnSecondaryTapped(func() { t.fire(menubar.TriggerRightClick) })
		t.logger.Debug("tray icon registered")
	}, func() {
		t.logger.Debug("tray icon removed")
	})
	t.end = end
	start()
	return t, nil
}

func iconBytes(icon menubar.Icon) ([]byte, error) {
	if icon.Path == "" {
		if len(icon.Data) == 0 {
			return nil, fmt.Errorf("tray icon has no image")
		}
		return icon.Data, nil
	}
	data, err := os.ReadFile(icon.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tray icon: %w", err)
	}
	return data, nil
}

// fire delivers trigger to its handlers on the UI loop.
func (t *Tray) fire(trigger menubar.Trigger) {
	t.mu.Lock()
	handlers := append([]func(menubar.Click){}, t.handlers[trigger]...)
	t.mu.Unlock()
	if len(handlers) == 0 {
		return
	}

	click := menubar.Click{Trigger: trigger}
	t.dispatch(func() {
		for _, fn := range handlers {
			fn(click)
		}
	})
}

// On subscribes fn to trigger. systray reports no double-clicks, so
// TriggerDoubleClick subscriptions never fire.
func (t *Tray) On(trigger menubar.Trigger, fn func(menubar.Click)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[trigger] = append(t.handlers[trigger], fn)
}

// SetToolTip sets the hover text.
func (t *Tray) SetToolTip(text string) {
	systray.SetTooltip(text)
}

// SetHighlightMode is unsupported by StatusNotifierItem.
func (t *Tray) SetHighlightMode(menubar.HighlightMode) error {
	return menubar.ErrUnsupported
}

// Bounds is unavailable: StatusNotifierItem hosts do not report geometry.
func (t *Tray) Bounds() (geometry.Rect, bool) {
	return geometry.Rect{}, false
}

// Close removes the tray icon.
func (t *Tray) Close() {
	if t.end != nil {
		t.end()
		t.end = nil
	}
}
