package style

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultPollInterval is how often a user stylesheet is checked.
const DefaultPollInterval = time.Second

// Watcher polls a stylesheet and reports new CSS.
type Watcher struct {
	mu       sync.Mutex
	logger   *slog.Logger
	sheet    *Stylesheet
	interval time.Duration
	onChange func(css string)

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewWatcher creates a watcher for sheet.
func NewWatcher(sheet *Stylesheet, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		logger:   logger,
		sheet:    sheet,
		interval: DefaultPollInterval,
	}
}

// SetPollInterval changes the polling interval. It has no effect once
// the watcher is running.
func (w *Watcher) SetPollInterval(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.interval = d
}

// SetChangeCallback sets the function called with the new CSS. It runs on
// the watcher goroutine.
func (w *Watcher) SetChangeCallback(fn func(css string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start begins polling. The bundled stylesheet is never polled.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running || w.sheet.IsBundled() {
		return
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})

	go w.loop(ctx, w.interval, w.stopCh, w.doneCh)
	w.logger.Debug("style watcher started", "path", w.sheet.Path, "interval", w.interval)
}

// Stop halts polling and waits for the goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	done := w.doneCh
	w.mu.Unlock()

	<-done
}

func (w *Watcher) loop(ctx context.Context, interval time.Duration, stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

func (w *Watcher) check() {
	w.mu.Lock()
	sheet := w.sheet
	fn := w.onChange
	w.mu.Unlock()

	changed, err := sheet.Reload()
	if err != nil {
		w.logger.Debug("stylesheet reload failed", "path", sheet.Path, "error", err)
		return
	}
	if changed {
		w.logger.Info("stylesheet changed", "path", sheet.Path)
		if fn != nil {
			fn(sheet.CSS)
		}
	}
}
