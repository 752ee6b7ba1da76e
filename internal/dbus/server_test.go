package dbus

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/menubar/internal/config"
	"github.com/jmylchreest/menubar/internal/event"
	"github.com/jmylchreest/menubar/internal/geometry"
	"github.com/jmylchreest/menubar/internal/menubar"
	"github.com/jmylchreest/menubar/internal/position"
)

type fakeController struct {
	calls   []string
	showErr error
	status  menubar.Status
	options map[string]string
}

func (f *fakeController) ShowWindow(bounds *geometry.Rect) error {
	f.calls = append(f.calls, fmt.Sprintf("show %v", bounds))
	return f.showErr
}

func (f *fakeController) HideWindow() { f.calls = append(f.calls, "hide") }

func (f *fakeController) Toggle() error {
	f.calls = append(f.calls, "toggle")
	return nil
}

func (f *fakeController) Status() menubar.Status { return f.status }

func (f *fakeController) GetOption(key string) (string, error) {
	v, ok := f.options[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", config.ErrUnknownOption, key)
	}
	return v, nil
}

func (f *fakeController) SetOption(key, value string) error {
	if _, ok := f.options[key]; !ok {
		return fmt.Errorf("%w: %q", config.ErrUnknownOption, key)
	}
	f.options[key] = value
	return nil
}

type sentSignal struct {
	path   dbus.ObjectPath
	name   string
	values []any
}

type fakeSignals struct {
	sent []sentSignal
	err  error
}

func (f *fakeSignals) Emit(path dbus.ObjectPath, name string, values ...any) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentSignal{path: path, name: name, values: values})
	return nil
}

// loopDispatcher runs work on a separate goroutine, like a UI main loop.
func loopDispatcher(t *testing.T) Dispatcher {
	t.Helper()
	work := make(chan func(), 8)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case fn := <-work:
				fn()
			case <-done:
				return
			}
		}
	}()
	t.Cleanup(func() { close(done) })
	return func(fn func()) { work <- fn }
}

func newTestService(t *testing.T, ctrl *fakeController) *Service {
	t.Helper()
	return NewService(ctrl, loopDispatcher(t), nil)
}

func TestServiceShowHideToggle(t *testing.T) {
	ctrl := &fakeController{}
	s := newTestService(t, ctrl)

	assert.Nil(t, s.Show())
	assert.Nil(t, s.Hide())
	assert.Nil(t, s.Toggle())

	assert.Equal(t, []string{"show <nil>", "hide", "toggle"}, ctrl.calls)
}

func TestServiceErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not ready", fmt.Errorf("show: %w", menubar.ErrNotReady), ErrorNotReady},
		{"generic", errors.New("create window: no display"), ErrorFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(t, &fakeController{showErr: tt.err})

			derr := s.Show()
			require.NotNil(t, derr)
			assert.Equal(t, tt.want, derr.Name)
			assert.Equal(t, []any{tt.err.Error()}, derr.Body)
		})
	}
}

func TestServiceStatus(t *testing.T) {
	shown := time.UnixMilli(1700000000123)
	ctrl := &fakeController{status: menubar.Status{
		State:     menubar.Visible,
		Anchor:    position.AnchorTrayCenter,
		WindowID:  "01HZX",
		LastShown: shown,
	}}
	s := newTestService(t, ctrl)

	state, anchor, id, ms, derr := s.Status()
	require.Nil(t, derr)
	assert.Equal(t, "visible", state)
	assert.Equal(t, "tray-center", anchor)
	assert.Equal(t, "01HZX", id)
	assert.Equal(t, int64(1700000000123), ms)

	ctrl.status = menubar.Status{}
	state, _, _, ms, derr = s.Status()
	require.Nil(t, derr)
	assert.Equal(t, "no-window", state)
	assert.Zero(t, ms)
}

func TestServiceOptions(t *testing.T) {
	ctrl := &fakeController{options: map[string]string{"window.width": "400"}}
	s := newTestService(t, ctrl)

	v, derr := s.GetOption("window.width")
	require.Nil(t, derr)
	assert.Equal(t, "400", v)

	require.Nil(t, s.SetOption("window.width", "500"))
	assert.Equal(t, "500", ctrl.options["window.width"])

	_, derr = s.GetOption("nope")
	require.NotNil(t, derr)
	assert.Equal(t, ErrorUnknownOption, derr.Name)

	derr = s.SetOption("nope", "1")
	require.NotNil(t, derr)
	assert.Equal(t, ErrorUnknownOption, derr.Name)
}

func TestServiceTimeout(t *testing.T) {
	// A loop that never runs anything
	s := NewService(&fakeController{}, func(fn func()) {}, nil)
	s.SetTimeout(20 * time.Millisecond)

	derr := s.Show()
	require.NotNil(t, derr)
	assert.Equal(t, ErrorTimeout, derr.Name)
}

func TestEmitLifecycle(t *testing.T) {
	s := NewService(&fakeController{}, nil, nil)

	err := s.EmitLifecycle(event.Event{Type: event.Show})
	assert.Error(t, err, "not connected")

	signals := &fakeSignals{}
	s.signals = signals

	emitter := event.NewEmitter()
	detach := s.Attach(emitter)

	at := time.UnixMilli(1700000000000)
	emitter.Emit(event.Event{Type: event.AfterShow, WindowID: "01HZX", Time: at})

	require.Len(t, signals.sent, 1)
	assert.Equal(t, Path, signals.sent[0].path)
	assert.Equal(t, "io.github.jmylchreest.Menubar.Lifecycle", signals.sent[0].name)
	assert.Equal(t, []any{"after-show", "01HZX", int64(1700000000000)}, signals.sent[0].values)

	detach()
	emitter.Emit(event.Event{Type: event.Hide})
	assert.Len(t, signals.sent, 1)

	signals.err = errors.New("connection closed")
	assert.Error(t, s.EmitLifecycle(event.Event{Type: event.Hide}))
}

func TestParseLifecycle(t *testing.T) {
	name := Interface + "." + SignalLifecycle

	tests := []struct {
		name    string
		sig     *dbus.Signal
		want    Lifecycle
		wantErr bool
	}{
		{
			name: "valid",
			sig:  &dbus.Signal{Name: name, Body: []any{"show", "01HZX", int64(1700000000000)}},
			want: Lifecycle{Event: "show", WindowID: "01HZX", Time: time.UnixMilli(1700000000000)},
		},
		{
			name: "zero time",
			sig:  &dbus.Signal{Name: name, Body: []any{"ready", "", int64(0)}},
			want: Lifecycle{Event: "ready"},
		},
		{name: "nil", sig: nil, wantErr: true},
		{name: "other signal", sig: &dbus.Signal{Name: "org.example.Other", Body: []any{"a", "b", int64(1)}}, wantErr: true},
		{name: "short body", sig: &dbus.Signal{Name: name, Body: []any{"show"}}, wantErr: true},
		{name: "wrong event type", sig: &dbus.Signal{Name: name, Body: []any{1, "b", int64(1)}}, wantErr: true},
		{name: "wrong id type", sig: &dbus.Signal{Name: name, Body: []any{"a", 1, int64(1)}}, wantErr: true},
		{name: "wrong time type", sig: &dbus.Signal{Name: name, Body: []any{"a", "b", "c"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLifecycle(tt.sig)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
