package dbus

import (
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
)

// StatusReply is the result of the Status method.
type StatusReply struct {
	State     string    `json:"state" yaml:"state"`
	Anchor    string    `json:"anchor" yaml:"anchor"`
	WindowID  string    `json:"window_id,omitempty" yaml:"window_id,omitempty"`
	LastShown time.Time `json:"last_shown,omitzero" yaml:"last_shown,omitempty"`
}

// Lifecycle is a decoded Lifecycle signal.
type Lifecycle struct {
	Event    string    `json:"event" yaml:"event"`
	WindowID string    `json:"window_id,omitempty" yaml:"window_id,omitempty"`
	Time     time.Time `json:"time" yaml:"time"`
}

// unixMilli converts a wire timestamp; zero stays the zero time.
func unixMilli(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func toUnixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// ParseLifecycle decodes a Lifecycle signal.
func ParseLifecycle(sig *dbus.Signal) (Lifecycle, error) {
	if sig == nil || sig.Name != Interface+"."+SignalLifecycle {
		return Lifecycle{}, fmt.Errorf("not a lifecycle signal")
	}
	if len(sig.Body) != 3 {
		return Lifecycle{}, fmt.Errorf("malformed lifecycle signal: %d values", len(sig.Body))
	}

	name, ok := sig.Body[0].(string)
	if !ok {
		return Lifecycle{}, fmt.Errorf("invalid event type %T", sig.Body[0])
	}
	id, ok := sig.Body[1].(string)
	if !ok {
		return Lifecycle{}, fmt.Errorf("invalid window_id type %T", sig.Body[1])
	}
	ms, ok := sig.Body[2].(int64)
	if !ok {
		return Lifecycle{}, fmt.Errorf("invalid time type %T", sig.Body[2])
	}

	return Lifecycle{Event: name, WindowID: id, Time: unixMilli(ms)}, nil
}
