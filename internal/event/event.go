// Package event is the menubar's publish-only notification channel.
//
// The vocabulary is fixed: observers can rely on exactly the types listed
// here. Listeners run synchronously on the emitting goroutine (the UI loop)
// in registration order. Emitting from inside a listener is not supported.
package event

import (
	"time"
)

// Type names a lifecycle notification.
type Type string

const (
	Ready             Type = "ready"
	CreateWindow      Type = "create-window"
	AfterCreateWindow Type = "after-create-window"
	Show              Type = "show"
	AfterShow         Type = "after-show"
	Hide              Type = "hide"
	AfterHide         Type = "after-hide"
	AfterClose        Type = "after-close"
	FocusLost         Type = "focus-lost"
)

// Types returns the complete event vocabulary in lifecycle order.
func Types() []Type {
	return []Type{
		Ready,
		CreateWindow,
		AfterCreateWindow,
		Show,
		AfterShow,
		Hide,
		AfterHide,
		AfterClose,
		FocusLost,
	}
}

// Valid reports whether t is part of the vocabulary.
func (t Type) Valid() bool {
	for _, v := range Types() {
		if t == v {
			return true
		}
	}
	return false
}

// Event is a single notification. WindowID is empty for events that are
// not tied to a popup instance (ready).
type Event struct {
	Type     Type      `json:"type" yaml:"type"`
	WindowID string    `json:"window_id,omitempty" yaml:"window_id,omitempty"`
	Time     time.Time `json:"time" yaml:"time"`
}

// Listener receives events.
type Listener func(Event)

type subscription struct {
	id  uint64
	typ Type // empty matches every type
	fn  Listener
}

// Emitter fans events out to listeners. It is not safe for concurrent use;
// all calls belong on the UI loop.
type Emitter struct {
	subs   []subscription
	nextID uint64
	now    func() time.Time
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{now: time.Now}
}

// On registers fn for events of type t and returns a function that
// removes the registration.
func (e *Emitter) On(t Type, fn Listener) (unsubscribe func()) {
	return e.add(t, fn)
}

// OnAny registers fn for every event.
func (e *Emitter) OnAny(fn Listener) (unsubscribe func()) {
	return e.add("", fn)
}

func (e *Emitter) add(t Type, fn Listener) func() {
	e.nextID++
	id := e.nextID
	e.subs = append(e.subs, subscription{id: id, typ: t, fn: fn})
	return func() { e.remove(id) }
}

func (e *Emitter) remove(id uint64) {
	for i, s := range e.subs {
		if s.id == id {
			e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
			return
		}
	}
}

// Emit delivers ev to every matching listener. A zero Time is stamped with
// the current time.
func (e *Emitter) Emit(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = e.now()
	}
	// Snapshot so listeners that unsubscribe do not disturb this delivery.
	subs := append([]subscription(nil), e.subs...)
	for _, s := range subs {
		if s.typ == "" || s.typ == ev.Type {
			s.fn(ev)
		}
	}
}

// Len returns the number of registered listeners.
func (e *Emitter) Len() int {
	return len(e.subs)
}
