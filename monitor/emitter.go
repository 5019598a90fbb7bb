package monitor

import (
	"sync"
)

// EventKind names the kinds of signals a ShardStream emits.
type EventKind int

const (
	// EventData is a monitored command.
	EventData EventKind = iota

	// EventEnd is the terminal signal of a stream.
	EventEnd

	// EventError is a runtime failure of a stream.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventData:
		return "data"
	case EventEnd:
		return "end"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// ListenerID is the token returned when a listener is registered on a ShardStream.
// It is the only key used to remove that listener again.
type ListenerID uint64

type listener struct {
	id     ListenerID
	kind   EventKind
	onData func(RawEvent)
	onEnd  func()
	onErr  func(error)
}

// Emitter is a listener registry that ShardStream implementations embed.
//
// Listeners of one kind are invoked in registration order. Emit* takes a snapshot of the
// registered listeners and invokes them without holding any lock, so a listener may add or
// remove listeners (including all of them) while an emission is in progress.
//
// The zero value is ready to use.
type Emitter struct {
	mu        sync.Mutex
	nextID    ListenerID
	listeners []listener
}

// OnData registers fn for data events.
func (e *Emitter) OnData(fn func(RawEvent)) ListenerID {
	return e.add(listener{kind: EventData, onData: fn})
}

// OnEnd registers fn for the end event.
func (e *Emitter) OnEnd(fn func()) ListenerID {
	return e.add(listener{kind: EventEnd, onEnd: fn})
}

// OnError registers fn for error events.
func (e *Emitter) OnError(fn func(error)) ListenerID {
	return e.add(listener{kind: EventError, onErr: fn})
}

func (e *Emitter) add(l listener) ListenerID {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	l.id = e.nextID
	e.listeners = append(e.listeners, l)
	return l.id
}

// RemoveListener removes the listener registered under id.
// It reports whether such a listener was registered.
func (e *Emitter) RemoveListener(id ListenerID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, l := range e.listeners {
		if l.id == id {
			e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveAllListeners removes every listener of the given kind.
func (e *Emitter) RemoveAllListeners(kind EventKind) {
	e.mu.Lock()
	defer e.mu.Unlock()
	kept := e.listeners[:0:0]
	for _, l := range e.listeners {
		if l.kind != kind {
			kept = append(kept, l)
		}
	}
	e.listeners = kept
}

// ListenerCount returns the number of listeners of the given kind.
func (e *Emitter) ListenerCount(kind EventKind) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, l := range e.listeners {
		if l.kind == kind {
			n++
		}
	}
	return n
}

// EmitData delivers ev to every data listener.
func (e *Emitter) EmitData(ev RawEvent) {
	for _, l := range e.snapshot(EventData) {
		l.onData(ev)
	}
}

// EmitEnd delivers the end signal to every end listener.
func (e *Emitter) EmitEnd() {
	for _, l := range e.snapshot(EventEnd) {
		l.onEnd()
	}
}

// EmitError delivers err to every error listener.
func (e *Emitter) EmitError(err error) {
	for _, l := range e.snapshot(EventError) {
		l.onErr(err)
	}
}

func (e *Emitter) snapshot(kind EventKind) []listener {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]listener, 0, len(e.listeners))
	for _, l := range e.listeners {
		if l.kind == kind {
			out = append(out, l)
		}
	}
	return out
}
