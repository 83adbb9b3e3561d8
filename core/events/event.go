package events

import "gigescrow/core/types"

// Event represents a structured state change emitted by the engine.
type Event interface {
	EventType() string
}

// PayloadEvent is implemented by events that expose a serialisable payload
// for downstream subscribers such as the journal or RPC listeners.
type PayloadEvent interface {
	Event
	Event() *types.Event
}

// Emitter broadcasts events to downstream subscribers (e.g. RPC, indexers).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter is a helper that satisfies the Emitter interface while discarding
// all events. It is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// Capture records emitted events in order. Intended for tests and for the
// in-process wiring between engines and the journal.
type Capture struct {
	Events []*types.Event
}

// Emit implements the Emitter interface.
func (c *Capture) Emit(evt Event) {
	if c == nil {
		return
	}
	payload, ok := evt.(PayloadEvent)
	if !ok {
		return
	}
	if e := payload.Event(); e != nil {
		c.Events = append(c.Events, e)
	}
}

// Fanout forwards each event to every configured emitter in order.
type Fanout []Emitter

// Emit implements the Emitter interface.
func (f Fanout) Emit(evt Event) {
	for _, emitter := range f {
		if emitter != nil {
			emitter.Emit(evt)
		}
	}
}
