package event

// Sink receives events in order.
type Sink interface {
	Emit(e Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(e Event)

// Emit implements Sink.
func (f SinkFunc) Emit(e Event) {
	f(e)
}

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// Recorder keeps every emitted event in memory.
// Not safe for concurrent use.
type Recorder struct {
	events []Event
}

// NewRecorder creates a recorder with room for capacity events.
func NewRecorder(capacity int) *Recorder {
	return &Recorder{events: make([]Event, 0, capacity)}
}

// Emit implements Sink.
func (r *Recorder) Emit(e Event) {
	r.events = append(r.events, e)
}

// Events returns the recorded events. The slice is shared with the recorder.
func (r *Recorder) Events() []Event {
	return r.events
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	return len(r.events)
}

// Reset drops recorded events and keeps the allocation.
func (r *Recorder) Reset() {
	r.events = r.events[:0]
}

// Filter returns the recorded events of kind k.
func (r *Recorder) Filter(k Kind) []Event {
	var out []Event
	for _, e := range r.events {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

type multi []Sink

func (m multi) Emit(e Event) {
	for _, s := range m {
		s.Emit(e)
	}
}

// Multi fans every event out to sinks in order.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}
