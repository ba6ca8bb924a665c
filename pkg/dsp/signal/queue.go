package signal

import "sort"

// EventType distinguishes what a scheduled Event means to its Renderer.
// Concrete packages define their own constants starting at EventUser so
// unrelated nodes never collide on a type value.
type EventType int

// EventUser is the first event type value available to node packages.
const EventUser EventType = 16

// Event is a single sample-accurate message carried by a Queue: an envelope
// stage change, a macro input update, a note-on/off, a pitch glide target.
type Event struct {
	Type    EventType
	Offset  int // sample offset within the block, 0-based
	Number  float64
	Number2 float64
}

// Queue is a per-block, grow-only event buffer. It never shrinks its
// backing array across rounds, trading memory for the guarantee that
// scheduling an event on the audio thread never allocates after warm-up.
type Queue struct {
	events []Event
	sorted bool
}

// Schedule appends an event. Order among equal offsets is preserved (FIFO)
// by a stable sort performed lazily on Drain.
func (q *Queue) Schedule(e Event) {
	q.events = append(q.events, e)
	q.sorted = false
}

// Len reports how many events are currently queued.
func (q *Queue) Len() int { return len(q.events) }

// Drain returns every queued event in offset order, ties broken by
// scheduling order, and empties the queue without shrinking its capacity.
func (q *Queue) Drain() []Event {
	if len(q.events) == 0 {
		return nil
	}
	if !q.sorted {
		sort.SliceStable(q.events, func(i, j int) bool {
			return q.events[i].Offset < q.events[j].Offset
		})
		q.sorted = true
	}
	out := q.events
	q.events = q.events[:0]
	q.sorted = true
	return out
}

// Clear discards every queued event without delivering them.
func (q *Queue) Clear() {
	q.events = q.events[:0]
	q.sorted = true
}

// Cancel removes every not-yet-drained event of the given type.
func (q *Queue) Cancel(t EventType) {
	out := q.events[:0]
	for _, e := range q.events {
		if e.Type != t {
			out = append(out, e)
		}
	}
	q.events = out
}
