package midi

import (
	"sort"
	"sync"
)

// EventQueue is the per-Synth inbox for host-scheduled MIDI events: a host
// calls Add from its own thread while the audio thread calls
// GetEventsInRange and RemoveProcessedEvents, so every entry point takes a lock rather
// than assuming single-writer access the way pkg/dsp/signal.Queue can.
type EventQueue struct {
	events []Event
	mu     sync.RWMutex
	sorted bool
}

func NewEventQueue() *EventQueue {
	return &EventQueue{
		events: make([]Event, 0, 128),
		sorted: true,
	}
}

// Add enqueues one event. A host may call this from outside the audio
// thread ahead of the block that will dispatch it.
func (q *EventQueue) Add(event Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.events = append(q.events, event)
	q.sorted = false
}

// GetEventsInRange returns every event with a sample offset in
// [startSample, endSample), sorted by offset and, within equal offsets, by
// the order Add was called (spec's FIFO-at-equal-times rule).
func (q *EventQueue) GetEventsInRange(startSample, endSample int32) []Event {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if !q.sorted {
		q.mu.RUnlock()
		q.mu.Lock()
		q.sortEvents()
		q.mu.Unlock()
		q.mu.RLock()
	}

	if len(q.events) == 0 {
		return nil
	}

	startIdx := sort.Search(len(q.events), func(i int) bool {
		return q.events[i].SampleOffset() >= startSample
	})
	if startIdx >= len(q.events) {
		return nil
	}

	endIdx := startIdx
	for endIdx < len(q.events) && q.events[endIdx].SampleOffset() < endSample {
		endIdx++
	}
	if startIdx == endIdx {
		return nil
	}

	result := make([]Event, endIdx-startIdx)
	copy(result, q.events[startIdx:endIdx])
	return result
}

// RemoveProcessedEvents discards every event at or before upToSample,
// called once a block has dispatched them so the queue doesn't grow
// unbounded across a long host session.
func (q *EventQueue) RemoveProcessedEvents(upToSample int32) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.sorted {
		q.sortEvents()
	}

	keepIdx := sort.Search(len(q.events), func(i int) bool {
		return q.events[i].SampleOffset() > upToSample
	})
	if keepIdx > 0 {
		copy(q.events, q.events[keepIdx:])
		q.events = q.events[:len(q.events)-keepIdx]
	}
}

func (q *EventQueue) sortEvents() {
	sort.SliceStable(q.events, func(i, j int) bool {
		return q.events[i].SampleOffset() < q.events[j].SampleOffset()
	})
	q.sorted = true
}
