package midi

import "testing"

func TestEventQueueSorting(t *testing.T) {
	q := NewEventQueue()

	// Add events out of order
	q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 300}, NoteNumber: 62, Velocity: 100})
	q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 100}, NoteNumber: 60, Velocity: 100})
	q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 200}, NoteNumber: 61, Velocity: 100})

	events := q.GetEventsInRange(0, 301)
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}

	offsets := []int32{100, 200, 300}
	for i, event := range events {
		if event.SampleOffset() != offsets[i] {
			t.Errorf("Event %d: expected offset %d, got %d", i, offsets[i], event.SampleOffset())
		}
	}
}

func TestEventQueueFIFOAtEqualOffsets(t *testing.T) {
	q := NewEventQueue()

	first := NoteOnEvent{BaseEvent: BaseEvent{Offset: 100}, NoteNumber: 60, Velocity: 100}
	second := NoteOnEvent{BaseEvent: BaseEvent{Offset: 100}, NoteNumber: 61, Velocity: 100}
	q.Add(first)
	q.Add(second)

	events := q.GetEventsInRange(0, 200)
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].(NoteOnEvent).NoteNumber != 60 || events[1].(NoteOnEvent).NoteNumber != 61 {
		t.Error("Events at equal offsets must preserve insertion order")
	}
}

func TestGetEventsInRange(t *testing.T) {
	q := NewEventQueue()

	q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 0}, NoteNumber: 60, Velocity: 100})
	q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 50}, NoteNumber: 61, Velocity: 100})
	q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 100}, NoteNumber: 62, Velocity: 100})
	q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 150}, NoteNumber: 63, Velocity: 100})
	q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 200}, NoteNumber: 64, Velocity: 100})

	tests := []struct {
		start    int32
		end      int32
		expected int
	}{
		{0, 100, 2},   // Events at 0 and 50
		{50, 150, 2},  // Events at 50 and 100
		{100, 200, 2}, // Events at 100 and 150
		{0, 250, 5},   // All events
		{250, 300, 0}, // No events
		{-50, 0, 0},   // Before first event
	}

	for _, tt := range tests {
		events := q.GetEventsInRange(tt.start, tt.end)
		if len(events) != tt.expected {
			t.Errorf("Range [%d, %d): expected %d events, got %d",
				tt.start, tt.end, tt.expected, len(events))
		}
	}
}

func TestRemoveProcessedEvents(t *testing.T) {
	q := NewEventQueue()

	for i := int32(0); i < 5; i++ {
		q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: i * 50}, NoteNumber: 60 + uint8(i), Velocity: 100})
	}

	// Remove events up to sample 125 (should remove first 3 events: 0, 50, 100)
	q.RemoveProcessedEvents(125)

	remaining := q.GetEventsInRange(0, 1000)
	if len(remaining) != 2 {
		t.Fatalf("Expected 2 remaining events, got %d", len(remaining))
	}
	if remaining[0].SampleOffset() != 150 {
		t.Errorf("Expected first remaining event at offset 150, got %d", remaining[0].SampleOffset())
	}
	if remaining[1].SampleOffset() != 200 {
		t.Errorf("Expected second remaining event at offset 200, got %d", remaining[1].SampleOffset())
	}
}

func TestConcurrentAccess(t *testing.T) {
	q := NewEventQueue()
	done := make(chan bool)

	go func() {
		for i := 0; i < 100; i++ {
			q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: int32(i)}, NoteNumber: 60, Velocity: 100})
		}
		done <- true
	}()

	go func() {
		for i := 0; i < 100; i++ {
			_ = q.GetEventsInRange(0, 100)
		}
		done <- true
	}()

	<-done
	<-done

	if got := len(q.GetEventsInRange(0, 100)); got != 100 {
		t.Errorf("Expected 100 events, got %d", got)
	}
}
