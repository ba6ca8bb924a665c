// Package signal provides the round-cached render contract shared by every
// node in the voice engine's signal graph: oscillators, filters, envelopes,
// LFOs, macros and the voices and buses built out of them.
package signal

// Round identifies one render block. A producer renders at most once per
// round no matter how many downstream nodes pull from it in that round.
type Round uint64

// Renderer is implemented by a concrete signal-graph node. Base drives these
// hooks through the produce/initialize/render/finalize contract; a node
// never calls them directly on itself.
type Renderer interface {
	// InitializeRendering prepares the node for a new round and reports
	// whether the entire block would be silence, letting Base skip Render
	// and zero-fill instead.
	InitializeRendering(round Round, sampleCount int) (silent bool)

	// Render fills buffers[*][firstSample:lastSample]. It may be called
	// more than once per round, once per sub-range between events.
	Render(round Round, firstSample, lastSample int, buffers [][]float32)

	// FinalizeRendering runs once per round after every Render call and
	// every queued event has been handled.
	FinalizeRendering(round Round, sampleCount int)
}

// Handler is implemented by nodes that react to scheduled events (a new
// envelope stage, a macro input change, a note's pitch glide). A Renderer
// that does not also implement Handler simply never receives events.
type Handler interface {
	HandleEvent(event Event)
}

// Base implements the cache/event contract described above. Embed it in a
// concrete node and call Produce with the node itself as the Renderer.
type Base struct {
	channels    int
	buffers     [][]float32
	queue       Queue
	cachedRound Round
	hasCache    bool
	silent      bool
}

// NewBase creates a Base for a node producing the given number of channels.
func NewBase(channels int) Base {
	return Base{channels: channels}
}

// Channels reports how many channels this node produces.
func (b *Base) Channels() int { return b.channels }

// Schedule queues an event to be delivered during the next Produce call
// whose round has not yet been cached. Events scheduled for a round already
// produced are held until the following round, mirroring one-block-delay
// cycle breaking in the modulation graph.
func (b *Base) Schedule(e Event) { b.queue.Schedule(e) }

// CancelEvents removes every not-yet-delivered event of the given type,
// used when a voice is retriggered or stolen mid-block.
func (b *Base) CancelEvents(t EventType) { b.queue.Cancel(t) }

// IsSilent reports whether the cached block for round was entirely silence.
// Callers use this to skip summing a silent input into a bus or filter.
func (b *Base) IsSilent(round Round) bool {
	return b.hasCache && b.cachedRound == round && b.silent
}

// Produce returns the rendered block for round, rendering it at most once.
// Calling Produce again with the same round returns the cached buffers
// without touching the Renderer at all (cache idempotence).
func (b *Base) Produce(r Renderer, round Round, sampleCount int) [][]float32 {
	if b.hasCache && b.cachedRound == round && len(b.buffers) > 0 && len(b.buffers[0]) >= sampleCount {
		return b.buffers
	}

	b.ensureBuffers(sampleCount)

	silent := r.InitializeRendering(round, sampleCount)
	if silent {
		for ch := 0; ch < b.channels; ch++ {
			buf := b.buffers[ch][:sampleCount]
			for i := range buf {
				buf[i] = 0
			}
		}
		b.queue.Clear()
	} else {
		handler, handlesEvents := r.(Handler)
		events := b.queue.Drain()
		firstSample := 0
		for _, e := range events {
			if !handlesEvents {
				continue
			}
			if e.Offset > firstSample {
				r.Render(round, firstSample, e.Offset, b.buffers)
				firstSample = e.Offset
			}
			handler.HandleEvent(e)
		}
		if firstSample < sampleCount {
			r.Render(round, firstSample, sampleCount, b.buffers)
		}
	}

	r.FinalizeRendering(round, sampleCount)

	b.silent = silent
	b.cachedRound = round
	b.hasCache = true

	return b.buffers
}

// Buffers returns the most recently produced block without re-rendering.
// Callers must only use this after a matching Produce call for the round.
func (b *Base) Buffers() [][]float32 { return b.buffers }

func (b *Base) ensureBuffers(sampleCount int) {
	if len(b.buffers) != b.channels {
		b.buffers = make([][]float32, b.channels)
	}
	for ch := range b.buffers {
		if cap(b.buffers[ch]) < sampleCount {
			b.buffers[ch] = make([]float32, sampleCount)
		} else {
			b.buffers[ch] = b.buffers[ch][:sampleCount]
		}
	}
}
