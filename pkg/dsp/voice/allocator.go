package voice

// AllocationMode selects how incoming notes are mapped onto the fixed pool
// of Voices.
type AllocationMode int

const (
	ModePoly AllocationMode = iota
	ModeMono
	ModeLegato
	ModeUnison
)

// StealingMode selects which already-sounding voice is reclaimed when a
// new note arrives and every voice in the pool is in use.
type StealingMode int

const (
	StealOldest StealingMode = iota
	StealQuietest
	StealHighest
	StealLowest
	StealNone
)

// noteKey packs (channel, note) into one map key, the composite identity
// spec §4.9's allocator tracks instead of a note-only key: the same note
// number on two different MIDI channels (MPE, multitimbral input) must not
// collide.
type noteKey uint16

func makeKey(channel, note uint8) noteKey {
	return noteKey(channel)<<8 | noteKey(note)
}

// Allocator assigns incoming MIDI notes to a fixed pool of Voices,
// following one of four allocation modes and, when the pool is exhausted,
// one of five stealing strategies.
type Allocator struct {
	voices       []*Voice
	mode         AllocationMode
	stealingMode StealingMode
	maxVoices    int
	noteToVoice  map[noteKey][]int
	lastTriggered int

	sustainPedal   bool
	sustainedNotes map[noteKey]struct{ channel, note uint8 }

	glideSamples int

	monoKey      noteKey
	monoHasNote  bool
	monoNoteStack []struct{ channel, note, velocity uint8 }

	nextNoteID uint64
}

// NewAllocator creates an Allocator managing voices, defaulting to poly
// allocation with oldest-voice stealing.
func NewAllocator(voices []*Voice) *Allocator {
	return &Allocator{
		voices:         voices,
		mode:           ModePoly,
		stealingMode:   StealOldest,
		maxVoices:      len(voices),
		noteToVoice:    make(map[noteKey][]int),
		sustainedNotes: make(map[noteKey]struct{ channel, note uint8 }),
	}
}

func (a *Allocator) SetMode(mode AllocationMode) {
	a.mode = mode
	a.Reset()
}

func (a *Allocator) SetStealingMode(mode StealingMode) { a.stealingMode = mode }

func (a *Allocator) SetMaxVoices(max int) {
	if max > len(a.voices) {
		max = len(a.voices)
	}
	if max < 1 {
		max = 1
	}
	a.maxVoices = max
}

// SetGlideTime sets the mono/legato portamento duration in seconds at
// sampleRate.
func (a *Allocator) SetGlideTime(seconds, sampleRate float64) {
	a.glideSamples = int(seconds * sampleRate)
}

// Reset stops every voice and clears all allocator bookkeeping.
func (a *Allocator) Reset() {
	for _, v := range a.voices {
		v.Stop()
	}
	a.noteToVoice = make(map[noteKey][]int)
	a.sustainedNotes = make(map[noteKey]struct{ channel, note uint8 })
	a.sustainPedal = false
	a.monoHasNote = false
	a.monoNoteStack = a.monoNoteStack[:0]
}

// ActiveVoiceCount reports how many of the managed voices are currently
// sounding.
func (a *Allocator) ActiveVoiceCount() int {
	count := 0
	for _, v := range a.voices[:a.maxVoices] {
		if v.IsActive() {
			count++
		}
	}
	return count
}

// SetSustainPedal engages or releases the sustain pedal. Releasing it
// flushes every note that arrived a NoteOff while the pedal was held.
func (a *Allocator) SetSustainPedal(t int64, on bool) {
	a.sustainPedal = on
	if on {
		return
	}
	pending := a.sustainedNotes
	a.sustainedNotes = make(map[noteKey]struct{ channel, note uint8 })
	for _, cn := range pending {
		a.NoteOff(t, cn.channel, cn.note, 0)
	}
}

// NoteOn allocates or retriggers a voice for (channel, note).
func (a *Allocator) NoteOn(t int64, channel, note, velocity uint8) {
	a.nextNoteID++
	noteID := a.nextNoteID

	switch a.mode {
	case ModePoly:
		a.noteOnPoly(t, noteID, channel, note, velocity)
	case ModeMono:
		a.noteOnMono(t, noteID, channel, note, velocity, false)
	case ModeLegato:
		a.noteOnMono(t, noteID, channel, note, velocity, true)
	case ModeUnison:
		a.noteOnUnison(t, noteID, channel, note, velocity)
	}
}

// NoteOff releases the voice(s) playing (channel, note), or defers the
// release until the sustain pedal lifts.
func (a *Allocator) NoteOff(t int64, channel, note, velocity uint8) {
	key := makeKey(channel, note)

	if a.sustainPedal {
		a.sustainedNotes[key] = struct{ channel, note uint8 }{channel, note}
		return
	}

	switch a.mode {
	case ModePoly, ModeUnison:
		if idxs, ok := a.noteToVoice[key]; ok {
			for _, idx := range idxs {
				a.voices[idx].NoteOff(t, a.voices[idx].NoteID(), note, velocity)
			}
			delete(a.noteToVoice, key)
		}
	case ModeMono, ModeLegato:
		a.noteOffMono(t, channel, note, velocity)
	}
}

func (a *Allocator) noteOnPoly(t int64, noteID uint64, channel, note, velocity uint8) {
	key := makeKey(channel, note)

	if idxs, ok := a.noteToVoice[key]; ok && len(idxs) > 0 {
		for _, idx := range idxs {
			a.voices[idx].Retrigger(t, noteID, note, channel, velocity)
		}
		return
	}

	idx := a.findFreeVoice()
	if idx == -1 {
		idx = a.stealVoice(t)
		if idx == -1 {
			return
		}
	}

	a.voices[idx].NoteOn(t, noteID, note, channel, velocity, note, true)
	a.noteToVoice[key] = []int{idx}
}

func (a *Allocator) noteOnMono(t int64, noteID uint64, channel, note, velocity uint8, legato bool) {
	a.monoNoteStack = append(a.monoNoteStack, struct{ channel, note, velocity uint8 }{channel, note, velocity})

	v := a.voices[0]
	prevKey := a.monoKey
	prevHadNote := a.monoHasNote
	a.monoKey = makeKey(channel, note)
	a.monoHasNote = true
	a.noteToVoice = map[noteKey][]int{a.monoKey: {0}}

	if !prevHadNote {
		v.NoteOn(t, noteID, note, channel, velocity, note, true)
		return
	}

	if legato {
		v.GlideTo(note, channel, a.glideSamples)
		return
	}

	_ = prevKey
	v.Retrigger(t, noteID, note, channel, velocity)
}

func (a *Allocator) noteOffMono(t int64, channel, note, velocity uint8) {
	key := makeKey(channel, note)
	if key != a.monoKey {
		a.removeFromMonoStack(channel, note)
		return
	}

	a.removeFromMonoStack(channel, note)

	if len(a.monoNoteStack) == 0 {
		a.voices[0].NoteOff(t, a.voices[0].NoteID(), note, velocity)
		a.monoHasNote = false
		delete(a.noteToVoice, key)
		return
	}

	top := a.monoNoteStack[len(a.monoNoteStack)-1]
	a.monoKey = makeKey(top.channel, top.note)
	a.nextNoteID++
	a.voices[0].Retrigger(t, a.nextNoteID, top.note, top.channel, top.velocity)
	a.noteToVoice = map[noteKey][]int{a.monoKey: {0}}
}

func (a *Allocator) removeFromMonoStack(channel, note uint8) {
	for i, n := range a.monoNoteStack {
		if n.channel == channel && n.note == note {
			a.monoNoteStack = append(a.monoNoteStack[:i], a.monoNoteStack[i+1:]...)
			return
		}
	}
}

func (a *Allocator) noteOnUnison(t int64, noteID uint64, channel, note, velocity uint8) {
	key := makeKey(channel, note)
	idxs := make([]int, 0, a.maxVoices)
	for i := 0; i < a.maxVoices; i++ {
		a.voices[i].NoteOn(t, noteID, note, channel, velocity, note, true)
		idxs = append(idxs, i)
	}
	a.noteToVoice[key] = idxs
}

func (a *Allocator) findFreeVoice() int {
	start := a.lastTriggered
	for i := 0; i < a.maxVoices; i++ {
		idx := (start + i + 1) % a.maxVoices
		if !a.voices[idx].IsActive() {
			a.lastTriggered = idx
			return idx
		}
	}
	return -1
}

func (a *Allocator) stealVoice(now int64) int {
	if a.stealingMode == StealNone {
		return -1
	}

	bestIdx := -1
	var bestValue float64

	for i := 0; i < a.maxVoices; i++ {
		if !a.voices[i].IsActive() {
			continue
		}

		switch a.stealingMode {
		case StealOldest:
			age := float64(a.voices[i].Age(now))
			if bestIdx == -1 || age > bestValue {
				bestIdx, bestValue = i, age
			}
		case StealQuietest:
			amp := a.voices[i].Amplitude()
			if bestIdx == -1 || amp < bestValue {
				bestIdx, bestValue = i, amp
			}
		case StealHighest:
			note := float64(a.voices[i].Note())
			if bestIdx == -1 || note > bestValue {
				bestIdx, bestValue = i, note
			}
		case StealLowest:
			note := float64(a.voices[i].Note())
			if bestIdx == -1 || note < bestValue {
				bestIdx, bestValue = i, note
			}
		}
	}

	if bestIdx == -1 {
		return -1
	}

	stolenKey := makeKey(a.voices[bestIdx].Channel(), a.voices[bestIdx].Note())
	if idxs, ok := a.noteToVoice[stolenKey]; ok {
		for i, idx := range idxs {
			if idx == bestIdx {
				a.noteToVoice[stolenKey] = append(idxs[:i], idxs[i+1:]...)
				if len(a.noteToVoice[stolenKey]) == 0 {
					delete(a.noteToVoice, stolenKey)
				}
				break
			}
		}
	}
	a.voices[bestIdx].CancelNoteSmoothly(now)

	return bestIdx
}

// CollectGarbage reclaims any voice whose envelopes have fully decayed
// after release, letting the allocator's round-robin reuse it immediately
// instead of waiting for an explicit Stop (spec §4.12's periodic voice GC).
func (a *Allocator) CollectGarbage() {
	for _, v := range a.voices[:a.maxVoices] {
		if v.State.IsOn && v.State.IsReleased && v.HasDecayedBeforeNoteOff() {
			v.Stop()
		}
	}
}
