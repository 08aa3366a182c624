// Package midiin tracks the set of notes currently held on an external MIDI
// keyboard, for driving the strum layout from live playing.
package midiin

import (
	"sort"
	"sync"

	"gitlab.com/gomidi/midi/v2"

	"strumboli/lib/notes"
)

// Tracker folds a MIDI input stream into the currently held note set.
// Handle is safe to use directly as a midi.ListenTo callback.
type Tracker struct {
	mu      sync.Mutex
	held    map[uint8]bool
	updates chan []notes.Note
}

func NewTracker() *Tracker {
	return &Tracker{
		held:    map[uint8]bool{},
		updates: make(chan []notes.Note, 8),
	}
}

// Updates delivers the full held set, sorted ascending, after every change.
// Slow consumers drop intermediate sets, never the channel.
func (t *Tracker) Updates() <-chan []notes.Note {
	return t.updates
}

// Handle processes one incoming message. Note-on with velocity 0 counts as
// note-off, as many keyboards send it that way.
func (t *Tracker) Handle(msg midi.Message, timestampms int32) {
	var channel, key, velocity uint8

	switch {
	case msg.GetNoteStart(&channel, &key, &velocity):
		t.set(key, true)
	case msg.GetNoteEnd(&channel, &key):
		t.set(key, false)
	}
}

// Held returns the held notes, sorted ascending by pitch.
func (t *Tracker) Held() []notes.Note {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.heldLocked()
}

func (t *Tracker) set(key uint8, down bool) {
	t.mu.Lock()
	if down == t.held[key] {
		t.mu.Unlock()
		return
	}
	if down {
		t.held[key] = true
	} else {
		delete(t.held, key)
	}
	ns := t.heldLocked()
	t.mu.Unlock()

	select {
	case t.updates <- ns:
	default:
	}
}

// heldLocked builds the sorted note list. Callers hold t.mu.
func (t *Tracker) heldLocked() []notes.Note {
	pitches := make([]int, 0, len(t.held))
	for p := range t.held {
		pitches = append(pitches, int(p))
	}
	sort.Ints(pitches)
	out := make([]notes.Note, len(pitches))
	for i, p := range pitches {
		out[i] = notes.FromPitch(p)
	}
	return out
}
