// Package strum turns a stream of (position, pressure) samples into plucked
// string events over a virtual fretboard laid out across the tablet surface.
package strum

import (
	"fmt"
	"strings"
	"sync"

	"strumboli/lib/notes"
)

const (
	// DefaultThreshold is the pressure floor below which the pen is
	// considered lifted.
	DefaultThreshold = 0.1

	// tapBufferCap is how many samples a fresh tap accumulates before the
	// velocity is trusted. Absorbs the sensor's pressure ramp-up.
	tapBufferCap = 3

	minVelocity = 20
)

// Event is a strum or release produced by one sample.
type Event interface {
	String() string
}

// PluckedNote is one virtual string triggered during a strum.
type PluckedNote struct {
	Note     notes.Note
	Velocity uint8
}

// StrumEvent reports one or more strings plucked by a single sample, in the
// spatial order they were crossed.
type StrumEvent struct {
	Notes []PluckedNote
}

func (e StrumEvent) String() string {
	parts := make([]string, len(e.Notes))
	for i, n := range e.Notes {
		parts[i] = fmt.Sprintf("%s@%d", n.Note, n.Velocity)
	}
	return "strum " + strings.Join(parts, " ")
}

// ReleaseEvent reports pressure dropping below the threshold after a
// committed strum.
type ReleaseEvent struct {
	Velocity uint8
}

func (e ReleaseEvent) String() string {
	return fmt.Sprintf("release @%d", e.Velocity)
}

// Engine is the tap-buffering strum state machine. Strum is called once per
// decoded sample; SetNotes and Configure may be called from other goroutines.
type Engine struct {
	mu        sync.Mutex
	width     float64
	threshold float64
	notes     []notes.Note

	lastPressure float64
	lastIndex    int
	lastVelocity uint8
	pendingIndex int
	tapBuffer    []float64

	updates chan struct{}
}

func NewEngine(width float64) *Engine {
	return &Engine{
		width:        width,
		threshold:    DefaultThreshold,
		lastIndex:    -1,
		pendingIndex: -1,
		tapBuffer:    make([]float64, 0, tapBufferCap),
		updates:      make(chan struct{}, 1),
	}
}

// Updates signals after every note set replacement.
func (e *Engine) Updates() <-chan struct{} {
	return e.updates
}

// Notes returns a copy of the current string layout, left to right.
func (e *Engine) Notes() []notes.Note {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]notes.Note, len(e.notes))
	copy(out, e.notes)
	return out
}

// SetNotes atomically replaces the string layout. In-flight tap state is
// discarded silently so a chord change mid-strum never plucks stale strings.
func (e *Engine) SetNotes(ns []notes.Note) {
	e.mu.Lock()
	e.notes = make([]notes.Note, len(ns))
	copy(e.notes, ns)
	e.reset()
	e.mu.Unlock()

	select {
	case e.updates <- struct{}{}:
	default:
	}
}

// Configure updates the pressure threshold live, without resetting any
// in-flight tap.
func (e *Engine) Configure(threshold float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if threshold > 0 {
		e.threshold = threshold
	}
}

// Clear silently resets all transient state. No events are emitted.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
}

// reset clears transient strum state. Callers hold e.mu.
func (e *Engine) reset() {
	e.lastPressure = 0
	e.lastIndex = -1
	e.lastVelocity = 0
	e.pendingIndex = -1
	e.tapBuffer = e.tapBuffer[:0]
}

// Strum processes one sample and returns the events it produced, if any.
func (e *Engine) Strum(x, pressure float64) []Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.notes) == 0 {
		return nil
	}

	idx := e.stringIndex(x)
	down := pressure >= e.threshold && e.lastPressure < e.threshold
	up := pressure < e.threshold && e.lastPressure >= e.threshold
	e.lastPressure = pressure

	switch {
	case up:
		var out []Event
		if e.lastVelocity > 0 {
			out = append(out, ReleaseEvent{Velocity: e.lastVelocity})
		}
		e.reset()
		return out

	case pressure < e.threshold:
		return nil

	case down, e.pendingIndex < 0 && e.lastIndex < 0:
		// new tap: fix the string, start buffering
		e.pendingIndex = idx
		e.tapBuffer = append(e.tapBuffer[:0], pressure)
		return nil

	case e.pendingIndex >= 0:
		e.tapBuffer = append(e.tapBuffer, pressure)
		if len(e.tapBuffer) < tapBufferCap {
			return nil
		}
		vel := e.tapVelocity(pressure)
		ev := StrumEvent{Notes: []PluckedNote{{Note: e.notes[e.pendingIndex], Velocity: vel}}}
		e.lastIndex = e.pendingIndex
		e.lastVelocity = vel
		e.pendingIndex = -1
		e.tapBuffer = e.tapBuffer[:0]
		return []Event{ev}

	case idx != e.lastIndex:
		ev := e.crossing(idx, pressure)
		e.lastIndex = idx
		return []Event{ev}
	}

	return nil
}

// crossing plucks every string strictly past the previous index up to and
// including the new one, in travel order. Callers hold e.mu.
func (e *Engine) crossing(idx int, pressure float64) StrumEvent {
	vel := crossingVelocity(pressure)
	step := 1
	if idx < e.lastIndex {
		step = -1
	}
	var plucked []PluckedNote
	for i := e.lastIndex + step; ; i += step {
		plucked = append(plucked, PluckedNote{Note: e.notes[i], Velocity: vel})
		if i == idx {
			break
		}
	}
	e.lastVelocity = vel
	return StrumEvent{Notes: plucked}
}

// tapVelocity maps the committing sample's pressure, normalized against
// [threshold, 1], into [20, 127].
func (e *Engine) tapVelocity(pressure float64) uint8 {
	n := (pressure - e.threshold) / (1 - e.threshold)
	if n < 0 {
		n = 0
	}
	if n > 1 {
		n = 1
	}
	return uint8(minVelocity + n*(127-minVelocity))
}

func crossingVelocity(pressure float64) uint8 {
	v := int(pressure * 127)
	if v < minVelocity {
		v = minVelocity
	}
	if v > 127 {
		v = 127
	}
	return uint8(v)
}

// stringIndex maps an x position onto a string slot. Callers hold e.mu.
func (e *Engine) stringIndex(x float64) int {
	per := e.width / float64(len(e.notes))
	idx := int(x / per)
	if idx < 0 {
		idx = 0
	}
	if idx >= len(e.notes) {
		idx = len(e.notes) - 1
	}
	return idx
}
