// Package notes provides notation parsing, chord and scale construction,
// transposition, and spread expansion for the strummer's note sets.
package notes

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

var sharpNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
var flatNames = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

const defaultOctave = 4

// a4Pitch is the pitch index of A4 under pitch = octave*12 + offset.
const a4Pitch = 4*12 + 9

// Note is one playable pitch. Notation is a canonical pitch class, sharp- or
// flat-spelled; Secondary marks notes synthesized by spread expansion.
type Note struct {
	Notation  string `json:"notation"`
	Octave    int    `json:"octave"`
	Secondary bool   `json:"secondary,omitempty"`
}

func chromaticIndex(notation string) (int, bool) {
	for i, n := range sharpNames {
		if n == notation {
			return i, true
		}
	}
	for i, n := range flatNames {
		if n == notation {
			return i, true
		}
	}
	return 0, false
}

func isFlat(notation string) bool {
	return len(notation) == 2 && notation[1] == 'b'
}

// Parse reads notation with an optional trailing octave digit ("C#3", "Bb").
// Without a digit the octave defaults to 4.
func Parse(s string) (Note, error) {
	if s == "" {
		return Note{}, fmt.Errorf("notes: empty notation")
	}
	octave := defaultOctave
	notation := s
	last := s[len(s)-1]
	if last >= '0' && last <= '9' {
		octave = int(last - '0')
		notation = s[:len(s)-1]
	}
	if _, ok := chromaticIndex(notation); !ok {
		return Note{}, fmt.Errorf("notes: unknown notation %q", s)
	}
	return Note{Notation: notation, Octave: octave}, nil
}

// Pitch is the absolute pitch index, octave*12 plus the chromatic offset.
func (n Note) Pitch() int {
	idx, _ := chromaticIndex(n.Notation)
	return n.Octave*12 + idx
}

// Transpose shifts by semitones, preserving the source spelling preference.
func (n Note) Transpose(semitones int) Note {
	p := n.Pitch() + semitones
	octave := int(math.Floor(float64(p) / 12))
	idx := p - octave*12
	names := &sharpNames
	if isFlat(n.Notation) {
		names = &flatNames
	}
	return Note{Notation: names[idx], Octave: octave, Secondary: n.Secondary}
}

// Frequency is the equal-temperament frequency in Hz, from A4 = 440.
func (n Note) Frequency() float64 {
	return 440 * math.Pow(2, float64(n.Pitch()-a4Pitch)/12)
}

func (n Note) String() string {
	return n.Notation + strconv.Itoa(n.Octave)
}

// FromPitch converts a pitch index back to a sharp-spelled Note.
func FromPitch(pitch int) Note {
	octave := int(math.Floor(float64(pitch) / 12))
	return Note{Notation: sharpNames[pitch-octave*12], Octave: octave}
}

// SortNotes orders notes ascending by pitch, in place.
func SortNotes(ns []Note) {
	sort.SliceStable(ns, func(i, j int) bool {
		return ns[i].Pitch() < ns[j].Pitch()
	})
}
