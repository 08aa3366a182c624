package notes

import "fmt"

// Progressions is the built-in chord progression catalog. Keys are preset
// names usable from the tabletButtons configuration.
var Progressions = map[string][]string{
	"axis-of-awesome": {"C", "G", "Am", "F"},
	"doo-wop":         {"C", "Am", "F", "G"},
	"andalusian":      {"Am", "G", "F", "E"},
	"pachelbel":       {"C", "G", "Am", "Em", "F", "C", "F", "G"},
	"12-bar-blues":    {"C7", "C7", "C7", "C7", "F7", "F7", "C7", "C7", "G7", "F7", "C7", "G7"},
	"jazz-251":        {"Dm7", "G7", "Cmaj7"},
	"minor-folk":      {"Am", "F", "C", "G"},
}

// Progression is a wrap-around cursor over an ordered chord list.
type Progression struct {
	Name   string
	Chords []string
	index  int
}

// LookupProgression builds a cursor for a named preset. Unknown names fail
// without creating any state.
func LookupProgression(name string) (*Progression, error) {
	chords, ok := Progressions[name]
	if !ok {
		return nil, fmt.Errorf("notes: unknown chord progression %q", name)
	}
	return &Progression{Name: name, Chords: chords}, nil
}

func (p *Progression) Index() int { return p.index }

// Current returns the chord symbol under the cursor.
func (p *Progression) Current() string { return p.Chords[p.index] }

// SetIndex positions the cursor, wrapping any integer into range.
func (p *Progression) SetIndex(i int) {
	n := len(p.Chords)
	p.index = ((i % n) + n) % n
}

// Increment moves the cursor by delta (either sign) and returns the new index.
func (p *Progression) Increment(delta int) int {
	p.SetIndex(p.index + delta)
	return p.index
}
