package notes

import (
	"fmt"
	"log/slog"
)

// chordIntervals maps a chord suffix to semitone offsets from the root.
var chordIntervals = map[string][]int{
	"":      {0, 4, 7},
	"major": {0, 4, 7},
	"maj":   {0, 4, 7},
	"m":     {0, 3, 7},
	"min":   {0, 3, 7},
	"minor": {0, 3, 7},
	"5":     {0, 7},
	"6":     {0, 4, 7, 9},
	"m6":    {0, 3, 7, 9},
	"7":     {0, 4, 7, 10},
	"maj7":  {0, 4, 7, 11},
	"m7":    {0, 3, 7, 10},
	"9":     {0, 4, 7, 10, 14},
	"maj9":  {0, 4, 7, 11, 14},
	"m9":    {0, 3, 7, 10, 14},
	"dim":   {0, 3, 6},
	"dim7":  {0, 3, 6, 9},
	"aug":   {0, 4, 8},
	"sus2":  {0, 2, 7},
	"sus4":  {0, 5, 7},
	"add9":  {0, 4, 7, 14},
}

// ParseChord expands a chord symbol ("Am7", "F#maj7", "Bb") into its tones,
// root anchored at the given octave, later tones rolling into the next octave
// as their pitch crosses it. Chord tones are always sharp-spelled. An unknown
// suffix falls back to a major triad with a logged warning.
func ParseChord(symbol string, octave int) ([]Note, error) {
	if symbol == "" {
		return nil, fmt.Errorf("notes: empty chord symbol")
	}
	root := symbol[:1]
	suffix := symbol[1:]
	if len(symbol) >= 2 && (symbol[1] == '#' || symbol[1] == 'b') {
		root = symbol[:2]
		suffix = symbol[2:]
	}
	rootIdx, ok := chromaticIndex(root)
	if !ok {
		return nil, fmt.Errorf("notes: unknown chord root %q", symbol)
	}

	intervals, ok := chordIntervals[suffix]
	if !ok {
		slog.Warn("unknown chord suffix, using major triad", "chord", symbol)
		intervals = chordIntervals[""]
	}

	out := make([]Note, 0, len(intervals))
	for _, iv := range intervals {
		out = append(out, FromPitch(octave*12+rootIdx+iv))
	}
	return out, nil
}
