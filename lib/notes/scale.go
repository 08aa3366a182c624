package notes

import "fmt"

// modeIntervals holds the diatonic degree offsets produced by rotating the
// standard whole/half step pattern.
var modeIntervals = map[string][]int{
	"major":      {0, 2, 4, 5, 7, 9, 11},
	"ionian":     {0, 2, 4, 5, 7, 9, 11},
	"dorian":     {0, 2, 3, 5, 7, 9, 10},
	"phrygian":   {0, 1, 3, 5, 7, 8, 10},
	"lydian":     {0, 2, 4, 6, 7, 9, 11},
	"mixolydian": {0, 2, 4, 5, 7, 9, 10},
	"minor":      {0, 2, 3, 5, 7, 8, 10},
	"aeolian":    {0, 2, 3, 5, 7, 8, 10},
	"locrian":    {0, 1, 3, 5, 6, 8, 10},
}

// KeySignature returns the 7 diatonic pitch classes of the given key, spelled
// with the root's spelling preference.
func KeySignature(root string, mode string) ([]string, error) {
	rootIdx, ok := chromaticIndex(root)
	if !ok {
		return nil, fmt.Errorf("notes: unknown key root %q", root)
	}
	intervals, ok := modeIntervals[mode]
	if !ok {
		return nil, fmt.Errorf("notes: unknown mode %q", mode)
	}
	names := &sharpNames
	if isFlat(root) {
		names = &flatNames
	}
	out := make([]string, 0, 7)
	for _, iv := range intervals {
		out = append(out, names[(rootIdx+iv)%12])
	}
	return out, nil
}
