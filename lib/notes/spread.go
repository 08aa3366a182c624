package notes

// FillSpread widens a base note set with synthesized octave-shifted notes:
// lower notes below the set and upper notes above it, round-robining through
// the base when the count exceeds its size. The result is ordered lower
// spread, base, upper spread; every synthesized note is flagged Secondary.
func FillSpread(base []Note, lower, upper int) []Note {
	if len(base) == 0 {
		return nil
	}

	low := make([]Note, 0, lower)
	for i := 1; i <= lower; i++ {
		src := base[len(base)-1-(i-1)%len(base)]
		shift := 1 + (i-1)/len(base)
		n := src.Transpose(-12 * shift)
		n.Secondary = true
		low = append(low, n)
	}
	// generated top-down; flip so the full list stays ascending
	for i, j := 0, len(low)-1; i < j; i, j = i+1, j-1 {
		low[i], low[j] = low[j], low[i]
	}

	out := make([]Note, 0, lower+len(base)+upper)
	out = append(out, low...)
	out = append(out, base...)

	for i := 1; i <= upper; i++ {
		src := base[(i-1)%len(base)]
		shift := 1 + (i-1)/len(base)
		n := src.Transpose(12 * shift)
		n.Secondary = true
		out = append(out, n)
	}
	return out
}
