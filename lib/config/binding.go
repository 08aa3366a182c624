package config

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"strumboli/lib/notes"
)

// Binding names an action, optionally with one argument. In JSON it is
// either a bare string ("toggle-transpose") or a pair
// (["set-strum-chord", "Am"]).
type Binding struct {
	Action string
	Arg    string
}

func (b *Binding) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &b.Action); err == nil {
		return nil
	}
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("config: bad action binding %s: %w", data, err)
	}
	if len(pair) == 0 {
		return fmt.Errorf("config: empty action binding")
	}
	b.Action = pair[0]
	if len(pair) > 1 {
		b.Arg = pair[1]
	}
	return nil
}

func (b Binding) MarshalJSON() ([]byte, error) {
	if b.Arg == "" {
		return json.Marshal(b.Action)
	}
	return json.Marshal([]string{b.Action, b.Arg})
}

// tabletButtonCount is how many frame buttons a profile can bind.
const tabletButtonCount = 8

// TabletButtons maps frame button numbers (1-based) to bindings. In JSON it
// is either an explicit {"1": ..., "2": ...} object or a chord progression
// preset name, which expands to set-strum-chord bindings across all 8
// buttons, wrapping around when the progression is shorter.
type TabletButtons map[int]Binding

func (t *TabletButtons) UnmarshalJSON(data []byte) error {
	var preset string
	if err := json.Unmarshal(data, &preset); err == nil {
		chords, ok := notes.Progressions[preset]
		if !ok {
			slog.Warn("unknown chord progression preset, ignoring", "preset", preset)
			*t = nil
			return nil
		}
		out := make(TabletButtons, tabletButtonCount)
		for i := 1; i <= tabletButtonCount; i++ {
			out[i] = Binding{Action: "set-strum-chord", Arg: chords[(i-1)%len(chords)]}
		}
		*t = out
		return nil
	}

	var raw map[string]Binding
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("config: tabletButtons: %w", err)
	}
	out := make(TabletButtons, len(raw))
	for key, binding := range raw {
		var n int
		if _, err := fmt.Sscanf(key, "%d", &n); err != nil || n < 1 || n > tabletButtonCount {
			slog.Warn("ignoring tablet button outside 1-8", "button", key)
			continue
		}
		out[n] = binding
	}
	*t = out
	return nil
}
