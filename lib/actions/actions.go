// Package actions executes the button bindings: feature toggles, chord
// changes and chord progression navigation.
package actions

import (
	"log/slog"

	"strumboli/lib/config"
	"strumboli/lib/notes"
	"strumboli/lib/strum"
)

// chordOctave anchors chords selected by button press.
const chordOctave = 4

// Dispatcher mutates config toggles and the strum layout in response to
// bindings fired from stylus or frame buttons.
type Dispatcher struct {
	cfg         *config.Config
	engine      *strum.Engine
	progression *notes.Progression
}

func NewDispatcher(cfg *config.Config, engine *strum.Engine) *Dispatcher {
	return &Dispatcher{cfg: cfg, engine: engine}
}

// Execute runs one binding. source names the button for logging. Unknown
// actions are logged and dropped, never fatal.
func (d *Dispatcher) Execute(b config.Binding, source string) {
	switch b.Action {
	case "":
		// unbound button

	case "toggle-transpose":
		d.cfg.Transpose.Active = !d.cfg.Transpose.Active
		slog.Info("transpose toggled", "active", d.cfg.Transpose.Active, "source", source)

	case "toggle-repeater":
		d.cfg.NoteRepeater.Active = !d.cfg.NoteRepeater.Active
		slog.Info("note repeater toggled", "active", d.cfg.NoteRepeater.Active, "source", source)

	case "toggle-strum-release":
		d.cfg.StrumRelease.Active = !d.cfg.StrumRelease.Active
		slog.Info("strum release toggled", "active", d.cfg.StrumRelease.Active, "source", source)

	case "set-strum-chord":
		d.setChord(b.Arg, source)

	case "set-progression":
		p, err := notes.LookupProgression(b.Arg)
		if err != nil {
			slog.Warn("action failed", "err", err, "source", source)
			return
		}
		d.progression = p
		d.setChord(p.Current(), source)

	case "progression-next":
		d.stepProgression(1, source)

	case "progression-previous":
		d.stepProgression(-1, source)

	default:
		slog.Warn("unknown action", "action", b.Action, "source", source)
	}
}

// Progression returns the active chord progression, nil before any
// set-progression ran.
func (d *Dispatcher) Progression() *notes.Progression {
	return d.progression
}

func (d *Dispatcher) stepProgression(delta int, source string) {
	if d.progression == nil {
		slog.Warn("no progression selected", "source", source)
		return
	}
	d.progression.Increment(delta)
	d.setChord(d.progression.Current(), source)
}

func (d *Dispatcher) setChord(symbol, source string) {
	base, err := notes.ParseChord(symbol, chordOctave)
	if err != nil {
		slog.Warn("action failed", "err", err, "source", source)
		return
	}
	spread := notes.FillSpread(base, d.cfg.Strumming.LowerNoteSpread, d.cfg.Strumming.UpperNoteSpread)
	d.engine.SetNotes(spread)
	slog.Info("strum chord set", "chord", symbol, "strings", len(spread), "source", source)
}
