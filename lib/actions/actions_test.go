package actions

import (
	"testing"

	"strumboli/lib/config"
	"strumboli/lib/strum"
)

func newTestDispatcher() (*Dispatcher, *config.Config, *strum.Engine) {
	cfg := config.Default()
	cfg.Strumming.LowerNoteSpread = 1
	cfg.Strumming.UpperNoteSpread = 1
	engine := strum.NewEngine(1.0)
	return NewDispatcher(cfg, engine), cfg, engine
}

func TestToggleTranspose(t *testing.T) {
	d, cfg, _ := newTestDispatcher()
	d.Execute(config.Binding{Action: "toggle-transpose"}, "test")
	if !cfg.Transpose.Active {
		t.Error("transpose not enabled")
	}
	d.Execute(config.Binding{Action: "toggle-transpose"}, "test")
	if cfg.Transpose.Active {
		t.Error("transpose not disabled")
	}
}

func TestToggleRepeater(t *testing.T) {
	d, cfg, _ := newTestDispatcher()
	d.Execute(config.Binding{Action: "toggle-repeater"}, "test")
	if !cfg.NoteRepeater.Active {
		t.Error("repeater not enabled")
	}
}

func TestSetStrumChord(t *testing.T) {
	d, _, engine := newTestDispatcher()
	d.Execute(config.Binding{Action: "set-strum-chord", Arg: "Am"}, "test")

	ns := engine.Notes()
	// triad plus one spread note each side
	if len(ns) != 5 {
		t.Fatalf("strings = %d, want 5", len(ns))
	}
	if ns[1].String() != "A4" || ns[2].String() != "C5" || ns[3].String() != "E5" {
		t.Errorf("chord = %v", ns)
	}
}

func TestSetStrumChordBadRoot(t *testing.T) {
	d, _, engine := newTestDispatcher()
	d.Execute(config.Binding{Action: "set-strum-chord", Arg: "X"}, "test")
	if got := engine.Notes(); len(got) != 0 {
		t.Errorf("bad chord must not change the layout: %v", got)
	}
}

func TestProgressionNavigation(t *testing.T) {
	d, _, engine := newTestDispatcher()

	// stepping with no progression selected is a no-op
	d.Execute(config.Binding{Action: "progression-next"}, "test")
	if got := engine.Notes(); len(got) != 0 {
		t.Errorf("step without progression changed layout: %v", got)
	}

	d.Execute(config.Binding{Action: "set-progression", Arg: "axis-of-awesome"}, "test")
	if d.Progression() == nil || d.Progression().Current() != "C" {
		t.Fatalf("progression = %+v", d.Progression())
	}
	if ns := engine.Notes(); len(ns) == 0 || ns[1].String() != "C4" {
		t.Errorf("initial chord = %v", ns)
	}

	d.Execute(config.Binding{Action: "progression-next"}, "test")
	if d.Progression().Current() != "G" {
		t.Errorf("next = %s, want G", d.Progression().Current())
	}

	d.Execute(config.Binding{Action: "progression-previous"}, "test")
	d.Execute(config.Binding{Action: "progression-previous"}, "test")
	if d.Progression().Current() != "F" {
		t.Errorf("wrapped previous = %s, want F", d.Progression().Current())
	}
}

func TestSetProgressionUnknown(t *testing.T) {
	d, _, _ := newTestDispatcher()
	d.Execute(config.Binding{Action: "set-progression", Arg: "nope"}, "test")
	if d.Progression() != nil {
		t.Error("unknown progression must not mutate state")
	}
}

func TestUnknownAction(t *testing.T) {
	d, cfg, engine := newTestDispatcher()
	d.Execute(config.Binding{Action: "self-destruct"}, "test")
	if cfg.Transpose.Active || len(engine.Notes()) != 0 {
		t.Error("unknown action had side effects")
	}
}
