package midiin

import (
	"testing"

	"gitlab.com/gomidi/midi/v2"
)

func heldStrings(t *Tracker) []string {
	ns := t.Held()
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.String()
	}
	return out
}

func TestTrackerHeldSet(t *testing.T) {
	tr := NewTracker()

	tr.Handle(midi.NoteOn(0, 48, 100), 0)
	tr.Handle(midi.NoteOn(0, 55, 100), 0)
	tr.Handle(midi.NoteOn(0, 52, 100), 0)

	got := heldStrings(tr)
	want := []string{"C4", "E4", "G4"}
	if len(got) != len(want) {
		t.Fatalf("held = %v, want %v", got, want)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("held[%d] = %s, want %s", i, got[i], w)
		}
	}

	tr.Handle(midi.NoteOff(0, 52), 0)
	got = heldStrings(tr)
	if len(got) != 2 || got[0] != "C4" || got[1] != "G4" {
		t.Errorf("after note-off held = %v, want [C4 G4]", got)
	}
}

func TestTrackerZeroVelocityNoteOn(t *testing.T) {
	tr := NewTracker()
	tr.Handle(midi.NoteOn(0, 48, 100), 0)
	tr.Handle(midi.NoteOn(0, 48, 0), 0)
	if got := tr.Held(); len(got) != 0 {
		t.Errorf("held = %v, want empty after zero-velocity note-on", got)
	}
}

func TestTrackerUpdates(t *testing.T) {
	tr := NewTracker()
	tr.Handle(midi.NoteOn(0, 57, 100), 0)

	select {
	case ns := <-tr.Updates():
		if len(ns) != 1 || ns[0].String() != "A4" {
			t.Errorf("update = %v, want [A4]", ns)
		}
	default:
		t.Fatal("no update delivered")
	}
}

func TestTrackerDuplicateNoteOn(t *testing.T) {
	tr := NewTracker()
	tr.Handle(midi.NoteOn(0, 48, 100), 0)
	<-tr.Updates()
	tr.Handle(midi.NoteOn(0, 48, 110), 0)

	select {
	case <-tr.Updates():
		t.Error("duplicate note-on must not emit an update")
	default:
	}
}
