// Package session wires a decoded tablet stream into MIDI output: effects,
// strumming, button actions, the note repeater and strum release.
package session

import (
	"math"
	"sync"
	"time"

	"strumboli/lib/actions"
	"strumboli/lib/config"
	"strumboli/lib/effect"
	"strumboli/lib/midiout"
	"strumboli/lib/notes"
	"strumboli/lib/strum"
	"strumboli/lib/tablet"
)

// Session processes one device's samples synchronously, in arrival order.
// Each interface of a tablet can feed the same session; button state is
// last-write-wins across them.
type Session struct {
	cfg        *config.Config
	engine     *strum.Engine
	sched      *midiout.Scheduler
	dispatcher *actions.Dispatcher

	// mu guards decoder and reportID, which hotplug swaps from another
	// goroutine than the one feeding reports
	mu       sync.Mutex
	decoder  *tablet.Decoder
	reportID byte

	primaryDown   bool
	secondaryDown bool
	frameButtons  [9]bool

	holding     bool
	repeatNotes []strum.PluckedNote
	lastRepeat  time.Time

	// Clock is swappable for tests.
	Clock func() time.Time
}

func New(cfg *config.Config, engine *strum.Engine, sched *midiout.Scheduler, dispatcher *actions.Dispatcher) *Session {
	return &Session{
		cfg:        cfg,
		decoder:    &tablet.Decoder{Table: cfg.Startup.DrawingTablet.Tablet.Mappings},
		engine:     engine,
		sched:      sched,
		dispatcher: dispatcher,
		reportID:   cfg.Startup.DrawingTablet.Tablet.ReportID,
		Clock:      time.Now,
	}
}

// SetTablet swaps the decode table and primary report id, e.g. after a
// hotplug brought up a different device.
func (s *Session) SetTablet(t config.Tablet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decoder = &tablet.Decoder{Table: t.Mappings}
	s.reportID = t.ReportID
}

// HandleReport decodes and processes one raw report. Reports from ids other
// than the configured primary or the button interface are dropped whole.
func (s *Session) HandleReport(data []byte) {
	if len(data) == 0 {
		return
	}
	s.mu.Lock()
	decoder, reportID := s.decoder, s.reportID
	s.mu.Unlock()
	if data[0] != reportID && data[0] != tablet.ButtonReportID {
		return
	}
	s.HandleFrame(decoder.Decode(data))
}

// HandleFrame runs one decoded frame through buttons, effects, the strum
// engine and the repeater.
func (s *Session) HandleFrame(frame tablet.Frame) {
	s.handleStylusButtons(frame)
	s.handleFrameButtons(frame)

	in := controlInputs(frame)
	duration := secondsToDuration(s.cfg.NoteDuration.Apply(in))
	velocity := s.cfg.NoteVelocity.Apply(in)

	if _, ok := in["yaxis"]; ok {
		s.sched.SendPitchBend(s.cfg.PitchBend.Apply(in))
	}

	x, haveX := frame.Values["x"]
	pressure, havePressure := frame.Values["pressure"]
	if haveX && havePressure {
		for _, ev := range s.engine.Strum(x, pressure) {
			s.handleStrumEvent(ev, duration)
		}
	}

	s.runRepeater(duration, velocity)
}

func (s *Session) handleStylusButtons(frame tablet.Frame) {
	if !s.cfg.StylusButtons.Active {
		return
	}
	primary := frame.Flags["primaryButtonPressed"]
	secondary := frame.Flags["secondaryButtonPressed"]

	if primary && !s.primaryDown {
		s.dispatcher.Execute(s.cfg.StylusButtons.PrimaryButton, "stylus-primary")
	}
	if secondary && !s.secondaryDown {
		s.dispatcher.Execute(s.cfg.StylusButtons.SecondaryButton, "stylus-secondary")
	}
	s.primaryDown = primary
	s.secondaryDown = secondary
}

func (s *Session) handleFrameButtons(frame tablet.Frame) {
	// a buttons-state frame with nothing set means every button is up;
	// frames carrying no button information at all leave the state alone
	if frame.Button == 0 && len(frame.Buttons) == 0 && frame.State != "buttons" {
		return
	}
	for i := 1; i <= 8; i++ {
		down := frame.Buttons[i]
		if frame.Button != 0 {
			// code-resolved buttons are exclusive: the reported one is
			// down, the rest are up
			down = i == frame.Button
		}
		if down && !s.frameButtons[i] {
			if binding, ok := s.cfg.TabletButtons[i]; ok {
				s.dispatcher.Execute(binding, "tablet-button")
			}
		}
		s.frameButtons[i] = down
	}
}

func (s *Session) handleStrumEvent(ev strum.Event, duration time.Duration) {
	switch ev := ev.(type) {
	case strum.StrumEvent:
		s.repeatNotes = ev.Notes
		s.holding = true
		s.lastRepeat = s.Clock()
		for _, n := range ev.Notes {
			if n.Velocity == 0 {
				continue
			}
			s.sched.SendNote(s.transposed(n.Note), n.Velocity, duration)
		}

	case strum.ReleaseEvent:
		s.holding = false
		s.repeatNotes = nil

		rel := s.cfg.StrumRelease
		if !rel.Active || duration > secondsToDuration(rel.MaxDuration) {
			return
		}
		vel := clampVelocity(float64(ev.Velocity) * rel.VelocityMultiplier)
		s.sched.SendRawNote(uint8(rel.MidiNote), vel, rel.MidiChannel, duration)
	}
}

// runRepeater refires the held notes at an interval scaled from the note
// duration while pressure is sustained.
func (s *Session) runRepeater(duration time.Duration, velocity float64) {
	rep := s.cfg.NoteRepeater
	if !rep.Active || !s.holding || len(s.repeatNotes) == 0 {
		return
	}

	interval := duration
	if rep.FrequencyMultiplier > 0 {
		interval = time.Duration(float64(duration) / rep.FrequencyMultiplier)
	}
	now := s.Clock()
	if now.Sub(s.lastRepeat) < interval {
		return
	}

	vel := clampVelocity(velocity * rep.PressureMultiplier)
	for _, n := range s.repeatNotes {
		s.sched.SendNote(s.transposed(n.Note), vel, duration)
	}
	s.lastRepeat = now
}

func (s *Session) transposed(n notes.Note) notes.Note {
	if !s.cfg.Transpose.Active {
		return n
	}
	return n.Transpose(s.cfg.Transpose.Semitones)
}

// controlInputs assembles the effect inputs present in this frame. Tilt
// values arrive in [-1, 1] and are recentered to [0, 1]; tiltXY is the tilt
// magnitude signed by the quadrant, so opposing tilts read as negative.
func controlInputs(frame tablet.Frame) effect.Inputs {
	in := effect.Inputs{}
	if y, ok := frame.Values["y"]; ok {
		in["yaxis"] = y
	}
	if p, ok := frame.Values["pressure"]; ok {
		in["pressure"] = p
	}
	tx, haveTX := frame.Values["tiltX"]
	ty, haveTY := frame.Values["tiltY"]
	if haveTX {
		in["tiltX"] = (tx + 1) / 2
	}
	if haveTY {
		in["tiltY"] = (ty + 1) / 2
	}
	if haveTX && haveTY {
		sign := 1.0
		if tx*ty < 0 {
			sign = -1
		}
		xy := math.Min(1, math.Sqrt(tx*tx+ty*ty)) * sign
		in["tiltXY"] = (xy + 1) / 2
	}
	return in
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func clampVelocity(v float64) uint8 {
	n := int(v)
	if n < 1 {
		n = 1
	}
	if n > 127 {
		n = 127
	}
	return uint8(n)
}
