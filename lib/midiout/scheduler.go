// Package midiout schedules MIDI note lifecycles: note-on now, cancellable
// note-off later, over any raw byte transport.
package midiout

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"strumboli/lib/notes"
)

// Port is the raw MIDI byte transport. drivers.Out satisfies it.
type Port interface {
	Send([]byte) error
}

// PortFunc adapts a send function, such as the one midi.SendTo returns, into
// a Port.
type PortFunc func([]byte) error

func (f PortFunc) Send(msg []byte) error { return f(msg) }

// ChannelSet is a bitmask of MIDI channels 0..15.
type ChannelSet uint16

// AllChannels broadcasts to every channel.
const AllChannels ChannelSet = 0xffff

// Channel builds a single-channel set from a 1-based channel number.
func Channel(n int) ChannelSet {
	if n < 1 || n > 16 {
		return AllChannels
	}
	return 1 << (n - 1)
}

func (s ChannelSet) each(fn func(ch uint8)) {
	for ch := uint8(0); ch < 16; ch++ {
		if s&(1<<ch) != 0 {
			fn(ch)
		}
	}
}

type noteKey struct {
	pitch    uint8
	channels ChannelSet
}

type noteTimer struct {
	timer     *time.Timer
	startedAt time.Time
}

// Scheduler sends note-on messages and guarantees a matching note-off: either
// the auto-release timer fires or an explicit release cancels it. At most one
// live timer exists per (pitch, channel set); retriggering a sounding note
// replaces its release rather than letting the stale one cut it off.
type Scheduler struct {
	mu      sync.Mutex
	port    Port
	channel int // configured strum channel, 0 means broadcast
	timers  map[noteKey]*noteTimer
	closed  bool
}

func NewScheduler(port Port, channel int) *Scheduler {
	return &Scheduler{
		port:    port,
		channel: channel,
		timers:  map[noteKey]*noteTimer{},
	}
}

// SetPort swaps the transport, e.g. after a reconnect. A nil port silences
// all output without erroring.
func (s *Scheduler) SetPort(port Port) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.port = port
}

// SendNote resolves the note to its pitch number and plays it on the
// configured channel set for duration.
func (s *Scheduler) SendNote(n notes.Note, velocity uint8, duration time.Duration) {
	s.SendRawNote(uint8(n.Pitch()), velocity, 0, duration)
}

// SendRawNote plays a pitch directly. Channel precedence: explicit (1-based)
// beats the configured strum channel, which beats broadcast to all 16.
func (s *Scheduler) SendRawNote(pitch, velocity uint8, explicitChannel int, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	set := s.channelSet(explicitChannel)
	key := noteKey{pitch: pitch, channels: set}

	if prev, ok := s.timers[key]; ok {
		prev.timer.Stop()
		delete(s.timers, key)
	}

	set.each(func(ch uint8) {
		s.send([]byte{0x90 + ch, pitch, velocity})
	})

	nt := &noteTimer{startedAt: time.Now()}
	nt.timer = time.AfterFunc(duration, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		// a retrigger may have replaced this timer after it was
		// already scheduled to run
		if s.timers[key] != nt {
			return
		}
		delete(s.timers, key)
		set.each(func(ch uint8) {
			s.send([]byte{0x80 + ch, pitch, 0x40})
		})
	})
	s.timers[key] = nt
}

// ReleaseNotes cuts the given notes off immediately, cancelling any pending
// auto-releases. The note-off goes out whether or not a timer was live, so a
// note the scheduler never started still goes quiet.
func (s *Scheduler) ReleaseNotes(ns []notes.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	def := s.channelSet(0)
	for _, n := range ns {
		pitch := uint8(n.Pitch())
		for key, nt := range s.timers {
			if key.pitch != pitch {
				continue
			}
			nt.timer.Stop()
			delete(s.timers, key)
			if key.channels != def {
				key.channels.each(func(ch uint8) {
					s.send([]byte{0x80 + ch, pitch, 0x40})
				})
			}
		}
		def.each(func(ch uint8) {
			s.send([]byte{0x80 + ch, pitch, 0x40})
		})
	}
}

// SendPitchBend sends a bend in [-1, 1], 0 being center.
func (s *Scheduler) SendPitchBend(bend float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	bend = math.Max(-1, math.Min(1, bend))
	v := int((bend + 1) * 8192)
	if v > 16383 {
		v = 16383
	}
	lsb := uint8(v & 0x7f)
	msb := uint8(v >> 7)
	s.channelSet(0).each(func(ch uint8) {
		s.send([]byte{0xe0 + ch, lsb, msb})
	})
}

// Close cancels every outstanding timer. No note-offs are sent; the
// scheduler goes quiet at once.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for key, nt := range s.timers {
		nt.timer.Stop()
		delete(s.timers, key)
	}
}

func (s *Scheduler) channelSet(explicit int) ChannelSet {
	if explicit >= 1 && explicit <= 16 {
		return Channel(explicit)
	}
	if s.channel >= 1 && s.channel <= 16 {
		return Channel(s.channel)
	}
	return AllChannels
}

// send writes one message, dropping it silently when no transport is
// attached. Callers hold s.mu.
func (s *Scheduler) send(msg []byte) {
	if s.port == nil {
		return
	}
	if err := s.port.Send(msg); err != nil {
		slog.Warn("midi send failed", "err", err)
	}
}
