package tablet

import "log/slog"

// ButtonReportID is the report id used by tablets that expose their frame
// buttons on a separate HID interface.
const ButtonReportID = 6

// motionFields are suppressed while the tablet reports button activity, so a
// frame-button press never doubles as stylus movement.
var motionFields = map[string]bool{
	"x":        true,
	"y":        true,
	"pressure": true,
	"tiltX":    true,
	"tiltY":    true,
}

// Frame is one decoded report.
type Frame struct {
	// State is the pen state reported by the device ("hover", "draw",
	// "buttons", ...). Empty when no code field matched.
	State string

	// Button is the frame or stylus button number resolved from a code
	// field, 0 when none.
	Button int

	// Values holds normalized numeric fields. A field whose bytes were not
	// present in the report is absent from the map, never zeroed.
	Values map[string]float64

	// Buttons holds per-bit button states from bit-flags fields.
	Buttons map[int]bool

	// Flags carries any extra booleans attached to the matched code entry.
	Flags map[string]bool
}

// Decoder turns raw report buffers into Frames using a parsed mapping table.
// Buffers must carry the report id at index 0.
type Decoder struct {
	Table MappingTable
}

// Decode runs the table against one report. Code fields resolve first so the
// pen state can gate the remaining fields: while the state is "buttons" (or
// the report came from the button interface) motion fields are skipped, and
// bit-flags fields are only read in that same situation.
func (d *Decoder) Decode(data []byte) Frame {
	frame := Frame{
		Values:  map[string]float64{},
		Buttons: map[int]bool{},
		Flags:   map[string]bool{},
	}
	if len(data) > 0 && data[0] == ButtonReportID {
		frame.State = "buttons"
	}

	for name, m := range d.Table {
		if m.Kind != KindCode {
			continue
		}
		if m.ByteIndex >= len(data) {
			continue
		}
		entry, ok := m.Values[data[m.ByteIndex]]
		if !ok {
			slog.Debug("unmapped code", "field", name, "code", data[m.ByteIndex])
			continue
		}
		if entry.State != "" {
			frame.State = entry.State
		}
		if entry.Button != 0 {
			frame.Button = entry.Button
			// tablets whose frame buttons arrive as status codes only
			// report them on the button interface; the matched button
			// is down and every other one is up
			if data[0] == ButtonReportID {
				count := m.ButtonCount
				if count == 0 {
					count = 8
				}
				for i := 1; i <= count; i++ {
					frame.Buttons[i] = i == entry.Button
				}
			}
		}
		for k, v := range entry.Flags {
			frame.Flags[k] = v
		}
	}

	buttons := frame.State == "buttons"
	for name, m := range d.Table {
		switch m.Kind {
		case KindCode:
			// handled above

		case KindRange:
			if buttons && motionFields[name] {
				continue
			}
			if m.ByteIndex >= len(data) {
				continue
			}
			frame.Values[name] = normalize(float64(data[m.ByteIndex]), m.Min, m.Max)

		case KindMultiByteRange:
			if buttons && motionFields[name] {
				continue
			}
			v, ok := multiByte(data, m.ByteIndices)
			if !ok {
				continue
			}
			frame.Values[name] = normalize(v, m.Min, m.Max)

		case KindBipolarRange:
			if buttons && motionFields[name] {
				continue
			}
			if m.ByteIndex >= len(data) {
				continue
			}
			frame.Values[name] = bipolar(float64(data[m.ByteIndex]), m)

		case KindBitFlags:
			if !buttons {
				continue
			}
			if m.ByteIndex >= len(data) {
				continue
			}
			b := data[m.ByteIndex]
			for i := 0; i < m.ButtonCount && i < 8; i++ {
				frame.Buttons[i+1] = b&(1<<i) != 0
			}
		}
	}

	return frame
}

func normalize(v, min, max float64) float64 {
	if max == min {
		return 0
	}
	return (v - min) / (max - min)
}

// multiByte assembles a little-endian integer from the listed byte positions.
func multiByte(data []byte, indices []int) (float64, bool) {
	if len(indices) == 0 {
		return 0, false
	}
	v := 0.0
	for i, idx := range indices {
		if idx >= len(data) {
			return 0, false
		}
		v += float64(uint64(data[idx]) << (8 * i))
	}
	return v, true
}

// bipolar maps a single byte that encodes sign by wrapping: values at or
// above NegativeMax land in the negative domain, anything below scales
// positively.
func bipolar(v float64, m FieldMapping) float64 {
	if v >= m.NegativeMax {
		return -((m.NegativeMin - v) / (m.NegativeMin - m.NegativeMax))
	}
	return v / (m.PositiveMax - m.PositiveMin)
}
