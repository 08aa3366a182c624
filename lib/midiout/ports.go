package midiout

import (
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// FindInPort returns the first MIDI input whose name contains substr,
// case-insensitively.
func FindInPort(substr string) (drivers.In, error) {
	lower := strings.ToLower(substr)
	for _, port := range midi.GetInPorts() {
		if strings.Contains(strings.ToLower(port.String()), lower) {
			return port, nil
		}
	}

	return nil, fmt.Errorf("no MIDI input port matching %q", substr)
}

// FindOutPort returns the first MIDI output whose name contains substr,
// case-insensitively.
func FindOutPort(substr string) (drivers.Out, error) {
	lower := strings.ToLower(substr)
	for _, port := range midi.GetOutPorts() {
		if strings.Contains(strings.ToLower(port.String()), lower) {
			return port, nil
		}
	}

	return nil, fmt.Errorf("no MIDI output port matching %q", substr)
}

// FirstOutPort returns the first available MIDI output.
func FirstOutPort() (drivers.Out, error) {
	ports := midi.GetOutPorts()
	if len(ports) == 0 {
		return nil, fmt.Errorf("no MIDI output ports available")
	}
	return ports[0], nil
}
