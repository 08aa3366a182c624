package tablet

import (
	"encoding/json"
	"math"
	"testing"
)

const testTable = `{
	"status": {
		"type": "code",
		"byteIndex": 1,
		"values": {
			"160": {"state": "hover"},
			"161": {"state": "draw", "touching": true},
			"162": {"state": "draw", "touching": true, "button": 1},
			"240": {"state": "buttons"}
		}
	},
	"x": {
		"type": "multi-byte-range",
		"byteIndices": [2, 3],
		"min": 0,
		"max": 16383
	},
	"pressure": {
		"type": "multi-byte-range",
		"byteIndices": [6, 7],
		"min": 0,
		"max": 8191
	},
	"tiltX": {
		"type": "bipolar-range",
		"byteIndex": 8,
		"positiveMin": 0,
		"positiveMax": 60,
		"negativeMin": 256,
		"negativeMax": 196
	},
	"wheel": {
		"type": "range",
		"byteIndex": 9,
		"min": 0,
		"max": 255
	},
	"frameButtons": {
		"type": "bit-flags",
		"byteIndex": 2,
		"buttonCount": 4
	}
}`

func testDecoder(t *testing.T) *Decoder {
	t.Helper()
	var table MappingTable
	if err := json.Unmarshal([]byte(testTable), &table); err != nil {
		t.Fatal(err)
	}
	return &Decoder{Table: table}
}

func TestDecodeMultiByte(t *testing.T) {
	d := testDecoder(t)
	frame := d.Decode([]byte{2, 0xa0, 0x9b, 0x15, 0, 0, 0, 0, 0, 0})
	got, ok := frame.Values["x"]
	if !ok {
		t.Fatal("x missing")
	}
	want := float64(0x159b) / 16383
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("x = %f, want %f", got, want)
	}
	if frame.State != "hover" {
		t.Errorf("state = %q, want hover", frame.State)
	}
}

func TestDecodeBipolar(t *testing.T) {
	d := testDecoder(t)

	frame := d.Decode([]byte{2, 0xa0, 0, 0, 0, 0, 0, 0, 10, 0})
	if got := frame.Values["tiltX"]; math.Abs(got-10.0/60) > 1e-9 {
		t.Errorf("tiltX(10) = %f, want %f", got, 10.0/60)
	}

	frame = d.Decode([]byte{2, 0xa0, 0, 0, 0, 0, 0, 0, 250, 0})
	if got := frame.Values["tiltX"]; math.Abs(got-(-0.1)) > 1e-9 {
		t.Errorf("tiltX(250) = %f, want -0.1", got)
	}
}

func TestDecodeShortBufferOmits(t *testing.T) {
	d := testDecoder(t)
	frame := d.Decode([]byte{2, 0xa0, 0x10, 0x00, 0, 0})
	if _, ok := frame.Values["x"]; !ok {
		t.Error("x should decode from a buffer that covers it")
	}
	if _, ok := frame.Values["pressure"]; ok {
		t.Error("pressure must be omitted, not zeroed, on a short buffer")
	}
	if _, ok := frame.Values["tiltX"]; ok {
		t.Error("tiltX must be omitted on a short buffer")
	}
}

func TestDecodeCodeFlags(t *testing.T) {
	d := testDecoder(t)
	frame := d.Decode([]byte{2, 0xa2, 0, 0, 0, 0, 0, 0, 0, 0})
	if frame.State != "draw" {
		t.Errorf("state = %q, want draw", frame.State)
	}
	if !frame.Flags["touching"] {
		t.Error("touching flag not merged")
	}
	if frame.Button != 1 {
		t.Errorf("button = %d, want 1", frame.Button)
	}
}

func TestDecodeButtonsStateSkipsMotion(t *testing.T) {
	d := testDecoder(t)
	frame := d.Decode([]byte{2, 0xf0, 0x05, 0x15, 0, 0, 0x10, 0x01, 10, 128})
	if frame.State != "buttons" {
		t.Fatalf("state = %q, want buttons", frame.State)
	}
	for _, name := range []string{"x", "pressure", "tiltX"} {
		if _, ok := frame.Values[name]; ok {
			t.Errorf("%s decoded while in buttons state", name)
		}
	}
	// non-motion ranges still decode
	if got := frame.Values["wheel"]; math.Abs(got-128.0/255) > 1e-9 {
		t.Errorf("wheel = %f, want %f", got, 128.0/255)
	}
	// bit-flags 0x05 = buttons 1 and 3 down
	if !frame.Buttons[1] || frame.Buttons[2] || !frame.Buttons[3] || frame.Buttons[4] {
		t.Errorf("buttons = %v, want 1 and 3 down", frame.Buttons)
	}
}

func TestDecodeButtonReportID(t *testing.T) {
	d := testDecoder(t)
	// report id 6 means the dedicated button interface even without a
	// matching status code
	frame := d.Decode([]byte{ButtonReportID, 0x00, 0x02, 0, 0, 0, 0, 0, 0, 0})
	if frame.State != "buttons" {
		t.Fatalf("state = %q, want buttons", frame.State)
	}
	if !frame.Buttons[2] {
		t.Errorf("buttons = %v, want 2 down", frame.Buttons)
	}
}

func TestDecodeCodeButtonsExclusive(t *testing.T) {
	var table MappingTable
	if err := json.Unmarshal([]byte(`{
		"tabletButtons": {
			"type": "code",
			"byteIndex": 2,
			"buttonCount": 4,
			"values": {
				"1": {"button": 1},
				"5": {"button": 3}
			}
		}
	}`), &table); err != nil {
		t.Fatal(err)
	}
	d := &Decoder{Table: table}

	frame := d.Decode([]byte{ButtonReportID, 0, 5, 0})
	if frame.Button != 3 {
		t.Errorf("button = %d, want 3", frame.Button)
	}
	// the matched button is down, every other one is up
	for i := 1; i <= 4; i++ {
		down, ok := frame.Buttons[i]
		if !ok {
			t.Fatalf("button %d state missing: %v", i, frame.Buttons)
		}
		if down != (i == 3) {
			t.Errorf("button %d = %v", i, down)
		}
	}

	// off the button interface the code resolves but sets no button states
	frame = d.Decode([]byte{2, 0, 5, 0})
	if len(frame.Buttons) != 0 {
		t.Errorf("buttons set outside the button interface: %v", frame.Buttons)
	}

	// unmatched code reports nothing, which reads as all released
	frame = d.Decode([]byte{ButtonReportID, 0, 9, 0})
	if frame.Button != 0 || len(frame.Buttons) != 0 {
		t.Errorf("unmatched code produced %d / %v", frame.Button, frame.Buttons)
	}
}

func TestDecodeBitFlagsSkippedOutsideButtons(t *testing.T) {
	d := testDecoder(t)
	frame := d.Decode([]byte{2, 0xa0, 0xff, 0, 0, 0, 0, 0, 0, 0})
	if len(frame.Buttons) != 0 {
		t.Errorf("buttons decoded outside buttons state: %v", frame.Buttons)
	}
}

func TestDecodeUnmappedCode(t *testing.T) {
	d := testDecoder(t)
	frame := d.Decode([]byte{2, 0x42, 0x10, 0x00, 0, 0, 0, 0, 0, 0})
	if frame.State != "" {
		t.Errorf("state = %q, want empty for unmapped code", frame.State)
	}
	if _, ok := frame.Values["x"]; !ok {
		t.Error("other fields must still decode")
	}
}

func TestMappingTableMalformedEntry(t *testing.T) {
	var table MappingTable
	err := json.Unmarshal([]byte(`{
		"good": {"type": "range", "byteIndex": 1, "min": 0, "max": 255},
		"bad": {"type": "warp-core"}
	}`), &table)
	if err != nil {
		t.Fatalf("malformed entries must not be fatal: %v", err)
	}
	if table["good"].Kind != KindRange {
		t.Error("good entry lost")
	}
	// degraded entry decodes as constant 0 (min == max)
	d := &Decoder{Table: table}
	frame := d.Decode([]byte{2, 200})
	if got := frame.Values["bad"]; got != 0 {
		t.Errorf("degraded field = %f, want 0", got)
	}
	if got := frame.Values["good"]; math.Abs(got-200.0/255) > 1e-9 {
		t.Errorf("good = %f", got)
	}
}

func TestRangeMaxEqualsMin(t *testing.T) {
	d := &Decoder{Table: MappingTable{
		"flat": {Kind: KindRange, ByteIndex: 1, Min: 5, Max: 5},
	}}
	frame := d.Decode([]byte{2, 99})
	if got := frame.Values["flat"]; got != 0 {
		t.Errorf("flat = %f, want 0 when max == min", got)
	}
}
