// Package config loads settings.json over built-in defaults and resolves
// tablet driver profiles and chord progression presets.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"strumboli/lib/effect"
	"strumboli/lib/tablet"
)

// Config is the full runtime configuration. Zero-valued fields are filled
// from defaults before any user settings apply.
type Config struct {
	Startup       Startup       `json:"startupConfiguration"`
	NoteDuration  effect.Config `json:"noteDuration"`
	PitchBend     effect.Config `json:"pitchBend"`
	NoteVelocity  effect.Config `json:"noteVelocity"`
	Strumming     Strumming     `json:"strumming"`
	NoteRepeater  Repeater      `json:"noteRepeater"`
	Transpose     Transpose     `json:"transpose"`
	StylusButtons StylusButtons `json:"stylusButtons"`
	StrumRelease  StrumRelease  `json:"strumRelease"`
	TabletButtons TabletButtons `json:"tabletButtons"`
}

type Startup struct {
	MidiOutput    string    `json:"midiOutputId"`
	MidiInput     string    `json:"midiInputId"`
	DrawingTablet TabletRef `json:"drawingTablet"`
}

// Tablet identifies a HID device and how to decode its reports.
type Tablet struct {
	Name      string              `json:"name"`
	Product   string              `json:"product"`
	VendorID  uint16              `json:"vendorId"`
	ProductID uint16              `json:"productId"`
	ReportID  byte                `json:"reportId"`
	Mappings  tablet.MappingTable `json:"byteCodeMappings"`
}

// TabletRef is either an inline Tablet object or a string naming a driver
// profile under drivers/.
type TabletRef struct {
	Driver string
	Tablet Tablet
}

func (r *TabletRef) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		r.Driver = name
		return nil
	}
	return json.Unmarshal(data, &r.Tablet)
}

type Strumming struct {
	PressureThreshold float64  `json:"pressureThreshold"`
	MidiChannel       int      `json:"midiChannel"`
	InitialNotes      []string `json:"initialNotes"`
	UpperNoteSpread   int      `json:"upperNoteSpread"`
	LowerNoteSpread   int      `json:"lowerNoteSpread"`
}

type Repeater struct {
	Active              bool    `json:"active"`
	PressureMultiplier  float64 `json:"pressureMultiplier"`
	FrequencyMultiplier float64 `json:"frequencyMultiplier"`
}

type Transpose struct {
	Active    bool `json:"active"`
	Semitones int  `json:"semitones"`
}

type StylusButtons struct {
	Active          bool    `json:"active"`
	PrimaryButton   Binding `json:"primaryButtonAction"`
	SecondaryButton Binding `json:"secondaryButtonAction"`
}

type StrumRelease struct {
	Active             bool    `json:"active"`
	MidiNote           int     `json:"midiNote"`
	MidiChannel        int     `json:"midiChannel"`
	MaxDuration        float64 `json:"maxDuration"`
	VelocityMultiplier float64 `json:"velocityMultiplier"`
}

// defaultSettings mirrors the stock Deco 640 setup: strum a C major triad
// spread three strings each way, stylus buttons toggling transpose and the
// repeater.
const defaultSettings = `{
	"startupConfiguration": {
		"drawingTablet": {
			"product": "Deco 640",
			"reportId": 2,
			"byteCodeMappings": {
				"status": {
					"byteIndex": 1,
					"type": "code",
					"values": {
						"192": {"state": "none"},
						"160": {"state": "hover"},
						"162": {"state": "hover", "secondaryButtonPressed": true},
						"164": {"state": "hover", "primaryButtonPressed": true},
						"161": {"state": "contact"},
						"163": {"state": "contact", "secondaryButtonPressed": true},
						"165": {"state": "contact", "primaryButtonPressed": true},
						"240": {"state": "buttons"}
					}
				},
				"x": {"byteIndex": 3, "max": 124, "type": "range"},
				"y": {"byteIndex": 5, "max": 70, "type": "range"},
				"pressure": {"byteIndex": 7, "max": 63, "type": "range"},
				"tiltX": {
					"byteIndex": 8,
					"positiveMax": 60,
					"negativeMin": 256,
					"negativeMax": 196,
					"type": "bipolar-range"
				},
				"tiltY": {
					"byteIndex": 9,
					"positiveMax": 60,
					"negativeMin": 256,
					"negativeMax": 196,
					"type": "bipolar-range"
				}
			}
		}
	},
	"noteDuration": {
		"min": 0.15,
		"max": 1.5,
		"multiplier": 1.0,
		"curve": 1.0,
		"spread": "inverse",
		"control": "tiltXY",
		"default": 1.0
	},
	"pitchBend": {
		"min": -1.0,
		"max": 1.0,
		"multiplier": 1.0,
		"curve": 4.0,
		"spread": "central",
		"control": "yaxis",
		"default": 0.0
	},
	"noteVelocity": {
		"min": 0,
		"max": 127,
		"multiplier": 1.0,
		"curve": 4.0,
		"spread": "direct",
		"control": "pressure",
		"default": 64
	},
	"strumming": {
		"pressureThreshold": 0.1,
		"midiChannel": 0,
		"initialNotes": ["C4", "E4", "G4"],
		"upperNoteSpread": 3,
		"lowerNoteSpread": 3
	},
	"noteRepeater": {
		"active": false,
		"pressureMultiplier": 1.0,
		"frequencyMultiplier": 1.0
	},
	"transpose": {
		"active": false,
		"semitones": 12
	},
	"stylusButtons": {
		"active": true,
		"primaryButtonAction": "toggle-transpose",
		"secondaryButtonAction": "toggle-repeater"
	},
	"strumRelease": {
		"active": false,
		"midiNote": 38,
		"midiChannel": 0,
		"maxDuration": 0.25,
		"velocityMultiplier": 1.0
	}
}`

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	if err := json.Unmarshal([]byte(defaultSettings), cfg); err != nil {
		panic(fmt.Sprintf("config: bad built-in defaults: %v", err))
	}
	return cfg
}

// Load reads a settings file on top of the defaults. A missing file is not an
// error; the defaults apply as-is. driversDir resolves string tablet
// references to driver profiles.
func Load(path string, driversDir string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			slog.Warn("settings file not found, using defaults", "path", path)
		} else if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		} else {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
			slog.Info("loaded settings", "path", path)
		}
	}

	if cfg.Startup.DrawingTablet.Driver != "" {
		t, err := LoadDriver(driversDir, cfg.Startup.DrawingTablet.Driver)
		if err != nil {
			return nil, err
		}
		cfg.Startup.DrawingTablet.Tablet = *t
	}
	if cfg.Startup.DrawingTablet.Tablet.ReportID == 0 {
		cfg.Startup.DrawingTablet.Tablet.ReportID = 2
	}

	return cfg, nil
}

// LoadDriver reads one driver profile by name.
func LoadDriver(dir, name string) (*Tablet, error) {
	path := filepath.Join(dir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: driver %q: %w", name, err)
	}
	var t Tablet
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("config: driver %q: %w", name, err)
	}
	slog.Info("loaded tablet driver", "driver", name, "device", t.Name)
	return &t, nil
}

// AvailableDrivers lists every driver profile in dir.
func AvailableDrivers(dir string) ([]*Tablet, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	var out []*Tablet
	for _, path := range paths {
		name := filepath.Base(path)
		name = name[:len(name)-len(".json")]
		t, err := LoadDriver(dir, name)
		if err != nil {
			slog.Warn("skipping unreadable driver", "driver", name, "err", err)
			continue
		}
		out = append(out, t)
	}
	return out, nil
}
