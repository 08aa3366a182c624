// Package tablet decodes raw HID report bytes from drawing tablets into
// named, normalized fields driven by a declarative per-device mapping table.
package tablet

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
)

// Kind discriminates how a field's bytes are interpreted.
type Kind int

const (
	KindRange Kind = iota
	KindMultiByteRange
	KindBipolarRange
	KindBitFlags
	KindCode
)

var kindNames = map[string]Kind{
	"range":            KindRange,
	"multi-byte-range": KindMultiByteRange,
	"bipolar-range":    KindBipolarRange,
	"bit-flags":        KindBitFlags,
	"code":             KindCode,
}

func (k Kind) String() string {
	for name, kind := range kindNames {
		if kind == k {
			return name
		}
	}
	return "unknown"
}

// CodeEntry is one lookup result for a code field. State and Button are
// well-known keys; any other boolean in the profile JSON lands in Flags and
// is merged into the decoded frame as-is.
type CodeEntry struct {
	State  string
	Button int
	Flags  map[string]bool
}

func (e *CodeEntry) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, v := range raw {
		switch key {
		case "state":
			if s, ok := v.(string); ok {
				e.State = s
			}
		case "button":
			if f, ok := v.(float64); ok {
				e.Button = int(f)
			}
		default:
			if b, ok := v.(bool); ok {
				if e.Flags == nil {
					e.Flags = map[string]bool{}
				}
				e.Flags[key] = b
			}
		}
	}
	return nil
}

// FieldMapping is one parsed decode rule. It is validated once at
// configuration load; decoding never re-interprets the raw profile JSON.
type FieldMapping struct {
	Kind        Kind
	ByteIndex   int
	ByteIndices []int
	Min         float64
	Max         float64
	PositiveMin float64
	PositiveMax float64
	NegativeMin float64
	NegativeMax float64
	ButtonCount int
	Values      map[byte]CodeEntry
}

type rawMapping struct {
	Type        string                     `json:"type"`
	ByteIndex   int                        `json:"byteIndex"`
	ByteIndices []int                      `json:"byteIndices"`
	Min         float64                    `json:"min"`
	Max         float64                    `json:"max"`
	PositiveMin float64                    `json:"positiveMin"`
	PositiveMax float64                    `json:"positiveMax"`
	NegativeMin float64                    `json:"negativeMin"`
	NegativeMax float64                    `json:"negativeMax"`
	ButtonCount int                        `json:"buttonCount"`
	Values      map[string]json.RawMessage `json:"values"`
}

// MappingTable maps field names to their parsed decode rules.
type MappingTable map[string]FieldMapping

// UnmarshalJSON parses and validates a byteCodeMappings object. Malformed
// entries degrade to zeroed defaults (constant-0 fields) with a warning;
// they are never fatal.
func (t *MappingTable) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("tablet: mapping table: %w", err)
	}
	out := make(MappingTable, len(raw))
	for name, entry := range raw {
		m, err := parseMapping(entry)
		if err != nil {
			slog.Warn("malformed field mapping, using defaults", "field", name, "err", err)
			m = FieldMapping{}
		}
		out[name] = m
	}
	*t = out
	return nil
}

func parseMapping(data []byte) (FieldMapping, error) {
	var raw rawMapping
	if err := json.Unmarshal(data, &raw); err != nil {
		return FieldMapping{}, err
	}
	kind, ok := kindNames[raw.Type]
	if !ok {
		return FieldMapping{}, fmt.Errorf("unknown mapping type %q", raw.Type)
	}

	m := FieldMapping{
		Kind:        kind,
		ByteIndex:   raw.ByteIndex,
		ByteIndices: raw.ByteIndices,
		Min:         raw.Min,
		Max:         raw.Max,
		PositiveMin: raw.PositiveMin,
		PositiveMax: raw.PositiveMax,
		NegativeMin: raw.NegativeMin,
		NegativeMax: raw.NegativeMax,
		ButtonCount: raw.ButtonCount,
	}
	if m.Kind == KindBitFlags && m.ButtonCount == 0 {
		m.ButtonCount = 8
	}
	if m.Kind == KindCode {
		m.Values = make(map[byte]CodeEntry, len(raw.Values))
		for key, v := range raw.Values {
			code, err := strconv.Atoi(key)
			if err != nil || code < 0 || code > 255 {
				return FieldMapping{}, fmt.Errorf("bad code key %q", key)
			}
			var entry CodeEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return FieldMapping{}, fmt.Errorf("code entry %q: %w", key, err)
			}
			m.Values[byte(code)] = entry
		}
	}
	return m, nil
}
