// Package effect maps normalized control inputs (pressure, tilt, position)
// onto output ranges through configurable exponential curves.
package effect

import "math"

// Config describes one control-to-output mapping. Spread selects how the
// curved input lands in [Min, Max]; Control names the input it reads.
type Config struct {
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Multiplier float64 `json:"multiplier"`
	Curve      float64 `json:"curve"`
	Spread     string  `json:"spread"`
	Control    string  `json:"control"`
	Default    float64 `json:"default"`
}

// Inputs is the set of normalized controls available this frame. A control
// missing from the map is treated as absent, not zero.
type Inputs map[string]float64

const (
	SpreadDirect  = "direct"
	SpreadInverse = "inverse"
	SpreadCentral = "central"
)

// Apply computes the effect output for the current inputs. When the
// configured control is not present the Default passes through untouched, so
// a device without that capability still drives the pipeline.
func (c Config) Apply(in Inputs) float64 {
	v, ok := in[c.Control]
	if !ok {
		return c.Default
	}
	v = clamp01(v * c.Multiplier)

	span := c.Max - c.Min
	switch c.Spread {
	case SpreadInverse:
		return c.Max - curve(v, c.Curve)*span
	case SpreadCentral:
		d := math.Abs(v-0.5) * 2
		return c.Max - curve(d, c.Curve)*span
	default:
		return c.Min + curve(v, c.Curve)*span
	}
}

// curve is a normalized exponential easing over [0,1]. k == 1 is the
// identity; larger k steepens the high end.
func curve(v, k float64) float64 {
	if k == 1 {
		return v
	}
	return (math.Exp(k*v) - 1) / (math.Exp(k) - 1)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
