// Package system provides the body graph of a star system: the sun, its
// planets and their moons, stored as an index-addressed arena.
// Body 0 is always the sun.
package system

import (
	"fmt"

	"github.com/talgya/orrery/internal/geom"
)

// Sun is the arena index of the root body.
const Sun = 0

// Direction is the rotation sense of an orbit.
type Direction uint8

const (
	Clockwise        Direction = iota
	CounterClockwise           // Negative angular step
)

// Sign returns +1 for clockwise and -1 for counter-clockwise.
func (d Direction) Sign() float64 {
	if d == CounterClockwise {
		return -1
	}
	return 1
}

// Orbit governs a body's revolution around its parent.
type Orbit struct {
	Parent    int       `json:"parent"`
	Distance  float64   `json:"distance"`
	Angle     float64   `json:"angle"` // Always within [0, 2π)
	Speed     float64   `json:"speed"` // Per-orbit angular multiplier
	Direction Direction `json:"direction"`
}

// FeatureKind is the tag of a body's economic feature.
type FeatureKind uint8

const (
	FeatureNone    FeatureKind = iota
	FeatureStation             // Accumulates stock, spawns traders
	FeatureOre                 // Harvested by miners
)

// String returns a lowercase name for logs and JSON.
func (k FeatureKind) String() string {
	switch k {
	case FeatureNone:
		return "none"
	case FeatureStation:
		return "station"
	case FeatureOre:
		return "ore"
	default:
		return fmt.Sprintf("feature(%d)", uint8(k))
	}
}

// Feature is a tagged variant. Stock is only meaningful for FeatureStation.
type Feature struct {
	Kind  FeatureKind `json:"kind"`
	Stock int         `json:"stock,omitempty"`
}

// Body is a celestial object.
type Body struct {
	Pos     geom.Point `json:"pos"`
	Radius  float64    `json:"radius"`
	Orbit   *Orbit     `json:"orbit,omitempty"` // nil only for the sun
	Feature Feature    `json:"feature"`
	Moons   []int      `json:"moons,omitempty"`
	Class   Class      `json:"class"`
}

// Is reports whether the body's feature has the given kind, ignoring payload.
func (b *Body) Is(kind FeatureKind) bool {
	return b.Feature.Kind == kind
}

// Stock returns the station's stock. Panics if the body is not a station.
func (b *Body) Stock() int {
	b.mustBeStation()
	return b.Feature.Stock
}

// Deposit adds n units to the station's stock.
func (b *Body) Deposit(n int) {
	b.mustBeStation()
	b.Feature.Stock += n
}

// Withdraw removes n units from the station's stock.
func (b *Body) Withdraw(n int) {
	b.mustBeStation()
	b.Feature.Stock -= n
}

func (b *Body) mustBeStation() {
	if b.Feature.Kind != FeatureStation {
		panic(fmt.Sprintf("system: stock access on %s body", b.Feature.Kind))
	}
}

// System owns the body arena.
type System struct {
	Bodies []Body `json:"bodies"`

	// Radius is the true occupied radius of the generated tree, which can
	// be smaller than the configured target.
	Radius float64 `json:"radius"`
}

// Body returns a pointer into the arena.
func (s *System) Body(i int) *Body {
	return &s.Bodies[i]
}

// Len returns the number of bodies.
func (s *System) Len() int {
	return len(s.Bodies)
}

// TotalRadius returns the combined radius of the subsystem rooted at i: the
// body's own radius, or the farthest reach of any moon's orbit plus that
// moon's own subsystem, whichever is larger.
func (s *System) TotalRadius(i int) float64 {
	r := s.Bodies[i].Radius
	for _, m := range s.Bodies[i].Moons {
		reach := s.Bodies[m].Orbit.Distance + s.TotalRadius(m)
		if reach > r {
			r = reach
		}
	}
	return r
}

// New assembles a System from hand-built bodies, computing Radius and
// settling every position. Used for scripted scenarios and tests; the
// procedural path is Generate.
func New(bodies []Body) (*System, error) {
	s := &System{Bodies: bodies}
	if err := Validate(s); err != nil {
		return nil, err
	}
	s.Radius = s.TotalRadius(Sun)
	classify(s, 0)
	s.Settle()
	return s, nil
}
