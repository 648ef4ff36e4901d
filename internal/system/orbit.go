package system

import (
	"math"

	"github.com/talgya/orrery/internal/geom"
)

// BaseStep is the angular increment per tick before scaling, about one degree.
const BaseStep = 0.0174

// Advance moves every body one tick along its orbit, top-down from the sun.
func (s *System) Advance() {
	s.advance(Sun)
}

func (s *System) advance(i int) {
	b := &s.Bodies[i]
	if o := b.Orbit; o != nil {
		parent := &s.Bodies[o.Parent]

		step := BaseStep * o.Speed
		// Bodies orbiting small parents advance faster.
		step *= s.Bodies[Sun].Radius / parent.Radius
		step *= o.Direction.Sign()

		if o.Parent == Sun && s.Radius > 0 {
			// Nearer planets move faster. The distance is taken at the
			// tentative angle, before this correction is applied.
			tentative := geom.WrapAngle(o.Angle + step)
			d := parent.Pos.Add(geom.Polar(o.Distance, tentative)).Len()
			step *= math.Sqrt(math.Max(s.Radius-d, 0)) / s.Radius
		}

		o.Angle = geom.WrapAngle(o.Angle + step)
		b.Pos = parent.Pos.Add(geom.Polar(o.Distance, o.Angle))
	}

	for _, m := range b.Moons {
		s.advance(m)
	}
}

// Settle places every body at its current orbit angle without advancing
// time. Called once after generation so positions are valid before the
// first tick.
func (s *System) Settle() {
	s.settle(Sun)
}

func (s *System) settle(i int) {
	b := &s.Bodies[i]
	if o := b.Orbit; o != nil {
		b.Pos = s.Bodies[o.Parent].Pos.Add(geom.Polar(o.Distance, o.Angle))
	}
	for _, m := range b.Moons {
		s.settle(m)
	}
}
