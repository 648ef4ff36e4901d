package system

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Class is a cosmetic body classification for renderers. It has no effect
// on the simulation.
type Class uint8

const (
	ClassStar Class = iota
	ClassRocky
	ClassGas
	ClassIce
	ClassVolcanic
)

// ClassName returns a human-readable name for a class.
func ClassName(c Class) string {
	switch c {
	case ClassStar:
		return "Star"
	case ClassRocky:
		return "Rocky"
	case ClassGas:
		return "Gas"
	case ClassIce:
		return "Ice"
	case ClassVolcanic:
		return "Volcanic"
	default:
		return "Unknown"
	}
}

// Classification thresholds.
const (
	gasGiantRatio = 0.25 // Planet radius / sun radius at or above which a body is a gas giant
	hotLimit      = 0.75
	coldLimit     = 0.30
)

// classify assigns classes from a heat value: distance from the sun blended
// with a noise layer, the same way terrain is derived from temperature.
func classify(s *System, seed int64) {
	heatNoise := opensimplex.NewNormalized(seed)

	s.Bodies[Sun].Class = ClassStar
	for i := 1; i < s.Len(); i++ {
		b := &s.Bodies[i]

		heat := 1.0
		if s.Radius > 0 {
			heat = 1 - s.sunDistance(i)/s.Radius
		}
		heat = heat*0.7 + heatNoise.Eval2(float64(i)*0.37, heat*4)*0.3

		switch {
		case b.Orbit.Parent == Sun && b.Radius >= s.Bodies[Sun].Radius*gasGiantRatio:
			b.Class = ClassGas
		case heat > hotLimit:
			b.Class = ClassVolcanic
		case heat < coldLimit:
			b.Class = ClassIce
		default:
			b.Class = ClassRocky
		}
	}
}

// sunDistance is the orbital distance of the first-order planet that body i
// belongs to.
func (s *System) sunDistance(i int) float64 {
	for s.Bodies[i].Orbit != nil {
		o := s.Bodies[i].Orbit
		if o.Parent == Sun {
			return o.Distance
		}
		i = o.Parent
	}
	return 0
}
