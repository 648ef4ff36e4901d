// System generation: planets with moons packed outward from the sun until
// the configured radius is reached, then economic features scattered over
// the bodies.
package system

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/talgya/orrery/internal/entropy"
	"github.com/talgya/orrery/internal/geom"
)

// Generation minimums: the sun plus two stations and one ore source.
const (
	MinBodies   = 4
	MinStations = 2
	MinOre      = 1
)

// Packing constants.
const (
	moonFootprintLimit = 5 // Stop adding moons once the footprint reaches this many radii
	orbitPadding       = 3 // Gap between subsystems, in radii of the body being placed
)

// ErrSystemTooSmall is returned when the configured radius cannot hold the
// minimum number of bodies. Retrying with another seed usually succeeds.
var ErrSystemTooSmall = errors.New("system too small")

// GenConfig holds system generation parameters.
type GenConfig struct {
	SystemRadius float64 // Target radius; generation stops before exceeding it
	SunRadius    float64
	MoonProb     float64 // Chance a planet gains another moon
	FeatureProb  float64 // Chance a featureless body gets a random feature
	SizeMin      float64 // Planet radius as a fraction of the sun's, moon radius as a fraction of its planet's
	SizeMax      float64
}

// DefaultGenConfig returns the standard system layout.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		SystemRadius: 2.0,
		SunRadius:    0.1,
		MoonProb:     0.5,
		FeatureProb:  0.5,
		SizeMin:      0.1,
		SizeMax:      0.3,
	}
}

// Generate builds a system. All randomness is drawn from rng.
func Generate(cfg GenConfig, rng *rand.Rand) (*System, error) {
	s := &System{Bodies: []Body{{Radius: cfg.SunRadius}}}

	for {
		p := s.Len()
		planetRad := cfg.SunRadius * entropy.Between(rng, cfg.SizeMin, cfg.SizeMax)
		s.Bodies = append(s.Bodies, Body{Radius: planetRad})

		for s.TotalRadius(p) < s.Bodies[p].Radius*moonFootprintLimit && entropy.Chance(rng, cfg.MoonProb) {
			moonRad := entropy.Between(rng, cfg.SizeMin, cfg.SizeMax) * s.Bodies[p].Radius
			dist := s.orbitDistance(p, moonRad)

			m := s.Len()
			s.Bodies[p].Moons = append(s.Bodies[p].Moons, m)
			s.Bodies = append(s.Bodies, Body{Radius: moonRad, Orbit: newOrbit(rng, p, dist)})
		}

		footprint := s.orbitDistance(p, s.Bodies[p].Radius)
		occupied := s.TotalRadius(Sun)
		if occupied+footprint > cfg.SystemRadius {
			s.Bodies = s.Bodies[:p]
			break
		}

		s.Bodies[Sun].Moons = append(s.Bodies[Sun].Moons, p)
		s.Bodies[p].Orbit = newOrbit(rng, Sun, occupied+footprint)
	}

	if s.Len() < MinBodies {
		return nil, fmt.Errorf("generate: %d bodies within radius %.3f, need %d: %w",
			s.Len(), cfg.SystemRadius, MinBodies, ErrSystemTooSmall)
	}

	placeFeatures(s, cfg, rng)
	s.Radius = s.TotalRadius(Sun)
	classify(s, rng.Int63())
	s.Settle()

	if err := Validate(s); err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	return s, nil
}

// orbitDistance is where a body of radius rad would orbit around i without
// touching anything already attached to it.
func (s *System) orbitDistance(i int, rad float64) float64 {
	return s.TotalRadius(i) + s.Bodies[i].Radius + rad*orbitPadding
}

func newOrbit(rng *rand.Rand, parent int, dist float64) *Orbit {
	dir := Clockwise
	if entropy.Chance(rng, 0.5) {
		dir = CounterClockwise
	}
	return &Orbit{
		Parent:    parent,
		Distance:  dist,
		Speed:     0.5 * float64(1+rng.Intn(3)),
		Direction: dir,
		Angle:     rng.Float64() * geom.Tau,
	}
}

// placeFeatures guarantees the minimum stations and ore on distinct non-sun
// bodies, then gives each remaining featureless body a random feature with
// probability FeatureProb.
func placeFeatures(s *System, cfg GenConfig, rng *rand.Rand) {
	order := rng.Perm(s.Len() - 1)
	for n, k := range order[:MinStations+MinOre] {
		kind := FeatureStation
		if n >= MinStations {
			kind = FeatureOre
		}
		s.Bodies[k+1].Feature = Feature{Kind: kind}
	}

	kinds := [...]FeatureKind{FeatureStation, FeatureOre}
	for i := 1; i < s.Len(); i++ {
		if !s.Bodies[i].Is(FeatureNone) {
			continue
		}
		if entropy.Chance(rng, cfg.FeatureProb) {
			s.Bodies[i].Feature = Feature{Kind: kinds[rng.Intn(len(kinds))]}
		}
	}
}
