package system

import (
	"errors"
	"fmt"

	"github.com/dominikbraun/graph"
)

// ErrInvalidSystem wraps every structural violation found by Validate.
var ErrInvalidSystem = errors.New("invalid system")

// Validate checks the body graph invariants: body 0 is a bare sun, every
// other body orbits exactly one earlier body that lists it as a moon, the
// parent relation forms a tree reaching every body, and at least one
// station and one ore source exist.
func Validate(s *System) error {
	if s.Len() == 0 {
		return fmt.Errorf("%w: no bodies", ErrInvalidSystem)
	}
	sun := &s.Bodies[Sun]
	if sun.Orbit != nil {
		return fmt.Errorf("%w: sun has an orbit", ErrInvalidSystem)
	}
	if !sun.Is(FeatureNone) {
		return fmt.Errorf("%w: sun has feature %s", ErrInvalidSystem, sun.Feature.Kind)
	}

	g := graph.New(graph.IntHash, graph.Directed(), graph.PreventCycles())
	for i := range s.Bodies {
		if err := g.AddVertex(i); err != nil {
			return fmt.Errorf("%w: vertex %d: %v", ErrInvalidSystem, i, err)
		}
	}

	stations, ore := 0, 0
	for i := range s.Bodies {
		b := &s.Bodies[i]
		switch b.Feature.Kind {
		case FeatureStation:
			stations++
		case FeatureOre:
			ore++
		}
		if !b.Is(FeatureStation) && b.Feature.Stock != 0 {
			return fmt.Errorf("%w: body %d carries stock without a station", ErrInvalidSystem, i)
		}
		if b.Radius <= 0 {
			return fmt.Errorf("%w: body %d has radius %v", ErrInvalidSystem, i, b.Radius)
		}

		for _, m := range b.Moons {
			if m <= 0 || m >= s.Len() {
				return fmt.Errorf("%w: body %d lists moon %d out of range", ErrInvalidSystem, i, m)
			}
			if o := s.Bodies[m].Orbit; o == nil || o.Parent != i {
				return fmt.Errorf("%w: body %d lists moon %d that does not orbit it", ErrInvalidSystem, i, m)
			}
		}

		if i == Sun {
			continue
		}
		if b.Orbit == nil {
			return fmt.Errorf("%w: body %d has no orbit", ErrInvalidSystem, i)
		}
		p := b.Orbit.Parent
		if p < 0 || p >= i {
			return fmt.Errorf("%w: body %d orbits %d, which was not created before it", ErrInvalidSystem, i, p)
		}
		if !contains(s.Bodies[p].Moons, i) {
			return fmt.Errorf("%w: body %d is missing from the moons of %d", ErrInvalidSystem, i, p)
		}
		if err := g.AddEdge(p, i); err != nil {
			return fmt.Errorf("%w: edge %d->%d: %v", ErrInvalidSystem, p, i, err)
		}
	}

	reached := 0
	if err := graph.BFS(g, Sun, func(int) bool {
		reached++
		return false
	}); err != nil {
		return fmt.Errorf("%w: walk: %v", ErrInvalidSystem, err)
	}
	if reached != s.Len() {
		return fmt.Errorf("%w: %d of %d bodies reachable from the sun", ErrInvalidSystem, reached, s.Len())
	}

	if stations == 0 || ore == 0 {
		return fmt.Errorf("%w: %d stations and %d ore sources", ErrInvalidSystem, stations, ore)
	}
	return nil
}

func contains(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
