package system

import (
	"sort"

	"github.com/talgya/orrery/internal/geom"
)

// Filter returns the indices of bodies whose feature kind matches, in
// arena order. Payload (station stock) is ignored.
func (s *System) Filter(kind FeatureKind) []int {
	var out []int
	for i := range s.Bodies {
		if s.Bodies[i].Is(kind) {
			out = append(out, i)
		}
	}
	return out
}

// Nearest returns the bodies of the given kind sorted by ascending squared
// distance to pos. Ties keep arena order so runs stay reproducible.
func (s *System) Nearest(kind FeatureKind, pos geom.Point) []int {
	out := s.Filter(kind)
	sort.SliceStable(out, func(a, b int) bool {
		return s.Bodies[out[a]].Pos.Dist2(pos) < s.Bodies[out[b]].Pos.Dist2(pos)
	})
	return out
}

// NearestOne returns the closest body of the given kind, or -1 and false
// when the system has none.
func (s *System) NearestOne(kind FeatureKind, pos geom.Point) (int, bool) {
	near := s.Nearest(kind, pos)
	if len(near) == 0 {
		return -1, false
	}
	return near[0], true
}

// Stations is shorthand for Filter(FeatureStation).
func (s *System) Stations() []int {
	return s.Filter(FeatureStation)
}
