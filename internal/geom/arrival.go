package geom

import "math"

// Crosses reports whether the segment from prev to next crosses the boundary
// of the disc at center with radius r. The segment is parametrized as
// prev + t*(next-prev) and substituted into x² + y² = r², giving a quadratic
// in t; a crossing is a root strictly inside (0, 1).
//
// A segment that stays entirely inside the disc never crosses its boundary,
// so Crosses reports false for it. Use Arrived when containment should also
// count.
func Crosses(prev, next, center Point, r float64) bool {
	a := prev.Sub(center)
	d := next.Sub(prev)

	qa := d.Len2()
	if qa == 0 {
		return false // no movement, nothing swept
	}
	qb := 2 * a.Dot(d)
	qc := a.Len2() - r*r

	disc := qb*qb - 4*qa*qc
	if disc <= 0 {
		return false
	}

	sq := math.Sqrt(disc)
	t1 := (-qb - sq) / (2 * qa)
	t2 := (-qb + sq) / (2 * qa)
	return inOpenUnit(t1) || inOpenUnit(t2)
}

// Arrived reports whether a ship that moved from prev to next has reached
// the disc at center with radius r: either the step swept across the
// boundary, or the ship now sits inside the disc.
func Arrived(prev, next, center Point, r float64) bool {
	if next.Dist2(center) <= r*r {
		return true
	}
	return Crosses(prev, next, center, r)
}

func inOpenUnit(t float64) bool {
	return t > 0 && t < 1
}
