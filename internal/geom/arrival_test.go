package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCrossesThroughTwoBoundaryPoints(t *testing.T) {
	center := Pt(3, -1)
	// The chord from (2,-1) to (4,-1) lies on the unit circle's diameter;
	// extend it past both boundary points.
	prev := Pt(1, -1)
	next := Pt(5, -1)
	assert.True(t, Crosses(prev, next, center, 1))
	assert.True(t, Crosses(next, prev, center, 1), "direction must not matter")
}

func TestCrossesSingleBoundaryPoint(t *testing.T) {
	// Entering the disc without leaving it still crosses once.
	assert.True(t, Crosses(Pt(-2, 0), Pt(0.5, 0), Origin, 1))
	// Leaving it, too.
	assert.True(t, Crosses(Pt(0.5, 0), Pt(2, 0), Origin, 1))
}

func TestCrossesOutsideDisc(t *testing.T) {
	assert.False(t, Crosses(Pt(-2, 2), Pt(2, 2), Origin, 1), "segment passes above the disc")
	assert.False(t, Crosses(Pt(2, 0), Pt(3, 0), Origin, 1), "segment points away from the disc")
	assert.False(t, Crosses(Pt(-3, 0), Pt(-2, 0), Origin, 1), "segment stops short of the disc")
}

func TestCrossesTangentIsNotArrival(t *testing.T) {
	// Discriminant is exactly zero for a tangent line.
	assert.False(t, Crosses(Pt(-2, 1), Pt(2, 1), Origin, 1))
}

func TestCrossesEntirelyInside(t *testing.T) {
	assert.False(t, Crosses(Pt(0.1, 0), Pt(0.2, 0.1), Origin, 1))
}

func TestCrossesNoMovement(t *testing.T) {
	assert.False(t, Crosses(Pt(1, 0), Pt(1, 0), Origin, 1))
}

func TestCrossesEndpointsOnBoundary(t *testing.T) {
	// Roots at exactly t=0 and t=1 are outside the open interval.
	assert.False(t, Crosses(Pt(-1, 0), Pt(1, 0), Origin, 1))
}

func TestCrossesHighSpeedTunnel(t *testing.T) {
	// A tiny target that a fast ship jumps over in a single step.
	target := Pt(10, 10)
	prev := Pt(0, 0)
	next := Pt(50, 50)
	assert.False(t, next.Dist(target) <= 0.01, "plain distance test misses the target")
	assert.True(t, Crosses(prev, next, target, 0.01))
}

func TestArrivedCountsContainment(t *testing.T) {
	assert.True(t, Arrived(Pt(0.1, 0), Pt(0.2, 0), Origin, 1))
	assert.True(t, Arrived(Pt(0, 0), Pt(0, 0), Origin, 1), "a ship parked at the centre has arrived")
	assert.True(t, Arrived(Pt(-5, 0), Pt(5, 0), Origin, 1))
	assert.False(t, Arrived(Pt(-5, 3), Pt(5, 3), Origin, 1))
}
