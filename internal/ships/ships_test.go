package ships

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/orrery/internal/entropy"
	"github.com/talgya/orrery/internal/geom"
	"github.com/talgya/orrery/internal/system"
)

func testParams() Params {
	return Params{
		Acceleration:    1.05,
		HarvestDuration: 5,
		PirateTerritory: 1,
		DetectionRange:  0.5,
		RaidRange:       0.05,
		RaidDuration:    3,
		KillProbability: 1,
		WanderJitter:    0.3,
	}
}

// twoStations builds a sun with two stations and an ore body, no moons.
func twoStations(t *testing.T) (*system.System, int, int, int) {
	t.Helper()
	b := system.NewBuilder(0.1)
	a := b.Add(system.Sun, 0.02, 0.5, 0, system.FeatureStation)
	c := b.Add(system.Sun, 0.02, 0.9, 2, system.FeatureStation)
	ore := b.Add(system.Sun, 0.02, 1.3, 4, system.FeatureOre)
	sys, err := b.Build()
	require.NoError(t, err)
	return sys, a, c, ore
}

func newWorld(sys *system.System, p Params) *World {
	return &World{System: sys, Fleet: &Fleet{}, Rng: entropy.New(42), Params: p}
}

func TestReapPatchesPreyReferences(t *testing.T) {
	f := &Fleet{}
	for i := 0; i < 4; i++ {
		f.Add(New(Trader(true), geom.Origin, 0.01, Visit(1)))
	}
	h1 := f.Add(New(Pirate(geom.Origin), geom.Origin, 0.01, Hunt(1, 0)))
	h2 := f.Add(New(Pirate(geom.Origin), geom.Origin, 0.01, Hunt(3, 2)))
	h3 := f.Add(New(Pirate(geom.Origin), geom.Origin, 0.01, Hunt(2, 0)))
	h4 := f.Add(New(Pirate(geom.Origin), geom.Origin, 0.01, Hunt(0, 0)))

	f.MarkKilled(1)
	f.MarkKilled(2)
	f.MarkKilled(1)
	assert.Equal(t, []int{1, 2}, f.Pending())

	assert.Equal(t, []int{2, 1}, f.Reap())
	assert.Empty(t, f.Pending())
	require.Equal(t, 6, f.Len())

	// Every index shifted down by the two removals.
	assert.Equal(t, GoalWander, f.At(h1-2).Goal.Kind)
	assert.Equal(t, NoPrey, f.At(h1-2).Goal.Prey)
	assert.Equal(t, Hunt(1, 2), f.At(h2-2).Goal)
	assert.Equal(t, GoalWander, f.At(h3-2).Goal.Kind)
	assert.Equal(t, Hunt(0, 0), f.At(h4-2).Goal)

	for i := range f.Ships {
		g := f.Ships[i].Goal
		if g.Kind == GoalHunt {
			assert.Less(t, g.Prey, 2)
		}
	}
	assert.Nil(t, f.Reap())
}

func TestCount(t *testing.T) {
	f := &Fleet{}
	f.Add(New(Miner(), geom.Origin, 0.01, Visit(1)))
	f.Add(New(Trader(false), geom.Origin, 0.01, Visit(1)))
	f.Add(New(Miner(), geom.Origin, 0.01, Visit(1)))
	assert.Equal(t, 2, f.Count(JobMiner))
	assert.Equal(t, 1, f.Count(JobTrader))
	assert.Zero(t, f.Count(JobPirate))
}

func TestVisitTunnelsIntoFastTarget(t *testing.T) {
	sys, a, _, _ := twoStations(t)
	w := newWorld(sys, testParams())
	target := sys.Body(a).Pos

	// Fast enough to overshoot the disc entirely in one step.
	start := target.Add(geom.Pt(-0.5, 0))
	i := w.Fleet.Add(New(Miner(), start, 0.01, Visit(a)))
	w.Fleet.At(i).Speed = 1.9

	assert.True(t, w.move(i))
	assert.Equal(t, 0.01, w.Fleet.At(i).Speed, "speed resets on arrival")
}

func TestVisitAccelerates(t *testing.T) {
	sys, a, _, _ := twoStations(t)
	w := newWorld(sys, testParams())
	i := w.Fleet.Add(New(Miner(), geom.Pt(-1, -1), 0.01, Visit(a)))

	before := w.Fleet.At(i).Pos.Dist(sys.Body(a).Pos)
	assert.False(t, w.move(i))
	s := w.Fleet.At(i)
	assert.InDelta(t, 0.0105, s.Speed, 1e-12)
	assert.InDelta(t, before*0.99, s.Pos.Dist(sys.Body(a).Pos), 1e-12)
	assert.InDelta(t, sys.Body(a).Pos.Sub(geom.Pt(-1, -1)).Angle(), s.Heading, 1e-12)
}

func TestMinerDeliversOneUnitPerTrip(t *testing.T) {
	sys, a, c, ore := twoStations(t)
	w := newWorld(sys, testParams())
	i := w.Fleet.Add(New(Miner(), sys.Body(ore).Pos, 0.01, Visit(ore)))

	stock := func() int { return sys.Body(a).Stock() + sys.Body(c).Stock() }
	deliveries := 0
	for tick := 0; tick < 20000 && deliveries < 2; tick++ {
		sys.Advance()
		before := stock()
		prior := w.Fleet.At(i).Goal
		w.Step(i)
		after := w.Fleet.At(i).Goal

		if prior.Kind == GoalVisit && sys.Body(prior.Target).Is(system.FeatureStation) && after.Target != prior.Target {
			deliveries++
			assert.Equal(t, before+1, stock(), "each delivery adds exactly one unit")
			assert.Equal(t, Visit(ore), after)
		} else {
			assert.Equal(t, before, stock())
		}
	}
	require.Equal(t, 2, deliveries)
	assert.Equal(t, 2, stock())
}

func TestMinerHarvestWaitsAtOre(t *testing.T) {
	sys, _, _, ore := twoStations(t)
	p := testParams()
	p.HarvestVariance = 4
	w := newWorld(sys, p)
	i := w.Fleet.Add(New(Miner(), sys.Body(ore).Pos, 0.01, Visit(ore)))

	w.Step(i)
	g := w.Fleet.At(i).Goal
	require.Equal(t, GoalWait, g.Kind)
	assert.Equal(t, ore, g.Target)
	assert.LessOrEqual(t, g.Progress, 0)
	assert.GreaterOrEqual(t, g.Progress, -4)

	ticks := 0
	for w.Fleet.At(i).Goal.Kind == GoalWait {
		sys.Advance()
		w.Step(i)
		ticks++
		if w.Fleet.At(i).Goal.Kind == GoalWait {
			assert.Equal(t, sys.Body(ore).Pos, w.Fleet.At(i).Pos, "docked ships follow the body")
		}
	}
	assert.Equal(t, p.HarvestDuration-g.Progress, ticks)
	assert.Equal(t, GoalVisit, w.Fleet.At(i).Goal.Kind)
	assert.True(t, sys.Body(w.Fleet.At(i).Goal.Target).Is(system.FeatureStation))
}

func TestTraderDeliversAndLoadsFromRicherStation(t *testing.T) {
	sys, a, c, _ := twoStations(t)
	w := newWorld(sys, testParams())
	sys.Body(a).Deposit(5)

	i := w.Fleet.Add(New(Trader(true), sys.Body(a).Pos, 0.01, Visit(a)))
	events := w.Step(i)

	s := w.Fleet.At(i)
	assert.Equal(t, Visit(c), s.Goal)
	assert.True(t, s.Job.Cargo, "richer station hands over a unit")
	assert.Equal(t, 5, sys.Body(a).Stock(), "one delivered, one loaded")
	assert.Len(t, events, 2)

	// At the poorer station the cargo is delivered and nothing is loaded.
	s.Pos = sys.Body(c).Pos
	w.Step(i)
	s = w.Fleet.At(i)
	assert.False(t, s.Job.Cargo)
	assert.Equal(t, 1, sys.Body(c).Stock())
	assert.Equal(t, Visit(a), s.Goal)
}

func TestPirateRaidsAndKills(t *testing.T) {
	sys, a, _, _ := twoStations(t)
	w := newWorld(sys, testParams())
	pirate := w.Fleet.Add(New(Pirate(geom.Origin), geom.Pt(1.5, 1.5), 0.01, Wander()))
	prey := w.Fleet.Add(New(Trader(true), geom.Pt(1.52, 1.5), 0.01, Visit(a)))

	w.Step(pirate)
	require.Equal(t, GoalScan, w.Fleet.At(pirate).Goal.Kind)

	w.Step(pirate)
	require.Equal(t, Hunt(prey, 0), w.Fleet.At(pirate).Goal)

	var events []Event
	for n := 0; n < 10 && w.Fleet.At(pirate).Goal.Kind == GoalHunt; n++ {
		events = append(events, w.Step(pirate)...)
	}
	assert.Equal(t, GoalWander, w.Fleet.At(pirate).Goal.Kind)
	assert.False(t, w.Fleet.At(prey).HasCargo())
	assert.Equal(t, []int{prey}, w.Fleet.Pending())
	require.Len(t, events, 2)
	assert.Equal(t, "kill", events[1].Category)

	w.Fleet.Reap()
	assert.Equal(t, 1, w.Fleet.Len())
}

func TestPirateIgnoresEmptyTraders(t *testing.T) {
	sys, a, _, _ := twoStations(t)
	w := newWorld(sys, testParams())
	pirate := w.Fleet.Add(New(Pirate(geom.Origin), geom.Origin, 0.01, Scan(NoPrey)))
	w.Fleet.Add(New(Trader(false), geom.Pt(0.01, 0), 0.01, Visit(a)))
	w.Fleet.Add(New(Trader(true), geom.Pt(1.9, 0), 0.01, Visit(a)))

	w.Step(pirate)
	assert.Equal(t, Wander(), w.Fleet.At(pirate).Goal)
}

func TestHuntAbandonedWhenCargoGone(t *testing.T) {
	sys, a, _, _ := twoStations(t)
	w := newWorld(sys, testParams())
	pirate := w.Fleet.Add(New(Pirate(geom.Origin), geom.Origin, 0.01, Hunt(1, 0)))
	w.Fleet.Add(New(Trader(false), geom.Pt(0.3, 0), 0.01, Visit(a)))

	w.Step(pirate)
	assert.Equal(t, Wander(), w.Fleet.At(pirate).Goal)
	assert.Empty(t, w.Fleet.Pending())
}

func TestPreyEscapesAfterEngagement(t *testing.T) {
	sys, a, _, _ := twoStations(t)
	p := testParams()
	p.RaidDuration = 50
	w := newWorld(sys, p)
	pirate := w.Fleet.Add(New(Pirate(geom.Origin), geom.Origin, 0.01, Hunt(1, 0)))
	prey := w.Fleet.Add(New(Trader(true), geom.Pt(0.02, 0), 0.01, Visit(a)))

	w.Step(pirate)
	require.True(t, w.Fleet.At(pirate).Goal.Engaged)
	assert.Equal(t, 1, w.Fleet.At(pirate).Goal.Progress)

	w.Fleet.At(prey).Pos = geom.Pt(1, 1)
	events := w.Step(pirate)
	assert.Equal(t, Wander(), w.Fleet.At(pirate).Goal)
	assert.True(t, w.Fleet.At(prey).HasCargo(), "an escaped raid commits nothing")
	assert.Len(t, events, 1)
}

func TestUnengagedHunterKeepsChasing(t *testing.T) {
	sys, a, _, _ := twoStations(t)
	w := newWorld(sys, testParams())
	pirate := w.Fleet.Add(New(Pirate(geom.Origin), geom.Origin, 0.01, Hunt(1, 0)))
	w.Fleet.Add(New(Trader(true), geom.Pt(0.4, 0), 0.01, Visit(a)))

	w.Step(pirate)
	g := w.Fleet.At(pirate).Goal
	assert.Equal(t, GoalHunt, g.Kind)
	assert.False(t, g.Engaged)
	assert.Zero(t, g.Progress)
}

func TestWanderReturnsHome(t *testing.T) {
	sys, _, _, _ := twoStations(t)
	w := newWorld(sys, testParams())
	home := geom.Pt(0.5, 0.5)
	i := w.Fleet.Add(New(Pirate(home), geom.Pt(3, 0.5), 0.01, Wander()))

	w.Step(i)
	s := w.Fleet.At(i)
	assert.InDelta(t, 3-0.01, s.Pos.X, 1e-12)
	assert.InDelta(t, 0.5, s.Pos.Y, 1e-12)
	assert.Equal(t, Scan(NoPrey), s.Goal)
}

func TestInvalidCombinationPanics(t *testing.T) {
	sys, _, _, _ := twoStations(t)
	w := newWorld(sys, testParams())
	i := w.Fleet.Add(New(Miner(), geom.Origin, 0.01, Wander()))
	assert.Panics(t, func() { w.Step(i) })

	j := w.Fleet.Add(New(Trader(false), geom.Origin, 0.01, Scan(NoPrey)))
	assert.Panics(t, func() { w.Step(j) })
}
