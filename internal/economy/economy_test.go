package economy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/orrery/internal/entropy"
	"github.com/talgya/orrery/internal/geom"
	"github.com/talgya/orrery/internal/ships"
	"github.com/talgya/orrery/internal/system"
)

func threeStations(t *testing.T) (*system.System, []int) {
	t.Helper()
	b := system.NewBuilder(0.1)
	sts := []int{
		b.Add(system.Sun, 0.02, 0.4, 0, system.FeatureStation),
		b.Add(system.Sun, 0.02, 0.8, 2, system.FeatureStation),
		b.Add(system.Sun, 0.02, 1.2, 4, system.FeatureStation),
	}
	b.Add(system.Sun, 0.02, 1.6, 1, system.FeatureOre)
	sys, err := b.Build()
	require.NoError(t, err)
	return sys, sts
}

func shipParams() ships.Params {
	return ships.Params{
		Acceleration:    1.05,
		HarvestDuration: 10,
		HarvestVariance: 3,
		PirateTerritory: 0.5,
		DetectionRange:  0.4,
		RaidRange:       0.05,
		RaidDuration:    60,
		KillProbability: 0.3,
		WanderJitter:    0.3,
	}
}

func TestSpawnTraders(t *testing.T) {
	sys, sts := threeStations(t)
	fleet := &ships.Fleet{}
	rng := entropy.New(1)
	p := Params{TraderCost: 10, ShipBaseSpeed: 0.01}

	sys.Body(sts[0]).Deposit(25)
	sys.Body(sts[1]).Deposit(10) // Not strictly above the cost
	sys.Body(sts[2]).Deposit(11)

	spawned := SpawnTraders(sys, fleet, p, rng)
	require.Equal(t, []int{0, 1}, spawned)
	assert.Equal(t, 15, sys.Body(sts[0]).Stock())
	assert.Equal(t, 10, sys.Body(sts[1]).Stock())
	assert.Equal(t, 1, sys.Body(sts[2]).Stock())

	for n, st := range []int{sts[0], sts[2]} {
		s := fleet.At(spawned[n])
		assert.Equal(t, ships.Trader(false), s.Job)
		assert.Equal(t, ships.Visit(st), s.Goal)
		assert.Equal(t, sys.Body(st).Pos, s.Pos)
		assert.GreaterOrEqual(t, s.Speed, 0.005)
		assert.Less(t, s.Speed, 0.015)
	}

	// One launch per station per call.
	assert.Len(t, SpawnTraders(sys, fleet, p, rng), 1)
	assert.Equal(t, 5, sys.Body(sts[0]).Stock())
}

func TestTally(t *testing.T) {
	sys, sts := threeStations(t)
	fleet := &ships.Fleet{}
	sys.Body(sts[1]).Deposit(7)
	sys.Body(sts[2]).Deposit(3)
	fleet.Add(ships.New(ships.Trader(true), geom.Origin, 0.01, ships.Visit(sts[0])))
	fleet.Add(ships.New(ships.Trader(false), geom.Origin, 0.01, ships.Visit(sts[0])))
	fleet.Add(ships.New(ships.Miner(), geom.Origin, 0.01, ships.Visit(sts[0])))

	l := Tally(sys, fleet)
	assert.Equal(t, Ledger{StationStock: 10, InFlight: 1, Total: 11, Stations: 3, Richest: sts[1]}, l)
}

func TestTradingConservesUnits(t *testing.T) {
	sys, sts := threeStations(t)
	fleet := &ships.Fleet{}
	rng := entropy.New(9)
	w := &ships.World{System: sys, Fleet: fleet, Rng: rng, Params: shipParams()}

	sys.Body(sts[0]).Deposit(30)
	sys.Body(sts[1]).Deposit(4)
	for n := 0; n < 12; n++ {
		st := sts[n%len(sts)]
		fleet.Add(ships.New(ships.Trader(n%2 == 0), sys.Body(st).Pos, ships.RandomSpeed(rng, 0.01), ships.Visit(st)))
	}

	want := Tally(sys, fleet).Total
	trades := 0
	for tick := 0; tick < 3000; tick++ {
		sys.Advance()
		for i := 0; i < fleet.Len(); i++ {
			trades += len(w.Step(i))
		}
		require.Equal(t, want, Tally(sys, fleet).Total, "tick %d", tick)
	}
	assert.Positive(t, trades)
}

func TestMiningAddsOneUnitPerDelivery(t *testing.T) {
	sys, sts := threeStations(t)
	fleet := &ships.Fleet{}
	rng := entropy.New(3)
	w := &ships.World{System: sys, Fleet: fleet, Rng: rng, Params: shipParams()}

	ore := sys.Filter(system.FeatureOre)[0]
	for n := 0; n < 5; n++ {
		fleet.Add(ships.New(ships.Miner(), sys.Body(ore).Pos, ships.RandomSpeed(rng, 0.01), ships.Visit(ore)))
	}
	fleet.Add(ships.New(ships.Trader(false), sys.Body(sts[0]).Pos, 0.01, ships.Visit(sts[0])))

	deliveries := 0
	for tick := 0; tick < 3000; tick++ {
		sys.Advance()
		for i := 0; i < fleet.Len(); i++ {
			for _, ev := range w.Step(i) {
				if ev.Category == "mining" {
					deliveries++
				}
			}
		}
		require.Equal(t, deliveries, Tally(sys, fleet).Total, "tick %d", tick)
	}
	assert.Positive(t, deliveries)
}
