// Ship behavior: a two-phase state machine run once per ship per tick.
// Movement always applies; the transition runs only when movement reports
// that the current goal is complete.
package ships

import (
	"fmt"
	"math/rand"

	"github.com/talgya/orrery/internal/entropy"
	"github.com/talgya/orrery/internal/geom"
	"github.com/talgya/orrery/internal/system"
)

// Params tunes ship behavior.
type Params struct {
	Acceleration    float64 // Speed multiplier per tick while travelling
	HarvestDuration int     // Ticks a miner waits at an ore body
	HarvestVariance int     // Extra ticks drawn once per harvest, uniform in [0, variance]
	PirateTerritory float64 // Wander radius around a pirate's home
	DetectionRange  float64
	RaidRange       float64
	RaidDuration    int // Ticks in raid range before the raid resolves
	RaidVariance    int
	KillProbability float64 // Chance a completed raid destroys the prey
	WanderJitter    float64 // Max heading change per wander tick, radians
}

// World is what a ship can see and touch during a tick.
type World struct {
	System *system.System
	Fleet  *Fleet
	Rng    *rand.Rand
	Params Params

	events []Event
}

// Step runs movement and, if the goal completed, the transition for ship i.
// Returns the events the ship produced.
func (w *World) Step(i int) []Event {
	w.events = w.events[:0]
	if w.move(i) {
		w.transition(i)
	}
	if len(w.events) == 0 {
		return nil
	}
	out := make([]Event, len(w.events))
	copy(out, w.events)
	return out
}

func (w *World) emit(category, format string, args ...any) {
	w.events = append(w.events, Event{Category: category, Description: fmt.Sprintf(format, args...)})
}

// steer moves s toward dest by the fraction s.Speed of the remaining
// distance, then accelerates.
func (w *World) steer(s *Ship, dest geom.Point) {
	delta := dest.Sub(s.Pos)
	s.Pos = s.Pos.Add(delta.Scale(s.Speed))
	if delta != geom.Origin {
		s.Heading = delta.Angle()
	}
	s.Speed *= w.Params.Acceleration
}

// move applies the movement phase and reports whether the goal completed.
func (w *World) move(i int) bool {
	s := w.Fleet.At(i)
	g := &s.Goal

	switch g.Kind {
	case GoalVisit:
		target := w.System.Body(g.Target)
		prev := s.Pos
		w.steer(s, target.Pos)
		if geom.Arrived(prev, s.Pos, target.Pos, target.Radius) {
			s.Speed = s.InitialSpeed
			return true
		}
		return false

	case GoalWait:
		s.Pos = w.System.Body(g.Target).Pos
		g.Progress++
		return g.Progress >= w.Params.HarvestDuration

	case GoalWander:
		home := s.Job.Home
		if s.Pos.Dist(home) > w.Params.PirateTerritory {
			s.Heading = home.Sub(s.Pos).Angle()
		} else {
			s.Heading = geom.WrapAngle(s.Heading + entropy.Between(w.Rng, -w.Params.WanderJitter, w.Params.WanderJitter))
		}
		s.Pos = s.Pos.Add(geom.Polar(s.InitialSpeed, s.Heading))
		return true

	case GoalScan:
		var found []int
		for j := range w.Fleet.Ships {
			other := &w.Fleet.Ships[j]
			if j != i && other.HasCargo() && other.Pos.Dist(s.Pos) <= w.Params.DetectionRange {
				found = append(found, j)
			}
		}
		g.Prey = NoPrey
		if prey, ok := entropy.Pick(w.Rng, found); ok {
			g.Prey = prey
		}
		return true

	case GoalHunt:
		return w.hunt(i, s)
	}
	return false
}

func (w *World) hunt(i int, s *Ship) bool {
	g := &s.Goal
	prey := w.Fleet.At(g.Prey)
	if !prey.HasCargo() {
		s.Goal = Wander()
		s.Speed = s.InitialSpeed
		return false
	}

	w.steer(s, prey.Pos)
	if s.Pos.Dist(prey.Pos) > w.Params.RaidRange {
		if g.Engaged {
			w.emit("escape", "ship %d escaped pirate %d", g.Prey, i)
			s.Goal = Wander()
			s.Speed = s.InitialSpeed
		}
		return false
	}

	// Both ships hold their base speed while the raid is on, so neither
	// can break contact by accelerating.
	prey.Speed = prey.InitialSpeed
	s.Speed = s.InitialSpeed
	g.Progress++
	g.Engaged = true
	if g.Progress <= w.Params.RaidDuration {
		return false
	}

	prey.Job.Cargo = false
	w.emit("raid", "pirate %d stripped the cargo of ship %d", i, g.Prey)
	if entropy.Chance(w.Rng, w.Params.KillProbability) {
		w.Fleet.MarkKilled(g.Prey)
		w.emit("kill", "pirate %d destroyed ship %d", i, g.Prey)
	}
	return true
}

// transition picks the next goal, keyed by job and the goal just completed.
// A pair outside the table means an earlier step corrupted the ship.
func (w *World) transition(i int) {
	s := w.Fleet.At(i)
	g := s.Goal

	switch {
	case s.Job.Kind == JobTrader && g.Kind == GoalVisit:
		w.trade(i, s)

	case s.Job.Kind == JobMiner && g.Kind == GoalVisit:
		target := w.System.Body(g.Target)
		switch target.Feature.Kind {
		case system.FeatureStation:
			target.Deposit(1)
			w.emit("mining", "miner %d delivered ore to body %d (stock %d)", i, g.Target, target.Stock())
			s.Goal = Visit(w.nearest(system.FeatureOre, s.Pos))
		case system.FeatureOre:
			s.Goal = Wait(g.Target, -entropy.Jitter(w.Rng, w.Params.HarvestVariance))
		default:
			panic(fmt.Sprintf("ships: miner %d visited body %d with feature %s", i, g.Target, target.Feature.Kind))
		}

	case s.Job.Kind == JobMiner && g.Kind == GoalWait:
		s.Goal = Visit(w.nearest(system.FeatureStation, s.Pos))

	case s.Job.Kind == JobPirate && g.Kind == GoalWander:
		s.Goal = Scan(NoPrey)

	case s.Job.Kind == JobPirate && g.Kind == GoalScan:
		if g.Prey == NoPrey {
			s.Goal = Wander()
		} else {
			s.Goal = Hunt(g.Prey, -entropy.Jitter(w.Rng, w.Params.RaidVariance))
		}

	case s.Job.Kind == JobPirate && g.Kind == GoalHunt:
		w.Fleet.At(g.Prey).Job.Cargo = false
		s.Goal = Wander()

	default:
		panic(fmt.Sprintf("ships: ship %d has invalid goal %s for job %s", i, g.Kind, s.Job.Kind))
	}
}

// trade handles a trader arriving at a station: deliver any cargo, pick
// another station at random, and load a unit if this station is richer.
func (w *World) trade(i int, s *Ship) {
	here := s.Goal.Target
	station := w.System.Body(here)
	if s.Job.Cargo {
		station.Deposit(1)
		s.Job.Cargo = false
		w.emit("trade", "trader %d delivered cargo to body %d", i, here)
	}

	var others []int
	for _, st := range w.System.Stations() {
		if st != here {
			others = append(others, st)
		}
	}
	dest, ok := entropy.Pick(w.Rng, others)
	if !ok {
		dest = here
	}

	if !s.Job.Cargo && station.Stock() > w.System.Body(dest).Stock() {
		station.Withdraw(1)
		s.Job.Cargo = true
		w.emit("trade", "trader %d loaded cargo at body %d for body %d", i, here, dest)
	}
	s.Goal = Visit(dest)
}

// nearest returns the closest body with the feature. A validated system
// always has at least one station and one ore body.
func (w *World) nearest(kind system.FeatureKind, pos geom.Point) int {
	b, ok := w.System.NearestOne(kind, pos)
	if !ok {
		panic(fmt.Sprintf("ships: no %s body in system", kind))
	}
	return b
}
