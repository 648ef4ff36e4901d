package engine

import (
	"github.com/talgya/orrery/internal/economy"
	"github.com/talgya/orrery/internal/geom"
	"github.com/talgya/orrery/internal/ships"
	"github.com/talgya/orrery/internal/system"
)

// Snapshot is a read-only copy of one tick, for renderers and the API.
type Snapshot struct {
	Tick        uint64         `json:"tick"`
	Seed        int64          `json:"seed"`
	Fingerprint string         `json:"fingerprint"`
	Radius      float64        `json:"radius"`
	Bodies      []BodyView     `json:"bodies"`
	Ships       []ShipView     `json:"ships"`
	Ledger      economy.Ledger `json:"ledger"`
}

// BodyView is what a renderer needs to draw a body.
type BodyView struct {
	Index    int        `json:"index"`
	Pos      geom.Point `json:"pos"`
	Radius   float64    `json:"radius"`
	Orbiting bool       `json:"orbiting"`
	Parent   int        `json:"parent"` // -1 for the sun
	Feature  string     `json:"feature"`
	Stock    int        `json:"stock"`
	Class    string     `json:"class"`
}

// ShipView is what a renderer needs to draw a ship.
type ShipView struct {
	Index   int        `json:"index"`
	Pos     geom.Point `json:"pos"`
	Heading float64    `json:"heading"`
	Job     string     `json:"job"`
	Cargo   bool       `json:"cargo"`
	Goal    string     `json:"goal"`
	Target  int        `json:"target"`
	Prey    int        `json:"prey"`
	Raiding bool       `json:"raiding"` // Hunting with prey inside raid range
}

// Snapshot copies the current state under the read lock.
func (s *Simulation) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Tick:        s.LastTick,
		Seed:        s.Seed,
		Fingerprint: s.Fingerprint,
		Radius:      s.System.Radius,
		Bodies:      make([]BodyView, s.System.Len()),
		Ships:       make([]ShipView, s.Fleet.Len()),
		Ledger:      economy.Tally(s.System, s.Fleet),
	}

	for i := range s.System.Bodies {
		b := &s.System.Bodies[i]
		v := BodyView{
			Index:   i,
			Pos:     b.Pos,
			Radius:  b.Radius,
			Parent:  -1,
			Feature: b.Feature.Kind.String(),
			Class:   system.ClassName(b.Class),
		}
		if b.Orbit != nil {
			v.Orbiting = true
			v.Parent = b.Orbit.Parent
		}
		if b.Is(system.FeatureStation) {
			v.Stock = b.Stock()
		}
		snap.Bodies[i] = v
	}

	raidRange := s.world.Params.RaidRange
	for i := range s.Fleet.Ships {
		sh := &s.Fleet.Ships[i]
		v := ShipView{
			Index:   i,
			Pos:     sh.Pos,
			Heading: sh.Heading,
			Job:     sh.Job.Kind.String(),
			Cargo:   sh.Job.Cargo,
			Goal:    sh.Goal.Kind.String(),
			Target:  sh.Goal.Target,
			Prey:    sh.Goal.Prey,
		}
		if sh.Goal.Kind == ships.GoalHunt && sh.Goal.Prey != ships.NoPrey {
			v.Raiding = sh.Pos.Dist(s.Fleet.Ships[sh.Goal.Prey].Pos) <= raidRange
		}
		snap.Ships[i] = v
	}
	return snap
}
