// Package ships provides the ship data model, the fleet registry, and the
// per-tick goal state machine that moves miners, traders and pirates.
package ships

import (
	"fmt"
	"math/rand"

	"github.com/talgya/orrery/internal/geom"
)

// NoPrey marks a Scan or Hunt goal without a target ship.
const NoPrey = -1

// JobKind is a ship's fixed role.
type JobKind uint8

const (
	JobMiner  JobKind = iota // Harvests ore, delivers to stations
	JobTrader                // Moves stock between stations
	JobPirate                // Raids traders carrying cargo
)

func (k JobKind) String() string {
	switch k {
	case JobMiner:
		return "miner"
	case JobTrader:
		return "trader"
	case JobPirate:
		return "pirate"
	default:
		return fmt.Sprintf("job(%d)", uint8(k))
	}
}

// Job is a tagged variant. Cargo is the trader payload, Home the pirate's
// patrol origin.
type Job struct {
	Kind  JobKind    `json:"kind"`
	Cargo bool       `json:"cargo,omitempty"`
	Home  geom.Point `json:"home"`
}

// Miner returns a miner job.
func Miner() Job { return Job{Kind: JobMiner} }

// Trader returns a trader job.
func Trader(cargo bool) Job { return Job{Kind: JobTrader, Cargo: cargo} }

// Pirate returns a pirate job patrolling around home.
func Pirate(home geom.Point) Job { return Job{Kind: JobPirate, Home: home} }

// GoalKind is the tag of a ship's current goal.
type GoalKind uint8

const (
	GoalVisit  GoalKind = iota // Fly to a body
	GoalWait                   // Docked at a body while Progress runs
	GoalWander                 // Pirate patrol
	GoalScan                   // Pirate looks for prey
	GoalHunt                   // Pirate chases and raids prey
)

func (k GoalKind) String() string {
	switch k {
	case GoalVisit:
		return "visit"
	case GoalWait:
		return "wait"
	case GoalWander:
		return "wander"
	case GoalScan:
		return "scan"
	case GoalHunt:
		return "hunt"
	default:
		return fmt.Sprintf("goal(%d)", uint8(k))
	}
}

// Goal is a tagged variant. Target is a body index for Visit and Wait;
// Prey is a ship index for Scan and Hunt. Progress counts ticks spent
// waiting or raiding. Engaged is set once a hunter has been within raid
// range of its prey.
type Goal struct {
	Kind     GoalKind `json:"kind"`
	Target   int      `json:"target"`
	Prey     int      `json:"prey"`
	Progress int      `json:"progress"`
	Engaged  bool     `json:"engaged,omitempty"`
}

func Visit(target int) Goal { return Goal{Kind: GoalVisit, Target: target, Prey: NoPrey} }

func Wait(target, progress int) Goal {
	return Goal{Kind: GoalWait, Target: target, Prey: NoPrey, Progress: progress}
}

func Wander() Goal { return Goal{Kind: GoalWander, Target: -1, Prey: NoPrey} }

func Scan(prey int) Goal { return Goal{Kind: GoalScan, Target: -1, Prey: prey} }

func Hunt(prey, progress int) Goal {
	return Goal{Kind: GoalHunt, Target: -1, Prey: prey, Progress: progress}
}

// Ship is a single autonomous vessel.
type Ship struct {
	Pos          geom.Point `json:"pos"`
	Speed        float64    `json:"speed"`         // Fraction of the remaining distance covered per tick
	InitialSpeed float64    `json:"initial_speed"` // Restored on arrival
	Heading      float64    `json:"heading"`       // Radians
	Job          Job        `json:"job"`
	Goal         Goal       `json:"goal"`
}

// New returns a ship at pos whose speed starts at speed.
func New(job Job, pos geom.Point, speed float64, goal Goal) Ship {
	return Ship{
		Pos:          pos,
		Speed:        speed,
		InitialSpeed: speed,
		Job:          job,
		Goal:         goal,
	}
}

// HasCargo reports whether the ship is a trader carrying a unit.
func (s *Ship) HasCargo() bool {
	return s.Job.Kind == JobTrader && s.Job.Cargo
}

// Event is a notable ship occurrence. The engine stamps it with a tick.
type Event struct {
	Category    string `json:"category"` // "trade", "mining", "raid", "escape", "kill", "spawn"
	Description string `json:"description"`
}

// RandomSpeed draws a ship's starting speed around base.
func RandomSpeed(rng *rand.Rand, base float64) float64 {
	return base * (0.5 + rng.Float64())
}
