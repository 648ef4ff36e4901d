// Simulation ties the star system, the fleet and the economy together and
// advances them one tick at a time.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/talgya/orrery/internal/config"
	"github.com/talgya/orrery/internal/economy"
	"github.com/talgya/orrery/internal/entropy"
	"github.com/talgya/orrery/internal/geom"
	"github.com/talgya/orrery/internal/ships"
	"github.com/talgya/orrery/internal/system"
)

// MaxEvents is the size of the in-memory event ring.
const MaxEvents = 1000

// Simulation holds the complete state. Update takes the write lock; the
// read-only accessors take the read lock, so API goroutines can observe a
// running simulation.
type Simulation struct {
	mu sync.RWMutex

	System      *system.System
	Fleet       *ships.Fleet
	Rng         *rand.Rand
	Seed        int64
	Fingerprint string // Structure digest, fixed for the run
	LastTick    uint64

	Events []Event // Most recent MaxEvents events
	Stats  Stats

	fresh []Event // Events not yet taken by TakeEvents
	world ships.World
	econ  economy.Params
}

// Event is a notable occurrence in the simulation.
type Event struct {
	Tick        uint64 `json:"tick"`
	Description string `json:"description"`
	Category    string `json:"category"` // "trade", "mining", "raid", "escape", "kill", "spawn"
}

// Stats tracks fleet and economy aggregates. Counters are cumulative.
type Stats struct {
	Tick         uint64 `json:"tick" db:"tick"`
	Ships        int    `json:"ships" db:"ships"`
	Miners       int    `json:"miners" db:"miners"`
	Traders      int    `json:"traders" db:"traders"`
	Pirates      int    `json:"pirates" db:"pirates"`
	Hunting      int    `json:"hunting" db:"hunting"`
	StationStock int    `json:"station_stock" db:"station_stock"`
	InFlight     int    `json:"in_flight" db:"in_flight"`
	Spawned      int    `json:"spawned" db:"spawned"`
	Deliveries   int    `json:"deliveries" db:"deliveries"`
	Raids        int    `json:"raids" db:"raids"`
	Kills        int    `json:"kills" db:"kills"`
}

// New generates a system from seed and populates it with the configured
// miners and pirates. Generation errors, including system.ErrSystemTooSmall,
// are returned wrapped.
func New(cfg config.SimConfig, seed int64) (*Simulation, error) {
	rng := entropy.New(seed)
	sys, err := system.Generate(cfg.GenConfig(), rng)
	if err != nil {
		return nil, fmt.Errorf("new simulation (seed %d): %w", seed, err)
	}
	sim := NewFromSystem(sys, cfg, rng)
	sim.Seed = seed
	return sim, nil
}

// NewFromSystem wraps an existing system, for scripted scenarios. Miners
// start at a random station heading for the nearest ore; pirates start at
// a random home inside the system and patrol around it.
func NewFromSystem(sys *system.System, cfg config.SimConfig, rng *rand.Rand) *Simulation {
	fleet := &ships.Fleet{}
	stations := sys.Stations()
	for n := 0; n < cfg.MinerCount; n++ {
		st, _ := entropy.Pick(rng, stations)
		pos := sys.Body(st).Pos
		ore, _ := sys.NearestOne(system.FeatureOre, pos)
		fleet.Add(ships.New(ships.Miner(), pos, ships.RandomSpeed(rng, cfg.ShipBaseSpeed), ships.Visit(ore)))
	}
	for n := 0; n < cfg.PirateCount; n++ {
		home := geom.Polar(rng.Float64()*sys.Radius, rng.Float64()*geom.Tau)
		s := ships.New(ships.Pirate(home), home, ships.RandomSpeed(rng, cfg.ShipBaseSpeed), ships.Wander())
		s.Heading = rng.Float64() * geom.Tau
		fleet.Add(s)
	}

	sim := &Simulation{
		System:      sys,
		Fleet:       fleet,
		Rng:         rng,
		Fingerprint: system.Fingerprint(sys),
		econ:        cfg.EconomyParams(),
	}
	sim.world = ships.World{System: sys, Fleet: fleet, Rng: rng, Params: cfg.ShipParams()}
	sim.updateStats()
	return sim
}

// Update advances the simulation by one tick: orbits, trader spawns, every
// ship in registry order (fresh spawns included), then deferred removals.
func (s *Simulation) Update() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.LastTick++
	s.System.Advance()

	for _, i := range economy.SpawnTraders(s.System, s.Fleet, s.econ, s.Rng) {
		s.Stats.Spawned++
		s.record("spawn", fmt.Sprintf("trader %d launched", i))
	}

	for i := 0; i < s.Fleet.Len(); i++ {
		for _, ev := range s.world.Step(i) {
			switch ev.Category {
			case "mining":
				s.Stats.Deliveries++
			case "raid":
				s.Stats.Raids++
			}
			s.record(ev.Category, ev.Description)
		}
	}

	if killed := s.Fleet.Reap(); len(killed) > 0 {
		s.Stats.Kills += len(killed)
		slog.Debug("ships destroyed", "tick", s.LastTick, "count", len(killed))
	}

	if len(s.Events) > MaxEvents {
		s.Events = append(s.Events[:0:0], s.Events[len(s.Events)-MaxEvents:]...)
	}
	s.updateStats()
}

func (s *Simulation) record(category, desc string) {
	ev := Event{Tick: s.LastTick, Description: desc, Category: category}
	s.Events = append(s.Events, ev)
	s.fresh = append(s.fresh, ev)
}

// TakeEvents returns the events recorded since the previous call.
func (s *Simulation) TakeEvents() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.fresh
	s.fresh = nil
	return out
}

// RecentEvents returns up to n of the latest events, newest last.
func (s *Simulation) RecentEvents(n int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || n > len(s.Events) {
		n = len(s.Events)
	}
	out := make([]Event, n)
	copy(out, s.Events[len(s.Events)-n:])
	return out
}

// CurrentStats returns a copy of the aggregate statistics.
func (s *Simulation) CurrentStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Stats
}

// CurrentTick returns the most recently processed tick number.
func (s *Simulation) CurrentTick() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastTick
}

func (s *Simulation) updateStats() {
	st := &s.Stats
	st.Tick = s.LastTick
	st.Ships = s.Fleet.Len()
	st.Miners = s.Fleet.Count(ships.JobMiner)
	st.Traders = s.Fleet.Count(ships.JobTrader)
	st.Pirates = s.Fleet.Count(ships.JobPirate)
	st.Hunting = 0
	for i := range s.Fleet.Ships {
		if s.Fleet.Ships[i].Goal.Kind == ships.GoalHunt {
			st.Hunting++
		}
	}
	l := economy.Tally(s.System, s.Fleet)
	st.StationStock = l.StationStock
	st.InFlight = l.InFlight
}
