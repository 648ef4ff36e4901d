// Package economy provides the station economy: trader spawning funded by
// station stock, and the ledger used to check that units are conserved.
package economy

import (
	"math/rand"

	"github.com/talgya/orrery/internal/ships"
	"github.com/talgya/orrery/internal/system"
)

// Params tunes the station economy.
type Params struct {
	TraderCost    int     // Stock a station spends to launch a trader
	ShipBaseSpeed float64 // Median starting speed of new ships
}

// SpawnTraders launches one empty trader from every station whose stock
// exceeds the trader cost, paying the cost from that stock. New traders
// start at the station with a visit goal targeting it, so they pick a real
// destination on their first step. Returns the new ship indices.
func SpawnTraders(sys *system.System, fleet *ships.Fleet, p Params, rng *rand.Rand) []int {
	var spawned []int
	for _, st := range sys.Stations() {
		b := sys.Body(st)
		if b.Stock() <= p.TraderCost {
			continue
		}
		b.Withdraw(p.TraderCost)
		ship := ships.New(ships.Trader(false), b.Pos, ships.RandomSpeed(rng, p.ShipBaseSpeed), ships.Visit(st))
		spawned = append(spawned, fleet.Add(ship))
	}
	return spawned
}
