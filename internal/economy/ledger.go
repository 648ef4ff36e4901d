package economy

import (
	"github.com/talgya/orrery/internal/ships"
	"github.com/talgya/orrery/internal/system"
)

// Ledger totals the units in the economy. Without raids, spawns and mining
// deliveries, Total stays constant from tick to tick.
type Ledger struct {
	StationStock int `json:"station_stock"`
	InFlight     int `json:"in_flight"` // One unit per trader carrying cargo
	Total        int `json:"total"`
	Stations     int `json:"stations"`
	Richest      int `json:"richest"` // Body index of the station with the most stock, -1 if none
}

// Tally counts station stock and trader cargo.
func Tally(sys *system.System, fleet *ships.Fleet) Ledger {
	l := Ledger{Richest: -1}
	best := -1
	for _, st := range sys.Stations() {
		stock := sys.Body(st).Stock()
		l.StationStock += stock
		l.Stations++
		if stock > best {
			best = stock
			l.Richest = st
		}
	}
	for i := range fleet.Ships {
		if fleet.Ships[i].HasCargo() {
			l.InFlight++
		}
	}
	l.Total = l.StationStock + l.InFlight
	return l
}
