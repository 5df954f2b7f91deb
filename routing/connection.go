package routing

import (
	"errors"
	"fmt"

	"github.com/ttpr0/go-raptor/structs"
	. "github.com/ttpr0/go-raptor/util"
)

var (
	ErrNoConnection     = errors.New("no connection found")
	ErrBrokenConnection = errors.New("search state does not describe a connection")
)

//*******************************************
// connection
//*******************************************

// Leg is a ride on a single trip.
type Leg struct {
	Trip  int32
	Route int32
	// boarding stop
	From int32
	// alighting stop
	To        int32
	Departure structs.Time
	Arrival   structs.Time
}

// Connection holds the legs of an itinerary in travel order.
//
// Departure is the requested departure time, Arrival the arrival at the
// target including the final footpath.
type Connection struct {
	Legs      List[Leg]
	Departure structs.Time
	Arrival   structs.Time
}

func (self Connection) LegCount() int {
	return self.Legs.Length()
}

// GetConnection walks the search state back from the target.
//
// The target is left in the first round reaching its best arrival. In
// every round the stop is reached either by a ride recorded in that round
// or by a footpath from such a stop, the boarding stop of the ride is
// then looked up one round earlier.
func (self *Raptor) GetConnection() (Connection, error) {
	target := self.endpoints.Target()
	best := self.flags[target].best
	if best == structs.INF_TIME {
		return Connection{}, ErrNoConnection
	}

	k := 1
	for k <= self.options.MaxTrips && self.arrivals[self.index(target, k)] != best {
		k++
	}
	if k > self.options.MaxTrips {
		return Connection{}, fmt.Errorf("best arrival at target not found in any round: %w", ErrBrokenConnection)
	}
	stop := self.round_transfers[self.index(target, k)]
	if stop == -1 {
		return Connection{}, fmt.Errorf("target in round %v: %w", k, ErrBrokenConnection)
	}

	legs := NewList[Leg](k)
	for ; k > 0; k-- {
		ride := self.round_legs[self.index(stop, k)]
		if ride.trip == -1 {
			return Connection{}, fmt.Errorf("no trip recorded at stop %v in round %v: %w", stop, k, ErrBrokenConnection)
		}
		if ride.from < 0 || ride.from >= ride.to {
			return Connection{}, fmt.Errorf("trip %v boarded at position %v, left at %v: %w", ride.trip, ride.from, ride.to, ErrBrokenConnection)
		}
		leg := self.makeLeg(ride)
		if legs.Length() > 0 && leg.Arrival > legs.Last().Departure {
			return Connection{}, fmt.Errorf("trip %v arrives after trip %v departs: %w", leg.Trip, legs.Last().Trip, ErrBrokenConnection)
		}
		legs.Add(leg)

		stop = leg.From
		if k == 1 {
			if self.arrivals[self.index(stop, 0)] == structs.INF_TIME {
				return Connection{}, fmt.Errorf("stop %v is not reached from the source: %w", stop, ErrBrokenConnection)
			}
			break
		}
		if from := self.round_transfers[self.index(stop, k-1)]; from != -1 {
			stop = from
		}
	}
	legs.Reverse()

	return Connection{
		Legs:      legs,
		Departure: self.departure,
		Arrival:   best,
	}, nil
}

func (self *Raptor) makeLeg(ride leg_r) Leg {
	t := self.timetable.GetTrip(ride.trip)
	stops := self.timetable.GetRouteStops(t.Route)
	return Leg{
		Trip:      ride.trip,
		Route:     t.Route,
		From:      stops[ride.from],
		To:        stops[ride.to],
		Departure: t.GetDeparture(int(ride.from)),
		Arrival:   t.GetArrival(int(ride.to)),
	}
}
