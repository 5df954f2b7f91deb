package routing

import (
	"time"

	"github.com/ttpr0/go-raptor/comps"
	"github.com/ttpr0/go-raptor/structs"
	. "github.com/ttpr0/go-raptor/util"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

//*******************************************
// raptor options
//*******************************************

type RaptorOptions struct {
	// maximum number of boarded trips
	MaxTrips int
	// added when changing trips at the same stop
	ChangeTime structs.Time
	// added when walking to another stop
	TransferTime structs.Time
}

func DefaultRaptorOptions() RaptorOptions {
	return RaptorOptions{
		MaxTrips:     5,
		ChangeTime:   30,
		TransferTime: 120,
	}
}

//*******************************************
// raptor
//*******************************************

type flag_r struct {
	best             structs.Time
	best_trip        int32
	transferred_from int32
	marked           bool
}

// leg_r is the ride improving a stop in a round, from and to are positions
// on the route of trip.
type leg_r struct {
	trip int32
	from int32
	to   int32
}

// Raptor computes earliest arrivals in rounds, round k allows k boarded
// trips.
//
// All search state is owned by the Raptor instance, the timetable is only read.
type Raptor struct {
	timetable *comps.Timetable
	endpoints *comps.Endpoints
	departure structs.Time
	options   RaptorOptions

	flags Array[flag_r]
	// stop*(K+1)+k -> earliest arrival with at most k trips
	arrivals Array[structs.Time]
	// stop*(K+1)+k -> ride improving the stop in round k
	round_legs Array[leg_r]
	// stop*(K+1)+k -> stop the footpath improving the stop in round k starts at
	round_transfers Array[int32]
	// trip -> stop the trip was boarded at
	boarding Array[int32]

	marked     List[int32]
	rounds_run int

	OnRound func(k int)
}

func NewRaptor(tt *comps.Timetable, endpoints *comps.Endpoints, departure structs.Time, options RaptorOptions) *Raptor {
	stop_count := endpoints.StopCount()
	rounds := options.MaxTrips + 1

	flags := NewArray[flag_r](stop_count)
	for i := 0; i < stop_count; i++ {
		flags[i] = flag_r{
			best:             structs.INF_TIME,
			best_trip:        -1,
			transferred_from: -1,
		}
	}
	arrivals := NewArray[structs.Time](stop_count * rounds)
	arrivals.Fill(structs.INF_TIME)
	round_legs := NewArray[leg_r](stop_count * rounds)
	round_legs.Fill(leg_r{trip: -1, from: -1, to: -1})
	round_transfers := NewArray[int32](stop_count * rounds)
	round_transfers.Fill(-1)
	boarding := NewArray[int32](tt.TripCount())
	boarding.Fill(-1)

	return &Raptor{
		timetable:       tt,
		endpoints:       endpoints,
		departure:       departure,
		options:         options,
		flags:           flags,
		arrivals:        arrivals,
		round_legs:      round_legs,
		round_transfers: round_transfers,
		boarding:        boarding,
		marked:          NewList[int32](100),
	}
}

func (self *Raptor) index(stop int32, k int) int {
	return int(stop)*(self.options.MaxTrips+1) + k
}

func (self *Raptor) mark(stop int32) {
	if self.flags[stop].marked {
		return
	}
	self.flags[stop].marked = true
	self.marked.Add(stop)
}

// CalcShortestPath runs all rounds and reports whether the target was
// reached.
func (self *Raptor) CalcShortestPath() bool {
	start := time.Now()
	self.initialize()

	routes_to_scan := NewDict[int32, int32](100)
	for k := 1; k <= self.options.MaxTrips; k++ {
		self.collectRoutes(routes_to_scan)
		self.scanRoutes(routes_to_scan, k)
		self.scanTransfers(k)
		self.rounds_run = k

		slog.Debug("raptor round", "k", k, "routes", routes_to_scan.Length(), "marked", self.marked.Length())
		if self.OnRound != nil {
			self.OnRound(k)
		}
		if self.marked.Length() == 0 {
			break
		}
	}

	target := self.endpoints.Target()
	slog.Debug("raptor finished", "rounds", self.rounds_run, "arrival", self.flags[target].best.String(), "took", time.Since(start).String())
	return self.flags[target].best != structs.INF_TIME
}

// initialize seeds the source and every stop reachable by its footpaths
// with the departure time.
func (self *Raptor) initialize() {
	source := self.endpoints.Source()
	self.arrivals[self.index(source, 0)] = self.departure
	self.flags[source].best = self.departure

	for _, stop := range self.endpoints.GetTransfers(source) {
		self.arrivals[self.index(stop, 0)] = self.departure
		self.flags[stop].best = self.departure
		self.flags[stop].transferred_from = source
		self.mark(stop)
	}
}

// collectRoutes selects for every route serving a marked stop the marked
// stop earliest on the route. All stops are unmarked.
func (self *Raptor) collectRoutes(routes_to_scan Dict[int32, int32]) {
	clear(routes_to_scan)
	slices.Sort(self.marked)
	for _, stop := range self.marked {
		for _, route := range self.endpoints.GetStopRoutes(stop) {
			first_stop, ok := routes_to_scan[route]
			if !ok || self.timetable.IsEarlierOnRoute(route, stop, first_stop) {
				routes_to_scan[route] = stop
			}
		}
		self.flags[stop].marked = false
	}
	self.marked.Clear()
}

func (self *Raptor) scanRoutes(routes_to_scan Dict[int32, int32], k int) {
	target := self.endpoints.Target()
	source := self.endpoints.Source()

	routes := routes_to_scan.Keys()
	slices.Sort(routes)
	for _, route := range routes {
		first_stop := routes_to_scan[route]
		stops := self.timetable.GetRouteStops(route)
		trips := self.timetable.GetRouteTrips(route)
		first, _ := self.timetable.StopIndexOnRoute(route, first_stop)

		curr_trip := int32(-1)
		curr_board := int32(-1)
		for i := first; i < stops.Length(); i++ {
			stop := stops[i]

			if curr_trip != -1 {
				arrival := self.timetable.GetTrip(curr_trip).GetArrival(i)
				// target pruning
				if arrival < structs.MinTime(self.flags[stop].best, self.flags[target].best) {
					self.arrivals[self.index(stop, k)] = arrival
					self.flags[stop].best = arrival
					self.flags[stop].best_trip = curr_trip
					self.round_legs[self.index(stop, k)] = leg_r{trip: curr_trip, from: curr_board, to: int32(i)}
					self.mark(stop)
				}
			}

			board_time := self.arrivals[self.index(stop, k-1)]
			if k > 1 {
				board_time = structs.AddTime(board_time, self.options.ChangeTime)
			}

			// earliest trip departing at or after board_time
			pos, _ := slices.BinarySearchFunc(trips, board_time, func(trip int32, t structs.Time) int {
				departure := self.timetable.GetTrip(trip).GetDeparture(i)
				switch {
				case departure < t:
					return -1
				case departure > t:
					return 1
				default:
					return 0
				}
			})
			if pos == trips.Length() {
				continue
			}
			trip := trips[pos]
			if curr_trip != -1 && self.timetable.GetTrip(trip).GetDeparture(i) >= self.timetable.GetTrip(curr_trip).GetDeparture(i) {
				continue
			}
			curr_trip = trip
			curr_board = int32(i)

			boarding_stop := self.boarding[trip]
			if boarding_stop == -1 || (self.flags[stop].transferred_from == source && self.timetable.IsEarlierOnRoute(route, stop, boarding_stop)) {
				self.boarding[trip] = stop
			}
		}
	}
}

// scanTransfers relaxes the footpaths of all stops improved by a trip in
// round k. In the last round only footpaths into the target are used.
func (self *Raptor) scanTransfers(k int) {
	slices.Sort(self.marked)
	from_stops := slices.Clone(self.marked)

	for _, from := range from_stops {
		for _, to := range self.endpoints.GetTransfers(from) {
			if k >= self.options.MaxTrips && !self.endpoints.IsArtificial(to) {
				continue
			}
			arrival := structs.AddTime(self.arrivals[self.index(from, k)], self.options.TransferTime)
			index := self.index(to, k)
			if arrival < self.arrivals[index] {
				self.arrivals[index] = arrival
				self.round_transfers[index] = from
			}
			if self.arrivals[index] < self.flags[to].best {
				self.flags[to].best = self.arrivals[index]
				self.flags[to].transferred_from = from
				self.mark(to)
			}
		}
	}
}

//*******************************************
// search state
//*******************************************

func (self *Raptor) Endpoints() *comps.Endpoints {
	return self.endpoints
}
func (self *Raptor) Options() RaptorOptions {
	return self.options
}
func (self *Raptor) Departure() structs.Time {
	return self.departure
}

// RoundsRun returns the number of rounds executed by the last search.
func (self *Raptor) RoundsRun() int {
	return self.rounds_run
}

func (self *Raptor) GetBestArrival(stop int32) structs.Time {
	return self.flags[stop].best
}

// GetArrival returns the earliest arrival at stop found in round k.
func (self *Raptor) GetArrival(stop int32, k int) structs.Time {
	return self.arrivals[self.index(stop, k)]
}

func (self *Raptor) GetTransferredFrom(stop int32) Optional[int32] {
	if from := self.flags[stop].transferred_from; from != -1 {
		return Some(from)
	}
	return None[int32]()
}

func (self *Raptor) GetBestTrip(stop int32) Optional[int32] {
	if trip := self.flags[stop].best_trip; trip != -1 {
		return Some(trip)
	}
	return None[int32]()
}

// GetRoundTrip returns the trip improving stop in round k.
func (self *Raptor) GetRoundTrip(stop int32, k int) Optional[int32] {
	if trip := self.round_legs[self.index(stop, k)].trip; trip != -1 {
		return Some(trip)
	}
	return None[int32]()
}

// GetBoardingStop returns the stop trip was first boarded at. A later
// boarding replaces it only at an earlier stop fed from the source.
func (self *Raptor) GetBoardingStop(trip int32) Optional[int32] {
	if stop := self.boarding[trip]; stop != -1 {
		return Some(stop)
	}
	return None[int32]()
}
