package comps

import (
	"github.com/ttpr0/go-raptor/structs"
	. "github.com/ttpr0/go-raptor/util"
	"golang.org/x/exp/slices"
)

//*******************************************
// timetable
//*******************************************

// Timetable owns all stops, routes and trips together with the
// derived route orderings and the transfer relation.
//
// A built timetable is never modified, all query state lives outside of it.
type Timetable struct {
	stops  Array[structs.Stop]
	routes Array[structs.Route]
	trips  Array[structs.Trip]

	// route -> stops in driving order
	route_stops Array[Array[int32]]
	// route -> trips sorted by departure
	route_trips Array[Array[int32]]
	// route -> stop -> position of the stop on the route
	route_index Array[Dict[int32, int]]
	// stop -> routes serving the stop
	stop_routes Array[List[int32]]
	// stop -> stops reachable by footpath
	transfers Array[List[int32]]

	name_index   Dict[string, List[int32]]
	source_stops Dict[int64, int32]
}

func (self *Timetable) StopCount() int {
	return self.stops.Length()
}
func (self *Timetable) RouteCount() int {
	return self.routes.Length()
}
func (self *Timetable) TripCount() int {
	return self.trips.Length()
}
func (self *Timetable) GetStop(stop int32) structs.Stop {
	return self.stops[stop]
}
func (self *Timetable) GetRoute(route int32) structs.Route {
	return self.routes[route]
}
func (self *Timetable) GetTrip(trip int32) *structs.Trip {
	return &self.trips[trip]
}

// GetStopRoutes returns the routes serving stop in ingestion order.
func (self *Timetable) GetStopRoutes(stop int32) List[int32] {
	return self.stop_routes[stop]
}
func (self *Timetable) GetRouteStops(route int32) Array[int32] {
	return self.route_stops[route]
}

// GetRouteTrips returns the trips of route sorted ascending by departure.
func (self *Timetable) GetRouteTrips(route int32) Array[int32] {
	return self.route_trips[route]
}

// StopIndexOnRoute returns the position of stop on route.
//
// If the stop is visited several times the first position is returned.
func (self *Timetable) StopIndexOnRoute(route, stop int32) (int, bool) {
	index, ok := self.route_index[route][stop]
	return index, ok
}

// IsEarlierOnRoute reports whether s1 comes before s2 on route.
// Both stops have to be served by the route.
func (self *Timetable) IsEarlierOnRoute(route, s1, s2 int32) bool {
	i1, _ := self.StopIndexOnRoute(route, s1)
	i2, _ := self.StopIndexOnRoute(route, s2)
	return i1 < i2
}

func (self *Timetable) GetTransfers(stop int32) List[int32] {
	return self.transfers[stop]
}

func (self *Timetable) GetStopsByName(name string) List[int32] {
	return self.name_index[name]
}

func (self *Timetable) HasStopName(name string) bool {
	return self.name_index.ContainsKey(name)
}

// StopNames returns all distinct stop names sorted alphabetically.
func (self *Timetable) StopNames() List[string] {
	names := self.name_index.Keys()
	slices.Sort(names)
	return names
}

func (self *Timetable) FindStopBySourceID(id int64) Optional[int32] {
	if stop, ok := self.source_stops[id]; ok {
		return Some(stop)
	}
	return None[int32]()
}
