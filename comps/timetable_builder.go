package comps

import (
	"errors"
	"fmt"
	"time"

	"github.com/ttpr0/go-raptor/structs"
	. "github.com/ttpr0/go-raptor/util"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

var (
	ErrDuplicateID       = errors.New("duplicate id")
	ErrUnknownRoute      = errors.New("unknown route id")
	ErrUnknownTrip       = errors.New("unknown trip id")
	ErrUnknownStop       = errors.New("unknown stop id")
	ErrNonContiguousTrip = errors.New("stop times of trip are not contiguous")
	ErrTripShape         = errors.New("trip does not match the stop sequence of its route")
	ErrUnsortedTrips     = errors.New("trips of route are not sorted by departure")
)

//*******************************************
// timetable builder
//*******************************************

// TimetableBuilder collects ingested rows and builds an immutable Timetable.
//
// Rows have to be added in order: stops, routes, trips, stop times.
// The stop sequence of a route is taken from the first of its trips whose
// stop times are added.
type TimetableBuilder struct {
	stops  List[structs.Stop]
	routes List[structs.Route]
	trips  List[structs.Trip]

	stop_ids  Dict[int64, int32]
	route_ids Dict[int64, int32]
	trip_ids  Dict[int64, int32]

	route_stops List[List[int32]]
	route_trips List[List[int32]]
	stop_routes List[List[int32]]

	scanned_trip int32
	add_stops    bool
}

func NewTimetableBuilder() *TimetableBuilder {
	return &TimetableBuilder{
		stops:        NewList[structs.Stop](100),
		routes:       NewList[structs.Route](10),
		trips:        NewList[structs.Trip](100),
		stop_ids:     NewDict[int64, int32](100),
		route_ids:    NewDict[int64, int32](10),
		trip_ids:     NewDict[int64, int32](100),
		route_stops:  NewList[List[int32]](10),
		route_trips:  NewList[List[int32]](10),
		stop_routes:  NewList[List[int32]](100),
		scanned_trip: -1,
	}
}

func (self *TimetableBuilder) AddStop(id int64, name string) error {
	if self.stop_ids.ContainsKey(id) {
		return fmt.Errorf("stop %v: %w", id, ErrDuplicateID)
	}
	stop := int32(self.stops.Length())
	self.stops.Add(structs.Stop{ID: stop, SourceID: id, Name: name})
	self.stop_routes.Add(nil)
	self.stop_ids[id] = stop
	return nil
}

func (self *TimetableBuilder) AddRoute(id int64, name string, typ int32) error {
	if self.route_ids.ContainsKey(id) {
		return fmt.Errorf("route %v: %w", id, ErrDuplicateID)
	}
	route := int32(self.routes.Length())
	self.routes.Add(structs.Route{ID: route, SourceID: id, Name: name, Type: typ})
	self.route_stops.Add(nil)
	self.route_trips.Add(nil)
	self.route_ids[id] = route
	return nil
}

func (self *TimetableBuilder) AddTrip(id int64, route_id int64, headsign string, direction int32) error {
	if self.trip_ids.ContainsKey(id) {
		return fmt.Errorf("trip %v: %w", id, ErrDuplicateID)
	}
	route, ok := self.route_ids[route_id]
	if !ok {
		return fmt.Errorf("trip %v references route %v: %w", id, route_id, ErrUnknownRoute)
	}
	trip := int32(self.trips.Length())
	self.trips.Add(structs.Trip{
		ID:        trip,
		SourceID:  id,
		Route:     route,
		Headsign:  headsign,
		Direction: direction,
	})
	self.route_trips[route].Add(trip)
	self.trip_ids[id] = trip
	return nil
}

func (self *TimetableBuilder) AddStopTime(trip_id int64, arrival, departure structs.Time, stop_id int64) error {
	trip, ok := self.trip_ids[trip_id]
	if !ok {
		return fmt.Errorf("stop time references trip %v: %w", trip_id, ErrUnknownTrip)
	}
	stop, ok := self.stop_ids[stop_id]
	if !ok {
		return fmt.Errorf("stop time of trip %v references stop %v: %w", trip_id, stop_id, ErrUnknownStop)
	}
	t := &self.trips[trip]
	route := t.Route

	if trip != self.scanned_trip {
		if t.StopCount() > 0 {
			return fmt.Errorf("trip %v: %w", trip_id, ErrNonContiguousTrip)
		}
		self.scanned_trip = trip
		// first trip seen on this route defines its stop sequence
		self.add_stops = self.route_stops[route].Length() == 0
	}
	if !self.add_stops {
		route_stops := self.route_stops[route]
		pos := t.StopCount()
		if pos >= route_stops.Length() || route_stops[pos] != stop {
			return fmt.Errorf("trip %v, stop %v at position %v: %w", trip_id, stop_id, pos, ErrTripShape)
		}
	}

	t.Arrivals = append(t.Arrivals, arrival)
	t.Departures = append(t.Departures, departure)

	if !slices.Contains(self.stop_routes[stop], route) {
		self.stop_routes[stop].Add(route)
	}
	if self.add_stops {
		self.route_stops[route].Add(stop)
	}
	return nil
}

// Build sorts the trips of every route, checks the timetable invariants
// and derives the transfer relation.
func (self *TimetableBuilder) Build() (*Timetable, error) {
	start := time.Now()

	route_stops := NewArray[Array[int32]](self.routes.Length())
	route_trips := NewArray[Array[int32]](self.routes.Length())
	route_index := NewArray[Dict[int32, int]](self.routes.Length())
	for i := 0; i < self.routes.Length(); i++ {
		stops := Array[int32](self.route_stops[i])
		index := NewDict[int32, int](stops.Length())
		for pos, stop := range stops {
			if !index.ContainsKey(stop) {
				index[stop] = pos
			}
		}
		trips, err := self.sortRouteTrips(int32(i), stops.Length())
		if err != nil {
			return nil, err
		}
		route_stops[i] = stops
		route_trips[i] = trips
		route_index[i] = index
	}

	name_index := NewDict[string, List[int32]](self.stops.Length())
	source_stops := NewDict[int64, int32](self.stops.Length())
	for _, stop := range self.stops {
		clustered := name_index[stop.Name]
		clustered.Add(stop.ID)
		name_index[stop.Name] = clustered
		source_stops[stop.SourceID] = stop.ID
	}

	stop_routes := NewArray[List[int32]](self.stops.Length())
	copy(stop_routes, self.stop_routes)

	timetable := &Timetable{
		stops:        Array[structs.Stop](self.stops),
		routes:       Array[structs.Route](self.routes),
		trips:        Array[structs.Trip](self.trips),
		route_stops:  route_stops,
		route_trips:  route_trips,
		route_index:  route_index,
		stop_routes:  stop_routes,
		transfers:    buildTransfers(self.stops, name_index),
		name_index:   name_index,
		source_stops: source_stops,
	}
	slog.Info("built timetable",
		"stops", timetable.StopCount(),
		"routes", timetable.RouteCount(),
		"trips", timetable.TripCount(),
		"took", time.Since(start).String(),
	)
	return timetable, nil
}

// sortRouteTrips orders the trips of route by departure and validates
// that departures are non-decreasing at every stop of the route.
func (self *TimetableBuilder) sortRouteTrips(route int32, stop_count int) (Array[int32], error) {
	trips := NewList[int32](self.route_trips[route].Length())
	for _, trip := range self.route_trips[route] {
		t := &self.trips[trip]
		if t.StopCount() == 0 {
			slog.Debug("skipping trip without stop times", "trip", t.SourceID)
			continue
		}
		if t.StopCount() != stop_count {
			return nil, fmt.Errorf("trip %v has %v stop times, route %v has %v stops: %w",
				t.SourceID, t.StopCount(), self.routes[route].SourceID, stop_count, ErrTripShape)
		}
		trips.Add(trip)
	}
	slices.SortStableFunc(trips, func(a, b int32) int {
		return int(self.trips[a].GetDeparture(0)) - int(self.trips[b].GetDeparture(0))
	})
	for j := 1; j < trips.Length(); j++ {
		prev := &self.trips[trips[j-1]]
		curr := &self.trips[trips[j]]
		for i := 0; i < stop_count; i++ {
			if curr.GetDeparture(i) < prev.GetDeparture(i) {
				return nil, fmt.Errorf("route %v, trips %v and %v at stop index %v: %w",
					self.routes[route].SourceID, prev.SourceID, curr.SourceID, i, ErrUnsortedTrips)
			}
		}
	}
	return Array[int32](trips), nil
}

// buildTransfers connects every pair of distinct stops sharing a name.
func buildTransfers(stops List[structs.Stop], name_index Dict[string, List[int32]]) Array[List[int32]] {
	transfers := NewArray[List[int32]](stops.Length())
	count := 0
	for _, stop := range stops {
		for _, other := range name_index[stop.Name] {
			if other == stop.ID {
				continue
			}
			transfers[stop.ID].Add(other)
			count += 1
		}
	}
	slog.Debug("created transfers", "count", count)
	return transfers
}
