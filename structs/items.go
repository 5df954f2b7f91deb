package structs

//*******************************************
// timetable structs
//*******************************************

// Stop is a single physical stop. Several stops may share a name,
// stops are only equal if their ids are.
type Stop struct {
	ID         int32
	SourceID   int64
	Name       string
	Artificial bool
}

type Route struct {
	ID       int32
	SourceID int64
	Name     string
	Type     int32
}

// Trip is a single vehicle run along its route.
//
// Arrivals[i] and Departures[i] belong to the i-th stop of the route.
type Trip struct {
	ID         int32
	SourceID   int64
	Route      int32
	Headsign   string
	Direction  int32
	Arrivals   []Time
	Departures []Time
}

func (self *Trip) GetArrival(index int) Time {
	return self.Arrivals[index]
}

func (self *Trip) GetDeparture(index int) Time {
	return self.Departures[index]
}

func (self *Trip) StopCount() int {
	return len(self.Arrivals)
}
