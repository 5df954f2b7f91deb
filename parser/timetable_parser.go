package parser

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ttpr0/go-raptor/comps"
	"github.com/ttpr0/go-raptor/structs"
	. "github.com/ttpr0/go-raptor/util"
	"golang.org/x/exp/slog"
)

//*******************************************
// timetable parser
//*******************************************

// SourceFiles names the four csv files of a timetable.
type SourceFiles struct {
	Dir       string
	Stops     string
	Routes    string
	Trips     string
	StopTimes string
	Delimiter rune
}

func DefaultSourceFiles(dir string) SourceFiles {
	return SourceFiles{
		Dir:       dir,
		Stops:     "stops.csv",
		Routes:    "routes.csv",
		Trips:     "trips.csv",
		StopTimes: "stop_times.csv",
		Delimiter: ',',
	}
}

func (self SourceFiles) Path(file string) string {
	return filepath.Join(self.Dir, file)
}

// Paths returns all source files in reading order.
func (self SourceFiles) Paths() List[string] {
	return List[string]{
		self.Path(self.Stops),
		self.Path(self.Routes),
		self.Path(self.Trips),
		self.Path(self.StopTimes),
	}
}

// ParseTimetable reads stops, routes, trips and stop times in this order
// and builds the timetable from them.
//
// Every file starts with a header line, all further lines are records.
// Stop times of a trip have to be contiguous.
func ParseTimetable(files SourceFiles) (*comps.Timetable, error) {
	start := time.Now()
	builder := comps.NewTimetableBuilder()

	stops, err := ReadCSVFromFile[StopRow](files.Path(files.Stops), files.Delimiter)
	if err != nil {
		return nil, fmt.Errorf("reading %v: %w", files.Stops, err)
	}
	for _, row := range stops {
		if err := builder.AddStop(row.ID, row.Name); err != nil {
			return nil, fmt.Errorf("%v: %w", files.Stops, err)
		}
	}
	slog.Debug("read stops", "count", stops.Length())

	routes, err := ReadCSVFromFile[RouteRow](files.Path(files.Routes), files.Delimiter)
	if err != nil {
		return nil, fmt.Errorf("reading %v: %w", files.Routes, err)
	}
	for _, row := range routes {
		if err := builder.AddRoute(row.ID, row.Name, row.Type); err != nil {
			return nil, fmt.Errorf("%v: %w", files.Routes, err)
		}
	}
	slog.Debug("read routes", "count", routes.Length())

	trips, err := ReadCSVFromFile[TripRow](files.Path(files.Trips), files.Delimiter)
	if err != nil {
		return nil, fmt.Errorf("reading %v: %w", files.Trips, err)
	}
	for _, row := range trips {
		if err := builder.AddTrip(row.ID, row.Route, row.Headsign, row.Direction); err != nil {
			return nil, fmt.Errorf("%v: %w", files.Trips, err)
		}
	}
	slog.Debug("read trips", "count", trips.Length())

	stop_times, err := ReadCSVFromFile[StopTimeRow](files.Path(files.StopTimes), files.Delimiter)
	if err != nil {
		return nil, fmt.Errorf("reading %v: %w", files.StopTimes, err)
	}
	for i, row := range stop_times {
		err := builder.AddStopTime(row.Trip, structs.Time(row.Arrival), structs.Time(row.Departure), row.Stop)
		if err != nil {
			return nil, fmt.Errorf("%v line %v: %w", files.StopTimes, i+2, err)
		}
	}
	slog.Debug("read stop times", "count", stop_times.Length())

	timetable, err := builder.Build()
	if err != nil {
		return nil, err
	}
	slog.Info("parsed timetable", "dir", files.Dir, "took", time.Since(start).String())
	return timetable, nil
}

//*******************************************
// csv rows
//*******************************************

type StopRow struct {
	ID   int64  `csv:"stop_id"`
	Name string `csv:"stop_name"`
}

type RouteRow struct {
	ID   int64  `csv:"route_id"`
	Name string `csv:"route_name"`
	Type int32  `csv:"route_type"`
}

type TripRow struct {
	ID        int64  `csv:"trip_id"`
	Route     int64  `csv:"route_id"`
	Headsign  string `csv:"trip_headsign"`
	Direction int32  `csv:"direction_id"`
}

type StopTimeRow struct {
	Trip      int64     `csv:"trip_id"`
	Arrival   ClockTime `csv:"arrival_time"`
	Departure ClockTime `csv:"departure_time"`
	Stop      int64     `csv:"stop_id"`
}

// ClockTime is a stop time field given either as seconds since midnight
// or as H:MM:SS.
type ClockTime structs.Time

func (self *ClockTime) UnmarshalCSV(value string) error {
	value = strings.TrimSpace(value)
	if strings.Contains(value, ":") {
		t, err := structs.ParseClock(value)
		if err != nil {
			return fmt.Errorf("%q: %w", value, err)
		}
		*self = ClockTime(t)
		return nil
	}
	seconds, err := strconv.ParseInt(value, 10, 32)
	if err != nil || seconds < 0 || seconds == int64(structs.INF_TIME) {
		return fmt.Errorf("%q: %w", value, structs.ErrInvalidTime)
	}
	*self = ClockTime(seconds)
	return nil
}
