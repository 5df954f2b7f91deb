package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ttpr0/go-raptor/comps"
	"github.com/ttpr0/go-raptor/structs"
)

var (
	PRETTY_TIME = structs.TimeFormat{RoundSeconds: true, WrapDay: true}
	DEBUG_TIME  = structs.TimeFormat{}
)

//**********************************************************
// connection output
//**********************************************************

// PrintConnection writes one line per leg, pretty output is rounded to
// minutes and wrapped to 24 hours.
func PrintConnection(out io.Writer, timetable *comps.Timetable, result *QueryResult, pretty bool) {
	if !result.Found {
		fmt.Fprintln(out, "No connection found!")
		return
	}
	for _, leg := range result.Connection.Legs {
		route := timetable.GetRoute(leg.Route)
		from := timetable.GetStop(leg.From)
		to := timetable.GetStop(leg.To)
		if pretty {
			fmt.Fprintf(out, "%v %v >> %v %v %v\n",
				structs.FormatTime(leg.Departure, PRETTY_TIME), from.Name,
				structs.FormatTime(leg.Arrival, PRETTY_TIME), to.Name, route.Name)
		} else {
			fmt.Fprintf(out, "Departure: %v %v %v %v\n", from.SourceID, from.Name, structs.FormatTime(leg.Departure, DEBUG_TIME), route.Name)
			fmt.Fprintf(out, "Arrival: %v %v %v %v\n", to.SourceID, to.Name, structs.FormatTime(leg.Arrival, DEBUG_TIME), route.Name)
		}
	}
}

type ConnectionResponse struct {
	ID        string        `json:"id"`
	From      string        `json:"from"`
	To        string        `json:"to"`
	Departure string        `json:"departure"`
	Found     bool          `json:"found"`
	Arrival   string        `json:"arrival,omitempty"`
	Legs      []LegResponse `json:"legs"`
}

type LegResponse struct {
	Route     string `json:"route"`
	Trip      int64  `json:"trip"`
	Headsign  string `json:"headsign"`
	FromID    int64  `json:"from_id"`
	From      string `json:"from"`
	Departure string `json:"departure"`
	ToID      int64  `json:"to_id"`
	To        string `json:"to"`
	Arrival   string `json:"arrival"`
}

func NewConnectionResponse(timetable *comps.Timetable, result *QueryResult) ConnectionResponse {
	response := ConnectionResponse{
		ID:        result.ID.String(),
		From:      result.From,
		To:        result.To,
		Departure: structs.FormatTime(result.Departure, DEBUG_TIME),
		Found:     result.Found,
		Legs:      make([]LegResponse, 0, result.Connection.LegCount()),
	}
	if !result.Found {
		return response
	}
	response.Arrival = structs.FormatTime(result.Connection.Arrival, DEBUG_TIME)
	for _, leg := range result.Connection.Legs {
		trip := timetable.GetTrip(leg.Trip)
		from := timetable.GetStop(leg.From)
		to := timetable.GetStop(leg.To)
		response.Legs = append(response.Legs, LegResponse{
			Route:     timetable.GetRoute(leg.Route).Name,
			Trip:      trip.SourceID,
			Headsign:  trip.Headsign,
			FromID:    from.SourceID,
			From:      from.Name,
			Departure: structs.FormatTime(leg.Departure, DEBUG_TIME),
			ToID:      to.SourceID,
			To:        to.Name,
			Arrival:   structs.FormatTime(leg.Arrival, DEBUG_TIME),
		})
	}
	return response
}

func WriteConnectionJSON(out io.Writer, timetable *comps.Timetable, result *QueryResult) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewConnectionResponse(timetable, result))
}

//**********************************************************
// debug output
//**********************************************************

func PrintTransfers(out io.Writer, timetable *comps.Timetable) {
	for i := 0; i < timetable.StopCount(); i++ {
		from := timetable.GetStop(int32(i))
		for _, id := range timetable.GetTransfers(from.ID) {
			to := timetable.GetStop(id)
			fmt.Fprintf(out, "%v %v >> %v %v\n", from.SourceID, from.Name, to.SourceID, to.Name)
		}
	}
}

// PrintBestArrivals writes the best arrival of every reached real stop.
func PrintBestArrivals(out io.Writer, timetable *comps.Timetable, result *QueryResult) {
	raptor := result.raptor
	for i := 0; i < timetable.StopCount(); i++ {
		stop := timetable.GetStop(int32(i))
		best := raptor.GetBestArrival(stop.ID)
		if best == structs.INF_TIME {
			continue
		}
		fmt.Fprintf(out, "%v %v %v\n", stop.SourceID, stop.Name, structs.FormatTime(best, DEBUG_TIME))
	}
}

// PrintRoundArrivals writes the arrivals per round of every reached real stop.
func PrintRoundArrivals(out io.Writer, timetable *comps.Timetable, result *QueryResult) {
	raptor := result.raptor
	rounds := raptor.Options().MaxTrips
	for i := 0; i < timetable.StopCount(); i++ {
		stop := timetable.GetStop(int32(i))
		if raptor.GetBestArrival(stop.ID) == structs.INF_TIME {
			continue
		}
		times := make([]string, 0, rounds+1)
		for k := 0; k <= rounds; k++ {
			times = append(times, structs.FormatTime(raptor.GetArrival(stop.ID, k), DEBUG_TIME))
		}
		fmt.Fprintf(out, "%v %v %v\n", stop.SourceID, stop.Name, strings.Join(times, " "))
	}
}
