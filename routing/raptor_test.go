package routing

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ttpr0/go-raptor/comps"
	"github.com/ttpr0/go-raptor/structs"
)

//*******************************************
// test networks
//*******************************************

func hm(hours, minutes int) structs.Time {
	return structs.Time(hours*int(structs.HOUR_SECONDS) + minutes*int(structs.MINUTE_SECONDS))
}

type testStop struct {
	id   int64
	name string
}

type testTrip struct {
	id    int64
	route int64
	stops []int64
	times []structs.Time
}

func buildNetwork(t *testing.T, stops []testStop, trips []testTrip) *comps.Timetable {
	t.Helper()
	builder := comps.NewTimetableBuilder()
	for _, stop := range stops {
		require.NoError(t, builder.AddStop(stop.id, stop.name))
	}
	routes := map[int64]bool{}
	for _, trip := range trips {
		if !routes[trip.route] {
			require.NoError(t, builder.AddRoute(trip.route, fmt.Sprintf("R%v", trip.route), 3))
			routes[trip.route] = true
		}
	}
	for _, trip := range trips {
		require.NoError(t, builder.AddTrip(trip.id, trip.route, "", 0))
	}
	for _, trip := range trips {
		for i, stop := range trip.stops {
			require.NoError(t, builder.AddStopTime(trip.id, trip.times[i], trip.times[i], stop))
		}
	}
	timetable, err := builder.Build()
	require.NoError(t, err)
	return timetable
}

// A(1) -> B(2) -> C(3)
func singleRouteNetwork(t *testing.T) *comps.Timetable {
	return buildNetwork(t,
		[]testStop{{1, "A"}, {2, "B"}, {3, "C"}},
		[]testTrip{
			{100, 10, []int64{1, 2, 3}, []structs.Time{hm(8, 0), hm(8, 10), hm(8, 20)}},
		},
	)
}

// route 10: A(1) -> B(2) -> Main St(3)
// route 20: Main St(4) -> C(5)
func mainStreetNetwork(t *testing.T) *comps.Timetable {
	return buildNetwork(t,
		[]testStop{{1, "A"}, {2, "B"}, {3, "Main St"}, {4, "Main St"}, {5, "C"}},
		[]testTrip{
			{100, 10, []int64{1, 2, 3}, []structs.Time{hm(8, 0), hm(8, 10), hm(8, 20)}},
			{101, 10, []int64{1, 2, 3}, []structs.Time{hm(8, 30), hm(8, 40), hm(8, 50)}},
			{200, 20, []int64{4, 5}, []structs.Time{hm(8, 30), hm(8, 45)}},
			{201, 20, []int64{4, 5}, []structs.Time{hm(8, 21), hm(8, 36)}},
		},
	)
}

func runQuery(t *testing.T, timetable *comps.Timetable, from, to string, departure structs.Time, options RaptorOptions) *Raptor {
	t.Helper()
	endpoints, err := timetable.CreateArtificialStops(from, to)
	require.NoError(t, err)
	raptor := NewRaptor(timetable, endpoints, departure, options)
	raptor.CalcShortestPath()
	return raptor
}

func tripSourceID(timetable *comps.Timetable, trip int32) int64 {
	return timetable.GetTrip(trip).SourceID
}

//*******************************************
// tests
//*******************************************

func TestSingleLeg(t *testing.T) {
	timetable := singleRouteNetwork(t)
	endpoints, err := timetable.CreateArtificialStops("A", "C")
	require.NoError(t, err)

	raptor := NewRaptor(timetable, endpoints, hm(8, 0), DefaultRaptorOptions())
	require.True(t, raptor.CalcShortestPath())

	connection, err := raptor.GetConnection()
	require.NoError(t, err)
	require.Equal(t, 1, connection.LegCount())

	leg := connection.Legs[0]
	assert.Equal(t, int64(100), tripSourceID(timetable, leg.Trip))
	assert.Equal(t, "A", timetable.GetStop(leg.From).Name)
	assert.Equal(t, "C", timetable.GetStop(leg.To).Name)
	assert.Equal(t, hm(8, 0), leg.Departure)
	assert.Equal(t, hm(8, 20), leg.Arrival)
	assert.Equal(t, hm(8, 0), connection.Departure)
	assert.Equal(t, hm(8, 22), connection.Arrival)

	assert.Equal(t, hm(8, 10), raptor.GetBestArrival(1))
	assert.Equal(t, hm(8, 10), raptor.GetArrival(1, 1))
	assert.Equal(t, structs.INF_TIME, raptor.GetArrival(1, 2))
	assert.Equal(t, 2, raptor.RoundsRun())

	from := raptor.GetTransferredFrom(endpoints.Target())
	require.True(t, from.HasValue())
	assert.Equal(t, int32(2), from.Value)
	best := raptor.GetBestTrip(2)
	require.True(t, best.HasValue())
	assert.Equal(t, leg.Trip, best.Value)
	assert.False(t, raptor.GetBestTrip(0).HasValue())
}

func TestTransferBetweenSameNamedStops(t *testing.T) {
	timetable := mainStreetNetwork(t)
	raptor := runQuery(t, timetable, "A", "C", hm(8, 0), DefaultRaptorOptions())

	connection, err := raptor.GetConnection()
	require.NoError(t, err)
	require.Equal(t, 2, connection.LegCount())

	first := connection.Legs[0]
	second := connection.Legs[1]
	assert.Equal(t, int64(100), tripSourceID(timetable, first.Trip))
	assert.Equal(t, int32(2), first.To)
	assert.Equal(t, hm(8, 20), first.Arrival)

	// walking between the Main St stops takes the transfer time,
	// trip 201 at 8:21 is missed
	assert.Equal(t, hm(8, 22), raptor.GetBestArrival(3))
	assert.Equal(t, int64(200), tripSourceID(timetable, second.Trip))
	assert.Equal(t, int32(3), second.From)
	assert.Equal(t, hm(8, 30), second.Departure)
	assert.Equal(t, hm(8, 45), second.Arrival)
	assert.Equal(t, hm(8, 47), connection.Arrival)
}

func TestNoTimeTravelBetweenLegs(t *testing.T) {
	timetable := mainStreetNetwork(t)
	endpoints, err := timetable.CreateArtificialStops("A", "C")
	require.NoError(t, err)
	raptor := NewRaptor(timetable, endpoints, hm(8, 0), DefaultRaptorOptions())
	require.True(t, raptor.CalcShortestPath())

	connection, err := raptor.GetConnection()
	require.NoError(t, err)
	for i := 1; i < connection.LegCount(); i++ {
		assert.LessOrEqual(t, connection.Legs[i-1].Arrival, connection.Legs[i].Departure)
	}
	last := connection.Legs[connection.LegCount()-1]
	assert.Contains(t, endpoints.GetTransfers(last.To), endpoints.Target())
	assert.GreaterOrEqual(t, connection.Legs[0].Departure, connection.Departure)
}

func TestRaptorOptions(t *testing.T) {
	timetable := mainStreetNetwork(t)
	options := RaptorOptions{MaxTrips: 5, ChangeTime: 0, TransferTime: 0}
	raptor := runQuery(t, timetable, "A", "C", hm(8, 0), options)

	connection, err := raptor.GetConnection()
	require.NoError(t, err)
	require.Equal(t, 2, connection.LegCount())
	assert.Equal(t, int64(201), tripSourceID(timetable, connection.Legs[1].Trip))
	assert.Equal(t, hm(8, 36), connection.Arrival)
}

func TestChangeTime(t *testing.T) {
	// route 10: A(1) -> B(2), route 20: B(2) -> C(3)
	timetable := buildNetwork(t,
		[]testStop{{1, "A"}, {2, "B"}, {3, "C"}},
		[]testTrip{
			{100, 10, []int64{1, 2}, []structs.Time{hm(8, 0), hm(8, 10)}},
			{200, 20, []int64{2, 3}, []structs.Time{hm(8, 10) + 20, hm(8, 30)}},
			{201, 20, []int64{2, 3}, []structs.Time{hm(8, 20), hm(8, 40)}},
		},
	)

	// the first boarding needs no change time
	raptor := runQuery(t, timetable, "A", "C", hm(8, 0), DefaultRaptorOptions())
	connection, err := raptor.GetConnection()
	require.NoError(t, err)
	require.Equal(t, 2, connection.LegCount())
	assert.Equal(t, int64(100), tripSourceID(timetable, connection.Legs[0].Trip))
	assert.Equal(t, int64(201), tripSourceID(timetable, connection.Legs[1].Trip))
	assert.Equal(t, hm(8, 42), connection.Arrival)

	options := DefaultRaptorOptions()
	options.ChangeTime = 10
	raptor = runQuery(t, timetable, "A", "C", hm(8, 0), options)
	connection, err = raptor.GetConnection()
	require.NoError(t, err)
	assert.Equal(t, int64(200), tripSourceID(timetable, connection.Legs[1].Trip))
	assert.Equal(t, hm(8, 32), connection.Arrival)
}

func TestNoConnection(t *testing.T) {
	timetable := singleRouteNetwork(t)

	// the target lies before the source on the only route
	raptor := runQuery(t, timetable, "C", "A", hm(8, 0), DefaultRaptorOptions())
	assert.Equal(t, structs.INF_TIME, raptor.GetBestArrival(raptor.Endpoints().Target()))
	_, err := raptor.GetConnection()
	assert.ErrorIs(t, err, ErrNoConnection)

	// no trip leaves after the departure
	endpoints, err := timetable.CreateArtificialStops("A", "C")
	require.NoError(t, err)
	raptor = NewRaptor(timetable, endpoints, hm(9, 0), DefaultRaptorOptions())
	assert.False(t, raptor.CalcShortestPath())
	_, err = raptor.GetConnection()
	assert.ErrorIs(t, err, ErrNoConnection)
	assert.Equal(t, 1, raptor.RoundsRun())
}

func TestBestArrivalMonotone(t *testing.T) {
	timetable := mainStreetNetwork(t)
	endpoints, err := timetable.CreateArtificialStops("A", "C")
	require.NoError(t, err)
	raptor := NewRaptor(timetable, endpoints, hm(8, 0), DefaultRaptorOptions())

	previous := make([]structs.Time, endpoints.StopCount())
	for i := range previous {
		previous[i] = raptor.GetBestArrival(int32(i))
	}
	rounds := 0
	raptor.OnRound = func(k int) {
		rounds += 1
		assert.Equal(t, rounds, k)
		for i := range previous {
			best := raptor.GetBestArrival(int32(i))
			assert.LessOrEqual(t, best, previous[i], "stop %v round %v", i, k)
			assert.LessOrEqual(t, best, raptor.GetArrival(int32(i), k), "stop %v round %v", i, k)
			previous[i] = best
		}
	}
	require.True(t, raptor.CalcShortestPath())
	assert.Equal(t, raptor.RoundsRun(), rounds)
}

func TestIdempotentSearch(t *testing.T) {
	timetable := mainStreetNetwork(t)

	first, err := runQuery(t, timetable, "A", "C", hm(8, 0), DefaultRaptorOptions()).GetConnection()
	require.NoError(t, err)

	// a different query in between must not influence the result
	_, err = runQuery(t, timetable, "B", "Main St", hm(8, 35), DefaultRaptorOptions()).GetConnection()
	require.NoError(t, err)

	second, err := runQuery(t, timetable, "A", "C", hm(8, 0), DefaultRaptorOptions()).GetConnection()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	fresh, err := runQuery(t, mainStreetNetwork(t), "A", "C", hm(8, 0), DefaultRaptorOptions()).GetConnection()
	require.NoError(t, err)
	assert.Equal(t, fresh, second)
}

func TestReconstructionFollowsBestRound(t *testing.T) {
	// X(3) is reached by the direct trip 100 in round 1 and faster by
	// trips 200 and 300 in round 2
	timetable := buildNetwork(t,
		[]testStop{{1, "A"}, {2, "B"}, {3, "X"}},
		[]testTrip{
			{100, 10, []int64{1, 3}, []structs.Time{hm(8, 0), hm(9, 0)}},
			{200, 20, []int64{1, 2}, []structs.Time{hm(8, 0), hm(8, 10)}},
			{300, 30, []int64{2, 3}, []structs.Time{hm(8, 20), hm(8, 50)}},
		},
	)
	raptor := runQuery(t, timetable, "A", "X", hm(8, 0), DefaultRaptorOptions())
	assert.Equal(t, hm(9, 0), raptor.GetArrival(2, 1))
	assert.Equal(t, hm(8, 50), raptor.GetArrival(2, 2))

	connection, err := raptor.GetConnection()
	require.NoError(t, err)
	require.Equal(t, 2, connection.LegCount())
	assert.Equal(t, int64(200), tripSourceID(timetable, connection.Legs[0].Trip))
	assert.Equal(t, int64(300), tripSourceID(timetable, connection.Legs[1].Trip))
	last := connection.Legs[1]
	assert.Equal(t, connection.Arrival, structs.AddTime(last.Arrival, DefaultRaptorOptions().TransferTime))
}

func TestLastRoundTransfersOnlyToTarget(t *testing.T) {
	timetable := mainStreetNetwork(t)

	options := DefaultRaptorOptions()
	options.MaxTrips = 1
	raptor := runQuery(t, timetable, "A", "Main St", hm(8, 0), options)
	assert.Equal(t, hm(8, 22), raptor.GetBestArrival(raptor.Endpoints().Target()))
	assert.Equal(t, structs.INF_TIME, raptor.GetBestArrival(3))

	options.MaxTrips = 2
	raptor = runQuery(t, timetable, "A", "Main St", hm(8, 0), options)
	assert.Equal(t, hm(8, 22), raptor.GetBestArrival(3))

	// C needs two trips
	options.MaxTrips = 1
	raptor = runQuery(t, timetable, "A", "C", hm(8, 0), options)
	_, err := raptor.GetConnection()
	assert.ErrorIs(t, err, ErrNoConnection)
}

func TestTargetPruning(t *testing.T) {
	// route 10: A(1) -> T(2), route 20: T(2) -> Y(3)
	timetable := buildNetwork(t,
		[]testStop{{1, "A"}, {2, "T"}, {3, "Y"}},
		[]testTrip{
			{100, 10, []int64{1, 2}, []structs.Time{hm(8, 0), hm(8, 10)}},
			{200, 20, []int64{2, 3}, []structs.Time{hm(8, 30), hm(8, 40)}},
		},
	)
	raptor := runQuery(t, timetable, "A", "T", hm(8, 0), DefaultRaptorOptions())
	assert.Equal(t, hm(8, 12), raptor.GetBestArrival(raptor.Endpoints().Target()))
	// Y is never better than the target
	assert.Equal(t, structs.INF_TIME, raptor.GetBestArrival(2))

	boarding := raptor.GetBoardingStop(1)
	require.True(t, boarding.HasValue())
	assert.Equal(t, int32(1), boarding.Value)
}

func TestBoardingStopKeptOnLaterBoarding(t *testing.T) {
	// route 10: P(2) -> Q(3) -> A(4) -> Z(5), route 20: A(1) -> P(2)
	// trip 100 is first boarded at stop 4 in round 1 and
	// boarded again at P in round 2
	timetable := buildNetwork(t,
		[]testStop{{1, "A"}, {2, "P"}, {3, "Q"}, {4, "A"}, {5, "Z"}},
		[]testTrip{
			{100, 10, []int64{2, 3, 4, 5}, []structs.Time{hm(8, 20), hm(8, 30), hm(8, 40), hm(8, 50)}},
			{200, 20, []int64{1, 2}, []structs.Time{hm(8, 0), hm(8, 10)}},
		},
	)
	raptor := runQuery(t, timetable, "A", "Q", hm(8, 0), DefaultRaptorOptions())

	// stop 4 is fed from the source, P is not
	boarding := raptor.GetBoardingStop(0)
	require.True(t, boarding.HasValue())
	assert.Equal(t, int32(3), boarding.Value)
	round_trip := raptor.GetRoundTrip(2, 2)
	require.True(t, round_trip.HasValue())
	assert.Equal(t, int32(0), round_trip.Value)

	connection, err := raptor.GetConnection()
	require.NoError(t, err)
	require.Equal(t, 2, connection.LegCount())
	first := connection.Legs[0]
	second := connection.Legs[1]
	assert.Equal(t, int64(200), tripSourceID(timetable, first.Trip))
	assert.Equal(t, int32(1), first.To)
	assert.Equal(t, int64(100), tripSourceID(timetable, second.Trip))
	assert.Equal(t, int32(1), second.From)
	assert.Equal(t, int32(2), second.To)
	assert.Equal(t, hm(8, 20), second.Departure)
	assert.Equal(t, hm(8, 30), second.Arrival)
	assert.Equal(t, hm(8, 32), connection.Arrival)
}

// randomNetwork builds routes over a few stops with shared names, all
// trips of a route run with the same hop and dwell times.
func randomNetwork(t *testing.T, rng *rand.Rand) *comps.Timetable {
	t.Helper()
	builder := comps.NewTimetableBuilder()
	stop_count := 4 + rng.Intn(8)
	for i := 0; i < stop_count; i++ {
		require.NoError(t, builder.AddStop(int64(i+1), fmt.Sprintf("S%v", rng.Intn(stop_count-1))))
	}

	type plan struct {
		id    int64
		stops []int
		times []structs.Time
	}
	plans := []plan{}
	route_count := 2 + rng.Intn(5)
	for r := 1; r <= route_count; r++ {
		require.NoError(t, builder.AddRoute(int64(r), fmt.Sprintf("R%v", r), 3))
		stops := rng.Perm(stop_count)[:2+rng.Intn(3)]
		offsets := make([]structs.Time, 2*len(stops))
		for i := range stops {
			if i > 0 {
				offsets[2*i] = offsets[2*i-1] + structs.Time(60+rng.Intn(600))
			}
			offsets[2*i+1] = offsets[2*i] + structs.Time(rng.Intn(61))
		}
		trip_count := 1 + rng.Intn(4)
		for j := 0; j < trip_count; j++ {
			start := hm(7, 30) + structs.Time(rng.Intn(90*60))
			times := make([]structs.Time, len(offsets))
			for i, offset := range offsets {
				times[i] = start + offset
			}
			id := int64(len(plans) + 1)
			require.NoError(t, builder.AddTrip(id, int64(r), "", 0))
			plans = append(plans, plan{id, stops, times})
		}
	}
	for _, p := range plans {
		for i, stop := range p.stops {
			require.NoError(t, builder.AddStopTime(p.id, p.times[2*i], p.times[2*i+1], int64(stop+1)))
		}
	}

	timetable, err := builder.Build()
	require.NoError(t, err)
	return timetable
}

func TestRandomNetworkConnections(t *testing.T) {
	found := 0
	for seed := int64(0); seed < 2000; seed++ {
		rng := rand.New(rand.NewSource(seed))
		timetable := randomNetwork(t, rng)
		from := timetable.GetStop(int32(rng.Intn(timetable.StopCount()))).Name
		to := timetable.GetStop(int32(rng.Intn(timetable.StopCount()))).Name
		if from == to {
			continue
		}
		options := RaptorOptions{
			MaxTrips:     1 + rng.Intn(5),
			ChangeTime:   structs.Time(rng.Intn(61)),
			TransferTime: structs.Time(rng.Intn(181)),
		}
		endpoints, err := timetable.CreateArtificialStops(from, to)
		require.NoError(t, err)
		raptor := NewRaptor(timetable, endpoints, hm(8, 0), options)
		reached := raptor.CalcShortestPath()

		connection, err := raptor.GetConnection()
		if !reached {
			require.ErrorIs(t, err, ErrNoConnection, "seed %v", seed)
			continue
		}
		require.NoError(t, err, "seed %v", seed)
		found += 1

		require.NotZero(t, connection.LegCount(), "seed %v", seed)
		assert.LessOrEqual(t, connection.LegCount(), options.MaxTrips, "seed %v", seed)
		assert.Equal(t, raptor.GetBestArrival(endpoints.Target()), connection.Arrival, "seed %v", seed)

		first := connection.Legs[0]
		assert.Equal(t, from, timetable.GetStop(first.From).Name, "seed %v", seed)
		assert.GreaterOrEqual(t, first.Departure, connection.Departure, "seed %v", seed)
		for i, leg := range connection.Legs {
			assert.Equal(t, timetable.GetTrip(leg.Trip).Route, leg.Route, "seed %v", seed)
			from_index, _ := timetable.StopIndexOnRoute(leg.Route, leg.From)
			to_index, _ := timetable.StopIndexOnRoute(leg.Route, leg.To)
			assert.Less(t, from_index, to_index, "seed %v leg %v", seed, i)
			assert.LessOrEqual(t, leg.Departure, leg.Arrival, "seed %v leg %v", seed, i)
			if i == 0 {
				continue
			}
			prev := connection.Legs[i-1]
			assert.Equal(t, timetable.GetStop(prev.To).Name, timetable.GetStop(leg.From).Name, "seed %v leg %v", seed, i)
			earliest := structs.AddTime(prev.Arrival, options.ChangeTime)
			if prev.To != leg.From {
				earliest = structs.AddTime(earliest, options.TransferTime)
			}
			assert.LessOrEqual(t, earliest, leg.Departure, "seed %v leg %v", seed, i)
		}
		last := connection.Legs[connection.LegCount()-1]
		assert.Equal(t, to, timetable.GetStop(last.To).Name, "seed %v", seed)
		assert.Equal(t, structs.AddTime(last.Arrival, options.TransferTime), connection.Arrival, "seed %v", seed)
	}
	assert.Greater(t, found, 20)
}
