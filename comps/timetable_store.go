package comps

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/ttpr0/go-raptor/structs"
	"golang.org/x/exp/slog"
	_ "modernc.org/sqlite"
)

//*******************************************
// timetable storage (sqlite)
//*******************************************

var timetable_schema = []string{
	`DROP TABLE IF EXISTS stop_times`,
	`DROP TABLE IF EXISTS trips`,
	`DROP TABLE IF EXISTS routes`,
	`DROP TABLE IF EXISTS stops`,
	`CREATE TABLE stops (
		id INTEGER PRIMARY KEY,
		source_id INTEGER NOT NULL,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE routes (
		id INTEGER PRIMARY KEY,
		source_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		type INTEGER NOT NULL
	)`,
	`CREATE TABLE trips (
		id INTEGER PRIMARY KEY,
		source_id INTEGER NOT NULL,
		route_id INTEGER NOT NULL,
		headsign TEXT NOT NULL,
		direction INTEGER NOT NULL
	)`,
	`CREATE TABLE stop_times (
		seq INTEGER PRIMARY KEY,
		trip_id INTEGER NOT NULL,
		arrival INTEGER NOT NULL,
		departure INTEGER NOT NULL,
		stop_id INTEGER NOT NULL
	)`,
}

func (self *Timetable) _New() *Timetable {
	return &Timetable{}
}

// _Store writes the timetable rows into a sqlite database at path.
// Foreign keys are stored as source ids so that loading replays the
// ingestion through the builder.
func (self *Timetable) _Store(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range timetable_schema {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("creating timetable schema: %w", err)
		}
	}

	stmt, err := tx.Prepare(`INSERT INTO stops (id, source_id, name) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	for _, stop := range self.stops {
		if _, err := stmt.Exec(stop.ID, stop.SourceID, stop.Name); err != nil {
			return fmt.Errorf("storing stop %v: %w", stop.SourceID, err)
		}
	}
	stmt.Close()

	stmt, err = tx.Prepare(`INSERT INTO routes (id, source_id, name, type) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	for _, route := range self.routes {
		if _, err := stmt.Exec(route.ID, route.SourceID, route.Name, route.Type); err != nil {
			return fmt.Errorf("storing route %v: %w", route.SourceID, err)
		}
	}
	stmt.Close()

	stmt, err = tx.Prepare(`INSERT INTO trips (id, source_id, route_id, headsign, direction) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	for _, trip := range self.trips {
		route := self.routes[trip.Route]
		if _, err := stmt.Exec(trip.ID, trip.SourceID, route.SourceID, trip.Headsign, trip.Direction); err != nil {
			return fmt.Errorf("storing trip %v: %w", trip.SourceID, err)
		}
	}
	stmt.Close()

	stmt, err = tx.Prepare(`INSERT INTO stop_times (seq, trip_id, arrival, departure, stop_id) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	seq := 0
	for _, trip := range self.trips {
		stops := self.route_stops[trip.Route]
		for i := 0; i < trip.StopCount(); i++ {
			stop := self.stops[stops[i]]
			if _, err := stmt.Exec(seq, trip.SourceID, trip.Arrivals[i], trip.Departures[i], stop.SourceID); err != nil {
				return fmt.Errorf("storing stop time of trip %v: %w", trip.SourceID, err)
			}
			seq += 1
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("stored timetable", "path", path, "stop_times", seq)
	return nil
}

// _Load reads a timetable stored by _Store and rebuilds it, checking all
// timetable invariants again.
func (self *Timetable) _Load(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	builder := NewTimetableBuilder()

	err = queryRows(db, `SELECT source_id, name FROM stops ORDER BY id`, func(rows *sql.Rows) error {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return err
		}
		return builder.AddStop(id, name)
	})
	if err != nil {
		return err
	}
	err = queryRows(db, `SELECT source_id, name, type FROM routes ORDER BY id`, func(rows *sql.Rows) error {
		var id int64
		var name string
		var typ int32
		if err := rows.Scan(&id, &name, &typ); err != nil {
			return err
		}
		return builder.AddRoute(id, name, typ)
	})
	if err != nil {
		return err
	}
	err = queryRows(db, `SELECT source_id, route_id, headsign, direction FROM trips ORDER BY id`, func(rows *sql.Rows) error {
		var id, route int64
		var headsign string
		var direction int32
		if err := rows.Scan(&id, &route, &headsign, &direction); err != nil {
			return err
		}
		return builder.AddTrip(id, route, headsign, direction)
	})
	if err != nil {
		return err
	}
	err = queryRows(db, `SELECT trip_id, arrival, departure, stop_id FROM stop_times ORDER BY seq`, func(rows *sql.Rows) error {
		var trip, stop int64
		var arrival, departure int32
		if err := rows.Scan(&trip, &arrival, &departure, &stop); err != nil {
			return err
		}
		return builder.AddStopTime(trip, structs.Time(arrival), structs.Time(departure), stop)
	})
	if err != nil {
		return err
	}

	timetable, err := builder.Build()
	if err != nil {
		return err
	}
	*self = *timetable
	slog.Info("loaded timetable", "path", path)
	return nil
}

func (self *Timetable) _Remove(path string) error {
	return os.Remove(path)
}

func queryRows(db *sql.DB, query string, handler func(*sql.Rows) error) error {
	rows, err := db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := handler(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
