package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ttpr0/go-raptor/comps"
	"github.com/ttpr0/go-raptor/parser"
	"github.com/ttpr0/go-raptor/routing"
	"github.com/ttpr0/go-raptor/structs"
	. "github.com/ttpr0/go-raptor/util"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

// NewTimetableManager loads the timetable from the store or builds it from
// the csv sources if the store is missing, outdated or a rebuild is forced.
func NewTimetableManager(config Config) (*TimetableManager, error) {
	manager := &TimetableManager{
		config: config,
	}

	files := config.Source.Files()
	store_path := config.Store.Path
	meta_path := store_path + ".meta"

	build := config.Store.Rebuild || store_path == ""
	if !build && !(FileExists(store_path) && FileExists(meta_path)) {
		build = true
	}
	var meta TimetableMeta
	if !build {
		var err error
		meta, err = ReadJSONFromFile[TimetableMeta](meta_path)
		if err != nil {
			slog.Warn("failed to read timetable meta, rebuilding", "error", err.Error())
			build = true
		} else if !slices.Equal(meta.Sources, files.Paths()) {
			slog.Info("timetable sources moved, rebuilding", "stored", meta.Sources, "files", files.Paths())
			build = true
		} else if changed := ChangedSources(files.Paths(), meta.Created); changed.Length() > 0 {
			slog.Info("timetable sources changed, rebuilding", "files", changed)
			build = true
		}
	}

	if build {
		if IsDirectoryEmpty(files.Dir) {
			return nil, fmt.Errorf("source directory %v is empty", files.Dir)
		}
		timetable, err := parser.ParseTimetable(files)
		if err != nil {
			return nil, err
		}
		manager.timetable = timetable
		if store_path != "" {
			if err := comps.Store(timetable, store_path); err != nil {
				return nil, fmt.Errorf("storing timetable: %w", err)
			}
			meta = TimetableMeta{
				Sources: files.Paths(),
				Stops:   timetable.StopCount(),
				Routes:  timetable.RouteCount(),
				Trips:   timetable.TripCount(),
				Created: time.Now(),
			}
			if err := WriteJSONToFile(meta, meta_path); err != nil {
				return nil, fmt.Errorf("writing timetable meta: %w", err)
			}
		}
	} else {
		timetable, err := comps.Load[*comps.Timetable](store_path)
		if err != nil {
			return nil, fmt.Errorf("loading timetable: %w", err)
		}
		manager.timetable = timetable
	}
	return manager, nil
}

type TimetableMeta struct {
	Sources List[string] `json:"sources"`
	Stops   int          `json:"stops"`
	Routes  int          `json:"routes"`
	Trips   int          `json:"trips"`
	Created time.Time    `json:"created"`
}

type TimetableManager struct {
	config    Config
	timetable *comps.Timetable
}

func (self *TimetableManager) Timetable() *comps.Timetable {
	return self.timetable
}

func (self *TimetableManager) Options() routing.RaptorOptions {
	return self.config.Search.RaptorOptions()
}

// Query runs a single search between two stop names.
//
// A missing connection is not an error, it is reported by QueryResult.Found.
func (self *TimetableManager) Query(from, to string, departure structs.Time) (*QueryResult, error) {
	id := uuid.New()
	endpoints, err := self.timetable.CreateArtificialStops(from, to)
	if err != nil {
		return nil, err
	}
	slog.Info("running query", "id", id.String(), "from", from, "to", to, "departure", departure.String())

	raptor := routing.NewRaptor(self.timetable, endpoints, departure, self.Options())
	start := time.Now()
	found := raptor.CalcShortestPath()
	result := &QueryResult{
		ID:        id,
		From:      from,
		To:        to,
		Departure: departure,
		Found:     found,
		raptor:    raptor,
	}
	if found {
		connection, err := raptor.GetConnection()
		if err != nil {
			return nil, fmt.Errorf("query %v: %w", id, err)
		}
		result.Connection = connection
	}
	slog.Info("finished query", "id", id.String(), "found", found, "rounds", raptor.RoundsRun(), "took", time.Since(start).String())
	return result, nil
}

type QueryResult struct {
	ID         uuid.UUID
	From       string
	To         string
	Departure  structs.Time
	Found      bool
	Connection routing.Connection
	raptor     *routing.Raptor
}
