package main

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/ttpr0/go-raptor/parser"
	"github.com/ttpr0/go-raptor/routing"
	"github.com/ttpr0/go-raptor/structs"
	"golang.org/x/exp/slog"
	"gopkg.in/yaml.v3"
)

//**********************************************************
// config
//**********************************************************

// ReadConfig reads a yaml config file on top of the default config and
// validates the result.
func ReadConfig(file string) (Config, error) {
	slog.Info("Reading config file", "file", file)
	config := DefaultConfig()
	data, err := os.ReadFile(file)
	if err != nil {
		return config, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parsing config file %v: %w", file, err)
	}
	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid config file %v: %w", file, err)
	}
	return config, nil
}

func DefaultConfig() Config {
	options := routing.DefaultRaptorOptions()
	return Config{
		Source: SourceOptions{
			Dir:       "./data",
			Stops:     "stops.csv",
			Routes:    "routes.csv",
			Trips:     "trips.csv",
			StopTimes: "stop_times.csv",
			Delimiter: ",",
		},
		Store: StoreOptions{
			Path:    "./data/timetable.db",
			Rebuild: false,
		},
		Search: SearchOptions{
			MaxTrips:     options.MaxTrips,
			ChangeTime:   int32(options.ChangeTime),
			TransferTime: int32(options.TransferTime),
		},
		LogLevel: "info",
	}
}

type Config struct {
	Source   SourceOptions `yaml:"source"`
	Store    StoreOptions  `yaml:"store"`
	Search   SearchOptions `yaml:"search"`
	LogLevel string        `yaml:"log-level" validate:"oneof=debug info warn error"`
}

func (self Config) Validate() error {
	return validator.New().Struct(self)
}

type SourceOptions struct {
	Dir       string `yaml:"dir" validate:"required"`
	Stops     string `yaml:"stops" validate:"required"`
	Routes    string `yaml:"routes" validate:"required"`
	Trips     string `yaml:"trips" validate:"required"`
	StopTimes string `yaml:"stop-times" validate:"required"`
	Delimiter string `yaml:"delimiter" validate:"len=1"`
}

func (self SourceOptions) Files() parser.SourceFiles {
	return parser.SourceFiles{
		Dir:       self.Dir,
		Stops:     self.Stops,
		Routes:    self.Routes,
		Trips:     self.Trips,
		StopTimes: self.StopTimes,
		Delimiter: []rune(self.Delimiter)[0],
	}
}

// StoreOptions configures the sqlite timetable cache, an empty path
// disables it.
type StoreOptions struct {
	Path    string `yaml:"path"`
	Rebuild bool   `yaml:"rebuild"`
}

type SearchOptions struct {
	MaxTrips     int   `yaml:"max-trips" validate:"min=1,max=50"`
	ChangeTime   int32 `yaml:"change-time" validate:"min=0,max=86400"`
	TransferTime int32 `yaml:"transfer-time" validate:"min=0,max=86400"`
}

func (self SearchOptions) RaptorOptions() routing.RaptorOptions {
	return routing.RaptorOptions{
		MaxTrips:     self.MaxTrips,
		ChangeTime:   structs.Time(self.ChangeTime),
		TransferTime: structs.Time(self.TransferTime),
	}
}
