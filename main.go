package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/ttpr0/go-raptor/comps"
	"github.com/ttpr0/go-raptor/structs"
	"golang.org/x/exp/slog"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func run(args []string, in io.Reader, out io.Writer, log io.Writer) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	default_config := os.Getenv("RAPTOR_CONFIG")
	if default_config == "" {
		default_config = "./config.yaml"
	}

	flags := flag.NewFlagSet("raptor", flag.ContinueOnError)
	config_path := flags.String("config", default_config, "path of the config file")
	from := flags.String("from", "", "name of the starting point")
	to := flags.String("to", "", "name of the destination")
	at := flags.String("at", "", "departure time (hh:mm or hh)")
	as_json := flags.Bool("json", false, "print the connection as json")
	debug := flags.Bool("debug", false, "print search state and debug logs")
	if err := flags.Parse(args); err != nil {
		return err
	}

	config, err := ReadConfig(*config_path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("config file not found, using defaults", "file", *config_path)
		config = DefaultConfig()
	} else if err != nil {
		return err
	}
	if *debug {
		config.LogLevel = "debug"
	}
	if err := SetupLogging(log, config.LogLevel); err != nil {
		return err
	}

	slog.Info("Loading data...")
	manager, err := NewTimetableManager(config)
	if err != nil {
		return err
	}
	timetable := manager.Timetable()

	reader := NewInputReader(timetable, in, out)
	var start, end string
	var departure structs.Time
	if *from != "" && *to != "" && *at != "" {
		start, end, departure, err = parseQueryFlags(reader, *from, *to, *at)
	} else {
		start, end, departure, err = reader.Read()
	}
	if err != nil {
		return err
	}

	result, err := manager.Query(start, end, departure)
	if err != nil {
		return err
	}

	if *as_json {
		return WriteConnectionJSON(out, timetable, result)
	}
	PrintConnection(out, timetable, result, !*debug)
	if *debug {
		fmt.Fprintln(out, "\nTransfers:")
		PrintTransfers(out, timetable)
		fmt.Fprintln(out, "\nBest arrivals:")
		PrintBestArrivals(out, timetable, result)
		fmt.Fprintln(out, "\nArrivals per round:")
		PrintRoundArrivals(out, timetable, result)
	}
	return nil
}

func parseQueryFlags(reader *InputReader, from, to, at string) (string, string, structs.Time, error) {
	start := reader.MatchName(from)
	if !start.HasValue() {
		return "", "", 0, fmt.Errorf("start %q: %w", from, comps.ErrUnknownStopName)
	}
	end := reader.MatchName(to)
	if !end.HasValue() {
		return "", "", 0, fmt.Errorf("destination %q: %w", to, comps.ErrUnknownStopName)
	}
	departure, err := structs.ParseTime(at)
	if err != nil {
		return "", "", 0, fmt.Errorf("departure %q: %w", at, err)
	}
	return start.Value, end.Value, departure, nil
}
