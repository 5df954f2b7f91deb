package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ttpr0/go-raptor/comps"
	"github.com/ttpr0/go-raptor/structs"
	. "github.com/ttpr0/go-raptor/util"
	"golang.org/x/exp/slices"
)

const (
	MAX_SUGGESTIONS       = 5
	MIN_SUGGESTION_LENGTH = 2
)

//**********************************************************
// input reader
//**********************************************************

// InputReader prompts for the start, destination and departure time until
// valid values are entered.
type InputReader struct {
	in  *bufio.Scanner
	out io.Writer
	// lower case name -> stop name
	names Dict[string, string]
	// lower case names sorted
	keys List[string]
}

func NewInputReader(timetable *comps.Timetable, in io.Reader, out io.Writer) *InputReader {
	names := NewDict[string, string](100)
	keys := NewList[string](100)
	for _, name := range timetable.StopNames() {
		lower := strings.ToLower(name)
		if names.ContainsKey(lower) {
			continue
		}
		names[lower] = name
		keys.Add(lower)
	}
	slices.Sort(keys)
	return &InputReader{
		in:    bufio.NewScanner(in),
		out:   out,
		names: names,
		keys:  keys,
	}
}

// MatchName returns the stop name matching name ignoring case.
func (self *InputReader) MatchName(name string) Optional[string] {
	if stop_name, ok := self.names[strings.ToLower(name)]; ok {
		return Some(stop_name)
	}
	return None[string]()
}

// SimilarNames returns up to MAX_SUGGESTIONS stop names containing name.
func (self *InputReader) SimilarNames(name string) List[string] {
	similar := NewList[string](MAX_SUGGESTIONS)
	lower := strings.ToLower(name)
	if len(lower) < MIN_SUGGESTION_LENGTH {
		return similar
	}
	for _, key := range self.keys {
		if strings.Contains(key, lower) {
			similar.Add(self.names[key])
		}
		if similar.Length() == MAX_SUGGESTIONS {
			break
		}
	}
	return similar
}

func (self *InputReader) readLine(prompt string) (string, error) {
	fmt.Fprint(self.out, prompt)
	if !self.in.Scan() {
		if err := self.in.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(self.in.Text()), nil
}

// ReadName reads a stop name, the destination may not equal start.
func (self *InputReader) ReadName(start Optional[string]) (string, error) {
	prompt := "Enter the starting point: "
	if start.HasValue() {
		prompt = "Enter the destination: "
	}
	for {
		line, err := self.readLine(prompt)
		if err != nil {
			return "", err
		}
		name := self.MatchName(line)
		if name.HasValue() {
			if start.HasValue() && start.Value == name.Value {
				fmt.Fprintln(self.out, "Can't enter the same stop.")
				continue
			}
			return name.Value, nil
		}
		fmt.Fprint(self.out, "Invalid name!")
		similar := self.SimilarNames(line)
		if similar.Length() == 0 {
			fmt.Fprintln(self.out)
			continue
		}
		fmt.Fprintln(self.out, " Did you mean:")
		for _, name := range similar {
			fmt.Fprintf(self.out, "  %v\n", name)
		}
	}
}

func (self *InputReader) ReadTime() (structs.Time, error) {
	for {
		line, err := self.readLine("Enter the departure time: ")
		if err != nil {
			return 0, err
		}
		t, err := structs.ParseTime(line)
		if errors.Is(err, structs.ErrInvalidTime) {
			fmt.Fprintln(self.out, "Invalid time format! Use hh:mm or hh.")
			continue
		}
		return t, err
	}
}

// Read reads start, destination and departure time.
func (self *InputReader) Read() (string, string, structs.Time, error) {
	start, err := self.ReadName(None[string]())
	if err != nil {
		return "", "", 0, err
	}
	end, err := self.ReadName(Some(start))
	if err != nil {
		return "", "", 0, err
	}
	departure, err := self.ReadTime()
	if err != nil {
		return "", "", 0, err
	}
	return start, end, departure, nil
}
