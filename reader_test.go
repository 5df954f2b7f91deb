package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ttpr0/go-raptor/comps"
	"github.com/ttpr0/go-raptor/parser"
	"github.com/ttpr0/go-raptor/structs"
)

func loadTestTimetable(t *testing.T) *comps.Timetable {
	t.Helper()
	timetable, err := parser.ParseTimetable(parser.DefaultSourceFiles("parser/testdata/simple"))
	require.NoError(t, err)
	return timetable
}

func TestMatchName(t *testing.T) {
	reader := NewInputReader(loadTestTimetable(t), strings.NewReader(""), io.Discard)

	name := reader.MatchName("main st")
	require.True(t, name.HasValue())
	assert.Equal(t, "Main St", name.Value)
	assert.True(t, reader.MatchName("a").HasValue())
	assert.False(t, reader.MatchName("main").HasValue())

	assert.Equal(t, []string{"Main St"}, []string(reader.SimilarNames("ai")))
	assert.Empty(t, reader.SimilarNames("m"))
	assert.Empty(t, reader.SimilarNames("xyz"))
}

func TestReadInput(t *testing.T) {
	input := strings.Join([]string{
		"x",
		"main",
		"main st",
		"MAIN ST",
		"a",
		"25",
		"8.61",
		"8:05",
	}, "\n") + "\n"
	var out bytes.Buffer
	reader := NewInputReader(loadTestTimetable(t), strings.NewReader(input), &out)

	start, end, departure, err := reader.Read()
	require.NoError(t, err)
	assert.Equal(t, "Main St", start)
	assert.Equal(t, "A", end)
	assert.Equal(t, 8*structs.HOUR_SECONDS+5*structs.MINUTE_SECONDS, departure)

	output := out.String()
	assert.Contains(t, output, "Invalid name!\n")
	assert.Contains(t, output, "Invalid name! Did you mean:\n  Main St\n")
	assert.Contains(t, output, "Can't enter the same stop.\n")
	assert.Equal(t, 2, strings.Count(output, "Invalid time format! Use hh:mm or hh.\n"))
}

func TestReadInputEOF(t *testing.T) {
	reader := NewInputReader(loadTestTimetable(t), strings.NewReader("A\n"), io.Discard)
	_, _, _, err := reader.Read()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
