package util

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"os"
	"reflect"

	"github.com/gocarina/gocsv"
)

func WriteJSONToFile[T any](value T, file string) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(file, data, 0644)
}

func ReadJSONFromFile[T any](file string) (T, error) {
	var value T
	data, err := os.ReadFile(file)
	if err != nil {
		return value, err
	}
	err = json.Unmarshal(data, &value)
	return value, err
}

func FileExists(file string) bool {
	_, err := os.Stat(file)
	return !errors.Is(err, os.ErrNotExist)
}

//*******************************************
// csv
//*******************************************

// ReadCSVFromFile reads all records of filename into rows of T.
//
// The first line is a header and is skipped. Columns are mapped by position
// onto the exported fields of T, extra trailing columns are ignored.
func ReadCSVFromFile[T any](filename string, delimiter rune) (List[T], error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadCSV[T](file, delimiter)
}

func ReadCSV[T any](in io.Reader, delimiter rune) (List[T], error) {
	reader := csv.NewReader(in)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	// skip header
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return NewList[T](0), nil
		}
		return nil, err
	}

	rows := NewList[T](100)
	err := gocsv.UnmarshalCSVWithoutHeaders(&columnReader{reader: reader, columns: countCSVFields[T]()}, &rows)
	if errors.Is(err, gocsv.ErrEmptyCSVFile) {
		return NewList[T](0), nil
	}
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func countCSVFields[T any]() int {
	var val T
	typ := reflect.TypeOf(val)
	count := 0
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.PkgPath == "" && field.Tag.Get("csv") != "-" {
			count += 1
		}
	}
	return count
}

// columnReader cuts records down to the number of mapped columns.
type columnReader struct {
	reader  *csv.Reader
	columns int
}

func (self *columnReader) Read() ([]string, error) {
	record, err := self.reader.Read()
	if err != nil {
		return nil, err
	}
	if len(record) > self.columns {
		record = record[:self.columns]
	}
	return record, nil
}

func (self *columnReader) ReadAll() ([][]string, error) {
	records := make([][]string, 0, 100)
	for {
		record, err := self.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}
