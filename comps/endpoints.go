package comps

import (
	"errors"
	"fmt"

	"github.com/ttpr0/go-raptor/structs"
	. "github.com/ttpr0/go-raptor/util"
)

var (
	ErrUnknownStopName = errors.New("no stop with this name")
	ErrSameStop        = errors.New("start and destination are the same")
)

//*******************************************
// artificial endpoints
//*******************************************

// Endpoints is a query scoped overlay over a Timetable holding the
// artificial source and target stops and their footpaths.
//
// The artificial stops use the ids StopCount() and StopCount()+1.
type Endpoints struct {
	timetable *Timetable
	source    structs.Stop
	target    structs.Stop
	// source -> real stops named like the source
	source_transfers List[int32]
	// real stops named like the target -> their transfers including the target
	target_transfers Dict[int32, List[int32]]
}

// CreateArtificialStops creates the source and target stops of a query and
// wires them to all real stops sharing their names.
func (self *Timetable) CreateArtificialStops(start_name, end_name string) (*Endpoints, error) {
	if start_name == end_name {
		return nil, fmt.Errorf("%q: %w", start_name, ErrSameStop)
	}
	if !self.HasStopName(start_name) {
		return nil, fmt.Errorf("start %q: %w", start_name, ErrUnknownStopName)
	}
	if !self.HasStopName(end_name) {
		return nil, fmt.Errorf("destination %q: %w", end_name, ErrUnknownStopName)
	}

	count := int32(self.StopCount())
	source := structs.Stop{ID: count, SourceID: -1, Name: start_name, Artificial: true}
	target := structs.Stop{ID: count + 1, SourceID: -2, Name: end_name, Artificial: true}

	source_transfers := NewList[int32](4)
	for _, stop := range self.GetStopsByName(start_name) {
		source_transfers.Add(stop)
	}
	target_transfers := NewDict[int32, List[int32]](4)
	for _, stop := range self.GetStopsByName(end_name) {
		transfers := NewList[int32](self.GetTransfers(stop).Length() + 1)
		for _, other := range self.GetTransfers(stop) {
			transfers.Add(other)
		}
		transfers.Add(target.ID)
		target_transfers[stop] = transfers
	}

	return &Endpoints{
		timetable:        self,
		source:           source,
		target:           target,
		source_transfers: source_transfers,
		target_transfers: target_transfers,
	}, nil
}

func (self *Endpoints) Timetable() *Timetable {
	return self.timetable
}
func (self *Endpoints) Source() int32 {
	return self.source.ID
}
func (self *Endpoints) Target() int32 {
	return self.target.ID
}

// StopCount returns the number of real and artificial stops.
func (self *Endpoints) StopCount() int {
	return self.timetable.StopCount() + 2
}

func (self *Endpoints) IsArtificial(stop int32) bool {
	return stop == self.source.ID || stop == self.target.ID
}

func (self *Endpoints) GetStop(stop int32) structs.Stop {
	switch stop {
	case self.source.ID:
		return self.source
	case self.target.ID:
		return self.target
	default:
		return self.timetable.GetStop(stop)
	}
}

// GetStopRoutes returns the routes serving stop, artificial stops have none.
func (self *Endpoints) GetStopRoutes(stop int32) List[int32] {
	if self.IsArtificial(stop) {
		return nil
	}
	return self.timetable.GetStopRoutes(stop)
}

// GetTransfers returns the footpaths leaving stop including the
// artificial ones.
func (self *Endpoints) GetTransfers(stop int32) List[int32] {
	switch stop {
	case self.source.ID:
		return self.source_transfers
	case self.target.ID:
		return nil
	}
	if transfers, ok := self.target_transfers[stop]; ok {
		return transfers
	}
	return self.timetable.GetTransfers(stop)
}
