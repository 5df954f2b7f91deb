package routing

// IConnectionSearch is a single earliest arrival query.
type IConnectionSearch interface {
	CalcShortestPath() bool
	GetConnection() (Connection, error)
}

var _ IConnectionSearch = &Raptor{}
