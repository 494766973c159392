package model

import "fmt"

const (
	// CoreBaseCapacity is the device budget of a core with zero overhead.
	CoreBaseCapacity = 10000

	// MaxOverheadPercent caps the extra messages per 100 a core may carry.
	MaxOverheadPercent = 10000
)

// CellularCore is a processing core behind a tower.
type CellularCore struct {
	ID                     int
	OverheadPer100Messages int
	MaxDevices             int
}

// NewCellularCore builds a core and derives its device budget from the
// overhead (extra messages per 100 handled).
func NewCellularCore(id, overhead int) (*CellularCore, error) {
	if overhead < 0 || overhead > MaxOverheadPercent {
		return nil, fmt.Errorf("%w: core overhead %d outside 0..%d", ErrInvalidConfiguration, overhead, MaxOverheadPercent)
	}
	return &CellularCore{
		ID:                     id,
		OverheadPer100Messages: overhead,
		MaxDevices:             CoreBaseCapacity * 100 / (100 + overhead),
	}, nil
}
