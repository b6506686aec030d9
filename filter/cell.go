package filter

import (
	"pkg.world.dev/terra/delta"
	"pkg.world.dev/terra/types"
)

type cell struct {
	cells []types.CellKey
}

// Cell matches envelopes recorded in any of the given cells.
func Cell(cells ...types.CellKey) DeltaFilter {
	return &cell{cells: cells}
}

func (f *cell) MatchesDelta(env delta.Envelope) bool {
	for _, c := range f.cells {
		if env.Cell == c {
			return true
		}
	}
	return false
}
