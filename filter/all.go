package filter

import (
	"pkg.world.dev/terra/delta"
)

type all struct {
}

func All() DeltaFilter {
	return &all{}
}

func (f *all) MatchesDelta(_ delta.Envelope) bool {
	return true
}
