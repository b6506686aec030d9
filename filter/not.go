package filter

import (
	"pkg.world.dev/terra/delta"
)

func Not(filter DeltaFilter) DeltaFilter {
	return &not{filter: filter}
}

type not struct {
	filter DeltaFilter
}

func (f *not) MatchesDelta(env delta.Envelope) bool {
	return !f.filter.MatchesDelta(env)
}
