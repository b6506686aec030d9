package filter

import (
	"pkg.world.dev/terra/delta"
)

type and struct {
	filters []DeltaFilter
}

func And(filters ...DeltaFilter) DeltaFilter {
	return &and{filters: filters}
}

func (f *and) MatchesDelta(env delta.Envelope) bool {
	for _, filter := range f.filters {
		if !filter.MatchesDelta(env) {
			return false
		}
	}
	return true
}
