package filter

import (
	"pkg.world.dev/terra/delta"
)

type or struct {
	filters []DeltaFilter
}

func Or(filters ...DeltaFilter) DeltaFilter {
	return &or{filters: filters}
}

func (f *or) MatchesDelta(env delta.Envelope) bool {
	for _, filter := range f.filters {
		if filter.MatchesDelta(env) {
			return true
		}
	}
	return false
}
