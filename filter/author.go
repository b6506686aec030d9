package filter

import (
	"pkg.world.dev/terra/delta"
)

type author struct {
	ids []string
}

// Author matches envelopes whose originating identity is any of the given
// ids: the author of a surface delta, the actor GUID of an actor delta, the
// assembly GUID of an assembly delta.
func Author(ids ...string) DeltaFilter {
	return &author{ids: ids}
}

func (f *author) MatchesDelta(env delta.Envelope) bool {
	for _, id := range f.ids {
		if env.Actor == id {
			return true
		}
	}
	return false
}
