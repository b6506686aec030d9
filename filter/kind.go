package filter

import (
	"pkg.world.dev/terra/delta"
	"pkg.world.dev/terra/types"
)

type kind struct {
	kinds []types.Kind
}

// Kind matches envelopes of any of the given delta kinds.
func Kind(kinds ...types.Kind) DeltaFilter {
	return &kind{kinds: kinds}
}

func (f *kind) MatchesDelta(env delta.Envelope) bool {
	for _, k := range f.kinds {
		if env.Kind == k {
			return true
		}
	}
	return false
}
