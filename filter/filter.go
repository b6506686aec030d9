package filter

import (
	"pkg.world.dev/terra/delta"
)

// DeltaFilter is a filter that selects delta envelopes by their metadata.
type DeltaFilter interface {
	// MatchesDelta returns true if the envelope matches the filter.
	MatchesDelta(env delta.Envelope) bool
}
