package filter

import (
	"pkg.world.dev/terra/delta"
)

// Apply returns the envelopes that match the filter, preserving order.
func Apply(f DeltaFilter, envs []delta.Envelope) []delta.Envelope {
	out := make([]delta.Envelope, 0, len(envs))
	for _, env := range envs {
		if f.MatchesDelta(env) {
			out = append(out, env)
		}
	}
	return out
}
