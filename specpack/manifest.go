// Package specpack loads spec documents from JSON pack files into the spec
// registry. Packs are data-driven content: a world can ship core packs and
// layer mod packs on top, with later packs overriding earlier specs by id.
package specpack

import "time"

// DefaultEngineCompat is stamped into manifests whose pack omits an
// engine_compat field.
const DefaultEngineCompat = "5.7"

// Manifest records pack metadata for cache validation and client/server
// comparison: two sides agree on content when their hashes match.
type Manifest struct {
	PackID       string    `json:"pack_id"`
	Version      int       `json:"version"`
	ContentHash  string    `json:"content_hash"`
	EngineCompat string    `json:"engine_compat"`
	Timestamp    time.Time `json:"timestamp"`
	SpecTypes    []string  `json:"spec_types"`
}
