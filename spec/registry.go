package spec

import (
	"sync"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"pkg.world.dev/terra/types"
)

// ErrInvalidSpecID is returned when registering a spec whose id is empty.
var ErrInvalidSpecID = eris.New("spec id is empty")

// Source reports which resolution tier produced a spec. Every resolution
// succeeds; Source exists for telemetry and debugging.
type Source uint8

const (
	// SourceRuntime means the id was found in the runtime registry.
	SourceRuntime Source = iota
	// SourceDefault means the id was unknown and the registered default
	// spec was used.
	SourceDefault
	// SourceFallback means no default was registered either and the
	// hardcoded fallback was used.
	SourceFallback
)

func (s Source) String() string {
	switch s {
	case SourceRuntime:
		return "runtime"
	case SourceDefault:
		return "default"
	case SourceFallback:
		return "fallback"
	}
	return "unknown"
}

// Registry is the in-memory spec store. Resolution walks three tiers:
// runtime registry, registered default, hardcoded fallback. Lookups never
// fail; missing ids degrade to usable physics.
//
// Registration normally happens on the world goroutine during pack loading,
// but queries arrive concurrently from request handlers, so the registry is
// safe for concurrent use.
type Registry struct {
	mu sync.RWMutex

	surfaces map[types.SurfaceSpecID]Surface
	mediums  map[types.MediumSpecID]Medium
	biomes   map[types.BiomeSpecID]Biome

	defaultSurface *Surface
	defaultMedium  *Medium
	defaultBiomeID types.BiomeSpecID
}

func NewRegistry() *Registry {
	return &Registry{
		surfaces: map[types.SurfaceSpecID]Surface{},
		mediums:  map[types.MediumSpecID]Medium{},
		biomes:   map[types.BiomeSpecID]Biome{},
	}
}

// RegisterSurface adds or replaces a surface spec. Out-of-range values are
// clamped with a warning rather than rejected.
func (r *Registry) RegisterSurface(s Surface) error {
	if !s.ID.IsValid() {
		return eris.Wrap(ErrInvalidSpecID, "surface spec")
	}
	if s.ValidateAndClamp() {
		log.Warn().Str("surface_spec", s.ID.String()).Msg("clamped out-of-range surface spec values")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.surfaces[s.ID] = s
	return nil
}

// ResolveSurface returns the spec for id, falling through the resolution
// tiers. The returned Source reports which tier answered.
func (r *Registry) ResolveSurface(id types.SurfaceSpecID) (Surface, Source) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.surfaces[id]; ok {
		return s, SourceRuntime
	}
	if r.defaultSurface != nil {
		return *r.defaultSurface, SourceDefault
	}
	return FallbackSurface(), SourceFallback
}

func (r *Registry) HasSurface(id types.SurfaceSpecID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.surfaces[id]
	return ok
}

func (r *Registry) SurfaceIDs() []types.SurfaceSpecID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]types.SurfaceSpecID, 0, len(r.surfaces))
	for id := range r.surfaces {
		ids = append(ids, id)
	}
	return ids
}

// SetDefaultSurface installs the spec used when an id misses the runtime
// registry.
func (r *Registry) SetDefaultSurface(s Surface) {
	s.ValidateAndClamp()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultSurface = &s
}

// RegisterMedium adds or replaces a medium spec. Out-of-range values are
// clamped with a warning rather than rejected.
func (r *Registry) RegisterMedium(m Medium) error {
	if !m.ID.IsValid() {
		return eris.Wrap(ErrInvalidSpecID, "medium spec")
	}
	if m.ValidateAndClamp() {
		log.Warn().Str("medium_spec", m.ID.String()).Msg("clamped out-of-range medium spec values")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mediums[m.ID] = m
	return nil
}

// ResolveMedium returns the spec for id, falling through the resolution
// tiers. The returned Source reports which tier answered.
func (r *Registry) ResolveMedium(id types.MediumSpecID) (Medium, Source) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.mediums[id]; ok {
		return m, SourceRuntime
	}
	if r.defaultMedium != nil {
		return *r.defaultMedium, SourceDefault
	}
	return FallbackMedium(), SourceFallback
}

func (r *Registry) HasMedium(id types.MediumSpecID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.mediums[id]
	return ok
}

func (r *Registry) MediumIDs() []types.MediumSpecID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]types.MediumSpecID, 0, len(r.mediums))
	for id := range r.mediums {
		ids = append(ids, id)
	}
	return ids
}

// SetDefaultMedium installs the spec used when an id misses the runtime
// registry.
func (r *Registry) SetDefaultMedium(m Medium) {
	m.ValidateAndClamp()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultMedium = &m
}

// RegisterBiome adds or replaces a biome spec.
func (r *Registry) RegisterBiome(b Biome) error {
	if !b.ID.IsValid() {
		return eris.Wrap(ErrInvalidSpecID, "biome spec")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.biomes[b.ID] = b
	return nil
}

// Biome returns the spec for id if registered.
func (r *Registry) Biome(id types.BiomeSpecID) (Biome, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.biomes[id]
	return b, ok
}

// Biomes returns a snapshot of every registered biome for rule-based
// scoring.
func (r *Registry) Biomes() []Biome {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Biome, 0, len(r.biomes))
	for _, b := range r.biomes {
		out = append(out, b)
	}
	return out
}

func (r *Registry) BiomeIDs() []types.BiomeSpecID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]types.BiomeSpecID, 0, len(r.biomes))
	for id := range r.biomes {
		ids = append(ids, id)
	}
	return ids
}

// SetDefaultBiome sets the biome used when rule scoring matches nothing.
func (r *Registry) SetDefaultBiome(id types.BiomeSpecID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultBiomeID = id
}

// DefaultBiomeID returns the configured fallback biome id, which may be
// invalid if none was set.
func (r *Registry) DefaultBiomeID() types.BiomeSpecID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultBiomeID
}

// Clear drops every runtime spec. Defaults and the fallback tier survive,
// so resolution keeps working during a pack reload.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.surfaces = map[types.SurfaceSpecID]Surface{}
	r.mediums = map[types.MediumSpecID]Medium{}
	r.biomes = map[types.BiomeSpecID]Biome{}
	log.Info().Msg("cleared all runtime specs")
}
