package surface

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"pkg.world.dev/terra/spec"
	"pkg.world.dev/terra/types"
)

// Service is the central surface query point. It resolves spec ids through
// the registry, samples local conditions, and folds both into the effective
// SurfaceState consumed by vehicles, characters, and effect routing.
type Service struct {
	mu       sync.RWMutex
	registry *spec.Registry

	conditions Conditions
	materials  map[string]types.SurfaceSpecID

	defaultID  types.SurfaceSpecID
	hasDefault bool
}

func NewService(registry *spec.Registry) *Service {
	return &Service{
		registry:   registry,
		conditions: StaticConditions{},
		materials:  map[string]types.SurfaceSpecID{},
	}
}

// SetConditions swaps the conditions source. A nil source restores the dry
// static default.
func (s *Service) SetConditions(c Conditions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c == nil {
		c = StaticConditions{}
	}
	s.conditions = c
}

// BindMaterial maps a physical material name to a surface spec id. Binding
// a name again replaces the previous mapping.
func (s *Service) BindMaterial(material string, id types.SurfaceSpecID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.materials[material] = id
	log.Debug().
		Str("material", material).
		Str("surface_spec", id.String()).
		Msg("bound material to surface spec")
}

// SetDefaultSpec installs the spec id used when a material has no binding.
func (s *Service) SetDefaultSpec(id types.SurfaceSpecID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultID = id
	s.hasDefault = true
	log.Info().Str("surface_spec", id.String()).Msg("default surface spec set")
}

// SpecIDForMaterial returns the bound spec id for a material, or the
// default when the material is unknown or empty.
func (s *Service) SpecIDForMaterial(material string) (types.SurfaceSpecID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if material != "" {
		if id, ok := s.materials[material]; ok {
			return id, true
		}
	}
	return s.defaultID, s.hasDefault
}

// StateAt resolves the spec id and builds the surface state at a world
// location. Resolution never fails: unknown ids degrade through the
// registry's default and fallback tiers.
func (s *Service) StateAt(ctx context.Context, id types.SurfaceSpecID, location types.Vec3) spec.SurfaceState {
	resolved, _ := s.registry.ResolveSurface(id)
	s.mu.RLock()
	conditions := s.conditions
	s.mu.RUnlock()
	return buildState(ctx, resolved, location, conditions)
}

// StateForMaterial is StateAt for a physical material name, going through
// the material bindings first.
func (s *Service) StateForMaterial(ctx context.Context, material string, location types.Vec3) spec.SurfaceState {
	id, _ := s.SpecIDForMaterial(material)
	return s.StateAt(ctx, id, location)
}

// BatchStates builds states for several locations of the same surface in
// one call, in input order.
func (s *Service) BatchStates(ctx context.Context, id types.SurfaceSpecID, locations []types.Vec3) []spec.SurfaceState {
	out := make([]spec.SurfaceState, 0, len(locations))
	for _, location := range locations {
		out = append(out, s.StateAt(ctx, id, location))
	}
	return out
}

// buildState copies the spec's base values, samples conditions at the
// location, and applies the environmental modifiers.
func buildState(ctx context.Context, sp spec.Surface, location types.Vec3, conditions Conditions) spec.SurfaceState {
	state := spec.SurfaceState{
		SpecID:              sp.ID,
		FrictionStatic:      sp.StaticFriction,
		FrictionDynamic:     sp.DynamicFriction,
		Restitution:         sp.Restitution,
		Compliance:          sp.Compliance,
		DeformationStrength: sp.DeformationStrength,

		Wetness:      conditions.WetnessAt(ctx, location),
		SnowDepthCm:  conditions.SnowDepthAt(ctx, location),
		Compaction:   conditions.CompactionAt(ctx, location),
		TemperatureK: conditions.TemperatureAt(ctx, location),
	}
	applyModifiers(&state, sp)
	state.Valid = true
	return state
}

// applyModifiers folds wetness, temperature, snow, and compaction into the
// base friction and deformation values, then clamps the result.
func applyModifiers(state *spec.SurfaceState, sp spec.Surface) {
	multiplier := 1.0

	if state.Wetness > 0 && sp.AffectedByWetness {
		multiplier *= lerp(1, sp.WetFrictionMultiplier, state.Wetness)
	}

	if sp.HasTemperatureResponse {
		multiplier *= sp.TempFrictionLUT.Eval(state.TemperatureK)
	}

	// Snow reduces friction but softens the surface. 50 cm is full effect.
	if state.SnowDepthCm > 0 {
		factor := clamp(state.SnowDepthCm/50, 0, 1)
		multiplier *= lerp(1, 0.5, factor)
		state.Compliance = lerp(state.Compliance, 0.8, factor)
		state.DeformationStrength = lerp(state.DeformationStrength, 0.9, factor)
	}

	// Compacted snow or sand is firmer: up to 30% more friction, less give.
	if state.Compaction > 0 {
		multiplier *= 1 + state.Compaction*0.3
		state.Compliance *= 1 - state.Compaction*0.5
	}

	state.FrictionStatic *= multiplier
	state.FrictionDynamic *= multiplier

	state.FrictionStatic = clamp(state.FrictionStatic, 0.05, 2.0)
	state.FrictionDynamic = clamp(state.FrictionDynamic, 0.02, 1.5)
	state.Compliance = clamp(state.Compliance, 0, 1)
	state.DeformationStrength = clamp(state.DeformationStrength, 0, 1)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
