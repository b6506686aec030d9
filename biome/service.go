package biome

import (
	"math"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"pkg.world.dev/terra/spec"
	"pkg.world.dev/terra/types"
)

// secondaryMaskFloor is the mask weight below which a secondary biome is
// not worth blending.
const secondaryMaskFloor = 0.01

// MaskSampler supplies painted biome mask weights per channel when the
// terrain pipeline provides them. Reporting ok=false at a location falls
// resolution back to the altitude/slope rules.
type MaskSampler interface {
	MaskWeightsAt(location types.Vec3) (weights []float64, ok bool)
}

// QueryResult is the outcome of a biome query at one location: the resolved
// biome (plus an optional secondary for blending) and the spec ids it
// carries into surface and environment resolution.
type QueryResult struct {
	PrimaryBiome  types.BiomeSpecID `json:"primary_biome"`
	PrimaryWeight float64           `json:"primary_weight"`

	SecondaryBiome  types.BiomeSpecID `json:"secondary_biome,omitempty"`
	SecondaryWeight float64           `json:"secondary_weight,omitempty"`

	SurfaceSpecID types.SurfaceSpecID `json:"surface_spec_id"`
	MediumSpecID  types.MediumSpecID  `json:"medium_spec_id"`

	AltitudeCm   float64 `json:"altitude"`
	SlopeDegrees float64 `json:"slope_degrees"`

	Valid bool `json:"valid"`
}

// Service resolves biomes. Mask weights win when a sampler reports them;
// otherwise registered biomes are scored by how centered the query altitude
// and slope sit in their envelopes, best score first, with the registry's
// default biome as the final fallback.
type Service struct {
	mu       sync.RWMutex
	registry *spec.Registry

	terrain     Terrain
	maskSampler MaskSampler

	seaLevelCm       float64
	useAltitudeRules bool
	useSlopeRules    bool
}

func NewService(registry *spec.Registry) *Service {
	return &Service{
		registry:         registry,
		terrain:          FlatTerrain{},
		useAltitudeRules: true,
		useSlopeRules:    true,
	}
}

// SetTerrain swaps the terrain source. A nil terrain restores flat ground.
func (s *Service) SetTerrain(t Terrain) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t == nil {
		t = FlatTerrain{}
	}
	s.terrain = t
}

// SetMaskSampler installs or clears the painted-mask lookup arm.
func (s *Service) SetMaskSampler(sampler MaskSampler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maskSampler = sampler
	if sampler != nil {
		log.Info().Msg("biome mask sampler set, mask-based lookup active")
	}
}

// SetSeaLevel sets the world Z, in centimeters, that altitude rules measure
// from.
func (s *Service) SetSeaLevel(zCm float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seaLevelCm = zCm
}

// SetAltitudeRules toggles the altitude dimension of rule scoring.
func (s *Service) SetAltitudeRules(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.useAltitudeRules = enabled
}

// SetSlopeRules toggles the slope dimension of rule scoring.
func (s *Service) SetSlopeRules(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.useSlopeRules = enabled
}

// QueryAt resolves the biome at a world location.
func (s *Service) QueryAt(location types.Vec3) QueryResult {
	s.mu.RLock()
	terrain := s.terrain
	sampler := s.maskSampler
	seaLevel := s.seaLevelCm
	s.mu.RUnlock()

	altitude := location.Z - seaLevel
	slope := SlopeDegrees(terrain.NormalAt(location))

	result := QueryResult{
		AltitudeCm:   altitude,
		SlopeDegrees: slope,
	}

	if sampler != nil {
		if weights, ok := sampler.MaskWeightsAt(location); ok {
			s.resolveFromMask(weights, &result)
		}
	}

	if !result.PrimaryBiome.IsValid() {
		s.resolveFromRules(altitude, slope, &result)
	}

	if biome, ok := s.registry.Biome(result.PrimaryBiome); ok {
		result.SurfaceSpecID = biome.DefaultSurfaceSpecID
		result.MediumSpecID = biome.DefaultMediumSpecID
	}

	result.Valid = result.PrimaryBiome.IsValid()
	return result
}

// BiomeIDAt is QueryAt reduced to the primary biome id.
func (s *Service) BiomeIDAt(location types.Vec3) types.BiomeSpecID {
	return s.QueryAt(location).PrimaryBiome
}

// SurfaceSpecAt combines biome resolution with the biome's default surface
// spec lookup.
func (s *Service) SurfaceSpecAt(location types.Vec3) types.SurfaceSpecID {
	return s.QueryAt(location).SurfaceSpecID
}

// SurfaceSpecFor returns the default surface spec of a biome, or the
// invalid id when the biome is unknown.
func (s *Service) SurfaceSpecFor(id types.BiomeSpecID) types.SurfaceSpecID {
	if biome, ok := s.registry.Biome(id); ok {
		return biome.DefaultSurfaceSpecID
	}
	return ""
}

// MediumSpecFor returns the default medium spec of a biome, or the invalid
// id when the biome is unknown.
func (s *Service) MediumSpecFor(id types.BiomeSpecID) types.MediumSpecID {
	if biome, ok := s.registry.Biome(id); ok {
		return biome.DefaultMediumSpecID
	}
	return ""
}

// TerrainHeightAt returns the terrain height under a location.
func (s *Service) TerrainHeightAt(location types.Vec3) float64 {
	s.mu.RLock()
	terrain := s.terrain
	s.mu.RUnlock()
	return terrain.HeightAt(location)
}

// TerrainNormalAt returns the terrain surface normal at a location.
func (s *Service) TerrainNormalAt(location types.Vec3) types.Vec3 {
	s.mu.RLock()
	terrain := s.terrain
	s.mu.RUnlock()
	return terrain.NormalAt(location)
}

// TerrainSlopeAt returns the slope angle at a location in degrees.
func (s *Service) TerrainSlopeAt(location types.Vec3) float64 {
	return SlopeDegrees(s.TerrainNormalAt(location))
}

// resolveFromMask picks the strongest mask channel and maps it to the biome
// claiming that channel. The runner-up becomes the blend secondary when its
// weight clears the floor.
func (s *Service) resolveFromMask(weights []float64, result *QueryResult) {
	maxWeight, secondWeight := 0.0, 0.0
	maxChannel, secondChannel := -1, -1
	for i, w := range weights {
		if w > maxWeight {
			secondWeight, secondChannel = maxWeight, maxChannel
			maxWeight, maxChannel = w, i
		} else if w > secondWeight {
			secondWeight, secondChannel = w, i
		}
	}
	if maxChannel < 0 {
		return
	}
	if id, ok := s.biomeForChannel(maxChannel); ok {
		result.PrimaryBiome = id
		result.PrimaryWeight = maxWeight
	}
	if secondChannel >= 0 && secondWeight > secondaryMaskFloor {
		if id, ok := s.biomeForChannel(secondChannel); ok {
			result.SecondaryBiome = id
			result.SecondaryWeight = secondWeight
		}
	}
}

func (s *Service) biomeForChannel(channel int) (types.BiomeSpecID, bool) {
	for _, biome := range s.sortedBiomes() {
		if biome.MaskChannel == channel {
			return biome.ID, true
		}
	}
	return "", false
}

// resolveFromRules scores every registered biome whose envelopes contain
// the query point by centered closeness, one point per enabled dimension.
// The best match wins; the runner-up rides along with score-normalized
// weights. A total miss falls back to the registry's default biome.
func (s *Service) resolveFromRules(altitudeCm, slopeDegrees float64, result *QueryResult) {
	s.mu.RLock()
	useAltitude := s.useAltitudeRules
	useSlope := s.useSlopeRules
	s.mu.RUnlock()

	bestScore, secondScore := -1.0, -1.0
	var bestID, secondID types.BiomeSpecID
	for _, biome := range s.sortedBiomes() {
		score, matches := scoreBiome(biome, altitudeCm, slopeDegrees, useAltitude, useSlope)
		if !matches {
			continue
		}
		if score > bestScore {
			secondScore, secondID = bestScore, bestID
			bestScore, bestID = score, biome.ID
		} else if score > secondScore {
			secondScore, secondID = score, biome.ID
		}
	}

	if !bestID.IsValid() {
		result.PrimaryBiome = s.registry.DefaultBiomeID()
		result.PrimaryWeight = 1
		return
	}

	result.PrimaryBiome = bestID
	if secondID.IsValid() && secondScore > 0 {
		total := bestScore + secondScore
		result.PrimaryWeight = bestScore / total
		result.SecondaryBiome = secondID
		result.SecondaryWeight = secondScore / total
		return
	}
	result.PrimaryWeight = 1
}

// sortedBiomes returns the registered biomes in id order so resolution is
// deterministic across runs.
func (s *Service) sortedBiomes() []spec.Biome {
	biomes := s.registry.Biomes()
	sort.Slice(biomes, func(i, j int) bool {
		return biomes[i].ID < biomes[j].ID
	})
	return biomes
}

func scoreBiome(b spec.Biome, altitudeCm, slopeDegrees float64, useAltitude, useSlope bool) (float64, bool) {
	score := 0.0
	if useAltitude {
		if !b.AltitudeRange.Contains(altitudeCm) {
			return 0, false
		}
		if width := b.AltitudeRange.Width(); width > 0 {
			score += 1 - math.Abs(altitudeCm-b.AltitudeRange.Center())/(width/2)
		}
	}
	if useSlope {
		if !b.SlopeRange.Contains(slopeDegrees) {
			return 0, false
		}
		if width := b.SlopeRange.Width(); width > 0 {
			score += 1 - math.Abs(slopeDegrees-b.SlopeRange.Center())/(width/2)
		}
	}
	return score, true
}
