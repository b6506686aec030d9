// Package frame anchors a loaded world inside the canonical solar frame.
// Each world picks an anchor body: earth for a surface map, the moon for a
// lunar one. Canonical kilometer positions become centimeter positions
// relative to that anchor, so the anchor body always sits at the world
// origin and everything else lands where the astronomy puts it. The sky
// context bundles what a sky renderer needs for the current anchor in one
// snapshot.
package frame

import (
	"sync"

	"github.com/rs/zerolog/log"

	"pkg.world.dev/terra/solar"
	"pkg.world.dev/terra/types"
)

// KmToCm converts canonical solar-frame kilometers into world centimeters.
const KmToCm = 100000.0

// DefaultSunIntensity is the unitless sun brightness scalar handed to sky
// renderers, which map it into their own light units.
const DefaultSunIntensity = 10.0

// SkyContext is a renderer-facing snapshot of the sky above the anchor
// body.
type SkyContext struct {
	// SunDir is the world-space unit direction to the sun, shared by the
	// light direction and moon shading.
	SunDir       types.Vec3 `json:"sun_dir"`
	SunIntensity float64    `json:"sun_intensity"`

	// Atmosphere and Clouds gate the costly sky features per body; a
	// lunar world renders neither.
	Atmosphere bool `json:"atmosphere"`
	Clouds     bool `json:"clouds"`

	// StarRotationRad drives sidereal starfield rotation.
	StarRotationRad float64 `json:"star_rotation_rad"`

	AnchorRadiusKm float64 `json:"anchor_radius_km"`

	// MoonPhaseRad is the phase angle for moon shading: 0 new, pi full.
	MoonPhaseRad float64 `json:"moon_phase_rad"`
}

// DefaultSkyContext returns the earth-like context a renderer can fall
// back on before any astronomy is wired.
func DefaultSkyContext() SkyContext {
	return SkyContext{
		SunDir:         types.Vec3{X: 1},
		SunIntensity:   DefaultSunIntensity,
		Atmosphere:     true,
		Clouds:         true,
		AnchorRadiusKm: 6371.0,
	}
}

// Service holds a world's anchor body and answers transform and sky
// queries against the solar system. Safe for concurrent use.
type Service struct {
	mu     sync.RWMutex
	solar  *solar.System
	anchor solar.BodyID
}

func NewService(system *solar.System) *Service {
	return &Service{
		solar:  system,
		anchor: solar.BodyEarth,
	}
}

// SetAnchorBody re-anchors the world on another body. An anchor without a
// body definition still transforms positions but leaves the sky context at
// its defaults.
func (s *Service) SetAnchorBody(id solar.BodyID) {
	s.mu.Lock()
	s.anchor = id
	s.mu.Unlock()

	if _, ok := s.solar.BodyDef(id); !ok {
		log.Warn().Str("body", string(id)).Msg("anchor body has no definition, sky context degrades to defaults")
		return
	}
	log.Info().Str("body", string(id)).Msg("world frame anchored")
}

func (s *Service) AnchorBody() solar.BodyID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.anchor
}

// CanonicalKmToWorldCm converts a canonical solar-frame position in
// kilometers into this world's centimeter frame, anchor body at the
// origin.
func (s *Service) CanonicalKmToWorldCm(canonicalKm types.Vec3) types.Vec3 {
	anchorKm := s.solar.BodyState(s.AnchorBody()).PositionKm
	return canonicalKm.Sub(anchorKm).Scale(KmToCm)
}

// BodyWorldCm returns a body's position in this world's frame. On an earth
// map the moon lands 384,400 km out; on a moon map the roles swap.
func (s *Service) BodyWorldCm(id solar.BodyID) types.Vec3 {
	return s.CanonicalKmToWorldCm(s.solar.BodyState(id).PositionKm)
}

// MoonWorldCm is a convenience for the most common placement query.
func (s *Service) MoonWorldCm() types.Vec3 {
	return s.BodyWorldCm(solar.BodyMoon)
}

// BuildSkyContext snapshots the sky for the current anchor. Sun direction
// is taken canonical as world, which holds while worlds carry no latitude
// rotation of their own.
func (s *Service) BuildSkyContext() SkyContext {
	ctx := DefaultSkyContext()

	ctx.SunDir = s.solar.SunDir()
	ctx.StarRotationRad = s.solar.GMSTRad()
	ctx.MoonPhaseRad = s.solar.MoonPhaseRad()

	if def, ok := s.solar.BodyDef(s.AnchorBody()); ok {
		ctx.Atmosphere = def.HasAtmosphere
		ctx.Clouds = def.HasClouds
		ctx.AnchorRadiusKm = def.RadiusKm
	}

	return ctx
}
