package environment

import (
	"math"
	"sync"

	"github.com/rs/zerolog/log"

	"pkg.world.dev/terra/spec"
	"pkg.world.dev/terra/types"
)

const (
	// VacuumDensityThreshold is the density below which the service treats
	// the medium as vacuum for force and sound queries.
	VacuumDensityThreshold = 0.001
	// WaterDensityThreshold is the density above which a location counts
	// as underwater.
	WaterDensityThreshold = 500.0
)

// Volume is an axis-aligned box that overrides the ambient medium inside
// it. Overlapping volumes resolve by priority, higher wins.
type Volume struct {
	Name         string             `json:"name"`
	MediumSpecID types.MediumSpecID `json:"medium_spec_id"`
	Priority     int                `json:"priority"`

	// CenterCm and ExtentCm define the box; extent is the half-size.
	CenterCm types.Vec3 `json:"center"`
	ExtentCm types.Vec3 `json:"extent"`

	// Overrides apply on top of the medium spec when positive.
	TemperatureOverrideK float64    `json:"temperature_override"`
	PressureOverridePa   float64    `json:"pressure_override"`
	WindVelocityCmS      types.Vec3 `json:"wind_velocity"`
}

// Contains reports whether the point lies inside the box.
func (v Volume) Contains(p types.Vec3) bool {
	return math.Abs(p.X-v.CenterCm.X) <= v.ExtentCm.X &&
		math.Abs(p.Y-v.CenterCm.Y) <= v.ExtentCm.Y &&
		math.Abs(p.Z-v.CenterCm.Z) <= v.ExtentCm.Z
}

// Service answers medium queries by priority: registered volume first, the
// atmosphere field next, then the configured default medium. Locations no
// arm covers resolve to an invalid context.
type Service struct {
	mu       sync.RWMutex
	registry *spec.Registry
	field    *AtmosphereField
	volumes  []Volume

	defaultMediumID types.MediumSpecID
	hasDefault      bool
}

func NewService(registry *spec.Registry) *Service {
	return &Service{registry: registry}
}

// SetAtmosphereField installs or clears the ambient atmosphere arm.
func (s *Service) SetAtmosphereField(field *AtmosphereField) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.field = field
	if field != nil {
		log.Info().Msg("atmosphere field set, altitude-based environment active")
	} else {
		log.Info().Msg("atmosphere field cleared, default medium only")
	}
}

// SetDefaultMedium installs the final fallback arm.
func (s *Service) SetDefaultMedium(id types.MediumSpecID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultMediumID = id
	s.hasDefault = true
	log.Info().Str("medium", string(id)).Msg("default medium set")
}

// RegisterVolume adds an override volume. Registering a name again
// replaces the previous volume.
func (s *Service) RegisterVolume(v Volume) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.volumes {
		if s.volumes[i].Name == v.Name {
			s.volumes[i] = v
			return
		}
	}
	s.volumes = append(s.volumes, v)
	log.Debug().
		Str("volume", v.Name).
		Str("medium", string(v.MediumSpecID)).
		Msg("registered environment volume")
}

func (s *Service) UnregisterVolume(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.volumes {
		if s.volumes[i].Name == name {
			s.volumes = append(s.volumes[:i], s.volumes[i+1:]...)
			return
		}
	}
}

// EnvironmentAt resolves the full environment context at a world location.
func (s *Service) EnvironmentAt(location types.Vec3) spec.EnvironmentContext {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if volume := s.volumeAt(location); volume != nil && volume.MediumSpecID != "" {
		medium, _ := s.registry.ResolveMedium(volume.MediumSpecID)
		return buildContext(medium, volume)
	}

	if s.field != nil {
		return s.field.ContextAt(location)
	}

	if s.hasDefault {
		medium, _ := s.registry.ResolveMedium(s.defaultMediumID)
		return buildContext(medium, nil)
	}

	return spec.EnvironmentContext{}
}

// MediumAt returns the medium spec id governing a location, without
// building the full context.
func (s *Service) MediumAt(location types.Vec3) types.MediumSpecID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if volume := s.volumeAt(location); volume != nil && volume.MediumSpecID != "" {
		return volume.MediumSpecID
	}
	if s.hasDefault {
		return s.defaultMediumID
	}
	return ""
}

func (s *Service) IsVacuumAt(location types.Vec3) bool {
	ctx := s.EnvironmentAt(location)
	return ctx.Valid && ctx.Density < VacuumDensityThreshold
}

func (s *Service) IsUnderwaterAt(location types.Vec3) bool {
	ctx := s.EnvironmentAt(location)
	return ctx.Valid && ctx.Density > WaterDensityThreshold
}

func (s *Service) SoundAttenuationAt(location types.Vec3) float64 {
	ctx := s.EnvironmentAt(location)
	if !ctx.Valid {
		return 1.0
	}
	return ctx.SoundAttenuation
}

// DragForce computes the quadratic drag opposing a velocity:
// F = 0.5*rho*v^2*Cd*A. Velocity is cm/s, area cm^2; the result is a
// cm-based force vector. Vacuum and rest produce zero force.
func (s *Service) DragForce(location, velocity types.Vec3, dragAreaCm2, dragCoefficient float64) types.Vec3 {
	ctx := s.EnvironmentAt(location)
	if !ctx.Valid || ctx.Density < VacuumDensityThreshold {
		return types.Vec3{}
	}

	speedCmS := velocity.Length()
	if speedCmS < 1e-8 {
		return types.Vec3{}
	}

	areaM2 := dragAreaCm2 / 10000.0
	speedMS := speedCmS / 100.0
	magnitudeN := 0.5 * ctx.Density * speedMS * speedMS * dragCoefficient * areaM2

	// 1 N is about 100 force units in the cm-based world.
	return velocity.Normalized().Scale(-magnitudeN * 100.0)
}

// BuoyancyForce computes rho*V*g opposing gravity for a displaced volume
// in cm^3. Vacuum produces zero force.
func (s *Service) BuoyancyForce(location types.Vec3, displacedVolumeCm3 float64) types.Vec3 {
	ctx := s.EnvironmentAt(location)
	if !ctx.Valid || ctx.Density < VacuumDensityThreshold {
		return types.Vec3{}
	}

	volumeM3 := displacedVolumeCm3 / 1000000.0
	gravityMS2 := ctx.Gravity.Length() / 100.0
	magnitudeN := ctx.Density * volumeM3 * gravityMS2

	return ctx.Gravity.Normalized().Scale(-magnitudeN * 100.0)
}

// volumeAt returns the highest-priority volume containing the location.
// Callers hold the read lock.
func (s *Service) volumeAt(location types.Vec3) *Volume {
	var best *Volume
	bestPriority := math.MinInt32
	for i := range s.volumes {
		v := &s.volumes[i]
		if !v.Contains(location) {
			continue
		}
		if v.Priority > bestPriority {
			bestPriority = v.Priority
			best = v
		}
	}
	return best
}

func buildContext(medium spec.Medium, volume *Volume) spec.EnvironmentContext {
	ctx := spec.EnvironmentContext{
		MediumSpecID:     medium.ID,
		Density:          medium.Density,
		Viscosity:        medium.Viscosity,
		PressurePa:       medium.PressurePa,
		TemperatureK:     medium.TemperatureK,
		Gravity:          medium.Gravity,
		SpeedOfSound:     medium.SpeedOfSound,
		SoundAttenuation: medium.SoundAttenuation,
	}

	if volume != nil {
		if volume.TemperatureOverrideK > 0 {
			ctx.TemperatureK = volume.TemperatureOverrideK
		}
		if volume.PressureOverridePa > 0 {
			ctx.PressurePa = volume.PressureOverridePa
		}
		ctx.WindVelocity = volume.WindVelocityCmS
	}

	if ctx.Density < VacuumDensityThreshold {
		ctx.SoundAttenuation = 0
		ctx.SpeedOfSound = 0
	} else if ctx.Density < 0.1 {
		ctx.SoundAttenuation *= math.Sqrt(ctx.Density / 1.225)
	}

	ctx.Valid = true
	return ctx
}
