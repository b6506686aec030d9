package spec

import "pkg.world.dev/terra/types"

// SurfaceState is the resolved contact state at one world location: the
// spec's base values with wetness, snow, compaction, and temperature
// modifiers already folded in. This is the unified query result consumed by
// movement, vehicles, and effects.
type SurfaceState struct {
	SpecID types.SurfaceSpecID `json:"spec_id"`

	FrictionStatic  float64 `json:"friction_static"`
	FrictionDynamic float64 `json:"friction_dynamic"`
	Restitution     float64 `json:"restitution"`

	Compliance          float64 `json:"compliance"`
	DeformationStrength float64 `json:"deformation_strength"`

	Wetness      float64 `json:"wetness"`
	SnowDepthCm  float64 `json:"snow_depth"`
	Compaction   float64 `json:"compaction"`
	TemperatureK float64 `json:"temperature"`

	Valid bool `json:"valid"`
}

// EnvironmentContext is the resolved medium state at one world location,
// after volume overrides and altitude falloff.
type EnvironmentContext struct {
	MediumSpecID types.MediumSpecID `json:"medium_spec_id"`

	Density      float64 `json:"density"`
	Viscosity    float64 `json:"viscosity"`
	PressurePa   float64 `json:"pressure"`
	TemperatureK float64 `json:"temperature"`

	// Gravity and WindVelocity are cm-based world vectors.
	Gravity      types.Vec3 `json:"gravity"`
	WindVelocity types.Vec3 `json:"wind_velocity"`

	SpeedOfSound     float64 `json:"speed_of_sound"`
	SoundAttenuation float64 `json:"sound_attenuation"`

	Valid bool `json:"valid"`
}
