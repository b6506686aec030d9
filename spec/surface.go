// Package spec holds the runtime spec documents that drive surface contact,
// medium physics, and biome classification, plus the registry that resolves
// spec ids with graceful fallback. Specs are plain data: loading them from
// packs lives in specpack, evaluating them against world state lives in
// surface and environment.
package spec

import (
	"math"

	"pkg.world.dev/terra/types"
)

// TemperatureResponse is a friction multiplier lookup table sampled over a
// temperature band. Tables come from spec packs; an empty table always
// evaluates to 1.
type TemperatureResponse struct {
	MinTempK float64   `json:"min_temp_k"`
	MaxTempK float64   `json:"max_temp_k"`
	Samples  []float64 `json:"samples,omitempty"`
}

func DefaultTemperatureResponse() TemperatureResponse {
	return TemperatureResponse{MinTempK: 200, MaxTempK: 350}
}

// Eval samples the table at tempK with linear interpolation, clamping to the
// band edges.
func (r TemperatureResponse) Eval(tempK float64) float64 {
	n := len(r.Samples)
	if n == 0 {
		return 1
	}
	if n == 1 || r.MaxTempK <= r.MinTempK {
		return r.Samples[0]
	}
	t := (tempK - r.MinTempK) / (r.MaxTempK - r.MinTempK)
	t = math.Min(math.Max(t, 0), 1)
	pos := t * float64(n-1)
	i := int(pos)
	if i >= n-1 {
		return r.Samples[n-1]
	}
	frac := pos - float64(i)
	return r.Samples[i]*(1-frac) + r.Samples[i+1]*frac
}

// Surface defines contact behavior for a surface material: friction,
// deformation, thermal response. Loaded from spec packs or registered
// directly; resolved through Registry.
type Surface struct {
	ID          types.SurfaceSpecID `json:"id"`
	Version     int                 `json:"version"`
	DisplayName string              `json:"display_name"`

	StaticFriction        float64 `json:"static_friction"`
	DynamicFriction       float64 `json:"dynamic_friction"`
	Restitution           float64 `json:"restitution"`
	WetFrictionMultiplier float64 `json:"wet_friction_multiplier"`

	// Compliance is surface give under load: 0 rigid, 1 very soft.
	Compliance            float64 `json:"compliance"`
	DeformationStrength   float64 `json:"deformation_strength"`
	DeformationRatePerS   float64 `json:"deformation_rate"`
	MaxDeformationDepthCm float64 `json:"max_deformation_depth"`
	RecoveryRatePerS      float64 `json:"recovery_rate"`

	RollingResistance      float64 `json:"rolling_resistance"`
	FootstepImpulseDamping float64 `json:"footstep_impulse_damping"`

	ThermalConductivityWmK float64 `json:"thermal_conductivity"`
	HeatCapacityJkgK       float64 `json:"heat_capacity"`
	Emissivity             float64 `json:"emissivity"`

	HasTemperatureResponse bool                `json:"has_temperature_response,omitempty"`
	TempFrictionLUT        TemperatureResponse `json:"temp_friction_lut,omitempty"`

	IsDeformable      bool `json:"is_deformable"`
	IsSlippery        bool `json:"is_slippery"`
	AffectedByWetness bool `json:"affected_by_wetness"`
}

// DefaultSurface returns a surface spec with baseline values for dry, rigid
// ground. Pack loaders start from this so absent JSON fields keep sane
// physics.
func DefaultSurface() Surface {
	return Surface{
		Version:                1,
		StaticFriction:         0.8,
		DynamicFriction:        0.6,
		Restitution:            0.2,
		WetFrictionMultiplier:  0.7,
		RollingResistance:      0.01,
		ThermalConductivityWmK: 1.0,
		HeatCapacityJkgK:       1000,
		Emissivity:             0.9,
		TempFrictionLUT:        DefaultTemperatureResponse(),
		AffectedByWetness:      true,
	}
}

// FallbackSurface is the spec returned when resolution finds nothing. It is
// deliberately inert: no deformation, no wetness response, air-like thermal
// behavior.
func FallbackSurface() Surface {
	s := DefaultSurface()
	s.DisplayName = "Default"
	s.StaticFriction = 0.7
	s.DynamicFriction = 0.5
	s.Restitution = 0.3
	s.AffectedByWetness = false
	s.ThermalConductivityWmK = 0.026
	s.HeatCapacityJkgK = 1005
	return s
}

// ValidateAndClamp forces every field into its valid range. Reports whether
// anything was out of range.
func (s *Surface) ValidateAndClamp() bool {
	modified := false
	clamp := func(v *float64, min, max float64) {
		c := math.Min(math.Max(*v, min), max)
		if c != *v {
			*v = c
			modified = true
		}
	}
	clamp(&s.StaticFriction, 0, 2)
	clamp(&s.DynamicFriction, 0, 2)
	clamp(&s.Restitution, 0, 1)
	clamp(&s.WetFrictionMultiplier, 0, 2)
	clamp(&s.Compliance, 0, 1)
	clamp(&s.DeformationStrength, 0, 1)
	clamp(&s.DeformationRatePerS, 0, 10)
	clamp(&s.MaxDeformationDepthCm, 0, 100)
	clamp(&s.RecoveryRatePerS, 0, 10)
	clamp(&s.RollingResistance, 0, 1)
	clamp(&s.FootstepImpulseDamping, 0, 1)
	clamp(&s.ThermalConductivityWmK, 0, 1000)
	clamp(&s.HeatCapacityJkgK, 0, 10000)
	return modified
}
