package spec

import (
	"math"

	"pkg.world.dev/terra/types"
)

// Medium defines an atmosphere or fluid environment: density, drag,
// thermal state, gravity, and sound propagation. SI units throughout except
// gravity and wind, which are cm-based to match world coordinates.
type Medium struct {
	ID          types.MediumSpecID `json:"id"`
	Version     int                `json:"version"`
	DisplayName string             `json:"display_name"`

	// Density in kg/m3. Air ~1.225, water ~1000, vacuum ~0.
	Density            float64 `json:"density"`
	LinearDragCoeff    float64 `json:"linear_drag_coefficient"`
	QuadraticDragCoeff float64 `json:"drag_coefficient"`
	// Viscosity in kg/(m*s). Air ~1.8e-5, water ~1e-3.
	Viscosity  float64 `json:"viscosity"`
	PressurePa float64 `json:"pressure"`

	TemperatureK           float64 `json:"temperature"`
	ThermalConductivityWmK float64 `json:"thermal_conductivity"`
	HeatCapacityJkgK       float64 `json:"heat_capacity"`

	SolarIrradianceWm2 float64    `json:"solar_irradiance"`
	SunDirection       types.Vec3 `json:"sun_direction"`

	// Gravity in cm/s2; Earth is (0,0,-980).
	Gravity types.Vec3 `json:"gravity"`

	// SpeedOfSound in m/s. Air ~343, water ~1480, 0 means no propagation.
	SpeedOfSound          float64 `json:"speed_of_sound"`
	AbsorptionCoefficient float64 `json:"absorption_coefficient"`
	// SoundAttenuation multiplies propagated sound; 0 silences the medium.
	SoundAttenuation float64 `json:"sound_attenuation"`
}

// DefaultMedium returns sea-level Earth air. Pack loaders start from this so
// absent JSON fields keep sane physics.
func DefaultMedium() Medium {
	return Medium{
		Version:                1,
		Density:                1.225,
		LinearDragCoeff:        0.1,
		QuadraticDragCoeff:     0.01,
		Viscosity:              1.8e-5,
		PressurePa:             101325,
		TemperatureK:           288,
		ThermalConductivityWmK: 0.026,
		HeatCapacityJkgK:       1005,
		SolarIrradianceWm2:     800,
		SunDirection:           types.Vec3{X: 1},
		Gravity:                types.Vec3{Z: -980},
		SpeedOfSound:           343,
		AbsorptionCoefficient:  0.01,
		SoundAttenuation:       1.0,
	}
}

// FallbackMedium is the medium returned when resolution finds nothing:
// Earth sea-level atmosphere with a bluff-body drag coefficient.
func FallbackMedium() Medium {
	m := DefaultMedium()
	m.DisplayName = "Earth Atmosphere"
	m.QuadraticDragCoeff = 0.5
	return m
}

// ValidateAndClamp forces every field into its valid range. Reports whether
// anything was out of range.
func (m *Medium) ValidateAndClamp() bool {
	modified := false
	clamp := func(v *float64, min, max float64) {
		c := math.Min(math.Max(*v, min), max)
		if c != *v {
			*v = c
			modified = true
		}
	}
	clamp(&m.Density, 0, 2000)
	clamp(&m.LinearDragCoeff, 0, 10)
	clamp(&m.QuadraticDragCoeff, 0, 10)
	clamp(&m.Viscosity, 0, 100)
	clamp(&m.PressurePa, 0, 1e8)
	clamp(&m.TemperatureK, 0, 10000)
	clamp(&m.ThermalConductivityWmK, 0, 1000)
	clamp(&m.SpeedOfSound, 0, 10000)
	clamp(&m.AbsorptionCoefficient, 0, 1)
	clamp(&m.SoundAttenuation, 0, 2)
	return modified
}
