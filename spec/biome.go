package spec

import "pkg.world.dev/terra/types"

// Range is a closed [Min, Max] interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies inside the interval.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Center returns the interval midpoint.
func (r Range) Center() float64 {
	return (r.Min + r.Max) * 0.5
}

// Width returns the interval length.
func (r Range) Width() float64 {
	return r.Max - r.Min
}

// Biome maps a region class to its default surface and medium specs and
// defines the altitude/slope envelope it occupies. Biome resolution scores
// candidates by how centered a query point sits in each envelope.
type Biome struct {
	ID          types.BiomeSpecID `json:"id"`
	DisplayName string            `json:"display_name"`

	DefaultSurfaceSpecID types.SurfaceSpecID `json:"default_surface_spec_id"`
	DefaultMediumSpecID  types.MediumSpecID  `json:"default_medium_spec_id"`

	// MaskChannel is the terrain mask channel carrying this biome's weight,
	// when mask-based lookup is in use.
	MaskChannel int `json:"mask_channel"`

	// TemperatureModifier is a Kelvin offset applied on top of the ambient
	// temperature inside this biome.
	TemperatureModifier float64 `json:"temperature_modifier"`
	Humidity            float64 `json:"humidity"`
	WindMultiplier      float64 `json:"wind_multiplier"`

	// AltitudeRange is in cm relative to sea level.
	AltitudeRange Range `json:"altitude_range"`
	// SlopeRange is in degrees from horizontal.
	SlopeRange Range `json:"slope_range"`
}

// DefaultBiome returns a biome spec that matches everywhere.
func DefaultBiome() Biome {
	return Biome{
		Humidity:       0.5,
		WindMultiplier: 1.0,
		AltitudeRange:  Range{Min: -1000000, Max: 1000000},
		SlopeRange:     Range{Min: 0, Max: 90},
	}
}
