package solar

import (
	"pkg.world.dev/terra/types"
)

// BodyID names a celestial body.
type BodyID string

const (
	BodySun   BodyID = "sun"
	BodyEarth BodyID = "earth"
	BodyMoon  BodyID = "moon"
)

// BodyDef holds a body's immutable physical properties. Simplified values
// suitable for rendering, not ephemeris data.
type BodyDef struct {
	ID            BodyID  `json:"id"`
	RadiusKm      float64 `json:"radius_km"`
	HasAtmosphere bool    `json:"has_atmosphere"`
	HasClouds     bool    `json:"has_clouds"`
}

// BodyState is a body's instantaneous position and velocity in the
// canonical Earth-centered frame: X toward the vernal equinox, Z toward the
// north celestial pole. Positions in kilometers, velocities in km/s.
type BodyState struct {
	PositionKm  types.Vec3 `json:"position_km"`
	VelocityKmS types.Vec3 `json:"velocity_km_s"`
}

func defaultBodyDefs() map[BodyID]BodyDef {
	return map[BodyID]BodyDef{
		BodySun: {
			ID:       BodySun,
			RadiusKm: 696340.0,
		},
		BodyEarth: {
			ID:            BodyEarth,
			RadiusKm:      6371.0,
			HasAtmosphere: true,
			HasClouds:     true,
		},
		BodyMoon: {
			ID:       BodyMoon,
			RadiusKm: 1737.4,
		},
	}
}
