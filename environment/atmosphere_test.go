package environment_test

import (
	"testing"

	"pkg.world.dev/terra/assert"
	"pkg.world.dev/terra/environment"
	"pkg.world.dev/terra/types"
)

func TestAtmosphereSeaLevel(t *testing.T) {
	field := environment.NewAtmosphereField(environment.EarthAtmosphere())

	state := field.StateAt(types.Vec3{})
	assert.Equal(t, 101325.0, state.PressurePa)
	assert.Equal(t, 288.15, state.TemperatureK)
	assert.Equal(t, 1.225, state.Density)
	assert.InDelta(t, 340.29, state.SpeedOfSound, 0.05)
	assert.Equal(t, 0.5, state.Humidity)
	assert.False(t, state.Vacuum)
	assert.Equal(t, 0.0, state.AltitudeCm)
}

func TestAtmosphereAltitudeProfile(t *testing.T) {
	field := environment.NewAtmosphereField(environment.EarthAtmosphere())

	// 1000 m above sea level.
	const altCm = 100000.0
	assert.InDelta(t, 281.65, field.TemperatureAt(altCm), 1e-9)
	assert.InDelta(t, 90079.0, field.PressureAt(altCm), 1.0)
	assert.InDelta(t, 1.1142, field.DensityAt(altCm), 1e-3)

	// Below sea level clamps to the reference values.
	assert.Equal(t, 101325.0, field.PressureAt(-5000))
	assert.Equal(t, 288.15, field.TemperatureAt(-5000))
	assert.Equal(t, 1.225, field.DensityAt(-5000))
}

func TestAtmosphereTemperatureFloor(t *testing.T) {
	field := environment.NewAtmosphereField(environment.EarthAtmosphere())

	// The linear lapse would hit 158 K at 20 km; the floor holds at 180 K.
	assert.Equal(t, 180.0, field.TemperatureAt(2000000))
	assert.InDelta(t, 268.95, field.SpeedOfSoundAt(2000000), 0.05)
}

func TestAtmosphereHardVacuumAboveTop(t *testing.T) {
	field := environment.NewAtmosphereField(environment.EarthAtmosphere())

	state := field.StateAt(types.Vec3{Z: 10000000})
	assert.True(t, state.Vacuum)
	assert.Equal(t, environment.CosmicBackgroundK, state.TemperatureK)
	assert.Equal(t, 0.0, state.PressurePa)
	assert.Equal(t, 0.0, state.Density)
	assert.Equal(t, 0.0, state.SpeedOfSound)
	assert.Equal(t, 0.0, state.Humidity)
	assert.Equal(t, types.Vec3{}, state.WindCmS)
}

func TestAtmosphereHumidityFalloff(t *testing.T) {
	field := environment.NewAtmosphereField(environment.EarthAtmosphere())

	assert.Equal(t, 0.5, field.StateAt(types.Vec3{}).Humidity)
	assert.InDelta(t, 0.25, field.StateAt(types.Vec3{Z: 500000}).Humidity, 1e-9)
	assert.Equal(t, 0.0, field.StateAt(types.Vec3{Z: 2500000}).Humidity)
}

func TestWindScalesWithAltitude(t *testing.T) {
	config := environment.EarthAtmosphere()
	config.BaseWindCmS = types.Vec3{X: 500}
	config.WindGustStrength = 0 // isolate the altitude term
	field := environment.NewAtmosphereField(config)

	assert.DeepEqual(t, types.Vec3{X: 500}, field.WindAt(types.Vec3{}))
	assert.DeepEqual(t, types.Vec3{X: 1000}, field.WindAt(types.Vec3{Z: 100000}))
}

func TestWindGustsAreDeterministic(t *testing.T) {
	config := environment.EarthAtmosphere()
	config.BaseWindCmS = types.Vec3{X: 500}
	field := environment.NewAtmosphereField(config)

	loc := types.Vec3{X: 1000, Y: 2000}
	first := field.WindAt(loc)
	second := field.WindAt(loc)
	assert.DeepEqual(t, first, second)

	// sin(1)*cos(2.6) * baseMag(500) * strength(0.1)
	gustX := first.X - 500.0
	assert.InDelta(t, -36.052, gustX, 0.01)
}

func TestWindGustsWithoutBaseWind(t *testing.T) {
	config := environment.EarthAtmosphere()
	config.WindGustStrength = 0.5
	field := environment.NewAtmosphereField(config)

	// Base magnitude below 1 cm/s falls back to 100 for gust scaling.
	wind := field.WindAt(types.Vec3{X: 1000, Y: 2000})
	assert.InDelta(t, -36.052, wind.X, 0.01)
}

func TestContextAtMapsState(t *testing.T) {
	field := environment.NewAtmosphereField(environment.EarthAtmosphere())

	ctx := field.ContextAt(types.Vec3{})
	assert.True(t, ctx.Valid)
	assert.Equal(t, 1.225, ctx.Density)
	assert.Equal(t, 1.0, ctx.SoundAttenuation)
	assert.DeepEqual(t, types.Vec3{Z: -980}, ctx.Gravity)

	// Thinner air attenuates sound by sqrt of the density ratio.
	high := field.ContextAt(types.Vec3{Z: 300000})
	assert.InDelta(t, 0.868, high.SoundAttenuation, 1e-3)

	space := field.ContextAt(types.Vec3{Z: 10000000})
	assert.True(t, space.Valid)
	assert.Equal(t, 0.0, space.SoundAttenuation)
	assert.Equal(t, 0.0, space.SpeedOfSound)
}
