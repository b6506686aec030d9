package frame_test

import (
	"math"
	"testing"

	"pkg.world.dev/terra/assert"
	"pkg.world.dev/terra/frame"
	"pkg.world.dev/terra/solar"
	"pkg.world.dev/terra/types"
)

func newFrozenSystem() *solar.System {
	return solar.NewSystem(solar.WithTimeSource(func() float64 { return 0 }))
}

func TestServiceDefaultsToEarthAnchor(t *testing.T) {
	svc := frame.NewService(newFrozenSystem())
	assert.Equal(t, solar.BodyEarth, svc.AnchorBody())
}

func TestCanonicalKmToWorldCm(t *testing.T) {
	svc := frame.NewService(newFrozenSystem())

	// Earth sits at the canonical origin, so the transform is a pure
	// km-to-cm scale.
	got := svc.CanonicalKmToWorldCm(types.Vec3{X: 1, Y: -2, Z: 3})
	assert.Equal(t, types.Vec3{X: 100000, Y: -200000, Z: 300000}, got)
	assert.Equal(t, types.Vec3{}, svc.CanonicalKmToWorldCm(types.Vec3{}))
}

func TestMoonWorldCmFromEarth(t *testing.T) {
	svc := frame.NewService(newFrozenSystem())

	// At sim time zero the moon sits 384,400 km down the +X axis.
	moon := svc.MoonWorldCm()
	assert.InDelta(t, 38440000000.0, moon.X, 1e-3)
	assert.InDelta(t, 0.0, moon.Y, 1e-3)
	assert.InDelta(t, 0.0, moon.Z, 1e-3)
}

func TestAnchorSwapPutsMoonAtOrigin(t *testing.T) {
	svc := frame.NewService(newFrozenSystem())
	svc.SetAnchorBody(solar.BodyMoon)
	assert.Equal(t, solar.BodyMoon, svc.AnchorBody())

	assert.InDelta(t, 0.0, svc.MoonWorldCm().Length(), 1e-9)

	// Earth now lands 384,400 km the other way.
	earth := svc.BodyWorldCm(solar.BodyEarth)
	assert.InDelta(t, -38440000000.0, earth.X, 1e-3)
	assert.InDelta(t, 0.0, earth.Y, 1e-3)
}

func TestBodyWorldCmTracksSolarState(t *testing.T) {
	sys := newFrozenSystem()
	svc := frame.NewService(sys)

	want := sys.BodyState(solar.BodySun).PositionKm.Scale(frame.KmToCm)
	assert.Equal(t, want, svc.BodyWorldCm(solar.BodySun))
}

func TestDefaultSkyContext(t *testing.T) {
	ctx := frame.DefaultSkyContext()

	assert.Equal(t, types.Vec3{X: 1}, ctx.SunDir)
	assert.InDelta(t, frame.DefaultSunIntensity, ctx.SunIntensity, 1e-9)
	assert.True(t, ctx.Atmosphere)
	assert.True(t, ctx.Clouds)
	assert.InDelta(t, 0.0, ctx.StarRotationRad, 1e-9)
	assert.InDelta(t, 6371.0, ctx.AnchorRadiusKm, 1e-9)
	assert.InDelta(t, 0.0, ctx.MoonPhaseRad, 1e-9)
}

func TestBuildSkyContextOnEarth(t *testing.T) {
	sys := solar.NewSystem(solar.WithTimeSource(func() float64 { return 1710903960 }))
	svc := frame.NewService(sys)

	ctx := svc.BuildSkyContext()
	assert.Equal(t, sys.SunDir(), ctx.SunDir)
	assert.InDelta(t, 1.0, ctx.SunDir.Length(), 1e-9)
	assert.InDelta(t, frame.DefaultSunIntensity, ctx.SunIntensity, 1e-9)
	assert.True(t, ctx.Atmosphere)
	assert.True(t, ctx.Clouds)
	assert.InDelta(t, 6371.0, ctx.AnchorRadiusKm, 1e-9)
	assert.Equal(t, sys.GMSTRad(), ctx.StarRotationRad)
	assert.True(t, ctx.StarRotationRad >= 0 && ctx.StarRotationRad < 2*math.Pi)
	assert.Equal(t, sys.MoonPhaseRad(), ctx.MoonPhaseRad)
}

func TestBuildSkyContextOnMoon(t *testing.T) {
	svc := frame.NewService(newFrozenSystem())
	svc.SetAnchorBody(solar.BodyMoon)

	ctx := svc.BuildSkyContext()
	assert.False(t, ctx.Atmosphere)
	assert.False(t, ctx.Clouds)
	assert.InDelta(t, 1737.4, ctx.AnchorRadiusKm, 1e-9)
}

func TestUnknownAnchorDegrades(t *testing.T) {
	sys := newFrozenSystem()
	svc := frame.NewService(sys)
	svc.SetAnchorBody(solar.BodyID("station"))

	// Transforms still work, treating the unknown anchor as unmoving at
	// the origin.
	got := svc.CanonicalKmToWorldCm(types.Vec3{X: 1})
	assert.Equal(t, types.Vec3{X: 100000}, got)

	// The sky context keeps its earth-like defaults but stays live on the
	// astronomy.
	ctx := svc.BuildSkyContext()
	assert.True(t, ctx.Atmosphere)
	assert.InDelta(t, 6371.0, ctx.AnchorRadiusKm, 1e-9)
	assert.Equal(t, sys.SunDir(), ctx.SunDir)
}
