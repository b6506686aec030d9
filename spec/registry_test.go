package spec_test

import (
	"testing"

	"pkg.world.dev/terra/assert"
	"pkg.world.dev/terra/spec"
	"pkg.world.dev/terra/types"
)

func TestResolveSurfaceWalksAllTiers(t *testing.T) {
	reg := spec.NewRegistry()

	// Tier 3: empty registry resolves to the hardcoded fallback.
	got, source := reg.ResolveSurface("ice")
	assert.Equal(t, spec.SourceFallback, source)
	assert.Equal(t, "Default", got.DisplayName)

	// Tier 2: a registered default catches unknown ids.
	def := spec.DefaultSurface()
	def.ID = "dirt"
	def.DisplayName = "Dirt"
	reg.SetDefaultSurface(def)

	got, source = reg.ResolveSurface("ice")
	assert.Equal(t, spec.SourceDefault, source)
	assert.Equal(t, "Dirt", got.DisplayName)

	// Tier 1: a runtime spec wins over the default.
	ice := spec.DefaultSurface()
	ice.ID = "ice"
	ice.DisplayName = "Ice"
	ice.IsSlippery = true
	assert.NilError(t, reg.RegisterSurface(ice))

	got, source = reg.ResolveSurface("ice")
	assert.Equal(t, spec.SourceRuntime, source)
	assert.Equal(t, "Ice", got.DisplayName)
	assert.True(t, got.IsSlippery)
}

func TestResolveMediumWalksAllTiers(t *testing.T) {
	reg := spec.NewRegistry()

	got, source := reg.ResolveMedium("water")
	assert.Equal(t, spec.SourceFallback, source)
	assert.Equal(t, "Earth Atmosphere", got.DisplayName)

	def := spec.DefaultMedium()
	def.ID = "air"
	def.DisplayName = "Air"
	reg.SetDefaultMedium(def)

	got, source = reg.ResolveMedium("water")
	assert.Equal(t, spec.SourceDefault, source)
	assert.Equal(t, "Air", got.DisplayName)

	water := spec.DefaultMedium()
	water.ID = "water"
	water.DisplayName = "Water"
	water.Density = 1000
	assert.NilError(t, reg.RegisterMedium(water))

	got, source = reg.ResolveMedium("water")
	assert.Equal(t, spec.SourceRuntime, source)
	assert.Equal(t, 1000.0, got.Density)
}

func TestRegisterRejectsEmptyIDs(t *testing.T) {
	reg := spec.NewRegistry()

	err := reg.RegisterSurface(spec.DefaultSurface())
	assert.ErrorIs(t, err, spec.ErrInvalidSpecID)

	err = reg.RegisterMedium(spec.DefaultMedium())
	assert.ErrorIs(t, err, spec.ErrInvalidSpecID)

	err = reg.RegisterBiome(spec.DefaultBiome())
	assert.ErrorIs(t, err, spec.ErrInvalidSpecID)
}

func TestRegisterSurfaceClampsOutOfRangeValues(t *testing.T) {
	reg := spec.NewRegistry()

	hot := spec.DefaultSurface()
	hot.ID = "lava"
	hot.StaticFriction = 99
	assert.NilError(t, reg.RegisterSurface(hot))

	got, _ := reg.ResolveSurface("lava")
	assert.Equal(t, 2.0, got.StaticFriction)
}

func TestRegisterSurfaceReplacesExisting(t *testing.T) {
	reg := spec.NewRegistry()

	first := spec.DefaultSurface()
	first.ID = "sand"
	first.StaticFriction = 0.4
	assert.NilError(t, reg.RegisterSurface(first))

	second := spec.DefaultSurface()
	second.ID = "sand"
	second.StaticFriction = 0.45
	assert.NilError(t, reg.RegisterSurface(second))

	got, _ := reg.ResolveSurface("sand")
	assert.Equal(t, 0.45, got.StaticFriction)
	assert.Len(t, reg.SurfaceIDs(), 1)
}

func TestBiomeRegistration(t *testing.T) {
	reg := spec.NewRegistry()

	tundra := spec.DefaultBiome()
	tundra.ID = "tundra"
	tundra.DefaultSurfaceSpecID = "snow"
	tundra.DefaultMediumSpecID = "air"
	assert.NilError(t, reg.RegisterBiome(tundra))

	got, ok := reg.Biome("tundra")
	assert.True(t, ok)
	assert.Equal(t, types.SurfaceSpecID("snow"), got.DefaultSurfaceSpecID)

	_, ok = reg.Biome("desert")
	assert.False(t, ok)

	reg.SetDefaultBiome("tundra")
	assert.Equal(t, types.BiomeSpecID("tundra"), reg.DefaultBiomeID())
}

func TestClearDropsRuntimeSpecsButKeepsDefaults(t *testing.T) {
	reg := spec.NewRegistry()

	ice := spec.DefaultSurface()
	ice.ID = "ice"
	assert.NilError(t, reg.RegisterSurface(ice))

	def := spec.DefaultSurface()
	def.ID = "dirt"
	def.DisplayName = "Dirt"
	reg.SetDefaultSurface(def)

	reg.Clear()

	assert.False(t, reg.HasSurface("ice"))
	_, source := reg.ResolveSurface("ice")
	assert.Equal(t, spec.SourceDefault, source)
}

func TestSourceString(t *testing.T) {
	assert.Equal(t, "runtime", spec.SourceRuntime.String())
	assert.Equal(t, "default", spec.SourceDefault.String())
	assert.Equal(t, "fallback", spec.SourceFallback.String())
	assert.Equal(t, "unknown", spec.Source(42).String())
}

func TestSchemaDriftDetection(t *testing.T) {
	stored, err := spec.SerializeSchema(spec.Surface{})
	assert.NilError(t, err)

	ok, err := spec.MatchesSchema(spec.Surface{}, stored)
	assert.NilError(t, err)
	assert.True(t, ok)

	ok, err = spec.MatchesSchema(spec.Medium{}, stored)
	assert.NilError(t, err)
	assert.False(t, ok)
}
