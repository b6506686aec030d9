package specpack_test

import (
	"os"
	"path/filepath"
	"testing"

	"pkg.world.dev/terra/assert"
	"pkg.world.dev/terra/spec"
	"pkg.world.dev/terra/specpack"
)

const corePack = `{
  "pack_id": "CoreSpecs",
  "version": 2,
  "engine_compat": "5.7",
  "spec_types": ["surface", "medium", "biome"],
  "surface_specs": [
    {
      "id": "concrete",
      "display_name": "Concrete",
      "static_friction": 0.9,
      "dynamic_friction": 0.7,
      "restitution": 0.1
    },
    {
      "id": "snow",
      "display_name": "Snow",
      "static_friction": 0.35,
      "dynamic_friction": 0.25,
      "deformation_rate": 2.0,
      "max_deformation_depth": 40,
      "recovery_rate": 0.1,
      "is_deformable": true
    },
    {
      "display_name": "spec with no id is skipped"
    }
  ],
  "medium_specs": [
    {
      "id": "water",
      "display_name": "Water",
      "density": 1000,
      "drag_coefficient": 1.1,
      "viscosity": 0.001,
      "speed_of_sound": 1480,
      "absorption_coefficient": 0.3
    }
  ],
  "biome_specs": [
    {
      "id": "tundra",
      "display_name": "Tundra",
      "default_surface_spec_id": "snow",
      "default_medium_spec_id": "air",
      "altitude_range": {"min": 0, "max": 500000},
      "slope_range": {"min": 0, "max": 35}
    }
  ]
}`

func writePack(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	assert.NilError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPack(t *testing.T) {
	reg := spec.NewRegistry()
	loader := specpack.NewLoader(reg)
	path := writePack(t, t.TempDir(), "core.json", corePack)

	result, err := loader.LoadPack(path)
	assert.NilError(t, err)
	assert.Equal(t, 2, result.SurfaceSpecs)
	assert.Equal(t, 1, result.MediumSpecs)
	assert.Equal(t, 1, result.BiomeSpecs)
	assert.Equal(t, "CoreSpecs", result.Manifest.PackID)
	assert.Equal(t, 2, result.Manifest.Version)
	assert.Equal(t, "5.7", result.Manifest.EngineCompat)
	assert.NotEmpty(t, result.Manifest.ContentHash)

	concrete, source := reg.ResolveSurface("concrete")
	assert.Equal(t, spec.SourceRuntime, source)
	assert.Equal(t, 0.9, concrete.StaticFriction)

	water, source := reg.ResolveMedium("water")
	assert.Equal(t, spec.SourceRuntime, source)
	assert.Equal(t, 1000.0, water.Density)
	assert.Equal(t, 1.1, water.QuadraticDragCoeff)

	tundra, ok := reg.Biome("tundra")
	assert.True(t, ok)
	assert.Equal(t, 35.0, tundra.SlopeRange.Max)
}

func TestLoadPackKeepsDefaultsForAbsentFields(t *testing.T) {
	reg := spec.NewRegistry()
	loader := specpack.NewLoader(reg)
	path := writePack(t, t.TempDir(), "core.json", corePack)

	_, err := loader.LoadPack(path)
	assert.NilError(t, err)

	// The snow entry never mentions restitution or thermal fields.
	snow, _ := reg.ResolveSurface("snow")
	assert.Equal(t, 0.2, snow.Restitution)
	assert.Equal(t, 0.9, snow.Emissivity)
	assert.True(t, snow.AffectedByWetness)
	assert.True(t, snow.IsDeformable)

	// The water entry never mentions gravity or temperature.
	water, _ := reg.ResolveMedium("water")
	assert.Equal(t, -980.0, water.Gravity.Z)
	assert.Equal(t, 288.0, water.TemperatureK)
}

func TestLoadPackRejectsUnreadableAndMalformedFiles(t *testing.T) {
	loader := specpack.NewLoader(spec.NewRegistry())

	_, err := loader.LoadPack(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to read spec pack")

	path := writePack(t, t.TempDir(), "broken.json", `{"pack_id": `)
	_, err = loader.LoadPack(path)
	assert.IsError(t, err)
}

func TestLoadDirectorySkipsManifests(t *testing.T) {
	reg := spec.NewRegistry()
	loader := specpack.NewLoader(reg)
	dir := t.TempDir()

	writePack(t, dir, "core.json", corePack)
	writePack(t, dir, "manifest.json", `{"pack_id": "ShouldBeSkipped", "version": 1}`)
	writePack(t, dir, "notes.txt", "not a pack")

	sub := filepath.Join(dir, "mods")
	assert.NilError(t, os.Mkdir(sub, 0o755))
	writePack(t, sub, "override.json", `{
	  "pack_id": "Override",
	  "version": 1,
	  "surface_specs": [{"id": "concrete", "static_friction": 0.95}]
	}`)

	results, err := loader.LoadDirectory(dir)
	assert.NilError(t, err)
	assert.Len(t, results, 2)

	// Lexical order loads core.json before mods/override.json, so the
	// override wins.
	concrete, _ := reg.ResolveSurface("concrete")
	assert.Equal(t, 0.95, concrete.StaticFriction)
}

func TestLoadDirectoryContinuesPastBrokenPacks(t *testing.T) {
	reg := spec.NewRegistry()
	loader := specpack.NewLoader(reg)
	dir := t.TempDir()

	writePack(t, dir, "broken.json", "{")
	writePack(t, dir, "core.json", corePack)

	results, err := loader.LoadDirectory(dir)
	assert.NilError(t, err)
	assert.Len(t, results, 1)
	assert.True(t, reg.HasSurface("concrete"))
}

func TestValidate(t *testing.T) {
	loader := specpack.NewLoader(spec.NewRegistry())
	dir := t.TempDir()

	good := writePack(t, dir, "good.json", corePack)
	assert.NilError(t, loader.Validate(good))

	noID := writePack(t, dir, "noid.json", `{"version": 1}`)
	assert.ErrorContains(t, loader.Validate(noID), "pack_id")

	noVersion := writePack(t, dir, "nover.json", `{"pack_id": "X"}`)
	assert.ErrorContains(t, loader.Validate(noVersion), "version")

	badList := writePack(t, dir, "badlist.json",
		`{"pack_id": "X", "version": 1, "surface_specs": {"id": "oops"}}`)
	assert.ErrorContains(t, loader.Validate(badList), "surface_specs must be an array")
}

func TestContentHashIsStable(t *testing.T) {
	loader := specpack.NewLoader(spec.NewRegistry())
	dir := t.TempDir()

	a := writePack(t, dir, "a.json", corePack)
	b := writePack(t, dir, "b.json", corePack)
	c := writePack(t, dir, "c.json", corePack+"\n")

	hashA, err := loader.ContentHash(a)
	assert.NilError(t, err)
	hashB, err := loader.ContentHash(b)
	assert.NilError(t, err)
	hashC, err := loader.ContentHash(c)
	assert.NilError(t, err)

	assert.Equal(t, hashA, hashB)
	assert.NotEqual(t, hashA, hashC)
	assert.Len(t, hashA, 40)
}

func TestManifestIsCachedPerPath(t *testing.T) {
	loader := specpack.NewLoader(spec.NewRegistry())
	path := writePack(t, t.TempDir(), "core.json", corePack)

	_, ok := loader.Manifest(path)
	assert.False(t, ok)

	result, err := loader.LoadPack(path)
	assert.NilError(t, err)

	cached, ok := loader.Manifest(path)
	assert.True(t, ok)
	assert.Equal(t, result.Manifest.ContentHash, cached.ContentHash)
}
