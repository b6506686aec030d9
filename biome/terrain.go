// Package biome maps world locations to biome classes and on to their
// default surface and medium specs. It is the bridge between terrain
// authoring and the spec system: mask weights where the terrain pipeline
// paints them, altitude and slope rules everywhere else.
package biome

import (
	"math"

	"pkg.world.dev/terra/types"
)

// DefaultSampleStepCm is the central-difference step FuncTerrain uses to
// derive normals from its height function.
const DefaultSampleStepCm = 100.0

// Terrain supplies ground height and surface normals for biome queries.
type Terrain interface {
	// HeightAt returns the terrain Z in centimeters under the location.
	HeightAt(location types.Vec3) float64
	// NormalAt returns the unit surface normal at the location.
	NormalAt(location types.Vec3) types.Vec3
}

// FlatTerrain is sea-level flat ground everywhere, the default when no
// terrain source is wired.
type FlatTerrain struct{}

var _ Terrain = FlatTerrain{}

func (FlatTerrain) HeightAt(types.Vec3) float64 {
	return 0
}

func (FlatTerrain) NormalAt(types.Vec3) types.Vec3 {
	return types.Vec3{Z: 1}
}

// FuncTerrain adapts a height function into a Terrain. Normals come from
// central differences over SampleStepCm, so the function should be smooth
// at that scale.
type FuncTerrain struct {
	Height       func(x, y float64) float64
	SampleStepCm float64
}

var _ Terrain = FuncTerrain{}

func (t FuncTerrain) HeightAt(location types.Vec3) float64 {
	if t.Height == nil {
		return 0
	}
	return t.Height(location.X, location.Y)
}

func (t FuncTerrain) NormalAt(location types.Vec3) types.Vec3 {
	if t.Height == nil {
		return types.Vec3{Z: 1}
	}
	step := t.SampleStepCm
	if step <= 0 {
		step = DefaultSampleStepCm
	}
	gradX := (t.Height(location.X+step, location.Y) - t.Height(location.X-step, location.Y)) / (2 * step)
	gradY := (t.Height(location.X, location.Y+step) - t.Height(location.X, location.Y-step)) / (2 * step)
	return types.Vec3{X: -gradX, Y: -gradY, Z: 1}.Normalized()
}

// SlopeDegrees converts a surface normal into the slope angle from
// horizontal: 0 flat, 90 vertical.
func SlopeDegrees(normal types.Vec3) float64 {
	dot := math.Min(math.Max(normal.Dot(types.Vec3{Z: 1}), -1), 1)
	return math.Acos(dot) * 180 / math.Pi
}
