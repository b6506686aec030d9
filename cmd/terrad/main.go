package main

import (
	"errors"
	"log"

	"github.com/rotisserie/eris"

	"pkg.world.dev/terra"
	"pkg.world.dev/terra/spec"
)

func main() {
	world, err := terra.NewWorld()
	if err != nil {
		log.Fatal(err, eris.ToString(err, true))
	}

	if err := registerSpecs(world); err != nil {
		log.Fatal(err, eris.ToString(err, true))
	}
	registerScenes(world)

	if err := world.StartGame(); err != nil {
		log.Fatal(err, eris.ToString(err, true))
	}
}

// registerSpecs installs a starter spec set. Worlds with content packs on
// disk get the rest through TERRA_PACK_DIR.
func registerSpecs(world *terra.World) error {
	snow := spec.DefaultSurface()
	snow.ID = "snow"
	snow.DisplayName = "Snow"
	snow.StaticFriction = 0.35
	snow.DynamicFriction = 0.25
	snow.Compliance = 0.8
	snow.IsDeformable = true
	snow.AffectedByWetness = true

	ice := spec.DefaultSurface()
	ice.ID = "ice"
	ice.DisplayName = "Ice"
	ice.StaticFriction = 0.08
	ice.DynamicFriction = 0.05
	ice.IsSlippery = true

	water := spec.DefaultMedium()
	water.ID = "water"
	water.DisplayName = "Water"
	water.Density = 1000
	water.Viscosity = 1e-3
	water.QuadraticDragCoeff = 0.8

	tundra := spec.Biome{
		ID:                   "tundra",
		DisplayName:          "Tundra",
		DefaultSurfaceSpecID: "snow",
		TemperatureModifier:  -12,
		Humidity:             0.3,
	}

	specs := world.Specs()
	return errors.Join(
		specs.RegisterSurface(snow),
		specs.RegisterSurface(ice),
		specs.RegisterMedium(water),
		specs.RegisterBiome(tundra),
	)
}

func registerScenes(world *terra.World) {
	scenes := world.Scenes()
	scenes.SetMenuPath("/Game/Maps/MainMenu")
	if err := scenes.Register("tundra_valley", "/Game/Maps/TundraValley"); err != nil {
		log.Fatal(err, eris.ToString(err, true))
	}
}
