package server

import (
	"github.com/gofiber/fiber/v2"
)

type GetWorldResponse struct {
	Namespace    string   `json:"namespace"`
	CurrentTick  uint64   `json:"currentTick"`
	Stage        string   `json:"stage"`
	SurfaceSpecs []string `json:"surfaceSpecs"`
	MediumSpecs  []string `json:"mediumSpecs"`
	BiomeSpecs   []string `json:"biomeSpecs"`
	Services     []string `json:"services"`
}

// GetWorld godoc
//
//	@Summary      Get information on the world and its registered specs
//	@Description  Get namespace, tick, stage, and the registered spec inventory
//	@Accept       application/json
//	@Produce      application/json
//	@Success      200  {object}  GetWorldResponse  "Registered world inventory"
//	@Router       /world [get]
func GetWorld(w Provider) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		return ctx.JSON(GetWorldResponse{
			Namespace:    w.Namespace(),
			CurrentTick:  w.CurrentTick(),
			Stage:        string(w.CurrentStage()),
			SurfaceSpecs: w.RegisteredSurfaceSpecs(),
			MediumSpecs:  w.RegisteredMediumSpecs(),
			BiomeSpecs:   w.RegisteredBiomeSpecs(),
			Services:     w.ActiveServices(),
		})
	}
}
