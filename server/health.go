package server

import (
	"github.com/gofiber/fiber/v2"
)

type GetHealthResponse struct {
	IsServerRunning   bool `json:"isServerRunning"`
	IsGameLoopRunning bool `json:"isGameLoopRunning"`
}

// GetHealth godoc
//
//	@Summary      Reports the health of the server and the world loop
//	@Description  Reports the health of the server and the world loop
//	@Produce      application/json
//	@Success      200  {object}  GetHealthResponse
//	@Router       /health [get]
func GetHealth(w Provider) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		return ctx.JSON(GetHealthResponse{
			IsServerRunning:   true,
			IsGameLoopRunning: w.IsGameRunning(),
		})
	}
}
