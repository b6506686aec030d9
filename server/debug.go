package server

import (
	"github.com/gofiber/fiber/v2"

	"pkg.world.dev/terra/delta"
)

type DebugStateRequest struct{}

// DebugStateResponse is the full persisted state: one record per stored
// cell, in the on-disk document shape.
type DebugStateResponse []delta.CellRecord

// GetDebugState godoc
//
//	@Summary      Get the entire persisted world state
//	@Description  Displays every stored cell record
//	@Produce      application/json
//	@Success      200  {object}  DebugStateResponse
//	@Router       /debug/state [post]
func GetDebugState(w Provider) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		records, err := w.CellRecords(ctx.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to collect cell records: "+err.Error())
		}
		if records == nil {
			records = []delta.CellRecord{}
		}
		return ctx.JSON(DebugStateResponse(records))
	}
}
