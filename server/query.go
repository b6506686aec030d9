package server

import (
	"github.com/gofiber/fiber/v2"

	"pkg.world.dev/terra/delta"
	"pkg.world.dev/terra/dql"
	"pkg.world.dev/terra/frame"
	"pkg.world.dev/terra/solar"
	"pkg.world.dev/terra/types"
)

// ListDeltasResponse carries the envelopes that matched a delta query.
type ListDeltasResponse struct {
	Deltas []delta.Envelope `json:"deltas"`
}

// PostDeltaQuery godoc
//
//	@Summary      Queries stored deltas
//	@Description  Runs a DQL expression, e.g. KIND(fracture) & CELL(3,-2,0), over the stored deltas
//	@Accept       application/json
//	@Produce      application/json
//	@Param        QueryRequest  body      dql.QueryRequest    true  "Query body"
//	@Success      200           {object}  ListDeltasResponse  "Matching deltas"
//	@Failure      400           {string}  string              "Invalid request body or DQL"
//	@Router       /query/delta/list [post]
func PostDeltaQuery(w Provider) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		req := new(dql.QueryRequest)
		if err := ctx.BodyParser(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "failed to parse request body: "+err.Error())
		}

		deltaFilter, err := dql.Parse(req.DQL)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "failed to parse dql: "+err.Error())
		}

		envelopes, err := w.QueryDeltas(ctx.Context(), deltaFilter)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to query deltas: "+err.Error())
		}

		return ctx.JSON(&ListDeltasResponse{Deltas: envelopes})
	}
}

// ResolveSpecRequest names one spec document to resolve. Kind is one of
// surface, medium, or biome.
type ResolveSpecRequest struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// ResolveSpecResponse is the resolved document plus the tier that produced
// it. Surface and medium resolution never fails; biome lookups report
// Found instead, since biomes have no hardcoded fallback.
type ResolveSpecResponse struct {
	Kind   string `json:"kind"`
	ID     string `json:"id"`
	Source string `json:"source,omitempty"`
	Found  bool   `json:"found"`
	Spec   any    `json:"spec,omitempty"`
}

// PostSpecResolve godoc
//
//	@Summary      Resolves a spec document
//	@Description  Resolves a surface, medium, or biome spec by id, reporting the resolution tier
//	@Accept       application/json
//	@Produce      application/json
//	@Param        ResolveSpecRequest  body      ResolveSpecRequest   true  "Query body"
//	@Success      200                 {object}  ResolveSpecResponse  "Resolved spec"
//	@Failure      400                 {string}  string               "Unknown spec kind"
//	@Router       /query/spec/resolve [post]
func PostSpecResolve(w Provider) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		req := new(ResolveSpecRequest)
		if err := ctx.BodyParser(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "failed to parse request body: "+err.Error())
		}

		reply := ResolveSpecResponse{Kind: req.Kind, ID: req.ID}
		switch req.Kind {
		case "surface":
			doc, source := w.ResolveSurfaceSpec(types.SurfaceSpecID(req.ID))
			reply.Source = source.String()
			reply.Found = true
			reply.Spec = doc
		case "medium":
			doc, source := w.ResolveMediumSpec(types.MediumSpecID(req.ID))
			reply.Source = source.String()
			reply.Found = true
			reply.Spec = doc
		case "biome":
			doc, found := w.BiomeSpec(types.BiomeSpecID(req.ID))
			reply.Found = found
			if found {
				reply.Spec = doc
			}
		default:
			return fiber.NewError(fiber.StatusBadRequest, "unknown spec kind: "+req.Kind)
		}

		return ctx.JSON(reply)
	}
}

// GetSolarStateResponse bundles the solar state with the renderer-facing
// sky context derived from it.
type GetSolarStateResponse struct {
	Solar solar.State      `json:"solar"`
	Sky   frame.SkyContext `json:"sky"`
}

// GetSolarState godoc
//
//	@Summary      Reports the solar state
//	@Description  Reports sun and moon state at the current simulation time, plus the sky context
//	@Produce      application/json
//	@Success      200  {object}  GetSolarStateResponse
//	@Router       /query/solar/state [post]
func GetSolarState(w Provider) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		return ctx.JSON(GetSolarStateResponse{
			Solar: w.SolarState(),
			Sky:   w.SkyContext(),
		})
	}
}
