package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rotisserie/eris"

	"pkg.world.dev/terra/storage/redis"
	"pkg.world.dev/terra/submission"
)

// PostDeltaRequest is a delta batch plus an optional idempotency pair.
// When ClientID and Sequence are both set and the world runs against
// redis, a retried submission with the same pair is rejected instead of
// being applied twice.
type PostDeltaRequest struct {
	submission.Batch
	ClientID string `json:"clientId,omitempty"`
	Sequence uint64 `json:"sequence,omitempty"`
}

// PostDeltaResponse is the HTTP response for a successful delta submission.
type PostDeltaResponse struct {
	BatchHash string `json:"batchHash"`
	Tick      uint64 `json:"tick"`
}

// PostDelta godoc
//
//	@Summary      Submits a delta batch
//	@Description  Submits a delta batch to be applied on the next tick
//	@Accept       application/json
//	@Produce      application/json
//	@Param        body  body      PostDeltaRequest   true  "Delta batch to be submitted"
//	@Success      200   {object}  PostDeltaResponse  "Batch hash and tick"
//	@Failure      400   {string}  string             "Invalid request parameter"
//	@Failure      409   {string}  string             "Conflict - sequence number already used"
//	@Router       /tx/delta/submit [post]
func PostDelta(w Provider) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		req := new(PostDeltaRequest)
		if err := ctx.BodyParser(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "failed to parse request body: "+err.Error())
		}

		if err := req.Batch.Validate(); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid delta batch: "+err.Error())
		}

		tick, hash, err := w.SubmitBatch(req.ClientID, req.Sequence, req.Batch)
		if err != nil {
			if eris.Is(err, redis.ErrSequenceHasAlreadyBeenUsed) {
				return fiber.NewError(fiber.StatusConflict, "duplicate submission: "+err.Error())
			}
			return fiber.NewError(fiber.StatusBadRequest, "failed to submit delta batch: "+err.Error())
		}

		return ctx.JSON(&PostDeltaResponse{
			BatchHash: hash.String(),
			Tick:      tick,
		})
	}
}

// PostFlushResponse reports the tick whose end will carry the requested
// flush.
type PostFlushResponse struct {
	Tick uint64 `json:"tick"`
}

// PostFlush godoc
//
//	@Summary      Requests a store flush
//	@Description  Asks the world loop to flush dirty cells at the end of its next tick
//	@Produce      application/json
//	@Success      200  {object}  PostFlushResponse
//	@Router       /flush [post]
func PostFlush(w Provider) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		w.RequestFlush()
		return ctx.JSON(PostFlushResponse{Tick: w.CurrentTick()})
	}
}
