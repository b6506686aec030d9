package server

import (
	"github.com/gofiber/fiber/v2"
)

type ListReceiptsRequest struct {
	StartTick uint64 `json:"startTick" example:"64"`
}

// ListReceiptsResponse returns the batch receipts for the given range of
// ticks. The interval is closed on StartTick and open on EndTick: i.e.
// [StartTick, EndTick). To iterate over all ticks in the future, use the
// returned EndTick as the StartTick in the next request. If
// StartTick == EndTick, the receipts list will be empty.
type ListReceiptsResponse struct {
	StartTick uint64         `json:"startTick"`
	EndTick   uint64         `json:"endTick"`
	Receipts  []ReceiptEntry `json:"receipts"`
}

// ReceiptEntry represents a single batch receipt. It contains the batch
// hash, the tick it was applied in, a result, and a list of errors.
type ReceiptEntry struct {
	BatchHash string   `json:"batchHash"`
	Tick      uint64   `json:"tick"`
	Result    any      `json:"result"`
	Errors    []string `json:"errors"`
}

// GetReceipts godoc
//
//	@Summary      Retrieves batch receipts
//	@Description  Retrieves the receipts of applied delta batches, starting from a given tick
//	@Accept       application/json
//	@Produce      application/json
//	@Param        ListReceiptsRequest  body      ListReceiptsRequest   true  "Query body"
//	@Success      200                  {object}  ListReceiptsResponse  "List of receipts"
//	@Failure      400                  {string}  string                "Invalid request body"
//	@Router       /query/receipts/list [post]
func GetReceipts(w Provider) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		req := new(ListReceiptsRequest)
		if err := ctx.BodyParser(req); err != nil {
			return err
		}
		reply := ListReceiptsResponse{}
		reply.EndTick = w.CurrentTick()
		size := w.ReceiptHistorySize()
		if size > reply.EndTick {
			reply.StartTick = 0
		} else {
			reply.StartTick = reply.EndTick - size
		}
		// The range now spans every tick history still holds; the request
		// can only narrow it. A start past EndTick asks about ticks that
		// have not happened, which collapses the range to empty.
		if req.StartTick > reply.EndTick {
			reply.StartTick = reply.EndTick
		} else if req.StartTick > reply.StartTick {
			reply.StartTick = req.StartTick
		}

		for t := reply.StartTick; t < reply.EndTick; t++ {
			currReceipts, err := w.ReceiptsForTick(t)
			if err != nil || len(currReceipts) == 0 {
				continue
			}
			for _, r := range currReceipts {
				reply.Receipts = append(reply.Receipts, ReceiptEntry{
					BatchHash: r.Hash.String(),
					Tick:      t,
					Result:    r.Result,
					Errors:    convertErrorsToStrings(r.Errs),
				})
			}
		}
		return ctx.JSON(reply)
	}
}

func convertErrorsToStrings(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	result := make([]string, 0, len(errs))
	for _, err := range errs {
		result = append(result, err.Error())
	}
	return result
}
