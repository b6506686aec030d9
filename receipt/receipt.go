// Package receipt keeps track of delta submission outcomes for a number of
// ticks. A receipt consists of any errors that were encountered while
// applying a submission's deltas, as well as the submission's result.
package receipt

import (
	"sync/atomic"

	"github.com/rotisserie/eris"

	"pkg.world.dev/terra/types"
)

var (
	ErrTickHasNotBeenProcessed = eris.New("tick is still in progress")
	ErrOldTickHasBeenDiscarded = eris.New("the requested tick has been discarded due to age")
)

// History keeps submission receipts (the result of an applied delta batch
// and any associated errors) for some number of ticks.
type History struct {
	currTick     *atomic.Uint64
	ticksToStore uint64
	// Receipts for a given tick are assigned to an index into this history
	// slice which acts as a ring buffer.
	history []map[types.SubmissionHash]Receipt
}

// Receipt records what happened to one delta submission: an arbitrary
// result and a list of errors.
type Receipt struct {
	Hash   types.SubmissionHash `json:"hash"`
	Result any                  `json:"result"`
	Errs   []error              `json:"errs"`
}

// NewHistory creates an object that can track submission receipts over a
// number of ticks.
func NewHistory(currentTick uint64, ticksToStore int) *History {
	// One extra slot so the in-progress tick has somewhere to write.
	ticksToStore++
	h := &History{
		currTick:     &atomic.Uint64{},
		ticksToStore: uint64(ticksToStore),
	}
	h.history = make([]map[types.SubmissionHash]Receipt, 0, ticksToStore)
	for i := 0; i < ticksToStore; i++ {
		h.history = append(h.history, map[types.SubmissionHash]Receipt{})
	}
	h.currTick.Store(currentTick)
	return h
}

func (h *History) Size() uint64 {
	return h.ticksToStore
}

// NextTick advances the internal History tick by 1. Errors and results can
// only be set on the current tick. Receipts from ticks in the past are read
// only.
func (h *History) NextTick() {
	newCurr := h.currTick.Add(1)
	mod := newCurr % h.ticksToStore
	h.history[mod] = map[types.SubmissionHash]Receipt{}
}

// SetTick jumps the history to the given tick, used when a world resumes
// from a persisted store.
func (h *History) SetTick(tick uint64) {
	h.currTick.Store(tick)
}

// AddError associates the given error with the given submission hash.
// Calling this multiple times will append the error to any previously added
// errors.
func (h *History) AddError(hash types.SubmissionHash, err error) {
	tick := int(h.currTick.Load() % h.ticksToStore)
	rec := h.history[tick][hash]
	rec.Hash = hash
	rec.Errs = append(rec.Errs, err)
	h.history[tick][hash] = rec
}

// SetResult sets the given submission hash to the given result. Calling
// this multiple times will replace any previous results.
func (h *History) SetResult(hash types.SubmissionHash, result any) {
	tick := int(h.currTick.Load() % h.ticksToStore)
	rec := h.history[tick][hash]
	rec.Hash = hash
	rec.Result = result
	h.history[tick][hash] = rec
}

// GetReceipt gets the receipt (the submission result and the list of
// errors) for the given submission hash in the current tick. To get
// receipts from previous ticks use GetReceiptsForTick.
func (h *History) GetReceipt(hash types.SubmissionHash) (Receipt, bool) {
	tick := int(h.currTick.Load() % h.ticksToStore)
	rec, ok := h.history[tick][hash]
	return rec, ok
}

// GetReceiptsForTick gets all receipts for the given tick. If the tick is
// still active, or if the tick is too far in the past, an error is
// returned.
func (h *History) GetReceiptsForTick(tick uint64) ([]Receipt, error) {
	currTick := h.currTick.Load()
	// The requested tick is either in the future, or it is currently being
	// processed. We don't yet know what its receipts will be.
	if currTick <= tick {
		return nil, eris.Wrapf(ErrTickHasNotBeenProcessed, "tick %d", tick)
	}
	if currTick-tick >= h.ticksToStore {
		return nil, eris.Wrapf(ErrOldTickHasBeenDiscarded, "tick %d", tick)
	}
	mod := tick % h.ticksToStore
	recs := make([]Receipt, 0, len(h.history[mod]))
	for _, rec := range h.history[mod] {
		recs = append(recs, rec)
	}

	return recs, nil
}
