package events

import (
	"github.com/rotisserie/eris"

	"pkg.world.dev/terra/codec"
	"pkg.world.dev/terra/receipt"
)

// TickResults collects everything one tick produced: the receipts of the
// delta submissions it applied and the events queued for broadcast. The
// world loop drains a TickResults into the event hub at the end of each
// tick and clears it for the next.
type TickResults struct {
	Tick     uint64
	Receipts []receipt.Receipt
	Events   [][]byte
}

func NewTickResults(initialTick uint64) *TickResults {
	return &TickResults{
		Tick:     initialTick,
		Receipts: []receipt.Receipt{},
		Events:   [][]byte{},
	}
}

// AddEvent encodes and records one event payload.
func (tr *TickResults) AddEvent(event any) error {
	data, err := codec.Encode(event)
	if err != nil {
		return eris.Wrap(err, "event payloads must be json serializable")
	}
	tr.Events = append(tr.Events, data)
	return nil
}

// SetReceipts replaces the recorded receipts with the given set.
func (tr *TickResults) SetReceipts(newReceipts []receipt.Receipt) {
	tr.Receipts = newReceipts
}

func (tr *TickResults) SetTick(tick uint64) {
	tr.Tick = tick
}

func (tr *TickResults) Clear() {
	tr.Tick = 0
	tr.Receipts = nil
	tr.Events = nil
}
