// Package submission queues incoming delta batches for the world loop. The
// HTTP surface enqueues here and never touches the stores; each tick the
// loop takes the pending batches and applies them, which keeps store
// mutation on the single goroutine that owns it.
package submission

import (
	"sync"

	"github.com/rotisserie/eris"

	"pkg.world.dev/terra/types"
)

// Batch is one client submission: deltas of any kind, possibly spanning
// cells. A batch is applied as a unit and receives a single receipt.
type Batch struct {
	SurfaceDeltas   []types.SurfaceTileDelta `json:"surface_deltas,omitempty"`
	FractureDeltas  []types.FractureDelta    `json:"fracture_deltas,omitempty"`
	TransformDeltas []types.TransformDelta   `json:"transform_deltas,omitempty"`
	SpawnDeltas     []types.SpawnDelta       `json:"spawn_deltas,omitempty"`
	RemoveDeltas    []types.RemoveDelta      `json:"remove_deltas,omitempty"`
	AssemblyDeltas  []types.AssemblyDelta    `json:"assembly_deltas,omitempty"`
}

// Count returns the total number of deltas in the batch.
func (b Batch) Count() int {
	return len(b.SurfaceDeltas) +
		len(b.FractureDeltas) +
		len(b.TransformDeltas) +
		len(b.SpawnDeltas) +
		len(b.RemoveDeltas) +
		len(b.AssemblyDeltas)
}

// Validate rejects batches that would be dropped or misapplied: empty
// batches, surface deltas with unknown channels or operations, and actor
// deltas without an identity.
func (b Batch) Validate() error {
	if b.Count() == 0 {
		return eris.New("batch contains no deltas")
	}
	for i, d := range b.SurfaceDeltas {
		if err := d.Channel.Validate(); err != nil {
			return eris.Wrapf(err, "surface delta %d", i)
		}
		if err := d.Op.Validate(); err != nil {
			return eris.Wrapf(err, "surface delta %d", i)
		}
	}
	for i, d := range b.FractureDeltas {
		if d.ActorGUID == "" {
			return eris.Errorf("fracture delta %d has no actor guid", i)
		}
	}
	for i, d := range b.TransformDeltas {
		if d.ActorGUID == "" {
			return eris.Errorf("transform delta %d has no actor guid", i)
		}
	}
	for i, d := range b.SpawnDeltas {
		if d.ActorGUID == "" {
			return eris.Errorf("spawn delta %d has no actor guid", i)
		}
	}
	for i, d := range b.RemoveDeltas {
		if d.ActorGUID == "" {
			return eris.Errorf("remove delta %d has no actor guid", i)
		}
	}
	for i, d := range b.AssemblyDeltas {
		if d.AssemblyGUID == "" {
			return eris.Errorf("assembly delta %d has no assembly guid", i)
		}
	}
	return nil
}

// Pending is an accepted batch waiting for the world loop.
type Pending struct {
	Hash  types.SubmissionHash
	Batch Batch
}

// Pool holds accepted batches until the next tick drains them.
type Pool struct {
	pending []Pending
	mux     *sync.Mutex
}

func NewPool() *Pool {
	return &Pool{
		pending: []Pending{},
		mux:     &sync.Mutex{},
	}
}

// PendingCount returns the number of batches waiting to be applied.
func (p *Pool) PendingCount() int {
	p.mux.Lock()
	defer p.mux.Unlock()
	return len(p.pending)
}

// AddBatch enqueues an already-validated batch and mints the hash the
// client polls its receipt with.
func (p *Pool) AddBatch(b Batch) types.SubmissionHash {
	p.mux.Lock()
	defer p.mux.Unlock()
	hash := types.NewSubmissionHash()
	p.pending = append(p.pending, Pending{
		Hash:  hash,
		Batch: b,
	})
	return hash
}

// Pending returns the queued batches in arrival order.
// NOTE: this is called ONLY on the copied pool in the world tick, so the
// mutex is not needed here.
func (p *Pool) Pending() []Pending {
	return p.pending
}

// CopyPending returns a copy of the Pool and resets the original to empty.
func (p *Pool) CopyPending() *Pool {
	p.mux.Lock()
	defer p.mux.Unlock()
	cpy := *p
	p.reset()
	return &cpy
}

func (p *Pool) reset() {
	p.pending = []Pending{}
}
