// Package delta implements sparse world-state persistence. Every change to
// the world (surface wear, destruction, moved or spawned actors, assembly
// state) is recorded as an append-only delta keyed by spatial cell, and
// store backends persist dirty cells as JSON documents.
//
// Stores are not safe for concurrent use: all mutation belongs to the world
// goroutine. Flush snapshots dirty cells and hands the copies to a
// background writer, so the world goroutine never blocks on I/O.
package delta

import (
	"context"

	"github.com/rotisserie/eris"

	"pkg.world.dev/terra/types"
)

// ErrNotInitialized is returned by operations that need a save location
// before Initialize has succeeded.
var ErrNotInitialized = eris.New("delta store is not initialized")

// Store accumulates world deltas per cell and persists them. Cells load
// lazily: the first touch of a cell pulls its persisted history into
// memory, so session appends always land after historical deltas.
type Store interface {
	// Initialize binds the store to one world save. Any deltas appended
	// before Initialize succeeds are dropped.
	Initialize(namespace types.Namespace) error
	IsInitialized() bool

	AppendSurface(ctx context.Context, d types.SurfaceTileDelta) error
	AppendFracture(ctx context.Context, d types.FractureDelta) error
	AppendTransform(ctx context.Context, d types.TransformDelta) error
	AppendSpawn(ctx context.Context, d types.SpawnDelta) error
	AppendRemove(ctx context.Context, d types.RemoveDelta) error
	AppendAssembly(ctx context.Context, d types.AssemblyDelta) error

	SurfaceDeltas(ctx context.Context, cell types.CellKey) ([]types.SurfaceTileDelta, error)
	FractureDeltas(ctx context.Context, cell types.CellKey) ([]types.FractureDelta, error)
	TransformDeltas(ctx context.Context, cell types.CellKey) ([]types.TransformDelta, error)
	SpawnDeltas(ctx context.Context, cell types.CellKey) ([]types.SpawnDelta, error)
	RemoveDeltas(ctx context.Context, cell types.CellKey) ([]types.RemoveDelta, error)
	AssemblyDeltas(ctx context.Context, cell types.CellKey) ([]types.AssemblyDelta, error)

	// CellRecord returns every delta held for one cell as a single record.
	CellRecord(ctx context.Context, cell types.CellKey) (CellRecord, error)

	// StoredCells lists the cells with persisted delta documents.
	StoredCells(ctx context.Context) ([]types.CellKey, error)

	// ClearCell drops a cell's in-memory deltas and dirty mark. Persisted
	// documents are left alone; the cell reads as empty afterward.
	ClearCell(ctx context.Context, cell types.CellKey) error

	// DirtyCells returns the cells with unflushed appends.
	DirtyCells() []types.CellKey

	// Flush persists every dirty cell in the background and clears the
	// dirty set. A store with nothing dirty is a no-op.
	Flush(ctx context.Context) error

	// Close waits for in-flight background writes and releases resources.
	Close(ctx context.Context) error
}

// CellRecord is the persisted document for one cell. Field layout matches
// the on-disk save format, so records are also the wire shape for delta
// queries.
type CellRecord struct {
	Cell      string `json:"cell"`
	Timestamp int64  `json:"timestamp"`

	SurfaceDeltas   []types.SurfaceTileDelta `json:"surface_deltas,omitempty"`
	FractureDeltas  []types.FractureDelta    `json:"fracture_deltas,omitempty"`
	TransformDeltas []types.TransformDelta   `json:"transform_deltas,omitempty"`
	SpawnDeltas     []types.SpawnDelta       `json:"spawn_deltas,omitempty"`
	RemoveDeltas    []types.RemoveDelta      `json:"remove_deltas,omitempty"`
	AssemblyDeltas  []types.AssemblyDelta    `json:"assembly_deltas,omitempty"`
}

// IsEmpty reports whether the record carries no deltas at all.
func (r CellRecord) IsEmpty() bool {
	return len(r.SurfaceDeltas) == 0 &&
		len(r.FractureDeltas) == 0 &&
		len(r.TransformDeltas) == 0 &&
		len(r.SpawnDeltas) == 0 &&
		len(r.RemoveDeltas) == 0 &&
		len(r.AssemblyDeltas) == 0
}

// Count returns the total number of deltas in the record.
func (r CellRecord) Count() int {
	return len(r.SurfaceDeltas) +
		len(r.FractureDeltas) +
		len(r.TransformDeltas) +
		len(r.SpawnDeltas) +
		len(r.RemoveDeltas) +
		len(r.AssemblyDeltas)
}

// Clone returns a record whose delta slices no longer share backing arrays
// with the store's copy. Delta elements are value structs that the store
// never mutates after append, so copying the slices is enough.
func (r CellRecord) Clone() CellRecord {
	cpy := r
	cpy.SurfaceDeltas = append([]types.SurfaceTileDelta(nil), r.SurfaceDeltas...)
	cpy.FractureDeltas = append([]types.FractureDelta(nil), r.FractureDeltas...)
	cpy.TransformDeltas = append([]types.TransformDelta(nil), r.TransformDeltas...)
	cpy.SpawnDeltas = append([]types.SpawnDelta(nil), r.SpawnDeltas...)
	cpy.RemoveDeltas = append([]types.RemoveDelta(nil), r.RemoveDeltas...)
	cpy.AssemblyDeltas = append([]types.AssemblyDelta(nil), r.AssemblyDeltas...)
	return cpy
}

// Envelope is one delta flattened into a kind-tagged wrapper for filtering
// and query responses. Actor carries the originating identity: the author
// for surface deltas, the actor GUID for actor deltas, the assembly GUID
// for assembly deltas.
type Envelope struct {
	Kind      types.Kind    `json:"kind"`
	Cell      types.CellKey `json:"cell"`
	Actor     string        `json:"actor,omitempty"`
	Timestamp float64       `json:"timestamp"`
	Payload   any           `json:"payload"`
}

// Envelopes flattens the record into kind-tagged envelopes, preserving
// per-kind append order.
func (r CellRecord) Envelopes() []Envelope {
	out := make([]Envelope, 0, r.Count())
	for _, d := range r.SurfaceDeltas {
		out = append(out, Envelope{
			Kind: types.KindSurfaceTile, Cell: d.Cell, Actor: d.Author, Timestamp: d.Timestamp, Payload: d,
		})
	}
	for _, d := range r.FractureDeltas {
		out = append(out, Envelope{
			Kind: types.KindFracture, Cell: d.Cell, Actor: d.ActorGUID, Timestamp: d.Timestamp, Payload: d,
		})
	}
	for _, d := range r.TransformDeltas {
		out = append(out, Envelope{
			Kind: types.KindTransform, Cell: d.Cell, Actor: d.ActorGUID, Timestamp: d.Timestamp, Payload: d,
		})
	}
	for _, d := range r.SpawnDeltas {
		out = append(out, Envelope{
			Kind: types.KindSpawn, Cell: d.Cell, Actor: d.ActorGUID, Timestamp: d.Timestamp, Payload: d,
		})
	}
	for _, d := range r.RemoveDeltas {
		out = append(out, Envelope{
			Kind: types.KindRemove, Cell: d.Cell, Actor: d.ActorGUID, Timestamp: d.Timestamp, Payload: d,
		})
	}
	for _, d := range r.AssemblyDeltas {
		out = append(out, Envelope{
			Kind: types.KindAssembly, Cell: d.Cell, Actor: d.AssemblyGUID, Timestamp: d.Timestamp, Payload: d,
		})
	}
	return out
}
