package delta

import (
	"time"

	"pkg.world.dev/terra/types"
)

// buffer holds the per-cell delta lists a store accumulates between
// flushes, plus the bookkeeping sets: dirty tracks cells with unflushed
// appends, loaded tracks cells whose persisted history has been merged in.
type buffer struct {
	surface   map[types.CellKey][]types.SurfaceTileDelta
	fracture  map[types.CellKey][]types.FractureDelta
	transform map[types.CellKey][]types.TransformDelta
	spawn     map[types.CellKey][]types.SpawnDelta
	remove    map[types.CellKey][]types.RemoveDelta
	assembly  map[types.CellKey][]types.AssemblyDelta

	dirty  map[types.CellKey]struct{}
	loaded map[types.CellKey]struct{}
}

func newBuffer() *buffer {
	b := &buffer{}
	b.reset()
	return b
}

// reset drops every delta and every bookkeeping mark.
func (b *buffer) reset() {
	b.surface = map[types.CellKey][]types.SurfaceTileDelta{}
	b.fracture = map[types.CellKey][]types.FractureDelta{}
	b.transform = map[types.CellKey][]types.TransformDelta{}
	b.spawn = map[types.CellKey][]types.SpawnDelta{}
	b.remove = map[types.CellKey][]types.RemoveDelta{}
	b.assembly = map[types.CellKey][]types.AssemblyDelta{}
	b.dirty = map[types.CellKey]struct{}{}
	b.loaded = map[types.CellKey]struct{}{}
}

func (b *buffer) markDirty(cell types.CellKey) {
	b.dirty[cell] = struct{}{}
}

func (b *buffer) markLoaded(cell types.CellKey) {
	b.loaded[cell] = struct{}{}
}

func (b *buffer) isLoaded(cell types.CellKey) bool {
	_, ok := b.loaded[cell]
	return ok
}

func (b *buffer) dirtyCells() []types.CellKey {
	cells := make([]types.CellKey, 0, len(b.dirty))
	for cell := range b.dirty {
		cells = append(cells, cell)
	}
	return cells
}

// clearCell empties one cell and removes its dirty mark. The cell stays
// marked loaded so later reads do not resurrect persisted history.
func (b *buffer) clearCell(cell types.CellKey) {
	delete(b.surface, cell)
	delete(b.fracture, cell)
	delete(b.transform, cell)
	delete(b.spawn, cell)
	delete(b.remove, cell)
	delete(b.assembly, cell)
	delete(b.dirty, cell)
	b.markLoaded(cell)
}

// merge prepends a persisted record's deltas ahead of any deltas already
// appended this session, so history keeps its order.
func (b *buffer) merge(cell types.CellKey, rec CellRecord) {
	if len(rec.SurfaceDeltas) > 0 {
		b.surface[cell] = append(rec.SurfaceDeltas, b.surface[cell]...)
	}
	if len(rec.FractureDeltas) > 0 {
		b.fracture[cell] = append(rec.FractureDeltas, b.fracture[cell]...)
	}
	if len(rec.TransformDeltas) > 0 {
		b.transform[cell] = append(rec.TransformDeltas, b.transform[cell]...)
	}
	if len(rec.SpawnDeltas) > 0 {
		b.spawn[cell] = append(rec.SpawnDeltas, b.spawn[cell]...)
	}
	if len(rec.RemoveDeltas) > 0 {
		b.remove[cell] = append(rec.RemoveDeltas, b.remove[cell]...)
	}
	if len(rec.AssemblyDeltas) > 0 {
		b.assembly[cell] = append(rec.AssemblyDeltas, b.assembly[cell]...)
	}
}

// record copies one cell's deltas into a persistable record stamped with
// the current time.
func (b *buffer) record(cell types.CellKey, now time.Time) CellRecord {
	rec := CellRecord{
		Cell:      cell.String(),
		Timestamp: now.Unix(),
	}
	if deltas := b.surface[cell]; len(deltas) > 0 {
		rec.SurfaceDeltas = append([]types.SurfaceTileDelta(nil), deltas...)
	}
	if deltas := b.fracture[cell]; len(deltas) > 0 {
		rec.FractureDeltas = append([]types.FractureDelta(nil), deltas...)
	}
	if deltas := b.transform[cell]; len(deltas) > 0 {
		rec.TransformDeltas = append([]types.TransformDelta(nil), deltas...)
	}
	if deltas := b.spawn[cell]; len(deltas) > 0 {
		rec.SpawnDeltas = append([]types.SpawnDelta(nil), deltas...)
	}
	if deltas := b.remove[cell]; len(deltas) > 0 {
		rec.RemoveDeltas = append([]types.RemoveDelta(nil), deltas...)
	}
	if deltas := b.assembly[cell]; len(deltas) > 0 {
		rec.AssemblyDeltas = append([]types.AssemblyDelta(nil), deltas...)
	}
	return rec
}

// snapshotDirty copies every dirty cell into records and clears the dirty
// set, leaving the live maps free for new appends while the copies are
// written out.
func (b *buffer) snapshotDirty(now time.Time) map[types.CellKey]CellRecord {
	records := make(map[types.CellKey]CellRecord, len(b.dirty))
	for cell := range b.dirty {
		records[cell] = b.record(cell, now)
	}
	b.dirty = map[types.CellKey]struct{}{}
	return records
}
