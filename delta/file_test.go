package delta_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"pkg.world.dev/terra/assert"
	"pkg.world.dev/terra/delta"
	"pkg.world.dev/terra/types"
)

func snowDelta(cell types.CellKey, value float64) types.SurfaceTileDelta {
	d := types.NewSurfaceTileDelta(cell, 7, types.Vec3{X: 100, Y: 200, Z: 30})
	d.Channel = types.ChannelSnowDepth
	d.Op = types.OpAdd
	d.Value = value
	d.Timestamp = value
	d.Author = "test"
	return d
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cellA := types.CellKey{X: 3, Y: -2}
	cellB := types.CellKey{X: 0, Y: 1, LOD: 1}

	store := delta.NewFileStore(dir)
	assert.False(t, store.IsInitialized())
	assert.NilError(t, store.Initialize("alpha"))
	assert.True(t, store.IsInitialized())
	assert.Equal(t, types.Namespace("alpha"), store.Namespace())

	surf := snowDelta(cellA, 1)
	assert.NilError(t, store.AppendSurface(ctx, surf))
	frac := types.NewFractureDelta(cellA, "actor-1")
	frac.BrokenChunks = []int32{0, 4}
	assert.NilError(t, store.AppendFracture(ctx, frac))
	spawn := types.NewSpawnDelta(cellB, "actor-2", "/Game/Crate")
	assert.NilError(t, store.AppendSpawn(ctx, spawn))

	assert.ElementsMatch(t, []types.CellKey{cellA, cellB}, store.DirtyCells())
	assert.NilError(t, store.Flush(ctx))
	assert.Len(t, store.DirtyCells(), 0)
	assert.NilError(t, store.Close(ctx))
	assert.FileExists(t, filepath.Join(dir, "alpha", cellA.String(), "deltas.json"))

	reopened := delta.NewFileStore(dir)
	assert.NilError(t, reopened.Initialize("alpha"))

	gotSurf, err := reopened.SurfaceDeltas(ctx, cellA)
	assert.NilError(t, err)
	assert.DeepEqual(t, []types.SurfaceTileDelta{surf}, gotSurf)

	gotFrac, err := reopened.FractureDeltas(ctx, cellA)
	assert.NilError(t, err)
	assert.DeepEqual(t, []types.FractureDelta{frac}, gotFrac)

	gotSpawn, err := reopened.SpawnDeltas(ctx, cellB)
	assert.NilError(t, err)
	assert.DeepEqual(t, []types.SpawnDelta{spawn}, gotSpawn)

	assert.Len(t, reopened.DirtyCells(), 0)
	assert.NilError(t, reopened.Close(ctx))
}

func TestFileStoreLazyLoadKeepsHistoryFirst(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cell := types.CellKey{X: 1, Y: 1}
	first := snowDelta(cell, 1)
	second := snowDelta(cell, 2)

	store := delta.NewFileStore(dir)
	assert.NilError(t, store.Initialize("alpha"))
	assert.NilError(t, store.AppendSurface(ctx, first))
	assert.NilError(t, store.Flush(ctx))
	assert.NilError(t, store.Close(ctx))

	// The append below is this store's first touch of the cell, so the
	// persisted record must merge in ahead of it.
	reopened := delta.NewFileStore(dir)
	assert.NilError(t, reopened.Initialize("alpha"))
	assert.NilError(t, reopened.AppendSurface(ctx, second))

	got, err := reopened.SurfaceDeltas(ctx, cell)
	assert.NilError(t, err)
	assert.DeepEqual(t, []types.SurfaceTileDelta{first, second}, got)

	assert.NilError(t, reopened.Flush(ctx))
	assert.NilError(t, reopened.Close(ctx))

	third := delta.NewFileStore(dir)
	assert.NilError(t, third.Initialize("alpha"))
	got, err = third.SurfaceDeltas(ctx, cell)
	assert.NilError(t, err)
	assert.DeepEqual(t, []types.SurfaceTileDelta{first, second}, got)
	assert.NilError(t, third.Close(ctx))
}

func TestFileStoreClearCellMasksPersistedHistory(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cell := types.CellKey{X: 5, Y: 5}

	store := delta.NewFileStore(dir)
	assert.NilError(t, store.Initialize("alpha"))
	assert.NilError(t, store.AppendSurface(ctx, snowDelta(cell, 1)))
	assert.NilError(t, store.Flush(ctx))
	assert.NilError(t, store.Close(ctx))

	reopened := delta.NewFileStore(dir)
	assert.NilError(t, reopened.Initialize("alpha"))
	assert.NilError(t, reopened.ClearCell(ctx, cell))

	got, err := reopened.SurfaceDeltas(ctx, cell)
	assert.NilError(t, err)
	assert.Len(t, got, 0)
	assert.Len(t, reopened.DirtyCells(), 0)
	assert.NilError(t, reopened.Close(ctx))

	// Clearing only masks the cell in memory; the save file survives.
	assert.FileExists(t, filepath.Join(dir, "alpha", cell.String(), "deltas.json"))
}

func TestFileStoreClearCellDropsPendingAppends(t *testing.T) {
	ctx := context.Background()
	cell := types.CellKey{X: 2, Y: 2}

	store := delta.NewFileStore(t.TempDir())
	assert.NilError(t, store.Initialize("alpha"))
	assert.NilError(t, store.AppendSurface(ctx, snowDelta(cell, 1)))
	assert.Len(t, store.DirtyCells(), 1)

	assert.NilError(t, store.ClearCell(ctx, cell))
	assert.Len(t, store.DirtyCells(), 0)

	got, err := store.SurfaceDeltas(ctx, cell)
	assert.NilError(t, err)
	assert.Len(t, got, 0)
	assert.NilError(t, store.Close(ctx))
}

func TestFileStoreFlushWithoutWorkIsNoOp(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store := delta.NewFileStore(dir)
	assert.NilError(t, store.Flush(ctx))

	assert.NilError(t, store.Initialize("alpha"))
	assert.NilError(t, store.Flush(ctx))
	assert.NilError(t, store.Close(ctx))

	entries, err := os.ReadDir(filepath.Join(dir, "alpha"))
	assert.NilError(t, err)
	assert.Len(t, entries, 0)
}

func TestFileStoreDropsAppendsMadeBeforeInitialize(t *testing.T) {
	ctx := context.Background()
	cell := types.CellKey{X: 9, Y: 9}

	store := delta.NewFileStore(t.TempDir())
	assert.NilError(t, store.AppendSurface(ctx, snowDelta(cell, 1)))
	assert.Len(t, store.DirtyCells(), 1)

	assert.NilError(t, store.Initialize("alpha"))
	assert.Len(t, store.DirtyCells(), 0)

	got, err := store.SurfaceDeltas(ctx, cell)
	assert.NilError(t, err)
	assert.Len(t, got, 0)
	assert.NilError(t, store.Close(ctx))
}

func TestFileStoreStoredCells(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cellA := types.CellKey{X: 1, Y: 0}
	cellB := types.CellKey{X: -4, Y: 8, LOD: 2}

	uninitialized := delta.NewFileStore(dir)
	_, err := uninitialized.StoredCells(ctx)
	assert.ErrorIs(t, err, delta.ErrNotInitialized)

	store := delta.NewFileStore(dir)
	assert.NilError(t, store.Initialize("alpha"))

	cells, err := store.StoredCells(ctx)
	assert.NilError(t, err)
	assert.Len(t, cells, 0)

	assert.NilError(t, store.AppendSurface(ctx, snowDelta(cellA, 1)))
	assert.NilError(t, store.AppendRemove(ctx, types.RemoveDelta{Cell: cellB, ActorGUID: "actor-1", Reason: "burned"}))
	assert.NilError(t, store.Flush(ctx))
	assert.NilError(t, store.Close(ctx))

	reopened := delta.NewFileStore(dir)
	assert.NilError(t, reopened.Initialize("alpha"))
	cells, err = reopened.StoredCells(ctx)
	assert.NilError(t, err)
	assert.ElementsMatch(t, []types.CellKey{cellA, cellB}, cells)
	assert.NilError(t, reopened.Close(ctx))
}

func TestFileStoreInitializeRejectsBadNamespace(t *testing.T) {
	store := delta.NewFileStore(t.TempDir())
	err := store.Initialize("bad/name")
	assert.ErrorContains(t, err, "invalid namespace")
	assert.False(t, store.IsInitialized())
}

func TestFileStoreCellRecordAggregatesEveryKind(t *testing.T) {
	ctx := context.Background()
	cell := types.CellKey{X: 0, Y: 0}

	store := delta.NewFileStore(t.TempDir())
	assert.NilError(t, store.Initialize("alpha"))
	assert.NilError(t, store.AppendSurface(ctx, snowDelta(cell, 1)))
	assert.NilError(t, store.AppendFracture(ctx, types.NewFractureDelta(cell, "actor-1")))
	assert.NilError(t, store.AppendTransform(ctx, types.TransformDelta{
		Cell: cell, ActorGUID: "actor-2", Transform: types.IdentityTransform(), Sleeping: true,
	}))
	assert.NilError(t, store.AppendSpawn(ctx, types.NewSpawnDelta(cell, "actor-3", "/Game/Barrel")))
	assert.NilError(t, store.AppendRemove(ctx, types.RemoveDelta{Cell: cell, ActorGUID: "actor-4"}))
	assert.NilError(t, store.AppendAssembly(ctx, types.AssemblyDelta{
		Cell: cell, AssemblyGUID: "asm-1", AssemblySpecID: "windmill",
		StateVariables: map[string]float64{"fuel": 0.5},
	}))

	rec, err := store.CellRecord(ctx, cell)
	assert.NilError(t, err)
	assert.Equal(t, cell.String(), rec.Cell)
	assert.Equal(t, 6, rec.Count())
	assert.NotZero(t, rec.Timestamp)
	assert.NilError(t, store.Close(ctx))
}
