package delta_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"pkg.world.dev/terra/assert"
	"pkg.world.dev/terra/delta"
	"pkg.world.dev/terra/types"
)

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cellA := types.CellKey{X: 3, Y: -2}
	cellB := types.CellKey{X: 0, Y: 1, LOD: 1}

	store := delta.NewRedisStore(delta.Options{Addr: mr.Addr()})
	assert.NilError(t, store.Initialize("alpha"))

	surf := snowDelta(cellA, 1)
	assert.NilError(t, store.AppendSurface(ctx, surf))
	assert.NilError(t, store.AppendSpawn(ctx, types.NewSpawnDelta(cellB, "actor-2", "/Game/Crate")))
	assert.NilError(t, store.Flush(ctx))
	assert.NilError(t, store.Close(ctx))

	reopened := delta.NewRedisStore(delta.Options{Addr: mr.Addr()})
	assert.NilError(t, reopened.Initialize("alpha"))

	got, err := reopened.SurfaceDeltas(ctx, cellA)
	assert.NilError(t, err)
	assert.DeepEqual(t, []types.SurfaceTileDelta{surf}, got)

	cells, err := reopened.StoredCells(ctx)
	assert.NilError(t, err)
	assert.ElementsMatch(t, []types.CellKey{cellA, cellB}, cells)
	assert.NilError(t, reopened.Close(ctx))
}

func TestRedisStoreLazyLoadKeepsHistoryFirst(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cell := types.CellKey{X: 1, Y: 1}
	first := snowDelta(cell, 1)
	second := snowDelta(cell, 2)

	store := delta.NewRedisStore(delta.Options{Addr: mr.Addr()})
	assert.NilError(t, store.Initialize("alpha"))
	assert.NilError(t, store.AppendSurface(ctx, first))
	assert.NilError(t, store.Flush(ctx))
	assert.NilError(t, store.Close(ctx))

	reopened := delta.NewRedisStore(delta.Options{Addr: mr.Addr()})
	assert.NilError(t, reopened.Initialize("alpha"))
	assert.NilError(t, reopened.AppendSurface(ctx, second))

	got, err := reopened.SurfaceDeltas(ctx, cell)
	assert.NilError(t, err)
	assert.DeepEqual(t, []types.SurfaceTileDelta{first, second}, got)
	assert.NilError(t, reopened.Close(ctx))
}

func TestRedisStoreNamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cell := types.CellKey{X: 2, Y: 3}

	alpha := delta.NewRedisStore(delta.Options{Addr: mr.Addr()})
	assert.NilError(t, alpha.Initialize("alpha"))
	assert.NilError(t, alpha.AppendSurface(ctx, snowDelta(cell, 1)))
	assert.NilError(t, alpha.Flush(ctx))
	assert.NilError(t, alpha.Close(ctx))

	beta := delta.NewRedisStore(delta.Options{Addr: mr.Addr()})
	assert.NilError(t, beta.Initialize("beta"))

	got, err := beta.SurfaceDeltas(ctx, cell)
	assert.NilError(t, err)
	assert.Len(t, got, 0)

	cells, err := beta.StoredCells(ctx)
	assert.NilError(t, err)
	assert.Len(t, cells, 0)
	assert.NilError(t, beta.Close(ctx))
}

func TestRedisStoreInitializeFailsWhenRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	store := delta.NewRedisStore(delta.Options{Addr: addr})
	err := store.Initialize("alpha")
	assert.IsError(t, err)
	assert.False(t, store.IsInitialized())
}
