package surface_test

import (
	"context"
	"testing"

	"pkg.world.dev/terra/assert"
	"pkg.world.dev/terra/delta"
	"pkg.world.dev/terra/surface"
	"pkg.world.dev/terra/types"
)

func tileDelta(channel types.SurfaceChannel, op types.SurfaceOp, value, timestamp float64, location types.Vec3) types.SurfaceTileDelta {
	cell := types.CellKeyAt(location, types.DefaultCellSize)
	d := types.NewSurfaceTileDelta(cell, 0, location)
	d.Channel = channel
	d.Op = op
	d.Value = value
	d.Timestamp = timestamp
	return d
}

func newTestStore(t *testing.T) *delta.CellStore {
	t.Helper()
	store := delta.NewFileStore(t.TempDir())
	assert.NilError(t, store.Initialize("alpha"))
	return store
}

func TestStaticConditions(t *testing.T) {
	ctx := context.Background()
	var c surface.StaticConditions

	assert.Equal(t, 0.0, c.WetnessAt(ctx, types.Vec3{}))
	assert.Equal(t, 0.0, c.SnowDepthAt(ctx, types.Vec3{}))
	assert.Equal(t, 0.0, c.CompactionAt(ctx, types.Vec3{}))
	assert.Equal(t, surface.DefaultTemperatureK, c.TemperatureAt(ctx, types.Vec3{}))

	c.TemperatureK = 250
	assert.Equal(t, 250.0, c.TemperatureAt(ctx, types.Vec3{}))
}

func TestDeltaConditionsFoldsChannels(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	patch := types.Vec3{X: 100, Y: 100}

	assert.NilError(t, store.AppendSurface(ctx, tileDelta(types.ChannelWetness, types.OpSet, 0.4, 1, patch)))
	assert.NilError(t, store.AppendSurface(ctx, tileDelta(types.ChannelWetness, types.OpAdd, 0.3, 2, patch)))
	assert.NilError(t, store.AppendSurface(ctx, tileDelta(types.ChannelSnowDepth, types.OpSet, 30, 1, patch)))
	assert.NilError(t, store.AppendSurface(ctx, tileDelta(types.ChannelSnowCompaction, types.OpSet, 0.5, 1, patch)))
	assert.NilError(t, store.AppendSurface(ctx, tileDelta(types.ChannelTemperatureDelta, types.OpAdd, 15, 1, patch)))

	c := surface.NewDeltaConditions(store)

	assert.InDelta(t, 0.7, c.WetnessAt(ctx, patch), 1e-9)
	assert.Equal(t, 30.0, c.SnowDepthAt(ctx, patch))
	assert.Equal(t, 0.5, c.CompactionAt(ctx, patch))
	assert.Equal(t, 303.0, c.TemperatureAt(ctx, patch))

	// Same cell, outside every delta's influence radius.
	dry := types.Vec3{X: 400, Y: 100}
	assert.Equal(t, 0.0, c.WetnessAt(ctx, dry))
	assert.Equal(t, 0.0, c.SnowDepthAt(ctx, dry))
	assert.Equal(t, surface.DefaultTemperatureK, c.TemperatureAt(ctx, dry))
}

func TestDeltaConditionsInfluenceRadius(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	patch := types.Vec3{X: 100, Y: 100}

	wide := tileDelta(types.ChannelWetness, types.OpSet, 1, 1, patch)
	wide.Radius = 200
	assert.NilError(t, store.AppendSurface(ctx, wide))

	c := surface.NewDeltaConditions(store)

	assert.Equal(t, 1.0, c.WetnessAt(ctx, types.Vec3{X: 250, Y: 100}))
	assert.Equal(t, 0.0, c.WetnessAt(ctx, types.Vec3{X: 350, Y: 100}))

	// Influence is spherical: height counts against the radius too.
	assert.Equal(t, 1.0, c.WetnessAt(ctx, types.Vec3{X: 100, Y: 100, Z: 150}))
	assert.Equal(t, 0.0, c.WetnessAt(ctx, types.Vec3{X: 100, Y: 100, Z: 250}))
}

func TestDeltaConditionsDefaultRadius(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	patch := types.Vec3{X: 100, Y: 100}

	d := tileDelta(types.ChannelWetness, types.OpSet, 1, 1, patch)
	d.Radius = 0
	assert.NilError(t, store.AppendSurface(ctx, d))

	c := surface.NewDeltaConditions(store)

	assert.Equal(t, 1.0, c.WetnessAt(ctx, types.Vec3{X: 140, Y: 100}))
	assert.Equal(t, 0.0, c.WetnessAt(ctx, types.Vec3{X: 160, Y: 100}))
}

func TestDeltaConditionsFoldsInTimestampOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	patch := types.Vec3{X: 100, Y: 100}

	// Appended out of order: the later write must still win the fold.
	assert.NilError(t, store.AppendSurface(ctx, tileDelta(types.ChannelWetness, types.OpSet, 0.9, 5, patch)))
	assert.NilError(t, store.AppendSurface(ctx, tileDelta(types.ChannelWetness, types.OpSet, 0.2, 1, patch)))

	c := surface.NewDeltaConditions(store)
	assert.Equal(t, 0.9, c.WetnessAt(ctx, patch))
}

func TestDeltaConditionsClampsChannels(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	patch := types.Vec3{X: 100, Y: 100}

	assert.NilError(t, store.AppendSurface(ctx, tileDelta(types.ChannelWetness, types.OpAdd, 5, 1, patch)))
	assert.NilError(t, store.AppendSurface(ctx, tileDelta(types.ChannelSnowDepth, types.OpSubtract, 10, 1, patch)))
	assert.NilError(t, store.AppendSurface(ctx, tileDelta(types.ChannelSnowCompaction, types.OpAdd, 3, 1, patch)))

	c := surface.NewDeltaConditions(store)

	assert.Equal(t, 1.0, c.WetnessAt(ctx, patch))
	assert.Equal(t, 0.0, c.SnowDepthAt(ctx, patch))
	assert.Equal(t, 1.0, c.CompactionAt(ctx, patch))
}

func TestDeltaConditionsBaseSource(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	patch := types.Vec3{X: 100, Y: 100}

	c := surface.NewDeltaConditions(store, surface.WithBaseConditions(surface.StaticConditions{
		Wetness:      0.25,
		TemperatureK: 300,
	}))

	assert.Equal(t, 0.25, c.WetnessAt(ctx, patch))
	assert.Equal(t, 300.0, c.TemperatureAt(ctx, patch))

	assert.NilError(t, store.AppendSurface(ctx, tileDelta(types.ChannelWetness, types.OpAdd, 0.25, 1, patch)))
	assert.NilError(t, store.AppendSurface(ctx, tileDelta(types.ChannelTemperatureDelta, types.OpAdd, -5, 1, patch)))

	assert.Equal(t, 0.5, c.WetnessAt(ctx, patch))
	assert.Equal(t, 295.0, c.TemperatureAt(ctx, patch))
}

func TestDeltaConditionsCellSize(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	location := types.Vec3{X: 150}

	d := types.NewSurfaceTileDelta(types.CellKeyAt(location, 100), 0, location)
	d.Channel = types.ChannelWetness
	d.Op = types.OpSet
	d.Value = 1
	d.Timestamp = 1
	assert.NilError(t, store.AppendSurface(ctx, d))

	small := surface.NewDeltaConditions(store, surface.WithCellSize(100))
	assert.Equal(t, 1.0, small.WetnessAt(ctx, location))

	// The default cell size maps the location to a different cell, so the
	// delta is invisible there.
	wide := surface.NewDeltaConditions(store)
	assert.Equal(t, 0.0, wide.WetnessAt(ctx, location))
}

func TestStateAtWithDeltaConditions(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	patch := types.Vec3{X: 100, Y: 100}

	assert.NilError(t, store.AppendSurface(ctx, tileDelta(types.ChannelWetness, types.OpSet, 1, 1, patch)))
	assert.NilError(t, store.AppendSurface(ctx, tileDelta(types.ChannelSnowDepth, types.OpSet, 50, 2, patch)))

	svc := newTestService(t)
	svc.SetConditions(surface.NewDeltaConditions(store))

	// Fully wet and fully snowed: 0.7 x 0.5 on friction, softened body.
	state := svc.StateAt(ctx, "dirt", patch)
	assert.True(t, state.Valid)
	assert.Equal(t, 1.0, state.Wetness)
	assert.Equal(t, 50.0, state.SnowDepthCm)
	assert.InDelta(t, 0.28, state.FrictionStatic, 1e-9)
	assert.InDelta(t, 0.21, state.FrictionDynamic, 1e-9)
	assert.InDelta(t, 0.8, state.Compliance, 1e-9)
	assert.InDelta(t, 0.9, state.DeformationStrength, 1e-9)

	// A dry spot in the same cell keeps the spec baseline.
	state = svc.StateAt(ctx, "dirt", types.Vec3{X: 400, Y: 100})
	assert.Equal(t, 0.8, state.FrictionStatic)
	assert.Equal(t, 0.0, state.Wetness)
}
