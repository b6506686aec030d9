// Package surface resolves contact state at world locations. A query folds
// a surface spec together with the local conditions (wetness, snow depth,
// compaction, temperature) into the effective friction and deformation
// values physics and effects consume.
package surface

import (
	"context"
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"pkg.world.dev/terra/delta"
	"pkg.world.dev/terra/types"
)

// DefaultTemperatureK is the surface temperature assumed when no source
// supplies one, the Earth standard 288 K.
const DefaultTemperatureK = 288.0

// Conditions supplies local environmental state for surface queries. The
// delta store backs the live implementation; StaticConditions serves simple
// worlds and tests.
type Conditions interface {
	WetnessAt(ctx context.Context, location types.Vec3) float64
	SnowDepthAt(ctx context.Context, location types.Vec3) float64
	CompactionAt(ctx context.Context, location types.Vec3) float64
	TemperatureAt(ctx context.Context, location types.Vec3) float64
}

// StaticConditions reports the same conditions everywhere. The zero value
// is dry, snow-free, uncompacted ground; a non-positive TemperatureK reads
// as DefaultTemperatureK.
type StaticConditions struct {
	Wetness      float64
	SnowDepthCm  float64
	Compaction   float64
	TemperatureK float64
}

var _ Conditions = StaticConditions{}

func (c StaticConditions) WetnessAt(context.Context, types.Vec3) float64 {
	return c.Wetness
}

func (c StaticConditions) SnowDepthAt(context.Context, types.Vec3) float64 {
	return c.SnowDepthCm
}

func (c StaticConditions) CompactionAt(context.Context, types.Vec3) float64 {
	return c.Compaction
}

func (c StaticConditions) TemperatureAt(context.Context, types.Vec3) float64 {
	if c.TemperatureK <= 0 {
		return DefaultTemperatureK
	}
	return c.TemperatureK
}

// DeltaConditions samples accumulated surface tile deltas from a delta
// store. Each query folds, in timestamp order, every delta on the matching
// channel whose influence radius covers the location, on top of a base
// conditions source.
//
// Sampling shares the store's single-goroutine contract: callers on the
// world goroutine only.
type DeltaConditions struct {
	store    delta.Store
	cellSize float64
	base     Conditions
}

var _ Conditions = &DeltaConditions{}

// DeltaConditionsOption configures NewDeltaConditions.
type DeltaConditionsOption func(*DeltaConditions)

// WithCellSize overrides the cell size used to map locations to delta
// cells. It must match the size the deltas were appended under.
func WithCellSize(sizeCm float64) DeltaConditionsOption {
	return func(c *DeltaConditions) {
		c.cellSize = sizeCm
	}
}

// WithBaseConditions sets the source the folded deltas modify, typically an
// adapter over the environment service for temperature.
func WithBaseConditions(base Conditions) DeltaConditionsOption {
	return func(c *DeltaConditions) {
		c.base = base
	}
}

func NewDeltaConditions(store delta.Store, opts ...DeltaConditionsOption) *DeltaConditions {
	c := &DeltaConditions{
		store:    store,
		cellSize: types.DefaultCellSize,
		base:     StaticConditions{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *DeltaConditions) WetnessAt(ctx context.Context, location types.Vec3) float64 {
	base := c.base.WetnessAt(ctx, location)
	return clamp(c.channelAt(ctx, location, types.ChannelWetness, base), 0, 1)
}

func (c *DeltaConditions) SnowDepthAt(ctx context.Context, location types.Vec3) float64 {
	base := c.base.SnowDepthAt(ctx, location)
	return math.Max(c.channelAt(ctx, location, types.ChannelSnowDepth, base), 0)
}

func (c *DeltaConditions) CompactionAt(ctx context.Context, location types.Vec3) float64 {
	base := c.base.CompactionAt(ctx, location)
	return clamp(c.channelAt(ctx, location, types.ChannelSnowCompaction, base), 0, 1)
}

// TemperatureAt folds temperature_delta deltas on top of the base ambient
// temperature, so a scorched tile reads hotter than the air around it.
func (c *DeltaConditions) TemperatureAt(ctx context.Context, location types.Vec3) float64 {
	base := c.base.TemperatureAt(ctx, location)
	return math.Max(c.channelAt(ctx, location, types.ChannelTemperatureDelta, base), 0)
}

func (c *DeltaConditions) channelAt(ctx context.Context, location types.Vec3, channel types.SurfaceChannel, base float64) float64 {
	cell := types.CellKeyAt(location, c.cellSize)
	deltas, err := c.store.SurfaceDeltas(ctx, cell)
	if err != nil {
		log.Debug().Err(err).
			Str("cell", cell.String()).
			Str("channel", string(channel)).
			Msg("surface condition sample failed, using base value")
		return base
	}
	sort.SliceStable(deltas, func(i, j int) bool {
		return deltas[i].Timestamp < deltas[j].Timestamp
	})
	value := base
	for _, d := range deltas {
		if d.Channel != channel {
			continue
		}
		radius := d.Radius
		if radius <= 0 {
			radius = types.DefaultTileRadius
		}
		if d.WorldLocation.Sub(location).Length() > radius {
			continue
		}
		value = d.Op.Apply(value, d.Value)
	}
	return value
}

func clamp(v, min, max float64) float64 {
	return math.Min(math.Max(v, min), max)
}
