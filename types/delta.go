package types

import (
	"math"

	"github.com/rotisserie/eris"
)

// Kind names one of the six delta record kinds. Kinds serialize as readable
// strings so on-disk saves and query expressions stay greppable.
type Kind string

const (
	KindSurfaceTile Kind = "surface_tile"
	KindFracture    Kind = "fracture"
	KindTransform   Kind = "transform"
	KindSpawn       Kind = "spawn"
	KindRemove      Kind = "remove"
	KindAssembly    Kind = "assembly"
)

// Kinds returns all delta kinds in their canonical order.
func Kinds() []Kind {
	return []Kind{
		KindSurfaceTile, KindFracture, KindTransform,
		KindSpawn, KindRemove, KindAssembly,
	}
}

func (k Kind) String() string {
	return string(k)
}

// Validate returns an error for kinds outside the canonical set.
func (k Kind) Validate() error {
	switch k {
	case KindSurfaceTile, KindFracture, KindTransform, KindSpawn, KindRemove, KindAssembly:
		return nil
	}
	return eris.Errorf("unknown delta kind %q", string(k))
}

// SurfaceChannel selects which scalar field of a surface tile a
// SurfaceTileDelta modifies.
type SurfaceChannel string

const (
	ChannelSnowDepth        SurfaceChannel = "snow_depth"
	ChannelSnowCompaction   SurfaceChannel = "snow_compaction"
	ChannelWetness          SurfaceChannel = "wetness"
	ChannelTemperatureDelta SurfaceChannel = "temperature_delta"
	ChannelToxicity         SurfaceChannel = "toxicity"
	ChannelCustomA          SurfaceChannel = "custom_a"
	ChannelCustomB          SurfaceChannel = "custom_b"
)

// Validate returns an error for channels outside the canonical set.
func (c SurfaceChannel) Validate() error {
	switch c {
	case ChannelSnowDepth, ChannelSnowCompaction, ChannelWetness,
		ChannelTemperatureDelta, ChannelToxicity, ChannelCustomA, ChannelCustomB:
		return nil
	}
	return eris.Errorf("unknown surface channel %q", string(c))
}

// SurfaceOp is the accumulation operation a SurfaceTileDelta applies to its
// channel.
type SurfaceOp string

const (
	OpSet      SurfaceOp = "set"
	OpAdd      SurfaceOp = "add"
	OpSubtract SurfaceOp = "subtract"
	OpMultiply SurfaceOp = "multiply"
	OpMax      SurfaceOp = "max"
	OpMin      SurfaceOp = "min"
)

// Validate returns an error for operations outside the canonical set.
// Apply ignores unknown operations, so submissions are rejected up front
// instead of silently dropping their effect.
func (o SurfaceOp) Validate() error {
	switch o {
	case OpSet, OpAdd, OpSubtract, OpMultiply, OpMax, OpMin:
		return nil
	}
	return eris.Errorf("unknown surface op %q", string(o))
}

// Apply folds the delta value into the current channel value. Unknown
// operations leave the current value untouched.
func (o SurfaceOp) Apply(current, value float64) float64 {
	switch o {
	case OpSet:
		return value
	case OpAdd:
		return current + value
	case OpSubtract:
		return current - value
	case OpMultiply:
		return current * value
	case OpMax:
		return math.Max(current, value)
	case OpMin:
		return math.Min(current, value)
	}
	return current
}

// DefaultTileRadius is the world-space influence radius, in centimeters, of
// a surface tile delta that does not specify one.
const DefaultTileRadius = 50.0

// SurfaceTileDelta records a scalar change to one surface tile channel:
// snowfall, footprints, wetness, scorching. Deltas are append-only; the
// terrain layer folds them in timestamp order via SurfaceOp.Apply.
type SurfaceTileDelta struct {
	Cell          CellKey        `json:"cell"`
	TileIndex     int32          `json:"tile_index"`
	WorldLocation Vec3           `json:"world_location"`
	Radius        float64        `json:"radius"`
	Channel       SurfaceChannel `json:"channel"`
	Op            SurfaceOp      `json:"op"`
	Value         float64        `json:"value"`
	Timestamp     float64        `json:"timestamp"`
	Author        string         `json:"author,omitempty"`
}

// NewSurfaceTileDelta returns a delta with the default influence radius.
func NewSurfaceTileDelta(cell CellKey, tileIndex int32, location Vec3) SurfaceTileDelta {
	return SurfaceTileDelta{
		Cell:          cell,
		TileIndex:     tileIndex,
		WorldLocation: location,
		Radius:        DefaultTileRadius,
	}
}

// FractureDelta records destruction state for a breakable actor: which
// chunks broke off and whether the remains are physically asleep.
type FractureDelta struct {
	Cell         CellKey      `json:"cell"`
	ActorGUID    string       `json:"actor_guid"`
	DamageSpecID DamageSpecID `json:"damage_spec_id"`
	BrokenChunks []int32      `json:"broken_chunks"`
	Sleeping     bool         `json:"sleeping"`
	Timestamp    float64      `json:"timestamp"`
}

// NewFractureDelta returns a delta for the given actor with the sleeping
// flag set, the common case for settled debris.
func NewFractureDelta(cell CellKey, actorGUID string) FractureDelta {
	return FractureDelta{
		Cell:      cell,
		ActorGUID: actorGUID,
		Sleeping:  true,
	}
}

// TransformDelta records that an actor came to rest away from its authored
// placement.
type TransformDelta struct {
	Cell           CellKey   `json:"cell"`
	ActorGUID      string    `json:"actor_guid"`
	Transform      Transform `json:"transform"`
	PhysicsEnabled bool      `json:"physics_enabled"`
	Sleeping       bool      `json:"sleeping"`
	Timestamp      float64   `json:"timestamp"`
}

// NoPCGInstance marks a spawn that did not originate from procedural
// generation.
const NoPCGInstance int64 = -1

// SpawnDelta records a runtime-spawned actor that must be recreated on
// load.
type SpawnDelta struct {
	Cell           CellKey   `json:"cell"`
	ActorGUID      string    `json:"actor_guid"`
	PCGInstanceID  int64     `json:"pcg_instance_id"`
	ActorClass     string    `json:"actor_class"`
	SpawnTransform Transform `json:"spawn_transform"`
	Timestamp      float64   `json:"timestamp"`
}

// NewSpawnDelta returns a spawn record not tied to a PCG instance.
func NewSpawnDelta(cell CellKey, actorGUID string, class string) SpawnDelta {
	return SpawnDelta{
		Cell:          cell,
		ActorGUID:     actorGUID,
		PCGInstanceID: NoPCGInstance,
		ActorClass:    class,
	}
}

// RemoveDelta records that an authored or procedural actor was removed from
// the world and must stay removed on load.
type RemoveDelta struct {
	Cell      CellKey `json:"cell"`
	ActorGUID string  `json:"actor_guid"`
	Reason    string  `json:"reason"`
	Timestamp float64 `json:"timestamp"`
}

// AssemblyDelta records the state of a player-built assembly: its placement,
// accumulated damage, and named state variables (power level, fuel, ...).
type AssemblyDelta struct {
	Cell           CellKey            `json:"cell"`
	AssemblyGUID   string             `json:"assembly_guid"`
	AssemblySpecID AssemblySpecID     `json:"assembly_spec_id"`
	Transform      Transform          `json:"transform"`
	Sleeping       bool               `json:"sleeping"`
	DamagedParts   []string           `json:"damaged_parts"`
	StateVariables map[string]float64 `json:"state_variables"`
	Timestamp      float64            `json:"timestamp"`
}
