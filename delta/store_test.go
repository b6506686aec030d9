package delta_test

import (
	"testing"

	"pkg.world.dev/terra/assert"
	"pkg.world.dev/terra/delta"
	"pkg.world.dev/terra/types"
)

func TestEmptyCellRecord(t *testing.T) {
	rec := delta.CellRecord{Cell: "(0,0,LOD0)"}
	assert.True(t, rec.IsEmpty())
	assert.Equal(t, 0, rec.Count())
	assert.Len(t, rec.Envelopes(), 0)
}

func TestCellRecordEnvelopesCarryActorIdentity(t *testing.T) {
	cell := types.CellKey{X: 3, Y: -2}
	rec := delta.CellRecord{
		Cell: cell.String(),
		SurfaceDeltas: []types.SurfaceTileDelta{{
			Cell: cell, Channel: types.ChannelWetness, Op: types.OpSet, Value: 1, Author: "alice", Timestamp: 1,
		}},
		FractureDeltas: []types.FractureDelta{{
			Cell: cell, ActorGUID: "actor-9", BrokenChunks: []int32{2}, Timestamp: 2,
		}},
		TransformDeltas: []types.TransformDelta{{
			Cell: cell, ActorGUID: "actor-3", Transform: types.IdentityTransform(), Timestamp: 3,
		}},
		SpawnDeltas: []types.SpawnDelta{{
			Cell: cell, ActorGUID: "actor-4", ActorClass: "/Game/Crate", Timestamp: 4,
		}},
		RemoveDeltas: []types.RemoveDelta{{
			Cell: cell, ActorGUID: "actor-5", Reason: "harvested", Timestamp: 5,
		}},
		AssemblyDeltas: []types.AssemblyDelta{{
			Cell: cell, AssemblyGUID: "asm-1", AssemblySpecID: "windmill", Timestamp: 6,
		}},
	}
	assert.False(t, rec.IsEmpty())
	assert.Equal(t, 6, rec.Count())

	envs := rec.Envelopes()
	assert.Len(t, envs, len(types.Kinds()))

	kinds := make([]types.Kind, 0, len(envs))
	actors := make([]string, 0, len(envs))
	for _, env := range envs {
		kinds = append(kinds, env.Kind)
		actors = append(actors, env.Actor)
		assert.Equal(t, cell, env.Cell)
	}
	assert.DeepEqual(t, types.Kinds(), kinds)
	assert.DeepEqual(t, []string{"alice", "actor-9", "actor-3", "actor-4", "actor-5", "asm-1"}, actors)

	payload, ok := envs[0].Payload.(types.SurfaceTileDelta)
	assert.True(t, ok)
	assert.Equal(t, types.ChannelWetness, payload.Channel)
}
