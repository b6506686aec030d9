package server_test

import (
	"encoding/json"
	"testing"

	"github.com/gofiber/fiber/v2"

	"pkg.world.dev/terra"
	"pkg.world.dev/terra/assert"
	"pkg.world.dev/terra/server"
	"pkg.world.dev/terra/types"
)

func TestReceiptsListQuery(t *testing.T) {
	tf := terra.NewTestWorld(t)
	hash1 := tf.SubmitBatch(testBatch(types.CellKey{X: 0, Y: 0, LOD: 0}))
	tf.DoTick()
	hash2 := tf.SubmitBatch(testBatch(types.CellKey{X: 0, Y: 1, LOD: 0}))
	tf.DoTick()

	assert.NotEqual(t, hash1, hash2)

	resp := tf.Post("query/receipts/list", server.ListReceiptsRequest{})
	assert.Equal(t, resp.StatusCode, fiber.StatusOK)

	var reply server.ListReceiptsResponse
	assert.NilError(t, json.NewDecoder(resp.Body).Decode(&reply))
	assert.Equal(t, reply.StartTick, uint64(0))
	assert.Equal(t, reply.EndTick, uint64(2))
	assert.Equal(t, len(reply.Receipts), 2)

	assert.Equal(t, reply.Receipts[0].BatchHash, hash1.String())
	assert.Equal(t, reply.Receipts[0].Tick, uint64(0))
	assert.Equal(t, reply.Receipts[1].BatchHash, hash2.String())
	assert.Equal(t, reply.Receipts[1].Tick, uint64(1))

	// The result travels as generic JSON, so compare it as JSON.
	gotResult, err := json.Marshal(reply.Receipts[0].Result)
	assert.NilError(t, err)
	assert.JSONEq(t, `{"deltas":2,"cells":1}`, string(gotResult))
	assert.Equal(t, len(reply.Receipts[0].Errors), 0)
}

func TestReceiptsListNarrowsRequestedRange(t *testing.T) {
	tf := terra.NewTestWorld(t)
	tf.SubmitBatch(testBatch(types.CellKey{X: 0, Y: 0, LOD: 0}))
	tf.DoTick()
	hash2 := tf.SubmitBatch(testBatch(types.CellKey{X: 0, Y: 1, LOD: 0}))
	tf.DoTick()

	// Asking for the tail of the range returns only the later receipt.
	resp := tf.Post("query/receipts/list", server.ListReceiptsRequest{StartTick: 1})
	assert.Equal(t, resp.StatusCode, fiber.StatusOK)
	var reply server.ListReceiptsResponse
	assert.NilError(t, json.NewDecoder(resp.Body).Decode(&reply))
	assert.Equal(t, reply.StartTick, uint64(1))
	assert.Equal(t, reply.EndTick, uint64(2))
	assert.Equal(t, len(reply.Receipts), 1)
	assert.Equal(t, reply.Receipts[0].BatchHash, hash2.String())

	// Asking for ticks in the future yields an empty range anchored at the
	// current tick.
	resp = tf.Post("query/receipts/list", server.ListReceiptsRequest{StartTick: 99})
	assert.Equal(t, resp.StatusCode, fiber.StatusOK)
	reply = server.ListReceiptsResponse{}
	assert.NilError(t, json.NewDecoder(resp.Body).Decode(&reply))
	assert.Equal(t, reply.StartTick, reply.EndTick)
	assert.Equal(t, len(reply.Receipts), 0)
}

func TestReceiptsListHonorsHistorySize(t *testing.T) {
	tf := terra.NewTestWorld(t, terra.WithReceiptHistorySize(3))
	for i := 0; i < 6; i++ {
		tf.SubmitBatch(testBatch(types.CellKey{X: int32(i), Y: 0, LOD: 0}))
		tf.DoTick()
	}

	resp := tf.Post("query/receipts/list", server.ListReceiptsRequest{})
	assert.Equal(t, resp.StatusCode, fiber.StatusOK)
	var reply server.ListReceiptsResponse
	assert.NilError(t, json.NewDecoder(resp.Body).Decode(&reply))

	// Size 3 keeps the active tick plus three finished ones; the oldest
	// surviving receipts start past the discarded window.
	assert.Equal(t, reply.EndTick, uint64(6))
	assert.Equal(t, reply.StartTick, uint64(2))
	assert.Equal(t, len(reply.Receipts), 3)
	for i, r := range reply.Receipts {
		assert.Equal(t, r.Tick, uint64(3+i))
	}
}
