package events_test

import (
	"fmt"
	"sync"
	"testing"

	"pkg.world.dev/terra/assert"
	"pkg.world.dev/terra/events"
	"pkg.world.dev/terra/receipt"
	"pkg.world.dev/terra/types"
)

func TestEmitEventQueuesUntilFlush(t *testing.T) {
	hub := events.NewEventHub()
	for i := 0; i < 5; i++ {
		err := hub.EmitEvent(events.Event{Message: fmt.Sprintf("tile scorched %d", i)})
		assert.NilError(t, err)
	}
	assert.Equal(t, 5, hub.EventQueueLength())
	assert.Equal(t, 0, hub.ConnectionAmount())

	// With no connections a flush simply drops the queue.
	hub.FlushEvents()
	assert.Equal(t, 0, hub.EventQueueLength())
	hub.Shutdown()
}

func TestEmitEventRejectsUnserializablePayloads(t *testing.T) {
	hub := events.NewEventHub()
	err := hub.EmitEvent(make(chan int))
	assert.IsError(t, err)
	assert.Equal(t, 0, hub.EventQueueLength())
	hub.Shutdown()
}

func TestEmitRawSkipsEncoding(t *testing.T) {
	hub := events.NewEventHub()
	hub.EmitRaw([]byte(`{"message":"cell flushed"}`))
	hub.EmitRaw([]byte(`{"message":"scene loaded"}`))
	assert.Equal(t, 2, hub.EventQueueLength())
	hub.Shutdown()
}

func TestConcurrentEmittersAllLand(t *testing.T) {
	numberToTest := 5
	hub := events.NewEventHub()
	var wg sync.WaitGroup
	for i := 0; i < numberToTest; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := hub.EmitEvent(events.Event{Message: fmt.Sprintf("test%d", i)})
			assert.NilError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, numberToTest, hub.EventQueueLength())
	hub.Shutdown()
}

func TestShutdownIsIdempotent(t *testing.T) {
	hub := events.NewEventHub()
	hub.Shutdown()
	// A second shutdown finds the loop already stopped and must not block.
	hub.Shutdown()
}

func TestTickResultsCollectReceiptsAndEvents(t *testing.T) {
	tr := events.NewTickResults(42)
	assert.NilError(t, tr.AddEvent(events.Event{Message: "cell flushed"}))
	assert.NilError(t, tr.AddEvent(map[string]int{"cells": 3}))
	assert.Equal(t, 2, len(tr.Events))
	assert.JSONEq(t, `{"message":"cell flushed"}`, string(tr.Events[0]))

	hash := types.NewSubmissionHash()
	tr.SetReceipts([]receipt.Receipt{{Hash: hash}})
	tr.SetTick(43)
	assert.Equal(t, uint64(43), tr.Tick)
	assert.Equal(t, 1, len(tr.Receipts))
	assert.Equal(t, hash, tr.Receipts[0].Hash)

	tr.Clear()
	assert.Equal(t, uint64(0), tr.Tick)
	assert.Equal(t, 0, len(tr.Events))
	assert.Equal(t, 0, len(tr.Receipts))
}

func TestAddEventRejectsUnserializablePayloads(t *testing.T) {
	tr := events.NewTickResults(0)
	err := tr.AddEvent(make(chan int))
	assert.IsError(t, err)
	assert.Equal(t, 0, len(tr.Events))
}
