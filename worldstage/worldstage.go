// Package worldstage tracks where a world is in its lifecycle. Stage
// transitions are atomic so the game loop, the HTTP surface, and the
// shutdown path can race on them safely.
package worldstage

import (
	"sync"
	"sync/atomic"
)

type Stage string

const (
	Init         Stage = "Init"         // The default stage of world
	Starting     Stage = "Starting"     // World is moved to this stage after StartGame() is called
	Restoring    Stage = "Restoring"    // World is moved to this stage while persisted cells are loading
	Ready        Stage = "Ready"        // World is moved to this stage when it's ready to start ticking
	Running      Stage = "Running"      // World is moved to this stage when Tick() is first called
	ShuttingDown Stage = "ShuttingDown" // World is moved to this stage when it received a shutdown signal
	ShutDown     Stage = "ShutDown"     // World is moved to this stage when it has successfully shutdown
)

type Manager struct {
	current *atomic.Value

	mu      sync.Mutex
	waiters map[Stage]chan struct{}
}

func NewManager() *Manager {
	m := &Manager{
		current: &atomic.Value{},
		waiters: map[Stage]chan struct{}{},
	}
	m.Store(Init)
	return m
}

func (m *Manager) CompareAndSwap(oldStage, newStage Stage) (swapped bool) {
	swapped = m.current.CompareAndSwap(oldStage, newStage)
	if swapped {
		m.noteEntered(newStage)
	}
	return swapped
}

func (m *Manager) Current() Stage {
	return m.current.Load().(Stage)
}

func (m *Manager) Store(val Stage) {
	m.current.Store(val)
	m.noteEntered(val)
}

func (m *Manager) Swap(newStage Stage) (oldStage Stage) {
	oldStage = m.current.Swap(newStage).(Stage)
	m.noteEntered(newStage)
	return oldStage
}

// NotifyOnStage returns a channel that is closed once the manager enters
// the given stage. If the manager is already at that stage, the returned
// channel is already closed. The channel stays closed after the stage is
// left again, so callers looping on it must break out on the first
// delivery.
func (m *Manager) NotifyOnStage(stage Stage) <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.waiters[stage]
	if !ok {
		ch = make(chan struct{})
		m.waiters[stage] = ch
		if m.Current() == stage {
			close(ch)
		}
	}
	return ch
}

func (m *Manager) noteEntered(stage Stage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.waiters[stage]
	if !ok {
		ch = make(chan struct{})
		m.waiters[stage] = ch
		close(ch)
		return
	}
	select {
	case <-ch:
		// already closed
	default:
		close(ch)
	}
}
