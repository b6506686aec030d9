// Package events broadcasts world happenings to connected websocket
// clients. Events queue on the hub during a tick and go out in a single
// batch when the world loop flushes them at the end of the tick.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"pkg.world.dev/terra/codec"
	terralog "pkg.world.dev/terra/log"
)

const writeDeadline = 5 * time.Second

// Event is the minimal broadcast payload for ad hoc notifications. The
// world emits richer typed payloads (flush summaries, scene changes)
// through the same hub.
type Event struct {
	Message string `json:"message"`
}

// registration pairs a connection with an ack channel so the caller
// knows the hub loop has picked it up before relying on it.
type registration struct {
	conn *websocket.Conn
	ack  chan struct{}
}

// hubStats travels over a channel so readers see the loop's own view of
// its state without extra locking.
type hubStats struct {
	connections  int
	queuedEvents int
}

// EventHub fans queued event payloads out to every registered websocket
// connection. A single goroutine owns all hub state; the exported
// methods talk to it through channels, so the hub carries no locks.
type EventHub struct {
	broadcast  chan []byte
	flush      chan struct{}
	register   chan registration
	unregister chan registration
	stats      chan chan hubStats

	running  atomic.Bool
	quit     chan struct{}
	stopOnce sync.Once
	stopped  chan struct{}
}

func NewEventHub() *EventHub {
	hub := &EventHub{
		broadcast:  make(chan []byte),
		flush:      make(chan struct{}),
		register:   make(chan registration),
		unregister: make(chan registration),
		stats:      make(chan chan hubStats),
		quit:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
	go hub.Run()
	return hub
}

// Run drives the hub loop until Shutdown. NewEventHub already starts it
// in its own goroutine; further calls are no-ops, so an owner that
// wants the goroutine lifecycle spelled out in its startup path can
// call it again without consequence.
func (eh *EventHub) Run() {
	if !eh.running.CompareAndSwap(false, true) {
		return
	}
	defer close(eh.stopped)

	conns := make(map[*websocket.Conn]struct{})
	queue := make([][]byte, 0)

	drop := func(conn *websocket.Conn) {
		if _, ok := conns[conn]; !ok {
			return
		}
		delete(conns, conn)
		if err := conn.Close(); err != nil {
			log.Logger.Err(eris.Wrap(err, "")).Msg("failed to close websocket connection")
		}
	}

	for {
		select {
		case <-eh.quit:
			for conn := range conns {
				drop(conn)
			}
			return
		case reg := <-eh.register:
			conns[reg.conn] = struct{}{}
			close(reg.ack)
		case reg := <-eh.unregister:
			drop(reg.conn)
			close(reg.ack)
		case data := <-eh.broadcast:
			queue = append(queue, data)
		case out := <-eh.stats:
			out <- hubStats{connections: len(conns), queuedEvents: len(queue)}
		case <-eh.flush:
			for _, conn := range writeQueue(conns, queue) {
				drop(conn)
			}
			queue = queue[:0]
		}
	}
}

// writeQueue pushes every queued payload to every connection, one
// goroutine per connection so a stalled client only delays its own
// feed. It returns the connections whose writes failed; the hub loop
// drops those after all writers finish, which keeps the drop inside the
// goroutine that owns the connection set.
func writeQueue(conns map[*websocket.Conn]struct{}, queue [][]byte) []*websocket.Conn {
	var (
		mu   sync.Mutex
		dead []*websocket.Conn
		wg   sync.WaitGroup
	)
	for conn := range conns {
		conn := conn
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, payload := range queue {
				err := conn.SetWriteDeadline(time.Now().Add(writeDeadline))
				if err == nil {
					err = conn.WriteMessage(websocket.TextMessage, payload)
				}
				if err != nil {
					log.Logger.Err(eris.Wrap(err, "")).Msg("dropping websocket connection after failed write")
					mu.Lock()
					dead = append(dead, conn)
					mu.Unlock()
					return
				}
			}
		}()
	}
	wg.Wait()
	return dead
}

// EmitEvent encodes the event and queues it for the next flush.
func (eh *EventHub) EmitEvent(event any) error {
	data, err := codec.Encode(event)
	if err != nil {
		return eris.Wrap(err, "event payloads must be json serializable")
	}
	eh.EmitRaw(data)
	return nil
}

// EmitRaw queues an already-encoded event without re-encoding it. The
// world loop uses this to hand over tick results whose events were
// encoded as they were recorded. Payloads emitted after shutdown are
// dropped.
func (eh *EventHub) EmitRaw(data []byte) {
	select {
	case eh.broadcast <- data:
	case <-eh.quit:
	}
}

// FlushEvents sends everything queued since the last flush to every
// connection and empties the queue. With no connections it just drops
// the queue.
func (eh *EventHub) FlushEvents() {
	select {
	case eh.flush <- struct{}{}:
	case <-eh.quit:
	}
}

// RegisterConnection adds ws to the broadcast set, returning once the
// hub has it.
func (eh *EventHub) RegisterConnection(ws *websocket.Conn) {
	eh.signal(eh.register, ws)
}

// UnregisterConnection removes ws from the broadcast set and closes it.
// Unknown connections are ignored, so it is safe to call for a
// connection the hub already dropped after a failed write.
func (eh *EventHub) UnregisterConnection(ws *websocket.Conn) {
	eh.signal(eh.unregister, ws)
}

func (eh *EventHub) signal(ch chan registration, ws *websocket.Conn) {
	reg := registration{conn: ws, ack: make(chan struct{})}
	select {
	case ch <- reg:
	case <-eh.quit:
		return
	}
	select {
	case <-reg.ack:
	case <-eh.quit:
	}
}

// ConnectionAmount reports how many connections the hub is feeding. A
// shut-down hub reports zero.
func (eh *EventHub) ConnectionAmount() int {
	return eh.snapshot().connections
}

// EventQueueLength reports how many payloads are waiting for the next
// flush. A shut-down hub reports zero.
func (eh *EventHub) EventQueueLength() int {
	return eh.snapshot().queuedEvents
}

func (eh *EventHub) snapshot() hubStats {
	out := make(chan hubStats)
	select {
	case eh.stats <- out:
		return <-out
	case <-eh.quit:
		return hubStats{}
	}
}

// Shutdown closes every connection and stops the hub loop. It returns
// once the loop has exited and is safe to call more than once.
func (eh *EventHub) Shutdown() {
	eh.stopOnce.Do(func() { close(eh.quit) })
	<-eh.stopped
}

// NewWebSocketEventHandler returns the fiber handler that feeds a
// connection from the hub. The feed is one-way: inbound frames are read
// only so close and ping frames get serviced, and their payloads are
// discarded. When the read loop ends the connection is unregistered,
// whatever the reason.
func (eh *EventHub) NewWebSocketEventHandler() func(conn *websocket.Conn) {
	return func(conn *websocket.Conn) {
		logger := terralog.CreateServiceLogger(&log.Logger, "events")
		eh.RegisterConnection(conn)
		defer eh.UnregisterConnection(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				logger.Debug().Err(eris.Wrap(err, "")).Msg("websocket feed closed")
				return
			}
		}
	}
}
