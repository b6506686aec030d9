package terra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rotisserie/eris"
	"gotest.tools/v3/assert"

	"pkg.world.dev/terra/submission"
	"pkg.world.dev/terra/types"
)

// TestWorld wires a World into a test: it owns the tick channels, knows
// the server's address, and once started tears everything down through
// t.Cleanup.
type TestWorld struct {
	testing.TB
	*World

	// BaseURL is host:port with no scheme; MakeHTTPURL and
	// MakeWebSocketURL attach one.
	BaseURL string
	Redis   *miniredis.Miniredis

	TickTrigger chan time.Time
	TickDone    chan uint64

	doCleanup func()
	startOnce *sync.Once
}

// NewTestWorld creates a test fixture backed by a file store in a temp
// directory. The world is created immediately; StartWorld (or the first
// DoTick) starts the loop and the server.
func NewTestWorld(t testing.TB, opts ...WorldOption) *TestWorld {
	t.Setenv("TERRA_STORE_BACKEND", "file")
	t.Setenv("TERRA_SAVE_DIR", t.TempDir())
	return newTestWorld(t, nil, opts...)
}

// NewTestRedisWorld creates a test fixture backed by a redis store. A
// miniredis instance is started when redis is nil.
func NewTestRedisWorld(t testing.TB, redis *miniredis.Miniredis, opts ...WorldOption) *TestWorld {
	if redis == nil {
		redis = miniredis.RunT(t)
	}
	t.Setenv("TERRA_STORE_BACKEND", "redis")
	t.Setenv("REDIS_ADDRESS", redis.Addr())
	return newTestWorld(t, redis, opts...)
}

func newTestWorld(t testing.TB, redis *miniredis.Miniredis, opts ...WorldOption) *TestWorld {
	port, err := findOpenPort()
	assert.NilError(t, err)

	t.Setenv("TERRA_PORT", port)

	tickTrigger, tickDone := make(chan time.Time), make(chan uint64)

	// The channel defaults go in front so a test supplying its own tick
	// channels still wins.
	opts = append([]WorldOption{
		WithTickChannel(tickTrigger),
		WithTickDoneChannel(tickDone),
	}, opts...)

	world, err := NewWorld(opts...)
	assert.NilError(t, err)

	return &TestWorld{
		TB:    t,
		World: world,

		BaseURL: "localhost:" + port,
		Redis:   redis,

		TickTrigger: tickTrigger,
		TickDone:    tickDone,

		startOnce: &sync.Once{},
		// StartWorld registers this with t.Cleanup, so a world that never
		// started is never shut down.
		doCleanup: func() {
			// The loop must stay free to send on tickDone while it winds
			// down, so drain the channel until the loop closes it.
			go func() {
				for range tickDone { //nolint:revive // drains until closed
				}
			}()
			assert.NilError(t, world.Shutdown())
			close(tickTrigger)
		},
	}
}

// StartWorld boots the loop and the server, blocks until the world
// reports running, and registers shutdown with t.Cleanup. Specs and
// scenes must be registered before this; DoTick calls it on first use.
func (w *TestWorld) StartWorld() {
	w.startOnce.Do(func() {
		timeout := time.After(5 * time.Second)
		startupError := make(chan error)
		go func() {
			// StartGame only returns on failure. Hand the error over on a
			// channel: a t.Fatal off the test goroutine would not surface
			// until the test finished anyway.
			startupError <- w.World.StartGame()
		}()
		for !w.World.IsGameRunning() {
			select {
			case err := <-startupError:
				w.Fatalf("startup error: %v", err)
			case <-timeout:
				w.Fatal("timeout while waiting for game to start")
			default:
				time.Sleep(10 * time.Millisecond)
			}
		}
		w.Cleanup(w.doCleanup)
	})
}

// DoTick triggers one tick and blocks until the loop reports it done.
// The world is started first if nothing has started it yet.
func (w *TestWorld) DoTick() {
	w.StartWorld()
	timeout := time.After(5 * time.Second)
	select {
	case w.TickTrigger <- time.Now():
	case <-timeout:
		w.Fatal("timeout while waiting for tick start")
	}
	select {
	case <-w.TickDone:
	case <-timeout:
		w.Fatal("timeout while waiting for tick end")
	}
}

// SubmitBatch validates and enqueues a batch directly on the world,
// bypassing the HTTP surface. The batch is applied on the next DoTick.
func (w *TestWorld) SubmitBatch(batch submission.Batch) types.SubmissionHash {
	_, hash, err := w.World.SubmitBatch("", 0, batch)
	assert.NilError(w, err)
	return hash
}

func (w *TestWorld) MakeHTTPURL(path string) string {
	return fmt.Sprintf("http://%s/%s", w.BaseURL, strings.Trim(path, "/"))
}

func (w *TestWorld) MakeWebSocketURL(path string) string {
	return fmt.Sprintf("ws://%s/%s", w.BaseURL, strings.Trim(path, "/"))
}

// Post sends payload as JSON to path on this world's server.
func (w *TestWorld) Post(path string, payload any) *http.Response {
	body, err := json.Marshal(payload)
	assert.NilError(w, err)
	req, err := http.NewRequestWithContext(
		context.Background(),
		http.MethodPost,
		w.MakeHTTPURL(path),
		bytes.NewReader(body),
	)
	assert.NilError(w, err)
	req.Header.Add("Content-Type", "application/json")
	return w.do(req)
}

// Get requests path from this world's server.
func (w *TestWorld) Get(path string) *http.Response {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, w.MakeHTTPURL(path), nil)
	assert.NilError(w, err)
	return w.do(req)
}

func (w *TestWorld) do(req *http.Request) *http.Response {
	resp, err := http.DefaultClient.Do(req)
	assert.NilError(w, err)
	return resp
}

// findOpenPort asks the kernel for a free port by binding the zero port,
// then releases it for the server to claim.
func findOpenPort() (string, error) {
	for retries := 0; retries < 10; retries++ {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		addr, err := net.ResolveTCPAddr(l.Addr().Network(), l.Addr().String())
		closeErr := l.Close()
		if err != nil {
			return "", eris.Wrap(err, "failed to resolve listener address")
		}
		if closeErr != nil {
			return "", eris.Wrap(closeErr, "failed to release probe listener")
		}
		return strconv.Itoa(addr.Port), nil
	}
	return "", eris.New("failed to find an open port")
}
