package terra

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pkg.world.dev/terra/delta"
	"pkg.world.dev/terra/receipt"
	"pkg.world.dev/terra/server"
)

// WorldOption adjusts how a World is built or served. One flat option
// type covers both the world and its HTTP server.
type WorldOption struct {
	serverOption server.Option
	terraOption  func(*World)
}

// WithPort specifies the port for the World's HTTP server. If omitted, the
// environment variable TERRA_PORT will be used, and if that is unset, port
// 4040 will be used.
func WithPort(port string) WorldOption {
	return WorldOption{
		serverOption: server.WithPort(port),
	}
}

// WithSwaggerFile points the server's docs endpoint at a different OpenAPI
// document.
func WithSwaggerFile(path string) WorldOption {
	return WorldOption{
		serverOption: server.WithSwaggerFile(path),
	}
}

// WithReceiptHistorySize specifies how many ticks worth of batch receipts
// should be kept in memory. The default is 10. A smaller number uses less
// memory, but limits how far back receipt queries can reach.
func WithReceiptHistorySize(size int) WorldOption {
	return WorldOption{
		terraOption: func(world *World) {
			world.receiptHistory = receipt.NewHistory(world.CurrentTick(), size)
		},
	}
}

// WithStore injects the delta store the world persists into, replacing the
// one built from config. Tests use this to run against a temp-dir file
// store or a miniredis-backed store.
func WithStore(store delta.Store) WorldOption {
	return WorldOption{
		terraOption: func(world *World) {
			world.store = store
		},
	}
}

// WithAutoFlushTicks overrides how many ticks pass between automatic
// flushes of dirty cells.
func WithAutoFlushTicks(ticks uint64) WorldOption {
	return WorldOption{
		terraOption: func(world *World) {
			world.autoFlushTicks = ticks
		},
	}
}

// WithTickChannel replaces the trigger that drives ticking, one tick per
// received message. The default is a one second interval; a different
// cadence is WithTickChannel(time.Tick(d)), and tests pass a channel
// they send on themselves to single-step the world.
func WithTickChannel(ch <-chan time.Time) WorldOption {
	return WorldOption{
		terraOption: func(world *World) {
			world.tickChannel = ch
		},
	}
}

// WithTickDoneChannel installs a channel that receives the finished tick
// number after each tick, letting tests assert only once a tick has
// fully landed.
func WithTickDoneChannel(ch chan<- uint64) WorldOption {
	return WorldOption{
		terraOption: func(world *World) {
			world.tickDoneChannel = ch
		},
	}
}

// WithPrettyLog switches the global logger to human readable console
// output.
func WithPrettyLog() WorldOption {
	return WorldOption{
		terraOption: func(*World) {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		},
	}
}
