package server

import (
	"context"

	"pkg.world.dev/terra/delta"
	"pkg.world.dev/terra/events"
	"pkg.world.dev/terra/filter"
	"pkg.world.dev/terra/frame"
	"pkg.world.dev/terra/receipt"
	"pkg.world.dev/terra/solar"
	"pkg.world.dev/terra/spec"
	"pkg.world.dev/terra/submission"
	"pkg.world.dev/terra/types"
	"pkg.world.dev/terra/worldstage"
)

// Provider is the world surface the handlers are served from. Handlers never
// mutate stores directly: SubmitBatch enqueues into the pending pool the
// world loop drains, and RequestFlush asks the loop to flush on its next
// tick. Read methods return copies that are safe to serialize after return.
type Provider interface {
	Namespace() string
	CurrentTick() uint64
	CurrentStage() worldstage.Stage
	IsGameRunning() bool

	// SubmitBatch validates and enqueues a delta batch, returning the tick
	// the batch will be applied in and the receipt hash minted for it.
	SubmitBatch(clientID string, sequence uint64, batch submission.Batch) (uint64, types.SubmissionHash, error)
	RequestFlush()

	ReceiptsForTick(tick uint64) ([]receipt.Receipt, error)
	ReceiptHistorySize() uint64

	QueryDeltas(ctx context.Context, deltaFilter filter.DeltaFilter) ([]delta.Envelope, error)
	CellRecords(ctx context.Context) ([]delta.CellRecord, error)

	ResolveSurfaceSpec(id types.SurfaceSpecID) (spec.Surface, spec.Source)
	ResolveMediumSpec(id types.MediumSpecID) (spec.Medium, spec.Source)
	BiomeSpec(id types.BiomeSpecID) (spec.Biome, bool)

	SolarState() solar.State
	SkyContext() frame.SkyContext

	EventHub() *events.EventHub

	RegisteredSurfaceSpecs() []string
	RegisteredMediumSpecs() []string
	RegisteredBiomeSpecs() []string
	ActiveServices() []string
}
