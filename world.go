package terra

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"pkg.world.dev/terra/biome"
	"pkg.world.dev/terra/clock"
	"pkg.world.dev/terra/delta"
	"pkg.world.dev/terra/environment"
	"pkg.world.dev/terra/events"
	"pkg.world.dev/terra/filter"
	"pkg.world.dev/terra/frame"
	terralog "pkg.world.dev/terra/log"
	"pkg.world.dev/terra/receipt"
	"pkg.world.dev/terra/scene"
	"pkg.world.dev/terra/server"
	"pkg.world.dev/terra/settings"
	"pkg.world.dev/terra/sky"
	"pkg.world.dev/terra/solar"
	"pkg.world.dev/terra/spec"
	"pkg.world.dev/terra/specpack"
	"pkg.world.dev/terra/statsd"
	redisstore "pkg.world.dev/terra/storage/redis"
	"pkg.world.dev/terra/submission"
	"pkg.world.dev/terra/surface"
	"pkg.world.dev/terra/types"
	"pkg.world.dev/terra/worldstage"
)

const (
	DefaultHistoricalTicksToStore = 10
	RedisDialTimeOut              = 15

	defaultStarCatalogPath = "./content/stars.csv"
)

var _ server.Provider = &World{}

// BatchResult is the receipt result recorded for a successfully applied
// delta batch.
type BatchResult struct {
	Deltas int `json:"deltas"`
	Cells  int `json:"cells"`
}

// FlushEvent is streamed to event subscribers whenever dirty cells are
// flushed to the store.
type FlushEvent struct {
	Tick  uint64 `json:"tick"`
	Cells int    `json:"cells"`
}

type World struct {
	mode      RunMode
	namespace types.Namespace

	// Storage. storeMu enforces the read-paths-copy contract: the tick
	// loop takes the write lock for the whole mutation segment, HTTP
	// reads take the read lock and copy out before releasing it.
	metaStorage *redisstore.Storage
	store       delta.Store
	storeMu     sync.RWMutex

	// HTTP surface
	server        *server.Server
	serverOptions []server.Option
	serverCancel  context.CancelFunc
	serverDone    chan struct{}

	// World machinery
	worldStage *worldstage.Manager
	specs      *spec.Registry
	packs      *specpack.Loader
	pool       *submission.Pool
	eventHub   *events.EventHub

	// Services
	clock        *clock.Clock
	solarSystem  *solar.System
	frames       *frame.Service
	surfaces     *surface.Service
	environments *environment.Service
	biomes       *biome.Service
	skyCatalog   *sky.Catalog
	settings     *settings.Store
	scenes       *scene.Registry

	// Receipts
	receiptHistory *receipt.History

	// Tick
	tick            *atomic.Uint64
	timestamp       *atomic.Uint64
	simTimeBits     *atomic.Uint64
	lastTickReal    time.Time
	tickResults     *events.TickResults
	tickChannel     <-chan time.Time
	tickDoneChannel chan<- uint64
	// Channels handed in here are closed by the loop when the next tick
	// finishes; WaitForNextTick is the producer.
	addChannelWaitingForNextTick chan chan struct{}

	// Flush
	autoFlushTicks uint64
	flushRequested *atomic.Bool
	packDir        string
}

// NewWorld creates a new World object using the store backend named in the
// environment config.
func NewWorld(opts ...WorldOption) (*World, error) {
	serverOptions, terraOptions := separateOptions(opts)

	cfg, err := loadWorldConfig()
	if err != nil {
		return nil, eris.Wrap(err, "Failed to load config to start world")
	}
	if err := cfg.setupLogger(); err != nil {
		return nil, err
	}

	log.Info().Msgf("Creating a new Terra world in %s mode", cfg.TerraMode)

	var store delta.Store
	var metaStorage *redisstore.Storage
	switch cfg.TerraStoreBackend {
	case StoreBackendRedis:
		store = delta.NewRedisStore(delta.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       0,
			// Cold redis containers can take a while to accept the first
			// connection.
			DialTimeout: RedisDialTimeOut * time.Second,
		})
		s := redisstore.NewRedisStorage(redisstore.Options{
			Addr:        cfg.RedisAddress,
			Password:    cfg.RedisPassword,
			DB:          0,
			DialTimeout: RedisDialTimeOut * time.Second,
		}, cfg.TerraNamespace)
		metaStorage = &s
	default:
		store = delta.NewFileStore(cfg.TerraSaveDir)
	}

	tick := new(atomic.Uint64)
	simTimeBits := new(atomic.Uint64)

	registry := spec.NewRegistry()
	worldClock := clock.New()
	solarSystem := solar.NewSystem(
		solar.WithTimeSource(func() float64 {
			return math.Float64frombits(simTimeBits.Load())
		}),
	)

	surfaces := surface.NewService(registry)
	surfaces.SetConditions(surface.NewDeltaConditions(store))

	world := &World{
		mode:      cfg.TerraMode,
		namespace: types.Namespace(cfg.TerraNamespace),

		// Storage
		metaStorage: metaStorage,
		store:       store,

		// HTTP surface
		server:        nil, // constructed in StartGame, after options land
		serverOptions: serverOptions,

		// World machinery
		worldStage: worldstage.NewManager(),
		specs:      registry,
		packs:      specpack.NewLoader(registry),
		pool:       submission.NewPool(),
		eventHub:   events.NewEventHub(),

		// Services
		clock:        worldClock,
		solarSystem:  solarSystem,
		frames:       frame.NewService(solarSystem),
		surfaces:     surfaces,
		environments: environment.NewService(registry),
		biomes:       biome.NewService(registry),
		skyCatalog:   sky.NewCatalog(defaultStarCatalogPath),
		settings:     settings.NewStore(cfg.TerraSaveDir),
		scenes:       scene.NewRegistry(),

		// Receipts
		receiptHistory: receipt.NewHistory(tick.Load(), DefaultHistoricalTicksToStore),

		// Tick
		tick:                         tick,
		timestamp:                    new(atomic.Uint64),
		simTimeBits:                  simTimeBits,
		tickResults:                  events.NewTickResults(tick.Load()),
		tickChannel:                  time.Tick(time.Second), //nolint:staticcheck // the ticker lives as long as the process
		tickDoneChannel:              nil,                    // optional, injected via options
		addChannelWaitingForNextTick: make(chan chan struct{}),

		// Flush
		autoFlushTicks: cfg.TerraAutoFlushTicks,
		flushRequested: new(atomic.Bool),
		packDir:        cfg.TerraPackDir,
	}

	for _, opt := range terraOptions {
		opt(world)
	}

	var metricTags []string
	metricTags = append(metricTags, string("terra_mode:"+cfg.TerraMode))
	metricTags = append(metricTags, "terra_namespace:"+cfg.TerraNamespace)

	if cfg.StatsdAddress != "" || cfg.TraceAddress != "" {
		if err = statsd.Init(cfg.StatsdAddress, cfg.TraceAddress, metricTags); err != nil {
			return nil, eris.Wrap(err, "unable to init statsd")
		}
	} else {
		log.Logger.Warn().Msg("statsd is disabled")
	}

	return world, nil
}

func (w *World) CurrentTick() uint64 {
	return w.tick.Load()
}

// CurrentTimestamp returns the unix time injected into the most recent
// tick. It is zero before the first tick.
func (w *World) CurrentTimestamp() uint64 {
	return w.timestamp.Load()
}

// doTick performs one world tick. This consists of draining the pending
// submission pool, applying every batch to the delta store, recording
// receipts, and flushing dirty cells when a flush is due.
func (w *World) doTick(ctx context.Context, timestamp uint64) (err error) {
	startTime := time.Now()

	// Ticking is legal while restoring persisted cells, while running,
	// and during shutdown (the loop's final drain tick).
	if w.worldStage.Current() != worldstage.Restoring &&
		w.worldStage.Current() != worldstage.Running &&
		w.worldStage.Current() != worldstage.ShuttingDown {
		return eris.Errorf("invalid world state to tick: %s", w.worldStage.Current())
	}

	// Logs the tick number before re-panicking, so crash output says
	// which tick died.
	defer w.handleTickPanic()

	var span tracer.Span
	span, ctx = tracer.StartSpanFromContext(ctx, "terra.span.tick")
	defer func() {
		span.Finish()
	}()

	log.Info().Int("tick", int(w.CurrentTick())).Msg("Tick started")

	// Work on a copy of the pending batches so submissions keep landing
	// in the pool while this tick runs.
	pending := w.pool.CopyPending().Pending()

	w.timestamp.Store(timestamp)

	// Advance simulation time and publish it for concurrent readers (the
	// solar system samples the published value).
	now := time.Now()
	if w.lastTickReal.IsZero() {
		w.lastTickReal = now
	}
	w.clock.Advance(now.Sub(w.lastTickReal).Seconds())
	w.lastTickReal = now
	w.simTimeBits.Store(math.Float64bits(w.clock.SimTimeSeconds()))

	applyStartTime := time.Now()
	w.storeMu.Lock()
	for _, p := range pending {
		w.applyBatch(ctx, p)
	}

	// Flush inside the same mutation segment as the appends so queries
	// never observe a half applied batch.
	flushDue := w.flushRequested.Swap(false) || (w.CurrentTick()+1)%w.autoFlushTicks == 0
	if flushDue {
		w.flushLocked(ctx)
	}
	w.storeMu.Unlock()
	statsd.EmitTickStat(applyStartTime, "apply")

	w.tick.Add(1)
	w.receiptHistory.NextTick()

	flushEventStart := time.Now()
	w.populateAndBroadcastTickResults()
	statsd.EmitTickStat(flushEventStart, "flush_events")

	// Reset the carrier for the next tick.
	w.tickResults.Clear()

	statsd.EmitTickStat(startTime, "full_tick")
	deltaCount := 0
	for _, p := range pending {
		deltaCount += p.Batch.Count()
	}
	if err := statsd.Client().Count("num_of_deltas", int64(deltaCount), nil, 1); err != nil {
		log.Warn().Msgf("failed to emit count stat:%v", err)
	}

	return nil
}

// applyBatch appends one pending batch to the store and records its
// receipt. Callers must hold the store write lock.
func (w *World) applyBatch(ctx context.Context, p submission.Pending) {
	cells := map[types.CellKey]struct{}{}
	applied := 0

	appendErr := func(cell types.CellKey, err error) {
		if err != nil {
			w.receiptHistory.AddError(p.Hash, err)
			return
		}
		cells[cell] = struct{}{}
		applied++
	}

	for _, d := range p.Batch.SurfaceDeltas {
		appendErr(d.Cell, w.store.AppendSurface(ctx, d))
	}
	for _, d := range p.Batch.FractureDeltas {
		appendErr(d.Cell, w.store.AppendFracture(ctx, d))
	}
	for _, d := range p.Batch.TransformDeltas {
		appendErr(d.Cell, w.store.AppendTransform(ctx, d))
	}
	for _, d := range p.Batch.SpawnDeltas {
		appendErr(d.Cell, w.store.AppendSpawn(ctx, d))
	}
	for _, d := range p.Batch.RemoveDeltas {
		appendErr(d.Cell, w.store.AppendRemove(ctx, d))
	}
	for _, d := range p.Batch.AssemblyDeltas {
		appendErr(d.Cell, w.store.AppendAssembly(ctx, d))
	}

	w.receiptHistory.SetResult(p.Hash, BatchResult{Deltas: applied, Cells: len(cells)})
}

// flushLocked flushes dirty cells and queues the flush event for the tick's
// broadcast. Callers must hold the store write lock.
func (w *World) flushLocked(ctx context.Context) {
	flushStart := time.Now()
	dirty := len(w.store.DirtyCells())
	if err := w.store.Flush(ctx); err != nil {
		log.Error().Err(err).Msg("failed to flush dirty cells")
		return
	}
	statsd.EmitFlushStat(flushStart, dirty)
	if err := w.tickResults.AddEvent(FlushEvent{Tick: w.CurrentTick(), Cells: dirty}); err != nil {
		log.Warn().Err(err).Msg("failed to queue flush event")
	}
}

// StartGame brings the world up: it initializes the store, loads spec
// packs, restores persisted cells, and then runs the HTTP server and the
// tick loop, ticking once per message on the tick channel. On success it
// blocks until the world is shut down; an error during bringup is
// returned immediately.
func (w *World) StartGame() error {
	// Stage: Init -> Starting
	ok := w.worldStage.CompareAndSwap(worldstage.Init, worldstage.Starting)
	if !ok {
		return errors.New("game has already been started")
	}

	if err := w.store.Initialize(w.namespace); err != nil {
		closeErr := w.store.Close(context.Background())
		if closeErr != nil {
			return eris.Wrap(err, closeErr.Error())
		}
		return err
	}

	// Detect spec schema drift before anything reads the save: a save
	// written under a different document layout must not be silently
	// reinterpreted.
	if err := w.checkSchemaDrift(); err != nil {
		return err
	}

	if w.packDir != "" {
		results, err := w.packs.LoadDirectory(w.packDir)
		if err != nil {
			return eris.Wrapf(err, "failed to load spec packs from %q", w.packDir)
		}
		log.Info().Msgf("Loaded %d spec packs from %s", len(results), w.packDir)
	}

	// Stage: Starting -> Restoring
	w.worldStage.Store(worldstage.Restoring)
	if err := w.warmStoredCells(context.Background()); err != nil {
		return err
	}
	w.worldStage.Store(worldstage.Ready)

	w.receiptHistory.SetTick(w.CurrentTick())

	// The server cannot be built in NewWorld: it reads state off the
	// world instance, and options may have swapped that state out.
	var err error
	w.server, err = server.New(w, w.serverOptions...)
	if err != nil {
		return err
	}

	// Warn when the world is empty enough to look like a wiring mistake
	if len(w.specs.SurfaceIDs())+len(w.specs.MediumIDs())+len(w.specs.BiomeIDs()) == 0 {
		log.Warn().Msg("No specs registered")
	}
	if len(w.scenes.Scenes()) == 0 {
		log.Warn().Msg("No scenes registered")
	}

	terralog.World(&log.Logger, w, zerolog.InfoLevel)

	// Stage: Ready -> Running
	w.worldStage.Store(worldstage.Running)

	go w.eventHub.Run()
	w.startGameLoop(context.Background(), w.tickChannel, w.tickDoneChannel)
	w.startServer()

	// SIGINT and SIGTERM funnel into Shutdown
	w.handleShutdown()
	<-w.worldStage.NotifyOnStage(worldstage.ShutDown)
	return err
}

// checkSchemaDrift compares the stored spec document schemas against this
// build's layout. First boot stores them; later boots must match.
func (w *World) checkSchemaDrift() error {
	if w.metaStorage == nil {
		// File saves travel with the binary that wrote them; only shared
		// redis saves can outlive a build.
		return nil
	}

	docs := []struct {
		name string
		doc  any
	}{
		{"surface", spec.Surface{}},
		{"medium", spec.Medium{}},
		{"biome", spec.Biome{}},
	}
	for _, d := range docs {
		schema, err := spec.SerializeSchema(d.doc)
		if err != nil {
			return eris.Wrapf(err, "failed to serialize %s spec schema", d.name)
		}
		stored, err := w.metaStorage.GetSchema(d.name)
		if err != nil {
			if eris.Is(err, redisstore.ErrNoSchemaFound) {
				if err := w.metaStorage.SetSchema(d.name, schema); err != nil {
					return eris.Wrapf(err, "failed to store %s spec schema", d.name)
				}
				continue
			}
			return eris.Wrapf(err, "failed to load stored %s spec schema", d.name)
		}
		match, err := spec.IsSchemaValid(schema, stored)
		if err != nil {
			return eris.Wrapf(err, "failed to compare %s spec schemas", d.name)
		}
		if !match {
			return eris.Errorf(
				"%s spec schema does not match the schema stored with this save; payloads were written by a different build",
				d.name)
		}
	}
	return nil
}

// warmStoredCells pulls every persisted cell into memory so session appends
// land after historical deltas and first queries don't pay load latency.
func (w *World) warmStoredCells(ctx context.Context) error {
	cells, err := w.store.StoredCells(ctx)
	if err != nil {
		return eris.Wrap(err, "failed to list persisted cells")
	}
	for _, cell := range cells {
		if _, err := w.store.CellRecord(ctx, cell); err != nil {
			return eris.Wrapf(err, "failed to restore cell %s", cell)
		}
	}
	if len(cells) > 0 {
		log.Info().Msgf("Restored %d persisted cells", len(cells))
	}
	return nil
}

func (w *World) startServer() {
	serverCtx, cancel := context.WithCancel(context.Background())
	w.serverCancel = cancel
	w.serverDone = make(chan struct{})
	go func() {
		defer close(w.serverDone)
		if err := w.server.Serve(serverCtx); err != nil {
			log.Fatal().Err(err).Msgf("the server has failed: %s", eris.ToString(err, true))
		}
	}()
}

func (w *World) startGameLoop(ctx context.Context, tickStart <-chan time.Time, tickDone chan<- uint64) {
	log.Info().Msg("Game loop started")
	go func() {
		var waitingChs []chan struct{}
	loop:
		for {
			select {
			case _, ok := <-tickStart:
				if !ok {
					panic("the tick trigger channel was closed while the world was still running")
				}
				w.tickTheWorld(ctx, tickDone)
				closeAllChannels(waitingChs)
				waitingChs = waitingChs[:0]
			case <-w.worldStage.NotifyOnStage(worldstage.ShuttingDown):
				w.drainChannelsWaitingForNextTick()
				closeAllChannels(waitingChs)
				if w.pool.PendingCount() > 0 {
					// immediately tick if the pool is not empty to process all pending batches before shutdown.
					w.tickTheWorld(ctx, tickDone)
				}
				if tickDone != nil {
					close(tickDone)
				}
				break loop
			case ch := <-w.addChannelWaitingForNextTick:
				waitingChs = append(waitingChs, ch)
			}
		}
		w.worldStage.Store(worldstage.ShutDown)
	}()
}

func (w *World) tickTheWorld(ctx context.Context, tickDone chan<- uint64) {
	currTick := w.CurrentTick()
	// Tick errors terminate the world here. The panic value is the
	// eris-rendered error, so read the stack trace out of the message
	// rather than out of the panic site.
	if err := w.doTick(ctx, uint64(time.Now().Unix())); err != nil {
		bytes, errMarshal := json.Marshal(eris.ToJSON(err, true))
		if errMarshal != nil {
			panic(errMarshal)
		}
		panic(string(bytes))
	}
	if tickDone != nil {
		tickDone <- currTick
	}
}

func (w *World) IsGameRunning() bool {
	return w.worldStage.Current() == worldstage.Running
}

func (w *World) Shutdown() error {
	log.Info().Msg("Shutting down game loop.")
	ok := w.worldStage.CompareAndSwap(worldstage.Running, worldstage.ShuttingDown)
	if !ok {
		select {
		case <-w.worldStage.NotifyOnStage(worldstage.ShuttingDown):
			// Another goroutine owns the shutdown; just wait for it to
			// finish.
			<-w.worldStage.NotifyOnStage(worldstage.ShutDown)
			return nil
		default:
		}
		return errors.New("shutdown attempted before the world was started")
	}

	// The loop parks itself in ShutDown once its final tick is done.
	<-w.worldStage.NotifyOnStage(worldstage.ShutDown)

	if w.serverCancel != nil {
		w.serverCancel()
		<-w.serverDone
	}

	w.eventHub.Shutdown()

	// The loop is stopped, but take the write lock anyway so a late read
	// cannot observe the store closing under it.
	log.Info().Msg("Flushing dirty cells.")
	w.storeMu.Lock()
	defer w.storeMu.Unlock()
	ctx := context.Background()
	if err := w.store.Flush(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to flush dirty cells during shutdown.")
	}

	log.Info().Msg("Closing delta store.")
	if err := w.store.Close(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to close delta store.")
		return err
	}
	if w.metaStorage != nil {
		if err := w.metaStorage.Close(); err != nil {
			return err
		}
	}

	return nil
}

func (w *World) handleShutdown() {
	signalChannel := make(chan os.Signal, 1)
	go func() {
		signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)
		for sig := range signalChannel {
			if sig == syscall.SIGINT || sig == syscall.SIGTERM {
				err := w.Shutdown()
				if err != nil {
					log.Err(err).Msgf("There was an error during shutdown.")
				}
				return
			}
		}
	}()
}

func (w *World) handleTickPanic() {
	if r := recover(); r != nil {
		log.Error().Msgf(
			"Tick: %d, pending batches: %d",
			w.CurrentTick(),
			w.pool.PendingCount(),
		)
		panic(r)
	}
}

func closeAllChannels(chs []chan struct{}) {
	for _, ch := range chs {
		close(ch)
	}
}

// drainChannelsWaitingForNextTick closes waiter channels as they arrive
// once the world is shutting down, so a WaitForNextTick racing the
// shutdown returns instead of blocking on a loop that will never tick.
func (w *World) drainChannelsWaitingForNextTick() {
	go func() {
		for ch := range w.addChannelWaitingForNextTick {
			close(ch)
		}
	}()
}

// WaitForNextTick blocks until the next tick completes and reports
// whether one did; false means the world shut down while waiting.
func (w *World) WaitForNextTick() (success bool) {
	startTick := w.CurrentTick()
	ch := make(chan struct{})
	w.addChannelWaitingForNextTick <- ch
	<-ch
	return w.CurrentTick() > startTick
}

func (w *World) populateAndBroadcastTickResults() {
	receipts, err := w.receiptHistory.GetReceiptsForTick(w.CurrentTick() - 1)
	if err != nil {
		log.Error().Err(err).Msgf("failed get receipts for tick %d", w.CurrentTick()-1)
	}
	w.tickResults.SetReceipts(receipts)
	w.tickResults.SetTick(w.CurrentTick() - 1)

	if err := w.eventHub.EmitEvent(w.tickResults); err != nil {
		log.Err(err).Msgf("failed to broadcast tick results")
		return
	}
	w.eventHub.FlushEvents()
}

// SubmitBatch validates a delta batch and adds it to the pending pool.
// When clientID is set and the world has a submission journal, the
// (clientID, sequence) pair is burned first so a retried submission cannot
// be applied twice. Returns the tick the batch will be applied in.
func (w *World) SubmitBatch(clientID string, sequence uint64, batch submission.Batch) (
	uint64, types.SubmissionHash, error,
) {
	if err := batch.Validate(); err != nil {
		return 0, "", err
	}
	if clientID == "" {
		// Anonymous submissions skip replay protection. Fine on a dev
		// world, not on a shared one.
		if w.mode == RunModeProd {
			return 0, "", eris.New("submissions must carry a client id in production mode")
		}
	} else if w.metaStorage != nil {
		if err := w.metaStorage.UseSequence(clientID, sequence); err != nil {
			return 0, "", err
		}
	}
	// TODO: There's no locking between getting the tick and adding the batch, so there's no guarantee that this
	// batch is actually applied in the returned tick.
	tick := w.CurrentTick()
	hash := w.pool.AddBatch(batch)
	return tick, hash, nil
}

// RequestFlush asks the world loop to flush dirty cells at the end of its
// next tick.
func (w *World) RequestFlush() {
	w.flushRequested.Store(true)
}

func (w *World) Namespace() string {
	return string(w.namespace)
}

func (w *World) CurrentStage() worldstage.Stage {
	return w.worldStage.Current()
}

func (w *World) ReceiptsForTick(tick uint64) ([]receipt.Receipt, error) {
	return w.receiptHistory.GetReceiptsForTick(tick)
}

func (w *World) ReceiptHistorySize() uint64 {
	return w.receiptHistory.Size()
}

func (w *World) EventHub() *events.EventHub {
	return w.eventHub
}

// QueryDeltas runs a delta filter over every known cell and returns the
// matching envelopes. The result is a copy and stays valid after return.
func (w *World) QueryDeltas(ctx context.Context, deltaFilter filter.DeltaFilter) ([]delta.Envelope, error) {
	w.storeMu.RLock()
	defer w.storeMu.RUnlock()

	cells, err := w.knownCells(ctx)
	if err != nil {
		return nil, err
	}
	var matched []delta.Envelope
	for _, cell := range cells {
		record, err := w.store.CellRecord(ctx, cell)
		if err != nil {
			return nil, err
		}
		matched = append(matched, filter.Apply(deltaFilter, record.Envelopes())...)
	}
	return matched, nil
}

// CellRecords returns a copy of every known cell record.
func (w *World) CellRecords(ctx context.Context) ([]delta.CellRecord, error) {
	w.storeMu.RLock()
	defer w.storeMu.RUnlock()

	cells, err := w.knownCells(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]delta.CellRecord, 0, len(cells))
	for _, cell := range cells {
		record, err := w.store.CellRecord(ctx, cell)
		if err != nil {
			return nil, err
		}
		records = append(records, record.Clone())
	}
	return records, nil
}

// knownCells merges persisted cells with cells that only have unflushed
// appends. Callers must hold the store lock.
func (w *World) knownCells(ctx context.Context) ([]types.CellKey, error) {
	stored, err := w.store.StoredCells(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[types.CellKey]struct{}, len(stored))
	cells := make([]types.CellKey, 0, len(stored))
	for _, cell := range stored {
		seen[cell] = struct{}{}
		cells = append(cells, cell)
	}
	for _, cell := range w.store.DirtyCells() {
		if _, ok := seen[cell]; !ok {
			cells = append(cells, cell)
		}
	}
	return cells, nil
}

func (w *World) ResolveSurfaceSpec(id types.SurfaceSpecID) (spec.Surface, spec.Source) {
	return w.specs.ResolveSurface(id)
}

func (w *World) ResolveMediumSpec(id types.MediumSpecID) (spec.Medium, spec.Source) {
	return w.specs.ResolveMedium(id)
}

func (w *World) BiomeSpec(id types.BiomeSpecID) (spec.Biome, bool) {
	return w.specs.Biome(id)
}

func (w *World) SolarState() solar.State {
	return w.solarSystem.State()
}

func (w *World) SkyContext() frame.SkyContext {
	return w.frames.BuildSkyContext()
}

// Specs returns the world's spec registry.
func (w *World) Specs() *spec.Registry {
	return w.specs
}

// Packs returns the loader used to install spec packs into the registry.
func (w *World) Packs() *specpack.Loader {
	return w.packs
}

// Clock returns the simulation clock. Mutations belong on the world
// goroutine.
func (w *World) Clock() *clock.Clock {
	return w.clock
}

// Solar returns the solar system model.
func (w *World) Solar() *solar.System {
	return w.solarSystem
}

// Frames returns the frame service anchored to this world's active body.
func (w *World) Frames() *frame.Service {
	return w.frames
}

// Surfaces returns the surface contact query service.
func (w *World) Surfaces() *surface.Service {
	return w.surfaces
}

// Environments returns the medium and atmosphere query service.
func (w *World) Environments() *environment.Service {
	return w.environments
}

// Biomes returns the biome query service.
func (w *World) Biomes() *biome.Service {
	return w.biomes
}

// Sky returns the star catalog.
func (w *World) Sky() *sky.Catalog {
	return w.skyCatalog
}

// Settings returns the player settings store.
func (w *World) Settings() *settings.Store {
	return w.settings
}

// Scenes returns the scene registry.
func (w *World) Scenes() *scene.Registry {
	return w.scenes
}

func (w *World) RegisteredSurfaceSpecs() []string {
	ids := w.specs.SurfaceIDs()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}

func (w *World) RegisteredMediumSpecs() []string {
	ids := w.specs.MediumIDs()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}

func (w *World) RegisteredBiomeSpecs() []string {
	ids := w.specs.BiomeIDs()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}

func (w *World) ActiveServices() []string {
	return []string{"biome", "clock", "environment", "frame", "scene", "settings", "sky", "solar", "surface"}
}
