package delta

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"pkg.world.dev/terra/types"
)

// backend is the persistence half of a CellStore. Implementations only move
// whole cell records; all bookkeeping lives in CellStore.
type backend interface {
	initialize(namespace types.Namespace) error
	// load fetches a cell's persisted record. ok is false when the cell has
	// never been flushed.
	load(ctx context.Context, cell types.CellKey) (rec CellRecord, ok bool, err error)
	persist(ctx context.Context, records map[types.CellKey]CellRecord) error
	storedCells(ctx context.Context) ([]types.CellKey, error)
	close() error
}

var _ Store = &CellStore{}

// CellStore is the Store implementation. It buffers appends per cell,
// lazily merges persisted history on first touch, and flushes dirty cells
// through its backend on a background goroutine.
type CellStore struct {
	back        backend
	buf         *buffer
	writes      sync.WaitGroup
	namespace   types.Namespace
	initialized bool
}

func newCellStore(back backend) *CellStore {
	return &CellStore{
		back: back,
		buf:  newBuffer(),
	}
}

// Initialize binds the store to one world save. Any deltas appended before
// Initialize are dropped.
func (s *CellStore) Initialize(namespace types.Namespace) error {
	if err := namespace.Validate(); err != nil {
		return eris.Wrap(err, "failed to initialize delta store")
	}
	if err := s.back.initialize(namespace); err != nil {
		return err
	}
	s.namespace = namespace
	s.buf.reset()
	s.initialized = true
	log.Info().Str("namespace", namespace.String()).Msg("initialized delta store")
	return nil
}

// IsInitialized reports whether Initialize has succeeded.
func (s *CellStore) IsInitialized() bool {
	return s.initialized
}

// Namespace returns the world save this store is bound to.
func (s *CellStore) Namespace() types.Namespace {
	return s.namespace
}

// ensureLoaded merges a cell's persisted record into the buffer the first
// time the cell is touched. Uninitialized stores skip the backend entirely.
func (s *CellStore) ensureLoaded(ctx context.Context, cell types.CellKey) error {
	if !s.initialized || s.buf.isLoaded(cell) {
		return nil
	}
	rec, ok, err := s.back.load(ctx, cell)
	if err != nil {
		return err
	}
	if ok {
		s.buf.merge(cell, rec)
	}
	s.buf.markLoaded(cell)
	return nil
}

func (s *CellStore) AppendSurface(ctx context.Context, d types.SurfaceTileDelta) error {
	if err := s.ensureLoaded(ctx, d.Cell); err != nil {
		return err
	}
	s.buf.surface[d.Cell] = append(s.buf.surface[d.Cell], d)
	s.buf.markDirty(d.Cell)
	return nil
}

func (s *CellStore) AppendFracture(ctx context.Context, d types.FractureDelta) error {
	if err := s.ensureLoaded(ctx, d.Cell); err != nil {
		return err
	}
	s.buf.fracture[d.Cell] = append(s.buf.fracture[d.Cell], d)
	s.buf.markDirty(d.Cell)
	return nil
}

func (s *CellStore) AppendTransform(ctx context.Context, d types.TransformDelta) error {
	if err := s.ensureLoaded(ctx, d.Cell); err != nil {
		return err
	}
	s.buf.transform[d.Cell] = append(s.buf.transform[d.Cell], d)
	s.buf.markDirty(d.Cell)
	return nil
}

func (s *CellStore) AppendSpawn(ctx context.Context, d types.SpawnDelta) error {
	if err := s.ensureLoaded(ctx, d.Cell); err != nil {
		return err
	}
	s.buf.spawn[d.Cell] = append(s.buf.spawn[d.Cell], d)
	s.buf.markDirty(d.Cell)
	return nil
}

func (s *CellStore) AppendRemove(ctx context.Context, d types.RemoveDelta) error {
	if err := s.ensureLoaded(ctx, d.Cell); err != nil {
		return err
	}
	s.buf.remove[d.Cell] = append(s.buf.remove[d.Cell], d)
	s.buf.markDirty(d.Cell)
	return nil
}

func (s *CellStore) AppendAssembly(ctx context.Context, d types.AssemblyDelta) error {
	if err := s.ensureLoaded(ctx, d.Cell); err != nil {
		return err
	}
	s.buf.assembly[d.Cell] = append(s.buf.assembly[d.Cell], d)
	s.buf.markDirty(d.Cell)
	return nil
}

func (s *CellStore) SurfaceDeltas(ctx context.Context, cell types.CellKey) ([]types.SurfaceTileDelta, error) {
	if err := s.ensureLoaded(ctx, cell); err != nil {
		return nil, err
	}
	return append([]types.SurfaceTileDelta(nil), s.buf.surface[cell]...), nil
}

func (s *CellStore) FractureDeltas(ctx context.Context, cell types.CellKey) ([]types.FractureDelta, error) {
	if err := s.ensureLoaded(ctx, cell); err != nil {
		return nil, err
	}
	return append([]types.FractureDelta(nil), s.buf.fracture[cell]...), nil
}

func (s *CellStore) TransformDeltas(ctx context.Context, cell types.CellKey) ([]types.TransformDelta, error) {
	if err := s.ensureLoaded(ctx, cell); err != nil {
		return nil, err
	}
	return append([]types.TransformDelta(nil), s.buf.transform[cell]...), nil
}

func (s *CellStore) SpawnDeltas(ctx context.Context, cell types.CellKey) ([]types.SpawnDelta, error) {
	if err := s.ensureLoaded(ctx, cell); err != nil {
		return nil, err
	}
	return append([]types.SpawnDelta(nil), s.buf.spawn[cell]...), nil
}

func (s *CellStore) RemoveDeltas(ctx context.Context, cell types.CellKey) ([]types.RemoveDelta, error) {
	if err := s.ensureLoaded(ctx, cell); err != nil {
		return nil, err
	}
	return append([]types.RemoveDelta(nil), s.buf.remove[cell]...), nil
}

func (s *CellStore) AssemblyDeltas(ctx context.Context, cell types.CellKey) ([]types.AssemblyDelta, error) {
	if err := s.ensureLoaded(ctx, cell); err != nil {
		return nil, err
	}
	return append([]types.AssemblyDelta(nil), s.buf.assembly[cell]...), nil
}

func (s *CellStore) CellRecord(ctx context.Context, cell types.CellKey) (CellRecord, error) {
	if err := s.ensureLoaded(ctx, cell); err != nil {
		return CellRecord{}, err
	}
	return s.buf.record(cell, time.Now().UTC()), nil
}

func (s *CellStore) StoredCells(ctx context.Context) ([]types.CellKey, error) {
	if !s.initialized {
		return nil, eris.Wrap(ErrNotInitialized, "cannot list stored cells")
	}
	return s.back.storedCells(ctx)
}

func (s *CellStore) ClearCell(_ context.Context, cell types.CellKey) error {
	s.buf.clearCell(cell)
	return nil
}

func (s *CellStore) DirtyCells() []types.CellKey {
	return s.buf.dirtyCells()
}

// Flush snapshots every dirty cell and hands the copies to a background
// writer. The writer runs detached from the caller's context so a finished
// tick cannot cancel its own persistence.
func (s *CellStore) Flush(_ context.Context) error {
	if !s.initialized || len(s.buf.dirty) == 0 {
		return nil
	}
	records := s.buf.snapshotDirty(time.Now().UTC())
	s.writes.Add(1)
	go func() {
		defer s.writes.Done()
		if err := s.back.persist(context.Background(), records); err != nil {
			log.Error().Err(err).Int("cells", len(records)).Msg("failed to persist delta records")
		}
	}()
	log.Debug().Int("cells", len(records)).Msg("flushing dirty delta cells")
	return nil
}

// Close waits for in-flight background writes to land, then releases the
// backend.
func (s *CellStore) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.writes.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "gave up waiting for delta writes")
	}
	return s.back.close()
}
