package delta

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"pkg.world.dev/terra/codec"
	"pkg.world.dev/terra/types"
)

const recordFileName = "deltas.json"

// NewFileStore returns a store that persists cell records under
// <dir>/<namespace>/<cell>/deltas.json. Records are written indented so
// save files stay diffable.
func NewFileStore(dir string) *CellStore {
	return newCellStore(&fileBackend{root: dir})
}

type fileBackend struct {
	root     string
	worldDir string
}

func (b *fileBackend) initialize(namespace types.Namespace) error {
	worldDir := filepath.Join(b.root, namespace.String())
	if err := os.MkdirAll(worldDir, 0o755); err != nil {
		return eris.Wrapf(err, "failed to create save directory %q", worldDir)
	}
	b.worldDir = worldDir
	return nil
}

func (b *fileBackend) load(_ context.Context, cell types.CellKey) (CellRecord, bool, error) {
	path := filepath.Join(b.worldDir, cell.String(), recordFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return CellRecord{}, false, nil
		}
		return CellRecord{}, false, eris.Wrapf(err, "failed to read delta record %q", path)
	}
	rec, err := codec.Decode[CellRecord](data)
	if err != nil {
		return CellRecord{}, false, eris.Wrapf(err, "failed to decode delta record %q", path)
	}
	return rec, true, nil
}

// persist writes each record independently so one bad cell cannot block the
// rest of the flush.
func (b *fileBackend) persist(_ context.Context, records map[types.CellKey]CellRecord) error {
	for cell, rec := range records {
		if err := b.writeRecord(cell, rec); err != nil {
			log.Error().Err(err).Str("cell", cell.String()).Msg("failed to persist delta record")
		}
	}
	return nil
}

func (b *fileBackend) writeRecord(cell types.CellKey, rec CellRecord) error {
	cellDir := filepath.Join(b.worldDir, cell.String())
	if err := os.MkdirAll(cellDir, 0o755); err != nil {
		return eris.Wrapf(err, "failed to create cell directory %q", cellDir)
	}
	data, err := codec.EncodeIndent(rec)
	if err != nil {
		return eris.Wrapf(err, "failed to encode delta record for cell %s", cell)
	}
	path := filepath.Join(cellDir, recordFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "failed to write delta record %q", path)
	}
	return nil
}

func (b *fileBackend) storedCells(_ context.Context) ([]types.CellKey, error) {
	entries, err := os.ReadDir(b.worldDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "failed to read save directory %q", b.worldDir)
	}
	var cells []types.CellKey
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		cell, err := types.ParseCellKey(entry.Name())
		if err != nil {
			continue
		}
		cells = append(cells, cell)
	}
	return cells, nil
}

func (b *fileBackend) close() error {
	return nil
}
