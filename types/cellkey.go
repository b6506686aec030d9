package types

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"
)

// DefaultCellSize is the world-space edge length of an LOD 0 cell in
// centimeters (64 meters).
const DefaultCellSize = 6400.0

// CellKey identifies a spatial partition cell of the world. Cells tile the
// XY plane; LOD selects the tiling resolution, with each LOD level doubling
// the cell edge length. CellKey is comparable and is used directly as the
// map key for all delta bookkeeping.
type CellKey struct {
	X   int32 `json:"x"`
	Y   int32 `json:"y"`
	LOD int32 `json:"lod"`
}

// CellKeyAt returns the cell containing the given world-space location (in
// centimeters) at LOD 0. A non-positive cellSize falls back to
// DefaultCellSize.
func CellKeyAt(location Vec3, cellSize float64) CellKey {
	return CellKeyAtLOD(location, cellSize, 0)
}

// CellKeyAtLOD returns the cell containing the given world-space location at
// the requested LOD level.
func CellKeyAtLOD(location Vec3, cellSize float64, lod int32) CellKey {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	size := cellSize * float64(int64(1)<<uint(lod))
	return CellKey{
		X:   int32(math.Floor(location.X / size)),
		Y:   int32(math.Floor(location.Y / size)),
		LOD: lod,
	}
}

// Bounds returns the world-space bounding box covered by this cell. The Z
// extent is unbounded; cells partition the XY plane only.
func (c CellKey) Bounds(cellSize float64) (min Vec3, max Vec3) {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	size := cellSize * float64(int64(1)<<uint(c.LOD))
	min = Vec3{X: float64(c.X) * size, Y: float64(c.Y) * size, Z: -math.MaxFloat32}
	max = Vec3{X: float64(c.X+1) * size, Y: float64(c.Y+1) * size, Z: math.MaxFloat32}
	return min, max
}

// String renders the key in the canonical "(x,y,LOD l)" form used for file
// system paths and storage keys.
func (c CellKey) String() string {
	return fmt.Sprintf("(%d,%d,LOD%d)", c.X, c.Y, c.LOD)
}

// ParseCellKey parses the canonical form produced by String.
func ParseCellKey(s string) (CellKey, error) {
	var c CellKey
	n, err := fmt.Sscanf(s, "(%d,%d,LOD%d)", &c.X, &c.Y, &c.LOD)
	if err != nil || n != 3 {
		return CellKey{}, eris.Errorf("malformed cell key %q", s)
	}
	return c, nil
}
