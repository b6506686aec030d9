package delta

import (
	"fmt"

	"pkg.world.dev/terra/types"
)

func storageRecordKey(namespace types.Namespace, cell types.CellKey) string {
	return fmt.Sprintf("DELTA:RECORD:%s:CELL-%s", namespace, cell)
}

func storageCellSetKey(namespace types.Namespace) string {
	return fmt.Sprintf("DELTA:CELLS:%s", namespace)
}
