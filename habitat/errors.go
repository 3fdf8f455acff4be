package habitat

import (
	"errors"
	"fmt"
)

// ErrOrganismNotPresent is returned when removing an organism that the cell
// does not hold.
var ErrOrganismNotPresent = errors.New("organism not present in cell")

// UnknownTerrainCodeError reports a map character outside the known codes.
type UnknownTerrainCodeError struct {
	Code rune
}

func (e *UnknownTerrainCodeError) Error() string {
	return fmt.Sprintf("unknown terrain code %q", e.Code)
}

// UninhabitableTerrainError reports an attempt to place organisms on ocean
// or mountain.
type UninhabitableTerrainError struct {
	Terrain Terrain
}

func (e *UninhabitableTerrainError) Error() string {
	return fmt.Sprintf("cannot place organisms on %s", e.Terrain)
}
