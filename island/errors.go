package island

import (
	"fmt"

	"github.com/pthm-cable/island/habitat"
)

// MalformedGridError reports a geography that is empty or not rectangular.
type MalformedGridError struct {
	Row  int // offending row, -1 when the geography is empty
	Len  int
	Want int
}

func (e *MalformedGridError) Error() string {
	if e.Row < 0 {
		return "malformed geography: no rows"
	}
	return fmt.Sprintf("malformed geography: row %d has %d cells, want %d", e.Row, e.Len, e.Want)
}

// OpenBorderError reports a border cell that is not ocean.
type OpenBorderError struct {
	Row, Col int
	Terrain  habitat.Terrain
}

func (e *OpenBorderError) Error() string {
	return fmt.Sprintf("border cell (%d, %d) is %s, want Ocean", e.Row, e.Col, e.Terrain)
}

// OutOfBoundsError reports a location outside the grid.
type OutOfBoundsError struct {
	Row, Col   int
	Rows, Cols int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("location (%d, %d) outside %dx%d island", e.Row, e.Col, e.Rows, e.Cols)
}
