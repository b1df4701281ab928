// Package reveal projects a puzzle into a display grid: givens are always
// shown, and a reveal state chooses which solution cells are disclosed on
// top of them. The projection is pure; the stored puzzle is never touched.
package reveal

import (
	"errors"
	"fmt"

	"sudoku_share_go/internal/types"
)

var (
	// ErrInvalidCoordinate reports a cell reveal outside the grid.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrInvalidBoxIndex reports a box reveal outside the grid.
	ErrInvalidBoxIndex = errors.New("invalid box index")
)

// Mode selects how much of the solution a reveal discloses.
type Mode int

const (
	ModeNone Mode = iota
	ModeCell
	ModeBox
	ModeFull
)

// State is a request-scoped reveal selection. Coordinates and box indexes
// are 0-based.
type State struct {
	Mode Mode
	Row  int
	Col  int
	Box  int
}

// None reveals nothing beyond the givens.
func None() State { return State{Mode: ModeNone} }

// Cell reveals the single cell at (row, col).
func Cell(row, col int) State { return State{Mode: ModeCell, Row: row, Col: col} }

// Box reveals every cell of box k, numbered row-major across the grid.
func Box(k int) State { return State{Mode: ModeBox, Box: k} }

// Full reveals the entire solution.
func Full() State { return State{Mode: ModeFull} }

// Apply builds the display grid for p under s: each cell is the given
// value, the solution value if revealed, or 0. Revealing a cell that is
// already a given is a no-op (the given stays displayed).
func (s State) Apply(p *types.Puzzle) ([][]int, error) {
	grid := make([][]int, p.Size)
	for i := range grid {
		grid[i] = make([]int, p.Size)
		copy(grid[i], p.Givens[i])
	}

	switch s.Mode {
	case ModeNone:

	case ModeCell:
		if s.Row < 0 || s.Row >= p.Size || s.Col < 0 || s.Col >= p.Size {
			return nil, fmt.Errorf("%w: (%d,%d) outside %dx%d grid",
				ErrInvalidCoordinate, s.Row, s.Col, p.Size, p.Size)
		}
		grid[s.Row][s.Col] = p.Solution[s.Row][s.Col]

	case ModeBox:
		if s.Box < 0 || s.Box >= p.BoxCount() {
			return nil, fmt.Errorf("%w: %d, grid has boxes 0..%d",
				ErrInvalidBoxIndex, s.Box, p.BoxCount()-1)
		}
		for _, idx := range p.BoxCells(s.Box) {
			r, c := idx/p.Size, idx%p.Size
			grid[r][c] = p.Solution[r][c]
		}

	case ModeFull:
		for r := 0; r < p.Size; r++ {
			copy(grid[r], p.Solution[r])
		}

	default:
		return nil, fmt.Errorf("unknown reveal mode %d", s.Mode)
	}

	return grid, nil
}
