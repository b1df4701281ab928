package types

import (
	"errors"
	"fmt"
)

// ErrInvalidPuzzleShape reports givens/solution data that does not fit the
// declared grid geometry, or givens that contradict the solution.
var ErrInvalidPuzzleShape = errors.New("invalid puzzle shape")

// Puzzle is an immutable Sudoku puzzle: the givens shown to the solver and
// the full solution, plus the box geometry derived from the grid size.
// Cell value 0 means blank. Construct with NewPuzzle; treat fields as
// read-only afterwards (corrections mean building a new Puzzle).
type Puzzle struct {
	ID         string  `json:"id"`
	Size       int     `json:"size"`
	BoxWidth   int     `json:"boxWidth"`
	BoxHeight  int     `json:"boxHeight"`
	Givens     [][]int `json:"grid"`
	Solution   [][]int `json:"solution"`
	Difficulty string  `json:"difficulty,omitempty"`
	Letters    bool    `json:"letters,omitempty"`
}

// BoxDimensions returns the box width and height for a supported grid
// size. 6x6 grids use the standard 3-wide, 2-high boxes.
func BoxDimensions(size int) (width, height int, err error) {
	switch size {
	case 4:
		return 2, 2, nil
	case 6:
		return 3, 2, nil
	case 9:
		return 3, 3, nil
	default:
		return 0, 0, fmt.Errorf("%w: unsupported size %d", ErrInvalidPuzzleShape, size)
	}
}

// NewPuzzle validates the raw grids and builds a Puzzle. The givens and
// solution must both be size rows of size cells, every non-blank given
// must equal the solution at the same position, and the solution must be
// a valid completed grid for the derived box geometry.
func NewPuzzle(id string, size int, givens, solution [][]int, difficulty string, letters bool) (*Puzzle, error) {
	bw, bh, err := BoxDimensions(size)
	if err != nil {
		return nil, err
	}

	if err := checkShape(givens, size, "givens"); err != nil {
		return nil, err
	}
	if err := checkShape(solution, size, "solution"); err != nil {
		return nil, err
	}

	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			v := solution[r][c]
			if v < 1 || v > size {
				return nil, fmt.Errorf("%w: solution cell (%d,%d) has value %d, want 1..%d",
					ErrInvalidPuzzleShape, r, c, v, size)
			}
			g := givens[r][c]
			if g < 0 || g > size {
				return nil, fmt.Errorf("%w: given cell (%d,%d) has value %d, want 0..%d",
					ErrInvalidPuzzleShape, r, c, g, size)
			}
			if g != 0 && g != v {
				return nil, fmt.Errorf("%w: given %d at (%d,%d) conflicts with solution %d",
					ErrInvalidPuzzleShape, g, r, c, v)
			}
		}
	}

	p := &Puzzle{
		ID:         id,
		Size:       size,
		BoxWidth:   bw,
		BoxHeight:  bh,
		Givens:     copyGrid(givens),
		Solution:   copyGrid(solution),
		Difficulty: difficulty,
		Letters:    letters,
	}

	for i := 0; i < size; i++ {
		if !isCompleteSet(p.Row(i), size) {
			return nil, fmt.Errorf("%w: solution row %d is not a permutation of 1..%d",
				ErrInvalidPuzzleShape, i, size)
		}
		if !isCompleteSet(p.Col(i), size) {
			return nil, fmt.Errorf("%w: solution column %d is not a permutation of 1..%d",
				ErrInvalidPuzzleShape, i, size)
		}
	}
	for k := 0; k < p.BoxCount(); k++ {
		if !isCompleteSet(p.Box(k), size) {
			return nil, fmt.Errorf("%w: solution box %d is not a permutation of 1..%d",
				ErrInvalidPuzzleShape, k, size)
		}
	}

	return p, nil
}

func checkShape(grid [][]int, size int, what string) error {
	if len(grid) != size {
		return fmt.Errorf("%w: %s has %d rows, want %d", ErrInvalidPuzzleShape, what, len(grid), size)
	}
	for i, row := range grid {
		if len(row) != size {
			return fmt.Errorf("%w: %s row %d has %d cells, want %d",
				ErrInvalidPuzzleShape, what, i, len(row), size)
		}
	}
	return nil
}

// BoxCount returns the number of boxes in the grid.
func (p *Puzzle) BoxCount() int {
	return (p.Size / p.BoxWidth) * (p.Size / p.BoxHeight)
}

// Row returns a copy of solution row i.
func (p *Puzzle) Row(i int) []int {
	out := make([]int, p.Size)
	copy(out, p.Solution[i])
	return out
}

// Col returns a copy of solution column j.
func (p *Puzzle) Col(j int) []int {
	out := make([]int, p.Size)
	for i := 0; i < p.Size; i++ {
		out[i] = p.Solution[i][j]
	}
	return out
}

// Box returns a copy of solution box k, row-major within the box. Boxes
// are numbered row-major across the grid.
func (p *Puzzle) Box(k int) []int {
	out := make([]int, 0, p.Size)
	for _, idx := range p.BoxCells(k) {
		out = append(out, p.Solution[idx/p.Size][idx%p.Size])
	}
	return out
}

// BoxCells returns the flat cell indexes (row*Size+col) of box k,
// row-major within the box.
func (p *Puzzle) BoxCells(k int) []int {
	boxesPerRow := p.Size / p.BoxWidth
	r0 := (k / boxesPerRow) * p.BoxHeight
	c0 := (k % boxesPerRow) * p.BoxWidth

	cells := make([]int, 0, p.Size)
	for i := 0; i < p.BoxHeight; i++ {
		for j := 0; j < p.BoxWidth; j++ {
			cells = append(cells, (r0+i)*p.Size+(c0+j))
		}
	}
	return cells
}

// FlatGivens returns the givens as a single row-major sequence of Size²
// cells, 0 for blank.
func (p *Puzzle) FlatGivens() []int {
	return flatten(p.Givens, p.Size)
}

// FlatSolution returns the solution as a single row-major sequence of
// Size² cells.
func (p *Puzzle) FlatSolution() []int {
	return flatten(p.Solution, p.Size)
}

func flatten(grid [][]int, size int) []int {
	out := make([]int, 0, size*size)
	for _, row := range grid {
		out = append(out, row...)
	}
	return out
}

func copyGrid(grid [][]int) [][]int {
	out := make([][]int, len(grid))
	for i, row := range grid {
		out[i] = make([]int, len(row))
		copy(out[i], row)
	}
	return out
}

// isCompleteSet reports whether nums contains each of 1..size exactly
// once.
func isCompleteSet(nums []int, size int) bool {
	if len(nums) != size {
		return false
	}
	seen := make(map[int]bool, size)
	for _, num := range nums {
		if num < 1 || num > size || seen[num] {
			return false
		}
		seen[num] = true
	}
	return true
}

// CellLabel formats a cell value for display: digits normally, letters
// (A=1) for letter variants, empty string for blank.
func CellLabel(val int, letters bool) string {
	if val == 0 {
		return ""
	}
	if letters {
		return string(rune('A' + val - 1))
	}
	return fmt.Sprintf("%d", val)
}

// ShortID returns the user-facing prefix of a puzzle id: the part before
// the first hyphen (the full id for ids without hyphens).
func ShortID(id string) string {
	for i := 0; i < len(id); i++ {
		if id[i] == '-' {
			return id[:i]
		}
	}
	return id
}
