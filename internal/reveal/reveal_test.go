package reveal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sudoku_share_go/internal/types"
)

func testPuzzle(t *testing.T) *types.Puzzle {
	t.Helper()

	sol := make([][]int, 9)
	for r := 0; r < 9; r++ {
		sol[r] = make([]int, 9)
		for c := 0; c < 9; c++ {
			sol[r][c] = (r*3+r/3+c)%9 + 1
		}
	}
	givens := [][]int{
		{1, 0, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 8, 0, 0, 2, 3},
		{7, 0, 9, 0, 0, 3, 0, 0, 6},
		{0, 3, 0, 5, 0, 0, 8, 0, 0},
		{5, 0, 7, 0, 9, 0, 0, 3, 0},
		{0, 9, 0, 2, 0, 4, 0, 0, 7},
		{3, 0, 5, 0, 7, 0, 9, 0, 0},
		{0, 7, 0, 9, 0, 2, 0, 4, 0},
		{9, 0, 2, 0, 4, 0, 6, 0, 8},
	}

	p, err := types.NewPuzzle("324306f5-034d-4089-8723-56a8087fde14", 9, givens, sol, "easy9", false)
	require.NoError(t, err)
	return p
}

func TestApplyNone(t *testing.T) {
	p := testPuzzle(t)

	grid, err := None().Apply(p)
	require.NoError(t, err)
	assert.Equal(t, p.Givens, grid)
}

func TestApplySingleCell(t *testing.T) {
	p := testPuzzle(t)

	// (3,7) is not a given.
	require.Zero(t, p.Givens[3][7])

	grid, err := Cell(3, 7).Apply(p)
	require.NoError(t, err)

	for r := 0; r < 9; r++ {
		for c := 0; c < 9; c++ {
			if r == 3 && c == 7 {
				assert.Equal(t, p.Solution[3][7], grid[r][c])
			} else {
				assert.Equal(t, p.Givens[r][c], grid[r][c], "cell (%d,%d)", r, c)
			}
		}
	}
}

func TestApplyCellOnGivenIsNoOp(t *testing.T) {
	p := testPuzzle(t)

	grid, err := Cell(0, 0).Apply(p)
	require.NoError(t, err)
	assert.Equal(t, p.Givens, grid)
}

func TestApplyCellOutOfRange(t *testing.T) {
	p := testPuzzle(t)

	for _, s := range []State{Cell(-1, 0), Cell(0, -1), Cell(9, 0), Cell(0, 9)} {
		_, err := s.Apply(p)
		require.ErrorIs(t, err, ErrInvalidCoordinate)
	}
}

func TestApplyBox(t *testing.T) {
	p := testPuzzle(t)

	grid, err := Box(4).Apply(p)
	require.NoError(t, err)

	// Box 4 covers rows 3-5, cols 3-5; those cells now show the
	// solution, everything else stays givens-only.
	for r := 0; r < 9; r++ {
		for c := 0; c < 9; c++ {
			if r >= 3 && r <= 5 && c >= 3 && c <= 5 {
				assert.Equal(t, p.Solution[r][c], grid[r][c], "cell (%d,%d)", r, c)
			} else {
				assert.Equal(t, p.Givens[r][c], grid[r][c], "cell (%d,%d)", r, c)
			}
		}
	}
}

func TestApplyBoxOutOfRange(t *testing.T) {
	p := testPuzzle(t)

	for _, k := range []int{-1, 9, 100} {
		_, err := Box(k).Apply(p)
		require.ErrorIs(t, err, ErrInvalidBoxIndex, "box %d", k)
	}
}

func TestApplyFull(t *testing.T) {
	p := testPuzzle(t)

	grid, err := Full().Apply(p)
	require.NoError(t, err)
	assert.Equal(t, p.Solution, grid)
}

func TestApplyIsPure(t *testing.T) {
	p := testPuzzle(t)
	before := p.FlatGivens()

	first, err := Full().Apply(p)
	require.NoError(t, err)
	second, err := Full().Apply(p)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, before, p.FlatGivens(), "reveal must not mutate the puzzle")
}
