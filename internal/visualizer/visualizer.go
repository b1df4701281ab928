package visualizer

import (
	"fmt"
	"strings"

	"sudoku_share_go/internal/types"
)

// Visualizer renders display grids as box-drawing ASCII art. It draws
// thick borders on box boundaries using the puzzle's real box shape, so
// 6x6 grids get 3-wide 2-high boxes rather than a square approximation.
type Visualizer struct {
	puzzle *types.Puzzle
}

func NewVisualizer(p *types.Puzzle) *Visualizer {
	return &Visualizer{puzzle: p}
}

// Render draws grid, which must be a display grid of the visualizer's
// puzzle (its givens, or the output of a reveal).
func (v *Visualizer) Render(grid [][]int) string {
	size := v.puzzle.Size
	cellWidth := 1
	if !v.puzzle.Letters && size > 9 {
		cellWidth = len(fmt.Sprint(size))
	}

	var b strings.Builder
	v.writeHorizontalBorder(&b, size, cellWidth)

	for i := 0; i < size; i++ {
		b.WriteString("│ ")
		for j := 0; j < size; j++ {
			label := types.CellLabel(grid[i][j], v.puzzle.Letters)
			if label == "" {
				label = "."
			}
			fmt.Fprintf(&b, "%-*s ", cellWidth, label)

			if (j+1)%v.puzzle.BoxWidth == 0 && j < size-1 {
				b.WriteString("│ ")
			}
		}
		b.WriteString("│\n")

		if (i+1)%v.puzzle.BoxHeight == 0 && i < size-1 {
			v.writeHorizontalBorder(&b, size, cellWidth)
		}
	}

	v.writeHorizontalBorder(&b, size, cellWidth)
	return b.String()
}

func (v *Visualizer) writeHorizontalBorder(b *strings.Builder, size, cellWidth int) {
	b.WriteString("├")
	for i := 0; i < size; i++ {
		b.WriteString(strings.Repeat("─", cellWidth+1))
		if (i+1)%v.puzzle.BoxWidth == 0 && i < size-1 {
			b.WriteString("┼")
		}
	}
	b.WriteString("┤\n")
}
