// Package langton implements Langton's ant on a square toroidal grid: a single ant that
// flips the color of the cell it stands on, and then turns and moves depending on the new color.
package langton

import (
	"github.com/janpfeifer/hexants/internal/hexgrid"
	"github.com/pkg/errors"
)

// NumHeadings the ant can face.
const NumHeadings = 4

// headingSteps indexed by heading, in clockwise order.
var headingSteps = [NumHeadings]hexgrid.Pos{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 0, Y: -1}}

// Ant of Langton's automaton.
type Ant struct {
	Pos     hexgrid.Pos
	Heading int
}

// Board holds the cells (set or clear) and the ant.
type Board struct {
	grid  hexgrid.Grid
	cells []bool
	Ant   Ant

	// StepNumber is the number of steps executed so far.
	StepNumber int
}

// NewBoard creates a board with all cells clear and the ant at the center, with heading 0.
func NewBoard(width, height int) (*Board, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid board dimensions %dx%d, both must be > 0", width, height)
	}
	return &Board{
		grid:  hexgrid.Grid{Width: width, Height: height},
		cells: make([]bool, width*height),
		Ant:   Ant{Pos: hexgrid.Pos{X: width / 2, Y: height / 2}},
	}, nil
}

// Grid returns the board's dimensions.
func (b *Board) Grid() hexgrid.Grid { return b.grid }

// Get returns whether the cell at pos is set. pos is wrapped around the board.
func (b *Board) Get(pos hexgrid.Pos) bool {
	pos = b.grid.Wrap(pos)
	return b.cells[pos.Y*b.grid.Width+pos.X]
}

// Set the cell at pos to value. pos is wrapped around the board.
func (b *Board) Set(pos hexgrid.Pos, value bool) {
	pos = b.grid.Wrap(pos)
	b.cells[pos.Y*b.grid.Width+pos.X] = value
}

// CountSet returns the number of set cells.
func (b *Board) CountSet() (count int) {
	for _, cell := range b.cells {
		if cell {
			count++
		}
	}
	return
}

// Step flips the ant's cell. If it is now clear the ant moves forward and turns right,
// otherwise it moves backwards and turns left.
func (b *Board) Step() {
	ant := &b.Ant
	set := !b.Get(ant.Pos)
	b.Set(ant.Pos, set)
	var step hexgrid.Pos
	if !set {
		step = headingSteps[ant.Heading]
		ant.Heading = (ant.Heading + 1) % NumHeadings
	} else {
		step = headingSteps[(ant.Heading+2)%NumHeadings]
		ant.Heading = (ant.Heading + NumHeadings - 1) % NumHeadings
	}
	ant.Pos = b.grid.Wrap(hexgrid.Pos{X: ant.Pos.X + step.X, Y: ant.Pos.Y + step.Y})
	b.StepNumber++
}
