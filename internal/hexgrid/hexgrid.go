// Package hexgrid implements the geometry of a toroidal hexagonal grid in "odd-r"
// offset coordinates: rows are horizontal, and odd rows are shifted half a cell
// to the right.
//
// All functions are pure: they hold no state and never return a position outside
// of the grid, no matter how negative or large the input coordinates are.
package hexgrid

import (
	"fmt"
	"github.com/chewxy/math32"
	"iter"
)

// NumNeighbors of each position: the grid is hexagonal.
const NumNeighbors = 6

// Pos packages x, y position: x is the column and y is the row.
type Pos struct {
	X, Y int
}

// String returns a text representation of Pos.
func (pos Pos) String() string {
	return fmt.Sprintf("(%d, %d)", pos.X, pos.Y)
}

// Grid holds the dimensions of a toroidal grid. Both must be > 0.
type Grid struct {
	Width, Height int
}

// String returns a text representation of the grid dimensions.
func (g Grid) String() string {
	return fmt.Sprintf("%dx%d", g.Width, g.Height)
}

// Contains returns whether pos is within [0, Width) x [0, Height).
func (g Grid) Contains(pos Pos) bool {
	return pos.X >= 0 && pos.X < g.Width && pos.Y >= 0 && pos.Y < g.Height
}

// Mod returns a modulo n, always in the range [0, n), also for negative a.
// n must be > 0.
func Mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

// Wrap normalizes pos into the grid, wrapping around the edges.
func (g Grid) Wrap(pos Pos) Pos {
	return Pos{Mod(pos.X, g.Width), Mod(pos.Y, g.Height)}
}

// Deltas of the neighbours, indexed by row parity (0 for even rows, 1 for odd rows).
//
// Both lists go clockwise, starting from the upper-left neighbour: NW, NE, E, SE, SW, W.
var neighborRelPositions = [2][NumNeighbors]Pos{
	{{-1, -1}, {0, -1}, {1, 0}, {0, 1}, {-1, 1}, {-1, 0}},
	{{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 0}},
}

// Neighbours returns the 6 neighbour positions of pos, already wrapped into the grid.
//
// The order is fixed (NW, NE, E, SE, SW, W) and depends on the parity of the row.
// Users rely on it: e.g. the first qualifying neighbour wins when ants drop items.
//
// On tiny grids (e.g. 1x1 or 2x2) some of the neighbours will be repeated, and may
// include pos itself.
func (g Grid) Neighbours(pos Pos) (neighbours [NumNeighbors]Pos) {
	pos = g.Wrap(pos)
	deltas := &neighborRelPositions[pos.Y&1]
	for ii, delta := range deltas {
		neighbours[ii] = g.Wrap(Pos{pos.X + delta.X, pos.Y + delta.Y})
	}
	return
}

// NeighboursIter iterates over the same positions returned by Neighbours, in the same order.
func (g Grid) NeighboursIter(pos Pos) iter.Seq[Pos] {
	return func(yield func(Pos) bool) {
		for _, neighbour := range g.Neighbours(pos) {
			if !yield(neighbour) {
				return
			}
		}
	}
}

// Neighbours returns the 6 neighbours of (x, y) in a width x height toroidal grid.
// See Grid.Neighbours.
func Neighbours(x, y, width, height int) [NumNeighbors]Pos {
	return Grid{width, height}.Neighbours(Pos{x, y})
}

var sqrt3 = math32.Sqrt(3)

// PixelCenter returns the center, in pixels, of the hexagon at (x, y) for a "pointy-top"
// layout of hexagons with the given radius (center to corner).
//
// The hexagon at (0, 0) has its bounding box touching the origin.
// Only used for presentation: the simulation itself never looks at pixels.
func PixelCenter(x, y int, radius float32) (cx, cy float32) {
	hexWidth := sqrt3 * radius
	cx = hexWidth*(float32(x)+0.5*float32(y&1)) + hexWidth/2
	cy = 1.5*radius*float32(y) + radius
	return
}
