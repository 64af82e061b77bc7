package state

import (
	"fmt"
	"github.com/janpfeifer/hexants/internal/hexgrid"
)

// Ant walks the board, picking up and dropping items.
//
// It holds at most one item. Ant itself doesn't implement any of the rules: those
// are implemented by the Board, which owns all ants and items.
type Ant struct {
	Pos hexgrid.Pos

	grid     hexgrid.Grid
	carried  Item
	carrying bool
}

// NewAnt creates an empty-handed ant at pos, wrapped into the grid.
func NewAnt(grid hexgrid.Grid, pos hexgrid.Pos) Ant {
	return Ant{Pos: grid.Wrap(pos), grid: grid}
}

// Neighbours returns the 6 positions around the ant, in the canonical order.
func (a Ant) Neighbours() [hexgrid.NumNeighbors]hexgrid.Pos {
	return a.grid.Neighbours(a.Pos)
}

// IsCarrying returns whether the ant holds an item.
func (a Ant) IsCarrying() bool {
	return a.carrying
}

// Carried returns the item being carried, if any.
func (a Ant) Carried() (item Item, ok bool) {
	return a.carried, a.carrying
}

// take makes the ant carry item. The ant must be empty-handed.
func (a *Ant) take(item Item) {
	a.carried, a.carrying = item, true
}

// release returns the carried item, and leaves the ant empty-handed.
func (a *Ant) release() Item {
	item := a.carried
	a.carried, a.carrying = Item{}, false
	return item
}

// String returns a text representation of the ant.
func (a Ant) String() string {
	if a.carrying {
		return fmt.Sprintf("Ant@%s carrying %s", a.Pos, a.carried.Type)
	}
	return fmt.Sprintf("Ant@%s", a.Pos)
}
