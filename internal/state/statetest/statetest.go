// Package statetest provides helper functions to create tests using the simulation state.
package statetest

import (
	. "github.com/janpfeifer/hexants/internal/state"
	"github.com/janpfeifer/must"
)

// AntOnBoard represents the position of an ant, and optionally the type of the item it carries.
type AntOnBoard struct {
	X, Y     int
	Carrying ItemType
}

// BuildBoard from a collection of items and ants. Ants carrying items get them with freeze time 0.
func BuildBoard(width, height int, items []Item, ants []AntOnBoard) (b *Board) {
	b = must.M1(NewBoard(width, height))
	for _, item := range items {
		must.M(b.AddItem(item))
	}
	for _, ant := range ants {
		if ant.Carrying == NoItem {
			b.AddAnt(ant.X, ant.Y)
		} else {
			must.M(b.AddAntCarrying(ant.X, ant.Y, NewItem(ant.X, ant.Y, 0, ant.Carrying)))
		}
	}
	return
}

// TotalItems returns the number of items lying on the board plus the ones carried by ants.
func TotalItems(b *Board) int {
	stats := b.Stats()
	return stats.BoardItems + stats.CarriedItems
}
