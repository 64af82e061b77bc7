// Package state holds the simulation state: items, ants and the Board that owns them
// and implements the rules of each tick.
package state

import (
	"github.com/janpfeifer/hexants/internal/generics"
	"github.com/janpfeifer/hexants/internal/hexgrid"
	"github.com/pkg/errors"
	"iter"
	"k8s.io/klog/v2"
	"math/rand/v2"
	"slices"
)

const (
	// StepsPerTick is the number of single-hex moves each ant attempts per tick.
	StepsPerTick = 5

	// MaxFreezeExponent caps the exponent used for the freeze time of dropped items,
	// so 2^count never overflows. Only reachable when many items pile on the same cell.
	MaxFreezeExponent = 30
)

// Board owns all the items and ants of the simulation, and implements the two phases
// of each tick: Interact (pick up / drop) and Move.
//
// Once the simulation starts, only the Board mutates items and ants. Readers should
// use Items, Ants or the iterators, which never expose internal storage for writing.
type Board struct {
	grid  hexgrid.Grid
	items []Item
	ants  []Ant

	// TickNumber is the number of ticks executed so far.
	TickNumber int
}

// NewBoard creates an empty board with the given dimensions, which must be positive.
func NewBoard(width, height int) (*Board, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid board dimensions %dx%d, both must be > 0", width, height)
	}
	return &Board{grid: hexgrid.Grid{Width: width, Height: height}}, nil
}

// Clone makes a deep copy of the board.
func (b *Board) Clone() *Board {
	newB := &Board{}
	*newB = *b
	newB.items = slices.Clone(b.items)
	newB.ants = slices.Clone(b.ants)
	return newB
}

// Width of the board.
func (b *Board) Width() int { return b.grid.Width }

// Height of the board.
func (b *Board) Height() int { return b.grid.Height }

// Grid returns the board's geometry.
func (b *Board) Grid() hexgrid.Grid { return b.grid }

// AddItem places item on the board, wrapping its position. Meant to be used only to populate
// the board before the first tick.
//
// It fails if the item type is not one of ItemTypes.
func (b *Board) AddItem(item Item) error {
	if !item.Type.IsValid() {
		return errors.Errorf("can't add item %s: invalid item type", item)
	}
	item.Pos = b.grid.Wrap(item.Pos)
	item.FreezeTimeLeft = max(item.FreezeTimeLeft, 0)
	b.items = append(b.items, item)
	return nil
}

// AddAnt places a new empty-handed ant on the board, wrapping its position. Meant to be used
// only to populate the board before the first tick.
func (b *Board) AddAnt(x, y int) {
	b.ants = append(b.ants, NewAnt(b.grid, hexgrid.Pos{X: x, Y: y}))
}

// AddAntCarrying places a new ant on the board already carrying item. Like AddAnt, meant to be
// used only before the first tick.
//
// It fails if the item type is not one of ItemTypes.
func (b *Board) AddAntCarrying(x, y int, item Item) error {
	if !item.Type.IsValid() {
		return errors.Errorf("can't add ant at (%d, %d) carrying %s: invalid item type", x, y, item)
	}
	ant := NewAnt(b.grid, hexgrid.Pos{X: x, Y: y})
	item.Pos = ant.Pos
	item.FreezeTimeLeft = max(item.FreezeTimeLeft, 0)
	ant.take(item)
	b.ants = append(b.ants, ant)
	return nil
}

// NumItems returns the number of items lying on the board (not counting carried ones).
func (b *Board) NumItems() int { return len(b.items) }

// NumAnts returns the number of ants.
func (b *Board) NumAnts() int { return len(b.ants) }

// Items returns a copy of the items lying on the board, in insertion order.
func (b *Board) Items() []Item { return slices.Clone(b.items) }

// ItemsIter iterates over the items lying on the board, in insertion order.
func (b *Board) ItemsIter() iter.Seq[Item] { return slices.Values(b.items) }

// Ants returns a copy of the ants, in insertion order.
func (b *Board) Ants() []Ant { return slices.Clone(b.ants) }

// AntsIter iterates over the ants, in insertion order.
func (b *Board) AntsIter() iter.Seq[Ant] { return slices.Values(b.ants) }

// ItemsAt returns the items lying at pos, in insertion order.
func (b *Board) ItemsAt(pos hexgrid.Pos) (items []Item) {
	pos = b.grid.Wrap(pos)
	for _, item := range b.items {
		if item.SameCell(pos) {
			items = append(items, item)
		}
	}
	return
}

// HasItem returns whether there is at least one item lying at pos.
func (b *Board) HasItem(pos hexgrid.Pos) bool {
	return b.firstItemAt(b.grid.Wrap(pos)) >= 0
}

// CountItems returns the number of items of the given type lying at pos.
func (b *Board) CountItems(pos hexgrid.Pos, itemType ItemType) (count int) {
	pos = b.grid.Wrap(pos)
	for _, item := range b.items {
		if item.Type == itemType && item.SameCell(pos) {
			count++
		}
	}
	return
}

// firstItemAt returns the index of the earliest inserted item at pos, or -1 if there are none.
func (b *Board) firstItemAt(pos hexgrid.Pos) int {
	return slices.IndexFunc(b.items, func(item Item) bool { return item.SameCell(pos) })
}

// OccupiedPositions returns the set of positions with at least one item lying there.
func (b *Board) OccupiedPositions() generics.Set[hexgrid.Pos] {
	occupied := generics.MakeSet[hexgrid.Pos](len(b.items))
	for _, item := range b.items {
		occupied.Insert(item.Pos)
	}
	return occupied
}

// Tick executes one full Interact phase, followed by one full Move phase.
func (b *Board) Tick(rng *rand.Rand) {
	b.Interact()
	b.Move(rng)
	b.TickNumber++
}

// Interact executes the pick up / drop phase for every ant, in insertion order.
//
// Changes made by an ant are visible to the ants that follow it in the same phase.
//
// A carrying ant looks at its 6 neighbours in the canonical order: at the first one holding
// items of the same type as the one carried, it drops it on its own cell, with a freeze
// time of 2^count, where count is the number of same-type items in that neighbour.
//
// An empty-handed ant examines the earliest inserted item on its own cell: if it is not
// frozen it picks it up, otherwise it decrements its freeze time and puts it back at the end
// of the items list. So when items pile on a cell, successive visits examine them in turns.
func (b *Board) Interact() {
	for antIdx := range b.ants {
		ant := &b.ants[antIdx]
		if ant.IsCarrying() {
			b.tryDrop(ant)
		} else {
			b.tryPickUp(ant)
		}
	}
}

func (b *Board) tryDrop(ant *Ant) {
	carried, _ := ant.Carried()
	for _, pos := range ant.Neighbours() {
		count := b.CountItems(pos, carried.Type)
		if count == 0 {
			continue
		}
		item := ant.release()
		item.Pos = ant.Pos
		item.FreezeTimeLeft = 1 << min(count, MaxFreezeExponent)
		b.items = append(b.items, item)
		if klog.V(3).Enabled() {
			klog.Infof("tick %d: ant dropped %s (%d same-type items at %s)", b.TickNumber, item, count, pos)
		}
		return
	}
}

func (b *Board) tryPickUp(ant *Ant) {
	idx := b.firstItemAt(ant.Pos)
	if idx < 0 {
		return
	}
	item := b.items[idx]
	b.items = slices.Delete(b.items, idx, idx+1)
	if item.FreezeTimeLeft == 0 {
		ant.take(item)
		if klog.V(3).Enabled() {
			klog.Infof("tick %d: ant picked up %s", b.TickNumber, item)
		}
		return
	}
	item.FreezeTimeLeft--
	b.items = append(b.items, item)
}

// Move executes the movement phase: each ant, in insertion order, attempts StepsPerTick
// single-hex steps.
//
// For each step the 6 neighbours are shuffled using rng, and the ant moves to the first
// one it accepts: any neighbour if the ant is empty-handed, only cells without items if it
// is carrying one. If none is accepted the ant stays put for that step.
//
// Items are not changed during this phase, so the occupied cells are computed once.
func (b *Board) Move(rng *rand.Rand) {
	if len(b.ants) == 0 {
		return
	}
	occupied := b.OccupiedPositions()
	for antIdx := range b.ants {
		ant := &b.ants[antIdx]
		for range StepsPerTick {
			neighbours := ant.Neighbours()
			rng.Shuffle(len(neighbours), func(i, j int) {
				neighbours[i], neighbours[j] = neighbours[j], neighbours[i]
			})
			for _, pos := range neighbours {
				if ant.IsCarrying() && occupied.Has(pos) {
					continue
				}
				ant.Pos = pos
				break
			}
		}
	}
}

// CheckInvariants verifies that all ants and items are within the board, that no freeze
// time is negative and that no item was lost or duplicated, given the total number of
// items (lying plus carried) the board started with.
func (b *Board) CheckInvariants(totalItems int) error {
	carried := 0
	for antIdx, ant := range b.ants {
		if !b.grid.Contains(ant.Pos) {
			return errors.Errorf("ant #%d at %s is out of the %s board", antIdx, ant.Pos, b.grid)
		}
		if item, ok := ant.Carried(); ok {
			carried++
			if item.FreezeTimeLeft < 0 {
				return errors.Errorf("ant #%d carries %s with negative freeze time", antIdx, item)
			}
		}
	}
	for _, item := range b.items {
		if !b.grid.Contains(item.Pos) {
			return errors.Errorf("item %s is out of the %s board", item, b.grid)
		}
		if item.FreezeTimeLeft < 0 {
			return errors.Errorf("item %s has negative freeze time", item)
		}
	}
	if got := len(b.items) + carried; got != totalItems {
		return errors.Errorf("expected %d items in total, got %d (%d on the board, %d carried)",
			totalItems, got, len(b.items), carried)
	}
	return nil
}
