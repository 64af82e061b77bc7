package state

import (
	"fmt"
	"github.com/janpfeifer/hexants/internal/hexgrid"
)

// ItemType currently limited to leaves and sticks, plus a NoItem, the null value.
type ItemType uint8

const (
	NoItem ItemType = iota
	Leaf
	Stick
	LastItem
)

// NumItemTypes doesn't include the NoItem type.
const NumItemTypes = int(LastItem) - 1

var (
	ItemLetters  = [LastItem]string{"-", "L", "S"}
	LetterToItem = map[string]ItemType{"L": Leaf, "S": Stick}
	ItemNames    = [LastItem]string{"None", "Leaf", "Stick"}

	// ItemTypes enumerates all the item types, skipping the "NoItem".
	ItemTypes = [NumItemTypes]ItemType{Leaf, Stick}
)

// String returns the item type name.
func (t ItemType) String() string {
	if t >= LastItem {
		return fmt.Sprintf("ItemType(%d)", uint8(t))
	}
	return ItemNames[t]
}

// IsValid returns whether t is one of ItemTypes: NoItem and values >= LastItem are not.
func (t ItemType) IsValid() bool {
	return t > NoItem && t < LastItem
}

// Item lying on the board or carried by an ant.
//
// FreezeTimeLeft is the number of visits by empty-handed ants the item still
// resists before it can be picked up. It is never negative.
type Item struct {
	Pos            hexgrid.Pos
	FreezeTimeLeft int
	Type           ItemType
}

// NewItem creates an item at (x, y). Position is not wrapped: Board.AddItem does that.
func NewItem(x, y, freezeTimeLeft int, itemType ItemType) Item {
	return Item{Pos: hexgrid.Pos{X: x, Y: y}, FreezeTimeLeft: freezeTimeLeft, Type: itemType}
}

// SameCell returns whether the item lies at pos.
func (it Item) SameCell(pos hexgrid.Pos) bool {
	return it.Pos == pos
}

// String returns a text representation of the item.
func (it Item) String() string {
	return fmt.Sprintf("%s@%s(freeze=%d)", it.Type, it.Pos, it.FreezeTimeLeft)
}
