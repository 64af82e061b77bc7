package state

import (
	"fmt"
	"github.com/janpfeifer/hexants/internal/hexgrid"
	"strings"
)

// BoardStats summarizes the board, typically for display or for comparing runs.
type BoardStats struct {
	Tick         int `json:"tick"`
	Ants         int `json:"ants"`
	BoardItems   int `json:"board_items"`
	CarriedItems int `json:"carried_items"`

	// ItemsByType counts lying and carried items of each type, indexed by ItemType.
	ItemsByType [LastItem]int `json:"items_by_type"`

	// SameTypeAdjacency is the mean, over the items lying on the board, of the fraction of
	// their 6 neighbour cells holding at least one item of the same type. It goes up as
	// items get clustered by type.
	SameTypeAdjacency float32 `json:"same_type_adjacency"`
}

// Stats returns the current BoardStats.
func (b *Board) Stats() (s BoardStats) {
	s.Tick = b.TickNumber
	s.Ants = len(b.ants)
	s.BoardItems = len(b.items)
	for _, ant := range b.ants {
		if item, ok := ant.Carried(); ok {
			s.CarriedItems++
			s.ItemsByType[item.Type]++
		}
	}
	if len(b.items) == 0 {
		return
	}

	// Bit-mask of the item types present at each position.
	typesAt := make(map[hexgrid.Pos]uint8, len(b.items))
	for _, item := range b.items {
		s.ItemsByType[item.Type]++
		typesAt[item.Pos] |= 1 << item.Type
	}
	var total float32
	for _, item := range b.items {
		sameType := 0
		for pos := range b.grid.NeighboursIter(item.Pos) {
			if typesAt[pos]&(1<<item.Type) != 0 {
				sameType++
			}
		}
		total += float32(sameType) / hexgrid.NumNeighbors
	}
	s.SameTypeAdjacency = total / float32(len(b.items))
	return
}

// String returns a one-line text representation of the stats.
func (s BoardStats) String() string {
	parts := make([]string, 0, NumItemTypes)
	for _, itemType := range ItemTypes {
		parts = append(parts, fmt.Sprintf("%s=%d", ItemNames[itemType], s.ItemsByType[itemType]))
	}
	return fmt.Sprintf("tick=%d ants=%d items=%d (carried=%d, %s) same-type adjacency=%.3f",
		s.Tick, s.Ants, s.BoardItems+s.CarriedItems, s.CarriedItems,
		strings.Join(parts, ", "), s.SameTypeAdjacency)
}
