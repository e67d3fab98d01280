package grid

import (
	"math"
	"slices"
)

// slotKey groups layouts that compete for the same visual space: same
// horizontal position and same coarse vertical bucket (the cell row).
type slotKey struct {
	x   int
	row int
}

// Optimize redistributes vertical space within each slot so members
// never overlap, regardless of their original lane values.
//
// For slots with more than one member, every member's height becomes an
// equal share of the cell's inner height, floored at MinEventHeight,
// and y offsets are reassigned sequentially. When the floor engages,
// members may extend past the cell bottom; non-overlap wins over
// containment. Single-member slots pass through untouched.
//
// Optimize is pure: it never consults the interval index, does not
// mutate its input, and identical input always yields identical output.
func Optimize(layouts []Layout, g Geometry) []Layout {
	g.Normalize()

	out := slices.Clone(layouts)

	slots := make(map[slotKey][]int)
	for i, l := range out {
		slots[slotOf(l, g)] = append(slots[slotOf(l, g)], i)
	}

	for key, members := range slots {
		if len(members) < 2 {
			continue
		}

		// Deterministic order inside the slot: original y, then id.
		slices.SortFunc(members, func(a, b int) int {
			if out[a].Y != out[b].Y {
				if out[a].Y < out[b].Y {
					return -1
				}
				return 1
			}
			if out[a].EventID < out[b].EventID {
				return -1
			}
			if out[a].EventID > out[b].EventID {
				return 1
			}
			return 0
		})

		available := g.CellHeight - 2*g.Padding
		share := available / float64(len(members))
		height := math.Max(share, g.MinEventHeight)
		top := float64(key.row)*g.CellHeight + g.Padding

		// y accumulates member by member: each member's Y+Height is the
		// very float the next member's Y was assigned from, so shared
		// edges compare exactly equal and touching never reads as overlap.
		y := top
		for _, idx := range members {
			out[idx].Y = y
			out[idx].Height = height
			y += height
		}
	}

	return out
}

func slotOf(l Layout, g Geometry) slotKey {
	return slotKey{
		x:   int(math.Round(l.X)),
		row: int(l.Y / g.CellHeight),
	}
}
