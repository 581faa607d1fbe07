// internal/grid/splitter.go
package grid

import (
	"sort"

	"github.com/arenahq/arenagrid/internal/models"
)

// defaultStartOffset substitutes for an unset alignment offset. Note this also
// fires when a rule configures offset 0 ("align to the top of the hour"); the
// stored value cannot distinguish the two, so zero is treated as unset.
const defaultStartOffset = 60

// SplitWindow fragments one working-hours window around occupied intervals and
// returns the remaining free sub-windows in ascending order. Each free
// segment's start is snapped to startOffset minutes past the hour; segments
// that collapse to zero length after snapping are dropped. Overlapping or
// touching occupied intervals are merged; parts outside the window are
// clipped away. Segments shorter than a rule's minimum duration are not
// filtered here.
func SplitWindow(window models.TimeSlot, occupied []models.TimeSlot, startOffset int) []models.TimeSlot {
	if startOffset == 0 {
		startOffset = defaultStartOffset
	}

	merged := mergeOccupied(window, occupied)

	// Boundary multiset: window edges plus both edges of every occupying
	// interval. Sorted, consecutive entries pair up as free-then-occupied, so
	// reading them two at a time yields exactly the free spans. Adjacent or
	// window-flush bookings produce equal boundary pairs that collapse below.
	boundaries := make([]int, 0, 2*len(merged)+2)
	boundaries = append(boundaries, window.TimeStart)
	for _, occ := range merged {
		boundaries = append(boundaries, occ.TimeStart, occ.TimeEnd)
	}
	boundaries = append(boundaries, window.TimeEnd)
	sort.Ints(boundaries)

	var free []models.TimeSlot
	for i := 0; i+1 < len(boundaries); i += 2 {
		start, end := boundaries[i], boundaries[i+1]

		shift := startOffset - start%60
		alignedStart := start + shift
		if shift == 60 {
			// Offset and minute-of-hour coincide on a full hour; the shift
			// cancels out.
			alignedStart -= 60
		}
		if alignedStart == end {
			continue
		}
		free = append(free, models.TimeSlot{TimeStart: alignedStart, TimeEnd: end})
	}
	return free
}

// mergeOccupied clips occupied intervals to the window and coalesces any that
// overlap. The boundary pairing above is only sound over disjoint intervals,
// and nothing upstream rules out conflicting bookings on one date.
func mergeOccupied(window models.TimeSlot, occupied []models.TimeSlot) []models.TimeSlot {
	clipped := make([]models.TimeSlot, 0, len(occupied))
	for _, occ := range occupied {
		if occ.TimeEnd <= window.TimeStart || occ.TimeStart >= window.TimeEnd {
			continue
		}
		clipped = append(clipped, models.TimeSlot{
			TimeStart: clampToWindow(occ.TimeStart, window),
			TimeEnd:   clampToWindow(occ.TimeEnd, window),
		})
	}
	if len(clipped) < 2 {
		return clipped
	}

	sort.Slice(clipped, func(i, j int) bool {
		return clipped[i].TimeStart < clipped[j].TimeStart
	})
	merged := clipped[:1]
	for _, occ := range clipped[1:] {
		last := &merged[len(merged)-1]
		if occ.TimeStart <= last.TimeEnd {
			if occ.TimeEnd > last.TimeEnd {
				last.TimeEnd = occ.TimeEnd
			}
			continue
		}
		merged = append(merged, occ)
	}
	return merged
}

func clampToWindow(minute int, window models.TimeSlot) int {
	if minute < window.TimeStart {
		return window.TimeStart
	}
	if minute > window.TimeEnd {
		return window.TimeEnd
	}
	return minute
}
