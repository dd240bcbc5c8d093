package acquisition

import (
	"math"
	"time"

	"github.com/AdventSphere/advent-sphere/internal/calendaritem"
	"github.com/AdventSphere/advent-sphere/internal/item"
	"github.com/AdventSphere/advent-sphere/internal/room"
)

// positionEpsilon bounds the component-wise distance under which two placed
// snowdome parts count as the same bundle. Bundle membership is inferred
// from shared coordinates, so the comparison must tolerate float noise.
const positionEpsilon = 0.001

// IsSnowdome reports whether the slot belongs to the four-part snowdome
// track.
func IsSnowdome(it *calendaritem.WithItem) bool {
	return it != nil && it.ItemType == item.TypeSnowdome
}

// IsSnowdomeFinalDay reports whether openDate falls on the room's last
// snowdome part date. Only the final part triggers the bundled placement
// flow; earlier parts go straight to the inventory.
func IsSnowdomeFinalDay(r *room.Room, openDate time.Time) bool {
	if r == nil || r.SnowDomePartsLastDate == nil {
		return false
	}
	return sameDay(openDate, *r.SnowDomePartsLastDate)
}

// SamePosition compares two placed positions within positionEpsilon.
func SamePosition(a, b []float64) bool {
	if len(a) != 3 || len(b) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if math.Abs(a[i]-b[i]) >= positionEpsilon {
			return false
		}
	}
	return true
}

// InventorySnowdomeParts returns every opened, unplaced snowdome part.
func InventorySnowdomeParts(items []calendaritem.WithItem) []calendaritem.WithItem {
	var parts []calendaritem.WithItem
	for i := range items {
		if IsSnowdome(&items[i]) && items[i].IsOpened && !items[i].Placed() {
			parts = append(parts, items[i])
		}
	}
	return parts
}

// PlacedSnowdomePartsAt returns every snowdome part currently standing at
// pos.
func PlacedSnowdomePartsAt(items []calendaritem.WithItem, pos []float64) []calendaritem.WithItem {
	var parts []calendaritem.WithItem
	for i := range items {
		if IsSnowdome(&items[i]) && items[i].IsOpened && SamePosition(items[i].Position, pos) {
			parts = append(parts, items[i])
		}
	}
	return parts
}

// ResolveBundle collects the parts that must move together with target.
// A placed target pulls in every part sharing its position (a reposition);
// an unplaced one pulls in the whole inventory plus itself (a fresh
// placement). A nil target resolves to the inventory parts alone.
func ResolveBundle(items []calendaritem.WithItem, target *calendaritem.WithItem) []calendaritem.WithItem {
	var parts []calendaritem.WithItem
	switch {
	case target == nil:
		parts = InventorySnowdomeParts(items)
	case target.Placed():
		parts = PlacedSnowdomePartsAt(items, target.Position)
	default:
		parts = append(InventorySnowdomeParts(items), *target)
	}
	return dedupeByID(parts)
}

func dedupeByID(parts []calendaritem.WithItem) []calendaritem.WithItem {
	seen := make(map[string]bool, len(parts))
	out := parts[:0]
	for _, p := range parts {
		id := p.ID.String()
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, p)
	}
	return out
}
