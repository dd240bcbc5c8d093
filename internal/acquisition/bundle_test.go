package acquisition

import (
	"testing"
	"time"

	"github.com/AdventSphere/advent-sphere/internal/calendaritem"
	"github.com/AdventSphere/advent-sphere/internal/item"
)

func placedSlot(itemType string, pos []float64) calendaritem.WithItem {
	s := slot(time.Now(), itemType, true)
	s.Position = pos
	s.Rotation = []float64{0, 0, 0}
	return s
}

func TestSamePosition(t *testing.T) {
	base := []float64{1.0, 2.0, 3.0}

	tests := []struct {
		name  string
		other []float64
		want  bool
	}{
		{"identical", []float64{1.0, 2.0, 3.0}, true},
		{"within epsilon", []float64{1.0005, 1.9995, 3.0}, true},
		{"at epsilon", []float64{1.001, 2.0, 3.0}, false},
		{"one axis off", []float64{1.0, 2.0, 3.5}, false},
		{"wrong length", []float64{1.0, 2.0}, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SamePosition(base, tt.other); got != tt.want {
				t.Errorf("SamePosition(%v, %v) = %v, want %v", base, tt.other, got, tt.want)
			}
		})
	}
}

func TestIsSnowdomeFinalDay(t *testing.T) {
	last := time.Date(2025, 12, 20, 14, 0, 0, 0, time.UTC)
	r := testRoom(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC))
	r.SnowDomePartsLastDate = &last

	if !IsSnowdomeFinalDay(r, time.Date(2025, 12, 20, 9, 30, 0, 0, time.UTC)) {
		t.Error("same calendar date at a different time should count as the final day")
	}
	if IsSnowdomeFinalDay(r, time.Date(2025, 12, 19, 14, 0, 0, 0, time.UTC)) {
		t.Error("an earlier date must not count as the final day")
	}
	if IsSnowdomeFinalDay(nil, last) {
		t.Error("nil room has no final day")
	}

	r.SnowDomePartsLastDate = nil
	if IsSnowdomeFinalDay(r, last) {
		t.Error("a room without a snowdome track has no final day")
	}
}

func TestResolveBundleFreshPlacement(t *testing.T) {
	// Three opened parts in the inventory plus the freshly revealed target.
	p1 := slot(time.Now(), item.TypeSnowdome, true)
	p2 := slot(time.Now(), item.TypeSnowdome, true)
	p3 := slot(time.Now(), item.TypeSnowdome, true)
	other := slot(time.Now(), item.TypeChristmas, true)
	target := slot(time.Now(), item.TypeSnowdome, false)

	items := []calendaritem.WithItem{p1, p2, p3, other}
	bundle := ResolveBundle(items, &target)

	if len(bundle) != 4 {
		t.Fatalf("bundle size = %d, want 4", len(bundle))
	}
	ids := map[string]bool{}
	for _, p := range bundle {
		ids[p.ID.String()] = true
	}
	for _, want := range []calendaritem.WithItem{p1, p2, p3, target} {
		if !ids[want.ID.String()] {
			t.Errorf("bundle is missing part %s", want.ID)
		}
	}
	if ids[other.ID.String()] {
		t.Error("non-snowdome item leaked into the bundle")
	}
}

func TestResolveBundleReposition(t *testing.T) {
	pos := []float64{2.5, 0, -1.25}
	p1 := placedSlot(item.TypeSnowdome, pos)
	p2 := placedSlot(item.TypeSnowdome, []float64{2.5004, 0.0002, -1.2498})
	elsewhere := placedSlot(item.TypeSnowdome, []float64{5, 0, 5})
	inventoryPart := slot(time.Now(), item.TypeSnowdome, true)

	items := []calendaritem.WithItem{p1, p2, elsewhere, inventoryPart}
	bundle := ResolveBundle(items, &p1)

	if len(bundle) != 2 {
		t.Fatalf("bundle size = %d, want 2", len(bundle))
	}
	for _, p := range bundle {
		if p.ID == elsewhere.ID || p.ID == inventoryPart.ID {
			t.Errorf("part %s does not share the target position", p.ID)
		}
	}
}

func TestResolveBundleDedupes(t *testing.T) {
	// The target can already appear in the item list; it must not be
	// written twice.
	target := slot(time.Now(), item.TypeSnowdome, true)
	items := []calendaritem.WithItem{target}

	bundle := ResolveBundle(items, &target)
	if len(bundle) != 1 {
		t.Fatalf("bundle size = %d, want 1 after dedupe", len(bundle))
	}
}

func TestResolveBundleNilTarget(t *testing.T) {
	p1 := slot(time.Now(), item.TypeSnowdome, true)
	unopened := slot(time.Now(), item.TypeSnowdome, false)
	items := []calendaritem.WithItem{p1, unopened}

	bundle := ResolveBundle(items, nil)
	if len(bundle) != 1 || bundle[0].ID != p1.ID {
		t.Errorf("nil target should resolve to the opened inventory parts only, got %d", len(bundle))
	}
}
