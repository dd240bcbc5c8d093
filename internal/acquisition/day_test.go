package acquisition

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/AdventSphere/advent-sphere/internal/calendaritem"
	"github.com/AdventSphere/advent-sphere/internal/item"
	"github.com/AdventSphere/advent-sphere/internal/room"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("bad time literal %q: %v", s, err)
	}
	return ts
}

func testRoom(startAt time.Time) *room.Room {
	return &room.Room{
		ID:      uuid.New(),
		OwnerID: "owner",
		EditID:  uuid.New(),
		StartAt: startAt,
	}
}

func slot(openDate time.Time, itemType string, opened bool) calendaritem.WithItem {
	return calendaritem.WithItem{
		CalendarItem: calendaritem.CalendarItem{
			ID:       uuid.New(),
			OpenDate: openDate,
			IsOpened: opened,
		},
		ItemType: itemType,
	}
}

func TestDayNumber(t *testing.T) {
	start := mustTime(t, "2025-12-01T00:00:00Z")

	tests := []struct {
		name    string
		instant string
		want    int
	}{
		{"start instant", "2025-12-01T00:00:00Z", 1},
		{"late on day one", "2025-12-01T23:59:59Z", 1},
		{"afternoon reveal", "2025-12-05T14:00:00Z", 5},
		{"final day", "2025-12-25T08:00:00Z", 25},
		{"just before start", "2025-11-30T23:59:59Z", 0},
		{"days before start", "2025-11-28T12:00:00Z", -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DayNumber(start, mustTime(t, tt.instant))
			if got != tt.want {
				t.Errorf("DayNumber(%s) = %d, want %d", tt.instant, got, tt.want)
			}
		})
	}
}

func TestDayNumberOffsetStart(t *testing.T) {
	// A room starting mid-day rolls its days at the same clock time, not
	// at midnight.
	start := mustTime(t, "2025-12-01T18:00:00Z")

	if got := DayNumber(start, mustTime(t, "2025-12-02T17:59:00Z")); got != 1 {
		t.Errorf("before the 24h mark: got day %d, want 1", got)
	}
	if got := DayNumber(start, mustTime(t, "2025-12-02T18:00:00Z")); got != 2 {
		t.Errorf("at the 24h mark: got day %d, want 2", got)
	}
}

func TestCanOpenDay(t *testing.T) {
	start := mustTime(t, "2025-12-01T00:00:00Z")
	r := testRoom(start)
	reveal := mustTime(t, "2025-12-05T14:00:00Z")
	items := []calendaritem.WithItem{slot(reveal, item.TypeChristmas, false)}

	tests := []struct {
		name string
		day  int
		now  string
		want bool
	}{
		{"before reveal time", 5, "2025-12-05T13:59:59Z", false},
		{"at reveal time", 5, "2025-12-05T14:00:00Z", true},
		{"after reveal time", 5, "2025-12-05T20:00:00Z", true},
		{"yesterday's drawer", 4, "2025-12-05T14:00:00Z", false},
		{"tomorrow's drawer", 6, "2025-12-05T14:00:00Z", false},
		{"missed day stays shut", 5, "2025-12-07T10:00:00Z", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanOpenDay(r, items, tt.day, mustTime(t, tt.now))
			if got != tt.want {
				t.Errorf("CanOpenDay(day=%d, now=%s) = %v, want %v", tt.day, tt.now, got, tt.want)
			}
		})
	}
}

func TestCanOpenDayEdgeCases(t *testing.T) {
	start := mustTime(t, "2025-12-01T00:00:00Z")
	now := mustTime(t, "2025-12-05T14:00:00Z")
	reveal := mustTime(t, "2025-12-05T14:00:00Z")

	if CanOpenDay(nil, nil, 5, now) {
		t.Error("nil room should never be openable")
	}

	r := testRoom(start)
	if CanOpenDay(r, nil, 5, now) {
		t.Error("a day with no scheduled item should not be openable")
	}

	opened := []calendaritem.WithItem{slot(reveal, item.TypeChristmas, true)}
	if CanOpenDay(r, opened, 5, now) {
		t.Error("an already-opened slot should not be openable again")
	}
}

func TestItemForDayPrefersUnopened(t *testing.T) {
	start := mustTime(t, "2025-12-01T00:00:00Z")
	r := testRoom(start)
	reveal := mustTime(t, "2025-12-05T14:00:00Z")

	openedSlot := slot(reveal, item.TypeChristmas, true)
	freshSlot := slot(reveal.Add(time.Hour), item.TypeSnowdome, false)
	items := []calendaritem.WithItem{openedSlot, freshSlot}

	got := ItemForDay(r, items, 5)
	if got == nil {
		t.Fatal("expected the unopened slot, got nil")
	}
	if got.ID != freshSlot.ID {
		t.Errorf("got slot %s, want the unopened one %s", got.ID, freshSlot.ID)
	}
}

func TestTodayOpenableItem(t *testing.T) {
	start := mustTime(t, "2025-12-01T00:00:00Z")
	r := testRoom(start)
	reveal := mustTime(t, "2025-12-05T14:00:00Z")
	items := []calendaritem.WithItem{slot(reveal, item.TypeChristmas, false)}

	if got := TodayOpenableItem(r, items, mustTime(t, "2025-12-05T15:00:00Z")); got == nil {
		t.Error("expected today's slot to be openable")
	}
	if got := TodayOpenableItem(r, items, mustTime(t, "2025-12-04T15:00:00Z")); got != nil {
		t.Error("tomorrow's slot must not be openable today")
	}
	if got := TodayOpenableItem(nil, items, reveal); got != nil {
		t.Error("nil room must yield no openable item")
	}
}
