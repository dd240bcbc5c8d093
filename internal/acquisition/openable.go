package acquisition

import (
	"time"

	"github.com/AdventSphere/advent-sphere/internal/calendaritem"
	"github.com/AdventSphere/advent-sphere/internal/room"
)

// TodayDay is the calendar day the room is currently on. Zero or negative
// means the calendar has not started yet.
func TodayDay(r *room.Room, now time.Time) int {
	return DayNumber(r.StartAt, now)
}

// ItemForDay returns the unopened slot whose open date falls on the given
// day, or nil when the day has no openable item left.
func ItemForDay(r *room.Room, items []calendaritem.WithItem, day int) *calendaritem.WithItem {
	for i := range items {
		if items[i].IsOpened {
			continue
		}
		if DayNumber(r.StartAt, items[i].OpenDate) == day {
			return &items[i]
		}
	}
	return nil
}

// CanOpenDay decides whether the day's drawer may be opened at now.
// All of the following must hold:
//   - day is today's day (past and future drawers stay shut; already-opened
//     days are shown via the persisted flag, not through this predicate)
//   - an unopened slot exists for the day
//   - the slot's full reveal timestamp has passed
func CanOpenDay(r *room.Room, items []calendaritem.WithItem, day int, now time.Time) bool {
	if r == nil {
		return false
	}
	if day != TodayDay(r, now) {
		return false
	}
	item := ItemForDay(r, items, day)
	if item == nil {
		return false
	}
	return !now.Before(item.OpenDate)
}

// TodayOpenableItem returns the slot that can be opened right now, if any.
func TodayOpenableItem(r *room.Room, items []calendaritem.WithItem, now time.Time) *calendaritem.WithItem {
	if r == nil {
		return nil
	}
	day := TodayDay(r, now)
	if !CanOpenDay(r, items, day, now) {
		return nil
	}
	return ItemForDay(r, items, day)
}
