package acquisition

import "time"

// dayLength is the span of one calendar drawer. Day numbers are computed
// against the room's start instant in a single reference clock, never the
// viewer's local midnight, so every participant agrees on "today".
const dayLength = 24 * time.Hour

// DayNumber maps an instant to a 1-based calendar day relative to startAt.
// The time of day within the slot is irrelevant here; only the openability
// check looks at the full reveal timestamp.
func DayNumber(startAt, instant time.Time) int {
	d := instant.Sub(startAt)
	days := d / dayLength
	if d < 0 && d%dayLength != 0 {
		days--
	}
	return int(days) + 1
}

// sameDay reports whether two instants fall on the same UTC calendar date.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
