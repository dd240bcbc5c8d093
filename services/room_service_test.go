package services

import (
	"math/rand"
	"testing"
	"time"
)

func TestSnowdomeScheduleRandomTimes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	start := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	dates := snowdomeSchedule(start, nil, rng)
	if len(dates) != snowdomePartCount {
		t.Fatalf("got %d dates, want %d", len(dates), snowdomePartCount)
	}

	seenDays := map[int]bool{}
	for i, d := range dates {
		offset := d.Sub(start)
		if offset < 0 || offset >= calendarDays*24*time.Hour {
			t.Errorf("date %d falls outside the calendar span: %s", i, d)
		}
		day := int(offset/(24*time.Hour)) + 1
		if seenDays[day] {
			t.Errorf("day %d scheduled twice", day)
		}
		seenDays[day] = true
		if i > 0 && dates[i].Before(dates[i-1]) {
			t.Errorf("dates not ascending: %s before %s", dates[i], dates[i-1])
		}
	}
}

func TestSnowdomeScheduleFixedTime(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	start := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	getTime := "08:30"

	dates := snowdomeSchedule(start, &getTime, rng)
	for _, d := range dates {
		if d.UTC().Hour() != 8 || d.UTC().Minute() != 30 {
			t.Errorf("date %s does not land on the room's item-get time", d)
		}
	}
}

func TestSnowdomeScheduleBadTimeFallsBack(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	start := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	getTime := "nonsense"

	dates := snowdomeSchedule(start, &getTime, rng)
	if len(dates) != snowdomePartCount {
		t.Fatalf("got %d dates, want %d", len(dates), snowdomePartCount)
	}
	for _, d := range dates {
		if d.Before(start) || !d.Before(start.Add(calendarDays*24*time.Hour)) {
			t.Errorf("date %s outside the span", d)
		}
	}
}
