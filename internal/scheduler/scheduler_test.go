package scheduler

import (
	"testing"
	"time"

	"github.com/iamwavecut/quizbot/internal/store"
)

func TestDueTimesMatchesEnabledSlots(t *testing.T) {
	t.Parallel()

	entries := []store.ScheduleEntry{
		{Time: "12:00", Enabled: true},
		{Time: "18:00", Enabled: true},
		{Time: "12:00", Enabled: false},
	}
	now := time.Date(2026, 8, 28, 12, 0, 30, 0, time.UTC)

	due := dueTimes(entries, now, map[string]string{})
	if len(due) != 1 || due[0] != "12:00" {
		t.Fatalf("unexpected due slots: %v", due)
	}

	// nothing due off-slot
	if due := dueTimes(entries, now.Add(5*time.Minute), map[string]string{}); len(due) != 0 {
		t.Fatalf("due off-slot: %v", due)
	}
}

func TestDueTimesFiresOncePerDay(t *testing.T) {
	t.Parallel()

	entries := []store.ScheduleEntry{{Time: "18:00", Enabled: true}}
	fired := map[string]string{}

	first := time.Date(2026, 8, 28, 18, 0, 5, 0, time.UTC)
	due := dueTimes(entries, first, fired)
	if len(due) != 1 {
		t.Fatalf("slot not due: %v", due)
	}
	fired["18:00"] = first.Format("2006-01-02")

	// later ticks inside the same minute must not re-fire
	if due := dueTimes(entries, first.Add(25*time.Second), fired); len(due) != 0 {
		t.Fatalf("slot re-fired same day: %v", due)
	}

	// the next day it is due again
	nextDay := first.Add(24 * time.Hour)
	if due := dueTimes(entries, nextDay, fired); len(due) != 1 {
		t.Fatalf("slot not due next day: %v", due)
	}
}

func TestDueTimesIgnoresDisabledEntries(t *testing.T) {
	t.Parallel()

	entries := []store.ScheduleEntry{{Time: "09:00", Enabled: false}}
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	if due := dueTimes(entries, now, map[string]string{}); len(due) != 0 {
		t.Fatalf("disabled slot fired: %v", due)
	}
}
