package quiz

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	quizerr "github.com/iamwavecut/quizbot/internal/errors"
	"github.com/iamwavecut/quizbot/internal/store"
)

func newTestSchedule(t *testing.T) *Schedule {
	t.Helper()
	return NewSchedule(store.New(t.TempDir()))
}

func TestScheduleDefaults(t *testing.T) {
	t.Parallel()

	schedule := newTestSchedule(t)
	times := schedule.Times()
	if len(times) != 2 || times[0] != "12:00" || times[1] != "18:00" {
		t.Fatalf("unexpected default times: %v", times)
	}
}

func TestScheduleAddValidatesFormat(t *testing.T) {
	t.Parallel()

	schedule := newTestSchedule(t)
	ctx := context.Background()

	for _, bad := range []string{"25:00", "9am", "12", "12:60", ""} {
		err := schedule.Add(ctx, bad)
		if !errors.Is(err, quizerr.ErrInvalidInput) {
			t.Fatalf("time %q accepted: %v", bad, err)
		}
	}

	if err := schedule.Add(ctx, "09:30"); err != nil {
		t.Fatalf("add valid time: %v", err)
	}
	found := false
	for _, tm := range schedule.Times() {
		if tm == "09:30" {
			found = true
		}
	}
	if !found {
		t.Fatalf("added time missing: %v", schedule.Times())
	}
}

func TestScheduleAddDuplicateIsNoop(t *testing.T) {
	t.Parallel()

	schedule := newTestSchedule(t)
	ctx := context.Background()

	if err := schedule.Add(ctx, "12:00"); err != nil {
		t.Fatalf("re-add existing time: %v", err)
	}
	count := 0
	for _, entry := range schedule.Entries() {
		if entry.Time == "12:00" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("duplicate entry created: %d", count)
	}
}

func TestScheduleRemove(t *testing.T) {
	t.Parallel()

	schedule := newTestSchedule(t)
	ctx := context.Background()

	if err := schedule.Remove(ctx, "12:00"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	for _, tm := range schedule.Times() {
		if tm == "12:00" {
			t.Fatalf("removed time still present")
		}
	}

	// removing an absent time is a no-op
	if err := schedule.Remove(ctx, "03:33"); err != nil {
		t.Fatalf("remove absent time: %v", err)
	}
}
