package quiz

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	quizerr "github.com/iamwavecut/quizbot/internal/errors"
	"github.com/iamwavecut/quizbot/internal/store"
)

// Schedule manages the settings document: the HH:MM broadcast entries
// and the question retention knobs. Its mutex is the critical section
// for that document.
type Schedule struct {
	mu    sync.Mutex
	store *store.Store
	log   *log.Entry
}

func NewSchedule(s *store.Store) *Schedule {
	return &Schedule{
		store: s,
		log:   log.WithField("context", "schedule"),
	}
}

// Entries returns all schedule entries, enabled or not.
func (s *Schedule) Entries() []store.ScheduleEntry {
	doc := s.store.Settings()
	entries := make([]store.ScheduleEntry, len(doc.QuizSchedule))
	copy(entries, doc.QuizSchedule)
	return entries
}

// Times returns the enabled broadcast times.
func (s *Schedule) Times() []string {
	times := make([]string, 0)
	for _, entry := range s.Entries() {
		if entry.Enabled {
			times = append(times, entry.Time)
		}
	}
	return times
}

func (s *Schedule) Add(ctx context.Context, t string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if _, err := time.Parse("15:04", t); err != nil {
		return errors.Wrapf(quizerr.ErrInvalidInput, "bad schedule time %q", t)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.store.Settings()
	for _, entry := range doc.QuizSchedule {
		if entry.Time == t {
			return nil
		}
	}
	doc.QuizSchedule = append(doc.QuizSchedule, store.ScheduleEntry{Time: t, Enabled: true})
	return s.store.PutSettings(doc)
}

func (s *Schedule) Remove(ctx context.Context, t string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.store.Settings()
	kept := doc.QuizSchedule[:0]
	for _, entry := range doc.QuizSchedule {
		if entry.Time != t {
			kept = append(kept, entry)
		}
	}
	if len(kept) == len(doc.QuizSchedule) {
		return nil
	}
	doc.QuizSchedule = kept
	return s.store.PutSettings(doc)
}

func (s *Schedule) ResetDefaults(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.PutSettings(store.DefaultSettings())
}
