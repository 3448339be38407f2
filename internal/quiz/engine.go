package quiz

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/quizbot/internal/store"
)

// Engine owns the single critical section over the state document. Every
// read-modify-write on round, ledger or registry data funnels through
// Update, which serializes concurrent submissions, round starts and
// registry changes against each other. Reads go against the last
// durably committed snapshot without taking the lock.
type Engine struct {
	mu    sync.Mutex
	store *store.Store
	bank  *Bank
	sched *Schedule
	log   *log.Entry
}

func NewEngine(s *store.Store, bank *Bank, sched *Schedule) *Engine {
	return &Engine{
		store: s,
		bank:  bank,
		sched: sched,
		log:   log.WithField("context", "engine"),
	}
}

// Update runs fn over the state document inside the critical section and
// persists it when fn reports a mutation.
func (e *Engine) Update(ctx context.Context, fn func(doc *store.StateDoc) (dirty bool, err error)) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	doc := e.store.State()
	dirty, err := fn(doc)
	if err != nil {
		return err
	}
	if !dirty {
		return nil
	}
	return e.store.PutState(doc)
}

// View runs fn over the last committed state snapshot, lock-free.
func (e *Engine) View(fn func(doc *store.StateDoc)) {
	fn(e.store.State())
}

// StartRound activates a new round with the question, discarding any
// previous round wholesale.
func (e *Engine) StartRound(ctx context.Context, q *store.Question) error {
	return e.Update(ctx, func(doc *store.StateDoc) (bool, error) {
		NewRoundState(doc).Start(q)
		return true, nil
	})
}

func (e *Engine) CurrentQuestion() *store.Question {
	var q *store.Question
	e.View(func(doc *store.StateDoc) {
		q = NewRoundState(doc).Question()
	})
	return q
}

// FirstCredited returns the record of the first user credited in the
// current round, when there is one.
func (e *Engine) FirstCredited() (string, *store.UserRecord, bool) {
	var (
		userID string
		rec    *store.UserRecord
		found  bool
	)
	e.View(func(doc *store.StateDoc) {
		id, ok := NewRoundState(doc).FirstCredited()
		if !ok {
			return
		}
		userID = id
		found = true
		if r, ok := doc.Users.Get(id); ok {
			copied := *r
			rec = &copied
		}
	})
	return userID, rec, found
}

func (e *Engine) AddChat(ctx context.Context, chatID int64) error {
	return e.Update(ctx, func(doc *store.StateDoc) (bool, error) {
		return NewRegistry(doc).Add(chatID), nil
	})
}

func (e *Engine) RemoveChat(ctx context.Context, chatID int64) error {
	return e.Update(ctx, func(doc *store.StateDoc) (bool, error) {
		return NewRegistry(doc).Remove(chatID), nil
	})
}

func (e *Engine) Chats() []int64 {
	var chats []int64
	e.View(func(doc *store.StateDoc) {
		chats = NewRegistry(doc).List()
	})
	return chats
}

func (e *Engine) UpdateIdentity(ctx context.Context, userID, username, firstName string) error {
	return e.Update(ctx, func(doc *store.StateDoc) (bool, error) {
		NewLedger(doc).UpdateIdentity(userID, username, firstName)
		return true, nil
	})
}

func (e *Engine) AddScore(ctx context.Context, userID string, delta int) error {
	return e.Update(ctx, func(doc *store.StateDoc) (bool, error) {
		NewLedger(doc).AddScore(userID, delta)
		return true, nil
	})
}

func (e *Engine) Score(userID string) int {
	var score int
	e.View(func(doc *store.StateDoc) {
		score = NewLedger(doc).Score(userID)
	})
	return score
}

func (e *Engine) Leaderboard(limit int) []LeaderboardEntry {
	var entries []LeaderboardEntry
	e.View(func(doc *store.StateDoc) {
		entries = NewLedger(doc).Leaderboard(limit)
	})
	return entries
}

func (e *Engine) PlayerCount() int {
	var count int
	e.View(func(doc *store.StateDoc) {
		count = NewLedger(doc).Count()
	})
	return count
}

// ResetAll restores all three documents to their seeded defaults: the
// bank is reseeded, the round goes idle with scores and chats wiped, and
// the schedule returns to its default entries.
func (e *Engine) ResetAll(ctx context.Context) error {
	if err := e.bank.Reseed(ctx); err != nil {
		return err
	}
	if e.sched != nil {
		if err := e.sched.ResetDefaults(ctx); err != nil {
			return err
		}
	}
	err := e.Update(ctx, func(doc *store.StateDoc) (bool, error) {
		*doc = *store.DefaultState()
		return true, nil
	})
	if err != nil {
		return err
	}
	e.log.Info("all documents reset to defaults")
	return nil
}
