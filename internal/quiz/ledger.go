package quiz

import (
	"sort"

	"github.com/iamwavecut/quizbot/internal/store"
)

// Ledger is a view over the user records of the state document.
// Mutations must happen inside the engine's state critical section.
type Ledger struct {
	doc *store.StateDoc
}

func NewLedger(doc *store.StateDoc) Ledger {
	return Ledger{doc: doc}
}

type LeaderboardEntry struct {
	UserID string
	Record store.UserRecord
}

// AddScore creates a zero-score record on first reference, identity
// fields stay empty until an identity update fills them.
func (l Ledger) AddScore(userID string, delta int) int {
	rec, ok := l.doc.Users.Get(userID)
	if !ok {
		rec = &store.UserRecord{}
		l.doc.Users.Put(userID, rec)
	}
	rec.Score += delta
	return rec.Score
}

func (l Ledger) Score(userID string) int {
	rec, ok := l.doc.Users.Get(userID)
	if !ok {
		return 0
	}
	return rec.Score
}

// UpdateIdentity upserts the display fields only, never the score.
func (l Ledger) UpdateIdentity(userID, username, firstName string) {
	rec, ok := l.doc.Users.Get(userID)
	if !ok {
		rec = &store.UserRecord{}
		l.doc.Users.Put(userID, rec)
	}
	rec.Username = username
	rec.FirstName = firstName
}

// Leaderboard returns up to limit entries ordered by score descending.
// Ties resolve by record creation order, which the user table preserves
// across restarts.
func (l Ledger) Leaderboard(limit int) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, l.doc.Users.Len())
	l.doc.Users.Each(func(userID string, rec *store.UserRecord) bool {
		entries = append(entries, LeaderboardEntry{UserID: userID, Record: *rec})
		return true
	})
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Record.Score > entries[j].Record.Score
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func (l Ledger) Count() int {
	return l.doc.Users.Len()
}
