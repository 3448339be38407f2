package quiz

import (
	"testing"

	"github.com/iamwavecut/quizbot/internal/store"
)

func TestLeaderboardTiesResolveByCreationOrder(t *testing.T) {
	t.Parallel()

	doc := store.DefaultState()
	ledger := NewLedger(doc)

	// created in order A, B, C, D
	ledger.AddScore("A", 3)
	ledger.AddScore("B", 5)
	ledger.AddScore("C", 5)
	ledger.AddScore("D", 0)

	entries := ledger.Leaderboard(0)
	want := []string{"B", "C", "A", "D"}
	if len(entries) != len(want) {
		t.Fatalf("unexpected entry count: %d", len(entries))
	}
	for i, id := range want {
		if entries[i].UserID != id {
			t.Fatalf("position %d: got %s want %s", i, entries[i].UserID, id)
		}
	}
}

func TestLeaderboardLimit(t *testing.T) {
	t.Parallel()

	doc := store.DefaultState()
	ledger := NewLedger(doc)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		ledger.AddScore(id, 1)
	}

	if got := len(ledger.Leaderboard(3)); got != 3 {
		t.Fatalf("limit ignored: %d entries", got)
	}
	if got := len(ledger.Leaderboard(10)); got != 5 {
		t.Fatalf("limit above size truncated: %d entries", got)
	}
}

func TestScoreUnknownUserIsZero(t *testing.T) {
	t.Parallel()

	ledger := NewLedger(store.DefaultState())
	if got := ledger.Score("nobody"); got != 0 {
		t.Fatalf("unknown user score %d", got)
	}
	if ledger.Count() != 0 {
		t.Fatalf("score read created a record")
	}
}

func TestUpdateIdentityNeverTouchesScore(t *testing.T) {
	t.Parallel()

	doc := store.DefaultState()
	ledger := NewLedger(doc)

	ledger.AddScore("7", 4)
	ledger.UpdateIdentity("7", "bob", "Bob")

	rec, ok := doc.Users.Get("7")
	if !ok {
		t.Fatalf("record missing")
	}
	if rec.Score != 4 {
		t.Fatalf("identity update changed score: %d", rec.Score)
	}
	if rec.Username != "bob" || rec.FirstName != "Bob" {
		t.Fatalf("identity not applied: %+v", rec)
	}

	// identity-first users start at zero
	ledger.UpdateIdentity("8", "carol", "Carol")
	if ledger.Score("8") != 0 {
		t.Fatalf("identity-created record has score")
	}
}
