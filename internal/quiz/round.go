package quiz

import (
	"github.com/iamwavecut/quizbot/internal/store"
)

// RoundState is a view over the round fields of the state document. The
// machine has two states: idle (no current question) and active. There
// is no terminal transition, a round stays answerable until the next
// Start replaces it wholesale.
//
// All mutations must happen inside the engine's state critical section.
type RoundState struct {
	doc *store.StateDoc
}

func NewRoundState(doc *store.StateDoc) RoundState {
	return RoundState{doc: doc}
}

func (r RoundState) Active() bool {
	return r.doc.CurrentQuestion != nil
}

func (r RoundState) Question() *store.Question {
	return r.doc.CurrentQuestion
}

func (r RoundState) Credited() []string {
	return r.doc.AnsweredUsers
}

func (r RoundState) HasCredited(userID string) bool {
	for _, id := range r.doc.AnsweredUsers {
		if id == userID {
			return true
		}
	}
	return false
}

func (r RoundState) FirstCredited() (string, bool) {
	if len(r.doc.AnsweredUsers) == 0 {
		return "", false
	}
	return r.doc.AnsweredUsers[0], true
}

// Start activates a round with the given question. Valid from both
// states: starting over an active round silently discards the previous
// credited list, late answers to the superseded question are simply
// checked against the new one.
func (r RoundState) Start(q *store.Question) {
	question := *q
	r.doc.CurrentQuestion = &question
	r.doc.AnsweredUsers = []string{}
}

// Credit appends the user to the credited list, once. Returns false when
// the user was already credited for this round.
func (r RoundState) Credit(userID string) bool {
	if r.HasCredited(userID) {
		return false
	}
	r.doc.AnsweredUsers = append(r.doc.AnsweredUsers, userID)
	return true
}
