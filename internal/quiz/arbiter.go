package quiz

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/iamwavecut/quizbot/internal/observability"
	"github.com/iamwavecut/quizbot/internal/store"
)

type Outcome int

const (
	OutcomeNoActiveRound Outcome = iota
	OutcomeAlreadyCredited
	OutcomeCorrect
	OutcomeIncorrect
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoActiveRound:
		return "no_active_round"
	case OutcomeAlreadyCredited:
		return "already_credited"
	case OutcomeCorrect:
		return "correct"
	case OutcomeIncorrect:
		return "incorrect"
	}
	return "unknown"
}

// Arbiter decides the outcome of answer submissions. Crediting a user
// and bumping their score mutate the same state document inside one
// engine critical section, so a correct answer commits as one write.
//
// The credited check is keyed by user, not by round completion: any
// number of distinct users may each earn the point for the same round,
// but each of them at most once.
type Arbiter struct {
	engine *Engine
	log    *log.Entry
}

func NewArbiter(engine *Engine) *Arbiter {
	return &Arbiter{
		engine: engine,
		log:    log.WithField("context", "arbiter"),
	}
}

// Normalize prepares an answer for comparison: surrounding whitespace
// trimmed, lowercased. Matching is exact equality after that, there is
// no fuzzy comparison.
func Normalize(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

func (a *Arbiter) Submit(ctx context.Context, userID string, rawText string) (Outcome, error) {
	ctx, span := otel.Tracer("quizbot").Start(ctx, "arbiter.submit")
	defer span.End()
	done := observability.StartSubmissionTimer()
	defer done()

	outcome := OutcomeIncorrect
	err := a.engine.Update(ctx, func(doc *store.StateDoc) (bool, error) {
		round := NewRoundState(doc)
		if !round.Active() {
			outcome = OutcomeNoActiveRound
			return false, nil
		}
		if round.HasCredited(userID) {
			outcome = OutcomeAlreadyCredited
			return false, nil
		}
		if Normalize(rawText) != Normalize(round.Question().Answer) {
			outcome = OutcomeIncorrect
			return false, nil
		}
		round.Credit(userID)
		NewLedger(doc).AddScore(userID, 1)
		outcome = OutcomeCorrect
		return true, nil
	})
	if err != nil {
		return outcome, err
	}

	observability.RecordSubmission(outcome.String())
	a.log.WithFields(log.Fields{
		"user_id": userID,
		"outcome": outcome.String(),
	}).Debug("submission arbitrated")
	return outcome, nil
}
