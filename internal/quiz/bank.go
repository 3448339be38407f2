package quiz

import (
	"context"
	"math/rand"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	quizerr "github.com/iamwavecut/quizbot/internal/errors"
	"github.com/iamwavecut/quizbot/internal/store"
)

// Bank selects and rotates questions. All read-modify-write sequences on
// the questions document go through the bank's mutex, it is the single
// critical section for that document. Round starts use SelectAndMark so
// that two concurrent rounds can never pick the same question.
type Bank struct {
	mu    sync.Mutex
	store *store.Store
	log   *log.Entry
}

func NewBank(s *store.Store) *Bank {
	return &Bank{
		store: s,
		log:   log.WithField("context", "bank"),
	}
}

// SelectAndMark picks an unused question uniformly at random, stamps it
// used and persists, all under one lock acquisition. An exhausted bank
// is recycled first (every question reset to unused), so a non-empty
// bank always yields a question. Only a bank with zero questions at all
// returns ErrEmptyBank.
func (b *Bank) SelectAndMark(ctx context.Context, now time.Time) (*store.Question, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	doc := b.store.Questions()
	i, err := b.pickLocked(doc)
	if err != nil {
		return nil, err
	}
	doc.Questions[i].Used = true
	doc.Questions[i].UsedDate = &store.DocTime{Time: now}
	if err := b.store.PutQuestions(doc); err != nil {
		return nil, err
	}
	picked := doc.Questions[i]
	return &picked, nil
}

// MarkUsed stamps the question as used; re-marking an already used
// question simply refreshes the stamp. An unknown id is reported but is
// a harmless no-op for callers.
func (b *Bank) MarkUsed(ctx context.Context, questionID int, now time.Time) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	doc := b.store.Questions()
	for i := range doc.Questions {
		if doc.Questions[i].ID == questionID {
			doc.Questions[i].Used = true
			doc.Questions[i].UsedDate = &store.DocTime{Time: now}
			return b.store.PutQuestions(doc)
		}
	}
	b.log.WithField("question_id", questionID).Warn("mark-used target not found in bank")
	return quizerr.ErrQuestionNotFound
}

// SweepExpired resets questions whose used stamp is older than the
// configured retention. Runs at startup and periodically. Returns the
// number of questions reset.
func (b *Bank) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	settings := b.store.Settings()
	if !settings.AutoResetUsedQuestions {
		return 0, nil
	}
	maxAge := time.Duration(settings.ResetAfterDays) * 24 * time.Hour

	doc := b.store.Questions()
	reset := 0
	for i := range doc.Questions {
		q := &doc.Questions[i]
		if !q.Used || q.UsedDate == nil {
			continue
		}
		if now.Sub(q.UsedDate.Time) > maxAge {
			q.Used = false
			q.UsedDate = nil
			reset++
		}
	}
	if reset == 0 {
		return 0, nil
	}
	if err := b.store.PutQuestions(doc); err != nil {
		return 0, err
	}
	b.log.WithField("reset", reset).Info("swept expired questions back to unused")
	return reset, nil
}

// Reseed replaces the bank with the embedded starter questions, part of
// the admin bulk reset.
func (b *Bank) Reseed(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store.PutQuestions(store.SeedQuestions())
}

// pickLocked chooses an unused index, recycling the whole bank in memory
// when all questions are used. The caller persists the document.
func (b *Bank) pickLocked(doc *store.QuestionsDoc) (int, error) {
	if len(doc.Questions) == 0 {
		return 0, quizerr.ErrEmptyBank
	}
	unused := unusedIndexes(doc)
	if len(unused) == 0 {
		b.log.WithField("total", len(doc.Questions)).Info("bank exhausted, recycling all questions")
		for i := range doc.Questions {
			doc.Questions[i].Used = false
			doc.Questions[i].UsedDate = nil
		}
		unused = unusedIndexes(doc)
	}
	return unused[rand.Intn(len(unused))], nil
}

func unusedIndexes(doc *store.QuestionsDoc) []int {
	idx := make([]int, 0, len(doc.Questions))
	for i := range doc.Questions {
		if !doc.Questions[i].Used {
			idx = append(idx, i)
		}
	}
	return idx
}
