package quiz

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	quizerr "github.com/iamwavecut/quizbot/internal/errors"
	"github.com/iamwavecut/quizbot/internal/observability"
	"github.com/iamwavecut/quizbot/internal/store"
)

// Announcer delivers round messages to a chat. Implemented by the
// messaging adapter, the trigger only cares about per-chat success.
type Announcer interface {
	AnnounceQuestion(ctx context.Context, chatID int64, q *store.Question) error
	AnnounceExhausted(ctx context.Context, chatID int64) error
}

// Report aggregates the result of one broadcast invocation.
type Report struct {
	Question  *store.Question
	Delivered int
	Failed    int
	EmptyBank bool
}

// Trigger starts rounds: one question is selected per invocation and
// shared by every target chat, matching the single global round. Chat
// deliveries run concurrently and fail independently, one dead chat
// never blocks the rest or the committed round state.
type Trigger struct {
	bank      *Bank
	engine    *Engine
	announcer Announcer
	log       *log.Entry
}

func NewTrigger(bank *Bank, engine *Engine, announcer Announcer) *Trigger {
	return &Trigger{
		bank:      bank,
		engine:    engine,
		announcer: announcer,
		log:       log.WithField("context", "trigger"),
	}
}

func (t *Trigger) RunRound(ctx context.Context, chatIDs []int64) (Report, error) {
	ctx, span := otel.Tracer("quizbot").Start(ctx, "trigger.run_round")
	defer span.End()

	report := Report{}

	q, err := t.bank.SelectAndMark(ctx, time.Now())
	if errors.Is(err, quizerr.ErrEmptyBank) {
		t.log.Warn("no questions available, skipping round")
		report.EmptyBank = true
		report.Failed, report.Delivered = t.fanOut(ctx, chatIDs, func(ctx context.Context, chatID int64) error {
			return t.announcer.AnnounceExhausted(ctx, chatID)
		})
		return report, nil
	}
	if err != nil {
		return report, errors.WithMessage(err, "select next question")
	}
	report.Question = q

	if err := t.engine.StartRound(ctx, q); err != nil {
		return report, errors.WithMessage(err, "start round")
	}
	observability.RecordRoundStarted()
	t.log.WithFields(log.Fields{
		"question_id": q.ID,
		"chats":       len(chatIDs),
	}).Info("round started")

	report.Failed, report.Delivered = t.fanOut(ctx, chatIDs, func(ctx context.Context, chatID int64) error {
		return t.announcer.AnnounceQuestion(ctx, chatID, q)
	})
	return report, nil
}

func (t *Trigger) fanOut(ctx context.Context, chatIDs []int64, deliver func(ctx context.Context, chatID int64) error) (failed, delivered int) {
	var failures atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	for _, chatID := range chatIDs {
		chatID := chatID
		g.Go(func() error {
			if err := deliver(ctx, chatID); err != nil {
				failures.Add(1)
				observability.RecordDelivery("error")
				t.log.WithError(err).WithField("chat_id", chatID).Error("cant deliver to chat")
				return nil
			}
			observability.RecordDelivery("ok")
			return nil
		})
	}
	_ = g.Wait()
	failed = int(failures.Load())
	return failed, len(chatIDs) - failed
}
