package scheduler

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/quizbot/internal/quiz"
	"github.com/iamwavecut/quizbot/internal/store"
)

// Scheduler fires quiz rounds at the configured wall-clock times and
// periodically sweeps expired question usage. The tick interval must be
// shorter than a minute or HH:MM slots can be skipped entirely.
type Scheduler struct {
	engine   *quiz.Engine
	bank     *quiz.Bank
	schedule *quiz.Schedule
	trigger  *quiz.Trigger

	tick  time.Duration
	sweep time.Duration

	cancel context.CancelFunc
	done   chan struct{}
	log    *log.Entry
}

func New(engine *quiz.Engine, bank *quiz.Bank, schedule *quiz.Schedule, trigger *quiz.Trigger, tick, sweep time.Duration) *Scheduler {
	return &Scheduler{
		engine:   engine,
		bank:     bank,
		schedule: schedule,
		trigger:  trigger,
		tick:     tick,
		sweep:    sweep,
		log:      log.WithField("context", "scheduler"),
	}
}

func (s *Scheduler) Name() string { return "scheduler" }

func (s *Scheduler) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.done = make(chan struct{})
	go s.loop(ctx)
	return nil
}

func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()
	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	sweeper := time.NewTicker(s.sweep)
	defer sweeper.Stop()

	// key HH:MM, value the date it last fired on
	fired := map[string]string{}

	for {
		select {
		case <-ctx.Done():
			return

		case now := <-ticker.C:
			for _, slot := range dueTimes(s.schedule.Entries(), now, fired) {
				fired[slot] = now.Format("2006-01-02")
				s.fire(ctx, slot)
			}

		case now := <-sweeper.C:
			n, err := s.bank.SweepExpired(ctx, now)
			if err != nil {
				s.log.WithError(err).Error("cant sweep expired questions")
				continue
			}
			if n > 0 {
				s.log.WithField("reset", n).Info("expired questions returned to rotation")
			}
		}
	}
}

func (s *Scheduler) fire(ctx context.Context, slot string) {
	chats := s.engine.Chats()
	if len(chats) == 0 {
		s.log.WithField("slot", slot).Info("no active chats, skipping scheduled round")
		return
	}
	report, err := s.trigger.RunRound(ctx, chats)
	if err != nil {
		s.log.WithError(err).WithField("slot", slot).Error("cant run scheduled round")
		return
	}
	s.log.WithFields(log.Fields{
		"slot":       slot,
		"delivered":  report.Delivered,
		"failed":     report.Failed,
		"empty_bank": report.EmptyBank,
	}).Info("scheduled round finished")
}

// dueTimes returns the enabled HH:MM entries matching now that have not
// fired today yet. fired maps HH:MM to the last date it fired on.
func dueTimes(entries []store.ScheduleEntry, now time.Time, fired map[string]string) []string {
	clock := now.Format("15:04")
	today := now.Format("2006-01-02")

	due := make([]string, 0, 1)
	for _, entry := range entries {
		if !entry.Enabled || entry.Time != clock {
			continue
		}
		if fired[entry.Time] == today {
			continue
		}
		due = append(due, entry.Time)
	}
	return due
}
