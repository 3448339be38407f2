package bot

import (
	api "github.com/OvyFlash/telegram-bot-api"

	"github.com/iamwavecut/quizbot/internal/quiz"
)

type ServiceBot interface {
	GetBot() *api.BotAPI
}

type ServiceQuiz interface {
	GetEngine() *quiz.Engine
	GetBank() *quiz.Bank
	GetSchedule() *quiz.Schedule
	GetTrigger() *quiz.Trigger
}

type Service interface {
	ServiceBot
	ServiceQuiz
}

type service struct {
	bot     *api.BotAPI
	engine  *quiz.Engine
	bank    *quiz.Bank
	sched   *quiz.Schedule
	trigger *quiz.Trigger
}

func NewService(bot *api.BotAPI, engine *quiz.Engine, bank *quiz.Bank, sched *quiz.Schedule, trigger *quiz.Trigger) *service {
	return &service{
		bot:     bot,
		engine:  engine,
		bank:    bank,
		sched:   sched,
		trigger: trigger,
	}
}

func (s *service) GetBot() *api.BotAPI {
	return s.bot
}

func (s *service) GetEngine() *quiz.Engine {
	return s.engine
}

func (s *service) GetBank() *quiz.Bank {
	return s.bank
}

func (s *service) GetSchedule() *quiz.Schedule {
	return s.sched
}

func (s *service) GetTrigger() *quiz.Trigger {
	return s.trigger
}
