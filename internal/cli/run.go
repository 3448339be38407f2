package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iamwavecut/quizbot/internal/bot"
	"github.com/iamwavecut/quizbot/internal/config"
	"github.com/iamwavecut/quizbot/internal/handlers"
	"github.com/iamwavecut/quizbot/internal/infra"
	"github.com/iamwavecut/quizbot/internal/lifecycle"
	"github.com/iamwavecut/quizbot/internal/observability"
	"github.com/iamwavecut/quizbot/internal/quiz"
	"github.com/iamwavecut/quizbot/internal/scheduler"
	"github.com/iamwavecut/quizbot/internal/store"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the bot and the round scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
}

func run() error {
	cfg := config.Get()
	log.SetFormatter(&config.QbFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.Level(cfg.LogLevel))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := observability.Init(ctx, cfg.MetricsAddr); err != nil {
		log.WithError(err).Error("cant initialize observability, continuing without it")
	}

	botAPI, err := api.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		log.WithError(err).Errorln("cant initialize bot api")
		time.Sleep(1 * time.Second)
		log.Fatalln("exiting")
	}
	if log.Level(cfg.LogLevel) == log.TraceLevel {
		botAPI.Debug = true
	}
	defer botAPI.StopReceivingUpdates()

	docs := store.New(infra.GetWorkDir("data"))
	bank := quiz.NewBank(docs)
	schedule := quiz.NewSchedule(docs)
	engine := quiz.NewEngine(docs, bank, schedule)
	arbiter := quiz.NewArbiter(engine)
	announcer := bot.NewAnnouncer(botAPI, cfg.DefaultLanguage, cfg.AnswerMarker)
	trigger := quiz.NewTrigger(bank, engine, announcer)
	service := bot.NewService(botAPI, engine, bank, schedule, trigger)

	if n, err := bank.SweepExpired(ctx, time.Now()); err != nil {
		log.WithError(err).Error("cant sweep expired questions on startup")
	} else if n > 0 {
		log.WithField("reset", n).Info("expired questions returned to rotation")
	}

	bot.RegisterUpdateHandler("quiz", handlers.NewQuiz(service, arbiter, nil, cfg.DefaultLanguage, cfg.AnswerMarker))

	runtime := lifecycle.NewRuntime(
		scheduler.New(engine, bank, schedule, trigger, cfg.SchedulerTick, cfg.SweepInterval),
	)
	if err := runtime.Start(ctx); err != nil {
		log.WithError(err).Fatalln("cant start components")
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		if err := runtime.Stop(stopCtx); err != nil {
			log.WithError(err).Error("cant stop components")
		}
	}()

	infra.GoRecoverable(-1, "updates", func() {
		updateConfig := api.NewUpdate(0)
		updateConfig.Timeout = 60
		updateProcessor := bot.NewUpdateProcessor(service, []string{"quiz"})

		updateChan, errorChan := bot.GetUpdatesChans(ctx, botAPI, updateConfig)

		for {
			select {
			case err := <-errorChan:
				log.WithError(err).Fatalln("bot api get updates error")
			case update := <-updateChan:
				if err := updateProcessor.Process(ctx, &update); err != nil {
					log.WithError(err).Errorln("cant process update")
				}
			case <-ctx.Done():
				log.WithError(ctx.Err()).Errorln("no more updates")
				return
			}
		}
	})

	select {
	case <-infra.MonitorExecutable(ctx):
		log.Errorln("executable file was modified")
	case <-ctx.Done():
	}
	return nil
}
