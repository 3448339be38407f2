package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-envconfig"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	TelegramAPIToken string        `env:"TOKEN,required"`
	DataDir          string        `env:"DATA_DIR,default=~/.quizbot"`
	DefaultLanguage  string        `env:"LANG,default=ru"`
	LogLevel         int           `env:"LOG_LEVEL,default=4"`
	AnswerMarker     string        `env:"ANSWER_MARKER,default=-"`
	MetricsAddr      string        `env:"METRICS_ADDR,default=:2112"`
	SchedulerTick    time.Duration `env:"SCHEDULER_TICK,default=20s"`
	SweepInterval    time.Duration `env:"SWEEP_INTERVAL,default=1h"`
}

var (
	once         sync.Once
	globalConfig = &Config{}
	globalErr    error
)

func Load() (Config, error) {
	once.Do(func() {
		cfg := &Config{}
		envcfg := envconfig.Config{
			Lookuper: envconfig.PrefixLookuper("QB_", envconfig.OsLookuper()),
			Target:   cfg,
		}
		if err := envconfig.ProcessWith(context.Background(), &envcfg); err != nil {
			globalErr = fmt.Errorf("process env config: %w", err)
			return
		}
		home, err := os.UserHomeDir()
		if err != nil {
			globalErr = fmt.Errorf("get user home directory: %w", err)
			return
		}
		cfg.DataDir = strings.Replace(cfg.DataDir, "~", home, 1)
		log.Traceln("loaded config")
		globalConfig = cfg
	})
	return *globalConfig, globalErr
}

func Get() Config {
	cfg, err := Load()
	if err != nil {
		log.WithField("error", err.Error()).Error("cant load config")
	}
	return cfg
}
