package cli

import (
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iamwavecut/quizbot/internal/config"
	"github.com/iamwavecut/quizbot/internal/infra"
	"github.com/iamwavecut/quizbot/internal/store"
)

func newResetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset all documents to their defaults",
		Long:  "Reseeds the question bank and wipes scores, round state, registered chats and settings.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			log.SetFormatter(&config.QbFormatter{})
			log.SetOutput(os.Stdout)
			log.SetLevel(log.Level(cfg.LogLevel))

			if !yes {
				return errors.New("refusing to reset without --yes")
			}

			docs := store.New(infra.GetWorkDir("data"))
			if err := docs.Reset(); err != nil {
				return errors.WithMessage(err, "cant reset documents")
			}
			log.Info("all documents reset to defaults")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the wipe")
	return cmd
}
