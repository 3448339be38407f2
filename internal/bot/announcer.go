package bot

import (
	"context"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/iamwavecut/tool"
	"github.com/pkg/errors"

	"github.com/iamwavecut/quizbot/internal/i18n"
	"github.com/iamwavecut/quizbot/internal/store"
)

// Announcer implements quiz.Announcer over the Telegram API.
type Announcer struct {
	bot    *api.BotAPI
	lang   string
	marker string
}

func NewAnnouncer(bot *api.BotAPI, lang, marker string) *Announcer {
	return &Announcer{
		bot:    bot,
		lang:   lang,
		marker: marker,
	}
}

func (a *Announcer) AnnounceQuestion(ctx context.Context, chatID int64, q *store.Question) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	text := "🧠 " + i18n.Get("QUIZ TIME!", a.lang) + "\n\n" +
		q.Prompt + "\n\n" +
		tool.ExecTemplate(i18n.Get("Answer with a message starting with {{ .marker }}, like this: {{ .marker }} your answer", a.lang), map[string]any{
			"marker": a.marker,
		}) + "\n" +
		i18n.Get("A correct answer is worth one point!", a.lang)

	if _, err := a.bot.Send(api.NewMessage(chatID, text)); err != nil {
		return errors.WithMessage(err, "cant send question")
	}
	return nil
}

func (a *Announcer) AnnounceExhausted(ctx context.Context, chatID int64) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if _, err := a.bot.Send(api.NewMessage(chatID, "😔 "+i18n.Get("No questions left for today!", a.lang))); err != nil {
		return errors.WithMessage(err, "cant send exhausted notice")
	}
	return nil
}
