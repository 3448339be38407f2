package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/iamwavecut/tool"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/quizbot/internal/bot"
	"github.com/iamwavecut/quizbot/internal/i18n"
	"github.com/iamwavecut/quizbot/internal/quiz"
)

const leaderboardSize = 10

var congratsTemplates = []string{
	"🎉 BINGO! {{ .name }} gets a point!",
	"✅ SPOT ON! {{ .name }} earns a point!",
	"🏆 CORRECT! {{ .name }} scores!",
}

// Quiz is the chat-facing handler: it consumes marker-prefixed answer
// submissions and the bot commands, delegating every decision to the
// quiz kernel.
type Quiz struct {
	s       bot.Service
	arbiter *quiz.Arbiter
	leveler Leveler
	lang    string
	marker  string
}

func NewQuiz(s bot.Service, arbiter *quiz.Arbiter, leveler Leveler, lang, marker string) *Quiz {
	return &Quiz{
		s:       s,
		arbiter: arbiter,
		leveler: leveler,
		lang:    lang,
		marker:  marker,
	}
}

func (h *Quiz) Handle(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) (bool, error) {
	if u == nil || u.Message == nil || chat == nil || user == nil {
		return true, nil
	}
	if user.IsBot {
		return true, nil
	}
	switch chat.Type {
	case "group", "supergroup", "private":
	default:
		return true, nil
	}

	m := u.Message

	// every interaction refreshes the user's identity fields
	if err := h.s.GetEngine().UpdateIdentity(ctx, userKey(user), user.UserName, user.FirstName); err != nil {
		h.getLogEntry().WithError(err).Error("cant update user identity")
	}

	if m.IsCommand() {
		return false, h.handleCommand(ctx, m, chat, user)
	}
	if answer, ok := ExtractAnswer(m.Text, h.marker); ok {
		return false, h.handleAnswer(ctx, m, chat, user, answer)
	}
	return true, nil
}

func (h *Quiz) handleAnswer(ctx context.Context, m *api.Message, chat *api.Chat, user *api.User, answer string) error {
	entry := h.getLogEntry().WithFields(log.Fields{
		"method":  "handleAnswer",
		"chat_id": chat.ID,
		"user_id": user.ID,
	})

	if answer == "" {
		h.reply(chat.ID, m.MessageID, "💡 "+fmt.Sprintf(i18n.Get("Write your answer after the marker, like this: %s paris", h.lang), h.marker))
		return nil
	}

	outcome, err := h.arbiter.Submit(ctx, userKey(user), answer)
	if err != nil {
		return errors.WithMessage(err, "cant arbitrate answer")
	}

	switch outcome {
	case quiz.OutcomeNoActiveRound:
		h.reply(chat.ID, m.MessageID, "ℹ️ "+i18n.Get("There is no active quiz right now, wait for the next one on schedule.", h.lang))

	case quiz.OutcomeAlreadyCredited:
		// only accurate for the re-submitting winner themselves, a second
		// distinct winner would still have been credited
		_, first, ok := h.s.GetEngine().FirstCredited()
		if ok && first != nil && first.FirstName != "" {
			h.reply(chat.ID, m.MessageID, "❌ "+fmt.Sprintf(i18n.Get("Too late! %s already answered this one!", h.lang), first.FirstName))
		} else {
			h.reply(chat.ID, m.MessageID, "❌ "+i18n.Get("This question has already been answered!", h.lang))
		}

	case quiz.OutcomeCorrect:
		score := h.s.GetEngine().Score(userKey(user))
		congrats := tool.ExecTemplate(i18n.Get(h.pickCongrats(), h.lang), map[string]any{
			"name": bot.GetFullName(user),
		})
		scoreLine := tool.ExecTemplate(i18n.Get("Your score: {{ .score }}", h.lang), map[string]any{
			"score": score,
		})
		h.reply(chat.ID, m.MessageID, congrats+"\n📊 "+scoreLine)
		entry.WithField("score", score).Info("user credited")

	case quiz.OutcomeIncorrect:
		// deliberately silent, replying to every wrong guess floods the chat
	}
	return nil
}

func (h *Quiz) handleCommand(ctx context.Context, m *api.Message, chat *api.Chat, user *api.User) error {
	switch m.Command() {
	case "start":
		return h.startCommand(ctx, chat)
	case "quiz":
		return h.quizCommand(ctx, chat, user)
	case "question":
		h.questionCommand(chat)
	case "leaderboard":
		h.leaderboardCommand(chat)
	case "schedule", "next_quiz":
		h.scheduleCommand(chat)
	case "profile":
		h.profileCommand(chat, user)
	case "achievements":
		h.achievementsCommand(chat, user)
	case "test_schedule":
		return h.testScheduleCommand(ctx, chat, user)
	case "reset_stats":
		return h.resetCommand(ctx, chat, user)
	case "active_chats":
		h.activeChatsCommand(chat, user)
	}
	return nil
}

func (h *Quiz) startCommand(ctx context.Context, chat *api.Chat) error {
	if err := h.s.GetEngine().AddChat(ctx, chat.ID); err != nil {
		return errors.WithMessage(err, "cant register chat")
	}

	lines := []string{
		"🤖 " + i18n.Get("Welcome to the quiz! Rounds run automatically on schedule:", h.lang),
		"",
	}
	for _, t := range h.s.GetSchedule().Times() {
		lines = append(lines, "• "+t)
	}
	lines = append(lines, "", "💡 "+fmt.Sprintf(i18n.Get("Answer in the chat when you see a question, the marker is %s", h.lang), h.marker))
	h.reply(chat.ID, 0, strings.Join(lines, "\n"))
	return nil
}

func (h *Quiz) quizCommand(ctx context.Context, chat *api.Chat, user *api.User) error {
	if !h.isChatAdmin(chat, user) {
		h.reply(chat.ID, 0, "❌ "+i18n.Get("This command is for chat administrators only!", h.lang))
		return nil
	}
	h.reply(chat.ID, 0, "🔄 "+i18n.Get("Starting a quiz round...", h.lang))
	report, err := h.s.GetTrigger().RunRound(ctx, []int64{chat.ID})
	if err != nil {
		return errors.WithMessage(err, "cant run round")
	}
	h.getLogEntry().WithFields(log.Fields{
		"delivered":  report.Delivered,
		"failed":     report.Failed,
		"empty_bank": report.EmptyBank,
	}).Info("manual round finished")
	return nil
}

func (h *Quiz) questionCommand(chat *api.Chat) {
	if q := h.s.GetEngine().CurrentQuestion(); q != nil {
		h.reply(chat.ID, 0, "📝 "+i18n.Get("CURRENT QUESTION:", h.lang)+"\n\n"+q.Prompt)
		return
	}
	h.reply(chat.ID, 0, "ℹ️ "+i18n.Get("No active question right now.", h.lang))
}

func (h *Quiz) leaderboardCommand(chat *api.Chat) {
	entries := h.s.GetEngine().Leaderboard(leaderboardSize)
	if len(entries) == 0 {
		h.reply(chat.ID, 0, "📊 "+i18n.Get("Nobody has scored yet, be the first!", h.lang))
		return
	}

	lines := []string{"🏆 " + i18n.Get("LEADERBOARD:", h.lang), ""}
	for i, entry := range entries {
		name := entry.Record.Username
		if name == "" {
			name = entry.Record.FirstName
		}
		if name == "" {
			name = "User" + entry.UserID
		}
		lines = append(lines, fmt.Sprintf("%d. %s: %d", i+1, name, entry.Record.Score))
	}
	lines = append(lines, "", "👥 "+fmt.Sprintf(i18n.Get("Total players: %d", h.lang), h.s.GetEngine().PlayerCount()))
	h.reply(chat.ID, 0, strings.Join(lines, "\n"))
}

func (h *Quiz) scheduleCommand(chat *api.Chat) {
	times := h.s.GetSchedule().Times()
	if len(times) == 0 {
		h.reply(chat.ID, 0, "📅 "+i18n.Get("Schedule is not configured.", h.lang))
		return
	}
	lines := []string{"🕐 " + i18n.Get("Quiz schedule:", h.lang), ""}
	for _, t := range times {
		lines = append(lines, "• "+t)
	}
	h.reply(chat.ID, 0, strings.Join(lines, "\n"))
}

func (h *Quiz) profileCommand(chat *api.Chat, user *api.User) {
	score := h.s.GetEngine().Score(userKey(user))
	if h.leveler != nil {
		h.reply(chat.ID, 0, h.leveler.ProfileText(userKey(user), user.FirstName, score, h.lang))
		return
	}
	h.reply(chat.ID, 0, "👤 "+fmt.Sprintf(i18n.Get("PROFILE: %s", h.lang), user.FirstName)+"\n⭐ "+fmt.Sprintf(i18n.Get("Points: %d", h.lang), score))
}

func (h *Quiz) achievementsCommand(chat *api.Chat, user *api.User) {
	score := h.s.GetEngine().Score(userKey(user))
	if h.leveler != nil {
		h.reply(chat.ID, 0, h.leveler.AchievementsText(userKey(user), user.FirstName, score, h.lang))
		return
	}
	h.reply(chat.ID, 0, "🎯 "+i18n.Get("No achievements yet, keep playing!", h.lang)+"\n⭐ "+fmt.Sprintf(i18n.Get("Points: %d", h.lang), score))
}

// testScheduleCommand exercises the scheduler's broadcast path on
// demand: one round to every registered chat, as a due slot would fire.
func (h *Quiz) testScheduleCommand(ctx context.Context, chat *api.Chat, user *api.User) error {
	if !h.isChatAdmin(chat, user) {
		h.reply(chat.ID, 0, "❌ "+i18n.Get("This command is for chat administrators only!", h.lang))
		return nil
	}
	chats := h.s.GetEngine().Chats()
	if len(chats) == 0 {
		h.reply(chat.ID, 0, "📊 "+i18n.Get("No active chats.", h.lang))
		return nil
	}
	h.reply(chat.ID, 0, "🔄 "+i18n.Get("Broadcasting a round to all active chats...", h.lang))
	report, err := h.s.GetTrigger().RunRound(ctx, chats)
	if err != nil {
		return errors.WithMessage(err, "cant run broadcast round")
	}
	h.getLogEntry().WithFields(log.Fields{
		"chats":      len(chats),
		"delivered":  report.Delivered,
		"failed":     report.Failed,
		"empty_bank": report.EmptyBank,
	}).Info("broadcast round finished")
	return nil
}

func (h *Quiz) resetCommand(ctx context.Context, chat *api.Chat, user *api.User) error {
	if !h.isChatAdmin(chat, user) {
		h.reply(chat.ID, 0, "❌ "+i18n.Get("This command is for chat administrators only!", h.lang))
		return nil
	}
	if err := h.s.GetEngine().ResetAll(ctx); err != nil {
		return errors.WithMessage(err, "cant reset stats")
	}
	h.reply(chat.ID, 0, "🔄 "+i18n.Get("All stats were reset, everyone starts from zero!", h.lang))
	h.getLogEntry().WithField("user_id", user.ID).Info("stats reset by admin")
	return nil
}

func (h *Quiz) activeChatsCommand(chat *api.Chat, user *api.User) {
	if !h.isChatAdmin(chat, user) {
		h.reply(chat.ID, 0, "❌ "+i18n.Get("This command is for chat administrators only!", h.lang))
		return
	}
	chats := h.s.GetEngine().Chats()
	if len(chats) == 0 {
		h.reply(chat.ID, 0, "📊 "+i18n.Get("No active chats.", h.lang))
		return
	}
	lines := []string{"📊 " + i18n.Get("ACTIVE CHATS:", h.lang), ""}
	for i, id := range chats {
		lines = append(lines, fmt.Sprintf("%d. %d", i+1, id))
	}
	h.reply(chat.ID, 0, strings.Join(lines, "\n"))
}

func (h *Quiz) isChatAdmin(chat *api.Chat, user *api.User) bool {
	if chat.Type == "private" {
		return true
	}
	chatMember, err := h.s.GetBot().GetChatMember(api.GetChatMemberConfig{
		ChatConfigWithUser: api.ChatConfigWithUser{
			UserID: user.ID,
			ChatConfig: api.ChatConfig{
				ChatID: chat.ID,
			},
		},
	})
	if err != nil {
		h.getLogEntry().WithError(err).WithField("chat_id", chat.ID).Error("cant get chat member")
		return false
	}
	return chatMember.IsCreator() || chatMember.IsAdministrator()
}

func (h *Quiz) reply(chatID int64, replyTo int, text string) {
	msg := api.NewMessage(chatID, text)
	if replyTo != 0 {
		msg.ReplyParameters.MessageID = replyTo
		msg.ReplyParameters.ChatID = chatID
		msg.ReplyParameters.AllowSendingWithoutReply = true
	}
	if _, err := h.s.GetBot().Send(msg); err != nil {
		h.getLogEntry().WithError(err).WithField("chat_id", chatID).Error("cant send reply")
	}
}

func (h *Quiz) pickCongrats() string {
	return congratsTemplates[tool.RandInt(0, len(congratsTemplates)-1)]
}

func userKey(user *api.User) string {
	return strconv.FormatInt(user.ID, 10)
}

func (h *Quiz) getLogEntry() *log.Entry {
	return log.WithField("context", "quiz")
}
