package store

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/quizbot/resources"
)

// Document field names are a compatibility contract with existing data
// directories, do not rename them.

// DocTime writes RFC3339 but accepts the timezone-less ISO-8601 stamps
// that earlier deployments wrote into used_date. Rejecting those would
// send a perfectly good bank through the self-heal path.
type DocTime struct {
	time.Time
}

var docTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

func (t DocTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(time.RFC3339Nano))
}

func (t *DocTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "read time string")
	}
	for _, layout := range docTimeLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}
	return errors.Errorf("unsupported time stamp %q", raw)
}

type Question struct {
	ID       int      `json:"id"`
	Prompt   string   `json:"question"`
	Answer   string   `json:"answer"`
	Used     bool     `json:"used"`
	UsedDate *DocTime `json:"used_date"`
}

type QuestionsDoc struct {
	Questions []Question `json:"questions"`
}

type UserRecord struct {
	Score     int    `json:"score"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

// StateDoc is the round/user document. One round exists process-wide:
// CurrentQuestion nil means the round is idle and AnsweredUsers must be
// empty.
type StateDoc struct {
	CurrentQuestion *Question  `json:"current_question"`
	AnsweredUsers   []string   `json:"answered_users"`
	Users           *UserTable `json:"users"`
	ActiveChats     []int64    `json:"active_chats"`
}

type ScheduleEntry struct {
	Time    string `json:"time"`
	Enabled bool   `json:"enabled"`
}

type SettingsDoc struct {
	QuizSchedule           []ScheduleEntry `json:"quiz_schedule"`
	AutoResetUsedQuestions bool            `json:"auto_reset_used_questions"`
	ResetAfterDays         int             `json:"reset_after_days"`
}

func DefaultState() *StateDoc {
	return &StateDoc{
		CurrentQuestion: nil,
		AnsweredUsers:   []string{},
		Users:           NewUserTable(),
		ActiveChats:     []int64{},
	}
}

func DefaultSettings() *SettingsDoc {
	return &SettingsDoc{
		QuizSchedule: []ScheduleEntry{
			{Time: "12:00", Enabled: true},
			{Time: "18:00", Enabled: true},
		},
		AutoResetUsedQuestions: true,
		ResetAfterDays:         30,
	}
}

// SeedQuestions returns the embedded starter bank, used whenever the
// questions document is absent or unreadable.
func SeedQuestions() *QuestionsDoc {
	doc := &QuestionsDoc{Questions: []Question{}}
	raw, err := resources.FS.ReadFile("seed/questions.json")
	if err != nil {
		log.WithError(err).Error("cant read seed questions")
		return doc
	}
	if err := json.Unmarshal(raw, doc); err != nil {
		log.WithError(err).Error("cant unmarshal seed questions")
		return &QuestionsDoc{Questions: []Question{}}
	}
	return doc
}
