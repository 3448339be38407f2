package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestStateRoundTrip(t *testing.T) {
	t.Parallel()

	s := New(t.TempDir())

	doc := DefaultState()
	doc.CurrentQuestion = &Question{ID: 7, Prompt: "prompt", Answer: "answer"}
	doc.AnsweredUsers = []string{"100", "200"}
	doc.ActiveChats = []int64{-1001}
	doc.Users.Put("100", &UserRecord{Score: 3, Username: "alice", FirstName: "Alice"})

	if err := s.PutState(doc); err != nil {
		t.Fatalf("put state: %v", err)
	}

	got := s.State()
	if got.CurrentQuestion == nil || got.CurrentQuestion.ID != 7 {
		t.Fatalf("unexpected current question: %+v", got.CurrentQuestion)
	}
	if len(got.AnsweredUsers) != 2 || got.AnsweredUsers[0] != "100" {
		t.Fatalf("unexpected answered users: %v", got.AnsweredUsers)
	}
	if len(got.ActiveChats) != 1 || got.ActiveChats[0] != -1001 {
		t.Fatalf("unexpected active chats: %v", got.ActiveChats)
	}
	rec, ok := got.Users.Get("100")
	if !ok || rec.Score != 3 || rec.Username != "alice" {
		t.Fatalf("unexpected user record: %+v", rec)
	}
}

func TestMissingDocumentsYieldDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := New(dir)

	state := s.State()
	if state.CurrentQuestion != nil {
		t.Fatalf("fresh state should be idle")
	}
	if state.Users == nil || state.AnsweredUsers == nil || state.ActiveChats == nil {
		t.Fatalf("fresh state has nil fields: %+v", state)
	}

	settings := s.Settings()
	if len(settings.QuizSchedule) != 2 {
		t.Fatalf("unexpected default schedule: %v", settings.QuizSchedule)
	}
	if !settings.AutoResetUsedQuestions || settings.ResetAfterDays != 30 {
		t.Fatalf("unexpected default settings: %+v", settings)
	}

	questions := s.Questions()
	if len(questions.Questions) == 0 {
		t.Fatalf("fresh bank should be seeded")
	}

	// a heal rewrites the file so the next read does not heal again
	for _, name := range []string{"users.json", "settings.json", "questions.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("healed document %s not written: %v", name, err)
		}
	}
}

func TestCorruptDocumentHeals(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := New(dir)

	for _, content := range []string{"", "   ", "{not json", `["wrong","shape"]`} {
		if err := os.WriteFile(filepath.Join(dir, "users.json"), []byte(content), 0o644); err != nil {
			t.Fatalf("write corrupt document: %v", err)
		}
		state := s.State()
		if state.CurrentQuestion != nil || state.Users == nil {
			t.Fatalf("corrupt document %q did not heal to default: %+v", content, state)
		}
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := New(dir)

	doc := &QuestionsDoc{Questions: []Question{
		{ID: 1, Prompt: "a", Answer: "b", Used: true, UsedDate: &DocTime{Time: time.Now()}},
	}}
	for i := 0; i < 5; i++ {
		if err := s.PutQuestions(doc); err != nil {
			t.Fatalf("put questions: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if strings.Contains(entry.Name(), ".tmp-") {
			t.Fatalf("leftover temp file: %s", entry.Name())
		}
	}
}

func TestQuestionsAcceptTimezonelessUsedDate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := New(dir)

	// the stamp format earlier deployments wrote: no timezone suffix
	raw := `{"questions": [
		{"id": 1, "question": "q1", "answer": "a1", "used": true, "used_date": "2026-08-01T12:00:00.123456"},
		{"id": 2, "question": "q2", "answer": "a2", "used": true, "used_date": "2026-08-02T09:30:00Z"},
		{"id": 3, "question": "q3", "answer": "a3", "used": false, "used_date": null}
	]}`
	if err := os.WriteFile(filepath.Join(dir, "questions.json"), []byte(raw), 0o644); err != nil {
		t.Fatalf("write document: %v", err)
	}

	doc := s.Questions()
	if len(doc.Questions) != 3 {
		t.Fatalf("deployed bank replaced by seed: %d questions", len(doc.Questions))
	}
	want := time.Date(2026, 8, 1, 12, 0, 0, 123456000, time.UTC)
	if doc.Questions[0].UsedDate == nil || !doc.Questions[0].UsedDate.Equal(want) {
		t.Fatalf("timezone-less stamp not parsed: %v", doc.Questions[0].UsedDate)
	}
	if doc.Questions[1].UsedDate == nil || !doc.Questions[1].UsedDate.Equal(time.Date(2026, 8, 2, 9, 30, 0, 0, time.UTC)) {
		t.Fatalf("rfc3339 stamp not parsed: %v", doc.Questions[1].UsedDate)
	}

	// rewriting and reloading keeps the stamps
	if err := s.PutQuestions(doc); err != nil {
		t.Fatalf("put questions: %v", err)
	}
	reloaded := s.Questions()
	if len(reloaded.Questions) != 3 {
		t.Fatalf("bank lost on rewrite: %d questions", len(reloaded.Questions))
	}
	if reloaded.Questions[0].UsedDate == nil || !reloaded.Questions[0].UsedDate.Equal(want) {
		t.Fatalf("stamp lost on rewrite: %v", reloaded.Questions[0].UsedDate)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	t.Parallel()

	s := New(t.TempDir())

	doc := DefaultState()
	doc.Users.Put("1", &UserRecord{Score: 10})
	if err := s.PutState(doc); err != nil {
		t.Fatalf("put state: %v", err)
	}
	if err := s.PutSettings(&SettingsDoc{ResetAfterDays: 7}); err != nil {
		t.Fatalf("put settings: %v", err)
	}

	if err := s.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if s.State().Users.Len() != 0 {
		t.Fatalf("reset did not wipe users")
	}
	if s.Settings().ResetAfterDays != 30 {
		t.Fatalf("reset did not restore settings")
	}
	if len(s.Questions().Questions) == 0 {
		t.Fatalf("reset did not reseed questions")
	}
}
