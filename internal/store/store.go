package store

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/quizbot/internal/observability"
)

const (
	questionsFile = "questions.json"
	stateFile     = "users.json"
	settingsFile  = "settings.json"
)

// Store persists the three quiz documents as JSON files. A read of a
// missing or malformed document yields that document's default and
// rewrites the file with it, trading the corrupt data for a working
// deployment. Writes land in a temp file first and are renamed into
// place, so a concurrent reader never observes a torn document.
//
// The store guarantees single-call durability only; read-modify-write
// atomicity is the callers' critical sections.
type Store struct {
	dir string
	log *log.Entry
}

func New(dir string) *Store {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		log.WithError(err).WithField("dir", dir).Fatal("cant create data dir")
	}
	return &Store{
		dir: dir,
		log: log.WithField("context", "store"),
	}
}

func (s *Store) Questions() *QuestionsDoc {
	doc := &QuestionsDoc{}
	if err := s.load(questionsFile, doc); err != nil {
		doc = SeedQuestions()
		s.heal(questionsFile, err, doc)
	}
	if doc.Questions == nil {
		doc.Questions = []Question{}
	}
	return doc
}

func (s *Store) PutQuestions(doc *QuestionsDoc) error {
	return s.write(questionsFile, doc)
}

func (s *Store) State() *StateDoc {
	doc := &StateDoc{}
	if err := s.load(stateFile, doc); err != nil {
		doc = DefaultState()
		s.heal(stateFile, err, doc)
	}
	normalizeState(doc)
	return doc
}

func (s *Store) PutState(doc *StateDoc) error {
	normalizeState(doc)
	return s.write(stateFile, doc)
}

func (s *Store) Settings() *SettingsDoc {
	doc := &SettingsDoc{}
	if err := s.load(settingsFile, doc); err != nil {
		doc = DefaultSettings()
		s.heal(settingsFile, err, doc)
	}
	return doc
}

func (s *Store) PutSettings(doc *SettingsDoc) error {
	return s.write(settingsFile, doc)
}

// Reset rewrites all three documents with their seeded defaults.
func (s *Store) Reset() error {
	if err := s.write(questionsFile, SeedQuestions()); err != nil {
		return err
	}
	if err := s.write(stateFile, DefaultState()); err != nil {
		return err
	}
	return s.write(settingsFile, DefaultSettings())
}

// Upstream wrote documents with absent keys, make sure they read back as
// usable zero values.
func normalizeState(doc *StateDoc) {
	if doc.AnsweredUsers == nil {
		doc.AnsweredUsers = []string{}
	}
	if doc.Users == nil {
		doc.Users = NewUserTable()
	}
	if doc.ActiveChats == nil {
		doc.ActiveChats = []int64{}
	}
}

func (s *Store) load(name string, out any) error {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return errors.Wrap(err, "read document")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return errors.New("document is empty")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, "unmarshal document")
	}
	return nil
}

func (s *Store) heal(name string, cause error, def any) {
	s.log.WithError(cause).WithField("document", name).Warn("document missing or malformed, resetting to default")
	observability.RecordDocumentHeal(name)
	if err := s.write(name, def); err != nil {
		s.log.WithError(err).WithField("document", name).Error("cant write default document")
	}
}

func (s *Store) write(name string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "marshal %s", name)
	}
	tmp, err := os.CreateTemp(s.dir, "."+name+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "create temp for %s", name)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "write temp for %s", name)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close temp for %s", name)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return errors.Wrapf(err, "replace %s", name)
	}
	return nil
}
