package store

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// UserTable is a string-keyed table of user records that keeps insertion
// order across JSON round trips. The order is load-bearing: leaderboard
// ties resolve by record creation order, so the serialized object must
// preserve key order instead of going through an unordered map.
type UserTable struct {
	order []string
	users map[string]*UserRecord
}

func NewUserTable() *UserTable {
	return &UserTable{
		users: make(map[string]*UserRecord),
	}
}

func (t *UserTable) Get(userID string) (*UserRecord, bool) {
	rec, ok := t.users[userID]
	return rec, ok
}

// Put inserts or replaces a record. A replaced record keeps its original
// position.
func (t *UserTable) Put(userID string, rec *UserRecord) {
	if _, ok := t.users[userID]; !ok {
		t.order = append(t.order, userID)
	}
	t.users[userID] = rec
}

func (t *UserTable) Len() int {
	return len(t.order)
}

// Each visits records in insertion order until fn returns false.
func (t *UserTable) Each(fn func(userID string, rec *UserRecord) bool) {
	for _, userID := range t.order {
		if !fn(userID, t.users[userID]) {
			return
		}
	}
}

func (t *UserTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, userID := range t.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(userID)
		if err != nil {
			return nil, errors.Wrap(err, "marshal user key")
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(t.users[userID])
		if err != nil {
			return nil, errors.Wrapf(err, "marshal user %s", userID)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (t *UserTable) UnmarshalJSON(data []byte) error {
	t.order = nil
	t.users = make(map[string]*UserRecord)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return errors.Wrap(err, "read users object")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("users document is not an object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return errors.Wrap(err, "read user key")
		}
		userID, ok := tok.(string)
		if !ok {
			return errors.New("user key is not a string")
		}
		rec := &UserRecord{}
		if err := dec.Decode(rec); err != nil {
			return errors.Wrapf(err, "decode user %s", userID)
		}
		t.Put(userID, rec)
	}
	return nil
}
