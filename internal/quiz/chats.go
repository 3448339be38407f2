package quiz

import (
	"github.com/iamwavecut/quizbot/internal/store"
)

// Registry is a view over the broadcast chat set of the state document.
// Mutations must happen inside the engine's state critical section.
type Registry struct {
	doc *store.StateDoc
}

func NewRegistry(doc *store.StateDoc) Registry {
	return Registry{doc: doc}
}

// Add inserts the chat, returns false when it was already subscribed.
func (r Registry) Add(chatID int64) bool {
	for _, id := range r.doc.ActiveChats {
		if id == chatID {
			return false
		}
	}
	r.doc.ActiveChats = append(r.doc.ActiveChats, chatID)
	return true
}

// Remove deletes the chat, returns false when it was not subscribed.
func (r Registry) Remove(chatID int64) bool {
	for i, id := range r.doc.ActiveChats {
		if id == chatID {
			r.doc.ActiveChats = append(r.doc.ActiveChats[:i], r.doc.ActiveChats[i+1:]...)
			return true
		}
	}
	return false
}

func (r Registry) List() []int64 {
	chats := make([]int64, len(r.doc.ActiveChats))
	copy(chats, r.doc.ActiveChats)
	return chats
}
