// Package transcript holds the in-memory, append-only list of chat messages.
package transcript

import (
	"sync"

	"github.com/evolvenxt/tarschat/internal/models"
)

// Store is an ordered, append-only message list. It never edits, removes or
// deduplicates entries and has no capacity bound.
type Store struct {
	mu       sync.RWMutex
	messages []models.Message
}

// New creates a store seeded with a single model greeting.
// An empty greeting produces an empty store.
func New(greeting string) *Store {
	s := &Store{}
	if greeting != "" {
		s.messages = append(s.messages, models.NewModelMessage(greeting))
	}
	return s
}

// Append adds msg to the end of the transcript
func (s *Store) Append(msg models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, cloneMessage(msg))
}

// Messages returns a snapshot of the transcript in order
func (s *Store) Messages() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Message, len(s.messages))
	for i, m := range s.messages {
		out[i] = cloneMessage(m)
	}
	return out
}

// Len returns the number of messages
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Last returns the most recent message, if any
func (s *Store) Last() (models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.messages) == 0 {
		return models.Message{}, false
	}
	return cloneMessage(s.messages[len(s.messages)-1]), true
}

// LastModel returns the most recent model message, if any
func (s *Store) LastModel() (models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].IsModel() {
			return cloneMessage(s.messages[i]), true
		}
	}
	return models.Message{}, false
}

// cloneMessage copies the options slice so callers cannot mutate stored entries
func cloneMessage(m models.Message) models.Message {
	if m.Options != nil {
		m.Options = append([]string(nil), m.Options...)
	}
	return m
}
