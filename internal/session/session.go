// Package session holds the input controller state: the draft being typed,
// the busy flag, the selected dataset and the request generation counter.
package session

import (
	"strings"
	"sync"

	"github.com/evolvenxt/tarschat/internal/models"
)

// Ticket identifies one outbound request. Generation increases with every
// request issued by the session; only the reply carrying the current
// generation is applied to the transcript.
type Ticket struct {
	Text       string
	Generation uint64
	Dataset    models.Dataset
}

// Session is the owned state of one chat view
type Session struct {
	mu         sync.Mutex
	draft      string
	busy       bool
	dataset    models.Dataset
	generation uint64
}

// New creates an idle session with the given dataset selected
func New(dataset models.Dataset) *Session {
	return &Session{dataset: dataset}
}

// SetDraft replaces the draft text
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = text
}

// Draft returns the current draft text
func (s *Session) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Busy reports whether a request is awaiting its reply
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Dataset returns the selected dataset
func (s *Session) Dataset() models.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dataset
}

// SelectDataset changes the dataset used by subsequent requests
func (s *Session) SelectDataset(ds models.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataset = ds
}

// Generation returns the generation of the most recent request
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Submit accepts the draft for sending. It is a no-op (ok == false) when the
// draft is empty or whitespace, or while a request is in flight. On success
// the draft is cleared and the session becomes busy.
func (s *Session) Submit() (Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy || strings.TrimSpace(s.draft) == "" {
		return Ticket{}, false
	}

	text := s.draft
	s.draft = ""
	return s.beginLocked(text), true
}

// Begin starts a request on behalf of a follow-up option. Unlike Submit it
// is not gated by the busy flag: the new request supersedes any reply still
// in flight, and the draft is left untouched.
func (s *Session) Begin(text string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beginLocked(text)
}

func (s *Session) beginLocked(text string) Ticket {
	s.generation++
	s.busy = true
	return Ticket{Text: text, Generation: s.generation, Dataset: s.dataset}
}

// Finish marks the request with the given generation as complete. It returns
// false when a newer request has been issued since, in which case the reply
// is stale and the session stays busy until the newer one finishes.
func (s *Session) Finish(generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		return false
	}
	s.busy = false
	return true
}
