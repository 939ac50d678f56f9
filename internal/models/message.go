package models

import (
	"time"

	"github.com/google/uuid"
)

// ContentKind tells the renderer how to interpret Message.Content
type ContentKind string

const (
	// KindUnknown means the server did not tag the reply; the renderer sniffs
	// the content for an embedded chart payload.
	KindUnknown ContentKind = ""
	KindText    ContentKind = "text"
	KindChart   ContentKind = "chart"
)

// Message is one transcript entry. Values are never mutated after being
// appended to a transcript.
type Message struct {
	ID          string
	Role        string // "user" or "model"
	Content     string
	Kind        ContentKind
	Options     []string // follow-up option labels
	ShowOptions bool
	CreatedAt   time.Time
}

// NewUserMessage builds a message typed by the user
func NewUserMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		Kind:      KindText,
		CreatedAt: time.Now(),
	}
}

// NewModelMessage builds a plain-text model message
func NewModelMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleModel,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// IsModel reports whether the message came from the assistant
func (m Message) IsModel() bool {
	return m.Role == RoleModel
}

// HasOptions reports whether follow-up buttons should be shown
func (m Message) HasOptions() bool {
	return m.ShowOptions && len(m.Options) > 0
}

// HistoryEntry returns the wire form of the message
func (m Message) HistoryEntry() HistoryEntry {
	return HistoryEntry{Role: m.Role, Content: m.Content}
}
