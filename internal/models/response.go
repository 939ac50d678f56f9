package models

// HistoryEntry is a transcript message as replayed to the API
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the POST body sent to the chat endpoint
type ChatRequest struct {
	History []HistoryEntry `json:"history"`
	Message string         `json:"message"`
	Dataset *string        `json:"dataset"`
}

// NewChatRequest builds a request from a transcript snapshot
func NewChatRequest(history []Message, message string, dataset Dataset) ChatRequest {
	entries := make([]HistoryEntry, 0, len(history))
	for _, msg := range history {
		entries = append(entries, msg.HistoryEntry())
	}
	return ChatRequest{
		History: entries,
		Message: message,
		Dataset: dataset.Wire(),
	}
}

// Reply is a parsed chat endpoint response
type Reply struct {
	Text        string // reply text, or serialized chart payload
	Kind        ContentKind
	Options     []string
	ShowOptions bool
}

// Message converts the reply into a model transcript message
func (r Reply) Message() Message {
	msg := NewModelMessage(r.Text)
	msg.Kind = r.Kind
	if len(r.Options) > 0 {
		msg.Options = append([]string(nil), r.Options...)
	}
	msg.ShowOptions = r.ShowOptions
	return msg
}
