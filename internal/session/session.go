package session

import (
	"doc-chat/internal/helper"
	"doc-chat/internal/models"
)

// Session holds the state of one chat: the selected document and the
// ordered transcript. Callers pass it explicitly; there is no ambient
// selection state.
type Session struct {
	id         string
	selected   string
	transcript []models.Message
}

func New() *Session {
	id, _ := helper.GenerateUUID()
	return &Session{id: id}
}

// ID identifies this session in logs.
func (s *Session) ID() string { return s.id }

// SelectDocument switches the session to the named document.
func (s *Session) SelectDocument(name string) { s.selected = name }

func (s *Session) SelectedDocument() string { return s.selected }

// ChatEnabled reports whether a document has been selected.
func (s *Session) ChatEnabled() bool { return s.selected != "" }

// Append adds one transcript entry.
func (s *Session) Append(role, content string) {
	s.transcript = append(s.transcript, models.Message{Role: role, Content: content})
}

// Transcript returns a copy of the messages in order.
func (s *Session) Transcript() []models.Message {
	out := make([]models.Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Reset clears the transcript and selection, starting a new chat.
func (s *Session) Reset() {
	s.selected = ""
	s.transcript = nil
}
