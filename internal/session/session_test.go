package session

import (
	"testing"

	"doc-chat/internal/models"
)

func TestSelectDocument(t *testing.T) {
	s := New()
	if s.ChatEnabled() {
		t.Error("chat must be disabled before a document is selected")
	}
	s.SelectDocument("manual.pdf")
	if !s.ChatEnabled() {
		t.Error("chat must be enabled after selection")
	}
	if s.SelectedDocument() != "manual.pdf" {
		t.Errorf("got %q, want manual.pdf", s.SelectedDocument())
	}
}

func TestTranscriptOrder(t *testing.T) {
	s := New()
	s.Append(models.RoleUser, "hello")
	s.Append(models.RoleAssistant, "hi there")
	s.Append(models.RoleUser, "thanks")

	tr := s.Transcript()
	if len(tr) != 3 {
		t.Fatalf("got %d messages, want 3", len(tr))
	}
	if tr[0].Role != models.RoleUser || tr[1].Role != models.RoleAssistant {
		t.Error("transcript roles out of order")
	}
	if tr[1].Content != "hi there" {
		t.Errorf("got %q, want assistant reply", tr[1].Content)
	}
}

func TestTranscriptIsACopy(t *testing.T) {
	s := New()
	s.Append(models.RoleUser, "original")
	tr := s.Transcript()
	tr[0].Content = "mutated"
	if s.Transcript()[0].Content != "original" {
		t.Error("callers must not be able to mutate the transcript")
	}
}

func TestReset(t *testing.T) {
	s := New()
	id := s.ID()
	s.SelectDocument("manual.pdf")
	s.Append(models.RoleUser, "hello")
	s.Reset()

	if s.ChatEnabled() {
		t.Error("reset must clear the selection")
	}
	if len(s.Transcript()) != 0 {
		t.Error("reset must clear the transcript")
	}
	if s.ID() != id {
		t.Error("reset must keep the session identity")
	}
}
