package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := New(ServiceThrottled, errors.New("too many requests"))
	if got := KindOf(err); got != ServiceThrottled {
		t.Errorf("KindOf = %v, want ServiceThrottled", got)
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("answering: %w", New(RetrievalFailure, errors.New("search down")))
	if got := KindOf(err); got != RetrievalFailure {
		t.Errorf("KindOf = %v, want RetrievalFailure", got)
	}
}

func TestKindOfPlainError(t *testing.T) {
	if got := KindOf(errors.New("plain")); got != Unknown {
		t.Errorf("KindOf = %v, want Unknown", got)
	}
}

func TestNewNil(t *testing.T) {
	if err := New(EmbeddingFailure, nil); err != nil {
		t.Errorf("New with nil cause = %v, want nil", err)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("dial timeout")
	err := New(EmbeddingFailure, cause)
	if !errors.Is(err, cause) {
		t.Error("wrapped error should match its cause via errors.Is")
	}
}

func TestErrorString(t *testing.T) {
	err := Newf(ServiceRejected, "model %s denied", "m1")
	want := "service_rejected: model m1 denied"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
