package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure so callers can react per stage instead
// of collapsing everything into one generic catch.
type Kind int

const (
	Unknown Kind = iota
	EmbeddingFailure
	RetrievalFailure
	ServiceThrottled
	ServiceRejected
)

func (k Kind) String() string {
	switch k {
	case EmbeddingFailure:
		return "embedding_failure"
	case RetrievalFailure:
		return "retrieval_failure"
	case ServiceThrottled:
		return "service_throttled"
	case ServiceRejected:
		return "service_rejected"
	default:
		return "unknown"
	}
}

// Error tags a cause with its pipeline stage.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with the given kind. A nil err returns nil.
func New(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// Newf wraps a formatted error with the given kind.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf reports the kind of err, or Unknown if it carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}
