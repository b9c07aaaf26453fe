package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"doc-chat/internal/apperr"
	"doc-chat/internal/cache"
	"doc-chat/internal/models"
)

type fakeRetriever struct {
	context string
	err     error
	calls   int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, fileName, query string) (string, error) {
	f.calls++
	return f.context, f.err
}

type fakeCompleter struct {
	answer string
	err    error
	calls  int
	prompt string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	return f.answer, f.err
}

func newService(r *fakeRetriever, c *fakeCompleter) *Service {
	return NewService(NewGenerator(r, c), cache.New(cache.Config{MaxEntries: 10}))
}

func TestGeneratePromptContents(t *testing.T) {
	r := &fakeRetriever{context: "page one text\nImage URL: https://example.com/x.png\n"}
	c := &fakeCompleter{answer: "done"}
	g := NewGenerator(r, c)

	if _, err := g.Generate(context.Background(), "manual.pdf", "how do I reset it?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"page one text",
		"Answer this question: how do I reset it?",
		"include the image url",
		"brief unless user specifically ask",
		"Markdown text",
	} {
		if !strings.Contains(c.prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, c.prompt)
		}
	}
}

func TestAnswerCachesRepeatQuestions(t *testing.T) {
	r := &fakeRetriever{context: "ctx"}
	c := &fakeCompleter{answer: "the answer"}
	svc := newService(r, c)

	first := svc.Answer(context.Background(), "manual.pdf", "q?")
	second := svc.Answer(context.Background(), "manual.pdf", "q?")

	if first != "the answer" || second != "the answer" {
		t.Errorf("got %q / %q, want the completion answer", first, second)
	}
	if c.calls != 1 {
		t.Errorf("expected 1 completion call, got %d", c.calls)
	}
	if r.calls != 1 {
		t.Errorf("expected 1 retrieval, got %d", r.calls)
	}
}

func TestAnswerDistinctKeysRecompute(t *testing.T) {
	r := &fakeRetriever{context: "ctx"}
	c := &fakeCompleter{answer: "a"}
	svc := newService(r, c)

	svc.Answer(context.Background(), "manual.pdf", "q?")
	svc.Answer(context.Background(), "manual.pdf", "q? ") // whitespace matters
	svc.Answer(context.Background(), "other.pdf", "q?")

	if c.calls != 3 {
		t.Errorf("expected 3 completion calls for 3 distinct keys, got %d", c.calls)
	}
}

func TestAnswerServiceErrorFallback(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"throttled", apperr.Newf(apperr.ServiceThrottled, "slow down"), models.FallbackServiceMsg},
		{"rejected", apperr.Newf(apperr.ServiceRejected, "access denied"), models.FallbackServiceMsg},
		{"unknown", errors.New("boom"), models.FallbackGenericMsg},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(&fakeRetriever{context: "ctx"}, &fakeCompleter{err: tt.err})
			got := svc.Answer(context.Background(), "manual.pdf", "q?")
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAnswerRetrievalErrorFallback(t *testing.T) {
	r := &fakeRetriever{err: apperr.Newf(apperr.RetrievalFailure, "store down")}
	c := &fakeCompleter{}
	svc := newService(r, c)

	got := svc.Answer(context.Background(), "manual.pdf", "q?")
	if got != models.FallbackGenericMsg {
		t.Errorf("got %q, want generic fallback", got)
	}
	if c.calls != 0 {
		t.Errorf("completion must not run after retrieval failure, got %d calls", c.calls)
	}
}

func TestAnswerFallbacksAreNotCached(t *testing.T) {
	r := &fakeRetriever{context: "ctx"}
	c := &fakeCompleter{err: apperr.Newf(apperr.ServiceThrottled, "throttled")}
	svc := newService(r, c)

	if got := svc.Answer(context.Background(), "manual.pdf", "q?"); got != models.FallbackServiceMsg {
		t.Fatalf("got %q, want service fallback", got)
	}

	// Service recovers; the same question must be recomputed.
	c.err = nil
	c.answer = "real answer"
	if got := svc.Answer(context.Background(), "manual.pdf", "q?"); got != "real answer" {
		t.Errorf("got %q, want recomputed answer after transient failure", got)
	}
	if c.calls != 2 {
		t.Errorf("expected retry after failure, got %d calls", c.calls)
	}
}
