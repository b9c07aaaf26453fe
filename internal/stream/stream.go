package stream

import (
	"context"
	"strings"
	"time"
)

// Stream yields the words of a finished answer one at a time, each with a
// trailing space, optionally paced for progressive display. A stream is
// exhausted after its last word; build a fresh one to replay.
type Stream struct {
	tokens []string
	idx    int
	delay  time.Duration
}

type Option func(*Stream)

// WithDelay paces the stream with a fixed delay before each token. Zero
// disables pacing.
func WithDelay(d time.Duration) Option {
	return func(s *Stream) { s.delay = d }
}

// Words splits text on whitespace into word tokens.
func Words(text string, opts ...Option) *Stream {
	fields := strings.Fields(text)
	tokens := make([]string, len(fields))
	for i, f := range fields {
		tokens[i] = f + " "
	}
	s := &Stream{tokens: tokens}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Next blocks for the pacing delay and returns the next token. The second
// return is false once the stream is exhausted or ctx is done.
func (s *Stream) Next(ctx context.Context) (string, bool) {
	if s.idx >= len(s.tokens) {
		return "", false
	}
	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return "", false
		case <-t.C:
		}
	} else if ctx.Err() != nil {
		return "", false
	}
	tok := s.tokens[s.idx]
	s.idx++
	return tok, true
}

// Chan drains the stream into a channel, closed on exhaustion or cancel.
func (s *Stream) Chan(ctx context.Context) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		for {
			tok, ok := s.Next(ctx)
			if !ok {
				return
			}
			select {
			case ch <- tok:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
