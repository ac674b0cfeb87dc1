// Package services – MockResponder
//
// MockResponder stands in for a language model: after a random delay it
// returns one of a fixed set of canned replies. It satisfies store.Responder.
package services

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-chat-store/internal/observability"
)

// Default delay window of a generated reply.
const (
	DefaultResponderMinDelay = 2 * time.Second
	DefaultResponderMaxDelay = 5 * time.Second
)

// CannedResponses are the replies MockResponder chooses from.
var CannedResponses = []string{
	"That's an interesting question! Let me think about that...",
	"I understand what you're asking. Here's what I think...",
	"Great question! Based on my knowledge, I would say...",
	"I'm processing your request. Here's my response...",
	"Thanks for sharing that with me. My thoughts are...",
	"I appreciate your question. Let me provide some insights...",
	"That's a fascinating topic! Here's my perspective...",
	"I'm glad you asked that. Here's what I can tell you...",
}

// MockResponder picks a canned reply uniformly at random after a delay drawn
// uniformly from [MinDelay, MaxDelay). It is safe for concurrent use.
type MockResponder struct {
	MinDelay time.Duration
	MaxDelay time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewMockResponder returns a responder with the given delay window. A nil
// rnd uses a time-seeded source.
func NewMockResponder(minDelay, maxDelay time.Duration, rnd *rand.Rand) *MockResponder {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x2545f4914f6cdd1d))
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &MockResponder{MinDelay: minDelay, MaxDelay: maxDelay, rnd: rnd}
}

// Generate returns a canned reply, or ctx's error if it is cancelled first.
func (r *MockResponder) Generate(ctx context.Context, prompt string) (string, error) {
	delay, reply := r.pick()

	ctx, span := observability.Tracer("services/responder").Start(ctx, "Generate",
		trace.WithAttributes(
			attribute.Int("prompt.runes", len([]rune(prompt))),
			attribute.Int64("delay.ms", delay.Milliseconds()),
		),
	)
	defer span.End()

	if err := sleepCtx(ctx, delay); err != nil {
		span.RecordError(err)
		return "", err
	}
	return reply, nil
}

func (r *MockResponder) pick() (time.Duration, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rnd == nil {
		r.rnd = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x2545f4914f6cdd1d))
	}
	delay := r.MinDelay
	if span := r.MaxDelay - r.MinDelay; span > 0 {
		delay += time.Duration(r.rnd.Int64N(int64(span)))
	}
	return delay, CannedResponses[r.rnd.IntN(len(CannedResponses))]
}
