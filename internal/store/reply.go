package store

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-chat-store/internal/domain"
	"github.com/tbourn/go-chat-store/internal/observability"
)

// Causes attached to a cancelled reply task.
var (
	ErrChatroomDeleted = errors.New("chatroom deleted")
	ErrLoggedOut       = errors.New("logged out")
	ErrReplyCancelled  = errors.New("reply cancelled")
	ErrNoResponder     = errors.New("no responder configured")
)

// ReplyHandle tracks one scheduled AI reply.
type ReplyHandle struct {
	id         uint64
	chatroomID string

	ctx    context.Context
	cancel context.CancelCauseFunc
	done   chan struct{}

	// Written once before done is closed.
	msg *domain.Message
	err error
}

// ChatroomID returns the chatroom the reply belongs to.
func (h *ReplyHandle) ChatroomID() string { return h.chatroomID }

// Done is closed when the task has finished, successfully or not.
func (h *ReplyHandle) Done() <-chan struct{} { return h.done }

// Cancel stops the task if it has not appended its message yet.
func (h *ReplyHandle) Cancel() { h.cancel(ErrReplyCancelled) }

// Result returns the appended AI message, or the reason nothing was
// appended. It must only be called after Done is closed.
func (h *ReplyHandle) Result() (*domain.Message, error) {
	return h.msg, h.err
}

// Wait blocks until the task finishes or ctx is done.
func (h *ReplyHandle) Wait(ctx context.Context) (*domain.Message, error) {
	select {
	case <-h.done:
		return h.msg, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// SendMessage appends a user message to chatroomID right away and schedules
// a reply task. After the reply delay the task asks the responder for text
// and appends it as an AI message, unless the chatroom was deleted, the user
// logged out, or the handle was cancelled in the meantime.
//
// An empty chatroomID sends nothing and returns a nil handle. An unknown
// chatroomID gets an implicit bucket, as with AddMessage.
func (s *ChatStore) SendMessage(chatroomID, content string, image *string) (domain.Message, *ReplyHandle) {
	msg, h, _ := s.send(chatroomID, content, image, false)
	return msg, h
}

// SendToChatroom is SendMessage restricted to existing chatrooms. The
// existence check and the append happen under one lock, so a concurrent
// DeleteChatroom either wins and nothing is sent (ok is false) or loses and
// cancels the reply it scheduled.
func (s *ChatStore) SendToChatroom(chatroomID, content string, image *string) (msg domain.Message, h *ReplyHandle, ok bool) {
	return s.send(chatroomID, content, image, true)
}

func (s *ChatStore) send(chatroomID, content string, image *string, mustExist bool) (domain.Message, *ReplyHandle, bool) {
	if chatroomID == "" {
		return domain.Message{}, nil, false
	}

	s.mu.Lock()
	if mustExist && s.indexLocked(chatroomID) < 0 {
		s.mu.Unlock()
		return domain.Message{}, nil, false
	}
	userMsg := s.addMessageLocked(chatroomID, domain.Message{
		Content: content,
		Image:   cloneString(image),
		Sender:  domain.SenderUser,
	})
	h := s.registerReplyLocked(chatroomID)
	p := s.commit(true)
	s.mu.Unlock()
	s.publish(p)

	go s.runReply(h, content)
	return userMsg, h, true
}

func (s *ChatStore) registerReplyLocked(chatroomID string) *ReplyHandle {
	ctx, cancel := context.WithCancelCause(context.Background())
	s.replySeq++
	h := &ReplyHandle{
		id:         s.replySeq,
		chatroomID: chatroomID,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	if s.replies[chatroomID] == nil {
		s.replies[chatroomID] = map[uint64]*ReplyHandle{}
	}
	s.replies[chatroomID][h.id] = h
	s.pending++
	s.tasks.Add(1)
	pendingReplies.Inc()
	return h
}

// cancelRepliesLocked cancels every task of chatroomID. Each task
// unregisters itself when its goroutine exits.
func (s *ChatStore) cancelRepliesLocked(chatroomID string, cause error) {
	for _, h := range s.replies[chatroomID] {
		h.cancel(cause)
	}
}

func (s *ChatStore) runReply(h *ReplyHandle, prompt string) {
	defer s.tasks.Done()
	defer h.cancel(nil)

	lg := s.log.With().Str("chatroom_id", h.chatroomID).Uint64("reply_id", h.id).Logger()
	ctx, span := observability.Tracer("store").Start(h.ctx, "reply",
		trace.WithAttributes(attribute.String("chatroom.id", h.chatroomID)),
	)
	defer span.End()

	msg, err := s.produceReply(ctx, h, prompt)

	s.mu.Lock()
	if err == nil && h.ctx.Err() != nil {
		err = context.Cause(h.ctx)
	}
	if err == nil {
		stored := s.addMessageLocked(h.chatroomID, domain.Message{
			Content: msg,
			Sender:  domain.SenderAI,
		})
		h.msg = &stored
	}
	s.unregisterReplyLocked(h)
	p := s.commit(err == nil)
	h.err = err
	close(h.done)
	s.mu.Unlock()
	s.publish(p)

	if err != nil {
		span.RecordError(err)
	}
	switch {
	case err == nil:
		repliesTotal.WithLabelValues("delivered").Inc()
		lg.Debug().Msg("reply delivered")
	case errors.Is(err, ErrChatroomDeleted), errors.Is(err, ErrLoggedOut), errors.Is(err, ErrReplyCancelled):
		repliesTotal.WithLabelValues("cancelled").Inc()
		lg.Debug().Err(err).Msg("reply cancelled")
	default:
		repliesTotal.WithLabelValues("failed").Inc()
		lg.Warn().Err(err).Msg("reply failed")
	}
}

// produceReply waits the reply delay and then calls the responder. It never
// touches store state.
func (s *ChatStore) produceReply(ctx context.Context, h *ReplyHandle, prompt string) (string, error) {
	if s.replyDelay > 0 {
		t := time.NewTimer(s.replyDelay)
		select {
		case <-t.C:
		case <-h.ctx.Done():
			t.Stop()
			return "", context.Cause(h.ctx)
		}
	}
	if s.responder == nil {
		return "", ErrNoResponder
	}
	text, err := s.responder.Generate(ctx, prompt)
	if err != nil {
		if h.ctx.Err() != nil {
			return "", context.Cause(h.ctx)
		}
		return "", err
	}
	return text, nil
}

func (s *ChatStore) unregisterReplyLocked(h *ReplyHandle) {
	if m := s.replies[h.chatroomID]; m != nil {
		if _, ok := m[h.id]; ok {
			delete(m, h.id)
			if len(m) == 0 {
				delete(s.replies, h.chatroomID)
			}
		}
	}
	s.pending--
	pendingReplies.Dec()
}
