package store

import (
	"fmt"
	"time"

	"github.com/tbourn/go-chat-store/internal/domain"
)

// HistoryBatchSize is how many older messages one LoadMoreMessages call adds.
const HistoryBatchSize = 20

// LoadMoreMessages prepends a batch of synthesized older messages to the
// bucket of chatroomID. Message i of page p is stamped (p*20+i) minutes
// before now, and the batch is ordered oldest first so the bucket still reads
// top to bottom.
// Pages below 1 are treated as 1. It returns the number of messages added.
func (s *ChatStore) LoadMoreMessages(chatroomID string, page int) int {
	if chatroomID == "" {
		return 0
	}
	if page < 1 {
		page = 1
	}

	s.mu.Lock()
	now := s.now().UTC()
	batch := make([]domain.Message, 0, HistoryBatchSize)
	for i := HistoryBatchSize - 1; i >= 0; i-- {
		sender := domain.SenderAI
		if s.rnd.Float64() > 0.5 {
			sender = domain.SenderUser
		}
		batch = append(batch, domain.Message{
			ID:        fmt.Sprintf("old-%s-%d-%d", chatroomID, page, i),
			Content:   fmt.Sprintf("This is an older message %d-%d", page, i),
			Sender:    sender,
			Timestamp: now.Add(-time.Duration(page*HistoryBatchSize+i) * time.Minute),
		})
	}
	s.messages[chatroomID] = append(batch, s.messages[chatroomID]...)
	p := s.commit(true)
	s.mu.Unlock()
	s.publish(p)
	return len(batch)
}

// Page is a window over a chatroom bucket.
type Page struct {
	Messages   []domain.Message
	Page       int
	PageSize   int
	Total      int
	TotalPages int
	HasNext    bool
}

// MessagesPage returns page of chatroomID's bucket counted from the newest
// end: page 1 holds the latest size messages. Each page is returned in
// chronological order. ok is false when the bucket does not exist.
func (s *ChatStore) MessagesPage(chatroomID string, page, size int) (Page, bool) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = HistoryBatchSize
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	msgs, ok := s.messages[chatroomID]
	if !ok {
		return Page{}, false
	}

	total := len(msgs)
	totalPages := (total + size - 1) / size
	end := total - (page-1)*size
	start := end - size
	if start < 0 {
		start = 0
	}
	out := Page{
		Messages:   []domain.Message{},
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
	if end > 0 {
		out.Messages = cloneMessages(msgs[start:end])
	}
	return out, true
}
