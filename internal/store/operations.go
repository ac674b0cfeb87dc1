package store

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/tbourn/go-chat-store/internal/domain"
)

// SetUser sets the session. Authenticated becomes true iff user is non-nil.
func (s *ChatStore) SetUser(user *domain.User) {
	s.mu.Lock()
	s.user = cloneUser(user)
	s.isAuthenticated = user != nil
	p := s.commit(true)
	s.mu.Unlock()
	s.publish(p)
}

// SetDarkMode stores the theme preference.
func (s *ChatStore) SetDarkMode(on bool) {
	s.mu.Lock()
	s.darkMode = on
	p := s.commit(true)
	s.mu.Unlock()
	s.publish(p)
}

// SetLoading toggles the transient loading flag. It is never persisted.
func (s *ChatStore) SetLoading(on bool) {
	s.mu.Lock()
	s.isLoading = on
	p := s.commit(false)
	s.mu.Unlock()
	s.publish(p)
}

// CreateChatroom prepends a chatroom with a fresh id and an empty bucket and
// returns a copy of it. A blank title creates nothing and returns nil.
func (s *ChatStore) CreateChatroom(title string) *domain.Chatroom {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}

	s.mu.Lock()
	now := s.now().UTC()
	room := domain.Chatroom{
		ID:        s.newID(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.chatrooms = append([]domain.Chatroom{room}, s.chatrooms...)
	s.messages[room.ID] = []domain.Message{}
	p := s.commit(true)
	s.mu.Unlock()
	s.publish(p)

	s.log.Debug().Str("chatroom_id", room.ID).Msg("chatroom created")
	return &room
}

// DeleteChatroom removes the chatroom and its bucket together, clears the
// selection when it pointed at id, and cancels pending replies for id.
// Unknown ids are a no-op.
func (s *ChatStore) DeleteChatroom(id string) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	_, hasBucket := s.messages[id]
	if idx < 0 && !hasBucket {
		s.mu.Unlock()
		return
	}
	if idx >= 0 {
		s.chatrooms = append(s.chatrooms[:idx:idx], s.chatrooms[idx+1:]...)
	}
	delete(s.messages, id)
	if s.currentChatroomID != nil && *s.currentChatroomID == id {
		s.currentChatroomID = nil
	}
	s.cancelRepliesLocked(id, ErrChatroomDeleted)
	p := s.commit(true)
	s.mu.Unlock()
	s.publish(p)

	s.log.Debug().Str("chatroom_id", id).Msg("chatroom deleted")
}

// SetCurrentChatroom selects id without checking that it exists. An empty id
// clears the selection.
func (s *ChatStore) SetCurrentChatroom(id string) {
	s.mu.Lock()
	if id == "" {
		s.currentChatroomID = nil
	} else {
		s.currentChatroomID = &id
	}
	p := s.commit(true)
	s.mu.Unlock()
	s.publish(p)
}

// AddMessage appends m to the bucket of chatroomID and refreshes the
// chatroom's UpdatedAt. A missing bucket is created on the fly even when no
// chatroom with that id exists. Empty ID and zero Timestamp are filled in.
// It returns the stored message; an empty chatroomID stores nothing.
func (s *ChatStore) AddMessage(chatroomID string, m domain.Message) domain.Message {
	if chatroomID == "" {
		return m
	}
	s.mu.Lock()
	stored := s.addMessageLocked(chatroomID, m)
	p := s.commit(true)
	s.mu.Unlock()
	s.publish(p)
	return stored
}

func (s *ChatStore) addMessageLocked(chatroomID string, m domain.Message) domain.Message {
	now := s.now().UTC()
	if m.ID == "" {
		m.ID = s.newID()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = now
	}
	m = m.Clone()
	s.messages[chatroomID] = append(s.messages[chatroomID], m)
	if i := s.indexLocked(chatroomID); i >= 0 {
		s.chatrooms[i].UpdatedAt = now
	}
	messagesAppended.WithLabelValues(string(m.Sender)).Inc()
	return m.Clone()
}

// Logout cancels every pending reply and resets session, chatrooms, messages
// and selection. Theme and the loading flag are kept.
func (s *ChatStore) Logout() {
	s.mu.Lock()
	for id := range s.replies {
		s.cancelRepliesLocked(id, ErrLoggedOut)
	}
	s.user = nil
	s.isAuthenticated = false
	s.chatrooms = nil
	s.messages = map[string][]domain.Message{}
	s.currentChatroomID = nil
	p := s.commit(true)
	s.mu.Unlock()
	s.publish(p)
}

// Chatroom returns a copy of the chatroom with id.
func (s *ChatStore) Chatroom(id string) (domain.Chatroom, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.chatrooms[i], true
	}
	return domain.Chatroom{}, false
}

// SearchChatrooms returns chatrooms whose title contains q, ignoring case, in
// display order. An empty query returns every chatroom.
func (s *ChatStore) SearchChatrooms(q string) []domain.Chatroom {
	q = strings.TrimSpace(q)

	s.mu.Lock()
	rooms := append([]domain.Chatroom{}, s.chatrooms...)
	s.mu.Unlock()

	if q == "" {
		return rooms
	}
	fold := cases.Fold()
	needle := fold.String(q)
	out := make([]domain.Chatroom, 0, len(rooms))
	for _, r := range rooms {
		if strings.Contains(fold.String(r.Title), needle) {
			out = append(out, r)
		}
	}
	return out
}

// Messages returns a copy of the bucket for chatroomID (nil when absent).
func (s *ChatStore) Messages(chatroomID string) []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs, ok := s.messages[chatroomID]
	if !ok {
		return nil
	}
	return cloneMessages(msgs)
}

// FindMessage looks up a message by id within a chatroom's bucket.
func (s *ChatStore) FindMessage(chatroomID, messageID string) (domain.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages[chatroomID] {
		if m.ID == messageID {
			return m.Clone(), true
		}
	}
	return domain.Message{}, false
}

func (s *ChatStore) indexLocked(id string) int {
	for i := range s.chatrooms {
		if s.chatrooms[i].ID == id {
			return i
		}
	}
	return -1
}
