package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tbourn/go-chat-store/internal/domain"
)

// DefaultStorageName is the blob name used when none is configured.
const DefaultStorageName = "gemini-chat-storage"

// Persisted returns the persisted subset of st.
func Persisted(st State) domain.PersistedState {
	ps := domain.PersistedState{
		User:              cloneUser(st.User),
		IsAuthenticated:   st.IsAuthenticated,
		DarkMode:          st.DarkMode,
		Chatrooms:         append([]domain.Chatroom{}, st.Chatrooms...),
		Messages:          cloneBuckets(st.Messages),
		CurrentChatroomID: cloneString(st.CurrentChatroomID),
	}
	return ps
}

// EncodeState serializes the persisted subset of st.
func EncodeState(st State) ([]byte, error) {
	return json.Marshal(Persisted(st))
}

// DecodeState parses a blob written by EncodeState.
func DecodeState(data []byte) (domain.PersistedState, error) {
	var ps domain.PersistedState
	if err := json.Unmarshal(data, &ps); err != nil {
		return domain.PersistedState{}, fmt.Errorf("decode state: %w", err)
	}
	return ps, nil
}

// save writes st and reports whether the write succeeded.
func (s *ChatStore) save(st State) bool {
	data, err := EncodeState(st)
	if err != nil {
		persistFailures.Inc()
		s.log.Error().Err(err).Uint64("version", st.Version).Msg("encode state failed")
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
	defer cancel()
	if err := s.persister.Save(ctx, data); err != nil {
		persistFailures.Inc()
		s.log.Error().Err(err).Uint64("version", st.Version).Msg("persist state failed")
		return false
	}
	return true
}

// Hydrate replaces the in-memory state with the persisted blob, if any.
// The loaded state is normalized: authenticated follows the user record,
// every chatroom gets a bucket, and a selection that points at a missing
// chatroom is cleared. Hydrate does not write back.
func (s *ChatStore) Hydrate(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	data, err := s.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	ps, err := DecodeState(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.user = cloneUser(ps.User)
	s.isAuthenticated = ps.User != nil
	s.darkMode = ps.DarkMode
	s.chatrooms = append([]domain.Chatroom{}, ps.Chatrooms...)
	s.messages = cloneBuckets(ps.Messages)
	for _, r := range s.chatrooms {
		if _, ok := s.messages[r.ID]; !ok {
			s.messages[r.ID] = []domain.Message{}
		}
	}
	s.currentChatroomID = nil
	if ps.CurrentChatroomID != nil && s.indexLocked(*ps.CurrentChatroomID) >= 0 {
		s.currentChatroomID = cloneString(ps.CurrentChatroomID)
	}
	p := s.commit(false)
	s.mu.Unlock()
	s.publish(p)

	s.log.Info().
		Int("chatrooms", len(ps.Chatrooms)).
		Bool("authenticated", ps.User != nil).
		Msg("state hydrated")
	return nil
}
