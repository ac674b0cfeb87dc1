// Package store implements ChatStore, the single authority for session,
// theme, chatroom and message state.
//
// Every mutation runs to completion under one mutex, so callers on different
// goroutines (HTTP handlers, reply tasks) observe the same atomicity a
// single-threaded event loop would give. After each mutation the store
// publishes a deep-copied State to subscribers and, when configured, writes
// the persisted subset through a Persister.
package store

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-chat-store/internal/domain"
)

// DefaultReplyDelay is how long SendMessage waits before asking the responder.
const DefaultReplyDelay = time.Second

// Persister loads and saves the persisted state blob.
// Load returns (nil, nil) when nothing was saved yet.
type Persister interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Responder produces the text of an AI-authored reply.
type Responder interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ResponderFunc adapts a plain function to Responder.
type ResponderFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f ResponderFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// State is an immutable view of the store. Slices and maps are owned by the
// caller and never shared with the store.
type State struct {
	User              *domain.User
	IsAuthenticated   bool
	DarkMode          bool
	IsLoading         bool
	Chatrooms         []domain.Chatroom
	Messages          map[string][]domain.Message
	CurrentChatroomID *string
	// PendingReplies counts reply tasks that have not finished yet.
	PendingReplies int
	// Version increases by one on every mutation.
	Version uint64
}

// Session is the part of State that excludes chatrooms and messages.
type Session struct {
	User              *domain.User
	IsAuthenticated   bool
	DarkMode          bool
	IsLoading         bool
	CurrentChatroomID *string
	PendingReplies    int
	Version           uint64
}

// Listener receives a snapshot after every mutation.
type Listener func(State)

// Option customizes a ChatStore.
type Option func(*ChatStore)

// WithPersister enables persistence of the state blob.
func WithPersister(p Persister) Option { return func(s *ChatStore) { s.persister = p } }

// WithResponder sets the reply generator used by SendMessage.
func WithResponder(r Responder) Option { return func(s *ChatStore) { s.responder = r } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(s *ChatStore) { s.now = now } }

// WithReplyDelay overrides DefaultReplyDelay. Negative values are treated as zero.
func WithReplyDelay(d time.Duration) Option {
	return func(s *ChatStore) {
		if d < 0 {
			d = 0
		}
		s.replyDelay = d
	}
}

// WithLogger sets the logger used for persistence and reply outcomes.
func WithLogger(l zerolog.Logger) Option { return func(s *ChatStore) { s.log = l } }

// WithRand sets the source used for synthesized history senders.
func WithRand(r *rand.Rand) Option { return func(s *ChatStore) { s.rnd = r } }

// WithIDGenerator overrides uuid.NewString for chatroom and message ids.
func WithIDGenerator(fn func() string) Option { return func(s *ChatStore) { s.newID = fn } }

// WithPersistTimeout bounds a single blob write.
func WithPersistTimeout(d time.Duration) Option {
	return func(s *ChatStore) { s.persistTimeout = d }
}

// ChatStore holds all application state. The zero value is not usable; call New.
type ChatStore struct {
	mu sync.Mutex

	user              *domain.User
	isAuthenticated   bool
	darkMode          bool
	isLoading         bool
	chatrooms         []domain.Chatroom
	messages          map[string][]domain.Message
	currentChatroomID *string
	version           uint64

	replies   map[string]map[uint64]*ReplyHandle
	replySeq  uint64
	pending   int
	tasks     sync.WaitGroup
	listeners map[uint64]Listener
	listenSeq uint64

	// persistMark is the newest committed version that asked to be saved.
	persistMark uint64

	// pubMu orders publication; published is the last version handed out
	// and saved the last version written through the persister.
	pubMu     sync.Mutex
	published uint64
	saved     uint64

	persister      Persister
	responder      Responder
	now            func() time.Time
	newID          func() string
	rnd            *rand.Rand
	replyDelay     time.Duration
	persistTimeout time.Duration
	log            zerolog.Logger
}

// New returns an empty, anonymous store.
func New(opts ...Option) *ChatStore {
	s := &ChatStore{
		messages:       map[string][]domain.Message{},
		replies:        map[string]map[uint64]*ReplyHandle{},
		listeners:      map[uint64]Listener{},
		now:            time.Now,
		newID:          uuid.NewString,
		rnd:            rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
		replyDelay:     DefaultReplyDelay,
		persistTimeout: 5 * time.Second,
		log:            zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *ChatStore) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Version returns the current state version.
func (s *ChatStore) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Session returns the session fields without copying any chatroom or
// message data.
func (s *ChatStore) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Session{
		User:              cloneUser(s.user),
		IsAuthenticated:   s.isAuthenticated,
		DarkMode:          s.darkMode,
		IsLoading:         s.isLoading,
		CurrentChatroomID: cloneString(s.currentChatroomID),
		PendingReplies:    s.pending,
		Version:           s.version,
	}
}

// Subscribe registers fn to be called with a snapshot after every mutation
// and returns a function that removes it. Listeners run on the mutating
// goroutine in version order and must not call back into mutating
// operations synchronously.
func (s *ChatStore) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	s.listenSeq++
	id := s.listenSeq
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Wait blocks until every reply task scheduled so far has finished, or ctx
// is done.
func (s *ChatStore) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.tasks.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// commit bumps the version and returns what must be published once the lock
// is released. Callers hold s.mu.
func (s *ChatStore) commit(persist bool) pendingPublish {
	s.version++
	snap := s.snapshotLocked()
	ls := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		ls = append(ls, fn)
	}
	storeChatrooms.Set(float64(len(s.chatrooms)))
	if persist {
		s.persistMark = s.version
	}
	return pendingPublish{snap: snap, listeners: ls, owed: s.persistMark}
}

type pendingPublish struct {
	snap      State
	listeners []Listener
	// owed is the newest persisted version at or below snap.Version.
	owed uint64
}

// publish notifies listeners and writes the blob. A snapshot older than one
// already published is dropped so a slow writer never rolls state back.
// Any snapshot that contains a persisted mutation not yet written is saved,
// whether or not its own mutation asked for it, so dropping an older
// snapshot never loses a write.
func (s *ChatStore) publish(p pendingPublish) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	if p.snap.Version <= s.published {
		return
	}
	s.published = p.snap.Version

	for _, fn := range p.listeners {
		fn(cloneState(p.snap))
	}
	if s.persister != nil && p.owed > s.saved {
		if s.save(p.snap) {
			s.saved = p.snap.Version
		}
	}
}

func (s *ChatStore) snapshotLocked() State {
	st := State{
		User:              cloneUser(s.user),
		IsAuthenticated:   s.isAuthenticated,
		DarkMode:          s.darkMode,
		IsLoading:         s.isLoading,
		Chatrooms:         append([]domain.Chatroom{}, s.chatrooms...),
		Messages:          cloneBuckets(s.messages),
		CurrentChatroomID: cloneString(s.currentChatroomID),
		PendingReplies:    s.pending,
		Version:           s.version,
	}
	return st
}

func cloneState(st State) State {
	st.User = cloneUser(st.User)
	st.Chatrooms = append([]domain.Chatroom{}, st.Chatrooms...)
	st.Messages = cloneBuckets(st.Messages)
	st.CurrentChatroomID = cloneString(st.CurrentChatroomID)
	return st
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneBuckets(in map[string][]domain.Message) map[string][]domain.Message {
	out := make(map[string][]domain.Message, len(in))
	for k, msgs := range in {
		out[k] = cloneMessages(msgs)
	}
	return out
}

func cloneMessages(in []domain.Message) []domain.Message {
	out := make([]domain.Message, len(in))
	for i, m := range in {
		out[i] = m.Clone()
	}
	return out
}
