package handlers

import (
	"context"
	"time"

	"github.com/tbourn/go-chat-store/internal/domain"
	"github.com/tbourn/go-chat-store/internal/services"
	"github.com/tbourn/go-chat-store/internal/store"
)

// ChatStore is the part of store.ChatStore the handlers drive.
type ChatStore interface {
	Session() store.Session
	Version() uint64
	SetUser(user *domain.User)
	SetDarkMode(on bool)
	SetLoading(on bool)
	Logout()

	CreateChatroom(title string) *domain.Chatroom
	DeleteChatroom(id string)
	SetCurrentChatroom(id string)
	Chatroom(id string) (domain.Chatroom, bool)
	SearchChatrooms(q string) []domain.Chatroom

	SendToChatroom(chatroomID, content string, image *string) (domain.Message, *store.ReplyHandle, bool)
	LoadMoreMessages(chatroomID string, page int) int
	MessagesPage(chatroomID string, page, size int) (store.Page, bool)
	FindMessage(chatroomID, messageID string) (domain.Message, bool)
}

// Authenticator is the phone/OTP identity provider.
type Authenticator interface {
	SendOTP(ctx context.Context, phone string) (services.OTPResult, error)
	VerifyOTP(ctx context.Context, phone, code string) (services.VerifyResult, error)
}

// CountryLister serves the dial code directory.
type CountryLister interface {
	Countries(ctx context.Context) ([]domain.Country, error)
}

// IdempotencyRecorder remembers which message a send with an
// Idempotency-Key produced.
type IdempotencyRecorder interface {
	Record(ctx context.Context, userID, chatroomID, key, messageID string, ttl time.Duration) error
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	store     ChatStore
	auth      Authenticator
	countries CountryLister
	idem      IdempotencyRecorder
	idemTTL   time.Duration
}

// Deps are the collaborators of Handlers. Idempotency may be nil, in which
// case Idempotency-Key headers are validated but never recorded.
type Deps struct {
	Store          ChatStore
	Auth           Authenticator
	Countries      CountryLister
	Idempotency    IdempotencyRecorder
	IdempotencyTTL time.Duration
}

// New returns Handlers bound to d.
func New(d Deps) *Handlers {
	ttl := d.IdempotencyTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Handlers{
		store:     d.Store,
		auth:      d.Auth,
		countries: d.Countries,
		idem:      d.Idempotency,
		idemTTL:   ttl,
	}
}
