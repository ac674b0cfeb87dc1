// Package repo implements the data persistence layer, backed by GORM. This
// file provides repository helpers for the Idempotency model used to make
// message sends safe to retry.
package repo

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-chat-store/internal/domain"
)

// ErrDuplicate indicates that an idempotency record already exists for the
// given (user_id, chatroom_id, key) tuple.
var ErrDuplicate = errors.New("duplicate")

// GetIdempotency returns a non-expired record or ErrNotFound.
func GetIdempotency(ctx context.Context, db *gorm.DB, userID, chatroomID, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(chatroomID) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("user_id = ? AND chatroom_id = ? AND key = ? AND expires_at > ?", userID, chatroomID, key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateIdempotency inserts a record and returns ErrDuplicate on unique violation.
func CreateIdempotency(ctx context.Context, db *gorm.DB, userID, chatroomID, key, messageID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	now := time.Now().UTC()
	rec := &domain.Idempotency{
		ID:         uuid.NewString(),
		UserID:     userID,
		ChatroomID: chatroomID,
		Key:        key,
		MessageID:  messageID,
		Status:     status,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// PurgeExpiredIdempotency deletes records whose TTL elapsed before now and
// reports how many rows were removed.
func PurgeExpiredIdempotency(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.Idempotency{})
	return res.RowsAffected, res.Error
}

// IdempotencyStore binds the helpers above to a database for the HTTP
// layer: Lookup feeds middleware.IdempotencyValidator and Record runs after
// a message send.
type IdempotencyStore struct {
	DB *gorm.DB
}

// NewIdempotencyStore returns a store backed by db.
func NewIdempotencyStore(db *gorm.DB) *IdempotencyStore {
	return &IdempotencyStore{DB: db}
}

// Lookup returns the message recorded for the key, if still live.
func (s *IdempotencyStore) Lookup(ctx context.Context, userID, chatroomID, key string, now time.Time) (string, bool, error) {
	rec, err := GetIdempotency(ctx, s.DB, userID, chatroomID, key, now)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return rec.MessageID, true, nil
}

// Record stores messageID under the key with status 202 Accepted.
func (s *IdempotencyStore) Record(ctx context.Context, userID, chatroomID, key, messageID string, ttl time.Duration) error {
	_, err := CreateIdempotency(ctx, s.DB, userID, chatroomID, key, messageID, http.StatusAccepted, ttl)
	return err
}
