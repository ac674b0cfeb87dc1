package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-chat-store/internal/domain"
)

func newRepoDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid schema leakage across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func TestGetIdempotency_NoChatroomID_ReturnsNotFound(t *testing.T) {
	db := newRepoDB(t, &domain.Idempotency{})
	rec, err := GetIdempotency(context.Background(), db, "u1", "  ", "k1", time.Now())
	if rec != nil || err != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound), got (%v, %v)", rec, err)
	}
}

func TestGetIdempotency_ExpiredOrMissing(t *testing.T) {
	db := newRepoDB(t, &domain.Idempotency{})
	now := time.Now().UTC()

	exp := &domain.Idempotency{
		ID:         "exp",
		UserID:     "u1",
		ChatroomID: "c1",
		Key:        "k1",
		MessageID:  "m0",
		Status:     202,
		CreatedAt:  now.Add(-2 * time.Hour),
		ExpiresAt:  now.Add(-time.Hour),
	}
	if err := db.Create(exp).Error; err != nil {
		t.Fatalf("seed expired: %v", err)
	}

	rec, err := GetIdempotency(context.Background(), db, "u1", "c1", "k1", now)
	if rec != nil || err != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for expired, got (%v, %v)", rec, err)
	}

	rec2, err2 := GetIdempotency(context.Background(), db, "u1", "c1", "missing", now)
	if rec2 != nil || err2 != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for missing, got (%v, %v)", rec2, err2)
	}
}

func TestCreateIdempotency_SuccessGetAndDuplicate(t *testing.T) {
	db := newRepoDB(t, &domain.Idempotency{})
	ctx := context.Background()

	ttl := 90 * time.Minute
	start := time.Now().UTC()

	rec, err := CreateIdempotency(ctx, db, "u9", "c9", "k9", "m9", 202, ttl)
	if err != nil {
		t.Fatalf("CreateIdempotency error: %v", err)
	}
	if rec.ID == "" || rec.UserID != "u9" || rec.ChatroomID != "c9" || rec.Key != "k9" || rec.MessageID != "m9" || rec.Status != 202 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if !(rec.ExpiresAt.After(start) && rec.ExpiresAt.Before(start.Add(2*time.Hour))) {
		t.Fatalf("unexpected ExpiresAt: %v", rec.ExpiresAt)
	}

	got, err := GetIdempotency(ctx, db, "u9", "c9", "k9", time.Now().UTC())
	if err != nil || got.MessageID != "m9" {
		t.Fatalf("GetIdempotency = (%+v, %v)", got, err)
	}

	if _, err := CreateIdempotency(ctx, db, "u9", "c9", "k9", "mX", 202, ttl); err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// Same key for another chatroom is a different operation.
	if _, err := CreateIdempotency(ctx, db, "u9", "c10", "k9", "mY", 202, ttl); err != nil {
		t.Fatalf("other chatroom should not collide: %v", err)
	}
}

func TestCreateIdempotency_Error_NoTable(t *testing.T) {
	db := newRepoDB(t) // intentionally NOT migrating
	_, err := CreateIdempotency(context.Background(), db, "uX", "cX", "kX", "mX", 202, time.Minute)
	if err == nil {
		t.Fatalf("expected error when table is missing")
	}
	if err == ErrDuplicate {
		t.Fatalf("expected non-duplicate error, got ErrDuplicate")
	}
}

func TestPurgeExpiredIdempotency(t *testing.T) {
	db := newRepoDB(t, &domain.Idempotency{})
	now := time.Now().UTC()
	seed := []domain.Idempotency{
		{ID: "a", UserID: "u", ChatroomID: "c", Key: "old", MessageID: "m", Status: 202, ExpiresAt: now.Add(-time.Minute)},
		{ID: "b", UserID: "u", ChatroomID: "c", Key: "new", MessageID: "m", Status: 202, ExpiresAt: now.Add(time.Hour)},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	n, err := PurgeExpiredIdempotency(context.Background(), db, now)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 {
		t.Fatalf("purged %d rows, want 1", n)
	}
	var left int64
	db.Model(&domain.Idempotency{}).Count(&left)
	if left != 1 {
		t.Fatalf("expected 1 remaining row, got %d", left)
	}
}

func TestIdempotencyStore_RecordAndLookup(t *testing.T) {
	db := newRepoDB(t, &domain.Idempotency{})
	s := NewIdempotencyStore(db)
	ctx := context.Background()

	if id, found, err := s.Lookup(ctx, "1", "room", "k", time.Now().UTC()); err != nil || found || id != "" {
		t.Fatalf("empty lookup = (%q, %v, %v)", id, found, err)
	}
	if err := s.Record(ctx, "1", "room", "k", "msg-1", time.Hour); err != nil {
		t.Fatalf("record: %v", err)
	}
	id, found, err := s.Lookup(ctx, "1", "room", "k", time.Now().UTC())
	if err != nil || !found || id != "msg-1" {
		t.Fatalf("lookup = (%q, %v, %v)", id, found, err)
	}
	if err := s.Record(ctx, "1", "room", "k", "msg-2", time.Hour); err != ErrDuplicate {
		t.Fatalf("second record err = %v; want ErrDuplicate", err)
	}
	if _, found, _ := s.Lookup(ctx, "1", "other-room", "k", time.Now().UTC()); found {
		t.Fatalf("key leaked across chatrooms")
	}
	if _, found, _ := s.Lookup(ctx, "1", "room", "k", time.Now().Add(2*time.Hour)); found {
		t.Fatalf("expired record found")
	}

	var rec domain.Idempotency
	if err := db.First(&rec).Error; err != nil || rec.Status != 202 {
		t.Fatalf("stored status = %d, err %v", rec.Status, err)
	}
}

func TestIdempotencyStore_LookupError(t *testing.T) {
	db := newRepoDB(t) // no table
	if _, found, err := NewIdempotencyStore(db).Lookup(context.Background(), "1", "room", "k", time.Now()); err == nil || found {
		t.Fatalf("expected error without table, got found=%v err=%v", found, err)
	}
}
