// Package repo implements the data persistence layer, backed by GORM. This
// file stores the chat store's state blob.
//
// The blob is opaque to this package: it is written and read as bytes under
// a storage name (one row per name). BlobStore adapts the free functions to
// the store.Persister contract.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-chat-store/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the store and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// GetBlob returns the blob saved under name, or ErrNotFound.
func GetBlob(ctx context.Context, db *gorm.DB, name string) (*domain.StorageBlob, error) {
	var b domain.StorageBlob
	if err := db.WithContext(ctx).Where("name = ?", name).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// PutBlob inserts or overwrites the blob saved under name.
func PutBlob(ctx context.Context, db *gorm.DB, name string, data []byte) error {
	b := &domain.StorageBlob{
		Name:      name,
		Data:      data,
		UpdatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(b).Error
}

// DeleteBlob removes the blob saved under name. Missing rows are not an error.
func DeleteBlob(ctx context.Context, db *gorm.DB, name string) error {
	return db.WithContext(ctx).Where("name = ?", name).Delete(&domain.StorageBlob{}).Error
}

// BlobStore persists one named blob. It satisfies store.Persister.
type BlobStore struct {
	DB   *gorm.DB
	Name string
}

// NewBlobStore returns a BlobStore bound to name.
func NewBlobStore(db *gorm.DB, name string) *BlobStore {
	return &BlobStore{DB: db, Name: name}
}

// Load returns the saved blob, or (nil, nil) when nothing was saved yet.
func (s *BlobStore) Load(ctx context.Context) ([]byte, error) {
	b, err := GetBlob(ctx, s.DB, s.Name)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b.Data, nil
}

// Save overwrites the blob.
func (s *BlobStore) Save(ctx context.Context, data []byte) error {
	return PutBlob(ctx, s.DB, s.Name, data)
}
