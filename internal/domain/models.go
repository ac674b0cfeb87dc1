// Package domain defines the entities held by the chat store (users,
// chatrooms, messages), the persisted state blob, and the GORM models that
// back persistence.
package domain

import "time"

// Sender identifies who authored a message.
type Sender string

const (
	// SenderUser marks a message typed by the signed-in user.
	SenderUser Sender = "user"
	// SenderAI marks a message produced by the responder.
	SenderAI Sender = "ai"
)

// User is the authenticated session record created on successful OTP
// verification.
type User struct {
	ID    string `json:"id"`
	Phone string `json:"phone"`
}

// Chatroom is a named conversation thread. UpdatedAt is refreshed whenever a
// message is appended to its bucket.
type Chatroom struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Message is a single entry in a chatroom's bucket.
//
// Fields:
//   - ID: unique within the store (UUID, or "old-<chatroom>-<page>-<i>" for
//     synthesized history).
//   - Content: message text.
//   - Image: optional image reference (data URL or link) attached by the user.
//   - Sender: "user" or "ai".
//   - Timestamp: creation time in UTC.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Image     *string   `json:"image,omitempty"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// Clone returns a copy of m that shares no pointers with it.
func (m Message) Clone() Message {
	if m.Image != nil {
		img := *m.Image
		m.Image = &img
	}
	return m
}

// Country is one entry of the dial-code directory used by phone entry.
type Country struct {
	Name     string `json:"name"`
	DialCode string `json:"dialCode"`
	Flag     string `json:"flag"`
}

// PersistedState is the exact layout of the persisted blob. Everything else
// the store holds is transient.
type PersistedState struct {
	User              *User                `json:"user"`
	IsAuthenticated   bool                 `json:"isAuthenticated"`
	DarkMode          bool                 `json:"darkMode"`
	Chatrooms         []Chatroom           `json:"chatrooms"`
	Messages          map[string][]Message `json:"messages"`
	CurrentChatroomID *string              `json:"currentChatroomId"`
}

// StorageBlob is a named, opaque state blob. The store keeps exactly one row
// per storage name and overwrites it on every save.
type StorageBlob struct {
	Name      string    `gorm:"type:varchar(128);primaryKey"`
	Data      []byte    `gorm:"type:blob;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the database table name for StorageBlob.
func (StorageBlob) TableName() string { return "storage_blobs" }
