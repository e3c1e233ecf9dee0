package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification types.
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
)

// Notification is a directed edge from a sender to a recipient, created as a
// side effect of likes and comments on someone else's post. Self-actions never
// notify. The only mutation after creation is the one-way unread -> read flip.
type Notification struct {
	ID   string `gorm:"primaryKey;size:36" json:"id"`
	Type string `gorm:"size:16;not null;index" json:"type"`

	SenderID    string `gorm:"size:36;not null;index" json:"sender_id"`
	Sender      User   `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	RecipientID string `gorm:"size:36;not null;index" json:"recipient_id"`

	PostID *string `gorm:"size:36;index" json:"post_id,omitempty"`
	Post   *Post   `gorm:"foreignKey:PostID" json:"post,omitempty"`

	Read bool `gorm:"default:false;index" json:"read"`

	CreatedAt time.Time `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = generateUUID()
	}
	return nil
}
