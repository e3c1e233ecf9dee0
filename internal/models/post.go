package models

import (
	"time"

	"gorm.io/gorm"
)

// Media kinds attachable to a post or comment.
const (
	MediaImage = "image"
	MediaVideo = "video"
)

// Post is a piece of user content with an optional single media attachment.
// LikeCount and CommentCount are cached counters maintained transactionally
// by the social engine alongside the rows they summarize.
type Post struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	UserID string `gorm:"size:36;not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"author,omitempty"`

	Content   string `gorm:"size:1000;not null" json:"content"`
	MediaURL  string `gorm:"size:512" json:"media_url"`
	MediaType string `gorm:"size:16" json:"media_type"` // image, video or empty

	LikeCount    int `gorm:"default:0" json:"like_count"`
	CommentCount int `gorm:"default:0" json:"comment_count"`

	Comments []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Like joins a user to a post. The composite unique index is the sole
// correctness mechanism for concurrent toggles: the second of two racing
// inserts fails with a duplicate-key error instead of producing a second row.
type Like struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	UserID string `gorm:"size:36;not null;uniqueIndex:idx_likes_user_post" json:"user_id"`
	PostID string `gorm:"size:36;not null;uniqueIndex:idx_likes_user_post" json:"post_id"`

	CreatedAt time.Time `json:"created_at"`
}

// Comment is a reply on a post, deletable only by its author.
type Comment struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	PostID string `gorm:"size:36;not null;index" json:"post_id"`
	UserID string `gorm:"size:36;not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"author,omitempty"`

	Content  string `gorm:"size:500;not null" json:"content"`
	MediaURL string `gorm:"size:512" json:"media_url"`

	CreatedAt time.Time `json:"created_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	return nil
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = generateUUID()
	}
	return nil
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	return nil
}
