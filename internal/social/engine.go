// Package social implements the mutation engine for the social graph: profile
// upserts, posts, the idempotent like toggle, comments, and notification
// fan-out. Every operation validates its inputs before touching the store and
// runs its writes in a single transaction.
package social

import (
	"context"
	"errors"
	"time"

	"github.com/peerwave/backend/internal/apperr"
	"github.com/peerwave/backend/internal/models"
	"github.com/peerwave/backend/internal/validation"
	"gorm.io/gorm"
)

const defaultBio = "New to Peerwave"

// Engine applies social-graph mutations against the persistent store. It is
// the only writer path for User, Post, Like, Comment, and Notification rows.
type Engine struct {
	db *gorm.DB
}

// NewEngine creates an engine over an initialized gorm connection.
func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// DB exposes the underlying connection for read-only collaborators.
func (e *Engine) DB() *gorm.DB {
	return e.db
}

// userByWallet resolves a user from a canonical wallet address.
func userByWallet(tx *gorm.DB, wallet string) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, "wallet_address = ?", wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user")
		}
		return nil, err
	}
	return &user, nil
}

func postByID(tx *gorm.DB, postID string) (*models.Post, error) {
	var post models.Post
	if err := tx.First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("post")
		}
		return nil, err
	}
	return &post, nil
}

// loadPost fetches a post with author, comments, and fresh counters for
// returning to clients after a mutation.
func (e *Engine) loadPost(ctx context.Context, postID string) (*models.Post, error) {
	var post models.Post
	err := e.db.WithContext(ctx).
		Preload("User").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC")
		}).
		Preload("Comments.User").
		First(&post, "id = ?", postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("post")
		}
		return nil, err
	}
	return &post, nil
}

// UpsertProfile creates or updates the profile for a wallet address. The
// operation is idempotent; UpdatedAt is bumped on every write.
func (e *Engine) UpsertProfile(ctx context.Context, wallet, username, bio, accountType string) (*models.User, error) {
	wallet, err := validation.WalletAddress(wallet)
	if err != nil {
		return nil, err
	}
	username, err = validation.Username(username)
	if err != nil {
		return nil, err
	}
	bio = validation.OptionalContent(bio, validation.MaxBio)
	if bio == "" {
		bio = defaultBio
	}
	if accountType != "" && accountType != models.AccountStandard && accountType != models.AccountGuest {
		return nil, apperr.Validation("account type must be standard or guest")
	}

	now := time.Now().UTC()
	var user models.User
	upsert := func() error {
		return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			user = models.User{}
			err := tx.First(&user, "wallet_address = ?", wallet).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				user = models.User{
					WalletAddress: wallet,
					Username:      username,
					Bio:           bio,
					AccountType:   accountType,
					LastActiveAt:  &now,
				}
				return tx.Create(&user).Error
			}
			if err != nil {
				return err
			}

			user.Username = username
			user.Bio = bio
			user.LastActiveAt = &now
			return tx.Save(&user).Error
		})
	}

	err = upsert()
	if err != nil && isDuplicateKey(err) {
		// Lost a create race with a concurrent first write for the same
		// wallet. The row exists now, so a retry takes the update path.
		err = upsert()
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Profile fetches a user by wallet address.
func (e *Engine) Profile(ctx context.Context, wallet string) (*models.User, error) {
	wallet, err := validation.WalletAddress(wallet)
	if err != nil {
		return nil, err
	}
	return userByWallet(e.db.WithContext(ctx), wallet)
}

// SetProfileImage updates the profile or banner image URL for a user.
func (e *Engine) SetProfileImage(ctx context.Context, wallet, kind, url string) (*models.User, error) {
	wallet, err := validation.WalletAddress(wallet)
	if err != nil {
		return nil, err
	}

	var column string
	switch kind {
	case "profile":
		column = "profile_picture"
	case "banner":
		column = "banner_picture"
	default:
		return nil, apperr.Validation("image type must be profile or banner")
	}

	var user *models.User
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err = userByWallet(tx, wallet)
		if err != nil {
			return err
		}
		return tx.Model(user).Updates(map[string]interface{}{
			column:       url,
			"updated_at": time.Now().UTC(),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns a page of users, newest first.
func (e *Engine) ListUsers(ctx context.Context, page, limit int) ([]models.User, error) {
	page, limit = normalizePage(page, limit)
	var users []models.User
	err := e.db.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	return users, err
}

// CreatePost validates inputs and stores a new post for the wallet's user.
// Posting counts as activity for guest retention.
func (e *Engine) CreatePost(ctx context.Context, wallet, content, mediaURL, mediaType string) (*models.Post, error) {
	wallet, err := validation.WalletAddress(wallet)
	if err != nil {
		return nil, err
	}
	content, err = validation.Content(content, validation.MaxPostContent)
	if err != nil {
		return nil, err
	}
	mediaType, err = validation.MediaType(mediaType)
	if err != nil {
		return nil, err
	}
	if mediaURL == "" {
		mediaType = ""
	}

	var post models.Post
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := userByWallet(tx, wallet)
		if err != nil {
			return err
		}

		post = models.Post{
			UserID:    user.ID,
			Content:   content,
			MediaURL:  mediaURL,
			MediaType: mediaType,
		}
		if err := tx.Create(&post).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		return tx.Model(user).Update("last_active_at", now).Error
	})
	if err != nil {
		return nil, err
	}
	return e.loadPost(ctx, post.ID)
}

// RecentPosts returns a page of posts, newest first, with authors and
// comments preloaded.
func (e *Engine) RecentPosts(ctx context.Context, page, limit int) ([]models.Post, error) {
	page, limit = normalizePage(page, limit)
	var posts []models.Post
	err := e.db.WithContext(ctx).
		Preload("User").
		Preload("Comments.User").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

// PostsByUser returns all posts authored by the wallet's user, newest first.
func (e *Engine) PostsByUser(ctx context.Context, wallet string) ([]models.Post, error) {
	wallet, err := validation.WalletAddress(wallet)
	if err != nil {
		return nil, err
	}
	user, err := userByWallet(e.db.WithContext(ctx), wallet)
	if err != nil {
		return nil, err
	}

	var posts []models.Post
	err = e.db.WithContext(ctx).
		Preload("User").
		Preload("Comments.User").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 50
	}
	return page, limit
}
