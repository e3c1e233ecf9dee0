package social

import (
	"context"
	"errors"
	"strings"

	"github.com/peerwave/backend/internal/apperr"
	"github.com/peerwave/backend/internal/logger"
	"github.com/peerwave/backend/internal/models"
	"github.com/peerwave/backend/internal/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ToggleLike flips the like state for (wallet, post). The toggle never does a
// read-then-conditional-write: it deletes first, and only inserts when the
// delete removed nothing. The insert is a conflict-tolerant no-op when a
// concurrent request already created the row; that outcome is treated as
// "already liked" rather than surfaced as a conflict.
//
// Liking someone else's post creates a like notification for the author;
// unliking creates nothing and removes nothing.
func (e *Engine) ToggleLike(ctx context.Context, wallet, postID string) (*models.Post, error) {
	wallet, err := validation.WalletAddress(wallet)
	if err != nil {
		return nil, err
	}

	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := userByWallet(tx, wallet)
		if err != nil {
			return err
		}
		post, err := postByID(tx, postID)
		if err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND post_id = ?", user.ID, post.ID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			// Unlike.
			return tx.Model(&models.Post{}).Where("id = ?", post.ID).
				UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error
		}

		// DO NOTHING instead of erroring on conflict: a failed statement
		// would abort the whole transaction on postgres, so the loser of a
		// racing insert could never commit its no-op.
		like := models.Like{UserID: user.ID, PostID: post.ID}
		res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// A concurrent request already created the row.
			logger.Log.Debug("duplicate like insert normalized",
				logger.WithWallet(wallet))
			return nil
		}

		if err := tx.Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error; err != nil {
			return err
		}

		if user.ID != post.UserID {
			notification := models.Notification{
				Type:        models.NotificationLike,
				SenderID:    user.ID,
				RecipientID: post.UserID,
				PostID:      &post.ID,
			}
			return tx.Create(&notification).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return e.loadPost(ctx, postID)
}

// AddComment appends a comment to a post and notifies the author when the
// commenter is someone else. Returns the post with comments and counts.
func (e *Engine) AddComment(ctx context.Context, wallet, postID, content, mediaURL string) (*models.Post, error) {
	wallet, err := validation.WalletAddress(wallet)
	if err != nil {
		return nil, err
	}
	content, err = validation.Content(content, validation.MaxCommentContent)
	if err != nil {
		return nil, err
	}

	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := userByWallet(tx, wallet)
		if err != nil {
			return err
		}
		post, err := postByID(tx, postID)
		if err != nil {
			return err
		}

		comment := models.Comment{
			PostID:   post.ID,
			UserID:   user.ID,
			Content:  content,
			MediaURL: mediaURL,
		}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error; err != nil {
			return err
		}

		if user.ID != post.UserID {
			notification := models.Notification{
				Type:        models.NotificationComment,
				SenderID:    user.ID,
				RecipientID: post.UserID,
				PostID:      &post.ID,
			}
			return tx.Create(&notification).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return e.loadPost(ctx, postID)
}

// DeletePost removes a post and everything hanging off it. Only the author
// may delete; the check compares canonical wallet identities.
func (e *Engine) DeletePost(ctx context.Context, wallet, postID string) error {
	wallet, err := validation.WalletAddress(wallet)
	if err != nil {
		return err
	}

	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := userByWallet(tx, wallet)
		if err != nil {
			return err
		}
		post, err := postByID(tx, postID)
		if err != nil {
			return err
		}
		if post.UserID != user.ID {
			return apperr.Forbidden("not authorized to delete this post")
		}

		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		return tx.Delete(post).Error
	})
}

// DeleteComment removes a comment; author-only, with the post's cached
// counter decremented in the same transaction.
func (e *Engine) DeleteComment(ctx context.Context, wallet, commentID string) error {
	wallet, err := validation.WalletAddress(wallet)
	if err != nil {
		return err
	}

	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := userByWallet(tx, wallet)
		if err != nil {
			return err
		}

		var comment models.Comment
		if err := tx.First(&comment, "id = ?", commentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("comment")
			}
			return err
		}
		if comment.UserID != user.ID {
			return apperr.Forbidden("not authorized to delete this comment")
		}

		if err := tx.Delete(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count - 1")).Error
	})
}

// LikedPosts returns the posts a user has liked, newest like first.
func (e *Engine) LikedPosts(ctx context.Context, wallet string) ([]models.Post, error) {
	wallet, err := validation.WalletAddress(wallet)
	if err != nil {
		return nil, err
	}
	user, err := userByWallet(e.db.WithContext(ctx), wallet)
	if err != nil {
		return nil, err
	}

	var likes []models.Like
	if err := e.db.WithContext(ctx).
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&likes).Error; err != nil {
		return nil, err
	}
	if len(likes) == 0 {
		return []models.Post{}, nil
	}

	ids := make([]string, 0, len(likes))
	for _, l := range likes {
		ids = append(ids, l.PostID)
	}

	var posts []models.Post
	err = e.db.WithContext(ctx).
		Preload("User").
		Where("id IN ?", ids).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	// Preserve like order.
	byID := make(map[string]models.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	ordered := make([]models.Post, 0, len(posts))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

// isDuplicateKey recognizes unique-constraint violations across drivers.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
