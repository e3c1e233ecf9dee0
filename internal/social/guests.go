package social

import (
	"context"
	"time"

	"github.com/peerwave/backend/internal/models"
	"gorm.io/gorm"
)

// CleanupGuests deletes guest accounts whose last activity is older than
// cutoff, along with everything they own or touched. Cached post counters on
// surviving posts are corrected before the rows disappear. Returns the number
// of accounts removed.
func (e *Engine) CleanupGuests(ctx context.Context, cutoff time.Time) (int64, error) {
	var stale []models.User
	err := e.db.WithContext(ctx).
		Where("account_type = ? AND last_active_at < ?", models.AccountGuest, cutoff).
		Find(&stale).Error
	if err != nil {
		return 0, err
	}

	var deleted int64
	for _, user := range stale {
		if err := e.deleteUserCascade(ctx, user); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// deleteUserCascade removes one user and their graph edges in a transaction.
func (e *Engine) deleteUserCascade(ctx context.Context, user models.User) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ownPosts := tx.Model(&models.Post{}).Select("id").Where("user_id = ?", user.ID)

		// Fix counters on posts the user liked or commented on before the
		// join rows go away. Their own posts are deleted below, so
		// over-adjusting those is harmless.
		if err := tx.Exec(
			"UPDATE posts SET like_count = like_count - 1 WHERE id IN (SELECT post_id FROM likes WHERE user_id = ?)",
			user.ID).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			"UPDATE posts SET comment_count = comment_count - (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.user_id = ?) WHERE id IN (SELECT post_id FROM comments WHERE user_id = ?)",
			user.ID, user.ID).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ? OR post_id IN (?)", user.ID, ownPosts).
			Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? OR post_id IN (?)", user.ID, ownPosts).
			Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("sender_id = ? OR recipient_id = ? OR post_id IN (?)", user.ID, user.ID, ownPosts).
			Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", user.ID).Error
	})
}
