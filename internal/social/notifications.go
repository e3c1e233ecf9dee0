package social

import (
	"context"
	"errors"

	"github.com/peerwave/backend/internal/apperr"
	"github.com/peerwave/backend/internal/models"
	"github.com/peerwave/backend/internal/validation"
	"gorm.io/gorm"
)

const defaultNotificationLimit = 50

// Notifications returns the wallet's notifications, newest first, with sender
// and post attached.
func (e *Engine) Notifications(ctx context.Context, wallet string, limit int) ([]models.Notification, error) {
	wallet, err := validation.WalletAddress(wallet)
	if err != nil {
		return nil, err
	}
	user, err := userByWallet(e.db.WithContext(ctx), wallet)
	if err != nil {
		return nil, err
	}

	if limit < 1 || limit > defaultNotificationLimit {
		limit = defaultNotificationLimit
	}

	var notifications []models.Notification
	err = e.db.WithContext(ctx).
		Preload("Sender").
		Preload("Post").
		Where("recipient_id = ?", user.ID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

// MarkNotificationRead flips a single notification to read. The notification
// must belong to the wallet's user as recipient; anything else is NotFound so
// callers cannot probe other users' notification IDs.
func (e *Engine) MarkNotificationRead(ctx context.Context, wallet, notificationID string) error {
	wallet, err := validation.WalletAddress(wallet)
	if err != nil {
		return err
	}

	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := userByWallet(tx, wallet)
		if err != nil {
			return err
		}

		var notification models.Notification
		err = tx.First(&notification, "id = ? AND recipient_id = ?", notificationID, user.ID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("notification")
			}
			return err
		}

		return tx.Model(&notification).Update("read", true).Error
	})
}

// MarkAllRead flips every unread notification for the wallet's user in one
// bulk update and returns how many rows changed.
func (e *Engine) MarkAllRead(ctx context.Context, wallet string) (int64, error) {
	wallet, err := validation.WalletAddress(wallet)
	if err != nil {
		return 0, err
	}

	var updated int64
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := userByWallet(tx, wallet)
		if err != nil {
			return err
		}

		res := tx.Model(&models.Notification{}).
			Where("recipient_id = ? AND read = ?", user.ID, false).
			Update("read", true)
		updated = res.RowsAffected
		return res.Error
	})
	return updated, err
}
