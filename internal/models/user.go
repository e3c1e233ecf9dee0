package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account classifications. Guest accounts are throwaway identities that the
// cleanup service deletes once they go inactive past the retention window.
const (
	AccountStandard = "standard"
	AccountGuest    = "guest"
)

// User represents a Peerwave account. Identity is the wallet address: a
// canonical lowercase 0x-prefixed 40-hex-digit string, unique across the
// system. There are no passwords or sessions; callers prove nothing beyond
// presenting a well-formed address.
type User struct {
	ID            string `gorm:"primaryKey;size:36" json:"id"`
	WalletAddress string `gorm:"size:42;uniqueIndex;not null" json:"wallet_address"`
	Username      string `gorm:"size:50;not null" json:"username"`
	Bio           string `gorm:"size:500" json:"bio"`

	ProfilePicture string `gorm:"size:512" json:"profile_picture"`
	BannerPicture  string `gorm:"size:512" json:"banner_picture"`

	AccountType  string     `gorm:"size:16;default:standard" json:"account_type"`
	LastActiveAt *time.Time `json:"last_active_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = generateUUID()
	}
	if u.AccountType == "" {
		u.AccountType = AccountStandard
	}
	return nil
}

func generateUUID() string {
	return uuid.New().String()
}
