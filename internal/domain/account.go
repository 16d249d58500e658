package domain

import (
	"time"
)

// Account is a platform user. Salt is a per-account secret used to derive
// one-way encryptions of issued tokens and OTPs.
type Account struct {
	ID            int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	Salt          string          `json:"-" gorm:"not null"`
	Email         string          `json:"email" gorm:"uniqueIndex:account_email_unique;not null"`
	Nickname      string          `json:"nickname" gorm:"uniqueIndex:account_nickname_unique;not null"`
	Otp           *string         `json:"-"`
	OtpExpiredAt  *time.Time      `json:"-"`
	AvatarURL     *string         `json:"avatarUrl"`
	OauthProvider *string         `json:"-"`
	OauthID       *string         `json:"-" gorm:"column:oauth_id"`
	CreatedAt     time.Time       `json:"createdAt"`
	Sessions      []SignedSession `json:"-" gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
}

// SignedSession is one live bearer-token grant. EncryptedToken is the
// salt-keyed derivation of the raw token, never the raw token itself.
// ExpiresAt slides forward on every successful validation.
type SignedSession struct {
	ID             int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	AccountID      int64     `json:"accountId" gorm:"not null;uniqueIndex:signed_session_unique"`
	EncryptedToken string    `json:"-" gorm:"not null;uniqueIndex:signed_session_unique"`
	ExpiresAt      time.Time `json:"expiresAt" gorm:"not null"`
	CreatedAt      time.Time `json:"createdAt"`
}
