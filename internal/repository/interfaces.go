package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hyunwoo/beluga-backend/internal/domain"
	"gorm.io/gorm"
)

// Repositories accept an ambient transaction handle through WithTx: calling
// WithTx(tx) returns a repository bound to that transaction, WithTx(nil)
// returns the receiver unchanged. Transaction boundaries are owned by the
// orchestrating service, never by a repository.

type AccountRepository interface {
	WithTx(tx *gorm.DB) AccountRepository
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	// FindByOauth returns (nil, nil) when no account matches.
	FindByOauth(ctx context.Context, provider, oauthID string) (*domain.Account, error)
	// FindByNickname returns (nil, nil) when no account matches.
	FindByNickname(ctx context.Context, nickname string) (*domain.Account, error)
	CountByEmail(ctx context.Context, email string) (int64, error)
	CountByNickname(ctx context.Context, nickname string) (int64, error)
	SetOtp(ctx context.Context, id int64, encryptedOtp string, expiredAt time.Time) error
	ClearOtp(ctx context.Context, id int64) error
	UpdateNickname(ctx context.Context, id int64, nickname string) error
	UpdateAvatarURL(ctx context.Context, id int64, avatarURL *string) error
	Delete(ctx context.Context, id int64) error
}

type SessionRepository interface {
	WithTx(tx *gorm.DB) SessionRepository
	Create(ctx context.Context, session *domain.SignedSession) error
	GetByUnique(ctx context.Context, accountID int64, encryptedToken string) (*domain.SignedSession, error)
	UpdateExpiresAt(ctx context.Context, id int64, expiresAt time.Time) error
	Delete(ctx context.Context, id int64) error
}

type ArchivedAccountRepository interface {
	WithTx(tx *gorm.DB) ArchivedAccountRepository
	Create(ctx context.Context, archived *domain.ArchivedAccount) error
	GetByAccountID(ctx context.Context, accountID int64) (*domain.ArchivedAccount, error)
}

type UploadDetailRepository interface {
	WithTx(tx *gorm.DB) UploadDetailRepository
	Create(ctx context.Context, detail *domain.UploadDetail) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UploadDetail, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Query returns a fresh query over upload details for the pagination
	// engine to order and filter.
	Query(ctx context.Context) *gorm.DB
}

type Repositories struct {
	Account         AccountRepository
	Session         SessionRepository
	ArchivedAccount ArchivedAccountRepository
	UploadDetail    UploadDetailRepository
}
