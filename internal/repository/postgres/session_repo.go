package postgres

import (
	"context"
	"time"

	"github.com/hyunwoo/beluga-backend/internal/domain"
	"github.com/hyunwoo/beluga-backend/internal/repository"
	"gorm.io/gorm"
)

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) WithTx(tx *gorm.DB) repository.SessionRepository {
	if tx == nil {
		return r
	}
	return &sessionRepository{db: tx}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.SignedSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) GetByUnique(ctx context.Context, accountID int64, encryptedToken string) (*domain.SignedSession, error) {
	var session domain.SignedSession
	err := r.db.WithContext(ctx).
		First(&session, "account_id = ? AND encrypted_token = ?", accountID, encryptedToken).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) UpdateExpiresAt(ctx context.Context, id int64, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.SignedSession{}).Where("id = ?", id).
		Update("expires_at", expiresAt).Error
}

func (r *sessionRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&domain.SignedSession{}, "id = ?", id).Error
}
