package postgres

import (
	"context"

	"github.com/hyunwoo/beluga-backend/internal/domain"
	"github.com/hyunwoo/beluga-backend/internal/repository"
	"gorm.io/gorm"
)

type archivedAccountRepository struct {
	db *gorm.DB
}

func NewArchivedAccountRepository(db *gorm.DB) repository.ArchivedAccountRepository {
	return &archivedAccountRepository{db: db}
}

func (r *archivedAccountRepository) WithTx(tx *gorm.DB) repository.ArchivedAccountRepository {
	if tx == nil {
		return r
	}
	return &archivedAccountRepository{db: tx}
}

func (r *archivedAccountRepository) Create(ctx context.Context, archived *domain.ArchivedAccount) error {
	return r.db.WithContext(ctx).Create(archived).Error
}

func (r *archivedAccountRepository) GetByAccountID(ctx context.Context, accountID int64) (*domain.ArchivedAccount, error) {
	var archived domain.ArchivedAccount
	err := r.db.WithContext(ctx).First(&archived, "account_id = ?", accountID).Error
	if err != nil {
		return nil, err
	}
	return &archived, nil
}
