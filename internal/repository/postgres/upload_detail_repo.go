package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/hyunwoo/beluga-backend/internal/domain"
	"github.com/hyunwoo/beluga-backend/internal/repository"
	"gorm.io/gorm"
)

type uploadDetailRepository struct {
	db *gorm.DB
}

func NewUploadDetailRepository(db *gorm.DB) repository.UploadDetailRepository {
	return &uploadDetailRepository{db: db}
}

func (r *uploadDetailRepository) WithTx(tx *gorm.DB) repository.UploadDetailRepository {
	if tx == nil {
		return r
	}
	return &uploadDetailRepository{db: tx}
}

func (r *uploadDetailRepository) Create(ctx context.Context, detail *domain.UploadDetail) error {
	return r.db.WithContext(ctx).Create(detail).Error
}

func (r *uploadDetailRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.UploadDetail, error) {
	var detail domain.UploadDetail
	err := r.db.WithContext(ctx).First(&detail, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *uploadDetailRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.UploadDetail{}, "id = ?", id).Error
}

func (r *uploadDetailRepository) Query(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&domain.UploadDetail{})
}
