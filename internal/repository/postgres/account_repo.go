package postgres

import (
	"context"
	"time"

	"github.com/hyunwoo/beluga-backend/internal/domain"
	"github.com/hyunwoo/beluga-backend/internal/repository"
	"gorm.io/gorm"
)

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) WithTx(tx *gorm.DB) repository.AccountRepository {
	if tx == nil {
		return r
	}
	return &accountRepository{db: tx}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *accountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	var account domain.Account
	err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var account domain.Account
	err := r.db.WithContext(ctx).First(&account, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) FindByOauth(ctx context.Context, provider, oauthID string) (*domain.Account, error) {
	var account domain.Account
	err := r.db.WithContext(ctx).
		First(&account, "oauth_provider = ? AND oauth_id = ?", provider, oauthID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) FindByNickname(ctx context.Context, nickname string) (*domain.Account, error) {
	var account domain.Account
	err := r.db.WithContext(ctx).First(&account, "nickname = ?", nickname).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) CountByEmail(ctx context.Context, email string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Account{}).Where("email = ?", email).Count(&count).Error
	return count, err
}

func (r *accountRepository) CountByNickname(ctx context.Context, nickname string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Account{}).Where("nickname = ?", nickname).Count(&count).Error
	return count, err
}

func (r *accountRepository) SetOtp(ctx context.Context, id int64, encryptedOtp string, expiredAt time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Account{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"otp":            encryptedOtp,
			"otp_expired_at": expiredAt,
		}).Error
}

func (r *accountRepository) ClearOtp(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&domain.Account{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"otp":            nil,
			"otp_expired_at": nil,
		}).Error
}

func (r *accountRepository) UpdateNickname(ctx context.Context, id int64, nickname string) error {
	return r.db.WithContext(ctx).Model(&domain.Account{}).Where("id = ?", id).
		Update("nickname", nickname).Error
}

func (r *accountRepository) UpdateAvatarURL(ctx context.Context, id int64, avatarURL *string) error {
	return r.db.WithContext(ctx).Model(&domain.Account{}).Where("id = ?", id).
		Update("avatar_url", avatarURL).Error
}

func (r *accountRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&domain.Account{}, "id = ?", id).Error
}
