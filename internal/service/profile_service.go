package service

import (
	"context"

	"github.com/hyunwoo/beluga-backend/internal/domain"
	"gorm.io/gorm"
)

// ProfileService handles the signed user's own profile.
type ProfileService struct {
	db       *gorm.DB
	accounts *AccountService
}

func NewProfileService(db *gorm.DB, accounts *AccountService) *ProfileService {
	return &ProfileService{
		db:       db,
		accounts: accounts,
	}
}

// GetProfile resolves the account behind the access token.
func (s *ProfileService) GetProfile(ctx context.Context, accessToken string) (*domain.Account, error) {
	return s.accounts.ValidateAccessToken(ctx, accessToken)
}

type UpdateProfileInput struct {
	Nickname  string
	AvatarURL *string
}

// UpdateProfile updates nickname and avatar in one atomic unit. The
// nickname is duplicate-checked only when it actually changes.
func (s *ProfileService) UpdateProfile(ctx context.Context, accessToken string, input UpdateProfileInput) (*domain.Account, error) {
	account, err := s.accounts.ValidateAccessToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	if input.Nickname != account.Nickname {
		if err := s.accounts.CheckDuplicated(ctx, "", input.Nickname); err != nil {
			return nil, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.accounts.UpdateNickname(ctx, tx, account.ID, input.Nickname); err != nil {
			return err
		}
		return s.accounts.UpdateAvatarURL(ctx, tx, account.ID, input.AvatarURL)
	})
	if err != nil {
		return nil, err
	}

	return s.accounts.GetByID(ctx, account.ID)
}
