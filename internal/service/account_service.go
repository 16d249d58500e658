package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/hyunwoo/beluga-backend/internal/crypto"
	"github.com/hyunwoo/beluga-backend/internal/domain"
	"github.com/hyunwoo/beluga-backend/internal/repository"
	"github.com/hyunwoo/beluga-backend/internal/token"
	"gorm.io/gorm"
)

// otpTTL is how long an issued OTP stays valid.
const otpTTL = 3 * time.Minute

// nicknameMaxAttempts caps the collision-retry loop of RandomNickname
// before falling back to a wider numeric suffix.
const nicknameMaxAttempts = 10

// AccountService is the account directory: it owns account records and
// orchestrates the session ledger to validate bearer tokens end to end.
type AccountService struct {
	repo     repository.AccountRepository
	sessions *SessionService
	codec    *token.Codec
}

func NewAccountService(repo repository.AccountRepository, sessions *SessionService, codec *token.Codec) *AccountService {
	return &AccountService{
		repo:     repo,
		sessions: sessions,
		codec:    codec,
	}
}

type CreateAccountInput struct {
	Email         string
	Nickname      string
	OauthProvider *string
	OauthID       *string
	AvatarURL     *string
}

func (s *AccountService) Create(ctx context.Context, tx *gorm.DB, input CreateAccountInput) (*domain.Account, error) {
	salt, err := crypto.CreateSalt()
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		Email:         input.Email,
		Nickname:      input.Nickname,
		Salt:          salt,
		OauthProvider: input.OauthProvider,
		OauthID:       input.OauthID,
		AvatarURL:     input.AvatarURL,
		CreatedAt:     time.Now(),
	}

	if err := s.repo.WithTx(tx).Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *AccountService) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func (s *AccountService) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func (s *AccountService) FindByOauth(ctx context.Context, provider, oauthID string) (*domain.Account, error) {
	return s.repo.FindByOauth(ctx, provider, oauthID)
}

func (s *AccountService) IsEmailDuplicated(ctx context.Context, email string) (bool, error) {
	count, err := s.repo.CountByEmail(ctx, email)
	return count > 0, err
}

func (s *AccountService) IsNicknameDuplicated(ctx context.Context, nickname string) (bool, error) {
	count, err := s.repo.CountByNickname(ctx, nickname)
	return count > 0, err
}

// CheckDuplicated verifies email/nickname availability; empty arguments are
// skipped. The storage unique constraints remain the last line of defense
// against races.
func (s *AccountService) CheckDuplicated(ctx context.Context, email, nickname string) error {
	if email != "" {
		duplicated, err := s.IsEmailDuplicated(ctx, email)
		if err != nil {
			return err
		}
		if duplicated {
			return domain.ErrDuplicatedEmail
		}
	}

	if nickname != "" {
		duplicated, err := s.IsNicknameDuplicated(ctx, nickname)
		if err != nil {
			return err
		}
		if duplicated {
			return domain.ErrDuplicatedNickname
		}
	}

	return nil
}

// ValidateAccessToken authenticates a raw bearer token. Each step is a hard
// gate, in this exact order:
//
//  1. verify the token signature and issuer
//  2. resolve the account by the token's email claim
//  3. re-derive the ledger lookup key with the account's salt
//  4. confirm an unexpired ledger row exists for the pair
//  5. renew the session's sliding expiry
//
// Step 3 needs the salt resolved in step 2, so a well-signed token for a
// nonexistent account fails before the ledger is ever touched.
func (s *AccountService) ValidateAccessToken(ctx context.Context, rawToken string) (*domain.Account, error) {
	claims, err := s.codec.Verify(rawToken)
	if err != nil {
		return nil, domain.ErrSignInRequired
	}

	account, err := s.GetByEmail(ctx, claims.Email)
	if err != nil {
		return nil, err
	}

	encryptedToken := crypto.Encrypt(rawToken, account.Salt)

	session, err := s.sessions.GetByUnique(ctx, account.ID, encryptedToken)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrSignInRequired
		}
		return nil, err
	}

	if session.ExpiresAt.Before(time.Now()) {
		if err := s.sessions.Delete(ctx, session.ID); err != nil {
			return nil, err
		}
		return nil, domain.ErrSignInRequired
	}

	if err := s.sessions.Renew(ctx, session.ID); err != nil {
		return nil, err
	}

	return account, nil
}

// SaveOtp encrypts the OTP with the account salt and stores it with a short
// expiry. Returns the expiry date for the client.
func (s *AccountService) SaveOtp(ctx context.Context, tx *gorm.DB, account *domain.Account, otp string) (time.Time, error) {
	expiredAt := time.Now().Add(otpTTL)
	encryptedOtp := crypto.Encrypt(otp, account.Salt)

	if err := s.repo.WithTx(tx).SetOtp(ctx, account.ID, encryptedOtp, expiredAt); err != nil {
		return time.Time{}, err
	}
	return expiredAt, nil
}

// ValidateOtp compares the encrypted candidate to the stored OTP. The
// stored OTP is cleared on every attempt outcome, so a code can be tried at
// most once.
func (s *AccountService) ValidateOtp(ctx context.Context, tx *gorm.DB, account *domain.Account, otp string) error {
	if account.Otp == nil || account.OtpExpiredAt == nil {
		return domain.ErrOtpNotFound
	}

	if account.OtpExpiredAt.Before(time.Now()) {
		if err := s.RemoveOtp(ctx, tx, account); err != nil {
			return err
		}
		return domain.ErrExpiredOtp
	}

	if crypto.Encrypt(otp, account.Salt) != *account.Otp {
		if err := s.RemoveOtp(ctx, tx, account); err != nil {
			return err
		}
		return domain.ErrInvalidOtp
	}

	return s.RemoveOtp(ctx, tx, account)
}

func (s *AccountService) RemoveOtp(ctx context.Context, tx *gorm.DB, account *domain.Account) error {
	return s.repo.WithTx(tx).ClearOtp(ctx, account.ID)
}

func (s *AccountService) UpdateNickname(ctx context.Context, tx *gorm.DB, id int64, nickname string) error {
	return s.repo.WithTx(tx).UpdateNickname(ctx, id, nickname)
}

func (s *AccountService) UpdateAvatarURL(ctx context.Context, tx *gorm.DB, id int64, avatarURL *string) error {
	return s.repo.WithTx(tx).UpdateAvatarURL(ctx, id, avatarURL)
}

func (s *AccountService) Delete(ctx context.Context, tx *gorm.DB, id int64) error {
	return s.repo.WithTx(tx).Delete(ctx, id)
}

var nicknameAdjectives = []string{
	"뛰어난", "놀라운", "힘센", "반짝이는", "창백한", "미끄러운", "따가운",
	"불타는", "매력적인", "까부는", "애정어린", "차가운", "청아한", "청초한",
	"무서운", "매서운", "날카로운", "무딘", "둔한", "예민한", "섬세한",
	"순진한", "순수한", "예쁜", "붉은", "파란", "검은", "새까만",
}

var nicknameNouns = []string{
	"벨루가", "원숭이", "고릴라", "침팬치", "토끼", "고양이", "멍멍이",
	"펭귄", "드래곤", "코끼리", "여우", "늑대", "살쾡이", "코요테", "라마",
	"부엉이", "거북이", "악어", "사슴", "노루", "고라니", "까마귀", "참새",
	"독수리", "거위", "오리", "너구리", "조랑말", "당나귀", "살모사",
	"구렁이", "까치", "제비", "돌고래", "향유고래", "범고래", "북극곰",
	"물범", "표범", "호랑이", "사자", "하이에나", "가젤", "코뿔소", "들소", "물소",
}

// RandomNickname generates an unused nickname from the word pools. The
// retry loop is bounded: after nicknameMaxAttempts collisions with a
// 5-digit suffix it retries with an 8-digit suffix before giving up.
func (s *AccountService) RandomNickname(ctx context.Context) (string, error) {
	for attempt := 0; attempt < nicknameMaxAttempts*2; attempt++ {
		wide := attempt >= nicknameMaxAttempts
		nickname := randomNickname(wide)

		existing, err := s.repo.FindByNickname(ctx, nickname)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return nickname, nil
		}
	}

	return "", fmt.Errorf("failed to generate a unique nickname after %d attempts", nicknameMaxAttempts*2)
}

func randomNickname(wide bool) string {
	adjective := nicknameAdjectives[rand.IntN(len(nicknameAdjectives))]
	noun := nicknameNouns[rand.IntN(len(nicknameNouns))]

	if wide {
		return fmt.Sprintf("%s%s%08d", adjective, noun, rand.IntN(100000000))
	}
	return fmt.Sprintf("%s%s%d", adjective, noun, rand.IntN(90000)+10000)
}
