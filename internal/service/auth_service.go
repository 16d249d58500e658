package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hyunwoo/beluga-backend/internal/crypto"
	"github.com/hyunwoo/beluga-backend/internal/domain"
	"github.com/hyunwoo/beluga-backend/internal/mail"
	"github.com/hyunwoo/beluga-backend/internal/oauth"
	"github.com/hyunwoo/beluga-backend/internal/repository"
	"gorm.io/gorm"
)

// Mail templates and subjects for account lifecycle mails.
const (
	welcomeMailSubject  = "가입을 환영합니다"
	welcomeMailTemplate = "welcome.html"

	otpMailSubject  = "로그인 인증 코드"
	otpMailTemplate = "otp.html"

	deleteMailSubject  = "계정이 삭제 되었습니다"
	deleteMailTemplate = "delete-account.html"
)

// OauthProvider is the slice of the OAuth client the auth flows need.
type OauthProvider interface {
	VerifyGoogleAccessToken(ctx context.Context, accessToken string) (*oauth.GooglePayload, error)
	ExchangeKakaoCode(ctx context.Context, code, redirectURI string) (*oauth.KakaoTokenResponse, error)
	DecodeKakaoIDToken(idToken string) (*oauth.KakaoIDTokenPayload, error)
}

// AuthService orchestrates sign-up, OTP login, OAuth login and account
// deletion. It owns the transaction boundaries around account mutations
// that also dispatch mail: if the mail fails, the mutation rolls back.
type AuthService struct {
	db       *gorm.DB
	mailer   mail.Mailer
	oauth    OauthProvider
	accounts *AccountService
	sessions *SessionService
	archived repository.ArchivedAccountRepository
}

func NewAuthService(
	db *gorm.DB,
	mailer mail.Mailer,
	oauthProvider OauthProvider,
	accounts *AccountService,
	sessions *SessionService,
	archived repository.ArchivedAccountRepository,
) *AuthService {
	return &AuthService{
		db:       db,
		mailer:   mailer,
		oauth:    oauthProvider,
		accounts: accounts,
		sessions: sessions,
		archived: archived,
	}
}

// AuthResult is a signed-in account together with its raw access token.
type AuthResult struct {
	Account     *domain.Account
	AccessToken string
}

// DeletedAccount is the identity snapshot returned after account deletion.
type DeletedAccount struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

func (s *AuthService) CheckEmailDuplicated(ctx context.Context, email string) error {
	return s.accounts.CheckDuplicated(ctx, email, "")
}

func (s *AuthService) CheckNicknameDuplicated(ctx context.Context, nickname string) error {
	return s.accounts.CheckDuplicated(ctx, "", nickname)
}

// SignUp creates a new account and sends the welcome mail in one atomic
// unit; a mail failure rolls the account back.
func (s *AuthService) SignUp(ctx context.Context, email, nickname string) (*domain.Account, error) {
	if err := s.accounts.CheckDuplicated(ctx, email, nickname); err != nil {
		return nil, err
	}

	var account *domain.Account
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := s.accounts.Create(ctx, tx, CreateAccountInput{
			Email:    email,
			Nickname: nickname,
		})
		if err != nil {
			return err
		}

		if err := s.mailer.Send(ctx, email, welcomeMailSubject, welcomeMailTemplate, map[string]any{
			"nickname": nickname,
		}); err != nil {
			return err
		}

		account = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// SendOtp issues a fresh OTP for the account behind email and mails it.
// The OTP save and the mail send are one atomic unit.
func (s *AuthService) SendOtp(ctx context.Context, email string) (time.Time, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return time.Time{}, err
	}

	otp, err := crypto.CreateOtp()
	if err != nil {
		return time.Time{}, err
	}

	var otpExpiredAt time.Time
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		expiredAt, err := s.accounts.SaveOtp(ctx, tx, account, otp)
		if err != nil {
			return err
		}

		if err := s.mailer.Send(ctx, email, otpMailSubject, otpMailTemplate, map[string]any{
			"nickname": account.Nickname,
			"otp":      otp,
		}); err != nil {
			return err
		}

		otpExpiredAt = expiredAt
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	return otpExpiredAt, nil
}

// SignIn validates the OTP and marks the account as signed, returning a
// fresh raw access token.
func (s *AuthService) SignIn(ctx context.Context, email, otp string) (*AuthResult, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	var accessToken string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.accounts.ValidateOtp(ctx, tx, account, otp); err != nil {
			return err
		}

		rawToken, err := s.sessions.MarkSigned(ctx, tx, account)
		if err != nil {
			return err
		}

		accessToken = rawToken
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &AuthResult{Account: account, AccessToken: accessToken}, nil
}

// SignInWithToken is the auto-login path: it validates an existing access
// token and returns the account with the same token.
func (s *AuthService) SignInWithToken(ctx context.Context, accessToken string) (*AuthResult, error) {
	if accessToken == "" {
		return nil, domain.ErrSignInRequired
	}

	account, err := s.accounts.ValidateAccessToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Account: account, AccessToken: accessToken}, nil
}

// StartByGoogle signs in with a Google access token, creating the account
// on first login.
func (s *AuthService) StartByGoogle(ctx context.Context, accessToken string) (*AuthResult, error) {
	payload, err := s.oauth.VerifyGoogleAccessToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	if !payload.EmailVerified {
		return nil, domain.ErrNotVerifiedGoogleAccount
	}
	if payload.Name == "" || payload.Email == "" {
		return nil, domain.ErrInvalidTokenPayload
	}

	return s.startByOauth(ctx, "google", payload.Sub, payload.Email, payload.Picture)
}

// StartByKakao signs in with a Kakao authorization code, creating the
// account on first login.
func (s *AuthService) StartByKakao(ctx context.Context, code, redirectURI string) (*AuthResult, error) {
	tokens, err := s.oauth.ExchangeKakaoCode(ctx, code, redirectURI)
	if err != nil {
		return nil, err
	}

	payload, err := s.oauth.DecodeKakaoIDToken(tokens.IDToken)
	if err != nil {
		return nil, err
	}

	if payload.Sub == "" || payload.Email == "" {
		return nil, domain.ErrInvalidTokenPayload
	}

	return s.startByOauth(ctx, "kakao", payload.Sub, payload.Email, payload.Picture)
}

func (s *AuthService) startByOauth(ctx context.Context, provider, oauthID, email, picture string) (*AuthResult, error) {
	account, err := s.accounts.FindByOauth(ctx, provider, oauthID)
	if err != nil {
		return nil, err
	}

	if account == nil {
		nickname, err := s.accounts.RandomNickname(ctx)
		if err != nil {
			return nil, err
		}

		input := CreateAccountInput{
			Email:         email,
			Nickname:      nickname,
			OauthProvider: &provider,
			OauthID:       &oauthID,
		}
		if picture != "" {
			input.AvatarURL = &picture
		}

		account, err = s.accounts.Create(ctx, nil, input)
		if err != nil {
			return nil, err
		}
	}

	rawToken, err := s.sessions.MarkSigned(ctx, nil, account)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Account: account, AccessToken: rawToken}, nil
}

// Logout revokes the session behind the token. It is best-effort: the
// client-visible operation never fails, failures are only logged.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	account, err := s.accounts.ValidateAccessToken(ctx, accessToken)
	if err != nil {
		log.Printf("ERROR [AuthService.Logout] token validation failed: %v", err)
		return nil
	}

	encryptedToken := crypto.Encrypt(accessToken, account.Salt)

	session, err := s.sessions.GetByUnique(ctx, account.ID, encryptedToken)
	if err != nil {
		log.Printf("ERROR [AuthService.Logout] session lookup failed: %v", err)
		return nil
	}

	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		log.Printf("ERROR [AuthService.Logout] session delete failed: %v", err)
	}
	return nil
}

// DeleteAccount archives a snapshot of the account, deletes it (the ledger
// rows cascade) and sends the deletion notice, all in one atomic unit.
func (s *AuthService) DeleteAccount(ctx context.Context, accessToken string) (*DeletedAccount, error) {
	account, err := s.accounts.ValidateAccessToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	deleted := &DeletedAccount{
		ID:       account.ID,
		Email:    account.Email,
		Nickname: account.Nickname,
	}

	snapshot, err := json.Marshal(account)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.archived.WithTx(tx).Create(ctx, &domain.ArchivedAccount{
			ID:        uuid.New(),
			AccountID: account.ID,
			Account:   snapshot,
			CreatedAt: time.Now(),
		}); err != nil {
			return err
		}

		if err := s.accounts.Delete(ctx, tx, account.ID); err != nil {
			return err
		}

		return s.mailer.Send(ctx, deleted.Email, deleteMailSubject, deleteMailTemplate, map[string]any{
			"nickname": deleted.Nickname,
		})
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}
