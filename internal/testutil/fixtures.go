package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hyunwoo/beluga-backend/internal/crypto"
	"github.com/hyunwoo/beluga-backend/internal/domain"
	"github.com/hyunwoo/beluga-backend/internal/oauth"
)

// AccountBuilder creates test accounts with a builder pattern
type AccountBuilder struct {
	email    string
	nickname string
	otp      *string
	otpAge   *time.Duration
}

// NewAccountBuilder creates a new AccountBuilder with default values
func NewAccountBuilder() *AccountBuilder {
	suffix := uuid.New().String()[:8]
	return &AccountBuilder{
		email:    fmt.Sprintf("test_%s@example.com", suffix),
		nickname: fmt.Sprintf("tester_%s", suffix),
	}
}

// WithEmail sets the email
func (b *AccountBuilder) WithEmail(email string) *AccountBuilder {
	b.email = email
	return b
}

// WithNickname sets the nickname
func (b *AccountBuilder) WithNickname(nickname string) *AccountBuilder {
	b.nickname = nickname
	return b
}

// WithOtp stores a pending OTP whose expiry lies the given duration from
// now. Negative durations produce an already expired OTP.
func (b *AccountBuilder) WithOtp(otp string, expiresIn time.Duration) *AccountBuilder {
	b.otp = &otp
	b.otpAge = &expiresIn
	return b
}

// Build creates the account in the database
func (b *AccountBuilder) Build(t *testing.T, db *gorm.DB) *domain.Account {
	t.Helper()

	salt, err := crypto.CreateSalt()
	if err != nil {
		t.Fatalf("failed to create salt: %v", err)
	}

	account := &domain.Account{
		Salt:     salt,
		Email:    b.email,
		Nickname: b.nickname,
	}
	if b.otp != nil {
		hashed := crypto.Encrypt(*b.otp, salt)
		expiredAt := time.Now().Add(*b.otpAge)
		account.Otp = &hashed
		account.OtpExpiredAt = &expiredAt
	}

	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create account: %v", err)
	}

	return account
}

// SentMail records one delivered message
type SentMail struct {
	To       string
	Subject  string
	Template string
	Params   any
}

// RecordingMailer captures outgoing mail instead of delivering it
type RecordingMailer struct {
	mu   sync.Mutex
	sent []SentMail
	err  error
}

func NewRecordingMailer() *RecordingMailer {
	return &RecordingMailer{}
}

func (m *RecordingMailer) Send(ctx context.Context, to, subject, templateName string, params any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, SentMail{To: to, Subject: subject, Template: templateName, Params: params})
	return nil
}

// Sent returns a copy of everything recorded so far
func (m *RecordingMailer) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMail, len(m.sent))
	copy(out, m.sent)
	return out
}

// FailWith makes every following Send return err
func (m *RecordingMailer) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Reset clears recorded mail and any configured failure
func (m *RecordingMailer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
	m.err = nil
}

// FakeOauthProvider serves canned provider responses
type FakeOauthProvider struct {
	mu          sync.Mutex
	Google      *oauth.GooglePayload
	GoogleErr   error
	KakaoToken  *oauth.KakaoTokenResponse
	KakaoErr    error
	KakaoClaims *oauth.KakaoIDTokenPayload
}

func NewFakeOauthProvider() *FakeOauthProvider {
	return &FakeOauthProvider{}
}

func (p *FakeOauthProvider) VerifyGoogleAccessToken(ctx context.Context, accessToken string) (*oauth.GooglePayload, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.GoogleErr != nil {
		return nil, p.GoogleErr
	}
	if p.Google == nil {
		return nil, fmt.Errorf("no google payload configured")
	}
	return p.Google, nil
}

func (p *FakeOauthProvider) ExchangeKakaoCode(ctx context.Context, code, redirectURI string) (*oauth.KakaoTokenResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.KakaoErr != nil {
		return nil, p.KakaoErr
	}
	if p.KakaoToken == nil {
		return nil, fmt.Errorf("no kakao token configured")
	}
	return p.KakaoToken, nil
}

func (p *FakeOauthProvider) DecodeKakaoIDToken(idToken string) (*oauth.KakaoIDTokenPayload, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.KakaoClaims == nil {
		return nil, fmt.Errorf("no kakao claims configured")
	}
	return p.KakaoClaims, nil
}
