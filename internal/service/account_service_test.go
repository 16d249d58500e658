package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hyunwoo/beluga-backend/internal/crypto"
	"github.com/hyunwoo/beluga-backend/internal/domain"
	"github.com/hyunwoo/beluga-backend/internal/repository"
	"github.com/hyunwoo/beluga-backend/internal/repository/postgres"
	"github.com/hyunwoo/beluga-backend/internal/service"
	"github.com/hyunwoo/beluga-backend/internal/testutil"
	"github.com/hyunwoo/beluga-backend/internal/token"
)

// countingSessionRepo counts ledger lookups so tests can observe whether
// the session store was consulted at all.
type countingSessionRepo struct {
	repository.SessionRepository
	getByUniqueCalls int
}

func (r *countingSessionRepo) WithTx(tx *gorm.DB) repository.SessionRepository {
	return r
}

func (r *countingSessionRepo) GetByUnique(ctx context.Context, accountID int64, encryptedToken string) (*domain.SignedSession, error) {
	r.getByUniqueCalls++
	return r.SessionRepository.GetByUnique(ctx, accountID, encryptedToken)
}

// collidingAccountRepo reports the first n nickname lookups as taken and
// every later one as free. Only FindByNickname is implemented; the
// embedded nil interface panics on anything else.
type collidingAccountRepo struct {
	repository.AccountRepository
	collisions int
	calls      int
}

func (r *collidingAccountRepo) FindByNickname(ctx context.Context, nickname string) (*domain.Account, error) {
	r.calls++
	if r.calls <= r.collisions {
		return &domain.Account{Nickname: nickname}, nil
	}
	return nil, nil
}

func newAccountService(t *testing.T) (*testutil.TestDB, *service.AccountService, *service.SessionService, *token.Codec) {
	t.Helper()

	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	codec := token.NewCodec(cfg.JWTSecret, cfg.JWTIssuer)

	sessions := service.NewSessionService(repos.Session, codec)
	accounts := service.NewAccountService(repos.Account, sessions, codec)
	return testDB, accounts, sessions, codec
}

func TestAccountService_CheckDuplicated(t *testing.T) {
	testDB, accounts, _, _ := newAccountService(t)
	ctx := context.Background()

	existing := testutil.NewAccountBuilder().
		WithEmail("taken@example.com").
		WithNickname("taken").
		Build(t, testDB.DB)

	tests := []struct {
		name     string
		email    string
		nickname string
		wantErr  error
	}{
		{name: "both available", email: "free@example.com", nickname: "free"},
		{name: "email taken", email: existing.Email, nickname: "free", wantErr: domain.ErrDuplicatedEmail},
		{name: "nickname taken", email: "free@example.com", nickname: existing.Nickname, wantErr: domain.ErrDuplicatedNickname},
		{name: "empty arguments skipped", email: "", nickname: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := accounts.CheckDuplicated(ctx, tt.email, tt.nickname)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAccountService_ValidateAccessToken(t *testing.T) {
	testDB, accounts, sessions, codec := newAccountService(t)
	ctx := context.Background()

	account := testutil.NewAccountBuilder().Build(t, testDB.DB)
	rawToken, err := sessions.MarkSigned(ctx, nil, account)
	require.NoError(t, err)

	t.Run("valid token resolves the account", func(t *testing.T) {
		got, err := accounts.ValidateAccessToken(ctx, rawToken)
		require.NoError(t, err)
		assert.Equal(t, account.ID, got.ID)
		assert.Equal(t, account.Email, got.Email)
	})

	t.Run("validation renews the sliding expiry", func(t *testing.T) {
		aged := time.Now().Add(time.Hour)
		require.NoError(t, testDB.DB.Model(&domain.SignedSession{}).
			Where("account_id = ?", account.ID).Update("expires_at", aged).Error)

		_, err := accounts.ValidateAccessToken(ctx, rawToken)
		require.NoError(t, err)

		var session domain.SignedSession
		require.NoError(t, testDB.DB.First(&session, "account_id = ?", account.ID).Error)
		assert.True(t, session.ExpiresAt.After(aged))
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := accounts.ValidateAccessToken(ctx, "not-a-token")
		assert.ErrorIs(t, err, domain.ErrSignInRequired)
	})

	t.Run("well signed token for unknown account", func(t *testing.T) {
		orphan, err := codec.Sign(9999, "ghost@example.com")
		require.NoError(t, err)

		_, err = accounts.ValidateAccessToken(ctx, orphan)
		assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	})

	t.Run("well signed token without ledger row", func(t *testing.T) {
		// A second mint for the same account, then revoke it: the token
		// still verifies but the ledger no longer backs it.
		extra, err := sessions.MarkSigned(ctx, nil, account)
		require.NoError(t, err)

		var count int64
		require.NoError(t, testDB.DB.Model(&domain.SignedSession{}).
			Where("account_id = ?", account.ID).Count(&count).Error)
		require.EqualValues(t, 2, count)

		encrypted := crypto.Encrypt(extra, account.Salt)
		var session domain.SignedSession
		require.NoError(t, testDB.DB.
			First(&session, "account_id = ? AND encrypted_token = ?", account.ID, encrypted).Error)
		require.NoError(t, sessions.Delete(ctx, session.ID))

		_, err = accounts.ValidateAccessToken(ctx, extra)
		assert.ErrorIs(t, err, domain.ErrSignInRequired)
	})

	t.Run("expired session is rejected and dropped", func(t *testing.T) {
		expired, err := sessions.MarkSigned(ctx, nil, account)
		require.NoError(t, err)

		encrypted := crypto.Encrypt(expired, account.Salt)
		require.NoError(t, testDB.DB.Model(&domain.SignedSession{}).
			Where("account_id = ? AND encrypted_token = ?", account.ID, encrypted).
			Update("expires_at", time.Now().Add(-time.Minute)).Error)

		_, err = accounts.ValidateAccessToken(ctx, expired)
		assert.ErrorIs(t, err, domain.ErrSignInRequired)

		var count int64
		require.NoError(t, testDB.DB.Model(&domain.SignedSession{}).
			Where("account_id = ? AND encrypted_token = ?", account.ID, encrypted).
			Count(&count).Error)
		assert.EqualValues(t, 0, count)
	})
}

func TestAccountService_ValidateOtp(t *testing.T) {
	testDB, accounts, _, _ := newAccountService(t)
	ctx := context.Background()

	otpCleared := func(t *testing.T, id int64) {
		t.Helper()
		var stored domain.Account
		require.NoError(t, testDB.DB.First(&stored, "id = ?", id).Error)
		assert.Nil(t, stored.Otp)
		assert.Nil(t, stored.OtpExpiredAt)
	}

	t.Run("no otp stored", func(t *testing.T) {
		account := testutil.NewAccountBuilder().Build(t, testDB.DB)
		err := accounts.ValidateOtp(ctx, nil, account, "ABCDE12345")
		assert.ErrorIs(t, err, domain.ErrOtpNotFound)
	})

	t.Run("expired otp is rejected and cleared", func(t *testing.T) {
		account := testutil.NewAccountBuilder().
			WithOtp("ABCDE12345", -time.Minute).
			Build(t, testDB.DB)

		err := accounts.ValidateOtp(ctx, nil, account, "ABCDE12345")
		assert.ErrorIs(t, err, domain.ErrExpiredOtp)
		otpCleared(t, account.ID)
	})

	t.Run("wrong otp is rejected and cleared", func(t *testing.T) {
		account := testutil.NewAccountBuilder().
			WithOtp("ABCDE12345", time.Minute).
			Build(t, testDB.DB)

		err := accounts.ValidateOtp(ctx, nil, account, "WrongCode1")
		assert.ErrorIs(t, err, domain.ErrInvalidOtp)
		otpCleared(t, account.ID)
	})

	t.Run("correct otp succeeds and is cleared", func(t *testing.T) {
		account := testutil.NewAccountBuilder().
			WithOtp("ABCDE12345", time.Minute).
			Build(t, testDB.DB)

		require.NoError(t, accounts.ValidateOtp(ctx, nil, account, "ABCDE12345"))
		otpCleared(t, account.ID)
	})
}

func TestAccountService_RandomNickname(t *testing.T) {
	_, accounts, _, _ := newAccountService(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		nickname, err := accounts.RandomNickname(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, nickname)

		// adjective + noun + numeric suffix
		assert.True(t, strings.IndexFunc(nickname, func(r rune) bool {
			return r >= '0' && r <= '9'
		}) > 0, "nickname %q has no numeric suffix", nickname)

		seen[nickname] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestAccountService_ValidateAccessToken_GateOrder(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	codec := token.NewCodec(cfg.JWTSecret, cfg.JWTIssuer)
	ctx := context.Background()

	spy := &countingSessionRepo{SessionRepository: repos.Session}
	sessions := service.NewSessionService(spy, codec)
	accounts := service.NewAccountService(repos.Account, sessions, codec)

	t.Run("unknown account fails before the ledger is touched", func(t *testing.T) {
		orphan, err := codec.Sign(9999, "ghost@example.com")
		require.NoError(t, err)

		_, err = accounts.ValidateAccessToken(ctx, orphan)
		assert.ErrorIs(t, err, domain.ErrAccountNotFound)
		assert.Equal(t, 0, spy.getByUniqueCalls)
	})

	t.Run("garbage token fails before the ledger is touched", func(t *testing.T) {
		_, err := accounts.ValidateAccessToken(ctx, "not-a-token")
		assert.ErrorIs(t, err, domain.ErrSignInRequired)
		assert.Equal(t, 0, spy.getByUniqueCalls)
	})

	t.Run("known account reaches the ledger exactly once", func(t *testing.T) {
		account := testutil.NewAccountBuilder().Build(t, testDB.DB)
		rawToken, err := sessions.MarkSigned(ctx, nil, account)
		require.NoError(t, err)

		_, err = accounts.ValidateAccessToken(ctx, rawToken)
		require.NoError(t, err)
		assert.Equal(t, 1, spy.getByUniqueCalls)
	})
}

func TestAccountService_RandomNickname_RetryBound(t *testing.T) {
	ctx := context.Background()

	trailingDigits := func(s string) int {
		n := 0
		for i := len(s) - 1; i >= 0; i-- {
			if s[i] < '0' || s[i] > '9' {
				break
			}
			n++
		}
		return n
	}

	t.Run("no collision uses the short suffix", func(t *testing.T) {
		repo := &collidingAccountRepo{}
		accounts := service.NewAccountService(repo, nil, nil)

		nickname, err := accounts.RandomNickname(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, repo.calls)
		assert.Equal(t, 5, trailingDigits(nickname))
	})

	t.Run("exhausting the short suffix falls back to the wide one", func(t *testing.T) {
		repo := &collidingAccountRepo{collisions: 10}
		accounts := service.NewAccountService(repo, nil, nil)

		nickname, err := accounts.RandomNickname(ctx)
		require.NoError(t, err)
		assert.Equal(t, 11, repo.calls)
		assert.Equal(t, 8, trailingDigits(nickname))
	})

	t.Run("permanent collisions end in an error", func(t *testing.T) {
		repo := &collidingAccountRepo{collisions: 1 << 30}
		accounts := service.NewAccountService(repo, nil, nil)

		_, err := accounts.RandomNickname(ctx)
		require.Error(t, err)
		assert.Equal(t, 20, repo.calls)
	})
}
