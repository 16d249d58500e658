package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyunwoo/beluga-backend/internal/domain"
	"github.com/hyunwoo/beluga-backend/internal/repository/postgres"
	"github.com/hyunwoo/beluga-backend/internal/testutil"
)

func TestAccountRepository_UniqueConstraints(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	existing := testutil.NewAccountBuilder().
		WithEmail("unique@example.com").
		WithNickname("unique").
		Build(t, testDB.DB)

	t.Run("duplicate email is rejected by the database", func(t *testing.T) {
		err := repos.Account.Create(ctx, &domain.Account{
			Salt:     existing.Salt,
			Email:    "unique@example.com",
			Nickname: "other",
		})
		assert.Error(t, err)
	})

	t.Run("duplicate nickname is rejected by the database", func(t *testing.T) {
		err := repos.Account.Create(ctx, &domain.Account{
			Salt:     existing.Salt,
			Email:    "other@example.com",
			Nickname: "unique",
		})
		assert.Error(t, err)
	})
}

func TestAccountRepository_Otp(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	account := testutil.NewAccountBuilder().Build(t, testDB.DB)

	expiredAt := time.Now().Add(3 * time.Minute)
	require.NoError(t, repos.Account.SetOtp(ctx, account.ID, "encrypted-otp", expiredAt))

	stored, err := repos.Account.GetByID(ctx, account.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Otp)
	assert.Equal(t, "encrypted-otp", *stored.Otp)
	require.NotNil(t, stored.OtpExpiredAt)

	require.NoError(t, repos.Account.ClearOtp(ctx, account.ID))

	cleared, err := repos.Account.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Nil(t, cleared.Otp)
	assert.Nil(t, cleared.OtpExpiredAt)
}

func TestAccountRepository_FindMissing(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	// Absent rows are (nil, nil), not an error; the service decides what
	// absence means.
	account, err := repos.Account.FindByOauth(ctx, "google", "no-such-sub")
	require.NoError(t, err)
	assert.Nil(t, account)

	account, err = repos.Account.FindByNickname(ctx, "no-such-nickname")
	require.NoError(t, err)
	assert.Nil(t, account)
}

func TestSessionRepository_UniquePair(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	account := testutil.NewAccountBuilder().Build(t, testDB.DB)

	session := &domain.SignedSession{
		AccountID:      account.ID,
		EncryptedToken: "token-derivation",
		ExpiresAt:      time.Now().Add(time.Hour),
		CreatedAt:      time.Now(),
	}
	require.NoError(t, repos.Session.Create(ctx, session))

	// Same pair again violates the ledger uniqueness.
	err := repos.Session.Create(ctx, &domain.SignedSession{
		AccountID:      account.ID,
		EncryptedToken: "token-derivation",
		ExpiresAt:      time.Now().Add(time.Hour),
	})
	assert.Error(t, err)

	// A different derivation for the same account is fine.
	require.NoError(t, repos.Session.Create(ctx, &domain.SignedSession{
		AccountID:      account.ID,
		EncryptedToken: "another-derivation",
		ExpiresAt:      time.Now().Add(time.Hour),
	}))
}

func TestSessionRepository_CascadeOnAccountDelete(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	account := testutil.NewAccountBuilder().Build(t, testDB.DB)
	require.NoError(t, repos.Session.Create(ctx, &domain.SignedSession{
		AccountID:      account.ID,
		EncryptedToken: "derivation",
		ExpiresAt:      time.Now().Add(time.Hour),
	}))

	require.NoError(t, repos.Account.Delete(ctx, account.ID))

	var count int64
	require.NoError(t, testDB.DB.Model(&domain.SignedSession{}).
		Where("account_id = ?", account.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}
