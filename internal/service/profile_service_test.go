package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyunwoo/beluga-backend/internal/domain"
	"github.com/hyunwoo/beluga-backend/internal/service"
	"github.com/hyunwoo/beluga-backend/internal/testutil"
)

func TestProfileService_GetProfile(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	account := testutil.NewAccountBuilder().Build(t, f.db.DB)
	rawToken, err := f.svc.Session.MarkSigned(ctx, nil, account)
	require.NoError(t, err)

	got, err := f.svc.Profile.GetProfile(ctx, rawToken)
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)

	_, err = f.svc.Profile.GetProfile(ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrSignInRequired)
}

func TestProfileService_UpdateProfile(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	t.Run("updates nickname and avatar", func(t *testing.T) {
		f.db.Truncate(t)
		account := testutil.NewAccountBuilder().Build(t, f.db.DB)
		rawToken, err := f.svc.Session.MarkSigned(ctx, nil, account)
		require.NoError(t, err)

		avatar := "https://example.com/new-avatar.png"
		updated, err := f.svc.Profile.UpdateProfile(ctx, rawToken, service.UpdateProfileInput{
			Nickname:  "renamed",
			AvatarURL: &avatar,
		})
		require.NoError(t, err)
		assert.Equal(t, "renamed", updated.Nickname)
		require.NotNil(t, updated.AvatarURL)
		assert.Equal(t, avatar, *updated.AvatarURL)
	})

	t.Run("keeping the own nickname is not a duplicate", func(t *testing.T) {
		f.db.Truncate(t)
		account := testutil.NewAccountBuilder().WithNickname("stable").Build(t, f.db.DB)
		rawToken, err := f.svc.Session.MarkSigned(ctx, nil, account)
		require.NoError(t, err)

		updated, err := f.svc.Profile.UpdateProfile(ctx, rawToken, service.UpdateProfileInput{
			Nickname: "stable",
		})
		require.NoError(t, err)
		assert.Equal(t, "stable", updated.Nickname)
		assert.Nil(t, updated.AvatarURL)
	})

	t.Run("taking another nickname conflicts", func(t *testing.T) {
		f.db.Truncate(t)
		testutil.NewAccountBuilder().WithNickname("occupied").Build(t, f.db.DB)
		account := testutil.NewAccountBuilder().Build(t, f.db.DB)
		rawToken, err := f.svc.Session.MarkSigned(ctx, nil, account)
		require.NoError(t, err)

		_, err = f.svc.Profile.UpdateProfile(ctx, rawToken, service.UpdateProfileInput{
			Nickname: "occupied",
		})
		assert.ErrorIs(t, err, domain.ErrDuplicatedNickname)
	})
}
