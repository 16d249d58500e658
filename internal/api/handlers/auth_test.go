package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyunwoo/beluga-backend/internal/testutil"
)

func postJSON(t *testing.T, url string, body any, headers map[string]string) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestAuthEndpoints_CheckEmail(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp, err := http.Get(ts.APIURL("/auth/check-email?email=free@example.com"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	testutil.NewAccountBuilder().WithEmail("taken@example.com").Build(t, ts.DB.DB)

	resp, err = http.Get(ts.APIURL("/auth/check-email?email=taken@example.com"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, err = http.Get(ts.APIURL("/auth/check-email"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuthEndpoints_OtpLoginFlow(t *testing.T) {
	ts := testutil.NewTestServer(t)

	// Sign up.
	resp := postJSON(t, ts.APIURL("/auth/sign-up"), map[string]string{
		"email":    "flow@example.com",
		"nickname": "flowuser",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Request an OTP; the raw code only exists in the outgoing mail.
	resp = postJSON(t, ts.APIURL("/auth/send-otp"), map[string]string{
		"email": "flow@example.com",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var otpResp struct {
		OtpExpiredAt time.Time `json:"otpExpiredAt"`
	}
	decodeBody(t, resp, &otpResp)
	assert.WithinDuration(t, time.Now().Add(3*time.Minute), otpResp.OtpExpiredAt, 10*time.Second)

	sent := ts.Mailer.Sent()
	require.Len(t, sent, 2) // welcome + otp
	otp := sent[1].Params.(map[string]any)["otp"].(string)

	// Sign in with the code.
	resp = postJSON(t, ts.APIURL("/auth/sign-in"), map[string]string{
		"email": "flow@example.com",
		"otp":   otp,
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var signIn struct {
		ID          int64  `json:"id"`
		Nickname    string `json:"nickname"`
		AccessToken string `json:"accessToken"`
	}
	decodeBody(t, resp, &signIn)
	assert.Equal(t, "flowuser", signIn.Nickname)
	require.NotEmpty(t, signIn.AccessToken)

	auth := map[string]string{"Authorization": "Bearer " + signIn.AccessToken}

	// The token drives auto-login.
	resp = postJSON(t, ts.APIURL("/auth/sign-in/token"), nil, auth)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Replaying the burnt code fails.
	resp = postJSON(t, ts.APIURL("/auth/sign-in"), map[string]string{
		"email": "flow@example.com",
		"otp":   otp,
	}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Sign out, then the token is dead.
	resp = postJSON(t, ts.APIURL("/auth/sign-out"), nil, auth)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, ts.APIURL("/auth/sign-in/token"), nil, auth)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMeEndpoints(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	account := testutil.NewAccountBuilder().WithNickname("profiled").Build(t, ts.DB.DB)
	rawToken, err := ts.Services.Session.MarkSigned(ctx, nil, account)
	require.NoError(t, err)
	auth := map[string]string{"Authorization": "Bearer " + rawToken}

	t.Run("requires a token", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, ts.APIURL("/me/"), nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("returns the profile", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, ts.APIURL("/me/"), nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", auth["Authorization"])
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var profile struct {
			ID       int64  `json:"id"`
			Nickname string `json:"nickname"`
		}
		decodeBody(t, resp, &profile)
		assert.Equal(t, account.ID, profile.ID)
		assert.Equal(t, "profiled", profile.Nickname)
	})

	t.Run("updates the profile", func(t *testing.T) {
		payload, err := json.Marshal(map[string]any{
			"nickname":  "reprofiled",
			"avatarUrl": "https://example.com/a.png",
		})
		require.NoError(t, err)

		req, err := http.NewRequest(http.MethodPut, ts.APIURL("/me/"), bytes.NewReader(payload))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", auth["Authorization"])
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var profile struct {
			Nickname  string  `json:"nickname"`
			AvatarURL *string `json:"avatarUrl"`
		}
		decodeBody(t, resp, &profile)
		assert.Equal(t, "reprofiled", profile.Nickname)
		require.NotNil(t, profile.AvatarURL)
		assert.Equal(t, "https://example.com/a.png", *profile.AvatarURL)
	})
}

func TestDeleteAccountEndpoint(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	account := testutil.NewAccountBuilder().Build(t, ts.DB.DB)
	rawToken, err := ts.Services.Session.MarkSigned(ctx, nil, account)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodDelete, ts.APIURL("/auth/account"), nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+rawToken)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var deleted struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	}
	decodeBody(t, resp, &deleted)
	assert.Equal(t, account.ID, deleted.ID)
	assert.Equal(t, account.Email, deleted.Email)

	// The account no longer authenticates.
	resp2 := postJSON(t, ts.APIURL("/auth/sign-in/token"), nil, map[string]string{
		"Authorization": "Bearer " + rawToken,
	})
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}
