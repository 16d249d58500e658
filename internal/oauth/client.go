package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hyunwoo/beluga-backend/internal/config"
)

// GooglePayload is the normalized userinfo response for a Google access
// token.
type GooglePayload struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// KakaoTokenResponse is the relevant part of Kakao's token endpoint
// response.
type KakaoTokenResponse struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
}

// KakaoIDTokenPayload is the normalized claim set of a Kakao id token.
type KakaoIDTokenPayload struct {
	Sub      string
	Email    string
	Nickname string
	Picture  string
}

// Client talks to the OAuth providers. All calls honor the request context
// through the injected HTTP client.
type Client struct {
	httpClient *http.Client

	googleUserinfoURL string
	kakaoTokenURL     string
	kakaoClientID     string
	kakaoClientSecret string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		googleUserinfoURL: cfg.GoogleUserinfoURL,
		kakaoTokenURL:     cfg.KakaoTokenURL,
		kakaoClientID:     cfg.KakaoClientID,
		kakaoClientSecret: cfg.KakaoClientSecret,
	}
}

// VerifyGoogleAccessToken resolves an access token against Google's
// userinfo endpoint.
func (c *Client) VerifyGoogleAccessToken(ctx context.Context, accessToken string) (*GooglePayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.googleUserinfoURL, nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Set("access_token", accessToken)
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google userinfo request failed with status %d", resp.StatusCode)
	}

	var payload GooglePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode google userinfo response: %w", err)
	}
	return &payload, nil
}

// ExchangeKakaoCode trades an authorization code for Kakao tokens.
func (c *Client) ExchangeKakaoCode(ctx context.Context, code, redirectURI string) (*KakaoTokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", c.kakaoClientID)
	form.Set("client_secret", c.kakaoClientSecret)
	form.Set("redirect_uri", redirectURI)
	form.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.kakaoTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kakao token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kakao token request failed with status %d", resp.StatusCode)
	}

	var payload KakaoTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode kakao token response: %w", err)
	}
	return &payload, nil
}

// DecodeKakaoIDToken extracts the claims of a Kakao id token. The token
// arrives fresh from Kakao's token endpoint over TLS, so the signature is
// not re-verified here.
func (c *Client) DecodeKakaoIDToken(idToken string) (*KakaoIDTokenPayload, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return nil, fmt.Errorf("failed to decode kakao id token: %w", err)
	}

	payload := &KakaoIDTokenPayload{}
	payload.Sub, _ = claims["sub"].(string)
	payload.Email, _ = claims["email"].(string)
	payload.Nickname, _ = claims["nickname"].(string)
	payload.Picture, _ = claims["picture"].(string)
	return payload, nil
}
