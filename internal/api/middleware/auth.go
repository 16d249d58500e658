package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/hyunwoo/beluga-backend/internal/domain"
	"github.com/hyunwoo/beluga-backend/internal/service"
)

type contextKey string

const (
	accountKey     contextKey = "account"
	accessTokenKey contextKey = "accessToken"
)

// AccessToken extracts the raw token from the Authorization header. The
// header value is the token itself; a "Bearer " prefix is tolerated and
// stripped.
func AccessToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	return strings.TrimPrefix(header, "Bearer ")
}

// Auth validates the bearer token end to end and stores the resolved
// account plus the raw token on the request context.
func Auth(accounts *service.AccountService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accessToken := AccessToken(r)
			if accessToken == "" {
				log.Printf("ERROR [middleware.Auth] missing authorization header")
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			account, err := accounts.ValidateAccessToken(r.Context(), accessToken)
			if err != nil {
				log.Printf("ERROR [middleware.Auth] token validation failed: %v", err)
				status := http.StatusUnauthorized
				if err == domain.ErrAccountNotFound {
					status = http.StatusNotFound
				}
				http.Error(w, "Sign in required", status)
				return
			}

			ctx := context.WithValue(r.Context(), accountKey, account)
			ctx = context.WithValue(ctx, accessTokenKey, accessToken)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAccount returns the authenticated account stored by Auth.
func GetAccount(ctx context.Context) (*domain.Account, bool) {
	account, ok := ctx.Value(accountKey).(*domain.Account)
	return account, ok
}

// GetAccessToken returns the raw bearer token stored by Auth.
func GetAccessToken(ctx context.Context) (string, bool) {
	accessToken, ok := ctx.Value(accessTokenKey).(string)
	return accessToken, ok
}
