package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/hyunwoo/beluga-backend/internal/domain"
	"github.com/hyunwoo/beluga-backend/internal/pagination"
)

// writeError maps domain errors to HTTP statuses. Unknown errors are
// logged and reported as internal server errors without detail.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSignInRequired):
		http.Error(w, "Sign in required", http.StatusUnauthorized)
	case errors.Is(err, domain.ErrAccountNotFound):
		http.Error(w, "Account not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrDuplicatedEmail):
		http.Error(w, "Email already exists", http.StatusConflict)
	case errors.Is(err, domain.ErrDuplicatedNickname):
		http.Error(w, "Nickname already exists", http.StatusConflict)
	case errors.Is(err, domain.ErrOtpNotFound):
		http.Error(w, "OTP not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrExpiredOtp):
		http.Error(w, "OTP is expired", http.StatusUnauthorized)
	case errors.Is(err, domain.ErrInvalidOtp):
		http.Error(w, "OTP does not match", http.StatusUnauthorized)
	case errors.Is(err, domain.ErrUploadDetailNotFound):
		http.Error(w, "File not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrNotVerifiedGoogleAccount):
		http.Error(w, "Google account is not verified", http.StatusBadRequest)
	case errors.Is(err, domain.ErrInvalidTokenPayload):
		http.Error(w, "Invalid token payload", http.StatusBadRequest)
	case errors.Is(err, pagination.ErrInvalidCursor):
		http.Error(w, "Invalid cursor", http.StatusBadRequest)
	default:
		log.Printf("ERROR [handlers] unexpected error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
