package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hyunwoo/beluga-backend/internal/api/middleware"
	"github.com/hyunwoo/beluga-backend/internal/domain"
	"github.com/hyunwoo/beluga-backend/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

type SendOtpRequest struct {
	Email string `json:"email"`
}

type SignInRequest struct {
	Email string `json:"email"`
	Otp   string `json:"otp"`
}

type StartByGoogleRequest struct {
	AccessToken string `json:"accessToken"`
}

type StartByKakaoRequest struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirectUri"`
}

type AccountResponse struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
}

type ProfileResponse struct {
	ID          int64   `json:"id"`
	Nickname    string  `json:"nickname"`
	AvatarURL   *string `json:"avatarUrl"`
	AccessToken string  `json:"accessToken"`
}

type OtpExpiredAtResponse struct {
	OtpExpiredAt time.Time `json:"otpExpiredAt"`
}

func newProfileResponse(account *domain.Account, accessToken string) ProfileResponse {
	return ProfileResponse{
		ID:          account.ID,
		Nickname:    account.Nickname,
		AvatarURL:   account.AvatarURL,
		AccessToken: accessToken,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// CheckEmail reports email availability with 200 or 409.
func (h *AuthHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		http.Error(w, "Email is required", http.StatusBadRequest)
		return
	}

	if err := h.authService.CheckEmailDuplicated(r.Context(), email); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// CheckNickname reports nickname availability with 200 or 409.
func (h *AuthHandler) CheckNickname(w http.ResponseWriter, r *http.Request) {
	nickname := r.URL.Query().Get("nickname")
	if nickname == "" {
		http.Error(w, "Nickname is required", http.StatusBadRequest)
		return
	}

	if err := h.authService.CheckNicknameDuplicated(r.Context(), nickname); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Nickname == "" {
		http.Error(w, "Email and nickname are required", http.StatusBadRequest)
		return
	}

	account, err := h.authService.SignUp(r.Context(), req.Email, req.Nickname)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, AccountResponse{
		ID:       account.ID,
		Nickname: account.Nickname,
	})
}

func (h *AuthHandler) SendOtp(w http.ResponseWriter, r *http.Request) {
	var req SendOtpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email == "" {
		http.Error(w, "Email is required", http.StatusBadRequest)
		return
	}

	otpExpiredAt, err := h.authService.SendOtp(r.Context(), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, OtpExpiredAtResponse{OtpExpiredAt: otpExpiredAt})
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Otp == "" {
		http.Error(w, "Email and OTP are required", http.StatusBadRequest)
		return
	}

	result, err := h.authService.SignIn(r.Context(), req.Email, req.Otp)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, newProfileResponse(result.Account, result.AccessToken))
}

// SignInWithToken is the auto-login endpoint.
func (h *AuthHandler) SignInWithToken(w http.ResponseWriter, r *http.Request) {
	result, err := h.authService.SignInWithToken(r.Context(), middleware.AccessToken(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, newProfileResponse(result.Account, result.AccessToken))
}

func (h *AuthHandler) StartByGoogle(w http.ResponseWriter, r *http.Request) {
	var req StartByGoogleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.AccessToken == "" {
		http.Error(w, "Access token is required", http.StatusBadRequest)
		return
	}

	result, err := h.authService.StartByGoogle(r.Context(), req.AccessToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, newProfileResponse(result.Account, result.AccessToken))
}

func (h *AuthHandler) StartByKakao(w http.ResponseWriter, r *http.Request) {
	var req StartByKakaoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Code == "" {
		http.Error(w, "Code is required", http.StatusBadRequest)
		return
	}

	result, err := h.authService.StartByKakao(r.Context(), req.Code, req.RedirectURI)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, newProfileResponse(result.Account, result.AccessToken))
}

// SignOut revokes the current session. It always reports success to the
// client; revocation is best-effort.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), middleware.AccessToken(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.authService.DeleteAccount(r.Context(), middleware.AccessToken(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, deleted)
}
