package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/hyunwoo/beluga-backend/internal/api/middleware"
	"github.com/hyunwoo/beluga-backend/internal/service"
)

type MeHandler struct {
	profileService *service.ProfileService
}

func NewMeHandler(profileService *service.ProfileService) *MeHandler {
	return &MeHandler{profileService: profileService}
}

type UpdateProfileRequest struct {
	Nickname  string  `json:"nickname"`
	AvatarURL *string `json:"avatarUrl"`
}

func (h *MeHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	accessToken := middleware.AccessToken(r)

	account, err := h.profileService.GetProfile(r.Context(), accessToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, newProfileResponse(account, accessToken))
}

func (h *MeHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Nickname == "" {
		http.Error(w, "Nickname is required", http.StatusBadRequest)
		return
	}

	accessToken := middleware.AccessToken(r)
	account, err := h.profileService.UpdateProfile(r.Context(), accessToken, service.UpdateProfileInput{
		Nickname:  req.Nickname,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, newProfileResponse(account, accessToken))
}
