package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"rentshop-backend/internal/middleware"
	"rentshop-backend/internal/models"
	"rentshop-backend/internal/services"
)

type AuthHandler struct {
	Users *services.UserService
	TOTP  *services.TOTPService
}

func NewAuthHandler(users *services.UserService, totp *services.TOTPService) *AuthHandler {
	return &AuthHandler{Users: users, TOTP: totp}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.Users.Signup(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, tempToken, err := h.Users.Login(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	if tempToken != "" {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"requires_2fa": true,
			"temp_token":   tempToken,
		})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Verify2FA(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TempToken string `json:"temp_token"`
		Code      string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.Users.VerifyTOTP(r.Context(), req.TempToken, req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.Users.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) UpdateInvoiceSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		GSTIN       string `json:"gstin"`
		GSTIncluded bool   `json:"gst_included"`
		UPIID       string `json:"upi_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Users.UpdateInvoiceSettings(r.Context(), userID, req.GSTIN, req.GSTIncluded, req.UPIID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) TOTPSetup(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	setup, err := h.TOTP.Setup(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, setup)
}

func (h *AuthHandler) TOTPEnable(w http.ResponseWriter, r *http.Request) {
	h.totpToggle(w, r, h.TOTP.Enable)
}

func (h *AuthHandler) TOTPDisable(w http.ResponseWriter, r *http.Request) {
	h.totpToggle(w, r, h.TOTP.Disable)
}

func (h *AuthHandler) totpToggle(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, userID int, code string) error) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := fn(r.Context(), userID, req.Code); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
