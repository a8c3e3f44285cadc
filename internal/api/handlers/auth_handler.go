package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	apiContext "hash402/internal/api/context"
	"hash402/internal/engine/session"
	apiErrors "hash402/internal/pkg/errors"
	"hash402/internal/platform/auth"
	"hash402/internal/platform/models"
	"hash402/internal/platform/repositories"
)

type AuthHandler struct {
	sessions *session.Service
	userRepo *repositories.UserRepository
}

func NewAuthHandler(sessions *session.Service, userRepo *repositories.UserRepository) *AuthHandler {
	return &AuthHandler{sessions: sessions, userRepo: userRepo}
}

type WalletLoginRequest struct {
	WalletAddress string `json:"walletAddress"`
	Signature     string `json:"signature"`
	Message       string `json:"message"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (h *AuthHandler) WalletLogin(w http.ResponseWriter, r *http.Request) {
	var req WalletLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiErrors.WriteError(w, http.StatusBadRequest, apiErrors.ErrCodeInvalidBody, "Invalid request body", "")
		return
	}
	if req.WalletAddress == "" || req.Signature == "" || req.Message == "" {
		apiErrors.WriteError(w, http.StatusBadRequest, apiErrors.ErrCodeInvalidBody, "Wallet address, signature, and message are required", "")
		return
	}

	token, user, err := h.sessions.IssueFromWallet(req.WalletAddress, req.Signature, req.Message)
	if errors.Is(err, session.ErrInvalidSignature) {
		apiErrors.WriteError(w, http.StatusUnauthorized, apiErrors.ErrCodeUnauthorized, "Invalid signature", "")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("wallet login failed")
		apiErrors.WriteError(w, http.StatusInternalServerError, apiErrors.ErrCodeInternal, "Authentication failed", "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sessionResponse{Token: token, User: user})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiErrors.WriteError(w, http.StatusBadRequest, apiErrors.ErrCodeInvalidBody, "Invalid request body", "")
		return
	}
	if req.Email == "" || req.Password == "" {
		apiErrors.WriteError(w, http.StatusBadRequest, apiErrors.ErrCodeInvalidBody, "Email and password required", "")
		return
	}

	token, user, err := h.sessions.IssueFromPassword(req.Email, req.Password)
	if errors.Is(err, session.ErrInvalidCredentials) {
		apiErrors.WriteError(w, http.StatusUnauthorized, apiErrors.ErrCodeUnauthorized, "Invalid credentials", "")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("password login failed")
		apiErrors.WriteError(w, http.StatusInternalServerError, apiErrors.ErrCodeInternal, "Login failed", "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sessionResponse{Token: token, User: user})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	user, err := h.userRepo.GetByID(claims.UserID)
	if err != nil {
		apiErrors.WriteError(w, http.StatusInternalServerError, apiErrors.ErrCodeInternal, "Database error", "")
		return
	}
	if user == nil {
		apiErrors.WriteError(w, http.StatusUnauthorized, apiErrors.ErrCodeUnauthorized, "Invalid token", "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"user": user})
}
