package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/vizquery/vizquery-engine/pkg/apperrors"
	"github.com/vizquery/vizquery-engine/pkg/services"
)

// CredentialsRequest for POST /api/auth/register and /api/auth/login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse carries the issued session token.
type SessionResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// ResetRequest for POST /api/auth/password-reset.
type ResetRequest struct {
	Email string `json:"email"`
}

// ResetConfirmRequest for POST /api/auth/password-reset/confirm.
type ResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// AuthHandler handles account and session endpoints.
type AuthHandler struct {
	accounts services.AccountService
	logger   *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(accounts services.AccountService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, logger: logger}
}

// RegisterRoutes registers the auth handler's routes on the given mux.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/password-reset", h.RequestReset)
	mux.HandleFunc("POST /api/auth/password-reset/confirm", h.ConfirmReset)
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.New(apperrors.KindMissingParameters, "invalid request body"))
		return
	}

	user, token, err := h.accounts.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, ApiResponse{
		Success: true,
		Data:    SessionResponse{Token: token, Email: user.Email},
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.New(apperrors.KindMissingParameters, "invalid request body"))
		return
	}

	user, token, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    SessionResponse{Token: token, Email: user.Email},
	})
}

// RequestReset handles POST /api/auth/password-reset. The response is
// identical whether or not the account exists.
func (h *AuthHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.New(apperrors.KindMissingParameters, "invalid request body"))
		return
	}

	message := h.accounts.RequestPasswordReset(r.Context(), req.Email)
	h.writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: message})
}

// ConfirmReset handles POST /api/auth/password-reset/confirm.
func (h *AuthHandler) ConfirmReset(w http.ResponseWriter, r *http.Request) {
	var req ResetConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.New(apperrors.KindMissingParameters, "invalid request body"))
		return
	}

	if err := h.accounts.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Password updated"})
}

func (h *AuthHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	if err := WriteJSON(w, status, data); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}

func (h *AuthHandler) writeError(w http.ResponseWriter, err error) {
	if werr := ErrorResponse(w, err); werr != nil {
		h.logger.Error("failed to write error response", zap.Error(werr))
	}
}
