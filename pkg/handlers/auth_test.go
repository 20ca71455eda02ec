package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vizquery/vizquery-engine/pkg/apperrors"
	"github.com/vizquery/vizquery-engine/pkg/models"
	"github.com/vizquery/vizquery-engine/pkg/services"
)

func TestAuthHandler_Register(t *testing.T) {
	accounts := &mockAccountService{
		RegisterFunc: func(ctx context.Context, email, password string) (*models.User, string, error) {
			assert.Equal(t, "new@example.com", email)
			return &models.User{Email: email}, "issued-token", nil
		},
	}
	handler := NewAuthHandler(accounts, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"email":"new@example.com","password":"correct horse"}`))
	rec := httptest.NewRecorder()
	handler.Register(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Success bool            `json:"success"`
		Data    SessionResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "issued-token", resp.Data.Token)
	assert.Equal(t, "new@example.com", resp.Data.Email)
	assert.Equal(t, 1, accounts.RegisterCalls)
}

func TestAuthHandler_RegisterConflict(t *testing.T) {
	accounts := &mockAccountService{
		RegisterFunc: func(ctx context.Context, email, password string) (*models.User, string, error) {
			return nil, "", apperrors.New(apperrors.KindConflict, "email already registered")
		},
	}
	handler := NewAuthHandler(accounts, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"email":"dupe@example.com","password":"correct horse"}`))
	rec := httptest.NewRecorder()
	handler.Register(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuthHandler_RegisterInvalidBody(t *testing.T) {
	accounts := &mockAccountService{}
	handler := NewAuthHandler(accounts, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, accounts.RegisterCalls)
}

func TestAuthHandler_LoginFailure(t *testing.T) {
	accounts := &mockAccountService{
		LoginFunc: func(ctx context.Context, email, password string) (*models.User, string, error) {
			return nil, "", apperrors.New(apperrors.KindAuthenticationFailed, "invalid email or password")
		},
	}
	handler := NewAuthHandler(accounts, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"who@example.com","password":"wrong"}`))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "invalid email or password", resp["message"])
}

func TestAuthHandler_RequestResetUniformMessage(t *testing.T) {
	handler := NewAuthHandler(&mockAccountService{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/password-reset",
		strings.NewReader(`{"email":"anyone@example.com"}`))
	rec := httptest.NewRecorder()
	handler.RequestReset(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ApiResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, services.PasswordResetMessage, resp.Message)
}

func TestAuthHandler_ConfirmResetBadToken(t *testing.T) {
	accounts := &mockAccountService{
		ResetPasswordFunc: func(ctx context.Context, token, newPassword string) error {
			return apperrors.New(apperrors.KindAuthenticationFailed, "invalid or expired token")
		},
	}
	handler := NewAuthHandler(accounts, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/password-reset/confirm",
		strings.NewReader(`{"token":"stale","new_password":"longenough"}`))
	rec := httptest.NewRecorder()
	handler.ConfirmReset(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
